package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequestLabelsStatusAsNumber(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/notes", "200"))

	ObserveRequest(http.MethodGet, "/api/notes", http.StatusOK, 5*time.Millisecond, 120)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/notes", "200"))
	assert.Equal(t, 1.0, after-before)
}

func TestCounters(t *testing.T) {
	tests := []struct {
		name  string
		track func()
		read  func() float64
	}{
		{
			name:  "note operation",
			track: func() { TrackNoteOperation("create") },
			read:  func() float64 { return testutil.ToFloat64(NoteOperationsTotal.WithLabelValues("create")) },
		},
		{
			name:  "token check",
			track: func() { TrackAuthAttempt("revoked", "token") },
			read:  func() float64 { return testutil.ToFloat64(TokenChecksTotal.WithLabelValues("revoked", "token")) },
		},
		{
			name:  "error",
			track: func() { TrackError("store") },
			read:  func() float64 { return testutil.ToFloat64(ErrorsTotal.WithLabelValues("store")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.read()
			tt.track()
			assert.Equal(t, 1.0, tt.read()-before)
		})
	}
}

func TestTrackDBOperation(t *testing.T) {
	timer := TrackDBOperation("find_all", "notes")
	timer.ObserveDuration()
	assert.Equal(t, 1, testutil.CollectAndCount(StoreOperationDuration))
}
