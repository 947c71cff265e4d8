package utils

import (
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

type MongoMetrics struct {
	ActiveConnections  int64     `json:"active_connections"`
	CreatedConnections int64     `json:"created_connections"`
	ClosedConnections  int64     `json:"closed_connections"`
	LastCheckTime      time.Time `json:"last_check_time"`
}

var (
	activeConnections  atomic.Int64
	createdConnections atomic.Int64
	closedConnections  atomic.Int64
)

// MongoPoolMonitor counts pool connections as the driver reports them.
// Active means checked out by an operation.
func MongoPoolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionCreated:
				createdConnections.Add(1)
			case event.ConnectionClosed:
				closedConnections.Add(1)
			case event.GetSucceeded:
				activeConnections.Add(1)
			case event.ConnectionReturned:
				activeConnections.Add(-1)
			}
		},
	}
}

func GetMongoMetrics() MongoMetrics {
	return MongoMetrics{
		ActiveConnections:  activeConnections.Load(),
		CreatedConnections: createdConnections.Load(),
		ClosedConnections:  closedConnections.Load(),
		LastCheckTime:      time.Now().UTC(),
	}
}
