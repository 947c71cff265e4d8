package utils

import (
	"testing"

	"quicknotes/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateCategoryRule(t *testing.T) {
	v := NewValidator()

	valid := model.CreateNoteInput{Category: model.CategorySchool}
	assert.NoError(t, v.Struct(valid))

	for _, c := range []model.Category{"", model.CategoryAll, "work"} {
		in := model.CreateNoteInput{Category: c}
		assert.Error(t, v.Struct(in), "category %q", c)
	}
}

func TestValidateUpdatePointers(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(model.UpdateNoteInput{ID: "n1"}))

	bad := model.CategoryAll
	assert.Error(t, v.Struct(model.UpdateNoteInput{ID: "n1", Category: &bad}))

	good := model.CategoryPersonal
	assert.NoError(t, v.Struct(model.UpdateNoteInput{ID: "n1", Category: &good}))

	assert.Error(t, v.Struct(model.UpdateNoteInput{}))
}
