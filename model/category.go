package model

import (
	"errors"
	"strings"
)

type Category string

const (
	CategoryRandom   Category = "random"
	CategorySchool   Category = "school"
	CategoryPersonal Category = "personal"

	// CategoryAll is a list filter value only, it is never stored on a note.
	CategoryAll Category = "all"
)

var ErrUnknownCategory = errors.New("unknown category")

type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Color string   `json:"color,omitempty"`
}

var categoryInfos = []CategoryInfo{
	{ID: CategoryAll, Label: "All Categories"},
	{ID: CategoryRandom, Label: "Random Thoughts", Color: "coral"},
	{ID: CategorySchool, Label: "School", Color: "yellow"},
	{ID: CategoryPersonal, Label: "Personal", Color: "teal"},
}

// IsValid reports whether c can be stored on a note.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRandom, CategorySchool, CategoryPersonal:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Categories lists the display metadata, filter entry first.
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categoryInfos))
	copy(out, categoryInfos)
	return out
}

// ParseCategoryFilter turns a list filter into a category. An empty or "all"
// filter yields ok == false with a nil error, meaning no filtering.
func ParseCategoryFilter(s string) (c Category, ok bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || Category(s) == CategoryAll {
		return "", false, nil
	}
	c = Category(s)
	if !c.IsValid() {
		return "", false, ErrUnknownCategory
	}
	return c, true, nil
}
