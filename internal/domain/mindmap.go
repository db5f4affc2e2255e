package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Mindmap is a stored mind-map document
type Mindmap struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	ProjectID   int64     `json:"project_id" validate:"gte=0"`
	Data        Document  `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMindmap creates a mindmap whose document is a single root node
func NewMindmap(title string, projectID int64) *Mindmap {
	now := time.Now()
	return &Mindmap{
		Title:     title,
		ProjectID: projectID,
		Data:      NewDocument("root", title),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MindmapUpdate carries the fields of a partial mindmap update.
// Nil fields are left untouched.
type MindmapUpdate struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Data        *Document `json:"data,omitempty"`
}

// Apply merges the update into m
func (u MindmapUpdate) Apply(m *Mindmap) {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Data != nil {
		m.Data = *u.Data
	}
}
