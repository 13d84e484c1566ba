package model

import "time"

// Content is one editable section of the public site
type Content struct {
	Section       string         `json:"section"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle"`
	Text          string         `json:"text"`
	ButtonText    string         `json:"buttonText"`
	Image         string         `json:"image"`
	Data          map[string]any `json:"data,omitempty"`
	LastUpdatedBy int64          `json:"lastUpdatedBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// UpdateContentRequest carries the fields of a section to overwrite
type UpdateContentRequest struct {
	Title      *string        `json:"title,omitempty"`
	Subtitle   *string        `json:"subtitle,omitempty"`
	Text       *string        `json:"text,omitempty"`
	ButtonText *string        `json:"buttonText,omitempty"`
	Image      *string        `json:"image,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}
