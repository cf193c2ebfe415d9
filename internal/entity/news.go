package entity

import "time"

// Headline is one item of the news sidebar.
type Headline struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      string     `json:"source"`
}
