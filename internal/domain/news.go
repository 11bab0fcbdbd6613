package domain

import "time"

type NewsItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
}
