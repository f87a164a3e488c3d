package storage

import (
	"time"
)

type Feed struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	LastFetched  time.Time `json:"last_fetched"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayTitle falls back to the URL for feeds without a title.
func (f *Feed) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.URL
}

type Article struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Published   time.Time `json:"published"`
	Updated     time.Time `json:"updated"`
	Read        bool      `json:"read"`
}

// Page is one slice of a longer, newest-first article listing.
type Page struct {
	Articles []*Article
	Offset   int
	Total    int
}

// HasMore reports whether articles remain past this page.
func (p Page) HasMore() bool {
	return p.Offset+len(p.Articles) < p.Total
}
