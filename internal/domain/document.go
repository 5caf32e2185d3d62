package domain

import "time"

// Document is a downloadable template offered on the marketplace.
type Document struct {
	ID          string
	Title       string
	Description string
	Category    string
	Tags        []string
	StorageKey  string
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DocumentPointer is the minimal projection handed out by the download
// resolver: enough to render a download link, nothing else.
type DocumentPointer struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	StorageURL string `json:"storage_url"`
}
