package model

import (
	"fmt"
	"time"
)

// Image is the minimal descriptor of one image hosted on Gyazo. It is a
// transient value decoded from a list response and never persisted.
type Image struct {
	ID           string
	URL          string
	PermalinkURL string
	ThumbURL     string
	Type         string
	CreatedAt    time.Time
}

// Filename returns the attachment name used when the image binary is sent
// back to the chat client.
func (i Image) Filename() string {
	return fmt.Sprintf("gyazo_image_%s.png", i.ID)
}

// ListOrder describes how the image host orders items across list pages.
type ListOrder string

const (
	ListOrderOldestFirst ListOrder = "oldest_first"
	ListOrderNewestFirst ListOrder = "newest_first"
)

// Upload is a binary payload submitted to the image host.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResult is the outcome of a successful upload. PermalinkURL is empty
// when the host accepted the image but returned no link.
type UploadResult struct {
	PermalinkURL string
}
