package model

import "time"

// Document kinds.
const (
	DocTypeFile = "file"
	DocTypeLink = "link"
	DocTypeText = "text"
)

// BlobPathNone is the storage locator for documents that have no raw blob
// (link and text ingestion).
const BlobPathNone = "none"

type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	FilePath   string    `gorm:"size:512;not null" json:"file_path"`
	UploadDate time.Time `json:"upload_date"`
	SizeBytes  int64     `json:"size_bytes"`
	DocType    string    `gorm:"size:16;not null;index" json:"doc_type"`
	SourceURL  string    `gorm:"size:1024" json:"source_url,omitempty"`
}
