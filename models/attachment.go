package models

import "time"

// Attachment describes one stored document of an application. StorageID is
// the opaque blob store reference; it always points at a fully written blob.
type Attachment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"index;not null" json:"application_id"`
	Position      int       `gorm:"not null" json:"position"` // order as received in the submission
	StorageID     string    `gorm:"size:64;uniqueIndex;not null" json:"storage_id"`
	FileName      string    `gorm:"size:512;not null" json:"file_name"` // display name, collision-avoided
	OriginalName  string    `gorm:"size:512;not null" json:"original_name"`
	MimeType      string    `gorm:"size:128;not null" json:"mime_type"`
	Size          int64     `gorm:"not null" json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}
