package models

import "time"

// Application is the durable record of one admission submission, including
// the metadata of every stored supporting document. It is created exactly
// once after all attachments are durably written and is never updated or
// deleted by the ingestion path.
type Application struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	FullName         string       `gorm:"size:255;not null" json:"full_name"`
	Age              int          `gorm:"not null" json:"age"`
	Address          string       `gorm:"size:512;not null" json:"address"`
	GreGmatScore     *int         `json:"gre_gmat_score,omitempty"`
	SelectedCourse   string       `gorm:"size:128;not null" json:"selected_course"`
	Status           string       `gorm:"size:32;default:'Pending'" json:"status"`
	EligibilityScore *float64     `json:"eligibility_score,omitempty"`
	SubmittedAt      time.Time    `gorm:"index" json:"submitted_at"`
	Attachments      []Attachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
