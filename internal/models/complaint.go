package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Workflow statuses. Only operators move a complaint past StatusPending.
const (
	StatusPending    = "pending"
	StatusVerified   = "verified"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Verification statuses written by the classifier.
const (
	VerificationPending    = "pending"
	VerificationLegitimate = "legitimate"
	VerificationSuspicious = "suspicious"
)

// Complaint is a citizen report filed against a ward.
type Complaint struct {
	ID                 string  `gorm:"primaryKey;type:uuid" json:"id"`
	WardID             string  `gorm:"type:uuid;not null;index:idx_complaint_ward_created" json:"ward_id"`
	CategoryID         string  `gorm:"type:uuid;not null" json:"category_id"`
	CitizenName        string  `gorm:"type:text;not null" json:"citizen_name"`
	CitizenPhone       string  `gorm:"type:text;not null" json:"citizen_phone"`
	CitizenEmail       *string `gorm:"type:text" json:"citizen_email"`
	ProblemDescription string  `gorm:"type:text;not null" json:"problem_description"`
	// ImageURL is either a public object URL or, when the upload failed, an
	// inline data URL holding the encoded image.
	ImageURL           string         `gorm:"type:text;not null" json:"image_url"`
	LocationDetails    string         `gorm:"type:text;not null" json:"location_details"`
	Status             string         `gorm:"type:text;not null;default:pending" json:"status"`
	VerificationStatus string         `gorm:"type:text;not null;default:pending" json:"verification_status"`
	VerificationNotes  *string        `gorm:"type:text" json:"verification_notes"`
	MatchedKeywords    pq.StringArray `gorm:"type:text[]" json:"matched_keywords"`
	CreatedAt          time.Time      `gorm:"index:idx_complaint_ward_created,sort:desc" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`

	Ward     *Ward            `gorm:"foreignKey:WardID" json:"ward,omitempty"`
	Category *ProblemCategory `gorm:"foreignKey:CategoryID" json:"problem_category,omitempty"`
}

// BeforeCreate assigns a UUID and the initial statuses when they are unset.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.VerificationStatus == "" {
		c.VerificationStatus = VerificationPending
	}
	return
}

// HasInlineImage reports whether ImageURL carries the image bytes instead of
// a link to stored object.
func (c *Complaint) HasInlineImage() bool {
	return len(c.ImageURL) >= 5 && c.ImageURL[:5] == "data:"
}

// IsWorkflowStatus reports whether s is one of the known workflow statuses.
func IsWorkflowStatus(s string) bool {
	switch s {
	case StatusPending, StatusVerified, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}
