package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComplaintUpdate is an operator note attached to a complaint.
type ComplaintUpdate struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	ComplaintID string    `gorm:"type:uuid;not null;index" json:"complaint_id"`
	UpdateText  string    `gorm:"type:text;not null" json:"update_text"`
	UpdatedBy   string    `gorm:"type:text;not null" json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *ComplaintUpdate) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
