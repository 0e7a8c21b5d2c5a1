package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ward is an administrative ward with its elected councillor.
// Wards are reference data; the service never writes them outside seeding.
type Ward struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	WardNumber      string    `gorm:"type:text;not null;index" json:"ward_number"`
	WardNameEn      string    `gorm:"type:text;not null" json:"ward_name_en"`
	WardNameHi      string    `gorm:"type:text" json:"ward_name_hi"`
	WardNameKn      string    `gorm:"type:text" json:"ward_name_kn"`
	CouncillorName  string    `gorm:"type:text" json:"councillor_name"`
	CouncillorParty string    `gorm:"type:text" json:"councillor_party"`
	CouncillorPhone string    `gorm:"type:text" json:"councillor_phone"`
	City            string    `gorm:"type:text" json:"city"`
	CreatedAt       time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when ID is unset.
func (w *Ward) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}

// ProblemCategory classifies what a complaint is about (pothole, garbage...).
type ProblemCategory struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	CategoryKey string    `gorm:"type:text;not null;uniqueIndex" json:"category_key"`
	NameEn      string    `gorm:"type:text;not null" json:"name_en"`
	NameHi      string    `gorm:"type:text" json:"name_hi"`
	NameKn      string    `gorm:"type:text" json:"name_kn"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID when ID is unset.
func (p *ProblemCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
