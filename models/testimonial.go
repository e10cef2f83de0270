package models

import (
	"time"

	"github.com/google/uuid"
)

// Testimonial is a customer quote shown on the home page.
type Testimonial struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	Date      time.Time `gorm:"not null" json:"date"`
}
