package models

import "time"

// Category groups products. Image is a plain URL, not a managed upload.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description *string   `gorm:"type:text" json:"description"`
	Image       *string   `gorm:"size:512" json:"image"`
}
