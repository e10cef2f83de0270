package models

import (
	"time"
)

// User is an admin panel account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
}
