package models

import "time"

// StoreSettings is a singleton row with the public contact details of the shop.
type StoreSettings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	StoreName        string    `gorm:"size:255;not null" json:"storeName"`
	StoreDescription *string   `gorm:"type:text" json:"storeDescription"`
	StoreAddress     *string   `gorm:"size:255" json:"storeAddress"`
	ContactEmail     string    `gorm:"size:255;not null" json:"contactEmail"`
	ContactPhone     *string   `gorm:"size:64" json:"contactPhone"`
	FacebookURL      *string   `gorm:"column:facebook_url;size:512" json:"facebookUrl"`
	InstagramURL     *string   `gorm:"column:instagram_url;size:512" json:"instagramUrl"`
}

// TableName keeps the singular table name used by the migrations.
func (StoreSettings) TableName() string { return "store_settings" }
