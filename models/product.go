package models

import "time"

// Product is a storefront item. The three image columns are written only by the
// catalog lifecycle: either all NULL or all derived from the same Image name.
type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Price        *float64  `gorm:"type:numeric(10,2)" json:"price"`
	Description  *string   `gorm:"type:text" json:"description"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	CategoryID   *uint     `gorm:"index" json:"categoryId"`
	Category     *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Image        *string   `gorm:"size:255" json:"image"`
	ImageURL     *string   `gorm:"column:image_url;size:512" json:"imageUrl"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url;size:512" json:"thumbnailUrl"`
}

// ImageState is the embedded image reference of a product.
type ImageState struct {
	Image        *string
	ImageURL     *string
	ThumbnailURL *string
}

// ImageState returns a copy of the product's current image columns.
func (p *Product) ImageState() ImageState {
	return ImageState{Image: p.Image, ImageURL: p.ImageURL, ThumbnailURL: p.ThumbnailURL}
}

// SetImageState overwrites all three image columns at once.
func (p *Product) SetImageState(s ImageState) {
	p.Image = s.Image
	p.ImageURL = s.ImageURL
	p.ThumbnailURL = s.ThumbnailURL
}

// HasImage reports whether the product references a derivative pair.
func (p *Product) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}
