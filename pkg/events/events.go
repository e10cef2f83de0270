// Package events publishes product change notifications for downstream
// consumers such as cache warmers and the storefront build.
package events

import (
	"context"
	"time"
)

// Type is the kind of product change.
type Type string

const (
	ProductCreated Type = "product.created"
	ProductUpdated Type = "product.updated"
	ProductDeleted Type = "product.deleted"
)

// ProductEvent is the message body published for every committed product mutation.
type ProductEvent struct {
	Type         Type      `json:"type"`
	ProductID    uint      `json:"productId"`
	Image        string    `json:"image,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher delivers product events.
type Publisher interface {
	Publish(ctx context.Context, ev ProductEvent) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, ProductEvent) error { return nil }
func (Noop) Close() error                                { return nil }
