package catalog

import (
	"context"

	"darlingdetails/models"
	"darlingdetails/pkg/events"
	"darlingdetails/pkg/media"
)

type productRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Get(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, f Filter) ([]models.Product, error)
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
	CategoryExists(ctx context.Context, id uint) (bool, error)
}

type uploadValidator interface {
	Validate(c media.UploadCandidate) error
}

type derivativeGenerator interface {
	Generate(ctx context.Context, src media.Source) (*media.Result, error)
}

type derivativeRemover interface {
	Remove(ctx context.Context, area, name string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, ev events.ProductEvent) error
}
