// Package catalog owns product records and keeps their image references in
// step with the derivatives in storage.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"darlingdetails/models"
	"darlingdetails/pkg/events"
	"darlingdetails/pkg/media"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Lifecycle creates, updates and deletes products. Image mutations follow a
// two-phase order: new derivatives are written before the record commits and
// superseded ones are removed only after it has.
type Lifecycle struct {
	repo      productRepository
	uploads   uploadValidator
	generator derivativeGenerator
	store     derivativeRemover
	resolver  media.Resolver
	events    eventPublisher
	validate  *validator.Validate
	locks     *keyedMutex
	now       func() time.Time
	log       zerolog.Logger
}

func NewLifecycle(
	repo productRepository,
	uploads uploadValidator,
	generator derivativeGenerator,
	store derivativeRemover,
	resolver media.Resolver,
	publisher eventPublisher,
	log zerolog.Logger,
) *Lifecycle {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Lifecycle{
		repo:      repo,
		uploads:   uploads,
		generator: generator,
		store:     store,
		resolver:  resolver,
		events:    publisher,
		validate:  validator.New(),
		locks:     newKeyedMutex(),
		now:       time.Now,
		log:       log,
	}
}

// Get returns one product with its category.
func (l *Lifecycle) Get(ctx context.Context, id uint) (*models.Product, error) {
	return l.repo.Get(ctx, id)
}

// List returns products matching f, newest first.
func (l *Lifecycle) List(ctx context.Context, f Filter) ([]models.Product, error) {
	return l.repo.List(ctx, f)
}

// Create inserts a product. With an upload the derivatives are generated first
// and removed again if the insert fails.
func (l *Lifecycle) Create(ctx context.Context, d Draft, upload *media.UploadCandidate) (*models.Product, error) {
	if err := l.validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	if err := l.checkCategory(ctx, d.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		CategoryID:  d.CategoryID,
	}
	if d.Quantity != nil {
		p.Quantity = *d.Quantity
	}

	var res *media.Result
	if upload != nil {
		var err error
		if res, err = l.derive(ctx, *upload); err != nil {
			return nil, err
		}
		p.SetImageState(l.imageState(res.Name))
	}

	if err := l.repo.Create(ctx, p); err != nil {
		if res != nil {
			l.cleanup(res.Refs(), "create failed")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	l.publish(ctx, events.ProductCreated, p)
	return l.reload(ctx, p), nil
}

// Update applies changes to a product. With an upload the image is replaced:
// a failed generation leaves the record untouched, and the previous pair is
// removed only after the new state is committed.
func (l *Lifecycle) Update(ctx context.Context, id uint, ch Changes, upload *media.UploadCandidate) (*models.Product, error) {
	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.validate.Struct(ch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}
	if err := l.checkCategory(ctx, ch.CategoryID); err != nil {
		return nil, err
	}
	applyChanges(p, ch)

	var (
		res      *media.Result
		previous string
	)
	if upload != nil {
		if res, err = l.derive(ctx, *upload); err != nil {
			return nil, err
		}
		if p.HasImage() {
			previous = *p.Image
		}
		p.SetImageState(l.imageState(res.Name))
	}

	if err := l.repo.Save(ctx, p); err != nil {
		if res != nil {
			l.cleanup(res.Refs(), "update failed")
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	if res != nil && previous != "" && previous != res.Name {
		l.cleanup(l.resolver.Locate(previous), "image replaced")
	}

	l.publish(ctx, events.ProductUpdated, p)
	return l.reload(ctx, p), nil
}

// Delete removes the product record, then its derivatives.
func (l *Lifecycle) Delete(ctx context.Context, id uint) error {
	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if p.HasImage() {
		l.cleanup(l.resolver.Locate(*p.Image), "product deleted")
	}
	l.publish(ctx, events.ProductDeleted, p)
	return nil
}

func (l *Lifecycle) derive(ctx context.Context, upload media.UploadCandidate) (*media.Result, error) {
	if err := l.uploads.Validate(upload); err != nil {
		return nil, err
	}
	res, err := l.generator.Generate(ctx, upload.Source)
	if err != nil {
		l.log.Error().Err(err).Str("filename", upload.OriginalFilename).Msg("derivative generation failed")
		return nil, err
	}
	return res, nil
}

func (l *Lifecycle) imageState(name string) models.ImageState {
	urls := l.resolver.Resolve(name)
	return models.ImageState{
		Image:        &name,
		ImageURL:     &urls.Main,
		ThumbnailURL: &urls.Thumbnail,
	}
}

func (l *Lifecycle) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := l.repo.CategoryExists(ctx, *id)
	if err != nil {
		return fmt.Errorf("check category %d: %w", *id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrCategoryNotFound, *id)
	}
	return nil
}

// cleanup removes derivatives on a best-effort basis. Failures are logged and
// never reach the caller.
func (l *Lifecycle) cleanup(refs []media.Ref, reason string) {
	for _, ref := range refs {
		err := l.store.Remove(context.Background(), ref.Area, ref.Name)
		if err == nil {
			continue
		}
		ev := l.log.Warn()
		if !errors.Is(err, media.ErrNotFound) {
			ev = l.log.Error()
		}
		ev.Err(err).
			Str("category", "CleanupError").
			Str("reason", reason).
			Str("area", ref.Area).
			Str("name", ref.Name).
			Msg("failed to remove derivative")
	}
}

func (l *Lifecycle) publish(ctx context.Context, typ events.Type, p *models.Product) {
	ev := events.ProductEvent{Type: typ, ProductID: p.ID, OccurredAt: l.now().UTC()}
	if p.HasImage() {
		ev.Image = *p.Image
		ev.ImageURL = deref(p.ImageURL)
		ev.ThumbnailURL = deref(p.ThumbnailURL)
	}
	if err := l.events.Publish(ctx, ev); err != nil {
		l.log.Error().Err(err).Uint("product_id", p.ID).Str("event", string(typ)).Msg("failed to publish product event")
	}
}

// reload fetches the committed row with its category. The in-memory copy is
// returned if the read fails, since the write itself succeeded.
func (l *Lifecycle) reload(ctx context.Context, p *models.Product) *models.Product {
	fresh, err := l.repo.Get(ctx, p.ID)
	if err != nil {
		l.log.Warn().Err(err).Uint("product_id", p.ID).Msg("failed to reload product")
		return p
	}
	return fresh
}

func applyChanges(p *models.Product, ch Changes) {
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Price != nil {
		p.Price = ch.Price
	}
	if ch.Description != nil {
		p.Description = ch.Description
	}
	if ch.Quantity != nil {
		p.Quantity = *ch.Quantity
	}
	switch {
	case ch.ClearCategory:
		p.CategoryID = nil
		p.Category = nil
	case ch.CategoryID != nil:
		p.CategoryID = ch.CategoryID
		p.Category = nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
