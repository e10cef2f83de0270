package catalog

import (
	"context"
	"errors"
	"fmt"

	"darlingdetails/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the gorm backed product store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *Repository) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")
	if f.Name != "" {
		q = q.Where("name ILIKE ?", "%"+f.Name+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("quantity > 0")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	var items []models.Product
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

// Save writes every column of p. Associations are never touched.
func (r *Repository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return nil
}

func (r *Repository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ImageNames returns every non-null product image name.
func (r *Repository) ImageNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("image IS NOT NULL AND image <> ''").
		Pluck("image", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list image names: %w", err)
	}
	return names, nil
}
