// Package report prints an inventory summary per category.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"

	"darlingdetails/models"

	"gorm.io/gorm"
)

// Uncategorized labels products without a category.
const Uncategorized = "(uncategorized)"

// Line is the summary of one category.
type Line struct {
	Category   string
	Products   int
	Quantity   int
	StockValue float64
	NoImage    int
	OutOfStock int
}

// Summarize groups products by category name. Lines are sorted by name with
// the uncategorized line last.
func Summarize(products []models.Product) []Line {
	byName := map[string]*Line{}
	for _, p := range products {
		name := Uncategorized
		if p.Category != nil {
			name = p.Category.Name
		}
		l := byName[name]
		if l == nil {
			l = &Line{Category: name}
			byName[name] = l
		}
		l.Products++
		l.Quantity += p.Quantity
		if p.Price != nil {
			l.StockValue += *p.Price * float64(p.Quantity)
		}
		if p.Image == nil || *p.Image == "" {
			l.NoImage++
		}
		if p.Quantity == 0 {
			l.OutOfStock++
		}
	}
	out := make([]Line, 0, len(byName))
	for _, l := range byName {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Category == Uncategorized) != (out[j].Category == Uncategorized) {
			return out[j].Category == Uncategorized
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Run loads all products and writes the summary to w. With list set, every
// product is printed below the summary.
func Run(ctx context.Context, db *gorm.DB, w io.Writer, list bool) error {
	var products []models.Product
	if err := db.WithContext(ctx).Preload("Category").Order("id").Find(&products).Error; err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	fmt.Fprintf(w, "Inventory report (%d products):\n", len(products))
	var total Line
	for _, l := range Summarize(products) {
		fmt.Fprintf(w, "  %-24s products=%d quantity=%d value=%.2f no_image=%d out_of_stock=%d\n",
			l.Category, l.Products, l.Quantity, l.StockValue, l.NoImage, l.OutOfStock)
		total.Quantity += l.Quantity
		total.StockValue += l.StockValue
	}
	fmt.Fprintf(w, "  total quantity=%d value=%.2f\n", total.Quantity, total.StockValue)

	if list {
		for _, p := range products {
			image := ""
			if p.Image != nil {
				image = *p.Image
			}
			fmt.Fprintf(w, "%d|%s|%d|%s|%s\n", p.ID, p.Name, p.Quantity, image, p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
	}
	return nil
}
