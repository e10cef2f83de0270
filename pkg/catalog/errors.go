package catalog

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("the specified category does not exist")
	ErrInvalidProduct   = errors.New("invalid product")
)
