package catalog

// Draft holds the fields of a new product.
type Draft struct {
	Name        string   `validate:"required,min=2,max=100"`
	Price       *float64 `validate:"omitempty,gte=0.01"`
	Description *string
	Quantity    *int  `validate:"omitempty,gte=0"`
	CategoryID  *uint `validate:"omitempty,gt=0"`
}

// Changes holds a partial product update. Nil fields are left as they are.
// ClearCategory detaches the product from its category.
type Changes struct {
	Name          *string  `validate:"omitempty,min=2,max=100"`
	Price         *float64 `validate:"omitempty,gte=0.01"`
	Description   *string
	Quantity      *int  `validate:"omitempty,gte=0"`
	CategoryID    *uint `validate:"omitempty,gt=0"`
	ClearCategory bool
}

// Filter narrows product listings. Zero values match everything.
type Filter struct {
	Name       string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
	CategoryID *uint
}
