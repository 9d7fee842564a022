package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote API speaks plain JSON numbers for prices.
	decimal.MarshalJSONWithoutQuotes = true
}

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// ProductFields is a partial product. Only non-nil fields are sent or merged.
type ProductFields struct {
	ID          *int             `json:"id,omitempty"`
	Title       *string          `json:"title,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Image       *string          `json:"image,omitempty"`
}

// Merge returns a copy of p with every present field of f applied. The id is never overwritten.
func (p Product) Merge(f ProductFields) Product {
	if f.Title != nil {
		p.Title = *f.Title
	}
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Image != nil {
		p.Image = *f.Image
	}
	return p
}

// DeleteAck is what the remote API answers to a delete: the removed record, possibly empty.
type DeleteAck struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id int, fields ProductFields) (*ProductFields, error)
	DeleteProduct(ctx context.Context, id int) (*DeleteAck, error)
}

func StringField(s string) *string { return &s }

func PriceField(d decimal.Decimal) *decimal.Decimal { return &d }
