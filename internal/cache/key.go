package cache

import "fmt"

type Kind int

const (
	KindProducts Kind = iota + 1
	KindProduct
	KindCategories
)

func (k Kind) String() string {
	switch k {
	case KindProducts:
		return "products"
	case KindProduct:
		return "product"
	case KindCategories:
		return "categories"
	default:
		return "unknown"
	}
}

// Key identifies one cached query. ID is only meaningful for KindProduct.
type Key struct {
	Kind Kind
	ID   int
}

func ProductsKey() Key { return Key{Kind: KindProducts} }

func ProductKey(id int) Key { return Key{Kind: KindProduct, ID: id} }

func CategoriesKey() Key { return Key{Kind: KindCategories} }

func (k Key) String() string {
	if k.Kind == KindProduct {
		return fmt.Sprintf("%s#%d", k.Kind, k.ID)
	}
	return k.Kind.String()
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
