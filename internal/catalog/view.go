package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
)

const PageSize = 10

// Filter keeps products whose title contains search (case-insensitive) and whose category
// equals category, or all categories when category is empty.
func Filter(products []domain.Product, search, category string) []domain.Product {
	needle := strings.ToLower(search)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the 1-based page of items. Out of range pages are empty.
func Paginate(items []domain.Product, page int) []domain.Product {
	start := (page - 1) * PageSize
	if page < 1 || start >= len(items) {
		return []domain.Product{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Title capitalises the first letter of a category label for display.
func Title(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + category[size:]
}

// Page is what the catalog shows for the current inputs.
type Page struct {
	Products       []domain.Product `json:"products"`
	Found          int              `json:"found"`
	Page           int              `json:"page"`
	TotalPages     int              `json:"total_pages"`
	HasPrev        bool             `json:"has_prev"`
	HasNext        bool             `json:"has_next"`
	ShowPagination bool             `json:"show_pagination"`
	Search         string           `json:"search"`
	Category       string           `json:"category"`
}

// View holds the catalog inputs. Everything it shows is recomputed from them on demand.
type View struct {
	products []domain.Product
	search   string
	category string
	page     int
}

func NewView() *View {
	return &View{page: 1}
}

func (v *View) SetProducts(products []domain.Product) {
	v.products = products
	v.page = v.clamp(v.page)
}

func (v *View) SetSearch(search string) {
	v.search = search
	v.page = 1
}

func (v *View) SetCategory(category string) {
	v.category = category
	v.page = 1
}

// SetPage moves to page, clamped to the available pages.
func (v *View) SetPage(page int) {
	v.page = v.clamp(page)
}

func (v *View) Next() { v.SetPage(v.page + 1) }

func (v *View) Prev() { v.SetPage(v.page - 1) }

func (v *View) CurrentPage() int { return v.page }

func (v *View) Filtered() []domain.Product {
	return Filter(v.products, v.search, v.category)
}

func (v *View) Page() Page {
	filtered := v.Filtered()
	total := TotalPages(len(filtered))
	page := v.page
	return Page{
		Products:       Paginate(filtered, page),
		Found:          len(filtered),
		Page:           page,
		TotalPages:     total,
		HasPrev:        page > 1,
		HasNext:        page < total,
		ShowPagination: total > 1,
		Search:         v.search,
		Category:       v.category,
	}
}

func (v *View) clamp(page int) int {
	total := TotalPages(len(v.Filtered()))
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
