package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	UpdateFailedMessage = "Failed to update product. Please try again."
	DeleteFailedMessage = "Failed to delete product. Please try again."
)

var (
	ErrNotEditing     = errors.New("product is not being edited")
	ErrUpdatePending  = errors.New("an update is already in progress")
	ErrNotConfirming  = errors.New("deletion has not been requested")
	ErrDeletePending  = errors.New("a deletion is already in progress")
	ErrInvalidProduct = errors.New("invalid product fields")
	ErrDetailClosed   = errors.New("product detail is closed")
)

type Updater interface {
	Mutate(ctx context.Context, vars usecase.UpdateVars) (*domain.ProductFields, error)
	IsPending() bool
}

type Deleter interface {
	Mutate(ctx context.Context, id int) (*domain.DeleteAck, error)
	IsPending() bool
}

type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

// EditForm is the editable subset of a product.
type EditForm struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

func FormFor(p domain.Product) EditForm {
	return EditForm{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
	}
}

// Fields is the full edited field set sent to the remote API.
func (f EditForm) Fields() domain.ProductFields {
	return domain.ProductFields{
		Title:       domain.StringField(f.Title),
		Price:       domain.PriceField(f.Price),
		Description: domain.StringField(f.Description),
		Category:    domain.StringField(f.Category),
	}
}

func (f EditForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if f.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if strings.TrimSpace(f.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	return nil
}

// Detail drives the read, edit and delete flow of one product.
type Detail struct {
	mu         sync.Mutex
	product    domain.Product
	mode       Mode
	form       EditForm
	editErr    string
	updating   bool
	confirming bool
	deleting   bool
	deleteErr  string
	closed     bool

	update Updater
	del    Deleter
	log    *logrus.Logger
}

func NewDetail(product domain.Product, update Updater, del Deleter, logger *logrus.Logger) *Detail {
	return &Detail{product: product, update: update, del: del, log: logger}
}

// DetailState is a snapshot for rendering.
type DetailState struct {
	Product       domain.Product `json:"product"`
	Mode          string         `json:"mode"`
	Form          *EditForm      `json:"form,omitempty"`
	EditError     string         `json:"edit_error,omitempty"`
	Saving        bool           `json:"saving"`
	ConfirmDelete bool           `json:"confirm_delete"`
	DeletePrompt  string         `json:"delete_prompt,omitempty"`
	Deleting      bool           `json:"deleting"`
	DeleteError   string         `json:"delete_error,omitempty"`
	Closed        bool           `json:"closed"`
}

func (d *Detail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := DetailState{
		Product:       d.product,
		Mode:          d.mode.String(),
		EditError:     d.editErr,
		Saving:        d.updating,
		ConfirmDelete: d.confirming,
		Deleting:      d.deleting,
		DeleteError:   d.deleteErr,
		Closed:        d.closed,
	}
	if d.mode == ModeEditing {
		form := d.form
		s.Form = &form
	}
	if d.confirming {
		s.DeletePrompt = DeletePrompt(d.product)
	}
	return s
}

func (d *Detail) Product() domain.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.product
}

func (d *Detail) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Edit enters edit mode with a form seeded from the current fields.
func (d *Detail) Edit() EditForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = ModeEditing
	d.form = FormFor(d.product)
	d.editErr = ""
	return d.form
}

func (d *Detail) CancelEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.updating {
		return
	}
	d.mode = ModeViewing
	d.editErr = ""
}

// Submit sends the full form. On success the local copy absorbs the form and the server answer
// and edit mode ends; on failure the form stays open with an error message.
func (d *Detail) Submit(ctx context.Context, form EditForm) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDetailClosed
	}
	if d.mode != ModeEditing {
		d.mu.Unlock()
		return ErrNotEditing
	}
	if d.updating {
		d.mu.Unlock()
		return ErrUpdatePending
	}
	d.form = form
	if err := form.Validate(); err != nil {
		d.editErr = err.Error()
		d.mu.Unlock()
		return err
	}
	d.updating = true
	d.editErr = ""
	id := d.product.ID
	d.mu.Unlock()

	fields := form.Fields()
	result, err := d.update.Mutate(ctx, usecase.UpdateVars{ID: id, Fields: fields})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.updating = false
	if err != nil {
		d.log.Errorf("Detail: Update of product ID %d failed: %v", id, err)
		d.editErr = UpdateFailedMessage
		return err
	}
	merged := d.product.Merge(fields)
	if result != nil {
		merged = merged.Merge(*result)
	}
	d.product = merged
	d.mode = ModeViewing
	return nil
}

// RequestDelete opens the confirmation step and returns its prompt.
func (d *Detail) RequestDelete() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirming = true
	d.deleteErr = ""
	return DeletePrompt(d.product)
}

func (d *Detail) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleting {
		return
	}
	d.confirming = false
	d.deleteErr = ""
}

// ConfirmDelete fires the delete mutation. It does nothing while a deletion is pending.
// On success the detail closes; on failure the confirmation stays open.
func (d *Detail) ConfirmDelete(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDetailClosed
	}
	if !d.confirming {
		d.mu.Unlock()
		return ErrNotConfirming
	}
	if d.deleting || d.del.IsPending() {
		d.mu.Unlock()
		return ErrDeletePending
	}
	d.deleting = true
	d.deleteErr = ""
	id := d.product.ID
	d.mu.Unlock()

	_, err := d.del.Mutate(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleting = false
	if err != nil {
		d.log.Errorf("Detail: Deletion of product ID %d failed: %v", id, err)
		d.deleteErr = DeleteFailedMessage
		return err
	}
	d.confirming = false
	d.closed = true
	return nil
}

func DeletePrompt(p domain.Product) string {
	return fmt.Sprintf("Are you sure you want to delete \"%s\"? This action cannot be undone.", p.Title)
}
