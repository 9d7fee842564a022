package catalog

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	mu     sync.Mutex
	err    error
	result *domain.ProductFields
	got    []usecase.UpdateVars
}

func (f *fakeUpdater) Mutate(_ context.Context, v usecase.UpdateVars) (*domain.ProductFields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, v)
	return f.result, f.err
}

func (f *fakeUpdater) IsPending() bool { return false }

type fakeDeleter struct {
	mu      sync.Mutex
	err     error
	calls   int
	entered chan struct{}
	release chan struct{}
	pending bool
}

func (f *fakeDeleter) Mutate(_ context.Context, id int) (*domain.DeleteAck, error) {
	f.mu.Lock()
	f.calls++
	f.pending = true
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = false
	return &domain.DeleteAck{ID: id}, f.err
}

func (f *fakeDeleter) IsPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:          7,
		Title:       "White Gold Plated Princess",
		Price:       decimal.RequireFromString("9.99"),
		Description: "Classic Created Wedding Engagement Solitaire Diamond Promise Ring",
		Category:    "jewelery",
		Image:       "https://fakestoreapi.com/img/71YAIFU48IL._AC_UL640_QL65_ML3_.jpg",
		Rating:      domain.Rating{Rate: 3, Count: 400},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDetailEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("FormIsSeededFromCurrentFields", func(t *testing.T) {
		d := NewDetail(sampleProduct(), &fakeUpdater{}, &fakeDeleter{}, quietLogger())
		form := d.Edit()
		require.Equal(t, ModeEditing, d.Mode())
		require.Equal(t, FormFor(sampleProduct()), form)
	})

	t.Run("SubmitSendsFullFieldSetAndMerges", func(t *testing.T) {
		serverTitle := "Server Title"
		up := &fakeUpdater{result: &domain.ProductFields{Title: &serverTitle}}
		d := NewDetail(sampleProduct(), up, &fakeDeleter{}, quietLogger())

		form := d.Edit()
		form.Price = decimal.RequireFromString("19.99")
		require.NoError(t, d.Submit(ctx, form))

		require.Len(t, up.got, 1)
		sent := up.got[0]
		require.Equal(t, 7, sent.ID)
		require.NotNil(t, sent.Fields.Title)
		require.NotNil(t, sent.Fields.Description)
		require.NotNil(t, sent.Fields.Category)
		require.True(t, sent.Fields.Price.Equal(decimal.RequireFromString("19.99")))

		p := d.Product()
		require.Equal(t, ModeViewing, d.Mode())
		require.Equal(t, "Server Title", p.Title)
		require.True(t, p.Price.Equal(decimal.RequireFromString("19.99")))
		require.Equal(t, sampleProduct().Image, p.Image)
		require.Equal(t, sampleProduct().Rating, p.Rating)
	})

	t.Run("FailureKeepsEditModeWithMessage", func(t *testing.T) {
		up := &fakeUpdater{err: errors.New("request failed")}
		d := NewDetail(sampleProduct(), up, &fakeDeleter{}, quietLogger())

		form := d.Edit()
		form.Title = "Changed"
		require.Error(t, d.Submit(ctx, form))

		state := d.State()
		require.Equal(t, "editing", state.Mode)
		require.Equal(t, UpdateFailedMessage, state.EditError)
		require.Equal(t, "Changed", state.Form.Title)
		require.Equal(t, sampleProduct().Title, d.Product().Title)

		// Retry succeeds.
		up.err = nil
		require.NoError(t, d.Submit(ctx, form))
		require.Equal(t, "Changed", d.Product().Title)
		require.Empty(t, d.State().EditError)
	})

	t.Run("SubmitOutsideEditMode", func(t *testing.T) {
		d := NewDetail(sampleProduct(), &fakeUpdater{}, &fakeDeleter{}, quietLogger())
		require.ErrorIs(t, d.Submit(ctx, FormFor(sampleProduct())), ErrNotEditing)
	})

	t.Run("InvalidFormIsRejectedLocally", func(t *testing.T) {
		up := &fakeUpdater{}
		d := NewDetail(sampleProduct(), up, &fakeDeleter{}, quietLogger())
		form := d.Edit()
		form.Price = decimal.RequireFromString("-1")
		require.ErrorIs(t, d.Submit(ctx, form), ErrInvalidProduct)
		require.Empty(t, up.got)
		require.Equal(t, ModeEditing, d.Mode())
	})

	t.Run("CancelEdit", func(t *testing.T) {
		d := NewDetail(sampleProduct(), &fakeUpdater{}, &fakeDeleter{}, quietLogger())
		d.Edit()
		d.CancelEdit()
		require.Equal(t, ModeViewing, d.Mode())
	})
}

func TestDetailDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresConfirmation", func(t *testing.T) {
		del := &fakeDeleter{}
		d := NewDetail(sampleProduct(), &fakeUpdater{}, del, quietLogger())
		require.ErrorIs(t, d.ConfirmDelete(ctx), ErrNotConfirming)
		require.Zero(t, del.calls)

		prompt := d.RequestDelete()
		require.Equal(t, `Are you sure you want to delete "White Gold Plated Princess"? This action cannot be undone.`, prompt)
		d.CancelDelete()
		require.ErrorIs(t, d.ConfirmDelete(ctx), ErrNotConfirming)
		require.Zero(t, del.calls)
	})

	t.Run("ConfirmedDeleteCloses", func(t *testing.T) {
		del := &fakeDeleter{}
		d := NewDetail(sampleProduct(), &fakeUpdater{}, del, quietLogger())
		d.RequestDelete()
		require.NoError(t, d.ConfirmDelete(ctx))
		require.Equal(t, 1, del.calls)
		require.True(t, d.State().Closed)
		require.ErrorIs(t, d.ConfirmDelete(ctx), ErrDetailClosed)
	})

	t.Run("ConfirmWhilePendingIsNoOp", func(t *testing.T) {
		del := &fakeDeleter{entered: make(chan struct{}), release: make(chan struct{})}
		d := NewDetail(sampleProduct(), &fakeUpdater{}, del, quietLogger())
		d.RequestDelete()

		done := make(chan error)
		go func() { done <- d.ConfirmDelete(ctx) }()
		<-del.entered
		require.True(t, d.State().Deleting)

		require.ErrorIs(t, d.ConfirmDelete(ctx), ErrDeletePending)
		d.CancelDelete()
		require.True(t, d.State().ConfirmDelete, "cancel is disabled while deleting")

		close(del.release)
		require.NoError(t, <-done)
		require.Equal(t, 1, del.calls)
	})

	t.Run("FailureKeepsConfirmationOpen", func(t *testing.T) {
		del := &fakeDeleter{err: errors.New("request failed")}
		d := NewDetail(sampleProduct(), &fakeUpdater{}, del, quietLogger())
		d.RequestDelete()

		require.Error(t, d.ConfirmDelete(ctx))
		state := d.State()
		require.True(t, state.ConfirmDelete)
		require.False(t, state.Closed)
		require.Equal(t, DeleteFailedMessage, state.DeleteError)
	})
}
