package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) domain.CatalogAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCatalogHTTPClient(srv.URL+"/", logger)
}

func TestCatalogHTTPClient(t *testing.T) {
	ctx := context.Background()

	t.Run("ListProducts", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/products", r.URL.Path)
			_, _ = io.WriteString(w, `[{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}}]`)
		})

		products, err := c.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Backpack", products[0].Title)
		require.True(t, products[0].Price.Equal(decimal.RequireFromString("109.95")))
	})

	t.Run("GetProduct", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/products/7", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":7,"title":"Ring"}`)
		})

		product, err := c.GetProduct(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, 7, product.ID)
	})

	t.Run("ListCategories", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/products/categories", r.URL.Path)
			_, _ = io.WriteString(w, `["electronics","jewelery"]`)
		})

		categories, err := c.ListCategories(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"electronics", "jewelery"}, categories)
	})

	t.Run("UpdateProductSendsFieldsVerbatim", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/products/7", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"price":19.99}`, string(body))
			_, _ = io.WriteString(w, `{"id":7,"price":19.99}`)
		})

		updated, err := c.UpdateProduct(ctx, 7, domain.ProductFields{Price: domain.PriceField(decimal.RequireFromString("19.99"))})
		require.NoError(t, err)
		require.NotNil(t, updated.ID)
		require.Equal(t, 7, *updated.ID)
		require.True(t, updated.Price.Equal(decimal.RequireFromString("19.99")))
		require.Nil(t, updated.Title)
	})

	t.Run("DeleteProduct", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "title": "Ring"})
		})

		ack, err := c.DeleteProduct(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, 7, ack.ID)
	})

	t.Run("EmptyDeleteBodyIsAnAck", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		ack, err := c.DeleteProduct(ctx, 7)
		require.NoError(t, err)
		require.NotNil(t, ack)
	})

	t.Run("NonSuccessStatusIsGeneric", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusInternalServerError} {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			})
			_, err := c.ListProducts(ctx)
			require.ErrorIs(t, err, ErrRequestFailed)
		}
	})

	t.Run("TransportErrorIsGeneric", func(t *testing.T) {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		c := NewCatalogHTTPClient("http://127.0.0.1:1", logger)
		_, err := c.GetProduct(ctx, 1)
		require.ErrorIs(t, err, ErrRequestFailed)
	})
}
