package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/James9b/fake-api-ecommerce/internal/catalog"
	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/middleware"
	"github.com/James9b/fake-api-ecommerce/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	RetryRoute           = "/refetch"
	CategoryRetryRoute   = "/categories/refetch"
	ProductLoadFailedMsg = "Failed to load product. Please try again."
)

func productRetryRoute(id int) string {
	return fmt.Sprintf("/products/%d/refetch", id)
}

type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type CatalogPage struct {
	catalog.Page
	Categories []CategoryOption `json:"categories"`
}

type detailKey struct {
	tabID string
	id    int
}

type trackedDetail struct {
	detail  *catalog.Detail
	touched time.Time
}

// ProductHandler serves the catalog and the product detail screens. A detail that is mid-edit
// or mid-delete is kept per tab until it settles or goes untouched for detailTTL; idle details
// are rebuilt from the cache on every request.
type ProductHandler struct {
	useCase   usecase.ProductUseCase
	log       *logrus.Logger
	detailTTL time.Duration
	now       func() time.Time

	mu      sync.Mutex
	details map[detailKey]*trackedDetail
}

// NewProductHandler keeps open details for detailTTL; zero keeps them until they settle.
func NewProductHandler(uc usecase.ProductUseCase, detailTTL time.Duration, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase:   uc,
		log:       logger,
		detailTTL: detailTTL,
		now:       time.Now,
		details:   make(map[detailKey]*trackedDetail),
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Catalog)
	router.POST(RetryRoute, h.Refetch)
	router.GET("/categories", h.ListCategories)
	router.POST(CategoryRetryRoute, h.RefetchCategories)

	products := router.Group("/products")
	{
		products.GET("/:id", h.GetProduct)
		products.POST("/:id/refetch", h.RefetchProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *ProductHandler) Catalog(c *gin.Context) {
	res := h.useCase.Products(c.Request.Context())
	if !res.IsSuccess() {
		h.loadFailed(c, res.Status, res.Err)
		return
	}

	view := catalog.NewView()
	view.SetProducts(res.Data)
	view.SetSearch(c.Query("search"))
	view.SetCategory(c.Query("category"))
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			h.log.Warnf("Invalid page parameter '%s', staying on page %d", pageStr, view.CurrentPage())
		} else {
			view.SetPage(page)
		}
	}

	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", CatalogPage{
		Page:       view.Page(),
		Categories: h.categoryOptions(c),
	})
}

// Refetch retries the product list, and the categories too when their last load failed.
func (h *ProductHandler) Refetch(c *gin.Context) {
	ctx := c.Request.Context()
	res := h.useCase.RefetchProducts(ctx)
	if !res.IsSuccess() {
		h.loadFailed(c, res.Status, res.Err)
		return
	}
	if cats := h.useCase.Categories(ctx); cats.IsError() {
		h.useCase.RefetchCategories(ctx)
	}
	SuccessResponse(c, http.StatusOK, "Products reloaded", gin.H{"found": len(res.Data)})
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	h.respondCategories(c, h.useCase.Categories(c.Request.Context()))
}

func (h *ProductHandler) RefetchCategories(c *gin.Context) {
	h.respondCategories(c, h.useCase.RefetchCategories(c.Request.Context()))
}

func (h *ProductHandler) respondCategories(c *gin.Context, res cache.Result[[]string]) {
	if !res.IsSuccess() {
		h.log.Warnf("Failed to load categories: %v", res.Err)
		FailResponse(c, http.StatusServiceUnavailable, "Failed to load categories. Please try again.", gin.H{"retry": CategoryRetryRoute})
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", toOptions(res.Data))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	d, ok := h.openDetail(c, id)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", d.State())
}

// RefetchProduct is the retry of a failed product load.
func (h *ProductHandler) RefetchProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	res := h.useCase.RefetchProduct(c.Request.Context(), id)
	if !h.productLoaded(c, id, res) {
		return
	}
	d, ok := h.openDetail(c, id)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "Product reloaded", d.State())
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	d, ok := h.openDetail(c, id)
	if !ok {
		return
	}
	key := detailKey{tabID: middleware.TabID(c), id: id}

	var form catalog.EditForm
	if state := d.State(); state.Form != nil {
		form = *state.Form
	} else {
		form = d.Edit()
	}
	h.track(key, d)
	defer h.settle(key, d)

	if err := c.ShouldBindJSON(&form); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := d.Submit(c.Request.Context(), form); err != nil {
		statusCode := mapErrorToStatus(err)
		message := err.Error()
		if statusCode == http.StatusBadGateway {
			message = catalog.UpdateFailedMessage
		}
		h.log.Errorf("Failed to update product ID %d: %v", id, err)
		FailResponse(c, statusCode, message, d.State())
		return
	}

	h.log.Infof("Product updated successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Product updated successfully", d.State())
}

// DeleteProduct walks the confirmation step. The first request only opens it and answers with
// the prompt; a later confirm=true deletes and confirm=false closes it again.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	d, ok := h.openDetail(c, id)
	if !ok {
		return
	}
	key := detailKey{tabID: middleware.TabID(c), id: id}

	if !d.State().ConfirmDelete {
		d.RequestDelete()
		h.track(key, d)
		prompt := d.State()
		FailResponse(c, http.StatusConflict, prompt.DeletePrompt, prompt)
		return
	}

	switch c.Query("confirm") {
	case "true":
	case "false":
		d.CancelDelete()
		h.settle(key, d)
		SuccessResponse(c, http.StatusOK, "Deletion cancelled", d.State())
		return
	default:
		prompt := d.State()
		FailResponse(c, http.StatusConflict, prompt.DeletePrompt, prompt)
		return
	}

	h.track(key, d)
	err := d.ConfirmDelete(c.Request.Context())
	if errors.Is(err, catalog.ErrDeletePending) {
		SuccessResponse(c, http.StatusAccepted, "Deletion already in progress", d.State())
		return
	}
	if err != nil {
		statusCode := mapErrorToStatus(err)
		message := err.Error()
		if statusCode == http.StatusBadGateway {
			message = catalog.DeleteFailedMessage
		}
		h.log.Warnf("Failed to delete product ID %d: %v", id, err)
		FailResponse(c, statusCode, message, d.State())
		return
	}

	h.settle(key, d)
	h.log.Infof("Product deleted successfully: ID %d", id)
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) productID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		h.log.Warnf("Invalid product ID parameter: %s", idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return 0, false
	}
	return id, true
}

// openDetail returns the tab's kept detail for id, or a fresh one over the cached product.
// A fresh detail is not kept until it enters edit or delete confirmation.
func (h *ProductHandler) openDetail(c *gin.Context, id int) (*catalog.Detail, bool) {
	key := detailKey{tabID: middleware.TabID(c), id: id}

	h.mu.Lock()
	if t, ok := h.details[key]; ok {
		now := h.now()
		if !t.detail.State().Closed && !h.expired(t, now) {
			t.touched = now
			h.mu.Unlock()
			return t.detail, true
		}
		delete(h.details, key)
	}
	h.mu.Unlock()

	res := h.useCase.Product(c.Request.Context(), id)
	if !h.productLoaded(c, id, res) {
		return nil, false
	}
	return catalog.NewDetail(res.Data, h.useCase.NewUpdateMutation(), h.useCase.NewDeleteMutation(), h.log), true
}

func (h *ProductHandler) productLoaded(c *gin.Context, id int, res cache.Result[domain.Product]) bool {
	if !res.IsSuccess() {
		h.log.Warnf("Failed to get product by ID %d: %v", id, res.Err)
		FailResponse(c, http.StatusServiceUnavailable, ProductLoadFailedMsg, gin.H{"retry": productRetryRoute(id)})
		return false
	}
	if res.Data.ID == 0 {
		ErrorResponse(c, http.StatusNotFound, "Product not found")
		return false
	}
	return true
}

// track keeps d for its tab and drops details nobody touched within detailTTL.
func (h *ProductHandler) track(key detailKey, d *catalog.Detail) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	for k, t := range h.details {
		if h.expired(t, now) {
			delete(h.details, k)
		}
	}
	h.details[key] = &trackedDetail{detail: d, touched: now}
}

func (h *ProductHandler) expired(t *trackedDetail, now time.Time) bool {
	return h.detailTTL > 0 && now.Sub(t.touched) > h.detailTTL
}

// settle drops d once it is idle again.
func (h *ProductHandler) settle(key detailKey, d *catalog.Detail) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.details[key]; ok && t.detail == d && !busy(d) {
		delete(h.details, key)
	}
}

// ForgetTab drops every open detail of a tab.
func (h *ProductHandler) ForgetTab(tabID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.details {
		if key.tabID == tabID {
			delete(h.details, key)
		}
	}
}

func (h *ProductHandler) categoryOptions(c *gin.Context) []CategoryOption {
	res := h.useCase.Categories(c.Request.Context())
	if !res.IsSuccess() {
		h.log.Warnf("Categories unavailable, filter shows all: %v", res.Err)
		return []CategoryOption{}
	}
	return toOptions(res.Data)
}

func (h *ProductHandler) loadFailed(c *gin.Context, status cache.Status, err error) {
	h.log.Errorf("Failed to load products (status %s): %v", status, err)
	FailResponse(c, http.StatusServiceUnavailable, LoadFailedMessage, gin.H{"retry": RetryRoute})
}

func busy(d *catalog.Detail) bool {
	s := d.State()
	if s.Closed {
		return false
	}
	return s.Mode == catalog.ModeEditing.String() || s.ConfirmDelete || s.Deleting || s.Saving
}

func toOptions(categories []string) []CategoryOption {
	options := make([]CategoryOption, 0, len(categories))
	for _, category := range categories {
		options = append(options, CategoryOption{Value: category, Label: catalog.Title(category)})
	}
	return options
}
