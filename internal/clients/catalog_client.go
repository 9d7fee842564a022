package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrRequestFailed is returned for any transport failure or non-2xx answer.
var ErrRequestFailed = errors.New("request failed")

type catalogHTTPClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewCatalogHTTPClient builds a client for the remote catalog API. The client has no timeout;
// requests end only when their context does.
func NewCatalogHTTPClient(baseURL string, logger *logrus.Logger) domain.CatalogAPI {
	return &catalogHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logger,
	}
}

func (c *catalogHTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	c.log.Debugf("CatalogClient: Received %d products", len(products))
	return products, nil
}

func (c *catalogHTTPClient) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *catalogHTTPClient) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *catalogHTTPClient) UpdateProduct(ctx context.Context, id int, fields domain.ProductFields) (*domain.ProductFields, error) {
	jsonData, err := json.Marshal(fields)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to marshal update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to prepare product update: %w", err)
	}

	var updated domain.ProductFields
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), jsonData, &updated); err != nil {
		return nil, err
	}
	c.log.Infof("CatalogClient: Product ID %d updated", id)
	return &updated, nil
}

func (c *catalogHTTPClient) DeleteProduct(ctx context.Context, id int) (*domain.DeleteAck, error) {
	var ack domain.DeleteAck
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, &ack); err != nil {
		return nil, err
	}
	c.log.Infof("CatalogClient: Product ID %d deleted", id)
	return &ack, nil
}

func (c *catalogHTTPClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	url := c.baseURL + path
	c.log.Debugf("CatalogClient: %s %s", method, url)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to create %s request for %s: %v", method, path, err)
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to execute %s %s: %v", method, path, err)
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Errorf("CatalogClient: %s %s failed with status %d. Response body: %s", method, path, resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("%w: %s %s", ErrRequestFailed, method, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		c.log.Errorf("CatalogClient: Failed to decode %s %s response: %v", method, path, err)
		return fmt.Errorf("%w: decode %s %s: %v", ErrRequestFailed, method, path, err)
	}
	return nil
}
