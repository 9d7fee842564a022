package grpc

import (
	"context"

	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// CatalogService is the service name reported next to the overall "" service.
const CatalogService = "catalog"

type StatusSource interface {
	ProductsStatus() cache.Snapshot
}

// HealthHandler answers health checks from the product list entry: the catalog is
// not serving while that entry holds an error, and serving otherwise.
type HealthHandler struct {
	healthpb.UnimplementedHealthServer
	source StatusSource
	log    *logrus.Logger
}

func NewHealthHandler(source StatusSource, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{source: source, log: logger}
}

func (h *HealthHandler) Check(_ context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	service := req.GetService()
	if service != "" && service != CatalogService {
		h.log.Warnf("gRPC Handler: Health check for unknown service %q", service)
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}

	snap := h.source.ProductsStatus()
	if snap.Status == cache.StatusError {
		h.log.Warnf("gRPC Handler: Reporting NOT_SERVING, last product load failed: %v", snap.Err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
