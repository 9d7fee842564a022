package delivery

import (
	"net/http"
	"time"

	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/middleware"
	"github.com/James9b/fake-api-ecommerce/internal/usecase"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	AllowedOrigins []string
	SecureCookie   bool
	// DetailTTL bounds how long an untouched product detail stays open for a tab.
	DetailTTL time.Duration
}

// NewRouter wires the public routes, the login guarded catalog routes and the fallback
// redirect for unknown paths.
func NewRouter(uc usecase.ProductUseCase, sessions domain.SessionBackend, cfg RouterConfig, logger *logrus.Logger) *gin.Engine {
	router, _ := newRouter(uc, sessions, cfg, logger)
	return router
}

func newRouter(uc usecase.ProductUseCase, sessions domain.SessionBackend, cfg RouterConfig, logger *logrus.Logger) (*gin.Engine, *ProductHandler) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		snap := uc.ProductsStatus()
		if snap.Status == cache.StatusError {
			FailResponse(c, http.StatusServiceUnavailable, "Catalog unavailable", gin.H{"products": snap.Status.String()})
			return
		}
		SuccessResponse(c, http.StatusOK, "OK", gin.H{"products": snap.Status.String()})
	})

	productHandler := NewProductHandler(uc, cfg.DetailTTL, logger)
	authHandler := NewAuthHandler(logger, productHandler.ForgetTab)

	tabbed := router.Group("/")
	tabbed.Use(middleware.TabSession(sessions, cfg.SecureCookie, logger))
	authHandler.RegisterRoutes(tabbed)

	protected := tabbed.Group("/")
	protected.Use(middleware.RequireLogin(logger))
	productHandler.RegisterRoutes(protected)

	router.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
	return router, productHandler
}
