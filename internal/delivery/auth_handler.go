package delivery

import (
	"net/http"

	"github.com/James9b/fake-api-ecommerce/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	log      *logrus.Logger
	onLogout []func(tabID string)
}

// NewAuthHandler runs every onLogout hook after a tab's session is cleared.
func NewAuthHandler(logger *logrus.Logger, onLogout ...func(tabID string)) *AuthHandler {
	return &AuthHandler{log: logger, onLogout: onLogout}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}

// LoginRequest is the login form. Empty fields are a failed login, not a bad request.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if middleware.Session(c).IsLoggedIn() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	SuccessResponse(c, http.StatusOK, "Please sign in", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	handlerLogger := h.log.WithField("handler", "Login")
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		handlerLogger.Warnf("Failed to bind login request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	store := middleware.Session(c)
	res, err := store.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handlerLogger.Errorf("Failed to store session for tab %s: %v", middleware.TabID(c), err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to save session")
		return
	}
	if !res.Success {
		ErrorResponse(c, http.StatusUnauthorized, res.Error)
		return
	}

	SuccessResponse(c, http.StatusOK, "Logged in successfully", store.User())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Session(c).Logout(c.Request.Context()); err != nil {
		h.log.Errorf("Handler: Failed to clear session for tab %s: %v", middleware.TabID(c), err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	for _, hook := range h.onLogout {
		hook(middleware.TabID(c))
	}
	SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}
