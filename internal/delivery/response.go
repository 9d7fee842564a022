package delivery

import (
	"errors"
	"net/http"

	"github.com/James9b/fake-api-ecommerce/internal/catalog"
	"github.com/James9b/fake-api-ecommerce/internal/clients"
	"github.com/gin-gonic/gin"
)

const LoadFailedMessage = "We couldn't load the products. Please try again."

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// FailResponse is ErrorResponse with a payload the page still needs, such as the retry route.
func FailResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
		Data:    data,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrDeletePending),
		errors.Is(err, catalog.ErrUpdatePending),
		errors.Is(err, catalog.ErrNotConfirming),
		errors.Is(err, catalog.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrDetailClosed):
		return http.StatusGone
	case errors.Is(err, clients.ErrRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
