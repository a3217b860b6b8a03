package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

const (
	StatusErr          = "error"
	StatusSuccess      = "success"
	StatusRecorded     = "recorded"
	StatusNotAvailable = "not available"
	StatusNotPermitted = "not permitted"
	StatusForbidden    = "forbidden"
	StatusOK           = "ok"
)

const (
	UserAgentHeader = "User-Agent"
)

type BaseHandler struct{}

// GetUserID reads the numeric user id that the auth middleware placed
// into the gin context.
func (h *BaseHandler) GetUserID(c *gin.Context) (int64, error) {
	userIDValue, exists := c.Get(model.UserUIDKey)
	if !exists {
		return 0, apperrors.ErrContextValueDoesNotExist
	}

	userID, ok := userIDValue.(int64)
	if !ok {
		return 0, apperrors.ErrContextValueInvalidType
	}

	return userID, nil
}

// ResponseWithData
// @Description Generic success/error envelope carrying arbitrary data.
type ResponseWithData struct {
	Status string `json:"status"` // Request outcome
	Data   any    `json:"data"`   // Payload object
} // @Name _ResponseWithData

// ResponseWithMessage
// @Description Generic envelope carrying only a human-readable message.
type ResponseWithMessage struct {
	Status  string `json:"status"`         // Request outcome
	Code    string `json:"code,omitempty"` // Machine-checkable error kind
	Message string `json:"message"`        // Human-readable message
} // @Name _ResponseWithMessage

func NoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "method not allowed on this endpoint",
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "page not found",
	})
}

// RespondError maps a service error onto the HTTP taxonomy and writes
// the error envelope. Unknown errors become 500.
func RespondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), ResponseWithMessage{
		Status:  StatusErr,
		Code:    apperrors.Kind(err),
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrMalformedIdentity),
		errors.Is(err, apperrors.ErrInvalidPaymentToken),
		errors.Is(err, apperrors.ErrNoAgentConfigured):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrSelfPingForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrUserDoesNotExist),
		errors.Is(err, apperrors.ErrWebsiteDoesNotExist),
		errors.Is(err, apperrors.ErrPingDoesNotExist),
		errors.Is(err, apperrors.ErrReportDoesNotExist),
		errors.Is(err, apperrors.ErrAPIKeyDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrTokenAlreadyUsed),
		errors.Is(err, apperrors.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrDispatchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
