package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"watchpay-back/internal/api/http/handler"
	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

const APIKeyHeader = "X-API-Key"

type APIKeyStore interface {
	GetAllActive(ctx context.Context) ([]model.APIKey, error)
}

// APIKeyAuth authenticates validator agents by API key. Keys are stored
// hashed, so the presented key is compared against every active hash.
func APIKeyAuth(store APIKeyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Code:    apperrors.Kind(apperrors.ErrUnauthenticated),
				Message: "missing api key",
			})

			return
		}

		keys, err := store.GetAllActive(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, handler.ResponseWithMessage{
				Status:  handler.StatusErr,
				Code:    "internal",
				Message: "failed to verify api key",
			})

			return
		}

		for _, key := range keys {
			if bcrypt.CompareHashAndPassword(key.KeyHash, []byte(presented)) == nil {
				c.Set(model.UserUIDKey, key.UserID)
				c.Next()

				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
			Status:  handler.StatusNotPermitted,
			Code:    apperrors.Kind(apperrors.ErrUnauthenticated),
			Message: "invalid api key",
		})
	}
}
