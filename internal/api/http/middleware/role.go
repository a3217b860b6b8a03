package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/api/http/handler"
	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
)

func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Value(model.UserRoleKey).(string)
		if !ok || !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.ResponseWithMessage{
				Status:  handler.StatusForbidden,
				Code:    apperrors.Kind(apperrors.ErrForbidden),
				Message: "insufficient role",
			})

			return
		}

		c.Next()
	}
}
