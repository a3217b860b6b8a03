package middleware

import (
	"crypto/ecdsa"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/api/http/handler"
	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
	"watchpay-back/pkg/jwt"
)

// JWTAuth validates the access token and normalizes the identity claim
// into an int64 user id before anything downstream sees it. Tokens from
// older clients carry the id in different shapes; requests whose claims
// cannot be normalized are rejected as malformed.
func JWTAuth(publicKey *ecdsa.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if cookie, err := c.Cookie("access"); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Code:    apperrors.Kind(apperrors.ErrUnauthenticated),
				Message: "missing access token",
			})

			return
		}

		claims, err := jwt.ValidateToken(tokenStr, publicKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Code:    apperrors.Kind(apperrors.ErrUnauthenticated),
				Message: "invalid or expired token",
			})

			return
		}

		userID, err := jwt.ExtractUserID(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, handler.ResponseWithMessage{
				Status:  handler.StatusErr,
				Code:    apperrors.Kind(apperrors.ErrMalformedIdentity),
				Message: "token identity claim is malformed",
			})

			return
		}

		c.Set(model.UserUIDKey, userID)
		c.Set(model.UserEmailKey, claims[model.UserEmailKey])
		c.Set(model.UserNameKey, claims[model.UserNameKey])
		c.Set(model.UserRoleKey, claims[model.UserRoleKey])

		c.Next()
	}
}
