package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watchpay-back/internal/model"
)

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, err error)
	TestLogin(ctx context.Context) (accessToken, refreshToken string, err error)
}

type AuthHandler struct {
	log             *zap.Logger
	svc             AuthService
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthHandler(log *zap.Logger, svc AuthService, accessTokenTTL, refreshTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		log:             log,
		svc:             svc,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Register
// @Summary Register a new account.
// @Description Creates the user with an optional wallet address and probe agent URL.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body model.RegisterRequest true "Signup payload"
// @Success 201 {object} ResponseWithData{data=model.User} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 409 {object} ResponseWithMessage "User already exists"
// @Failure 500 {object} ResponseWithMessage "Failed to register user"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	user, err := h.svc.Register(ctx, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   user,
	})
}

// Login
// @Summary Log in.
// @Description Sets access and refresh tokens as cookies and duplicates them in the body for mobile clients.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body model.LoginRequest true "Credentials"
// @Success 200 {object} ResponseWithData{data=model.TokenResponse} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 401 {object} ResponseWithMessage "Invalid credentials"
// @Failure 404 {object} ResponseWithMessage "User does not exist"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	accessToken, refreshToken, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.setTokenCookies(c, accessToken, refreshToken)

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data: model.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	})
}

// Logout
// @Summary Log out.
// @Description Invalidates the refresh token and clears auth cookies.
// @Tags Auth
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	refreshToken := h.refreshTokenFrom(c)
	if refreshToken != "" {
		if err := h.svc.Logout(ctx, refreshToken); err != nil {
			h.log.Warn("failed to logout", zap.Error(err))
		}
	}

	h.clearCookies(c)

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "logged out",
	})
}

// Refresh
// @Summary Rotate the token pair.
// @Description Exchanges a valid refresh token for a new access/refresh pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.RefreshRequest false "Refresh token (cookie fallback)"
// @Success 200 {object} ResponseWithData{data=model.TokenResponse} "Success"
// @Failure 401 {object} ResponseWithMessage "Refresh token expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	refreshToken := h.refreshTokenFrom(c)
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: "missing refresh token",
		})

		return
	}

	accessToken, newRefreshToken, err := h.svc.Refresh(ctx, refreshToken)
	if err != nil {
		h.clearCookies(c)
		RespondError(c, err)
		return
	}

	h.setTokenCookies(c, accessToken, newRefreshToken)

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data: model.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
		},
	})
}

// TestLogin
// @Summary Log in as a generated demo user.
// @Description Creates a throwaway account with a funded simulated wallet and returns its tokens.
// @Tags Auth
// @Produce json
// @Success 200 {object} ResponseWithData{data=model.TokenResponse} "Success"
// @Failure 500 {object} ResponseWithMessage "Failed to create test user"
// @Router /auth/test-login [post]
func (h *AuthHandler) TestLogin(c *gin.Context) {
	ctx := c.Request.Context()

	accessToken, refreshToken, err := h.svc.TestLogin(ctx)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.setTokenCookies(c, accessToken, refreshToken)

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data: model.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	})
}

func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie("refresh"); err == nil {
		return cookie
	}

	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}

	return ""
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetCookie("access", accessToken, int(h.accessTokenTTL.Seconds()), "/", "", true, true)
	c.SetCookie("refresh", refreshToken, int(h.refreshTokenTTL.Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	c.SetCookie("access", "", -1, "/", "", true, true)
	c.SetCookie("refresh", "", -1, "/", "", true, true)
}
