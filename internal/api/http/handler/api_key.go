package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"watchpay-back/internal/model"
)

type APIKeyService interface {
	Generate(ctx context.Context, userID int64, name string, ttl time.Duration) (string, error)
	GetUserKeys(ctx context.Context, userID int64) ([]model.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type APIKeyHandler struct {
	BaseHandler

	svc APIKeyService
}

func NewAPIKeyHandler(svc APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

// Create
// @Summary Mint an API key for a validator agent.
// @Description The raw key appears in this response exactly once; only its hash is stored.
// @Tags API Keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.APIKeyCreateRequest true "Key name and optional TTL (e.g. 720h)"
// @Success 201 {object} ResponseWithData{data=model.APIKeyCreateResponse} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body or TTL"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /api-keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.APIKeyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	var ttl time.Duration
	if req.TTL != "" {
		ttl, err = time.ParseDuration(req.TTL)
		if err != nil {
			c.JSON(http.StatusBadRequest, ResponseWithMessage{
				Status:  StatusErr,
				Message: "invalid ttl format",
			})

			return
		}
	}

	key, err := h.svc.Generate(c.Request.Context(), userID, req.Name, ttl)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   model.APIKeyCreateResponse{Key: key},
	})
}

// List
// @Summary List the authenticated user's API keys.
// @Tags API Keys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResponseWithData{data=[]model.APIKey} "Success"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /api-keys [get]
func (h *APIKeyHandler) List(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	keys, err := h.svc.GetUserKeys(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   keys,
	})
}

// Revoke
// @Summary Revoke an API key.
// @Tags API Keys
// @Produce json
// @Security BearerAuth
// @Param id path string true "Key UUID"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 404 {object} ResponseWithMessage "Key does not exist"
// @Router /api-keys/{id} [delete]
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "invalid key id",
		})

		return
	}

	if err := h.svc.Revoke(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "api key revoked",
	})
}
