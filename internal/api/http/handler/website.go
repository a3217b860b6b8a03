package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/model"
)

type WebsiteService interface {
	Create(ctx context.Context, ownerID int64, req *model.WebsiteCreateRequest) (*model.Website, error)
	Get(ctx context.Context, id int64) (*model.Website, error)
	List(ctx context.Context, params model.WebsiteQueryParams) (*model.WebsiteListResponse, error)
	Update(ctx context.Context, userID, id int64, req *model.WebsiteUpdateRequest) (*model.Website, error)
	Delete(ctx context.Context, userID, id int64) error
}

type WebsiteHandler struct {
	BaseHandler

	svc WebsiteService
}

func NewWebsiteHandler(svc WebsiteService) *WebsiteHandler {
	return &WebsiteHandler{svc: svc}
}

// Create
// @Summary Register a website for monitoring.
// @Tags Websites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.WebsiteCreateRequest true "Website payload"
// @Success 201 {object} ResponseWithData{data=model.Website} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /websites [post]
func (h *WebsiteHandler) Create(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.WebsiteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	website, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   website,
	})
}

// Get
// @Summary Get a website by id.
// @Tags Websites
// @Produce json
// @Param website_id path int true "Website id"
// @Success 200 {object} ResponseWithData{data=model.Website} "Success"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Router /websites/{website_id} [get]
func (h *WebsiteHandler) Get(c *gin.Context) {
	var uri model.WebsiteIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	website, err := h.svc.Get(c.Request.Context(), uri.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   website,
	})
}

// List
// @Summary List websites.
// @Description Paginated, optionally filtered by owner or category.
// @Tags Websites
// @Produce json
// @Param uid query int false "Filter by owner"
// @Param category query string false "Filter by category"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Items per page"
// @Success 200 {object} ResponseWithData{data=model.WebsiteListResponse} "Success"
// @Router /websites [get]
func (h *WebsiteHandler) List(c *gin.Context) {
	var params model.WebsiteQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	resp, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   resp,
	})
}

// Update
// @Summary Update a website.
// @Description Owner only. Omitted fields stay unchanged.
// @Tags Websites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param website_id path int true "Website id"
// @Param body body model.WebsiteUpdateRequest true "Fields to update"
// @Success 200 {object} ResponseWithData{data=model.Website} "Success"
// @Failure 403 {object} ResponseWithMessage "Not the owner"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Router /websites/{website_id} [patch]
func (h *WebsiteHandler) Update(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var uri model.WebsiteIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	var req model.WebsiteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	website, err := h.svc.Update(c.Request.Context(), userID, uri.ID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   website,
	})
}

// Delete
// @Summary Delete a website.
// @Description Owner only. Cascades to the website's ping history.
// @Tags Websites
// @Produce json
// @Security BearerAuth
// @Param website_id path int true "Website id"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 403 {object} ResponseWithMessage "Not the owner"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Router /websites/{website_id} [delete]
func (h *WebsiteHandler) Delete(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var uri model.WebsiteIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, uri.ID); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "website deleted",
	})
}
