package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/model"
)

type UserService interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, upd *model.UserUpdateRequest) (*model.User, error)
	DeleteSelf(ctx context.Context, userID int64) error
}

type UserHandler struct {
	BaseHandler

	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetMe
// @Summary Get the authenticated user.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResponseWithData{data=model.User} "Success"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Failure 404 {object} ResponseWithMessage "User does not exist"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   user,
	})
}

// GetUser
// @Summary Get a user by id.
// @Tags Users
// @Produce json
// @Param user_id path int true "User id"
// @Success 200 {object} ResponseWithData{data=model.User} "Success"
// @Failure 404 {object} ResponseWithMessage "User does not exist"
// @Router /users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	var uri model.UserIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), uri.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   user,
	})
}

// UpdateMe
// @Summary Update the authenticated user.
// @Description Mutates name, wallet address or agent URL. Omitted fields stay unchanged.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.UserUpdateRequest true "Fields to update"
// @Success 200 {object} ResponseWithData{data=model.User} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   user,
	})
}

// DeleteSelf
// @Summary Delete the authenticated user's account.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /users/me [delete]
func (h *UserHandler) DeleteSelf(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	if err := h.svc.DeleteSelf(c.Request.Context(), userID); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "account deleted",
	})
}
