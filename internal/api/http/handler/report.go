package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/model"
)

type ReportService interface {
	Create(ctx context.Context, userID int64, req *model.ReportCreateRequest) (*model.Report, error)
	Get(ctx context.Context, id string) (*model.Report, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) ([]model.ReportSearchResult, error)
}

type ReportHandler struct {
	BaseHandler

	svc ReportService
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Create
// @Summary File a report against a recorded ping.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.ReportCreateRequest true "Ping id and reason"
// @Success 201 {object} ResponseWithData{data=model.Report} "Success"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 404 {object} ResponseWithMessage "Ping does not exist"
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.ReportCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	report, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   report,
	})
}

// Get
// @Summary Get a report by id.
// @Tags Reports
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} ResponseWithData{data=model.Report} "Success"
// @Failure 404 {object} ResponseWithMessage "Report does not exist"
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   report,
	})
}

// Delete
// @Summary Delete a report.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 404 {object} ResponseWithMessage "Report does not exist"
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "report deleted",
	})
}

// Search
// @Summary Full-text search over report reasons.
// @Tags Reports
// @Produce json
// @Param q query string true "Search query"
// @Param from query int false "Offset"
// @Param size query int false "Page size"
// @Success 200 {object} ResponseWithData{data=[]model.ReportSearchResult} "Success"
// @Router /reports/search [get]
func (h *ReportHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: "missing query parameter q",
		})

		return
	}

	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	results, err := h.svc.Search(c.Request.Context(), query, from, size)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   results,
	})
}
