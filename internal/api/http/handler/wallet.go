package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchpay-back/internal/model"
)

type WalletService interface {
	Balance(ctx context.Context, userID int64) (*model.WalletBalance, error)
	Transactions(ctx context.Context, userID int64) (*model.WalletTransactionsResponse, error)
	NetworkStatus(ctx context.Context) *model.NetworkStatus
}

type WalletHandler struct {
	BaseHandler

	svc WalletService
}

func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// Balance
// @Summary Get the authenticated user's wallet balance.
// @Description Derived from the transaction ledger: starting balance minus all ping fees.
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResponseWithData{data=model.WalletBalance} "Success"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /wallet/balance [get]
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	balance, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   balance,
	})
}

// Transactions
// @Summary List the authenticated user's payment transactions.
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ResponseWithData{data=model.WalletTransactionsResponse} "Success"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Router /wallet/transactions [get]
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	transactions, err := h.svc.Transactions(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   transactions,
	})
}

// NetworkStatus
// @Summary Get the payment-network configuration.
// @Description Reports chain parameters, the ping fee and how many demo tokens the pool offers.
// @Tags Wallet
// @Produce json
// @Success 200 {object} ResponseWithData{data=model.NetworkStatus} "Success"
// @Router /wallet/network-status [get]
func (h *WalletHandler) NetworkStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   h.svc.NetworkStatus(c.Request.Context()),
	})
}
