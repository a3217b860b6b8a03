package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"watchpay-back/internal/model"
)

type PingService interface {
	ManualPing(ctx context.Context, userID int64, req *model.ManualPingRequest, clientIP net.IP) (*model.ManualPingResult, error)
	IngestValidatorPing(ctx context.Context, userID int64, req *model.ValidatorPingRequest) (*model.Ping, error)
	GetPing(ctx context.Context, id int64) (*model.Ping, error)
	ListByWebsite(ctx context.Context, websiteID int64) ([]model.Ping, error)
}

type PingHandler struct {
	BaseHandler

	log *zap.Logger
	svc PingService
}

func NewPingHandler(log *zap.Logger, svc PingService) *PingHandler {
	return &PingHandler{
		log: log,
		svc: svc,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type string `json:"type"` // "snapshot" | "update" | "error"
	Data any    `json:"data,omitempty"`
	Err  string `json:"error,omitempty"`
}

// ManualPing
// @Summary Run a paid manual uptime check.
// @Description Validates the payment token, dispatches a probe to the caller's agent and atomically
// @Description burns the token while recording the result. A token is spendable exactly once.
// @Tags Pings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.ManualPingRequest true "Target website and payment token"
// @Success 200 {object} ResponseWithData{data=model.ManualPingResult} "Recorded"
// @Failure 400 {object} ResponseWithMessage "Invalid body, bad payment token or no agent configured"
// @Failure 401 {object} ResponseWithMessage "Unauthorized"
// @Failure 403 {object} ResponseWithMessage "Self-ping forbidden"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Failure 409 {object} ResponseWithMessage "Payment token already used"
// @Failure 502 {object} ResponseWithMessage "Agent dispatch failed"
// @Router /pings/manual [post]
func (h *PingHandler) ManualPing(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.ManualPingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	clientIP := net.ParseIP(c.ClientIP())

	result, err := h.svc.ManualPing(ctx, userID, &req, clientIP)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusRecorded,
		Data:   result,
	})
}

// IngestValidatorPing
// @Summary Submit an automated ping result.
// @Description Validator agents authenticate with X-API-Key and report scheduled check results. No payment token.
// @Tags Pings
// @Accept json
// @Produce json
// @Param body body model.ValidatorPingRequest true "Check result"
// @Success 201 {object} ResponseWithData{data=model.Ping} "Recorded"
// @Failure 400 {object} ResponseWithMessage "Invalid JSON body"
// @Failure 401 {object} ResponseWithMessage "Missing or invalid API key"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Router /pings [post]
func (h *PingHandler) IngestValidatorPing(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: err.Error(),
		})

		return
	}

	var req model.ValidatorPingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	ping, err := h.svc.IngestValidatorPing(ctx, userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusRecorded,
		Data:   ping,
	})
}

// GetPing
// @Summary Get a recorded ping by id.
// @Tags Pings
// @Produce json
// @Param ping_id path int true "Ping id"
// @Success 200 {object} ResponseWithData{data=model.Ping} "Success"
// @Failure 404 {object} ResponseWithMessage "Ping does not exist"
// @Router /pings/{ping_id} [get]
func (h *PingHandler) GetPing(c *gin.Context) {
	var uri model.PingIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	ping, err := h.svc.GetPing(c.Request.Context(), uri.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   ping,
	})
}

// ListByWebsite
// @Summary List recent pings for a website.
// @Tags Pings
// @Produce json
// @Param website_id path int true "Website id"
// @Success 200 {object} ResponseWithData{data=[]model.Ping} "Success"
// @Failure 404 {object} ResponseWithMessage "Website does not exist"
// @Router /websites/{website_id}/pings [get]
func (h *PingHandler) ListByWebsite(c *gin.Context) {
	var uri model.WebsiteIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusErr,
			Message: err.Error(),
		})

		return
	}

	pings, err := h.svc.ListByWebsite(c.Request.Context(), uri.ID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   pings,
	})
}

// StreamPings
// @Summary Stream a website's ping feed over WebSocket.
// @Description Sends a snapshot of recent pings, then an update whenever the feed changes.
// @Tags Pings
// @Param website_id path int true "Website id"
// @Produce application/json
// @Router /websites/{website_id}/pings/stream [get]
func (h *PingHandler) StreamPings(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var uri model.WebsiteIDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Err: "invalid website_id"})
		return
	}

	// keepalive
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastHash string

	send := func(msg wsMessage) bool {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Warn("ws write failed", zap.Error(err))
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pings, err := h.svc.ListByWebsite(ctx, uri.ID)
			if err != nil {
				if !send(wsMessage{Type: "error", Err: err.Error()}) {
					return
				}
				continue
			}

			// Snapshot hash so unchanged feeds are not re-sent.
			raw, _ := json.Marshal(pings)
			sum := sha256.Sum256(raw)
			newHash := hex.EncodeToString(sum[:])

			if lastHash == "" {
				if !send(wsMessage{Type: "snapshot", Data: pings}) {
					return
				}
				lastHash = newHash
			} else if newHash != lastHash {
				if !send(wsMessage{Type: "update", Data: pings}) {
					return
				}
				lastHash = newHash
			}

			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}
