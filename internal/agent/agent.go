package agent

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DefaultProbeTimeout = 10 * time.Second

	// Probed sites can return arbitrarily large bodies; only a prefix
	// is drained to reuse connections.
	maxDrainBytes = 64 << 10
)

type Config struct {
	Region       string        `yaml:"region"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

type ProbeRequest struct {
	URL string `json:"url" binding:"required"`
}

type ProbeResult struct {
	IsUp      bool   `json:"is_up"`
	LatencyMS *int64 `json:"latency_ms"`
	Region    string `json:"region"`
}

// Prober performs a single HTTP check against a target site and
// reports whether it responded, how long it took, and from which
// region the check was made.
type Prober struct {
	l      *zap.Logger
	region string
	http   *http.Client
}

func NewProber(l *zap.Logger, cfg Config) *Prober {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	return &Prober{
		l:      l,
		region: cfg.Region,
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}

				return nil
			},
		},
	}
}

func (p *Prober) Region() string {
	return p.region
}

// Check probes the target once. A network failure or timeout is a
// "down" observation, not an error; errors are reserved for requests
// the prober could not even attempt.
func (p *Prober) Check(ctx context.Context, target string) ProbeResult {
	result := ProbeResult{Region: p.region}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return result
	}

	start := time.Now()

	resp, err := p.http.Do(req)
	if err != nil {
		p.l.Debug("Probe failed", zap.String("url", target), zap.Error(err))

		return result
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	latency := time.Since(start).Milliseconds()
	result.LatencyMS = &latency
	result.IsUp = resp.StatusCode < http.StatusInternalServerError

	return result
}

// Handler exposes the prober over HTTP for the backend dispatcher.
type Handler struct {
	l      *zap.Logger
	prober *Prober
}

func NewHandler(l *zap.Logger, prober *Prober) *Handler {
	return &Handler{
		l:      l,
		prober: prober,
	}
}

func (h *Handler) Probe(c *gin.Context) {
	var req ProbeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})

		return
	}

	if !validTarget(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be absolute http or https"})

		return
	}

	result := h.prober.Check(c.Request.Context(), req.URL)

	h.l.Info("Probe completed",
		zap.String("url", req.URL),
		zap.Bool("is_up", result.IsUp),
	)

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "region": h.prober.Region()})
}

func validTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := u.Hostname()
	if host == "" {
		return false
	}

	// Guard against the backend being tricked into probing loopback.
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}

	return !strings.EqualFold(host, "localhost")
}

func SetupRouter(l *zap.Logger, hdl *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.Default()

	router.POST("/probe", hdl.Probe)
	router.GET("/health", hdl.Health)

	return router
}
