package route

import "github.com/gin-gonic/gin"

type PingHandler interface {
	ManualPing(c *gin.Context)
	IngestValidatorPing(c *gin.Context)
	GetPing(c *gin.Context)
	ListByWebsite(c *gin.Context)
	StreamPings(c *gin.Context)
}

// RegisterPingRoutes wires the ping surface. Manual pings require a
// logged-in user, automated validator pings come in over API key.
// Per-website history lives under the website group to keep the ping
// group's id wildcard unambiguous.
func RegisterPingRoutes(pings, websites *gin.RouterGroup, hdl PingHandler, jwtAuth, apiKeyAuth gin.HandlerFunc) {
	pings.POST("", apiKeyAuth, hdl.IngestValidatorPing)

	pings.POST("/manual", jwtAuth, hdl.ManualPing)
	pings.GET("/:ping_id", jwtAuth, hdl.GetPing)

	// The website group already runs the JWT middleware.
	websites.GET("/:website_id/pings", hdl.ListByWebsite)
	websites.GET("/:website_id/pings/stream", hdl.StreamPings)
}
