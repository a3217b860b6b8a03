package route

import "github.com/gin-gonic/gin"

type HealthHandler interface {
	Ping(c *gin.Context)
	Health(c *gin.Context)
}

func RegisterHealth(g *gin.RouterGroup, hdl HealthHandler) {
	g.GET("/ping", hdl.Ping)
	g.GET("", hdl.Health)
}
