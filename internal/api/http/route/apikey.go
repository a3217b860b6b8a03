package route

import "github.com/gin-gonic/gin"

type APIKeyHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Revoke(c *gin.Context)
}

func RegisterAPIKeyRoutes(g *gin.RouterGroup, hdl APIKeyHandler, jwtAuth gin.HandlerFunc) {
	g.Use(jwtAuth)

	g.POST("", hdl.Create)
	g.GET("", hdl.List)
	g.DELETE("/:id", hdl.Revoke)
}
