package route

import "github.com/gin-gonic/gin"

type WebsiteHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func RegisterWebsiteRoutes(g *gin.RouterGroup, hdl WebsiteHandler, jwtAuth gin.HandlerFunc) {
	g.Use(jwtAuth)

	g.POST("", hdl.Create)
	g.GET("", hdl.List)
	g.GET("/:website_id", hdl.Get)
	g.PATCH("/:website_id", hdl.Update)
	g.DELETE("/:website_id", hdl.Delete)
}
