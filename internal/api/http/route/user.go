package route

import "github.com/gin-gonic/gin"

type UserHandler interface {
	GetMe(c *gin.Context)
	GetUser(c *gin.Context)
	UpdateMe(c *gin.Context)
	DeleteSelf(c *gin.Context)
}

func RegisterUserRoutes(g *gin.RouterGroup, hdl UserHandler, jwtAuth gin.HandlerFunc) {
	g.Use(jwtAuth)

	g.GET("/me", hdl.GetMe)
	g.PATCH("/me", hdl.UpdateMe)
	g.DELETE("/me", hdl.DeleteSelf)
	g.GET("/:user_id", hdl.GetUser)
}
