package route

import (
	"github.com/gin-gonic/gin"

	"watchpay-back/internal/api/http/middleware"
	"watchpay-back/internal/model"
)

type ReportHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Search(c *gin.Context)
}

func RegisterReportRoutes(g *gin.RouterGroup, hdl ReportHandler, jwtAuth gin.HandlerFunc) {
	g.Use(jwtAuth)

	g.POST("", hdl.Create)
	g.GET("/search", hdl.Search)
	g.GET("/:id", hdl.Get)

	// Removing a complaint is moderation, not something visitors do.
	g.DELETE("/:id", middleware.RequireRoles(model.RoleOwner, model.RoleValidator), hdl.Delete)
}
