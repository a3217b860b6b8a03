package route

import "github.com/gin-gonic/gin"

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Refresh(c *gin.Context)
	TestLogin(c *gin.Context)
}

func RegisterAuth(g *gin.RouterGroup, hdl AuthHandler, jwtAuth gin.HandlerFunc) {
	g.POST("/register", hdl.Register)
	g.POST("/login", hdl.Login)
	g.POST("/refresh", hdl.Refresh)
	g.POST("/test-login", hdl.TestLogin)

	g.POST("/logout", jwtAuth, hdl.Logout)
}
