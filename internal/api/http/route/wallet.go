package route

import "github.com/gin-gonic/gin"

type WalletHandler interface {
	Balance(c *gin.Context)
	Transactions(c *gin.Context)
	NetworkStatus(c *gin.Context)
}

func RegisterWalletRoutes(g *gin.RouterGroup, hdl WalletHandler, jwtAuth gin.HandlerFunc) {
	g.Use(jwtAuth)

	g.GET("/balance", hdl.Balance)
	g.GET("/transactions", hdl.Transactions)
	g.GET("/network-status", hdl.NetworkStatus)
}
