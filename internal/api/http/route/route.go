package route

import (
	"crypto/ecdsa"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watchpay-back/internal/api/http/handler"
	"watchpay-back/internal/api/http/middleware"
	"watchpay-back/internal/config"
)

func SetupRouter(
	log *zap.Logger,
	cfg *config.Config,
	publicKey *ecdsa.PublicKey,
	healthHdl HealthHandler,
	authHdl AuthHandler,
	userHdl UserHandler,
	websiteHdl WebsiteHandler,
	pingHdl PingHandler,
	walletHdl WalletHandler,
	reportHdl ReportHandler,
	apiKeyHdl APIKeyHandler,
	apiKeyStore middleware.APIKeyStore,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.Default()

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request))
	router.Use(middleware.CORS(cfg.CORS))

	jwtAuthMiddleware := middleware.JWTAuth(publicKey)
	apiKeyMiddleware := middleware.APIKeyAuth(apiKeyStore)

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	basePath := router.Group(cfg.BasePath)

	healthPath := basePath.Group("/health")
	RegisterHealth(healthPath, healthHdl)

	authPath := basePath.Group("/auth")
	RegisterAuth(authPath, authHdl, jwtAuthMiddleware)

	userPath := basePath.Group("/users")
	RegisterUserRoutes(userPath, userHdl, jwtAuthMiddleware)

	websitePath := basePath.Group("/websites")
	RegisterWebsiteRoutes(websitePath, websiteHdl, jwtAuthMiddleware)

	pingPath := basePath.Group("/pings")
	RegisterPingRoutes(pingPath, websitePath, pingHdl, jwtAuthMiddleware, apiKeyMiddleware)

	walletPath := basePath.Group("/wallet")
	RegisterWalletRoutes(walletPath, walletHdl, jwtAuthMiddleware)

	reportPath := basePath.Group("/reports")
	RegisterReportRoutes(reportPath, reportHdl, jwtAuthMiddleware)

	apiKeyPath := basePath.Group("/api-keys")
	RegisterAPIKeyRoutes(apiKeyPath, apiKeyHdl, jwtAuthMiddleware)

	return router
}
