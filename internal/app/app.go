package app

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"watchpay-back/internal/api/http/handler"
	"watchpay-back/internal/api/http/route"
	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/config"
	"watchpay-back/internal/msg/outbox"
	"watchpay-back/internal/payment"
	"watchpay-back/internal/reconcile"
	"watchpay-back/internal/repository"
	"watchpay-back/internal/service"
	"watchpay-back/pkg/agentclient"
	"watchpay-back/pkg/elastic"
	"watchpay-back/pkg/geoip"
	"watchpay-back/pkg/jwt"
	"watchpay-back/pkg/kafka"
	"watchpay-back/pkg/mailer"
	"watchpay-back/pkg/postgres"
	"watchpay-back/pkg/redis"
	"watchpay-back/pkg/server"
)

const defaultTimeout = 15 * time.Second

const paymentModeRPC = "rpc"

type Publisher interface {
	Run(ctx context.Context)
}

type Sweeper interface {
	Run(ctx context.Context)
}

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Handler    *Handler
	Service    *Service
	Security   *Security
	DB         postgres.Postgres
	RDB        redis.Redis
	Mailer     mailer.Mailer
	HTTPServer server.HTTPServer
	EBus       *EBus
	Sweeper    Sweeper
	GeoDB      geoip.GeoIP
}

type Repository struct {
	HealthRepository  *repository.HealthRepository
	UserRepository    *repository.UserRepository
	WebsiteRepository *repository.WebsiteRepository
	PingRepository    *repository.PingRepository
	TxRepository      *repository.TransactionRepository
	OutboxRepository  *repository.OutboxRepository
	ReportRepository  *repository.ReportRepository
	APIKeyRepository  *repository.APIKeyRepository
}

type Service struct {
	HealthService  *service.HealthService
	AuthService    *service.AuthService
	UserService    *service.UserService
	WebsiteService *service.WebsiteService
	PingService    *service.PingService
	WalletService  *service.WalletService
	ReportService  *service.ReportService
	APIKeyService  *service.APIKeyService
}

type Handler struct {
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	WebsiteHandler *handler.WebsiteHandler
	PingHandler    *handler.PingHandler
	WalletHandler  *handler.WalletHandler
	ReportHandler  *handler.ReportHandler
	APIKeyHandler  *handler.APIKeyHandler
}

type Security struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
}

type EBus struct {
	OutboxPublisher Publisher
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := initRedis(&cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize redis", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	sec, err := initSecurity(log, cfg.Key)
	if err != nil {
		log.Error("Failed to initialize security", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	mlr := initMailer(log, &cfg.Mailer)

	es, err := initElastic(log, &cfg.Elastic)
	if err != nil {
		log.Error("Failed to initialize elastic", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize elastic: %w", err)
	}

	repo := initRepository(log, db, es)

	if err := repo.ReportRepository.EnsureIndex(ctx); err != nil {
		log.Error("Failed to ensure report index", zap.Error(err))
		return nil, fmt.Errorf("failed to ensure report index: %w", err)
	}

	geo, err := initGeo(log, &cfg.Geo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize geo: %w", err)
	}

	svc := initService(log, cfg, sec, repo, mlr, rdb, geo, db)

	hdl := initHandler(log, &cfg.JWT, svc)

	httpServer := initHTTPServer(log, cfg, sec.PublicKey, hdl, repo)

	eBus, err := initEBus(log, &cfg.Kafka, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ebus: %w", err)
	}

	sweeper := initSweeper(log, &cfg.Reconcile, repo)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Handler:    hdl,
		Service:    svc,
		Security:   sec,
		DB:         db,
		RDB:        rdb,
		Mailer:     mlr,
		HTTPServer: httpServer,
		EBus:       eBus,
		Sweeper:    sweeper,
		GeoDB:      geo,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}
	return app
}

func (a *App) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	defer close(errs)

	go func() {
		if err := a.HTTPServer.Run(); err != nil {
			errs <- err
		}
	}()

	go func() {
		a.EBus.OutboxPublisher.Run(ctx)
	}()

	if a.Sweeper != nil {
		go func() {
			a.Sweeper.Run(ctx)
		}()
	}

	if err := <-errs; err != nil {
		return err
	}

	return nil
}

func (a *App) Shutdown() error {
	a.DB.Close()
	a.Log.Debug("Database closed")

	err := apperrors.ErrShutdown

	if rdbErr := a.RDB.Close(); rdbErr != nil {
		err = fmt.Errorf("%w, failed to close RDB: %w", err, rdbErr)
	}

	a.Log.Debug("Redis closed")

	if srvErr := a.HTTPServer.Shutdown(); srvErr != nil {
		err = fmt.Errorf("%w, failed to shutdown http server: %w", err, srvErr)
	}

	a.Log.Debug("Http server shutdown")

	if geoErr := a.GeoDB.Close(); geoErr != nil {
		err = fmt.Errorf("%w, failed to close GeoDB: %w", err, geoErr)
	}

	a.Log.Debug("GeoDB closed")

	if !errors.Is(err, apperrors.ErrShutdown) {
		return err
	}

	return nil
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	db, err := postgres.New(postgresCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func initRedis(cfg *config.Redis) (redis.Redis, error) {
	redisCfg := &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	rdb, err := redis.New(redisCfg)
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func initMailer(log *zap.Logger, cfg *config.Mailer) mailer.Mailer {
	mailerCfg := &mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		UseTLS:   cfg.UseTLS,
	}

	mlr := mailer.New(mailerCfg)
	log.Debug("Mailer initialized")
	return mlr
}

func initElastic(log *zap.Logger, cfg *config.Elastic) (elastic.Elasticsearch, error) {
	elasticCfg := &elastic.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		CloudID:   cfg.CloudID,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
	}

	client, err := elastic.New(elasticCfg)
	if err != nil {
		return nil, err
	}

	log.Debug("Elasticsearch initialized")
	return client, nil
}

func initSecurity(log *zap.Logger, cfg config.Key) (*Security, error) {
	privateKey, err := jwt.LoadECDSAPrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	log.Debug("Private key loaded")

	publicKey, err := jwt.LoadECDSAPublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	log.Debug("Public key loaded")

	return &Security{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}, nil
}

func initRepository(log *zap.Logger, db postgres.Postgres, es elastic.Elasticsearch) *Repository {
	healthRepo := repository.NewHealthRepository(db.Pool())
	log.Debug("Health repository initialized")

	userRepo := repository.NewUserRepository(db.Pool())
	log.Debug("User repository initialized")

	websiteRepo := repository.NewWebsiteRepository(db.Pool())
	log.Debug("Website repository initialized")

	pingRepo := repository.NewPingRepository(db.Pool())
	log.Debug("Ping repository initialized")

	txRepo := repository.NewTransactionRepository(db.Pool())
	log.Debug("Transaction repository initialized")

	outboxRepo := repository.NewOutboxRepository(db.Pool())
	log.Debug("Outbox repository initialized")

	reportRepo := repository.NewReportRepository(es.Client())
	log.Debug("Report repository initialized")

	apiKeyRepo := repository.NewAPIKeyRepository(db.Pool())
	log.Debug("Api key repository initialized")

	return &Repository{
		HealthRepository:  healthRepo,
		UserRepository:    userRepo,
		WebsiteRepository: websiteRepo,
		PingRepository:    pingRepo,
		TxRepository:      txRepo,
		OutboxRepository:  outboxRepo,
		ReportRepository:  reportRepo,
		APIKeyRepository:  apiKeyRepo,
	}
}

func initService(
	log *zap.Logger,
	cfg *config.Config,
	sec *Security,
	repo *Repository,
	mlr mailer.Mailer,
	rdb redis.Redis,
	geoDB geoip.GeoIP,
	db postgres.Postgres,
) *Service {
	healthSvc := service.NewHealthService(log, repo.HealthRepository)
	log.Debug("Health service initialized")

	authSvc := service.NewAuthService(log, sec.PublicKey, sec.PrivateKey, repo.UserRepository, rdb, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	log.Debug("Auth service initialized")

	userSvc := service.NewUserService(repo.UserRepository)
	log.Debug("User service initialized")

	websiteSvc := service.NewWebsiteService(log, repo.WebsiteRepository)
	log.Debug("Website service initialized")

	verifier, availableCodes := initVerifier(&cfg.Payment)
	log.Debug("Payment verifier initialized", zap.String("mode", cfg.Payment.Mode))

	agents := agentclient.New(&agentclient.Config{Timeout: cfg.Dispatch.Timeout})

	pingSvc := service.NewPingService(
		log,
		db.Pool(),
		repo.PingRepository,
		repo.WebsiteRepository,
		repo.UserRepository,
		repo.TxRepository,
		repo.OutboxRepository,
		verifier,
		agents,
		geoDB,
		mlr,
		service.PingConfig{
			AllowSelfPing:   cfg.Pings.AllowSelfPing,
			ContractAddress: cfg.Payment.ContractAddress,
			HistoryLimit:    cfg.Pings.HistoryLimit,
		},
	)
	log.Debug("Ping service initialized")

	walletSvc := service.NewWalletService(repo.UserRepository, repo.TxRepository, service.WalletConfig{
		ChainID:          cfg.Payment.ChainID,
		NetworkName:      cfg.Payment.NetworkName,
		RPCURL:           cfg.Payment.RPCURL,
		ContractAddress:  cfg.Payment.ContractAddress,
		PingCostETH:      cfg.Payment.FeeETH,
		AvailableTxCodes: availableCodes,
		Simulated:        cfg.Payment.Mode != paymentModeRPC,
	})
	log.Debug("Wallet service initialized")

	reportSvc := service.NewReportService(repo.ReportRepository, repo.PingRepository)
	log.Debug("Report service initialized")

	apiKeySvc := service.NewAPIKeyService(repo.APIKeyRepository)
	log.Debug("API Key service initialized")

	return &Service{
		HealthService:  healthSvc,
		AuthService:    authSvc,
		UserService:    userSvc,
		WebsiteService: websiteSvc,
		PingService:    pingSvc,
		WalletService:  walletSvc,
		ReportService:  reportSvc,
		APIKeyService:  apiKeySvc,
	}
}

func initVerifier(cfg *config.Payment) (payment.Verifier, int) {
	if cfg.Mode == paymentModeRPC {
		return payment.NewLedgerReceiptVerifier(cfg.RPCURL, cfg.ContractAddress, cfg.FeeETH), 0
	}

	pool := payment.NewFixedPoolVerifier(cfg.FeeETH)

	return pool, len(pool.Codes())
}

func initHandler(log *zap.Logger, jwtCfg *config.JWT, svc *Service) *Handler {
	healthHandler := handler.NewHealthHandler(log, svc.HealthService)
	log.Debug("Health handler initialized")

	authHandler := handler.NewAuthHandler(log, svc.AuthService, jwtCfg.AccessTokenTTL, jwtCfg.RefreshTokenTTL)
	log.Debug("Auth handler initialized")

	userHandler := handler.NewUserHandler(svc.UserService)
	log.Debug("User handler initialized")

	websiteHandler := handler.NewWebsiteHandler(svc.WebsiteService)
	log.Debug("Website handler initialized")

	pingHandler := handler.NewPingHandler(log, svc.PingService)
	log.Debug("Ping handler initialized")

	walletHandler := handler.NewWalletHandler(svc.WalletService)
	log.Debug("Wallet handler initialized")

	reportHandler := handler.NewReportHandler(svc.ReportService)
	log.Debug("Report handler initialized")

	apiKeyHandler := handler.NewAPIKeyHandler(svc.APIKeyService)
	log.Debug("API Key handler initialized")

	return &Handler{
		HealthHandler:  healthHandler,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		WebsiteHandler: websiteHandler,
		PingHandler:    pingHandler,
		WalletHandler:  walletHandler,
		ReportHandler:  reportHandler,
		APIKeyHandler:  apiKeyHandler,
	}
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, publicKey *ecdsa.PublicKey, hdl *Handler, repo *Repository) server.HTTPServer {
	router := route.SetupRouter(
		log,
		cfg,
		publicKey,
		hdl.HealthHandler,
		hdl.AuthHandler,
		hdl.UserHandler,
		hdl.WebsiteHandler,
		hdl.PingHandler,
		hdl.WalletHandler,
		hdl.ReportHandler,
		hdl.APIKeyHandler,
		repo.APIKeyRepository,
	)

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)

	return httpServer
}

func initEBus(log *zap.Logger, cfg *config.Kafka, repo *Repository) (*EBus, error) {
	producer, err := kafka.NewProducer(
		cfg.Brokers,
		kafka.WithBalancer(kafka.RoundRobin),
		kafka.WithRequiredAcks(kafka.RequireAll),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka producer: %w", err)
	}

	log.Debug("Kafka producer initialized")

	outboxCfg := outbox.Config{
		Name:         cfg.Producer.Name,
		WorkerCount:  cfg.Producer.WorkerCount,
		PollInterval: cfg.Producer.PollInterval,
		BatchSize:    cfg.Producer.BatchSize,
	}

	publisher := outbox.NewPublisher(
		log,
		outboxCfg,
		producer,
		repo.OutboxRepository,
	)

	log.Debug("Outbox publisher initialized")

	return &EBus{
		OutboxPublisher: publisher,
	}, nil
}

func initSweeper(log *zap.Logger, cfg *config.Reconcile, repo *Repository) Sweeper {
	if !cfg.Enabled {
		return nil
	}

	sweeper := reconcile.NewSweeper(log, reconcile.Config{
		Interval: cfg.Interval,
		Grace:    cfg.Grace,
	}, repo.PingRepository)

	log.Debug("Reconcile sweeper initialized")

	return sweeper
}

func initGeo(log *zap.Logger, cfg *config.Geo) (geoip.GeoIP, error) {
	geo, err := geoip.NewGeo(cfg.GeoLiteCountryPath, cfg.GeoLiteASNPath)
	if err != nil {
		return geo, fmt.Errorf("failed to init geoip: %w", err)
	}

	log.Debug("GeoIP initialized")

	return geo, nil
}
