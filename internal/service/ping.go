package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
	"watchpay-back/internal/payment"
	"watchpay-back/internal/repository"
	"watchpay-back/pkg/agentclient"
	"watchpay-back/pkg/mailer"
)

const pingRecordedTopic = "pings.recorded"

const (
	downAlertSubject = "Your website looks down"

	downAlertBody = `
		<h2>Hi, {{.Name}}!</h2>
		<p>A crowdsourced check just reported <b>{{.URL}}</b> as unreachable from region {{.Region}}.</p>
		<p>You may want to take a look.</p>
	`
)

// DB begins transactions. Satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PingRepository interface {
	Pool() *pgxpool.Pool

	InsertPing(ctx context.Context, ext repository.RepoExtension, ping *model.Ping) error
	SelectPingByID(ctx context.Context, ext repository.RepoExtension, id int64) (*model.Ping, error)
	SelectPingsByWebsiteID(ctx context.Context, ext repository.RepoExtension, websiteID int64, limit int) ([]model.Ping, error)
}

type TransactionRepository interface {
	Pool() *pgxpool.Pool

	InsertTransaction(ctx context.Context, ext repository.RepoExtension, tx *model.OnChainTransaction) error
	IsConsumed(ctx context.Context, ext repository.RepoExtension, txHash string) (bool, error)
	SelectTransactionsByUser(ctx context.Context, ext repository.RepoExtension, userID int64) ([]model.OnChainTransaction, error)
}

type OutboxRepository interface {
	InsertMessage(ctx context.Context, ext repository.RepoExtension, message model.OutboxMessage) error
	UpdateAsSent(ctx context.Context, ext repository.RepoExtension, messageID uuid.UUID) error
	SelectUnsentBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.OutboxMessage, error)
}

type AgentClient interface {
	Probe(ctx context.Context, agentURL, targetURL string) (*agentclient.Result, error)
}

type GeoIPDB interface {
	Region(ip net.IP) string
}

type PingConfig struct {
	AllowSelfPing   bool
	ContractAddress string
	HistoryLimit    int
}

type PingService struct {
	log         *zap.Logger
	db          DB
	pingRepo    PingRepository
	websiteRepo WebsiteRepository
	userRepo    UserRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	verifier    payment.Verifier
	agents      AgentClient
	geo         GeoIPDB
	mlr         mailer.Mailer
	cfg         PingConfig
}

func NewPingService(
	log *zap.Logger,
	db DB,
	pingRepo PingRepository,
	websiteRepo WebsiteRepository,
	userRepo UserRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	verifier payment.Verifier,
	agents AgentClient,
	geo GeoIPDB,
	mlr mailer.Mailer,
	cfg PingConfig,
) *PingService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}

	return &PingService{
		log:         log,
		db:          db,
		pingRepo:    pingRepo,
		websiteRepo: websiteRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		verifier:    verifier,
		agents:      agents,
		geo:         geo,
		mlr:         mlr,
		cfg:         cfg,
	}
}

// ManualPing runs the paid uptime check end to end: guard the request,
// validate the payment token, dispatch the probe to the requester's
// agent, then burn the token and record the result in one database
// transaction. The probe happens before any write, a failed dispatch
// must leave the token spendable.
func (s *PingService) ManualPing(ctx context.Context, userID int64, req *model.ManualPingRequest, clientIP net.IP) (_ *model.ManualPingResult, err error) {
	user, err := s.userRepo.SelectUserByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}

	website, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, req.WebsiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	if website.OwnerID == user.ID && !s.cfg.AllowSelfPing {
		return nil, apperrors.ErrSelfPingForbidden
	}

	receipt, err := s.verifier.Verify(ctx, req.TxHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment token: %w", err)
	}

	// Advisory precheck so an obviously burned token fails before we
	// bother an agent. The ledger primary key is the real guarantee.
	consumed, err := s.txRepo.IsConsumed(ctx, nil, req.TxHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment token: %w", err)
	}
	if consumed {
		return nil, apperrors.ErrTokenAlreadyUsed
	}

	if user.AgentURL == "" {
		return nil, apperrors.ErrNoAgentConfigured
	}

	probe, err := s.agents.Probe(ctx, user.AgentURL, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrDispatchFailed, err)
	}

	region := probe.Region
	if region == "" {
		region = s.geo.Region(clientIP)
	}

	ping := &model.Ping{
		WebsiteID: website.ID,
		UserID:    user.ID,
		TxHash:    receipt.TxHash,
		IsUp:      probe.IsUp,
		LatencyMS: probe.LatencyMS,
		Region:    region,
		FeePaid:   receipt.Amount,
	}

	if err := s.record(ctx, ping, receipt, website); err != nil {
		return nil, err
	}

	if !ping.IsUp && website.AlertsEnabled {
		s.alertOwner(ctx, website, region)
	}

	return &model.ManualPingResult{
		Ping: ping,
		OnChain: model.OnChainSummary{
			TxHash:    receipt.TxHash,
			Amount:    receipt.Amount,
			GasUsed:   receipt.GasUsed,
			Simulated: receipt.Simulated,
		},
		Result: model.ProbeResult{
			IsUp:      probe.IsUp,
			LatencyMS: probe.LatencyMS,
			Region:    region,
		},
	}, nil
}

// record burns the token and persists the ping atomically. The ledger
// insert and the ping insert commit together or not at all.
func (s *PingService) record(ctx context.Context, ping *model.Ping, receipt *payment.Receipt, website *model.Website) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrPersistenceFailed, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := s.pingRepo.InsertPing(ctx, tx, ping); err != nil {
		return fmt.Errorf("%w: failed to insert ping: %w", apperrors.ErrPersistenceFailed, err)
	}

	record := &model.OnChainTransaction{
		TxHash:       receipt.TxHash,
		UserID:       ping.UserID,
		PingID:       &ping.ID,
		TokenAddress: s.cfg.ContractAddress,
		TokenAmount:  receipt.Amount,
		GasUsed:      receipt.GasUsed,
	}

	if err := s.txRepo.InsertTransaction(ctx, tx, record); err != nil {
		// Lost the race for the token; err already carries
		// ErrTokenAlreadyUsed from the ledger.
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	status := model.WebsiteStatusDown
	if ping.IsUp {
		status = model.WebsiteStatusUp
	}

	if err := s.websiteRepo.UpdateStatus(ctx, tx, website.ID, status); err != nil {
		return fmt.Errorf("%w: failed to update website status: %w", apperrors.ErrPersistenceFailed, err)
	}

	if err := s.enqueueEvent(ctx, tx, ping); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrPersistenceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: error committing transaction: %w", apperrors.ErrPersistenceFailed, err)
	}

	return nil
}

func (s *PingService) enqueueEvent(ctx context.Context, tx pgx.Tx, ping *model.Ping) error {
	event := model.PingRecordedEvent{
		PingID:    ping.ID,
		WebsiteID: ping.WebsiteID,
		UserID:    ping.UserID,
		TxHash:    ping.TxHash,
		IsUp:      ping.IsUp,
		Region:    ping.Region,
		FeePaid:   ping.FeePaid,
		CreatedAt: ping.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := model.OutboxMessage{
		ID:      uuid.New(),
		Topic:   pingRecordedTopic,
		Payload: payload,
	}

	if err := s.outboxRepo.InsertMessage(ctx, tx, message); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

func (s *PingService) alertOwner(ctx context.Context, website *model.Website, region string) {
	owner, err := s.userRepo.SelectUserByID(ctx, nil, website.OwnerID)
	if err != nil {
		s.log.Warn("failed to select website owner for alert", zap.Error(err))
		return
	}

	data := map[string]any{"Name": owner.Name, "URL": website.URL, "Region": region}
	if err := s.mlr.SendHTML(owner.Email, downAlertSubject, downAlertBody, data); err != nil {
		s.log.Warn("failed to send down alert",
			zap.Int64("wid", website.ID),
			zap.Error(err),
		)
	}
}

// IngestValidatorPing records an automated check submitted by a
// validator agent. No payment token is involved, so no ledger row.
func (s *PingService) IngestValidatorPing(ctx context.Context, userID int64, req *model.ValidatorPingRequest) (_ *model.Ping, err error) {
	website, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, req.WebsiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	ping := &model.Ping{
		WebsiteID: website.ID,
		UserID:    userID,
		IsUp:      req.IsUp,
		LatencyMS: req.LatencyMS,
		Region:    req.Region,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := s.pingRepo.InsertPing(ctx, tx, ping); err != nil {
		return nil, fmt.Errorf("failed to insert ping: %w", err)
	}

	status := model.WebsiteStatusDown
	if ping.IsUp {
		status = model.WebsiteStatusUp
	}

	if err := s.websiteRepo.UpdateStatus(ctx, tx, website.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update website status: %w", err)
	}

	if err := s.enqueueEvent(ctx, tx, ping); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	if !ping.IsUp && website.AlertsEnabled {
		s.alertOwner(ctx, website, ping.Region)
	}

	return ping, nil
}

func (s *PingService) GetPing(ctx context.Context, id int64) (*model.Ping, error) {
	ping, err := s.pingRepo.SelectPingByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select ping: %w", err)
	}

	return ping, nil
}

func (s *PingService) ListByWebsite(ctx context.Context, websiteID int64) ([]model.Ping, error) {
	if _, err := s.websiteRepo.SelectWebsiteByID(ctx, nil, websiteID); err != nil {
		return nil, fmt.Errorf("failed to select website: %w", err)
	}

	pings, err := s.pingRepo.SelectPingsByWebsiteID(ctx, nil, websiteID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to select pings: %w", err)
	}

	return pings, nil
}
