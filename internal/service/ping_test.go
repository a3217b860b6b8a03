package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"watchpay-back/internal/apperrors"
	"watchpay-back/internal/model"
	"watchpay-back/internal/payment"
	"watchpay-back/internal/repository"
	"watchpay-back/pkg/agentclient"
)

// fakeTx stands in for a pgx transaction. Writes made through the fake
// repositories are buffered and applied on Commit, discarded on
// Rollback, which mirrors what the real pool gives us.
type fakeTx struct {
	pgx.Tx

	mu         sync.Mutex
	committed  bool
	onCommit   []func()
	onRollback []func()
}

func (t *fakeTx) deferToCommit(apply, undo func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommit = append(t.onCommit, apply)
	t.onRollback = append(t.onRollback, undo)
}

func (t *fakeTx) Commit(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = true
	for _, apply := range t.onCommit {
		apply()
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed {
		return pgx.ErrTxClosed
	}
	for _, undo := range t.onRollback {
		undo()
	}
	t.onRollback = nil
	return nil
}

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{}, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
}

func (r *fakeUserRepo) Pool() *pgxpool.Pool { return nil }

func (r *fakeUserRepo) InsertUser(_ context.Context, _ repository.RepoExtension, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = int64(len(r.users) + 1)
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) SelectUserByID(_ context.Context, _ repository.RepoExtension, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserDoesNotExist
	}
	return user, nil
}

func (r *fakeUserRepo) SelectUserByEmail(_ context.Context, _ repository.RepoExtension, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserDoesNotExist
}

func (r *fakeUserRepo) UpdateUser(context.Context, repository.RepoExtension, int64, *model.UserUpdateRequest) error {
	return nil
}

func (r *fakeUserRepo) Delete(context.Context, repository.RepoExtension, int64) error {
	return nil
}

type fakeWebsiteRepo struct {
	mu       sync.Mutex
	websites map[int64]*model.Website
}

func (r *fakeWebsiteRepo) Pool() *pgxpool.Pool { return nil }

func (r *fakeWebsiteRepo) InsertWebsite(_ context.Context, _ repository.RepoExtension, website *model.Website) (*model.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	website.ID = int64(len(r.websites) + 1)
	r.websites[website.ID] = website
	return website, nil
}

func (r *fakeWebsiteRepo) SelectWebsiteByID(_ context.Context, _ repository.RepoExtension, id int64) (*model.Website, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	website, ok := r.websites[id]
	if !ok {
		return nil, apperrors.ErrWebsiteDoesNotExist
	}
	copied := *website
	return &copied, nil
}

func (r *fakeWebsiteRepo) List(context.Context, repository.RepoExtension, model.WebsiteQueryParams) ([]model.Website, int, error) {
	return nil, 0, nil
}

func (r *fakeWebsiteRepo) Update(context.Context, repository.RepoExtension, int64, *model.WebsiteUpdateRequest) error {
	return nil
}

func (r *fakeWebsiteRepo) Delete(context.Context, repository.RepoExtension, int64) error {
	return nil
}

func (r *fakeWebsiteRepo) UpdateStatus(_ context.Context, ext repository.RepoExtension, id int64, status string) error {
	apply := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if website, ok := r.websites[id]; ok {
			website.Status = status
		}
	}
	if tx, ok := ext.(*fakeTx); ok {
		tx.deferToCommit(apply, func() {})
		return nil
	}
	apply()
	return nil
}

type fakePingRepo struct {
	mu     sync.Mutex
	nextID int64
	pings  map[int64]model.Ping
}

func (r *fakePingRepo) Pool() *pgxpool.Pool { return nil }

func (r *fakePingRepo) InsertPing(_ context.Context, ext repository.RepoExtension, ping *model.Ping) error {
	r.mu.Lock()
	r.nextID++
	ping.ID = r.nextID
	r.mu.Unlock()

	copied := *ping
	apply := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.pings[copied.ID] = copied
	}
	if tx, ok := ext.(*fakeTx); ok {
		tx.deferToCommit(apply, func() {})
		return nil
	}
	apply()
	return nil
}

func (r *fakePingRepo) SelectPingByID(_ context.Context, _ repository.RepoExtension, id int64) (*model.Ping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ping, ok := r.pings[id]
	if !ok {
		return nil, apperrors.ErrPingDoesNotExist
	}
	return &ping, nil
}

func (r *fakePingRepo) SelectPingsByWebsiteID(_ context.Context, _ repository.RepoExtension, websiteID int64, _ int) ([]model.Ping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Ping
	for _, ping := range r.pings {
		if ping.WebsiteID == websiteID {
			out = append(out, ping)
		}
	}
	return out, nil
}

func (r *fakePingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pings)
}

// fakeTxRepo models the ledger's primary-key guarantee: a token may be
// reserved by at most one in-flight transaction and is burned for good
// once that transaction commits.
type fakeTxRepo struct {
	mu       sync.Mutex
	used     map[string]model.OnChainTransaction
	reserved map[string]bool
}

func (r *fakeTxRepo) Pool() *pgxpool.Pool { return nil }

func (r *fakeTxRepo) InsertTransaction(_ context.Context, ext repository.RepoExtension, rec *model.OnChainTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.used[rec.TxHash]; taken {
		return fmt.Errorf("insert transaction: %w", apperrors.ErrTokenAlreadyUsed)
	}
	if r.reserved[rec.TxHash] {
		return fmt.Errorf("insert transaction: %w", apperrors.ErrTokenAlreadyUsed)
	}

	r.reserved[rec.TxHash] = true
	copied := *rec

	apply := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.reserved, copied.TxHash)
		r.used[copied.TxHash] = copied
	}
	undo := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.reserved, copied.TxHash)
	}

	if tx, ok := ext.(*fakeTx); ok {
		tx.deferToCommit(apply, undo)
		return nil
	}
	apply()
	return nil
}

func (r *fakeTxRepo) IsConsumed(_ context.Context, _ repository.RepoExtension, txHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.used[txHash]
	return ok, nil
}

func (r *fakeTxRepo) SelectTransactionsByUser(_ context.Context, _ repository.RepoExtension, userID int64) ([]model.OnChainTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OnChainTransaction
	for _, tx := range r.used {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	mu       sync.Mutex
	messages []model.OutboxMessage
}

func (r *fakeOutboxRepo) InsertMessage(_ context.Context, ext repository.RepoExtension, message model.OutboxMessage) error {
	apply := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = append(r.messages, message)
	}
	if tx, ok := ext.(*fakeTx); ok {
		tx.deferToCommit(apply, func() {})
		return nil
	}
	apply()
	return nil
}

func (r *fakeOutboxRepo) UpdateAsSent(context.Context, repository.RepoExtension, uuid.UUID) error {
	return nil
}

func (r *fakeOutboxRepo) SelectUnsentBatch(context.Context, repository.RepoExtension, int) ([]model.OutboxMessage, error) {
	return nil, nil
}

type fakeAgent struct {
	mu     sync.Mutex
	result *agentclient.Result
	err    error
	calls  int
}

func (a *fakeAgent) Probe(context.Context, string, string) (*agentclient.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	copied := *a.result
	return &copied, nil
}

type fakeGeo struct{}

func (fakeGeo) Region(net.IP) string { return "eu-central" }

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendHTML(to, _, _ string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

type pingHarness struct {
	svc      *PingService
	users    *fakeUserRepo
	websites *fakeWebsiteRepo
	pings    *fakePingRepo
	ledger   *fakeTxRepo
	outbox   *fakeOutboxRepo
	agent    *fakeAgent
	mail     *fakeMailer
}

func newPingHarness(t *testing.T) *pingHarness {
	t.Helper()

	latency := int64(42)

	h := &pingHarness{
		users:    &fakeUserRepo{users: make(map[int64]*model.User)},
		websites: &fakeWebsiteRepo{websites: make(map[int64]*model.Website)},
		pings:    &fakePingRepo{pings: make(map[int64]model.Ping)},
		ledger: &fakeTxRepo{
			used:     make(map[string]model.OnChainTransaction),
			reserved: make(map[string]bool),
		},
		outbox: &fakeOutboxRepo{},
		agent: &fakeAgent{result: &agentclient.Result{
			IsUp:      true,
			LatencyMS: &latency,
			Region:    "test",
		}},
		mail: &fakeMailer{},
	}

	h.svc = NewPingService(
		zap.NewNop(),
		fakeDB{},
		h.pings,
		h.websites,
		h.users,
		h.ledger,
		h.outbox,
		payment.NewFixedPoolVerifier(0),
		h.agent,
		fakeGeo{},
		h.mail,
		PingConfig{ContractAddress: "0xc0ffee"},
	)

	// User 1 owns website 1; user 2 is the visitor doing manual pings.
	_, _ = h.users.InsertUser(context.Background(), nil, &model.User{
		Name:     "owner",
		Email:    "owner@example.com",
		AgentURL: "http://owner-agent:9090",
	})
	_, _ = h.users.InsertUser(context.Background(), nil, &model.User{
		Name:     "visitor",
		Email:    "visitor@example.com",
		AgentURL: "http://visitor-agent:9090",
	})
	_, _ = h.websites.InsertWebsite(context.Background(), nil, &model.Website{
		OwnerID:       1,
		URL:           "https://example.com",
		Status:        model.WebsiteStatusUnknown,
		AlertsEnabled: true,
	})

	return h
}

func manualReq(txHash string) *model.ManualPingRequest {
	return &model.ManualPingRequest{
		WebsiteID: 1,
		URL:       "https://example.com",
		TxHash:    txHash,
	}
}

func TestManualPing(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	result, err := h.svc.ManualPing(ctx, 2, manualReq("TX-001"), nil)
	if err != nil {
		t.Fatalf("ManualPing() error = %v", err)
	}

	if result.Ping.ID == 0 {
		t.Error("ping was not assigned an id")
	}
	if !result.Result.IsUp {
		t.Error("IsUp = false, want true")
	}
	if result.Result.LatencyMS == nil || *result.Result.LatencyMS != 42 {
		t.Errorf("LatencyMS = %v, want 42", result.Result.LatencyMS)
	}
	if result.Result.Region != "test" {
		t.Errorf("Region = %q, want test", result.Result.Region)
	}
	if result.OnChain.TxHash != "TX-001" {
		t.Errorf("OnChain.TxHash = %q, want TX-001", result.OnChain.TxHash)
	}
	if result.OnChain.Amount != payment.DefaultPingCostETH {
		t.Errorf("OnChain.Amount = %v, want %v", result.OnChain.Amount, payment.DefaultPingCostETH)
	}
	if !result.OnChain.Simulated {
		t.Error("OnChain.Simulated = false, want true")
	}

	// Ping and ledger entry committed together.
	if h.pings.count() != 1 {
		t.Errorf("recorded pings = %d, want 1", h.pings.count())
	}
	rec, ok := h.ledger.used["TX-001"]
	if !ok {
		t.Fatal("ledger has no entry for TX-001")
	}
	if rec.PingID == nil || *rec.PingID != result.Ping.ID {
		t.Errorf("ledger PingID = %v, want %d", rec.PingID, result.Ping.ID)
	}

	website, _ := h.websites.SelectWebsiteByID(ctx, nil, 1)
	if website.Status != model.WebsiteStatusUp {
		t.Errorf("website status = %q, want up", website.Status)
	}

	if len(h.outbox.messages) != 1 {
		t.Errorf("outbox messages = %d, want 1", len(h.outbox.messages))
	}

	// Burned token cannot be spent again.
	if _, err := h.svc.ManualPing(ctx, 2, manualReq("TX-001"), nil); !errors.Is(err, apperrors.ErrTokenAlreadyUsed) {
		t.Errorf("second spend error = %v, want ErrTokenAlreadyUsed", err)
	}
	if h.pings.count() != 1 {
		t.Errorf("recorded pings after replay = %d, want 1", h.pings.count())
	}
}

func TestManualPingSelfPingForbidden(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	_, err := h.svc.ManualPing(ctx, 1, manualReq("TX-002"), nil)
	if !errors.Is(err, apperrors.ErrSelfPingForbidden) {
		t.Fatalf("ManualPing(owner) error = %v, want ErrSelfPingForbidden", err)
	}

	// The rejected request must not burn the token.
	if _, err := h.svc.ManualPing(ctx, 2, manualReq("TX-002"), nil); err != nil {
		t.Fatalf("token should still be spendable, got %v", err)
	}
}

func TestManualPingInvalidToken(t *testing.T) {
	h := newPingHarness(t)

	_, err := h.svc.ManualPing(context.Background(), 2, manualReq("TX-999"), nil)
	if !errors.Is(err, apperrors.ErrInvalidPaymentToken) {
		t.Fatalf("ManualPing() error = %v, want ErrInvalidPaymentToken", err)
	}
	if h.pings.count() != 0 {
		t.Errorf("recorded pings = %d, want 0", h.pings.count())
	}
}

func TestManualPingNoAgentConfigured(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	_, _ = h.users.InsertUser(ctx, nil, &model.User{
		Name:  "agentless",
		Email: "agentless@example.com",
	})

	_, err := h.svc.ManualPing(ctx, 3, manualReq("TX-003"), nil)
	if !errors.Is(err, apperrors.ErrNoAgentConfigured) {
		t.Fatalf("ManualPing() error = %v, want ErrNoAgentConfigured", err)
	}
	if h.agent.calls != 0 {
		t.Errorf("agent calls = %d, want 0", h.agent.calls)
	}
}

func TestManualPingDispatchFailureKeepsToken(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	h.agent.err = errors.New("connection refused")

	_, err := h.svc.ManualPing(ctx, 2, manualReq("TX-004"), nil)
	if !errors.Is(err, apperrors.ErrDispatchFailed) {
		t.Fatalf("ManualPing() error = %v, want ErrDispatchFailed", err)
	}
	if h.pings.count() != 0 {
		t.Errorf("recorded pings = %d, want 0", h.pings.count())
	}

	// Agent recovers; the same token must still work.
	h.agent.err = nil
	if _, err := h.svc.ManualPing(ctx, 2, manualReq("TX-004"), nil); err != nil {
		t.Fatalf("retry after dispatch failure error = %v", err)
	}
}

func TestManualPingWebsiteNotFound(t *testing.T) {
	h := newPingHarness(t)

	req := manualReq("TX-005")
	req.WebsiteID = 404

	_, err := h.svc.ManualPing(context.Background(), 2, req, nil)
	if !errors.Is(err, apperrors.ErrWebsiteDoesNotExist) {
		t.Fatalf("ManualPing() error = %v, want ErrWebsiteDoesNotExist", err)
	}
}

func TestManualPingRegionFallback(t *testing.T) {
	h := newPingHarness(t)

	h.agent.result.Region = ""

	result, err := h.svc.ManualPing(context.Background(), 2, manualReq("TX-006"), net.ParseIP("203.0.113.7"))
	if err != nil {
		t.Fatalf("ManualPing() error = %v", err)
	}
	if result.Ping.Region != "eu-central" {
		t.Errorf("Region = %q, want geoip fallback eu-central", result.Ping.Region)
	}
}

func TestManualPingDownAlertsOwner(t *testing.T) {
	h := newPingHarness(t)

	h.agent.result.IsUp = false

	if _, err := h.svc.ManualPing(context.Background(), 2, manualReq("TX-007"), nil); err != nil {
		t.Fatalf("ManualPing() error = %v", err)
	}

	website, _ := h.websites.SelectWebsiteByID(context.Background(), nil, 1)
	if website.Status != model.WebsiteStatusDown {
		t.Errorf("website status = %q, want down", website.Status)
	}

	if len(h.mail.sent) != 1 || h.mail.sent[0] != "owner@example.com" {
		t.Errorf("alerts sent to %v, want [owner@example.com]", h.mail.sent)
	}
}

func TestManualPingConcurrentSameToken(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	const racers = 16

	var wg sync.WaitGroup
	errs := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.ManualPing(ctx, 2, manualReq("TX-010"), nil)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var wins, losses int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperrors.ErrTokenAlreadyUsed):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if losses != racers-1 {
		t.Errorf("losers = %d, want %d", losses, racers-1)
	}
	if h.pings.count() != 1 {
		t.Errorf("recorded pings = %d, want 1", h.pings.count())
	}
}

func TestIngestValidatorPing(t *testing.T) {
	h := newPingHarness(t)
	ctx := context.Background()

	latency := int64(120)
	ping, err := h.svc.IngestValidatorPing(ctx, 2, &model.ValidatorPingRequest{
		WebsiteID: 1,
		IsUp:      true,
		LatencyMS: &latency,
		Region:    "ap-southeast",
	})
	if err != nil {
		t.Fatalf("IngestValidatorPing() error = %v", err)
	}

	if ping.TxHash != "" {
		t.Errorf("TxHash = %q, want empty for validator pings", ping.TxHash)
	}
	if h.pings.count() != 1 {
		t.Errorf("recorded pings = %d, want 1", h.pings.count())
	}
	if len(h.ledger.used) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(h.ledger.used))
	}
}
