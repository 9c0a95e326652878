package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/events"
	"github.com/spec-kit/game-rental-service/internal/payment"
	"github.com/spec-kit/game-rental-service/internal/verification"
)

func newTestConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret",
			AccessTokenTTLMinutes:  60,
			PartialTokenTTLMinutes: 5,
			CodeTTLSeconds:         300,
			TempCodeTTLSeconds:     180,
			GuardCodeTTLSeconds:    10800,
			BcryptCost:             4, // minimum cost keeps tests fast
		},
	}
}

func newTestStore(t *testing.T) (*verification.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return verification.NewStore(client), mr
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) lastCode(t *testing.T) events.CodeIssuedPayload {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if payload, ok := d.events[i].Payload.(events.CodeIssuedPayload); ok {
			return payload
		}
	}
	t.Fatal("no code event was published")
	return events.CodeIssuedPayload{}
}

func (d *recordingDispatcher) codeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, event := range d.events {
		if _, ok := event.Payload.(events.CodeIssuedPayload); ok {
			count++
		}
	}
	return count
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByUKey(_ context.Context, ukey string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.UKey == ukey {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) UpdateRoleByEmail(_ context.Context, email string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			user.Role = role
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeGameRepo is an in-memory GameRepository.
type fakeGameRepo struct {
	mu    sync.Mutex
	games map[int64]*domain.Game
}

func newFakeGameRepo(games ...*domain.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[int64]*domain.Game)}
	for _, game := range games {
		clone := *game
		repo.games[game.ID] = &clone
	}
	return repo
}

func (r *fakeGameRepo) List(_ context.Context, limit, offset int) ([]*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Game
	for _, game := range r.games {
		clone := *game
		out = append(out, &clone)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, id int64) (*domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *game
	return &clone, nil
}

func (r *fakeGameRepo) Update(_ context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *game
	r.games[game.ID] = &clone
	return nil
}

// fakeChangeRequestRepo is an in-memory ChangeRequestRepository.
type fakeChangeRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*domain.GameChangeRequest
}

func newFakeChangeRequestRepo() *fakeChangeRequestRepo {
	return &fakeChangeRequestRepo{requests: make(map[int64]*domain.GameChangeRequest)}
}

func (r *fakeChangeRequestRepo) Create(_ context.Context, req *domain.GameChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeChangeRequestRepo) GetByID(_ context.Context, id int64) (*domain.GameChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (r *fakeChangeRequestRepo) ListRecent(_ context.Context, limit int) ([]*domain.GameChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.GameChangeRequest
	for _, req := range r.requests {
		clone := *req
		out = append(out, &clone)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeChangeRequestRepo) UpdateStatus(_ context.Context, id int64, status domain.ChangeRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	req.Status = status
	return nil
}

// fakeOrderRepo is an in-memory OrderRepository.
type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders []*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo { return &fakeOrderRepo{} }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	clone := *order
	r.orders = append(r.orders, &clone)
	return nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			clone := *order
			out = append(out, &clone)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeAccountRepo is an in-memory AccountRepository.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*domain.GameAccount
	byGame   map[int64][]int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: make(map[int64]*domain.GameAccount),
		byGame:   make(map[int64][]int64),
	}
}

func (r *fakeAccountRepo) add(account *domain.GameAccount, gameIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *account
	r.accounts[account.SteamID64] = &clone
	for _, gameID := range gameIDs {
		r.byGame[gameID] = append(r.byGame[gameID], account.SteamID64)
	}
}

func (r *fakeAccountRepo) GetByID(_ context.Context, steamID64 int64) (*domain.GameAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[steamID64]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *account
	return &clone, nil
}

func (r *fakeAccountRepo) FindAvailableForGame(_ context.Context, gameID int64) (*domain.GameAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byGame[gameID]
	if len(ids) == 0 {
		return nil, pgx.ErrNoRows
	}
	clone := *r.accounts[ids[0]]
	return &clone, nil
}

// fakeFeedbackRepo is an in-memory FeedbackRepository.
type fakeFeedbackRepo struct {
	mu        sync.Mutex
	nextID    int64
	feedbacks []*domain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo { return &fakeFeedbackRepo{} }

func (r *fakeFeedbackRepo) Create(_ context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	feedback.ID = r.nextID
	clone := *feedback
	r.feedbacks = append(r.feedbacks, &clone)
	return nil
}

func (r *fakeFeedbackRepo) ListByGame(_ context.Context, gameID int64, limit int) ([]*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Feedback
	for _, fb := range r.feedbacks {
		if fb.GameID == gameID {
			clone := *fb
			out = append(out, &clone)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeBlobRemover records deleted keys.
type fakeBlobRemover struct {
	mu      sync.Mutex
	removed []string
}

func (r *fakeBlobRemover) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, key)
	return nil
}

// fakeProvider is a scriptable payment.Provider.
type fakeProvider struct {
	mu        sync.Mutex
	nextID    int
	verifyErr error
	settled   map[string]int64 // intent id -> amount
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{settled: make(map[string]int64)}
}

func (p *fakeProvider) CreateIntent(_ context.Context, amountCents int64, _ int64) (*payment.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := "pi_test_" + string(rune('a'+p.nextID))
	p.settled[id] = amountCents
	return &payment.Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (p *fakeProvider) VerifyIntent(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifyErr != nil {
		return p.verifyErr
	}
	if _, ok := p.settled[intentID]; !ok {
		return payment.ErrPaymentFailed
	}
	return nil
}

func (p *fakeProvider) ReceiptURL(_ context.Context, intentID string) (string, error) {
	return "https://receipts.example.com/" + intentID, nil
}
