package service

import (
	"context"
	"sync"
	"time"

	"founder-coach-api/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{messages: []string{}}
}

func (m *MockLogger) add(line string) {
	m.mu.Lock()
	m.messages = append(m.messages, line)
	m.mu.Unlock()
}

func (m *MockLogger) Info(msg string, args ...interface{})  { m.add("INFO: " + msg) }
func (m *MockLogger) Debug(msg string, args ...interface{}) { m.add("DEBUG: " + msg) }
func (m *MockLogger) Warn(msg string, args ...interface{})  { m.add("WARN: " + msg) }
func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.add("ERROR: " + msg)
}

// MockSubscriptionRepository keeps rows in memory and counts reads.
type MockSubscriptionRepository struct {
	mu      sync.Mutex
	rows    map[string]*domain.Subscription
	reads   int
	readErr error
	delay   time.Duration

	upserts []domain.Subscription
	patches []domain.SubscriptionPatch
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{rows: make(map[string]*domain.Subscription)}
}

func (m *MockSubscriptionRepository) put(sub *domain.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.rows[sub.UserID] = &cp
}

func (m *MockSubscriptionRepository) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	m.mu.Lock()
	m.reads++
	delay, err := m.delay, m.readErr
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[userID]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) CreateDefault(ctx context.Context, userID string) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[userID]; ok {
		cp := *row
		return &cp, nil
	}
	row := &domain.Subscription{UserID: userID, Plan: "free", Status: domain.StatusActive}
	m.rows[userID] = row
	cp := *row
	return &cp, nil
}

func (m *MockSubscriptionRepository) UpsertForUser(ctx context.Context, sub *domain.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.rows[sub.UserID] = &cp
	m.upserts = append(m.upserts, cp)
	return nil
}

func (m *MockSubscriptionRepository) UpdateByCustomerID(ctx context.Context, customerID string, patch domain.SubscriptionPatch) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches = append(m.patches, patch)

	var ids []string
	for id, row := range m.rows {
		if row.StripeCustomerID != customerID {
			continue
		}
		if patch.Plan != "" {
			row.Plan = patch.Plan
		}
		if patch.Status != "" {
			row.Status = patch.Status
		}
		if patch.CurrentPeriodEnd != nil {
			row.CurrentPeriodEnd = patch.CurrentPeriodEnd
		}
		if patch.StripeSubscriptionID != "" {
			row.StripeSubscriptionID = patch.StripeSubscriptionID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockSubscriptionRepository) GetPublicByUserID(ctx context.Context, userID, token string) (*domain.PublicSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &domain.PublicSubscription{Plan: row.Plan, Status: row.Status, CurrentPeriodEnd: row.CurrentPeriodEnd}, nil
}

// MockUsageRepository returns fixed counts per table.
type MockUsageRepository struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
	calls  int
	since  map[string]*time.Time
}

func NewMockUsageRepository() *MockUsageRepository {
	return &MockUsageRepository{counts: make(map[string]int64), since: make(map[string]*time.Time)}
}

func (m *MockUsageRepository) set(table string, n int64) {
	m.mu.Lock()
	m.counts[table] = n
	m.mu.Unlock()
}

func (m *MockUsageRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockUsageRepository) CountRows(ctx context.Context, table, userID string, since *time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.since[table] = since
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[table], nil
}

// MockContentRepository records inserted rows.
type MockContentRepository struct {
	mu          sync.Mutex
	generations []*domain.IdeaGeneration
	saved       []*domain.SavedIdea
	blueprints  []*domain.Blueprint
	documents   []*domain.WorkspaceDocument
	signals     []domain.RadarSignal
}

func (m *MockContentRepository) InsertIdeaGeneration(ctx context.Context, gen *domain.IdeaGeneration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, gen)
	return nil
}

func (m *MockContentRepository) InsertSavedIdea(ctx context.Context, idea *domain.SavedIdea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, idea)
	return nil
}

func (m *MockContentRepository) InsertBlueprint(ctx context.Context, bp *domain.Blueprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blueprints = append(m.blueprints, bp)
	return nil
}

func (m *MockContentRepository) InsertWorkspaceDocument(ctx context.Context, doc *domain.WorkspaceDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, doc)
	return nil
}

func (m *MockContentRepository) InsertRadarSignals(ctx context.Context, signals []domain.RadarSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, signals...)
	return nil
}

// MockCompletionClient returns a canned response.
type MockCompletionClient struct {
	mu       sync.Mutex
	response *domain.CompletionResponse
	err      error
	requests []domain.CompletionRequest
}

func (m *MockCompletionClient) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockCompletionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
