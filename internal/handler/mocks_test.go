package handler

import (
	"context"
	"net/http"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"
)

const testUserID = "5b0c3f0e-8a53-4e0e-9c55-0d3a3a7a1c11"

func createContextWithUser(r *http.Request, user *domain.SupabaseUser) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	ctx = context.WithValue(ctx, tokenContextKey, "test-token")
	return r.WithContext(ctx)
}

func testUser() *domain.SupabaseUser {
	return &domain.SupabaseUser{ID: testUserID, Email: "founder@example.com", Role: "authenticated"}
}

type mockAuthService struct {
	user          *domain.SupabaseUser
	err           error
	lastToken     string
	authenticated []string
	validated     int
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.validated++
	return m.check(token)
}

func (m *mockAuthService) check(token string) (*domain.SupabaseUser, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// Authenticate stands in for validate-then-provision.
func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*domain.SupabaseUser, error) {
	m.authenticated = append(m.authenticated, token)
	return m.check(token)
}

type mockPlanResolver struct {
	state   domain.PlanState
	cleared [][]string
}

func (m *mockPlanResolver) Resolve(ctx context.Context, userID string) domain.PlanState {
	return m.state
}

func (m *mockPlanResolver) ResolveFromStorage(ctx context.Context, userID string) (domain.PlanState, error) {
	return m.state, nil
}

func (m *mockPlanResolver) GetUserPlan(ctx context.Context, userID string) entitlements.Plan {
	return m.state.Plan
}

func (m *mockPlanResolver) ClearPlanCache(userIDs ...string) {
	m.cleared = append(m.cleared, userIDs)
}

func (m *mockPlanResolver) EnsureSubscription(ctx context.Context, userID string) error {
	return nil
}

type mockUsageService struct {
	summary []domain.UsageDecision
	lastLoc *time.Location
}

func (m *mockUsageService) Count(ctx context.Context, userID string, resource domain.Resource, loc *time.Location) (int64, error) {
	return 0, nil
}

func (m *mockUsageService) Check(ctx context.Context, userID string, plan entitlements.Plan, resource domain.Resource, loc *time.Location) domain.UsageDecision {
	return domain.UsageDecision{Resource: resource, Allowed: true}
}

func (m *mockUsageService) Summary(ctx context.Context, userID string, plan entitlements.Plan, loc *time.Location) ([]domain.UsageDecision, error) {
	m.lastLoc = loc
	return m.summary, nil
}

type mockSubscriptionRepository struct {
	public *domain.PublicSubscription
	err    error
}

func (m *mockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) CreateDefault(ctx context.Context, userID string) (*domain.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) UpsertForUser(ctx context.Context, sub *domain.Subscription) error {
	return nil
}

func (m *mockSubscriptionRepository) UpdateByCustomerID(ctx context.Context, customerID string, patch domain.SubscriptionPatch) ([]string, error) {
	return nil, nil
}

func (m *mockSubscriptionRepository) GetPublicByUserID(ctx context.Context, userID, token string) (*domain.PublicSubscription, error) {
	return m.public, m.err
}

type mockEntitlementService struct {
	denial *domain.PlanDenial
}

func (m *mockEntitlementService) AuthorizeFeature(ctx context.Context, userID, feature string) *domain.PlanDenial {
	return m.denial
}

func (m *mockEntitlementService) AuthorizeGeneration(ctx context.Context, userID, mode string) (*domain.PlanDenial, domain.GenerationCheck) {
	return m.denial, domain.GenerationCheck{}
}

func (m *mockEntitlementService) AuthorizeResource(ctx context.Context, userID string, resource domain.Resource, loc *time.Location) (*domain.PlanDenial, domain.UsageDecision) {
	return m.denial, domain.UsageDecision{}
}

type mockIdeaService struct {
	err       error
	lastMode  string
	lastNiche string
	lastLoc   *time.Location
}

func (m *mockIdeaService) GenerateIdeas(ctx context.Context, userID, mode, prompt string) (*domain.IdeaGeneration, error) {
	m.lastMode = mode
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IdeaGeneration{UserID: userID, Mode: mode, Ideas: []domain.Idea{{Title: "Idea", Summary: "Summary"}}}, nil
}

func (m *mockIdeaService) SaveIdea(ctx context.Context, idea *domain.SavedIdea) (*domain.SavedIdea, error) {
	if m.err != nil {
		return nil, m.err
	}
	return idea, nil
}

func (m *mockIdeaService) CreateBlueprint(ctx context.Context, bp *domain.Blueprint) (*domain.Blueprint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return bp, nil
}

func (m *mockIdeaService) CreateWorkspaceDocument(ctx context.Context, doc *domain.WorkspaceDocument) (*domain.WorkspaceDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	return doc, nil
}

func (m *mockIdeaService) ScanRadar(ctx context.Context, userID, niche string, loc *time.Location) ([]domain.RadarSignal, error) {
	m.lastNiche = niche
	m.lastLoc = loc
	if m.err != nil {
		return nil, m.err
	}
	return []domain.RadarSignal{{Title: "Signal", Score: 80}}, nil
}

type mockBillingService struct {
	err           error
	lastSignature string
	lastPayload   []byte
}

func (m *mockBillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	m.lastPayload = payload
	m.lastSignature = signature
	return m.err
}
