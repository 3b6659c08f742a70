package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

type billingFixture struct {
	subs     *MockSubscriptionRepository
	resolver *planResolver
	service  *billingService
}

func newBillingFixture() *billingFixture {
	subs := NewMockSubscriptionRepository()
	resolver := newTestResolver(subs, newFakeClock(time.Now()))
	prices := map[string]entitlements.Plan{
		"price_pro_monthly":     entitlements.PlanPro,
		"price_founder_monthly": entitlements.PlanFounder,
	}
	return &billingFixture{
		subs:     subs,
		resolver: resolver,
		service:  NewBillingService(subs, resolver, testWebhookSecret, prices, NewMockLogger()),
	}
}

func signedEvent(t *testing.T, payload string) ([]byte, string) {
	t.Helper()
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Payload, signed.Header
}

func TestBillingService_CheckoutGrantsPlanAndClearsCache(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	assert.Equal(t, entitlements.PlanFree, f.resolver.GetUserPlan(ctx, testUserID))

	payload, sig := signedEvent(t, fmt.Sprintf(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","mode":"subscription","customer":"cus_1","subscription":"sub_1","client_reference_id":%q,"metadata":{"plan":"pro"}}}}`, testUserID))
	require.NoError(t, f.service.HandleWebhook(ctx, payload, sig))

	require.Len(t, f.subs.upserts, 1)
	assert.Equal(t, "cus_1", f.subs.upserts[0].StripeCustomerID)
	assert.Equal(t, entitlements.PlanPro, f.resolver.GetUserPlan(ctx, testUserID), "cache must be cleared for the user")
}

func TestBillingService_CheckoutWithoutPaidPlanIsIgnored(t *testing.T) {
	f := newBillingFixture()

	payload, sig := signedEvent(t, fmt.Sprintf(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_2","customer":"cus_2","client_reference_id":%q,"metadata":{"plan":"enterprise"}}}}`, testUserID))
	require.NoError(t, f.service.HandleWebhook(context.Background(), payload, sig))
	assert.Empty(t, f.subs.upserts)
}

func TestBillingService_SubscriptionUpdateMapsPrice(t *testing.T) {
	f := newBillingFixture()
	f.subs.put(&domain.Subscription{UserID: testUserID, Plan: "pro", Status: domain.StatusActive, StripeCustomerID: "cus_3"})
	ctx := context.Background()
	f.resolver.Resolve(ctx, testUserID)

	payload, sig := signedEvent(t, `{"id":"evt_3","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_3","customer":"cus_3","status":"active","items":{"data":[{"current_period_end":1893456000,"price":{"id":"price_founder_monthly"}}]}}}}`)
	require.NoError(t, f.service.HandleWebhook(ctx, payload, sig))

	state := f.resolver.Resolve(ctx, testUserID)
	assert.Equal(t, entitlements.PlanFounder, state.Plan)

	sub, _ := f.subs.GetByUserID(ctx, testUserID)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, time.Unix(1893456000, 0).UTC(), *sub.CurrentPeriodEnd)
}

func TestBillingService_UnknownPriceKeepsPlan(t *testing.T) {
	f := newBillingFixture()
	f.subs.put(&domain.Subscription{UserID: testUserID, Plan: "pro", Status: domain.StatusActive, StripeCustomerID: "cus_4"})

	payload, sig := signedEvent(t, `{"id":"evt_4","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_4","customer":"cus_4","status":"past_due","items":{"data":[{"price":{"id":"price_unknown"}}]}}}}`)
	require.NoError(t, f.service.HandleWebhook(context.Background(), payload, sig))

	sub, _ := f.subs.GetByUserID(context.Background(), testUserID)
	assert.Equal(t, "pro", sub.Plan)
	assert.Equal(t, domain.StatusPastDue, sub.Status)
	assert.Equal(t, entitlements.PlanFree, f.resolver.GetUserPlan(context.Background(), testUserID))
}

func TestBillingService_SubscriptionBeforeCheckoutUsesMetadata(t *testing.T) {
	f := newBillingFixture()

	payload, sig := signedEvent(t, fmt.Sprintf(`{"id":"evt_5","object":"event","type":"customer.subscription.created","data":{"object":{"id":"sub_5","customer":"cus_5","status":"trialing","metadata":{"user_id":%q},"items":{"data":[{"price":{"id":"price_pro_monthly"}}]}}}}`, testUserID))
	require.NoError(t, f.service.HandleWebhook(context.Background(), payload, sig))

	require.Len(t, f.subs.upserts, 1)
	assert.Equal(t, "pro", f.subs.upserts[0].Plan)
	assert.Equal(t, domain.StatusTrialing, f.subs.upserts[0].Status)
}

func TestBillingService_DeletionDowngrades(t *testing.T) {
	f := newBillingFixture()
	f.subs.put(&domain.Subscription{UserID: testUserID, Plan: "founder", Status: domain.StatusActive, StripeCustomerID: "cus_6"})
	ctx := context.Background()
	assert.Equal(t, entitlements.PlanFounder, f.resolver.GetUserPlan(ctx, testUserID))

	payload, sig := signedEvent(t, `{"id":"evt_6","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_6","customer":"cus_6","status":"canceled"}}}`)
	require.NoError(t, f.service.HandleWebhook(ctx, payload, sig))

	assert.Equal(t, entitlements.PlanFree, f.resolver.GetUserPlan(ctx, testUserID))
	sub, _ := f.subs.GetByUserID(ctx, testUserID)
	assert.Equal(t, domain.StatusCanceled, sub.Status)
}

func TestBillingService_RejectsBadSignature(t *testing.T) {
	f := newBillingFixture()
	payload := []byte(`{"id":"evt_7","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_7","customer":"cus_7"}}}`)

	err := f.service.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.True(t, errors.Is(err, domain.ErrInvalidSignature))

	err = f.service.HandleWebhook(context.Background(), payload, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidSignature))
	assert.Empty(t, f.subs.patches)
}

func TestBillingService_NotConfigured(t *testing.T) {
	svc := NewBillingService(NewMockSubscriptionRepository(), nil, "", nil, NewMockLogger())
	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=x")
	assert.ErrorIs(t, err, domain.ErrWebhookNotConfigured)
}

func TestBillingService_IgnoresUnhandledTypes(t *testing.T) {
	f := newBillingFixture()
	payload, sig := signedEvent(t, `{"id":"evt_8","object":"event","type":"invoice.paid","data":{"object":{"id":"in_8"}}}`)
	require.NoError(t, f.service.HandleWebhook(context.Background(), payload, sig))
}
