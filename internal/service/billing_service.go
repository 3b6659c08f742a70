package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/metrics"
	"founder-coach-api/pkg/entitlements"

	"github.com/google/uuid"
	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// billingService is the only writer of subscription state. It applies
// verified Stripe events and clears the plan cache of every user it touched.
type billingService struct {
	subscriptions domain.SubscriptionRepository
	resolver      domain.PlanResolver
	secret        string
	pricePlans    map[string]entitlements.Plan
	logger        domain.Logger
}

func NewBillingService(
	subscriptions domain.SubscriptionRepository,
	resolver domain.PlanResolver,
	secret string,
	pricePlans map[string]entitlements.Plan,
	logger domain.Logger,
) *billingService {
	return &billingService{
		subscriptions: subscriptions,
		resolver:      resolver,
		secret:        secret,
		pricePlans:    pricePlans,
		logger:        logger,
	}
}

// checkoutSession is the subset of a Stripe checkout.session we read.
type checkoutSession struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// stripeSubscription is the subset of a Stripe subscription we read.
// current_period_end moved onto items in newer API versions; both are read.
type stripeSubscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

func (s *stripeSubscription) firstPriceID() string {
	for _, item := range s.Items.Data {
		if id := strings.TrimSpace(item.Price.ID); id != "" {
			return id
		}
	}
	return ""
}

func (s *stripeSubscription) periodEnd() *time.Time {
	end := s.CurrentPeriodEnd
	for _, item := range s.Items.Data {
		if item.CurrentPeriodEnd > end {
			end = item.CurrentPeriodEnd
		}
	}
	if end <= 0 {
		return nil
	}
	t := time.Unix(end, 0).UTC()
	return &t
}

// HandleWebhook verifies the Stripe signature and applies the event.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if strings.TrimSpace(s.secret) == "" {
		return domain.ErrWebhookNotConfigured
	}
	if strings.TrimSpace(signature) == "" {
		return fmt.Errorf("%w: missing signature", domain.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	if err := s.handleEvent(ctx, &event); err != nil {
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "failed").Inc()
		s.logger.Error("Stripe webhook processing failed", err, "event_id", event.ID, "type", string(event.Type))
		return err
	}
	metrics.WebhookEvents.WithLabelValues(string(event.Type), "applied").Inc()
	return nil
}

func (s *billingService) handleEvent(ctx context.Context, event *stripelib.Event) error {
	if event.Data == nil {
		return fmt.Errorf("event %s has no data", event.ID)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout.session: %w", err)
		}
		return s.applyCheckout(ctx, session)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripeSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.applySubscription(ctx, sub)

	case "customer.subscription.deleted":
		var sub stripeSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.applyDeletion(ctx, sub)

	default:
		s.logger.Info("Stripe webhook ignored (unhandled type)", "type", string(event.Type), "event_id", event.ID)
		return nil
	}
}

// applyCheckout links the Stripe customer to the user and grants the plan
// named in the session metadata. One-time payments (founder) never get a
// subscription event, so the plan must be written here.
func (s *billingService) applyCheckout(ctx context.Context, session checkoutSession) error {
	userID := session.ClientReferenceID
	if userID == "" {
		userID = session.Metadata["user_id"]
	}
	if _, err := uuid.Parse(userID); err != nil {
		s.logger.Warn("Checkout session without a valid user reference", "session_id", session.ID)
		return nil
	}

	plan := entitlements.ParsePlan(session.Metadata["plan"])
	if !entitlements.HasPaidPlan(string(plan)) {
		s.logger.Warn("Checkout session without a paid plan", "session_id", session.ID, "plan", session.Metadata["plan"])
		return nil
	}

	sub := &domain.Subscription{
		UserID:               userID,
		Plan:                 string(plan),
		Status:               domain.StatusActive,
		StripeCustomerID:     session.Customer,
		StripeSubscriptionID: session.Subscription,
	}
	if err := s.subscriptions.UpsertForUser(ctx, sub); err != nil {
		return err
	}

	s.resolver.ClearPlanCache(userID)
	s.logger.Info("Checkout applied", "user_id", userID, "plan", plan, "mode", session.Mode)
	return nil
}

func (s *billingService) applySubscription(ctx context.Context, sub stripeSubscription) error {
	if sub.Customer == "" {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}

	patch := domain.SubscriptionPatch{
		Status:               domain.SubscriptionStatus(sub.Status),
		CurrentPeriodEnd:     sub.periodEnd(),
		StripeSubscriptionID: sub.ID,
	}
	if plan, ok := s.pricePlans[sub.firstPriceID()]; ok {
		patch.Plan = string(plan)
	} else {
		s.logger.Warn("Unknown Stripe price, plan left unchanged", "price_id", sub.firstPriceID(), "subscription_id", sub.ID)
	}

	userIDs, err := s.subscriptions.UpdateByCustomerID(ctx, sub.Customer, patch)
	if err != nil {
		return err
	}

	// The subscription event can arrive before checkout.session.completed.
	if len(userIDs) == 0 {
		userID := sub.Metadata["user_id"]
		if _, err := uuid.Parse(userID); err != nil || patch.Plan == "" {
			s.logger.Warn("No subscription row for Stripe customer", "customer_id", sub.Customer)
			return nil
		}
		if err := s.subscriptions.UpsertForUser(ctx, &domain.Subscription{
			UserID:               userID,
			Plan:                 patch.Plan,
			Status:               patch.Status,
			CurrentPeriodEnd:     patch.CurrentPeriodEnd,
			StripeCustomerID:     sub.Customer,
			StripeSubscriptionID: sub.ID,
		}); err != nil {
			return err
		}
		userIDs = []string{userID}
	}

	s.resolver.ClearPlanCache(userIDs...)
	s.logger.Info("Subscription applied", "customer_id", sub.Customer, "status", sub.Status, "plan", patch.Plan, "users", len(userIDs))
	return nil
}

func (s *billingService) applyDeletion(ctx context.Context, sub stripeSubscription) error {
	if sub.Customer == "" {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}

	userIDs, err := s.subscriptions.UpdateByCustomerID(ctx, sub.Customer, domain.SubscriptionPatch{
		Plan:   string(entitlements.PlanFree),
		Status: domain.StatusCanceled,
	})
	if err != nil {
		return err
	}
	if len(userIDs) > 0 {
		s.resolver.ClearPlanCache(userIDs...)
	}
	s.logger.Info("Subscription canceled", "customer_id", sub.Customer, "users", len(userIDs))
	return nil
}
