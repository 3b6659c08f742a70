package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/pkg/entitlements"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	sub *Subscription
	err error
}

func (s *stubSource) Subscription(ctx context.Context) (*Subscription, error) {
	return s.sub, s.err
}

func TestFeatureAccess_StatusGating(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-48 * time.Hour)
	running := now.Add(72 * time.Hour)

	tests := []struct {
		name       string
		sub        *Subscription
		err        error
		wantPlan   entitlements.Plan
		hasPro     bool
		hasFounder bool
	}{
		{"active pro", &Subscription{Plan: "pro", Status: "active"}, nil, entitlements.PlanPro, true, false},
		{"trialing pro", &Subscription{Plan: "pro", Status: "trialing"}, nil, entitlements.PlanPro, true, false},
		{"trialing pro within period", &Subscription{Plan: "pro", Status: "trialing", CurrentPeriodEnd: &running}, nil, entitlements.PlanPro, true, false},
		{"expired trial pro", &Subscription{Plan: "pro", Status: "trialing", CurrentPeriodEnd: &ended}, nil, entitlements.PlanFree, false, false},
		{"canceled pro", &Subscription{Plan: "pro", Status: "canceled"}, nil, entitlements.PlanFree, false, false},
		{"active founder", &Subscription{Plan: "founder", Status: "active"}, nil, entitlements.PlanFounder, false, true},
		{"past due founder", &Subscription{Plan: "founder", Status: "past_due"}, nil, entitlements.PlanFree, false, false},
		{"unknown plan", &Subscription{Plan: "gold", Status: "active"}, nil, entitlements.PlanFree, false, false},
		{"error", nil, errors.New("offline"), entitlements.PlanFree, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access := NewFeatureAccess(&stubSource{sub: tt.sub, err: tt.err}, WithNow(func() time.Time { return now }))
			assert.True(t, access.Loading())

			err := access.Refresh(context.Background())
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.err, access.Err())
			assert.False(t, access.Loading())
			assert.Equal(t, tt.wantPlan, access.Plan())
			assert.Equal(t, tt.hasPro, access.HasPro())
			assert.Equal(t, tt.hasFounder, access.HasFounder())
		})
	}
}

func TestFeatureAccess_CanUse(t *testing.T) {
	access := NewFeatureAccess(&stubSource{sub: &Subscription{Plan: "pro", Status: "active"}})
	require.NoError(t, access.Refresh(context.Background()))

	assert.True(t, access.CanUse("export"))
	assert.True(t, access.CanUse(entitlements.FeatureAllowedIdeaModes))
	assert.False(t, access.CanUse(entitlements.FeaturePrioritySupport))

	code, paywall, denied := access.Denial("export")
	assert.False(t, denied)
	assert.Empty(t, code)
	assert.Empty(t, paywall.Headline)
}

func TestFeatureAccess_ErrorDropsToFree(t *testing.T) {
	source := &stubSource{sub: &Subscription{Plan: "founder", Status: "active"}}
	access := NewFeatureAccess(source)
	require.NoError(t, access.Refresh(context.Background()))
	assert.True(t, access.HasFounder())

	source.sub, source.err = nil, errors.New("timeout")
	assert.Error(t, access.Refresh(context.Background()))
	assert.Equal(t, entitlements.PlanFree, access.Plan())

	code, paywall, denied := access.Denial("pdfExport")
	assert.True(t, denied)
	assert.Equal(t, entitlements.CodeExportRequiresPro, code)
	assert.NotEmpty(t, paywall.CTA)
}

// TestFeatureAccess_MatchesServerGating runs the same rows through the
// client hook and the server's status gating.
func TestFeatureAccess_MatchesServerGating(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-48 * time.Hour)

	rows := []Subscription{
		{Plan: "pro", Status: "trialing", CurrentPeriodEnd: &ended},
		{Plan: "pro", Status: "trialing"},
		{Plan: "founder", Status: "active", CurrentPeriodEnd: &ended},
		{Plan: "pro", Status: "canceled"},
	}
	for _, row := range rows {
		row := row
		access := NewFeatureAccess(&stubSource{sub: &row}, WithNow(func() time.Time { return now }))
		require.NoError(t, access.Refresh(context.Background()))

		server := domain.EffectivePlanState(&domain.Subscription{
			Plan:             row.Plan,
			Status:           domain.SubscriptionStatus(row.Status),
			CurrentPeriodEnd: row.CurrentPeriodEnd,
		}, now)
		assert.Equal(t, server.Plan, access.Plan(), "plan for %+v", row)
		assert.Equal(t, server.IsPro, access.HasPro(), "pro for %+v", row)
		assert.Equal(t, server.IsFounder, access.HasFounder(), "founder for %+v", row)
		assert.Equal(t, server.TrialExpired, access.TrialExpired(), "trial for %+v", row)
	}

	access := NewFeatureAccess(
		&stubSource{sub: &Subscription{Plan: "pro", Status: "trialing", CurrentPeriodEnd: &ended}},
		WithNow(func() time.Time { return now }),
	)
	require.NoError(t, access.Refresh(context.Background()))

	assert.True(t, access.TrialExpired())
	assert.False(t, access.HasPro())
	assert.False(t, access.CanUse(entitlements.FeatureExportPDF))

	code, paywall, denied := access.Denial(entitlements.FeatureExportPDF)
	assert.True(t, denied)
	assert.Equal(t, entitlements.CodeTrialExpired, code)
	assert.Equal(t, entitlements.CopyFor(entitlements.CodeTrialExpired), paywall)
}
