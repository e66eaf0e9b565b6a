package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entitlementNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func trialUser(endOffset time.Duration) *models.User {
	end := entitlementNow.Add(endOffset)
	return &models.User{ID: 1, Plan: models.PlanFreeTrial, TrialEndDate: &end}
}

func paidUser(plan, status string) *models.User {
	return &models.User{ID: 2, Plan: plan, SubscriptionStatus: status}
}

func TestEntitlement_TrialAllowsOnlyTrialTools(t *testing.T) {
	gate := NewEntitlementGate(tools.Default())
	user := trialUser(48 * time.Hour)

	got := gate.AvailableTools(user, entitlementNow)
	assert.ElementsMatch(t, []string{"seo-audit", "social-media", "blog-writing", "email-marketing", "ad-copy"}, got)

	assert.NoError(t, gate.Check(user, "social-media", entitlementNow))

	err := gate.Check(user, "competitor-analysis", entitlementNow)
	var notAvail *ToolNotAvailableError
	require.True(t, errors.As(err, &notAvail))
	assert.True(t, errors.Is(err, ErrNotEntitled))
	assert.Equal(t, models.PlanPro, notAvail.RequiredPlan)
	assert.ElementsMatch(t, got, notAvail.Allowed)
}

func TestEntitlement_ExpiredTrialRejectsEverything(t *testing.T) {
	gate := NewEntitlementGate(tools.Default())
	user := trialUser(-time.Hour)

	assert.Empty(t, gate.AvailableTools(user, entitlementNow))
	for _, id := range tools.Default().IDs() {
		assert.ErrorIs(t, gate.Check(user, id, entitlementNow), ErrTrialExpired, id)
	}
}

func TestEntitlement_TrialWithoutEndDateIsExpired(t *testing.T) {
	gate := NewEntitlementGate(tools.Default())
	user := &models.User{Plan: models.PlanFreeTrial}
	assert.ErrorIs(t, gate.Check(user, "seo-audit", entitlementNow), ErrTrialExpired)
}

func TestEntitlement_PlanTiers(t *testing.T) {
	gate := NewEntitlementGate(tools.Default())
	tests := []struct {
		name    string
		user    *models.User
		toolID  string
		wantErr error
	}{
		{"starter gets starter tool", paidUser(models.PlanStarter, models.SubscriptionActive), "cold-outreach", nil},
		{"starter denied pro tool", paidUser(models.PlanStarter, models.SubscriptionActive), "landing-page", ErrNotEntitled},
		{"pro gets pro tool", paidUser(models.PlanPro, models.SubscriptionActive), "product-launch", nil},
		{"pro denied agency tool", paidUser(models.PlanPro, models.SubscriptionActive), "local-seo", ErrNotEntitled},
		{"agency gets everything", paidUser(models.PlanAgency, models.SubscriptionTrialing), "blog-to-video", nil},
		{"cancelled pro falls back to expired trial", paidUser(models.PlanPro, models.SubscriptionCancelled), "seo-audit", ErrTrialExpired},
		{"unknown tool", paidUser(models.PlanAgency, models.SubscriptionActive), "nope", ErrUnknownTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.user, tt.toolID, entitlementNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEntitlement_AgencyHasAllTools(t *testing.T) {
	gate := NewEntitlementGate(tools.Default())
	got := gate.AvailableTools(paidUser(models.PlanAgency, models.SubscriptionActive), entitlementNow)
	assert.Len(t, got, 13)
}

func TestPlanAllowance(t *testing.T) {
	assert.EqualValues(t, 10, PlanAllowance(models.PlanFreeTrial))
	assert.EqualValues(t, 500, PlanAllowance(models.PlanPro))
	assert.EqualValues(t, 10, PlanAllowance("mystery"))
}
