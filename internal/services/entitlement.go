package services

import (
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
)

var planRank = map[string]int{
	models.PlanFreeTrial: 0,
	models.PlanStarter:   1,
	models.PlanPro:       2,
	models.PlanAgency:    3,
}

var planAllowance = map[string]int64{
	models.PlanFreeTrial: 10,
	models.PlanStarter:   100,
	models.PlanPro:       500,
	models.PlanAgency:    2000,
}

// PlanAllowance returns the monthly generation allowance of a plan.
func PlanAllowance(plan string) int64 {
	if n, ok := planAllowance[plan]; ok {
		return n
	}
	return planAllowance[models.PlanFreeTrial]
}

// EffectivePlan is the plan the user is entitled to right now. A paid plan
// whose subscription is not in good standing falls back to the trial.
func EffectivePlan(user *models.User) string {
	if user.HasPaidPlan() {
		if _, ok := planRank[user.Plan]; ok {
			return user.Plan
		}
	}
	return models.PlanFreeTrial
}

// EntitlementGate decides which tools a user may invoke. It has no side effects.
type EntitlementGate struct {
	registry *tools.Registry
}

func NewEntitlementGate(registry *tools.Registry) *EntitlementGate {
	return &EntitlementGate{registry: registry}
}

// AvailableTools returns the tool ids the user may invoke at now, in registry
// order. An expired trial yields an empty set.
func (g *EntitlementGate) AvailableTools(user *models.User, now time.Time) []string {
	plan := EffectivePlan(user)
	if plan == models.PlanFreeTrial && user.TrialExpired(now) {
		return []string{}
	}
	available := make([]string, 0)
	for _, def := range g.registry.Definitions() {
		if allowedOn(plan, def) {
			available = append(available, def.ID)
		}
	}
	return available
}

// Check returns nil when user may invoke toolID at now.
func (g *EntitlementGate) Check(user *models.User, toolID string, now time.Time) error {
	tool, ok := g.registry.Lookup(toolID)
	if !ok {
		return ErrUnknownTool
	}
	plan := EffectivePlan(user)
	if plan == models.PlanFreeTrial && user.TrialExpired(now) {
		return ErrTrialExpired
	}
	def := tool.Definition()
	if allowedOn(plan, def) {
		return nil
	}
	return &ToolNotAvailableError{
		ToolID:       toolID,
		Allowed:      g.AvailableTools(user, now),
		RequiredPlan: def.MinPlan,
	}
}

func allowedOn(plan string, def tools.Definition) bool {
	if plan == models.PlanFreeTrial {
		return def.IncludedInTrial
	}
	return planRank[plan] >= planRank[def.MinPlan]
}
