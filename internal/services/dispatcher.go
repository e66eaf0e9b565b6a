package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
)

// GenerateRequest is one tool invocation as received at the API boundary.
type GenerateRequest struct {
	RequestID   string
	ToolID      string
	UserID      uint
	ClientIP    string
	Input       map[string]any
	RequestedAt time.Time
}

// identityKey is the identity limiter key: the user when authenticated,
// otherwise the caller IP.
func (r *GenerateRequest) identityKey() string {
	if r.UserID > 0 {
		return "user:" + strconv.FormatUint(uint64(r.UserID), 10)
	}
	return "ip:" + r.ClientIP
}

// GenerationOutcome is the result of one dispatch attempt.
type GenerationOutcome struct {
	RequestID        string
	ToolID           string
	Status           string // models.UsageStatus*
	Payload          map[string]any
	AIGenerated      bool
	Patched          []string
	ErrorKind        string
	ProcessingTimeMs int64
	Usage            UsageCounters
}

// UsageSink persists usage for a finished attempt.
type UsageSink interface {
	Record(ctx context.Context, entry UsageEntry) (UsageCounters, error)
}

// GenerationDeps are the collaborators of the dispatcher.
type GenerationDeps struct {
	Registry *tools.Registry
	Limiters Limiters
	Users    UserStore
	Client   GenerationClient
	Usage    UsageSink
	Notifier Notifier
	Options  GenerationOptions
}

// GenerationService runs a tool invocation through limiting, entitlement,
// generation, validation and fallback, then records usage and emits a
// notification regeneration.
type GenerationService struct {
	registry *tools.Registry
	gate     *EntitlementGate
	limiters Limiters
	users    UserStore
	client   GenerationClient
	usage    UsageSink
	notifier Notifier
	opts     GenerationOptions
	now      func() time.Time
}

func NewGenerationService(deps GenerationDeps) *GenerationService {
	return &GenerationService{
		registry: deps.Registry,
		gate:     NewEntitlementGate(deps.Registry),
		limiters: deps.Limiters,
		users:    deps.Users,
		client:   deps.Client,
		usage:    deps.Usage,
		notifier: deps.Notifier,
		opts:     deps.Options,
		now:      time.Now,
	}
}

// Gate exposes the entitlement gate for catalogue views.
func (s *GenerationService) Gate() *EntitlementGate {
	return s.gate
}

// Generate makes exactly one generation attempt for req.
//
// Limiter, unknown-tool, user and entitlement failures return a nil outcome
// and write no usage record. Every other path returns an outcome that has been
// recorded; generation failures and unusable input degrade to the tool's
// fallback payload and return a nil error. Caller cancellation returns the
// recorded error outcome together with the error.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerationOutcome, error) {
	if req.RequestedAt.IsZero() {
		req.RequestedAt = s.now()
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	if err := s.acquire(ctx, &req); err != nil {
		return nil, err
	}

	tool, ok := s.registry.Lookup(req.ToolID)
	if !ok {
		return nil, ErrUnknownTool
	}
	def := tool.Definition()

	user, err := s.users.FindUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(user, def.ID, req.RequestedAt); err != nil {
		reason := "not_entitled"
		if errors.Is(err, ErrTrialExpired) {
			reason = "trial_expired"
		}
		entitlementRejections.WithLabelValues(reason).Inc()
		logger.Infof("[Dispatch] %s rejected for user %d: %v", def.ID, user.ID, err)
		s.notify(ctx, user.ID)
		return nil, err
	}

	outcome := &GenerationOutcome{RequestID: req.RequestID, ToolID: def.ID}
	failure := s.run(ctx, tool, &req, outcome)
	outcome.ProcessingTimeMs = s.now().Sub(req.RequestedAt).Milliseconds()

	s.finish(ctx, user, def, &req, outcome, failure)

	if outcome.Status == models.UsageStatusError {
		return outcome, failure
	}
	return outcome, nil
}

// acquire checks the identity limiter, then the global one.
func (s *GenerationService) acquire(ctx context.Context, req *GenerateRequest) error {
	checks := []struct {
		scope   string
		limiter Limiter
		key     string
	}{
		{ScopeIdentity, s.limiters.Identity, req.identityKey()},
		{ScopeGlobal, s.limiters.Global, GlobalLimiterKey},
	}
	for _, c := range checks {
		if c.limiter == nil {
			continue
		}
		ok, err := c.limiter.TryAcquire(ctx, c.key)
		if err != nil {
			logger.Warnf("[Dispatch] %s limiter error for %s: %v", c.scope, c.key, err)
		}
		if !ok {
			rateLimitRejections.WithLabelValues(c.scope).Inc()
			return &RateLimitError{Scope: c.scope}
		}
	}
	return nil
}

// run performs decode, build, generate and validate, filling outcome. The
// returned error is the failure that caused a degrade or error status.
func (s *GenerationService) run(ctx context.Context, tool tools.Tool, req *GenerateRequest, outcome *GenerationOutcome) error {
	def := tool.Definition()

	in, err := tool.Decode(req.Input)
	if err != nil {
		// Unusable input shapes get the tool's defaults, never a rejection.
		if in, _ = tool.Decode(nil); in == nil {
			outcome.Status = models.UsageStatusError
			outcome.ErrorKind = KindInvalidInput
			return err
		}
		s.degrade(tool, in, outcome, KindInvalidInput)
		return err
	}

	prompt := tool.Build(in)
	raw, err := s.client.Generate(ctx, prompt, s.opts)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			outcome.Status = models.UsageStatusError
			outcome.ErrorKind = KindCancelled
			return ctxErr
		}
		s.degrade(tool, in, outcome, ErrorKind(err))
		return err
	}

	obj, err := ParseOutput(raw)
	if err != nil {
		s.degrade(tool, in, outcome, KindMalformed)
		return err
	}

	// Only the synthesizer may mark a payload as fallback.
	delete(obj, tools.FallbackMarker)
	if obj[tools.GeneratedByField] == tools.GeneratedFallback {
		delete(obj, tools.GeneratedByField)
	}

	missing := MissingSections(obj, prompt.Required)
	if len(missing) > 0 {
		if !def.PatchMissing || len(missing) == len(prompt.Required) {
			s.degrade(tool, in, outcome, KindMalformed)
			return fmt.Errorf("%w: missing sections %v", ErrMalformedOutput, missing)
		}
		fallback := tool.Fallback(in)
		for _, key := range missing {
			obj[key] = fallback[key]
		}
		outcome.Patched = missing
		sectionPatches.WithLabelValues(def.ID).Add(float64(len(missing)))
	}

	outcome.Status = models.UsageStatusSuccess
	outcome.Payload = obj
	outcome.AIGenerated = true
	return nil
}

func (s *GenerationService) degrade(tool tools.Tool, in any, outcome *GenerationOutcome, kind string) {
	generationErrors.WithLabelValues(kind).Inc()
	outcome.Status = models.UsageStatusDegraded
	outcome.ErrorKind = kind
	outcome.Payload = tool.Fallback(in)
	outcome.AIGenerated = false
}

// finish records usage and emits the notification regeneration. Neither step
// can change the outcome status; failures are logged and swallowed.
func (s *GenerationService) finish(ctx context.Context, user *models.User, def tools.Definition, req *GenerateRequest, outcome *GenerationOutcome, failure error) {
	generationTotal.WithLabelValues(def.ID, outcome.Status).Inc()
	generationDuration.WithLabelValues(def.ID).Observe(float64(outcome.ProcessingTimeMs) / 1000)

	if outcome.Status != models.UsageStatusSuccess {
		logger.Warnf("[Dispatch] %s for user %d finished %s (%s): %v", def.ID, user.ID, outcome.Status, outcome.ErrorKind, failure)
	}

	entry := UsageEntry{
		RequestID:        req.RequestID,
		UserID:           user.ID,
		ToolID:           def.ID,
		ToolName:         def.Name,
		Input:            req.Input,
		Payload:          outcome.Payload,
		Status:           outcome.Status,
		AIGenerated:      outcome.AIGenerated,
		ErrorKind:        outcome.ErrorKind,
		ProcessingTimeMs: outcome.ProcessingTimeMs,
		At:               s.now(),
	}
	if failure != nil {
		entry.ErrorMessage = failure.Error()
	}

	// Accounting runs even when the caller has gone away.
	bg := context.WithoutCancel(ctx)
	counters, err := s.usage.Record(bg, entry)
	if err != nil {
		sideEffectFailures.WithLabelValues("usage").Inc()
		logger.Errorf("[Dispatch] Usage accounting failed for user %d: %v", user.ID, err)
		counters = UsageCounters{TotalGenerations: user.TotalGenerations, MonthlyGenerations: user.MonthlyGenerations}
		if len(outcome.Payload) > 0 {
			counters.TotalGenerations++
			counters.MonthlyGenerations++
		}
	}
	outcome.Usage = counters

	s.notify(bg, user.ID)
}

func (s *GenerationService) notify(ctx context.Context, userID uint) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Regenerate(context.WithoutCancel(ctx), userID); err != nil {
		sideEffectFailures.WithLabelValues("notification").Inc()
		logger.Warnf("[Dispatch] Notification regeneration failed for user %d: %v", userID, err)
	}
}
