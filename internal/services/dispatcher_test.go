package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGenerator answers Generate with respond and counts calls.
type fakeGenerator struct {
	calls   atomic.Int32
	respond func(ctx context.Context, p tools.Prompt) (string, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, p tools.Prompt, _ GenerationOptions) (string, error) {
	g.calls.Add(1)
	return g.respond(ctx, p)
}

// recordingNotifier collects the users passed to Regenerate.
type recordingNotifier struct {
	mu    sync.Mutex
	users []uint
	err   error
}

func (n *recordingNotifier) Regenerate(_ context.Context, userID uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.users)
}

// countingUsers counts lookups against the wrapped store.
type countingUsers struct {
	UserStore
	lookups atomic.Int32
}

func (c *countingUsers) FindUser(ctx context.Context, id uint) (*models.User, error) {
	c.lookups.Add(1)
	return c.UserStore.FindUser(ctx, id)
}

type brokenSink struct{}

func (brokenSink) Record(context.Context, UsageEntry) (UsageCounters, error) {
	return UsageCounters{}, ErrStorageUnavailable
}

type dispatchFixture struct {
	db       *gorm.DB
	svc      *GenerationService
	gen      *fakeGenerator
	users    *countingUsers
	recorder *UsageRecorder
	notifier *recordingNotifier
	clock    *fakeClock
}

func newDispatchFixture(t *testing.T, respond func(ctx context.Context, p tools.Prompt) (string, error)) *dispatchFixture {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	f := &dispatchFixture{
		db:       db,
		gen:      &fakeGenerator{respond: respond},
		users:    &countingUsers{UserStore: NewUserStore(db)},
		recorder: NewUsageRecorder(db),
		notifier: &recordingNotifier{},
		clock:    clock,
	}
	f.svc = NewGenerationService(GenerationDeps{
		Registry: tools.Default(),
		Limiters: Limiters{
			Identity: NewMemoryLimiter(LimiterConfig{Window: time.Minute, MaxCount: 3}).WithClock(clock.Now),
			Global:   NewMemoryLimiter(LimiterConfig{Window: time.Minute, MaxCount: 10}).WithClock(clock.Now),
		},
		Users:    f.users,
		Client:   f.gen,
		Usage:    f.recorder,
		Notifier: f.notifier,
	})
	f.svc.now = clock.Now
	return f
}

func (f *dispatchFixture) records(t *testing.T, userID uint) []models.UsageRecord {
	t.Helper()
	f.recorder.Wait()
	var recs []models.UsageRecord
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("id").Find(&recs).Error)
	return recs
}

// modelReply renders the tool's fallback as a model would return it.
func modelReply(t *testing.T, toolID string, drop ...string) string {
	t.Helper()
	tool, _ := tools.Default().Lookup(toolID)
	payload := tool.Fallback(nil)
	delete(payload, tools.FallbackMarker)
	delete(payload, tools.GeneratedByField)
	for _, key := range drop {
		delete(payload, key)
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func replyWith(s string) func(context.Context, tools.Prompt) (string, error) {
	return func(context.Context, tools.Prompt) (string, error) { return s, nil }
}

func TestGenerate_ModelSuccess(t *testing.T) {
	f := newDispatchFixture(t, func(_ context.Context, p tools.Prompt) (string, error) {
		assert.Contains(t, p.Instruction, "https://acme.io")
		return modelReply(t, "seo-audit"), nil
	})
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{
		ToolID: "seo-audit",
		UserID: user.ID,
		Input:  map[string]any{"url": "https://acme.io", "keywords": "crm"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusSuccess, out.Status)
	assert.True(t, out.AIGenerated)
	assert.Empty(t, out.Patched)
	assert.NotContains(t, out.Payload, tools.FallbackMarker)
	assert.Contains(t, out.Payload, "overview")
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, UsageCounters{TotalGenerations: 1, MonthlyGenerations: 1}, out.Usage)

	recs := f.records(t, user.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, models.UsageStatusSuccess, recs[0].Status)
	assert.True(t, recs[0].AIGenerated)
	assert.Equal(t, out.RequestID, recs[0].RequestID)
	assert.Equal(t, []uint{user.ID}, f.notifier.users)
}

func TestGenerate_UnparsableOutputDegrades(t *testing.T) {
	f := newDispatchFixture(t, replyWith("Sorry, I cannot help with that."))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "seo-audit", UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusDegraded, out.Status)
	assert.Equal(t, KindMalformed, out.ErrorKind)
	assert.False(t, out.AIGenerated)
	assert.Equal(t, true, out.Payload[tools.FallbackMarker])
	assert.Equal(t, tools.GeneratedFallback, out.Payload[tools.GeneratedByField])
	tool, _ := tools.Default().Lookup("seo-audit")
	for _, key := range tool.Schema().Required {
		assert.Contains(t, out.Payload, key)
	}
	// A degraded outcome still delivers content, so it counts.
	assert.Equal(t, int64(1), out.Usage.MonthlyGenerations)

	recs := f.records(t, user.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, models.UsageStatusDegraded, recs[0].Status)
	assert.False(t, recs[0].AIGenerated)
	assert.Equal(t, KindMalformed, recs[0].ErrorKind)
}

func TestGenerate_ClientFailureDegrades(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"unauthorized", &GenerationError{Kind: KindUnauthorized}, KindUnauthorized},
		{"quota", &GenerationError{Kind: KindQuotaExceeded, StatusCode: 429}, KindQuotaExceeded},
		{"timeout", &GenerationError{Kind: KindTransient, Err: context.DeadlineExceeded}, KindTransient},
		{"unclassified", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatchFixture(t, func(context.Context, tools.Prompt) (string, error) { return "", tt.err })
			user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

			out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
			require.NoError(t, err)
			assert.Equal(t, models.UsageStatusDegraded, out.Status)
			assert.Equal(t, tt.kind, out.ErrorKind)
			assert.Equal(t, true, out.Payload[tools.FallbackMarker])

			recs := f.records(t, user.ID)
			require.Len(t, recs, 1)
			assert.Contains(t, recs[0].ErrorMessage, tt.err.Error())
		})
	}
}

func TestGenerate_ExpiredTrialRejected(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	user := createUser(t, f.db, "trial@example.com", models.PlanFreeTrial, timePtr(f.clock.Now().Add(-time.Hour)))

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "social-media", UserID: user.ID})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrTrialExpired)
	assert.Zero(t, f.gen.calls.Load())
	assert.Empty(t, f.records(t, user.ID))
	assert.Equal(t, 1, f.notifier.count())
}

func TestGenerate_ToolAboveUserPlan(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	_, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "local-seo", UserID: user.ID})
	var notAvailable *ToolNotAvailableError
	require.ErrorAs(t, err, &notAvailable)
	assert.Equal(t, models.PlanAgency, notAvailable.RequiredPlan)
	assert.Contains(t, notAvailable.Allowed, "seo-audit")
	assert.NotContains(t, notAvailable.Allowed, "local-seo")
	assert.Zero(t, f.gen.calls.Load())
}

func TestGenerate_IdentityLimit(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "ad-copy")))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
		require.NoError(t, err, "attempt %d", i+1)
	}
	lookups := f.users.lookups.Load()

	out, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
	assert.Nil(t, out)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, ScopeIdentity, rl.Scope)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, lookups, f.users.lookups.Load(), "rejected before user lookup")
	assert.Len(t, f.records(t, user.ID), 3)

	f.clock.Advance(61 * time.Second)
	_, err = f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
	assert.NoError(t, err)
}

func TestGenerate_GlobalLimit(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "ad-copy")))
	ctx := context.Background()

	var users []*models.User
	for i := 0; i < 4; i++ {
		users = append(users, createUser(t, f.db, string(rune('a'+i))+"@example.com", models.PlanPro, nil))
	}
	accepted := 0
	for _, u := range users[:3] {
		for j := 0; j < 3; j++ {
			_, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: u.ID})
			require.NoError(t, err)
			accepted++
		}
	}
	_, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: users[3].ID})
	require.NoError(t, err)
	accepted++
	assert.Equal(t, 10, accepted)

	_, err = f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: users[3].ID})
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, ScopeGlobal, rl.Scope)
}

func TestGenerate_AnonymousCallerLimitedByIP(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", ClientIP: "10.0.0.1"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	}
	_, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", ClientIP: "10.0.0.1"})
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", ClientIP: "10.0.0.2"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGenerate_UnknownTool(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	_, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "horoscope", UserID: user.ID})
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Empty(t, f.records(t, user.ID))
}

func TestGenerate_PatchesMissingSections(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "seo-audit", "keywords")))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "seo-audit", UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusSuccess, out.Status)
	assert.True(t, out.AIGenerated)
	assert.Equal(t, []string{"keywords"}, out.Patched)
	assert.Contains(t, out.Payload, "keywords")
	assert.NotContains(t, out.Payload, tools.FallbackMarker)
}

func TestGenerate_NoPatchingForArticles(t *testing.T) {
	tool, _ := tools.Default().Lookup("blog-writing")
	required := tool.Schema().Required
	require.NotEmpty(t, required)

	f := newDispatchFixture(t, replyWith(modelReply(t, "blog-writing", required[0])))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "blog-writing", UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusDegraded, out.Status)
	assert.Equal(t, KindMalformed, out.ErrorKind)
	assert.Equal(t, true, out.Payload[tools.FallbackMarker])
}

func TestGenerate_EmptyObjectDegrades(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "seo-audit", UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusDegraded, out.Status)
	assert.Empty(t, out.Patched)
}

func TestGenerate_StripsModelFallbackMarker(t *testing.T) {
	var reply map[string]any
	require.NoError(t, json.Unmarshal([]byte(modelReply(t, "ad-copy")), &reply))
	reply[tools.FallbackMarker] = true
	reply[tools.GeneratedByField] = tools.GeneratedFallback
	raw, _ := json.Marshal(reply)

	f := newDispatchFixture(t, replyWith(string(raw)))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
	require.NoError(t, err)
	assert.True(t, out.AIGenerated)
	assert.NotContains(t, out.Payload, tools.FallbackMarker)
	assert.NotContains(t, out.Payload, tools.GeneratedByField)
}

func TestGenerate_BadOptionalFieldUsesDefault(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "social-media")))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{
		ToolID: "social-media",
		UserID: user.ID,
		Input:  map[string]any{"postCount": "a few", "platforms": "instagram"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusSuccess, out.Status)
	assert.True(t, out.AIGenerated)
	assert.EqualValues(t, 1, f.gen.calls.Load())
	assert.EqualValues(t, 1, out.Usage.TotalGenerations)
}

func TestGenerate_MistypedInputStillAnswers(t *testing.T) {
	f := newDispatchFixture(t, replyWith("{}"))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{
		ToolID: "social-media",
		UserID: user.ID,
		Input:  map[string]any{"postCount": map[string]any{"nested": true}, "platforms": 42},
	})
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, models.UsageStatusDegraded, out.Status)
	assert.NotEmpty(t, out.Payload)
	assert.EqualValues(t, 1, f.gen.calls.Load())

	recs := f.records(t, user.ID)
	require.Len(t, recs, 1)
}

func TestGenerate_CallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newDispatchFixture(t, func(ctx context.Context, _ tools.Prompt) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	out, err := f.svc.Generate(ctx, GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.Equal(t, models.UsageStatusError, out.Status)
	assert.Equal(t, KindCancelled, out.ErrorKind)

	// Accounting still happens for the abandoned attempt.
	recs := f.records(t, user.ID)
	require.Len(t, recs, 1)
	assert.Equal(t, models.UsageStatusError, recs[0].Status)
	assert.Equal(t, 1, f.notifier.count())
}

func TestGenerate_SideEffectFailuresDoNotChangeOutcome(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "ad-copy")))
	f.svc.usage = brokenSink{}
	f.notifier.err = ErrNotificationUnavailable
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)
	require.NoError(t, f.db.Model(user).UpdateColumns(map[string]any{"total_generations": 7, "monthly_generations": 2}).Error)

	out, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "ad-copy", UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, models.UsageStatusSuccess, out.Status)
	assert.Equal(t, UsageCounters{TotalGenerations: 8, MonthlyGenerations: 3}, out.Usage)
}

func TestGenerationService_GateMatchesDispatch(t *testing.T) {
	f := newDispatchFixture(t, replyWith(modelReply(t, "ad-copy")))
	user := createUser(t, f.db, "pro@example.com", models.PlanPro, nil)

	available := f.svc.Gate().AvailableTools(user, time.Now())
	assert.Contains(t, available, "ad-copy")
	assert.NotContains(t, available, "local-seo")

	_, err := f.svc.Generate(context.Background(), GenerateRequest{ToolID: "local-seo", UserID: user.ID})
	var notAvailable *ToolNotAvailableError
	assert.ErrorAs(t, err, &notAvailable)
}
