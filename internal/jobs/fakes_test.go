package jobs

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mentora/internal/models"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type computeCall struct {
	userID      string
	granularity models.Granularity
}

type fakeAnalytics struct {
	computed      []computeCall
	computeErr    map[string]error // userID -> error
	latest        map[string]*models.LearningAnalytics
	latestErr     error
	deletedCutoff *time.Time
	deleteCount   int64
	deleteErr     error
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{
		computeErr: make(map[string]error),
		latest:     make(map[string]*models.LearningAnalytics),
	}
}

func (f *fakeAnalytics) ComputeUserAnalytics(_ context.Context, userID string, granularity models.Granularity) (*models.LearningAnalytics, error) {
	if err := f.computeErr[userID]; err != nil {
		return nil, err
	}
	f.computed = append(f.computed, computeCall{userID, granularity})
	return &models.LearningAnalytics{UserID: userID, Granularity: granularity, ComputedAt: time.Now()}, nil
}

func (f *fakeAnalytics) LatestForUser(_ context.Context, userID string) (*models.LearningAnalytics, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest[userID], nil
}

func (f *fakeAnalytics) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.deletedCutoff = &cutoff
	return f.deleteCount, f.deleteErr
}

func (f *fakeAnalytics) granularitiesFor(userID string) []models.Granularity {
	var out []models.Granularity
	for _, call := range f.computed {
		if call.userID == userID {
			out = append(out, call.granularity)
		}
	}
	return out
}

type fakeUsers struct {
	active      []models.UserRef
	all         []models.UserRef
	activeErr   error
	allErr      error
	activeCalls int
}

func (f *fakeUsers) ActiveUsers(_ context.Context) ([]models.UserRef, error) {
	f.activeCalls++
	return f.active, f.activeErr
}

func (f *fakeUsers) AllUsers(_ context.Context) ([]models.UserRef, error) {
	return f.all, f.allErr
}

type generateCall struct {
	userID string
	opts   models.GenerateOptions
}

type fakeRecommendations struct {
	activeCounts  map[string]int64
	countErr      error
	generateCalls []generateCall
	generateErr   error
	expired       int64
	expireErr     error
}

func newFakeRecommendations() *fakeRecommendations {
	return &fakeRecommendations{activeCounts: make(map[string]int64)}
}

func (f *fakeRecommendations) CountActive(_ context.Context, userID string) (int64, error) {
	return f.activeCounts[userID], f.countErr
}

func (f *fakeRecommendations) Generate(_ context.Context, userID string, opts models.GenerateOptions) ([]models.Recommendation, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	f.generateCalls = append(f.generateCalls, generateCall{userID, opts})
	recs := make([]models.Recommendation, opts.MaxCount)
	return recs, nil
}

func (f *fakeRecommendations) ExpireStale(_ context.Context) (int64, error) {
	return f.expired, f.expireErr
}

type triggerCall struct {
	ruleID primitive.ObjectID
	at     time.Time
}

type fakeRules struct {
	rules      []models.AdaptationRule
	rulesErr   error
	queries    int
	triggers   []triggerCall
	triggerErr error
}

func (f *fakeRules) ApplicableRules(_ context.Context, _ string) ([]models.AdaptationRule, error) {
	f.queries++
	return f.rules, f.rulesErr
}

func (f *fakeRules) RecordTrigger(_ context.Context, ruleID primitive.ObjectID, at time.Time) error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.triggers = append(f.triggers, triggerCall{ruleID, at})
	return nil
}

type personalityCall struct {
	userID      string
	personality string
}

type fakeProfiles struct {
	calls []personalityCall
	err   error
}

func (f *fakeProfiles) SetAIPersonality(_ context.Context, userID, personality string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, personalityCall{userID, personality})
	return nil
}

type notifyCall struct {
	userID string
	kind   string
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, userID, kind string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, notifyCall{userID, kind})
	return nil
}

type paceCall struct {
	userID string
	action models.PaceAction
}

type fakePlanner struct {
	checkins   []string
	paces      []paceCall
	checkinErr error
	paceErr    error
}

func (f *fakePlanner) ScheduleCheckin(_ context.Context, userID string) error {
	if f.checkinErr != nil {
		return f.checkinErr
	}
	f.checkins = append(f.checkins, userID)
	return nil
}

func (f *fakePlanner) AdjustPace(_ context.Context, userID string, action models.PaceAction) error {
	if f.paceErr != nil {
		return f.paceErr
	}
	f.paces = append(f.paces, paceCall{userID, action})
	return nil
}

type contentCall struct {
	userID string
	action models.ContentAction
}

type fakeContent struct {
	calls []contentCall
	err   error
}

func (f *fakeContent) ApplyContentActions(_ context.Context, userID string, action models.ContentAction) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, contentCall{userID, action})
	return nil
}

// testHarness bundles an engine with its fakes
type testHarness struct {
	engine    *Engine
	users     *fakeUsers
	analytics *fakeAnalytics
	recs      *fakeRecommendations
	rules     *fakeRules
	profiles  *fakeProfiles
	notifier  *fakeNotifier
	planner   *fakePlanner
	content   *fakeContent
}

func newTestHarness(cfg Config, clock Clock) *testHarness {
	h := &testHarness{
		users:     &fakeUsers{},
		analytics: newFakeAnalytics(),
		recs:      newFakeRecommendations(),
		rules:     &fakeRules{},
		profiles:  &fakeProfiles{},
		notifier:  &fakeNotifier{},
		planner:   &fakePlanner{},
		content:   &fakeContent{},
	}

	engine, err := NewEngine(cfg, Deps{
		Users:           h.users,
		Analytics:       h.analytics,
		Recommendations: h.recs,
		Rules:           h.rules,
		Profiles:        h.profiles,
		Notifier:        h.notifier,
		Planner:         h.planner,
		Content:         h.content,
		Clock:           clock,
	})
	if err != nil {
		panic(err)
	}
	h.engine = engine
	return h
}

func userRef() models.UserRef {
	return models.UserRef{ID: primitive.NewObjectID()}
}
