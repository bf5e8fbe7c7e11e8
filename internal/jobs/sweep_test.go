package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentora/internal/models"
)

// quietTime is a Wednesday afternoon: neither a weekly nor a monthly window.
var quietTime = time.Date(2026, 8, 26, 14, 0, 0, 0, time.UTC)

func TestRunSweepIsolatesUserFailures(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})

	good1, bad, good2 := userRef(), userRef(), userRef()
	h.users.active = []models.UserRef{good1, bad, good2}
	h.analytics.computeErr[bad.UserID()] = errors.New("mongo timeout")

	report, err := h.engine.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if report.Processed != 2 {
		t.Errorf("Processed = %d, want 2", report.Processed)
	}
	if report.Errors != 1 {
		t.Errorf("Errors = %d, want 1", report.Errors)
	}
	// The user after the failing one still got its analytics computed
	if got := h.analytics.granularitiesFor(good2.UserID()); len(got) == 0 {
		t.Error("user after the failing one was not processed")
	}
}

func TestRunSweepNoActiveUsers(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})

	report, err := h.engine.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if report.Processed != 0 || report.Errors != 0 {
		t.Errorf("report = %+v, want zero processed and errors", report)
	}
}

func TestRunSweepSelectorError(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})
	h.users.activeErr = errors.New("primary unavailable")

	if _, err := h.engine.RunSweep(context.Background()); err == nil {
		t.Error("expected error when active-user selection fails")
	}
}

func TestRunSweepGuardRejectsReentry(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})

	if !h.engine.tryBegin(SweepRegular) {
		t.Fatal("tryBegin should claim an idle guard")
	}
	if _, err := h.engine.RunSweep(context.Background()); !errors.Is(err, ErrSweepInProgress) {
		t.Errorf("err = %v, want ErrSweepInProgress", err)
	}
	h.engine.end(SweepRegular)

	if _, err := h.engine.RunSweep(context.Background()); err != nil {
		t.Errorf("sweep after guard release: %v", err)
	}
}

func TestProcessUserGranularityGating(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want []models.Granularity
	}{
		{
			name: "ordinary hour computes daily only",
			now:  quietTime,
			want: []models.Granularity{models.GranularityDaily},
		},
		{
			name: "monday anchor hour adds weekly",
			now:  time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC),
			want: []models.Granularity{models.GranularityDaily, models.GranularityWeekly},
		},
		{
			name: "first of month anchor hour adds monthly",
			now:  time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC),
			want: []models.Granularity{models.GranularityDaily, models.GranularityMonthly},
		},
		{
			name: "monday the first adds both",
			now:  time.Date(2026, 6, 1, 2, 0, 0, 0, time.UTC),
			want: []models.Granularity{models.GranularityDaily, models.GranularityWeekly, models.GranularityMonthly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHarness(Config{}, fixedClock{tt.now})
			user := userRef()
			h.users.active = []models.UserRef{user}

			if _, err := h.engine.RunSweep(context.Background()); err != nil {
				t.Fatalf("RunSweep: %v", err)
			}

			got := h.analytics.granularitiesFor(user.UserID())
			if len(got) != len(tt.want) {
				t.Fatalf("granularities = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("granularities = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestGenerateInsightsTopUp(t *testing.T) {
	tests := []struct {
		name         string
		active       int64
		wantGenerate bool
		wantMaxCount int
	}{
		{name: "no active recommendations tops up to cap", active: 0, wantGenerate: true, wantMaxCount: 5},
		{name: "two active tops up the gap", active: 2, wantGenerate: true, wantMaxCount: 3},
		{name: "at threshold skips generation", active: 3, wantGenerate: false},
		{name: "above threshold skips generation", active: 4, wantGenerate: false},
		{name: "at cap skips generation", active: 5, wantGenerate: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHarness(Config{}, fixedClock{quietTime})
			user := userRef()
			h.users.active = []models.UserRef{user}
			h.recs.activeCounts[user.UserID()] = tt.active
			h.analytics.latest[user.UserID()] = &models.LearningAnalytics{
				UserID:      user.UserID(),
				Granularity: models.GranularityDaily,
			}

			if _, err := h.engine.RunSweep(context.Background()); err != nil {
				t.Fatalf("RunSweep: %v", err)
			}

			if !tt.wantGenerate {
				if len(h.recs.generateCalls) != 0 {
					t.Errorf("Generate called %d times, want 0", len(h.recs.generateCalls))
				}
				return
			}
			if len(h.recs.generateCalls) != 1 {
				t.Fatalf("Generate called %d times, want 1", len(h.recs.generateCalls))
			}
			if got := h.recs.generateCalls[0].opts.MaxCount; got != tt.wantMaxCount {
				t.Errorf("MaxCount = %d, want %d", got, tt.wantMaxCount)
			}
		})
	}
}

func TestGenerateInsightsSkipsWithoutSnapshot(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})
	user := userRef()
	h.users.active = []models.UserRef{user}
	// Below threshold but LatestForUser has nothing for this user

	report, err := h.engine.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if report.Errors != 0 {
		t.Errorf("Errors = %d, want 0; a missing snapshot is not a failure", report.Errors)
	}
	if len(h.recs.generateCalls) != 0 {
		t.Errorf("Generate called %d times, want 0 without a snapshot", len(h.recs.generateCalls))
	}
}

func TestRunDailySweepCoversAllUsers(t *testing.T) {
	h := newTestHarness(Config{DailyRate: 10000}, fixedClock{quietTime})

	a, b, c := userRef(), userRef(), userRef()
	h.users.all = []models.UserRef{a, b, c}
	h.users.active = []models.UserRef{a} // daily sweep must ignore the activity filter
	h.analytics.computeErr[b.UserID()] = errors.New("mongo timeout")

	report, err := h.engine.RunDailySweep(context.Background())
	if err != nil {
		t.Fatalf("RunDailySweep: %v", err)
	}
	if report.Kind != SweepDaily {
		t.Errorf("Kind = %q, want %q", report.Kind, SweepDaily)
	}
	if report.Processed != 2 || report.Errors != 1 {
		t.Errorf("report = %+v, want 2 processed 1 error", report)
	}
	for _, u := range []models.UserRef{a, c} {
		got := h.analytics.granularitiesFor(u.UserID())
		if len(got) != 1 || got[0] != models.GranularityDaily {
			t.Errorf("user %s granularities = %v, want daily only", u.UserID(), got)
		}
	}
}

func TestSweepRunsRetention(t *testing.T) {
	h := newTestHarness(Config{RetentionDays: 100}, fixedClock{quietTime})
	h.analytics.deleteCount = 7

	if _, err := h.engine.RunSweep(context.Background()); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	if h.analytics.deletedCutoff == nil {
		t.Fatal("retention never ran")
	}
	want := quietTime.AddDate(0, 0, -100)
	if !h.analytics.deletedCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", h.analytics.deletedCutoff, want)
	}
}

func TestSweepRetentionFailureDoesNotFailSweep(t *testing.T) {
	h := newTestHarness(Config{}, fixedClock{quietTime})
	h.recs.expireErr = errors.New("redis down")
	h.analytics.deleteErr = errors.New("mongo down")

	if _, err := h.engine.RunSweep(context.Background()); err != nil {
		t.Errorf("RunSweep: %v, retention failures must stay best-effort", err)
	}
}
