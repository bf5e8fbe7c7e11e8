package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"mentora/internal/models"
)

// SweepReport summarizes one sweep invocation
type SweepReport struct {
	Kind      SweepKind     `json:"kind"`
	Processed int           `json:"processed"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// RunSweep executes one regular sweep: every user with activity in the
// trailing window gets analytics recomputed, recommendations topped up, and
// adaptation rules evaluated. Per-user failures are isolated and counted;
// one user's failure never aborts the batch.
func (e *Engine) RunSweep(ctx context.Context) (*SweepReport, error) {
	if !e.tryBegin(SweepRegular) {
		log.Println("⚠️  [ADAPTIVE] Regular sweep still running, skipping this cycle")
		return nil, ErrSweepInProgress
	}
	defer e.end(SweepRegular)

	now := e.clock.Now()
	report := &SweepReport{Kind: SweepRegular, StartedAt: now}

	users, err := e.deps.Users.ActiveUsers(ctx)
	if err != nil {
		e.countSweep(SweepRegular, "error")
		return report, fmt.Errorf("failed to select active users: %w", err)
	}

	if len(users) == 0 {
		// Quiet period, not an error
		log.Println("💤 [ADAPTIVE] No active users in the last 24h")
	}

	for _, user := range users {
		if err := e.processUser(ctx, user, now); err != nil {
			log.Printf("⚠️  [ADAPTIVE] Failed to process user %s: %v", user.UserID(), err)
			report.Errors++
			continue
		}
		report.Processed++
	}

	e.runRetention(ctx)

	report.Duration = e.clock.Now().Sub(now)
	log.Printf("✅ [ADAPTIVE] Sweep complete: %d processed, %d errors in %v",
		report.Processed, report.Errors, report.Duration)
	e.countSweep(SweepRegular, "ok")
	e.observeSweep(SweepRegular, report, report.Duration)

	return report, nil
}

// RunDailySweep executes the comprehensive sweep: daily analytics for every
// user unconditionally, then retention. Runs at the anchor hour, so the
// regular per-user pipeline picks up weekly/monthly gating in the same hour.
func (e *Engine) RunDailySweep(ctx context.Context) (*SweepReport, error) {
	if !e.tryBegin(SweepDaily) {
		log.Println("⚠️  [ADAPTIVE] Daily sweep still running, skipping this cycle")
		return nil, ErrSweepInProgress
	}
	defer e.end(SweepDaily)

	now := e.clock.Now()
	report := &SweepReport{Kind: SweepDaily, StartedAt: now}

	log.Println("🌙 [ADAPTIVE] Starting daily comprehensive sweep")

	users, err := e.deps.Users.AllUsers(ctx)
	if err != nil {
		e.countSweep(SweepDaily, "error")
		return report, fmt.Errorf("failed to enumerate users: %w", err)
	}

	for _, user := range users {
		if err := e.dailyLimiter.Wait(ctx); err != nil {
			e.countSweep(SweepDaily, "error")
			return report, fmt.Errorf("daily sweep pacing interrupted: %w", err)
		}
		if _, err := e.deps.Analytics.ComputeUserAnalytics(ctx, user.UserID(), models.GranularityDaily); err != nil {
			log.Printf("⚠️  [ADAPTIVE] Daily recompute failed for user %s: %v", user.UserID(), err)
			report.Errors++
			continue
		}
		report.Processed++
	}

	e.runRetention(ctx)

	report.Duration = e.clock.Now().Sub(now)
	log.Printf("✅ [ADAPTIVE] Daily sweep complete: %d users recomputed, %d errors in %v",
		report.Processed, report.Errors, report.Duration)
	e.countSweep(SweepDaily, "ok")
	e.observeSweep(SweepDaily, report, report.Duration)

	return report, nil
}

// processUser runs the full per-user pipeline: analytics at every due
// granularity, then insights. Any error escapes to the per-user boundary in
// RunSweep.
func (e *Engine) processUser(ctx context.Context, user models.UserRef, now time.Time) error {
	userID := user.UserID()

	if _, err := e.deps.Analytics.ComputeUserAnalytics(ctx, userID, models.GranularityDaily); err != nil {
		return fmt.Errorf("daily analytics: %w", err)
	}

	if IsNewWeek(now, e.cfg.DailyHour) {
		if _, err := e.deps.Analytics.ComputeUserAnalytics(ctx, userID, models.GranularityWeekly); err != nil {
			return fmt.Errorf("weekly analytics: %w", err)
		}
	}

	if IsNewMonth(now, e.cfg.DailyHour) {
		if _, err := e.deps.Analytics.ComputeUserAnalytics(ctx, userID, models.GranularityMonthly); err != nil {
			return fmt.Errorf("monthly analytics: %w", err)
		}
	}

	return e.generateInsights(ctx, user, now)
}

// generateInsights tops the user's active recommendations up to the cap when
// they fall below the threshold, then always evaluates adaptation rules.
func (e *Engine) generateInsights(ctx context.Context, user models.UserRef, now time.Time) error {
	userID := user.UserID()

	active, err := e.deps.Recommendations.CountActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("count active recommendations: %w", err)
	}

	if active < models.RecommendationTopUpThreshold {
		latest, err := e.deps.Analytics.LatestForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("latest analytics: %w", err)
		}
		if latest != nil {
			generated, err := e.deps.Recommendations.Generate(ctx, userID, models.GenerateOptions{
				Context:  latest,
				MaxCount: models.ActiveRecommendationCap - int(active),
			})
			if err != nil {
				return fmt.Errorf("generate recommendations: %w", err)
			}
			if e.deps.Metrics != nil && len(generated) > 0 {
				e.deps.Metrics.RecommendationsGenerated.Add(float64(len(generated)))
			}
		}
		// No snapshot yet: nothing to ground recommendations on, skip quietly
	}

	return e.evaluateRules(ctx, user, now)
}
