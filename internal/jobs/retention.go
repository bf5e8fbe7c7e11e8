package jobs

import (
	"context"
	"log"
	"time"
)

// runRetention performs the two maintenance actions after every sweep:
// expiring stale recommendations and reaping old analytics snapshots. Both
// are best-effort and never affect the sweep's processed/error tallies.
func (e *Engine) runRetention(ctx context.Context) {
	if expired, err := e.deps.Recommendations.ExpireStale(ctx); err != nil {
		log.Printf("⚠️  [RETENTION] Failed to expire stale recommendations: %v", err)
	} else {
		if expired > 0 {
			log.Printf("🧹 [RETENTION] Expired %d stale recommendations", expired)
		}
		if e.deps.Metrics != nil {
			e.deps.Metrics.RetentionDeleted.WithLabelValues("recommendations").Add(float64(expired))
		}
	}

	cutoff := retentionCutoff(e.clock.Now(), e.cfg.RetentionDays)
	if deleted, err := e.deps.Analytics.DeleteOlderThan(ctx, cutoff); err != nil {
		log.Printf("⚠️  [RETENTION] Failed to delete old analytics: %v", err)
	} else {
		if deleted > 0 {
			log.Printf("🧹 [RETENTION] Deleted %d analytics snapshots older than %d days", deleted, e.cfg.RetentionDays)
		}
		if e.deps.Metrics != nil {
			e.deps.Metrics.RetentionDeleted.WithLabelValues("analytics").Add(float64(deleted))
		}
	}
}

// retentionCutoff computes the deletion horizon. A snapshot aged exactly at
// the horizon is eligible.
func retentionCutoff(now time.Time, retentionDays int) time.Time {
	return now.AddDate(0, 0, -retentionDays)
}
