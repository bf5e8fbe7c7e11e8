package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"
)

// SweepKind distinguishes the two sweep flavors the engine runs
type SweepKind string

const (
	// SweepRegular processes recently active users on the short interval
	SweepRegular SweepKind = "regular"
	// SweepDaily is the comprehensive sweep over all users at the anchor hour
	SweepDaily SweepKind = "daily"
)

// ErrSweepInProgress is returned when a sweep kind is asked to re-enter
// before its previous invocation finished.
var ErrSweepInProgress = errors.New("sweep of this kind already in progress")

// Config tunes the adaptive engine
type Config struct {
	SweepInterval time.Duration // regular sweep cadence, default 60m
	DailyHour     int           // anchor hour for the comprehensive sweep, default 2
	DailyCron     string        // optional cron override for the daily sweep
	RetentionDays int           // analytics retention horizon, default 365
	DailyRate     float64       // users/second pacing for the daily sweep, default 25
}

// Deps are the engine's injected collaborators
type Deps struct {
	Users           UserDirectory
	Analytics       AnalyticsEngine
	Recommendations RecommendationEngine
	Rules           RuleStore
	Profiles        ProfileUpdater
	Notifier        Notifier
	Planner         StudyPlanner
	Content         ContentDelivery
	Clock           Clock    // defaults to the system clock
	Metrics         *Metrics // optional
}

// Engine is the adaptive learning engine: a background service that
// periodically recomputes analytics, tops up recommendations, and evaluates
// adaptation rules for every user with recent activity.
//
// Lifecycle is Stopped → Running → Stopped. Start and Stop are idempotent;
// Stop never interrupts an in-flight sweep but guarantees no new
// timer-triggered sweep starts after it returns.
type Engine struct {
	cfg   Config
	deps  Deps
	clock Clock

	dailySchedule cron.Schedule
	dailyLimiter  *rate.Limiter
	instanceID    string

	mu          sync.Mutex
	running     bool
	sweepTimer  *time.Timer
	dailyTimer  *time.Timer
	nextSweepAt time.Time
	nextDailyAt time.Time
	inFlight    map[SweepKind]bool
}

// Status is the engine's externally visible state
type Status struct {
	Running          bool       `json:"running"`
	SweepIntervalMs  int64      `json:"sweep_interval_ms"`
	DailyHour        int        `json:"daily_hour"`
	NextSweepAt      *time.Time `json:"next_sweep_at"`
	NextDailySweepAt *time.Time `json:"next_daily_sweep_at,omitempty"`
	InstanceID       string     `json:"instance_id"`
}

// NewEngine creates an adaptive engine. It does not start any timers; call
// Start from the composition root.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 60 * time.Minute
	}
	if cfg.DailyHour < 0 || cfg.DailyHour > 23 {
		cfg.DailyHour = 2
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 365
	}
	if cfg.DailyRate <= 0 {
		cfg.DailyRate = 25
	}

	schedule, err := parseDailySchedule(cfg.DailyCron, cfg.DailyHour)
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = systemClock{}
	}

	burst := int(cfg.DailyRate)
	if burst < 1 {
		burst = 1
	}

	return &Engine{
		cfg:           cfg,
		deps:          deps,
		clock:         clock,
		dailySchedule: schedule,
		dailyLimiter:  rate.NewLimiter(rate.Limit(cfg.DailyRate), burst),
		instanceID:    uuid.New().String(),
		inFlight:      make(map[SweepKind]bool),
	}, nil
}

// Start transitions to Running, performs one immediate sweep synchronously,
// then arms the repeating regular timer and the anchored daily timer.
// Calling Start on a running engine is a logged no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		log.Println("⚠️  [ADAPTIVE] Engine already running, ignoring Start")
		return
	}
	e.running = true
	e.mu.Unlock()

	log.Printf("🚀 [ADAPTIVE] Engine starting (interval: %s, daily hour: %d, instance: %s)",
		e.cfg.SweepInterval, e.cfg.DailyHour, e.instanceID)

	// Immediate sweep before any timer is armed
	e.safeRun(SweepRegular)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		// Stopped while the immediate sweep was in flight
		return
	}
	e.armSweepTimerLocked()
	e.armDailyTimerLocked()
}

// Stop transitions to Stopped and cancels both timers. Safe to call while a
// sweep is mid-flight: the sweep completes but nothing re-arms afterward.
// Calling Stop on a stopped engine is a logged no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		log.Println("⚠️  [ADAPTIVE] Engine already stopped, ignoring Stop")
		return
	}
	e.running = false

	if e.sweepTimer != nil {
		e.sweepTimer.Stop()
		e.sweepTimer = nil
	}
	if e.dailyTimer != nil {
		e.dailyTimer.Stop()
		e.dailyTimer = nil
	}
	e.nextSweepAt = time.Time{}
	e.nextDailyAt = time.Time{}

	log.Println("🛑 [ADAPTIVE] Engine stopped")
}

// Status returns the current lifecycle state and timer targets
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	status := Status{
		Running:         e.running,
		SweepIntervalMs: e.cfg.SweepInterval.Milliseconds(),
		DailyHour:       e.cfg.DailyHour,
		InstanceID:      e.instanceID,
	}
	if e.running && !e.nextSweepAt.IsZero() {
		next := e.nextSweepAt
		status.NextSweepAt = &next
	}
	if e.running && !e.nextDailyAt.IsZero() {
		nextDaily := e.nextDailyAt
		status.NextDailySweepAt = &nextDaily
	}
	return status
}

// armSweepTimerLocked arms the next regular sweep. Caller holds e.mu.
func (e *Engine) armSweepTimerLocked() {
	e.nextSweepAt = e.clock.Now().Add(e.cfg.SweepInterval)
	e.sweepTimer = time.AfterFunc(e.cfg.SweepInterval, e.onSweepTimer)
}

// armDailyTimerLocked arms the daily sweep at its next cron occurrence.
// Caller holds e.mu.
func (e *Engine) armDailyTimerLocked() {
	now := e.clock.Now()
	next := e.dailySchedule.Next(now)
	e.nextDailyAt = next
	e.dailyTimer = time.AfterFunc(next.Sub(now), e.onDailyTimer)
	log.Printf("⏰ [ADAPTIVE] Daily sweep scheduled for %s", next.Format(time.RFC3339))
}

func (e *Engine) onSweepTimer() {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		return
	}

	e.safeRun(SweepRegular)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.armSweepTimerLocked()
	}
}

func (e *Engine) onDailyTimer() {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		return
	}

	e.safeRun(SweepDaily)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.armDailyTimerLocked()
	}
}

// safeRun executes one sweep of the given kind, containing panics and
// logging failures so timers always survive a bad cycle.
func (e *Engine) safeRun(kind SweepKind) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [ADAPTIVE] %s sweep panicked: %v", kind, r)
			e.countSweep(kind, "panic")
		}
	}()

	var err error
	switch kind {
	case SweepDaily:
		_, err = e.RunDailySweep(context.Background())
	default:
		_, err = e.RunSweep(context.Background())
	}

	if err != nil && !errors.Is(err, ErrSweepInProgress) {
		log.Printf("❌ [ADAPTIVE] %s sweep failed: %v", kind, err)
	}
}

// tryBegin claims the non-reentrancy guard for a sweep kind
func (e *Engine) tryBegin(kind SweepKind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[kind] {
		return false
	}
	e.inFlight[kind] = true
	return true
}

func (e *Engine) end(kind SweepKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight[kind] = false
}

func (e *Engine) countSweep(kind SweepKind, result string) {
	if e.deps.Metrics != nil {
		e.deps.Metrics.SweepsTotal.WithLabelValues(string(kind), result).Inc()
	}
}

func (e *Engine) observeSweep(kind SweepKind, report *SweepReport, duration time.Duration) {
	if e.deps.Metrics == nil {
		return
	}
	e.deps.Metrics.SweepDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
	e.deps.Metrics.UsersProcessed.WithLabelValues(string(kind)).Add(float64(report.Processed))
	e.deps.Metrics.UserErrors.WithLabelValues(string(kind)).Add(float64(report.Errors))
}
