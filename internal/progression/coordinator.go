package progression

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/2beens/gymquest/internal/telemetry/metrics"
	"github.com/2beens/gymquest/internal/telemetry/tracing"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// PartialApplyMessage is what a user is told when their activity is logged but not yet applied.
const PartialApplyMessage = "your activity was recorded, but your stats may take a moment to update"

type Config struct {
	Scoring     ScoringPolicy
	Decay       DecayPolicy
	StreakGrace GracePolicy
	// StreakWindowDays bounds how far back activity dates are fetched for streaks.
	StreakWindowDays int

	// StoreTimeout bounds every single store call.
	StoreTimeout time.Duration
	// ApplyTimeout bounds the whole apply phase after a fact is logged.
	ApplyTimeout         time.Duration
	ApplyRetries         int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	// PublishTimeout bounds the delivery of the events of one apply phase. It is not
	// part of ApplyTimeout.
	PublishTimeout time.Duration

	// MaxApplyAttempts is the number of recorded failures after which the reconciler abandons a fact.
	MaxApplyAttempts int
	ReconcileMinAge  time.Duration
	BatchSize        int
}

func DefaultConfig() Config {
	return Config{
		Scoring:              DefaultScoringPolicy(),
		Decay:                DefaultDecayPolicy(),
		StreakGrace:          GracePendingToday,
		StreakWindowDays:     400,
		StoreTimeout:         3 * time.Second,
		ApplyTimeout:         10 * time.Second,
		ApplyRetries:         5,
		RetryInitialInterval: 20 * time.Millisecond,
		RetryMaxInterval:     500 * time.Millisecond,
		PublishTimeout:       2 * time.Second,
		MaxApplyAttempts:     10,
		ReconcileMinAge:      time.Minute,
		BatchSize:            100,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Scoring.EvidenceBonus <= 1:
		return fmt.Errorf("evidence bonus must be > 1, got %v", c.Scoring.EvidenceBonus)
	case c.Decay.RatePerDay < 0 || c.Decay.RatePerDay >= 1:
		return fmt.Errorf("decay rate must be in [0, 1), got %v", c.Decay.RatePerDay)
	case c.Decay.MaxPenaltyDays < 0:
		return fmt.Errorf("max penalty days must not be negative, got %d", c.Decay.MaxPenaltyDays)
	case c.StreakWindowDays <= 0:
		return fmt.Errorf("streak window days must be positive, got %d", c.StreakWindowDays)
	case c.ApplyRetries < 0:
		return fmt.Errorf("apply retries must not be negative, got %d", c.ApplyRetries)
	case c.PublishTimeout <= 0:
		return fmt.Errorf("publish timeout must be positive, got %v", c.PublishTimeout)
	case c.MaxApplyAttempts <= 0:
		return fmt.Errorf("max apply attempts must be positive, got %d", c.MaxApplyAttempts)
	case c.BatchSize <= 0:
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

type CoordinatorOption func(*Coordinator)

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithEventPublisher(publisher EventPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.publisher = publisher
	}
}

// Coordinator runs every progression operation. It is safe for concurrent use; the only
// shared state is behind the store, guarded by the aggregate version.
type Coordinator struct {
	store          *timeoutStore
	config         Config
	metricsManager *metrics.Manager
	publisher      EventPublisher
	now            func() time.Time
}

func NewCoordinator(
	store Store,
	config Config,
	metricsManager *metrics.Manager,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if metricsManager == nil {
		return nil, errors.New("metrics manager is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid progression config: %w", err)
	}

	c := &Coordinator{
		store:          newTimeoutStore(store, config.StoreTimeout),
		config:         config,
		metricsManager: metricsManager,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SubmitActivity scores and logs an activity, then applies it to the user's progress.
// A non-nil result with status LOGGED_PENDING comes together with a *PartialApplyError.
func (c *Coordinator) SubmitActivity(ctx context.Context, userID string, input ActivityInput) (_ *SubmitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.submit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	activity := Activity{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    input.Category,
		DurationMin: input.DurationMin,
		Intensity:   input.Intensity,
		HasEvidence: input.HasEvidence,
		EvidenceURL: input.EvidenceURL,
		Weight:      input.Weight,
		CreatedAt:   now,
	}
	if err := ValidateActivity(activity); err != nil {
		return nil, err
	}

	current, err := c.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	activity.BaselineWeight = current.LastWeight

	exp, err := Score(activity, c.config.Scoring)
	if err != nil {
		return nil, err
	}
	activity.ExpGained = exp

	weight := activity.Weight
	fact := Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       FactActivityLogged,
		Delta:      exp,
		ActivityID: activity.ID,
		Day:        DayOf(now),
		Weight:     &weight,
		Status:     FactStatusLogged,
		CreatedAt:  now,
	}
	if err := c.store.LogActivity(ctx, activity, fact); err != nil {
		return nil, err
	}
	c.metricsManager.CounterActivitiesSubmitted.Inc()
	span.SetAttributes(attribute.String("activity.id", activity.ID), attribute.String("fact.id", fact.ID))

	result := &SubmitResult{
		ActivityID: activity.ID,
		FactID:     fact.ID,
		ExpDelta:   exp,
		NewExp:     current.Exp,
		NewLevel:   current.Level,
		NewStreak:  current.Streak,
		Status:     StatusLoggedPending,
	}

	// the activity is durable from here on, the caller going away must not stop the apply
	applyCtx, cancel := c.detached(ctx)
	defer cancel()

	final, _, err := c.applyPending(applyCtx, userID, fact.ID)
	if err != nil {
		c.metricsManager.CounterPartialApplies.Inc()
		log.Warnf("activity %s of user %s logged but not applied: %s", activity.ID, userID, err)
		return result, &PartialApplyError{
			FactID:     fact.ID,
			ActivityID: activity.ID,
			Err:        err,
		}
	}

	result.Status = StatusApplied
	result.NewExp = final.Exp
	result.NewLevel = final.Level
	result.NewStreak = final.Streak
	result.LeveledUp = final.Level > current.Level

	return result, nil
}

// DeleteActivity soft-deletes an activity and reverses the EXP it granted.
func (c *Coordinator) DeleteActivity(ctx context.Context, userID, activityID string) (_ *DeleteResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("activity.id", activityID))

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(activityID) == "" {
		return nil, newValidationError("activityId", "must not be empty")
	}

	activity, err := c.store.GetActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}

	logged, err := c.store.ActivityFact(ctx, userID, activityID, FactActivityLogged)
	if err != nil {
		return nil, err
	}
	delta := -activity.ExpGained
	if logged.Status == FactStatusAbandoned {
		// its EXP never reached the aggregate
		delta = 0
	}

	now := c.now().UTC()
	fact := Fact{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       FactActivityRemoved,
		Delta:      delta,
		ActivityID: activity.ID,
		Day:        DayOf(activity.CreatedAt),
		Status:     FactStatusLogged,
		CreatedAt:  now,
	}
	if err := c.store.LogActivityRemoval(ctx, userID, activityID, now, fact); err != nil {
		return nil, err
	}
	c.metricsManager.CounterActivitiesRemoved.Inc()

	result := &DeleteResult{
		ActivityID: activityID,
		FactID:     fact.ID,
		ExpDelta:   fact.Delta,
		Status:     StatusLoggedPending,
	}

	applyCtx, cancel := c.detached(ctx)
	defer cancel()

	if _, _, err := c.applyPending(applyCtx, userID, fact.ID); err != nil {
		c.metricsManager.CounterPartialApplies.Inc()
		log.Warnf("removal of activity %s of user %s logged but not applied: %s", activityID, userID, err)
		return result, &PartialApplyError{
			FactID:     fact.ID,
			ActivityID: activityID,
			Err:        err,
		}
	}

	result.Status = StatusApplied
	return result, nil
}

// GetProgress returns the user's progress with the streak recomputed as of now.
func (c *Coordinator) GetProgress(ctx context.Context, userID string) (_ *ProgressView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	progress, err := c.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	streak, err := c.streakAsOf(ctx, userID, c.now())
	if err != nil {
		return nil, err
	}

	levelInfo, err := LevelFor(progress.Exp)
	if err != nil {
		return nil, fmt.Errorf("stored progress of user %s: %w", userID, err)
	}

	totalExp, err := c.store.ActivityExpTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProgressView{
		UserID:             userID,
		Exp:                progress.Exp,
		Level:              levelInfo.Level,
		ExpIntoLevel:       roundExp(levelInfo.ExpIntoLevel),
		ExpRequiredForNext: levelInfo.ExpRequiredForNext,
		Streak:             streak,
		PenaltyTotal:       progress.PenaltyTotal,
		ActivityCount:      progress.ActivityCount,
		TotalActivityExp:   totalExp,
		Achievements:       Achievements(progress.ActivityCount, streak, levelInfo.Level),
	}, nil
}

// ListActivities returns a page of the user's live activities created before the given
// time, newest first. A zero before starts at now, a zero limit means DefaultHistoryLimit.
func (c *Coordinator) ListActivities(ctx context.Context, userID string, before time.Time, limit int) (_ *ActivityHistory, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return nil, newValidationError("limit", "must be between 1 and %d, got %d", MaxHistoryLimit, limit)
	}
	if before.IsZero() {
		// strictly before, an activity logged in this very instant is included
		before = c.now().UTC().Add(time.Nanosecond)
	}

	// one extra row tells whether another page follows
	activities, err := c.store.ListActivities(ctx, userID, before, limit+1)
	if err != nil {
		return nil, err
	}

	history := &ActivityHistory{
		Activities: activities,
	}
	if len(activities) > limit {
		history.Activities = activities[:limit]
		nextBefore := history.Activities[limit-1].CreatedAt
		history.NextBefore = &nextBefore
	}
	if history.Activities == nil {
		history.Activities = []Activity{}
	}

	history.TotalExp, err = c.store.ActivityExpTotal(ctx, userID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("activities", len(history.Activities)))
	return history, nil
}

// RunDecaySweep logs and applies the inactivity penalties owed as of asOf. Running it twice
// for the same date penalizes nobody twice. Per-user failures are counted in the result and
// returned combined; the sweep carries on with the other users.
func (c *Coordinator) RunDecaySweep(ctx context.Context, asOf time.Time) (_ *SweepResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.sweep")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start := time.Now()
	defer func() {
		c.metricsManager.HistDecaySweepDuration.Observe(time.Since(start).Seconds())
	}()

	asOfDay := DayOf(asOf)
	span.SetAttributes(attribute.String("as_of", asOfDay.Format(time.DateOnly)))
	result := &SweepResult{AsOf: asOfDay}

	// only users whose last active day is before yesterday have an inactive day to pay for
	cutoff := asOfDay.AddDate(0, 0, -1)

	var (
		userErrs error
		after    string
	)
	for {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(userErrs, err)
		}

		users, err := c.store.IdleUsers(ctx, cutoff, after, c.config.BatchSize)
		if err != nil {
			return result, multierr.Append(userErrs, err)
		}

		for _, u := range users {
			result.UsersScanned++
			events, total, err := c.penalizeUser(ctx, u.UserID, asOfDay)
			if err != nil {
				result.UsersFailed++
				userErrs = multierr.Append(userErrs, fmt.Errorf("user %s: %w", u.UserID, err))
				continue
			}
			if events > 0 {
				result.UsersPenalized++
				result.TotalPenaltyEvents += events
				result.TotalPenalty = roundExp(result.TotalPenalty + total)
			}
		}

		if len(users) < c.config.BatchSize {
			break
		}
		after = users[len(users)-1].UserID
	}

	span.SetAttributes(
		attribute.Int("users.scanned", result.UsersScanned),
		attribute.Int("users.penalized", result.UsersPenalized),
		attribute.Int("users.failed", result.UsersFailed),
	)
	log.Infof("decay sweep as of %s: %d scanned, %d penalized, %d events, %.2f exp, %d failed",
		asOfDay.Format(time.DateOnly), result.UsersScanned, result.UsersPenalized,
		result.TotalPenaltyEvents, result.TotalPenalty, result.UsersFailed,
	)

	return result, userErrs
}

// penalizeUser first settles the user's pending facts so the owed penalties are computed
// from applied state, then logs and applies them.
func (c *Coordinator) penalizeUser(ctx context.Context, userID string, asOfDay time.Time) (int, float64, error) {
	current, _, err := c.applyPending(ctx, userID, "")
	if err != nil {
		return 0, 0, err
	}
	if current.LastActiveDate == nil {
		return 0, 0, nil
	}

	from := DayOf(*current.LastActiveDate).AddDate(0, 0, 1)
	penalizedDays, err := c.store.PenalizedDays(ctx, userID, from, asOfDay)
	if err != nil {
		return 0, 0, err
	}

	owed := PenaltiesOwed(current, asOfDay, DistinctDays(penalizedDays), c.config.Decay)
	if len(owed) == 0 {
		return 0, 0, nil
	}

	now := c.now().UTC()
	facts := make([]Fact, 0, len(owed))
	for _, p := range owed {
		facts = append(facts, Fact{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      FactPenalty,
			Delta:     -p.Amount,
			Day:       p.Day,
			Status:    FactStatusLogged,
			CreatedAt: now,
		})
	}

	written, err := c.store.LogPenalties(ctx, facts)
	if err != nil {
		return 0, 0, err
	}
	if len(written) == 0 {
		return 0, 0, nil
	}
	c.metricsManager.CounterPenaltyEvents.Add(float64(len(written)))

	before := current.PenaltyTotal
	final, _, err := c.applyPending(ctx, userID, "")
	if err != nil {
		return 0, 0, &PartialApplyError{
			FactID: written[0].ID,
			Err:    err,
		}
	}

	return len(written), roundExp(final.PenaltyTotal - before), nil
}

// Reconcile finishes facts that were logged but never applied, abandoning the ones that
// keep failing.
func (c *Coordinator) Reconcile(ctx context.Context) (_ *ReconcileResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.progression.reconcile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	result := &ReconcileResult{}
	loggedBefore := c.now().UTC().Add(-c.config.ReconcileMinAge)

	users, err := c.store.UsersWithPendingFacts(ctx, loggedBefore, c.config.BatchSize)
	if err != nil {
		return result, err
	}

	var userErrs error
	for _, userID := range users {
		result.UsersScanned++
		applied, abandoned, err := c.reconcileUser(ctx, userID)
		result.FactsApplied += applied
		result.FactsAbandoned += abandoned
		if err != nil {
			result.UsersFailed++
			userErrs = multierr.Append(userErrs, fmt.Errorf("user %s: %w", userID, err))
		}
	}

	span.SetAttributes(
		attribute.Int("users.scanned", result.UsersScanned),
		attribute.Int("facts.applied", result.FactsApplied),
		attribute.Int("facts.abandoned", result.FactsAbandoned),
	)
	if result.UsersScanned > 0 {
		log.Infof("reconcile: %d users, %d facts applied, %d abandoned, %d users failed",
			result.UsersScanned, result.FactsApplied, result.FactsAbandoned, result.UsersFailed,
		)
	}

	return result, userErrs
}

func (c *Coordinator) reconcileUser(ctx context.Context, userID string) (applied, abandoned int, err error) {
	pending, err := c.store.PendingFacts(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	for _, fact := range pending {
		if fact.Attempts < c.config.MaxApplyAttempts {
			continue
		}
		reason := fmt.Sprintf("abandoned after %d attempts, last error: %s", fact.Attempts, fact.LastError)
		if err := c.store.RecordApplyFailure(ctx, fact.ID, reason, true); err != nil {
			return 0, abandoned, err
		}
		abandoned++
		c.metricsManager.CounterFactsAbandoned.Inc()
		log.Errorf("fact %s (%s) of user %s abandoned: %s", fact.ID, fact.Kind, userID, reason)
	}

	_, applied, err = c.applyPending(ctx, userID, "")
	return applied, abandoned, err
}

// applyPending drains the user's logged facts in sequence order. If factID is set, it stops
// as soon as that fact is no longer pending. Returns the resulting progress and how many
// facts this call applied.
func (c *Coordinator) applyPending(ctx context.Context, userID, factID string) (UserProgress, int, error) {
	var (
		final     UserProgress
		applied   int
		conflicts int
		events    []ProgressEvent
	)
	defer func() {
		c.publish(ctx, events)
	}()

	operation := func() error {
		pending, err := c.store.PendingFacts(ctx, userID)
		if err != nil {
			return err
		}
		if len(pending) == 0 || (factID != "" && !containsFact(pending, factID)) {
			final, err = c.store.GetProgress(ctx, userID)
			return err
		}

		current, err := c.store.GetProgress(ctx, userID)
		if err != nil {
			return err
		}

		for _, fact := range pending {
			next, err := c.nextProgress(ctx, current, fact)
			if err != nil {
				var validationErr *ValidationError
				if errors.As(err, &validationErr) {
					c.recordApplyFailure(ctx, fact, err)
					return backoff.Permanent(err)
				}
				return err
			}

			err = c.store.ApplyFact(ctx, fact, current.Version, next)
			switch {
			case err == nil:
			case errors.Is(err, ErrVersionConflict),
				errors.Is(err, ErrFactAlreadyApplied),
				errors.Is(err, ErrFactAbandoned):
				// someone else moved the aggregate, re-read and go again
				conflicts++
				c.metricsManager.CounterApplyConflicts.Inc()
				return err
			default:
				c.recordApplyFailure(ctx, fact, err)
				return err
			}

			next.Version = current.Version + 1
			applied++
			c.metricsManager.CounterFactsApplied.WithLabelValues(fact.Kind.String()).Inc()
			for _, event := range progressEvents(current, next, fact, next.UpdatedAt) {
				if event.Type == EventLevelUp {
					c.metricsManager.CounterLevelUps.Inc()
				}
				events = append(events, event)
			}
			current = next
		}

		final = current
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.RetryInitialInterval
	expBackoff.MaxInterval = c.config.RetryMaxInterval
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.config.ApplyRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, ErrVersionConflict) ||
			errors.Is(err, ErrFactAlreadyApplied) ||
			errors.Is(err, ErrFactAbandoned) {
			return final, applied, &ConflictError{
				UserID:   userID,
				Attempts: conflicts,
			}
		}
		return final, applied, storageErr("apply pending facts", err)
	}

	return final, applied, nil
}

// nextProgress returns the aggregate after fact is applied to current. The version is left
// untouched, the store bumps it.
func (c *Coordinator) nextProgress(ctx context.Context, current UserProgress, fact Fact) (UserProgress, error) {
	next := current
	next.UserID = fact.UserID
	now := c.now().UTC()

	switch fact.Kind {
	case FactActivityLogged:
		next.Exp = roundExp(math.Max(0, current.Exp+fact.Delta))
		next.ActivityCount++
		day := DayOf(fact.Day)
		if next.LastActiveDate == nil || day.After(*next.LastActiveDate) {
			next.LastActiveDate = &day
		}
		next.DecayBaseExp = next.Exp
		if fact.Weight != nil {
			weight := *fact.Weight
			next.LastWeight = &weight
		}
		streak, err := c.streakAsOf(ctx, fact.UserID, now)
		if err != nil {
			return UserProgress{}, err
		}
		next.Streak = streak

	case FactActivityRemoved:
		logged, err := c.store.ActivityFact(ctx, fact.UserID, fact.ActivityID, FactActivityLogged)
		if errors.Is(err, ErrFactNotFound) {
			return UserProgress{}, newValidationError("activityId", "activity %s has no %s fact", fact.ActivityID, FactActivityLogged)
		}
		if err != nil {
			return UserProgress{}, err
		}
		// an abandoned add never reached the aggregate
		if logged.Status != FactStatusAbandoned {
			next.Exp = roundExp(math.Max(0, current.Exp+fact.Delta))
			if next.ActivityCount > 0 {
				next.ActivityCount--
			}
		}
		if next.DecayBaseExp > next.Exp {
			next.DecayBaseExp = next.Exp
		}
		latest, err := c.store.LatestActivityDate(ctx, fact.UserID)
		if err != nil {
			return UserProgress{}, err
		}
		if latest != nil {
			day := DayOf(*latest)
			latest = &day
		}
		next.LastActiveDate = latest
		streak, err := c.streakAsOf(ctx, fact.UserID, now)
		if err != nil {
			return UserProgress{}, err
		}
		next.Streak = streak

	case FactPenalty:
		amount := math.Min(-fact.Delta, current.Exp)
		if amount < 0 {
			amount = 0
		}
		next.Exp = roundExp(current.Exp - amount)
		next.PenaltyTotal = roundExp(current.PenaltyTotal + amount)

	default:
		return UserProgress{}, newValidationError("kind", "unknown fact kind %q", fact.Kind)
	}

	levelInfo, err := LevelFor(next.Exp)
	if err != nil {
		return UserProgress{}, err
	}
	next.Level = levelInfo.Level
	next.UpdatedAt = now

	return next, nil
}

func (c *Coordinator) streakAsOf(ctx context.Context, userID string, asOf time.Time) (int, error) {
	to := DayOf(asOf)
	from := to.AddDate(0, 0, -c.config.StreakWindowDays)
	dates, err := c.store.ActivityDates(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	return Streak(dates, to, c.config.StreakGrace), nil
}

func (c *Coordinator) recordApplyFailure(ctx context.Context, fact Fact, applyErr error) {
	if err := c.store.RecordApplyFailure(ctx, fact.ID, applyErr.Error(), false); err != nil {
		log.Errorf("record apply failure of fact %s: %s", fact.ID, err)
	}
}

// publish delivers events on its own deadline, detached from the apply phase.
func (c *Coordinator) publish(ctx context.Context, events []ProgressEvent) {
	if c.publisher == nil || len(events) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.PublishTimeout)
	defer cancel()

	for _, event := range events {
		if err := c.publisher.Publish(ctx, event); err != nil {
			log.Errorf("publish %s event of user %s: %s", event.Type, event.UserID, err)
		}
	}
}

// detached returns a context that outlives the caller's cancellation but keeps its values.
func (c *Coordinator) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.ApplyTimeout <= 0 {
		return context.WithCancel(context.WithoutCancel(ctx))
	}
	return context.WithTimeout(context.WithoutCancel(ctx), c.config.ApplyTimeout)
}

func containsFact(facts []Fact, factID string) bool {
	for _, f := range facts {
		if f.ID == factID {
			return true
		}
	}
	return false
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return newValidationError("userId", "must not be empty")
	}
	return nil
}
