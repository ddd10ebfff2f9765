package progression

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=progression_test

// Store is the storage collaborator of the coordinator.
// Implementations must never map an infrastructure failure to "not found" or an empty result.
type Store interface {
	// LogActivity durably writes the activity together with its activity_logged fact.
	LogActivity(ctx context.Context, activity Activity, fact Fact) error
	// GetActivity returns ErrActivityNotFound if the user has no such live activity.
	GetActivity(ctx context.Context, userID, activityID string) (*Activity, error)
	// ActivityFact returns the activity's fact of the given kind, whatever its status, or
	// ErrFactNotFound.
	ActivityFact(ctx context.Context, userID, activityID string, kind FactKind) (*Fact, error)
	// ListActivities returns up to limit live activities created before the given time, newest first.
	ListActivities(ctx context.Context, userID string, before time.Time, limit int) ([]Activity, error)
	// ActivityExpTotal sums the EXP of live activities whose activity_logged fact was not abandoned.
	ActivityExpTotal(ctx context.Context, userID string) (float64, error)
	// LogActivityRemoval marks the activity removed and writes its activity_removed fact,
	// both or neither. ErrActivityNotFound if it is unknown or already removed.
	LogActivityRemoval(ctx context.Context, userID, activityID string, removedAt time.Time, fact Fact) error
	// LogPenalties writes penalty facts, skipping (user, day) pairs that already have one,
	// and returns the facts that were written.
	LogPenalties(ctx context.Context, facts []Fact) ([]Fact, error)
	// PenalizedDays returns the days in [from, to] that already have a penalty fact.
	PenalizedDays(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
	// ActivityDates returns the distinct days of live activities in [from, to], newest first.
	ActivityDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
	// LatestActivityDate returns nil when the user has no live activity.
	LatestActivityDate(ctx context.Context, userID string) (*time.Time, error)
	// GetProgress returns NewUserProgress (version 0) for a user without stored progress.
	GetProgress(ctx context.Context, userID string) (UserProgress, error)
	// PendingFacts returns the user's logged, not yet applied facts in sequence order.
	PendingFacts(ctx context.Context, userID string) ([]Fact, error)
	// ApplyFact atomically marks the fact applied and replaces the aggregate with next,
	// only if the fact is still logged (else ErrFactAlreadyApplied / ErrFactAbandoned)
	// and the stored version equals expectedVersion (else ErrVersionConflict).
	// The stored version becomes expectedVersion+1.
	ApplyFact(ctx context.Context, fact Fact, expectedVersion int64, next UserProgress) error
	// RecordApplyFailure bumps the attempt counter of a logged fact and optionally abandons it.
	RecordApplyFailure(ctx context.Context, factID, reason string, abandon bool) error
	// UsersWithPendingFacts lists users owning logged facts created before loggedBefore.
	UsersWithPendingFacts(ctx context.Context, loggedBefore time.Time, limit int) ([]string, error)
	// IdleUsers lists progress of users last active before lastActiveBefore, ordered by
	// user id and starting after afterUserID.
	IdleUsers(ctx context.Context, lastActiveBefore time.Time, afterUserID string, limit int) ([]UserProgress, error)
}

// timeoutStore bounds every store call and tags failures as StorageError.
type timeoutStore struct {
	store   Store
	timeout time.Duration
}

func newTimeoutStore(store Store, timeout time.Duration) *timeoutStore {
	return &timeoutStore{
		store:   store,
		timeout: timeout,
	}
}

func (s *timeoutStore) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *timeoutStore) LogActivity(ctx context.Context, activity Activity, fact Fact) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return storageErr("log activity", s.store.LogActivity(ctx, activity, fact))
}

func (s *timeoutStore) GetActivity(ctx context.Context, userID, activityID string) (*Activity, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	activity, err := s.store.GetActivity(ctx, userID, activityID)
	return activity, storageErr("get activity", err)
}

func (s *timeoutStore) ActivityFact(ctx context.Context, userID, activityID string, kind FactKind) (*Fact, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	fact, err := s.store.ActivityFact(ctx, userID, activityID, kind)
	return fact, storageErr("activity fact", err)
}

func (s *timeoutStore) ListActivities(ctx context.Context, userID string, before time.Time, limit int) ([]Activity, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	activities, err := s.store.ListActivities(ctx, userID, before, limit)
	return activities, storageErr("list activities", err)
}

func (s *timeoutStore) ActivityExpTotal(ctx context.Context, userID string) (float64, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	total, err := s.store.ActivityExpTotal(ctx, userID)
	return total, storageErr("activity exp total", err)
}

func (s *timeoutStore) LogActivityRemoval(ctx context.Context, userID, activityID string, removedAt time.Time, fact Fact) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return storageErr("log activity removal", s.store.LogActivityRemoval(ctx, userID, activityID, removedAt, fact))
}

func (s *timeoutStore) LogPenalties(ctx context.Context, facts []Fact) ([]Fact, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	written, err := s.store.LogPenalties(ctx, facts)
	return written, storageErr("log penalties", err)
}

func (s *timeoutStore) PenalizedDays(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	days, err := s.store.PenalizedDays(ctx, userID, from, to)
	return days, storageErr("penalized days", err)
}

func (s *timeoutStore) ActivityDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	dates, err := s.store.ActivityDates(ctx, userID, from, to)
	return dates, storageErr("activity dates", err)
}

func (s *timeoutStore) LatestActivityDate(ctx context.Context, userID string) (*time.Time, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	latest, err := s.store.LatestActivityDate(ctx, userID)
	return latest, storageErr("latest activity date", err)
}

func (s *timeoutStore) GetProgress(ctx context.Context, userID string) (UserProgress, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	progress, err := s.store.GetProgress(ctx, userID)
	return progress, storageErr("get progress", err)
}

func (s *timeoutStore) PendingFacts(ctx context.Context, userID string) ([]Fact, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	facts, err := s.store.PendingFacts(ctx, userID)
	return facts, storageErr("pending facts", err)
}

func (s *timeoutStore) ApplyFact(ctx context.Context, fact Fact, expectedVersion int64, next UserProgress) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return storageErr("apply fact", s.store.ApplyFact(ctx, fact, expectedVersion, next))
}

func (s *timeoutStore) RecordApplyFailure(ctx context.Context, factID, reason string, abandon bool) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return storageErr("record apply failure", s.store.RecordApplyFailure(ctx, factID, reason, abandon))
}

func (s *timeoutStore) UsersWithPendingFacts(ctx context.Context, loggedBefore time.Time, limit int) ([]string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	users, err := s.store.UsersWithPendingFacts(ctx, loggedBefore, limit)
	return users, storageErr("users with pending facts", err)
}

func (s *timeoutStore) IdleUsers(ctx context.Context, lastActiveBefore time.Time, afterUserID string, limit int) ([]UserProgress, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	users, err := s.store.IdleUsers(ctx, lastActiveBefore, afterUserID, limit)
	return users, storageErr("idle users", err)
}
