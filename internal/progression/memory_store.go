package progression

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a Store kept in process memory, used for local runs and tests.
type MemoryStore struct {
	activities map[string]Activity
	facts      map[string]*Fact
	factsOrder []*Fact
	progress   map[string]UserProgress
	seq        int64
	mutex      sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		activities: make(map[string]Activity),
		facts:      make(map[string]*Fact),
		progress:   make(map[string]UserProgress),
	}
}

func (s *MemoryStore) LogActivity(_ context.Context, activity Activity, fact Fact) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.activities[activity.ID]; ok {
		return fmt.Errorf("activity %s: %w", activity.ID, ErrAlreadyLogged)
	}
	if err := s.checkNewFact(fact); err != nil {
		return err
	}

	s.activities[activity.ID] = activity
	s.appendFact(fact)
	return nil
}

func (s *MemoryStore) GetActivity(_ context.Context, userID, activityID string) (*Activity, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	activity, ok := s.activities[activityID]
	if !ok || activity.UserID != userID || activity.RemovedAt != nil {
		return nil, ErrActivityNotFound
	}
	return &activity, nil
}

func (s *MemoryStore) ActivityFact(_ context.Context, userID, activityID string, kind FactKind) (*Fact, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, f := range s.factsOrder {
		if f.UserID == userID && f.ActivityID == activityID && f.Kind == kind {
			fact := *f
			return &fact, nil
		}
	}
	return nil, ErrFactNotFound
}

func (s *MemoryStore) ListActivities(_ context.Context, userID string, before time.Time, limit int) ([]Activity, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var activities []Activity
	for _, a := range s.activities {
		if a.UserID != userID || a.RemovedAt != nil || !a.CreatedAt.Before(before) {
			continue
		}
		activities = append(activities, a)
	}

	sort.Slice(activities, func(i, j int) bool {
		if activities[i].CreatedAt.Equal(activities[j].CreatedAt) {
			return activities[i].ID > activities[j].ID
		}
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *MemoryStore) ActivityExpTotal(_ context.Context, userID string) (float64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var total float64
	for _, f := range s.factsOrder {
		if f.UserID != userID || f.Kind != FactActivityLogged || f.Status == FactStatusAbandoned {
			continue
		}
		if a, ok := s.activities[f.ActivityID]; ok && a.RemovedAt == nil {
			total += a.ExpGained
		}
	}
	return roundExp(total), nil
}

func (s *MemoryStore) LogActivityRemoval(_ context.Context, userID, activityID string, removedAt time.Time, fact Fact) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	activity, ok := s.activities[activityID]
	if !ok || activity.UserID != userID || activity.RemovedAt != nil {
		return ErrActivityNotFound
	}
	if err := s.checkNewFact(fact); err != nil {
		return err
	}

	activity.RemovedAt = &removedAt
	s.activities[activityID] = activity
	s.appendFact(fact)
	return nil
}

func (s *MemoryStore) LogPenalties(_ context.Context, facts []Fact) ([]Fact, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var written []Fact
	for _, fact := range facts {
		if s.hasPenalty(fact.UserID, DayOf(fact.Day)) {
			continue
		}
		if err := s.checkNewFact(fact); err != nil {
			return written, err
		}
		fact.Day = DayOf(fact.Day)
		written = append(written, *s.appendFact(fact))
	}
	return written, nil
}

func (s *MemoryStore) PenalizedDays(_ context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	from, to = DayOf(from), DayOf(to)
	var days []time.Time
	for _, f := range s.factsOrder {
		if f.UserID != userID || f.Kind != FactPenalty {
			continue
		}
		if f.Day.Before(from) || f.Day.After(to) {
			continue
		}
		days = append(days, f.Day)
	}
	return days, nil
}

func (s *MemoryStore) ActivityDates(_ context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	from, to = DayOf(from), DayOf(to)
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, a := range s.activities {
		if a.UserID != userID || a.RemovedAt != nil {
			continue
		}
		day := DayOf(a.CreatedAt)
		if day.Before(from) || day.After(to) {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, day)
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
	return dates, nil
}

func (s *MemoryStore) LatestActivityDate(_ context.Context, userID string) (*time.Time, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var latest *time.Time
	for _, a := range s.activities {
		if a.UserID != userID || a.RemovedAt != nil {
			continue
		}
		if latest == nil || a.CreatedAt.After(*latest) {
			createdAt := a.CreatedAt
			latest = &createdAt
		}
	}
	return latest, nil
}

func (s *MemoryStore) GetProgress(_ context.Context, userID string) (UserProgress, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	progress, ok := s.progress[userID]
	if !ok {
		return NewUserProgress(userID), nil
	}
	return progress, nil
}

func (s *MemoryStore) PendingFacts(_ context.Context, userID string) ([]Fact, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var pending []Fact
	for _, f := range s.factsOrder {
		if f.UserID == userID && f.Status == FactStatusLogged {
			pending = append(pending, *f)
		}
	}
	return pending, nil
}

func (s *MemoryStore) ApplyFact(_ context.Context, fact Fact, expectedVersion int64, next UserProgress) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, ok := s.facts[fact.ID]
	if !ok {
		return ErrNotFound
	}
	switch stored.Status {
	case FactStatusApplied:
		return ErrFactAlreadyApplied
	case FactStatusAbandoned:
		return ErrFactAbandoned
	}

	current, ok := s.progress[fact.UserID]
	currentVersion := int64(0)
	if ok {
		currentVersion = current.Version
	}
	if currentVersion != expectedVersion {
		return ErrVersionConflict
	}

	next.UserID = fact.UserID
	next.Version = expectedVersion + 1
	s.progress[fact.UserID] = next

	appliedAt := next.UpdatedAt
	stored.Status = FactStatusApplied
	stored.AppliedAt = &appliedAt
	return nil
}

func (s *MemoryStore) RecordApplyFailure(_ context.Context, factID, reason string, abandon bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored, ok := s.facts[factID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != FactStatusLogged {
		return nil
	}

	stored.Attempts++
	stored.LastError = reason
	if abandon {
		stored.Status = FactStatusAbandoned
	}
	return nil
}

func (s *MemoryStore) UsersWithPendingFacts(_ context.Context, loggedBefore time.Time, limit int) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	seen := make(map[string]struct{})
	var users []string
	for _, f := range s.factsOrder {
		if f.Status != FactStatusLogged || !f.CreatedAt.Before(loggedBefore) {
			continue
		}
		if _, ok := seen[f.UserID]; ok {
			continue
		}
		seen[f.UserID] = struct{}{}
		users = append(users, f.UserID)
	}

	sort.Strings(users)
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *MemoryStore) IdleUsers(_ context.Context, lastActiveBefore time.Time, afterUserID string, limit int) ([]UserProgress, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var idle []UserProgress
	for userID, p := range s.progress {
		if userID <= afterUserID || p.LastActiveDate == nil {
			continue
		}
		if p.LastActiveDate.Before(lastActiveBefore) {
			idle = append(idle, p)
		}
	}

	sort.Slice(idle, func(i, j int) bool {
		return idle[i].UserID < idle[j].UserID
	})
	if limit > 0 && len(idle) > limit {
		idle = idle[:limit]
	}
	return idle, nil
}

// Fact returns a copy of a stored fact.
func (s *MemoryStore) Fact(factID string) (Fact, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	f, ok := s.facts[factID]
	if !ok {
		return Fact{}, false
	}
	return *f, true
}

// checkNewFact enforces the fact idempotency keys. Must be called with the mutex held.
func (s *MemoryStore) checkNewFact(fact Fact) error {
	if _, ok := s.facts[fact.ID]; ok {
		return fmt.Errorf("fact %s: %w", fact.ID, ErrAlreadyLogged)
	}
	if fact.Kind == FactPenalty {
		return nil
	}
	for _, f := range s.factsOrder {
		if f.UserID == fact.UserID && f.ActivityID == fact.ActivityID && f.Kind == fact.Kind {
			return fmt.Errorf("%s fact of activity %s: %w", fact.Kind, fact.ActivityID, ErrAlreadyLogged)
		}
	}
	return nil
}

func (s *MemoryStore) hasPenalty(userID string, day time.Time) bool {
	for _, f := range s.factsOrder {
		if f.UserID == userID && f.Kind == FactPenalty && f.Day.Equal(day) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) appendFact(fact Fact) *Fact {
	s.seq++
	fact.Seq = s.seq
	if fact.Status == "" {
		fact.Status = FactStatusLogged
	}
	stored := &fact
	s.facts[fact.ID] = stored
	s.factsOrder = append(s.factsOrder, stored)
	return stored
}
