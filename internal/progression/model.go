package progression

import (
	"time"
)

// Category is the exercise category of an activity.
type Category string

const (
	CategoryRunning  Category = "running"
	CategoryCycling  Category = "cycling"
	CategorySwimming Category = "swimming"
	CategoryWalking  Category = "walking"
	CategoryStrength Category = "strength"
	CategoryYoga     Category = "yoga"
	CategoryHIIT     Category = "hiit"
	CategoryOther    Category = "other"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryRunning,
		CategoryCycling,
		CategorySwimming,
		CategoryWalking,
		CategoryStrength,
		CategoryYoga,
		CategoryHIIT,
		CategoryOther:
		return true
	default:
		return false
	}
}

// Intensity can be one of:
//   - low
//   - medium
//   - high
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func (i Intensity) String() string {
	return string(i)
}

func (i Intensity) IsValid() bool {
	_, ok := intensityMultipliers[i]
	return ok
}

// Activity is a logged workout. Once logged it is never rewritten, except for RemovedAt
// which is set by the compensating removal.
type Activity struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Category       Category   `json:"category"`
	DurationMin    int        `json:"durationMin"`
	Intensity      Intensity  `json:"intensity"`
	HasEvidence    bool       `json:"hasEvidence"`
	EvidenceURL    string     `json:"evidenceUrl,omitempty"`
	Weight         float64    `json:"weight"`
	BaselineWeight *float64   `json:"baselineWeight,omitempty"`
	ExpGained      float64    `json:"expGained"`
	CreatedAt      time.Time  `json:"createdAt"`
	RemovedAt      *time.Time `json:"removedAt,omitempty"`
}

// ActivityInput is what a caller submits; id, timestamps and EXP are assigned by the coordinator.
type ActivityInput struct {
	Category    Category  `json:"category"`
	DurationMin int       `json:"durationMin"`
	Intensity   Intensity `json:"intensity"`
	HasEvidence bool      `json:"hasEvidence"`
	EvidenceURL string    `json:"evidenceUrl"`
	Weight      float64   `json:"weight"`
}

// UserProgress is the per-user aggregate. Level is always recomputed from Exp before a write.
type UserProgress struct {
	UserID         string     `json:"userId"`
	Exp            float64    `json:"exp"`
	Level          int        `json:"level"`
	Streak         int        `json:"streak"`
	LastActiveDate *time.Time `json:"lastActiveDate,omitempty"`
	PenaltyTotal   float64    `json:"penaltyTotal"`
	DecayBaseExp   float64    `json:"decayBaseExp"`
	LastWeight     *float64   `json:"lastWeight,omitempty"`
	ActivityCount  int        `json:"activityCount"`
	// Version is the compare-and-set token; 0 means the aggregate was never written.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserProgress returns the initial aggregate for a user that has no stored progress.
func NewUserProgress(userID string) UserProgress {
	return UserProgress{
		UserID: userID,
		Level:  1,
	}
}

// FactKind can be one of:
//   - activity_logged
//   - activity_removed
//   - penalty
type FactKind string

const (
	FactActivityLogged  FactKind = "activity_logged"
	FactActivityRemoved FactKind = "activity_removed"
	FactPenalty         FactKind = "penalty"
)

func (k FactKind) String() string {
	return string(k)
}

// FactStatus is the state of a fact in the LOGGED -> APPLIED protocol.
type FactStatus string

const (
	FactStatusLogged    FactStatus = "logged"
	FactStatusApplied   FactStatus = "applied"
	FactStatusAbandoned FactStatus = "abandoned"
)

// Fact is an append-only ledger entry that has to be reflected in UserProgress exactly once.
type Fact struct {
	ID     string   `json:"id"`
	UserID string   `json:"userId"`
	Seq    int64    `json:"seq"`
	Kind   FactKind `json:"kind"`
	// Delta is the signed EXP change carried by the fact.
	Delta float64 `json:"delta"`
	// ActivityID is set for activity facts.
	ActivityID string `json:"activityId,omitempty"`
	// Day is the activity day for activity facts and the penalized day for penalties.
	Day time.Time `json:"day"`
	// Weight is the body weight reported with an activity_logged fact.
	Weight    *float64   `json:"weight,omitempty"`
	Status    FactStatus `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"lastError,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	AppliedAt *time.Time `json:"appliedAt,omitempty"`
}

// ApplyStatus is reported to callers of submit and delete.
type ApplyStatus string

const (
	StatusApplied       ApplyStatus = "APPLIED"
	StatusLoggedPending ApplyStatus = "LOGGED_PENDING"
)

type SubmitResult struct {
	ActivityID string      `json:"activityId"`
	FactID     string      `json:"factId"`
	ExpDelta   float64     `json:"expDelta"`
	NewExp     float64     `json:"newExp"`
	NewLevel   int         `json:"newLevel"`
	NewStreak  int         `json:"newStreak"`
	LeveledUp  bool        `json:"leveledUp"`
	Status     ApplyStatus `json:"status"`
}

type DeleteResult struct {
	ActivityID string      `json:"activityId"`
	FactID     string      `json:"factId"`
	ExpDelta   float64     `json:"expDelta"`
	Status     ApplyStatus `json:"status"`
}

type ProgressView struct {
	UserID             string        `json:"userId"`
	Exp                float64       `json:"exp"`
	Level              int           `json:"level"`
	ExpIntoLevel       float64       `json:"expIntoLevel"`
	ExpRequiredForNext float64       `json:"expRequiredForNext"`
	Streak             int           `json:"streak"`
	PenaltyTotal       float64       `json:"penaltyTotal"`
	ActivityCount      int           `json:"activityCount"`
	TotalActivityExp   float64       `json:"totalActivityExp"`
	Achievements       []Achievement `json:"achievements"`
}

// ActivityHistory is one page of a user's live activities, newest first.
type ActivityHistory struct {
	Activities []Activity `json:"activities"`
	// NextBefore is the cursor of the following page, nil on the last one.
	NextBefore *time.Time `json:"nextBefore,omitempty"`
	TotalExp   float64    `json:"totalExp"`
}

type SweepResult struct {
	AsOf               time.Time `json:"asOf"`
	UsersScanned       int       `json:"usersScanned"`
	UsersPenalized     int       `json:"usersPenalized"`
	TotalPenaltyEvents int       `json:"totalPenaltyEvents"`
	TotalPenalty       float64   `json:"totalPenalty"`
	UsersFailed        int       `json:"usersFailed"`
}

type ReconcileResult struct {
	UsersScanned   int `json:"usersScanned"`
	FactsApplied   int `json:"factsApplied"`
	FactsAbandoned int `json:"factsAbandoned"`
	UsersFailed    int `json:"usersFailed"`
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
