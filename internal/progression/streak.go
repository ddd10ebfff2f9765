package progression

import (
	"fmt"
	"strings"
	"time"
)

// GracePolicy decides what happens when the reference day itself has no activity yet.
type GracePolicy int

const (
	// GraceNone: no activity on the reference day means the streak is 0.
	GraceNone GracePolicy = iota
	// GracePendingToday: the reference day is still "pending", so the walk starts at the
	// day before and a streak that ended yesterday is still alive.
	GracePendingToday
)

func (g GracePolicy) String() string {
	switch g {
	case GraceNone:
		return "none"
	case GracePendingToday:
		return "pending_today"
	default:
		return fmt.Sprintf("grace(%d)", int(g))
	}
}

// ParseGracePolicy parses the config representation of a grace policy.
func ParseGracePolicy(s string) (GracePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending_today":
		return GracePendingToday, nil
	case "none":
		return GraceNone, nil
	default:
		return GraceNone, fmt.Errorf("unknown streak grace policy: %s", s)
	}
}

// DistinctDays deduplicates timestamps by UTC calendar day.
func DistinctDays(dates []time.Time) map[time.Time]struct{} {
	days := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		days[DayOf(d)] = struct{}{}
	}
	return days
}

// Streak counts consecutive days with at least one activity, walking back from asOf.
func Streak(dates []time.Time, asOf time.Time, grace GracePolicy) int {
	days := DistinctDays(dates)
	if len(days) == 0 {
		return 0
	}

	current := DayOf(asOf)
	if _, ok := days[current]; !ok {
		if grace != GracePendingToday {
			return 0
		}
		current = current.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[current]; !ok {
			break
		}
		streak++
		current = current.AddDate(0, 0, -1)
	}
	return streak
}
