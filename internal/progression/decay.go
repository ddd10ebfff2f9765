package progression

import (
	"time"
)

// DecayPolicy controls inactivity penalties.
//
// Non-compounding: every inactive day costs RatePerDay of DecayBaseExp, the EXP the user had
// right after their last applied activity. Compounding: every inactive day costs RatePerDay
// of the EXP left after the previous day's penalty.
type DecayPolicy struct {
	RatePerDay float64
	// MaxPenaltyDays caps how many days of one inactivity stretch are penalized.
	MaxPenaltyDays int
	Compounding    bool
}

func DefaultDecayPolicy() DecayPolicy {
	return DecayPolicy{
		RatePerDay:     0.05,
		MaxPenaltyDays: 7,
		Compounding:    false,
	}
}

// PenaltyDay is one owed penalty.
type PenaltyDay struct {
	Day    time.Time
	Amount float64
}

// InactiveDays returns the days after lastActive and before asOf that may be penalized,
// capped at MaxPenaltyDays. The asOf day itself is never included.
func InactiveDays(lastActive, asOf time.Time, policy DecayPolicy) []time.Time {
	last := DayOf(lastActive)
	end := DayOf(asOf)

	var days []time.Time
	for d := last.AddDate(0, 0, 1); d.Before(end); d = d.AddDate(0, 0, 1) {
		if policy.MaxPenaltyDays > 0 && len(days) >= policy.MaxPenaltyDays {
			break
		}
		days = append(days, d)
	}
	return days
}

// PenaltiesOwed computes the penalties for the inactive days of p as of asOf, skipping days
// that were already penalized. Already penalized days are assumed to be reflected in p.Exp.
func PenaltiesOwed(p UserProgress, asOf time.Time, alreadyPenalized map[time.Time]struct{}, policy DecayPolicy) []PenaltyDay {
	if p.LastActiveDate == nil || policy.RatePerDay <= 0 {
		return nil
	}

	running := p.Exp
	var owed []PenaltyDay
	for _, day := range InactiveDays(*p.LastActiveDate, asOf, policy) {
		if _, done := alreadyPenalized[day]; done {
			continue
		}
		if running <= 0 {
			break
		}

		base := p.DecayBaseExp
		if policy.Compounding {
			base = running
		}
		amount := roundExp(base * policy.RatePerDay)
		if amount > running {
			amount = running
		}
		if amount <= 0 {
			continue
		}

		running = roundExp(running - amount)
		owed = append(owed, PenaltyDay{
			Day:    day,
			Amount: amount,
		})
	}
	return owed
}
