package progression

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=events_mocks_test.go -package=progression_test

type EventType string

const (
	EventLevelUp        EventType = "level_up"
	EventLevelDown      EventType = "level_down"
	EventPenaltyApplied EventType = "penalty_applied"
)

// ProgressEvent is emitted after a fact changed the user's level or cost them EXP.
type ProgressEvent struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"userId"`
	FactID     string    `json:"factId"`
	PrevLevel  int       `json:"prevLevel"`
	Level      int       `json:"level"`
	Exp        float64   `json:"exp"`
	Delta      float64   `json:"delta"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher delivers progress events. Delivery is best effort; a failure never
// rolls back an applied fact.
type EventPublisher interface {
	Publish(ctx context.Context, event ProgressEvent) error
}

func progressEvents(prev, next UserProgress, fact Fact, at time.Time) []ProgressEvent {
	var events []ProgressEvent
	newEvent := func(t EventType) ProgressEvent {
		return ProgressEvent{
			Type:       t,
			UserID:     next.UserID,
			FactID:     fact.ID,
			PrevLevel:  prev.Level,
			Level:      next.Level,
			Exp:        next.Exp,
			Delta:      roundExp(next.Exp - prev.Exp),
			OccurredAt: at,
		}
	}

	if fact.Kind == FactPenalty && next.Exp < prev.Exp {
		events = append(events, newEvent(EventPenaltyApplied))
	}
	switch {
	case next.Level > prev.Level:
		events = append(events, newEvent(EventLevelUp))
	case next.Level < prev.Level:
		events = append(events, newEvent(EventLevelDown))
	}
	return events
}
