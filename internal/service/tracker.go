package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/domain"
)

// Tracker glues external activity events to the core managers. Completing
// a workout and awarding experience are two independent commits, one per
// document; there is no cross-document transaction.
type Tracker struct {
	accounts *Accounts
	workouts *Workouts
	rules    *config.GameConfig
	clock    Clock
	logger   *slog.Logger
}

// NewTracker creates the tracker glue
func NewTracker(accounts *Accounts, workouts *Workouts, rules *config.GameConfig, clock Clock, logger *slog.Logger) *Tracker {
	return &Tracker{
		accounts: accounts,
		workouts: workouts,
		rules:    rules,
		clock:    clock,
		logger:   logger,
	}
}

// Complete marks a date done and then awards the day's experience. The XP
// reward doubles when the Limit Break flag is on for that record.
func (t *Tracker) Complete(ctx context.Context, s Session, update domain.WorkoutUpdate) (*domain.WorkoutRecord, *domain.UserProfile, error) {
	done := domain.StatusDone
	update.Status = &done

	record, err := t.workouts.Save(ctx, s, update)
	if err != nil {
		return nil, nil, err
	}

	reward := t.rules.BaseXPReward
	if record.Doubled {
		reward *= 2
	}
	profile, err := t.accounts.AwardExperience(ctx, s, reward)
	if err != nil {
		// The workout commit already happened; surface the award failure.
		return record, nil, fmt.Errorf("awarding experience: %w", err)
	}

	return record, profile, nil
}

// Apply routes one tracker event into the core. Distance events accumulate
// onto the day's record; completed events run the full completion flow.
func (t *Tracker) Apply(ctx context.Context, event domain.TrackerEvent) error {
	if event.UserID == "" {
		return domain.ErrInvalidRequest
	}
	s := Session{UserID: event.UserID}

	date := event.Date
	if date == "" {
		date = t.clock.Today()
	}

	switch event.EventType {
	case domain.TrackerEventDistance:
		_, err := t.workouts.AddDistance(ctx, s, date, event.DistanceKM)
		return err
	case domain.TrackerEventCompleted:
		_, _, err := t.Complete(ctx, s, domain.WorkoutUpdate{Date: date})
		return err
	default:
		t.logger.Warn("unknown tracker event type", "event_type", event.EventType)
		return nil
	}
}
