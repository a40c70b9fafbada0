package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/storage"
)

// Workouts is the workout log manager. It owns the per-day record
// collection and the Limit Break toggle. Records are created on first
// write for a date, merged on later writes and never deleted.
type Workouts struct {
	store  storage.Documents
	ids    IDSource
	clock  Clock
	logger *slog.Logger
}

// NewWorkouts creates the workout log manager
func NewWorkouts(store storage.Documents, ids IDSource, clock Clock, logger *slog.Logger) *Workouts {
	return &Workouts{
		store:  store,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// All returns the full workout collection in insertion order
func (w *Workouts) All(ctx context.Context, s Session) ([]domain.WorkoutRecord, error) {
	return w.load(ctx, s)
}

// GetByDate returns the record for a date or ErrRecordNotFound. No record
// is fabricated; callers needing a default render one without persisting.
func (w *Workouts) GetByDate(ctx context.Context, s Session, date string) (*domain.WorkoutRecord, error) {
	records, err := w.load(ctx, s)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Date == date {
			return &records[i], nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// Save upserts a day's record keyed by date. Supplied fields overlay the
// existing record; nil fields are preserved, so a distance-only update can
// never reset a previously set status. New records start from defaults.
// Every save persists the whole collection.
func (w *Workouts) Save(ctx context.Context, s Session, update domain.WorkoutUpdate) (*domain.WorkoutRecord, error) {
	if update.Date == "" {
		return nil, domain.ErrDateRequired
	}
	if _, err := time.Parse("2006-01-02", update.Date); err != nil {
		return nil, domain.ErrInvalidRequest
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.ErrInvalidRequest
	}
	if update.DistanceKM != nil && *update.DistanceKM < 0 {
		return nil, domain.ErrInvalidRequest
	}
	if !s.LoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}

	records, err := w.load(ctx, s)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if records[i].Date == update.Date {
			idx = i
			break
		}
	}
	if idx < 0 {
		records = append(records, domain.WorkoutRecord{
			ID:     w.ids.NewID(),
			Date:   update.Date,
			Status: domain.StatusUnset,
		})
		idx = len(records) - 1
	}

	merge(&records[idx], update)

	if err := w.save(ctx, s, records); err != nil {
		return nil, err
	}
	return &records[idx], nil
}

// MarkMissed records a date as skipped without touching its other fields
func (w *Workouts) MarkMissed(ctx context.Context, s Session, date string) (*domain.WorkoutRecord, error) {
	missed := domain.StatusMissed
	return w.Save(ctx, s, domain.WorkoutUpdate{Date: date, Status: &missed})
}

// SetDoubled flips the Limit Break flag for a date
func (w *Workouts) SetDoubled(ctx context.Context, s Session, date string, on bool) (*domain.WorkoutRecord, error) {
	return w.Save(ctx, s, domain.WorkoutUpdate{Date: date, Doubled: &on})
}

// AddDistance applies a discrete distance increment from an external
// activity source to a date's cumulative distance
func (w *Workouts) AddDistance(ctx context.Context, s Session, date string, deltaKM float64) (*domain.WorkoutRecord, error) {
	current := 0.0
	record, err := w.GetByDate(ctx, s, date)
	if err == nil {
		current = record.DistanceKM
	}

	total := current + deltaKM
	if total < 0 {
		total = 0
	}
	return w.Save(ctx, s, domain.WorkoutUpdate{Date: date, DistanceKM: &total})
}

// merge overlays the update's supplied fields onto the record
func merge(record *domain.WorkoutRecord, update domain.WorkoutUpdate) {
	if update.PushUps != nil {
		record.PushUps = *update.PushUps
	}
	if update.SitUps != nil {
		record.SitUps = *update.SitUps
	}
	if update.Squats != nil {
		record.Squats = *update.Squats
	}
	if update.DistanceKM != nil {
		record.DistanceKM = *update.DistanceKM
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Doubled != nil {
		record.Doubled = *update.Doubled
	}
}

// load returns the session's workout collection; an absent or corrupt
// document yields an empty collection, never a failure
func (w *Workouts) load(ctx context.Context, s Session) ([]domain.WorkoutRecord, error) {
	if !s.LoggedIn() {
		return nil, nil
	}

	data, ok, err := w.store.Load(ctx, storage.WorkoutsKey(s.UserID))
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var records []domain.WorkoutRecord
	if err := json.Unmarshal(data, &records); err != nil {
		w.logger.Warn("corrupt workouts document, falling back to empty", "user_id", s.UserID, "error", err)
		return nil, nil
	}
	return records, nil
}

// save persists the whole workout collection snapshot
func (w *Workouts) save(ctx context.Context, s Session, records []domain.WorkoutRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding workouts: %w", err)
	}
	if err := w.store.Save(ctx, storage.WorkoutsKey(s.UserID), data); err != nil {
		return fmt.Errorf("saving workouts: %w", err)
	}
	return nil
}
