package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/domain"
	"github.com/hero-tracker/internal/postgres"
	"github.com/hero-tracker/internal/storage"
)

// JournalWorker periodically copies each user's workout document into the
// PostgreSQL journal, and can rebuild a lost document from the journal.
type JournalWorker struct {
	store    storage.Documents
	postgres *postgres.Repository
	config   *config.JournalConfig
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewJournalWorker creates a new journal worker
func NewJournalWorker(
	store storage.Documents,
	pg *postgres.Repository,
	cfg *config.JournalConfig,
	logger *slog.Logger,
) *JournalWorker {
	return &JournalWorker{
		store:    store,
		postgres: pg,
		config:   cfg,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background journal process
func (w *JournalWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("journal worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background journal process
func (w *JournalWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("journal worker stopped")
	return nil
}

// run is the main worker loop
func (w *JournalWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.journalAll(ctx)
		}
	}
}

// journalAll copies every registered user's workout document into PostgreSQL
func (w *JournalWorker) journalAll(ctx context.Context) {
	startTime := time.Now()

	userIDs, err := w.postgres.ListUserIDs(ctx)
	if err != nil {
		w.logger.Error("failed to list users for journal sweep", "error", err)
		return
	}

	journaled := 0
	errorCount := 0
	for _, userID := range userIDs {
		if err := w.JournalUser(ctx, userID); err != nil {
			w.logger.Error("failed to journal workouts", "user_id", userID, "error", err)
			errorCount++
		} else {
			journaled++
		}
	}

	w.logger.Info("journal sweep completed",
		"users", journaled,
		"errors", errorCount,
		"duration", time.Since(startTime),
	)
}

// JournalUser upserts one user's workout records into the journal
func (w *JournalWorker) JournalUser(ctx context.Context, userID string) error {
	data, ok, err := w.store.Load(ctx, storage.WorkoutsKey(userID))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var records []domain.WorkoutRecord
	if err := json.Unmarshal(data, &records); err != nil {
		w.logger.Warn("corrupt workouts document skipped by journal", "user_id", userID, "error", err)
		return nil
	}

	for _, record := range records {
		if err := w.postgres.UpsertWorkoutDay(ctx, userID, record); err != nil {
			return err
		}
	}
	return nil
}

// RestoreAll rebuilds missing workout documents from the journal. Run at
// startup so a wiped or corrupted Redis loses at most one journal interval
// of history.
func (w *JournalWorker) RestoreAll(ctx context.Context) error {
	userIDs, err := w.postgres.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	restored := 0
	for _, userID := range userIDs {
		ok, err := w.restoreUser(ctx, userID)
		if err != nil {
			w.logger.Warn("failed to restore workouts from journal", "user_id", userID, "error", err)
			continue
		}
		if ok {
			restored++
		}
	}

	if restored > 0 {
		w.logger.Info("restored workout documents from journal", "users", restored)
	}
	return nil
}

// restoreUser writes a user's journaled history back as the workouts
// document when no valid document exists
func (w *JournalWorker) restoreUser(ctx context.Context, userID string) (bool, error) {
	data, ok, err := w.store.Load(ctx, storage.WorkoutsKey(userID))
	if err != nil {
		return false, err
	}
	if ok {
		var records []domain.WorkoutRecord
		if json.Unmarshal(data, &records) == nil {
			return false, nil
		}
		// Document exists but cannot be parsed; rebuild it.
	}

	records, err := w.postgres.LoadWorkoutDays(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		return false, err
	}
	if err := w.store.Save(ctx, storage.WorkoutsKey(userID), encoded); err != nil {
		return false, err
	}
	return true, nil
}
