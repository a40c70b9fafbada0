package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL progression journal: a durable record of
// users, progression events and per-day workout history behind the Redis
// documents. Writes into it are best-effort from the callers' side.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			friend_code VARCHAR(16) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS progression_events (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			kind VARCHAR(20) NOT NULL,
			amount INT NOT NULL,
			item_id VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS workout_days (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			day DATE NOT NULL,
			record_id VARCHAR(64) NOT NULL,
			push_ups BOOLEAN NOT NULL DEFAULT FALSE,
			sit_ups BOOLEAN NOT NULL DEFAULT FALSE,
			squats BOOLEAN NOT NULL DEFAULT FALSE,
			distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			status VARCHAR(10) NOT NULL DEFAULT 'unset',
			doubled BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progression_events_user ON progression_events(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_workout_days_user ON workout_days(user_id, day DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// RegisterUser records a freshly logged-in user so the journal worker can
// enumerate accounts
func (r *Repository) RegisterUser(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO users (id, name, friend_code, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, friend_code = $3
	`
	_, err := r.pool.Exec(ctx, query, profile.ID, profile.Name, profile.FriendCode, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("registering user: %w", err)
	}
	return nil
}

// ListUserIDs returns all registered user IDs
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RecordEvent records a progression event for auditing
func (r *Repository) RecordEvent(ctx context.Context, event domain.ProgressionEvent) error {
	query := `
		INSERT INTO progression_events (user_id, kind, amount, item_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`
	_, err := r.pool.Exec(ctx, query,
		event.UserID,
		event.Kind,
		event.Amount,
		event.ItemID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// UpsertWorkoutDay journals one day's workout record
func (r *Repository) UpsertWorkoutDay(ctx context.Context, userID string, record domain.WorkoutRecord) error {
	query := `
		INSERT INTO workout_days (user_id, day, record_id, push_ups, sit_ups, squats, distance_km, status, doubled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, day)
		DO UPDATE SET
			record_id = $3,
			push_ups = $4,
			sit_ups = $5,
			squats = $6,
			distance_km = $7,
			status = $8,
			doubled = $9,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.pool.Exec(ctx, query,
		userID,
		record.Date,
		record.ID,
		record.PushUps,
		record.SitUps,
		record.Squats,
		record.DistanceKM,
		string(record.Status),
		record.Doubled,
	)
	if err != nil {
		return fmt.Errorf("upserting workout day: %w", err)
	}
	return nil
}

// LoadWorkoutDays returns a user's journaled workout history in day order
func (r *Repository) LoadWorkoutDays(ctx context.Context, userID string) ([]domain.WorkoutRecord, error) {
	query := `
		SELECT record_id, to_char(day, 'YYYY-MM-DD'), push_ups, sit_ups, squats, distance_km, status, doubled
		FROM workout_days
		WHERE user_id = $1
		ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workout days: %w", err)
	}
	defer rows.Close()

	var records []domain.WorkoutRecord
	for rows.Next() {
		var rec domain.WorkoutRecord
		var status string
		err := rows.Scan(
			&rec.ID,
			&rec.Date,
			&rec.PushUps,
			&rec.SitUps,
			&rec.Squats,
			&rec.DistanceKM,
			&status,
			&rec.Doubled,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning workout day: %w", err)
		}
		rec.Status = domain.WorkoutStatus(status)
		records = append(records, rec)
	}
	return records, nil
}
