package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
)

// PostgresStore persists schedule documents as one JSONB row per user
// and dedup markers in their own table with a (user, course, date)
// primary key. Row-level locking in Postgres gives the per-user
// serialization the Store contract asks for.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// GetSchedule loads the user's schedule document, (nil, nil) if absent.
func (s *PostgresStore) GetSchedule(ctx context.Context, userID int64) (*model.UserSchedule, error) {
	query := `SELECT document FROM user_schedules WHERE user_id = $1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule %d: %w", userID, err)
	}

	var schedule model.UserSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, fmt.Errorf("decode schedule %d: %w", userID, err)
	}
	return &schedule, nil
}

// PutSchedule upserts the user's schedule document.
func (s *PostgresStore) PutSchedule(ctx context.Context, schedule *model.UserSchedule) error {
	raw, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode schedule %d: %w", schedule.UserID, err)
	}

	query := `
		INSERT INTO user_schedules (user_id, chat_id, state, document, create_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
		    state = EXCLUDED.state,
		    document = EXCLUDED.document,
		    create_time = EXCLUDED.create_time
	`
	_, err = s.pool.Exec(ctx, query,
		schedule.UserID, schedule.ChatID, string(schedule.State), raw, schedule.CreateTime)
	if err != nil {
		return fmt.Errorf("put schedule %d: %w", schedule.UserID, err)
	}
	return nil
}

// DeleteSchedule removes the user's row. Missing is not an error.
func (s *PostgresStore) DeleteSchedule(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_schedules WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete schedule %d: %w", userID, err)
	}
	return nil
}

// ForEachConfirmed visits every confirmed schedule document.
// Undecodable rows are logged and skipped.
func (s *PostgresStore) ForEachConfirmed(ctx context.Context, fn func(*model.UserSchedule) error) error {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, document FROM user_schedules WHERE state = $1`,
		string(model.StateConfirmed))
	if err != nil {
		return fmt.Errorf("list confirmed schedules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			raw    []byte
		)
		if err := rows.Scan(&userID, &raw); err != nil {
			return fmt.Errorf("scan schedule row: %w", err)
		}

		var schedule model.UserSchedule
		if err := json.Unmarshal(raw, &schedule); err != nil {
			s.logger.Warn("skipping undecodable schedule document",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if err := fn(&schedule); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate schedules: %w", err)
	}
	return nil
}

// SeenMarker reports whether the occurrence was already dispatched.
func (s *PostgresStore) SeenMarker(ctx context.Context, userID int64, courseID uuid.UUID, date string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminder_markers
			WHERE user_id = $1 AND course_id = $2 AND date = $3
		)
	`
	var seen bool
	if err := s.pool.QueryRow(ctx, query, userID, courseID, date).Scan(&seen); err != nil {
		return false, fmt.Errorf("check marker: %w", err)
	}
	return seen, nil
}

// PutMarker records a dispatched occurrence. A concurrent duplicate
// insert is harmless thanks to the primary key.
func (s *PostgresStore) PutMarker(ctx context.Context, marker model.ReminderMarker) error {
	query := `
		INSERT INTO reminder_markers (user_id, course_id, date, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id, date) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query, marker.UserID, marker.CourseID, marker.Date, marker.SentAt)
	if err != nil {
		return fmt.Errorf("put marker: %w", err)
	}
	return nil
}

// ClearMarkers drops every marker belonging to the user.
func (s *PostgresStore) ClearMarkers(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM reminder_markers WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear markers %d: %w", userID, err)
	}
	return nil
}

// Flush is a no-op: every write already hit the database.
func (s *PostgresStore) Flush(context.Context) error {
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
