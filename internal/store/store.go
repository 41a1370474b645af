package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/teheiw197/classbell/internal/model"
)

// Store is the persistence boundary shared by the message-handling
// path and the reminder scheduler. Implementations must be safe for
// concurrent use; schedule mutations are serialized per user so
// unrelated users never contend.
//
// GetSchedule returns (nil, nil) when the user has no schedule.
type Store interface {
	GetSchedule(ctx context.Context, userID int64) (*model.UserSchedule, error)
	PutSchedule(ctx context.Context, schedule *model.UserSchedule) error
	DeleteSchedule(ctx context.Context, userID int64) error

	// ForEachConfirmed visits every confirmed schedule. An error from
	// fn stops the iteration and is returned as-is.
	ForEachConfirmed(ctx context.Context, fn func(*model.UserSchedule) error) error

	SeenMarker(ctx context.Context, userID int64, courseID uuid.UUID, date string) (bool, error)
	PutMarker(ctx context.Context, marker model.ReminderMarker) error
	ClearMarkers(ctx context.Context, userID int64) error

	// Flush forces pending state to durable storage. Called on shutdown.
	Flush(ctx context.Context) error
	Close() error
}
