package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
)

// markerRetention bounds the dedup-marker document: markers only need
// to survive restarts within the same day, a week of history is plenty.
const markerRetention = 7 * 24 * time.Hour

// FileStore keeps one JSON document per user under dataDir/schedules
// plus a single markers.json for dedup markers. Writes go through a
// temp file and rename so a crash never leaves a torn document.
type FileStore struct {
	dataDir string
	logger  *zap.Logger
	locks   *userLocks

	markerMu sync.Mutex
	markers  map[string]model.ReminderMarker
}

// NewFileStore creates the directory layout and loads existing markers.
func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "schedules"), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &FileStore{
		dataDir: dataDir,
		logger:  logger,
		locks:   newUserLocks(),
		markers: map[string]model.ReminderMarker{},
	}
	if err := s.loadMarkers(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) schedulePath(userID int64) string {
	return filepath.Join(s.dataDir, "schedules", strconv.FormatInt(userID, 10)+".json")
}

func (s *FileStore) markerPath() string {
	return filepath.Join(s.dataDir, "markers.json")
}

// GetSchedule loads the user's schedule document, (nil, nil) if absent.
func (s *FileStore) GetSchedule(_ context.Context, userID int64) (*model.UserSchedule, error) {
	lock := s.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := os.ReadFile(s.schedulePath(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schedule %d: %w", userID, err)
	}

	var schedule model.UserSchedule
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil, fmt.Errorf("decode schedule %d: %w", userID, err)
	}
	return &schedule, nil
}

// PutSchedule writes the user's schedule document atomically.
func (s *FileStore) PutSchedule(_ context.Context, schedule *model.UserSchedule) error {
	lock := s.locks.get(schedule.UserID)
	lock.Lock()
	defer lock.Unlock()

	raw, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedule %d: %w", schedule.UserID, err)
	}
	return atomicWrite(s.schedulePath(schedule.UserID), raw)
}

// DeleteSchedule removes the user's document. Missing is not an error.
func (s *FileStore) DeleteSchedule(_ context.Context, userID int64) error {
	lock := s.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.schedulePath(userID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete schedule %d: %w", userID, err)
	}
	return nil
}

// ForEachConfirmed walks every stored document and visits the
// confirmed ones. A document that fails to decode is logged and
// skipped so one user's corrupt data cannot starve the sweep.
func (s *FileStore) ForEachConfirmed(ctx context.Context, fn func(*model.UserSchedule) error) error {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, "schedules"))
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		userID, err := strconv.ParseInt(entry.Name()[:len(entry.Name())-len(".json")], 10, 64)
		if err != nil {
			continue
		}

		schedule, err := s.GetSchedule(ctx, userID)
		if err != nil {
			s.logger.Warn("skipping unreadable schedule document",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if schedule == nil || !schedule.IsConfirmed() {
			continue
		}
		if err := fn(schedule); err != nil {
			return err
		}
	}
	return nil
}

// SeenMarker reports whether the occurrence was already dispatched.
func (s *FileStore) SeenMarker(_ context.Context, userID int64, courseID uuid.UUID, date string) (bool, error) {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()

	key := model.ReminderMarker{UserID: userID, CourseID: courseID, Date: date}.Key()
	_, ok := s.markers[key]
	return ok, nil
}

// PutMarker records a dispatched occurrence and persists immediately,
// so a restart within the same day cannot resend the reminder.
func (s *FileStore) PutMarker(_ context.Context, marker model.ReminderMarker) error {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()

	s.markers[marker.Key()] = marker
	return s.writeMarkersLocked()
}

// ClearMarkers drops every marker belonging to the user.
func (s *FileStore) ClearMarkers(_ context.Context, userID int64) error {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()

	for key, marker := range s.markers {
		if marker.UserID == userID {
			delete(s.markers, key)
		}
	}
	return s.writeMarkersLocked()
}

// Flush prunes stale markers and rewrites the marker document.
// Schedule documents are written through on every Put, so only the
// marker map carries state worth flushing.
func (s *FileStore) Flush(context.Context) error {
	s.markerMu.Lock()
	defer s.markerMu.Unlock()

	cutoff := time.Now().Add(-markerRetention)
	for key, marker := range s.markers {
		if marker.SentAt.Before(cutoff) {
			delete(s.markers, key)
		}
	}
	return s.writeMarkersLocked()
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) loadMarkers() error {
	raw, err := os.ReadFile(s.markerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read markers: %w", err)
	}

	var markers []model.ReminderMarker
	if err := json.Unmarshal(raw, &markers); err != nil {
		return fmt.Errorf("decode markers: %w", err)
	}
	for _, m := range markers {
		s.markers[m.Key()] = m
	}
	return nil
}

func (s *FileStore) writeMarkersLocked() error {
	markers := make([]model.ReminderMarker, 0, len(s.markers))
	for _, m := range s.markers {
		markers = append(markers, m)
	}
	raw, err := json.MarshalIndent(markers, "", "  ")
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}
	return atomicWrite(s.markerPath(), raw)
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
