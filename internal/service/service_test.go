package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/teheiw197/classbell/internal/model"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu        sync.Mutex
	schedules map[int64]*model.UserSchedule
	markers   map[string]model.ReminderMarker
}

func newMemStore() *memStore {
	return &memStore{
		schedules: map[int64]*model.UserSchedule{},
		markers:   map[string]model.ReminderMarker{},
	}
}

func (s *memStore) GetSchedule(_ context.Context, userID int64) (*model.UserSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[userID]
	if !ok {
		return nil, nil
	}
	clone := *schedule
	return &clone, nil
}

func (s *memStore) PutSchedule(_ context.Context, schedule *model.UserSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *schedule
	s.schedules[schedule.UserID] = &clone
	return nil
}

func (s *memStore) DeleteSchedule(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedules, userID)
	return nil
}

func (s *memStore) ForEachConfirmed(_ context.Context, fn func(*model.UserSchedule) error) error {
	s.mu.Lock()
	var confirmed []*model.UserSchedule
	for _, schedule := range s.schedules {
		if schedule.IsConfirmed() {
			clone := *schedule
			confirmed = append(confirmed, &clone)
		}
	}
	s.mu.Unlock()

	for _, schedule := range confirmed {
		if err := fn(schedule); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) SeenMarker(_ context.Context, userID int64, courseID uuid.UUID, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.ReminderMarker{UserID: userID, CourseID: courseID, Date: date}.Key()
	_, ok := s.markers[key]
	return ok, nil
}

func (s *memStore) PutMarker(_ context.Context, marker model.ReminderMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[marker.Key()] = marker
	return nil
}

func (s *memStore) ClearMarkers(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, marker := range s.markers {
		if marker.UserID == userID {
			delete(s.markers, key)
		}
	}
	return nil
}

func (s *memStore) Flush(context.Context) error { return nil }
func (s *memStore) Close() error                { return nil }

// recordingDispatcher captures outgoing messages.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
}

type sentMessage struct {
	ChatID int64
	Text   string
}

func (d *recordingDispatcher) Send(_ context.Context, chatID int64, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (d *recordingDispatcher) messages() []sentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sentMessage(nil), d.sent...)
}
