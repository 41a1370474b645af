package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
	"github.com/teheiw197/classbell/internal/parse"
	"github.com/teheiw197/classbell/internal/store"
)

// ErrNoSchedule means the user has not submitted a schedule yet.
var ErrNoSchedule = errors.New("user has no schedule")

// CourseExtractor is the AI fallback strategy. Nil disables it.
type CourseExtractor interface {
	ExtractCourses(ctx context.Context, text string) ([]model.CourseRecord, error)
}

// ScheduleService owns the schedule lifecycle: ingesting pasted text
// through both extractors and the validation gate, and moving the
// document through pending/confirmed/cancelled.
type ScheduleService struct {
	store     store.Store
	extractor CourseExtractor
	logger    *zap.Logger
}

func NewScheduleService(st store.Store, extractor CourseExtractor, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		store:     st,
		extractor: extractor,
		logger:    logger,
	}
}

// IngestText parses schedule text and stores the result as a pending
// schedule, replacing whatever the user had before. Pattern extraction
// runs first; only when it finds nothing does the AI extractor get the
// raw text. Returns parse.ErrNoCourses when neither path recovered a
// valid record.
func (s *ScheduleService) IngestText(ctx context.Context, userID, chatID int64, text string) (*model.UserSchedule, error) {
	result := parse.ExtractCourses(text)
	courses := parse.Gate(result.Courses)

	if len(courses) == 0 && s.extractor != nil {
		aiCourses, err := s.extractor.ExtractCourses(ctx, parse.Flatten(text))
		if err != nil {
			if !errors.Is(err, parse.ErrNoCourses) {
				s.logger.Warn("ai extraction failed", zap.Int64("user_id", userID), zap.Error(err))
				return nil, err
			}
		} else {
			courses = parse.Gate(aiCourses)
		}
	}

	if len(courses) == 0 {
		return nil, parse.ErrNoCourses
	}

	schedule := &model.UserSchedule{
		UserID:     userID,
		ChatID:     chatID,
		State:      model.StatePending,
		BasicInfo:  result.BasicInfo,
		Courses:    courses,
		Remarks:    result.Remarks,
		CreateTime: time.Now(),
	}

	// A fresh submission invalidates markers for the old course set.
	if err := s.store.ClearMarkers(ctx, userID); err != nil {
		s.logger.Warn("clear markers failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	if err := s.store.PutSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("save schedule: %w", err)
	}

	s.logger.Info("schedule ingested",
		zap.Int64("user_id", userID),
		zap.Int("courses", len(courses)))

	return schedule, nil
}

// Confirm moves a pending schedule to confirmed, making it visible to
// the reminder engine on the next tick.
func (s *ScheduleService) Confirm(ctx context.Context, userID int64) (*model.UserSchedule, error) {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrNoSchedule
	}
	if !schedule.IsPending() {
		return nil, fmt.Errorf("schedule is %s, not pending", schedule.State)
	}

	schedule.State = model.StateConfirmed
	if err := s.store.PutSchedule(ctx, schedule); err != nil {
		return nil, fmt.Errorf("confirm schedule: %w", err)
	}
	return schedule, nil
}

// Reject cancels a pending schedule and empties its record list.
func (s *ScheduleService) Reject(ctx context.Context, userID int64) error {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return ErrNoSchedule
	}

	schedule.State = model.StateCancelled
	schedule.Courses = nil
	if err := s.store.PutSchedule(ctx, schedule); err != nil {
		return fmt.Errorf("reject schedule: %w", err)
	}
	return s.store.ClearMarkers(ctx, userID)
}

// Clear removes the user's schedule document and every dedup marker.
func (s *ScheduleService) Clear(ctx context.Context, userID int64) error {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return ErrNoSchedule
	}

	if err := s.store.DeleteSchedule(ctx, userID); err != nil {
		return err
	}
	return s.store.ClearMarkers(ctx, userID)
}

// Enable re-activates reminders for a user whose schedule was stopped.
func (s *ScheduleService) Enable(ctx context.Context, userID int64) error {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return err
	}
	if schedule == nil || len(schedule.Courses) == 0 {
		return ErrNoSchedule
	}
	if schedule.IsConfirmed() {
		return nil
	}

	schedule.State = model.StateConfirmed
	if err := s.store.PutSchedule(ctx, schedule); err != nil {
		return fmt.Errorf("enable schedule: %w", err)
	}
	return nil
}

// Disable stops reminders for the user but keeps the course list, so
// /start can bring them back without re-parsing.
func (s *ScheduleService) Disable(ctx context.Context, userID int64) error {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return ErrNoSchedule
	}
	if !schedule.IsConfirmed() {
		return nil
	}

	schedule.State = model.StateCancelled
	if err := s.store.PutSchedule(ctx, schedule); err != nil {
		return fmt.Errorf("disable schedule: %w", err)
	}
	return nil
}

// Get returns the user's schedule document, nil if absent.
func (s *ScheduleService) Get(ctx context.Context, userID int64) (*model.UserSchedule, error) {
	return s.store.GetSchedule(ctx, userID)
}
