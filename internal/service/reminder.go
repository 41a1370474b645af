package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
	"github.com/teheiw197/classbell/internal/store"
)

// Dispatcher delivers text to a chat. It is the only operation the
// reminder engine performs against the transport.
type Dispatcher interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Settings is the reminder policy, fixed at startup.
type Settings struct {
	Lead           time.Duration
	PreviewTime    string // HH:MM
	EnableReminder bool
	EnableWeekend  bool
	EnableEvening  bool
	EnablePreview  bool
	TermStart      time.Time // zero disables week-range bounding
}

const askTomorrowText = "是否开启明日课程提醒？回复'是'开启提醒。"

// ReminderService evaluates, once per tick, which confirmed courses
// are due a reminder and which users should get the next-day preview.
// Matching is minute-resolution equality against the reminder instant:
// a tick delayed past the target minute misses that occurrence for the
// day. That is accepted best-effort behaviour, not retried.
type ReminderService struct {
	store         store.Store
	dispatcher    Dispatcher
	settings      Settings
	logger        *zap.Logger
	previewHour   int
	previewMinute int
}

func NewReminderService(st store.Store, dispatcher Dispatcher, settings Settings, logger *zap.Logger) *ReminderService {
	t, err := time.Parse("15:04", settings.PreviewTime)
	if err != nil {
		// Config validates the format; an invalid value here still
		// leaves a working 23:00 preview.
		t, _ = time.Parse("15:04", "23:00")
	}
	return &ReminderService{
		store:         st,
		dispatcher:    dispatcher,
		settings:      settings,
		logger:        logger,
		previewHour:   t.Hour(),
		previewMinute: t.Minute(),
	}
}

// Tick runs one evaluation pass at the given instant. It never fails:
// every per-user problem is logged and skipped so one user's data can
// not starve the others.
func (s *ReminderService) Tick(ctx context.Context, now time.Time) {
	if s.settings.EnableReminder {
		s.sweepReminders(ctx, now)
	}
	if s.settings.EnablePreview && now.Hour() == s.previewHour && now.Minute() == s.previewMinute {
		s.sweepPreviews(ctx, now)
	}
}

func (s *ReminderService) sweepReminders(ctx context.Context, now time.Time) {
	err := s.store.ForEachConfirmed(ctx, func(schedule *model.UserSchedule) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.remindUser(ctx, now, schedule)
		return nil
	})
	if err != nil {
		s.logger.Error("reminder sweep aborted", zap.Error(err))
	}
}

func (s *ReminderService) remindUser(ctx context.Context, now time.Time, schedule *model.UserSchedule) {
	today := now.Format(model.MarkerDateLayout)

	for i := range schedule.Courses {
		course := &schedule.Courses[i]
		if !s.courseDue(now, course) {
			continue
		}

		seen, err := s.store.SeenMarker(ctx, schedule.UserID, course.ID, today)
		if err != nil {
			s.logger.Warn("marker lookup failed",
				zap.Int64("user_id", schedule.UserID), zap.Error(err))
			continue
		}
		if seen {
			continue
		}

		// Fire-and-forget: a delivery failure is logged but the marker
		// is still written, so the occurrence is not re-sent later.
		if err := s.dispatcher.Send(ctx, schedule.ChatID, FormatReminder(course)); err != nil {
			s.logger.Warn("reminder dispatch failed",
				zap.Int64("user_id", schedule.UserID),
				zap.String("course", course.Name),
				zap.Error(err))
		} else {
			s.logger.Info("reminder dispatched",
				zap.Int64("user_id", schedule.UserID),
				zap.String("course", course.Name))
		}

		marker := model.NewReminderMarker(schedule.UserID, course.ID, now)
		if err := s.store.PutMarker(ctx, marker); err != nil {
			s.logger.Warn("marker write failed",
				zap.Int64("user_id", schedule.UserID), zap.Error(err))
		}
	}
}

// courseDue decides whether now is exactly the reminder minute for the
// course's occurrence today.
func (s *ReminderService) courseDue(now time.Time, c *model.CourseRecord) bool {
	st, ok := c.SlotTime()
	if !ok {
		return false
	}

	if c.Weekday == model.WeekdayUnspecified {
		// Day-less evening-section records fire on any day.
		if !st.IsEvening() {
			return false
		}
	} else if c.Weekday != model.WeekdayOf(now.Weekday()) {
		return false
	}

	if c.Weekday.IsWeekend() && !s.settings.EnableWeekend {
		return false
	}
	if st.IsEvening() && !s.settings.EnableEvening {
		return false
	}
	if !c.InWeek(s.currentWeek(now)) {
		return false
	}

	occurrence := time.Date(now.Year(), now.Month(), now.Day(),
		st.StartHour, st.StartMinute, 0, 0, now.Location())
	reminder := occurrence.Add(-s.settings.Lead)

	// A lead crossing midnight would point at yesterday; skip it.
	if reminder.Day() != now.Day() {
		return false
	}
	return reminder.Hour() == now.Hour() && reminder.Minute() == now.Minute()
}

// currentWeek returns the teaching week number, 0 when unknown.
func (s *ReminderService) currentWeek(now time.Time) int {
	if s.settings.TermStart.IsZero() {
		return 0
	}
	start := s.settings.TermStart
	days := int(now.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

func (s *ReminderService) sweepPreviews(ctx context.Context, now time.Time) {
	tomorrow := model.WeekdayOf(now.AddDate(0, 0, 1).Weekday())

	err := s.store.ForEachConfirmed(ctx, func(schedule *model.UserSchedule) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		courses := schedule.CoursesOn(tomorrow)
		if len(courses) == 0 {
			return nil
		}

		if err := s.dispatcher.Send(ctx, schedule.ChatID, FormatPreview(tomorrow, courses)); err != nil {
			s.logger.Warn("preview dispatch failed",
				zap.Int64("user_id", schedule.UserID), zap.Error(err))
			return nil
		}
		if err := s.dispatcher.Send(ctx, schedule.ChatID, askTomorrowText); err != nil {
			s.logger.Warn("preview follow-up dispatch failed",
				zap.Int64("user_id", schedule.UserID), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("preview sweep aborted", zap.Error(err))
	}
}

// PreviewFor builds the next-day preview text for one user on demand
// (the /preview command). Empty string means no courses tomorrow.
func (s *ReminderService) PreviewFor(ctx context.Context, userID int64, now time.Time) (string, error) {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return "", err
	}
	if schedule == nil {
		return "", ErrNoSchedule
	}

	tomorrow := model.WeekdayOf(now.AddDate(0, 0, 1).Weekday())
	courses := schedule.CoursesOn(tomorrow)
	if len(courses) == 0 {
		return "", nil
	}
	return FormatPreview(tomorrow, courses), nil
}

// StatusFor renders the reminder policy plus the user's state.
func (s *ReminderService) StatusFor(ctx context.Context, userID int64) (string, error) {
	schedule, err := s.store.GetSchedule(ctx, userID)
	if err != nil {
		return "", err
	}
	if schedule == nil {
		return "", ErrNoSchedule
	}

	onOff := func(enabled bool) string {
		if enabled {
			return "开启"
		}
		return "关闭"
	}
	stateText := map[model.ScheduleState]string{
		model.StatePending:   "待确认",
		model.StateConfirmed: "提醒中",
		model.StateCancelled: "已停止",
	}[schedule.State]

	return "提醒状态：\n" +
		"• 课程表状态：" + stateText + "\n" +
		"• 课程提醒：" + onOff(s.settings.EnableReminder) + "\n" +
		"• 周末提醒：" + onOff(s.settings.EnableWeekend) + "\n" +
		"• 晚间课程提醒：" + onOff(s.settings.EnableEvening) + "\n" +
		"• 每日预览：" + onOff(s.settings.EnablePreview) + "\n" +
		"• 提醒时间：课前" + strconv.Itoa(int(s.settings.Lead.Minutes())) + "分钟\n" +
		"• 预览时间：" + s.settings.PreviewTime, nil
}
