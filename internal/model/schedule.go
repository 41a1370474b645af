package model

import "time"

type ScheduleState string

const (
	StatePending   ScheduleState = "pending"   // 已解析，等待用户确认
	StateConfirmed ScheduleState = "confirmed" // 用户已确认，参与提醒
	StateCancelled ScheduleState = "cancelled" // 已取消/清除
)

// UserSchedule is one user's full set of course records plus the
// confirmation lifecycle state. One document per user.
type UserSchedule struct {
	UserID     int64             `json:"user_id"`
	ChatID     int64             `json:"chat_id"`
	State      ScheduleState     `json:"state"`
	BasicInfo  map[string]string `json:"basic_info,omitempty"` // 学校/班级/专业/学院
	Courses    []CourseRecord    `json:"courses"`
	Remarks    []string          `json:"remarks,omitempty"`
	CreateTime time.Time         `json:"create_time"`
}

// IsPending reports whether the schedule awaits confirmation.
func (s *UserSchedule) IsPending() bool {
	return s.State == StatePending
}

// IsConfirmed reports whether the schedule is eligible for reminders.
func (s *UserSchedule) IsConfirmed() bool {
	return s.State == StateConfirmed
}

// CoursesOn returns the records scheduled on the given day. Weekday-less
// evening records are not day-bound and are excluded here.
func (s *UserSchedule) CoursesOn(day Weekday) []CourseRecord {
	var out []CourseRecord
	for _, c := range s.Courses {
		if c.Weekday == day {
			out = append(out, c)
		}
	}
	return out
}

// EveningCourses returns the weekday-less evening-section records.
func (s *UserSchedule) EveningCourses() []CourseRecord {
	var out []CourseRecord
	for _, c := range s.Courses {
		if c.Weekday == WeekdayUnspecified {
			out = append(out, c)
		}
	}
	return out
}
