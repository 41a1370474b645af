package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MarkerDateLayout is the day key of a reminder occurrence.
const MarkerDateLayout = "2006-01-02"

// ReminderMarker records that a reminder for one course occurrence was
// dispatched, so a later tick in the same minute (or a restart within
// the same day) does not send it twice.
type ReminderMarker struct {
	UserID   int64     `json:"user_id"`
	CourseID uuid.UUID `json:"course_id"`
	Date     string    `json:"date"` // MarkerDateLayout
	SentAt   time.Time `json:"sent_at"`
}

// NewReminderMarker builds a marker for the given occurrence date.
func NewReminderMarker(userID int64, courseID uuid.UUID, day time.Time) ReminderMarker {
	return ReminderMarker{
		UserID:   userID,
		CourseID: courseID,
		Date:     day.Format(MarkerDateLayout),
		SentAt:   time.Now(),
	}
}

// Key is the unique identity of the marker.
func (m ReminderMarker) Key() string {
	return fmt.Sprintf("%d:%s:%s", m.UserID, m.CourseID, m.Date)
}
