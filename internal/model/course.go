package model

import (
	"regexp"

	"github.com/google/uuid"
)

// CourseRecord is one weekly-recurring class slot as recovered from
// schedule text. Weekday, TimeSlot, Name and Weeks are mandatory after
// validation; Teacher and Location may be empty.
type CourseRecord struct {
	ID       uuid.UUID `json:"id"`
	Weekday  Weekday   `json:"weekday"`
	TimeSlot string    `json:"time"`     // e.g. 第1-2节（08:00-09:40）
	Name     string    `json:"name"`     // 课程名称
	Teacher  string    `json:"teacher"`  // optional
	Location string    `json:"location"` // optional
	Weeks    string    `json:"weeks"`    // e.g. 1-16周
}

// weeksRe matches the inclusive week-range notation, e.g. "1-16周".
var weeksRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})周$`)

// ParseWeeks extracts the inclusive week bounds from a week-range token.
func ParseWeeks(s string) (first, last int, ok bool) {
	m := weeksRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	first, last = atoi(m[1]), atoi(m[2])
	return first, last, first >= 1 && first <= last
}

// SlotTime parses the record's time token.
func (c *CourseRecord) SlotTime() (SlotTime, bool) {
	return ParseSlotTime(c.TimeSlot)
}

// IsEvening reports whether the record is an evening class.
func (c *CourseRecord) IsEvening() bool {
	st, ok := c.SlotTime()
	return ok && st.IsEvening()
}

// InWeek reports whether teaching week number week falls inside the
// record's week range. week <= 0 means the current week is unknown and
// the range is not enforced.
func (c *CourseRecord) InWeek(week int) bool {
	if week <= 0 {
		return true
	}
	first, last, ok := ParseWeeks(c.Weeks)
	if !ok {
		return false
	}
	return week >= first && week <= last
}
