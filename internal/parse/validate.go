package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teheiw197/classbell/internal/model"
)

// ErrNoCourses means extraction finished cleanly but found nothing.
// It is distinct from an upstream failure so callers can tell the user
// to fix the format rather than to try again later.
var ErrNoCourses = errors.New("no course records found")

// Validate is the single acceptance gate every candidate record passes
// before persistence, whichever extractor produced it. A nil error
// means the record is fully valid. Weekday may be empty only for an
// evening time slot ("evening section, day unspecified"); a day-less
// record outside the evening hours has no occurrence to remind on and
// is rejected here rather than stored dead.
func Validate(c *model.CourseRecord) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("课程名称 is empty")
	}
	if c.Weekday != model.WeekdayUnspecified && !c.Weekday.IsValid() {
		return fmt.Errorf("星期几 %q is not a weekday", c.Weekday)
	}
	if strings.TrimSpace(c.TimeSlot) == "" {
		return fmt.Errorf("上课时间 is empty")
	}
	st, ok := model.ParseSlotTime(c.TimeSlot)
	if !ok {
		return fmt.Errorf("上课时间 %q does not match the time grammar", c.TimeSlot)
	}
	if c.Weekday == model.WeekdayUnspecified && !st.IsEvening() {
		return fmt.Errorf("星期几 is empty for non-evening 上课时间 %q", c.TimeSlot)
	}
	if strings.TrimSpace(c.Weeks) == "" {
		return fmt.Errorf("周次 is empty")
	}
	if _, _, ok := model.ParseWeeks(c.Weeks); !ok {
		return fmt.Errorf("周次 %q does not match N-M周", c.Weeks)
	}
	return nil
}

// MissingFields names the mandatory field classes a candidate fails on,
// in schedule-text vocabulary. Used to build the corrective follow-up
// prompt for the AI extractor.
func MissingFields(c *model.CourseRecord) []string {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "课程名称")
	}
	if c.Weekday != model.WeekdayUnspecified && !c.Weekday.IsValid() {
		missing = append(missing, "星期几")
	}
	if _, ok := model.ParseSlotTime(c.TimeSlot); !ok {
		missing = append(missing, "上课时间")
	}
	if _, _, ok := model.ParseWeeks(c.Weeks); !ok {
		missing = append(missing, "周次")
	}
	return missing
}

// Gate filters candidates through Validate. Optional fields are
// backfilled to empty strings; mandatory failures drop the whole
// record, never a partial one.
func Gate(candidates []model.CourseRecord) []model.CourseRecord {
	var accepted []model.CourseRecord
	for _, c := range candidates {
		c.Teacher = strings.TrimSpace(c.Teacher)
		c.Location = strings.TrimSpace(c.Location)
		if err := Validate(&c); err != nil {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}
