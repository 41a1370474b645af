package model

import "time"

// Weekday is the single Chinese numeral used in schedule text:
// "一" through "日". Empty means the record did not specify a day
// (labeled evening-section courses come in without one).
type Weekday string

const WeekdayUnspecified Weekday = ""

var weekdayNames = []Weekday{"日", "一", "二", "三", "四", "五", "六"}

// WeekdayOf converts a calendar weekday to the schedule notation.
func WeekdayOf(d time.Weekday) Weekday {
	return weekdayNames[int(d)]
}

// IsValid reports whether w is one of the seven day tokens.
func (w Weekday) IsValid() bool {
	for _, name := range weekdayNames {
		if w == name {
			return true
		}
	}
	return false
}

// IsWeekend reports whether w is Saturday or Sunday.
func (w Weekday) IsWeekend() bool {
	return w == "六" || w == "日"
}

// String returns the display form, e.g. "星期一".
func (w Weekday) String() string {
	if !w.IsValid() {
		return "星期?"
	}
	return "星期" + string(w)
}
