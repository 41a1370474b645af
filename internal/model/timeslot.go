package model

import (
	"regexp"
	"strconv"
)

// SlotTime is the parsed form of a course time token.
// Period numbers are zero when the token was a bare clock range.
type SlotTime struct {
	StartPeriod int
	EndPeriod   int
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	HasEnd      bool
}

// Start times of each lesson period on campus. Only the start matters
// for reminders; the schedule text carries the full range when known.
var periodStartTimes = map[int][2]int{
	1: {8, 0}, 2: {8, 55}, 3: {10, 0}, 4: {10, 55},
	5: {14, 0}, 6: {14, 55}, 7: {16, 0}, 8: {16, 55},
	9: {19, 0}, 10: {19, 55}, 11: {20, 50},
}

var (
	// 第1-2节（08:00-09:40）, fullwidth or ASCII parentheses
	periodClockRe = regexp.MustCompile(`^第(\d{1,2})-(\d{1,2})节[（(](\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})[）)]$`)
	// 第1-2节
	periodOnlyRe = regexp.MustCompile(`^第(\d{1,2})-(\d{1,2})节$`)
	// 08:00-09:40 or 08:00
	clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:-(\d{1,2}):(\d{2}))?$`)
)

// ParseSlotTime recognizes the three accepted time grammars:
// period range with clock, bare period range, and bare clock range.
// Anything else is rejected.
func ParseSlotTime(s string) (SlotTime, bool) {
	if m := periodClockRe.FindStringSubmatch(s); m != nil {
		st := SlotTime{
			StartPeriod: atoi(m[1]),
			EndPeriod:   atoi(m[2]),
			StartHour:   atoi(m[3]),
			StartMinute: atoi(m[4]),
			EndHour:     atoi(m[5]),
			EndMinute:   atoi(m[6]),
			HasEnd:      true,
		}
		return st, st.clockValid()
	}

	if m := periodOnlyRe.FindStringSubmatch(s); m != nil {
		start, ok := periodStartTimes[atoi(m[1])]
		if !ok {
			return SlotTime{}, false
		}
		return SlotTime{
			StartPeriod: atoi(m[1]),
			EndPeriod:   atoi(m[2]),
			StartHour:   start[0],
			StartMinute: start[1],
		}, true
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		st := SlotTime{
			StartHour:   atoi(m[1]),
			StartMinute: atoi(m[2]),
		}
		if m[3] != "" {
			st.EndHour = atoi(m[3])
			st.EndMinute = atoi(m[4])
			st.HasEnd = true
		}
		return st, st.clockValid()
	}

	return SlotTime{}, false
}

// IsEvening reports whether the slot is an evening class:
// period 9 or later, or a clock start at 18:00 or after.
func (t SlotTime) IsEvening() bool {
	if t.StartPeriod >= 9 {
		return true
	}
	return t.StartHour >= 18
}

func (t SlotTime) clockValid() bool {
	if t.StartHour > 23 || t.StartMinute > 59 {
		return false
	}
	if t.HasEnd && (t.EndHour > 23 || t.EndMinute > 59) {
		return false
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
