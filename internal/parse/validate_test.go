package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teheiw197/classbell/internal/model"
)

func validCourse() model.CourseRecord {
	return model.CourseRecord{
		Weekday:  "一",
		TimeSlot: "第1-2节（08:00-09:40）",
		Name:     "高等数学",
		Teacher:  "张三",
		Location: "教1-201",
		Weeks:    "1-16周",
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	c := validCourse()
	assert.NoError(t, Validate(&c))
}

func TestValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	c := validCourse()
	c.Teacher = ""
	c.Location = ""
	assert.NoError(t, Validate(&c))
}

func TestValidateRejectsMissingMandatoryFields(t *testing.T) {
	cases := map[string]func(*model.CourseRecord){
		"empty name":      func(c *model.CourseRecord) { c.Name = "" },
		"blank name":      func(c *model.CourseRecord) { c.Name = "   " },
		"bad weekday":     func(c *model.CourseRecord) { c.Weekday = "八" },
		"empty time":      func(c *model.CourseRecord) { c.TimeSlot = "" },
		"bad time":        func(c *model.CourseRecord) { c.TimeSlot = "上午的课" },
		"empty weeks":     func(c *model.CourseRecord) { c.Weeks = "" },
		"bad weeks":       func(c *model.CourseRecord) { c.Weeks = "全学期" },
		"reversed weeks":  func(c *model.CourseRecord) { c.Weeks = "16-1周" },
		"weeks no suffix": func(c *model.CourseRecord) { c.Weeks = "1-16" },
	}

	for name, mutate := range cases {
		c := validCourse()
		mutate(&c)
		assert.Error(t, Validate(&c), name)
	}
}

func TestValidateAllowsWeekdaylessEveningRecord(t *testing.T) {
	c := validCourse()
	c.Weekday = model.WeekdayUnspecified
	c.TimeSlot = "第9-10节（19:00-20:40）"
	assert.NoError(t, Validate(&c))
}

func TestValidateRejectsWeekdaylessDaytimeRecord(t *testing.T) {
	// A day-less record outside the evening hours would never remind.
	c := validCourse()
	c.Weekday = model.WeekdayUnspecified
	assert.Error(t, Validate(&c))
	assert.Empty(t, Gate([]model.CourseRecord{c}))
}

func TestGateDropsWholeRecordOnAnyFailure(t *testing.T) {
	good := validCourse()
	bad := validCourse()
	bad.Weeks = "随便"

	accepted := Gate([]model.CourseRecord{good, bad})
	require.Len(t, accepted, 1)
	assert.Equal(t, "高等数学", accepted[0].Name)
}

func TestGateBackfillsOptionalFields(t *testing.T) {
	c := validCourse()
	c.Teacher = "  "
	c.Location = "\t"

	accepted := Gate([]model.CourseRecord{c})
	require.Len(t, accepted, 1)
	assert.Equal(t, "", accepted[0].Teacher)
	assert.Equal(t, "", accepted[0].Location)
}

func TestMissingFieldsNamesFieldClasses(t *testing.T) {
	c := model.CourseRecord{Weekday: "一"}
	missing := MissingFields(&c)
	assert.ElementsMatch(t, []string{"课程名称", "上课时间", "周次"}, missing)
}
