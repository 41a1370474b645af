package service

import (
	"fmt"
	"strings"

	"github.com/teheiw197/classbell/internal/model"
)

// Message templates mirror the ones users already know from the
// course-message template they paste in.
const (
	courseTemplate   = "上课时间：%s\n课程名称：%s\n教师：%s\n上课地点：%s\n周次：%s"
	reminderTemplate = "【课程提醒】\n上课时间：%s\n课程名称：%s\n教师：%s\n上课地点：%s"
	previewTemplate  = "【明日课程预览】\n星期%s的课程安排：\n\n%s"
)

// FormatCourse renders one course record in template form.
func FormatCourse(c *model.CourseRecord) string {
	return fmt.Sprintf(courseTemplate, c.TimeSlot, c.Name, c.Teacher, c.Location, c.Weeks)
}

// FormatReminder renders the pre-class reminder message.
func FormatReminder(c *model.CourseRecord) string {
	return fmt.Sprintf(reminderTemplate, c.TimeSlot, c.Name, c.Teacher, c.Location)
}

// FormatPreview renders the next-day preview for the given courses.
func FormatPreview(day model.Weekday, courses []model.CourseRecord) string {
	var blocks []string
	for i := range courses {
		blocks = append(blocks, FormatCourse(&courses[i]))
	}
	return fmt.Sprintf(previewTemplate, string(day), strings.Join(blocks, "\n\n"))
}

// FormatSchedule renders a full schedule document for the confirmation
// message, section by section.
func FormatSchedule(s *model.UserSchedule) string {
	var out []string

	if len(s.BasicInfo) > 0 {
		out = append(out, "📚 基本信息")
		for _, key := range []string{"学校", "班级", "专业", "学院"} {
			if v, ok := s.BasicInfo[key]; ok {
				out = append(out, fmt.Sprintf("• %s：%s", key, v))
			}
		}
		for key, v := range s.BasicInfo {
			switch key {
			case "学校", "班级", "专业", "学院":
			default:
				out = append(out, fmt.Sprintf("• %s：%s", key, v))
			}
		}
		out = append(out, "")
	}

	var weekly, evening []string
	for i := range s.Courses {
		c := &s.Courses[i]
		if c.Weekday == model.WeekdayUnspecified {
			evening = append(evening, FormatCourse(c))
			continue
		}
		weekly = append(weekly, c.Weekday.String()+"\n"+FormatCourse(c))
	}

	if len(weekly) > 0 {
		out = append(out, "🗓️ 每周课程详情", strings.Join(weekly, "\n\n"), "")
	}
	if len(evening) > 0 {
		out = append(out, "🌙 晚间课程", strings.Join(evening, "\n\n"), "")
	}
	if len(s.Remarks) > 0 {
		out = append(out, "📌 重要备注")
		for _, remark := range s.Remarks {
			out = append(out, "• "+remark)
		}
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
