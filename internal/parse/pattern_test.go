package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teheiw197/classbell/internal/model"
)

const mondayBlock = "星期一\n上课时间：第1-2节（08:00-09:40）\n课程名称：高等数学\n教师：张三\n上课地点：教1-201\n周次：1-16周"

func TestExtractSingleCourse(t *testing.T) {
	result := ExtractCourses(mondayBlock)
	require.Len(t, result.Courses, 1)

	c := result.Courses[0]
	assert.Equal(t, model.Weekday("一"), c.Weekday)
	assert.Equal(t, "第1-2节（08:00-09:40）", c.TimeSlot)
	assert.Equal(t, "高等数学", c.Name)
	assert.Equal(t, "张三", c.Teacher)
	assert.Equal(t, "教1-201", c.Location)
	assert.Equal(t, "1-16周", c.Weeks)

	require.NoError(t, Validate(&c))
}

func TestExtractMissingWeeksLineYieldsNothing(t *testing.T) {
	text := "星期一\n上课时间：第1-2节（08:00-09:40）\n课程名称：高等数学\n教师：张三\n上课地点：教1-201"
	result := ExtractCourses(text)
	assert.Empty(t, Gate(result.Courses))
}

func TestExtractPartialGroupNeverYieldsPartialRecord(t *testing.T) {
	// Teacher line missing: the five-label group must not match at all.
	text := "星期二\n上课时间：第3-4节（10:00-11:40）\n课程名称：线性代数\n上课地点：教2-105\n周次：1-16周"
	result := ExtractCourses(text)
	assert.Empty(t, result.Courses)
}

func TestExtractMultipleDays(t *testing.T) {
	text := mondayBlock + "\n星期三\n" +
		"上课时间：第5-6节（14:00-15:40）\n课程名称：大学英语\n教师：李四\n上课地点：外语楼302\n周次：1-8周\n" +
		"上课时间：第7-8节（16:00-17:40）\n课程名称：体育\n教师：王五\n上课地点：操场\n周次：1-16周"

	result := ExtractCourses(text)
	require.Len(t, result.Courses, 3)
	assert.Equal(t, model.Weekday("一"), result.Courses[0].Weekday)
	assert.Equal(t, model.Weekday("三"), result.Courses[1].Weekday)
	assert.Equal(t, model.Weekday("三"), result.Courses[2].Weekday)
	assert.Equal(t, "体育", result.Courses[2].Name)
}

func TestExtractEveningSectionIsWeekdayless(t *testing.T) {
	text := "🌙 晚间课程\n\n上课时间：第9-10节（19:00-20:40）\n课程名称：形势与政策\n教师：赵六\n上课地点：大礼堂\n周次：3-6周"

	result := ExtractCourses(text)
	require.Len(t, result.Courses, 1)
	assert.Equal(t, model.WeekdayUnspecified, result.Courses[0].Weekday)
	assert.Equal(t, "形势与政策", result.Courses[0].Name)
	require.NoError(t, Validate(&result.Courses[0]))
}

func TestExtractEveningAfterWeekdayBlocks(t *testing.T) {
	text := mondayBlock + "\n\n🌙 晚间课程\n" +
		"上课时间：第9-10节（19:00-20:40）\n课程名称：形势与政策\n教师：赵六\n上课地点：大礼堂\n周次：3-6周"

	result := ExtractCourses(text)
	require.Len(t, result.Courses, 2)
	assert.Equal(t, model.Weekday("一"), result.Courses[0].Weekday)
	assert.Equal(t, model.WeekdayUnspecified, result.Courses[1].Weekday)
}

func TestExtractDaytimeGroupBeforeAnyHeaderDroppedByGate(t *testing.T) {
	// A label group before the first weekday header comes out day-less;
	// with a daytime slot the gate refuses to store it.
	text := "上课时间：第1-2节（08:00-09:40）\n课程名称：高等数学\n教师：张三\n上课地点：教1-201\n周次：1-16周"

	result := ExtractCourses(text)
	require.Len(t, result.Courses, 1)
	assert.Equal(t, model.WeekdayUnspecified, result.Courses[0].Weekday)
	assert.Empty(t, Gate(result.Courses))
}

func TestExtractBasicInfoAndRemarks(t *testing.T) {
	text := "📚 基本信息\n\n• 学校：测试大学\n\n• 班级：软件2101班\n\n• 专业：XX专业（没有则不显示）\n\n" +
		mondayBlock + "\n\n📌 重要备注\n\n• 请提前十分钟到教室\n\n• 备注内容2"

	result := ExtractCourses(text)
	assert.Equal(t, "测试大学", result.BasicInfo["学校"])
	assert.Equal(t, "软件2101班", result.BasicInfo["班级"])
	_, hasMajor := result.BasicInfo["专业"]
	assert.False(t, hasMajor, "placeholder values must be dropped")

	assert.Equal(t, []string{"请提前十分钟到教室"}, result.Remarks)
}

func TestExtractNoCoursesIsNotAnError(t *testing.T) {
	result := ExtractCourses("今天天气不错")
	assert.Empty(t, result.Courses)

	// A weekday header with no label groups under it is simply a free day.
	result = ExtractCourses("星期一\n没有课，自由活动")
	assert.Empty(t, result.Courses)
}

func TestNormalizeLines(t *testing.T) {
	input := "  星期一  \n\n\n上课时间：第1-2节（08:00-09:40）  \n"
	assert.Equal(t, "星期一\n上课时间：第1-2节（08:00-09:40）", NormalizeLines(input))
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "a b c", Flatten("  a\n\nb\tc "))
}
