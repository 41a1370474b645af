package parse

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/teheiw197/classbell/internal/model"
)

// Result is everything the pattern extractor recovered from one message.
type Result struct {
	BasicInfo map[string]string
	Courses   []model.CourseRecord
	Remarks   []string
}

var (
	// 星期一 on its own line opens a per-day block.
	weekdayHeaderRe = regexp.MustCompile(`(?m)^星期([一二三四五六日])$`)

	// The five-label group emitting one course. All five labels must be
	// present on consecutive lines; partial groups never match.
	courseGroupRe = regexp.MustCompile(
		`上课时间[：:]\s*([^\n]+)\n` +
			`课程名称[：:]\s*([^\n]+)\n` +
			`教师[：:]\s*([^\n]+)\n` +
			`上课地点[：:]\s*([^\n]+)\n` +
			`周次[：:]\s*([^\n]+)`)

	// • 学校：XX大学
	basicInfoRe = regexp.MustCompile(`(?m)^•\s*([^：:\n]+)[：:]\s*(.+)$`)

	// Plain bullets without a key are remarks.
	remarkRe = regexp.MustCompile(`(?m)^•\s*([^：:\n]+)$`)
)

// ExtractCourses runs the pattern cascade over normalized text and
// returns every course record it can recover. It never fails: text
// with no recognizable structure simply yields an empty result, which
// the caller treats as "defer to the AI extractor".
func ExtractCourses(text string) *Result {
	text = NormalizeLines(text)

	res := &Result{BasicInfo: map[string]string{}}
	res.parseBasicInfo(text)
	res.parseRemarks(text)

	// A per-weekday block covers only the label groups that follow its
	// 星期X header with nothing else in between. The first foreign line
	// (the evening section, remarks) or the next header ends the block,
	// so a trailing evening section never inherits the last weekday.
	headers := weekdayHeaderRe.FindAllStringSubmatchIndex(text, -1)
	var blockSpans [][2]int
	for i, h := range headers {
		day := model.Weekday(text[h[2]:h[3]])
		limit := len(text)
		if i+1 < len(headers) {
			limit = headers[i+1][0]
		}

		region := text[h[1]:limit]
		blockEnd := h[1]
		pos := 0
		for _, idx := range courseGroupRe.FindAllStringSubmatchIndex(region, -1) {
			if strings.TrimSpace(region[pos:idx[0]]) != "" {
				break
			}
			res.Courses = append(res.Courses, newCourse(day, submatches(region, idx)))
			pos = idx[1]
			blockEnd = h[1] + idx[1]
		}
		blockSpans = append(blockSpans, [2]int{h[0], blockEnd})
	}

	// Label groups outside every weekday block belong to the evening
	// section, which is written without a day header.
	for _, idx := range courseGroupRe.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(idx[0], blockSpans) {
			continue
		}
		m := submatches(text, idx)
		res.Courses = append(res.Courses, newCourse(model.WeekdayUnspecified, m))
	}

	return res
}

func newCourse(day model.Weekday, m []string) model.CourseRecord {
	return model.CourseRecord{
		ID:       uuid.New(),
		Weekday:  day,
		TimeSlot: strings.TrimSpace(m[1]),
		Name:     strings.TrimSpace(m[2]),
		Teacher:  strings.TrimSpace(m[3]),
		Location: strings.TrimSpace(m[4]),
		Weeks:    strings.TrimSpace(m[5]),
	}
}

func (r *Result) parseBasicInfo(text string) {
	for _, m := range basicInfoRe.FindAllStringSubmatch(text, -1) {
		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		// The template keeps placeholder hints like
		// "XX专业（没有则不显示）" for absent fields.
		if value == "" || strings.Contains(value, "（没有则不显示）") ||
			strings.Contains(value, "(没有则不显示)") {
			continue
		}
		r.BasicInfo[key] = value
	}
}

func (r *Result) parseRemarks(text string) {
	for _, m := range remarkRe.FindAllStringSubmatch(text, -1) {
		remark := strings.TrimSpace(m[1])
		if remark == "" || strings.HasPrefix(remark, "备注内容") {
			continue
		}
		r.Remarks = append(r.Remarks, remark)
	}
}

func insideAny(pos int, spans [][2]int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func submatches(text string, idx []int) []string {
	out := make([]string, 0, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			out = append(out, "")
			continue
		}
		out = append(out, text[idx[i]:idx[i+1]])
	}
	return out
}
