package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
	"github.com/teheiw197/classbell/internal/parse"
)

const (
	systemPrompt = "你是一个专业的课程表解析助手，请准确提取课程信息。" +
		"如果某些信息无法确定，请将对应字段设为空字符串。"

	promptTemplate = `请帮我解析以下课程表文本，提取每节课的以下信息：
1. 星期几
2. 上课时间（节次和时间）
3. 课程名称
4. 周次
5. 教师姓名和上课地点（如有）

请以JSON数组格式返回，格式如下：
[
    {
        "course_name": "高等数学",
        "weekday": "一",
        "time": "第1-2节（08:00-09:40）",
        "week_range": "1-16周",
        "teacher": "张三",
        "location": "教1-201"
    }
]

course_name、weekday、time、week_range 为必填字段；teacher、location 可为空字符串。
weekday 只填一个汉字（一/二/三/四/五/六/日）。
请确保返回的是合法的JSON格式，不要输出任何其他内容。

课程表文本：
%s`

	correctiveTemplate = `你上一次的解析结果缺少或格式错误的必填字段：%s。
请重新解析同一份课程表文本，补全这些字段并保持JSON数组格式。

课程表文本：
%s`

	extractTemperature = 0.3
)

// Extractor turns free-form schedule text into validated course
// records by delegating to a completion provider. Validation failures
// trigger corrective follow-up prompts against the same source text;
// after the retry budget is spent the result is empty, never partial.
type Extractor struct {
	completer Completer
	logger    *zap.Logger
	retries   uint64
}

// NewExtractor builds an extractor with the given corrective-retry
// budget (attempts beyond the first prompt).
func NewExtractor(completer Completer, retries int, logger *zap.Logger) *Extractor {
	if retries < 0 {
		retries = 0
	}
	return &Extractor{
		completer: completer,
		logger:    logger,
		retries:   uint64(retries),
	}
}

// aiCourse mirrors the JSON object schema fixed by the prompt.
type aiCourse struct {
	CourseName string `json:"course_name"`
	Weekday    string `json:"weekday"`
	Time       string `json:"time"`
	WeekRange  string `json:"week_range"`
	Teacher    string `json:"teacher"`
	Location   string `json:"location"`
}

// ExtractCourses parses schedule text via the completion provider.
// Returns parse.ErrNoCourses when nothing valid could be recovered and
// ErrUpstream when the provider itself kept failing.
func (e *Extractor) ExtractCourses(ctx context.Context, text string) ([]model.CourseRecord, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(promptTemplate, text)},
	}

	var (
		records []model.CourseRecord
		lastErr error
	)

	backoff := retry.WithMaxRetries(e.retries, retry.NewConstant(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		reply, err := e.completer.Complete(ctx, messages, extractTemperature)
		if err != nil {
			lastErr = err
			e.logger.Warn("completion call failed", zap.Error(err))
			return retry.RetryableError(err)
		}

		candidates, err := decodeCourses(reply)
		if err != nil {
			lastErr = err
			e.logger.Warn("completion reply was not parseable JSON", zap.Error(err))
			messages = correctiveMessages(text, []string{"合法的JSON数组"})
			return retry.RetryableError(err)
		}

		accepted, missing := gateCandidates(candidates)
		if len(accepted) == 0 || len(missing) > 0 {
			lastErr = parse.ErrNoCourses
			e.logger.Warn("completion reply failed validation",
				zap.Strings("missing_fields", missing),
				zap.Int("accepted", len(accepted)))
			messages = correctiveMessages(text, missing)
			return retry.RetryableError(parse.ErrNoCourses)
		}

		records = accepted
		return nil
	})

	if err == nil {
		return records, nil
	}
	if lastErr != nil && errors.Is(lastErr, ErrUpstream) {
		return nil, lastErr
	}
	return nil, parse.ErrNoCourses
}

// correctiveMessages rebuilds the conversation for a retry. The same
// source text is sent again; only the instruction names what was wrong.
func correctiveMessages(text string, missing []string) []Message {
	if len(missing) == 0 {
		missing = []string{"必填字段"}
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(correctiveTemplate, strings.Join(missing, "、"), text)},
	}
}

// decodeCourses strips a possible markdown fence and unmarshals the
// array, falling back to jsonrepair for almost-JSON replies.
func decodeCourses(reply string) ([]aiCourse, error) {
	body := StripFence(reply)

	var courses []aiCourse
	if err := json.Unmarshal([]byte(body), &courses); err == nil {
		return courses, nil
	}

	repaired, err := jsonrepair.JSONRepair(body)
	if err != nil {
		return nil, fmt.Errorf("repair completion JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &courses); err != nil {
		return nil, fmt.Errorf("unmarshal repaired JSON: %w", err)
	}
	return courses, nil
}

// StripFence removes a surrounding markdown code fence, with or
// without a language tag, as completion models often add one.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
		// First fence line held a language tag such as "json".
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// gateCandidates converts prompt-schema objects into course records and
// runs them through the shared validation gate. The AI contract makes
// weekday mandatory, so a missing day rejects the entry here even
// though the pattern extractor may emit day-less evening records.
func gateCandidates(candidates []aiCourse) (accepted []model.CourseRecord, missing []string) {
	seen := map[string]bool{}
	for _, c := range candidates {
		rec := model.CourseRecord{
			ID:       uuid.New(),
			Weekday:  normalizeWeekday(c.Weekday),
			TimeSlot: strings.TrimSpace(c.Time),
			Name:     strings.TrimSpace(c.CourseName),
			Teacher:  strings.TrimSpace(c.Teacher),
			Location: strings.TrimSpace(c.Location),
			Weeks:    strings.TrimSpace(c.WeekRange),
		}

		bad := parse.MissingFields(&rec)
		if !rec.Weekday.IsValid() {
			bad = append(bad, "星期几")
		}
		if len(bad) > 0 {
			for _, f := range bad {
				if !seen[f] {
					seen[f] = true
					missing = append(missing, f)
				}
			}
			continue
		}
		if err := parse.Validate(&rec); err != nil {
			continue
		}
		accepted = append(accepted, rec)
	}
	sort.Strings(missing)
	return accepted, missing
}

// normalizeWeekday accepts 一, 周一 and 星期一 alike.
func normalizeWeekday(s string) model.Weekday {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "星期")
	s = strings.TrimPrefix(s, "周")
	return model.Weekday(s)
}
