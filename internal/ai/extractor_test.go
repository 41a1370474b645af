package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/model"
	"github.com/teheiw197/classbell/internal/parse"
)

// scriptedCompleter replays canned replies and records every request.
type scriptedCompleter struct {
	replies []string
	errs    []error
	calls   [][]Message
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []Message, _ float64) (string, error) {
	s.calls = append(s.calls, messages)
	i := len(s.calls) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", fmt.Errorf("%w: no scripted reply", ErrUpstream)
}

const validReply = `[{"course_name":"高等数学","weekday":"一","time":"第1-2节（08:00-09:40）","week_range":"1-16周","teacher":"张三","location":"教1-201"}]`

func TestExtractCoursesFencedJSON(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"```json\n" + validReply + "\n```"}}
	ext := NewExtractor(completer, 2, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "课程表文本")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "高等数学", records[0].Name)
	assert.Equal(t, model.Weekday("一"), records[0].Weekday)
	assert.Equal(t, "1-16周", records[0].Weeks)
	assert.Len(t, completer.calls, 1)
}

func TestExtractCoursesAcceptsPrefixedWeekday(t *testing.T) {
	reply := `[{"course_name":"大学英语","weekday":"周三","time":"第5-6节（14:00-15:40）","week_range":"1-8周"}]`
	completer := &scriptedCompleter{replies: []string{reply}}
	ext := NewExtractor(completer, 0, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.Weekday("三"), records[0].Weekday)
}

func TestExtractCoursesMissingWeekdayTriggersCorrectiveRetry(t *testing.T) {
	missingWeekday := `[{"course_name":"高等数学","time":"第1-2节（08:00-09:40）","week_range":"1-16周"}]`
	completer := &scriptedCompleter{replies: []string{
		"```json\n" + missingWeekday + "\n```",
		validReply,
	}}
	ext := NewExtractor(completer, 2, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "原始课程表文本")
	require.NoError(t, err)
	require.Len(t, records, 1)

	// The corrective follow-up names the missing field class and
	// carries the same source text, not a diff.
	require.Len(t, completer.calls, 2)
	followUp := completer.calls[1][1].Content
	assert.Contains(t, followUp, "星期几")
	assert.Contains(t, followUp, "原始课程表文本")
}

func TestExtractCoursesRepairsAlmostJSON(t *testing.T) {
	trailingComma := `[{"course_name":"高等数学","weekday":"一","time":"第1-2节（08:00-09:40）","week_range":"1-16周",}]`
	completer := &scriptedCompleter{replies: []string{trailingComma}}
	ext := NewExtractor(completer, 0, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "text")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExtractCoursesExhaustedRetriesReturnsNoCourses(t *testing.T) {
	bad := `[{"course_name":"","weekday":"","time":"","week_range":""}]`
	completer := &scriptedCompleter{replies: []string{bad, bad, bad}}
	ext := NewExtractor(completer, 2, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "text")
	assert.ErrorIs(t, err, parse.ErrNoCourses)
	assert.Empty(t, records)
	assert.Len(t, completer.calls, 3)
}

func TestExtractCoursesUpstreamFailure(t *testing.T) {
	upstream := fmt.Errorf("%w: status 500", ErrUpstream)
	completer := &scriptedCompleter{errs: []error{upstream, upstream, upstream}}
	ext := NewExtractor(completer, 2, zap.NewNop())

	records, err := ext.ExtractCourses(context.Background(), "text")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Empty(t, records)
}

func TestExtractCoursesNeverReturnsPartialData(t *testing.T) {
	mixed := `[
		{"course_name":"高等数学","weekday":"一","time":"第1-2节（08:00-09:40）","week_range":"1-16周"},
		{"course_name":"线性代数","time":"第3-4节（10:00-11:40）","week_range":"1-16周"}
	]`
	completer := &scriptedCompleter{replies: []string{mixed, mixed}}
	ext := NewExtractor(completer, 1, zap.NewNop())

	// One entry keeps failing validation, so after the budget the
	// whole result is empty rather than the valid half.
	records, err := ext.ExtractCourses(context.Background(), "text")
	assert.ErrorIs(t, err, parse.ErrNoCourses)
	assert.Empty(t, records)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `[1]`, StripFence("```json\n[1]\n```"))
	assert.Equal(t, `[1]`, StripFence("```\n[1]\n```"))
	assert.Equal(t, `[1]`, StripFence("[1]"))
	assert.Equal(t, `{"a":1}`, StripFence("```{\"a\":1}```"))
}

func TestErrUpstreamIsDistinguishable(t *testing.T) {
	err := fmt.Errorf("%w: timeout", ErrUpstream)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, parse.ErrNoCourses))
}
