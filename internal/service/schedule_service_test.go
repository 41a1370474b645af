package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teheiw197/classbell/internal/ai"
	"github.com/teheiw197/classbell/internal/model"
	"github.com/teheiw197/classbell/internal/parse"
)

const scheduleText = "星期一\n上课时间：第1-2节（08:00-09:40）\n课程名称：高等数学\n教师：张三\n上课地点：教1-201\n周次：1-16周"

// stubExtractor is a canned AI fallback.
type stubExtractor struct {
	records []model.CourseRecord
	err     error
	calls   int
}

func (s *stubExtractor) ExtractCourses(context.Context, string) ([]model.CourseRecord, error) {
	s.calls++
	return s.records, s.err
}

func newScheduleService(st *memStore, extractor CourseExtractor) *ScheduleService {
	return NewScheduleService(st, extractor, zap.NewNop())
}

func TestIngestTextStoresPendingSchedule(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	schedule, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	assert.Equal(t, model.StatePending, schedule.State)
	assert.Equal(t, int64(100), schedule.ChatID)
	require.Len(t, schedule.Courses, 1)
	assert.Equal(t, "高等数学", schedule.Courses[0].Name)

	stored, err := st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsPending())
}

func TestIngestTextUnparseableWithoutAI(t *testing.T) {
	svc := newScheduleService(newMemStore(), nil)

	_, err := svc.IngestText(context.Background(), 1, 100, "这不是课程表")
	assert.ErrorIs(t, err, parse.ErrNoCourses)
}

func TestIngestTextFallsBackToAI(t *testing.T) {
	extractor := &stubExtractor{records: []model.CourseRecord{{
		ID:       uuid.New(),
		Weekday:  "二",
		TimeSlot: "第3-4节（10:00-11:40）",
		Name:     "线性代数",
		Weeks:    "1-16周",
	}}}
	svc := newScheduleService(newMemStore(), extractor)

	schedule, err := svc.IngestText(context.Background(), 1, 100, "随便什么格式的课表")
	require.NoError(t, err)
	require.Len(t, schedule.Courses, 1)
	assert.Equal(t, "线性代数", schedule.Courses[0].Name)
	assert.Equal(t, 1, extractor.calls)
}

func TestIngestTextPatternWinsOverAI(t *testing.T) {
	extractor := &stubExtractor{}
	svc := newScheduleService(newMemStore(), extractor)

	_, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	assert.Zero(t, extractor.calls, "pattern hit must not call the AI extractor")
}

func TestIngestTextPropagatesUpstreamFailure(t *testing.T) {
	extractor := &stubExtractor{err: fmt.Errorf("%w: timeout", ai.ErrUpstream)}
	svc := newScheduleService(newMemStore(), extractor)

	_, err := svc.IngestText(context.Background(), 1, 100, "没法用规则解析的课表")
	assert.ErrorIs(t, err, ai.ErrUpstream)
}

func TestIngestReplacesPriorScheduleAndMarkers(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	schedule, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	marker := model.ReminderMarker{UserID: 1, CourseID: schedule.Courses[0].ID, Date: "2026-09-07"}
	require.NoError(t, st.PutMarker(context.Background(), marker))

	// New text replaces the confirmed schedule with a fresh pending one.
	_, err = svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)

	stored, err := st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.IsPending())

	seen, err := st.SeenMarker(context.Background(), 1, marker.CourseID, marker.Date)
	require.NoError(t, err)
	assert.False(t, seen, "old markers must be cleared on re-ingestion")
}

func TestConfirmLifecycle(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	_, err := svc.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSchedule)

	_, err = svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)

	schedule, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, schedule.IsConfirmed())

	// Confirming twice is a state error.
	_, err = svc.Confirm(context.Background(), 1)
	assert.Error(t, err)
}

func TestRejectEmptiesPendingSchedule(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	_, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	require.NoError(t, svc.Reject(context.Background(), 1))

	stored, err := st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, stored.State)
	assert.Empty(t, stored.Courses)
}

func TestClearRemovesScheduleAndMarkers(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	schedule, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	marker := model.ReminderMarker{UserID: 1, CourseID: schedule.Courses[0].ID, Date: "2026-09-07"}
	require.NoError(t, st.PutMarker(context.Background(), marker))

	require.NoError(t, svc.Clear(context.Background(), 1))

	stored, err := st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, stored)
	seen, err := st.SeenMarker(context.Background(), 1, marker.CourseID, marker.Date)
	require.NoError(t, err)
	assert.False(t, seen)

	assert.ErrorIs(t, svc.Clear(context.Background(), 1), ErrNoSchedule)
}

func TestDisableKeepsCoursesEnableRestores(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st, nil)

	_, err := svc.IngestText(context.Background(), 1, 100, scheduleText)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Disable(context.Background(), 1))
	stored, err := st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, stored.State)
	assert.Len(t, stored.Courses, 1, "disable must keep the course list")

	require.NoError(t, svc.Enable(context.Background(), 1))
	stored, err = st.GetSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, stored.IsConfirmed())
}

func TestFormatSchedule(t *testing.T) {
	schedule := &model.UserSchedule{
		BasicInfo: map[string]string{"学校": "测试大学"},
		Courses: []model.CourseRecord{
			{Weekday: "一", TimeSlot: "第1-2节（08:00-09:40）", Name: "高等数学", Teacher: "张三", Location: "教1-201", Weeks: "1-16周"},
			{TimeSlot: "第9-10节（19:00-20:40）", Name: "形势与政策", Weeks: "3-6周"},
		},
		Remarks: []string{"请提前十分钟到教室"},
	}

	text := FormatSchedule(schedule)
	assert.Contains(t, text, "📚 基本信息")
	assert.Contains(t, text, "• 学校：测试大学")
	assert.Contains(t, text, "🗓️ 每周课程详情")
	assert.Contains(t, text, "星期一")
	assert.Contains(t, text, "课程名称：高等数学")
	assert.Contains(t, text, "🌙 晚间课程")
	assert.Contains(t, text, "形势与政策")
	assert.Contains(t, text, "📌 重要备注")
}
