package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/teheiw197/classbell/internal/controller/render"
	"github.com/teheiw197/classbell/internal/model"
)

// Renders a sample timetable to timetable.png so the grid layout can
// be checked without a running bot. Pass a TTF path as the first
// argument to render CJK text.
func main() {
	fontPath := ""
	if len(os.Args) > 1 {
		fontPath = os.Args[1]
	}

	schedule := &model.UserSchedule{
		UserID: 1,
		State:  model.StateConfirmed,
		Courses: []model.CourseRecord{
			{
				ID:       uuid.New(),
				Weekday:  "一",
				TimeSlot: "第1-2节（08:00-09:40）",
				Name:     "高等数学",
				Teacher:  "张三",
				Location: "教1-201",
				Weeks:    "1-16周",
			},
			{
				ID:       uuid.New(),
				Weekday:  "三",
				TimeSlot: "第5-6节（14:00-15:40）",
				Name:     "大学英语",
				Teacher:  "李四",
				Location: "外语楼302",
				Weeks:    "1-8周",
			},
			{
				ID:       uuid.New(),
				Weekday:  "五",
				TimeSlot: "第3-4节（10:00-11:40）",
				Name:     "数据结构",
				Teacher:  "王五",
				Location: "实验楼B204",
				Weeks:    "2-17周",
			},
			{
				ID:       uuid.New(),
				TimeSlot: "第9-10节（19:00-20:40）",
				Name:     "形势与政策",
				Location: "大礼堂",
				Weeks:    "3-6周",
			},
		},
	}

	renderer, err := render.NewTimetable(fontPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load font: %v\n", err)
		os.Exit(1)
	}

	png, err := renderer.RenderPNG(schedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("timetable.png", png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote timetable.png")
}
