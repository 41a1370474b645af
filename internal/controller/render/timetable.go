package render

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/teheiw197/classbell/internal/model"
)

// Grid geometry.
const (
	imageWidth    = 1200
	imageHeight   = 1500
	headerHeight  = 70.0
	labelsWidth   = 60.0
	totalDays     = 7
	totalPeriods  = 11
	cellPadding   = 4.0
	cellRadius    = 6.0
	titleFontSize = 22.0
	cellFontSize  = 16.0
	labelFontSize = 14.0
)

// Colour scheme.
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	gridColor      = color.NRGBA{205, 208, 212, 255}
	headerColor    = color.RGBA{80, 85, 90, 255}
	labelColor     = color.RGBA{110, 115, 120, 255}
	dayCellColor   = color.RGBA{133, 193, 85, 220}
	nightCellColor = color.RGBA{100, 130, 200, 220}
	cellTextColor  = color.RGBA{20, 24, 28, 255}
)

var dayHeaders = []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// columnOf maps a schedule weekday to its grid column, Monday first.
var columnOf = map[model.Weekday]int{
	"一": 0, "二": 1, "三": 2, "四": 3, "五": 4, "六": 5, "日": 6,
}

// Timetable renders a user's weekly course grid as a PNG. A TTF with
// CJK glyphs must be supplied for Chinese text; without one the
// builtin bitmap face is used and CJK characters come out blank.
type Timetable struct {
	titleFace font.Face
	cellFace  font.Face
	labelFace font.Face
}

// NewTimetable loads the font at fontPath, or falls back to the
// builtin face when the path is empty or unreadable.
func NewTimetable(fontPath string) (*Timetable, error) {
	t := &Timetable{
		titleFace: basicfont.Face7x13,
		cellFace:  basicfont.Face7x13,
		labelFace: basicfont.Face7x13,
	}
	if fontPath == "" {
		return t, nil
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	for _, face := range []struct {
		target *font.Face
		size   float64
	}{
		{&t.titleFace, titleFontSize},
		{&t.cellFace, cellFontSize},
		{&t.labelFace, labelFontSize},
	} {
		f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    face.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("build font face: %w", err)
		}
		*face.target = f
	}
	return t, nil
}

// RenderPNG draws the full weekly grid for the schedule.
func (t *Timetable) RenderPNG(schedule *model.UserSchedule) ([]byte, error) {
	dc := gg.NewContext(imageWidth, imageHeight)

	dc.SetColor(bgColor)
	dc.Clear()

	colWidth := (float64(imageWidth) - labelsWidth) / totalDays
	rowHeight := (float64(imageHeight) - headerHeight) / totalPeriods

	t.drawGrid(dc, colWidth, rowHeight)

	for i := range schedule.Courses {
		c := &schedule.Courses[i]
		t.drawCourse(dc, c, colWidth, rowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (t *Timetable) drawGrid(dc *gg.Context, colWidth, rowHeight float64) {
	// Day headers
	dc.SetFontFace(t.titleFace)
	dc.SetColor(headerColor)
	for i, name := range dayHeaders {
		x := labelsWidth + float64(i)*colWidth + colWidth/2
		dc.DrawStringAnchored(name, x, headerHeight/2, 0.5, 0.5)
	}

	// Period labels
	dc.SetFontFace(t.labelFace)
	dc.SetColor(labelColor)
	for p := 1; p <= totalPeriods; p++ {
		y := headerHeight + (float64(p)-0.5)*rowHeight
		dc.DrawStringAnchored(fmt.Sprintf("%d", p), labelsWidth/2, y, 0.5, 0.5)
	}

	// Grid lines
	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for i := 0; i <= totalDays; i++ {
		x := labelsWidth + float64(i)*colWidth
		dc.DrawLine(x, headerHeight, x, float64(imageHeight))
		dc.Stroke()
	}
	for p := 0; p <= totalPeriods; p++ {
		y := headerHeight + float64(p)*rowHeight
		dc.DrawLine(labelsWidth, y, float64(imageWidth), y)
		dc.Stroke()
	}
}

func (t *Timetable) drawCourse(dc *gg.Context, c *model.CourseRecord, colWidth, rowHeight float64) {
	st, ok := c.SlotTime()
	if !ok || st.StartPeriod == 0 {
		return
	}
	endPeriod := st.EndPeriod
	if endPeriod < st.StartPeriod || endPeriod > totalPeriods {
		endPeriod = st.StartPeriod
	}

	// Day-less evening records span the whole week.
	firstCol, lastCol := 0, totalDays-1
	cellColor := nightCellColor
	if col, ok := columnOf[c.Weekday]; ok {
		firstCol, lastCol = col, col
		cellColor = dayCellColor
		if st.IsEvening() {
			cellColor = nightCellColor
		}
	}

	y := headerHeight + float64(st.StartPeriod-1)*rowHeight + cellPadding
	h := float64(endPeriod-st.StartPeriod+1)*rowHeight - 2*cellPadding

	for col := firstCol; col <= lastCol; col++ {
		x := labelsWidth + float64(col)*colWidth + cellPadding
		w := colWidth - 2*cellPadding

		dc.SetColor(cellColor)
		dc.DrawRoundedRectangle(x, y, w, h, cellRadius)
		dc.Fill()

		dc.SetFontFace(t.cellFace)
		dc.SetColor(cellTextColor)
		cx := x + w/2
		cy := y + h/2
		dc.DrawStringAnchored(c.Name, cx, cy-cellFontSize, 0.5, 0.5)
		if c.Location != "" {
			dc.DrawStringAnchored(c.Location, cx, cy, 0.5, 0.5)
		}
		dc.DrawStringAnchored(c.Weeks, cx, cy+cellFontSize, 0.5, 0.5)
	}
}
