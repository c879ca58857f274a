// Package export rasterizes a schedule to a 1080x1920 JPEG.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"time"

	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/overlap"
	"github.com/meltforce/practiceboard/internal/schedule"
	"github.com/meltforce/practiceboard/internal/timegrid"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	Width          = 1080
	Height         = 1920
	DefaultQuality = 95

	// DefaultFilename is used when the session has no date.
	DefaultFilename = "練習スケジュール.jpg"

	title      = "タイムスケジュール"
	timeColW   = 120
	gridStartY = 160
	headerH    = 80
	rowPx      = 60
	rightPad   = 50
	bottomPad  = 100
)

var (
	colorText    = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorMuted   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorRule    = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	colorBlockBG = color.RGBA{0xff, 0xff, 0xff, 0xff}

	categoryColors = map[string]color.RGBA{
		models.CategoryWarmup:   {0xff, 0xf1, 0xd6, 0xff},
		models.CategoryFielding: {0xdd, 0xec, 0xff, 0xff},
		models.CategoryBatting:  {0xe2, 0xf6, 0xe0, 0xff},
		models.CategoryPitching: {0xff, 0xe0, 0xe0, 0xff},
	}
)

// Filename returns "YYYY年MM月DD日 練習スケジュール.jpg" for a YYYY-MM-DD
// date, or DefaultFilename.
func Filename(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return DefaultFilename
	}
	return fmt.Sprintf("%04d年%02d月%02d日 練習スケジュール.jpg", d.Year(), int(d.Month()), d.Day())
}

// Sheet is everything drawn on the exported image.
type Sheet struct {
	Session schedule.Session
	Lanes   []schedule.Lane
	Blocks  []schedule.Block
	Slots   []string
	Step    int
	// Category maps a menu id to its category for coloring. May be nil.
	Category func(menuID string) string
}

// SheetFor captures the current state of s.
func SheetFor(s *schedule.Schedule, category func(string) string) (Sheet, error) {
	slots, err := s.Slots()
	if err != nil {
		return Sheet{}, fmt.Errorf("enumerating slots: %w", err)
	}
	blocks := make([]schedule.Block, 0)
	for _, b := range s.Blocks() {
		blocks = append(blocks, *b)
	}
	return Sheet{
		Session:  s.Session,
		Lanes:    s.Lanes(),
		Blocks:   blocks,
		Slots:    slots,
		Step:     s.Step(),
		Category: category,
	}, nil
}

// Renderer draws sheets.
type Renderer struct {
	quality int
	faces   faces
}

// NewRenderer creates a renderer. An empty fontPath uses the built-in
// bitmap face; quality outside 1..100 uses DefaultQuality.
func NewRenderer(fontPath string, quality int) (*Renderer, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	r := &Renderer{quality: quality, faces: basicFaces()}
	if fontPath != "" {
		f, err := loadFaces(fontPath)
		if err != nil {
			return nil, err
		}
		r.faces = f
	}
	return r, nil
}

// Export refuses with an *overlap.Violation while any blocks overlap;
// otherwise it writes the JPEG for s to w and returns the file name.
func (r *Renderer) Export(w io.Writer, s *schedule.Schedule, category func(string) string) (string, error) {
	if err := overlap.Check(s); err != nil {
		return "", err
	}
	sheet, err := SheetFor(s, category)
	if err != nil {
		return "", err
	}
	if err := r.Encode(w, sheet); err != nil {
		return "", err
	}
	return Filename(s.Session.Date), nil
}

// Encode draws sheet and writes it as JPEG.
func (r *Renderer) Encode(w io.Writer, sheet Sheet) error {
	img := r.Draw(sheet)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}

// Draw renders sheet onto a new Width x Height image.
func (r *Renderer) Draw(sheet Sheet) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fill(img, img.Bounds(), color.White)

	text(img, r.faces.title, colorText, 50, 80, title)
	if sheet.Session.Date != "" || sheet.Session.Location != "" {
		line := sheet.Session.Date
		if sheet.Session.Location != "" {
			if line != "" {
				line += "  "
			}
			line += sheet.Session.Location
		}
		text(img, r.faces.header, colorMuted, 50, 130, line)
	}

	laneW := (Width - timeColW - 80) / max(len(sheet.Lanes), 1)
	laneIndex := make(map[schedule.LaneID]int, len(sheet.Lanes))
	for i, l := range sheet.Lanes {
		laneIndex[l.ID] = i
		x := timeColW + i*laneW
		strokeRect(img, image.Rect(x, gridStartY, x+laneW, gridStartY+headerH), 2, colorText)
		tw := measure(r.faces.lane, l.Name)
		text(img, r.faces.lane, colorText, x+(laneW-tw)/2, gridStartY+52, l.Name)
	}

	gridTop := gridStartY + headerH + 10
	row := rowHeight(len(sheet.Slots), Height-bottomPad-gridTop)
	for i, t := range sheet.Slots {
		y := gridTop + i*row
		fill(img, image.Rect(timeColW, y, Width-rightPad, y+1), colorRule)
		if i%2 == 0 {
			text(img, r.faces.label, colorMuted, 30, y+row*2/5, t)
		}
	}

	step := sheet.Step
	if step <= 0 {
		step = timegrid.DefaultStep
	}
	for _, b := range sheet.Blocks {
		li, ok := laneIndex[b.LaneID]
		if !ok {
			continue
		}
		top := timegrid.SlotIndex(sheet.Slots, b.Start)
		if top < 0 {
			continue
		}
		x := timeColW + li*laneW + 2
		y := gridTop + top*row + 2
		slotsTall := int(math.Round(float64(b.DurationMin) / float64(step)))
		h := max(row-4, slotsTall*row-4)
		rect := image.Rect(x, y, x+laneW-4, y+h)

		bg := colorBlockBG
		if sheet.Category != nil {
			if c, ok := categoryColors[sheet.Category(b.MenuID)]; ok {
				bg = c
			}
		}
		fill(img, rect, bg)
		strokeRect(img, rect, 2, colorText)
		r.drawBlockText(img, b, x, y, laneW-24)
	}
	return img
}

// drawBlockText writes the title, wrapped per character to maxWidth, and
// the duration under it.
func (r *Renderer) drawBlockText(img draw.Image, b schedule.Block, x, y, maxWidth int) {
	face := r.faces.block
	lineH := face.Metrics().Height.Ceil() + 4
	baseline := y + face.Metrics().Ascent.Ceil() + 6

	for _, line := range wrap(face, b.Title, maxWidth) {
		text(img, face, colorText, x+12, baseline, line)
		baseline += lineH
	}
	text(img, r.faces.duration, colorMuted, x+12, baseline, fmt.Sprintf("%d分", b.DurationMin))
}

// rowHeight shrinks the 60px slot row so that slots rows fit in avail.
func rowHeight(slots, avail int) int {
	if slots == 0 || slots*rowPx <= avail {
		return rowPx
	}
	return max(avail/slots, 1)
}

// wrap breaks s into lines no wider than maxWidth, splitting between
// characters since Japanese titles have no spaces.
func wrap(face font.Face, s string, maxWidth int) []string {
	var lines []string
	line := ""
	for _, ch := range s {
		next := line + string(ch)
		if line != "" && measure(face, next) > maxWidth {
			lines = append(lines, line)
			next = string(ch)
		}
		line = next
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func text(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}
