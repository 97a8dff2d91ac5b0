package charts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

// Palette holds the chart colours.
type Palette struct {
	Line     lipgloss.Color
	Axis     lipgloss.Color
	Positive lipgloss.Color
	Neutral  lipgloss.Color
	Negative lipgloss.Color
}

// DefaultPalette returns the dashboard chart colours.
func DefaultPalette() Palette {
	return Palette{
		Line:     lipgloss.Color("#0073E6"),
		Axis:     lipgloss.Color("#6C7086"),
		Positive: lipgloss.Color("#33CC33"),
		Neutral:  lipgloss.Color("#7A99B8"),
		Negative: lipgloss.Color("#EF4444"),
	}
}

// blocks are the eighth-height bar glyphs, lowest first.
var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// VolumeChart draws daily email volume as a column chart.
type VolumeChart struct {
	surface *Surface
	palette Palette
}

var _ driven.RenderSpec = (*VolumeChart)(nil)

// NewVolumeChart creates a volume chart drawing on surface.
func NewVolumeChart(surface *Surface, palette Palette) *VolumeChart {
	return &VolumeChart{surface: surface, palette: palette}
}

// Name implements driven.RenderSpec.
func (c *VolumeChart) Name() string {
	return "volume"
}

// Build implements driven.RenderSpec. data must be []domain.VolumePoint.
func (c *VolumeChart) Build(data any) (driven.RenderHandle, error) {
	return build(c.surface, c.Name(), data, c.draw)
}

func (c *VolumeChart) draw(points []domain.VolumePoint, width, height int) string {
	axis := lipgloss.NewStyle().Foreground(c.palette.Axis)
	if len(points) == 0 {
		return axis.Render("No emails in this period")
	}

	peak := 0
	for _, p := range points {
		peak = max(peak, p.Count)
	}
	gutter := len(strconv.Itoa(peak)) + 1

	// One row is kept for the date labels.
	rows := max(height-1, 1)
	cols := max(width-gutter, 1)
	if len(points) > cols {
		points = points[len(points)-cols:]
	}
	colWidth := max(cols/len(points), 1)

	bar := lipgloss.NewStyle().Foreground(c.palette.Line)
	lines := make([]string, 0, rows+1)
	for row := rows; row >= 1; row-- {
		var b strings.Builder
		for _, p := range points {
			glyph := string(column(p.Count, peak, rows, row))
			b.WriteString(strings.Repeat(glyph, max(colWidth-1, 1)))
			if colWidth > 1 {
				b.WriteByte(' ')
			}
		}
		label := ""
		switch row {
		case rows:
			label = strconv.Itoa(peak)
		case 1:
			label = "0"
		}
		lines = append(lines, axis.Render(fmt.Sprintf("%*s ", gutter-1, label))+bar.Render(b.String()))
	}
	lines = append(lines, axis.Render(strings.Repeat(" ", gutter)+dateAxis(points, colWidth*len(points))))
	return strings.Join(lines, "\n")
}

// column returns the glyph of a bar of count at row (1 is the bottom) of
// a rows-high chart whose top is peak.
func column(count, peak, rows, row int) rune {
	if peak == 0 || count <= 0 {
		return blocks[0]
	}
	eighths := count * rows * 8 / peak
	if eighths == 0 {
		eighths = 1
	}
	filled := eighths - (row-1)*8
	switch {
	case filled >= 8:
		return blocks[8]
	case filled <= 0:
		return blocks[0]
	default:
		return blocks[filled]
	}
}

// dateAxis labels the first and last day at either end of width.
func dateAxis(points []domain.VolumePoint, width int) string {
	first := points[0].Date.Format("Jan 2")
	if len(points) == 1 {
		return first
	}
	last := points[len(points)-1].Date.Format("Jan 2")
	gap := width - len(first) - len(last)
	if gap < 1 {
		return first
	}
	return first + strings.Repeat(" ", gap) + last
}
