package charts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
	"github.com/custodia-labs/deskpilot/internal/core/ports/driven"
)

// SentimentChart draws the sentiment distribution as proportional bars.
type SentimentChart struct {
	surface *Surface
	palette Palette
}

var _ driven.RenderSpec = (*SentimentChart)(nil)

// NewSentimentChart creates a sentiment chart drawing on surface.
func NewSentimentChart(surface *Surface, palette Palette) *SentimentChart {
	return &SentimentChart{surface: surface, palette: palette}
}

// Name implements driven.RenderSpec.
func (c *SentimentChart) Name() string {
	return "sentiment"
}

// Build implements driven.RenderSpec. data must be []domain.SentimentCount.
func (c *SentimentChart) Build(data any) (driven.RenderHandle, error) {
	return build(c.surface, c.Name(), data, c.draw)
}

func (c *SentimentChart) draw(counts []domain.SentimentCount, width, height int) string {
	muted := lipgloss.NewStyle().Foreground(c.palette.Axis)
	total := 0
	for _, sc := range counts {
		total += sc.Count
	}
	if total == 0 {
		return muted.Render("No sentiment data")
	}

	const labelWidth = 9
	suffixWidth := len(" 100% (") + len(fmt.Sprint(total)) + 1
	barWidth := max(width-labelWidth-suffixWidth, 1)

	lines := make([]string, 0, len(counts))
	for _, sc := range domain.SentimentDistribution(counts) {
		if len(lines) == height {
			break
		}
		n := sc.Count * barWidth / total
		if sc.Count > 0 && n == 0 {
			n = 1
		}
		bar := lipgloss.NewStyle().Foreground(c.colour(sc.Sentiment)).Render(strings.Repeat("█", n))
		pct := sc.Count * 100 / total
		lines = append(lines, fmt.Sprintf("%-*s%s%s %s",
			labelWidth, sentimentLabel(sc.Sentiment),
			bar, strings.Repeat(" ", barWidth-n),
			muted.Render(fmt.Sprintf("%3d%% (%d)", pct, sc.Count)),
		))
	}
	return strings.Join(lines, "\n")
}

func (c *SentimentChart) colour(s domain.Sentiment) lipgloss.Color {
	switch s {
	case domain.SentimentPositive:
		return c.palette.Positive
	case domain.SentimentNegative:
		return c.palette.Negative
	default:
		return c.palette.Neutral
	}
}

func sentimentLabel(s domain.Sentiment) string {
	str := string(s)
	if str == "" {
		return ""
	}
	return strings.ToUpper(str[:1]) + str[1:]
}
