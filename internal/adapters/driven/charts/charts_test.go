package charts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskpilot/internal/core/domain"
)

func volumePoints(counts ...int) []domain.VolumePoint {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.VolumePoint, len(counts))
	for i, n := range counts {
		points[i] = domain.VolumePoint{Date: start.AddDate(0, 0, i), Count: n}
	}
	return points
}

func TestSurface_SingleOwner(t *testing.T) {
	surface := NewSurface("volume")
	chart := NewVolumeChart(surface, DefaultPalette())

	first, err := chart.Build(volumePoints(1, 2))
	require.NoError(t, err)
	assert.True(t, surface.Occupied())

	second, err := chart.Build(volumePoints(3))
	assert.ErrorIs(t, err, domain.ErrSurfaceBusy)
	assert.Nil(t, second)

	require.NoError(t, first.Destroy())
	assert.False(t, surface.Occupied())

	third, err := chart.Build(volumePoints(3))
	require.NoError(t, err)
	assert.True(t, surface.Occupied())
	require.NoError(t, third.Destroy())
}

func TestHandle_DestroyIsIdempotent(t *testing.T) {
	surface := NewSurface("sentiment")
	chart := NewSentimentChart(surface, DefaultPalette())
	h, err := chart.Build([]domain.SentimentCount{{Sentiment: domain.SentimentPositive, Count: 1}})
	require.NoError(t, err)

	require.NoError(t, h.Destroy())
	next, err := chart.Build([]domain.SentimentCount{})
	require.NoError(t, err)

	// A stale destroy must not free the surface held by the new handle.
	require.NoError(t, h.Destroy())
	assert.True(t, surface.Occupied())
	assert.Empty(t, h.View(40, 5))
	require.NoError(t, next.Destroy())
}

func TestBuild_WrongDataReturnsPartialHandle(t *testing.T) {
	surface := NewSurface("volume")
	chart := NewVolumeChart(surface, DefaultPalette())

	h, err := chart.Build("not a series")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NotNil(t, h)
	assert.True(t, surface.Occupied())
	assert.Empty(t, h.View(40, 5))

	require.NoError(t, h.Destroy())
	assert.False(t, surface.Occupied())
}

func TestVolumeChart_View(t *testing.T) {
	surface := NewSurface("volume")
	h, err := NewVolumeChart(surface, DefaultPalette()).Build(volumePoints(0, 4, 8, 2))
	require.NoError(t, err)
	defer h.Destroy()

	out := h.View(40, 5)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "8 "), lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "0 "), lines[3])
	assert.Contains(t, lines[4], "May 1")
	assert.Contains(t, lines[4], "May 4")
	assert.Contains(t, lines[0], "█")
	assert.Empty(t, h.View(0, 5))
}

func TestVolumeChart_Empty(t *testing.T) {
	h, err := NewVolumeChart(NewSurface("volume"), DefaultPalette()).Build([]domain.VolumePoint{})
	require.NoError(t, err)
	defer h.Destroy()

	assert.Equal(t, "No emails in this period", h.View(40, 5))
}

func TestVolumeChart_KeepsLatestPointsWhenNarrow(t *testing.T) {
	h, err := NewVolumeChart(NewSurface("volume"), DefaultPalette()).Build(volumePoints(1, 1, 1, 1, 1, 1, 1, 1, 1, 1))
	require.NoError(t, err)
	defer h.Destroy()

	out := h.View(6, 3)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "May 7")
}

func TestColumn(t *testing.T) {
	tests := []struct {
		name                   string
		count, peak, rows, row int
		want                   rune
	}{
		{"peak fills every row", 4, 4, 2, 2, '█'},
		{"half fills bottom row", 2, 4, 2, 1, '█'},
		{"half leaves top row", 2, 4, 2, 2, ' '},
		{"small count shows a sliver", 1, 100, 1, 1, '▁'},
		{"zero is blank", 0, 4, 2, 1, ' '},
		{"zero peak is blank", 0, 0, 2, 1, ' '},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), string(column(tt.count, tt.peak, tt.rows, tt.row)))
		})
	}
}

func TestSentimentChart_View(t *testing.T) {
	h, err := NewSentimentChart(NewSurface("sentiment"), DefaultPalette()).Build([]domain.SentimentCount{
		{Sentiment: domain.SentimentNegative, Count: 1},
		{Sentiment: domain.SentimentPositive, Count: 3},
	})
	require.NoError(t, err)
	defer h.Destroy()

	lines := strings.Split(h.View(40, 10), "\n")

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Positive"))
	assert.Contains(t, lines[0], "75% (3)")
	assert.True(t, strings.HasPrefix(lines[1], "Neutral"))
	assert.Contains(t, lines[1], "0% (0)")
	assert.True(t, strings.HasPrefix(lines[2], "Negative"))
	assert.Contains(t, lines[2], "25% (1)")
	assert.Greater(t, strings.Count(lines[0], "█"), strings.Count(lines[2], "█"))
}

func TestSentimentChart_Empty(t *testing.T) {
	h, err := NewSentimentChart(NewSurface("sentiment"), DefaultPalette()).Build([]domain.SentimentCount{})
	require.NoError(t, err)
	defer h.Destroy()

	assert.Equal(t, "No sentiment data", h.View(40, 5))
}

func TestSentimentChart_ClipsToHeight(t *testing.T) {
	h, err := NewSentimentChart(NewSurface("sentiment"), DefaultPalette()).Build([]domain.SentimentCount{
		{Sentiment: domain.SentimentNeutral, Count: 2},
	})
	require.NoError(t, err)
	defer h.Destroy()

	assert.Len(t, strings.Split(h.View(40, 2), "\n"), 2)
}
