package layout

import (
	"errors"
	"testing"

	"github.com/chazu/tubeclamp/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fit = 0.4

func TestSigma(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		n      int
		want   float64
	}{
		{"empty", nil, 3, 0},
		{"first two", []float64{1, 2, 3}, 2, 3},
		{"all", []float64{1, 2, 3}, 3, 6},
		{"past the end", []float64{1, 2}, 5, 3},
		{"zero count", []float64{1, 2}, 0, 0},
		{"negative count", []float64{1, 2}, -1, 0},
		{"undefined counts as zero", []float64{1, Undefined(), 4}, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sigma(tt.values, tt.n))
		})
	}
}

func TestBorder(t *testing.T) {
	cfg := config.Default()
	// radius 8.2 + wall 2.5 + 2 * (4+8)/2
	assert.InDelta(t, 22.7, Border(16, fit, cfg), 1e-9)
	assert.InDelta(t, 6.0, ScrewClearance(cfg), 1e-9)
	assert.InDelta(t, 8.2, BoreRadius(16, fit), 1e-9)
}

func TestLayoutGaps(t *testing.T) {
	cfg := config.Default()
	diams := []float64{16, 20, 16}
	row, err := Layout(diams, []float64{25, 35}, fit, cfg)
	require.NoError(t, err)

	b := Border(16, fit, cfg)
	assert.InDeltaSlice(t, []float64{b, b + 25, b + 25 + 35}, row.Offsets, 1e-9)
	assert.InDelta(t, b+25+35+b, row.Extent, 1e-9)
	assert.Equal(t, b, row.Inner)
	assert.Equal(t, b, row.Outer)
}

func TestLayoutExtentEqualsBordersPlusSum(t *testing.T) {
	cfg := config.Default()
	cases := [][]float64{
		{30},
		{30, 40},
		{22, 22, 22, 50},
		{0, 10, 0},
	}
	for _, gaps := range cases {
		diams := make([]float64, len(gaps)+1)
		for i := range diams {
			diams[i] = 12 + float64(i)*4
		}
		row, err := Layout(diams, gaps, fit, cfg)
		require.NoError(t, err)
		want := Border(diams[0], fit, cfg) + Sigma(gaps, len(gaps)) + Border(diams[len(diams)-1], fit, cfg)
		assert.InDelta(t, want, row.Extent, 1e-9, "gaps %v", gaps)
	}
}

func TestLayoutOffsetsMonotonic(t *testing.T) {
	cfg := config.Default()
	row, err := Layout([]float64{10, 10, 10, 10, 10}, []float64{12, 0, 30, 0.5}, fit, cfg)
	require.NoError(t, err)
	for i := 1; i < len(row.Offsets); i++ {
		assert.GreaterOrEqual(t, row.Offsets[i], row.Offsets[i-1])
	}
}

func TestLayoutAbsoluteFirstOffset(t *testing.T) {
	cfg := config.Default()
	row, err := Layout([]float64{16, 16}, []float64{40, 30}, fit, cfg)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{40, 70}, row.Offsets, 1e-9)
	assert.InDelta(t, 70+Border(16, fit, cfg), row.Extent, 1e-9)
}

func TestLayoutSingleTube(t *testing.T) {
	cfg := config.Default()
	row, err := Layout([]float64{16}, nil, fit, cfg)
	require.NoError(t, err)
	b := Border(16, fit, cfg)
	assert.Equal(t, []float64{b}, row.Offsets)
	assert.InDelta(t, 2*b, row.Extent, 1e-9)
}

func TestLayoutErrors(t *testing.T) {
	cfg := config.Default()

	_, err := Layout(nil, nil, fit, cfg)
	assert.ErrorIs(t, err, ErrNoTubes)

	_, err = Layout([]float64{16, 16, 16}, []float64{1}, fit, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpacingLength))
	assert.Contains(t, err.Error(), "3 tubes, 1 spacings")

	_, err = Layout([]float64{16}, []float64{1, 2, 3}, fit, cfg)
	assert.ErrorIs(t, err, ErrSpacingLength)
}

func TestLayoutUndefinedGap(t *testing.T) {
	cfg := config.Default()
	row, err := Layout([]float64{16, 16, 16}, []float64{Undefined(), 30}, fit, cfg)
	require.NoError(t, err)
	assert.Equal(t, row.Offsets[0], row.Offsets[1])
	assert.InDelta(t, row.Offsets[0]+30, row.Offsets[2], 1e-9)
}

func TestMinBorder(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 0.0, MinBorder(nil, fit, cfg))
	assert.Equal(t, Border(12, fit, cfg), MinBorder([]float64{20, 12, 16}, fit, cfg))
}

func TestCrowded(t *testing.T) {
	diams := []float64{16, 16, 16, 16}
	offsets := []float64{0, 10, 10, 40}
	// 0→1 is 10mm apart but needs 16.4: crowded. 1→2 coincide: merge. 2→3 fine.
	assert.Equal(t, []int{0}, Crowded(diams, offsets, fit))
	assert.Empty(t, Crowded([]float64{16}, []float64{0}, fit))
}

func TestSpacingResolve(t *testing.T) {
	tests := []struct {
		name    string
		spacing Spacing
		n       int
		want    []float64
	}{
		{"scalar broadcast", Scalar(25), 4, []float64{25, 25, 25}},
		{"scalar single tube", Scalar(25), 1, nil},
		{"list copied", List(10, 20), 3, []float64{10, 20}},
		{"zero value", Spacing{}, 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spacing.Resolve(tt.n))
		})
	}

	l := List(1, 2)
	got := l.Resolve(3)
	got[0] = 99
	assert.Equal(t, []float64{1, 2}, l.Resolve(3), "Resolve must not alias the stored list")
	assert.True(t, Scalar(1).IsScalar())
	assert.False(t, l.IsScalar())
	assert.Equal(t, 2, l.Len())
}

func TestScrewRow(t *testing.T) {
	// span - clearance < head  =>  one centered screw
	assert.Equal(t, []float64{10}, ScrewRow(20, 12.5, 8))
	// exactly head diameter left => two screws
	assert.Equal(t, []float64{6, 14}, ScrewRow(20, 12, 8))
}

func TestScrewCount(t *testing.T) {
	cfg := config.Default()
	c := ScrewClearance(cfg)
	for span := 1.0; span < 60; span += 0.5 {
		got := len(ScrewPositions(80, span, cfg))
		want := 4
		if span-2*c < cfg.ScrewHeadDiameter {
			want = 2
		}
		assert.Equal(t, want, got, "span %.1f", span)
	}
}

func TestScrewPositionsSymmetric(t *testing.T) {
	cfg := config.Default()
	for _, dy := range []float64{10, 20, 45} {
		dx := 90.0
		pts := ScrewPositions(dx, dy, cfg)
		var sx, sy float64
		for _, p := range pts {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(pts))
		assert.InDelta(t, dx/2, sx/n, 1e-9)
		assert.InDelta(t, dy/2, sy/n, 1e-9)
	}
}
