package chart

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/rxtx-hosting/playercount/pkg/series"
	"github.com/stretchr/testify/require"
)

func TestPlayerCounts_TitleAndLabels(t *testing.T) {
	samples := []series.Sample{
		{Timestamp: 1_700_000_000, Count: 5},
		{Timestamp: 1_700_000_060, Count: 12},
		{Timestamp: 1_700_000_120, Count: 3},
	}

	spec := PlayerCounts(samples, 3, 12, time.UTC)

	require.Equal(t, "Current: 3 | Peak: 12", spec.Title)
	require.Equal(t, []string{"22:13:20", "22:14:20", "22:15:20"}, spec.Labels)
	require.Equal(t, []float64{5, 12, 3}, spec.Values)
	require.Equal(t, DefaultWidth, spec.Width)
	require.Equal(t, DefaultHeight, spec.Height)
}

func TestGoChart_RendersPNG(t *testing.T) {
	var tests = []struct {
		name    string
		samples []series.Sample
	}{
		{name: "empty"},
		{name: "single point", samples: []series.Sample{{Timestamp: 1_700_000_000, Count: 4}}},
		{name: "several points", samples: []series.Sample{
			{Timestamp: 1_700_000_000, Count: 0},
			{Timestamp: 1_700_000_060, Count: 7},
			{Timestamp: 1_700_000_120, Count: 2},
		}},
	}

	r := NewGoChart()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := PlayerCounts(tt.samples, 0, series.Peak(tt.samples), time.UTC)

			out, err := r.Render(spec)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			require.Equal(t, DefaultWidth, img.Bounds().Dx())
			require.Equal(t, DefaultHeight, img.Bounds().Dy())
		})
	}
}

func TestGoChart_MismatchedLabels(t *testing.T) {
	var tests = []struct {
		name   string
		labels []string
		values []float64
	}{
		{name: "fewer labels than values", labels: []string{"a"}, values: []float64{1, 2, 3}},
		{name: "no labels with one value", values: []float64{5}},
		{name: "more labels than values", labels: []string{"a", "b", "c"}, values: []float64{1, 2}},
	}

	r := NewGoChart()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(LineChart{Title: "t", Labels: tt.labels, Values: tt.values})
			require.NoError(t, err)

			_, err = png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
		})
	}
}

func TestPadPoints(t *testing.T) {
	labels, values := padPoints([]string{"x"}, []float64{1, 2})
	require.Equal(t, []string{"x", ""}, labels)
	require.Equal(t, []float64{1, 2}, values)

	labels, values = padPoints(nil, []float64{7})
	require.Equal(t, []string{"", ""}, labels)
	require.Equal(t, []float64{7, 7}, values)
}
