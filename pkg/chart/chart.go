// Package chart turns the player-count series into a PNG line chart.
package chart

import (
	"bytes"
	"fmt"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rxtx-hosting/playercount/pkg/series"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 400
	SeriesName    = "Monke Count"
	LabelLayout   = "15:04:05"
)

var (
	lineColor = drawing.Color{R: 255, G: 165, B: 0, A: 255}
	fillColor = drawing.Color{R: 255, G: 165, B: 0, A: 51}
)

// LineChart is a declarative description of a single-series category line chart.
type LineChart struct {
	Title  string
	Name   string
	Labels []string
	Values []float64
	Width  int
	Height int
}

type Renderer interface {
	Render(spec LineChart) ([]byte, error)
}

// PlayerCounts builds the chart for samples with the "Current | Peak" title.
func PlayerCounts(samples []series.Sample, current, peak int, loc *time.Location) LineChart {
	if loc == nil {
		loc = time.Local
	}
	labels := make([]string, 0, len(samples))
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		labels = append(labels, s.Time().In(loc).Format(LabelLayout))
		values = append(values, float64(s.Count))
	}

	return LineChart{
		Title:  fmt.Sprintf("Current: %d | Peak: %d", current, peak),
		Name:   SeriesName,
		Labels: labels,
		Values: values,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

type GoChart struct{}

func NewGoChart() *GoChart {
	return &GoChart{}
}

func (g *GoChart) Render(spec LineChart) ([]byte, error) {
	labels, values := padPoints(spec.Labels, spec.Values)

	xs := make([]float64, len(values))
	ticks := make([]gochart.Tick, len(values))
	maxValue := 1.0
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: labels[i]}
		maxValue = math.Max(maxValue, values[i])
	}

	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		TitleStyle: gochart.Style{FontSize: 18},
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(len(values) - 1)},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: math.Ceil(maxValue * 1.1)},
			ValueFormatter: gochart.IntValueFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name: spec.Name,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					FillColor:   fillColor,
				},
				XValues: xs,
				YValues: values,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// padPoints gives every value a label and guarantees at least two points;
// go-chart cannot draw a zero-width range.
func padPoints(labels []string, values []float64) ([]string, []float64) {
	aligned := make([]string, len(values))
	copy(aligned, labels)
	labels = aligned

	switch len(values) {
	case 0:
		return []string{"", ""}, []float64{0, 0}
	case 1:
		return []string{labels[0], ""}, []float64{values[0], values[0]}
	default:
		return labels, values
	}
}
