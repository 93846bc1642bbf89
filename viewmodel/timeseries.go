package viewmodel

import (
	"time"

	"github.com/jvonk/covidmap/schema"
)

const dateLayout = "2006-01-02"

// BuildTimeseriesTrace - the full metric history of one location as a line
// trace, x chronological, y cumulative values.
func BuildTimeseriesTrace(points []schema.SeriesPoint, name string) schema.Trace {
	trace := schema.Trace{
		Type: "scatter",
		Mode: "lines+markers",
	}
	for _, p := range points {
		trace.X = append(trace.X, p.Date.Format(dateLayout))
		trace.Y = append(trace.Y, p.Value)
		trace.Text = append(trace.Text, name)
	}
	return trace
}

// CrosshairShapes overlays a vertical line at the highlighted date and a
// horizontal line at that date's value. No shapes when the location never
// reported on the highlighted date.
func CrosshairShapes(points []schema.SeriesPoint, highlight time.Time) []schema.Shape {
	day := schema.Day(highlight)

	var maxValue int64
	var hit *schema.SeriesPoint
	for i, p := range points {
		if p.Value > maxValue {
			maxValue = p.Value
		}
		if p.Date.Equal(day) {
			hit = &points[i]
		}
	}
	if hit == nil {
		return nil
	}

	date := day.Format(dateLayout)
	first := points[0].Date.Format(dateLayout)
	last := points[len(points)-1].Date.Format(dateLayout)
	line := schema.Line{Color: "rgb(80,80,80)", Width: 1, Dash: "dot"}

	return []schema.Shape{
		{Type: "line", X0: date, X1: date, Y0: 0, Y1: float64(maxValue), Line: line},
		{Type: "line", X0: first, X1: last, Y0: float64(hit.Value), Y1: float64(hit.Value), Line: line},
	}
}

// TimeseriesLayout - layout of the linked timeseries figure with crosshair
// shapes for the highlighted date.
func TimeseriesLayout(shapes []schema.Shape) schema.Layout {
	return schema.Layout{
		Margin:     &schema.Margin{L: 40, R: 10, T: 10, B: 40},
		UIRevision: true,
		Hovermode:  "closest",
		Shapes:     shapes,
	}
}

// BuildTimeseriesFigure - one location's history with the crosshair at the
// highlighted date
func BuildTimeseriesFigure(points []schema.SeriesPoint, name string, highlight time.Time) schema.Figure {
	return schema.Figure{
		Data:   []schema.Trace{BuildTimeseriesTrace(points, name)},
		Layout: TimeseriesLayout(CrosshairShapes(points, highlight)),
	}
}
