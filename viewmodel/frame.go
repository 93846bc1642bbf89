package viewmodel

import (
	"time"

	"github.com/jvonk/covidmap/schema"
)

// BuildFrameFigure - one export frame: the state choropleth overlaid with
// county markers, titled by the reporting date. This is the composition the
// batch exporter renders once per observed date.
func BuildFrameFigure(states, counties []schema.TimeSeriesRecord, metric schema.Metric, date time.Time) schema.Figure {
	scatter := scatterTrace(counties, metric, schema.Scope{Kind: schema.ScopeState})
	choropleth := choroplethTrace(states, metric, schema.USAScope(), nil)

	layout := MapLayout(schema.USAScope())
	layout.Title = &schema.Title{
		Text:     date.Format("2006-01-02"),
		X:        0.01,
		Y:        0.99,
		XAnchor:  "left",
		YAnchor:  "top",
		FontSize: 48,
	}

	return schema.Figure{
		Data:   []schema.Trace{scatter, choropleth},
		Layout: layout,
	}
}
