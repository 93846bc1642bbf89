package dash

import (
	"fmt"
	"sync"
	"time"

	"github.com/jvonk/covidmap/consts"
	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
	"github.com/jvonk/covidmap/viewmodel"
)

// InvalidSelectionError - a control input referencing a scope, date, metric
// or chart kind with no defined meaning. The controller reports it and keeps
// the last valid selection.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: %s", e.Reason)
}

func invalidSelection(format string, args ...interface{}) error {
	return &InvalidSelectionError{Reason: fmt.Sprintf(format, args...)}
}

// input - one mutable field of the selection, plus the transient hover
// target. The derived-store dependency edges below are expressed against
// these bits.
type input int

const (
	inputDate input = 1 << iota
	inputArea
	inputMetric
	inputKinds
	inputHover
)

// SelectionUpdate - a control input event; nil fields stay unchanged
type SelectionUpdate struct {
	Date       *time.Time         `json:"date,omitempty"`
	Area       *schema.Scope      `json:"area,omitempty"`
	Metric     *schema.Metric     `json:"metric,omitempty"`
	ChartKinds []schema.ChartKind `json:"chart_kinds,omitempty"`
}

// Controller owns one session's selection and the reactive graph hanging
// off it:
//
//	Selection -> DateFilteredRecords -> MapFigure
//	          -> Geometry           ->
//	          -> LocationSeriesIndex -> TimeseriesFigure (with hover input)
//
// Control events walk the round-trip path through the query service; hover
// events walk the local path, touching only the already-materialized series
// index.
type Controller struct {
	query store.Query

	mu  sync.Mutex
	sel schema.Selection

	// derived stores
	dateFiltered []schema.TimeSeriesRecord
	geometry     *schema.GeographyAsset
	seriesIndex  map[string][]schema.SeriesPoint

	// transient hover target, not part of the selection
	hoverKey string

	// terminal views
	mapFigure        schema.Figure
	timeseriesFigure schema.Figure
}

// NewController - a controller starting from the default selection
func NewController(query store.Query) (*Controller, error) {
	dates := query.Dates()
	if len(dates) == 0 {
		return nil, fmt.Errorf("no reporting dates loaded")
	}

	c := &Controller{
		query: query,
		sel:   schema.DefaultSelection(dates[len(dates)-1]),
	}
	if err := c.evaluate(inputDate | inputArea | inputMetric | inputKinds | inputHover); err != nil {
		return nil, err
	}
	return c, nil
}

// Selection returns the current selection.
func (c *Controller) Selection() schema.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// MapFigure returns the current map view.
func (c *Controller) MapFigure() schema.Figure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapFigure
}

// TimeseriesFigure returns the current timeseries view.
func (c *Controller) TimeseriesFigure() schema.Figure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeseriesFigure
}

// Apply commits a control input event through the round-trip path. Invalid
// updates leave the selection and every view untouched.
func (c *Controller) Apply(update SelectionUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.sel
	var changed input

	if update.Date != nil {
		day := schema.Day(*update.Date)
		if !c.dateObserved(day) {
			return invalidSelection("date %s is outside the observed range", day.Format("2006-01-02"))
		}
		next.Date = day
		changed |= inputDate
	}
	if update.Area != nil {
		if err := validateScope(*update.Area); err != nil {
			return err
		}
		next.Area = *update.Area
		changed |= inputArea
	}
	if update.Metric != nil {
		next.Metric = *update.Metric
		changed |= inputMetric
	}
	if update.ChartKinds != nil {
		for _, k := range update.ChartKinds {
			if k != schema.ChartScatter && k != schema.ChartChoropleth {
				return invalidSelection("unknown chart kind %q", k)
			}
		}
		if len(update.ChartKinds) == 0 {
			return invalidSelection("at least one chart kind is required")
		}
		next.ChartKinds = update.ChartKinds
		changed |= inputKinds
	}

	if err := validateMetricScope(next.Metric, next.Area); err != nil {
		return err
	}
	if changed == 0 {
		return nil
	}

	// hover is ephemeral: it does not survive a metric or date change
	if changed&(inputMetric|inputDate|inputArea) != 0 && c.hoverKey != "" {
		c.hoverKey = ""
		changed |= inputHover
	}

	previous := c.sel
	c.sel = next
	if err := c.evaluate(changed); err != nil {
		c.sel = previous
		return err
	}
	return nil
}

// Hover retargets the timeseries crosshair through the local path: only the
// already-fetched series index is read and only the timeseries view is
// re-rendered. A newer hover simply supersedes an older one.
func (c *Controller) Hover(locationKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hoverKey = locationKey
	c.renderTimeseries()
}

// Click handles a map click. A point carrying a scope-changing customdata
// tag commits a new area scope; clicks on blank space or untagged points
// are no-ops. Returns whether the scope changed.
func (c *Controller) Click(customdata string) (bool, error) {
	if customdata == "" {
		return false, nil
	}

	var scope schema.Scope
	if customdata == viewmodel.DrillUSA {
		scope = schema.USAScope()
	} else if _, ok := consts.StateByCode(customdata); ok {
		scope = schema.StateScope(customdata)
	} else {
		return false, nil
	}

	if err := c.Apply(SelectionUpdate{Area: &scope}); err != nil {
		return false, err
	}
	return true, nil
}

// evaluate recomputes exactly the derived stores whose inputs changed, in
// dependency order, then re-renders every view depending on a changed store.
func (c *Controller) evaluate(changed input) error {
	mapDirty := false
	timeseriesDirty := false

	if changed&(inputDate|inputArea) != 0 {
		records, err := c.query.RecordsAt(c.sel.Date, c.sel.Area)
		if err != nil {
			return invalidSelection("%s", err)
		}
		c.dateFiltered = records
		mapDirty = true
	}

	if changed&(inputArea|inputKinds) != 0 {
		// boundary geometry is only consumed by choropleth traces
		if c.sel.HasChart(schema.ChartChoropleth) {
			geometry, err := c.query.Geometry(c.sel.Area)
			if err != nil {
				return invalidSelection("%s", err)
			}
			c.geometry = geometry
		} else {
			c.geometry = nil
		}
		mapDirty = true
	}

	if changed&(inputMetric|inputArea) != 0 {
		series, err := c.query.SeriesFor(c.sel.Metric, c.sel.Area)
		if err != nil {
			return invalidSelection("%s", err)
		}
		c.seriesIndex = series
		timeseriesDirty = true
	}

	if changed&(inputMetric|inputKinds) != 0 {
		mapDirty = true
	}
	if changed&(inputHover|inputDate) != 0 {
		timeseriesDirty = true
	}

	if mapDirty {
		c.mapFigure = viewmodel.BuildMapFigure(c.dateFiltered, c.sel.Metric, c.sel.ChartKinds, c.sel.Area, c.geometry)
	}
	if timeseriesDirty {
		c.renderTimeseries()
	}
	return nil
}

func (c *Controller) renderTimeseries() {
	points, ok := c.seriesIndex[c.hoverKey]
	if !ok || c.hoverKey == "" {
		// nothing hovered, or no data for the hovered location: an empty
		// figure is a valid render, not an error
		c.timeseriesFigure = schema.Figure{
			Data:   []schema.Trace{},
			Layout: viewmodel.TimeseriesLayout(nil),
		}
		return
	}
	c.timeseriesFigure = viewmodel.BuildTimeseriesFigure(points, c.hoverKey, c.sel.Date)
}

func (c *Controller) dateObserved(day time.Time) bool {
	for _, d := range c.query.Dates() {
		if d.Equal(day) {
			return true
		}
	}
	return false
}

func validateScope(scope schema.Scope) error {
	switch scope.Kind {
	case schema.ScopeWorld, schema.ScopeUSA:
		return nil
	case schema.ScopeState:
		if _, ok := consts.StateByCode(scope.StateCode); !ok {
			return invalidSelection("unknown state code %q", scope.StateCode)
		}
		return nil
	default:
		return invalidSelection("unknown scope kind %q", scope.Kind)
	}
}

func validateMetricScope(metric schema.Metric, scope schema.Scope) error {
	switch metric {
	case schema.MetricConfirmed, schema.MetricDeaths:
		return nil
	case schema.MetricRecovered:
		// the US sources never report recoveries, so the metric only has
		// meaning at world scope
		if scope.Kind != schema.ScopeWorld {
			return invalidSelection("metric %q is only available at world scope", metric)
		}
		return nil
	default:
		return invalidSelection("unknown metric %q", metric)
	}
}
