package viewmodel

import (
	"github.com/jvonk/covidmap/schema"
)

// Marker divisors are display-tuning constants, one per scope so bubble
// sizes stay legible at each zoom level.
const (
	WorldMarkerDivisor  = 500.0
	StateMarkerDivisor  = 15.0
	CountyMarkerDivisor = 100.0
)

// DrillUSA - customdata tag on the world-scope USA bubble; clicking it
// drills into the USA-by-state view. Other countries carry no tag.
const DrillUSA = "USA"

func markerDivisor(scope schema.Scope) float64 {
	switch scope.Kind {
	case schema.ScopeWorld:
		return WorldMarkerDivisor
	case schema.ScopeUSA:
		return StateMarkerDivisor
	default:
		return CountyMarkerDivisor
	}
}

// drillTag returns the customdata value identifying what a click on this
// record should drill into, empty when a click is a no-op.
func drillTag(r schema.TimeSeriesRecord, scope schema.Scope) string {
	switch scope.Kind {
	case schema.ScopeWorld:
		if r.LocationKey == "USA" {
			return DrillUSA
		}
		return ""
	case schema.ScopeUSA:
		return r.NumericCode
	default:
		return ""
	}
}

// BuildMapTraces turns a date-filtered record set into map trace
// descriptions. Pure: identical inputs always produce identical traces.
// geometry is the county boundary subset and is only consulted for
// single-state choropleths.
func BuildMapTraces(records []schema.TimeSeriesRecord, metric schema.Metric, kinds []schema.ChartKind, scope schema.Scope, geometry *schema.GeographyAsset) []schema.Trace {
	traces := make([]schema.Trace, 0, len(kinds))
	for _, kind := range kinds {
		switch kind {
		case schema.ChartScatter:
			traces = append(traces, scatterTrace(records, metric, scope))
		case schema.ChartChoropleth:
			traces = append(traces, choroplethTrace(records, metric, scope, geometry))
		}
	}
	return traces
}

func scatterTrace(records []schema.TimeSeriesRecord, metric schema.Metric, scope schema.Scope) schema.Trace {
	divisor := markerDivisor(scope)
	trace := schema.Trace{
		Type: "scattergeo",
		Marker: &schema.Marker{
			Opacity:  0.6,
			SizeMode: "area",
			Color:    "rgb(0,0,0)",
		},
	}

	for _, r := range records {
		value, ok := r.Value(metric)
		if !ok {
			continue
		}
		trace.Lat = append(trace.Lat, r.Lat)
		trace.Lon = append(trace.Lon, r.Long)
		trace.Text = append(trace.Text, r.Name)
		trace.Customdata = append(trace.Customdata, drillTag(r, scope))
		trace.Marker.Size = append(trace.Marker.Size, float64(value)/divisor)
	}
	return trace
}

func choroplethTrace(records []schema.TimeSeriesRecord, metric schema.Metric, scope schema.Scope, geometry *schema.GeographyAsset) schema.Trace {
	zmin := int64(0)
	zmax := int64(RateDomainMax)
	showScale := false

	trace := schema.Trace{
		Type:       "choropleth",
		ZMin:       &zmin,
		ZMax:       &zmax,
		Colorscale: RateColorscale(),
		ShowScale:  &showScale,
	}

	switch scope.Kind {
	case schema.ScopeWorld:
		trace.LocationMode = "ISO-3"
	case schema.ScopeUSA:
		trace.LocationMode = "USA-states"
	case schema.ScopeState:
		if geometry != nil {
			trace.GeoJSON = geometry
		}
	}

	for _, r := range records {
		if _, ok := r.Value(metric); !ok {
			continue
		}
		trace.Locations = append(trace.Locations, choroplethLocation(r, scope))
		trace.Text = append(trace.Text, r.Name)
		trace.Customdata = append(trace.Customdata, drillTag(r, scope))
		trace.Z = append(trace.Z, ClampRate(r.Rate(metric)))
	}
	return trace
}

func choroplethLocation(r schema.TimeSeriesRecord, scope schema.Scope) string {
	switch scope.Kind {
	case schema.ScopeWorld:
		return r.LocationKey
	case schema.ScopeUSA:
		return r.Abbreviation
	default:
		return r.LocationKey
	}
}

// MapLayout - the shared geo layout of every map figure
func MapLayout(scope schema.Scope) schema.Layout {
	geoScope := "world"
	if scope.Kind != schema.ScopeWorld {
		geoScope = "usa"
	}

	return schema.Layout{
		PaperBGColor: "rgba(0,0,0,0)",
		PlotBGColor:  "rgba(0,0,0,0)",
		Margin:       &schema.Margin{},
		UIRevision:   true,
		Hovermode:    "closest",
		Geo: &schema.GeoLayout{
			UIRevision:     true,
			ShowLand:       true,
			LandColor:      "#dddddd",
			ShowCountries:  true,
			Scope:          geoScope,
			ShowFrame:      false,
			ShowCoastlines: true,
		},
	}
}

// BuildMapFigure - the full map figure for one date and selection
func BuildMapFigure(records []schema.TimeSeriesRecord, metric schema.Metric, kinds []schema.ChartKind, scope schema.Scope, geometry *schema.GeographyAsset) schema.Figure {
	return schema.Figure{
		Data:   BuildMapTraces(records, metric, kinds, scope, geometry),
		Layout: MapLayout(scope),
	}
}
