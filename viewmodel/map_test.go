package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jvonk/covidmap/schema"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func worldRecords() []schema.TimeSeriesRecord {
	return []schema.TimeSeriesRecord{
		{LocationKey: "CAN", Name: "Canada", Lat: 56.1, Long: -106.3, Date: day(2020, 3, 1), Population: 10000000,
			Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 1000},
			Rates:   map[schema.Metric]int64{schema.MetricConfirmed: 10000}},
		{LocationKey: "USA", Name: "US", Lat: 40.0, Long: -100.0, Date: day(2020, 3, 1), Population: 100000000,
			Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 50000},
			Rates:   map[schema.Metric]int64{schema.MetricConfirmed: 50000}},
	}
}

func stateRecords() []schema.TimeSeriesRecord {
	return []schema.TimeSeriesRecord{
		{LocationKey: "California", Name: "California", Abbreviation: "CA", NumericCode: "06", Lat: 36.1, Long: -119.6,
			Date: day(2020, 3, 1), Population: 39500000,
			Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 3000},
			Rates:   map[schema.Metric]int64{schema.MetricConfirmed: 7594}},
	}
}

func bothKinds() []schema.ChartKind {
	return []schema.ChartKind{schema.ChartScatter, schema.ChartChoropleth}
}

func TestBuildMapTracesWorld(t *testing.T) {
	traces := BuildMapTraces(worldRecords(), schema.MetricConfirmed, bothKinds(), schema.WorldScope(), nil)
	assert.Len(t, traces, 2)

	scatter := traces[0]
	assert.Equal(t, "scattergeo", scatter.Type)
	assert.Equal(t, []float64{1000.0 / WorldMarkerDivisor, 50000.0 / WorldMarkerDivisor}, scatter.Marker.Size)
	// only the USA bubble carries a drill tag at world scope
	assert.Equal(t, []string{"", DrillUSA}, scatter.Customdata)

	choropleth := traces[1]
	assert.Equal(t, "choropleth", choropleth.Type)
	assert.Equal(t, "ISO-3", choropleth.LocationMode)
	assert.Equal(t, []string{"CAN", "USA"}, choropleth.Locations)
	assert.Equal(t, []int64{10000, 50000}, choropleth.Z)
	assert.Equal(t, int64(0), *choropleth.ZMin)
	assert.Equal(t, int64(RateDomainMax), *choropleth.ZMax)
	assert.Len(t, choropleth.Colorscale, 10)
}

func TestBuildMapTracesUSA(t *testing.T) {
	traces := BuildMapTraces(stateRecords(), schema.MetricConfirmed, bothKinds(), schema.USAScope(), nil)

	scatter := traces[0]
	assert.Equal(t, []float64{3000.0 / StateMarkerDivisor}, scatter.Marker.Size)
	assert.Equal(t, []string{"06"}, scatter.Customdata, "state bubbles drill into the state")

	choropleth := traces[1]
	assert.Equal(t, "USA-states", choropleth.LocationMode)
	assert.Equal(t, []string{"CA"}, choropleth.Locations)
}

func TestChoroplethClampsRates(t *testing.T) {
	records := stateRecords()
	records[0].Rates[schema.MetricConfirmed] = 5000000

	traces := BuildMapTraces(records, schema.MetricConfirmed, []schema.ChartKind{schema.ChartChoropleth}, schema.USAScope(), nil)
	assert.Equal(t, []int64{RateDomainMax}, traces[0].Z)
}

func TestBuildMapTracesIdempotent(t *testing.T) {
	records := worldRecords()
	first := BuildMapTraces(records, schema.MetricConfirmed, bothKinds(), schema.WorldScope(), nil)
	second := BuildMapTraces(records, schema.MetricConfirmed, bothKinds(), schema.WorldScope(), nil)
	assert.Equal(t, first, second)
}

func TestBuildMapTracesSkipsUnreportedMetric(t *testing.T) {
	records := worldRecords()
	delete(records[0].Metrics, schema.MetricConfirmed)

	traces := BuildMapTraces(records, schema.MetricConfirmed, []schema.ChartKind{schema.ChartScatter}, schema.WorldScope(), nil)
	assert.Len(t, traces[0].Lat, 1)
	assert.Equal(t, []string{"US"}, traces[0].Text)
}

func TestCountyChoroplethCarriesGeometry(t *testing.T) {
	geometry := &schema.GeographyAsset{
		Type:     "FeatureCollection",
		Features: []schema.GeoFeature{{Type: "Feature", ID: "06037"}},
	}
	counties := []schema.TimeSeriesRecord{
		{LocationKey: "06037", Name: "Los Angeles", NumericCode: "06", Date: day(2020, 3, 1), Population: 10000000,
			Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 500},
			Rates:   map[schema.Metric]int64{schema.MetricConfirmed: 5000}},
	}

	traces := BuildMapTraces(counties, schema.MetricConfirmed, []schema.ChartKind{schema.ChartChoropleth}, schema.StateScope("06"), geometry)
	assert.Equal(t, []string{"06037"}, traces[0].Locations)
	assert.Equal(t, geometry, traces[0].GeoJSON)
	assert.Empty(t, traces[0].Customdata[0], "county cells do not drill further")
}
