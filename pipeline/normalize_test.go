package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/schema"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toyLookup() *LocationMetadata {
	table := jhu.NewRawTable(
		[]string{"UID", "iso2", "iso3", "code3", "FIPS", "Admin2", "Province_State", "Country_Region", "Population"},
		[][]string{
			{"840", "US", "USA", "840", "", "", "", "US", "100000000"},
			{"124", "CA", "CAN", "124", "", "", "", "Canada", "10000000"},
			{"12401", "CA", "CAN", "124", "", "", "Ontario", "Canada", "6000000"},
			{"84006037", "US", "USA", "840", "6037", "Los Angeles", "California", "US", "10000000"},
			{"84006059", "US", "USA", "840", "6059", "Orange", "California", "US", "3000000"},
			{"84036061", "US", "USA", "840", "36061", "New York", "New York", "US", "1600000"},
		},
	)
	return BuildLocationMetadata(table)
}

func toyGlobalConfirmed() *jhu.RawTable {
	return jhu.NewRawTable(
		[]string{"Province/State", "Country/Region", "Lat", "Long", "1/22/20", "1/23/20"},
		[][]string{
			{"", "US", "40.0", "-100.0", "100", "150"},
			{"", "Canada", "56.1", "-106.3", "10", "12"},
			{"", "Atlantis", "0.0", "0.0", "7", "8"},
		},
	)
}

func TestNormalizeGlobal(t *testing.T) {
	meta := toyLookup()
	records := NormalizeGlobal(toyGlobalConfirmed(), schema.MetricConfirmed, meta)

	// Atlantis has no lookup entry, so only two countries and two days each
	assert.Len(t, records, 4)
	assert.Equal(t, "CAN", records[0].LocationKey)
	assert.Equal(t, "USA", records[2].LocationKey)

	v, ok := records[2].Value(schema.MetricConfirmed)
	assert.True(t, ok)
	assert.Equal(t, int64(100), v)
	assert.Equal(t, day(2020, 1, 22), records[2].Date)
	assert.Equal(t, int64(100000000), records[2].Population)
}

func TestNormalizeGlobalSumsDuplicateKeys(t *testing.T) {
	meta := toyLookup()
	table := jhu.NewRawTable(
		[]string{"Province/State", "Country/Region", "Lat", "Long", "1/22/20"},
		[][]string{
			{"", "Canada", "56.1", "-106.3", "10"},
			{"Ontario", "Canada", "51.2", "-85.3", "5"},
		},
	)

	records := NormalizeGlobal(table, schema.MetricConfirmed, meta)
	assert.Len(t, records, 1)

	v, _ := records[0].Value(schema.MetricConfirmed)
	assert.Equal(t, int64(15), v)
	// populations of merged rows sum as well
	assert.Equal(t, int64(16000000), records[0].Population)
}

func TestNormalizeGlobalDerivedRates(t *testing.T) {
	meta := toyLookup()
	records := Finalize(MergeMetrics(NormalizeGlobal(toyGlobalConfirmed(), schema.MetricConfirmed, meta)))

	byKeyDay := make(map[string]schema.TimeSeriesRecord)
	for _, r := range records {
		byKeyDay[r.LocationKey+"/"+r.Date.Format("2006-01-02")] = r
	}

	// floor(100/100000000*1e8) == floor(10/10000000*1e8) == 100
	assert.Equal(t, int64(100), byKeyDay["USA/2020-01-22"].Rate(schema.MetricConfirmed))
	assert.Equal(t, int64(100), byKeyDay["CAN/2020-01-22"].Rate(schema.MetricConfirmed))
	assert.Equal(t, int64(150), byKeyDay["USA/2020-01-23"].Rate(schema.MetricConfirmed))
	assert.Equal(t, int64(120), byKeyDay["CAN/2020-01-23"].Rate(schema.MetricConfirmed))

	for _, r := range records {
		for _, m := range schema.Metrics {
			assert.True(t, r.Rate(m) >= 0)
		}
	}
}

func TestNormalizeUS(t *testing.T) {
	meta := toyLookup()
	table := jhu.NewRawTable(
		[]string{"UID", "iso2", "iso3", "code3", "FIPS", "Admin2", "Province_State", "Country_Region", "Lat", "Long_", "1/22/20", "1/23/20"},
		[][]string{
			{"84006037", "US", "USA", "840", "6037.0", "Los Angeles", "California", "US", "34.3", "-118.2", "50", "80"},
			{"84006059", "US", "USA", "840", "6059", "Orange", "California", "US", "33.7", "-117.8", "20", "30"},
			{"84090001", "US", "USA", "840", "", "Unassigned", "California", "US", "0", "0", "9", "9"},
		},
	)

	records := NormalizeUS(table, schema.MetricConfirmed, meta)
	assert.Len(t, records, 4)

	assert.Equal(t, "06037", records[0].LocationKey)
	assert.Equal(t, "Los Angeles", records[0].Name)
	assert.Equal(t, "California", records[0].StateName)
	assert.Equal(t, "06", records[0].NumericCode)
	assert.Equal(t, int64(10000000), records[0].Population)
	assert.Equal(t, 34.3, records[0].Lat)
}

func TestChronologicalOrderNoDuplicates(t *testing.T) {
	meta := toyLookup()
	records := Finalize(MergeMetrics(NormalizeGlobal(toyGlobalConfirmed(), schema.MetricConfirmed, meta)))

	seen := make(map[string]bool)
	for i, r := range records {
		key := r.LocationKey + r.Date.Format("2006-01-02")
		assert.False(t, seen[key], "duplicate (location, date) pair")
		seen[key] = true
		if i > 0 && records[i-1].LocationKey == r.LocationKey {
			assert.True(t, records[i-1].Date.Before(r.Date), "dates must strictly increase per location")
		}
	}
}

func TestMergeMetricsOuterJoin(t *testing.T) {
	confirmed := []schema.TimeSeriesRecord{
		{LocationKey: "USA", Name: "US", Date: day(2020, 1, 22), Population: 100, Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 5}},
	}
	deaths := []schema.TimeSeriesRecord{
		{LocationKey: "USA", Name: "US", Date: day(2020, 1, 22), Population: 100, Metrics: map[schema.Metric]int64{schema.MetricDeaths: 1}},
		{LocationKey: "CAN", Name: "Canada", Date: day(2020, 1, 22), Population: 50, Metrics: map[schema.Metric]int64{schema.MetricDeaths: 2}},
	}

	merged := MergeMetrics(confirmed, deaths)
	assert.Len(t, merged, 2)

	assert.Equal(t, "CAN", merged[0].LocationKey)
	_, hasConfirmed := merged[0].Value(schema.MetricConfirmed)
	assert.False(t, hasConfirmed, "CAN never reported confirmed")
	v, _ := merged[0].Value(schema.MetricDeaths)
	assert.Equal(t, int64(2), v)

	usa := merged[1]
	v, _ = usa.Value(schema.MetricConfirmed)
	assert.Equal(t, int64(5), v)
	v, _ = usa.Value(schema.MetricDeaths)
	assert.Equal(t, int64(1), v)
}

func TestFinalizeDropsMissingPopulation(t *testing.T) {
	records := Finalize([]schema.TimeSeriesRecord{
		{LocationKey: "XYZ", Date: day(2020, 1, 22), Population: 0, Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 5}},
		{LocationKey: "USA", Date: day(2020, 1, 24), Population: 100, Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 5}},
		{LocationKey: "USA", Date: day(2020, 1, 22), Population: 100, Metrics: map[schema.Metric]int64{schema.MetricConfirmed: 2}},
	})

	assert.Len(t, records, 2)
	assert.Equal(t, day(2020, 1, 22), records[0].Date)
	assert.Equal(t, 0, records[0].DayIndex)
	assert.Equal(t, 2, records[1].DayIndex)
}

func TestDateRange(t *testing.T) {
	records := []schema.TimeSeriesRecord{
		{LocationKey: "B", Date: day(2020, 1, 23)},
		{LocationKey: "A", Date: day(2020, 1, 22)},
		{LocationKey: "A", Date: day(2020, 1, 23)},
	}
	dates := DateRange(records)
	assert.Equal(t, []time.Time{day(2020, 1, 22), day(2020, 1, 23)}, dates)
}
