package schema

import (
	"time"
)

type Metric string

const (
	MetricConfirmed Metric = "confirmed"
	MetricDeaths    Metric = "deaths"
	MetricRecovered Metric = "recovered"
)

// Metrics - every metric the CSSE time series report, in display order
var Metrics = []Metric{MetricConfirmed, MetricDeaths, MetricRecovered}

// RatePopulationBase - rates are reported per 100 million population
const RatePopulationBase = 100000000

// TimeSeriesRecord - one observation of one location on one reporting date.
// LocationKey is an ISO-3 country code for global records, a zero-padded
// 5-digit FIPS code for US county records and a state name for state rollups.
type TimeSeriesRecord struct {
	LocationKey  string           `json:"location_key" bson:"location_key"`
	Name         string           `json:"name" bson:"name"`
	StateName    string           `json:"state_name,omitempty" bson:"state_name,omitempty"`
	Abbreviation string           `json:"abbreviation,omitempty" bson:"abbreviation,omitempty"`
	NumericCode  string           `json:"numeric_code,omitempty" bson:"numeric_code,omitempty"`
	Lat          float64          `json:"lat,omitempty" bson:"lat,omitempty"`
	Long         float64          `json:"long,omitempty" bson:"long,omitempty"`
	Date         time.Time        `json:"date" bson:"date"`
	DayIndex     int              `json:"day_index" bson:"day_index"`
	Population   int64            `json:"population" bson:"population"`
	Metrics      map[Metric]int64 `json:"metrics" bson:"metrics"`
	Rates        map[Metric]int64 `json:"rates" bson:"rates"`
}

// Value returns the cumulative count of a metric and whether the source
// reported it for this record at all.
func (r TimeSeriesRecord) Value(m Metric) (int64, bool) {
	v, ok := r.Metrics[m]
	return v, ok
}

// Rate returns the per-100M rate of a metric, zero if unreported.
func (r TimeSeriesRecord) Rate(m Metric) int64 {
	return r.Rates[m]
}

// DeriveRate computes the integer-floored per-100M rate of a cumulative
// count. Callers must not pass a zero population; records without population
// are dropped by the pipeline before rates are derived.
func DeriveRate(value, population int64) int64 {
	return value * RatePopulationBase / population
}

// SeriesPoint - one (date, value) sample of a location's metric history
type SeriesPoint struct {
	Date     time.Time `json:"date"`
	DayIndex int       `json:"day_index"`
	Value    int64     `json:"value"`
}

// Day truncates a timestamp to its calendar date in UTC. Day arithmetic in
// the pipeline always goes through calendar dates so day indices stay stable
// across DST boundaries.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}
