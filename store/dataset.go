package store

import (
	"time"

	"github.com/jvonk/covidmap/pipeline"
	"github.com/jvonk/covidmap/schema"
)

// DataSet - every table the dashboard serves, built once at process start
// and read-only afterwards. Concurrent readers need no synchronization.
type DataSet struct {
	Global   []schema.TimeSeriesRecord
	Counties []schema.TimeSeriesRecord
	States   []schema.TimeSeriesRecord
	Geometry *schema.GeographyAsset

	dates []time.Time
}

// NewDataSet assembles the immutable dataset from pipeline output and the
// county boundary asset.
func NewDataSet(result *pipeline.Result, geometry *schema.GeographyAsset) *DataSet {
	all := make([]schema.TimeSeriesRecord, 0, len(result.Global)+len(result.Counties))
	all = append(all, result.Global...)
	all = append(all, result.Counties...)

	return &DataSet{
		Global:   result.Global,
		Counties: result.Counties,
		States:   result.States,
		Geometry: geometry,
		dates:    pipeline.DateRange(all),
	}
}

// Dates returns every observed reporting date in ascending order.
func (ds *DataSet) Dates() []time.Time {
	return ds.dates
}

// LatestDate returns the last reporting date, zero time if the dataset is
// empty.
func (ds *DataSet) LatestDate() time.Time {
	if len(ds.dates) == 0 {
		return time.Time{}
	}
	return ds.dates[len(ds.dates)-1]
}
