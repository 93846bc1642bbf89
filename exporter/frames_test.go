package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jvonk/covidmap/pipeline"
	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toyDataSet() *store.DataSet {
	record := func(key, state, code, abbr string, date time.Time, confirmed int64, lat, long float64) schema.TimeSeriesRecord {
		return schema.TimeSeriesRecord{
			LocationKey:  key,
			Name:         key,
			StateName:    state,
			NumericCode:  code,
			Abbreviation: abbr,
			Lat:          lat,
			Long:         long,
			Date:         date,
			Population:   1000000,
			Metrics:      map[schema.Metric]int64{schema.MetricConfirmed: confirmed},
			Rates:        map[schema.Metric]int64{schema.MetricConfirmed: schema.DeriveRate(confirmed, 1000000)},
		}
	}
	return store.NewDataSet(&pipeline.Result{
		Counties: []schema.TimeSeriesRecord{
			record("06037", "California", "06", "", day(2020, 3, 1), 60, 34.3, -118.2),
			record("06037", "California", "06", "", day(2020, 3, 2), 80, 34.3, -118.2),
		},
		States: []schema.TimeSeriesRecord{
			record("California", "California", "06", "CA", day(2020, 3, 1), 60, 36.1, -119.6),
			record("California", "California", "06", "CA", day(2020, 3, 2), 80, 36.1, -119.6),
		},
	}, nil)
}

func TestRunWritesOneFramePerDate(t *testing.T) {
	outDir := t.TempDir()
	err := New(toyDataSet(), schema.MetricConfirmed, outDir).Run()
	assert.NoError(t, err)

	for _, name := range []string{"2020-03-01", "2020-03-02"} {
		payload, err := os.ReadFile(filepath.Join(outDir, name+".json"))
		assert.NoError(t, err)

		var figure schema.Figure
		assert.NoError(t, json.Unmarshal(payload, &figure))
		assert.Len(t, figure.Data, 2)
		assert.Equal(t, name, figure.Layout.Title.Text)

		info, err := os.Stat(filepath.Join(outDir, name+".png"))
		assert.NoError(t, err)
		assert.True(t, info.Size() > 0)
	}
}
