package pipeline

import (
	"sort"

	"github.com/jvonk/covidmap/schema"
)

// MergeMetrics outer-joins per-metric long tables on (location key, date).
// A location missing one metric but present in another survives with only
// the reported metrics set. Identity fields come from the first table that
// carries the location.
func MergeMetrics(tables ...[]schema.TimeSeriesRecord) []schema.TimeSeriesRecord {
	type recordKey struct {
		location string
		date     int64
	}

	merged := make(map[recordKey]*schema.TimeSeriesRecord)
	order := make([]recordKey, 0)

	for _, table := range tables {
		for _, r := range table {
			key := recordKey{location: r.LocationKey, date: r.Date.Unix()}
			existing, ok := merged[key]
			if !ok {
				record := r
				record.Metrics = make(map[schema.Metric]int64, len(schema.Metrics))
				for m, v := range r.Metrics {
					record.Metrics[m] = v
				}
				merged[key] = &record
				order = append(order, key)
				continue
			}
			for m, v := range r.Metrics {
				existing.Metrics[m] = v
			}
		}
	}

	records := make([]schema.TimeSeriesRecord, 0, len(order))
	for _, key := range order {
		records = append(records, *merged[key])
	}
	sortRecords(records)
	return records
}

// Finalize completes a merged table: records without population are dropped
// so rate derivation never divides by zero, per-100M rates are computed from
// the summed values, and every record gets its day index relative to the
// first reporting date of the whole series.
func Finalize(records []schema.TimeSeriesRecord) []schema.TimeSeriesRecord {
	out := make([]schema.TimeSeriesRecord, 0, len(records))
	for _, r := range records {
		if r.Population <= 0 {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return out
	}

	sortRecords(out)

	minDate := out[0].Date
	for _, r := range out {
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
	}

	for i := range out {
		out[i].DayIndex = schema.DaysBetween(minDate, out[i].Date)
		rates := make(map[schema.Metric]int64, len(out[i].Metrics))
		for m, v := range out[i].Metrics {
			rates[m] = schema.DeriveRate(v, out[i].Population)
		}
		out[i].Rates = rates
	}
	return out
}

func sortRecords(records []schema.TimeSeriesRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LocationKey != records[j].LocationKey {
			return records[i].LocationKey < records[j].LocationKey
		}
		return records[i].Date.Before(records[j].Date)
	})
}
