package pipeline

import (
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/consts"
	"github.com/jvonk/covidmap/schema"
)

// RollupStates groups county records by (state, date), sums the metrics and
// populations, and derives rates from the sums rather than averaging county
// rates. State names without a table entry are reported and excluded.
func RollupStates(counties []schema.TimeSeriesRecord) []schema.TimeSeriesRecord {
	type groupKey struct {
		state string
		date  int64
	}

	groups := make(map[groupKey]*schema.TimeSeriesRecord)
	order := make([]groupKey, 0)
	unknown := make(map[string]bool)

	for _, county := range counties {
		state, err := consts.StateByName(county.StateName)
		if err != nil {
			if errors.Is(err, consts.ErrUnknownRegion) && !unknown[county.StateName] {
				unknown[county.StateName] = true
				log.WithFields(log.Fields{"prefix": logPrefix, "state": county.StateName}).Warn("unknown region, counties excluded from rollup")
			}
			continue
		}

		key := groupKey{state: state.Name, date: county.Date.Unix()}
		group, ok := groups[key]
		if !ok {
			group = &schema.TimeSeriesRecord{
				LocationKey:  state.Name,
				Name:         state.Name,
				StateName:    state.Name,
				Abbreviation: state.Abbreviation,
				NumericCode:  state.NumericCode,
				Date:         county.Date,
				DayIndex:     county.DayIndex,
				Metrics:      make(map[schema.Metric]int64, len(schema.Metrics)),
			}
			groups[key] = group
			order = append(order, key)
		}

		group.Population += county.Population
		for m, v := range county.Metrics {
			group.Metrics[m] += v
		}
	}

	records := make([]schema.TimeSeriesRecord, 0, len(order))
	for _, key := range order {
		group := groups[key]
		group.Rates = make(map[schema.Metric]int64, len(group.Metrics))
		for m, v := range group.Metrics {
			if group.Population > 0 {
				group.Rates[m] = schema.DeriveRate(v, group.Population)
			}
		}
		records = append(records, *group)
	}
	sortRecords(records)
	return records
}

// DateRange returns every distinct reporting date in ascending order.
func DateRange(records []schema.TimeSeriesRecord) []time.Time {
	seen := make(map[int64]bool)
	var dates []time.Time
	for _, r := range records {
		if !seen[r.Date.Unix()] {
			seen[r.Date.Unix()] = true
			dates = append(dates, r.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
