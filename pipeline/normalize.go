package pipeline

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/schema"
)

const logPrefix = "pipeline"

// accumulator collects every wide source row sharing one location key while
// the reshape sums duplicates (territories merged into a parent country,
// split county rows).
type accumulator struct {
	name       string
	stateName  string
	population int64
	latSum     float64
	longSum    float64
	rows       int
	values     map[time.Time]int64
	reported   map[time.Time]bool
}

func newAccumulator(name, stateName string) *accumulator {
	return &accumulator{
		name:      name,
		stateName: stateName,
		values:    make(map[time.Time]int64),
		reported:  make(map[time.Time]bool),
	}
}

func (a *accumulator) add(date time.Time, value int64) {
	a.values[date] += value
	a.reported[date] = true
}

// NormalizeGlobal reshapes one wide global metric table into long form:
// geometry columns dropped, the lookup joined on (country, province), rows
// without a metadata match excluded, duplicate country keys summed, then one
// record per (iso3, date) sorted ascending. Country centroids are averaged
// from the source coordinates before they are dropped.
func NormalizeGlobal(raw *jhu.RawTable, metric schema.Metric, meta *LocationMetadata) []schema.TimeSeriesRecord {
	positions, dates := raw.DateColumns()
	accs := make(map[string]*accumulator)
	dropped := 0

	for _, row := range raw.Rows {
		country := raw.Cell(row, "Country/Region")
		province := raw.Cell(row, "Province/State")

		iso3, population, ok := meta.Global(country, province)
		if !ok {
			dropped++
			log.WithFields(log.Fields{"prefix": logPrefix, "country": country, "province": province}).Debug("no metadata match, row excluded")
			continue
		}

		acc, ok := accs[iso3]
		if !ok {
			acc = newAccumulator(country, "")
			accs[iso3] = acc
		}
		acc.population += population
		if lat, ok := jhu.FloatCell(raw.Cell(row, "Lat")); ok {
			if long, ok := jhu.FloatCell(raw.Cell(row, "Long")); ok {
				acc.latSum += lat
				acc.longSum += long
				acc.rows++
			}
		}

		for i, pos := range positions {
			if value, ok := jhu.Int64Cell(row[pos]); ok {
				acc.add(dates[i], value)
			}
		}
	}

	if dropped > 0 {
		log.WithFields(log.Fields{"prefix": logPrefix, "metric": metric, "rows": dropped}).Info("rows without metadata match excluded")
	}

	return melt(accs, dates, metric, func(key string, acc *accumulator, r *schema.TimeSeriesRecord) {
		if acc.rows > 0 {
			r.Lat = acc.latSum / float64(acc.rows)
			r.Long = acc.longSum / float64(acc.rows)
		}
	})
}

// NormalizeUS reshapes one wide US metric table into long county form. Rows
// without a usable FIPS code (unassigned and out-of-state buckets) or with
// no population in the lookup are excluded; duplicate FIPS rows are summed.
// Any Population column the source carries is ignored in favor of the
// lookup join.
func NormalizeUS(raw *jhu.RawTable, metric schema.Metric, meta *LocationMetadata) []schema.TimeSeriesRecord {
	positions, dates := raw.DateColumns()
	accs := make(map[string]*accumulator)
	dropped := 0

	for _, row := range raw.Rows {
		fips, ok := NormalizeFIPS(raw.Cell(row, "FIPS"))
		if !ok {
			dropped++
			continue
		}
		if _, ok := meta.CountyPopulation(fips); !ok {
			dropped++
			log.WithFields(log.Fields{"prefix": logPrefix, "fips": fips}).Debug("no population match, row excluded")
			continue
		}

		acc, ok := accs[fips]
		if !ok {
			acc = newAccumulator(raw.Cell(row, "Admin2"), raw.Cell(row, "Province_State"))
			if population, ok := meta.CountyPopulation(fips); ok {
				acc.population = population
			}
			if lat, ok := jhu.FloatCell(raw.Cell(row, "Lat")); ok {
				acc.latSum = lat
				acc.rows = 1
			}
			if long, ok := jhu.FloatCell(raw.Cell(row, "Long_")); ok {
				acc.longSum = long
			}
			accs[fips] = acc
		}

		for i, pos := range positions {
			if value, ok := jhu.Int64Cell(row[pos]); ok {
				acc.add(dates[i], value)
			}
		}
	}

	if dropped > 0 {
		log.WithFields(log.Fields{"prefix": logPrefix, "metric": metric, "rows": dropped}).Info("rows without FIPS or population excluded")
	}

	return melt(accs, dates, metric, func(key string, acc *accumulator, r *schema.TimeSeriesRecord) {
		if acc.rows > 0 {
			r.Lat = acc.latSum / float64(acc.rows)
			r.Long = acc.longSum / float64(acc.rows)
		}
		r.StateName = acc.stateName
		if len(key) >= 2 {
			r.NumericCode = key[:2]
		}
	})
}

// melt pivots accumulated wide values into one record per (key, date),
// sorted by key then date. Dates a location never reported stay absent.
func melt(accs map[string]*accumulator, dates []time.Time, metric schema.Metric, decorate func(string, *accumulator, *schema.TimeSeriesRecord)) []schema.TimeSeriesRecord {
	keys := make([]string, 0, len(accs))
	for key := range accs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sortedDates := make([]time.Time, len(dates))
	copy(sortedDates, dates)
	sort.Slice(sortedDates, func(i, j int) bool { return sortedDates[i].Before(sortedDates[j]) })

	records := make([]schema.TimeSeriesRecord, 0, len(keys)*len(sortedDates))
	for _, key := range keys {
		acc := accs[key]
		for _, date := range sortedDates {
			if !acc.reported[date] {
				continue
			}
			record := schema.TimeSeriesRecord{
				LocationKey: key,
				Name:        acc.name,
				Date:        schema.Day(date),
				Population:  acc.population,
				Metrics:     map[schema.Metric]int64{metric: acc.values[date]},
			}
			decorate(key, acc, &record)
			records = append(records, record)
		}
	}
	return records
}
