package pipeline

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/schema"
)

// Result - every tidy table the dashboard serves
type Result struct {
	Global   []schema.TimeSeriesRecord
	Counties []schema.TimeSeriesRecord
	States   []schema.TimeSeriesRecord
}

// Build runs the full reshape over the raw source tables: global metrics
// normalized and merged, US counties normalized and merged, states rolled up
// from counties.
func Build(tables map[jhu.SourceID]*jhu.RawTable) (*Result, error) {
	lookup, ok := tables[jhu.SourceLookup]
	if !ok {
		return nil, fmt.Errorf("lookup table missing from source set")
	}
	for _, id := range jhu.TableSources {
		if tables[id] == nil {
			return nil, fmt.Errorf("source table %s missing from source set", id)
		}
	}

	meta := BuildLocationMetadata(lookup)

	global := Finalize(MergeMetrics(
		NormalizeGlobal(tables[jhu.SourceConfirmedGlobal], schema.MetricConfirmed, meta),
		NormalizeGlobal(tables[jhu.SourceDeathsGlobal], schema.MetricDeaths, meta),
		NormalizeGlobal(tables[jhu.SourceRecoveredGlobal], schema.MetricRecovered, meta),
	))

	counties := Finalize(MergeMetrics(
		NormalizeUS(tables[jhu.SourceConfirmedUS], schema.MetricConfirmed, meta),
		NormalizeUS(tables[jhu.SourceDeathsUS], schema.MetricDeaths, meta),
	))

	states := RollupStates(counties)

	log.WithFields(log.Fields{
		"prefix":   logPrefix,
		"global":   len(global),
		"counties": len(counties),
		"states":   len(states),
	}).Info("pipeline complete")

	return &Result{Global: global, Counties: counties, States: states}, nil
}
