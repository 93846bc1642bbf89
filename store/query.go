package store

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/consts"
	"github.com/jvonk/covidmap/schema"
)

const logPrefix = "store"

// ErrUnknownScope - a scope referencing a state code with no table entry
var ErrUnknownScope = fmt.Errorf("unknown scope")

// Query - read access to the immutable dataset. Results are pure functions
// of their arguments, so implementations may cache them for the process
// lifetime. An empty result set is a valid answer, not an error.
type Query interface {
	RecordsAt(date time.Time, scope schema.Scope) ([]schema.TimeSeriesRecord, error)
	SeriesFor(metric schema.Metric, scope schema.Scope) (map[string][]schema.SeriesPoint, error)
	Geometry(scope schema.Scope) (*schema.GeographyAsset, error)
	Dates() []time.Time
}

// dataQuery memoizes every query by its full argument tuple. The memo table
// is the only shared mutable structure in the process; concurrent misses on
// the same key block and join the first computation instead of computing
// redundantly.
type dataQuery struct {
	ds    *DataSet
	cache SeriesCache

	mu       sync.Mutex
	results  map[string]interface{}
	inflight map[string]chan struct{}
}

// NewQuery - query service over an immutable dataset. cache may be nil; when
// set, SeriesFor results are additionally written through to it as a
// deployment optimization.
func NewQuery(ds *DataSet, cache SeriesCache) Query {
	return &dataQuery{
		ds:       ds,
		cache:    cache,
		results:  make(map[string]interface{}),
		inflight: make(map[string]chan struct{}),
	}
}

func (q *dataQuery) Dates() []time.Time {
	return q.ds.Dates()
}

func (q *dataQuery) RecordsAt(date time.Time, scope schema.Scope) ([]schema.TimeSeriesRecord, error) {
	source, err := q.scopeRecords(scope)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("records|%s|%s", date.Format("2006-01-02"), scopeKey(scope))
	result := q.memoize(key, func() interface{} {
		day := schema.Day(date)
		matched := make([]schema.TimeSeriesRecord, 0)
		for _, r := range source {
			if r.Date.Equal(day) {
				matched = append(matched, r)
			}
		}
		return matched
	})
	return result.([]schema.TimeSeriesRecord), nil
}

func (q *dataQuery) SeriesFor(metric schema.Metric, scope schema.Scope) (map[string][]schema.SeriesPoint, error) {
	source, err := q.scopeRecords(scope)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("series|%s|%s", metric, scopeKey(scope))
	result := q.memoize(key, func() interface{} {
		if q.cache != nil {
			if cached, ok := q.cache.Get(key); ok {
				return cached
			}
		}

		series := make(map[string][]schema.SeriesPoint)
		for _, r := range source {
			value, ok := r.Value(metric)
			if !ok {
				continue
			}
			series[r.LocationKey] = append(series[r.LocationKey], schema.SeriesPoint{
				Date:     r.Date,
				DayIndex: r.DayIndex,
				Value:    value,
			})
		}

		if q.cache != nil {
			if err := q.cache.Set(key, series); err != nil {
				log.WithFields(log.Fields{"prefix": logPrefix, "key": key, "error": err}).Warn("series cache write failed")
			}
		}
		return series
	})
	return result.(map[string][]schema.SeriesPoint), nil
}

func (q *dataQuery) Geometry(scope schema.Scope) (*schema.GeographyAsset, error) {
	if scope.Kind != schema.ScopeState {
		// world and USA-by-state figures key off built-in location modes,
		// only county choropleths need boundary geometry
		return nil, nil
	}
	state, ok := consts.StateByCode(scope.StateCode)
	if !ok {
		return nil, fmt.Errorf("%w: state code %q", ErrUnknownScope, scope.StateCode)
	}
	if q.ds.Geometry == nil {
		return nil, nil
	}

	// feature IDs are FIPS-prefixed, so both code spellings share the
	// numeric memo entry
	key := "geometry|" + state.NumericCode
	result := q.memoize(key, func() interface{} {
		return q.ds.Geometry.SubsetByState(state.NumericCode)
	})
	return result.(*schema.GeographyAsset), nil
}

func (q *dataQuery) scopeRecords(scope schema.Scope) ([]schema.TimeSeriesRecord, error) {
	switch scope.Kind {
	case schema.ScopeWorld:
		return q.ds.Global, nil
	case schema.ScopeUSA:
		return q.ds.States, nil
	case schema.ScopeState:
		state, ok := consts.StateByCode(scope.StateCode)
		if !ok {
			return nil, fmt.Errorf("%w: state code %q", ErrUnknownScope, scope.StateCode)
		}

		key := "counties|" + state.NumericCode
		result := q.memoize(key, func() interface{} {
			matched := make([]schema.TimeSeriesRecord, 0)
			for _, r := range q.ds.Counties {
				if r.NumericCode == state.NumericCode {
					matched = append(matched, r)
				}
			}
			return matched
		})
		return result.([]schema.TimeSeriesRecord), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope.Kind)
	}
}

// memoize returns the cached result for key, computing it at most once.
// Concurrent callers of a missing key wait for the winner instead of
// recomputing.
func (q *dataQuery) memoize(key string, compute func() interface{}) interface{} {
	for {
		q.mu.Lock()
		if result, ok := q.results[key]; ok {
			q.mu.Unlock()
			return result
		}
		if done, ok := q.inflight[key]; ok {
			q.mu.Unlock()
			<-done
			continue
		}
		done := make(chan struct{})
		q.inflight[key] = done
		q.mu.Unlock()

		result := compute()

		q.mu.Lock()
		q.results[key] = result
		delete(q.inflight, key)
		q.mu.Unlock()
		close(done)
		return result
	}
}

func scopeKey(scope schema.Scope) string {
	if scope.Kind == schema.ScopeState {
		return string(scope.Kind) + ":" + scope.StateCode
	}
	return string(scope.Kind)
}
