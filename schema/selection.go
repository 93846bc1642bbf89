package schema

import "time"

type ScopeKind string

const (
	ScopeWorld ScopeKind = "world"
	ScopeUSA   ScopeKind = "usa"
	ScopeState ScopeKind = "state"
)

// Scope - the geographic granularity currently displayed. StateCode is the
// 2-digit numeric code of the selected state and is set only for ScopeState.
type Scope struct {
	Kind      ScopeKind `json:"kind"`
	StateCode string    `json:"state_code,omitempty"`
}

func WorldScope() Scope { return Scope{Kind: ScopeWorld} }

func USAScope() Scope { return Scope{Kind: ScopeUSA} }

func StateScope(code string) Scope { return Scope{Kind: ScopeState, StateCode: code} }

type ChartKind string

const (
	ChartScatter    ChartKind = "scattergeo"
	ChartChoropleth ChartKind = "choropleth"
)

// Selection - ephemeral per-session UI state. Mutated only by control input
// events; transient hover state is deliberately not part of it.
type Selection struct {
	Date       time.Time   `json:"date"`
	Area       Scope       `json:"area"`
	Metric     Metric      `json:"metric"`
	ChartKinds []ChartKind `json:"chart_kinds"`
}

// DefaultSelection - the state a fresh session starts from: latest reporting
// date, USA scope, confirmed cases, both chart kinds.
func DefaultSelection(latestDate time.Time) Selection {
	return Selection{
		Date:       latestDate,
		Area:       USAScope(),
		Metric:     MetricConfirmed,
		ChartKinds: []ChartKind{ChartScatter, ChartChoropleth},
	}
}

// HasChart reports whether a chart kind is enabled in the selection.
func (s Selection) HasChart(k ChartKind) bool {
	for _, kind := range s.ChartKinds {
		if kind == k {
			return true
		}
	}
	return false
}
