package viewmodel

import "github.com/jvonk/covidmap/schema"

const (
	// RateDomainMax - choropleth cell values are per-100M rates clamped to
	// [0, RateDomainMax]
	RateDomainMax = 1000000
)

// rateColorscale - fixed 10-stop white to dark red ramp. Stops sit at
// roughly logarithmic fractions of the clamp domain so low-rate regions
// stay visually distinguishable.
var rateColorscale = []schema.ColorStop{
	{Position: 0.0, Color: "rgb(255,255,255)"},
	{Position: 0.000001, Color: "rgb(255,245,240)"},
	{Position: 0.00001, Color: "rgb(254,224,210)"},
	{Position: 0.000032, Color: "rgb(252,187,161)"},
	{Position: 0.0001, Color: "rgb(252,146,114)"},
	{Position: 0.00032, Color: "rgb(251,106,74)"},
	{Position: 0.001, Color: "rgb(239,59,44)"},
	{Position: 0.01, Color: "rgb(203,24,29)"},
	{Position: 0.1, Color: "rgb(165,15,21)"},
	{Position: 1.0, Color: "rgb(103,0,13)"},
}

// RateColorscale returns a copy of the ramp so callers can never mutate the
// shared table.
func RateColorscale() []schema.ColorStop {
	scale := make([]schema.ColorStop, len(rateColorscale))
	copy(scale, rateColorscale)
	return scale
}

// ClampRate clamps a per-100M rate into the fixed color domain.
func ClampRate(rate int64) int64 {
	if rate < 0 {
		return 0
	}
	if rate > RateDomainMax {
		return RateDomainMax
	}
	return rate
}
