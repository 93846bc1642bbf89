package schema

import (
	"encoding/json"
	"fmt"
)

// Trace - one plotly-style trace description. Only the fields a given trace
// type uses are populated; everything else stays omitted from the JSON.
type Trace struct {
	Type         string      `json:"type"`
	Lat          []float64   `json:"lat,omitempty"`
	Lon          []float64   `json:"lon,omitempty"`
	X            []string    `json:"x,omitempty"`
	Y            []int64     `json:"y,omitempty"`
	Mode         string      `json:"mode,omitempty"`
	Text         []string    `json:"text,omitempty"`
	Customdata   []string    `json:"customdata,omitempty"`
	Locations    []string    `json:"locations,omitempty"`
	LocationMode string      `json:"locationmode,omitempty"`
	Z            []int64     `json:"z,omitempty"`
	ZMin         *int64      `json:"zmin,omitempty"`
	ZMax         *int64      `json:"zmax,omitempty"`
	Marker       *Marker     `json:"marker,omitempty"`
	Colorscale   []ColorStop `json:"colorscale,omitempty"`
	ShowScale    *bool       `json:"showscale,omitempty"`
	GeoJSON      interface{} `json:"geojson,omitempty"`
}

type Marker struct {
	Size      []float64 `json:"size,omitempty"`
	Opacity   float64   `json:"opacity,omitempty"`
	SizeMode  string    `json:"sizemode,omitempty"`
	Color     string    `json:"color,omitempty"`
	LineWidth float64   `json:"line_width"`
}

// ColorStop - one colorscale entry, serialized as the [position, color]
// pair plotly expects.
type ColorStop struct {
	Position float64
	Color    string
}

func (s ColorStop) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Position, s.Color})
}

func (s *ColorStop) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("colorscale stop must be a [position, color] pair")
	}
	pos, ok := raw[0].(float64)
	if !ok {
		return fmt.Errorf("colorscale stop position must be a number")
	}
	color, ok := raw[1].(string)
	if !ok {
		return fmt.Errorf("colorscale stop color must be a string")
	}
	s.Position = pos
	s.Color = color
	return nil
}

// Shape - a crosshair line drawn over the timeseries figure
type Shape struct {
	Type string  `json:"type"`
	X0   string  `json:"x0"`
	X1   string  `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	XRef string  `json:"xref,omitempty"`
	YRef string  `json:"yref,omitempty"`
	Line Line    `json:"line"`
}

type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

type GeoLayout struct {
	UIRevision     bool   `json:"uirevision"`
	ShowLand       bool   `json:"showland"`
	LandColor      string `json:"landcolor"`
	ShowCountries  bool   `json:"showcountries"`
	Scope          string `json:"scope"`
	ShowFrame      bool   `json:"showframe"`
	ShowCoastlines bool   `json:"showcoastlines"`
	FitBounds      string `json:"fitbounds,omitempty"`
}

type Margin struct {
	L   int `json:"l"`
	R   int `json:"r"`
	T   int `json:"t"`
	B   int `json:"b"`
	Pad int `json:"pad"`
}

type Title struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	XAnchor  string  `json:"xanchor,omitempty"`
	YAnchor  string  `json:"yanchor,omitempty"`
	FontSize int     `json:"font_size,omitempty"`
}

type Layout struct {
	PaperBGColor string     `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string     `json:"plot_bgcolor,omitempty"`
	Margin       *Margin    `json:"margin,omitempty"`
	UIRevision   bool       `json:"uirevision,omitempty"`
	Geo          *GeoLayout `json:"geo,omitempty"`
	Hovermode    string     `json:"hovermode,omitempty"`
	Title        *Title     `json:"title,omitempty"`
	Shapes       []Shape    `json:"shapes,omitempty"`
}

// Figure - a full trace set plus layout, ready to hand to the rendering layer
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}
