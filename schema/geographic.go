package schema

import "encoding/json"

// Geometry - raw GeoJSON geometry of one boundary polygon. Coordinates are
// kept opaque; the rendering layer consumes them as-is.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// GeoFeature - one county boundary feature. ID is the zero-padded 5-digit
// county FIPS code; its first two digits are the state numeric code.
type GeoFeature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   Geometry               `json:"geometry"`
}

// GeographyAsset - a boundary FeatureCollection, immutable after load
type GeographyAsset struct {
	Type     string       `json:"type"`
	Features []GeoFeature `json:"features"`
}

// StateCode returns the 2-digit state numeric prefix of a county feature.
func (f GeoFeature) StateCode() string {
	if len(f.ID) < 2 {
		return ""
	}
	return f.ID[:2]
}

// SubsetByState returns a new collection holding only the counties of one
// state, identified by its 2-digit numeric code.
func (g *GeographyAsset) SubsetByState(numericCode string) *GeographyAsset {
	subset := &GeographyAsset{Type: g.Type}
	for _, f := range g.Features {
		if f.StateCode() == numericCode {
			subset.Features = append(subset.Features, f)
		}
	}
	return subset
}
