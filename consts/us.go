package consts

import (
	"fmt"
	"sort"
)

// ErrUnknownRegion - a state name with no entry in the abbreviation table.
// Callers report it and exclude the record instead of crashing the pipeline.
var ErrUnknownRegion = fmt.Errorf("unknown region")

// USState - static display metadata of one US state or territory
type USState struct {
	Name         string
	NumericCode  string
	Abbreviation string
}

var usStatesByName map[string]USState
var usStatesByCode map[string]USState

func init() {
	states := []USState{
		{"Alabama", "01", "AL"},
		{"Alaska", "02", "AK"},
		{"Arizona", "04", "AZ"},
		{"Arkansas", "05", "AR"},
		{"California", "06", "CA"},
		{"Colorado", "08", "CO"},
		{"Connecticut", "09", "CT"},
		{"Delaware", "10", "DE"},
		{"District of Columbia", "11", "DC"},
		{"Florida", "12", "FL"},
		{"Georgia", "13", "GA"},
		{"Hawaii", "15", "HI"},
		{"Idaho", "16", "ID"},
		{"Illinois", "17", "IL"},
		{"Indiana", "18", "IN"},
		{"Iowa", "19", "IA"},
		{"Kansas", "20", "KS"},
		{"Kentucky", "21", "KY"},
		{"Louisiana", "22", "LA"},
		{"Maine", "23", "ME"},
		{"Maryland", "24", "MD"},
		{"Massachusetts", "25", "MA"},
		{"Michigan", "26", "MI"},
		{"Minnesota", "27", "MN"},
		{"Mississippi", "28", "MS"},
		{"Missouri", "29", "MO"},
		{"Montana", "30", "MT"},
		{"Nebraska", "31", "NE"},
		{"Nevada", "32", "NV"},
		{"New Hampshire", "33", "NH"},
		{"New Jersey", "34", "NJ"},
		{"New Mexico", "35", "NM"},
		{"New York", "36", "NY"},
		{"North Carolina", "37", "NC"},
		{"North Dakota", "38", "ND"},
		{"Ohio", "39", "OH"},
		{"Oklahoma", "40", "OK"},
		{"Oregon", "41", "OR"},
		{"Pennsylvania", "42", "PA"},
		{"Rhode Island", "44", "RI"},
		{"South Carolina", "45", "SC"},
		{"South Dakota", "46", "SD"},
		{"Tennessee", "47", "TN"},
		{"Texas", "48", "TX"},
		{"Utah", "49", "UT"},
		{"Vermont", "50", "VT"},
		{"Virginia", "51", "VA"},
		{"Washington", "53", "WA"},
		{"West Virginia", "54", "WV"},
		{"Wisconsin", "55", "WI"},
		{"Wyoming", "56", "WY"},
		{"Puerto Rico", "72", "PR"},
	}

	usStatesByName = make(map[string]USState, len(states))
	usStatesByCode = make(map[string]USState, len(states)*2)
	for _, s := range states {
		usStatesByName[s.Name] = s
		usStatesByCode[s.NumericCode] = s
		usStatesByCode[s.Abbreviation] = s
	}
}

// USStates returns every table entry sorted by name.
func USStates() []USState {
	states := make([]USState, 0, len(usStatesByName))
	for _, s := range usStatesByName {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

// StateByName - look up a state by the Province_State name the CSSE sources
// use. Unlisted names (cruise ships, repatriated-traveler rows) come back as
// ErrUnknownRegion.
func StateByName(name string) (USState, error) {
	s, ok := usStatesByName[name]
	if !ok {
		return USState{}, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}
	return s, nil
}

// StateByCode - look up a state by its 2-digit numeric code or postal
// abbreviation
func StateByCode(code string) (USState, bool) {
	s, ok := usStatesByCode[code]
	return s, ok
}
