package pipeline

import (
	"fmt"

	"github.com/jvonk/covidmap/external/jhu"
)

// LocationMetadata - the UID/ISO/FIPS lookup table indexed two ways: by
// (country, province) for the global series and by county FIPS for the US
// series. Built once, never mutated.
type LocationMetadata struct {
	byCountryProvince map[string]lookupEntry
	byFIPS            map[string]lookupEntry
}

type lookupEntry struct {
	ISO3       string
	Population int64
}

func countryProvinceKey(country, province string) string {
	return country + "\x1f" + province
}

// NormalizeFIPS turns any source spelling of a county FIPS ("1001",
// "1001.0") into the canonical zero-padded 5-digit form.
func NormalizeFIPS(cell string) (string, bool) {
	v, ok := jhu.Int64Cell(cell)
	if !ok || v <= 0 {
		return "", false
	}
	return fmt.Sprintf("%05d", v), true
}

// BuildLocationMetadata indexes the lookup table.
func BuildLocationMetadata(lookup *jhu.RawTable) *LocationMetadata {
	meta := &LocationMetadata{
		byCountryProvince: make(map[string]lookupEntry, len(lookup.Rows)),
		byFIPS:            make(map[string]lookupEntry, len(lookup.Rows)),
	}

	for _, row := range lookup.Rows {
		iso3 := lookup.Cell(row, "iso3")
		population, _ := jhu.Int64Cell(lookup.Cell(row, "Population"))
		entry := lookupEntry{ISO3: iso3, Population: population}

		country := lookup.Cell(row, "Country_Region")
		province := lookup.Cell(row, "Province_State")
		meta.byCountryProvince[countryProvinceKey(country, province)] = entry

		if fips, ok := NormalizeFIPS(lookup.Cell(row, "FIPS")); ok {
			meta.byFIPS[fips] = entry
		}
	}

	return meta
}

// Global resolves a global source row to its ISO-3 code and population.
func (m *LocationMetadata) Global(country, province string) (string, int64, bool) {
	entry, ok := m.byCountryProvince[countryProvinceKey(country, province)]
	if !ok || entry.ISO3 == "" {
		return "", 0, false
	}
	return entry.ISO3, entry.Population, true
}

// CountyPopulation resolves a county FIPS code to its population.
func (m *LocationMetadata) CountyPopulation(fips string) (int64, bool) {
	entry, ok := m.byFIPS[fips]
	if !ok {
		return 0, false
	}
	return entry.Population, true
}
