package jhu

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/schema"
)

const (
	logPrefix = "jhu"

	// DefaultBaseURL - the JHU CSSE data repository raw-file root
	DefaultBaseURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/"

	// DefaultGeometryURL - county boundary FeatureCollection keyed by FIPS
	DefaultGeometryURL = "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json"
)

// SourceID names one remote table of the CSSE repository.
type SourceID string

const (
	SourceConfirmedGlobal SourceID = "confirmed_global"
	SourceDeathsGlobal    SourceID = "deaths_global"
	SourceRecoveredGlobal SourceID = "recovered_global"
	SourceConfirmedUS     SourceID = "confirmed_us"
	SourceDeathsUS        SourceID = "deaths_us"
	SourceLookup          SourceID = "lookup"
)

// TableSources - every tabular source the pipeline consumes
var TableSources = []SourceID{
	SourceConfirmedGlobal,
	SourceDeathsGlobal,
	SourceRecoveredGlobal,
	SourceConfirmedUS,
	SourceDeathsUS,
	SourceLookup,
}

var sourcePaths = map[SourceID]string{
	SourceConfirmedGlobal: "csse_covid_19_time_series/time_series_covid19_confirmed_global.csv",
	SourceDeathsGlobal:    "csse_covid_19_time_series/time_series_covid19_deaths_global.csv",
	SourceRecoveredGlobal: "csse_covid_19_time_series/time_series_covid19_recovered_global.csv",
	SourceConfirmedUS:     "csse_covid_19_time_series/time_series_covid19_confirmed_US.csv",
	SourceDeathsUS:        "csse_covid_19_time_series/time_series_covid19_deaths_US.csv",
	SourceLookup:          "UID_ISO_FIPS_LookUp_Table.csv",
}

// requiredColumns - schema contract per source; a response missing any of
// these is malformed, not just empty
var requiredColumns = map[SourceID][]string{
	SourceConfirmedGlobal: {"Province/State", "Country/Region", "Lat", "Long"},
	SourceDeathsGlobal:    {"Province/State", "Country/Region", "Lat", "Long"},
	SourceRecoveredGlobal: {"Province/State", "Country/Region", "Lat", "Long"},
	SourceConfirmedUS:     {"UID", "iso2", "iso3", "code3", "FIPS", "Admin2", "Province_State", "Country_Region", "Lat", "Long_"},
	SourceDeathsUS:        {"UID", "iso2", "iso3", "code3", "FIPS", "Admin2", "Province_State", "Country_Region", "Lat", "Long_", "Population"},
	SourceLookup:          {"UID", "iso3", "FIPS", "Province_State", "Country_Region", "Population"},
}

// FetchError - a required source is unreachable or unparseable
type FetchError struct {
	Source SourceID
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClientConfig - fetch tuning; zero values fall back to defaults
type ClientConfig struct {
	BaseURL     string
	GeometryURL string
	Timeout     time.Duration
	Attempts    int
	Backoff     time.Duration
}

// Client fetches the remote CSSE tables and the county boundary geometry.
// Transient fetch failures are retried with backoff; the caller decides
// whether to fall back to a cached snapshot after the last attempt.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	geometryURL string
	attempts    int
	backoff     time.Duration
}

// NewClient - new CSSE source client
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GeometryURL == "" {
		cfg.GeometryURL = DefaultGeometryURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 2 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		geometryURL: cfg.GeometryURL,
		attempts:    cfg.Attempts,
		backoff:     cfg.Backoff,
	}
}

// Load fetches and parses one wide source table. The returned error is
// always a *FetchError.
func (c *Client) Load(ctx context.Context, id SourceID) (*RawTable, error) {
	path, ok := sourcePaths[id]
	if !ok {
		return nil, &FetchError{Source: id, Err: fmt.Errorf("unknown source id")}
	}

	data, err := c.get(ctx, c.baseURL+path)
	if err != nil {
		return nil, &FetchError{Source: id, Err: err}
	}

	table, err := ParseCSV(data)
	if err != nil {
		return nil, &FetchError{Source: id, Err: err}
	}

	for _, col := range requiredColumns[id] {
		if _, ok := table.ColumnIndex(col); !ok {
			return nil, &FetchError{Source: id, Err: fmt.Errorf("missing expected column %q", col)}
		}
	}

	log.WithFields(log.Fields{"prefix": logPrefix, "source": id, "rows": len(table.Rows)}).Info("source table loaded")
	return table, nil
}

// LoadAll fetches every tabular source. It fails on the first source that
// cannot be loaded; partial datasets are never substituted for full ones.
func (c *Client) LoadAll(ctx context.Context) (map[SourceID]*RawTable, error) {
	tables := make(map[SourceID]*RawTable, len(TableSources))
	for _, id := range TableSources {
		table, err := c.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		tables[id] = table
	}
	return tables, nil
}

// LoadGeometry fetches the county boundary FeatureCollection.
func (c *Client) LoadGeometry(ctx context.Context) (*schema.GeographyAsset, error) {
	const id = SourceID("county_geometry")

	data, err := c.get(ctx, c.geometryURL)
	if err != nil {
		return nil, &FetchError{Source: id, Err: err}
	}

	var asset schema.GeographyAsset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, &FetchError{Source: id, Err: err}
	}
	if len(asset.Features) == 0 {
		return nil, &FetchError{Source: id, Err: fmt.Errorf("empty feature collection")}
	}

	log.WithFields(log.Fields{"prefix": logPrefix, "features": len(asset.Features)}).Info("county geometry loaded")
	return &asset, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		data, err := c.getOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.WithFields(log.Fields{"prefix": logPrefix, "url": url, "attempt": attempt, "error": err}).Warn("source fetch failed")
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if nil != err {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return ioutil.ReadAll(resp.Body)
}
