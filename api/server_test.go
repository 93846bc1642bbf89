package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/jvonk/covidmap/api/mocks"
	"github.com/jvonk/covidmap/pipeline"
	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(key, name, state, code, abbr string, date time.Time, confirmed int64) schema.TimeSeriesRecord {
	return schema.TimeSeriesRecord{
		LocationKey:  key,
		Name:         name,
		StateName:    state,
		NumericCode:  code,
		Abbreviation: abbr,
		Date:         date,
		Population:   1000000,
		Metrics:      map[schema.Metric]int64{schema.MetricConfirmed: confirmed},
		Rates:        map[schema.Metric]int64{schema.MetricConfirmed: schema.DeriveRate(confirmed, 1000000)},
	}
}

func toyQuery() store.Query {
	result := &pipeline.Result{
		Global: []schema.TimeSeriesRecord{
			record("USA", "US", "", "", "", day(2020, 3, 1), 100),
		},
		Counties: []schema.TimeSeriesRecord{
			record("06037", "Los Angeles", "California", "06", "", day(2020, 3, 1), 60),
		},
		States: []schema.TimeSeriesRecord{
			record("California", "California", "California", "06", "CA", day(2020, 3, 1), 80),
		},
	}
	return store.NewQuery(store.NewDataSet(result, nil), nil)
}

func newTestRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return s.setupRouter()
}

func postJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine) string {
	w := postJSON(router, "POST", "/v1/sessions", gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp["status"])
	assert.Equal(t, true, resp["available"])
}

func TestDegradedMode(t *testing.T) {
	router := newTestRouter(NewDegradedServer("source data unavailable"))

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var health map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "DEGRADED", health["status"])
	assert.Equal(t, "source data unavailable", health["banner"])

	req = httptest.NewRequest("GET", "/v1/controls", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "source data unavailable", resp["banner"])
}

func TestControls(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/v1/controls", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Metrics []string `json:"metrics"`
		Dates   []string `json:"dates"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"confirmed", "deaths", "recovered"}, resp.Metrics)
	assert.Equal(t, []string{"2020-03-01"}, resp.Dates)
}

func TestSessionSelectionFlow(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))
	id := createSession(t, router)

	w := postJSON(router, "PUT", "/v1/sessions/"+id+"/selection", gin.H{
		"area": gin.H{"kind": "state", "state_code": "06"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Selection schema.Selection `json:"selection"`
		Map       schema.Figure    `json:"map"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, schema.StateScope("06"), resp.Selection.Area)
	assert.Len(t, resp.Map.Data, 2)
}

func TestSessionInvalidSelectionReverts(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))
	id := createSession(t, router)

	w := postJSON(router, "PUT", "/v1/sessions/"+id+"/selection", gin.H{
		"date": "2021-12-31",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Selection schema.Selection `json:"selection"`
		Reason    string           `json:"reason"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, day(2020, 3, 1), resp.Selection.Date, "selection reverts to last valid state")
	assert.Contains(t, resp.Reason, "outside the observed range")
}

func TestSessionHover(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))
	id := createSession(t, router)

	w := postJSON(router, "POST", "/v1/sessions/"+id+"/hover", gin.H{
		"location_key": "California",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Timeseries schema.Figure `json:"timeseries"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Timeseries.Data, 1)
	assert.Equal(t, []int64{80}, resp.Timeseries.Data[0].Y)
}

func TestSessionClickDrill(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))
	id := createSession(t, router)

	w := postJSON(router, "POST", "/v1/sessions/"+id+"/click", gin.H{
		"customdata": "06",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Changed   bool             `json:"changed"`
		Selection schema.Selection `json:"selection"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Changed)
	assert.Equal(t, schema.StateScope("06"), resp.Selection.Area)
}

func TestSessionNotFound(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/v1/sessions/no-such-session/figures", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeries(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/v1/series?metric=confirmed&scope=usa", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Series map[string][]schema.SeriesPoint `json:"series"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Series["California"], 1)
	assert.Equal(t, int64(80), resp.Series["California"][0].Value)
}

func TestSeriesUnknownState(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/v1/series?scope=state&state=99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSeriesUnknownMetric(t *testing.T) {
	router := newTestRouter(NewServer(toyQuery()))

	req := httptest.NewRequest("GET", "/v1/series?metric=garbage&scope=usa", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errorInvalidParameters, resp)
}

func TestSeriesWithMockedQuery(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	q := mocks.NewMockQuery(ctl)
	q.EXPECT().SeriesFor(schema.MetricDeaths, schema.WorldScope()).Return(map[string][]schema.SeriesPoint{
		"USA": {{Date: day(2020, 3, 1), Value: 7}},
	}, nil).Times(1)

	router := newTestRouter(NewServer(q))

	req := httptest.NewRequest("GET", "/v1/series?metric=deaths&scope=world", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Series map[string][]schema.SeriesPoint `json:"series"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Series["USA"][0].Value)
}
