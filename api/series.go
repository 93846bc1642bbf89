package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
)

// series hands a client the full per-location history for a metric and
// scope. Clients keep a copy so hover redraws can run locally at pointer
// speed.
func (s *Server) series(c *gin.Context) {
	metric := schema.Metric(c.DefaultQuery("metric", string(schema.MetricConfirmed)))
	if !knownMetric(metric) {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	scope := schema.USAScope()
	switch schema.ScopeKind(c.DefaultQuery("scope", string(schema.ScopeUSA))) {
	case schema.ScopeWorld:
		scope = schema.WorldScope()
	case schema.ScopeUSA:
		scope = schema.USAScope()
	case schema.ScopeState:
		scope = schema.StateScope(c.Query("state"))
	default:
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	series, err := s.query.SeriesFor(metric, scope)
	if err != nil {
		if errors.Is(err, store.ErrUnknownScope) {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
			return
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric": metric,
		"scope":  scope,
		"series": series,
	})
}

// knownMetric guards the memo and cache keys against arbitrary client input.
func knownMetric(metric schema.Metric) bool {
	for _, m := range schema.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}
