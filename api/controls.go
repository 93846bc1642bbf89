package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jvonk/covidmap/consts"
	"github.com/jvonk/covidmap/schema"
)

const dateLayout = "2006-01-02"

// controls returns everything the control panel needs: available scopes,
// metrics, chart kinds, and the full observed date range with one tick per
// reporting day.
func (s *Server) controls(c *gin.Context) {
	dates := s.query.Dates()
	marks := make([]string, 0, len(dates))
	for _, d := range dates {
		marks = append(marks, d.Format(dateLayout))
	}

	states := consts.USStates()
	stateScopes := make([]gin.H, 0, len(states))
	for _, state := range states {
		stateScopes = append(stateScopes, gin.H{
			"name":         state.Name,
			"numeric_code": state.NumericCode,
			"abbreviation": state.Abbreviation,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"scopes": gin.H{
			"world":  schema.ScopeWorld,
			"usa":    schema.ScopeUSA,
			"states": stateScopes,
		},
		"metrics":     schema.Metrics,
		"chart_kinds": []schema.ChartKind{schema.ChartScatter, schema.ChartChoropleth},
		"dates":       marks,
	})
}
