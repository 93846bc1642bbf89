package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jvonk/covidmap/dash"
	"github.com/jvonk/covidmap/schema"
)

// selectionUpdateParams - the JSON form of a control input event; absent
// fields leave the selection unchanged
type selectionUpdateParams struct {
	Date       *string            `json:"date"`
	Area       *schema.Scope      `json:"area"`
	Metric     *schema.Metric     `json:"metric"`
	ChartKinds []schema.ChartKind `json:"chart_kinds"`
}

func (p selectionUpdateParams) toUpdate() (dash.SelectionUpdate, error) {
	update := dash.SelectionUpdate{
		Area:       p.Area,
		Metric:     p.Metric,
		ChartKinds: p.ChartKinds,
	}
	if p.Date != nil {
		d, err := time.Parse(dateLayout, *p.Date)
		if err != nil {
			return dash.SelectionUpdate{}, err
		}
		update.Date = &d
	}
	return update, nil
}

func (s *Server) createSession(c *gin.Context) {
	controller, err := dash.NewController(s.query)
	if err != nil {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	id := uuid.New().String()
	s.sessionMu.Lock()
	s.sessions[id] = controller
	s.sessionMu.Unlock()

	log.WithField("session", id).Info("session created")

	c.JSON(http.StatusOK, gin.H{
		"id":        id,
		"selection": controller.Selection(),
	})
}

func (s *Server) figures(c *gin.Context) {
	controller, ok := s.controller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection":  controller.Selection(),
		"map":        controller.MapFigure(),
		"timeseries": controller.TimeseriesFigure(),
	})
}

func (s *Server) updateSelection(c *gin.Context) {
	controller, ok := s.controller(c)
	if !ok {
		return
	}

	var params selectionUpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	update, err := params.toUpdate()
	if err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	if err := controller.Apply(update); err != nil {
		if _, ok := err.(*dash.InvalidSelectionError); ok {
			// selection stays at its last valid state
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     errorInvalidSelection,
				"reason":    err.Error(),
				"selection": controller.Selection(),
			})
			return
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection":  controller.Selection(),
		"map":        controller.MapFigure(),
		"timeseries": controller.TimeseriesFigure(),
	})
}

// hover - the low-latency path: retargets the crosshair against series data
// the session already holds, no query-service round trip
func (s *Server) hover(c *gin.Context) {
	controller, ok := s.controller(c)
	if !ok {
		return
	}

	var params struct {
		LocationKey string `json:"location_key"`
	}
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	controller.Hover(params.LocationKey)

	c.JSON(http.StatusOK, gin.H{
		"timeseries": controller.TimeseriesFigure(),
	})
}

func (s *Server) click(c *gin.Context) {
	controller, ok := s.controller(c)
	if !ok {
		return
	}

	var params struct {
		Customdata string `json:"customdata"`
	}
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	changed, err := controller.Click(params.Customdata)
	if err != nil {
		if _, ok := err.(*dash.InvalidSelectionError); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     errorInvalidSelection,
				"reason":    err.Error(),
				"selection": controller.Selection(),
			})
			return
		}
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		return
	}

	response := gin.H{
		"changed":   changed,
		"selection": controller.Selection(),
	}
	if changed {
		response["map"] = controller.MapFigure()
		response["timeseries"] = controller.TimeseriesFigure()
	}
	c.JSON(http.StatusOK, response)
}
