package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jvonk/covidmap/dash"
	"github.com/jvonk/covidmap/logmodule"
	"github.com/jvonk/covidmap/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server serves the dashboard API: the control panel metadata, per-session
// interaction controllers, and the linked map/timeseries figures.
type Server struct {
	// Server instance
	server *http.Server

	// Query service over the immutable dataset; nil when the dataset
	// could not be loaded
	query store.Query

	// why the dataset is unavailable, surfaced as a banner
	banner string

	// live interaction controllers, one per session
	sessionMu sync.RWMutex
	sessions  map[string]*dash.Controller
}

// NewServer new instance of server
func NewServer(query store.Query) *Server {
	return &Server{
		query:    query,
		sessions: make(map[string]*dash.Controller),
	}
}

// NewDegradedServer - a server with no dataset. Every data endpoint answers
// 503 with the banner; the process stays up instead of crashing at startup.
func NewDegradedServer(banner string) *Server {
	return &Server{
		banner:   banner,
		sessions: make(map[string]*dash.Controller),
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/v1")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	apiRoute.Use(s.dataGateway())

	apiRoute.GET("/controls", s.controls)
	apiRoute.GET("/series", s.series)

	sessionRoute := apiRoute.Group("/sessions")
	{
		sessionRoute.POST("", s.createSession)
	}

	sessionRoute.Use(s.recognizeSessionMiddleware())
	{
		sessionRoute.GET("/:sessionID/figures", s.figures)
		sessionRoute.PUT("/:sessionID/selection", s.updateSelection)
		sessionRoute.POST("/:sessionID/hover", s.hover)
		sessionRoute.POST("/:sessionID/click", s.click)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// dataGateway short-circuits every data endpoint while the dataset is
// unavailable, so a failed load degrades to a banner instead of a broken UI.
func (s *Server) dataGateway() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.query == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":  errorDataUnavailable,
				"banner": s.banner,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// recognizeSessionMiddleware resolves the session path parameter into a
// live controller.
func (s *Server) recognizeSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("sessionID")

		s.sessionMu.RLock()
		controller, ok := s.sessions[id]
		s.sessionMu.RUnlock()

		if !ok {
			abortWithEncoding(c, http.StatusNotFound, errorSessionNotFound)
			return
		}

		c.Set("controller", controller)
		c.Next()
	}
}

func (s *Server) controller(c *gin.Context) (*dash.Controller, bool) {
	v := c.MustGet("controller")
	controller, ok := v.(*dash.Controller)
	if !ok {
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
		return nil, false
	}
	return controller, true
}

func (s *Server) healthz(c *gin.Context) {
	status := "OK"
	if s.query == nil {
		status = "DEGRADED"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"available": s.query != nil,
		"banner":    s.banner,
		"version":   viper.GetString("server.version"),
	})
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		_ = c.Error(err)
	}
	c.JSON(code, obj)
	c.Abort()
}
