// Package api exposes the catalog over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwantia/tomodb/pkg/catalog"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/mwantia/tomodb/pkg/draft"
	"github.com/mwantia/tomodb/pkg/form"
	"github.com/mwantia/tomodb/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// HealthChecker reports whether the metadata store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Options struct {
	Catalog *catalog.Service
	Drafts  draft.Repository
	Health  HealthChecker
	Metrics *Metrics
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   log.LoggerService
}

type Server struct {
	catalog *catalog.Service
	drafts  draft.Repository
	health  HealthChecker
	metrics *Metrics
	log     log.LoggerService
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}

	s := &Server{
		catalog: opts.Catalog,
		drafts:  opts.Drafts,
		health:  opts.Health,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.logRequests())
	if s.metrics != nil {
		router.Use(s.metrics.middleware())
	}

	router.GET("/healthz", s.healthz)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	s.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func (s *Server) RegisterRoutes(v1 *gin.RouterGroup) {
	datasets := v1.Group("/datasets")
	{
		datasets.GET("", s.listDatasets)
		datasets.POST("", s.createDataset)
		datasets.GET("/next-id", s.nextID)
		datasets.GET("/:id", s.getDataset)
	}

	filters := v1.Group("/filters")
	{
		filters.GET("/options", s.filterOptions)
		filters.GET("/saved", s.listSavedFilters)
		filters.POST("/saved", s.createSavedFilter)
		filters.GET("/saved/:name", s.getSavedFilter)
		filters.DELETE("/saved/:name", s.deleteSavedFilter)
	}

	drafts := v1.Group("/drafts")
	{
		drafts.GET("/:key", s.loadDraft)
		drafts.PUT("/:key", s.saveDraft)
		drafts.DELETE("/:key", s.clearDraft)
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps domain errors onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	var verrs form.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, catalog.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		s.log.Error("Request %s failed: %v", c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
