package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/metrics"
	"github.com/Sternrassler/bizsearch/pkg/quota"
	"github.com/Sternrassler/bizsearch/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// userIDHeader identifies the metered caller.
const userIDHeader = "X-User-ID"

// Searcher serves paginated searches.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string `json:"error"`
	Warning   string `json:"warning,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
	Total     *int   `json:"total,omitempty"`
}

type server struct {
	searcher       Searcher
	redis          *redis.Client
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// routes builds the gin engine.
func (s *server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/health", s.health)
	engine.GET("/ready", s.ready)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := engine.Group("/v1")
	v1.GET("/search", s.search)

	return engine
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" || path == "/metrics" {
			return
		}

		event := s.logger.Info()
		if c.Writer.Status() >= 500 {
			event = s.logger.Error()
		} else if c.Writer.Status() >= 400 {
			event = s.logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Err(c.Errors.Last().Err)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ready reports whether the quota store is reachable. Without Redis the
// server is always ready.
func (s *server) ready(c *gin.Context) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "redis unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *server) search(c *gin.Context) {
	page, err := intParam(c, "page")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	pageSize, err := intParam(c, "page_size")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	req := search.Request{
		UserID:        strings.TrimSpace(c.GetHeader(userIDHeader)),
		Query:         c.Query("q"),
		RegionHint:    c.Query("region"),
		ProviderSet:   c.Query("set"),
		ClientAddress: c.ClientIP(),
		Page:          page,
		PageSize:      pageSize,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		_ = c.Error(err)
		status, body := errorStatus(err)
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// intParam parses an optional positive integer query parameter.
func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return v, nil
}

// errorStatus maps search errors to HTTP responses.
func errorStatus(err error) (int, errorResponse) {
	var (
		qe  *quota.QuotaExceededError
		apf *search.AllProvidersFailedError
	)
	switch {
	case errors.Is(err, search.ErrInvalidQuery):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.As(err, &qe):
		return http.StatusPaymentRequired, errorResponse{
			Error:     "search quota exceeded",
			Remaining: &qe.Remaining,
			Total:     &qe.Total,
		}
	case errors.Is(err, search.ErrQuotaDeductionFailed):
		return http.StatusInternalServerError, errorResponse{Error: "search succeeded but usage could not be recorded; retry the request"}
	case errors.As(err, &apf):
		return http.StatusBadGateway, errorResponse{Error: "no provider could be reached", Warning: apf.Warning}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: "search timed out"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}
