// Package gin serves the remote fetch proxy over HTTP.
//
// The proxy exposes GET /fetch?url=<url> and answers with a JSON
// readlater.FetchResult. It is the server side of http.ProxyFetcher.
package gin

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/readlater"
	"github.com/gin-gonic/gin"
)

// DefaultFetchTimeout bounds a single proxied fetch.
const DefaultFetchTimeout = 30 * time.Second

// shutdownTimeout is how long ListenAndServe waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server is the fetch proxy.
type Server struct {
	// Fetcher retrieves origin pages. Required.
	Fetcher readlater.Fetcher

	// Token, when set, is required as a bearer token on /fetch.
	Token string

	// Timeout bounds each fetch. Defaults to DefaultFetchTimeout.
	Timeout time.Duration

	// Logger receives one record per request. Defaults to slog.Default().
	Logger *slog.Logger
}

// Handler builds the gin engine serving the proxy routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/fetch", s.authorize(), s.handleFetch)
	return r
}

// ListenAndServe serves the proxy on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleFetch(c *gin.Context) {
	target, err := readlater.NewTarget(c.Query("url"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": readlater.ErrorMessage(err)})
		return
	}
	if s.Fetcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no fetcher configured"})
		return
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	result, err := s.Fetcher.Fetch(ctx, target.URL)
	if err != nil {
		c.Error(err)
		body := gin.H{"error": err.Error()}
		if status := readlater.ErrorStatus(err); status != 0 {
			body["status"] = status
		}
		c.JSON(http.StatusBadGateway, body)
		return
	}

	if result.Status == 0 {
		result.Status = http.StatusOK
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Token == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if u := c.Query("url"); u != "" {
			attrs = append(attrs, "url", u)
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, "err", err.Err)
			logger.Warn("request", attrs...)
			return
		}
		logger.Info("request", attrs...)
	}
}
