// Command fetchproxy serves GET /fetch?url= for readlater clients that
// cannot reach origin sites directly.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/readlater"
	rlgin "github.com/fwojciec/readlater/gin"
	rlhttp "github.com/fwojciec/readlater/http"
	"github.com/fwojciec/readlater/ingest"
	rlslog "github.com/fwojciec/readlater/slog"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Config holds the proxy settings.
type Config struct {
	Addr         string        `env:"FETCHPROXY_ADDR" default:":8787" help:"Listen address"`
	Token        string        `env:"FETCHPROXY_TOKEN" help:"Bearer token required from clients"`
	Timeout      time.Duration `default:"30s" help:"Timeout for a single origin fetch"`
	RateLimit    float64       `name:"rate-limit" default:"2" help:"Requests per second allowed per origin domain"`
	BrowserTLS   bool          `name:"browser-tls" help:"Use a browser TLS fingerprint"`
	AllowPrivate bool          `name:"allow-private" help:"Allow fetching loopback and private addresses"`
	Verbose      bool          `short:"v" help:"Log every origin fetch"`
}

// Run parses args and serves until ctx is cancelled.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg Config
	parser, err := kong.New(&cfg,
		kong.Name("fetchproxy"),
		kong.Description("Fetch proxy for readlater."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}
	for _, arg := range args {
		if arg == "--help" || arg == "-h" || arg == "help" {
			_, _ = parser.Parse([]string{"--help"})
			return nil
		}
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	logger := slog.New(slog.NewTextHandler(stderr, nil))
	server := NewServer(cfg, logger)

	logger.Info("listening", "addr", cfg.Addr)
	return server.ListenAndServe(ctx, cfg.Addr)
}

// NewServer builds the proxy server described by cfg.
func NewServer(cfg Config, logger *slog.Logger) *rlgin.Server {
	opts := []rlhttp.Option{
		rlhttp.WithTimeout(cfg.Timeout),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, rlhttp.WithLimiter(ingest.NewDomainLimiter(cfg.RateLimit)))
	}
	if cfg.BrowserTLS {
		opts = append(opts, rlhttp.WithBrowserTLS())
	}
	if !cfg.AllowPrivate {
		opts = append(opts, rlhttp.WithPrivateNetworkBlocked())
	}

	var fetcher readlater.Fetcher = rlhttp.NewFetcher(opts...)
	if cfg.Verbose {
		fetcher = rlslog.NewLoggingFetcher(fetcher, "origin", logger)
	}

	return &rlgin.Server{
		Fetcher: fetcher,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}
}
