package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/fs"
	"github.com/fwojciec/readlater/gemini"
	"github.com/fwojciec/readlater/goquery"
	rlhttp "github.com/fwojciec/readlater/http"
	"github.com/fwojciec/readlater/ingest"
	"github.com/fwojciec/readlater/markdown"
	"github.com/fwojciec/readlater/rapidapi"
	"github.com/fwojciec/readlater/readability"
	rlslog "github.com/fwojciec/readlater/slog"
	"github.com/fwojciec/readlater/sqlite"
	"github.com/fwojciec/readlater/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor READLATER_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. Built from the configuration when nil.
	Articles readlater.ArticleService
	Pipeline *ingest.Pipeline
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:      ctx,
		Stdout:   stdout,
		Stderr:   stderr,
		Exporter: newExporter,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("readlater"),
		kong.Description("Save web articles as clean Markdown."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'readlater --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	deps.Owner = cli.Owner

	logger := newLogger(stderr, cli.Verbose)

	if m.Articles == nil {
		path := cli.DB
		if path == "" {
			path = m.DBPath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set READLATER_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		defer m.Close()
		m.Articles = sqlite.NewArticleService(m.DB)
	}
	deps.Articles = m.Articles

	if strings.HasPrefix(kongCtx.Command(), "add") {
		if m.Pipeline == nil {
			pipeline, closeFn := newPipeline(cli.Config, m.Articles, logger)
			defer closeFn()
			m.Pipeline = pipeline
		}
		deps.Pipeline = m.Pipeline
	}

	return kongCtx.Run(deps)
}

// newLogger writes text records to w. Without verbose only warnings and
// errors are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPipeline wires the ingestion pipeline from cfg. The returned function
// releases the direct fetcher's connections.
func newPipeline(cfg Config, articles readlater.ArticleService, logger *slog.Logger) (*ingest.Pipeline, func()) {
	normalizer := markdown.NewNormalizer()
	closeFn := func() {}

	fetcher := func(f readlater.Fetcher, name string) readlater.Fetcher {
		if cfg.Verbose {
			return rlslog.NewLoggingFetcher(f, name, logger)
		}
		return f
	}

	var links []ingest.ChainLink
	if cfg.ProxyURL != "" {
		proxy := rlhttp.NewProxyFetcher(cfg.ProxyURL,
			rlhttp.WithProxyTimeout(cfg.ProxyTimeout),
			rlhttp.WithProxyToken(cfg.ProxyToken),
		)
		links = append(links, ingest.ChainLink{Name: "proxy", Fetcher: fetcher(proxy, "proxy"), Timeout: cfg.ProxyTimeout})
	}
	if cfg.DirectFetch {
		opts := []rlhttp.Option{
			rlhttp.WithTimeout(cfg.DirectTimeout),
			rlhttp.WithLimiter(ingest.NewDomainLimiter(1.0)),
		}
		if cfg.BrowserTLS {
			opts = append(opts, rlhttp.WithBrowserTLS())
		}
		direct := rlhttp.NewFetcher(opts...)
		closeFn = func() { _ = direct.Close() }
		links = append(links, ingest.ChainLink{Name: "direct", Fetcher: fetcher(direct, "direct"), Timeout: cfg.DirectTimeout})
	}
	chain := ingest.NewSharedFetcher(ingest.NewFetchChain(links...))

	var strategies []readlater.Strategy
	var generator readlater.ImageGenerator
	if cfg.GeminiKey != "" {
		client := gemini.NewClient(cfg.GeminiKey)
		opts := []gemini.Option{
			gemini.WithModel(cfg.Model),
			gemini.WithTimeout(cfg.ExtractTimeout),
		}
		if counter, err := gemini.NewTokenCounter(cfg.Model); err != nil {
			logger.Warn("token counting disabled", "model", cfg.Model, "err", err)
		} else {
			opts = append(opts, gemini.WithTokenBudget(counter, promptTokenBudget))
		}
		strategies = append(strategies, gemini.NewExtractor(client, chain, opts...))

		generator = gemini.NewImageGenerator(client,
			gemini.WithImageModel(cfg.ImageModel),
			gemini.WithImageTimeout(cfg.ImageTimeout),
		)
		if cfg.Verbose {
			generator = rlslog.NewLoggingImageGenerator(generator, logger)
		}
	}
	if cfg.RapidAPIKey != "" {
		strategies = append(strategies, rapidapi.NewStrategy(cfg.RapidAPIKey, normalizer,
			rapidapi.WithHost(cfg.RapidAPIHost),
			rapidapi.WithTimeout(cfg.APITimeout),
		))
	}
	strategies = append(strategies, &ingest.LocalStrategy{
		Fetcher: chain,
		Scraper: goquery.NewScraper(),
		Extractors: []readlater.Extractor{
			trafilatura.NewExtractor(),
			readability.NewExtractor(),
		},
		Normalizer: normalizer,
	})

	if cfg.Verbose {
		for i, s := range strategies {
			strategies[i] = rlslog.NewLoggingStrategy(s, logger)
		}
	}

	return &ingest.Pipeline{
		Extractor: ingest.NewCascade(normalizer, strategies...),
		Images:    &ingest.ImageResolver{Generator: generator},
		Assembler: &ingest.Assembler{
			Articles:   articles,
			Normalizer: normalizer,
			Timeout:    cfg.SaveTimeout,
		},
	}, closeFn
}

// promptTokenBudget caps the extraction prompt well below the model's
// context window.
const promptTokenBudget = 200_000

func newExporter(dir string) readlater.ArticleExporter {
	return fs.NewWriter(dir)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "readlater.db"
	}
	return filepath.Join(home, ".readlater", "readlater.db")
}
