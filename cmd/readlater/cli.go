package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Owner    string
	Articles readlater.ArticleService
	Pipeline *ingest.Pipeline

	// Exporter returns the exporter writing into dir.
	Exporter func(dir string) readlater.ArticleExporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Add    AddCmd    `cmd:"" help:"Save one or more URLs"`
	List   ListCmd   `cmd:"" help:"List saved articles"`
	Show   ShowCmd   `cmd:"" help:"Print a saved article"`
	Delete DeleteCmd `cmd:"" help:"Delete a saved article"`
	Export ExportCmd `cmd:"" help:"Write a saved article as a Markdown file"`
}

// Config holds the global settings. Every flag can also be set from the
// environment or a .env file.
type Config struct {
	DB      string `name:"db" env:"READLATER_DB" help:"SQLite database path (default ~/.readlater/readlater.db)"`
	Owner   string `env:"READLATER_OWNER" default:"local" help:"Owner the saved articles belong to"`
	Verbose bool   `short:"v" help:"Log every fetch, extraction and image request to stderr"`

	GeminiKey  string `name:"gemini-key" env:"GEMINI_API_KEY" help:"Gemini API key for AI extraction and images"`
	Model      string `env:"READLATER_MODEL" default:"gemini-2.5-flash" help:"Gemini extraction model"`
	ImageModel string `name:"image-model" env:"READLATER_IMAGE_MODEL" default:"imagen-4.0-generate-001" help:"Image generation model"`

	RapidAPIKey  string `name:"rapidapi-key" env:"RAPIDAPI_KEY" help:"RapidAPI key for the extraction API"`
	RapidAPIHost string `name:"rapidapi-host" env:"RAPIDAPI_HOST" default:"article-extractor-and-summarizer.p.rapidapi.com" help:"Extraction API host"`

	ProxyURL    string `name:"proxy-url" env:"READLATER_PROXY_URL" help:"Remote fetch proxy base URL"`
	ProxyToken  string `name:"proxy-token" env:"READLATER_PROXY_TOKEN" help:"Bearer token for the fetch proxy"`
	DirectFetch bool   `name:"direct-fetch" env:"READLATER_DIRECT_FETCH" default:"true" negatable:"" help:"Fetch pages directly when the proxy fails"`
	BrowserTLS  bool   `name:"browser-tls" help:"Use a browser TLS fingerprint for direct fetches"`

	ProxyTimeout   time.Duration `name:"proxy-timeout" default:"45s" help:"Timeout for a fetch through the proxy"`
	DirectTimeout  time.Duration `name:"direct-timeout" default:"30s" help:"Timeout for a direct fetch"`
	ExtractTimeout time.Duration `name:"extract-timeout" default:"90s" help:"Timeout for AI extraction"`
	APITimeout     time.Duration `name:"api-timeout" default:"30s" help:"Timeout for the extraction API"`
	ImageTimeout   time.Duration `name:"image-timeout" default:"60s" help:"Timeout for image generation"`
	SaveTimeout    time.Duration `name:"save-timeout" default:"10s" help:"Timeout for saving an article"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	URLs        []string `arg:"" name:"url" help:"URLs to save"`
	Concurrency int      `short:"c" default:"4" help:"Number of URLs processed at once"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Archived bool `help:"List archived articles instead"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Article ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Article ID"`
	Force bool   `help:"Confirm deletion"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID  string `arg:"" help:"Article ID"`
	Dir string `arg:"" optional:"" default:"." help:"Directory to write into"`
}
