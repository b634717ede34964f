package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The crawl limits are deliberately
// conservative: an audit should never look like a scrape to the site
// being audited.
const (
	// DefaultMaxPages is the crawl budget per site. 25 pages cover the
	// structurally interesting part of most small sites; larger audits
	// raise it via --max-pages.
	DefaultMaxPages = 25

	// DefaultRPS is the request rate. One request per second keeps the
	// crawler polite; a robots.txt Crawl-delay can slow it further but
	// never speed it up.
	DefaultRPS = 1.0

	// DefaultTimeout bounds each HTTP request including the body read.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency is the number of sites audited in parallel
	// when a list of targets is given. Each site keeps its own
	// sequential, rate-limited crawl.
	DefaultConcurrency = 3

	// DefaultUserAgent identifies seoscan in HTTP requests so site
	// operators can recognize audit traffic in their logs.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/nao1215/seoscan)"

	// AppName is used for XDG directory paths.
	AppName = "seoscan"

	// APIKeyEnv is the environment variable holding the key for the
	// optional AI summary feature.
	APIKeyEnv = "SEOSCAN_API_KEY"
)

// Config holds all options for an audit run. It is populated from CLI
// flags and the optional config file, then passed through the
// application explicitly rather than via global state.
type Config struct {
	// Targets is the list of site URLs to audit.
	Targets []string

	// MaxPages bounds the crawl budget per site.
	MaxPages int

	// RPS is the request rate per site.
	RPS float64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Concurrency is how many sites a batch audits at once.
	Concurrency int

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport selects machine-readable JSON output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory for the audit history database. Empty
	// means the XDG data directory; results are always recorded so the
	// compare command has something to work with.
	DBDir string

	// NoSave disables recording the audit in the history database.
	NoSave bool

	// AIAPIKey enables the AI summary when non-empty. It is normally
	// taken from the SEOSCAN_API_KEY environment variable, never from
	// a flag, so it cannot leak into shell history.
	AIAPIKey string

	// AIBaseURL overrides the OpenAI-compatible endpoint.
	AIBaseURL string

	// AIModel overrides the model used for summaries.
	AIModel string

	// ConfigFilePath is an explicit config file path. Empty means
	// search the standard locations.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config with default values. The constructor
// doubles as documentation of the defaults, since most are non-zero.
func NewConfig() *Config {
	return &Config{
		MaxPages:    DefaultMaxPages,
		RPS:         DefaultRPS,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		UserAgent:   DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for seoscan, where the
// audit history database lives.
// On Linux: ~/.local/share/seoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoscan.
// On Linux: ~/.config/seoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seoscan.
// On Linux: ~/.cache/seoscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration, returning the first problem
// found. It runs once after flag parsing, before any crawling.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.RPS <= 0 {
		return ErrInvalidRate
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
