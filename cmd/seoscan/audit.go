package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/ai"
	"github.com/nao1215/seoscan/internal/audit"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/log"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/report"
	"github.com/nao1215/seoscan/internal/urlutil"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Audit a website for SEO issues",
		Long: `Audit crawls a website and checks every page for SEO issues.

The crawl respects robots.txt rules and Crawl-delay, stays on the
seed URL's host, and is rate limited. Each fetched page is checked
for:
- On-page issues (titles, meta descriptions, headings, images)
- Technical issues (HTTPS, canonical tags, robots directives)
- Content issues (thin content, duplication, readability)
- Performance issues (page weight, compression, render blocking)

Results are recorded in a local history database so later runs can be
compared with 'seoscan compare'.

Examples:
  # Audit a single site
  seoscan audit https://example.com

  # Audit multiple sites concurrently
  seoscan audit https://example.com https://example.org

  # Raise the crawl budget and output JSON
  seoscan audit --max-pages 100 --json https://example.com

  # Write a Markdown report to a file
  seoscan audit --markdown -o report.md https://example.com

  # Add an AI-generated executive summary (needs SEOSCAN_API_KEY)
  seoscan audit --ai https://example.com

Configuration file (.seoscan) example:
  defaults:
    maxPages: 50
  sites:
    example.com:
      rps: 0.5
      ignorePatterns:
        - "/cart/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().Float64P("rate", "r", config.DefaultRPS,
		"Requests per second (robots.txt Crawl-delay can lower this)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Batch auditing flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of sites audited in parallel")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record the audit in the history database")

	// AI summary flags
	cmd.Flags().Bool("ai", false,
		"Generate an AI summary (requires "+config.APIKeyEnv+")")
	cmd.Flags().String("ai-model", "",
		"Model for the AI summary (default: provider default)")
	cmd.Flags().String("ai-base-url", "",
		"OpenAI-compatible endpoint for the AI summary")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	aiEnabled, err := cmd.Flags().GetBool("ai")
	if err != nil {
		return err
	}

	return runAudit(ctx, cfg, aiEnabled, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.RPS, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations from config file.
	// An explicitly specified path must exist; otherwise a missing file
	// silently means no overrides.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoSave, err = cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	// AI settings. The key comes from the environment only so it cannot
	// leak into shell history.
	cfg.AIAPIKey = os.Getenv(config.APIKeyEnv)
	cfg.AIModel, err = cmd.Flags().GetString("ai-model")
	if err != nil {
		return nil, err
	}
	cfg.AIBaseURL, err = cmd.Flags().GetString("ai-base-url")
	if err != nil {
		return nil, err
	}

	// Audit history lives in the XDG data directory.
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the site URLs
	cfg.Targets = args

	return cfg, nil
}

// runAudit executes the audit.
func runAudit(ctx context.Context, cfg *config.Config, aiEnabled bool, logger *slog.Logger) error {
	logger.Info("starting audit",
		"targets", cfg.Targets,
		"maxPages", cfg.MaxPages,
		"rps", cfg.RPS,
		"concurrency", cfg.Concurrency,
	)

	// Validate and normalize all target URLs before any network work.
	// Validation rejects loopback and private addresses, keeping the
	// crawler pointed at the public web.
	for i, target := range cfg.Targets {
		if err := urlutil.Validate(target); err != nil {
			return fmt.Errorf("invalid target %q: %w", target, err)
		}
		normalized, err := urlutil.Normalize(target)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", target, err)
		}
		cfg.Targets[i] = normalized
	}

	// Open the history database unless recording is disabled
	var db *database.AuditDB
	if !cfg.NoSave {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Create the AI summarizer if requested
	var aiClient *ai.Client
	if aiEnabled {
		var err error
		aiClient, err = ai.NewClient(ai.Options{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
		})
		if err != nil {
			return fmt.Errorf("AI summary unavailable (set %s): %w", config.APIKeyEnv, err)
		}
	}

	// Audit multiple targets concurrently when it helps
	if len(cfg.Targets) > 1 && cfg.Concurrency > 1 {
		return runBatchAudit(ctx, cfg, db, aiClient, logger)
	}
	return runSequentialAudit(ctx, cfg, db, aiClient, logger)
}

// auditOptionsForTarget merges global settings with per-site overrides
// from the config file.
func auditOptionsForTarget(cfg *config.Config, target string) audit.Options {
	opts := audit.Options{
		MaxPages:  cfg.MaxPages,
		RPS:       cfg.RPS,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	}

	if cfg.SiteConfigs == nil {
		return opts
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return opts
	}

	siteConfig := cfg.SiteConfigs.GetSiteConfig(parsed.Hostname())
	if siteConfig.MaxPages > 0 {
		opts.MaxPages = siteConfig.MaxPages
	}
	if siteConfig.RPS > 0 {
		opts.RPS = siteConfig.RPS
	}
	if siteConfig.UserAgent != "" {
		opts.UserAgent = siteConfig.UserAgent
	}
	return opts
}

// runSequentialAudit audits targets one at a time.
func runSequentialAudit(ctx context.Context, cfg *config.Config, db *database.AuditDB, aiClient *ai.Client, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		auditor, err := audit.New(auditOptionsForTarget(cfg, target), logger)
		if err != nil {
			return fmt.Errorf("failed to create auditor: %w", err)
		}

		fmt.Printf("Auditing %s...\n", target)
		startTime := time.Now()

		result, err := auditor.Run(ctx, target)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.Error("audit failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := finishAudit(ctx, cfg, db, aiClient, result, logger); err != nil {
			logger.Error("failed to finish audit", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchAudit audits multiple targets concurrently.
func runBatchAudit(ctx context.Context, cfg *config.Config, db *database.AuditDB, aiClient *ai.Client, logger *slog.Logger) error {
	fmt.Printf("Starting batch audit of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.Concurrency)

	// Batch mode shares one Options across targets, so per-site
	// overrides from the config file are ignored.
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch mode ignores site-specific configs; use --concurrency 1 to apply them",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --concurrency 1 to apply per-site settings.\n\n")
	}

	startTime := time.Now()

	opts := audit.Options{
		MaxPages:  cfg.MaxPages,
		RPS:       cfg.RPS,
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
	}
	results := audit.RunBatch(ctx, cfg.Targets, opts, cfg.Concurrency, logger)

	var failed int
	for i, br := range results {
		if br.Err != nil {
			failed++
			logger.Error("audit failed", "target", br.Site, "error", br.Err)
			fmt.Fprintf(os.Stderr, "Audit error for %s: %v\n", br.Site, br.Err)
			continue
		}

		fmt.Printf("[%d/%d] Audit completed: %s\n", i+1, len(results), br.Site)
		if err := finishAudit(ctx, cfg, db, aiClient, br.Result, logger); err != nil {
			logger.Error("failed to finish audit", "target", br.Site, "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch audit completed in %s (%d/%d succeeded)\n",
		elapsed.Round(time.Millisecond), len(results)-failed, len(results))

	if failed == len(results) {
		return errors.New("all audits failed")
	}
	return nil
}

// finishAudit outputs, summarizes, and records one audit result.
func finishAudit(ctx context.Context, cfg *config.Config, db *database.AuditDB, aiClient *ai.Client, result *model.AuditResult, logger *slog.Logger) error {
	if err := outputReport(cfg, result); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if aiClient != nil {
		printAISummary(ctx, aiClient, result, logger)
	}

	return saveAuditResult(ctx, db, result, logger)
}

// outputReport outputs the audit result in the requested format.
func outputReport(cfg *config.Config, result *model.AuditResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}

// printAISummary generates and prints the AI executive summary.
// AI failures never fail the audit; the report already went out.
func printAISummary(ctx context.Context, client *ai.Client, result *model.AuditResult, logger *slog.Logger) {
	fmt.Println("Generating AI summary...")

	summary, err := ai.NewSummarizer(client).Summarize(ctx, result)
	if err != nil {
		logger.Error("AI summary failed", "site", result.Site, "error", err)
		fmt.Fprintf(os.Stderr, "AI summary failed: %v\n", err)
		return
	}

	fmt.Printf("\nAI SUMMARY (%s)\n\n", summary.Model)
	fmt.Printf("%s\n", summary.Summary)

	if len(summary.TopIssues) > 0 {
		fmt.Println("\nTop issues:")
		for _, issue := range summary.TopIssues {
			fmt.Printf("  * %s: %s\n", issue.Type, issue.WhyItMatters)
		}
	}
	if len(summary.RecommendedActions) > 0 {
		fmt.Println("\nRecommended actions:")
		for i, action := range summary.RecommendedActions {
			fmt.Printf("  %d. %s (impact: %s, effort: %s)\n", i+1, action.Action, action.Impact, action.Effort)
		}
	}
	if len(summary.QuickWins) > 0 {
		fmt.Println("\nQuick wins:")
		for _, win := range summary.QuickWins {
			fmt.Printf("  * %s\n", win)
		}
	}

	insights := ai.AnalyzeWithSpecialists(ctx, client, result, logger)
	for _, insight := range insights {
		fmt.Printf("\n[%s] (%d issues)\n", insight.Specialist, insight.IssueCount)
		for _, finding := range insight.Findings {
			fmt.Printf("  - %s\n", finding)
		}
	}
	fmt.Println()
}

// saveAuditResult records the audit in the history database.
// If db is nil, this function is a no-op.
func saveAuditResult(ctx context.Context, db *database.AuditDB, result *model.AuditResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveAuditResult(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save audit result: %w", err)
	}

	logger.Info("audit result saved", "site", result.Site, "id", id)
	return nil
}
