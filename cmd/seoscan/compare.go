package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/urlutil"
)

// Constants for health direction and summary messages.
const (
	healthDirectionWorsened  = "worsened"
	healthDirectionImproved  = "improved"
	healthDirectionUnchanged = "unchanged"
	noIssuesMessage          = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares audit results with historical data stored in
// the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare audit results with historical data",
		Long: `Compare displays differences between the current and previous audit results.

This command retrieves historical audit data from the database and shows:
- New issues that appeared since the last audit
- Resolved issues that are no longer present
- The change in the site's health score

The comparison requires at least two audits in the database for the
specified site. Use 'seoscan audit' to run audits and record results.

Examples:
  # Compare latest two audits for a site
  seoscan compare https://example.com

  # List all audit history for a site
  seoscan compare --list https://example.com

  # Compare with a specific historical audit by ID
  seoscan compare --with-audit-id 5 https://example.com

  # Compare audits since a specific date
  seoscan compare --since "2026-01-01" https://example.com

  # Output comparison in JSON format
  seoscan compare --json https://example.com

  # List all audited sites in the database
  seoscan compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List audit history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all audited sites in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-audit-id", "i", 0,
		"Compare with a specific audit by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first audit after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no site)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so validation
	// failures never contend for the database lock
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site URL is required (use --list-sites to see available sites)")
		}

		site, err = urlutil.Normalize(args[0])
		if err != nil {
			return fmt.Errorf("invalid site URL: %w", err)
		}
	}

	// History lives in the XDG data directory
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()

	// Handle --list-sites flag
	if listSites {
		return listAuditedSites(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listAuditHistory(ctx, db, site)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	withAuditID, err := cmd.Flags().GetInt64("with-audit-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, site, withAuditID, sinceDate, jsonOutput)
}

// listAuditedSites lists all sites that have audit records in the database.
func listAuditedSites(ctx context.Context, db *database.AuditDB) error {
	sites, err := db.ListAuditedSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No audited sites found in the database.")
		fmt.Println("\nUse 'seoscan audit <url>' to audit a site.")
		return nil
	}

	fmt.Printf("Audited sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'seoscan compare --list <url>' to see audit history for a site.")

	return nil
}

// listAuditHistory lists all audit records for a specific site.
func listAuditHistory(ctx context.Context, db *database.AuditDB, site string) error {
	history, err := db.GetAuditHistory(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No audit history found for %s\n", site)
		fmt.Println("\nUse 'seoscan audit' to audit this site.")
		return nil
	}

	fmt.Printf("Audit history for %s (%d audits):\n\n", site, len(history))
	fmt.Printf("  %-6s  %-20s  %-6s  %-6s  %s\n", "ID", "Date", "Pages", "Score", "Issue Summary")
	fmt.Println("  " + strings.Repeat("-", 66))

	for _, meta := range history {
		fmt.Printf("  %-6d  %-20s  %-6d  %-6s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PagesScanned,
			fmt.Sprintf("%.0f/%s", meta.HealthScore, meta.HealthGrade),
			formatIssueSummary(meta.SeveritySummary),
		)
	}

	fmt.Println("\nUse 'seoscan compare <url>' to compare the latest two audits.")
	fmt.Println("Use 'seoscan compare --with-audit-id <id> <url>' to compare with a specific audit.")

	return nil
}

// formatIssueSummary formats the severity summary map into a
// human-readable string.
func formatIssueSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between audit results.
func runComparison(ctx context.Context, db *database.AuditDB, site string, withAuditID int64, sinceDate string, jsonOutput bool) error {
	history, err := db.GetAuditHistory(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get audit history: %w", err)
	}

	if len(history) == 0 {
		return fmt.Errorf("no audit history found for %s", site)
	}

	if len(history) < 2 && withAuditID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 audits are required for comparison (found %d)", len(history))
	}

	// The latest audit is always the current one
	current, err := db.GetAuditByID(ctx, history[0].ID)
	if err != nil {
		return fmt.Errorf("failed to get latest audit: %w", err)
	}
	if current == nil {
		return fmt.Errorf("latest audit for %s not found", site)
	}

	previousID, err := selectPreviousAudit(history, withAuditID, sinceDate)
	if err != nil {
		return err
	}

	previous, err := db.GetAuditByID(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to get audit with ID %d: %w", previousID, err)
	}
	if previous == nil {
		return fmt.Errorf("audit with ID %d not found", previousID)
	}
	if previous.Site != site {
		return fmt.Errorf("audit ID %d belongs to %s, not %s", previousID, previous.Site, site)
	}

	comparison := compareResults(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// selectPreviousAudit picks the audit to compare against: an explicit
// ID, the oldest audit at or after --since, or the second-latest.
func selectPreviousAudit(history []database.AuditMetadata, withAuditID int64, sinceDate string) (int64, error) {
	if withAuditID > 0 {
		return withAuditID, nil
	}

	if sinceDate != "" {
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return 0, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// History is sorted newest first, so walk backwards to find the
		// oldest audit at or after the date
		var selected int64
		for i := len(history) - 1; i >= 0; i-- {
			meta := history[i]
			if meta.Timestamp.After(parsedDate) || meta.Timestamp.Equal(parsedDate) {
				selected = meta.ID
				break
			}
		}
		if selected == 0 {
			return 0, fmt.Errorf("no audits found since %s", sinceDate)
		}
		if selected == history[0].ID {
			return 0, fmt.Errorf("only one audit found since %s; at least 2 audits are required for comparison", sinceDate)
		}
		return selected, nil
	}

	// Default: compare with the previous audit
	return history[1].ID, nil
}

// ComparisonResult holds the result of comparing two audits.
type ComparisonResult struct {
	// Site is the audited site.
	Site string `json:"site"`

	// PreviousAudit contains metadata about the previous audit.
	PreviousAudit AuditSnapshot `json:"previous_audit"`

	// CurrentAudit contains metadata about the current audit.
	CurrentAudit AuditSnapshot `json:"current_audit"`

	// NewIssues are issues present now but not before.
	NewIssues []model.Issue `json:"new_issues,omitempty"`

	// ResolvedIssues are issues present before but not now.
	ResolvedIssues []model.Issue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues present in both audits.
	UnchangedCount int `json:"unchanged_count"`

	// HealthChange describes the overall change in site health.
	HealthChange HealthChange `json:"health_change"`
}

// AuditSnapshot contains one audit's key numbers for comparison display.
type AuditSnapshot struct {
	// AuditedAt is when the audit was performed.
	AuditedAt time.Time `json:"audited_at"`

	// PagesScanned is the crawl size.
	PagesScanned int `json:"pages_scanned"`

	// HealthScore and HealthGrade are the overall outcome.
	HealthScore float64 `json:"health_score"`
	HealthGrade string  `json:"health_grade"`

	// TotalIssues is the total number of issues found.
	TotalIssues int `json:"total_issues"`

	// Per-severity counts.
	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`
	InfoCount   int `json:"info_count"`
}

// HealthChange describes the change in site health between audits.
type HealthChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// ScoreDelta is the change in health score.
	ScoreDelta float64 `json:"score_delta"`

	// Per-severity count deltas.
	HighDelta   int `json:"high_delta"`
	MediumDelta int `json:"medium_delta"`
	LowDelta    int `json:"low_delta"`
	InfoDelta   int `json:"info_delta"`
}

// snapshotOf extracts the comparison numbers from an audit result.
func snapshotOf(result *model.AuditResult) AuditSnapshot {
	return AuditSnapshot{
		AuditedAt:    result.StartedAt,
		PagesScanned: result.PagesScanned,
		HealthScore:  result.HealthScore(),
		HealthGrade:  result.HealthGrade(),
		TotalIssues:  len(result.Issues),
		HighCount:    result.CountBySeverity(model.SeverityHigh),
		MediumCount:  result.CountBySeverity(model.SeverityMedium),
		LowCount:     result.CountBySeverity(model.SeverityLow),
		InfoCount:    result.CountBySeverity(model.SeverityInfo),
	}
}

// compareResults compares two audits and generates a comparison result.
func compareResults(previous, current *model.AuditResult) *ComparisonResult {
	result := &ComparisonResult{
		Site:          current.Site,
		PreviousAudit: snapshotOf(previous),
		CurrentAudit:  snapshotOf(current),
	}

	// Build issue maps for comparison
	previousIssues := make(map[string]model.Issue)
	currentIssues := make(map[string]model.Issue)
	for _, issue := range previous.Issues {
		previousIssues[issueKey(issue)] = issue
	}
	for _, issue := range current.Issues {
		currentIssues[issueKey(issue)] = issue
	}

	// New issues preserve the current audit's order
	for _, issue := range current.Issues {
		if _, exists := previousIssues[issueKey(issue)]; !exists {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}

	// Resolved issues preserve the previous audit's order
	for _, issue := range previous.Issues {
		if _, exists := currentIssues[issueKey(issue)]; exists {
			result.UnchangedCount++
		} else {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		}
	}

	result.HealthChange = calculateHealthChange(result.PreviousAudit, result.CurrentAudit)
	return result
}

// issueKey generates a unique key for an issue for comparison purposes.
// Detail is excluded so a changed word count does not read as a new
// issue.
func issueKey(issue model.Issue) string {
	return issue.Type + "|" + issue.URL
}

// calculateHealthChange calculates the change in site health between
// two audits.
func calculateHealthChange(previous, current AuditSnapshot) HealthChange {
	change := HealthChange{
		ScoreDelta:  current.HealthScore - previous.HealthScore,
		HighDelta:   current.HighCount - previous.HighCount,
		MediumDelta: current.MediumCount - previous.MediumCount,
		LowDelta:    current.LowCount - previous.LowCount,
		InfoDelta:   current.InfoCount - previous.InfoCount,
	}

	switch {
	case change.ScoreDelta > 0:
		change.Direction = healthDirectionImproved
	case change.ScoreDelta < 0:
		change.Direction = healthDirectionWorsened
	default:
		change.Direction = healthDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable
// text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Audit Comparison: %s\n", result.Site)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nHealth Status: %s\n", formatHealthDirection(result.HealthChange.Direction))
	fmt.Printf("Health Score:  %.1f (%s) -> %.1f (%s)  [%s]\n",
		result.PreviousAudit.HealthScore, result.PreviousAudit.HealthGrade,
		result.CurrentAudit.HealthScore, result.CurrentAudit.HealthGrade,
		formatScoreDelta(result.HealthChange.ScoreDelta))

	fmt.Printf("\nPrevious audit: %s (%d pages)\n",
		result.PreviousAudit.AuditedAt.Format("2006-01-02 15:04:05"),
		result.PreviousAudit.PagesScanned)
	fmt.Printf("Current audit:  %s (%d pages)\n",
		result.CurrentAudit.AuditedAt.Format("2006-01-02 15:04:05"),
		result.CurrentAudit.PagesScanned)

	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousAudit.HighCount, result.CurrentAudit.HighCount,
		formatDelta(result.HealthChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousAudit.MediumCount, result.CurrentAudit.MediumCount,
		formatDelta(result.HealthChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousAudit.LowCount, result.CurrentAudit.LowCount,
		formatDelta(result.HealthChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousAudit.InfoCount, result.CurrentAudit.InfoCount,
		formatDelta(result.HealthChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousAudit.TotalIssues, result.CurrentAudit.TotalIssues,
		formatDelta(result.CurrentAudit.TotalIssues-result.PreviousAudit.TotalIssues))

	if len(result.NewIssues) > 0 {
		fmt.Printf("\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("  [+] [%s] %s\n", issue.Severity, issue.Type)
			fmt.Printf("      URL: %s\n", issue.URL)
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("  [-] [%s] %s\n", issue.Severity, issue.Type)
			fmt.Printf("      URL: %s\n", issue.URL)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

// formatHealthDirection formats the health change direction for display.
func formatHealthDirection(direction string) string {
	switch direction {
	case healthDirectionImproved:
		return "IMPROVED (score increased)"
	case healthDirectionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatScoreDelta formats a score delta with sign for display.
func formatScoreDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.1f", delta)
	}
	return fmt.Sprintf("%.1f", delta)
}
