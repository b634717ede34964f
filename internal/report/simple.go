package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// SimpleWriter renders plain-text reports for terminal display.
// Plain ASCII rather than ANSI colors: it works in every terminal and
// pipes cleanly into files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether severities with no issues are shown.
	showEmpty bool

	// verbose adds per-issue details to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty severity sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables per-issue detail lines.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(result *model.AuditResult) (int, error) {
	return w.WriteSummary(model.NewSummary(result))
}

// WriteSummary implements Writer.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeScorecard(&sb, summary)
	w.writeIssues(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SEOSCAN AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:          %s\n", summary.Site)
	fmt.Fprintf(sb, "Audit Date:    %s\n", summary.AuditedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Scanned: %d\n", summary.PagesScanned)
	sb.WriteString("\n")
}

// writeScorecard writes the health score and severity summary.
func (w *SimpleWriter) writeScorecard(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SITE HEALTH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  SCORE:  %.1f / 100 (grade %s)\n\n", summary.HealthScore, summary.HealthGrade)

	fmt.Fprintf(sb, "  HIGH:   %d\n", summary.HighCount)
	fmt.Fprintf(sb, "  MEDIUM: %d\n", summary.MediumCount)
	fmt.Fprintf(sb, "  LOW:    %d\n", summary.LowCount)
	fmt.Fprintf(sb, "  INFO:   %d\n", summary.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:  %d issues\n", summary.TotalIssues())
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by severity, highest first.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, summary *model.Summary) {
	if !summary.HasIssues() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	severities := []model.Severity{
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}
	for _, severity := range severities {
		issues := summary.IssuesBySeverity(severity)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}
		w.writeIssuesForSeverity(sb, severity, issues)
	}
}

// writeIssuesForSeverity writes one severity section.
func (w *SimpleWriter) writeIssuesForSeverity(sb *strings.Builder, severity model.Severity, issues []model.Issue) {
	fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), strings.ToUpper(string(severity)))

	if len(issues) == 0 {
		sb.WriteString("  No issues\n\n")
		return
	}

	for _, issue := range issues {
		fmt.Fprintf(sb, "  * %s\n", issue.Type)
		fmt.Fprintf(sb, "    URL: %s\n", issue.URL)
		if w.verbose && issue.Detail != "" {
			fmt.Fprintf(sb, "    Detail: %s\n", issue.Detail)
		}
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual marker for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seoscan\n")
	sb.WriteString("https://github.com/nao1215/seoscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
