package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/seoscan/internal/model"
)

// MarkdownWriter renders audits as GitHub Flavored Markdown, for
// sharing in issues, wikis, and pull requests.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(result *model.AuditResult) (int, error) {
	return w.WriteSummary(model.NewSummary(result))
}

// WriteSummary implements Writer.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeScorecard(md, summary)
	w.writeIssues(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + summary.Site + "`"},
			{"Audit Date", summary.AuditedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Scanned", strconv.Itoa(summary.PagesScanned)},
			{"Health Score", fmt.Sprintf("%.1f / 100", summary.HealthScore)},
			{"Grade", gradeBadge(summary.HealthGrade)},
		},
	})
	md.PlainText("")
}

// gradeBadge decorates the letter grade.
func gradeBadge(grade string) string {
	switch grade {
	case "A":
		return "🟢 A"
	case "B":
		return "🟢 B"
	case "C":
		return "🟡 C"
	case "D":
		return "🟠 D"
	default:
		return "🔴 " + grade
	}
}

// writeScorecard writes the severity summary with a pie chart and an
// alert keyed to the worst severity present.
func (w *MarkdownWriter) writeScorecard(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🟠 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	if summary.HasIssues() {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of the severity spread.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(summary.HighCount))
	}
	if summary.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(summary.MediumCount))
	}
	if summary.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(summary.LowCount))
	}
	if summary.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(summary.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes a GFM alert matching the worst severity present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.HighCount > 0:
		md.Warningf(
			"High severity issues detected. %d issue(s) are hurting this site's search ranking.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"Medium severity issues found. %d issue(s) should be addressed.",
			summary.MediumCount,
		)
	case summary.TotalIssues() > 0:
		md.Note("Only low severity and informational issues detected.")
	default:
		md.Tip("No SEO issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Issues")
	md.PlainText("")

	if !summary.HasIssues() {
		md.PlainText("No issues found.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}
	for _, sev := range severities {
		issues := summary.IssuesBySeverity(sev.level)
		if len(issues) == 0 {
			continue
		}
		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIssuesTable(md, issues)
	}
}

// writeIssuesTable writes one severity section's issue table.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		detail := issue.Detail
		if detail == "" {
			detail = "-"
		}
		rows[i] = []string{
			"`" + issue.Type + "`",
			truncateString(issue.URL, 50),
			truncateString(detail, 70),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "URL", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seoscan](https://github.com/nao1215/seoscan)*")
}

// truncateString truncates a string to maxLen characters with an
// ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
