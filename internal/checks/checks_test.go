package checks

import (
	"net/http"
	"testing"

	"github.com/nao1215/seoscan/internal/crawler"
	"github.com/nao1215/seoscan/internal/model"
)

// newPageData builds the checker input for a page, parsing the HTML
// the same way the crawler does.
func newPageData(t *testing.T, pageURL, htmlContent string, headers http.Header) *PageData {
	t.Helper()

	parser, err := crawler.NewParser(pageURL)
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	doc, err := parser.Parse(htmlContent)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if headers == nil {
		headers = http.Header{}
	}
	return &PageData{
		Page: &model.Page{
			URL:        pageURL,
			StatusCode: http.StatusOK,
			Headers:    headers,
			HTML:       htmlContent,
		},
		Doc: doc,
	}
}

// hasIssue reports whether issues contains the given type.
func hasIssue(issues []model.Issue, issueType string) bool {
	return countIssues(issues, issueType) > 0
}

// countIssues counts issues of the given type.
func countIssues(issues []model.Issue, issueType string) int {
	count := 0
	for _, issue := range issues {
		if issue.Type == issueType {
			count++
		}
	}
	return count
}

// findIssue returns the first issue of the given type.
func findIssue(t *testing.T, issues []model.Issue, issueType string) model.Issue {
	t.Helper()
	for _, issue := range issues {
		if issue.Type == issueType {
			return issue
		}
	}
	t.Fatalf("no %q issue in %v", issueType, issues)
	return model.Issue{}
}
