package checks

import (
	"context"

	"github.com/nao1215/seoscan/internal/crawler"
	"github.com/nao1215/seoscan/internal/model"
)

// PageData bundles everything a checker may inspect for one page:
// the fetched page (status, headers, raw HTML) and the parsed
// document. The document is parsed once per page and shared by all
// checkers.
type PageData struct {
	// Page is the fetched page.
	Page *model.Page

	// Doc is the parse result for the page's HTML.
	Doc *crawler.ParseResult
}

// Checker examines a single fetched page and reports the issues it
// finds. A checker error never aborts the audit; the orchestrator
// logs it and moves on to the next checker.
type Checker interface {
	// Name identifies the checker in logs.
	Name() string

	// Check reports the issues found on the page.
	Check(ctx context.Context, data *PageData) ([]model.Issue, error)
}

// DefaultCheckers returns the page checkers in their fixed execution
// order. siteRoot (scheme://host) marks which link targets count as
// internal.
func DefaultCheckers(siteRoot string) []Checker {
	return []Checker{
		NewBasicChecker(),
		NewSecurityChecker(),
		NewCertChecker(),
		NewMetaChecker(),
		NewIndexabilityChecker(),
		NewContentChecker(),
		NewPerformanceChecker(),
		NewAnchorChecker(siteRoot),
	}
}
