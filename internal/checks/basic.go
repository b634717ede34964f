package checks

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/seoscan/internal/model"
)

const (
	// maxTitleLength is the character count beyond which titles get
	// truncated in search result snippets.
	maxTitleLength = 60

	// altDetailLength caps the image source echoed in img_alt_missing
	// details.
	altDetailLength = 120
)

// BasicChecker validates the fundamentals every page needs: a title
// of reasonable length, a meta description, images with alt text, and
// whether indexing is blocked.
type BasicChecker struct{}

// NewBasicChecker creates the basic page checker.
func NewBasicChecker() *BasicChecker {
	return &BasicChecker{}
}

// Name implements Checker.
func (c *BasicChecker) Name() string {
	return "basic"
}

// Check implements Checker.
func (c *BasicChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	var issues []model.Issue
	pageURL := data.Page.URL

	switch titleLen := utf8.RuneCountInString(data.Doc.Title); {
	case titleLen == 0:
		issues = append(issues, model.NewIssue(pageURL, "title_missing", model.SeverityMedium))
	case titleLen > maxTitleLength:
		issues = append(issues, model.NewIssueDetail(pageURL, "title_too_long", model.SeverityLow, strconv.Itoa(titleLen)))
	}

	if data.Doc.MetaDescription == "" {
		issues = append(issues, model.NewIssue(pageURL, "meta_description_missing", model.SeverityLow))
	}

	if data.Doc.Noindex {
		issues = append(issues, model.NewIssue(pageURL, "noindex", model.SeverityInfo))
	}

	for _, img := range data.Doc.Images {
		if strings.TrimSpace(img.Alt) != "" {
			continue
		}
		src := img.Src
		if len(src) > altDetailLength {
			src = src[:altDetailLength]
		}
		issues = append(issues, model.NewIssueDetail(pageURL, "img_alt_missing", model.SeverityLow, src))
	}

	return issues, nil
}
