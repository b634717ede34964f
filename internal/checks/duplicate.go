package checks

import (
	"crypto/md5" //nolint:gosec // content fingerprinting, not security
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// Duplicate detection tuning.
const (
	// shingleSize is the word window for near-duplicate fingerprints.
	shingleSize = 5

	// NearDuplicateThreshold is the Jaccard similarity at which two
	// pages count as near-duplicates.
	NearDuplicateThreshold = 0.8

	// maxDuplicateDetail caps the list of duplicate URLs in a detail.
	maxDuplicateDetail = 200

	// maxTitleDetail and maxDescriptionDetail cap the echoed text in
	// duplicate title/description details.
	maxTitleDetail       = 80
	maxDescriptionDetail = 120
)

// DuplicateDetector finds exact and near-duplicate page content
// across a crawled site. Pages are compared by their visible text.
type DuplicateDetector struct {
	hashes    map[string][]string
	hashOrder []string
	shingles  map[string]map[string]bool
	urls      []string
}

// NewDuplicateDetector creates an empty detector.
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{
		hashes:   make(map[string][]string),
		shingles: make(map[string]map[string]bool),
	}
}

// AddPage registers a page's text for duplicate detection.
func (d *DuplicateDetector) AddPage(pageURL, text string) {
	sum := md5.Sum([]byte(text)) //nolint:gosec // content fingerprinting
	key := hex.EncodeToString(sum[:])
	if _, ok := d.hashes[key]; !ok {
		d.hashOrder = append(d.hashOrder, key)
	}
	d.hashes[key] = append(d.hashes[key], pageURL)

	d.shingles[pageURL] = makeShingles(text, shingleSize)
	d.urls = append(d.urls, pageURL)
}

// FindDuplicates reports every page whose text exactly matches
// another page's, one issue per member of each duplicate group.
func (d *DuplicateDetector) FindDuplicates() []model.Issue {
	var issues []model.Issue

	for _, key := range d.hashOrder {
		urls := d.hashes[key]
		if len(urls) < 2 {
			continue
		}
		for _, pageURL := range urls {
			others := make([]string, 0, len(urls)-1)
			for _, other := range urls {
				if other != pageURL {
					others = append(others, other)
				}
			}
			detail := fmt.Sprintf("Exact duplicate of %d other page(s): %s",
				len(urls)-1, truncate(strings.Join(others, ", "), maxDuplicateDetail))
			issues = append(issues, model.NewIssueDetail(pageURL, "duplicate_content", model.SeverityHigh, detail))
		}
	}

	return issues
}

// FindNearDuplicates compares all page pairs by Jaccard similarity of
// their word shingles and reports pairs at or above the threshold.
// Quadratic in page count; callers should skip it on large crawls.
func (d *DuplicateDetector) FindNearDuplicates(threshold float64) []model.Issue {
	var issues []model.Issue

	for i, first := range d.urls {
		for _, second := range d.urls[i+1:] {
			similarity := jaccardSimilarity(d.shingles[first], d.shingles[second])
			if similarity >= threshold {
				issues = append(issues, model.NewIssueDetail(first, "near_duplicate_content", model.SeverityMedium,
					fmt.Sprintf("Near-duplicate (%.1f%% similar) to: %s", similarity*100, second)))
			}
		}
	}

	return issues
}

// DuplicateTitles reports pages that share a title, compared after
// trimming and lowercasing.
func DuplicateTitles(pages []*model.Page) []model.Issue {
	return duplicateField(pages, maxTitleDetail, "duplicate_title", func(p *model.Page) string {
		return p.Title
	})
}

// DuplicateMetaDescriptions reports pages that share a meta
// description.
func DuplicateMetaDescriptions(pages []*model.Page) []model.Issue {
	return duplicateField(pages, maxDescriptionDetail, "duplicate_meta_description", func(p *model.Page) string {
		return p.MetaDescription
	})
}

// duplicateField groups pages by a normalized field value and reports
// every member of each group larger than one.
func duplicateField(pages []*model.Page, detailLimit int, issueType string, field func(*model.Page) string) []model.Issue {
	groups := make(map[string][]string)
	var order []string

	for _, page := range pages {
		value := strings.ToLower(strings.TrimSpace(field(page)))
		if value == "" {
			continue
		}
		if _, ok := groups[value]; !ok {
			order = append(order, value)
		}
		groups[value] = append(groups[value], page.URL)
	}

	var issues []model.Issue
	for _, value := range order {
		urls := groups[value]
		if len(urls) < 2 {
			continue
		}
		detail := truncate(value, detailLimit)
		for _, pageURL := range urls {
			issues = append(issues, model.NewIssueDetail(pageURL, issueType, model.SeverityLow, detail))
		}
	}
	return issues
}

// makeShingles builds the set of k-word windows over the text,
// lowercased.
func makeShingles(text string, k int) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	shingles := make(map[string]bool)
	for i := 0; i+k <= len(words); i++ {
		shingles[strings.Join(words[i:i+k], " ")] = true
	}
	return shingles
}

// jaccardSimilarity computes intersection size over union size. Two
// empty sets count as identical.
func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	intersection := 0
	for shingle := range a {
		if b[shingle] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// truncate shortens s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
