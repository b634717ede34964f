package checks

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/nao1215/seoscan/internal/model"
)

// requiredOGTags must be present for social previews to render.
var requiredOGTags = []struct {
	property string
	display  string
}{
	{property: "og:title", display: "Open Graph title"},
	{property: "og:type", display: "Open Graph type"},
	{property: "og:image", display: "Open Graph image"},
	{property: "og:url", display: "Open Graph URL"},
}

// recommendedOGTags improve previews but are not strictly required.
var recommendedOGTags = []struct {
	property string
	display  string
}{
	{property: "og:description", display: "Open Graph description"},
	{property: "og:site_name", display: "Open Graph site name"},
}

// validTwitterCardTypes are the card types Twitter/X accepts.
var validTwitterCardTypes = []string{"summary", "summary_large_image", "app", "player"}

// MetaChecker validates social and document meta tags: charset, Open
// Graph, Twitter Cards, icons, language declarations, and viewport.
type MetaChecker struct{}

// NewMetaChecker creates the meta tag checker.
func NewMetaChecker() *MetaChecker {
	return &MetaChecker{}
}

// Name implements Checker.
func (c *MetaChecker) Name() string {
	return "meta"
}

// Check implements Checker.
func (c *MetaChecker) Check(_ context.Context, data *PageData) ([]model.Issue, error) {
	var issues []model.Issue
	issues = append(issues, c.checkCharset(data)...)
	issues = append(issues, c.checkOpenGraph(data)...)
	issues = append(issues, c.checkTwitterCards(data)...)
	issues = append(issues, c.checkIcons(data)...)
	issues = append(issues, c.checkLanguage(data)...)
	issues = append(issues, c.checkViewport(data)...)
	return issues, nil
}

func (c *MetaChecker) checkCharset(data *PageData) []model.Issue {
	if data.Doc.HasCharset {
		return nil
	}
	return []model.Issue{model.NewIssueDetail(data.Page.URL, "missing_charset", model.SeverityLow,
		"No charset meta tag found. Should declare UTF-8.")}
}

func (c *MetaChecker) checkOpenGraph(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL
	props := data.Doc.MetaProperties

	for _, tag := range requiredOGTags {
		if props[tag.property] == "" {
			issues = append(issues, model.NewIssueDetail(pageURL, "missing_og_tag", model.SeverityMedium,
				fmt.Sprintf("Missing required %s (%s)", tag.display, tag.property)))
		}
	}
	for _, tag := range recommendedOGTags {
		if props[tag.property] == "" {
			issues = append(issues, model.NewIssueDetail(pageURL, "missing_recommended_og_tag", model.SeverityLow,
				fmt.Sprintf("Missing recommended %s (%s)", tag.display, tag.property)))
		}
	}

	if imageURL := props["og:image"]; imageURL != "" {
		if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
			issues = append(issues, model.NewIssueDetail(pageURL, "og_image_not_absolute", model.SeverityMedium,
				"Open Graph image URL should be absolute (include full URL)"))
		}
		if props["og:image:width"] == "" || props["og:image:height"] == "" {
			issues = append(issues, model.NewIssueDetail(pageURL, "missing_og_image_dimensions", model.SeverityLow,
				"Missing og:image:width and og:image:height for better social sharing"))
		}
	}

	return issues
}

func (c *MetaChecker) checkTwitterCards(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL
	names := data.Doc.MetaNames

	cardType := names["twitter:card"]
	if cardType == "" {
		issues = append(issues, model.NewIssueDetail(pageURL, "missing_twitter_card", model.SeverityLow,
			"Missing twitter:card meta tag. This controls how content is displayed when shared on Twitter/X."))
	} else {
		valid := false
		for _, t := range validTwitterCardTypes {
			if cardType == t {
				valid = true
				break
			}
		}
		if !valid {
			issues = append(issues, model.NewIssueDetail(pageURL, "invalid_twitter_card_type", model.SeverityMedium,
				fmt.Sprintf("Invalid twitter:card type '%s'. Should be one of: %s",
					cardType, strings.Join(validTwitterCardTypes, ", "))))
		}

		if cardType == "summary" || cardType == "summary_large_image" {
			if names["twitter:title"] == "" {
				issues = append(issues, model.NewIssueDetail(pageURL, "missing_twitter_title", model.SeverityInfo,
					"Missing twitter:title. Falls back to og:title if available."))
			}
			if names["twitter:description"] == "" {
				issues = append(issues, model.NewIssueDetail(pageURL, "missing_twitter_description", model.SeverityInfo,
					"Missing twitter:description. Falls back to og:description if available."))
			}
			if cardType == "summary_large_image" && names["twitter:image"] == "" {
				issues = append(issues, model.NewIssueDetail(pageURL, "missing_twitter_image", model.SeverityMedium,
					"Missing twitter:image for summary_large_image card type"))
			}
		}
	}

	if names["twitter:site"] == "" {
		issues = append(issues, model.NewIssueDetail(pageURL, "missing_twitter_site", model.SeverityInfo,
			"Missing twitter:site meta tag. This should be your Twitter/X username."))
	}

	return issues
}

func (c *MetaChecker) checkIcons(data *PageData) []model.Issue {
	var issues []model.Issue
	if !data.Doc.HasFavicon {
		issues = append(issues, model.NewIssueDetail(data.Page.URL, "missing_favicon", model.SeverityLow,
			"No favicon found. Favicons improve brand recognition in browser tabs."))
	}
	if !data.Doc.HasAppleTouchIcon {
		issues = append(issues, model.NewIssueDetail(data.Page.URL, "missing_apple_touch_icon", model.SeverityInfo,
			"Missing apple-touch-icon for iOS home screen bookmarks"))
	}
	return issues
}

func (c *MetaChecker) checkLanguage(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL

	if data.Doc.HTMLLang == "" {
		issues = append(issues, model.NewIssueDetail(pageURL, "missing_html_lang", model.SeverityMedium,
			"Missing lang attribute on <html> tag. This helps search engines and accessibility tools."))
	} else if _, err := language.Parse(data.Doc.HTMLLang); err != nil {
		issues = append(issues, model.NewIssueDetail(pageURL, "invalid_html_lang", model.SeverityLow,
			fmt.Sprintf("Invalid lang attribute value '%s' on <html> tag", data.Doc.HTMLLang)))
	}

	if len(data.Doc.Hreflangs) > 0 {
		if _, ok := data.Doc.Hreflangs["x-default"]; !ok {
			issues = append(issues, model.NewIssueDetail(pageURL, "missing_hreflang_x_default", model.SeverityLow,
				"Using hreflang but missing x-default tag for fallback"))
		}
	}

	return issues
}

func (c *MetaChecker) checkViewport(data *PageData) []model.Issue {
	var issues []model.Issue
	pageURL := data.Page.URL

	content := data.Doc.MetaNames["viewport"]
	if content == "" {
		return []model.Issue{model.NewIssueDetail(pageURL, "missing_viewport", model.SeverityHigh,
			"Missing viewport meta tag. Critical for mobile responsiveness.")}
	}

	lower := strings.ToLower(content)
	if !strings.Contains(lower, "width=device-width") {
		issues = append(issues, model.NewIssueDetail(pageURL, "viewport_missing_device_width", model.SeverityMedium,
			"Viewport should include width=device-width for proper mobile scaling"))
	}
	if !strings.Contains(lower, "initial-scale=1") {
		issues = append(issues, model.NewIssueDetail(pageURL, "viewport_missing_initial_scale", model.SeverityLow,
			"Viewport should include initial-scale=1 for proper mobile scaling"))
	}
	return issues
}
