package config

// SiteConfig holds per-site crawl overrides.
type SiteConfig struct {
	// MaxPages overrides the global crawl budget for this site.
	// Zero means use the global value.
	MaxPages int `yaml:"maxPages,omitempty"`

	// RPS overrides the global request rate for this site. Sites that
	// are known to be fragile can be crawled slower.
	RPS float64 `yaml:"rps,omitempty"`

	// UserAgent overrides the User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// IgnorePatterns are URL path globs to skip during crawling,
	// e.g. "/cart/*" to keep the audit out of checkout flows.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// File represents the structure of the .seoscan configuration file.
type File struct {
	// Sites maps hostnames to their overrides, e.g. "example.com".
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a hostname:
// the defaults with any site-specific values laid on top.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if sc, ok := cf.Sites[host]; ok {
		if sc.MaxPages != 0 {
			result.MaxPages = sc.MaxPages
		}
		if sc.RPS != 0 {
			result.RPS = sc.RPS
		}
		if sc.UserAgent != "" {
			result.UserAgent = sc.UserAgent
		}
		if len(sc.IgnorePatterns) > 0 {
			result.IgnorePatterns = sc.IgnorePatterns
		}
	}
	return result
}
