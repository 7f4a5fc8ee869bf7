package config

// SiteConfig holds per-site settings for a documentation host.
// This allows customizing fetch behavior for sites that need extra
// headers or their own credential.
type SiteConfig struct {
	// Token overrides the global extraction service credential for this
	// site.
	Token string `yaml:"token,omitempty"`

	// Headers are custom HTTP headers sent with extraction requests for
	// this site, e.g. X-Respond-With or X-Target-Selector hints.
	Headers map[string]string `yaml:"headers,omitempty"`

	// BatchSize overrides the per-chunk fetch concurrency for this site.
	// Zero means use the credential-derived default.
	BatchSize int `yaml:"batchSize,omitempty"`
}

// File represents the structure of the .doccrawl configuration file.
type File struct {
	// Sites maps documentation hosts to their settings. Keys are the
	// host part of the entry URL (e.g. "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the settings for a host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Token != "" {
			result.Token = siteConfig.Token
		}
		if siteConfig.BatchSize != 0 {
			result.BatchSize = siteConfig.BatchSize
		}
		if len(siteConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
	}

	return result
}
