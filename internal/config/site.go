package config

import "time"

// SiteConfig holds per-site overrides for a single target domain. It lets
// an operator crawl authenticated areas or tune pacing for one site without
// changing the global flags.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with requests to this site.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth when greater than zero.
	Depth int `yaml:"depth,omitempty"`

	// Delay overrides the global crawl delay when greater than zero.
	Delay time.Duration `yaml:"delay,omitempty"`
}

// File is the structure of the .netrecon configuration file.
type File struct {
	// Sites maps target domains to their overrides. Keys are bare domains
	// without a scheme (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the effective configuration for one domain,
// merging site-specific values over the defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.Sites[domain]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Depth != 0 {
		result.Depth = site.Depth
	}
	if site.Delay != 0 {
		result.Delay = site.Delay
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
