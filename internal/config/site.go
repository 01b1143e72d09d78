package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// jurisdictionSlugs maps two-letter jurisdiction identifiers to the URL slug
// used by the site. The site organizes regulations per state and territory
// under /states/<slug>/.
var jurisdictionSlugs = map[string]string{
	"AL": "alabama",
	"AK": "alaska",
	"AZ": "arizona",
	"AR": "arkansas",
	"CA": "california",
	"CO": "colorado",
	"CT": "connecticut",
	"DE": "delaware",
	"FL": "florida",
	"GA": "georgia",
	"HI": "hawaii",
	"ID": "idaho",
	"IL": "illinois",
	"IN": "indiana",
	"IA": "iowa",
	"KS": "kansas",
	"KY": "kentucky",
	"LA": "louisiana",
	"ME": "maine",
	"MD": "maryland",
	"MA": "massachusetts",
	"MI": "michigan",
	"MN": "minnesota",
	"MS": "mississippi",
	"MO": "missouri",
	"MT": "montana",
	"NE": "nebraska",
	"NV": "nevada",
	"NH": "new-hampshire",
	"NJ": "new-jersey",
	"NM": "new-mexico",
	"NY": "new-york",
	"NC": "north-carolina",
	"ND": "north-dakota",
	"OH": "ohio",
	"OK": "oklahoma",
	"OR": "oregon",
	"PA": "pennsylvania",
	"RI": "rhode-island",
	"SC": "south-carolina",
	"SD": "south-dakota",
	"TN": "tennessee",
	"TX": "texas",
	"UT": "utah",
	"VT": "vermont",
	"VA": "virginia",
	"WA": "washington",
	"WV": "west-virginia",
	"WI": "wisconsin",
	"WY": "wyoming",
	"DC": "district-of-columbia",
	"AS": "american-samoa",
	"GU": "guam",
	"MP": "northern-mariana-islands",
	"PR": "puerto-rico",
	"VI": "us-virgin-islands",
}

// JurisdictionSlug returns the URL slug for a jurisdiction identifier.
// Lookup is case-insensitive. The second return value reports whether the
// identifier is known.
func JurisdictionSlug(id string) (string, bool) {
	slug, ok := jurisdictionSlugs[strings.ToUpper(id)]
	return slug, ok
}

// Jurisdictions returns all known jurisdiction identifiers in sorted order.
// Used for CLI help output and argument completion.
func Jurisdictions() []string {
	ids := make([]string, 0, len(jurisdictionSlugs))
	for id := range jurisdictionSlugs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SiteConfig holds per-jurisdiction overrides for crawl behavior.
// Most jurisdictions work with the global defaults; this exists for the few
// whose markup or rate limits differ.
type SiteConfig struct {
	// BaseURL overrides the site origin for this jurisdiction.
	BaseURL string `yaml:"baseURL,omitempty"`

	// NavClass overrides the CSS class of the branch navigation region.
	NavClass string `yaml:"navClass,omitempty"`

	// UserAgent overrides the User-Agent header for this jurisdiction.
	UserAgent string `yaml:"userAgent,omitempty"`

	// RequestDelay overrides the pacing delay between requests.
	// Zero means the global delay is used.
	RequestDelay time.Duration `yaml:"requestDelay,omitempty"`

	// MaxDepth overrides the traversal depth ceiling.
	// Zero means the global ceiling is used.
	MaxDepth int `yaml:"maxDepth,omitempty"`
}

// UnmarshalYAML decodes a SiteConfig, accepting requestDelay in Go
// duration syntax ("500ms", "2s"). yaml.v3 has no native time.Duration
// support.
func (sc *SiteConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BaseURL      string `yaml:"baseURL"`
		NavClass     string `yaml:"navClass"`
		UserAgent    string `yaml:"userAgent"`
		RequestDelay string `yaml:"requestDelay"`
		MaxDepth     int    `yaml:"maxDepth"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	sc.BaseURL = raw.BaseURL
	sc.NavClass = raw.NavClass
	sc.UserAgent = raw.UserAgent
	sc.MaxDepth = raw.MaxDepth

	if raw.RequestDelay != "" {
		d, err := time.ParseDuration(raw.RequestDelay)
		if err != nil {
			return fmt.Errorf("invalid requestDelay %q: %w", raw.RequestDelay, err)
		}
		sc.RequestDelay = d
	}
	return nil
}

// File represents the structure of the .regcrawl configuration file.
type File struct {
	// Jurisdictions maps jurisdiction identifiers to their overrides.
	Jurisdictions map[string]SiteConfig `yaml:"jurisdictions,omitempty"`

	// Defaults contains overrides applied to all jurisdictions unless
	// overridden in the jurisdiction-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// ForJurisdiction returns the configuration for a specific jurisdiction.
// It merges the jurisdiction-specific configuration with defaults.
func (cf *File) ForJurisdiction(id string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with jurisdiction-specific configuration if present
	if sc, ok := cf.Jurisdictions[strings.ToUpper(id)]; ok {
		if sc.BaseURL != "" {
			result.BaseURL = sc.BaseURL
		}
		if sc.NavClass != "" {
			result.NavClass = sc.NavClass
		}
		if sc.UserAgent != "" {
			result.UserAgent = sc.UserAgent
		}
		if sc.RequestDelay > 0 {
			result.RequestDelay = sc.RequestDelay
		}
		if sc.MaxDepth > 0 {
			result.MaxDepth = sc.MaxDepth
		}
	}

	return result
}
