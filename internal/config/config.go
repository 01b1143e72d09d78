package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of manual crawls against the target site
// and err on the side of politeness: the site rate-limits aggressively.
const (
	// DefaultBaseURL is the root of the regulation site. Every navigation
	// href on the site is relative to this origin.
	DefaultBaseURL = "https://regulations.justia.com"

	// DefaultNavClass is the CSS class of the navigation region that marks a
	// page as a branch. Pages without this region are leaves.
	DefaultNavClass = "codes-listing"

	// DefaultMaxRetries is the number of retry attempts after a failed
	// request. Combined with exponential backoff this absorbs most transient
	// 5xx and rate-limit responses without operator intervention.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the initial backoff delay. Each retry doubles
	// the delay up to DefaultRetryMaxDelay.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultRetryMaxDelay caps the exponential backoff. A minute is long
	// enough for the site's rate limiter to reset.
	DefaultRetryMaxDelay = 60 * time.Second

	// DefaultRequestDelay is the pacing delay applied before every request.
	// 100ms keeps a single worker under the site's informal rate ceiling.
	DefaultRequestDelay = 100 * time.Millisecond

	// DefaultTimeout is the per-request timeout. The site is slow under
	// load; 30 seconds avoids false timeouts on large leaf pages.
	DefaultTimeout = 30 * time.Second

	// DefaultWorkers is the number of concurrent section workers. Effective
	// parallelism is capped by the number of top-level sections, so large
	// values only help jurisdictions with many departments.
	DefaultWorkers = 1

	// DefaultMaxDepth bounds traversal recursion. Regulation hierarchies are
	// 5-6 levels deep in practice; 20 is a safe ceiling that still halts
	// pathological navigation cycles the visited set cannot catch.
	DefaultMaxDepth = 20

	// DefaultMaxBodySize limits the response body size read per page. 10MB
	// is far above any real regulation page and prevents memory exhaustion
	// from misbehaving responses.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultSampleSize is the number of records the verifier spot-checks
	// per section. Spot checks re-fetch live pages, so this stays small.
	DefaultSampleSize = 10

	// DefaultUserAgent is sent with every request. A desktop browser agent
	// is required; the site serves interstitials to obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "regcrawl"
)

// Config holds all configuration options for regcrawl.
// This struct is populated from CLI flags and passed through the application
// via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, VerifyConfig) for simplicity. The number of options is
// manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Jurisdiction is the two-letter identifier of the jurisdiction to
	// crawl (e.g., "MT"). It must exist in the jurisdiction registry.
	Jurisdiction string

	// BaseURL is the site origin all relative hrefs resolve against.
	BaseURL string

	// NavClass is the CSS class of the branch navigation region.
	NavClass string

	// OutputDir is the directory holding per-jurisdiction JSONL datasets.
	// The dataset for jurisdiction XX is <OutputDir>/XX.jsonl.
	OutputDir string

	// FailureDir is the directory holding per-jurisdiction failure logs.
	// Defaults to OutputDir when empty.
	FailureDir string

	// Resume continues an interrupted crawl from the last persisted record
	// instead of starting over. When no prior output exists, the run
	// silently degrades to a full crawl.
	Resume bool

	// Workers is the number of concurrent section workers.
	Workers int

	// MaxRetries is the retry attempt count for failed requests.
	MaxRetries int

	// RetryBaseDelay is the initial exponential backoff delay.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the exponential backoff delay.
	RetryMaxDelay time.Duration

	// RequestDelay is the pacing delay applied before each request.
	RequestDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxDepth is the traversal depth ceiling.
	MaxDepth int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// SampleSize is the number of records spot-checked per section during
	// verification.
	SampleSize int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// DBDir is the directory for the crawl-history SQLite database.
	// When empty, run history is not persisted.
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// MarkdownReport enables Markdown verification report output.
	MarkdownReport bool

	// ReportFile is the output file path for the verification report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Sites holds per-jurisdiction overrides loaded from the config file.
	Sites *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on zero
// values because many defaults are non-zero (delays, depth ceiling, user
// agent). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		NavClass:       DefaultNavClass,
		OutputDir:      XDGDataDir(),
		Workers:        DefaultWorkers,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
		RequestDelay:   DefaultRequestDelay,
		Timeout:        DefaultTimeout,
		MaxDepth:       DefaultMaxDepth,
		MaxBodySize:    DefaultMaxBodySize,
		SampleSize:     DefaultSampleSize,
		UserAgent:      DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for regcrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/regcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for regcrawl.
// On Linux: ~/.config/regcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OutputPath returns the JSONL dataset path for the configured jurisdiction.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.Jurisdiction+".jsonl")
}

// FailurePath returns the failure log path for the configured jurisdiction.
func (c *Config) FailurePath() string {
	dir := c.FailureDir
	if dir == "" {
		dir = c.OutputDir
	}
	return filepath.Join(dir, "failed_"+c.Jurisdiction+".jsonl")
}

// RootURL returns the hierarchy root page for the configured jurisdiction.
func (c *Config) RootURL() (string, error) {
	slug, ok := JurisdictionSlug(c.Jurisdiction)
	if !ok {
		return "", ErrUnknownJurisdiction
	}
	return strings.TrimSuffix(c.BaseURL, "/") + "/states/" + slug + "/", nil
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each point
// of use to fail fast and provide clear error messages upfront. This is
// called once after CLI parsing, before any crawling begins. We return the
// first error found rather than collecting all errors because fixing one
// error often makes others irrelevant.
func (c *Config) Validate() error {
	// The jurisdiction is the only mandatory input
	if c.Jurisdiction == "" {
		return ErrNoJurisdiction
	}
	if _, ok := JurisdictionSlug(c.Jurisdiction); !ok {
		return ErrUnknownJurisdiction
	}

	// Workers must be positive; zero would mean no crawling
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// Timeout must be positive; zero timeout would fail every request
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Retries may be zero (single attempt) but not negative
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	// Delays must be non-negative
	if c.RequestDelay < 0 || c.RetryBaseDelay < 0 {
		return ErrInvalidDelay
	}

	// The depth ceiling must be positive or traversal would never descend
	if c.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ApplySiteConfig merges per-jurisdiction overrides from the loaded config
// file into c. Explicit CLI flags have already been applied, so only fields
// the file actually sets are overridden.
func (c *Config) ApplySiteConfig() {
	if c.Sites == nil {
		return
	}

	sc := c.Sites.ForJurisdiction(c.Jurisdiction)
	if sc.BaseURL != "" {
		c.BaseURL = sc.BaseURL
	}
	if sc.NavClass != "" {
		c.NavClass = sc.NavClass
	}
	if sc.UserAgent != "" {
		c.UserAgent = sc.UserAgent
	}
	if sc.RequestDelay > 0 {
		c.RequestDelay = sc.RequestDelay
	}
	if sc.MaxDepth > 0 {
		c.MaxDepth = sc.MaxDepth
	}
}
