package stmtfetch

import "time"

// DefaultPortalURL is the landing page of the provider's customer portal.
const DefaultPortalURL = "https://www.aepenergy.com/"

// sessionConfig holds internal configuration for a Session.
type sessionConfig struct {
	chromePath   string
	autoDownload bool
	timeout      time.Duration
	settle       time.Duration
	noSandbox    bool
	headless     bool
	portalURL    string
	selectors    Selectors
}

func defaultConfig() sessionConfig {
	return sessionConfig{
		timeout:   10 * time.Minute,
		settle:    5 * time.Second,
		portalURL: DefaultPortalURL,
		selectors: DefaultSelectors(),
	}
}

// Option configures a [Session].
type Option func(*sessionConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *sessionConfig) {
		c.chromePath = path
	}
}

// WithAutoDownload fetches a Chromium build into the local cache when no
// explicit Chrome path is configured and none is installed.
func WithAutoDownload() Option {
	return func(c *sessionConfig) {
		c.autoDownload = true
	}
}

// WithTimeout sets the maximum duration of a single step: page loads,
// element waits, the new-tab wait after login and each download.
// Defaults to 10 minutes. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithSettleDelay sets the unconditional pause between expanding the
// statement table and reading it. Defaults to 5 seconds.
func WithSettleDelay(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.settle = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *sessionConfig) {
		c.noSandbox = true
	}
}

// WithHeadless runs Chrome without a visible window. The default is a
// headed browser.
func WithHeadless(headless bool) Option {
	return func(c *sessionConfig) {
		c.headless = headless
	}
}

// WithPortalURL overrides the portal landing page.
func WithPortalURL(rawURL string) Option {
	return func(c *sessionConfig) {
		c.portalURL = rawURL
	}
}

// WithSelectors overrides the element selectors. Zero fields keep their
// [DefaultSelectors] value.
func WithSelectors(s Selectors) Option {
	return func(c *sessionConfig) {
		c.selectors = s.resolved()
	}
}
