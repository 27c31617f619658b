// Package scraper owns the browser session: one headless browser, one
// navigation context, loaded defensively. Navigation timeouts cancel the
// in-flight load and accept the partial DOM rather than failing the run.
package scraper

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"golang.org/x/time/rate"

	"github.com/use-agent/doccrawl/config"
	"github.com/use-agent/doccrawl/models"
)

// Session wraps a live browser connection with exactly one page. It is not
// safe for concurrent use: at most one navigation is in flight at a time.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter

	browserCfg config.BrowserConfig
	fetchCfg   config.FetchConfig
	limiter    *rate.Limiter

	// contentHints are per-site candidate selectors whose presence signals
	// the page content has arrived. Set before crawling a site.
	contentHints []string
}

// NewSession launches a headless browser and opens the single shared page.
// Callers must Close the session on every exit path.
func NewSession(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig, limiter *rate.Limiter) (*Session, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.MustClose()
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	s := &Session{
		browser:    browser,
		page:       page,
		browserCfg: browserCfg,
		fetchCfg:   fetchCfg,
		limiter:    limiter,
	}

	// Stealth JS and the hijack router only affect navigations installed
	// before them, so both go in before the first Navigate.
	if browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	s.router = setupHijack(page, browserCfg.BlockedResourceTypes)

	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-IN,en;q=0.9,hi;q=0.8",
		}),
	}.Call(page)

	return s, nil
}

// SetContentHints installs the candidate content selectors for the site about
// to be crawled.
func (s *Session) SetContentHints(selectors []string) {
	s.contentHints = selectors
}

// Close releases the page and kills the browser process. Safe to call from a
// defer on every exit path.
func (s *Session) Close() {
	slog.Info("session shutting down")
	if s.router != nil {
		_ = s.router.Stop()
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	s.browser.MustClose()
	slog.Info("session shutdown complete")
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
