package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"

	"github.com/use-agent/doccrawl/models"
)

// Fetch navigates to pageURL and returns a snapshot of whatever DOM is there
// once the page settles.
//
// Loading is deliberately best-effort: a navigation timeout cancels the load
// and keeps the partial document, a readiness wait that never resolves is
// ignored, and a missing content container is ignored. The target site is
// generally reliable, so availability wins over completeness here; truncated
// extraction on a bad day is an accepted limitation. The only hard failures
// are a dead browser and an unreadable snapshot.
func (s *Session) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, models.NewCrawlError(models.ErrCodeTimeout, "rate limiter wait", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, s.fetchCfg.NavTimeout)
	defer cancel()

	slog.Info("fetching page", "url", pageURL)
	if err := s.page.Context(navCtx).Navigate(pageURL); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Equivalent of window.stop(): keep the partial DOM.
			slog.Warn("navigation timed out, stopping load", "url", pageURL)
			_ = proto.PageStopLoading{}.Call(s.page)
		} else {
			slog.Warn("navigation failed, proceeding with current DOM",
				"url", pageURL, "error", err)
		}
	}

	s.waitReady(ctx)
	s.waitContent(ctx)

	rawHTML, err := s.page.HTML()
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeNavigation,
			"failed to read page HTML",
			err,
		)
	}

	node, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeExtraction,
			"failed to parse page HTML",
			err,
		)
	}
	return goquery.NewDocumentFromNode(node), nil
}

// waitReady polls document.readyState until the document is interactive or
// complete, bounded by the configured wait. Expiry is non-fatal.
func (s *Session) waitReady(ctx context.Context) {
	deadline := time.Now().Add(s.fetchCfg.ReadyWait)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		if res, err := s.page.Eval(`() => document.readyState`); err == nil {
			switch res.Value.Str() {
			case "interactive", "complete":
				return
			}
		}
		time.Sleep(s.fetchCfg.ReadyPoll)
	}
	slog.Debug("readyState never settled, proceeding anyway")
}

// waitContent waits, bounded by half the navigation timeout, until any of the
// site's candidate content selectors (or a plain body) is present. Satisfying
// any one candidate is enough; finding none is non-fatal.
func (s *Session) waitContent(ctx context.Context) {
	candidates := append([]string{}, s.contentHints...)
	candidates = append(candidates, "body")

	deadline := time.Now().Add(s.fetchCfg.NavTimeout / 2)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		for _, sel := range candidates {
			if has, _, err := s.page.Has(sel); err == nil && has {
				return
			}
		}
		time.Sleep(s.fetchCfg.ReadyPoll)
	}
	slog.Debug("no content candidate appeared before deadline", "candidates", candidates)
}
