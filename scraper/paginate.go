package scraper

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/doccrawl/extract"
	"github.com/use-agent/doccrawl/models"
	"github.com/use-agent/doccrawl/sites"
)

// Fetcher loads a URL and returns its DOM snapshot. *Session implements it;
// tests substitute synthetic page maps.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// EmitFunc receives each record as it is extracted.
type EmitFunc func(models.Record)

// Paginator drives the extractor across the "next page" chain of a listing.
type Paginator struct {
	ext *extract.Extractor
}

// NewPaginator creates a Paginator around the given extractor.
func NewPaginator(ext *extract.Extractor) *Paginator {
	return &Paginator{ext: ext}
}

// Paginate walks a listing from startURL, emitting the table records of every
// page and following the pager until it is absent, disabled or points at an
// empty href. A fresh visited set per invocation guards against pagers that
// re-offer a prior URL: the revisit is fetched once more, recognized, and the
// loop stops, so termination is guaranteed even against a misbehaving pager.
//
// firstDoc, when non-nil, is used as the already-loaded snapshot of startURL
// so the entry page is not fetched twice. Returns the number of page fetches
// performed here.
func (pg *Paginator) Paginate(ctx context.Context, f Fetcher, d sites.Descriptor, section, startURL string, firstDoc *goquery.Document, emit EmitFunc) (int, error) {
	visited := make(map[string]struct{})
	current := startURL
	doc := firstDoc
	fetches := 0

	for {
		if doc == nil {
			var err error
			doc, err = f.Fetch(ctx, current)
			if err != nil {
				slog.Warn("page load failed, stopping pagination",
					"site", d.Slug, "url", current, "error", err)
				return fetches, err
			}
			fetches++
		}

		if _, seen := visited[current]; seen {
			slog.Debug("pager re-offered a visited URL, stopping",
				"site", d.Slug, "url", current)
			return fetches, nil
		}
		visited[current] = struct{}{}

		for _, rec := range pg.ext.Table(doc, d, section, current) {
			emit(rec)
		}

		next, ok := pg.ext.NextPage(doc, d)
		if !ok {
			return fetches, nil
		}
		slog.Info("moving to next page", "site", d.Slug, "url", next)
		current = next
		doc = nil
	}
}
