// Package runner orchestrates one crawl: load the entry page, parse the
// narrative content, paginate the main listing, discover and paginate the
// archive listing, download the referenced assets, and serialize the results.
// Every failure short of a dead browser is skip-and-continue; the run always
// reaches teardown and persists whatever was collected.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/use-agent/doccrawl/config"
	"github.com/use-agent/doccrawl/download"
	"github.com/use-agent/doccrawl/extract"
	"github.com/use-agent/doccrawl/models"
	"github.com/use-agent/doccrawl/scraper"
	"github.com/use-agent/doccrawl/sink"
	"github.com/use-agent/doccrawl/sites"
)

// Summary is the per-site result of a run.
type Summary struct {
	Site         string
	Records      int
	PagesFetched int
	AssetsLinked int
	OutputPath   string
	Err          error
}

// hintSetter is implemented by fetchers that can prime per-site readiness
// selectors (the live browser session does; test fakes need not).
type hintSetter interface {
	SetContentHints(selectors []string)
}

// Runner wires the fetcher, extractor, downloader and sink for a set of sites.
type Runner struct {
	cfg     *config.Config
	fetcher scraper.Fetcher
	ext     *extract.Extractor
	pager   *scraper.Paginator
	dl      *download.Downloader
	sink    *sink.CSVSink
}

// New assembles a Runner from its collaborators.
func New(cfg *config.Config, f scraper.Fetcher, ext *extract.Extractor, dl *download.Downloader, snk *sink.CSVSink) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		ext:     ext,
		pager:   scraper.NewPaginator(ext),
		dl:      dl,
		sink:    snk,
	}
}

// EnsureDirs creates the output and asset directories. Called once at run
// start rather than at package load, so the process has no import-time side
// effects.
func (r *Runner) EnsureDirs() error {
	for _, dir := range []string{r.cfg.Output.Dir, r.cfg.Download.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("runner: create %s: %w", dir, err)
		}
	}
	return nil
}

// RunSite crawls one site end to end and returns its summary.
func (r *Runner) RunSite(ctx context.Context, d sites.Descriptor) Summary {
	sum := Summary{Site: d.Slug}

	if hs, ok := r.fetcher.(hintSetter); ok {
		hs.SetContentHints(d.Selectors.ContentContainers)
	}

	entryURL := r.ext.Resolve(d.EntryPath)
	slog.Info("scraping site", "site", d.Slug, "url", entryURL)

	doc, err := r.fetcher.Fetch(ctx, entryURL)
	if err != nil {
		sum.Err = err
		return sum
	}
	sum.PagesFetched++

	var records []models.Record
	emit := func(rec models.Record) { records = append(records, rec) }

	if d.Narrative {
		records = append(records, r.ext.Narrative(doc, d, entryURL)...)
	}

	if d.Tabular {
		n, perr := r.pager.Paginate(ctx, r.fetcher, d, d.MainSection, entryURL, doc, emit)
		sum.PagesFetched += n
		if perr != nil {
			slog.Warn("main listing truncated", "site", d.Slug, "error", perr)
		}
	}

	// Archive listings are linked from the entry page. Absence is normal for
	// pages without an archive; it still gets a notice so partial runs are
	// distinguishable from archiveless pages.
	if d.Tabular {
		if archiveURL, ok := r.ext.ArchiveURL(doc, d); ok {
			slog.Info("scraping archive listing", "site", d.Slug, "url", archiveURL)
			n, perr := r.pager.Paginate(ctx, r.fetcher, d, d.ArchiveSection, archiveURL, nil, emit)
			sum.PagesFetched += n
			if perr != nil {
				slog.Warn("archive listing truncated", "site", d.Slug, "error", perr)
			}
		} else {
			slog.Info("no archive link found", "site", d.Slug)
		}
	}

	sum.AssetsLinked = r.dl.Attach(ctx, records, d.FilePrefix)
	sum.Records = len(records)

	outPath, werr := r.sink.Write(records, d.Slug)
	if werr != nil {
		sum.Err = werr
		return sum
	}
	sum.OutputPath = outPath
	return sum
}

// Run crawls the given descriptors in sequence. A failed site does not stop
// the remaining ones.
func (r *Runner) Run(ctx context.Context, descs []sites.Descriptor) []Summary {
	summaries := make([]Summary, 0, len(descs))
	for _, d := range descs {
		sum := r.RunSite(ctx, d)
		if sum.Err != nil {
			slog.Error("site run failed", "site", d.Slug, "error", sum.Err)
		}
		summaries = append(summaries, sum)
		if ctx.Err() != nil {
			break
		}
	}
	return summaries
}
