// Package download persists discovered PDF assets to disk, exactly once per
// destination filename. An existing file short-circuits the fetch entirely;
// staleness is never checked.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/use-agent/doccrawl/config"
	"github.com/use-agent/doccrawl/models"
)

const assetExt = ".pdf"

var (
	reNonWord    = regexp.MustCompile(`[^\w\-]+`)
	reUnderscore = regexp.MustCompile(`_+`)
)

// Downloader fetches assets over plain HTTP with a fixed timeout.
type Downloader struct {
	client  *resty.Client
	dir     string
	limiter *rate.Limiter
}

// New creates a Downloader writing into cfg.Dir. The limiter, when non-nil,
// is shared with the page fetcher so downloads respect the same politeness
// budget.
func New(cfg config.DownloadConfig, limiter *rate.Limiter) *Downloader {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "doccrawl/1.0")
	return &Downloader{client: client, dir: cfg.Dir, limiter: limiter}
}

// IsAsset reports whether rawURL points at a downloadable PDF. The query
// string is ignored.
func IsAsset(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	trimmed := rawURL
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.HasSuffix(strings.ToLower(trimmed), assetExt)
}

// Fetch retrieves rawURL into the download directory and returns the local
// path. hint, when non-empty, is slugified and prefixed onto the filename to
// keep same-named files from different listings apart.
//
// If the destination file already exists its path is returned without any
// network call. Download failures are non-fatal: the asset stays unlinked and
// the outcome carries the reason.
func (d *Downloader) Fetch(ctx context.Context, rawURL, hint string) (string, models.Outcome) {
	if rawURL == "" {
		return "", models.Skipped("empty URL")
	}
	if !IsAsset(rawURL) {
		return "", models.Skipped("not a " + assetExt + " link")
	}

	dest := d.destPath(rawURL, hint)
	if _, err := os.Stat(dest); err == nil {
		slog.Debug("asset already on disk, skipping", "path", dest)
		return dest, models.Done()
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", models.Skipped("cancelled while waiting for rate limiter")
		}
	}

	resp, err := d.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		slog.Warn("asset download failed", "url", rawURL, "error", err)
		return "", models.Skipped(err.Error())
	}
	if !resp.IsSuccess() {
		slog.Warn("asset download rejected", "url", rawURL, "status", resp.StatusCode())
		return "", models.Skipped(fmt.Sprintf("HTTP %d", resp.StatusCode()))
	}

	if err := os.WriteFile(dest, resp.Body(), 0o644); err != nil {
		slog.Warn("asset write failed", "path", dest, "error", err)
		return "", models.Skipped(err.Error())
	}

	slog.Info("asset downloaded", "file", filepath.Base(dest))
	return dest, models.Done()
}

// Attach runs the post-pass over all records: every record with an asset URL
// gets its local path filled in, once per distinct destination. Returns the
// number of records that ended up linked to a local file.
func (d *Downloader) Attach(ctx context.Context, records []models.Record, hint string) int {
	linked := 0
	for i := range records {
		if records[i].PDFURL == "" {
			continue
		}
		local, outcome := d.Fetch(ctx, records[i].PDFURL, hint)
		if !outcome.OK {
			slog.Debug("asset left unlinked", "url", records[i].PDFURL, "reason", outcome.Reason)
			continue
		}
		records[i].LocalPDFPath = local
		linked++
	}
	return linked
}

// destPath computes the deterministic destination for rawURL: the URL path's
// base name, optionally prefixed with the slugified hint.
func (d *Downloader) destPath(rawURL, hint string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	} else if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	name = path.Base(name)

	if hint != "" {
		name = slugify(hint) + "_" + name
	}
	return filepath.Join(d.dir, name)
}

// slugify reduces text to a filesystem-safe token.
func slugify(text string) string {
	text = reNonWord.ReplaceAllString(strings.TrimSpace(text), "_")
	text = strings.Trim(reUnderscore.ReplaceAllString(text, "_"), "_")
	if text == "" {
		return "file"
	}
	return text
}
