package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/doccrawl/extract"
	"github.com/use-agent/doccrawl/models"
	"github.com/use-agent/doccrawl/sites"
)

const base = "https://doe.gov.in"

// fakeFetcher serves canned HTML keyed by URL and records every fetch.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.calls = append(f.calls, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("no such page: " + url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func listingPage(rows, pager string) string {
	return `<html><body><table>
		<thead><tr><th>Sr.No</th><th>Title</th><th>Date</th><th>Download</th></tr></thead>
		<tbody>` + rows + `</tbody></table>` + pager + `</body></html>`
}

func manualsDescriptor(t *testing.T) sites.Descriptor {
	t.Helper()
	d, ok := sites.Builtin().Get("manuals")
	require.True(t, ok)
	return d
}

func collector(records *[]models.Record) EmitFunc {
	return func(rec models.Record) { *records = append(*records, rec) }
}

func TestPaginate_FollowsNextUntilDisabled(t *testing.T) {
	d := manualsDescriptor(t)
	f := &fakeFetcher{pages: map[string]string{
		base + "/manuals": listingPage(
			`<tr><td>1</td><td>First</td><td>d</td><td>x</td></tr>`,
			`<ul><li class="pager__item--next"><a href="/manuals?page=1">Next</a></li></ul>`,
		),
		base + "/manuals?page=1": listingPage(
			`<tr><td>2</td><td>Second</td><td>d</td><td>x</td></tr>`,
			`<ul><li class="pager__item--next is-disabled"><a href="/manuals?page=2">Next</a></li></ul>`,
		),
	}}

	ext, err := extract.New(base)
	require.NoError(t, err)

	var records []models.Record
	fetches, err := NewPaginator(ext).Paginate(
		context.Background(), f, d, "Active Manuals", base+"/manuals", nil, collector(&records))
	require.NoError(t, err)

	require.Equal(t, 2, fetches)
	require.Len(t, records, 2)
	require.Equal(t, "First", records[0].Title)
	require.Equal(t, "Second", records[1].Title)
}

func TestPaginate_CycleTerminatesAfterOneRevisit(t *testing.T) {
	d := manualsDescriptor(t)
	// Pager always re-offers the same URL.
	f := &fakeFetcher{pages: map[string]string{
		base + "/manuals": listingPage(
			`<tr><td>1</td><td>Looped</td><td>d</td><td>x</td></tr>`,
			`<ul><li class="pager__item--next"><a href="/manuals">Next</a></li></ul>`,
		),
	}}

	ext, err := extract.New(base)
	require.NoError(t, err)

	var records []models.Record
	fetches, err := NewPaginator(ext).Paginate(
		context.Background(), f, d, "S", base+"/manuals", nil, collector(&records))
	require.NoError(t, err)

	// Exactly one extra fetch (the revisit), then stop. Never an infinite loop.
	require.Equal(t, 2, fetches)
	require.Len(t, records, 1, "the revisited page must not be extracted twice")
}

func TestPaginate_FirstDocSkipsRefetch(t *testing.T) {
	d := manualsDescriptor(t)
	f := &fakeFetcher{pages: map[string]string{}}

	first, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage(
		`<tr><td>1</td><td>Preloaded</td><td>d</td><td>x</td></tr>`, "")))
	require.NoError(t, err)

	ext, err := extract.New(base)
	require.NoError(t, err)

	var records []models.Record
	fetches, err := NewPaginator(ext).Paginate(
		context.Background(), f, d, "S", base+"/manuals", first, collector(&records))
	require.NoError(t, err)

	require.Zero(t, fetches)
	require.Empty(t, f.calls)
	require.Len(t, records, 1)
}

func TestPaginate_FetchErrorStops(t *testing.T) {
	d := manualsDescriptor(t)
	f := &fakeFetcher{pages: map[string]string{
		base + "/manuals": listingPage(
			`<tr><td>1</td><td>Only</td><td>d</td><td>x</td></tr>`,
			`<ul><li class="pager__item--next"><a href="/manuals?page=1">Next</a></li></ul>`,
		),
	}}

	ext, err := extract.New(base)
	require.NoError(t, err)

	var records []models.Record
	fetches, err := NewPaginator(ext).Paginate(
		context.Background(), f, d, "S", base+"/manuals", nil, collector(&records))
	require.Error(t, err)
	require.Equal(t, 1, fetches)
	require.Len(t, records, 1, "records collected before the failure are kept")
}
