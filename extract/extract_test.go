package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/doccrawl/sites"
)

const baseURL = "https://doe.gov.in"

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func descriptor(t *testing.T, slug string) sites.Descriptor {
	t.Helper()
	d, ok := sites.Builtin().Get(slug)
	require.True(t, ok, "missing built-in site %s", slug)
	return d
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(baseURL)
	require.NoError(t, err)
	return e
}

func TestTable_HeadersZipped(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "manuals")

	page := doc(t, `<html><body><table>
		<thead><tr><th>Sr.No</th><th>Title</th><th>Date</th><th>Download</th></tr></thead>
		<tbody>
			<tr><td>1</td><td>Pay Manual</td><td>01-03-2024</td>
				<td><a href="/files/pay_manual.pdf">Download</a></td></tr>
			<tr><td>2</td><td>Budget Manual</td><td>15-04-2024</td><td>-</td></tr>
		</tbody></table></body></html>`)

	recs := e.Table(page, d, "Active Manuals", baseURL+"/manuals")
	require.Len(t, recs, 2)

	first := recs[0]
	require.Equal(t, "Table", first.SectionType)
	require.Equal(t, "Active Manuals", first.SectionName)
	require.Equal(t, "Row", first.ElementType)
	require.Equal(t, "Pay Manual", first.Title)
	require.Equal(t, "Sr.No: 1 | Title: Pay Manual | Date: 01-03-2024 | Download: Download", first.Content)
	require.Equal(t, baseURL+"/files/pay_manual.pdf", first.PDFURL)

	require.Empty(t, recs[1].PDFURL)
	require.Equal(t, "Budget Manual", recs[1].Title)
}

func TestTable_FallbackHeaders(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "manuals")

	// No thead: the fixed default header set is zipped positionally.
	page := doc(t, `<html><body><table><tbody>
		<tr><td>1</td><td>Headerless Entry</td><td>02-02-2023</td><td>link</td></tr>
	</tbody></table></body></html>`)

	recs := e.Table(page, d, "Active Manuals", baseURL+"/manuals")
	require.Len(t, recs, 1)
	require.Equal(t, "Headerless Entry", recs[0].Title)
	require.Equal(t, "Sr.No: 1 | Title: Headerless Entry | Date: 02-02-2023 | Download: link", recs[0].Content)
}

func TestTable_UntitledAndEmptyRows(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "manuals")

	page := doc(t, `<html><body><table><tbody>
		<tr><td>solo</td></tr>
		<tr></tr>
		<tr><td>  </td><td>  </td></tr>
	</tbody></table></body></html>`)

	recs := e.Table(page, d, "Section", baseURL+"/x")
	// The zero-cell row is dropped entirely; the others fall back to Untitled.
	require.Len(t, recs, 2)
	require.Equal(t, "Untitled", recs[0].Title)
	require.Equal(t, "Untitled", recs[1].Title)
}

func TestTable_MissingTable(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "manuals")

	recs := e.Table(doc(t, `<html><body><p>nothing here</p></body></html>`), d, "S", baseURL)
	require.Empty(t, recs)
}

func TestTable_RowHyperlinkAppended(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "rti")

	page := doc(t, `<html><body><table>
		<thead><tr><th>Sr.No</th><th>Title</th></tr></thead>
		<tbody><tr><td>1</td><td>RTI Portal</td>
			<td><a href="https://rtionline.gov.in">portal</a></td></tr></tbody>
	</table></body></html>`)

	recs := e.Table(page, d, "RTI Table Section", baseURL+"/rti")
	require.Len(t, recs, 1)
	require.Contains(t, recs[0].Content, "| Hyperlink: https://rtionline.gov.in")
}

func TestTable_ExtraColumns(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "autonomous-bodies")

	page := doc(t, `<html><body><table class="tableData">
		<thead><tr><th>Sr.No</th><th>O.M.No</th><th>Title</th><th>Date</th></tr></thead>
		<tbody><tr><td>1</td><td>7(4)/E.Coord/2024</td><td>Pay revision</td><td>12-06-2024</td></tr></tbody>
	</table></body></html>`)

	recs := e.Table(page, d, "Active", baseURL+"/pay-related-matters/88")
	require.Len(t, recs, 1)

	listing, ok := recs[0].GetExtra("listing_type")
	require.True(t, ok)
	require.Equal(t, "Active", listing)

	memo, ok := recs[0].GetExtra("office_memorandum_no")
	require.True(t, ok)
	require.Equal(t, "7(4)/E.Coord/2024", memo)
}

func TestNarrative_BestContainerByTextLength(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "chief-adviser-cost")
	d.Selectors.ContentContainers = []string{"div.sparse", "div.rich"}

	long := strings.Repeat("cost accounting advisory services rendered to ministries ", 10)
	page := doc(t, `<html><body>
		<div class="sparse"><p>short footer text only here now</p></div>
		<div class="rich"><p>`+long+`</p></div>
	</body></html>`)

	recs := e.Narrative(page, d, baseURL+"/office-chief-adviser-cost")

	var paragraphs []string
	for _, r := range recs {
		if r.ElementType == "Paragraph" {
			paragraphs = append(paragraphs, r.Content)
		}
	}
	require.Len(t, paragraphs, 1)
	require.Contains(t, paragraphs[0], "cost accounting advisory")
}

func TestNarrative_BreadcrumbTitleAndLinks(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "finance-commission")

	page := doc(t, `<html><body>
		<nav class="breadcum"><ul>
			<li class="breadcrumb__item">Home</li>
			<li class="breadcrumb__item">Divisions</li>
		</ul></nav>
		<h1 class="title4">Finance Commission Division</h1>
		<div class="node__content">
			<p>The division deals with <a href="/fc-reports">Finance Commission reports</a>.</p>
			<ul><li>Devolution of taxes</li></ul>
			<p>   </p>
		</div>
	</body></html>`)

	recs := e.Narrative(page, d, baseURL+"/finance-commission-division")
	require.Len(t, recs, 5)

	require.Equal(t, "Breadcrumb", recs[0].SectionType)
	require.Equal(t, "Home > Divisions", recs[0].Title)

	require.Equal(t, "Page Title", recs[1].SectionType)
	require.Equal(t, "H1 Title", recs[1].ElementType)

	require.Equal(t, "Paragraph", recs[2].ElementType)
	require.Equal(t, "Paragraph 1", recs[2].Title)
	require.Equal(t, "Finance Commission Division", recs[2].SectionName)
	require.Equal(t, "Divisions", recs[2].SectionType)

	require.Equal(t, "Link", recs[3].ElementType)
	require.Equal(t, "Finance Commission reports", recs[3].Title)
	require.Equal(t, baseURL+"/fc-reports", recs[3].Content)

	require.Equal(t, "Bullet", recs[4].ElementType)
	require.Equal(t, "Bullet 2", recs[4].Title)
}

func TestNarrative_IntroOnlyMode(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "rti")
	d.Selectors.ContentContainers = []string{"div.intro"}

	page := doc(t, `<html><body>
		<nav class="breadcum"><ul><li class="breadcrumb__item">Home</li></ul></nav>
		<h1 class="title4">RTI</h1>
		<div class="intro">
			<p>too few words</p>
			<p>The Right to Information Act empowers citizens broadly.</p>
		</div>
	</body></html>`)

	recs := e.Narrative(page, d, baseURL+"/rti")
	// Fixed section: no breadcrumb or title records, and the short block is
	// filtered by the word minimum.
	require.Len(t, recs, 1)
	require.Equal(t, "Introduction", recs[0].SectionType)
	require.Equal(t, "RTI Act Overview", recs[0].SectionName)
	require.Equal(t, "Intro Paragraph 1", recs[0].Title)
}

func TestNarrative_SkipsTableText(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "finance-commission")

	page := doc(t, `<html><body><div class="node__content">
		<p>Real narrative paragraph with enough text.</p>
		<table><tbody><tr><td><p>cell text</p></td></tr></tbody></table>
	</div></body></html>`)

	recs := e.Narrative(page, d, baseURL+"/x")
	var texts []string
	for _, r := range recs {
		if r.ElementType == "Paragraph" {
			texts = append(texts, r.Content)
		}
	}
	require.Equal(t, []string{"Real narrative paragraph with enough text."}, texts)
}

func TestNextPage(t *testing.T) {
	e := newExtractor(t)
	d := descriptor(t, "manuals")

	next, ok := e.NextPage(doc(t, `<html><body><ul>
		<li class="pager__item--next"><a href="/manuals?page=1">Next</a></li>
	</ul></body></html>`), d)
	require.True(t, ok)
	require.Equal(t, baseURL+"/manuals?page=1", next)

	_, ok = e.NextPage(doc(t, `<html><body></body></html>`), d)
	require.False(t, ok, "absent pager must stop pagination")

	_, ok = e.NextPage(doc(t, `<html><body><ul>
		<li class="pager__item--next"><a class="is-disabled" href="/manuals?page=2">Next</a></li>
	</ul></body></html>`), d)
	require.False(t, ok, "disabled anchor must stop pagination")

	_, ok = e.NextPage(doc(t, `<html><body><ul>
		<li class="pager__item--next is-disabled"><a href="/manuals?page=2">Next</a></li>
	</ul></body></html>`), d)
	require.False(t, ok, "disabled pager item must stop pagination")

	_, ok = e.NextPage(doc(t, `<html><body><ul>
		<li class="pager__item--next"><a href="">Next</a></li>
	</ul></body></html>`), d)
	require.False(t, ok, "empty href must stop pagination")
}

func TestArchiveURL(t *testing.T) {
	e := newExtractor(t)

	bySelector := descriptor(t, "grants")
	url, ok := e.ArchiveURL(doc(t, `<html><body>
		<a class="button" href="/archive-detailed-demands">Archive</a>
	</body></html>`), bySelector)
	require.True(t, ok)
	require.Equal(t, baseURL+"/archive-detailed-demands", url)

	byText := descriptor(t, "manuals")
	url, ok = e.ArchiveURL(doc(t, `<html><body>
		<a href="/somewhere-else">Other Link</a>
		<a href="/archive-manuals">Archive Manuals</a>
	</body></html>`), byText)
	require.True(t, ok)
	require.Equal(t, baseURL+"/archive-manuals", url)

	_, ok = e.ArchiveURL(doc(t, `<html><body><a href="/x">nope</a></body></html>`), byText)
	require.False(t, ok)
}

func TestResolve(t *testing.T) {
	e := newExtractor(t)
	require.Equal(t, baseURL+"/a/b.pdf", e.Resolve("/a/b.pdf"))
	require.Equal(t, "https://other.gov.in/c", e.Resolve("https://other.gov.in/c"))
	require.Empty(t, e.Resolve("   "))
}
