// Package extract turns a loaded page DOM into flat records. Two modes exist:
// tabular (listing tables with a header row) and narrative (breadcrumb, page
// title, paragraphs, bullets and inline links). Which modes run for a page is
// driven by its site descriptor.
package extract

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/doccrawl/models"
	"github.com/use-agent/doccrawl/sites"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Extractor resolves relative links against a fixed base origin and emits
// records from page snapshots.
type Extractor struct {
	base *url.URL
}

// New creates an Extractor for the given base origin.
func New(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("extract: parse base URL: %w", err)
	}
	return &Extractor{base: u}, nil
}

// Resolve resolves href against the base origin. Unparseable or empty hrefs
// resolve to "".
func (e *Extractor) Resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return e.base.ResolveReference(u).String()
}

// Table extracts one record per body row of the page's listing table.
// A missing table is not an error; the page simply yields no tabular records.
func (e *Extractor) Table(doc *goquery.Document, d sites.Descriptor, section, pageURL string) []models.Record {
	table := doc.Find(d.Selectors.Table).First()
	if table.Length() == 0 {
		slog.Debug("no listing table on page", "site", d.Slug, "url", pageURL)
		return nil
	}

	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, normalizeText(th.Text()))
	})
	if len(headers) == 0 {
		headers = d.DefaultHeaders
	}

	var records []models.Record
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, normalizeText(td.Text()))
		})
		if len(cells) == 0 {
			return
		}

		rowData := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rowData[h] = cells[i]
			}
		}

		title := rowData["Title"]
		if title == "" && len(cells) > 1 {
			title = cells[1]
		}
		if title == "" {
			title = "Untitled"
		}

		var pdfURL string
		if a := tr.Find("a[href$='.pdf']").First(); a.Length() > 0 {
			if href, ok := a.Attr("href"); ok {
				pdfURL = e.Resolve(href)
			}
		}

		parts := make([]string, 0, len(headers))
		for _, h := range headers {
			parts = append(parts, h+": "+rowData[h])
		}
		content := strings.Join(parts, " | ")

		if d.Selectors.RowHyperlink != "" {
			if a := tr.Find(d.Selectors.RowHyperlink).First(); a.Length() > 0 {
				if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
					content += " | Hyperlink: " + strings.TrimSpace(href)
				}
			}
		}

		rec := models.Record{
			SectionType: "Table",
			SectionName: section,
			ElementType: "Row",
			Title:       title,
			Content:     content,
			URL:         pageURL,
			PDFURL:      pdfURL,
		}
		if d.SectionColumn != "" {
			rec.SetExtra(d.SectionColumn, section)
		}
		for _, ec := range d.ExtraColumns {
			rec.SetExtra(ec.Column, rowData[ec.Header])
		}
		records = append(records, rec)
	})

	return records
}

// Narrative extracts breadcrumb, page title, paragraph/bullet and inline link
// records from the page's best content container.
//
// When the descriptor pins a fixed NarrativeSection the page is treated as an
// intro block (RTI style): no breadcrumb or title records, just the text.
func (e *Extractor) Narrative(doc *goquery.Document, d sites.Descriptor, pageURL string) []models.Record {
	var records []models.Record

	sectionType := d.NarrativeType
	if sectionType == "" {
		sectionType = "Content"
	}
	sectionName := d.NarrativeSection
	introOnly := d.NarrativeSection != ""

	if !introOnly {
		records = append(records, e.breadcrumb(doc, d, pageURL)...)

		titleSel := doc.Find(d.Selectors.PageTitle).First()
		if titleSel.Length() == 0 {
			titleSel = doc.Find("h1, h2, h3").First()
		}
		sectionName = d.Name
		if titleSel.Length() > 0 {
			if text := normalizeText(titleSel.Text()); text != "" {
				sectionName = text
				records = append(records, models.Record{
					SectionType: "Page Title",
					SectionName: "Main Heading",
					ElementType: strings.ToUpper(goquery.NodeName(titleSel)) + " Title",
					Title:       text,
					Content:     text,
					URL:         pageURL,
				})
			}
		}
	}

	container := e.bestContainer(doc, d)
	if container == nil {
		slog.Warn("no content container matched", "site", d.Slug, "url", pageURL)
		return records
	}

	blockIndex := 0
	container.Find("p, li").Each(func(_ int, el *goquery.Selection) {
		// Table text belongs to the tabular extractor, not the narrative one.
		if el.ParentsFiltered("table").Length() > 0 {
			return
		}
		text := normalizeText(el.Text())
		if text == "" {
			return
		}
		if d.MinWords > 0 && len(strings.Fields(text)) < d.MinWords {
			return
		}

		blockIndex++
		label := "Paragraph"
		if goquery.NodeName(el) == "li" {
			label = "Bullet"
		}
		titleLabel := label
		if d.ParagraphLabel != "" {
			titleLabel = d.ParagraphLabel
		}

		records = append(records, models.Record{
			SectionType: sectionType,
			SectionName: sectionName,
			ElementType: label,
			Title:       fmt.Sprintf("%s %d", titleLabel, blockIndex),
			Content:     text,
			URL:         pageURL,
		})

		el.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			resolved := e.Resolve(href)
			if resolved == "" {
				return
			}
			linkText := normalizeText(a.Text())
			if linkText == "" {
				linkText = resolved
			}
			records = append(records, models.Record{
				SectionType: sectionType,
				SectionName: sectionName,
				ElementType: "Link",
				Title:       linkText,
				Content:     resolved,
				URL:         pageURL,
			})
		})
	})

	slog.Debug("narrative parse complete", "site", d.Slug, "blocks", blockIndex)
	return records
}

func (e *Extractor) breadcrumb(doc *goquery.Document, d sites.Descriptor, pageURL string) []models.Record {
	bc := doc.Find(d.Selectors.Breadcrumb).First()
	if bc.Length() == 0 {
		return nil
	}
	var crumbs []string
	bc.Find(d.Selectors.BreadcrumbItem).Each(func(_ int, li *goquery.Selection) {
		if text := normalizeText(li.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	trail := strings.Join(crumbs, " > ")
	if trail == "" {
		return nil
	}
	return []models.Record{{
		SectionType: "Breadcrumb",
		SectionName: "Navigation Path",
		ElementType: "Breadcrumb",
		Title:       trail,
		Content:     trail,
		URL:         pageURL,
	}}
}

// normalizeText collapses runs of whitespace and trims the result.
func normalizeText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
