package extract

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/doccrawl/sites"
)

// NextPage locates the page's "next" pager control and returns its resolved
// target URL. The second return is false when the control is absent, disabled
// or has an empty href, all of which terminate pagination.
func (e *Extractor) NextPage(doc *goquery.Document, d sites.Descriptor) (string, bool) {
	a := doc.Find(d.Selectors.NextPager).First()
	if a.Length() == 0 {
		return "", false
	}
	if hasClass(a, d.Selectors.PagerDisabled) || hasClass(a.Parent(), d.Selectors.PagerDisabled) {
		return "", false
	}
	href, _ := a.Attr("href")
	resolved := e.Resolve(href)
	if resolved == "" {
		return "", false
	}
	return resolved, true
}

// ArchiveURL discovers the page's archive listing link, either by selector or
// by exact anchor text, per the descriptor. Absence is not an error.
func (e *Extractor) ArchiveURL(doc *goquery.Document, d sites.Descriptor) (string, bool) {
	if d.Selectors.ArchiveLink != "" {
		if a := doc.Find(d.Selectors.ArchiveLink).First(); a.Length() > 0 {
			href, _ := a.Attr("href")
			if resolved := e.Resolve(href); resolved != "" {
				return resolved, true
			}
		}
	}
	if d.Selectors.ArchiveLinkText != "" {
		var found string
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if normalizeText(a.Text()) != d.Selectors.ArchiveLinkText {
				return true
			}
			href, _ := a.Attr("href")
			found = e.Resolve(href)
			return found == ""
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

func hasClass(s *goquery.Selection, class string) bool {
	if s.Length() == 0 || class == "" {
		return false
	}
	attr, _ := s.Attr("class")
	return slices.Contains(strings.Fields(attr), class)
}
