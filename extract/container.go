package extract

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/doccrawl/sites"
)

// bestContainer picks the narrative content container. Candidate selectors are
// tried in descriptor order and the first match of each is scored by extracted
// text length; the longest wins, ties keep the earlier candidate. Picking
// purely by text length can select an unintended sibling on sparse pages;
// that matches the behavior of the site this was built against.
func (e *Extractor) bestContainer(doc *goquery.Document, d sites.Descriptor) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0
	bestSel := ""

	for _, sel := range d.Selectors.ContentContainers {
		cand := doc.Find(sel).First()
		if cand.Length() == 0 {
			continue
		}
		if n := len(normalizeText(cand.Text())); n > bestLen {
			best = cand
			bestLen = n
			bestSel = sel
		}
	}

	if best != nil {
		slog.Debug("content container selected", "site", d.Slug, "selector", bestSel, "textLen", bestLen)
	}
	return best
}
