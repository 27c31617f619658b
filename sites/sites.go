// Package sites holds the declarative per-page descriptors that replace the
// one-script-per-page layout of the original scrapers. A descriptor carries
// everything page-specific: entry path, selectors, header fallbacks, section
// labels and extra output columns. The crawl engine itself is page-agnostic.
package sites

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selectors is the CSS-selector surface of one target page. Empty fields fall
// back to the site-wide defaults applied by withDefaults.
type Selectors struct {
	// Table locates the listing table. Alternatives may be comma-separated.
	Table string `yaml:"table"`

	// NextPager locates the "next page" anchor.
	NextPager string `yaml:"next_pager"`

	// PagerDisabled is the class that marks the pager control as dead.
	PagerDisabled string `yaml:"pager_disabled"`

	// ContentContainers are candidate selectors for the narrative body,
	// tried in order; the one with the most text wins.
	ContentContainers []string `yaml:"content_containers"`

	// Breadcrumb and BreadcrumbItem locate the navigation trail.
	Breadcrumb     string `yaml:"breadcrumb"`
	BreadcrumbItem string `yaml:"breadcrumb_item"`

	// PageTitle locates the banner heading.
	PageTitle string `yaml:"page_title"`

	// ArchiveLink locates the anchor pointing at the archive listing.
	// ArchiveLinkText matches an anchor by its exact text instead.
	ArchiveLink     string `yaml:"archive_link"`
	ArchiveLinkText string `yaml:"archive_link_text"`

	// RowHyperlink, when set, captures an external link per table row and
	// appends it to the row content (RTI listing style).
	RowHyperlink string `yaml:"row_hyperlink"`
}

// ExtraColumn maps a table header onto a page-specific output column.
type ExtraColumn struct {
	Column string `yaml:"column"`
	Header string `yaml:"header"`
}

// Descriptor is the full configuration of one target page.
type Descriptor struct {
	// Slug identifies the site on the command line and in output filenames.
	Slug string `yaml:"slug"`

	// Name is the human-readable page name.
	Name string `yaml:"name"`

	// EntryPath is appended to the base origin to form the start URL.
	EntryPath string `yaml:"entry_path"`

	// Tabular and Narrative select the extraction modes for the page.
	Tabular   bool `yaml:"tabular"`
	Narrative bool `yaml:"narrative"`

	// DefaultHeaders is the header fallback used when a table has no thead.
	DefaultHeaders []string `yaml:"default_headers"`

	// MainSection and ArchiveSection label records from the two listings.
	MainSection    string `yaml:"main_section"`
	ArchiveSection string `yaml:"archive_section"`

	// FilePrefix disambiguates downloaded filenames between sites.
	FilePrefix string `yaml:"file_prefix"`

	// NarrativeType is the section_type stamped on narrative records.
	// Defaults to "Content".
	NarrativeType string `yaml:"narrative_type"`

	// NarrativeSection pins a fixed section_name for narrative records.
	// When set, the page is treated as an intro block: no breadcrumb or
	// page-title records are emitted.
	NarrativeSection string `yaml:"narrative_section"`

	// ParagraphLabel overrides the title prefix of narrative text records
	// (e.g. "Intro Paragraph"). Defaults to the element label.
	ParagraphLabel string `yaml:"paragraph_label"`

	// MinWords drops narrative text blocks shorter than this many words.
	MinWords int `yaml:"min_words"`

	// SectionColumn, when set, adds an extra output column carrying the
	// section label (the original Autonomous Bodies listing_type column).
	SectionColumn string `yaml:"section_column"`

	// ExtraColumns lift named table headers into dedicated output columns.
	ExtraColumns []ExtraColumn `yaml:"extra_columns"`

	Selectors Selectors `yaml:"selectors"`
}

// Site-wide selector defaults shared by every doe.gov.in listing page.
const (
	defaultTable         = "table"
	defaultNextPager     = "li.pager__item--next a"
	defaultPagerDisabled = "is-disabled"
	defaultBreadcrumb    = "nav.breadcum"
	defaultCrumbItem     = "li.breadcrumb__item"
	defaultPageTitle     = "h1.title4"
)

// DefaultTableHeaders is the positional fallback for header-less tables.
var DefaultTableHeaders = []string{"Sr.No", "Title", "Date", "Download"}

func (d *Descriptor) withDefaults() {
	if d.Selectors.Table == "" {
		d.Selectors.Table = defaultTable
	}
	if d.Selectors.NextPager == "" {
		d.Selectors.NextPager = defaultNextPager
	}
	if d.Selectors.PagerDisabled == "" {
		d.Selectors.PagerDisabled = defaultPagerDisabled
	}
	if d.Selectors.Breadcrumb == "" {
		d.Selectors.Breadcrumb = defaultBreadcrumb
	}
	if d.Selectors.BreadcrumbItem == "" {
		d.Selectors.BreadcrumbItem = defaultCrumbItem
	}
	if d.Selectors.PageTitle == "" {
		d.Selectors.PageTitle = defaultPageTitle
	}
	if len(d.DefaultHeaders) == 0 {
		d.DefaultHeaders = DefaultTableHeaders
	}
	if d.MainSection == "" {
		d.MainSection = "Main Section"
	}
	if d.ArchiveSection == "" {
		d.ArchiveSection = "Archive Section"
	}
	if d.FilePrefix == "" {
		d.FilePrefix = d.Slug
	}
}

// Validate checks that every non-empty selector on the descriptor parses.
func (d *Descriptor) Validate() error {
	if d.Slug == "" {
		return fmt.Errorf("site descriptor without slug (%q)", d.Name)
	}
	if d.EntryPath == "" {
		return fmt.Errorf("site %s: empty entry path", d.Slug)
	}
	if !d.Tabular && !d.Narrative {
		return fmt.Errorf("site %s: neither tabular nor narrative", d.Slug)
	}
	sels := []string{
		d.Selectors.Table, d.Selectors.NextPager, d.Selectors.Breadcrumb,
		d.Selectors.BreadcrumbItem, d.Selectors.PageTitle,
		d.Selectors.ArchiveLink, d.Selectors.RowHyperlink,
	}
	sels = append(sels, d.Selectors.ContentContainers...)
	for _, s := range sels {
		if s == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(s); err != nil {
			return fmt.Errorf("site %s: bad selector %q: %w", d.Slug, s, err)
		}
	}
	return nil
}
