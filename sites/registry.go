package sites

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// builtin is the descriptor table covering every page the original corpus
// scraped, one row per page. Selectors beyond the site-wide defaults come
// from the respective page's markup.
var builtin = []Descriptor{
	{
		Slug:      "manuals",
		Name:      "Manuals",
		EntryPath: "/manuals",
		Tabular:   true,
		Selectors: Selectors{
			ArchiveLinkText: "Archive Manuals",
		},
		MainSection:    "Active Manuals",
		ArchiveSection: "Archived Manuals",
	},
	{
		Slug:      "rti",
		Name:      "RTI Information",
		EntryPath: "/rti-information-department-of-expenditure",
		Tabular:   true,
		Narrative: true,
		DefaultHeaders: []string{
			"Sr.No", "Title", "Date", "Download", "Hyperlink",
		},
		MainSection:      "RTI Table Section",
		NarrativeType:    "Introduction",
		NarrativeSection: "RTI Act Overview",
		ParagraphLabel:   "Intro Paragraph",
		MinWords:         4,
		Selectors: Selectors{
			ContentContainers: []string{
				"div.region.region-content div.InnerPageWrap",
				"div.region.region-content div.node__content",
				"div.region.region-content div.view-header",
				"div.region.region-content div.field--name-body",
			},
			RowHyperlink: "a[href^='http']",
		},
	},
	{
		Slug:           "grants",
		Name:           "Detailed Demands For Grants",
		EntryPath:      "/detailed-demands-for-grants",
		Tabular:        true,
		MainSection:    "Main Section",
		ArchiveSection: "Archive Section",
		Selectors: Selectors{
			ArchiveLink: "a.button[href*='archive']",
		},
	},
	{
		Slug:           "annual-report",
		Name:           "Annual Report on Pay and Allowances",
		EntryPath:      "/annual-report-pay-and-allowances",
		Tabular:        true,
		MainSection:    "Main Section",
		ArchiveSection: "Archive Section",
		Selectors: Selectors{
			ArchiveLink: "a.button[href*='archive']",
		},
	},
	{
		Slug:        "monthly-summary",
		Name:        "Monthly Summary Report",
		EntryPath:   "/monthly-summary-report",
		Tabular:     true,
		MainSection: "Monthly Summary Reports",
	},
	{
		Slug:           "recruitment-rules",
		Name:           "Recruitment Rules",
		EntryPath:      "/recruitment-rules",
		Tabular:        true,
		MainSection:    "Main Section",
		ArchiveSection: "Archive Section",
		Selectors: Selectors{
			ArchiveLink: "a.button[href*='archive']",
		},
	},
	{
		Slug:           "procurement-policy",
		Name:           "Procurement Policy O.M.",
		EntryPath:      "/procurement-policy-om",
		Tabular:        true,
		MainSection:    "Current",
		ArchiveSection: "Archive",
		SectionColumn:  "listing_type",
		Selectors: Selectors{
			Table:       "table.responsiveTable.tableData, table.tableData",
			ArchiveLink: "a[href*='/archive/']",
		},
	},
	{
		Slug:           "autonomous-bodies",
		Name:           "Autonomous Bodies - Pay Related Matters",
		EntryPath:      "/pay-related-matters/88",
		Tabular:        true,
		MainSection:    "Active",
		ArchiveSection: "Archive",
		SectionColumn:  "listing_type",
		ExtraColumns: []ExtraColumn{
			{Column: "office_memorandum_no", Header: "O.M.No"},
			{Column: "date", Header: "Date"},
		},
		Selectors: Selectors{
			Table:       "table.tableData, table.responsiveTable",
			NextPager:   "li.pager__item--next a, li.next a, a[rel='next']",
			ArchiveLink: "a[href*='/archive/pay-related-matters/']",
		},
	},
	{
		Slug:          "finance-commission",
		Name:          "Finance Commission Division",
		EntryPath:     "/finance-commission-division",
		Narrative:     true,
		NarrativeType: "Divisions",
		Selectors: Selectors{
			ContentContainers: []string{"div.node__content"},
		},
	},
	{
		Slug:          "public-finance-states",
		Name:          "Public Finance (States) Division",
		EntryPath:     "/public-finance-states-division",
		Narrative:     true,
		NarrativeType: "Divisions",
		Selectors: Selectors{
			ContentContainers: []string{"div.node__content"},
		},
	},
	{
		Slug:          "ajnifm",
		Name:          "Arun Jaitley National Institute of Financial Management",
		EntryPath:     "/national-instituteof-financial-management",
		Narrative:     true,
		NarrativeType: "Divisions",
		Selectors: Selectors{
			ContentContainers: []string{
				"div.node__content",
				"div.field--name-body",
			},
		},
	},
	{
		Slug:          "chief-adviser-cost",
		Name:          "Office of Chief Adviser Cost",
		EntryPath:     "/office-chief-adviser-cost",
		Narrative:     true,
		NarrativeType: "Divisions",
		Selectors: Selectors{
			ContentContainers: []string{
				"div.node__content",
				"article.node div.node__content",
				"div.text-content.clearfix.field.field--name-body",
				"div.field--name-body",
				"div.region.region--content",
			},
		},
	},
}

// Registry is an ordered set of site descriptors.
type Registry struct {
	order []string
	byID  map[string]Descriptor
}

// Builtin returns the registry of all built-in site descriptors.
func Builtin() *Registry {
	r := &Registry{byID: make(map[string]Descriptor, len(builtin))}
	for _, d := range builtin {
		d.withDefaults()
		r.order = append(r.order, d.Slug)
		r.byID[d.Slug] = d
	}
	return r
}

// Load returns the built-in registry with the optional YAML overlay merged on
// top. Overlay descriptors replace built-ins with the same slug and append
// otherwise.
func Load(overlayPath string) (*Registry, error) {
	r := Builtin()
	if overlayPath == "" {
		return r, nil
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return nil, fmt.Errorf("sites: read overlay: %w", err)
	}
	var overlay struct {
		Sites []Descriptor `yaml:"sites"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("sites: parse overlay: %w", err)
	}

	for _, d := range overlay.Sites {
		d.withDefaults()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[d.Slug]; !exists {
			r.order = append(r.order, d.Slug)
		}
		r.byID[d.Slug] = d
	}
	return r, nil
}

// All returns the descriptors in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.byID[slug])
	}
	return out
}

// Get looks up one descriptor by slug.
func (r *Registry) Get(slug string) (Descriptor, bool) {
	d, ok := r.byID[slug]
	return d, ok
}
