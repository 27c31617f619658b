package models

// Canonical column names shared by every target page. Page-specific columns
// are additive and slot between the leading and trailing groups.
const (
	FieldSectionType  = "section_type"
	FieldSectionName  = "section_name"
	FieldElementType  = "element_type"
	FieldTitle        = "title"
	FieldContent      = "content"
	FieldURL          = "url"
	FieldPDFURL       = "pdf_url"
	FieldLocalPDFPath = "local_pdf_path"
)

// LeadingFields is the fixed CSV column prefix.
var LeadingFields = []string{
	FieldSectionType,
	FieldSectionName,
	FieldElementType,
	FieldTitle,
	FieldContent,
}

// TrailingFields is the fixed CSV column suffix (URL and asset columns).
var TrailingFields = []string{
	FieldURL,
	FieldPDFURL,
	FieldLocalPDFPath,
}

// Field is one page-specific column on a record. Order of appearance matters
// for the output schema, hence a slice rather than a map.
type Field struct {
	Name  string
	Value string
}

// Record is one flattened unit of extracted content: a table row, a paragraph,
// an inline link, a breadcrumb or a heading. Created during extraction, mutated
// once to attach a local asset path during the download pass, then written to
// the sink.
type Record struct {
	SectionType  string
	SectionName  string
	ElementType  string
	Title        string
	Content      string
	URL          string
	PDFURL       string
	LocalPDFPath string

	// Extra holds page-specific columns in first-seen order.
	Extra []Field
}

// SetExtra appends or overwrites a page-specific column.
func (r *Record) SetExtra(name, value string) {
	for i := range r.Extra {
		if r.Extra[i].Name == name {
			r.Extra[i].Value = value
			return
		}
	}
	r.Extra = append(r.Extra, Field{Name: name, Value: value})
}

// GetExtra looks up a page-specific column by name.
func (r *Record) GetExtra(name string) (string, bool) {
	for _, f := range r.Extra {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the record's value for a canonical or extra column name.
func (r *Record) Value(field string) string {
	switch field {
	case FieldSectionType:
		return r.SectionType
	case FieldSectionName:
		return r.SectionName
	case FieldElementType:
		return r.ElementType
	case FieldTitle:
		return r.Title
	case FieldContent:
		return r.Content
	case FieldURL:
		return r.URL
	case FieldPDFURL:
		return r.PDFURL
	case FieldLocalPDFPath:
		return r.LocalPDFPath
	}
	v, _ := r.GetExtra(field)
	return v
}
