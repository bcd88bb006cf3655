package portal

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormField describes one form input for label rendering.
type FormField struct {
	// Name is the input's name/id attribute, e.g. "first_name".
	Name string

	// Label is the visible text. When empty a title-cased form of Name is used.
	Label string

	// Mandatory adds the required marker next to the label.
	Mandatory bool
}

// FuncMap returns the template functions available to portal templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formLabel": formLabel,
	}
}

// formLabel renders the standard portal label for a form field:
//
//	<label class="form-label" for="first_name">First Name <span class="mandatory">*</span></label>
//
// The mandatory marker is only present for mandatory fields. All attribute
// and text content is escaped; the returned HTML contains no caller data
// outside escaped positions.
func formLabel(f FormField) template.HTML {
	label := f.Label
	if label == "" {
		// Casers carry transform state, so build one per call rather than
		// sharing across requests.
		label = cases.Title(language.English).String(strings.ReplaceAll(f.Name, "_", " "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<label class="form-label" for="%s">%s`,
		template.HTMLEscapeString(f.Name), template.HTMLEscapeString(label))
	if f.Mandatory {
		b.WriteString(` <span class="mandatory">*</span>`)
	}
	b.WriteString(`</label>`)
	return template.HTML(b.String())
}
