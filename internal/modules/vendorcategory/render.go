package vendorcategory

import (
	"embed"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/georgemunganga/vendor-categories/internal/modules/vendor"
	"github.com/georgemunganga/vendor-categories/internal/slug"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"indent": func(depth int) string { return strings.Repeat("\u00a0\u00a0\u00a0", depth) },
}).ParseFS(templateFS, "templates/*.html"))

type hiddenField struct {
	Name  string
	Value string
}

type selectOption struct {
	SelectOption
	Selected bool
}

// FilterForm is the view model of the category filter control.
type FilterForm struct {
	Action  string
	Param   string
	Hidden  []hiddenField
	Options []selectOption
}

// NewFilterForm prepares the filter control. Every parameter of
// query.Preserved is repeated as a hidden field, one per value, in key order.
func NewFilterForm(action string, categories []*Category, query ListingQuery) FilterForm {
	form := FilterForm{Action: action, Param: FilterParam}

	keys := make([]string, 0, len(query.Preserved))
	for key := range query.Preserved {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range query.Preserved[key] {
			form.Hidden = append(form.Hidden, hiddenField{Name: key, Value: value})
		}
	}

	selected, _ := slug.Normalize(query.FilterSlug)
	for _, opt := range Flatten(BuildTree(categories)) {
		form.Options = append(form.Options, selectOption{SelectOption: opt, Selected: selected != "" && opt.Slug == selected})
	}
	return form
}

// RenderFilterForm writes the filter control as an HTML fragment.
func RenderFilterForm(w io.Writer, form FilterForm) error {
	return pages.ExecuteTemplate(w, "filter_form", form)
}

// RenderStoreList writes the filter control followed by the store list.
func RenderStoreList(w io.Writer, form FilterForm, stores []*vendor.Vendor) error {
	return pages.ExecuteTemplate(w, "store_list", struct {
		Form   FilterForm
		Stores []*vendor.Vendor
	}{form, stores})
}
