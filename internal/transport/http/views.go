package http

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"math"
	"strings"
	"time"

	"github.com/kahvecikaan/catalog-browser/internal/browser"
)

// User facing messages
const (
	MsgNoProducts    = "No products available."
	MsgNotFound      = "Product not found."
	MsgSelectPrompt  = "Please select a product from the list."
	MsgLoadingList   = "Loading products..."
	MsgLoadingDetail = "Loading product..."
)

//go:embed templates/*.html
var templateFS embed.FS

// page is the data of one render of the two pane layout
type page struct {
	State browser.State

	// the location being rendered, "/" or "/product/{id}"
	Location string

	// true on "/", where the detail pane only prompts for a selection
	Placeholder bool

	Messages map[string]string
}

// Views renders the HTML pages
type Views struct {
	tmpl *template.Template
}

func NewViews() (*Views, error) {
	tmpl, err := template.New("page.html").Funcs(template.FuncMap{
		"stars":      stars,
		"formatDate": formatDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Views{tmpl: tmpl}, nil
}

// Render writes the page for state at location. The page is rendered to a
// buffer first so a template error never produces a half written response.
func (v *Views) Render(w io.Writer, state browser.State, location string) error {
	var buf bytes.Buffer
	err := v.tmpl.ExecuteTemplate(&buf, "page.html", page{
		State:       state,
		Location:    location,
		Placeholder: location == browser.RootPath,
		Messages: map[string]string{
			"NoProducts":    MsgNoProducts,
			"NotFound":      MsgNotFound,
			"SelectPrompt":  MsgSelectPrompt,
			"LoadingList":   MsgLoadingList,
			"LoadingDetail": MsgLoadingDetail,
		},
	})
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// stars renders a 0-5 rating as filled and empty stars; partial stars are
// not filled
func stars(rating float64) string {
	n := int(math.Floor(rating))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// formatDate renders an ISO-8601 timestamp as a long date. Unparsable input
// is returned unchanged.
func formatDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("January 2, 2006")
}
