// Package render turns expanded profiles into portfolio pages and exports.
package render

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/pkg/logger"
)

//go:embed portfolio.tmpl
var portfolioSource string

var portfolio = template.Must(template.New("portfolio").Funcs(template.FuncMap{
	"date":     formatDate,
	"timeDate": formatTime,
	"tags":     models.SplitTags,
	"initial":  initial,
}).Parse(portfolioSource))

// Document is a rendered export.
type Document struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Exporter produces a downloadable document for a profile.
type Exporter interface {
	Export(ctx context.Context, p *models.ExpandedProfile) (*Document, error)
}

// WriteHTML renders the portfolio page for p.
func WriteHTML(w io.Writer, p *models.ExpandedProfile) error {
	return portfolio.Execute(w, p)
}

// HTMLExporter returns the printable page itself as an attachment.
type HTMLExporter struct{}

func (HTMLExporter) Export(_ context.Context, p *models.ExpandedProfile) (*Document, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, p); err != nil {
		return nil, err
	}
	return &Document{
		Body:        buf.Bytes(),
		ContentType: "text/html; charset=utf-8",
		Filename:    Filename(p.Name, "html"),
	}, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds "portfolio-<name>.<ext>" with a header-safe name.
func Filename(name, ext string) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(name), "-"), "-")
	if slug == "" {
		slug = "profile"
	}
	return "portfolio-" + slug + "." + ext
}

// formatDate renders sub-document dates as "Jan 2006"; empty means ongoing.
func formatDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Present"
	}
	t := models.ParseDate(s)
	if t == nil {
		return s
	}
	return t.Format("Jan 2006")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "Present"
	}
	return t.Format("Jan 2006")
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// Fallback tries primary and, when it fails, serves the printable HTML.
type Fallback struct {
	Primary Exporter
}

func (f Fallback) Export(ctx context.Context, p *models.ExpandedProfile) (*Document, error) {
	if f.Primary != nil {
		doc, err := f.Primary.Export(ctx, p)
		if err == nil {
			return doc, nil
		}
		logger.Warnf("export %s: falling back to html: %v", p.ID.Hex(), err)
	}
	return HTMLExporter{}.Export(ctx, p)
}
