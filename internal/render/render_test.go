package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/profilekit/profilekit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleProfile() *models.ExpandedProfile {
	start := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.ExpandedProfile{
		Profile: models.Profile{
			ID:          primitive.NewObjectID(),
			Name:        "Ada Lovelace",
			Email:       "ada@example.com",
			Designation: "Engineer",
			Bio:         "Writes <b>programs</b>",
			GitHub:      "https://github.com/ada",
			Experience: []models.Experience{
				{Company: "Analytical", Position: "Programmer", StartDate: "2021-01-01", Technologies: "Go, Mongo"},
			},
			Education: []models.Education{
				{Institution: "Home", Degree: "BSc", StartDate: "2015-09", EndDate: "2019-06"},
			},
			Skills:        []models.Skill{{Header: "Languages", Skills: "Go,Rust"}},
			Certification: []models.Certification{{Name: "CKA", Issuer: "CNCF", IssueDate: "2023-05-02"}},
		},
		Projects: []models.Project{
			{Name: "Engine", Description: "diff engine", Technologies: "Go, Redis", StartDate: &start},
		},
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleProfile()))
	out := buf.String()

	assert.Contains(t, out, "<title>Ada Lovelace | Portfolio</title>")
	assert.Contains(t, out, "Programmer · Analytical")
	assert.Contains(t, out, "Jan 2021 – Present")
	assert.Contains(t, out, "Sep 2015 – Jun 2019")
	assert.Contains(t, out, "Mar 2022 – Present")
	assert.Contains(t, out, "<span>Redis</span>")
	assert.Contains(t, out, "<span>Rust</span>")
	assert.Contains(t, out, "May 2023")
	assert.Contains(t, out, `<div class="initial">A</div>`)
	assert.Contains(t, out, "Writes &lt;b&gt;programs&lt;/b&gt;")
	assert.NotContains(t, out, "LinkedIn")
}

func TestWriteHTMLOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	p := &models.ExpandedProfile{Profile: models.Profile{Name: "Solo", ProfileImage: "https://cdn/x.png"}}
	require.NoError(t, WriteHTML(&buf, p))
	out := buf.String()
	assert.Contains(t, out, `<img class="avatar" src="https://cdn/x.png"`)
	assert.NotContains(t, out, "<h2>Projects</h2>")
	assert.NotContains(t, out, "<h2>Experience</h2>")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "portfolio-Ada-Lovelace.pdf", Filename(" Ada Lovelace ", "pdf"))
	assert.Equal(t, "portfolio-profile.html", Filename(`"; /`, "html"))
	assert.Equal(t, "portfolio-profile.html", Filename("", "html"))
}

func TestHTMLExporter(t *testing.T) {
	doc, err := HTMLExporter{}.Export(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	assert.Equal(t, "portfolio-Ada-Lovelace.html", doc.Filename)
	assert.Contains(t, string(doc.Body), "Ada Lovelace")
}

type failingExporter struct{ calls int }

func (f *failingExporter) Export(context.Context, *models.ExpandedProfile) (*Document, error) {
	f.calls++
	return nil, errors.New("chrome unavailable")
}

func TestFallbackServesHTML(t *testing.T) {
	primary := &failingExporter{}
	doc, err := Fallback{Primary: primary}.Export(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "portfolio-Ada-Lovelace.html", doc.Filename)

	doc, err = Fallback{}.Export(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
}

func TestPDFExporterUnreachableBrowser(t *testing.T) {
	e := NewPDFExporter("ws://127.0.0.1:1/devtools/browser/none", time.Second)
	_, err := e.Export(context.Background(), sampleProfile())
	assert.Error(t, err)
}
