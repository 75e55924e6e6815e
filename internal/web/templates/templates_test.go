package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestIndex_EmptyForm(t *testing.T) {
	doc := render(t, Index(IndexParams{}))

	assert.Equal(t, "Contact Finder", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find(`form[method="post"] input[name="domain"]`).Length())
	assert.Equal(t, 1, doc.Find(`input[name="company_name"]`).Length())
	assert.Zero(t, doc.Find(".alert").Length())
	assert.Zero(t, doc.Find(".results").Length())
	assert.Zero(t, doc.Find(".recent").Length())
}

func TestIndex_EscapesInput(t *testing.T) {
	doc := render(t, Index(IndexParams{
		Domain:  `"><script>alert(1)</script>`,
		Company: "Acme & Co",
	}))

	assert.Zero(t, doc.Find("script").Length())
	val, _ := doc.Find(`input[name="domain"]`).Attr("value")
	assert.Equal(t, `"><script>alert(1)</script>`, val)
	val, _ = doc.Find(`input[name="company_name"]`).Attr("value")
	assert.Equal(t, "Acme & Co", val)
}

func TestIndex_Error(t *testing.T) {
	doc := render(t, Index(IndexParams{
		Error: &Alert{Message: "No emails found for Acme (acme.com).", Action: "Try again", Code: "RES001"},
	}))

	alert := doc.Find(".alert")
	assert.Equal(t, "No emails found for Acme (acme.com).", alert.Find("strong").Text())
	assert.Contains(t, alert.Find(".code").Text(), "RES001")
}

func TestIndex_Results(t *testing.T) {
	doc := render(t, Index(IndexParams{
		Results: &Results{
			Contacts: []Contact{
				{FirstName: "Ada", LastName: "Lovelace", Email: "ada@acme.com", JobTitle: "CTO", Company: "Acme Co"},
				{FirstName: "N/A", LastName: "N/A", Email: "x@acme.com", JobTitle: "N/A", Company: "Acme Co"},
			},
			CSVPath:     "Acme_Co/Acme_Co_contacts.csv",
			DownloadURL: "/download/Acme_Co/Acme_Co_contacts.csv",
			ArtifactURL: "/artifacts/00000000-0000-0000-0000-000000000001",
		},
	}))

	assert.Equal(t, resultColumns, doc.Find(".results thead th").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	}))
	assert.Equal(t, 2, doc.Find(".results tbody tr").Length())
	assert.Equal(t, "ada@acme.com", doc.Find(".results tbody tr").First().Find("td").Eq(2).Text())

	href, ok := doc.Find("a.csv-link").Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/download/Acme_Co/Acme_Co_contacts.csv", href)
	assert.Equal(t, "Acme_Co/Acme_Co_contacts.csv", doc.Find(".download code").Text())
	assert.Equal(t, 1, doc.Find("a.artifact-link").Length())
}

func TestResultsTable_RejectsUnsafeURL(t *testing.T) {
	doc := render(t, ResultsTable(Results{DownloadURL: "javascript:alert(1)", CSVPath: "x"}))

	href, _ := doc.Find("a.csv-link").Attr("href")
	assert.NotContains(t, href, "javascript")
}

func TestRecentSearches(t *testing.T) {
	doc := render(t, RecentSearches([]RecentSearch{
		{Company: "Acme", Domain: "acme.com", Rows: 3, CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), ArtifactURL: "/artifacts/abc"},
	}))

	row := doc.Find(".recent tbody tr")
	assert.Equal(t, 1, row.Length())
	assert.Equal(t, "3", row.Find("td").Eq(2).Text())
	assert.Equal(t, "2026-01-02 03:04 UTC", row.Find("td").Eq(3).Text())
}
