package templates

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// Alert is a user-facing error.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// Contact is one rendered result row.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	JobTitle  string
	Company   string
}

// Results is a finished search.
type Results struct {
	Contacts []Contact
	// CSVPath is the artifact path relative to the output root.
	CSVPath     string
	DownloadURL string
	ArtifactURL string
}

// RecentSearch is one row of the recent searches list.
type RecentSearch struct {
	Company     string
	Domain      string
	Rows        int
	CreatedAt   time.Time
	ArtifactURL string
}

// IndexParams drives the index page. Error and Results are mutually exclusive;
// both nil renders the empty form.
type IndexParams struct {
	Domain  string
	Company string
	Error   *Alert
	Results *Results
	Recent  []RecentSearch
}

// resultColumns are the results table headings, in CSV column order.
var resultColumns = []string{"First Name", "Last Name", "Email", "Job Title", "Company"}

// Index is the search page.
func Index(p IndexParams) templ.Component {
	return Page("Contact Finder", indexBody(p))
}

func indexBody(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h1>Contact Finder</h1>")
		h.raw(`<form class="search" method="post" action="/">`)
		h.raw(`<label>Domain<input type="text" name="domain" placeholder="example.com"`)
		h.attr("value", p.Domain)
		h.raw(`></label>`)
		h.raw(`<label>Company name<input type="text" name="company_name" placeholder="Example Inc"`)
		h.attr("value", p.Company)
		h.raw(`></label>`)
		h.raw(`<button type="submit">Search</button></form>`)
		if h.err != nil {
			return h.err
		}

		switch {
		case p.Error != nil:
			if err := ErrorAlert(p.Error.Message, p.Error.Action, p.Error.Code).Render(ctx, w); err != nil {
				return err
			}
		case p.Results != nil:
			if err := ResultsTable(*p.Results).Render(ctx, w); err != nil {
				return err
			}
		}

		if len(p.Recent) > 0 {
			return RecentSearches(p.Recent).Render(ctx, w)
		}
		return nil
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<p>")
			h.text(action)
			h.raw("</p>")
		}
		if code != "" {
			h.raw(`<span class="code">Code: `)
			h.text(code)
			h.raw("</span>")
		}
		h.raw("</div>")
		return h.err
	})
}

// ResultsTable renders the contacts with a download link for the CSV.
func ResultsTable(r Results) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="results"><table><thead><tr>`)
		for _, col := range resultColumns {
			h.raw("<th>")
			h.text(col)
			h.raw("</th>")
		}
		h.raw("</tr></thead><tbody>")
		for _, c := range r.Contacts {
			h.raw("<tr>")
			for _, v := range []string{c.FirstName, c.LastName, c.Email, c.JobTitle, c.Company} {
				h.raw("<td>")
				h.text(v)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")

		if r.DownloadURL != "" {
			h.raw(`<p class="download">CSV saved as <code>`)
			h.text(r.CSVPath)
			h.raw(`</code>. <a class="csv-link"`)
			h.href(r.DownloadURL)
			h.raw(">Download CSV</a>")
			if r.ArtifactURL != "" {
				h.raw(` <a class="artifact-link"`)
				h.href(r.ArtifactURL)
				h.raw(">Permalink</a>")
			}
			h.raw("</p>")
		}
		h.raw("</section>")
		return h.err
	})
}

// RecentSearches renders the newest catalog entries.
func RecentSearches(items []RecentSearch) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="recent"><h2>Recent searches</h2><table><thead><tr>`)
		h.raw("<th>Company</th><th>Domain</th><th>Contacts</th><th>When</th><th></th></tr></thead><tbody>")
		for _, it := range items {
			h.raw("<tr><td>")
			h.text(it.Company)
			h.raw("</td><td>")
			h.text(it.Domain)
			h.raw("</td><td>")
			h.text(strconv.Itoa(it.Rows))
			h.raw("</td><td>")
			h.text(it.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
			h.raw("</td><td><a")
			h.href(it.ArtifactURL)
			h.raw(">CSV</a></td></tr>")
		}
		h.raw("</tbody></table></section>")
		return h.err
	})
}
