package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/JonMunkholm/contactfinder/internal/core"
)

// MarkdownWriter outputs a heading, a summary table and the contacts table.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders r as Markdown.
func (w *MarkdownWriter) Write(r Report) error {
	md := markdown.NewMarkdown(w.output)

	md.H1(fmt.Sprintf("Contacts for %s", r.Company))
	md.PlainText("")

	saved := "not saved"
	if r.Path != "" {
		saved = "`" + r.Path + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + r.Domain + "`"},
			{"Contacts", strconv.Itoa(len(r.Records))},
			{"CSV", saved},
		},
	})
	md.PlainText("")

	md.H2("Contacts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: core.Header,
		Rows:   core.Rows(r.Records),
	})

	return md.Build()
}
