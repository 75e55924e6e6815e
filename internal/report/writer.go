// Package report renders search results for the command line.
//
// Three formats share the Writer interface: an aligned text table for the
// terminal, Markdown for pasting into documents, and CSV for piping.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/contactfinder/internal/core"
)

// Format names accepted by New.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists the accepted format names.
var Formats = []string{FormatTable, FormatMarkdown, FormatCSV}

// Report is what a Writer renders.
type Report struct {
	Domain  string
	Company string
	Records []core.Record
	// Path is the saved CSV relative to the output root, empty when not saved.
	Path string
}

// Writer renders a Report.
type Writer interface {
	Write(r Report) error
}

// New returns the Writer for format.
func New(format string, out io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return NewTableWriter(out), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(out), nil
	case FormatCSV:
		return NewCSVWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
