package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/contactfinder/internal/core"
)

// TableWriter outputs an aligned plain-text table for terminals.
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{baseWriter: newBaseWriter(output)}
}

// Write renders r as a table followed by a one-line summary.
func (w *TableWriter) Write(r Report) error {
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.ToUpper(strings.Join(core.Header, "\t")))
	for _, rec := range r.Records {
		fmt.Fprintln(tw, strings.Join(rec.Row(), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("\n%d contact(s) for %s (%s)", len(r.Records), r.Company, r.Domain)
	if r.Path != "" {
		summary += ", saved to " + r.Path
	}
	_, err := fmt.Fprintln(w.output, summary)
	return err
}
