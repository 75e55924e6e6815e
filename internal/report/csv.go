package report

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/contactfinder/internal/core"
)

// CSVWriter outputs the same columns as the saved artifact.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write renders r as CSV with a header row.
func (w *CSVWriter) Write(r Report) error {
	cw := csv.NewWriter(w.output)
	if err := cw.Write(core.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(core.Rows(r.Records)); err != nil {
		return err
	}
	return cw.Error()
}
