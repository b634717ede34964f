package report

import (
	"io"

	"github.com/nao1215/seoscan/internal/model"
)

// Writer renders audit results to a destination. Implementations exist
// per output format; callers pick one based on configuration and treat
// them interchangeably.
type Writer interface {
	// Write renders the full audit result.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.AuditResult) (int, error)

	// WriteSummary renders only the condensed summary.
	WriteSummary(summary *model.Summary) (int, error)
}

// MultiWriter renders to several Writers at once, for writing the same
// audit to the terminal and a file. io.MultiWriter cannot serve here
// because reports, not bytes, flow through the interface.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the result with every writer, stopping on the first
// error. Returns the total bytes written.
func (m *MultiWriter) Write(result *model.AuditResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary renders the summary with every writer.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter carries the shared output destination.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
