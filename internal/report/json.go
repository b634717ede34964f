package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/seoscan/internal/model"
)

// JSONWriter renders audit results as JSON. The field names of
// model.AuditResult form the tool's output contract, so this writer
// marshals the result directly rather than any view of it.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON with the given prefix and
// per-level indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indents.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless an indent option is applied.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *JSONWriter) Write(result *model.AuditResult) (int, error) {
	return w.writeJSON(result)
}

// WriteSummary implements Writer.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// VersionedReport wraps the audit result with generator metadata for
// consumers that archive reports from multiple tool versions. The
// wrapper stays out of model.AuditResult so the core contract is not
// polluted with output-only fields.
type VersionedReport struct {
	// Version is the seoscan version that generated the report.
	Version string `json:"version"`

	// Report is the full audit result.
	Report *model.AuditResult `json:"report"`

	// Summary is the condensed view for quick access.
	Summary *model.Summary `json:"summary,omitempty"`
}

// FullJSONWriter renders audit results wrapped with version metadata.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter creates a writer for version-wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write implements Writer.
func (w *FullJSONWriter) Write(result *model.AuditResult) (int, error) {
	return w.writeJSON(&VersionedReport{
		Version: w.version,
		Report:  result,
		Summary: model.NewSummary(result),
	})
}
