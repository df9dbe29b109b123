package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// Formatter renders a report.
type Formatter interface {
	Format(r *Report) (string, error)
}

// NewFormatter creates a Formatter for the specified format type.
// Supported formats: "text", "json"
func NewFormatter(format string) (Formatter, error) {
	switch OutputFormat(format) {
	case OutputFormatText, "":
		return &TextFormatter{}, nil
	case OutputFormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: text, json)", format)
	}
}

// TextFormatter renders removed packages as "<package> MISSING" lines
// followed by a "package <name>" block per package with findings.
type TextFormatter struct{}

// Format renders the report as UTF-8 text, one finding per line.
func (f *TextFormatter) Format(r *Report) (string, error) {
	var b strings.Builder
	for _, c := range r.missingPackages {
		b.WriteString(c.Canonical())
		b.WriteString("\n")
	}
	for _, block := range r.packages {
		fmt.Fprintf(&b, "package %s\n", block.name)
		for _, c := range block.changes {
			b.WriteString(c.Canonical())
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

type jsonFinding struct {
	ID      string `json:"id"`
	Element string `json:"element"`
	Kind    string `json:"kind"`
	Package string `json:"package"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// JSONFormatter renders the report as a JSON array of findings.
type JSONFormatter struct{}

// Format converts the report to indented JSON.
func (f *JSONFormatter) Format(r *Report) (string, error) {
	findings := []jsonFinding{}
	for _, c := range r.Changes() {
		findings = append(findings, jsonFinding{
			ID:      c.ID(),
			Element: c.Element.Signature(),
			Kind:    string(c.Element.Kind),
			Package: c.Element.Package,
			Status:  string(c.Status),
			Message: c.Message,
		})
	}
	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
