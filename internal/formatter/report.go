package formatter

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/mlwarehouse/internal/conformance"
)

const formatYAML = "yaml"

// ReportFormatter renders a conformance report
type ReportFormatter struct {
	writer io.Writer
	format string
}

// NewReportFormatter creates a report formatter for "text", "markdown"
// or "yaml".
func NewReportFormatter(w io.Writer, format string) (*ReportFormatter, error) {
	switch format {
	case "", formatText:
		format = formatText
	case formatMarkdown, formatYAML:
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	return &ReportFormatter{writer: w, format: format}, nil
}

// Format writes the report
func (f *ReportFormatter) Format(report *conformance.Report) error {
	switch f.format {
	case formatMarkdown:
		return f.formatMarkdown(report)
	case formatYAML:
		return f.formatYAML(report)
	default:
		return f.formatText(report)
	}
}

func (f *ReportFormatter) formatText(report *conformance.Report) error {
	if report.Empty() {
		_, err := fmt.Fprintf(f.writer, "OK: %d tables conform (%s)\n", report.TablesChecked, report.Dialect)
		return err
	}

	for _, line := range report.Lines() {
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(f.writer, "\n%d mismatches in %d tables checked (%s)\n",
		report.Len(), report.TablesChecked, summarizeCounts(report))
	return err
}

func (f *ReportFormatter) formatMarkdown(report *conformance.Report) error {
	_, _ = fmt.Fprintln(f.writer, "# Conformance Report")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "- **Dialect:** %s\n", report.Dialect)
	_, _ = fmt.Fprintf(f.writer, "- **Tables checked:** %d\n", report.TablesChecked)
	_, _ = fmt.Fprintf(f.writer, "- **Mismatches:** %d\n\n", report.Len())

	if report.Empty() {
		_, err := fmt.Fprintln(f.writer, "The declared model conforms to the database.")
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "| Category | Table | Subject | Declared | Live | Detail |")
	_, _ = fmt.Fprintln(f.writer, "|---|---|---|---|---|---|")
	for _, m := range report.Mismatches {
		subject := m.Subject
		if m.Option != "" {
			subject += " " + m.Option
		}
		_, err := fmt.Fprintf(f.writer, "| %s | %s | %s | %s | %s | %s |\n",
			m.Category,
			m.Entity,
			escapeCell(subject),
			escapeCell(m.Declared),
			escapeCell(m.Live),
			escapeCell(m.Detail))
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *ReportFormatter) formatYAML(report *conformance.Report) error {
	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

func summarizeCounts(report *conformance.Report) string {
	counts := report.Counts()
	var parts []string
	for _, c := range conformance.Categories() {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
