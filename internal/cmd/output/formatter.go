// Package output provides formatters for command output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/inventory"
	"github.com/credtally/credtally/pkg/reconcile"
)

// Format names an output format.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates the formatter for a format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// DetectFormat auto-detects format based on terminal and environment.
// Pipes and redirects get JSON so downstream tooling parses cleanly.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat converts a string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format. Reconciliation results render
// as a sectioned report; other values fall back to a reflection-based
// table, then to JSON.
type TableFormatter struct{}

// Data represents data formatted for table output.
type Data struct {
	Headers []string
	Rows    [][]string
}

// Format outputs data in table format.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case *reconcile.Result:
		return f.formatResult(w, v)
	case Data:
		return f.formatTable(w, v)
	default:
		if tableData := f.convertToTableData(data); tableData != nil {
			return f.formatTable(w, *tableData)
		}
		jsonFormatter := &JSONFormatter{Indent: "  "}
		return jsonFormatter.Format(w, data)
	}
}

// formatResult renders a reconciliation result as a sectioned report.
func (f *TableFormatter) formatResult(w io.Writer, result *reconcile.Result) error {
	sections := []struct {
		title string
		data  Data
	}{
		{"Correct", matchData(result.Correct)},
		{"Version mismatches", matchData(result.VersionMismatches)},
		{"Missing in software_credits", componentData(result.MissingInDocs)},
		{"Missing in repository", recordData(result.MissingInRepo)},
	}

	for _, section := range sections {
		if len(section.data.Rows) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s (%d)\n", section.title, len(section.data.Rows)); err != nil {
			return err
		}
		if err := f.formatTable(w, section.data); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if len(result.SkippedDetected)+len(result.SkippedDocumented) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped: %d detected, %d documented (names unusable after normalization)\n\n",
			len(result.SkippedDetected), len(result.SkippedDocumented)); err != nil {
			return err
		}
	}

	s := result.Summary
	_, err := fmt.Fprintf(w, "Summary: %d correct, %d version mismatches, %d missing in software_credits, %d missing in repository\n",
		s.Correct, s.VersionMismatch, s.MissingInDocs, s.MissingInRepo)
	return err
}

func matchData(matches []reconcile.Match) Data {
	data := Data{Headers: []string{"Detected", "Documented", "Detected Version", "Documented Version", "Method", "Score"}}
	for _, m := range matches {
		data.Rows = append(data.Rows, []string{
			m.DetectedName, m.DocumentedName,
			m.DetectedVersion, m.DocumentedVersion,
			m.Method, fmt.Sprintf("%.2f", m.Score),
		})
	}
	return data
}

func componentData(components []inventory.Component) Data {
	data := Data{Headers: []string{"Name", "Version Spec", "Origin"}}
	for _, c := range components {
		data.Rows = append(data.Rows, []string{c.Name, c.VersionSpec, c.Origin})
	}
	return data
}

func recordData(records []credits.Record) Data {
	data := Data{Headers: []string{"Name", "Version", "URL"}}
	for _, r := range records {
		data.Rows = append(data.Rows, []string{r.Name, r.Version, r.URL})
	}
	return data
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	table := tablewriter.NewTable(w)

	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range data.Rows {
		rowData := make([]any, len(row))
		for i, cell := range row {
			rowData[i] = cell
		}
		if err := table.Append(rowData...); err != nil {
			return err
		}
	}

	return table.Render()
}

// convertToTableData attempts to convert struct slices to Data using reflection.
func (f *TableFormatter) convertToTableData(data any) *Data {
	v := reflect.ValueOf(data)

	if v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct {
		return f.structSliceToTableData(v)
	}
	if v.Kind() == reflect.Struct {
		return f.singleStructToTableData(v)
	}
	return nil
}

// structSliceToTableData converts a slice of structs to Data.
func (f *TableFormatter) structSliceToTableData(v reflect.Value) *Data {
	elemType := v.Index(0).Type()

	var headers []string
	for i := 0; i < elemType.NumField(); i++ {
		headers = append(headers, fieldHeader(elemType.Field(i)))
	}

	var rows [][]string
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		var row []string
		for j := 0; j < elem.NumField(); j++ {
			row = append(row, fmt.Sprintf("%v", elem.Field(j).Interface()))
		}
		rows = append(rows, row)
	}

	return &Data{Headers: headers, Rows: rows}
}

// singleStructToTableData converts a single struct to a key-value table.
func (f *TableFormatter) singleStructToTableData(v reflect.Value) *Data {
	elemType := v.Type()

	rows := make([][]string, 0, elemType.NumField())
	for i := 0; i < elemType.NumField(); i++ {
		rows = append(rows, []string{
			fieldHeader(elemType.Field(i)),
			fmt.Sprintf("%v", v.Field(i).Interface()),
		})
	}

	return &Data{Headers: []string{"Property", "Value"}, Rows: rows}
}

// fieldHeader derives a table header from a struct field, preferring
// its json tag.
func fieldHeader(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" || jsonTag == "-" {
		return field.Name
	}
	if idx := strings.Index(jsonTag, ","); idx > 0 {
		jsonTag = jsonTag[:idx]
	}
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(jsonTag, "_", " "))
}
