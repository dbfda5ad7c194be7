// Package export renders the task collection in downloadable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatYAML, FormatTOML, FormatPDF, FormatMD}

// ParseFormat accepts a format name case-insensitively ("yml" is yaml).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "yml":
		f = FormatYAML
	case "markdown":
		f = FormatMD
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	case FormatPDF:
		return "application/pdf"
	case FormatMD:
		return "text/markdown; charset=utf-8"
	}
	return "application/octet-stream"
}

// Filename is the suggested download name.
func (f Format) Filename() string {
	return "tasks." + string(f)
}

// document is the top-level shape for formats that need a named root.
type document struct {
	Tasks []tasks.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Write encodes list in priority order to w.
func Write(w io.Writer, list []tasks.Task, f Format) error {
	sorted := tasks.SortByPriority(list)
	if sorted == nil {
		sorted = []tasks.Task{}
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	case FormatCSV:
		return writeCSV(w, sorted)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document{Tasks: sorted}); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(document{Tasks: sorted})
	case FormatPDF:
		return writePDF(w, sorted)
	case FormatMD:
		_, err := io.WriteString(w, Markdown(sorted))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

var csvHeader = []string{"id", "title", "description", "priority", "completed"}

func writeCSV(w io.Writer, list []tasks.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, t := range list {
		_ = cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			string(t.Priority),
			strconv.FormatBool(t.Completed),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, list []tasks.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tasks", true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, t := range list {
		pdf.SetFont("Arial", "B", 11)
		if t.Completed {
			pdf.SetTextColor(140, 140, 140)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		head := fmt.Sprintf("[%s] %s (%s)", t.Priority.Label(), t.Title, t.StatusLabel())
		pdf.MultiCell(0, 6, tr(head), "0", "L", false)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		pdf.Ln(3)
	}
	if len(list) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(40, 6, "No tasks.")
	}

	return pdf.Output(w)
}
