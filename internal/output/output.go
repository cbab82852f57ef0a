// Package output provides formatted output rendering for analysis results
// and the blocklist. It supports text, table, JSON, and YAML formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
	"github.com/bimmerbailey/ryulog/internal/blocklist"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// User-facing messages for outcomes that carry no report.
const (
	MsgInvalidLog    = "This log file appears to be invalid. Please make sure to upload a Ryujinx log file."
	MsgDecodeFailure = "This log file appears to be invalid. Please re-check and re-upload your log file."
	MsgBlocked       = "⛔ Blocked game detected ⛔"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w        io.Writer
	format   Format
	colorize bool
}

// New creates a new output Writer. Color is applied only to text and table
// output, and only when mode allows it for w.
func New(w io.Writer, format Format, mode ColorMode) *Writer {
	return &Writer{w: w, format: format, colorize: shouldColorize(mode, w)}
}

// FileResult is the machine-readable form of one analysed file.
type FileResult struct {
	File    string              `json:"file" yaml:"file"`
	Outcome string              `json:"outcome" yaml:"outcome"`
	Message string              `json:"message,omitempty" yaml:"message,omitempty"`
	TitleID string              `json:"title_id,omitempty" yaml:"title_id,omitempty"`
	Report  *analyzer.LogReport `json:"report,omitempty" yaml:"report,omitempty"`
}

// NewFileResult flattens an analysis result for serialization.
func NewFileResult(file string, res analyzer.Result) FileResult {
	fr := FileResult{File: file, Outcome: res.Outcome.String(), Report: res.Report}
	switch res.Outcome {
	case analyzer.OutcomeInvalid:
		fr.Message = MsgInvalidLog
	case analyzer.OutcomeBlocked:
		fr.Message = MsgBlocked
		if res.Blocked != nil {
			fr.TitleID = res.Blocked.TitleID
		}
	}
	return fr
}

// DecodeFailure is the result reported for a file that is not valid text.
func DecodeFailure(file string) FileResult {
	return FileResult{File: file, Outcome: "invalid", Message: MsgDecodeFailure}
}

// WriteResults outputs every file result in the configured format.
func (wr *Writer) WriteResults(results []FileResult) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(results)
	case FormatYAML:
		return wr.WriteYAML(results)
	}
	for i, fr := range results {
		if i > 0 {
			fmt.Fprintln(wr.w)
		}
		if err := wr.writeResult(fr); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeResult(fr FileResult) error {
	if fr.Report == nil {
		line := fr.Message
		if fr.TitleID != "" {
			line += " (" + fr.TitleID + ")"
		}
		if len(fr.File) > 0 {
			line = fr.File + ": " + line
		}
		_, err := fmt.Fprintln(wr.w, wr.paint(messageColor(fr.Outcome), line))
		return err
	}
	if wr.format == FormatTable {
		return wr.writeReportTable(fr.File, fr.Report)
	}
	return wr.writeReportText(fr.File, fr.Report)
}

// WriteBlocklist outputs the blocked titles in the configured format.
func (wr *Writer) WriteBlocklist(entries []blocklist.Entry) error {
	switch wr.format {
	case FormatJSON:
		if entries == nil {
			entries = []blocklist.Entry{}
		}
		return wr.WriteJSON(entries)
	case FormatYAML:
		return wr.WriteYAML(entries)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(wr.w, "No blocked titles")
		return err
	}
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE ID\tADDED\tNOTE")
	fmt.Fprintln(tw, "--------\t-----\t----")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.TitleID, e.AddedAt.Format("2006-01-02 15:04"), e.Note)
	}
	return tw.Flush()
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v interface{}) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
