package output

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input string
		want  ColorMode
	}{
		{"always", ColorAlways},
		{"ALWAYS", ColorAlways},
		{"never", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},
	}
	for _, tt := range tests {
		if got := ParseColorMode(tt.input); got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestShouldColorize(t *testing.T) {
	var buf bytes.Buffer

	tests := []struct {
		name string
		mode ColorMode
		w    interface{}
		want bool
	}{
		{"always with buffer", ColorAlways, &buf, true},
		{"never with buffer", ColorNever, &buf, false},
		{"auto with buffer", ColorAuto, &buf, false},
		{"never with stdout", ColorNever, os.Stdout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldColorize(tt.mode, tt.w); got != tt.want {
				t.Errorf("shouldColorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(ColorAuto, os.Stdout) {
		t.Error("shouldColorize() = true with NO_COLOR set")
	}
	if !shouldColorize(ColorAlways, os.Stdout) {
		t.Error("ColorAlways should override NO_COLOR")
	}
}

func TestNoteColors(t *testing.T) {
	tests := []struct {
		name      string
		note      analyzer.Note
		wantColor bool
		wantCode  string
	}{
		{"critical", analyzer.Note{Severity: analyzer.SeverityCritical, Text: "❌ **Nintendo Switch firmware not found**"}, true, "\x1b[31;1m"},
		{"high", analyzer.Note{Severity: analyzer.SeverityHigh, Text: "🔴 **PPTC cache should be enabled**"}, true, "\x1b[31;1m"},
		{"warning", analyzer.Note{Severity: analyzer.SeverityWarning, Text: "⚠️ Dummy audio backend"}, true, "\x1b[33m"},
		{"info", analyzer.Note{Severity: analyzer.SeverityInfo, Text: "ℹ️ Time elapsed"}, false, ""},
		{"ok", analyzer.Note{Severity: analyzer.SeverityOK, Text: "✅ Default logs enabled"}, true, "\x1b[32m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wr := New(&bytes.Buffer{}, FormatText, ColorAlways)
			got := wr.note(tt.note)
			if strings.Contains(got, "**") {
				t.Errorf("note() kept markdown markers: %q", got)
			}
			if !tt.wantColor {
				if strings.Contains(got, "\x1b[") {
					t.Errorf("note() = %q, want no color", got)
				}
				return
			}
			if !strings.HasPrefix(got, tt.wantCode) {
				t.Errorf("note() = %q, want prefix %q", got, tt.wantCode)
			}
		})
	}
}

func TestPaintDisabled(t *testing.T) {
	wr := New(&bytes.Buffer{}, FormatText, ColorNever)
	if got := wr.paint(headingColor, "title"); got != "title" {
		t.Errorf("paint() = %q", got)
	}
}

func TestNoteBoldOnlyOnce(t *testing.T) {
	tests := []struct {
		name string
		note analyzer.Note
		want string
	}{
		{"critical plain", analyzer.Note{Severity: analyzer.SeverityCritical, Text: "❌ firmware missing"}, "\x1b[31;1m"},
		{"critical marked", analyzer.Note{Severity: analyzer.SeverityCritical, Text: "❌ **firmware missing**"}, "\x1b[31;1m"},
		{"high plain", analyzer.Note{Severity: analyzer.SeverityHigh, Text: "🔴 shader cache off"}, "\x1b[31m"},
		{"warning marked", analyzer.Note{Severity: analyzer.SeverityWarning, Text: "⚠️ **Debug logs**"}, "\x1b[33;1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(&bytes.Buffer{}, FormatText, ColorAlways).note(tt.note)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("note() = %q, want prefix %q", got, tt.want)
			}
			if strings.Contains(got, ";1;1") {
				t.Errorf("note() repeats bold: %q", got)
			}
		})
	}
}
