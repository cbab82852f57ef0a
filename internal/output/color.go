package output

import (
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts a string to a ColorMode, defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
	blockedColor = color.New(color.FgRed, color.Bold)
	invalidColor = color.New(color.FgYellow)
)

// severityColor returns the color for notes of sev, bold when requested.
// Critical notes are always bold.
func severityColor(sev analyzer.Severity, bold bool) *color.Color {
	var attrs []color.Attribute
	switch sev {
	case analyzer.SeverityCritical:
		attrs = []color.Attribute{color.FgRed}
		bold = true
	case analyzer.SeverityHigh:
		attrs = []color.Attribute{color.FgRed}
	case analyzer.SeverityWarning:
		attrs = []color.Attribute{color.FgYellow}
	case analyzer.SeverityOK:
		attrs = []color.Attribute{color.FgGreen}
	default:
		return nil
	}
	if bold {
		attrs = append(attrs, color.Bold)
	}
	return color.New(attrs...)
}

func messageColor(outcome string) *color.Color {
	if outcome == analyzer.OutcomeBlocked.String() {
		return blockedColor
	}
	return invalidColor
}

// paint applies c to text when the writer colorizes. The global NoColor
// switch is bypassed since the decision is made per writer.
func (wr *Writer) paint(c *color.Color, text string) string {
	if !wr.colorize || c == nil {
		return text
	}
	painted := *c
	painted.EnableColor()
	return painted.Sprint(text)
}

var boldMarkup = regexp.MustCompile(`\*\*(.+?)\*\*`)

// note renders one advisory note. Markdown bold markers are dropped; when
// color is on, a note that contained them is printed bold.
func (wr *Writer) note(n analyzer.Note) string {
	text := boldMarkup.ReplaceAllString(n.Text, "$1")
	return wr.paint(severityColor(n.Severity, text != n.Text), text)
}
