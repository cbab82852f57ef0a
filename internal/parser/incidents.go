package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrorMarker tags error-level lines.
const ErrorMarker = "|E|"

// Incident is one error block: an error line and its indented continuation.
type Incident struct {
	Lines []string
}

// Text returns the incident lines joined by newlines.
func (i Incident) Text() string {
	return strings.Join(i.Lines, "\n")
}

// Incidents is the ordered list of error blocks found in a log.
type Incidents []Incident

// SegmentErrors groups the error lines of text into incidents. Continuation
// lines that appear before the first error line are dropped, as are all
// other non-error lines.
func SegmentErrors(text string) Incidents {
	var incidents Incidents
	current := -1
	for _, line := range Lines(text) {
		if line == "" {
			continue
		}
		switch {
		case strings.Contains(line, ErrorMarker):
			incidents = append(incidents, Incident{Lines: []string{line}})
			current = len(incidents) - 1
		case startsWithSpace(line):
			if current >= 0 {
				incidents[current].Lines = append(incidents[current].Lines, line)
			}
		}
	}
	return incidents
}

func startsWithSpace(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsSpace(r)
}

// Search reports whether any incident contains any of terms.
func (in Incidents) Search(terms ...string) bool {
	for _, term := range terms {
		for _, inc := range in {
			if strings.Contains(inc.Text(), term) {
				return true
			}
		}
	}
	return false
}

// LatestSnippet returns the first two lines of the last incident.
func (in Incidents) LatestSnippet() (string, bool) {
	if len(in) == 0 {
		return "", false
	}
	last := in[len(in)-1]
	if !strings.Contains(last.Lines[0], ErrorMarker) {
		return "", false
	}
	n := min(len(last.Lines), 2)
	return strings.Join(last.Lines[:n], "\n"), true
}
