package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Severity ranks a note. Lower values are more severe.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityWarning
	SeverityInfo
	SeverityOK
)

// glyphs is indexed by Severity. Downstream renderers key on these literals.
var glyphs = [...]string{"❌", "🔴", "⚠️", "ℹ", "✅"}

// Glyph returns the leading symbol for notes of this severity.
func (s Severity) Glyph() string {
	if s < SeverityCritical || s > SeverityOK {
		return ""
	}
	return glyphs[s]
}

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityOK:
		return "ok"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler for Severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev := SeverityCritical; sev <= SeverityOK; sev++ {
		if sev.String() == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// MarshalYAML implements yaml.Marshaler for Severity.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// ParseSeverity derives a severity from the glyph that starts text.
func ParseSeverity(text string) (Severity, bool) {
	for i, g := range glyphs {
		if strings.HasPrefix(text, g) {
			return Severity(i), true
		}
	}
	return 0, false
}

// Note is a single advisory line. Text always starts with Severity's glyph.
type Note struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Text     string   `json:"text" yaml:"text"`
}

// newNote prefixes text with the glyph for sev. Info notes use the emoji
// presentation form of the glyph.
func newNote(sev Severity, text string) Note {
	glyph := sev.Glyph()
	if sev == SeverityInfo {
		glyph = "ℹ️"
	}
	return Note{Severity: sev, Text: glyph + " " + text}
}

// sortKey is the token after the glyph, used to order notes of equal
// severity alphabetically.
func (n Note) sortKey() string {
	fields := strings.Fields(n.Text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// Rank orders notes by severity, then alphabetically by the word after the
// glyph. The input slice is not modified.
func Rank(notes []Note) []Note {
	ranked := make([]Note, len(notes))
	copy(ranked, notes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].sortKey() < ranked[j].sortKey()
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity < ranked[j].Severity
	})
	return ranked
}

// Texts returns the text of each note.
func Texts(notes []Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Text
	}
	return out
}
