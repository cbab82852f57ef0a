package preprocess

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync"
)

// placeholderRegex matches text that is already a placeholder, so that
// redacting twice is a no-op.
var placeholderRegex = regexp.MustCompile(`^\[[A-Z0-9_]+:[0-9a-f]{4}\]$`)

// Redactor removes sensitive data from log text while preserving
// correlation between identical values.
//
// The same sensitive value is always replaced with the same placeholder, so
// "the same user folder appears in every failing path" survives redaction.
type Redactor struct {
	enabled  bool
	patterns []RedactionPattern
	hashMap  map[string]string // Original value -> placeholder
	mu       sync.RWMutex      // Protects hashMap
}

// NewRedactor creates a new Redactor with the specified configuration.
// If enabled is false, Redact returns text unchanged. An empty or unknown
// pattern list falls back to DefaultPatterns.
func NewRedactor(enabled bool, patternNames []string) *Redactor {
	patterns := GetPatterns(patternNames)
	if len(patterns) == 0 {
		patterns = GetPatterns(DefaultPatterns())
	}

	return &Redactor{
		enabled:  enabled,
		patterns: patterns,
		hashMap:  make(map[string]string),
	}
}

// Redact replaces sensitive values in text with placeholders.
//
//	"C:\Users\alice\AppData\Roaming\Ryujinx" → "C:\Users\[USER:2bd8]\AppData\Roaming\Ryujinx"
func (r *Redactor) Redact(text string) string {
	result, _ := r.RedactAndCount(text)
	return result
}

// RedactAndCount redacts text and returns the number of replacements made.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	if !r.enabled || len(r.patterns) == 0 {
		return text, 0
	}

	count := 0
	result := text
	for _, pattern := range r.patterns {
		var n int
		result, n = r.redactPattern(result, pattern)
		count += n
	}
	return result, count
}

// redactPattern applies a single redaction pattern to the text.
func (r *Redactor) redactPattern(text string, pattern RedactionPattern) (string, int) {
	matches := pattern.Regex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	out := make([]byte, 0, len(text))
	last := 0
	n := 0
	for _, m := range matches {
		start, end := m[2*pattern.Group], m[2*pattern.Group+1]
		if start < 0 || placeholderRegex.MatchString(text[start:end]) {
			continue
		}
		out = append(out, text[last:start]...)
		out = append(out, r.getPlaceholder(text[start:end], pattern.Type)...)
		last = end
		n++
	}
	out = append(out, text[last:]...)
	return string(out), n
}

// getPlaceholder returns the placeholder for a given value.
func (r *Redactor) getPlaceholder(value, patternType string) string {
	r.mu.RLock()
	if placeholder, ok := r.hashMap[value]; ok {
		r.mu.RUnlock()
		return placeholder
	}
	r.mu.RUnlock()

	placeholder := fmt.Sprintf("[%s:%s]", patternType, hashValue(value))

	r.mu.Lock()
	r.hashMap[value] = placeholder
	r.mu.Unlock()

	return placeholder
}

// hashValue returns the first 4 hex characters of the value's SHA256.
func hashValue(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:2])
}

// GetUniqueValues returns a copy of every redacted value and its placeholder.
func (r *Redactor) GetUniqueValues() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]string, len(r.hashMap))
	for k, v := range r.hashMap {
		result[k] = v
	}
	return result
}

// Reset forgets all value->placeholder mappings.
func (r *Redactor) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashMap = make(map[string]string)
}

// IsEnabled returns whether redaction is enabled.
func (r *Redactor) IsEnabled() bool {
	return r.enabled
}
