package preprocess

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultTokenLimit is the default maximum tokens for LLM input.
const DefaultTokenLimit = 8000

// Token estimation: roughly 1 token per 4 characters for English text.
const charsPerToken = 4

// reservedTokens is kept free for the header and footer.
const reservedTokens = 200

// Digest is the compressed form of a log, ready for LLM consumption.
type Digest struct {
	Summary        string            // Human-readable summary
	TimeRange      TimeRange         // First and last entry times
	TotalLines     int               // Original line count
	TotalEntries   int               // Timestamped entries among those lines
	TotalTemplates int               // Number of unique templates
	Templates      []TemplateSummary // Templates that fit the budget
	RedactedCount  int               // Number of sensitive values redacted
	TokenCount     int               // Estimated token count
	TokenLimit     int               // Maximum allowed tokens
}

// TimeRange is the span of emulator run time the entries cover.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

// TemplateSummary represents a template in the digest.
type TemplateSummary struct {
	Pattern   string        // Template pattern with wildcards
	Count     int           // Frequency
	Level     Level         // Highest severity seen for this template
	Examples  []string      // Sample messages
	FirstSeen time.Duration // First occurrence
	LastSeen  time.Duration // Last occurrence
}

// summarySection groups templates of related levels under one heading.
type summarySection struct {
	title  string
	levels []Level
}

var summarySections = []summarySection{
	{"Error Summary", []Level{LevelError}},
	{"Warning Summary", []Level{LevelWarning}},
	{"Stubs and Guest Output", []Level{LevelStub, LevelGuest}},
	{"Top Info Patterns", []Level{LevelInfo, LevelDebug, LevelUnknown}},
}

// Compressor formats templates into a digest that fits a token budget.
type Compressor struct {
	tokenLimit int
}

// NewCompressor creates a new compressor with the specified token limit.
// Use 0 or negative for the default limit.
func NewCompressor(tokenLimit int) *Compressor {
	if tokenLimit <= 0 {
		tokenLimit = DefaultTokenLimit
	}
	return &Compressor{tokenLimit: tokenLimit}
}

// Compress builds a digest from entries and the template each one joined.
// templateIDs[i] is the template of entries[i].
func (c *Compressor) Compress(
	entries []Entry,
	templateIDs []string,
	templates []*Template,
	totalLines int,
	redactedCount int,
) *Digest {
	digest := &Digest{
		TotalLines:    totalLines,
		TotalEntries:  len(entries),
		Templates:     []TemplateSummary{},
		RedactedCount: redactedCount,
		TokenLimit:    c.tokenLimit,
	}
	if len(entries) == 0 {
		digest.Summary = "No log entries to analyze."
		return digest
	}

	digest.TimeRange = TimeRange{Start: entries[0].Elapsed, End: entries[0].Elapsed}
	for _, e := range entries {
		digest.TimeRange.Start = min(digest.TimeRange.Start, e.Elapsed)
		digest.TimeRange.End = max(digest.TimeRange.End, e.Elapsed)
	}

	summaries := summarize(entries, templateIDs, templates)
	digest.TotalTemplates = len(summaries)
	prioritize(summaries)

	var sb strings.Builder
	c.writeHeader(&sb, digest)
	digest.Templates = c.writeTemplates(&sb, summaries)
	digest.TokenCount = estimateTokens(sb.String())
	fmt.Fprintf(&sb, "Token Count: ~%d / %d\n", digest.TokenCount, digest.TokenLimit)
	digest.Summary = sb.String()
	return digest
}

// summarize attaches severity and timing to each Drain template.
func summarize(entries []Entry, templateIDs []string, templates []*Template) []TemplateSummary {
	byID := make(map[string]*TemplateSummary, len(templates))
	summaries := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		summaries = append(summaries, TemplateSummary{
			Pattern:  t.Pattern,
			Count:    t.Count,
			Examples: t.Examples,
		})
	}
	for i, t := range templates {
		byID[t.ID] = &summaries[i]
	}

	seen := make(map[string]bool, len(templates))
	for i, e := range entries {
		if i >= len(templateIDs) {
			break
		}
		s, ok := byID[templateIDs[i]]
		if !ok {
			continue
		}
		if e.Level > s.Level {
			s.Level = e.Level
		}
		if !seen[templateIDs[i]] {
			seen[templateIDs[i]] = true
			s.FirstSeen = e.Elapsed
		}
		s.LastSeen = e.Elapsed
	}
	return summaries
}

// prioritize orders templates by severity, then by frequency.
func prioritize(templates []TemplateSummary) {
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].Level != templates[j].Level {
			return templates[i].Level > templates[j].Level
		}
		return templates[i].Count > templates[j].Count
	})
}

func (c *Compressor) writeHeader(sb *strings.Builder, digest *Digest) {
	sb.WriteString("=== Log Digest ===\n\n")
	fmt.Fprintf(sb, "Run Time: %s to %s\n", digest.TimeRange.Start, digest.TimeRange.End)
	fmt.Fprintf(sb, "Total Lines: %d (%d entries)\n", digest.TotalLines, digest.TotalEntries)
	fmt.Fprintf(sb, "Unique Patterns: %d\n", digest.TotalTemplates)
	if digest.RedactedCount > 0 {
		fmt.Fprintf(sb, "Sensitive Values Redacted: %d\n", digest.RedactedCount)
	}
	sb.WriteString("\n")
}

// writeTemplates writes templates section by section until the budget runs
// out, and returns the ones that were written.
func (c *Compressor) writeTemplates(sb *strings.Builder, templates []TemplateSummary) []TemplateSummary {
	included := []TemplateSummary{}
	current := estimateTokens(sb.String())
	available := c.tokenLimit - reservedTokens

	for _, section := range summarySections {
		var members []TemplateSummary
		for _, t := range templates {
			for _, l := range section.levels {
				if t.Level == l {
					members = append(members, t)
				}
			}
		}
		if len(members) == 0 || current >= available {
			continue
		}

		heading := fmt.Sprintf("=== %s ===\n", section.title)
		sb.WriteString(heading)
		current += estimateTokens(heading)
		for _, t := range members {
			text := formatTemplate(t)
			tokens := estimateTokens(text)
			if current+tokens > available {
				break
			}
			sb.WriteString(text)
			current += tokens
			included = append(included, t)
		}
		sb.WriteString("\n")
	}
	return included
}

func formatTemplate(t TemplateSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s (%d occurrences, %s to %s)\n", t.Level, t.Pattern, t.Count, t.FirstSeen, t.LastSeen)
	if len(t.Examples) > 0 && t.Pattern != t.Examples[0] {
		sb.WriteString("  Examples:\n")
		for _, ex := range t.Examples {
			if len(ex) > 160 {
				ex = ex[:157] + "..."
			}
			fmt.Fprintf(&sb, "    - %s\n", ex)
		}
	}
	return sb.String()
}

// estimateTokens provides a rough estimate of token count.
func estimateTokens(text string) int {
	return len(text) / charsPerToken
}

// IsWithinBudget returns true if the digest is within the token limit.
func (d *Digest) IsWithinBudget() bool {
	return d.TokenCount <= d.TokenLimit
}

// GetCompressionRatio is the number of entries per template.
func (d *Digest) GetCompressionRatio() float64 {
	if d.TotalTemplates == 0 {
		return 1.0
	}
	return float64(d.TotalEntries) / float64(d.TotalTemplates)
}
