package preprocess

// Preprocessor turns a Ryujinx log into a redacted, budgeted digest.
//
// The pipeline consists of three stages:
//  1. Redaction - Remove sensitive data with correlation-preserving hashes
//  2. Drain Template Extraction - Group similar messages into templates
//  3. Compression - Apply token budget and format output
//
// Usage:
//
//	preprocessor := preprocess.New(
//	    preprocess.WithTokenLimit(4000),
//	    preprocess.WithRedactionPatterns([]string{"user_path", "email"}),
//	)
//	digest := preprocessor.Process(logText)
//	fmt.Println(digest.Summary)
//
// A Preprocessor keeps templates and placeholders between calls; call
// Reset before moving on to an unrelated log.
type Preprocessor struct {
	redactor   *Redactor
	drain      *DrainExtractor
	compressor *Compressor
	tokenLimit int
	minLevel   Level
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithTokenLimit sets the maximum token limit for output.
// Default is 8000 tokens.
func WithTokenLimit(limit int) Option {
	return func(p *Preprocessor) {
		p.tokenLimit = limit
	}
}

// WithRedaction enables or disables secret redaction.
// Default is enabled.
func WithRedaction(enabled bool) Option {
	return func(p *Preprocessor) {
		p.redactor.enabled = enabled
	}
}

// WithRedactionPatterns sets which redaction patterns to use.
func WithRedactionPatterns(patterns []string) Option {
	return func(p *Preprocessor) {
		p.redactor = NewRedactor(p.redactor.enabled, patterns)
	}
}

// WithDrainConfig configures the Drain algorithm parameters.
func WithDrainConfig(depth int, simThreshold float64, maxChildren int) Option {
	return func(p *Preprocessor) {
		p.drain = NewDrainExtractor(depth, simThreshold, maxChildren)
	}
}

// WithMinLevel drops entries below level before templating.
// Default keeps every entry.
func WithMinLevel(level Level) Option {
	return func(p *Preprocessor) {
		p.minLevel = level
	}
}

// New creates a new Preprocessor with the specified options.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		redactor:   NewRedactor(true, DefaultPatterns()),
		drain:      NewDrainExtractor(0, 0, 0),
		tokenLimit: DefaultTokenLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.compressor = NewCompressor(p.tokenLimit)
	return p
}

// Process runs the pipeline over the text of one log.
func (p *Preprocessor) Process(text string) *Digest {
	entries, totalLines := ParseEntries(text)

	kept := entries[:0]
	redactedCount := 0
	for _, e := range entries {
		if e.Level < p.minLevel {
			continue
		}
		var n int
		e.Message, n = p.redactor.RedactAndCount(e.Message)
		redactedCount += n
		kept = append(kept, e)
	}

	ids := make([]string, len(kept))
	for i, e := range kept {
		ids[i] = p.drain.Extract(e.Message)
	}

	return p.compressor.Compress(kept, ids, p.drain.GetTemplates(), totalLines, redactedCount)
}

// Redact applies the configured redaction to arbitrary text, sharing
// placeholders with the entries processed so far.
func (p *Preprocessor) Redact(text string) string {
	return p.redactor.Redact(text)
}

// Reset clears extracted templates and redaction mappings.
func (p *Preprocessor) Reset() {
	p.drain.Reset()
	p.redactor.Reset()
}

// GetRedactedValues returns every redacted value and its placeholder.
func (p *Preprocessor) GetRedactedValues() map[string]string {
	return p.redactor.GetUniqueValues()
}

// GetTemplateCount returns the number of templates currently extracted.
func (p *Preprocessor) GetTemplateCount() int {
	return p.drain.GetTemplateCount()
}
