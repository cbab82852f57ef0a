package preprocess

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DrainExtractor implements the Drain algorithm for log template extraction.
//
// Messages are routed through a fixed-depth parse tree keyed by token count
// and leading tokens; at the leaf they join the first template whose
// token-wise similarity reaches simThreshold, otherwise they start a new one.
// Differing tokens become the wildcard "<*>".
type DrainExtractor struct {
	root         *parseTreeNode
	depth        int
	simThreshold float64
	maxChildren  int
	maxExamples  int
	templates    map[string]*Template // Template ID -> Template
	mu           sync.RWMutex
}

type parseTreeNode struct {
	children    map[string]*parseTreeNode
	templateIDs []string
}

func newNode() *parseTreeNode {
	return &parseTreeNode{children: make(map[string]*parseTreeNode)}
}

// Template represents an extracted log template.
type Template struct {
	ID       string   // Unique identifier
	Pattern  string   // Template string with wildcards
	Tokens   []string // Tokenized pattern
	Count    int      // Number of log lines matching this template
	Examples []string // Sample raw messages (limited)
}

const wildcard = "<*>"

// DefaultDrainConfig provides sensible defaults for the Drain algorithm.
var DefaultDrainConfig = struct {
	Depth        int
	SimThreshold float64
	MaxChildren  int
	MaxExamples  int
}{
	Depth:        4,
	SimThreshold: 0.5,
	MaxChildren:  100,
	MaxExamples:  2,
}

// Tokens that carry per-run values in Ryujinx messages.
var variableTokens = []*regexp.Regexp{
	// counts and sizes
	regexp.MustCompile(`^-?\d+(\.\d+)?[,.:;)]?$`),
	// addresses and result codes
	regexp.MustCompile(`^\(?0[xX][0-9a-fA-F]+[,.:;)]?$`),
	// title IDs and hashes
	regexp.MustCompile(`^\(?[0-9a-fA-F]{16}\)?[,:;]?$`),
	// versions
	regexp.MustCompile(`^\d+\.\d+\.\d+(\.\d+)?$`),
	// result codes such as 2002-0001
	regexp.MustCompile(`^\d{4}-\d{4}$`),
	// GUIDs
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-`),
	// redaction placeholders
	regexp.MustCompile(`^\[[A-Z0-9_]+:[0-9a-f]{4}\]`),
	// file system paths
	regexp.MustCompile(`^[A-Za-z]:\\|^/.{20,}`),
}

// NewDrainExtractor creates a Drain extractor. Zero or out-of-range values
// take the defaults.
func NewDrainExtractor(depth int, simThreshold float64, maxChildren int) *DrainExtractor {
	if depth <= 0 {
		depth = DefaultDrainConfig.Depth
	}
	if simThreshold <= 0 || simThreshold > 1 {
		simThreshold = DefaultDrainConfig.SimThreshold
	}
	if maxChildren <= 0 {
		maxChildren = DefaultDrainConfig.MaxChildren
	}

	return &DrainExtractor{
		root:         newNode(),
		depth:        depth,
		simThreshold: simThreshold,
		maxChildren:  maxChildren,
		maxExamples:  DefaultDrainConfig.MaxExamples,
		templates:    make(map[string]*Template),
	}
}

// Extract processes a log message and returns the ID of the template it
// joined. If no matching template exists, a new one is created.
func (d *DrainExtractor) Extract(message string) string {
	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return ""
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	templateID := d.findOrCreateTemplate(tokens)
	template := d.templates[templateID]
	template.Count++
	if len(template.Examples) < d.maxExamples {
		template.Examples = append(template.Examples, message)
	}
	return templateID
}

func (d *DrainExtractor) findOrCreateTemplate(tokens []string) string {
	node := d.child(d.root, fmt.Sprintf("len_%d", len(tokens)))

	for i := 0; i < len(tokens) && i < d.depth-1; i++ {
		token := tokens[i]
		if isVariableToken(token) {
			token = wildcard
		}
		if _, ok := node.children[token]; !ok && len(node.children) >= d.maxChildren {
			token = wildcard
		}
		node = d.child(node, token)
	}

	for _, id := range node.templateIDs {
		template := d.templates[id]
		if similarity(tokens, template.Tokens) >= d.simThreshold {
			template.Tokens = mergeTokens(template.Tokens, tokens)
			template.Pattern = strings.Join(template.Tokens, " ")
			return id
		}
	}

	id := fmt.Sprintf("T_%d", len(d.templates)+1)
	templateTokens := make([]string, len(tokens))
	for i, token := range tokens {
		if isVariableToken(token) {
			token = wildcard
		}
		templateTokens[i] = token
	}
	d.templates[id] = &Template{
		ID:      id,
		Pattern: strings.Join(templateTokens, " "),
		Tokens:  templateTokens,
	}
	node.templateIDs = append(node.templateIDs, id)
	return id
}

func (d *DrainExtractor) child(node *parseTreeNode, key string) *parseTreeNode {
	next, ok := node.children[key]
	if !ok {
		next = newNode()
		node.children[key] = next
	}
	return next
}

func isVariableToken(token string) bool {
	for _, re := range variableTokens {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// similarity is the share of positions where both sequences agree,
// wildcards agreeing with anything.
func similarity(a, b []string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	matches := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] == b[i] || a[i] == wildcard || b[i] == wildcard {
			matches++
		}
	}
	return float64(matches) / float64(maxLen)
}

// mergeTokens turns every position where the sequences differ into a wildcard.
func mergeTokens(existing, tokens []string) []string {
	result := make([]string, max(len(existing), len(tokens)))
	for i := range result {
		if i < len(existing) && i < len(tokens) && existing[i] == tokens[i] {
			result[i] = existing[i]
		} else {
			result[i] = wildcard
		}
	}
	return result
}

// GetTemplates returns all templates, most frequent first. Ties keep
// creation order.
func (d *DrainExtractor) GetTemplates() []*Template {
	d.mu.RLock()
	defer d.mu.RUnlock()

	templates := make([]*Template, 0, len(d.templates))
	for i := 1; i <= len(d.templates); i++ {
		templates = append(templates, d.templates[fmt.Sprintf("T_%d", i)])
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].Count > templates[j].Count
	})
	return templates
}

// GetTemplateCount returns the number of unique templates extracted.
func (d *DrainExtractor) GetTemplateCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.templates)
}

// Reset clears all extracted templates and the parse tree.
func (d *DrainExtractor) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = newNode()
	d.templates = make(map[string]*Template)
}
