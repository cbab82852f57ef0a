package preprocess

import (
	"regexp"
)

// RedactionPattern defines a built-in pattern for secret detection.
type RedactionPattern struct {
	Name  string
	Regex *regexp.Regexp
	Type  string // Used for placeholder prefix: [USER:hash], [EMAIL:hash], etc.
	// Group selects the submatch to replace; 0 replaces the whole match.
	Group       int
	Description string
}

// Built-in redaction patterns for data a player may not want to share
// when a log leaves their machine.
var (
	// Profile directories: C:\Users\alice\AppData, /home/alice/.config
	userPathRegex = regexp.MustCompile(`(?i)([A-Z]:\\Users\\|/home/|/Users/)([^\\/\s]+)`)

	// IPv4 addresses: 192.168.1.1
	ipv4Regex = regexp.MustCompile(`\b(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)

	// IPv6 addresses: 2001:db8::1
	ipv6Regex = regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b|\b(?:[0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}\b|\bfe80::[0-9a-fA-F:]+`)

	// Email addresses: user@example.com
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// Generic API keys: api_key=..., token=...
	apiKeyRegex = regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|token|secret|password|passwd|pwd)["\s]*[:=]["\s]*[a-zA-Z0-9_\-]{8,}`)

	// JWT tokens: eyJhbGciOiJIUzI1NiIs...
	jwtRegex = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*\b`)

	// MAC addresses: 00:1B:44:11:3A:B7 or 00-1B-44-11-3A-B7
	macAddressRegex = regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}(?:[0-9A-Fa-f]{2})\b`)

	// UUIDs: controller and profile GUIDs
	uuidRegex = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
)

// BuiltInPatterns contains all available redaction patterns.
// These can be selectively enabled via the redaction.patterns setting.
var BuiltInPatterns = map[string]RedactionPattern{
	"user_path": {
		Name:        "user_path",
		Regex:       userPathRegex,
		Type:        "USER",
		Group:       2,
		Description: "User names inside profile paths",
	},
	"ipv4": {
		Name:        "ipv4",
		Regex:       ipv4Regex,
		Type:        "IPV4",
		Description: "IPv4 addresses",
	},
	"ipv6": {
		Name:        "ipv6",
		Regex:       ipv6Regex,
		Type:        "IPV6",
		Description: "IPv6 addresses",
	},
	"email": {
		Name:        "email",
		Regex:       emailRegex,
		Type:        "EMAIL",
		Description: "Email addresses",
	},
	"api_key": {
		Name:        "api_key",
		Regex:       apiKeyRegex,
		Type:        "SECRET",
		Description: "API keys and tokens",
	},
	"jwt": {
		Name:        "jwt",
		Regex:       jwtRegex,
		Type:        "JWT",
		Description: "JWT tokens",
	},
	"mac_address": {
		Name:        "mac_address",
		Regex:       macAddressRegex,
		Type:        "MAC",
		Description: "MAC addresses",
	},
	"uuid": {
		Name:        "uuid",
		Regex:       uuidRegex,
		Type:        "UUID",
		Description: "UUIDs",
	},
}

// DefaultPatterns returns the set of patterns enabled when none are configured.
// UUIDs are left out since controller GUIDs help diagnose input issues.
func DefaultPatterns() []string {
	return []string{
		"user_path",
		"ipv4",
		"ipv6",
		"email",
		"api_key",
		"jwt",
	}
}

// GetPatterns returns the patterns matching the given names.
// Unknown pattern names are silently ignored.
func GetPatterns(names []string) []RedactionPattern {
	patterns := make([]RedactionPattern, 0, len(names))
	for _, name := range names {
		if pattern, ok := BuiltInPatterns[name]; ok {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}
