// Package parser provides the line-level extraction layer for Ryujinx log files.
//
// Every extractor is a pure function over the full log text. Extractors never
// depend on each other, so a missing field never prevents the others from
// being read.
package parser

import (
	"regexp"
	"strings"
)

// Unknown is the display value used for any fact the log does not provide.
const Unknown = "Unknown"

// timestampPattern matches the HH:MM:SS.mmm stamp that prefixes every log line.
var timestampPattern = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3}`)

// Classify trims any non-log header from text and reports whether the result
// looks like a log at all.
//
// Partially fetched files can start with transport headers; the log proper
// begins at the first timestamp. Text without any timestamp is not a log and
// ok is false.
func Classify(text string) (trimmed string, ok bool) {
	loc := timestampPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:], true
}

// LatestTimestamp returns the last timestamp found anywhere in text.
func LatestTimestamp(text string) (string, bool) {
	all := timestampPattern.FindAllString(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1], true
}

// Lines splits text into lines, dropping trailing carriage returns.
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// lastField returns the last whitespace-delimited token of line.
func lastField(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	return fields[len(fields)-1], true
}

// firstCapture returns capture group n of the first match of re.
func firstCapture(re *regexp.Regexp, text string, n int) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil || len(m) <= n {
		return "", false
	}
	return strings.TrimRight(m[n], " \t"), true
}

// dedupe removes repeated values while keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
