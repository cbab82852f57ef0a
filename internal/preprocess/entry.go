package preprocess

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Level is the one-letter severity marker of a Ryujinx log line.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelGuest
	LevelStub
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelUnknown: "UNKNOWN",
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelGuest:   "GUEST",
	LevelStub:    "STUB",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return levelNames[LevelUnknown]
}

// ParseLevel maps a marker letter such as "E" to its Level.
func ParseLevel(marker string) Level {
	switch marker {
	case "E":
		return LevelError
	case "W":
		return LevelWarning
	case "S":
		return LevelStub
	case "G":
		return LevelGuest
	case "I", "N":
		return LevelInfo
	case "D", "T", "A":
		return LevelDebug
	default:
		return LevelUnknown
	}
}

// Entry is one timestamped line of a Ryujinx log. Lines without a
// timestamp (stack frames, dumps) are continuations of the previous entry.
type Entry struct {
	Line    int           // 1-based line number
	Elapsed time.Duration // time since the emulator started
	Level   Level
	Message string
}

var entryRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})\.(\d{3}) \|([A-Z])\| (.*)$`)

// ParseEntries splits log text into entries. It returns the entries and
// the total number of lines read.
func ParseEntries(text string) ([]Entry, int) {
	if text == "" {
		return nil, 0
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		m := entryRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		msg := strings.TrimSpace(m[6])
		if msg == "" {
			continue
		}
		entries = append(entries, Entry{
			Line:    i + 1,
			Elapsed: elapsed(m[1], m[2], m[3], m[4]),
			Level:   ParseLevel(m[5]),
			Message: msg,
		})
	}
	return entries, len(lines)
}

func elapsed(h, m, s, ms string) time.Duration {
	part := func(v string, unit time.Duration) time.Duration {
		n, _ := strconv.Atoi(v)
		return time.Duration(n) * unit
	}
	return part(h, time.Hour) + part(m, time.Minute) + part(s, time.Second) + part(ms, time.Millisecond)
}
