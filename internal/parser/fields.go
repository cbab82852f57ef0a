package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Markers for lines whose value is the last token on the line.
const (
	VersionMarker  = "Ryujinx Version:"
	FirmwareMarker = "Firmware Version:"
)

var (
	cpuPattern          = regexp.MustCompile(`CPU:[ \t]*([^;\n\r]*)`)
	ramPattern          = regexp.MustCompile(`RAM:(?:[ \t]Total)?[ \t]*([^;\n\r]*)`)
	osPattern           = regexp.MustCompile(`Operating System:[ \t]*([^;\n\r]*)`)
	gpuPattern          = regexp.MustCompile(`PrintGpuInformation:[ \t]*([^;\n\r]*)`)
	logsEnabledPattern  = regexp.MustCompile(`Logs Enabled:[ \t]*([^;\n\r]*)`)
	gameLinePattern     = regexp.MustCompile(`Loader [A-Za-z]*: Application Loaded:[ \t]*([^;\n\r]*)`)
	titleIDPattern      = regexp.MustCompile(`^.* \[([a-zA-Z0-9]+)\]`)
	bitnessPattern      = regexp.MustCompile(`\s\[(64|32)-bit\]$`)
	modPattern          = regexp.MustCompile(`Found mod\s'(.+?)'\s(\[.+?\])`)
	controllerPattern   = regexp.MustCompile(`Hid Configure: ([^\r\n]+)`)
	availableRAMPattern = regexp.MustCompile(`Application\sPrint:\sRAM:(?:.*Available\s)(\d+)`)
)

// CPU returns the processor description.
func CPU(text string) (string, bool) { return firstCapture(cpuPattern, text, 1) }

// RAM returns the total memory description.
func RAM(text string) (string, bool) { return firstCapture(ramPattern, text, 1) }

// OS returns the operating system description.
func OS(text string) (string, bool) { return firstCapture(osPattern, text, 1) }

// GPU returns the graphics adapter description.
func GPU(text string) (string, bool) { return firstCapture(gpuPattern, text, 1) }

// EmulatorVersion returns the last token of the last version line.
func EmulatorVersion(text string) (string, bool) { return markerValue(text, VersionMarker) }

// FirmwareVersion returns the last token of the last firmware line.
func FirmwareVersion(text string) (string, bool) { return markerValue(text, FirmwareMarker) }

func markerValue(text, marker string) (string, bool) {
	lines := Lines(text)
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], marker) {
			return lastField(lines[i])
		}
	}
	return "", false
}

// LogsEnabled returns the enabled log classes in the order the log lists them.
func LogsEnabled(text string) ([]string, bool) {
	raw, ok := firstCapture(logsEnabledPattern, text, 1)
	if !ok {
		return nil, false
	}
	raw = strings.ReplaceAll(raw, " ", "")
	// An empty list is still a list: every default log is then missing.
	logs := []string{}
	for _, name := range strings.Split(raw, ",") {
		if name != "" {
			logs = append(logs, name)
		}
	}
	return dedupe(logs), true
}

// GameLine returns the raw value of the last "Application Loaded" line,
// including the title ID and bitness suffix.
func GameLine(text string) (string, bool) {
	all := gameLinePattern.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return strings.TrimRight(all[len(all)-1][1], " \t"), true
}

// GameName strips the bitness suffix from a game line for display.
func GameName(line string) string {
	return bitnessPattern.ReplaceAllString(line, "")
}

// TitleID returns the last bracketed alphanumeric token of a game line.
func TitleID(line string) (string, bool) {
	m := titleIDPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Mods returns one display entry per distinct mod, tagged ExeFS or RomFS.
func Mods(text string) []string {
	var mods []string
	for _, m := range modPattern.FindAllStringSubmatch(text, -1) {
		kind := "RomFS"
		if m[2] == "[E]" {
			kind = "ExeFS"
		}
		mods = append(mods, fmt.Sprintf("ℹ️ %s (%s)", m[1], kind))
	}
	return dedupe(mods)
}

// Controllers returns the distinct input configuration lines.
func Controllers(text string) []string {
	var found []string
	for _, m := range controllerPattern.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1])
	}
	return dedupe(found)
}

// AvailableRAM returns the available memory in MB reported at startup.
func AvailableRAM(text string) (int, bool) {
	m := availableRAMPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
