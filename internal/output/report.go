package output

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bimmerbailey/ryulog/internal/analyzer"
	"github.com/bimmerbailey/ryulog/internal/parser"
)

// Placeholders for empty report sections.
const (
	NoErrors  = "No errors found in log"
	NoMods    = "No mods found"
	NoNotes   = "Nothing to note"
	noTitleID = "-"
)

const logSteps = `1) In Logging settings, ensure ` + "`Enable Logging to File`" + ` is checked.
2) Ensure the following default logs are enabled: ` + "`Info`, `Warning`, `Error`, `Guest` and `Stub`" + `.
3) Start a game up.
4) Play until your issue occurs.
5) Upload the latest log file which is larger than %s.`

// EmptyLogGuidance is shown when no game booted and no error was logged.
var EmptyLogGuidance = "The log file appears to be empty. To get a proper log, follow these steps:\n" +
	fmt.Sprintf(logSteps, "2KB")

// NoBootGuidance is shown when no game booted but errors were logged.
var NoBootGuidance = "No game boot has been detected in log file. To get a proper log, follow these steps:\n" +
	fmt.Sprintf(logSteps, "3KB")

type settingRow struct {
	key   string
	label string
}

var systemSettings = []settingRow{
	{parser.SettingAudioBackend, "Audio Backend"},
	{parser.SettingDocked, "Console Mode"},
	{parser.SettingPPTC, "PPTC Cache"},
	{parser.SettingShaderCache, "Shader Cache"},
	{parser.SettingVSync, "V-Sync"},
}

var graphicsSettings = []settingRow{
	{parser.SettingGraphicsBackend, "Graphics Backend"},
	{parser.SettingResolutionScale, "Resolution"},
	{parser.SettingAnisotropicFiltering, "Anisotropic Filtering"},
	{parser.SettingAspectRatio, "Aspect Ratio"},
	{parser.SettingTextureRecompression, "Texture Recompression"},
}

// section is a titled block of the rendered report.
type section struct {
	title string
	lines []string
}

// sections lays out a report the way the support channel shows it.
func (wr *Writer) sections(r *analyzer.LogReport) []section {
	general := []string{
		fmt.Sprintf("Version: %s | Firmware: %s", r.Emulator.Version, r.Emulator.Firmware),
		fmt.Sprintf("CPU: %s | GPU: %s | RAM: %s | OS: %s", r.Hardware.CPU, r.Hardware.GPU, r.Hardware.RAM, r.Hardware.OS),
	}
	out := []section{
		{"General Info", general},
		{"System Settings", settingLines(r, systemSettings)},
		{"Graphics Settings", settingLines(r, graphicsSettings)},
	}

	errorLines := []string{NoErrors}
	if r.Game.LatestError != "" {
		errorLines = strings.Split(r.Game.LatestError, "\n")
	}

	switch {
	case r.GameBooted():
		mods := r.Game.Mods
		if len(mods) == 0 {
			mods = []string{NoMods}
		}
		out = append(out, section{"Latest Error Snippet", errorLines}, section{"Mods", mods})
	case r.Game.LatestError == "":
		out = append(out, section{"Empty Log", strings.Split(EmptyLogGuidance, "\n")})
	default:
		out = append(out,
			section{"Latest Error Snippet", errorLines},
			section{"No Game Boot Detected", strings.Split(NoBootGuidance, "\n")})
	}

	notes := []string{NoNotes}
	if len(r.Game.Notes) > 0 {
		notes = notes[:0]
		for _, n := range r.Game.Notes {
			notes = append(notes, strings.Split(wr.note(n), "\n")...)
		}
	}
	return append(out, section{"Notes", notes})
}

func settingLines(r *analyzer.LogReport, rows []settingRow) []string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("%s: %s", row.label, r.Setting(row.key))
	}
	return lines
}

func (wr *Writer) writeReportText(file string, r *analyzer.LogReport) error {
	title := wr.paint(headingColor, r.Game.Name)
	if file != "" {
		title += " " + wr.paint(mutedColor, "("+file+")")
	}
	fmt.Fprintln(wr.w, title)
	for _, s := range wr.sections(r) {
		fmt.Fprintln(wr.w)
		fmt.Fprintln(wr.w, wr.paint(labelColor, s.title))
		for _, line := range s.lines {
			if _, err := fmt.Fprintf(wr.w, "  %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (wr *Writer) writeReportTable(file string, r *analyzer.LogReport) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")

	tid := r.Game.TitleID
	if tid == "" {
		tid = noTitleID
	}
	rows := [][2]string{
		{"File", file},
		{"Game", r.Game.Name},
		{"Title ID", tid},
		{"Version", r.Emulator.Version},
		{"Firmware", r.Emulator.Firmware},
		{"CPU", r.Hardware.CPU},
		{"GPU", r.Hardware.GPU},
		{"RAM", r.Hardware.RAM},
		{"OS", r.Hardware.OS},
	}
	for _, row := range append(systemSettings, graphicsSettings...) {
		rows = append(rows, [2]string{row.label, r.Setting(row.key)})
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(wr.w)
	tw = tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tNOTE")
	fmt.Fprintln(tw, "--------\t----")
	if len(r.Game.Notes) == 0 {
		fmt.Fprintf(tw, "%s\t%s\n", noTitleID, NoNotes)
	}
	for _, n := range r.Game.Notes {
		for _, line := range strings.Split(wr.note(n), "\n") {
			fmt.Fprintf(tw, "%s\t%s\n", n.Severity, line)
		}
	}
	return tw.Flush()
}
