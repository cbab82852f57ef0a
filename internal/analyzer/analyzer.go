// Package analyzer turns a Ryujinx log into a LogReport: extracted facts,
// normalized settings and a ranked list of advisory notes.
//
// An Analyzer holds only immutable configuration, so one value can serve
// any number of concurrent analyses.
package analyzer

import (
	"io"
	"log/slog"
	"strings"

	"github.com/bimmerbailey/ryulog/internal/parser"
)

// DefaultPRChannel is where pull-request build logs are redirected.
const DefaultPRChannel = "#pr-testing"

// Blocklist reports whether a title ID must not be analysed.
type Blocklist interface {
	IsBlocked(titleID string) bool
}

// BlocklistFunc adapts a plain function to Blocklist.
type BlocklistFunc func(titleID string) bool

// IsBlocked calls f.
func (f BlocklistFunc) IsBlocked(titleID string) bool { return f(titleID) }

// Analyzer analyses log text.
type Analyzer struct {
	settings  []parser.SettingDefinition
	prChannel string
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSettings replaces the default settings table.
func WithSettings(defs []parser.SettingDefinition) Option {
	return func(a *Analyzer) {
		if len(defs) > 0 {
			a.settings = defs
		}
	}
}

// WithPRChannel sets the destination named in the pull-request build note.
func WithPRChannel(channel string) Option {
	return func(a *Analyzer) {
		if channel != "" {
			a.prChannel = channel
		}
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		settings:  parser.DefaultSettings(),
		prChannel: DefaultPRChannel,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run classifies raw text, applies the title-ID gate and, when neither
// short-circuits, analyses the log. A nil blocklist blocks nothing.
func (a *Analyzer) Run(raw string, blocklist Blocklist, checkVersion bool) Result {
	text, ok := parser.Classify(raw)
	if !ok {
		return Result{Outcome: OutcomeInvalid}
	}
	if blocked, ok := a.CheckTitleBlock(text, blocklist); ok {
		return Result{Outcome: OutcomeBlocked, Blocked: &blocked}
	}
	return Result{Outcome: OutcomeReport, Report: a.Analyze(text, checkVersion)}
}

// CheckTitleBlock resolves the title ID of the loaded game and asks the
// blocklist about it.
func (a *Analyzer) CheckTitleBlock(text string, blocklist Blocklist) (Blocked, bool) {
	if blocklist == nil {
		return Blocked{}, false
	}
	line, ok := parser.GameLine(text)
	if !ok {
		return Blocked{}, false
	}
	tid, ok := parser.TitleID(line)
	if !ok || !blocklist.IsBlocked(tid) {
		return Blocked{}, false
	}
	a.logger.Info("blocked title detected", "title_id", tid)
	return Blocked{TitleID: tid}, true
}

// Analyze builds the report for text, which must already be classified.
// Version classification notes are produced only when checkVersion is set.
func (a *Analyzer) Analyze(text string, checkVersion bool) *LogReport {
	r := newReport(a.settings)

	r.Hardware.CPU = orUnknown(parser.CPU(text))
	r.Hardware.GPU = orUnknown(parser.GPU(text))
	r.Hardware.RAM = orUnknown(parser.RAM(text))
	r.Hardware.OS = orUnknown(parser.OS(text))
	r.Emulator.Version = orUnknown(parser.EmulatorVersion(text))
	r.Emulator.Firmware = orUnknown(parser.FirmwareVersion(text))
	if logs, ok := parser.LogsEnabled(text); ok {
		r.Emulator.LogsEnabled = logs
	}

	settings, errs := parser.Settings(text, a.settings)
	for _, err := range errs {
		a.logger.Debug("setting not normalized", "error", err)
	}
	r.Settings = settings

	incidents := parser.SegmentErrors(text)
	if snippet, ok := incidents.LatestSnippet(); ok {
		r.Game.LatestError = snippet
	}

	// The game is resolved last so a log without a boot still carries its
	// settings and errors.
	if line, ok := parser.GameLine(text); ok && line != "" {
		r.Game.Name = parser.GameName(line)
		if tid, ok := parser.TitleID(line); ok {
			r.Game.TitleID = tid
		}
	}
	r.Game.Mods = parser.Mods(text)
	r.Game.Controllers = parser.Controllers(text)

	f := &facts{
		report:       r,
		incidents:    incidents,
		checkVersion: checkVersion,
		prChannel:    a.prChannel,
	}
	f.availableRAM, f.hasRAM = parser.AvailableRAM(text)
	f.timestamp, _ = parser.LatestTimestamp(text)

	var notes []Note
	for _, rl := range rules {
		produced := rl.eval(f)
		if len(produced) > 0 {
			a.logger.Debug("rule fired", "rule", rl.name, "notes", len(produced))
		}
		notes = append(notes, produced...)
	}
	r.Game.Notes = Rank(notes)

	a.logger.Debug("log analysed",
		"game", r.Game.Name,
		"version", r.Emulator.Version,
		"incidents", len(incidents),
		"notes", len(r.Game.Notes))
	return r
}

func orUnknown(v string, ok bool) string {
	if !ok || strings.TrimSpace(v) == "" {
		return parser.Unknown
	}
	return v
}
