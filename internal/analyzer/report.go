package analyzer

import "github.com/bimmerbailey/ryulog/internal/parser"

// Hardware describes the host machine.
type Hardware struct {
	CPU string `json:"cpu" yaml:"cpu"`
	GPU string `json:"gpu" yaml:"gpu"`
	RAM string `json:"ram" yaml:"ram"`
	OS  string `json:"os" yaml:"os"`
}

// EmulatorInfo describes the emulator build and its logging configuration.
type EmulatorInfo struct {
	Version  string `json:"version" yaml:"version"`
	Firmware string `json:"firmware" yaml:"firmware"`
	// LogsEnabled is nil when the log never lists its enabled classes.
	LogsEnabled []string `json:"logs_enabled" yaml:"logs_enabled"`
}

// GameInfo describes the title that was running and what went wrong with it.
type GameInfo struct {
	Name        string   `json:"name" yaml:"name"`
	TitleID     string   `json:"title_id,omitempty" yaml:"title_id,omitempty"`
	LatestError string   `json:"latest_error,omitempty" yaml:"latest_error,omitempty"`
	Mods        []string `json:"mods" yaml:"mods"`
	Controllers []string `json:"controllers" yaml:"controllers"`
	Notes       []Note   `json:"notes" yaml:"notes"`
}

// LogReport is the structured result of analysing one log.
type LogReport struct {
	Hardware Hardware          `json:"hardware" yaml:"hardware"`
	Emulator EmulatorInfo      `json:"emulator" yaml:"emulator"`
	Game     GameInfo          `json:"game" yaml:"game"`
	Settings map[string]string `json:"settings" yaml:"settings"`
}

// newReport returns a report with every field at its default.
func newReport(defs []parser.SettingDefinition) *LogReport {
	settings := make(map[string]string, len(defs))
	for _, d := range defs {
		settings[d.Key] = parser.Unknown
	}
	return &LogReport{
		Hardware: Hardware{CPU: parser.Unknown, GPU: parser.Unknown, RAM: parser.Unknown, OS: parser.Unknown},
		Emulator: EmulatorInfo{Version: parser.Unknown, Firmware: parser.Unknown},
		Game:     GameInfo{Name: parser.Unknown},
		Settings: settings,
	}
}

// Setting returns the display value of key, or Unknown.
func (r *LogReport) Setting(key string) string {
	if v, ok := r.Settings[key]; ok {
		return v
	}
	return parser.Unknown
}

// GameBooted reports whether a game was loaded in the log.
func (r *LogReport) GameBooted() bool {
	return r.Game.Name != parser.Unknown
}

// Outcome discriminates the result of Run.
type Outcome int

const (
	// OutcomeReport carries a full report.
	OutcomeReport Outcome = iota
	// OutcomeInvalid means the text was not a log.
	OutcomeInvalid
	// OutcomeBlocked means the log belongs to a blocked title.
	OutcomeBlocked
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReport:
		return "report"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Blocked identifies the blocked title that stopped an analysis.
type Blocked struct {
	TitleID string `json:"title_id" yaml:"title_id"`
}

// Result is the outcome of a full analysis run. Report is set only for
// OutcomeReport and Blocked only for OutcomeBlocked.
type Result struct {
	Outcome Outcome    `json:"outcome" yaml:"outcome"`
	Blocked *Blocked   `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Report  *LogReport `json:"report,omitempty" yaml:"report,omitempty"`
}
