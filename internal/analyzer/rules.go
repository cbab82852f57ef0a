package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bimmerbailey/ryulog/internal/parser"
)

// facts is the read-only snapshot every rule evaluates.
type facts struct {
	report       *LogReport
	incidents    parser.Incidents
	availableRAM int
	hasRAM       bool
	timestamp    string
	checkVersion bool
	prChannel    string
}

// rule turns facts into zero or more notes.
type rule struct {
	name string
	eval func(f *facts) []Note
}

// DefaultLogs are the log classes a useful report needs.
var DefaultLogs = []string{"Info", "Warning", "Error", "Guest", "Stub"}

// LowRAMThresholdMB is the available memory below which a warning is raised.
const LowRAMThresholdMB = 8000

var (
	mainlineVersion    = regexp.MustCompile(`^\d\.\d\.\d+$`)
	oldMainlineVersion = regexp.MustCompile(`^\d\.\d\.\d{4}$`)
	prVersion          = regexp.MustCompile(`^\d\.\d\.\d\+[0-9a-f]{7}$`)
	ldnVersion         = regexp.MustCompile(`^\d\.\d\.\d-ldn\d+(\.\d+)*$`)
	macVersion         = regexp.MustCompile(`^\d\.\d\.\d-macos\d+(\.\d+)*$`)
)

func when(cond bool, sev Severity, text string) []Note {
	if !cond {
		return nil
	}
	return []Note{newNote(sev, text)}
}

// errorRule fires when any error incident mentions one of terms.
func errorRule(name, text string, terms ...string) rule {
	return rule{name: name, eval: func(f *facts) []Note {
		return when(f.incidents.Search(terms...), SeverityWarning, text)
	}}
}

// Raw boolean settings log True/False; normalized ones use Enabled/Disabled.
func settingOn(v string) bool  { return v == "True" || v == "Enabled" }
func settingOff(v string) bool { return v == "False" || v == "Disabled" }

var rules = []rule{
	errorRule("cache-collision",
		"Cache collision detected. Investigate possible shader cache issues",
		"Cache collision found"),
	errorRule("cache-corruption",
		"Cache corruption detected. Investigate possible shader cache issues",
		"Ryujinx.Graphics.Gpu.Shader.ShaderCache.Initialize()",
		"System.IO.InvalidDataException: End of Central Directory record could not be found",
		"ICSharpCode.SharpZipLib.Zip.ZipException: Cannot find central directory"),
	errorRule("dump-hash",
		"Dump error detected. Investigate possible bad game/firmware dump issues",
		"ResultFsInvalidIvfcHash", "ResultFsNonRealDataVerificationFailed"),
	errorRule("missing-keys",
		"Keys or firmware out of date, consider updating them",
		"MissingKeyException"),
	errorRule("permission-denied",
		"File permission error. Consider deleting save directory and allowing Ryujinx to make a new one",
		"ResultFsPermissionDenied"),
	errorRule("save-not-found",
		"Save not found error. Consider starting game without a save file or using a new save file",
		"ResultFsTargetNotFound"),
	{"missing-services", func(f *facts) []Note {
		return when(f.incidents.Search("ServiceNotImplementedException") &&
			settingOff(f.report.Setting(parser.SettingIgnoreMissingServices)),
			SeverityWarning, "Consider enabling `Ignore Missing Services` in Ryujinx settings")
	}},
	{"vulkan-out-of-memory", func(f *facts) []Note {
		return when(f.incidents.Search("ErrorOutOfDeviceMemory") &&
			f.report.Setting(parser.SettingTextureRecompression) == "Disabled",
			SeverityWarning, "Consider enabling `Texture Recompression` in Ryujinx settings")
	}},
	{"time-elapsed", func(f *facts) []Note {
		return when(f.timestamp != "", SeverityInfo, fmt.Sprintf("Time elapsed: `%s`", f.timestamp))
	}},
	{"controllers", func(f *facts) []Note {
		controllers := f.report.Game.Controllers
		if len(controllers) == 0 {
			return when(f.report.GameBooted(), SeverityWarning, "No controller information found")
		}
		lines := make([]string, len(controllers))
		for i, c := range controllers {
			lines[i] = SeverityInfo.Glyph() + " " + c
		}
		return []Note{{Severity: SeverityInfo, Text: strings.Join(lines, "\n")}}
	}},
	{"low-ram", func(f *facts) []Note {
		return when(f.hasRAM && f.availableRAM < LowRAMThresholdMB, SeverityWarning,
			fmt.Sprintf("Less than 8GB RAM available (%d MB)", f.availableRAM))
	}},
	{"gpu-backend", func(f *facts) []Note {
		hw := f.report.Hardware
		if !strings.Contains(hw.OS, "Windows") || f.report.Setting(parser.SettingGraphicsBackend) == "Vulkan" {
			return nil
		}
		var notes []Note
		if strings.Contains(hw.GPU, "Intel") {
			notes = append(notes, newNote(SeverityWarning, "**Intel iGPU users should consider using Vulkan graphics backend**"))
		}
		if strings.Contains(hw.GPU, "AMD") {
			notes = append(notes, newNote(SeverityWarning, "**AMD GPU users should consider using Vulkan graphics backend**"))
		}
		return notes
	}},
	{"logs-enabled", func(f *facts) []Note {
		enabled := f.report.Emulator.LogsEnabled
		if enabled == nil {
			return nil
		}
		var notes []Note
		if contains(enabled, "Debug") {
			notes = append(notes, newNote(SeverityWarning, "**Debug logs enabled will have a negative impact on performance**"))
		}
		var missing []Note
		for _, log := range DefaultLogs {
			if !contains(enabled, log) {
				missing = append(missing, newNote(SeverityWarning, log+" log is not enabled"))
			}
		}
		if len(missing) == 0 {
			return append(notes, newNote(SeverityOK, "Default logs enabled"))
		}
		return append(notes, missing...)
	}},
	{"firmware", func(f *facts) []Note {
		return when(f.report.Emulator.Firmware == parser.Unknown, SeverityCritical, "**Nintendo Switch firmware not found**")
	}},
	{"dummy-audio", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingAudioBackend) == "Dummy", SeverityWarning,
			"Dummy audio backend, consider changing to SDL2 or OpenAL")
	}},
	{"pptc", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingPPTC) == "Disabled", SeverityHigh, "**PPTC cache should be enabled**")
	}},
	{"shader-cache", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingShaderCache) == "Disabled", SeverityHigh, "**Shader cache should be enabled**")
	}},
	{"expand-ram", func(f *facts) []Note {
		return when(settingOn(f.report.Setting(parser.SettingExpandRAM)), SeverityWarning,
			"`Use alternative memory layout` should only be enabled for 4K mods")
	}},
	{"software-memory-manager", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingMemoryManager) == "SoftwarePageTable", SeverityHigh,
			"**`Software` setting in Memory Manager Mode will give slower performance than the default setting of `Host unchecked`**")
	}},
	{"ignore-missing-services", func(f *facts) []Note {
		return when(settingOn(f.report.Setting(parser.SettingIgnoreMissingServices)), SeverityWarning,
			"`Ignore Missing Services` being enabled can cause instability")
	}},
	{"vsync", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingVSync) == "Disabled", SeverityWarning,
			"V-Sync disabled can cause instability like games running faster than intended or longer load times")
	}},
	{"fs-integrity", func(f *facts) []Note {
		return when(settingOff(f.report.Setting(parser.SettingFSIntegrity)), SeverityWarning,
			"Disabling file integrity checks may cause corrupted dumps to not be detected")
	}},
	{"backend-threading", func(f *facts) []Note {
		return when(f.report.Setting(parser.SettingBackendThreading) == "Off", SeverityHigh,
			"**Graphics Backend Multithreading should be set to `Auto`**")
	}},
	{"version", versionNotes},
}

// versionNotes classifies the emulator build. At most one note fires since
// the patterns that trigger a note are mutually exclusive.
func versionNotes(f *facts) []Note {
	if !f.checkVersion {
		return nil
	}
	v := f.report.Emulator.Version
	switch {
	case prVersion.MatchString(v):
		return []Note{newNote(SeverityWarning,
			fmt.Sprintf("**PR build logs should be posted in %s if reporting bugs or tests**", f.prChannel))}
	case oldMainlineVersion.MatchString(v):
		return []Note{newNote(SeverityHigh,
			"**Old Ryujinx version, please re-download from the Ryujinx website as auto-updates will not work on this version**")}
	case mainlineVersion.MatchString(v), macVersion.MatchString(v), ldnVersion.MatchString(v), v == parser.Unknown:
		return nil
	default:
		return []Note{newNote(SeverityWarning, "**Custom builds are not officially supported**")}
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
