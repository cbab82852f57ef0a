package parser

import (
	"fmt"
	"regexp"
)

// Canonical setting keys.
const (
	SettingAnisotropicFiltering  = "anisotropic_filtering"
	SettingAspectRatio           = "aspect_ratio"
	SettingAudioBackend          = "audio_backend"
	SettingBackendThreading      = "backend_threading"
	SettingDocked                = "docked"
	SettingExpandRAM             = "expand_ram"
	SettingFSIntegrity           = "fs_integrity"
	SettingGraphicsBackend       = "graphics_backend"
	SettingIgnoreMissingServices = "ignore_missing_services"
	SettingMemoryManager         = "memory_manager"
	SettingPPTC                  = "pptc"
	SettingResolutionScale       = "resolution_scale"
	SettingShaderCache           = "shader_cache"
	SettingTextureRecompression  = "texture_recompression"
	SettingVSync                 = "vsync"
)

// Normalizer converts a raw captured token into its display value.
type Normalizer func(raw string) (string, error)

// SettingDefinition maps a canonical setting key to the token the emulator
// logs it under and the normalizer for its value.
type SettingDefinition struct {
	Key       string
	Token     string
	Normalize Normalizer
}

// valueChangePattern matches both "LogValueChange: EnablePtc set to: True"
// and "LogValueChange: (EnablePtc) True".
var valueChangePattern = regexp.MustCompile(`LogValueChange: \(?(\w+)\)?\s`)

// Verbatim uses the raw token as the display value.
func Verbatim(raw string) (string, error) { return raw, nil }

// Lookup builds a normalizer from a fixed code→label table. Codes missing
// from the table are an error.
func Lookup(table map[string]string) Normalizer {
	return func(raw string) (string, error) {
		v, ok := table[raw]
		if !ok {
			return "", fmt.Errorf("unmapped value %q", raw)
		}
		return v, nil
	}
}

// Bool builds a normalizer that maps "True" to on and everything else to off.
func Bool(on, off string) Normalizer {
	return func(raw string) (string, error) {
		if raw == "True" {
			return on, nil
		}
		return off, nil
	}
}

var (
	resolutionLabels = map[string]string{
		"-1": "Custom",
		"1":  "Native (720p/1080p)",
		"2":  "2x (1440p/2160p)",
		"3":  "3x (2160p/3240p)",
		"4":  "4x (2880p/4320p)",
	}
	anisotropyLabels = map[string]string{
		"-1": "Auto",
		"2":  "2x",
		"4":  "4x",
		"8":  "8x",
		"16": "16x",
	}
	aspectLabels = map[string]string{
		"Fixed4x3":   "4:3",
		"Fixed16x9":  "16:9",
		"Fixed16x10": "16:10",
		"Fixed21x9":  "21:9",
		"Fixed32x9":  "32:9",
		"Stretched":  "Stretch to Fit Window",
	}
)

// DefaultSettings returns the settings tracked in every report.
func DefaultSettings() []SettingDefinition {
	enabled := Bool("Enabled", "Disabled")
	return []SettingDefinition{
		{SettingAnisotropicFiltering, "MaxAnisotropy", Lookup(anisotropyLabels)},
		{SettingAspectRatio, "AspectRatio", Lookup(aspectLabels)},
		{SettingAudioBackend, "AudioBackend", Verbatim},
		{SettingBackendThreading, "BackendThreading", Verbatim},
		{SettingDocked, "EnableDockedMode", Bool("Docked", "Handheld")},
		{SettingExpandRAM, "ExpandRam", Verbatim},
		{SettingFSIntegrity, "EnableFsIntegrityChecks", Verbatim},
		{SettingGraphicsBackend, "GraphicsBackend", Verbatim},
		{SettingIgnoreMissingServices, "IgnoreMissingServices", Verbatim},
		{SettingMemoryManager, "MemoryManagerMode", Verbatim},
		{SettingPPTC, "EnablePtc", enabled},
		{SettingResolutionScale, "ResScale", Lookup(resolutionLabels)},
		{SettingShaderCache, "EnableShaderCache", enabled},
		{SettingTextureRecompression, "EnableTextureRecompression", enabled},
		{SettingVSync, "EnableVsync", enabled},
	}
}

// SettingError records a setting whose raw value could not be normalized.
type SettingError struct {
	Key string
	Raw string
	Err error
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("setting %s: %v", e.Key, e.Err)
}

func (e *SettingError) Unwrap() error { return e.Err }

// Settings resolves every definition against text. Each key is present in
// the result; keys never mentioned, or whose value fails to normalize, keep
// Unknown. The last value change for a token wins.
func Settings(text string, defs []SettingDefinition) (map[string]string, []error) {
	byToken := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		byToken[d.Token] = struct{}{}
	}

	raw := make(map[string]string)
	for _, line := range Lines(text) {
		m := valueChangePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, tracked := byToken[m[1]]; !tracked {
			continue
		}
		if v, ok := lastField(line); ok {
			raw[m[1]] = v
		}
	}

	out := make(map[string]string, len(defs))
	var errs []error
	for _, d := range defs {
		out[d.Key] = Unknown
		v, ok := raw[d.Token]
		if !ok {
			continue
		}
		normalize := d.Normalize
		if normalize == nil {
			normalize = Verbatim
		}
		display, err := normalize(v)
		if err != nil {
			errs = append(errs, &SettingError{Key: d.Key, Raw: v, Err: err})
			continue
		}
		out[d.Key] = display
	}
	return out, errs
}
