package storage

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/renderer"
)

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "video.viewMode", "window.width").
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	nested := map[string][]string{
		"video":  {"viewMode", "scalingMethod", "errorInAspect", "adjustRefreshRate", "verticalShift"},
		"window": {"width", "height"},
	}
	for section, keys := range nested {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file. Intentional zero values (e.g. verticalShift=0) are kept.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["video.viewMode"] {
		config.Video.ViewMode = defaults.Video.ViewMode
	}
	if !presentKeys["video.scalingMethod"] {
		config.Video.ScalingMethod = defaults.Video.ScalingMethod
	}
	if !presentKeys["video.errorInAspect"] {
		config.Video.ErrorInAspect = defaults.Video.ErrorInAspect
	}
	if !presentKeys["video.adjustRefreshRate"] {
		config.Video.AdjustRefreshRate = defaults.Video.AdjustRefreshRate
	}
	if !presentKeys["video.verticalShift"] {
		config.Video.VerticalShift = defaults.Video.VerticalShift
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
}

// ValidateConfig checks all config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
// validBackends should be the names of the registered render backends.
func ValidateConfig(config *Config, validBackends []string) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if _, err := geometry.ParseViewMode(config.Video.ViewMode); err != nil {
		errors = append(errors, fmt.Sprintf("video.viewMode: %q (valid: %v)", config.Video.ViewMode, geometry.ViewModes))
	}

	if _, err := renderer.ParseScalingMethod(config.Video.ScalingMethod); err != nil {
		errors = append(errors, fmt.Sprintf("video.scalingMethod: %q (valid: %v)", config.Video.ScalingMethod, renderer.ScalingMethods))
	}

	if config.Video.ErrorInAspect < 0 || config.Video.ErrorInAspect > MaxErrorInAspect {
		errors = append(errors, fmt.Sprintf("video.errorInAspect: %d (valid: 0-%d)", config.Video.ErrorInAspect, MaxErrorInAspect))
	}

	if _, ok := ParseRefreshPolicy(config.Video.AdjustRefreshRate); !ok {
		errors = append(errors, fmt.Sprintf("video.adjustRefreshRate: %q (valid: %q)", config.Video.AdjustRefreshRate, refreshPolicyNames))
	}

	if config.Video.VerticalShift < -2 || config.Video.VerticalShift > 2 {
		errors = append(errors, fmt.Sprintf("video.verticalShift: %.2f (valid: -2.0-2.0)", config.Video.VerticalShift))
	}

	if config.Video.Backend != "" && !slices.Contains(validBackends, config.Video.Backend) {
		errors = append(errors, fmt.Sprintf("video.backend: %q (valid: %q)", config.Video.Backend, validBackends))
	}

	if config.Window.Width < 320 {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= 320)", config.Window.Width))
	}

	if config.Window.Height < 240 {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= 240)", config.Window.Height))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config, validBackends []string) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if _, err := geometry.ParseViewMode(config.Video.ViewMode); err != nil {
		config.Video.ViewMode = defaults.Video.ViewMode
	}
	if _, err := renderer.ParseScalingMethod(config.Video.ScalingMethod); err != nil {
		config.Video.ScalingMethod = defaults.Video.ScalingMethod
	}
	if config.Video.ErrorInAspect < 0 || config.Video.ErrorInAspect > MaxErrorInAspect {
		config.Video.ErrorInAspect = defaults.Video.ErrorInAspect
	}
	if _, ok := ParseRefreshPolicy(config.Video.AdjustRefreshRate); !ok {
		config.Video.AdjustRefreshRate = defaults.Video.AdjustRefreshRate
	}
	if config.Video.VerticalShift < -2 || config.Video.VerticalShift > 2 {
		config.Video.VerticalShift = defaults.Video.VerticalShift
	}
	if config.Video.Backend != "" && !slices.Contains(validBackends, config.Video.Backend) {
		config.Video.Backend = defaults.Video.Backend
	}
	if config.Window.Width < 320 {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < 240 {
		config.Window.Height = defaults.Window.Height
	}

	return config
}
