package geometry

import (
	"fmt"
	"strings"
)

// ViewMode is the user-selected aspect-ratio presentation policy.
type ViewMode int

const (
	ViewModeNormal ViewMode = iota
	ViewModeZoom
	ViewModeStretch4x3
	ViewModeWideZoom
	ViewModeStretch16x9
	ViewModeOriginal
	ViewModeStretch16x9Nonlinear
)

var viewModeNames = map[ViewMode]string{
	ViewModeNormal:               "normal",
	ViewModeZoom:                 "zoom",
	ViewModeStretch4x3:           "stretch4x3",
	ViewModeWideZoom:             "widezoom",
	ViewModeStretch16x9:          "stretch16x9",
	ViewModeOriginal:             "original",
	ViewModeStretch16x9Nonlinear: "stretch16x9nonlin",
}

// ViewModes lists every view mode in cycling order.
var ViewModes = []ViewMode{
	ViewModeNormal,
	ViewModeZoom,
	ViewModeStretch4x3,
	ViewModeWideZoom,
	ViewModeStretch16x9,
	ViewModeOriginal,
	ViewModeStretch16x9Nonlinear,
}

// String returns the config name of the view mode.
func (m ViewMode) String() string {
	if name, ok := viewModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// ParseViewMode parses a config name (case-insensitive).
func ParseViewMode(s string) (ViewMode, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range viewModeNames {
		if name == lower {
			return mode, nil
		}
	}
	return ViewModeNormal, fmt.Errorf("unknown view mode: %q", s)
}

// Next returns the following mode in ViewModes, wrapping around.
func (m ViewMode) Next() ViewMode {
	for i, mode := range ViewModes {
		if mode == m {
			return ViewModes[(i+1)%len(ViewModes)]
		}
	}
	return ViewModeNormal
}
