package storage

import (
	"sync"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/renderer"
)

// GameSettings exposes the video section of a Config to the renderers.
// Values are parsed once on Update and can be changed at runtime from the
// UI goroutine while the render goroutine reads them.
type GameSettings struct {
	mu            sync.RWMutex
	viewMode      geometry.ViewMode
	scaling       renderer.ScalingMethod
	errorInAspect int
	verticalShift float64
	refresh       RefreshPolicy
	backend       string
	limitedColor  bool
}

var _ renderer.Settings = (*GameSettings)(nil)

// NewGameSettings creates settings from the video section of cfg.
// Invalid names fall back to the defaults.
func NewGameSettings(cfg VideoConfig) *GameSettings {
	s := &GameSettings{}
	s.Update(cfg)
	return s
}

// Update replaces all values from cfg.
func (s *GameSettings) Update(cfg VideoConfig) {
	mode, err := geometry.ParseViewMode(cfg.ViewMode)
	if err != nil {
		mode = geometry.ViewModeNormal
	}
	scaling, err := renderer.ParseScalingMethod(cfg.ScalingMethod)
	if err != nil {
		scaling = renderer.ScalingNearest
	}
	refresh, _ := ParseRefreshPolicy(cfg.AdjustRefreshRate)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
	s.scaling = scaling
	s.errorInAspect = min(max(cfg.ErrorInAspect, 0), MaxErrorInAspect)
	s.verticalShift = min(max(cfg.VerticalShift, -2), 2)
	s.refresh = refresh
	s.backend = cfg.Backend
	s.limitedColor = cfg.LimitedColor
}

// VideoConfig returns the current values in config form.
func (s *GameSettings) VideoConfig() VideoConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return VideoConfig{
		ViewMode:          s.viewMode.String(),
		ScalingMethod:     s.scaling.String(),
		ErrorInAspect:     s.errorInAspect,
		AdjustRefreshRate: s.refresh.String(),
		VerticalShift:     s.verticalShift,
		Backend:           s.backend,
		LimitedColor:      s.limitedColor,
	}
}

func (s *GameSettings) ViewMode() geometry.ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewMode
}

func (s *GameSettings) SetViewMode(mode geometry.ViewMode) {
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
}

func (s *GameSettings) ScalingMethod() renderer.ScalingMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scaling
}

func (s *GameSettings) SetScalingMethod(m renderer.ScalingMethod) {
	s.mu.Lock()
	s.scaling = m
	s.mu.Unlock()
}

func (s *GameSettings) ErrorInAspect() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorInAspect
}

func (s *GameSettings) VerticalShift() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verticalShift
}

// RefreshPolicy reports when the display refresh rate should follow the
// stream frame rate.
func (s *GameSettings) RefreshPolicy() RefreshPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Backend is the preferred render backend name, empty for the default.
func (s *GameSettings) Backend() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

func (s *GameSettings) LimitedColor() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limitedColor
}
