package storage

// Config represents the application configuration stored in config.json
type Config struct {
	Version int          `json:"version"`
	Video   VideoConfig  `json:"video"`
	Window  WindowConfig `json:"window"`
}

// VideoConfig contains the presentation settings
type VideoConfig struct {
	ViewMode          string  `json:"viewMode"`          // geometry view mode name, default "normal"
	ScalingMethod     string  `json:"scalingMethod"`     // "nearest", "linear", "cubic", "lanczos3"
	ErrorInAspect     int     `json:"errorInAspect"`     // allowed aspect error in percent, 0-100
	AdjustRefreshRate string  `json:"adjustRefreshRate"` // "off", "always", "onstart"
	VerticalShift     float64 `json:"verticalShift"`     // -2.0 to 2.0
	Backend           string  `json:"backend,omitempty"` // "" = first registered
	LimitedColor      bool    `json:"limitedColor"`      // 16-235 output range
}

// WindowConfig contains window size and mode
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// MaxErrorInAspect is the largest allowed aspect error in percent.
const MaxErrorInAspect = 100

// RefreshPolicy controls when the display refresh rate follows the stream.
type RefreshPolicy int

const (
	RefreshOff RefreshPolicy = iota
	RefreshAlways
	RefreshOnStart
)

var refreshPolicyNames = []string{"off", "always", "onstart"}

func (p RefreshPolicy) String() string {
	if p < 0 || int(p) >= len(refreshPolicyNames) {
		return "off"
	}
	return refreshPolicyNames[p]
}

// ParseRefreshPolicy returns the policy for a config name. ok is false
// for unknown names, in which case RefreshOff is returned.
func ParseRefreshPolicy(s string) (RefreshPolicy, bool) {
	for i, name := range refreshPolicyNames {
		if name == s {
			return RefreshPolicy(i), true
		}
	}
	return RefreshOff, false
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			ViewMode:          "normal",
			ScalingMethod:     "nearest",
			ErrorInAspect:     0,
			AdjustRefreshRate: "off",
			VerticalShift:     0,
		},
		Window: WindowConfig{
			Width:  960,
			Height: 720,
		},
	}
}
