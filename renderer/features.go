package renderer

import (
	"fmt"
	"strings"
)

// API is the graphics API a backend drives.
type API int

const (
	APIOpenGL API = iota
	APIOpenGLES
	APIDirect3D
)

func (a API) String() string {
	switch a {
	case APIOpenGL:
		return "opengl"
	case APIOpenGLES:
		return "opengles"
	case APIDirect3D:
		return "direct3d"
	}
	return fmt.Sprintf("API(%d)", int(a))
}

// Feature is an optional render capability.
type Feature int

const (
	FeatureGamma Feature = iota
	FeatureBrightness
	FeatureContrast
	FeatureNoise
	FeatureSharpness
	FeatureNonLinearStretch
	FeatureRotation
	FeatureStretch
	FeatureZoom
	FeatureVerticalShift
	FeaturePixelRatio
	FeaturePostProcess
)

var featureNames = map[Feature]string{
	FeatureGamma:            "gamma",
	FeatureBrightness:       "brightness",
	FeatureContrast:         "contrast",
	FeatureNoise:            "noise",
	FeatureSharpness:        "sharpness",
	FeatureNonLinearStretch: "nonlinearstretch",
	FeatureRotation:         "rotation",
	FeatureStretch:          "stretch",
	FeatureZoom:             "zoom",
	FeatureVerticalShift:    "verticalshift",
	FeaturePixelRatio:       "pixelratio",
	FeaturePostProcess:      "postprocess",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

// ScalingMethod is the texture filter used when the frame is resized.
type ScalingMethod int

const (
	ScalingNearest ScalingMethod = iota
	ScalingLinear
	ScalingCubic
	ScalingLanczos3
)

var scalingNames = map[ScalingMethod]string{
	ScalingNearest:  "nearest",
	ScalingLinear:   "linear",
	ScalingCubic:    "cubic",
	ScalingLanczos3: "lanczos3",
}

func (m ScalingMethod) String() string {
	if name, ok := scalingNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ScalingMethod(%d)", int(m))
}

// ParseScalingMethod parses a config name (case-insensitive).
func ParseScalingMethod(s string) (ScalingMethod, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for m, name := range scalingNames {
		if name == lower {
			return m, nil
		}
	}
	return ScalingNearest, fmt.Errorf("unknown scaling method: %q", s)
}

// ScalingMethods lists all scaling methods in cycling order.
var ScalingMethods = []ScalingMethod{ScalingNearest, ScalingLinear, ScalingCubic, ScalingLanczos3}
