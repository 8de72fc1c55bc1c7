package renderer

// Info describes a backend variant and its static capabilities.
type Info struct {
	Name           string          // Unique identifier used in config
	API            API             // Graphics API driven
	Description    string          // Brief description for logs and -list output
	Features       []Feature       // Supported render features
	ScalingMethods []ScalingMethod // Supported scaling methods
	DefaultScaling ScalingMethod   // Scaling used until settings override it
}

// Backend names
const (
	NameOpenGL   = "opengl"
	NameOpenGLES = "opengles"
	NameDirect3D = "direct3d"
)

// KnownBackends lists every backend variant.
var KnownBackends = []Info{
	{
		Name:        NameOpenGL,
		API:         APIOpenGL,
		Description: "Desktop OpenGL, limited-range aware clear",
		Features: []Feature{
			FeatureStretch,
			FeatureZoom,
			FeatureVerticalShift,
			FeaturePixelRatio,
			FeaturePostProcess,
			FeatureRotation,
		},
		ScalingMethods: []ScalingMethod{ScalingNearest, ScalingLinear, ScalingCubic},
		DefaultScaling: ScalingNearest,
	},
	{
		Name:        NameOpenGLES,
		API:         APIOpenGLES,
		Description: "OpenGL ES, converts on the producer side",
		Features: []Feature{
			FeatureStretch,
			FeatureZoom,
			FeatureVerticalShift,
			FeaturePixelRatio,
			FeaturePostProcess,
			FeatureRotation,
		},
		ScalingMethods: []ScalingMethod{ScalingNearest, ScalingLinear},
		DefaultScaling: ScalingNearest,
	},
	{
		Name:        NameDirect3D,
		API:         APIDirect3D,
		Description: "Direct3D, converts on upload",
		Features: []Feature{
			FeatureStretch,
			FeatureZoom,
			FeatureVerticalShift,
			FeaturePixelRatio,
			FeatureRotation,
		},
		ScalingMethods: []ScalingMethod{ScalingLinear},
		DefaultScaling: ScalingLinear,
	},
}

// backendFeatures provides O(1) feature lookup by backend name
var backendFeatures map[string]map[Feature]bool

// backendScaling provides O(1) scaling lookup by backend name
var backendScaling map[string]map[ScalingMethod]bool

// backendInfo provides O(1) info lookup by backend name
var backendInfo map[string]Info

func init() {
	backendFeatures = make(map[string]map[Feature]bool)
	backendScaling = make(map[string]map[ScalingMethod]bool)
	backendInfo = make(map[string]Info)
	for _, b := range KnownBackends {
		features := make(map[Feature]bool, len(b.Features))
		for _, f := range b.Features {
			features[f] = true
		}
		scaling := make(map[ScalingMethod]bool, len(b.ScalingMethods))
		for _, m := range b.ScalingMethods {
			scaling[m] = true
		}
		backendFeatures[b.Name] = features
		backendScaling[b.Name] = scaling
		backendInfo[b.Name] = b
	}
}

// InfoFor returns the static description of a backend.
func InfoFor(name string) (Info, bool) {
	info, ok := backendInfo[name]
	return info, ok
}

// HasFeature reports whether the named backend supports f.
func HasFeature(name string, f Feature) bool {
	return backendFeatures[name][f]
}

// HasScalingMethod reports whether the named backend supports m.
func HasScalingMethod(name string, m ScalingMethod) bool {
	return backendScaling[name][m]
}
