package renderer

// OpenGL is the desktop OpenGL backend. It renders like GLES but clears
// with limited-range black when the display uses limited colour.
type OpenGL struct {
	*GLES
}

// NewOpenGL creates a desktop OpenGL backend.
func NewOpenGL(env Environment) Backend {
	r := newGLES(NameOpenGL, env)
	r.limitedClear = true
	return &OpenGL{GLES: r}
}
