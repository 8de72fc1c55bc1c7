//go:build !windows && !android && !ios

package renderer

func init() {
	Register(NameOpenGL, NewOpenGL)
	Register(NameOpenGLES, NewGLES)
}
