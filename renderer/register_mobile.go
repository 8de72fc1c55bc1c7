//go:build android || ios

package renderer

func init() {
	Register(NameOpenGLES, NewGLES)
}
