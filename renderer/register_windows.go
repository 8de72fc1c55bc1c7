//go:build windows

package renderer

func init() {
	Register(NameDirect3D, NewDirect3D)
	Register(NameOpenGL, NewOpenGL)
}
