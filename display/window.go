package display

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/user-none/retrovideo/renderer"
)

// Window is the part of the ebiten window API the context drives.
type Window interface {
	IsFullscreen() bool
	SetFullscreen(fullscreen bool)
	SetTPS(tps int)
}

type ebitenWindow struct{}

func (ebitenWindow) IsFullscreen() bool        { return ebiten.IsFullscreen() }
func (ebitenWindow) SetFullscreen(enable bool) { ebiten.SetFullscreen(enable) }
func (ebitenWindow) SetTPS(tps int)            { ebiten.SetTPS(tps) }

// EbitenWindow returns the Window backed by the running ebiten game.
func EbitenWindow() Window { return ebitenWindow{} }

// GraphicsLibrary returns the ebiten graphics library that matches a
// backend's API.
func GraphicsLibrary(api renderer.API) ebiten.GraphicsLibrary {
	switch api {
	case renderer.APIOpenGL, renderer.APIOpenGLES:
		return ebiten.GraphicsLibraryOpenGL
	case renderer.APIDirect3D:
		return ebiten.GraphicsLibraryDirectX
	}
	return ebiten.GraphicsLibraryAuto
}

// RunOptions returns the game options for running the named backend.
// Unknown names let ebiten pick the library.
func RunOptions(backend string) *ebiten.RunGameOptions {
	op := &ebiten.RunGameOptions{GraphicsLibrary: ebiten.GraphicsLibraryAuto}
	if info, ok := renderer.InfoFor(backend); ok {
		op.GraphicsLibrary = GraphicsLibrary(info.API)
	}
	return op
}
