package display

import (
	_ "embed"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed shaders/bicubic.kage
var bicubicShaderSrc []byte

// shaderCache compiles a shader on first use. A compile failure is kept
// so callers fall back to fixed-function filtering without retrying.
type shaderCache struct {
	once   sync.Once
	src    []byte
	name   string
	shader *ebiten.Shader
	err    error
}

func newShaderCache(name string, src []byte) *shaderCache {
	return &shaderCache{name: name, src: src}
}

// get returns the compiled shader, or nil when compilation failed.
func (c *shaderCache) get(log *slog.Logger) *ebiten.Shader {
	c.once.Do(func() {
		c.shader, c.err = ebiten.NewShader(c.src)
		if c.err != nil {
			log.Warn("shader unavailable, using linear filtering", "shader", c.name, "error", c.err)
		}
	})
	return c.shader
}
