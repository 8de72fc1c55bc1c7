package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// CopyToClipboard places img on the system clipboard as a PNG.
func CopyToClipboard(img image.Image) error {
	if img == nil {
		return ErrNoFrame
	}

	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", clipboardErr)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode clipboard image: %w", err)
	}

	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}
