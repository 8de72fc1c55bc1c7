package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// SaveScreenshot writes img as a PNG into dir, named by Unix timestamp, and
// returns the file path.
func SaveScreenshot(img image.Image, dir string) (string, error) {
	if img == nil {
		return "", ErrNoFrame
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	name := fmt.Sprintf("%d.png", time.Now().Unix())
	fullPath := filepath.Join(dir, name)

	// Avoid clobbering a capture taken within the same second
	for i := 1; ; i++ {
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			break
		}
		fullPath = filepath.Join(dir, fmt.Sprintf("%d-%d.png", time.Now().Unix(), i))
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}

	return fullPath, nil
}
