//go:build !ios && !android

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqweek/dialog"

	"github.com/user-none/retrovideo/framedump"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/player"
	"github.com/user-none/retrovideo/renderer"
	"github.com/user-none/retrovideo/storage"
	"github.com/user-none/retrovideo/viewer"
)

func main() {
	dumpPath := flag.String("dump", "", "path to a frame dump (opens a file picker if not provided)")
	pattern := flag.Bool("pattern", false, "play the built-in test pattern")
	backend := flag.String("backend", "", "render backend (overrides config)")
	fullscreen := flag.Bool("fullscreen", false, "start in full screen")
	tvOutput := flag.Bool("tv", false, "allow 4:3 TV output modes")
	loop := flag.Bool("loop", true, "loop frame dumps")
	record := flag.String("record", "", "write the test pattern to a frame dump instead of playing")
	frames := flag.Int("frames", 300, "number of frames to record")
	listBackends := flag.Bool("list-backends", false, "list render backends and exit")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, or error")
	dataDir := flag.String("data-dir", "", "data directory name (default retrovideo)")
	resetConfig := flag.Bool("reset-config", false, "replace config.json with the defaults")
	flag.Parse()

	if *dataDir != "" {
		storage.Init(*dataDir)
	}

	log := newLogger(*logLevel)
	logging.SetLogger(log)

	if *listBackends {
		for _, name := range renderer.Available() {
			fmt.Println(name)
		}
		return
	}

	if err := storage.EnsureDirectories(); err != nil {
		log.Warn("failed to create data directories", "error", err)
	}
	if *resetConfig {
		if err := storage.DeleteConfig(); err != nil {
			log.Warn("failed to remove config", "error", err)
		}
	}
	if err := storage.CreateConfigIfMissing(); err != nil {
		log.Warn("failed to create default config", "error", err)
	}

	if *record != "" {
		if err := recordPattern(log, *record, *frames); err != nil {
			fatal(log, err)
		}
		return
	}

	src, title, err := openSource(*dumpPath, *pattern)
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		fatal(log, err)
	}

	err = viewer.Run(src, viewer.Options{
		Title:      title,
		Backend:    *backend,
		Fullscreen: *fullscreen,
		TVOutput:   *tvOutput,
		Loop:       *loop,
		Logger:     log,
	})
	if err != nil {
		fatal(log, err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// openSource picks the source from the flags, asking for a dump file when
// none was given.
func openSource(path string, pattern bool) (player.Source, string, error) {
	if pattern {
		return player.NewPatternSource(320, 240, 60), "Test pattern", nil
	}

	if path == "" {
		var err error
		path, err = pickDump()
		if err != nil {
			return nil, "", err
		}
	}

	d, err := framedump.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load frame dump: %w", err)
	}
	src, err := player.NewDumpSource(d)
	if err != nil {
		return nil, "", err
	}
	return src, filepath.Base(path), nil
}

func pickDump() (string, error) {
	b := dialog.File().
		Title("Open frame dump").
		Filter("Frame dumps", strings.TrimPrefix(framedump.Extension, "."), "zip", "7z", "rar", "gz", "tgz")
	if dir, err := storage.GetDumpsDir(); err == nil {
		b = b.SetStartDir(dir)
	}
	return b.Load()
}

func recordPattern(log *slog.Logger, path string, frames int) error {
	if filepath.Ext(path) == "" {
		path += framedump.Extension
	}
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		if dir, err := storage.GetDumpsDir(); err == nil {
			path = filepath.Join(dir, path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame dump: %w", err)
	}
	n, err := player.Record(player.NewPatternSource(320, 240, 60), f, frames)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	log.Info("recorded frame dump", "path", path, "frames", n)
	return nil
}

func fatal(log *slog.Logger, err error) {
	log.Error("rpview failed", "error", err)
	dialog.Message("%s", err.Error()).Title("rpview").Error()
	os.Exit(1)
}
