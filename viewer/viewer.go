//go:build !ios && !android

// Package viewer plays a frame source in a desktop window through the
// render manager.
package viewer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/eblitui/romloader"

	"github.com/user-none/retrovideo/display"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/player"
	"github.com/user-none/retrovideo/processinfo"
	"github.com/user-none/retrovideo/renderer"
	"github.com/user-none/retrovideo/rendermanager"
	"github.com/user-none/retrovideo/storage"
)

// Options configure a viewer session.
type Options struct {
	Title string
	// Backend overrides the configured render backend.
	Backend string
	// Fullscreen starts the window in full screen.
	Fullscreen bool
	// TVOutput enables the 4:3 TV output modes.
	TVOutput bool
	// Loop restarts finite sources when they end.
	Loop bool
	// Config replaces the configuration file when set.
	Config *storage.Config
	Logger *slog.Logger
}

var _ player.Sink = (*rendermanager.Video)(nil)

// loadConfig reads and repairs the configuration file. Problems are logged
// and defaults are used in their place.
func loadConfig(log *slog.Logger) *storage.Config {
	cfg, err := storage.LoadConfig()
	if err != nil {
		log.Warn("failed to load config, using defaults", "error", err)
		cfg = storage.DefaultConfig()
	}
	backends := renderer.Available()
	if problems := storage.ValidateConfig(cfg, backends); len(problems) > 0 {
		for _, p := range problems {
			log.Warn("invalid config value", "problem", p)
		}
		cfg = storage.CorrectConfig(cfg, backends)
	}
	return cfg
}

// Run opens a window and plays src until the window is closed. src is
// closed before Run returns.
func Run(src player.Source, opts Options) error {
	log := logging.Or(opts.Logger)

	cfg := opts.Config
	if cfg == nil {
		cfg = loadConfig(log)
	}
	if opts.Backend != "" {
		cfg.Video.Backend = opts.Backend
	}
	settings := storage.NewGameSettings(cfg.Video)

	ctx := display.NewContext(display.Options{
		LimitedColor:     cfg.Video.LimitedColor,
		TVOutput:         opts.TVOutput,
		FullscreenOnPlay: opts.Fullscreen || cfg.Window.Fullscreen,
		Logger:           log,
	})

	rm := rendermanager.New(rendermanager.Options{
		Context:   ctx,
		Messenger: ctx,
		Settings:  settings,
		Logger:    log,
	})
	stats := processinfo.NewCache()
	video := rendermanager.NewVideo(rm, processinfo.New(stats), log)

	p := player.New(src, video, player.Options{Loop: opts.Loop, Logger: log})

	title := opts.Title
	if title == "" {
		title = "retrovideo"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowSizeLimits(320, 240, -1, -1)
	ebiten.SetFullscreen(opts.Fullscreen || cfg.Window.Fullscreen)

	g := newGame(ctx, rm, p, settings, stats, log)
	g.cfg = cfg

	if err := p.Start(); err != nil {
		p.Stop()
		video.Close()
		return fmt.Errorf("failed to start playback: %w", err)
	}

	backend := ""
	if b := rm.Backend(); b != nil {
		backend = b.Name()
	}
	log.Info("starting viewer", "backend", backend, "config", cfg.Video.Backend)

	err := ebiten.RunGameWithOptions(g, display.RunOptions(backend))

	if stopErr := p.Stop(); stopErr != nil {
		log.Warn("failed to close source", "error", stopErr)
	}
	video.Close()

	if err == nil {
		err = p.Err()
	}
	return err
}

// RunCore loads a ROM and plays an emulator core's video output. The
// regionStr parameter accepts "auto", "ntsc", or "pal".
func RunCore(factory emucore.CoreFactory, romPath, regionStr string, coreOptions map[string]string, opts Options) error {
	info := factory.SystemInfo()

	romData, _, err := romloader.Load(romPath, info.Extensions)
	if err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}

	region, err := parseRegion(regionStr, factory, romData)
	if err != nil {
		return err
	}

	emu, err := factory.CreateEmulator(romData, region)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}
	for key, value := range coreOptions {
		emu.SetOption(key, value)
	}

	if opts.Title == "" {
		opts.Title = info.CoreName
	}
	return Run(player.NewEmulatorSource(emu, info), opts)
}

// parseRegion converts a region string to emucore.Region.
func parseRegion(regionStr string, factory emucore.CoreFactory, romData []byte) (emucore.Region, error) {
	switch strings.ToLower(regionStr) {
	case "auto":
		region, _ := factory.DetectRegion(romData)
		return region, nil
	case "ntsc":
		return emucore.RegionNTSC, nil
	case "pal":
		return emucore.RegionPAL, nil
	default:
		return 0, fmt.Errorf("unknown region %q: use auto, ntsc, or pal", regionStr)
	}
}
