// Command tileraster renders a lit mesh with the tile-binning rasterizer
// and writes the result as PNG, BMP or TIFF.
//
// Usage:
//
//	tileraster [-config scene.toml] [-watch] [flags]
//
// Flags override the values of the config file. With -watch the scene is
// re-rendered every time the config file changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/tileraster"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML scene config")
		watch      = flag.Bool("watch", false, "re-render when the config file changes")
		width      = flag.Int("width", 0, "image width")
		height     = flag.Int("height", 0, "image height")
		output     = flag.String("output", "", "output file (.png, .bmp, .tiff)")
		depthOut   = flag.String("depth", "", "depth output file")
		backend    = flag.String("backend", "", "cpu or gpu")
		mesh       = flag.String("mesh", "", "triangle, cube or sphere")
		frames     = flag.Int("frames", 0, "number of animation frames")
		debug      = flag.Bool("debug", false, "read back tile statistics after every draw")
		level      = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()

	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "tileraster",
	})
	logger := slog.New(handler)

	override := func(cfg *Config) {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "width":
				cfg.Width = *width
			case "height":
				cfg.Height = *height
			case "output":
				cfg.Output = *output
			case "depth":
				cfg.DepthOutput = *depthOut
			case "backend":
				cfg.Backend = *backend
			case "mesh":
				cfg.Scene.Mesh = *mesh
			case "frames":
				cfg.Frames = *frames
			case "debug":
				cfg.Debug = *debug
			case "log-level":
				cfg.LogLevel = *level
			}
		})
	}

	run := func() error {
		cfg := DefaultConfig()
		if *configPath != "" {
			var err error
			if cfg, err = LoadConfig(*configPath); err != nil {
				return err
			}
		}
		override(&cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		lvl, _ := log.ParseLevel(cfg.LogLevel)
		handler.SetLevel(lvl)
		tileraster.SetLogger(logger)

		start := time.Now()
		if err := render(&cfg, logger); err != nil {
			return err
		}
		logger.Info("render done",
			"frames", cfg.Frames,
			"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
			"backend", cfg.Backend,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return nil
	}

	if err := run(); err != nil {
		logger.Error("render failed", "error", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}
	if *configPath == "" {
		logger.Error("-watch needs -config")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchConfig(ctx, *configPath, logger, run); err != nil {
		logger.Error("watch failed", "error", err)
		os.Exit(1)
	}
}

// watchConfig calls run after every write to path until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are picked up.
func watchConfig(ctx context.Context, path string, logger *slog.Logger, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watching config", "path", abs)

	// Editors often emit several events per save.
	const settle = 100 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				pending = time.After(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			logger.Info("config changed, re-rendering")
			if err := run(); err != nil {
				logger.Error("render failed", "error", err)
			}
		}
	}
}
