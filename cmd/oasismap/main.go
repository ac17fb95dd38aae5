package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"oasis-map/internal/commands"
	"oasis-map/internal/config"
	"oasis-map/internal/graphics"
	"oasis-map/internal/logger"
	"oasis-map/internal/mapgen"
	"oasis-map/internal/persist"
	"oasis-map/internal/remote"
	"oasis-map/internal/scene"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file (.yaml, .toml or .json)")
	envPath := flag.String("env", ".env", "dotenv file with OASIS_* overrides")
	mode := flag.String("mode", "", "start in map or edit mode (overrides config)")
	flag.Parse()

	if err := run(*configPath, *envPath, *mode); err != nil {
		fmt.Fprintln(os.Stderr, "oasismap:", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, modeFlag string) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyEnv(cfg)
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	mode, err := scene.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	gen, err := cfg.Generator()
	if err != nil {
		return err
	}
	spec, err := cfg.AnchorSpec()
	if err != nil {
		return err
	}

	lines, err := logger.New(cfg.LogFile, 0)
	if err != nil {
		return err
	}
	defer lines.Close()
	var level slog.LevelVar
	level.Set(logger.ParseLevel(cfg.LogLevel))
	log := lines.Slog(&level, os.Stderr)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cache, err := persist.OpenDir(cfg.CacheDir, log)
	if err != nil {
		return err
	}
	saver := persist.NewDebouncer(cache, persist.DefaultDelay, log)
	defer saver.Close()

	client, err := remote.New(cfg.RemoteURL, nil, log)
	if err != nil {
		return err
	}

	s := scene.New(scene.Options{
		Mode:      mode,
		Generator: gen,
		Cache:     cache.Load(),
		Saver:     saver,
		Source:    client,
		Remote:    client,
		Router:    &router{cfg: cfg, log: log},
		Bounds:    cfg.Camera.Bounds,
		Step:      cfg.Camera.Step,
		Duration:  cfg.Camera.Duration,
		Rig:       cfg.Rig(),
		Log:       log,
	})
	defer s.Unmount()

	reg := commands.NewRegistry()
	commands.RegisterScene(ctx, reg, s, lines.Log)
	app := graphics.NewApp(ctx, s, graphics.NewConsole(lines, reg), graphics.Assets{
		Background: cfg.Background.Model,
		Marker:     cfg.Markers.Model,
		Anchor:     spec,
		Terrain:    mapgen.DefaultOptions(),
		Grid:       cfg.Debug.GridVisible,
	}, log)
	app.HUD.ShowFPS = cfg.Debug.ShowFPS
	app.HUD.ShowMemAlloc = cfg.Debug.ShowMemAlloc

	// The first Refresh reports an unreachable server; Watch refreshes
	// again on every (re)connect.
	s.Refresh(ctx)
	go client.Watch(ctx, func() { s.Refresh(ctx) })

	if err := config.Watch(ctx, configPath, func(c config.Config, err error) {
		if err != nil {
			log.Warn("config reload skipped", "err", err)
			return
		}
		s.Post(func() { reload(app, &level, c, log) })
	}); err != nil {
		log.Warn("config hot reload disabled", "err", err)
	}

	log.Info("oasismap: starting", "remote", cfg.RemoteURL, "mode", mode, "cache", cfg.CacheDir)
	graphics.Run("Oasis Map", app)
	return nil
}

// reload applies the settings that can change while running. Travel
// bounds and layout policy stay fixed for the mount.
func reload(app *graphics.App, level *slog.LevelVar, c config.Config, log *slog.Logger) {
	level.Set(logger.ParseLevel(c.LogLevel))
	app.HUD.ShowFPS = c.Debug.ShowFPS
	app.HUD.ShowMemAlloc = c.Debug.ShowMemAlloc
	if app.World != nil {
		app.World.GridVisible = c.Debug.GridVisible
	}
	spec, err := c.AnchorSpec()
	if err != nil {
		log.Warn("config reload: background", "err", err)
		return
	}
	app.Reanchor(spec)
	log.Info("config reloaded")
}
