// Command oxy-anim plays the animations of a glTF asset on the animation driver and prints the root bone
// of every evaluated frame.
//
// Usage:
//
//	oxy-anim -asset fox.glb -clips Survey,Walk,Run -frames 300
//	oxy-anim -config anim.ini -inspect :8080 -watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "oxy-anim:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	a := newApp(cfg, stdout, logger)
	if err := a.load(false); err != nil {
		return err
	}

	if a.hub != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Inspector.Path, a.hub)
		srv := &http.Server{
			Addr:              cfg.Inspector.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("inspector server stopped", "error", err)
			}
		}()
		defer srv.Close()
		defer a.hub.Close()
		logger.Info("inspector listening", "addr", cfg.Inspector.Addr, "path", cfg.Inspector.Path)
	}

	if cfg.Loader.Watch {
		stop, err := watchAsset(cfg.Loader.Asset, watchDebounce, logger, func() {
			if err := a.load(true); err != nil {
				logger.Warn("reload failed", "asset", cfg.Loader.Asset, "error", err)
			}
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		<-ctx.Done()
		a.driver.Quit()
	}()

	a.driver.Run()
	return nil
}

// parseArgs reads the optional config file and applies the flags that were set on top of it.
func parseArgs(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("oxy-anim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to an INI configuration file")
	asset := fs.String("asset", "", "path to a .gltf or .glb asset")
	clips := fs.String("clips", "", "comma separated clip names; several cycle through a state machine")
	rate := fs.Float64("rate", 1, "play rate")
	loop := fs.Bool("loop", true, "loop clips")
	blendTime := fs.Float64("blend", 0.25, "crossfade time between cycled clips in seconds")
	cycle := fs.Float64("cycle", 2, "seconds each cycled clip plays before the next")
	fps := fs.Float64("fps", 60, "driver tick rate")
	workers := fs.Int("workers", 0, "animator worker count (0 uses the CPU count)")
	frames := fs.Int("frames", 0, "stop after this many frames (0 runs until interrupted)")
	quiet := fs.Bool("quiet", false, "do not print frames")
	profile := fs.Bool("profile", false, "log profiler statistics")
	inspect := fs.String("inspect", "", "serve the websocket pose inspector on this address")
	inspectSpace := fs.String("inspect-space", "local", "space of streamed bones (local, component)")
	watch := fs.Bool("watch", false, "reload the asset when it changes on disk")
	sampleRate := fs.Float64("sample-rate", 30, "frame rate glTF curves are resampled at")
	skin := fs.Int("skin", 0, "index of the glTF skin to use")
	level := fs.String("log-level", "info", "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return cfg, err
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "asset":
			cfg.Loader.Asset = *asset
		case "clips":
			cfg.Playback.Clips = splitList(*clips)
		case "rate":
			cfg.Playback.PlayRate = float32(*rate)
		case "loop":
			cfg.Playback.Looping = *loop
		case "blend":
			cfg.Playback.BlendTime = float32(*blendTime)
		case "cycle":
			cfg.Playback.CycleTime = float32(*cycle)
		case "fps":
			cfg.Driver.TickRate = *fps
		case "workers":
			cfg.Driver.Workers = *workers
		case "frames":
			cfg.Driver.Frames = *frames
		case "quiet":
			cfg.Driver.Quiet = *quiet
		case "profile":
			cfg.Driver.Profile = *profile
		case "inspect":
			cfg.Inspector.Addr = *inspect
		case "inspect-space":
			space, err := model.ParsePoseSpace(*inspectSpace)
			if err != nil {
				visitErr = err
				return
			}
			cfg.Inspector.Space = space
		case "watch":
			cfg.Loader.Watch = *watch
		case "sample-rate":
			cfg.Loader.FrameRate = float32(*sampleRate)
		case "skin":
			cfg.Loader.Skin = *skin
		case "log-level":
			cfg.LogLevel = strings.ToLower(*level)
		}
	})
	if visitErr != nil {
		return cfg, visitErr
	}

	if cfg.Loader.Asset == "" {
		if fs.NArg() > 0 {
			cfg.Loader.Asset = fs.Arg(0)
		} else {
			return cfg, errors.New("no asset given; use -asset or set asset in the [loader] section")
		}
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
