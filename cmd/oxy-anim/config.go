package main

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"gopkg.in/ini.v1"
)

// PlaybackConfig controls how clips are turned into playback nodes.
type PlaybackConfig struct {
	// Clips names the clips to play. One clip builds a sequence player; more build a state
	// machine that cycles through them. Empty plays the asset's first clip.
	Clips       []string
	PlayRate    float32
	Looping     bool
	Interpolate bool
	// BlendTime is the crossfade duration between cycled states in seconds.
	BlendTime float32
	// CycleTime is how long each cycled state plays before the next is requested.
	CycleTime float32
}

// DriverConfig controls the tick loop.
type DriverConfig struct {
	TickRate float64
	Workers  int
	// Frames stops the driver after this many ticks; 0 runs until interrupted.
	Frames  int
	Profile bool
	Quiet   bool
}

// InspectorConfig controls the websocket pose stream.
type InspectorConfig struct {
	// Addr is the listen address; empty disables the inspector.
	Addr string
	Path string
	// Space is the space streamed bones are expressed in.
	Space model.PoseSpace
}

// LoaderConfig controls asset import.
type LoaderConfig struct {
	Asset     string
	FrameRate float32
	Skin      int
	Watch     bool
}

// Config is the full command configuration.
type Config struct {
	Playback  PlaybackConfig
	Driver    DriverConfig
	Inspector InspectorConfig
	Loader    LoaderConfig
	LogLevel  string
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Playback: PlaybackConfig{
			PlayRate:    1,
			Looping:     true,
			Interpolate: true,
			BlendTime:   0.25,
			CycleTime:   2,
		},
		Driver: DriverConfig{
			TickRate: 60,
		},
		Inspector: InspectorConfig{
			Path: "/ws",
		},
		Loader: LoaderConfig{
			FrameRate: 30,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads an INI file on top of DefaultConfig. An empty path returns the defaults.
// Values that fail to parse keep their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	options := ini.LoadOptions{
		InsensitiveSections:     true,
		InsensitiveKeys:         true,
		SkipUnrecognizableLines: true,
	}
	f, err := ini.LoadSources(options, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	root := f.Section(ini.DEFAULT_SECTION)
	cfg.LogLevel = strings.ToLower(root.Key("log_level").MustString(cfg.LogLevel))

	pb := f.Section("playback")
	if clips := pb.Key("clips").Strings(","); len(clips) > 0 {
		cfg.Playback.Clips = clips
	}
	cfg.Playback.PlayRate = float32(pb.Key("play_rate").MustFloat64(float64(cfg.Playback.PlayRate)))
	cfg.Playback.Looping = pb.Key("looping").MustBool(cfg.Playback.Looping)
	cfg.Playback.Interpolate = pb.Key("interpolate").MustBool(cfg.Playback.Interpolate)
	cfg.Playback.BlendTime = float32(pb.Key("blend_time").MustFloat64(float64(cfg.Playback.BlendTime)))
	cfg.Playback.CycleTime = float32(pb.Key("cycle_time").MustFloat64(float64(cfg.Playback.CycleTime)))

	dr := f.Section("driver")
	cfg.Driver.TickRate = dr.Key("tick_rate").MustFloat64(cfg.Driver.TickRate)
	cfg.Driver.Workers = dr.Key("workers").MustInt(cfg.Driver.Workers)
	cfg.Driver.Frames = dr.Key("frames").MustInt(cfg.Driver.Frames)
	cfg.Driver.Profile = dr.Key("profile").MustBool(cfg.Driver.Profile)
	cfg.Driver.Quiet = dr.Key("quiet").MustBool(cfg.Driver.Quiet)

	in := f.Section("inspector")
	cfg.Inspector.Addr = in.Key("addr").MustString(cfg.Inspector.Addr)
	cfg.Inspector.Path = in.Key("path").MustString(cfg.Inspector.Path)
	if key := in.Key("space"); key.String() != "" {
		space, err := model.ParsePoseSpace(key.String())
		if err != nil {
			return cfg, fmt.Errorf("config %s: [inspector] space: %w", path, err)
		}
		cfg.Inspector.Space = space
	}

	ld := f.Section("loader")
	cfg.Loader.Asset = ld.Key("asset").MustString(cfg.Loader.Asset)
	cfg.Loader.FrameRate = float32(ld.Key("frame_rate").MustFloat64(float64(cfg.Loader.FrameRate)))
	cfg.Loader.Skin = ld.Key("skin").MustInt(cfg.Loader.Skin)
	cfg.Loader.Watch = ld.Key("watch").MustBool(cfg.Loader.Watch)

	return cfg, nil
}
