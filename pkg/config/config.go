// Package config loads marshaller settings from TOML or YAML files.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/simmsg"
	"github.com/rawbytedev/simmsg/internal/logging"
)

const DefaultCapacity = 1024

// Config is the on-disk form of a marshaller setup.
type Config struct {
	Capacity int             `toml:"capacity" yaml:"capacity"`
	Outgoing DirectionConfig `toml:"outgoing" yaml:"outgoing"`
	Incoming DirectionConfig `toml:"incoming" yaml:"incoming"`
	Log      LogConfig       `toml:"log" yaml:"log"`
}

// DirectionConfig selects the data model and byte order of one direction.
// IntWidth and LongWidth, when set, override the named profile.
type DirectionConfig struct {
	Profile   string `toml:"profile" yaml:"profile"`
	ByteOrder string `toml:"byte_order" yaml:"byte_order"`
	IntWidth  int    `toml:"int_width" yaml:"int_width"`
	LongWidth int    `toml:"long_width" yaml:"long_width"`
}

type LogConfig struct {
	Level   string `toml:"level" yaml:"level"`
	NoColor bool   `toml:"no_color" yaml:"no_color"`
}

func Default() Config {
	return Config{
		Capacity: DefaultCapacity,
		Outgoing: DirectionConfig{Profile: "native", ByteOrder: "native"},
		Incoming: DirectionConfig{Profile: "native", ByteOrder: "native"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default. The format follows the extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config load failed (%s): unsupported extension", path)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Capacity <= 0 {
		return fmt.Errorf("config capacity must be positive, got %d", cfg.Capacity)
	}
	if _, err := cfg.Outgoing.resolve(); err != nil {
		return fmt.Errorf("outgoing invalid: %w", err)
	}
	if _, err := cfg.Incoming.resolve(); err != nil {
		return fmt.Errorf("incoming invalid: %w", err)
	}
	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log level %q is not one of trace, debug, info, warn, error, off", cfg.Log.Level)
		}
	}
	return nil
}

type resolved struct {
	profile simmsg.Profile
	order   simmsg.ByteOrder
}

func (d DirectionConfig) resolve() (resolved, error) {
	name := d.Profile
	if strings.TrimSpace(name) == "" {
		name = "native"
	}
	p, err := simmsg.ProfileByName(name)
	if err != nil {
		return resolved{}, err
	}
	if d.IntWidth < 0 || d.LongWidth < 0 {
		return resolved{}, fmt.Errorf("widths must not be negative")
	}
	if d.IntWidth > 0 || d.LongWidth > 0 {
		intW, longW := p.Int, p.Long
		if d.IntWidth > 0 {
			intW = d.IntWidth
		}
		if d.LongWidth > 0 {
			longW = d.LongWidth
		}
		p = simmsg.CustomProfile(intW, longW)
	}
	order, err := simmsg.ParseByteOrder(d.ByteOrder)
	if err != nil {
		return resolved{}, err
	}
	return resolved{profile: p, order: order}, nil
}

// Options converts the configuration into marshaller options. The logger
// is left for the caller to attach.
func (cfg Config) Options() (simmsg.Options, error) {
	out, err := cfg.Outgoing.resolve()
	if err != nil {
		return simmsg.Options{}, fmt.Errorf("outgoing invalid: %w", err)
	}
	in, err := cfg.Incoming.resolve()
	if err != nil {
		return simmsg.Options{}, fmt.Errorf("incoming invalid: %w", err)
	}
	return simmsg.Options{
		OutgoingProfile: out.profile,
		IncomingProfile: in.profile,
		OutgoingOrder:   out.order,
		IncomingOrder:   in.order,
		Capacity:        cfg.Capacity,
	}, nil
}
