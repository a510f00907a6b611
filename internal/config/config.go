// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads inkboard settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/inkboard/dispatch"
)

// Config holds every setting the CLI understands.
type Config struct {
	HostName       string
	NameHint       string
	Children       int
	Text           string
	Scale          int
	Padding        int
	Gap            int
	Output         string
	HangTimeout    time.Duration
	StartTimeout   time.Duration
	ReapTimeout    time.Duration
	ShutdownPolicy dispatch.ShutdownPolicy
	OTLPEndpoint   string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HostName:       "inkboard-host",
		NameHint:       "text",
		Children:       4,
		Text:           "Helloworld!",
		Scale:          2,
		Padding:        4,
		Gap:            2,
		Output:         "inkboard.png",
		HangTimeout:    dispatch.DefaultHangTimeout,
		StartTimeout:   dispatch.DefaultStartTimeout,
		ReapTimeout:    dispatch.DefaultReapTimeout,
		ShutdownPolicy: dispatch.DrainPending,
	}
}

// fileConfig mirrors Config as it appears on disk. Nil fields keep the
// default.
type fileConfig struct {
	HostName       *string `toml:"host_name" yaml:"host_name"`
	NameHint       *string `toml:"name_hint" yaml:"name_hint"`
	Children       *int    `toml:"children" yaml:"children"`
	Text           *string `toml:"text" yaml:"text"`
	Scale          *int    `toml:"scale" yaml:"scale"`
	Padding        *int    `toml:"padding" yaml:"padding"`
	Gap            *int    `toml:"gap" yaml:"gap"`
	Output         *string `toml:"output" yaml:"output"`
	HangTimeout    *string `toml:"hang_timeout" yaml:"hang_timeout"`
	StartTimeout   *string `toml:"start_timeout" yaml:"start_timeout"`
	ReapTimeout    *string `toml:"reap_timeout" yaml:"reap_timeout"`
	ShutdownPolicy *string `toml:"shutdown_policy" yaml:"shutdown_policy"`
	OTLPEndpoint   *string `toml:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// Load reads path and overlays it onto Default. An empty path returns the
// defaults. The format is chosen by extension: .toml, .yaml or .yml.
// Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, &raw)
	case ".yaml", ".yml":
		err = decodeYAML(data, &raw)
	default:
		err = fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := raw.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, raw *fileConfig) error {
	meta, err := toml.Decode(string(data), raw)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, raw *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (raw fileConfig) apply(cfg *Config) error {
	setString(&cfg.HostName, raw.HostName)
	setString(&cfg.NameHint, raw.NameHint)
	setString(&cfg.Text, raw.Text)
	setString(&cfg.Output, raw.Output)
	setString(&cfg.OTLPEndpoint, raw.OTLPEndpoint)
	setInt(&cfg.Children, raw.Children)
	setInt(&cfg.Scale, raw.Scale)
	setInt(&cfg.Padding, raw.Padding)
	setInt(&cfg.Gap, raw.Gap)

	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"hang_timeout", raw.HangTimeout, &cfg.HangTimeout},
		{"start_timeout", raw.StartTimeout, &cfg.StartTimeout},
		{"reap_timeout", raw.ReapTimeout, &cfg.ReapTimeout},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(*d.src))
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if raw.ShutdownPolicy != nil {
		p, err := ParsePolicy(*raw.ShutdownPolicy)
		if err != nil {
			return err
		}
		cfg.ShutdownPolicy = p
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// ParsePolicy parses "drain" or "drop".
func ParsePolicy(s string) (dispatch.ShutdownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drain":
		return dispatch.DrainPending, nil
	case "drop":
		return dispatch.DropPending, nil
	default:
		return 0, fmt.Errorf("unknown shutdown policy %q (want drain or drop)", s)
	}
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	switch {
	case c.Children < 0:
		return fmt.Errorf("children must be >= 0, got %d", c.Children)
	case c.Scale < 1:
		return fmt.Errorf("scale must be >= 1, got %d", c.Scale)
	case c.Padding < 0:
		return fmt.Errorf("padding must be >= 0, got %d", c.Padding)
	case c.Gap < 0:
		return fmt.Errorf("gap must be >= 0, got %d", c.Gap)
	case c.HangTimeout <= 0:
		return fmt.Errorf("hang_timeout must be positive, got %v", c.HangTimeout)
	case c.StartTimeout <= 0:
		return fmt.Errorf("start_timeout must be positive, got %v", c.StartTimeout)
	case c.ReapTimeout <= 0:
		return fmt.Errorf("reap_timeout must be positive, got %v", c.ReapTimeout)
	}
	return nil
}

// LoopOptions returns the dispatch options implied by c.
func (c Config) LoopOptions() []dispatch.LoopOption {
	return []dispatch.LoopOption{
		dispatch.WithStartTimeout(c.StartTimeout),
		dispatch.WithShutdownPolicy(c.ShutdownPolicy),
	}
}

// RegistryOptions returns the registry options implied by c.
func (c Config) RegistryOptions() []dispatch.RegistryOption {
	return []dispatch.RegistryOption{
		dispatch.WithLoopOptions(c.LoopOptions()...),
		dispatch.WithReapTimeout(c.ReapTimeout),
	}
}
