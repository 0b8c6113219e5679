package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if JURYBOX_CONFIG is set
//  3. env (prefix JURYBOX_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("JURYBOX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: JURYBOX_ADDR, JURYBOX_DATA_DIR, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("JURYBOX_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "jurybox_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	switch {
	case cfg.Addr == "":
		return nil, errors.New("addr must not be empty")
	case cfg.LockTimeoutSeconds <= 0:
		return nil, errors.New("lock_timeout_seconds must be positive")
	case cfg.EventConfigPath == "":
		return nil, errors.New("event_config_path must not be empty")
	}
	return &cfg, nil
}
