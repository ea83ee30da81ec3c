// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the tuning constants of the writer, the player and the
// persistence layer. The zero value is not valid; start from DefaultConfig.
type Config struct {
	Packaging PackagingConfig `toml:"packaging"`
	Playback  PlaybackConfig  `toml:"playback"`
	Persist   PersistConfig   `toml:"persist"`
}

// PackagingConfig tunes the writer's batching policy.
type PackagingConfig struct {
	// MaxBatchVertices is the number of elements after which an open batch
	// is flushed.
	MaxBatchVertices int `toml:"max_batch_vertices" validate:"gte=6"`

	// MinIndexedRun is the index count below which an indexed batch is
	// expanded into plain vertex arrays at flush. Zero disables expansion.
	MinIndexedRun int `toml:"min_indexed_run" validate:"gte=0"`

	// RetainHighWater is the scratch slice capacity above which batch
	// buffers are dropped after a flush instead of being reused.
	RetainHighWater int `toml:"retain_high_water" validate:"gte=0"`

	// MaxContainerBytes caps the total size of a recorded container.
	// Zero means unlimited.
	MaxContainerBytes int64 `toml:"max_container_bytes" validate:"gte=0"`
}

// PlaybackConfig tunes the interpreter.
type PlaybackConfig struct {
	// FallbackBufferVertices is the capacity of the temporary geometry
	// buffer used when lineweights are emulated in software.
	FallbackBufferVertices int `toml:"fallback_buffer_vertices" validate:"gte=6"`
}

// PersistConfig tunes metafile serialization.
type PersistConfig struct {
	// Compression is one of "none", "zstd", "s2" or "lz4".
	Compression string `toml:"compression" validate:"oneof=none zstd s2 lz4"`
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return Config{
		Packaging: PackagingConfig{
			MaxBatchVertices: 65536,
			MinIndexedRun:    0,
			RetainHighWater:  16384,
		},
		Playback: PlaybackConfig{
			FallbackBufferVertices: 6144,
		},
		Persist: PersistConfig{
			Compression: "zstd",
		},
	}
}

// LoadConfig decodes a TOML document on top of DefaultConfig and validates
// the result. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("metafile: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a TOML configuration file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("metafile: open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks every field against its constraints. All violations are
// reported, joined into one error.
func (c Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("metafile: validate config: %w", err)
	}
	configErrors := make([]error, 0, len(valErrs))
	for _, fe := range valErrs {
		configErrors = append(configErrors, fmt.Errorf("metafile: option %s=%v failed %s",
			fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return errors.Join(configErrors...)
}
