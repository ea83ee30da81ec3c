// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("Overrides", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(`
[packaging]
max_batch_vertices = 300
min_indexed_run = 12

[persist]
compression = "lz4"
`))
		require.NoError(t, err)
		assert.Equal(t, 300, cfg.Packaging.MaxBatchVertices)
		assert.Equal(t, 12, cfg.Packaging.MinIndexedRun)
		assert.Equal(t, "lz4", cfg.Persist.Compression)
		// untouched sections keep their defaults
		assert.Equal(t, DefaultConfig().Playback, cfg.Playback)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("[packaging]\nbogus = 1\n"))
		require.Error(t, err)
	})

	t.Run("InvalidValues", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader(`
[packaging]
max_batch_vertices = 2

[persist]
compression = "brotli"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_batch_vertices")
		assert.Contains(t, err.Error(), "compression")
	})
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metafile.toml")
	require.NoError(t, os.WriteFile(path, []byte("[playback]\nfallback_buffer_vertices = 60\n"), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Playback.FallbackBufferVertices)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
