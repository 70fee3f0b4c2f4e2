package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_loadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecbench.toml")
	content := `
vectorSize = 2048

[log]
level = "debug"

[bench]
rows = 4096
workers = 2
nullRatio = 0.25

[scan]
path = "a.parquet"
format = "parquet"

[storage]
memoryLimit = 1048576
tempDir = "/tmp/vec"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.VectorSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4096, cfg.Bench.Rows)
	assert.Equal(t, 2, cfg.Bench.Workers)
	assert.Equal(t, 0.25, cfg.Bench.NullRatio)
	//default kept
	assert.Equal(t, int64(1), cfg.Bench.Seed)
	assert.Equal(t, "parquet", cfg.Scan.Format)
	assert.Equal(t, ",", cfg.Scan.Delimiter)
	assert.Equal(t, int64(1<<20), cfg.Storage.MemoryLimit)
	assert.Equal(t, "/tmp/vec", cfg.Storage.TempDir)
}

func Test_configValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
		ok     bool
	}{
		{"default", func(cfg *Config) {}, true},
		{"not power of two", func(cfg *Config) { cfg.VectorSize = 1000 }, false},
		{"too small", func(cfg *Config) { cfg.VectorSize = 32 }, false},
		{"no workers", func(cfg *Config) { cfg.Bench.Workers = 0 }, false},
		{"null ratio", func(cfg *Config) { cfg.Bench.NullRatio = 1.5 }, false},
		{"format", func(cfg *Config) { cfg.Scan.Format = "json" }, false},
		{"memory limit", func(cfg *Config) { cfg.Storage.MemoryLimit = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			}
		})
	}
}

func Test_loadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}

func Test_vectorSize(t *testing.T) {
	defer SetVectorSize(DefaultVectorSize)
	assert.Equal(t, DefaultVectorSize, VectorSize())

	SetVectorSize(2048)
	assert.Equal(t, 2048, VectorSize())
	bm := &Bitmap{}
	bm.SetInvalid(1)
	assert.Equal(t, EntryCount(2048), len(bm.Bits))

	assert.Panics(t, func() { SetVectorSize(100) })
	assert.Panics(t, func() { SetVectorSize(32) })
	assert.Equal(t, 2048, VectorSize())
}
