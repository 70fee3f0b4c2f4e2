// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package util

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("invalid config")

type LogOptions struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type BenchOptions struct {
	Rows      int     `toml:"rows"`
	Workers   int     `toml:"workers"`
	NullRatio float64 `toml:"nullRatio"`
	Seed      int64   `toml:"seed"`
}

type ScanOptions struct {
	Path        string `toml:"path"`
	Format      string `toml:"format"`
	Delimiter   string `toml:"delimiter"`
	Header      bool   `toml:"header"`
	MaxRows     int    `toml:"maxRows"`
	PrintResult bool   `toml:"printResult"`
	// SavePath receives the chunks in binary form when set.
	SavePath string `toml:"savePath"`
}

type StorageOptions struct {
	MemoryLimit int64  `toml:"memoryLimit"`
	TempDir     string `toml:"tempDir"`
}

type Config struct {
	VectorSize int            `toml:"vectorSize"`
	Log        LogOptions     `toml:"log"`
	Bench      BenchOptions   `toml:"bench"`
	Scan       ScanOptions    `toml:"scan"`
	Storage    StorageOptions `toml:"storage"`
}

func DefaultConfig() *Config {
	return &Config{
		VectorSize: DefaultVectorSize,
		Log: LogOptions{
			Level: "info",
		},
		Bench: BenchOptions{
			Rows:      100 * DefaultVectorSize,
			Workers:   4,
			NullRatio: 0.1,
			Seed:      1,
		},
		Scan: ScanOptions{
			Format:    "csv",
			Delimiter: ",",
			Header:    true,
		},
		Storage: StorageOptions{
			MemoryLimit: 256 << 20,
		},
	}
}

// LoadConfig decodes the toml file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.VectorSize < BitsPerEntry || !IsPowerOfTwo(uint64(cfg.VectorSize)) {
		return fmt.Errorf("%w: vectorSize %d must be a power of two >= %d",
			ErrInvalidConfig, cfg.VectorSize, BitsPerEntry)
	}
	if cfg.Bench.Workers <= 0 {
		return fmt.Errorf("%w: bench.workers %d must be positive",
			ErrInvalidConfig, cfg.Bench.Workers)
	}
	if cfg.Bench.NullRatio < 0 || cfg.Bench.NullRatio > 1 {
		return fmt.Errorf("%w: bench.nullRatio %v out of [0,1]",
			ErrInvalidConfig, cfg.Bench.NullRatio)
	}
	if cfg.Storage.MemoryLimit <= 0 {
		return fmt.Errorf("%w: storage.memoryLimit %d must be positive",
			ErrInvalidConfig, cfg.Storage.MemoryLimit)
	}
	switch cfg.Scan.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("%w: scan.format %q", ErrInvalidConfig, cfg.Scan.Format)
	}
	return nil
}
