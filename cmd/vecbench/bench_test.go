package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/util"
)

func benchTestConfig(t *testing.T) *util.Config {
	cfg := util.DefaultConfig()
	cfg.Bench.Rows = 3000
	cfg.Bench.Workers = 3
	cfg.Bench.NullRatio = 0.2
	cfg.Storage.TempDir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func Test_runBench(t *testing.T) {
	cfg := benchTestConfig(t)
	res, err := RunBench(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 3000, res.Rows)
	assert.Equal(t, int64(3000), res.CountStar.I64)
	assert.LessOrEqual(t, res.Selected, 3000)
	assert.Greater(t, res.Selected, 0)
	assert.False(t, res.Sum.IsNull)
	assert.Equal(t, 0, res.Spilled)

	//same seed, same answer, whatever the worker count
	cfg.Bench.Workers = 1
	again, err := RunBench(context.Background(), cfg, true)
	require.NoError(t, err)
	assert.True(t, res.Sum.Equal(again.Sum))
	assert.True(t, res.Max.Equal(again.Max))
	assert.Equal(t, res.Selected, again.Selected)
	assert.Equal(t, 3000, again.Spilled)

	var out bytes.Buffer
	require.NoError(t, res.Print(&out))
	assert.Contains(t, out.String(), "count(*)\t3000")
}

func Test_runBenchWideVectors(t *testing.T) {
	cfg := benchTestConfig(t)
	cfg.VectorSize = 2048
	cfg.Bench.Rows = 5000
	defer util.SetVectorSize(util.DefaultVectorSize)
	res, err := RunBench(context.Background(), cfg, true)
	require.NoError(t, err)
	assert.Equal(t, 2048, util.VectorSize())
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, int64(5000), res.CountStar.I64)
	assert.Equal(t, 5000, res.Spilled)
}

func Test_runBenchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunBench(ctx, benchTestConfig(t), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_runScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,a\n2,b\n3,c\n"), 0644))

	cfg := util.DefaultConfig()
	cfg.VectorSize = 64
	cfg.Scan.Path = path
	cfg.Scan.PrintResult = true
	var out bytes.Buffer
	rows, err := RunScan(cfg, "integer,varchar", true, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Contains(t, out.String(), "chunk card=3")
	assert.True(t, strings.HasSuffix(out.String(), "1\ta\n2\tb\n3\tc\n"))

	cfg.Scan.MaxRows = 2
	out.Reset()
	rows, err = RunScan(cfg, "integer,varchar", false, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "1\ta\n2\tb\n", out.String())

	_, err = RunScan(cfg, "integer,blob", false, &out)
	assert.Error(t, err)
}

func Test_runScanSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,a\n2,\n3,c\n4,d\n5,e\n"), 0644))

	cfg := util.DefaultConfig()
	cfg.VectorSize = 64
	cfg.Scan.Path = path
	cfg.Scan.Header = false
	cfg.Scan.MaxRows = 0
	cfg.Scan.SavePath = filepath.Join(dir, "t.bin")
	var out bytes.Buffer
	rows, err := RunScan(cfg, "integer,varchar", false, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, rows)

	deserial, err := util.NewFileDeserialize(cfg.Scan.SavePath)
	require.NoError(t, err)
	defer deserial.Close()
	saved := &chunk.Chunk{}
	require.NoError(t, saved.Deserialize(deserial))
	require.Equal(t, 5, saved.Card())
	assert.Equal(t, int64(3), saved.Data[0].GetValue(2).I64)
	assert.Equal(t, "", saved.Data[1].GetValue(1).Str)
	assert.Equal(t, "e", saved.Data[1].GetValue(4).Str)

	next := &chunk.Chunk{}
	require.NoError(t, next.Deserialize(deserial))
	assert.Equal(t, 0, next.Card())
}
