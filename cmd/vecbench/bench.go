package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/compute"
	"github.com/daviszhen/vec/pkg/storage"
	"github.com/daviszhen/vec/pkg/util"
)

// columns of every bench chunk: a INTEGER, b INTEGER, c DOUBLE
var benchTypes = []common.LType{
	common.IntegerType(),
	common.IntegerType(),
	common.DoubleType(),
}

type benchFuncs struct {
	add       *compute.ScalarFunction
	lt        compute.SelectFunc
	sum       *compute.AggrFunction
	countStar *compute.AggrFunction
	max       *compute.AggrFunction
}

func bindBenchFuncs() (*benchFuncs, error) {
	ints := benchTypes[:2]
	var err error
	funcs := &benchFuncs{}
	if funcs.add, err = compute.BindScalarFunction("add", ints); err != nil {
		return nil, err
	}
	if funcs.lt, err = compute.BindSelectFunction("lt", ints); err != nil {
		return nil, err
	}
	if funcs.sum, err = compute.BindAggrFunction("sum", ints[:1]); err != nil {
		return nil, err
	}
	if funcs.countStar, err = compute.BindAggrFunction("count_star", nil); err != nil {
		return nil, err
	}
	if funcs.max, err = compute.BindAggrFunction("max", benchTypes[2:]); err != nil {
		return nil, err
	}
	return funcs, nil
}

// partial results of one chunk
type benchPartial struct {
	rows      int
	selected  int
	added     *chunk.Vector
	sum       *chunk.Vector
	countStar *chunk.Vector
	max       *chunk.Vector
}

type BenchResult struct {
	Chunks    int
	Rows      int
	Selected  int
	Spilled   int
	Sum       *chunk.Value
	CountStar *chunk.Value
	Max       *chunk.Value
	Elapsed   time.Duration
}

func (res *BenchResult) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"chunks\t%d\nrows\t%d\nselected\t%d\nspilled\t%d\nsum(a)\t%s\ncount(*)\t%s\nmax(c)\t%s\nelapsed\t%s\n",
		res.Chunks, res.Rows, res.Selected, res.Spilled,
		res.Sum, res.CountStar, res.Max, res.Elapsed)
	return err
}

// RunBench fills random chunks and runs them through the executors.
// Each chunk is owned by one goroutine.
func RunBench(ctx context.Context, cfg *util.Config, spill bool) (*BenchResult, error) {
	util.SetVectorSize(cfg.VectorSize)
	funcs, err := bindBenchFuncs()
	if err != nil {
		return nil, err
	}
	var mgr *storage.BufferManager
	if spill {
		mgr = storage.NewBufferManager(cfg.Storage)
		defer mgr.Close()
	}

	start := time.Now()
	vecSize := cfg.VectorSize
	chunkCnt := (cfg.Bench.Rows + vecSize - 1) / vecSize
	partials := make([]*benchPartial, chunkCnt)
	spilled := make([]int, chunkCnt)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Bench.Workers)
	for i := 0; i < chunkCnt; i++ {
		idx := i
		count := min(vecSize, cfg.Bench.Rows-idx*vecSize)
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = util.ConvertPanicError(rec)
				}
			}()
			if err = gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(uint64(cfg.Bench.Seed), uint64(idx)))
			partials[idx], err = benchChunk(funcs, vecSize, count, cfg.Bench.NullRatio, rng)
			if err != nil {
				return err
			}
			if mgr != nil {
				spilled[idx], err = spillRoundTrip(mgr, partials[idx].added, count)
			}
			return err
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, err
	}

	res := &BenchResult{Chunks: chunkCnt}
	data := compute.NewAggrInputData()
	sum := funcs.sum.NewStates(1)
	countStar := funcs.countStar.NewStates(1)
	maxStates := funcs.max.NewStates(1)
	for i, part := range partials {
		res.Rows += part.rows
		res.Selected += part.selected
		res.Spilled += spilled[i]
		funcs.sum.Combine(part.sum, sum, data, 1)
		funcs.countStar.Combine(part.countStar, countStar, data, 1)
		funcs.max.Combine(part.max, maxStates, data, 1)
	}
	res.Sum = finalizeOne(funcs.sum, sum, data)
	res.CountStar = finalizeOne(funcs.countStar, countStar, data)
	res.Max = finalizeOne(funcs.max, maxStates, data)
	res.Elapsed = time.Since(start)
	util.Info("bench done",
		zap.Int("chunks", res.Chunks),
		zap.Int("rows", res.Rows),
		zap.Int("selected", res.Selected),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func benchChunk(
	funcs *benchFuncs,
	cap int,
	count int,
	nullRatio float64,
	rng *rand.Rand,
) (*benchPartial, error) {
	input := &chunk.Chunk{}
	input.Init(benchTypes, cap)
	for _, vec := range input.Data {
		chunk.FillRandom(vec, count, nullRatio, rng)
	}
	input.SetCard(count)

	part := &benchPartial{rows: count}
	part.added = chunk.NewFlatVector(funcs.add.RetType, cap)
	funcs.add.Execute(input.Data[:2], part.added, count)
	if util.DebugMode {
		if err := part.added.Verify(count); err != nil {
			return nil, err
		}
	}

	trueSel := chunk.NewSelectVector(cap)
	part.selected = funcs.lt(input.Data[0], input.Data[1], nil, count, trueSel, nil)

	//max(c) over the rows where a < b
	filtered := &chunk.Chunk{}
	filtered.InitEmpty(benchTypes)
	filtered.SetCap(cap)
	filtered.Slice(input, trueSel, part.selected, 0)

	data := compute.NewAggrInputData()
	part.sum = funcs.sum.NewStates(1)
	funcs.sum.SimpleUpdate(input.Data[:1], data, part.sum, count)
	part.countStar = funcs.countStar.NewStates(1)
	funcs.countStar.SimpleUpdate(nil, data, part.countStar, count)
	part.max = funcs.max.NewStates(1)
	funcs.max.SimpleUpdate(filtered.Data[2:], data, part.max, part.selected)
	return part, nil
}

// spillRoundTrip writes vec through the buffer manager and checks it
// reads back unchanged.
func spillRoundTrip(mgr *storage.BufferManager, vec *chunk.Vector, count int) (int, error) {
	block, err := storage.SpillVector(mgr, vec, count)
	if err != nil {
		return 0, err
	}
	defer mgr.Destroy(block)
	loaded, err := storage.LoadVector(mgr, block, vec.Typ(), count)
	if err != nil {
		return 0, err
	}
	for i := 0; i < count; i++ {
		if !vec.GetValue(i).Equal(loaded.GetValue(i)) {
			return 0, fmt.Errorf("spilled row %d: %v read back as %v",
				i, vec.GetValue(i), loaded.GetValue(i))
		}
	}
	return count, nil
}

func finalizeOne(fun *compute.AggrFunction, states *chunk.Vector, data *compute.AggrInputData) *chunk.Value {
	result := chunk.NewFlatVector(fun.RetType, util.VectorSize())
	fun.Finalize(states, data, result, 1, 0)
	return result.GetValue(0)
}
