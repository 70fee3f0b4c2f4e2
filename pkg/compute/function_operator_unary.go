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

package compute

import (
	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/util"
)

// UnaryOp never touches the validity of the result.
type UnaryOp[T any, R any] func(input *T, result *R)

// UnaryFunc may set row idx of mask invalid.
type UnaryFunc[T any, R any] func(input *T, result *R, mask *util.Bitmap, idx int)

type UnaryWrapper[T any, R any] interface {
	operation(input *T, result *R, mask *util.Bitmap, idx int)

	addsNulls() bool
}

type UnaryOperatorWrapper[T any, R any] struct {
	op UnaryOp[T, R]
}

func (wrapper *UnaryOperatorWrapper[T, R]) operation(
	input *T,
	result *R,
	mask *util.Bitmap,
	idx int,
) {
	wrapper.op(input, result)
}

func (wrapper *UnaryOperatorWrapper[T, R]) addsNulls() bool {
	return false
}

type UnaryLambdaWrapperWithNulls[T any, R any] struct {
	fun UnaryFunc[T, R]
}

func (wrapper *UnaryLambdaWrapperWithNulls[T, R]) operation(
	input *T,
	result *R,
	mask *util.Bitmap,
	idx int,
) {
	wrapper.fun(input, result, mask, idx)
}

func (wrapper *UnaryLambdaWrapperWithNulls[T, R]) addsNulls() bool {
	return true
}

// UnaryExecute computes result[i] = op(input[i]) for the first count
// rows. Null rows stay null.
func UnaryExecute[T any, R any](
	input, result *chunk.Vector,
	count int,
	op UnaryOp[T, R],
) {
	unaryExecSwitch[T, R](input, result, count, &UnaryOperatorWrapper[T, R]{op: op})
}

// UnaryExecuteWithNulls is UnaryExecute for operations that may turn a
// valid row null.
func UnaryExecuteWithNulls[T any, R any](
	input, result *chunk.Vector,
	count int,
	fun UnaryFunc[T, R],
) {
	unaryExecSwitch[T, R](input, result, count, &UnaryLambdaWrapperWithNulls[T, R]{fun: fun})
}

func UnaryFunction[T any, R any](op UnaryOp[T, R]) ScalarFunc {
	return func(args []*chunk.Vector, result *chunk.Vector, count int) {
		util.AssertFunc(len(args) == 1)
		UnaryExecute[T, R](args[0], result, count, op)
	}
}

func UnaryFunctionWithNulls[T any, R any](fun UnaryFunc[T, R]) ScalarFunc {
	return func(args []*chunk.Vector, result *chunk.Vector, count int) {
		util.AssertFunc(len(args) == 1)
		UnaryExecuteWithNulls[T, R](args[0], result, count, fun)
	}
}

func unaryExecSwitch[T any, R any](
	input, result *chunk.Vector,
	count int,
	wrapper UnaryWrapper[T, R],
) {
	defer result.DebugVerify(count)
	switch input.PhyFormat() {
	case chunk.PF_CONST:
		result.SetPhyFormat(chunk.PF_CONST)
		result.Mask.Reset()
		if chunk.IsNullInPhyFormatConst(input) {
			chunk.SetNullInPhyFormatConst(result, true)
			return
		}
		inSlice := chunk.GetSliceInPhyFormatConst[T](input)
		resSlice := chunk.GetSliceInPhyFormatConst[R](result)
		wrapper.operation(&inSlice[0], &resSlice[0], chunk.GetMaskInPhyFormatConst(result), 0)
	case chunk.PF_FLAT:
		result.SetPhyFormat(chunk.PF_FLAT)
		inSlice := chunk.GetSliceInPhyFormatFlat[T](input)
		resSlice := chunk.GetSliceInPhyFormatFlat[R](result)
		unaryExecFlat[T, R](
			inSlice,
			resSlice,
			count,
			chunk.GetMaskInPhyFormatFlat(input),
			chunk.GetMaskInPhyFormatFlat(result),
			wrapper,
		)
	default:
		unaryExecGeneric[T, R](input, result, count, wrapper)
	}
}

func unaryExecFlat[T any, R any](
	inSlice []T,
	resSlice []R,
	count int,
	mask *util.Bitmap,
	resMask *util.Bitmap,
	wrapper UnaryWrapper[T, R],
) {
	if mask.AllValid() {
		resMask.Reset()
		for i := 0; i < count; i++ {
			wrapper.operation(&inSlice[i], &resSlice[i], resMask, i)
		}
		return
	}
	if wrapper.addsNulls() {
		resMask.CopyFrom(mask, count)
	} else {
		resMask.ShareWith(mask)
	}
	baseIdx := 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		ent := mask.GetEntry(uint64(eIdx))
		next := min(baseIdx+util.BitsPerEntry, count)
		if util.AllValidInEntry(ent) {
			for ; baseIdx < next; baseIdx++ {
				wrapper.operation(&inSlice[baseIdx], &resSlice[baseIdx], resMask, baseIdx)
			}
		} else if util.NoneValidInEntry(ent) {
			baseIdx = next
		} else {
			start := baseIdx
			for ; baseIdx < next; baseIdx++ {
				if util.RowIsValidInEntry(ent, uint64(baseIdx-start)) {
					wrapper.operation(&inSlice[baseIdx], &resSlice[baseIdx], resMask, baseIdx)
				}
			}
		}
	}
}

func unaryExecGeneric[T any, R any](
	input, result *chunk.Vector,
	count int,
	wrapper UnaryWrapper[T, R],
) {
	var uf chunk.UnifiedFormat
	input.ToUnifiedFormat(count, &uf)
	result.SetPhyFormat(chunk.PF_FLAT)
	inSlice := chunk.GetSliceInPhyFormatUnifiedFormat[T](&uf)
	resSlice := chunk.GetSliceInPhyFormatFlat[R](result)
	resMask := chunk.GetMaskInPhyFormatFlat(result)
	resMask.Reset()
	unaryExecLoop[T, R](inSlice, resSlice, count, uf.Sel, uf.Mask, resMask, wrapper)
}

func unaryExecLoop[T any, R any](
	inSlice []T,
	resSlice []R,
	count int,
	sel *chunk.SelectVector,
	mask *util.Bitmap,
	resMask *util.Bitmap,
	wrapper UnaryWrapper[T, R],
) {
	if mask.AllValid() {
		for i := 0; i < count; i++ {
			idx := sel.GetIndex(i)
			wrapper.operation(&inSlice[idx], &resSlice[i], resMask, i)
		}
		return
	}
	resMask.Init(max(count, util.VectorSize()))
	for i := 0; i < count; i++ {
		idx := sel.GetIndex(i)
		if mask.RowIsValid(uint64(idx)) {
			wrapper.operation(&inSlice[idx], &resSlice[i], resMask, i)
		} else {
			resMask.SetInvalid(uint64(i))
		}
	}
}
