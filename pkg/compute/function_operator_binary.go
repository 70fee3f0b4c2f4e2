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
	"unsafe"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/util"
)

type BinaryOp[T any, S any, R any] func(left *T, right *S, result *R)

type BinaryFunc[T any, S any, R any] func(left *T, right *S, result *R, mask *util.Bitmap, idx int)

// BinaryWrapper adapts an operation to the executor. addsNulls is
// fixed by the wrapper type: a wrapper whose operation can see the
// result mask gets a private copy of it, any other aliases the input
// masks.
type BinaryWrapper[T any, S any, R any] interface {
	operation(left *T, right *S, result *R, mask *util.Bitmap, idx int)

	addsNulls() bool
}

type BinaryStandardOperatorWrapper[T any, S any, R any] struct {
	op BinaryOp[T, S, R]
}

func (wrapper *BinaryStandardOperatorWrapper[T, S, R]) operation(
	left *T, right *S, result *R, mask *util.Bitmap, idx int) {
	wrapper.op(left, right, result)
}

func (wrapper *BinaryStandardOperatorWrapper[T, S, R]) addsNulls() bool {
	return false
}

type BinaryLambdaWrapperWithNulls[T any, S any, R any] struct {
	fun BinaryFunc[T, S, R]
}

func (wrapper *BinaryLambdaWrapperWithNulls[T, S, R]) operation(
	left *T, right *S, result *R, mask *util.Bitmap, idx int) {
	wrapper.fun(left, right, result, mask, idx)
}

func (wrapper *BinaryLambdaWrapperWithNulls[T, S, R]) addsNulls() bool {
	return true
}

// BinaryExecute computes result[i] = op(left[i], right[i]) for the
// first count rows. A row is null if it is null in either input.
func BinaryExecute[T any, S any, R any](
	left, right, result *chunk.Vector,
	count int,
	op BinaryOp[T, S, R],
) {
	binaryExecSwitch[T, S, R](left, right, result, count,
		&BinaryStandardOperatorWrapper[T, S, R]{op: op})
}

// BinaryExecuteWithNulls is BinaryExecute for operations that may turn
// a valid row null through the mask they receive.
func BinaryExecuteWithNulls[T any, S any, R any](
	left, right, result *chunk.Vector,
	count int,
	fun BinaryFunc[T, S, R],
) {
	binaryExecSwitch[T, S, R](left, right, result, count,
		&BinaryLambdaWrapperWithNulls[T, S, R]{fun: fun})
}

func BinaryFunction[T any, S any, R any](op BinaryOp[T, S, R]) ScalarFunc {
	return func(args []*chunk.Vector, result *chunk.Vector, count int) {
		util.AssertFunc(len(args) == 2)
		BinaryExecute[T, S, R](args[0], args[1], result, count, op)
	}
}

func BinaryFunctionWithNulls[T any, S any, R any](fun BinaryFunc[T, S, R]) ScalarFunc {
	return func(args []*chunk.Vector, result *chunk.Vector, count int) {
		util.AssertFunc(len(args) == 2)
		BinaryExecuteWithNulls[T, S, R](args[0], args[1], result, count, fun)
	}
}

func binaryExecSwitch[T any, S any, R any](
	left, right, result *chunk.Vector,
	count int,
	wrapper BinaryWrapper[T, S, R],
) {
	defer result.DebugVerify(count)
	if left.PhyFormat().IsConst() && right.PhyFormat().IsConst() {
		binaryExecConst[T, S, R](left, right, result, wrapper)
	} else if left.PhyFormat().IsFlat() && right.PhyFormat().IsConst() {
		binaryExecFlat[T, S, R](left, right, result, count, wrapper, false, true)
	} else if left.PhyFormat().IsConst() && right.PhyFormat().IsFlat() {
		binaryExecFlat[T, S, R](left, right, result, count, wrapper, true, false)
	} else if left.PhyFormat().IsFlat() && right.PhyFormat().IsFlat() {
		binaryExecFlat[T, S, R](left, right, result, count, wrapper, false, false)
	} else {
		binaryExecGeneric[T, S, R](left, right, result, count, wrapper)
	}
}

func binaryExecConst[T any, S any, R any](
	left, right, result *chunk.Vector,
	wrapper BinaryWrapper[T, S, R],
) {
	result.SetPhyFormat(chunk.PF_CONST)
	result.Mask.Reset()
	if chunk.IsNullInPhyFormatConst(left) ||
		chunk.IsNullInPhyFormatConst(right) {
		chunk.SetNullInPhyFormatConst(result, true)
		return
	}
	lSlice := chunk.GetSliceInPhyFormatConst[T](left)
	rSlice := chunk.GetSliceInPhyFormatConst[S](right)
	resSlice := chunk.GetSliceInPhyFormatConst[R](result)

	wrapper.operation(&lSlice[0], &rSlice[0], &resSlice[0], chunk.GetMaskInPhyFormatConst(result), 0)
}

func binaryExecFlat[T any, S any, R any](
	left, right, result *chunk.Vector,
	count int,
	wrapper BinaryWrapper[T, S, R],
	lconst, rconst bool,
) {
	if lconst && chunk.IsNullInPhyFormatConst(left) ||
		rconst && chunk.IsNullInPhyFormatConst(right) {
		result.SetPhyFormat(chunk.PF_CONST)
		result.Mask.Reset()
		chunk.SetNullInPhyFormatConst(result, true)
		return
	}
	lSlice := chunk.GetSliceInPhyFormatFlat[T](left)
	rSlice := chunk.GetSliceInPhyFormatFlat[S](right)

	result.SetPhyFormat(chunk.PF_FLAT)
	resSlice := chunk.GetSliceInPhyFormatFlat[R](result)
	if !lconst && !rconst {
		resPtr, resLen := rawRange(result, count)
		lPtr, lLen := rawRange(left, count)
		rPtr, rLen := rawRange(right, count)
		util.AssertRestrict(resPtr, resLen, lPtr, lLen)
		util.AssertRestrict(resPtr, resLen, rPtr, rLen)
	}

	resMask := chunk.GetMaskInPhyFormatFlat(result)
	if lconst {
		if wrapper.addsNulls() {
			resMask.CopyFrom(right.Mask, count)
		} else {
			resMask.ShareWith(right.Mask)
		}
	} else if rconst {
		if wrapper.addsNulls() {
			resMask.CopyFrom(left.Mask, count)
		} else {
			resMask.ShareWith(left.Mask)
		}
	} else {
		if wrapper.addsNulls() {
			resMask.CopyFrom(left.Mask, count)
			if resMask.AllValid() {
				resMask.CopyFrom(right.Mask, count)
			} else {
				resMask.Combine(right.Mask, count)
			}
		} else {
			resMask.ShareWith(left.Mask)
			resMask.Combine(right.Mask, count)
		}
	}
	binaryExecFlatLoop[T, S, R](
		lSlice,
		rSlice,
		resSlice,
		count,
		resMask,
		wrapper,
		lconst,
		rconst,
	)
}

func rawRange(vec *chunk.Vector, count int) (unsafe.Pointer, int) {
	if len(vec.Data) == 0 {
		return nil, 0
	}
	sz := vec.Typ().GetInternalType().Size()
	return util.BytesSliceToPointer(vec.Data), min(len(vec.Data), sz*count)
}

// binaryExecFlatLoop walks the rows one validity entry at a time. A
// fully valid entry is computed without per row checks, an empty one
// is skipped.
func binaryExecFlatLoop[T any, S any, R any](
	ldata []T, rdata []S,
	resData []R,
	count int,
	mask *util.Bitmap,
	wrapper BinaryWrapper[T, S, R],
	lconst, rconst bool,
) {
	lidx, ridx := 0, 0
	if mask.AllValid() {
		for i := 0; i < count; i++ {
			if !lconst {
				lidx = i
			}
			if !rconst {
				ridx = i
			}
			wrapper.operation(&ldata[lidx], &rdata[ridx], &resData[i], mask, i)
		}
		return
	}
	baseIdx := 0
	eCnt := util.EntryCount(count)
	for i := 0; i < eCnt; i++ {
		ent := mask.GetEntry(uint64(i))
		next := min(baseIdx+util.BitsPerEntry, count)
		if util.AllValidInEntry(ent) {
			for ; baseIdx < next; baseIdx++ {
				if !lconst {
					lidx = baseIdx
				}
				if !rconst {
					ridx = baseIdx
				}
				wrapper.operation(&ldata[lidx], &rdata[ridx], &resData[baseIdx], mask, baseIdx)
			}
		} else if util.NoneValidInEntry(ent) {
			baseIdx = next
		} else {
			start := baseIdx
			for ; baseIdx < next; baseIdx++ {
				if util.RowIsValidInEntry(ent, uint64(baseIdx-start)) {
					if !lconst {
						lidx = baseIdx
					}
					if !rconst {
						ridx = baseIdx
					}
					wrapper.operation(&ldata[lidx], &rdata[ridx], &resData[baseIdx], mask, baseIdx)
				}
			}
		}
	}
}

func binaryExecGeneric[T any, S any, R any](
	left, right, result *chunk.Vector,
	count int,
	wrapper BinaryWrapper[T, S, R],
) {
	var ldata, rdata chunk.UnifiedFormat
	left.ToUnifiedFormat(count, &ldata)
	right.ToUnifiedFormat(count, &rdata)

	result.SetPhyFormat(chunk.PF_FLAT)
	lSlice := chunk.GetSliceInPhyFormatUnifiedFormat[T](&ldata)
	rSlice := chunk.GetSliceInPhyFormatUnifiedFormat[S](&rdata)
	resSlice := chunk.GetSliceInPhyFormatFlat[R](result)
	resMask := chunk.GetMaskInPhyFormatFlat(result)
	resMask.Reset()
	binaryExecGenericLoop[T, S, R](
		lSlice,
		rSlice,
		resSlice,
		ldata.Sel,
		rdata.Sel,
		count,
		ldata.Mask,
		rdata.Mask,
		resMask,
		wrapper,
	)
}

func binaryExecGenericLoop[T any, S any, R any](
	ldata []T, rdata []S,
	resData []R,
	lsel *chunk.SelectVector,
	rsel *chunk.SelectVector,
	count int,
	lmask *util.Bitmap,
	rmask *util.Bitmap,
	resMask *util.Bitmap,
	wrapper BinaryWrapper[T, S, R],
) {
	if lmask.AllValid() && rmask.AllValid() {
		for i := 0; i < count; i++ {
			lidx := lsel.GetIndex(i)
			ridx := rsel.GetIndex(i)
			wrapper.operation(&ldata[lidx], &rdata[ridx], &resData[i], resMask, i)
		}
		return
	}
	resMask.Init(max(count, util.VectorSize()))
	for i := 0; i < count; i++ {
		lidx := lsel.GetIndex(i)
		ridx := rsel.GetIndex(i)
		if lmask.RowIsValid(uint64(lidx)) && rmask.RowIsValid(uint64(ridx)) {
			wrapper.operation(&ldata[lidx], &rdata[ridx], &resData[i], resMask, i)
		} else {
			resMask.SetInvalid(uint64(i))
		}
	}
}
