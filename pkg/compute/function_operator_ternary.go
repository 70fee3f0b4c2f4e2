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

type TernaryOp[A any, B any, C any, R any] func(*A, *B, *C, *R)

type TernaryFunc[A any, B any, C any, R any] func(a *A, b *B, c *C, result *R, mask *util.Bitmap, idx int)

type TernaryWrapper[A any, B any, C any, R any] interface {
	operation(*A, *B, *C, *R, *util.Bitmap, int)

	addsNulls() bool
}

type TernaryStandardOperatorWrapper[A any, B any, C any, R any] struct {
	op TernaryOp[A, B, C, R]
}

func (wrapper *TernaryStandardOperatorWrapper[A, B, C, R]) operation(
	a *A, b *B, c *C, res *R, _ *util.Bitmap, _ int) {
	wrapper.op(a, b, c, res)
}

func (wrapper *TernaryStandardOperatorWrapper[A, B, C, R]) addsNulls() bool {
	return false
}

type TernaryLambdaWrapperWithNulls[A any, B any, C any, R any] struct {
	fun TernaryFunc[A, B, C, R]
}

func (wrapper *TernaryLambdaWrapperWithNulls[A, B, C, R]) operation(
	a *A, b *B, c *C, res *R, mask *util.Bitmap, idx int) {
	wrapper.fun(a, b, c, res, mask, idx)
}

func (wrapper *TernaryLambdaWrapperWithNulls[A, B, C, R]) addsNulls() bool {
	return true
}

func TernaryExecute[A any, B any, C any, R any](
	a, b, c, result *chunk.Vector,
	count int,
	op TernaryOp[A, B, C, R],
) {
	ternaryExecSwitch[A, B, C, R](a, b, c, result, count,
		&TernaryStandardOperatorWrapper[A, B, C, R]{op: op})
}

func TernaryExecuteWithNulls[A any, B any, C any, R any](
	a, b, c, result *chunk.Vector,
	count int,
	fun TernaryFunc[A, B, C, R],
) {
	ternaryExecSwitch[A, B, C, R](a, b, c, result, count,
		&TernaryLambdaWrapperWithNulls[A, B, C, R]{fun: fun})
}

func TernaryFunction[A any, B any, C any, R any](
	op TernaryOp[A, B, C, R],
) ScalarFunc {
	return func(args []*chunk.Vector, result *chunk.Vector, count int) {
		util.AssertFunc(len(args) == 3)
		TernaryExecute[A, B, C, R](args[0], args[1], args[2], result, count, op)
	}
}

func ternaryExecSwitch[A any, B any, C any, R any](
	a, b, c, res *chunk.Vector,
	count int,
	wrapper TernaryWrapper[A, B, C, R],
) {
	defer res.DebugVerify(count)
	if a.PhyFormat().IsConst() &&
		b.PhyFormat().IsConst() &&
		c.PhyFormat().IsConst() {
		res.SetPhyFormat(chunk.PF_CONST)
		res.Mask.Reset()
		if chunk.IsNullInPhyFormatConst(a) ||
			chunk.IsNullInPhyFormatConst(b) ||
			chunk.IsNullInPhyFormatConst(c) {
			chunk.SetNullInPhyFormatConst(res, true)
			return
		}
		aSlice := chunk.GetSliceInPhyFormatConst[A](a)
		bSlice := chunk.GetSliceInPhyFormatConst[B](b)
		cSlice := chunk.GetSliceInPhyFormatConst[C](c)
		resSlice := chunk.GetSliceInPhyFormatConst[R](res)
		resMask := chunk.GetMaskInPhyFormatConst(res)
		wrapper.operation(&aSlice[0], &bSlice[0], &cSlice[0], &resSlice[0], resMask, 0)
		return
	}
	if a.PhyFormat().IsFlat() &&
		b.PhyFormat().IsFlat() &&
		c.PhyFormat().IsFlat() {
		ternaryExecFlat[A, B, C, R](a, b, c, res, count, wrapper)
		return
	}
	ternaryExecGeneric[A, B, C, R](a, b, c, res, count, wrapper)
}

func ternaryExecFlat[A any, B any, C any, R any](
	a, b, c, res *chunk.Vector,
	count int,
	wrapper TernaryWrapper[A, B, C, R],
) {
	res.SetPhyFormat(chunk.PF_FLAT)
	resPtr, resLen := rawRange(res, count)
	for _, in := range []*chunk.Vector{a, b, c} {
		ptr, sz := rawRange(in, count)
		util.AssertRestrict(resPtr, resLen, ptr, sz)
	}
	aSlice := chunk.GetSliceInPhyFormatFlat[A](a)
	bSlice := chunk.GetSliceInPhyFormatFlat[B](b)
	cSlice := chunk.GetSliceInPhyFormatFlat[C](c)
	resSlice := chunk.GetSliceInPhyFormatFlat[R](res)
	resMask := chunk.GetMaskInPhyFormatFlat(res)
	if wrapper.addsNulls() {
		resMask.CopyFrom(a.Mask, count)
	} else {
		resMask.ShareWith(a.Mask)
	}
	resMask.Combine(b.Mask, count)
	resMask.Combine(c.Mask, count)
	if wrapper.addsNulls() && resMask.Shared() {
		resMask.EnsureWritable()
	}

	if resMask.AllValid() {
		for i := 0; i < count; i++ {
			wrapper.operation(&aSlice[i], &bSlice[i], &cSlice[i], &resSlice[i], resMask, i)
		}
		return
	}
	baseIdx := 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		ent := resMask.GetEntry(uint64(eIdx))
		next := min(baseIdx+util.BitsPerEntry, count)
		if util.AllValidInEntry(ent) {
			for ; baseIdx < next; baseIdx++ {
				wrapper.operation(&aSlice[baseIdx], &bSlice[baseIdx], &cSlice[baseIdx], &resSlice[baseIdx], resMask, baseIdx)
			}
		} else if util.NoneValidInEntry(ent) {
			baseIdx = next
		} else {
			start := baseIdx
			for ; baseIdx < next; baseIdx++ {
				if util.RowIsValidInEntry(ent, uint64(baseIdx-start)) {
					wrapper.operation(&aSlice[baseIdx], &bSlice[baseIdx], &cSlice[baseIdx], &resSlice[baseIdx], resMask, baseIdx)
				}
			}
		}
	}
}

func ternaryExecGeneric[A any, B any, C any, R any](
	a, b, c, res *chunk.Vector,
	count int,
	wrapper TernaryWrapper[A, B, C, R],
) {
	var adata, bdata, cdata chunk.UnifiedFormat
	a.ToUnifiedFormat(count, &adata)
	b.ToUnifiedFormat(count, &bdata)
	c.ToUnifiedFormat(count, &cdata)

	res.SetPhyFormat(chunk.PF_FLAT)
	aSlice := chunk.GetSliceInPhyFormatUnifiedFormat[A](&adata)
	bSlice := chunk.GetSliceInPhyFormatUnifiedFormat[B](&bdata)
	cSlice := chunk.GetSliceInPhyFormatUnifiedFormat[C](&cdata)
	resSlice := chunk.GetSliceInPhyFormatFlat[R](res)
	resMask := chunk.GetMaskInPhyFormatFlat(res)
	resMask.Reset()
	ternaryExecLoop[A, B, C, R](
		aSlice,
		bSlice,
		cSlice,
		resSlice,
		count,
		adata.Sel,
		bdata.Sel,
		cdata.Sel,
		adata.Mask,
		bdata.Mask,
		cdata.Mask,
		resMask,
		wrapper,
	)
}

func ternaryExecLoop[A any, B any, C any, R any](
	adata []A, bdata []B, cdata []C,
	resData []R,
	count int,
	asel, bsel, csel *chunk.SelectVector,
	amask, bmask, cmask, resMask *util.Bitmap,
	wrapper TernaryWrapper[A, B, C, R],
) {
	if amask.AllValid() && bmask.AllValid() && cmask.AllValid() {
		for i := 0; i < count; i++ {
			aidx := asel.GetIndex(i)
			bidx := bsel.GetIndex(i)
			cidx := csel.GetIndex(i)
			wrapper.operation(&adata[aidx], &bdata[bidx], &cdata[cidx], &resData[i], resMask, i)
		}
		return
	}
	resMask.Init(max(count, util.VectorSize()))
	for i := 0; i < count; i++ {
		aidx := asel.GetIndex(i)
		bidx := bsel.GetIndex(i)
		cidx := csel.GetIndex(i)
		if amask.RowIsValid(uint64(aidx)) &&
			bmask.RowIsValid(uint64(bidx)) &&
			cmask.RowIsValid(uint64(cidx)) {
			wrapper.operation(&adata[aidx], &bdata[bidx], &cdata[cidx], &resData[i], resMask, i)
		} else {
			resMask.SetInvalid(uint64(i))
		}
	}
}
