package compute

import (
	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/util"
)

type SelectOp[T any, S any] func(left *T, right *S) bool

// BinarySelect splits the first count rows by op. Row i goes to trueSel
// when both inputs are valid and op holds, otherwise to falseSel; the
// index written is sel[i]. Either output may be nil. It returns the
// number of true rows.
func BinarySelect[T any, S any](
	left, right *chunk.Vector,
	sel *chunk.SelectVector,
	count int,
	trueSel, falseSel *chunk.SelectVector,
	op SelectOp[T, S],
) int {
	if sel == nil {
		sel = chunk.IncrSelectVectorInPhyFormatFlat()
	}
	if left.PhyFormat().IsConst() && right.PhyFormat().IsConst() {
		return selectConst[T, S](left, right, sel, count, trueSel, falseSel, op)
	} else if left.PhyFormat().IsConst() && right.PhyFormat().IsFlat() {
		return selectFlat[T, S](left, right, sel, count, trueSel, falseSel, op, true, false)
	} else if left.PhyFormat().IsFlat() && right.PhyFormat().IsConst() {
		return selectFlat[T, S](left, right, sel, count, trueSel, falseSel, op, false, true)
	} else if left.PhyFormat().IsFlat() && right.PhyFormat().IsFlat() {
		return selectFlat[T, S](left, right, sel, count, trueSel, falseSel, op, false, false)
	}
	return selectGeneric[T, S](left, right, sel, count, trueSel, falseSel, op)
}

func selectAll(sel *chunk.SelectVector, count int, out *chunk.SelectVector) {
	if out == nil {
		return
	}
	for i := 0; i < count; i++ {
		out.SetIndex(i, sel.GetIndex(i))
	}
}

func selectConst[T any, S any](
	left, right *chunk.Vector,
	sel *chunk.SelectVector,
	count int,
	trueSel, falseSel *chunk.SelectVector,
	op SelectOp[T, S],
) int {
	if chunk.IsNullInPhyFormatConst(left) || chunk.IsNullInPhyFormatConst(right) {
		selectAll(sel, count, falseSel)
		return 0
	}
	ldata := chunk.GetSliceInPhyFormatConst[T](left)
	rdata := chunk.GetSliceInPhyFormatConst[S](right)
	if !op(&ldata[0], &rdata[0]) {
		selectAll(sel, count, falseSel)
		return 0
	}
	selectAll(sel, count, trueSel)
	return count
}

func selectFlat[T any, S any](
	left, right *chunk.Vector,
	sel *chunk.SelectVector,
	count int,
	trueSel, falseSel *chunk.SelectVector,
	op SelectOp[T, S],
	lconst, rconst bool,
) int {
	if lconst && chunk.IsNullInPhyFormatConst(left) ||
		rconst && chunk.IsNullInPhyFormatConst(right) {
		selectAll(sel, count, falseSel)
		return 0
	}
	ldata := chunk.GetSliceInPhyFormatFlat[T](left)
	rdata := chunk.GetSliceInPhyFormatFlat[S](right)
	//never write into the input masks
	var mask util.Bitmap
	if lconst {
		mask.ShareWith(right.Mask)
	} else if rconst {
		mask.ShareWith(left.Mask)
	} else {
		mask.ShareWith(left.Mask)
		mask.Combine(right.Mask, count)
	}
	return selectFlatLoop[T, S](ldata, rdata, sel, count, &mask,
		trueSel, falseSel, op, lconst, rconst)
}

func selectFlatLoop[T any, S any](
	ldata []T, rdata []S,
	sel *chunk.SelectVector,
	count int,
	mask *util.Bitmap,
	trueSel, falseSel *chunk.SelectVector,
	op SelectOp[T, S],
	lconst, rconst bool,
) int {
	trueCount, falseCount := 0, 0
	emit := func(resIdx int, res bool) {
		if res {
			if trueSel != nil {
				trueSel.SetIndex(trueCount, resIdx)
			}
			trueCount++
		} else {
			if falseSel != nil {
				falseSel.SetIndex(falseCount, resIdx)
			}
			falseCount++
		}
	}
	lidx, ridx := 0, 0
	baseIdx := 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		ent := mask.GetEntry(uint64(eIdx))
		next := min(baseIdx+util.BitsPerEntry, count)
		if util.AllValidInEntry(ent) {
			for ; baseIdx < next; baseIdx++ {
				if !lconst {
					lidx = baseIdx
				}
				if !rconst {
					ridx = baseIdx
				}
				emit(sel.GetIndex(baseIdx), op(&ldata[lidx], &rdata[ridx]))
			}
		} else if util.NoneValidInEntry(ent) {
			for ; baseIdx < next; baseIdx++ {
				emit(sel.GetIndex(baseIdx), false)
			}
		} else {
			start := baseIdx
			for ; baseIdx < next; baseIdx++ {
				if !lconst {
					lidx = baseIdx
				}
				if !rconst {
					ridx = baseIdx
				}
				res := util.RowIsValidInEntry(ent, uint64(baseIdx-start)) &&
					op(&ldata[lidx], &rdata[ridx])
				emit(sel.GetIndex(baseIdx), res)
			}
		}
	}
	return trueCount
}

func selectGeneric[T any, S any](
	left, right *chunk.Vector,
	sel *chunk.SelectVector,
	count int,
	trueSel, falseSel *chunk.SelectVector,
	op SelectOp[T, S],
) int {
	var ldata, rdata chunk.UnifiedFormat
	left.ToUnifiedFormat(count, &ldata)
	right.ToUnifiedFormat(count, &rdata)
	lslice := chunk.GetSliceInPhyFormatUnifiedFormat[T](&ldata)
	rslice := chunk.GetSliceInPhyFormatUnifiedFormat[S](&rdata)
	noNull := ldata.Mask.AllValid() && rdata.Mask.AllValid()
	trueCount, falseCount := 0, 0
	for i := 0; i < count; i++ {
		resIdx := sel.GetIndex(i)
		lidx := ldata.Sel.GetIndex(i)
		ridx := rdata.Sel.GetIndex(i)
		valid := noNull ||
			ldata.Mask.RowIsValid(uint64(lidx)) && rdata.Mask.RowIsValid(uint64(ridx))
		if valid && op(&lslice[lidx], &rslice[ridx]) {
			if trueSel != nil {
				trueSel.SetIndex(trueCount, resIdx)
			}
			trueCount++
		} else {
			if falseSel != nil {
				falseSel.SetIndex(falseCount, resIdx)
			}
			falseCount++
		}
	}
	return trueCount
}
