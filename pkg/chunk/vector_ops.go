package chunk

import (
	"fmt"
	"unsafe"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Copy copies the rows sel[srcOffset..srcCount) of srcP into dstP
// starting at row dstOffset. A nil sel is the identity. dstP must be
// flat with enough capacity.
func Copy(
	srcP *Vector,
	dstP *Vector,
	selP *SelectVector,
	srcCount int,
	srcOffset int,
	dstOffset int,
) {
	util.AssertFunc(srcOffset <= srcCount)
	util.AssertFunc(srcP.Typ().Id == dstP.Typ().Id)
	copyCount := srcCount - srcOffset
	finished := false

	ownedSel := &SelectVector{}
	sel := selP
	if sel == nil {
		sel = IncrSelectVectorInPhyFormatFlat()
	}
	src := srcP

	for !finished {
		switch src.PhyFormat() {
		case PF_DICT:
			//dict vector
			child := GetChildInPhyFormatDict(src)
			dictSel := GetSelVectorInPhyFormatDict(src)
			newBuff := dictSel.Slice(sel, srcCount)
			ownedSel = &SelectVector{}
			ownedSel.Init3(newBuff)
			sel = ownedSel
			src = child
		case PF_CONST:
			sel = ZeroSelectVectorInPhyFormatConst(srcCount, &SelectVector{})
			finished = true
		case PF_FLAT:
			finished = true
		case PF_SEQUENCE:
			flat := NewVector(src.Typ(), false, 0)
			flat.Reference(src)
			flat.Flatten2(sel, srcCount)
			src = flat
			finished = true
		default:
			panic("usp")
		}
	}

	if copyCount == 0 {
		return
	}

	if copyCount == 1 && dstP.PhyFormat() == PF_DICT {
		dstOffset = 0
		dstP.SetPhyFormat(PF_FLAT)
	}

	util.AssertFunc(dstP.PhyFormat().IsFlat())

	//copy bitmap
	dstBitmap := GetMaskInPhyFormatFlat(dstP)
	srcBitmap := src.Mask
	if srcBitmap.AllValid() {
		if !dstBitmap.AllValid() {
			for i := 0; i < copyCount; i++ {
				dstBitmap.SetValid(uint64(dstOffset + i))
			}
		}
	} else {
		for i := 0; i < copyCount; i++ {
			idx := sel.GetIndex(srcOffset + i)
			dstBitmap.Set(uint64(dstOffset+i), srcBitmap.RowIsValid(uint64(idx)))
		}
	}

	//copy data
	pTyp := src.Typ().GetInternalType()
	switch pTyp {
	case common.STRUCT:
		srcChildren := GetChildrenInPhyFormatStruct(src)
		dstChildren := GetChildrenInPhyFormatStruct(dstP)
		util.AssertFunc(len(srcChildren) == len(dstChildren))
		for i := range srcChildren {
			Copy(srcChildren[i], dstChildren[i], sel, srcCount, srcOffset, dstOffset)
		}
		return
	case common.LIST:
		copyList(src, dstP, sel, srcOffset, dstOffset, copyCount)
		return
	}

	util.AssertFunc(dstOffset+copyCount <= dstP.Capacity())
	switch pTyp {
	case common.BOOL, common.INT8, common.UINT8:
		TemplatedCopy[uint8](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.INT16, common.UINT16:
		TemplatedCopy[uint16](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.INT32, common.UINT32, common.FLOAT:
		TemplatedCopy[uint32](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.INT64, common.UINT64, common.DOUBLE, common.POINTER:
		TemplatedCopy[uint64](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.INT128:
		TemplatedCopy[common.Hugeint](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.INTERVAL:
		TemplatedCopy[common.Interval](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.DATE:
		TemplatedCopy[common.Date](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.DECIMAL:
		TemplatedCopy[common.Decimal](src, sel, dstP, srcOffset, dstOffset, copyCount)
	case common.VARCHAR:
		srcSlice := GetSliceInPhyFormatFlat[common.String](src)
		dstSlice := GetSliceInPhyFormatFlat[common.String](dstP)
		for i := 0; i < copyCount; i++ {
			srcIdx := sel.GetIndex(srcOffset + i)
			dstIdx := dstOffset + i
			if dstBitmap.RowIsValid(uint64(dstIdx)) {
				dstSlice[dstIdx] = srcSlice[srcIdx]
			} else {
				dstSlice[dstIdx] = common.String{}
			}
		}
		AddHeapReference(dstP, src)
	default:
		panic(fmt.Sprintf("usp %v", src.Typ()))
	}
}

func copyList(
	src *Vector,
	dst *Vector,
	sel *SelectVector,
	srcOffset int,
	dstOffset int,
	copyCount int,
) {
	util.AssertFunc(dstOffset+copyCount <= dst.Capacity())
	srcEntries := GetSliceInPhyFormatFlat[common.ListEntry](src)
	dstEntries := GetSliceInPhyFormatFlat[common.ListEntry](dst)
	srcChild := GetChildInPhyFormatList(src)
	dstMask := GetMaskInPhyFormatFlat(dst)
	for i := 0; i < copyCount; i++ {
		srcIdx := sel.GetIndex(srcOffset + i)
		dstIdx := dstOffset + i
		if !dstMask.RowIsValid(uint64(dstIdx)) {
			dstEntries[dstIdx] = common.ListEntry{}
			continue
		}
		entry := srcEntries[srcIdx]
		offset := GetListSize(dst)
		ListAppend(dst, srcChild, nil, int(entry.Offset+entry.Length), int(entry.Offset))
		dstEntries[dstIdx] = common.ListEntry{
			Offset: uint64(offset),
			Length: entry.Length,
		}
	}
}

func TemplatedCopy[T any](
	src *Vector,
	sel *SelectVector,
	dst *Vector,
	srcOffset int,
	dstOffset int,
	copyCount int,
) {
	srcSlice := GetSliceInPhyFormatFlat[T](src)
	dstSlice := GetSliceInPhyFormatFlat[T](dst)

	for i := 0; i < copyCount; i++ {
		srcIdx := sel.GetIndex(srcOffset + i)
		dstSlice[dstOffset+i] = srcSlice[srcIdx]
	}
}

// WriteToStorage writes count fixed-width values of src to ptr.
// Null rows get the null value of the type.
func WriteToStorage(
	src *Vector,
	count int,
	ptr unsafe.Pointer,
) {
	if count == 0 {
		return
	}

	var vdata UnifiedFormat
	src.ToUnifiedFormat(count, &vdata)

	switch src.Typ().GetInternalType() {
	case common.BOOL:
		SaveLoop[bool](&vdata, count, ptr, BoolScatterOp{})
	case common.INT8:
		SaveLoop[int8](&vdata, count, ptr, Int8ScatterOp{})
	case common.INT32:
		SaveLoop[int32](&vdata, count, ptr, Int32ScatterOp{})
	case common.INT64:
		SaveLoop[int64](&vdata, count, ptr, Int64ScatterOp{})
	case common.UINT64:
		SaveLoop[uint64](&vdata, count, ptr, Uint64ScatterOp{})
	case common.DOUBLE:
		SaveLoop[float64](&vdata, count, ptr, Float64ScatterOp{})
	case common.INT128:
		SaveLoop[common.Hugeint](&vdata, count, ptr, HugeintScatterOp{})
	case common.DECIMAL:
		SaveLoop[common.Decimal](&vdata, count, ptr, DecimalScatterOp{})
	case common.DATE:
		SaveLoop[common.Date](&vdata, count, ptr, DateScatterOp{})
	default:
		panic(fmt.Sprintf("usp %v", src.Typ()))
	}
}

func SaveLoop[T any](
	vdata *UnifiedFormat,
	count int,
	ptr unsafe.Pointer,
	nVal ScatterOp[T],
) {
	inSlice := GetSliceInPhyFormatUnifiedFormat[T](vdata)
	resSlice := util.PointerToSlice[T](ptr, count)
	for i := 0; i < count; i++ {
		idx := vdata.Sel.GetIndex(i)
		if !vdata.Mask.RowIsValid(uint64(idx)) {
			resSlice[i] = nVal.NullValue()
		} else {
			resSlice[i] = inSlice[idx]
		}
	}
}

// ReadFromStorage reads count values written by WriteToStorage into res.
func ReadFromStorage(
	ptr unsafe.Pointer,
	count int,
	res *Vector,
) {
	res.SetPhyFormat(PF_FLAT)
	switch res.Typ().GetInternalType() {
	case common.BOOL:
		ReadLoop[bool](ptr, count, res)
	case common.INT8:
		ReadLoop[int8](ptr, count, res)
	case common.INT32:
		ReadLoop[int32](ptr, count, res)
	case common.INT64:
		ReadLoop[int64](ptr, count, res)
	case common.UINT64:
		ReadLoop[uint64](ptr, count, res)
	case common.DOUBLE:
		ReadLoop[float64](ptr, count, res)
	case common.INT128:
		ReadLoop[common.Hugeint](ptr, count, res)
	case common.DECIMAL:
		ReadLoop[common.Decimal](ptr, count, res)
	case common.DATE:
		ReadLoop[common.Date](ptr, count, res)
	default:
		panic(fmt.Sprintf("usp %v", res.Typ()))
	}
}

func ReadLoop[T any](
	src unsafe.Pointer,
	count int,
	res *Vector,
) {
	srcSlice := util.PointerToSlice[T](src, count)
	resSlice := GetSliceInPhyFormatFlat[T](res)

	for i := 0; i < count; i++ {
		resSlice[i] = srcSlice[i]
	}
}
