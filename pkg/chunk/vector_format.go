package chunk

import (
	"fmt"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Flatten converts vec into a flat vector of at least cnt rows.
// Row values do not change.
func (vec *Vector) Flatten(cnt int) {
	switch vec.PhyFormat() {
	case PF_FLAT:
	case PF_CONST:
		vec.flattenConst(cnt)
	case PF_DICT:
		flat := NewFlatVector(vec.Typ(), max(util.VectorSize(), cnt))
		Copy(vec, flat, nil, cnt, 0, 0)
		vec._PhyFormat = PF_FLAT
		vec.Buf = flat.Buf
		vec.Data = flat.Data
		vec.Mask = flat.Mask
		vec.Aux = flat.Aux
	case PF_SEQUENCE:
		var start, incr, seqCount int64
		GetSequenceInPhyFormatSequence(vec, &start, &incr, &seqCount)
		vec._PhyFormat = PF_FLAT
		vec.Init(max(util.VectorSize(), cnt))
		GenerateSequence(vec, cnt, nil, start, incr)
	default:
		panic(fmt.Sprintf("usp %v", vec.PhyFormat()))
	}
}

func (vec *Vector) flattenConst(cnt int) {
	null := IsNullInPhyFormatConst(vec)
	pTyp := vec.Typ().GetInternalType()
	vec._PhyFormat = PF_FLAT
	vec.Mask = &util.Bitmap{}
	if null {
		vec.Mask.SetAllInvalid(cnt)
	}
	if pTyp == common.STRUCT {
		//Aux may be shared with the vector vec references
		srcChildren := GetChildrenInPhyFormatStruct(vec)
		aux := &VecBuffer{BufTyp: VBT_STRUCT}
		for _, src := range srcChildren {
			child := NewVector(src.Typ(), false, 0)
			child.Reference(src)
			child.Flatten(cnt)
			aux.Children = append(aux.Children, child)
		}
		vec.Aux = aux
		return
	}
	oldData := vec.Data
	vec.Buf = NewStandardBuffer(vec.Typ(), max(util.VectorSize(), cnt))
	vec.Data = vec.Buf.Data
	if null {
		return
	}
	//fill flat vector
	pSize := pTyp.Size()
	if pTyp == common.VARCHAR {
		FlattenConstVector[common.String](vec.Data, oldData, pSize, cnt)
		return
	}
	switch pSize {
	case 1:
		FlattenConstVector[uint8](vec.Data, oldData, pSize, cnt)
	case 2:
		FlattenConstVector[uint16](vec.Data, oldData, pSize, cnt)
	case 4:
		FlattenConstVector[uint32](vec.Data, oldData, pSize, cnt)
	case 8:
		FlattenConstVector[uint64](vec.Data, oldData, pSize, cnt)
	case 16:
		FlattenConstVector[common.Hugeint](vec.Data, oldData, pSize, cnt)
	default:
		for i := 0; i < cnt; i++ {
			copy(vec.Data[i*pSize:(i+1)*pSize], oldData[:pSize])
		}
	}
}

// Flatten2 makes the rows sel[0..cnt) of vec addressable as a flat vector.
func (vec *Vector) Flatten2(sel *SelectVector, cnt int) {
	switch vec.PhyFormat() {
	case PF_FLAT:
	case PF_SEQUENCE:
		var start, incr, seqCount int64
		GetSequenceInPhyFormatSequence(vec, &start, &incr, &seqCount)
		vec._PhyFormat = PF_FLAT
		vec.Init(max(util.VectorSize(), sel.MaxIndex(cnt)))
		GenerateSequence(vec, cnt, sel, start, incr)
	default:
		vec.Flatten(sel.MaxIndex(cnt))
	}
}

// ToUnifiedFormat exposes the first count rows of vec as
// (Sel, Data, Mask) without changing vec.
func (vec *Vector) ToUnifiedFormat(count int, output *UnifiedFormat) {
	output.PTypSize = vec.Typ().GetInternalType().Size()
	switch vec.PhyFormat() {
	case PF_DICT:
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		composed := false
		for child.PhyFormat().IsDict() {
			sel = NewSelectVector3(GetSelVectorInPhyFormatDict(child).Slice(sel, count))
			child = GetChildInPhyFormatDict(child)
			composed = true
		}
		if composed {
			output.InterSel.Init2(sel)
			sel = &output.InterSel
		}
		switch child.PhyFormat() {
		case PF_FLAT:
			output.Sel = sel
			output.Data = GetDataInPhyFormatFlat(child)
			output.Mask = GetMaskInPhyFormatFlat(child)
		case PF_CONST:
			output.Sel = ZeroSelectVectorInPhyFormatConst(count, &output.InterSel)
			output.Data = GetDataInPhyFormatConst(child)
			output.Mask = GetMaskInPhyFormatConst(child)
		case PF_SEQUENCE:
			tmp := NewVector(child.Typ(), false, 0)
			tmp.Reference(child)
			tmp.Flatten2(sel, count)
			output.Sel = sel
			output.Data = GetDataInPhyFormatFlat(tmp)
			output.Mask = GetMaskInPhyFormatFlat(tmp)
		default:
			panic("usp")
		}
	case PF_CONST:
		output.Sel = ZeroSelectVectorInPhyFormatConst(count, &output.InterSel)
		output.Data = GetDataInPhyFormatConst(vec)
		output.Mask = GetMaskInPhyFormatConst(vec)
	case PF_FLAT:
		output.Sel = IncrSelectVectorInPhyFormatFlat()
		output.Data = GetDataInPhyFormatFlat(vec)
		output.Mask = GetMaskInPhyFormatFlat(vec)
	case PF_SEQUENCE:
		tmp := NewVector(vec.Typ(), false, 0)
		tmp.Reference(vec)
		tmp.Flatten(count)
		output.Sel = IncrSelectVectorInPhyFormatFlat()
		output.Data = GetDataInPhyFormatFlat(tmp)
		output.Mask = GetMaskInPhyFormatFlat(tmp)
	default:
		panic("usp")
	}
}

// SliceOnSelf makes vec select the rows sel[0..count) of itself.
// The selection array of sel is borrowed.
func (vec *Vector) SliceOnSelf(sel *SelectVector, count int) {
	switch vec.PhyFormat() {
	case PF_CONST:
	case PF_DICT:
		curSel := GetSelVectorInPhyFormatDict(vec)
		vec.Buf = NewDictBuffer(curSel.Slice(sel, count))
	default:
		child := NewVector(vec.Typ(), false, 0)
		child.Reference(vec)
		vec._PhyFormat = PF_DICT
		vec.Buf = NewDictBuffer2(sel)
		vec.Aux = NewChildBuffer(child)
		vec.Data = nil
		vec.Mask = &util.Bitmap{}
	}
}

func (vec *Vector) Slice2(sel *SelectVector, count int) {
	vec.SliceOnSelf(sel, count)
}

func (vec *Vector) Slice(other *Vector, sel *SelectVector, count int) {
	vec.Reference(other)
	vec.SliceOnSelf(sel, count)
}

// Slice3 makes vec the rows [offset, end) of other.
func (vec *Vector) Slice3(other *Vector, offset uint64, end uint64) {
	util.AssertFunc(offset <= end)
	switch other.PhyFormat() {
	case PF_CONST:
		vec.Reference(other)
	case PF_SEQUENCE:
		var start, incr, seqCount int64
		GetSequenceInPhyFormatSequence(other, &start, &incr, &seqCount)
		vec.Sequence(start+int64(offset)*incr, incr, int(end-offset))
	case PF_DICT:
		vec.Reference(other)
		curSel := GetSelVectorInPhyFormatDict(other)
		newSel := NewSelectVector(int(end - offset))
		for i := 0; i < int(end-offset); i++ {
			newSel.SetIndex(i, curSel.GetIndex(int(offset)+i))
		}
		vec.Buf = NewDictBuffer(newSel.SelVec)
	case PF_FLAT:
		vec.Reference(other)
		if offset == 0 {
			return
		}
		interTyp := vec.Typ().GetInternalType()
		if interTyp == common.STRUCT {
			children := GetChildrenInPhyFormatStruct(other)
			structBuf := &VecBuffer{BufTyp: VBT_STRUCT}
			for _, child := range children {
				sliced := NewVector(child.Typ(), false, 0)
				sliced.Slice3(child, offset, end)
				structBuf.Children = append(structBuf.Children, sliced)
			}
			vec.Aux = structBuf
		} else {
			vec.Data = vec.Data[offset*uint64(interTyp.Size()):]
		}
		vec.Mask.Slice(other.Mask, offset, end-offset)
	default:
		panic("usp")
	}
}

func FlattenConstVector[T any](data []byte, srcData []byte, pSize int, cnt int) {
	src := util.ToSlice[T](srcData, pSize)
	dst := util.ToSlice[T](data, pSize)
	for i := 0; i < cnt; i++ {
		dst[i] = src[0]
	}
}

type sequenceInt interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// GenerateSequence writes start+i*incr into row i of result. With a
// selection only the rows sel[0..count) are written.
func GenerateSequence(result *Vector, count int, sel *SelectVector, start, incr int64) {
	util.AssertFunc(result.PhyFormat().IsFlat())
	if sel == nil {
		sel = IncrSelectVectorInPhyFormatFlat()
	}
	switch result.Typ().GetInternalType() {
	case common.INT8:
		generateSequenceLoop[int8](result, count, sel, start, incr)
	case common.INT16:
		generateSequenceLoop[int16](result, count, sel, start, incr)
	case common.INT32:
		generateSequenceLoop[int32](result, count, sel, start, incr)
	case common.INT64:
		generateSequenceLoop[int64](result, count, sel, start, incr)
	case common.UINT8:
		generateSequenceLoop[uint8](result, count, sel, start, incr)
	case common.UINT16:
		generateSequenceLoop[uint16](result, count, sel, start, incr)
	case common.UINT32:
		generateSequenceLoop[uint32](result, count, sel, start, incr)
	case common.UINT64:
		generateSequenceLoop[uint64](result, count, sel, start, incr)
	case common.INT128:
		data := GetSliceInPhyFormatFlat[common.Hugeint](result)
		for i := 0; i < count; i++ {
			idx := sel.GetIndex(i)
			data[idx] = common.HugeintFromInt64(start + int64(idx)*incr)
		}
	default:
		panic(fmt.Sprintf("usp sequence of %v", result.Typ()))
	}
}

func generateSequenceLoop[T sequenceInt](result *Vector, count int, sel *SelectVector, start, incr int64) {
	data := GetSliceInPhyFormatFlat[T](result)
	for i := 0; i < count; i++ {
		idx := sel.GetIndex(i)
		data[idx] = T(start + int64(idx)*incr)
	}
}
