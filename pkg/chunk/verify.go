package chunk

import (
	"fmt"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Verify checks that the first count rows of vec are addressable
// in its current encoding.
func (vec *Vector) Verify(count int) error {
	if vec.Mask == nil {
		return fmt.Errorf("%w: nil mask", ErrInvalidVector)
	}
	pTyp := vec.Typ().GetInternalType()
	switch vec.PhyFormat() {
	case PF_CONST:
		if sz := pTyp.Size(); sz > 0 && len(vec.Data) < sz {
			return fmt.Errorf("%w: constant %v without data", ErrInvalidVector, vec.Typ())
		}
		if pTyp == common.STRUCT {
			for i, child := range GetChildrenInPhyFormatStruct(vec) {
				if !child.PhyFormat().IsConst() {
					return fmt.Errorf("%w: constant struct with %v field %d",
						ErrInvalidVector, child.PhyFormat(), i)
				}
			}
		}
	case PF_FLAT:
		if pTyp != common.STRUCT && vec.Capacity() < count {
			return fmt.Errorf("%w: %d rows in capacity %d",
				ErrInvalidVector, count, vec.Capacity())
		}
		switch pTyp {
		case common.STRUCT:
			for i, child := range GetChildrenInPhyFormatStruct(vec) {
				if err := child.Verify(count); err != nil {
					return fmt.Errorf("field %d: %w", i, err)
				}
			}
		case common.LIST:
			size := GetListSize(vec)
			entries := GetSliceInPhyFormatFlat[common.ListEntry](vec)
			for i := 0; i < count; i++ {
				if !vec.Mask.RowIsValid(uint64(i)) {
					continue
				}
				if entries[i].Offset+entries[i].Length > uint64(size) {
					return fmt.Errorf("%w: list entry %d [%d,+%d) beyond %d",
						ErrInvalidVector, i, entries[i].Offset, entries[i].Length, size)
				}
			}
			if err := GetChildInPhyFormatList(vec).Verify(size); err != nil {
				return fmt.Errorf("list child: %w", err)
			}
		}
	case PF_DICT:
		if vec.Buf == nil || vec.Buf.BufTyp != VBT_DICT {
			return fmt.Errorf("%w: dictionary without selection", ErrInvalidVector)
		}
		if vec.Aux == nil || vec.Aux.BufTyp != VBT_CHILD || vec.Aux.Child == nil {
			return fmt.Errorf("%w: dictionary without child", ErrInvalidVector)
		}
		sel := GetSelVectorInPhyFormatDict(vec)
		if !sel.Invalid() && len(sel.SelVec) < count {
			return fmt.Errorf("%w: selection of %d rows for %d",
				ErrInvalidVector, len(sel.SelVec), count)
		}
		child := GetChildInPhyFormatDict(vec)
		if child.PhyFormat().IsDict() {
			return fmt.Errorf("%w: nested dictionary", ErrInvalidVector)
		}
		if err := child.Verify(sel.MaxIndex(count)); err != nil {
			return fmt.Errorf("dictionary child: %w", err)
		}
	case PF_SEQUENCE:
		if len(vec.Data) < 3*common.Int64Size {
			return fmt.Errorf("%w: sequence without parameters", ErrInvalidVector)
		}
		if !vec.Typ().IsIntegral() {
			return fmt.Errorf("%w: sequence of %v", ErrInvalidVector, vec.Typ())
		}
	default:
		return fmt.Errorf("%w: unknown format %d", ErrInvalidVector, vec.PhyFormat())
	}
	return nil
}

// DebugVerify panics on an invalid vector in debug builds.
func (vec *Vector) DebugVerify(count int) {
	if !util.DebugMode {
		return
	}
	if err := vec.Verify(count); err != nil {
		panic(err)
	}
}
