package storage

import (
	"errors"
	"fmt"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

var ErrUnsupportedType = errors.New("unsupported type")

// NewManagedVector allocates a flat vector of cap rows in a block of mgr.
// The block stays pinned until the vector buffer is released.
func NewManagedVector(
	mgr *BufferManager,
	typ common.LType,
	cap int,
) (*chunk.Vector, *BlockHandle, error) {
	pTyp := typ.GetInternalType()
	if !pTyp.IsConstant() {
		return nil, nil, fmt.Errorf("%w: managed %v", ErrUnsupportedType, typ)
	}
	handle, block, err := mgr.Allocate(uint64(pTyp.Size()*cap), true)
	if err != nil {
		return nil, nil, err
	}
	return chunk.NewManagedVector(typ, handle, cap), block, nil
}

func spillable(typ common.LType) bool {
	switch typ.GetInternalType() {
	case common.BOOL, common.INT8, common.INT32, common.INT64, common.UINT64,
		common.DOUBLE, common.INT128, common.DECIMAL, common.DATE:
		return true
	}
	return false
}

// SpillVector writes count rows of vec into a new block of mgr: the
// values first, then the validity entries. The block is unpinned and
// may be evicted to disk.
func SpillVector(
	mgr *BufferManager,
	vec *chunk.Vector,
	count int,
) (*BlockHandle, error) {
	if !spillable(vec.Typ()) {
		return nil, fmt.Errorf("%w: spill %v", ErrUnsupportedType, vec.Typ())
	}
	valSz := util.AlignValue8(vec.Typ().GetInternalType().Size() * count)
	maskSz := util.EntryCount(count) * util.EntryBytes
	handle, block, err := mgr.Allocate(uint64(valSz+maskSz), false)
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	chunk.WriteToStorage(vec, count, handle.Ptr())

	var uf chunk.UnifiedFormat
	vec.ToUnifiedFormat(count, &uf)
	mask := util.ToSlice[uint64](handle.Data()[valSz:], util.EntryBytes)
	for i := range mask {
		mask[i] = util.FullEntry
	}
	for i := 0; i < count; i++ {
		if !uf.Mask.RowIsValid(uint64(uf.Sel.GetIndex(i))) {
			eIdx, pos := util.GetEntryIndex(uint64(i))
			mask[eIdx] &= ^(uint64(1) << pos)
		}
	}
	return block, nil
}

// LoadVector reads back count rows spilled by SpillVector into a flat
// vector of typ.
func LoadVector(
	mgr *BufferManager,
	block *BlockHandle,
	typ common.LType,
	count int,
) (*chunk.Vector, error) {
	handle, err := mgr.Pin(block)
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	res := chunk.NewFlatVector(typ, max(util.VectorSize(), count))
	chunk.ReadFromStorage(handle.Ptr(), count, res)

	valSz := util.AlignValue8(typ.GetInternalType().Size() * count)
	mask := util.ToSlice[uint64](handle.Data()[valSz:], util.EntryBytes)
	for i := 0; i < count; i++ {
		eIdx, pos := util.GetEntryIndex(uint64(i))
		if !util.RowIsValidInEntry(mask[eIdx], pos) {
			chunk.SetNullInPhyFormatFlat(res, uint64(i), true)
		}
	}
	return res, nil
}
