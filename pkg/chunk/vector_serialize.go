package chunk

import (
	"fmt"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Serialize writes the first count rows of vec. The encoding is
// independent of the physical format of vec.
func (vec *Vector) Serialize(count int, serial util.Serialize) error {
	typ := vec.Typ()
	pTyp := typ.GetInternalType()
	if pTyp.IsNested() && !vec.PhyFormat().IsFlat() {
		flat := NewFlatVector(typ, max(util.VectorSize(), count))
		Copy(vec, flat, nil, count, 0, 0)
		return flat.Serialize(count, serial)
	}

	var vdata UnifiedFormat
	vec.ToUnifiedFormat(count, &vdata)
	writeValidity := (count > 0) && !vdata.Mask.AllValid()
	err := util.Write[bool](writeValidity, serial)
	if err != nil {
		return err
	}
	if writeValidity {
		flatMask := &util.Bitmap{}
		flatMask.Init(count)
		for i := 0; i < count; i++ {
			rowIdx := vdata.Sel.GetIndex(i)
			flatMask.Set(uint64(i), vdata.Mask.RowIsValid(uint64(rowIdx)))
		}
		err = serial.WriteData(flatMask.Data(), flatMask.Bytes(count))
		if err != nil {
			return err
		}
	}
	if pTyp.IsConstant() {
		sz := pTyp.Size()
		writeSize := sz * count
		buff := util.GAlloc.Alloc(writeSize)
		defer util.GAlloc.Free(buff)
		for i := 0; i < count; i++ {
			idx := vdata.Sel.GetIndex(i)
			if vdata.Mask.RowIsValid(uint64(idx)) {
				copy(buff[i*sz:(i+1)*sz], vdata.Data[idx*sz:(idx+1)*sz])
			}
		}
		return serial.WriteData(buff, writeSize)
	}
	switch pTyp {
	case common.VARCHAR:
		strSlice := GetSliceInPhyFormatUnifiedFormat[common.String](&vdata)
		for i := 0; i < count; i++ {
			idx := vdata.Sel.GetIndex(i)
			val := StringScatterOp{}.NullValue()
			if vdata.Mask.RowIsValid(uint64(idx)) {
				val = strSlice[idx]
			}
			err = common.WriteString(val, serial)
			if err != nil {
				return err
			}
		}
	case common.STRUCT:
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			err = child.Serialize(count, serial)
			if err != nil {
				return err
			}
		}
	case common.LIST:
		entries := GetSliceInPhyFormatFlat[common.ListEntry](vec)
		for i := 0; i < count; i++ {
			err = util.Write[common.ListEntry](entries[i], serial)
			if err != nil {
				return err
			}
		}
		childSize := GetListSize(vec)
		err = util.Write[uint64](uint64(childSize), serial)
		if err != nil {
			return err
		}
		err = GetChildInPhyFormatList(vec).Serialize(childSize, serial)
		if err != nil {
			return err
		}
	default:
		panic(fmt.Sprintf("usp %v", typ))
	}
	return nil
}

// Deserialize reads count rows written by Serialize into the flat
// vector vec.
func (vec *Vector) Deserialize(count int, deserial util.Deserialize) error {
	if !vec.PhyFormat().IsFlat() {
		vec.SetPhyFormat(PF_FLAT)
	}
	mask := &util.Bitmap{}
	vec.Mask = mask
	hasMask := false
	err := util.Read[bool](&hasMask, deserial)
	if err != nil {
		return err
	}
	if hasMask {
		mask.Init(count)
		err = deserial.ReadData(mask.Data(), mask.Bytes(count))
		if err != nil {
			return err
		}
	}

	typ := vec.Typ()
	pTyp := typ.GetInternalType()
	if pTyp.IsConstant() {
		readSize := pTyp.Size() * count
		if vec.Capacity() < count {
			vec.Resize(vec.Capacity(), count)
		}
		return deserial.ReadData(vec.Data[:readSize], readSize)
	}
	switch pTyp {
	case common.VARCHAR:
		if vec.Capacity() < count {
			vec.Resize(vec.Capacity(), count)
		}
		strSlice := GetSliceInPhyFormatFlat[common.String](vec)
		for i := 0; i < count; i++ {
			data, err := util.ReadBytes(deserial)
			if err != nil {
				return err
			}
			if mask.RowIsValid(uint64(i)) {
				strSlice[i] = AddStringOrBlob(vec, data)
			} else {
				strSlice[i] = common.String{}
			}
		}
	case common.STRUCT:
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			err = child.Deserialize(count, deserial)
			if err != nil {
				return err
			}
		}
	case common.LIST:
		if vec.Capacity() < count {
			vec.Resize(vec.Capacity(), count)
		}
		entries := GetSliceInPhyFormatFlat[common.ListEntry](vec)
		for i := 0; i < count; i++ {
			err = util.Read[common.ListEntry](&entries[i], deserial)
			if err != nil {
				return err
			}
		}
		var childSize uint64
		err = util.Read[uint64](&childSize, deserial)
		if err != nil {
			return err
		}
		ListReserve(vec, int(childSize))
		err = GetChildInPhyFormatList(vec).Deserialize(int(childSize), deserial)
		if err != nil {
			return err
		}
		SetListSize(vec, int(childSize))
	default:
		panic(fmt.Sprintf("usp %v", typ))
	}
	return nil
}
