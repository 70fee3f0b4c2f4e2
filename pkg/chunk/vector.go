package chunk

import (
	"fmt"
	"unsafe"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// Vector is one column of a batch.
//
// FLAT: Data[i] is row i and Mask is indexed by row.
// CONST: slot 0 of Data holds the value of every row.
// DICT: Buf holds the selection, Aux the child vector.
// SEQUENCE: Data holds (start, increment, count) as int64.
//
// STRUCT vectors keep their fields in Aux. LIST vectors keep
// ListEntry values in Data and the element vector in Aux.
type Vector struct {
	_PhyFormat PhyFormat
	_Typ       common.LType
	Data       []byte
	Mask       *util.Bitmap
	Buf        *VecBuffer
	Aux        *VecBuffer
}

func (vec *Vector) Init(cap int) {
	vec.Aux = nil
	vec.Mask = &util.Bitmap{}
	pTyp := vec.Typ().GetInternalType()
	sz := pTyp.Size()
	if sz > 0 {
		vec.Buf = NewStandardBuffer(vec.Typ(), cap)
		vec.Data = vec.Buf.Data
	} else {
		vec.Buf = nil
		vec.Data = nil
	}
	switch pTyp {
	case common.STRUCT:
		vec.Aux = NewStructBuffer(vec.Typ(), cap)
	case common.LIST:
		vec.Aux = NewListBuffer(vec.Typ(), cap)
	}
}

func (vec *Vector) Typ() common.LType {
	return vec._Typ
}

func (vec *Vector) PhyFormat() PhyFormat {
	return vec._PhyFormat
}

// Capacity is the number of rows the flat storage can hold.
func (vec *Vector) Capacity() int {
	pTyp := vec.Typ().GetInternalType()
	if pTyp == common.STRUCT {
		if vec.Aux == nil || len(vec.Aux.Children) == 0 {
			return util.VectorSize()
		}
		ret := vec.Aux.Children[0].Capacity()
		for _, child := range vec.Aux.Children[1:] {
			ret = min(ret, child.Capacity())
		}
		return ret
	}
	sz := pTyp.Size()
	if sz == 0 {
		return 0
	}
	return len(vec.Data) / sz
}

// SetPhyFormat changes the encoding tag. Leaving DICT or SEQUENCE
// for FLAT or CONST installs fresh storage.
func (vec *Vector) SetPhyFormat(pf PhyFormat) {
	old := vec._PhyFormat
	vec._PhyFormat = pf
	if (pf.IsFlat() || pf.IsConst()) && (old.IsDict() || old.IsSequence()) {
		vec.Init(util.VectorSize())
		return
	}
	if vec.Typ().GetInternalType().IsConstant() &&
		(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat()) {
		vec.Aux = nil
	}
}

func (vec *Vector) Reference(other *Vector) {
	util.AssertFunc(vec.Typ().Equal(other.Typ()))
	vec.Reinterpret(other)
}

// ReferenceValue turns vec into a constant vector holding val.
func (vec *Vector) ReferenceValue(val *Value) {
	util.AssertFunc(vec.Typ().GetInternalType() == val.Typ.GetInternalType())
	vec.Init(1)
	vec._PhyFormat = PF_CONST
	vec.SetValue(0, val)
	if vec.Typ().GetInternalType() == common.STRUCT {
		for _, child := range vec.Aux.Children {
			child._PhyFormat = PF_CONST
		}
	}
}

// Reinterpret aliases the storage of other. The mask is borrowed and
// copied on the first write.
func (vec *Vector) Reinterpret(other *Vector) {
	vec._PhyFormat = other._PhyFormat
	vec.Buf = other.Buf
	vec.Aux = other.Aux
	vec.Data = other.Data
	vec.Mask = &util.Bitmap{}
	if other.Mask != nil {
		vec.Mask.ShareWith(other.Mask)
	}
}

func (vec *Vector) GetValue(idx int) *Value {
	switch vec.PhyFormat() {
	case PF_CONST:
		idx = 0
	case PF_FLAT:
	case PF_DICT:
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		return child.GetValue(sel.GetIndex(idx))
	case PF_SEQUENCE:
		var start, incr, cnt int64
		GetSequenceInPhyFormatSequence(vec, &start, &incr, &cnt)
		return valueFromInt64(vec.Typ(), start+int64(idx)*incr)
	default:
		panic("usp")
	}
	if !vec.Mask.RowIsValid(uint64(idx)) {
		return NewNullValue(vec.Typ())
	}

	ret := &Value{Typ: vec.Typ()}
	switch vec.Typ().GetInternalType() {
	case common.BOOL:
		ret.Bool = GetSliceInPhyFormatFlat[bool](vec)[idx]
	case common.INT8:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int8](vec)[idx])
	case common.INT16:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int16](vec)[idx])
	case common.INT32:
		ret.I64 = int64(GetSliceInPhyFormatFlat[int32](vec)[idx])
	case common.INT64:
		ret.I64 = GetSliceInPhyFormatFlat[int64](vec)[idx]
	case common.UINT8:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint8](vec)[idx])
	case common.UINT16:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint16](vec)[idx])
	case common.UINT32:
		ret.U64 = uint64(GetSliceInPhyFormatFlat[uint32](vec)[idx])
	case common.UINT64:
		ret.U64 = GetSliceInPhyFormatFlat[uint64](vec)[idx]
	case common.POINTER:
		ret.U64 = uint64(uintptr(GetSliceInPhyFormatFlat[unsafe.Pointer](vec)[idx]))
	case common.FLOAT:
		ret.F64 = float64(GetSliceInPhyFormatFlat[float32](vec)[idx])
	case common.DOUBLE:
		ret.F64 = GetSliceInPhyFormatFlat[float64](vec)[idx]
	case common.INT128:
		h := GetSliceInPhyFormatFlat[common.Hugeint](vec)[idx]
		ret.I64 = h.Upper
		ret.U64 = h.Lower
	case common.VARCHAR:
		data := GetSliceInPhyFormatFlat[common.String](vec)
		ret.Str = data[idx].String()
	case common.DATE:
		d := GetSliceInPhyFormatFlat[common.Date](vec)[idx]
		ret.I64 = int64(d.Year)
		ret.I64_1 = int64(d.Month)
		ret.I64_2 = int64(d.Day)
	case common.INTERVAL:
		iv := GetSliceInPhyFormatFlat[common.Interval](vec)[idx]
		ret.I64 = int64(iv.Months)
		ret.I64_1 = int64(iv.Days)
		ret.I64_2 = iv.Micros
	case common.DECIMAL:
		ret.Dec = GetSliceInPhyFormatFlat[common.Decimal](vec)[idx]
	case common.STRUCT:
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			ret.Children = append(ret.Children, child.GetValue(idx))
		}
	case common.LIST:
		entry := GetSliceInPhyFormatFlat[common.ListEntry](vec)[idx]
		child := GetChildInPhyFormatList(vec)
		ret.Children = make([]*Value, 0, entry.Length)
		for j := entry.Offset; j < entry.Offset+entry.Length; j++ {
			ret.Children = append(ret.Children, child.GetValue(int(j)))
		}
	default:
		panic(fmt.Sprintf("usp %v", vec.Typ()))
	}
	return ret
}

func valueFromInt64(typ common.LType, v int64) *Value {
	ret := &Value{Typ: typ}
	switch typ.GetInternalType() {
	case common.INT8, common.INT16, common.INT32, common.INT64:
		ret.I64 = v
	case common.UINT8, common.UINT16, common.UINT32, common.UINT64:
		ret.U64 = uint64(v)
	case common.INT128:
		h := common.HugeintFromInt64(v)
		ret.I64 = h.Upper
		ret.U64 = h.Lower
	default:
		panic(fmt.Sprintf("usp sequence of %v", typ))
	}
	return ret
}

func (vec *Vector) SetValue(idx int, val *Value) {
	if vec.PhyFormat().IsDict() {
		sel := GetSelVectorInPhyFormatDict(vec)
		child := GetChildInPhyFormatDict(vec)
		child.SetValue(sel.GetIndex(idx), val)
		return
	}
	util.AssertFunc(vec.PhyFormat().IsFlat() || vec.PhyFormat().IsConst())
	pTyp := vec.Typ().GetInternalType()
	util.AssertFunc(val.Typ.GetInternalType() == pTyp)
	vec.Mask.Set(uint64(idx), !val.IsNull)
	if val.IsNull {
		if pTyp == common.STRUCT {
			for _, child := range GetChildrenInPhyFormatStruct(vec) {
				child.SetValue(idx, NewNullValue(child.Typ()))
			}
		}
		return
	}
	switch pTyp {
	case common.BOOL:
		GetSliceInPhyFormatFlat[bool](vec)[idx] = val.Bool
	case common.INT8:
		GetSliceInPhyFormatFlat[int8](vec)[idx] = int8(val.I64)
	case common.INT16:
		GetSliceInPhyFormatFlat[int16](vec)[idx] = int16(val.I64)
	case common.INT32:
		GetSliceInPhyFormatFlat[int32](vec)[idx] = int32(val.I64)
	case common.INT64:
		GetSliceInPhyFormatFlat[int64](vec)[idx] = val.I64
	case common.UINT8:
		GetSliceInPhyFormatFlat[uint8](vec)[idx] = uint8(val.U64)
	case common.UINT16:
		GetSliceInPhyFormatFlat[uint16](vec)[idx] = uint16(val.U64)
	case common.UINT32:
		GetSliceInPhyFormatFlat[uint32](vec)[idx] = uint32(val.U64)
	case common.UINT64:
		GetSliceInPhyFormatFlat[uint64](vec)[idx] = val.U64
	case common.POINTER:
		GetSliceInPhyFormatFlat[uint64](vec)[idx] = val.U64
	case common.FLOAT:
		GetSliceInPhyFormatFlat[float32](vec)[idx] = float32(val.F64)
	case common.DOUBLE:
		GetSliceInPhyFormatFlat[float64](vec)[idx] = val.F64
	case common.INT128:
		GetSliceInPhyFormatFlat[common.Hugeint](vec)[idx] = common.Hugeint{
			Upper: val.I64,
			Lower: val.U64,
		}
	case common.VARCHAR:
		GetSliceInPhyFormatFlat[common.String](vec)[idx] = AddString(vec, val.Str)
	case common.DATE:
		GetSliceInPhyFormatFlat[common.Date](vec)[idx] = common.Date{
			Year:  int32(val.I64),
			Month: int32(val.I64_1),
			Day:   int32(val.I64_2),
		}
	case common.INTERVAL:
		GetSliceInPhyFormatFlat[common.Interval](vec)[idx] = common.Interval{
			Months: int32(val.I64),
			Days:   int32(val.I64_1),
			Micros: val.I64_2,
		}
	case common.DECIMAL:
		GetSliceInPhyFormatFlat[common.Decimal](vec)[idx] = val.Dec
	case common.STRUCT:
		children := GetChildrenInPhyFormatStruct(vec)
		util.AssertFunc(len(children) == len(val.Children))
		for i, child := range children {
			child.SetValue(idx, val.Children[i])
		}
	case common.LIST:
		offset := GetListSize(vec)
		for _, elem := range val.Children {
			ListPushBack(vec, elem)
		}
		GetSliceInPhyFormatFlat[common.ListEntry](vec)[idx] = common.ListEntry{
			Offset: uint64(offset),
			Length: uint64(len(val.Children)),
		}
	default:
		panic(fmt.Sprintf("usp %v", vec.Typ()))
	}
}

func (vec *Vector) Reset() {
	vec.SetPhyFormat(PF_FLAT)
	vec.Mask = &util.Bitmap{}
}

// Resize grows the flat storage from curSize to newSize rows,
// keeping the first curSize rows.
func (vec *Vector) Resize(curSize int, newSize int) {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	pTyp := vec.Typ().GetInternalType()
	if sz := pTyp.Size(); sz > 0 && newSize*sz > len(vec.Data) {
		newBuf := NewBuffer(newSize * sz)
		copy(newBuf.Data, vec.Data)
		vec.Buf = newBuf
		vec.Data = newBuf.Data
	}
	if vec.Mask.IsMaskSet() {
		vec.Mask.Resize(curSize, newSize)
	}
	if pTyp == common.STRUCT {
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			child.Resize(curSize, newSize)
		}
	}
}

func (vec *Vector) Sequence(start int64, incr int64, count int) {
	util.AssertFunc(vec.Typ().IsIntegral())
	vec._PhyFormat = PF_SEQUENCE
	vec.Buf = NewBuffer(3 * common.Int64Size)
	vec.Data = vec.Buf.Data
	dataSlice := GetSliceInPhyFormatSequence(vec)
	dataSlice[0] = start
	dataSlice[1] = incr
	dataSlice[2] = int64(count)
	vec.Mask = &util.Bitmap{}
	vec.Aux = nil
}

// sequence vector
func GetSliceInPhyFormatSequence(vec *Vector) []int64 {
	util.AssertFunc(vec.PhyFormat().IsSequence())
	return util.ToSlice[int64](vec.Data, common.Int64Size)
}

func GetSequenceInPhyFormatSequence(vec *Vector, start, incr, seqCount *int64) {
	dSlice := GetSliceInPhyFormatSequence(vec)
	*start = dSlice[0]
	*incr = dSlice[1]
	*seqCount = dSlice[2]
}

// constant vector
func GetDataInPhyFormatConst(vec *Vector) []byte {
	util.AssertFunc(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat())
	return vec.Data
}

func GetSliceInPhyFormatConst[T any](vec *Vector) []T {
	util.AssertFunc(vec.PhyFormat().IsConst() || vec.PhyFormat().IsFlat())
	pSize := vec.Typ().GetInternalType().Size()
	return util.ToSlice[T](vec.Data, pSize)
}

func IsNullInPhyFormatConst(vec *Vector) bool {
	util.AssertFunc(vec.PhyFormat().IsConst())
	return !vec.Mask.RowIsValid(0)
}

func SetNullInPhyFormatConst(vec *Vector, null bool) {
	util.AssertFunc(vec.PhyFormat().IsConst())
	vec.Mask.Set(0, !null)
	if null && vec.Typ().GetInternalType() == common.STRUCT {
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			child.SetPhyFormat(PF_CONST)
			SetNullInPhyFormatConst(child, true)
		}
	}
}

func ZeroSelectVectorInPhyFormatConst(cnt int, sel *SelectVector) *SelectVector {
	return ZeroSelectVector(cnt, sel)
}

func GetMaskInPhyFormatConst(vec *Vector) *util.Bitmap {
	util.AssertFunc(vec.PhyFormat().IsConst())
	return vec.Mask
}

// ReferenceInPhyFormatConst makes vec the constant of row pos of src.
func ReferenceInPhyFormatConst(
	vec *Vector,
	src *Vector,
	pos int,
	count int,
) {
	value := src.GetValue(pos)
	vec.ReferenceValue(value)
	util.AssertFunc(vec.PhyFormat().IsConst())
}

// flat vector
func GetDataInPhyFormatFlat(vec *Vector) []byte {
	return GetDataInPhyFormatConst(vec)
}

func GetSliceInPhyFormatFlat[T any](vec *Vector) []T {
	return GetSliceInPhyFormatConst[T](vec)
}

func GetMaskInPhyFormatFlat(vec *Vector) *util.Bitmap {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	return vec.Mask
}

func SetNullInPhyFormatFlat(vec *Vector, idx uint64, null bool) {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	vec.Mask.Set(idx, !null)
	if null && vec.Typ().GetInternalType() == common.STRUCT {
		for _, child := range GetChildrenInPhyFormatStruct(vec) {
			child.Flatten(int(idx) + 1)
			SetNullInPhyFormatFlat(child, idx, true)
		}
	}
}

func IncrSelectVectorInPhyFormatFlat() *SelectVector {
	return &SelectVector{}
}

// dictionary vector
func GetSelVectorInPhyFormatDict(vec *Vector) *SelectVector {
	util.AssertFunc(vec.PhyFormat().IsDict())
	return vec.Buf.GetSelVector()
}

func GetChildInPhyFormatDict(vec *Vector) *Vector {
	util.AssertFunc(vec.PhyFormat().IsDict())
	return vec.Aux.Child
}

// struct vector
func GetChildrenInPhyFormatStruct(vec *Vector) []*Vector {
	for vec.PhyFormat().IsDict() {
		vec = GetChildInPhyFormatDict(vec)
	}
	util.AssertFunc(vec.Typ().Id == common.LTID_STRUCT)
	util.AssertFunc(vec.Aux != nil && vec.Aux.BufTyp == VBT_STRUCT)
	return vec.Aux.Children
}

// list vector
func GetChildInPhyFormatList(vec *Vector) *Vector {
	for vec.PhyFormat().IsDict() {
		vec = GetChildInPhyFormatDict(vec)
	}
	return getListBuffer(vec).Child
}

func getListBuffer(vec *Vector) *VecBuffer {
	util.AssertFunc(vec.Typ().Id == common.LTID_LIST)
	util.AssertFunc(vec.Aux != nil && vec.Aux.BufTyp == VBT_LIST)
	return vec.Aux
}

func GetListSize(vec *Vector) int {
	for vec.PhyFormat().IsDict() {
		vec = GetChildInPhyFormatDict(vec)
	}
	return getListBuffer(vec).Size
}

func SetListSize(vec *Vector, size int) {
	buf := getListBuffer(vec)
	util.AssertFunc(size <= buf.Capacity)
	buf.Size = size
}

func ListReserve(vec *Vector, cap int) {
	getListBuffer(vec).Reserve(cap)
}

// ListAppend appends the rows sel[srcOffset:srcCount) of source to the
// element vector of target.
func ListAppend(target *Vector, source *Vector, sel *SelectVector, srcCount int, srcOffset int) {
	if srcCount <= srcOffset {
		return
	}
	buf := getListBuffer(target)
	util.AssertFunc(buf.Child.Typ().Equal(source.Typ()))
	newSize := buf.Size + srcCount - srcOffset
	buf.Reserve(newSize)
	Copy(source, buf.Child, sel, srcCount, srcOffset, buf.Size)
	buf.Size = newSize
}

func ListPushBack(target *Vector, val *Value) {
	buf := getListBuffer(target)
	buf.Reserve(buf.Size + 1)
	buf.Child.SetValue(buf.Size, val)
	buf.Size++
}

// string vector
func getStringBuffer(vec *Vector) *VecBuffer {
	util.AssertFunc(vec.Typ().GetInternalType() == common.VARCHAR)
	if vec.Aux == nil {
		vec.Aux = NewStringBuffer()
	}
	util.AssertFunc(vec.Aux.BufTyp == VBT_STRING)
	return vec.Aux
}

// AddString copies s into the string heap of vec.
func AddString(vec *Vector, s string) common.String {
	return getStringBuffer(vec).Heap.AddString(s)
}

func AddStringOrBlob(vec *Vector, data []byte) common.String {
	return getStringBuffer(vec).Heap.AddBlob(data)
}

func EmptyString(vec *Vector, n int) common.String {
	return getStringBuffer(vec).Heap.EmptyString(n)
}

// AddHeapReference keeps the strings of other alive as long as vec.
func AddHeapReference(vec *Vector, other *Vector) {
	for other.PhyFormat().IsDict() {
		other = GetChildInPhyFormatDict(other)
	}
	if other.Aux == nil || other.Aux.BufTyp != VBT_STRING {
		return
	}
	getStringBuffer(vec).AddHeapReference(other.Aux)
}

func NewVector(lTyp common.LType, initData bool, cap int) *Vector {
	vec := &Vector{
		_PhyFormat: PF_FLAT,
		_Typ:       lTyp,
		Mask:       &util.Bitmap{},
	}
	if initData {
		vec.Init(cap)
	}
	return vec
}

func NewVector2(lTyp common.LType, cap int) *Vector {
	return NewVector(lTyp, true, cap)
}

func NewFlatVector(lTyp common.LType, cap int) *Vector {
	return NewVector2(lTyp, cap)
}

func NewConstVector(lTyp common.LType) *Vector {
	vec := NewVector2(lTyp, 1)
	vec.SetPhyFormat(PF_CONST)
	if lTyp.GetInternalType() == common.STRUCT {
		for _, child := range vec.Aux.Children {
			child.SetPhyFormat(PF_CONST)
		}
	}
	return vec
}

func NewConstVectorFromValue(val *Value) *Vector {
	vec := NewVector(val.Typ, false, 0)
	vec.ReferenceValue(val)
	return vec
}

func NewSequenceVector(typ common.LType, start, incr int64, count int) *Vector {
	vec := NewVector(typ, false, 0)
	vec.Sequence(start, incr, count)
	return vec
}

func NewEmptyVector(typ common.LType, pf PhyFormat, cap int) *Vector {
	var vec *Vector
	switch pf {
	case PF_FLAT:
		vec = NewFlatVector(typ, cap)
	case PF_CONST:
		vec = NewConstVector(typ)
	default:
		panic("usp")
	}
	return vec
}

// NewManagedVector places a flat fixed-width vector of cap rows
// on a buffer pool allocation.
func NewManagedVector(typ common.LType, handle BufferHandle, cap int) *Vector {
	pTyp := typ.GetInternalType()
	util.AssertFunc(pTyp.IsConstant())
	buf := NewManagedBuffer(handle)
	sz := pTyp.Size() * cap
	util.AssertFunc(len(buf.Data) >= sz)
	vec := NewVector(typ, false, cap)
	vec.Buf = buf
	vec.Data = buf.Data[:sz:sz]
	return vec
}

// NewOpaqueVector wraps caller owned bytes as a flat vector.
func NewOpaqueVector(typ common.LType, data []byte) *Vector {
	util.AssertFunc(typ.GetInternalType().IsConstant())
	vec := NewVector(typ, false, 0)
	vec.Buf = NewOpaqueBuffer(data)
	vec.Data = data
	return vec
}

func NewVarcharFlatVector(v []string, sz int) *Vector {
	vec := NewFlatVector(common.VarcharType(), sz)
	data := GetSliceInPhyFormatFlat[common.String](vec)
	for i := 0; i < len(v); i++ {
		data[i] = AddString(vec, v[i])
	}
	return vec
}

func HasNull(input *Vector, count int) bool {
	if count == 0 {
		return false
	}

	if input.PhyFormat() == PF_CONST {
		return IsNullInPhyFormatConst(input)
	} else {
		var data UnifiedFormat
		input.ToUnifiedFormat(count, &data)

		if data.Mask.AllValid() {
			return false
		}
		for i := 0; i < count; i++ {
			idx := data.Sel.GetIndex(i)
			if !data.Mask.RowIsValid(uint64(idx)) {
				return true
			}
		}
		return false
	}
}
