package chunk

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

func newInt32FlatVector(vals []int32, nulls ...int) *Vector {
	vec := NewFlatVector(common.IntegerType(), util.DefaultVectorSize)
	data := GetSliceInPhyFormatFlat[int32](vec)
	copy(data, vals)
	for _, n := range nulls {
		SetNullInPhyFormatFlat(vec, uint64(n), true)
	}
	return vec
}

func collectValues(vec *Vector, count int) []*Value {
	ret := make([]*Value, count)
	for i := 0; i < count; i++ {
		ret[i] = vec.GetValue(i)
	}
	return ret
}

func assertValues(t *testing.T, expect []*Value, vec *Vector) {
	t.Helper()
	for i, val := range expect {
		got := vec.GetValue(i)
		assert.True(t, val.Equal(got), "row %d: expect %v got %v", i, val, got)
	}
}

func Test_selectVectorSlice(t *testing.T) {
	a := NewSelectVector3([]uint32{3, 1, 2, 0})
	b := NewSelectVector3([]uint32{2, 2, 0})
	c := NewSelectVector3(a.Slice(b, 3))
	for i := 0; i < 3; i++ {
		assert.Equal(t, a.GetIndex(b.GetIndex(i)), c.GetIndex(i))
	}
	assert.Equal(t, []uint32{2, 2, 3}, c.SelVec)

	identity := &SelectVector{}
	assert.Equal(t, 7, identity.GetIndex(7))
	assert.Equal(t, []uint32{3, 1}, a.Slice(identity, 2))
	assert.Equal(t, 4, a.MaxIndex(4))

	zero := ZeroSelectVector(5, &SelectVector{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, zero.GetIndex(i))
	}
}

func Test_valueRoundTrip(t *testing.T) {
	dec, err := common.NewDecimal(12345, 2)
	require.NoError(t, err)
	structTyp := common.StructType(
		[]string{"a", "b"},
		[]common.LType{common.IntegerType(), common.VarcharType()})

	vals := []*Value{
		NewBooleanValue(true),
		{Typ: common.TinyintType(), I64: -7},
		{Typ: common.SmallintType(), I64: 300},
		NewIntegerValue(-42),
		NewBigintValue(1 << 40),
		{Typ: common.UintegerType(), U64: 7},
		NewUbigintValue(1 << 63),
		{Typ: common.FloatType(), F64: 1.5},
		NewDoubleValue(2.25),
		NewHugeintValue(common.Hugeint{Upper: 1, Lower: 2}),
		NewVarcharValue("short"),
		NewVarcharValue("a string longer than twelve bytes"),
		NewDateValue(common.Date{Year: 2024, Month: 2, Day: 29}),
		NewIntervalValue(common.Interval{Months: 1, Days: 2, Micros: 3}),
		NewDecimalValue(dec, 10, 2),
		NewStructValue(structTyp, []*Value{NewIntegerValue(1), NewVarcharValue("x")}),
		NewListValue(common.IntegerType(),
			[]*Value{NewIntegerValue(1), NewIntegerValue(2), NewIntegerValue(3)}),
		NewNullValue(common.IntegerType()),
	}
	for _, val := range vals {
		vec := NewConstVectorFromValue(val)
		require.True(t, vec.PhyFormat().IsConst())
		got := vec.GetValue(0)
		assert.True(t, val.Equal(got), "%v: expect %v got %v", val.Typ, val, got)

		//every row of a constant is the value
		vec.Flatten(3)
		require.True(t, vec.PhyFormat().IsFlat())
		got = vec.GetValue(2)
		assert.True(t, val.Equal(got), "%v: expect %v got %v", val.Typ, val, got)

		flat := NewFlatVector(val.Typ, util.DefaultVectorSize)
		flat.SetValue(5, val)
		got = flat.GetValue(5)
		assert.True(t, val.Equal(got), "%v: expect %v got %v", val.Typ, val, got)
	}
}

// unifiedValue reads row of a vector through its unified format.
func unifiedValue(typ common.LType, uf *UnifiedFormat, row int) *Value {
	idx := uf.Sel.GetIndex(row)
	if !uf.Mask.RowIsValid(uint64(idx)) {
		return NewNullValue(typ)
	}
	ret := &Value{Typ: typ}
	switch typ.GetInternalType() {
	case common.BOOL:
		ret.Bool = GetSliceInPhyFormatUnifiedFormat[bool](uf)[idx]
	case common.INT8:
		ret.I64 = int64(GetSliceInPhyFormatUnifiedFormat[int8](uf)[idx])
	case common.INT16:
		ret.I64 = int64(GetSliceInPhyFormatUnifiedFormat[int16](uf)[idx])
	case common.INT32:
		ret.I64 = int64(GetSliceInPhyFormatUnifiedFormat[int32](uf)[idx])
	case common.INT64:
		ret.I64 = GetSliceInPhyFormatUnifiedFormat[int64](uf)[idx]
	case common.UINT8:
		ret.U64 = uint64(GetSliceInPhyFormatUnifiedFormat[uint8](uf)[idx])
	case common.UINT16:
		ret.U64 = uint64(GetSliceInPhyFormatUnifiedFormat[uint16](uf)[idx])
	case common.UINT32:
		ret.U64 = uint64(GetSliceInPhyFormatUnifiedFormat[uint32](uf)[idx])
	case common.UINT64:
		ret.U64 = GetSliceInPhyFormatUnifiedFormat[uint64](uf)[idx]
	case common.FLOAT:
		ret.F64 = float64(GetSliceInPhyFormatUnifiedFormat[float32](uf)[idx])
	case common.DOUBLE:
		ret.F64 = GetSliceInPhyFormatUnifiedFormat[float64](uf)[idx]
	case common.INTERVAL:
		iv := GetSliceInPhyFormatUnifiedFormat[common.Interval](uf)[idx]
		ret.I64, ret.I64_1, ret.I64_2 = int64(iv.Months), int64(iv.Days), iv.Micros
	case common.INT128:
		h := GetSliceInPhyFormatUnifiedFormat[common.Hugeint](uf)[idx]
		ret.I64, ret.U64 = h.Upper, h.Lower
	case common.DECIMAL:
		ret.Dec = GetSliceInPhyFormatUnifiedFormat[common.Decimal](uf)[idx]
	case common.VARCHAR:
		ret.Str = GetSliceInPhyFormatUnifiedFormat[common.String](uf)[idx].String()
	case common.DATE:
		d := GetSliceInPhyFormatUnifiedFormat[common.Date](uf)[idx]
		ret.I64, ret.I64_1, ret.I64_2 = int64(d.Year), int64(d.Month), int64(d.Day)
	default:
		panic(fmt.Sprintf("usp %v", typ))
	}
	return ret
}

func Test_valueThroughUnifiedFormat(t *testing.T) {
	dec, err := common.NewDecimal(-98765, 3)
	require.NoError(t, err)
	vals := []*Value{
		NewBooleanValue(true),
		{Typ: common.TinyintType(), I64: -7},
		{Typ: common.SmallintType(), I64: -300},
		NewIntegerValue(17),
		NewBigintValue(-1 << 40),
		{Typ: common.MakeLType(common.LTID_UTINYINT), U64: 200},
		{Typ: common.MakeLType(common.LTID_USMALLINT), U64: 60000},
		{Typ: common.UintegerType(), U64: 1 << 31},
		NewUbigintValue(1 << 63),
		{Typ: common.FloatType(), F64: -0.75},
		NewDoubleValue(2.25),
		NewIntervalValue(common.Interval{Months: 1, Days: 2, Micros: 3}),
		NewHugeintValue(common.Hugeint{Upper: -2, Lower: 9}),
		NewDecimalValue(dec, 10, 3),
		NewVarcharValue("short"),
		NewVarcharValue("a string longer than twelve bytes"),
		NewDateValue(common.Date{Year: 2024, Month: 2, Day: 29}),
	}
	encodings := map[string]func(val *Value) (*Vector, []int){
		"flat": func(val *Value) (*Vector, []int) {
			vec := NewEmptyVector(val.Typ, PF_FLAT, util.DefaultVectorSize)
			vec.SetValue(2, val)
			return vec, []int{2}
		},
		"const": func(val *Value) (*Vector, []int) {
			vec := NewEmptyVector(val.Typ, PF_CONST, 0)
			vec.SetValue(0, val)
			return vec, []int{0, 1, 3}
		},
		"dict": func(val *Value) (*Vector, []int) {
			child := NewFlatVector(val.Typ, util.DefaultVectorSize)
			child.SetValue(5, val)
			vec := NewVector(val.Typ, false, 0)
			vec.Slice(child, NewSelectVector3([]uint32{5, 0, 5}), 3)
			return vec, []int{0, 2}
		},
	}
	for name, build := range encodings {
		for _, val := range vals {
			for _, v := range []*Value{val, NewNullValue(val.Typ)} {
				vec, rows := build(v)
				var uf UnifiedFormat
				vec.ToUnifiedFormat(rows[len(rows)-1]+1, &uf)
				for _, row := range rows {
					got := unifiedValue(v.Typ, &uf, row)
					assert.True(t, v.Equal(got), "%s %v row %d: expect %v got %v",
						name, v.Typ, row, v, got)
				}
			}
		}
	}
}

func Test_flattenConstStructKeepsSource(t *testing.T) {
	structTyp := common.StructType(
		[]string{"a", "b"},
		[]common.LType{common.IntegerType(), common.VarcharType()})
	val := NewStructValue(structTyp, []*Value{
		NewIntegerValue(7),
		NewVarcharValue("a string longer than twelve bytes"),
	})
	src := NewConstVectorFromValue(val)
	require.NoError(t, src.Verify(3))

	vec := NewVector(structTyp, false, 0)
	vec.Reference(src)
	vec.Flatten(3)
	require.True(t, vec.PhyFormat().IsFlat())
	require.NoError(t, vec.Verify(3))

	require.NoError(t, src.Verify(3))
	assert.True(t, src.PhyFormat().IsConst())
	for _, child := range GetChildrenInPhyFormatStruct(src) {
		assert.True(t, child.PhyFormat().IsConst())
	}
	for i := 0; i < 3; i++ {
		assert.True(t, val.Equal(vec.GetValue(i)))
		assert.True(t, val.Equal(src.GetValue(i)))
	}

	//writes into the flat copy do not reach the source
	GetChildrenInPhyFormatStruct(vec)[0].SetValue(1, NewIntegerValue(8))
	assert.Equal(t, int64(8), vec.GetValue(1).Children[0].I64)
	assert.Equal(t, int64(7), src.GetValue(1).Children[0].I64)
}

func Test_debugVerify(t *testing.T) {
	good := NewFlatVector(common.IntegerType(), util.DefaultVectorSize)
	assert.NotPanics(t, func() { good.DebugVerify(3) })

	bad := NewFlatVector(common.IntegerType(), util.DefaultVectorSize)
	bad.Mask = nil
	require.Error(t, bad.Verify(3))
	if util.DebugMode {
		assert.Panics(t, func() { bad.DebugVerify(3) })
	} else {
		assert.NotPanics(t, func() { bad.DebugVerify(3) })
	}
}

func Test_flattenTransparency(t *testing.T) {
	const n = 10
	vals := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	builders := map[string]func() *Vector{
		"flat": func() *Vector {
			return newInt32FlatVector(vals, 1, 7)
		},
		"const": func() *Vector {
			return NewConstVectorFromValue(NewIntegerValue(5))
		},
		"const null": func() *Vector {
			return NewConstVectorFromValue(NewNullValue(common.IntegerType()))
		},
		"dict over flat": func() *Vector {
			child := newInt32FlatVector(vals, 3)
			sel := NewSelectVector3([]uint32{9, 3, 3, 0, 1, 2, 8, 7, 6, 5})
			vec := NewVector(common.IntegerType(), false, 0)
			vec.Slice(child, sel, n)
			return vec
		},
		"dict over const": func() *Vector {
			child := NewConstVectorFromValue(NewIntegerValue(8))
			vec := NewVector(common.IntegerType(), false, 0)
			vec.Reference(child)
			vec.SliceOnSelf(NewSelectVector3([]uint32{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}), n)
			return vec
		},
		"sequence": func() *Vector {
			return NewSequenceVector(common.IntegerType(), 100, -3, n)
		},
		"dict over sequence": func() *Vector {
			seq := NewSequenceVector(common.IntegerType(), 5, 2, n)
			vec := NewVector(common.IntegerType(), false, 0)
			vec.Slice(seq, NewSelectVector3([]uint32{4, 4, 1, 0, 9, 8, 2, 2, 3, 3}), n)
			return vec
		},
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			vec := build()
			require.NoError(t, vec.Verify(n))
			expect := collectValues(vec, n)

			var uf UnifiedFormat
			vec.ToUnifiedFormat(n, &uf)
			data := GetSliceInPhyFormatUnifiedFormat[int32](&uf)
			for i := 0; i < n; i++ {
				idx := uf.Sel.GetIndex(i)
				valid := uf.Mask.RowIsValid(uint64(idx))
				require.Equal(t, !expect[i].IsNull, valid, "row %d", i)
				if valid {
					assert.Equal(t, expect[i].I64, int64(data[idx]), "row %d", i)
				}
			}

			vec.Flatten(n)
			assert.True(t, vec.PhyFormat().IsFlat())
			require.NoError(t, vec.Verify(n))
			assertValues(t, expect, vec)

			//idempotent
			vec.Flatten(n)
			assertValues(t, expect, vec)
		})
	}
}

func Test_dictionaryFlattenStrings(t *testing.T) {
	child := NewVarcharFlatVector([]string{"a", "b", "c"}, util.DefaultVectorSize)
	vec := NewVector(common.VarcharType(), false, 0)
	vec.Slice(child, NewSelectVector3([]uint32{2, 0, 2}), 3)
	require.True(t, vec.PhyFormat().IsDict())

	vec.Flatten(3)
	require.True(t, vec.PhyFormat().IsFlat())
	data := GetSliceInPhyFormatFlat[common.String](vec)
	got := []string{data[0].String(), data[1].String(), data[2].String()}
	assert.Equal(t, []string{"c", "a", "c"}, got)
}

func Test_dictionaryCollapse(t *testing.T) {
	child := newInt32FlatVector([]int32{10, 11, 12, 13, 14})
	vec := NewVector(common.IntegerType(), false, 0)
	vec.Slice(child, NewSelectVector3([]uint32{4, 3, 2, 1, 0}), 5)
	vec.SliceOnSelf(NewSelectVector3([]uint32{0, 0, 4}), 3)

	require.True(t, vec.PhyFormat().IsDict())
	assert.True(t, GetChildInPhyFormatDict(vec).PhyFormat().IsFlat())
	assert.Equal(t, []uint32{4, 4, 0}, GetSelVectorInPhyFormatDict(vec).SelVec)
	assertValues(t, []*Value{
		NewIntegerValue(14),
		NewIntegerValue(14),
		NewIntegerValue(10),
	}, vec)

	//slicing a chunk that already is a dictionary
	other := NewVector(common.IntegerType(), false, 0)
	other.Slice(vec, NewSelectVector3([]uint32{2, 1}), 2)
	assert.True(t, GetChildInPhyFormatDict(other).PhyFormat().IsFlat())
	assertValues(t, []*Value{NewIntegerValue(10), NewIntegerValue(14)}, other)
}

func Test_referenceSharesMask(t *testing.T) {
	src := newInt32FlatVector([]int32{1, 2, 3}, 1)
	ref := NewVector(common.IntegerType(), false, 0)
	ref.Reference(src)
	assert.False(t, ref.GetValue(0).IsNull)
	assert.True(t, ref.GetValue(1).IsNull)

	//writing through the alias leaves the source mask alone
	SetNullInPhyFormatFlat(ref, 0, true)
	assert.True(t, ref.GetValue(0).IsNull)
	assert.False(t, src.GetValue(0).IsNull)

	//the data is shared
	GetSliceInPhyFormatFlat[int32](ref)[2] = 33
	assert.Equal(t, int64(33), src.GetValue(2).I64)
}

func Test_sliceRange(t *testing.T) {
	vals := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	src := newInt32FlatVector(vals, 5)
	vec := NewVector(common.IntegerType(), false, 0)
	vec.Slice3(src, 3, 8)
	for i := 0; i < 5; i++ {
		val := vec.GetValue(i)
		if i == 2 {
			assert.True(t, val.IsNull)
			continue
		}
		assert.Equal(t, int64(i+3), val.I64)
	}

	seq := NewSequenceVector(common.BigintType(), 10, 5, 10)
	vec = NewVector(common.BigintType(), false, 0)
	vec.Slice3(seq, 2, 4)
	assert.True(t, vec.PhyFormat().IsSequence())
	assert.Equal(t, int64(20), vec.GetValue(0).I64)
	assert.Equal(t, int64(25), vec.GetValue(1).I64)
}

func Test_copyWithSelection(t *testing.T) {
	src := NewVarcharFlatVector([]string{
		"zero",
		"one, which is longer than twelve",
		"two",
		"three, also longer than twelve",
	}, util.DefaultVectorSize)
	SetNullInPhyFormatFlat(src, 2, true)

	dst := NewFlatVector(common.VarcharType(), util.DefaultVectorSize)
	Copy(src, dst, NewSelectVector3([]uint32{3, 2, 1}), 3, 0, 1)

	assert.False(t, dst.GetValue(0).IsNull)
	assert.Equal(t, "three, also longer than twelve", dst.GetValue(1).Str)
	assert.True(t, dst.GetValue(2).IsNull)
	assert.Equal(t, "one, which is longer than twelve", dst.GetValue(3).Str)
	//the source heap is pinned by dst
	assert.Contains(t, dst.Aux.References(), src.Aux)
}

func Test_copyNested(t *testing.T) {
	structTyp := common.StructType(
		[]string{"id", "tags"},
		[]common.LType{common.IntegerType(), common.ListType(common.VarcharType())})
	src := NewFlatVector(structTyp, util.DefaultVectorSize)
	rows := []*Value{
		NewStructValue(structTyp, []*Value{
			NewIntegerValue(1),
			NewListValue(common.VarcharType(), []*Value{NewVarcharValue("a"), NewVarcharValue("b")}),
		}),
		NewNullValue(structTyp),
		NewStructValue(structTyp, []*Value{
			NewIntegerValue(3),
			NewListValue(common.VarcharType(), nil),
		}),
	}
	for i, row := range rows {
		src.SetValue(i, row)
	}
	require.NoError(t, src.Verify(3))

	dst := NewFlatVector(structTyp, util.DefaultVectorSize)
	Copy(src, dst, NewSelectVector3([]uint32{2, 1, 0}), 3, 0, 0)
	require.NoError(t, dst.Verify(3))
	assertValues(t, []*Value{rows[2], rows[1], rows[0]}, dst)
}

func Test_listAppendGrows(t *testing.T) {
	vec := NewFlatVector(common.ListType(common.BigintType()), util.DefaultVectorSize)
	elems := make([]*Value, 0)
	for i := 0; i < 3000; i++ {
		elems = append(elems, NewBigintValue(int64(i)))
	}
	vec.SetValue(0, NewListValue(common.BigintType(), elems))
	assert.Equal(t, 3000, GetListSize(vec))
	assert.GreaterOrEqual(t, getListBuffer(vec).Capacity, 3000)

	got := vec.GetValue(0)
	require.Len(t, got.Children, 3000)
	assert.Equal(t, int64(2999), got.Children[2999].I64)
}

func Test_serializeVector(t *testing.T) {
	src := newInt32FlatVector([]int32{1, 2, 3, 4}, 2)
	dict := NewVector(common.IntegerType(), false, 0)
	dict.Slice(src, NewSelectVector3([]uint32{3, 2, 1, 0}), 4)

	serial := &util.BufferSerialize{}
	require.NoError(t, dict.Serialize(4, serial))

	out := NewFlatVector(common.IntegerType(), util.DefaultVectorSize)
	require.NoError(t, out.Deserialize(4, util.NewBufferDeserialize(serial.Bytes())))
	assertValues(t, collectValues(dict, 4), out)
}

func Test_storageRoundTrip(t *testing.T) {
	src := NewFlatVector(common.BigintType(), util.DefaultVectorSize)
	for i := 0; i < 4; i++ {
		src.SetValue(i, NewBigintValue(int64(i*10)))
	}
	SetNullInPhyFormatFlat(src, 1, true)

	buf := make([]int64, 4)
	WriteToStorage(src, 4, util.BytesSliceToPointer2(buf))
	assert.Equal(t, []int64{0, 0, 20, 30}, buf)

	res := NewFlatVector(common.BigintType(), util.DefaultVectorSize)
	ReadFromStorage(util.BytesSliceToPointer2(buf), 4, res)
	assert.Equal(t, int64(30), res.GetValue(3).I64)
}

func Test_hashIgnoresEncoding(t *testing.T) {
	vals := []int32{5, 6, 7, 8}
	flat := newInt32FlatVector(vals, 1)
	dict := NewVector(common.IntegerType(), false, 0)
	dict.Slice(flat, NewSelectVector3([]uint32{0, 1, 2, 3}), 4)

	h1 := NewFlatVector(common.HashType(), util.DefaultVectorSize)
	h2 := NewFlatVector(common.HashType(), util.DefaultVectorSize)
	HashTypeSwitch(flat, h1, nil, 4, false)
	HashTypeSwitch(dict, h2, nil, 4, false)
	d1 := GetSliceInPhyFormatFlat[uint64](h1)
	d2 := GetSliceInPhyFormatFlat[uint64](h2)
	assert.Equal(t, d1[:4], d2[:4])
	assert.Equal(t, uint64(NULL_HASH), d1[1])

	cst := NewConstVectorFromValue(NewIntegerValue(5))
	h3 := NewFlatVector(common.HashType(), util.DefaultVectorSize)
	HashTypeSwitch(cst, h3, nil, 4, false)
	assert.True(t, h3.PhyFormat().IsConst())
	assert.Equal(t, d1[0], GetSliceInPhyFormatConst[uint64](h3)[0])

	//combining with a constant hash flattens it
	CombineHashTypeSwitch(h3, flat, nil, 4, false)
	assert.True(t, h3.PhyFormat().IsFlat())
	d3 := GetSliceInPhyFormatFlat[uint64](h3)
	assert.Equal(t, CombineHashScalar(d1[0], d1[2]), d3[2])
}

type testHandle struct {
	data     []byte
	released int
}

func (h *testHandle) Data() []byte {
	return h.data
}

func (h *testHandle) Release() {
	h.released++
}

func Test_managedAndOpaqueVector(t *testing.T) {
	handle := &testHandle{data: make([]byte, 64)}
	vec := NewManagedVector(common.BigintType(), handle, 8)
	assert.Equal(t, 8, vec.Capacity())
	vec.SetValue(7, NewBigintValue(77))
	assert.Equal(t, int64(77), util.ToSlice[int64](handle.data, 8)[7])

	vec.Buf.Release()
	vec.Buf.Release()
	assert.Equal(t, 1, handle.released)

	raw := []int32{4, 5, 6}
	opaque := NewOpaqueVector(common.IntegerType(), util.ToBytes(raw))
	assert.Equal(t, int64(6), opaque.GetValue(2).I64)
	assert.Equal(t, VBT_OPAQUE, opaque.Buf.BufTyp)
}

func Test_fillRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, typ := range []common.LType{
		common.IntegerType(),
		common.BigintType(),
		common.DoubleType(),
		common.VarcharType(),
		common.DateType(),
		common.DecimalType(10, 2),
	} {
		vec := NewFlatVector(typ, util.DefaultVectorSize)
		FillRandom(vec, 200, 0.5, rng)
		valid := vec.Mask.CountValid(200)
		assert.Greater(t, valid, 0, "%v", typ)
		assert.Less(t, valid, 200, "%v", typ)
		require.NoError(t, vec.Verify(200))
	}
}

func Test_verifyAndTree(t *testing.T) {
	child := NewVarcharFlatVector([]string{"a", "b"}, util.DefaultVectorSize)
	vec := NewVector(common.VarcharType(), false, 0)
	vec.Slice(child, NewSelectVector3([]uint32{1, 0, 1}), 3)
	require.NoError(t, vec.Verify(3))
	tree := vec.Tree(3).String()
	assert.Contains(t, tree, "dictionary")
	assert.Contains(t, tree, "[1,0,1]")

	broken := NewVector(common.IntegerType(), false, 0)
	broken._PhyFormat = PF_DICT
	err := broken.Verify(3)
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func Test_hasNull(t *testing.T) {
	assert.False(t, HasNull(newInt32FlatVector([]int32{1, 2, 3}), 3))
	assert.True(t, HasNull(newInt32FlatVector([]int32{1, 2, 3}, 2), 3))
	assert.False(t, HasNull(newInt32FlatVector([]int32{1, 2, 3}, 2), 2))
	assert.True(t, HasNull(NewConstVectorFromValue(NewNullValue(common.IntegerType())), 3))
}
