package compute

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

func newFlat[T any](typ common.LType, vals []T, nulls ...int) *chunk.Vector {
	vec := chunk.NewFlatVector(typ, max(len(vals), util.DefaultVectorSize))
	copy(chunk.GetSliceInPhyFormatFlat[T](vec), vals)
	for _, idx := range nulls {
		chunk.SetNullInPhyFormatFlat(vec, uint64(idx), true)
	}
	return vec
}

func newConst(val *chunk.Value) *chunk.Vector {
	return chunk.NewConstVectorFromValue(val)
}

func identityDict(vec *chunk.Vector, count int) *chunk.Vector {
	sel := chunk.NewSelectVector(count)
	for i := 0; i < count; i++ {
		sel.SetIndex(i, i)
	}
	dict := chunk.NewVector(vec.Typ(), false, 0)
	dict.Slice(vec, sel, count)
	return dict
}

func assertSameRows(t *testing.T, expect, got *chunk.Vector, count int, msg string) {
	t.Helper()
	for i := 0; i < count; i++ {
		e := expect.GetValue(i)
		g := got.GetValue(i)
		require.True(t, e.Equal(g), "%s row %d: %v vs %v", msg, i, e, g)
	}
}

func Test_binaryAddConstant(t *testing.T) {
	left := newFlat[int32](common.IntegerType(), []int32{1, 0, 3}, 1)
	right := newConst(chunk.NewIntegerValue(10))
	result := chunk.NewFlatVector(common.IntegerType(), util.DefaultVectorSize)

	BinaryExecute[int32, int32, int32](left, right, result, 3, addOp[int32])

	assert.Equal(t, chunk.PF_FLAT, result.PhyFormat())
	assert.Equal(t, int64(11), result.GetValue(0).I64)
	assert.True(t, result.GetValue(1).IsNull)
	assert.Equal(t, int64(13), result.GetValue(2).I64)
	//the result borrows the validity of left
	assert.True(t, result.Mask.Shared())
}

func Test_binaryDispatchPathsAgree(t *testing.T) {
	const n = 300
	rng := rand.New(rand.NewPCG(1, 2))
	b := chunk.NewFlatVector(common.IntegerType(), n)
	chunk.FillRandom(b, n, 0.2, rng)
	a := chunk.NewFlatVector(common.IntegerType(), n)
	chunk.FillRandom(a, n, 0.2, rng)

	exec := func(l, r *chunk.Vector) *chunk.Vector {
		res := chunk.NewFlatVector(common.IntegerType(), n)
		BinaryExecute[int32, int32, int32](l, r, res, n, addOp[int32])
		return res
	}

	//flat/flat against the generic path
	expect := exec(a, b)
	assertSameRows(t, expect, exec(identityDict(a, n), b), n, "dict")
	assertSameRows(t, expect, exec(b, identityDict(a, n)), n, "commuted dict")

	//a constant against the same value repeated in a flat vector
	seven := newConst(chunk.NewIntegerValue(7))
	repeated := newFlat[int32](common.IntegerType(), make([]int32, n))
	util.Fill(chunk.GetSliceInPhyFormatFlat[int32](repeated), n, 7)
	expect = exec(repeated, b)
	assertSameRows(t, expect, exec(seven, b), n, "const/flat")
	assertSameRows(t, expect, exec(b, seven), n, "flat/const")
	assertSameRows(t, expect, exec(chunk.NewSequenceVector(common.IntegerType(), 7, 0, n), b), n, "sequence")

	//const/const against flat/flat of length one
	res := exec(newConst(chunk.NewIntegerValue(3)), newConst(chunk.NewIntegerValue(4)))
	assert.Equal(t, chunk.PF_CONST, res.PhyFormat())
	flat := exec(newFlat[int32](common.IntegerType(), []int32{3}), newFlat[int32](common.IntegerType(), []int32{4}))
	assertSameRows(t, flat, res, 1, "const/const")
}

func Test_binaryNullConstant(t *testing.T) {
	left := newConst(chunk.NewNullValue(common.BigintType()))
	right := newFlat[int64](common.BigintType(), []int64{1, 2, 3})
	result := chunk.NewFlatVector(common.BigintType(), util.DefaultVectorSize)
	called := 0
	BinaryExecute[int64, int64, int64](left, right, result, 3, func(l, r, res *int64) {
		called++
	})
	assert.Equal(t, 0, called)
	assert.Equal(t, chunk.PF_CONST, result.PhyFormat())
	assert.True(t, result.GetValue(2).IsNull)

	BinaryExecute[int64, int64, int64](left, newConst(chunk.NewBigintValue(1)), result, 3, addOp[int64])
	assert.Equal(t, 0, called)
	assert.True(t, chunk.IsNullInPhyFormatConst(result))
}

func Test_binaryEntryBatching(t *testing.T) {
	const n = 200
	vals := make([]int64, n)
	nulls := []int{130}
	for i := 64; i < 128; i++ {
		nulls = append(nulls, i)
	}
	left := newFlat[int64](common.BigintType(), vals, nulls...)
	right := newFlat[int64](common.BigintType(), vals)
	result := chunk.NewFlatVector(common.BigintType(), n)
	called := 0
	BinaryExecute[int64, int64, int64](left, right, result, n, func(l, r, res *int64) {
		called++
	})
	assert.Equal(t, n-65, called)
	assert.Equal(t, n-65, result.Mask.CountValid(n))
}

func Test_binaryWithNullsCopiesMask(t *testing.T) {
	left := newFlat[int64](common.BigintType(), []int64{10, 20, 30, 40}, 3)
	right := newFlat[int64](common.BigintType(), []int64{2, 0, 5, 1})
	result := chunk.NewFlatVector(common.BigintType(), util.DefaultVectorSize)

	BinaryExecuteWithNulls[int64, int64, int64](left, right, result, 4, divFunc[int64])
	assert.False(t, result.Mask.Shared())
	assert.Equal(t, int64(5), result.GetValue(0).I64)
	assert.True(t, result.GetValue(1).IsNull)
	assert.Equal(t, int64(6), result.GetValue(2).I64)
	assert.True(t, result.GetValue(3).IsNull)
	//inputs are untouched
	assert.False(t, left.GetValue(1).IsNull)
	assert.True(t, right.Mask.AllValid())

	//generic path
	BinaryExecuteWithNulls[int64, int64, int64](identityDict(left, 4), right, result, 4, divFunc[int64])
	assert.True(t, result.GetValue(1).IsNull)
	assert.Equal(t, int64(6), result.GetValue(2).I64)
}

func Test_binaryResultMaskIsReset(t *testing.T) {
	result := chunk.NewFlatVector(common.IntegerType(), util.DefaultVectorSize)
	chunk.SetNullInPhyFormatFlat(result, 1, true)
	left := newSequenceDict(t)
	right := newFlat[int32](common.IntegerType(), []int32{1, 1, 1})
	BinaryExecute[int32, int32, int32](left, right, result, 3, addOp[int32])
	assert.True(t, result.Mask.AllValid())
	assert.Equal(t, int64(3), result.GetValue(1).I64)
}

func newSequenceDict(t *testing.T) *chunk.Vector {
	t.Helper()
	seq := chunk.NewSequenceVector(common.IntegerType(), 0, 2, 3)
	dict := chunk.NewVector(common.IntegerType(), false, 0)
	dict.Slice(seq, chunk.NewSelectVector3([]uint32{0, 1, 2}), 3)
	return dict
}

func Test_unaryExecute(t *testing.T) {
	input := newFlat[int32](common.IntegerType(), []int32{1, -2, 0, 4}, 2)
	result := chunk.NewFlatVector(common.IntegerType(), util.DefaultVectorSize)

	UnaryExecute[int32, int32](input, result, 4, negateOp[int32])
	assert.Equal(t, int64(-1), result.GetValue(0).I64)
	assert.Equal(t, int64(2), result.GetValue(1).I64)
	assert.True(t, result.GetValue(2).IsNull)

	UnaryExecuteWithNulls[int32, int32](input, result, 4,
		func(in *int32, out *int32, mask *util.Bitmap, idx int) {
			if *in < 0 {
				mask.SetInvalid(uint64(idx))
				return
			}
			*out = *in * 2
		})
	assert.Equal(t, int64(2), result.GetValue(0).I64)
	assert.True(t, result.GetValue(1).IsNull)
	assert.True(t, result.GetValue(2).IsNull)
	assert.Equal(t, int64(8), result.GetValue(3).I64)
	assert.False(t, input.GetValue(1).IsNull)

	UnaryExecute[int32, int32](newConst(chunk.NewIntegerValue(5)), result, 4, negateOp[int32])
	assert.Equal(t, chunk.PF_CONST, result.PhyFormat())
	assert.Equal(t, int64(-5), result.GetValue(3).I64)

	UnaryExecute[int32, int32](identityDict(input, 4), result, 4, absOp[int32])
	assert.Equal(t, chunk.PF_FLAT, result.PhyFormat())
	assert.Equal(t, int64(2), result.GetValue(1).I64)
	assert.True(t, result.GetValue(2).IsNull)
}

func Test_ternaryBetween(t *testing.T) {
	x := newFlat[int32](common.IntegerType(), []int32{1, 5, 10, 0}, 3)
	result := chunk.NewFlatVector(common.BooleanType(), util.DefaultVectorSize)
	between := betweenOp(compareOrdered[int32])

	TernaryExecute[int32, int32, int32, bool](x,
		newConst(chunk.NewIntegerValue(2)),
		newConst(chunk.NewIntegerValue(8)),
		result, 4, between)
	expect := []bool{false, true, false}
	for i, b := range expect {
		assert.Equal(t, b, result.GetValue(i).Bool)
	}
	assert.True(t, result.GetValue(3).IsNull)

	TernaryExecute[int32, int32, int32, bool](x,
		newFlat[int32](common.IntegerType(), []int32{0, 0, 0, 0}),
		newFlat[int32](common.IntegerType(), []int32{5, 5, 5, 5}, 0),
		result, 4, between)
	assert.True(t, result.GetValue(0).IsNull)
	assert.True(t, result.GetValue(1).Bool)
	assert.False(t, result.GetValue(2).Bool)
	assert.True(t, result.GetValue(3).IsNull)

	TernaryExecute[int32, int32, int32, bool](
		newConst(chunk.NewIntegerValue(3)),
		newConst(chunk.NewIntegerValue(2)),
		newConst(chunk.NewNullValue(common.IntegerType())),
		result, 4, between)
	assert.Equal(t, chunk.PF_CONST, result.PhyFormat())
	assert.True(t, result.GetValue(0).IsNull)
}

func Test_ternaryWithNulls(t *testing.T) {
	x := newFlat[int32](common.IntegerType(), []int32{1, 5, 10, 0}, 3)
	lo := newFlat[int32](common.IntegerType(), []int32{0, 0, 0, 0})
	hi := newConst(chunk.NewIntegerValue(8))
	result := chunk.NewFlatVector(common.IntegerType(), util.DefaultVectorSize)

	//out of range rows become NULL
	TernaryExecuteWithNulls[int32, int32, int32, int32](x, lo, hi, result, 4,
		func(a *int32, b *int32, c *int32, res *int32, mask *util.Bitmap, idx int) {
			if *a < *b || *a > *c {
				mask.SetInvalid(uint64(idx))
				return
			}
			*res = *a
		})
	assert.Equal(t, int64(1), result.GetValue(0).I64)
	assert.Equal(t, int64(5), result.GetValue(1).I64)
	assert.True(t, result.GetValue(2).IsNull)
	assert.True(t, result.GetValue(3).IsNull)
	assert.True(t, x.Mask.RowIsValid(2))
}

func Test_binarySelect(t *testing.T) {
	vals := []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	left := newFlat[int32](common.IntegerType(), vals, 1)
	right := newConst(chunk.NewIntegerValue(5))
	lt, err := BindSelectFunction("lt", []common.LType{common.IntegerType(), common.IntegerType()})
	require.NoError(t, err)

	trueSel := chunk.NewSelectVector(10)
	falseSel := chunk.NewSelectVector(10)
	cnt := lt(left, right, nil, 10, trueSel, falseSel)
	assert.Equal(t, 3, cnt)
	assert.Equal(t, []int{0, 2, 3}, []int{trueSel.GetIndex(0), trueSel.GetIndex(1), trueSel.GetIndex(2)})
	assert.Equal(t, 1, falseSel.GetIndex(0))
	assert.Equal(t, 4, falseSel.GetIndex(1))
	assert.Equal(t, 1, left.Mask.CountInvalid(10))

	//the result indexes go through sel
	sel := chunk.NewSelectVector3([]uint32{20, 21, 22, 23, 24, 25, 26, 27, 28, 29})
	cnt = lt(identityDict(left, 10), right, sel, 10, trueSel, nil)
	assert.Equal(t, 3, cnt)
	assert.Equal(t, 23, trueSel.GetIndex(2))

	cnt = lt(newConst(chunk.NewIntegerValue(1)), newConst(chunk.NewNullValue(common.IntegerType())), nil, 10, trueSel, falseSel)
	assert.Equal(t, 0, cnt)
	assert.Equal(t, 9, falseSel.GetIndex(9))

	//flat/flat does not write into the input masks
	other := newFlat[int32](common.IntegerType(), vals, 5)
	ge, err := BindSelectFunction("ge", []common.LType{common.IntegerType(), common.IntegerType()})
	require.NoError(t, err)
	cnt = ge(left, other, nil, 10, nil, falseSel)
	assert.Equal(t, 8, cnt)
	assert.Equal(t, 1, left.Mask.CountInvalid(10))
	assert.Equal(t, 1, other.Mask.CountInvalid(10))
}

func Test_scalarFunctions(t *testing.T) {
	ints := []common.LType{common.IntegerType(), common.IntegerType()}
	add, err := BindScalarFunction("add", ints)
	require.NoError(t, err)
	assert.True(t, add.RetType.Equal(common.IntegerType()))

	eq, err := BindScalarFunction("eq", ints)
	require.NoError(t, err)
	assert.True(t, eq.RetType.Equal(common.BooleanType()))
	result := chunk.NewFlatVector(common.BooleanType(), util.DefaultVectorSize)
	eq.Execute([]*chunk.Vector{
		newFlat[int32](common.IntegerType(), []int32{1, 2}),
		newConst(chunk.NewIntegerValue(2)),
	}, result, 2)
	assert.False(t, result.GetValue(0).Bool)
	assert.True(t, result.GetValue(1).Bool)

	_, err = BindScalarFunction("nope", ints)
	assert.ErrorIs(t, err, ErrFunctionNotFound)
	_, err = BindScalarFunction("add", []common.LType{common.IntegerType(), common.BigintType()})
	assert.ErrorIs(t, err, ErrFunctionNotFound)
	assert.Contains(t, ScalarFunctionNames(), "between")
}

func Test_negateWideTypes(t *testing.T) {
	typ := common.DecimalType(10, 2)
	neg, err := BindScalarFunction("negate", []common.LType{typ})
	require.NoError(t, err)
	assert.True(t, neg.RetType.Equal(typ))
	val, err := common.ParseDecimal("12.50")
	require.NoError(t, err)
	result := chunk.NewFlatVector(typ, util.DefaultVectorSize)
	neg.Execute([]*chunk.Vector{newFlat[common.Decimal](typ, []common.Decimal{val, val}, 1)}, result, 2)
	got := result.GetValue(0).Dec
	expect, err := common.ParseDecimal("-12.50")
	require.NoError(t, err)
	assert.True(t, got.Equal(&expect), got.String())
	assert.True(t, result.GetValue(1).IsNull)

	neg, err = BindScalarFunction("negate", []common.LType{common.HugeintType()})
	require.NoError(t, err)
	input := newFlat[common.Hugeint](common.HugeintType(), []common.Hugeint{
		{Lower: 5},
		{Upper: math.MinInt64},
		{Lower: 0, Upper: 1},
	})
	result = chunk.NewFlatVector(common.HugeintType(), util.DefaultVectorSize)
	neg.Execute([]*chunk.Vector{input}, result, 3)
	//-5
	assert.Equal(t, int64(-1), result.GetValue(0).I64)
	assert.Equal(t, uint64(math.MaxUint64-4), result.GetValue(0).U64)
	//the smallest hugeint has no negation
	assert.True(t, result.GetValue(1).IsNull)
	assert.Equal(t, int64(-1), result.GetValue(2).I64)
	assert.Equal(t, uint64(0), result.GetValue(2).U64)
	assert.True(t, input.Mask.AllValid())
}

func Test_stringFunctions(t *testing.T) {
	long := "a string well over twelve bytes"
	input := chunk.NewVarcharFlatVector([]string{"abc", long, ""}, util.DefaultVectorSize)
	chunk.SetNullInPhyFormatFlat(input, 2, true)
	varchar := []common.LType{common.VarcharType()}

	upper, err := BindScalarFunction("upper", varchar)
	require.NoError(t, err)
	result := chunk.NewFlatVector(common.VarcharType(), util.DefaultVectorSize)
	upper.Execute([]*chunk.Vector{input}, result, 3)
	assert.Equal(t, "ABC", result.GetValue(0).Str)
	assert.Equal(t, "A STRING WELL OVER TWELVE BYTES", result.GetValue(1).Str)
	assert.True(t, result.GetValue(2).IsNull)

	length, err := BindScalarFunction("length", varchar)
	require.NoError(t, err)
	lens := chunk.NewFlatVector(common.BigintType(), util.DefaultVectorSize)
	length.Execute([]*chunk.Vector{input}, lens, 3)
	assert.Equal(t, int64(len(long)), lens.GetValue(1).I64)

	concat, err := BindScalarFunction("concat", []common.LType{common.VarcharType(), common.VarcharType()})
	require.NoError(t, err)
	concat.Execute([]*chunk.Vector{input, newConst(chunk.NewVarcharValue("!"))}, result, 3)
	assert.Equal(t, "abc!", result.GetValue(0).Str)
	assert.Equal(t, long+"!", result.GetValue(1).Str)
	assert.True(t, result.GetValue(2).IsNull)
}

func Test_decimalArithmetic(t *testing.T) {
	d := func(s string) common.Decimal {
		v, err := common.ParseDecimal(s)
		require.NoError(t, err)
		return v
	}
	typ := common.DecimalType(10, 2)
	left := newFlat[common.Decimal](typ, []common.Decimal{d("1.50"), d("2.25")})
	right := newFlat[common.Decimal](typ, []common.Decimal{d("0.50"), d("0")})
	result := chunk.NewFlatVector(typ, util.DefaultVectorSize)

	add, err := BindScalarFunction("add", []common.LType{typ, typ})
	require.NoError(t, err)
	add.Execute([]*chunk.Vector{left, right}, result, 2)
	sum := result.GetValue(0).Dec
	expect := d("2.00")
	assert.True(t, sum.Equal(&expect))

	div, err := BindScalarFunction("div", []common.LType{typ, typ})
	require.NoError(t, err)
	div.Execute([]*chunk.Vector{left, right}, result, 2)
	quo := result.GetValue(0).Dec
	expect = d("3")
	assert.True(t, quo.Equal(&expect))
	assert.True(t, result.GetValue(1).IsNull)
}
