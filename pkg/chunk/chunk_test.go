package chunk

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

func newTestChunk(t *testing.T, cap int, ints []int32, strs []string) *Chunk {
	t.Helper()
	require.Equal(t, len(ints), len(strs))
	c := &Chunk{}
	c.Init([]common.LType{common.IntegerType(), common.VarcharType()}, cap)
	for i := range ints {
		c.Data[0].SetValue(i, NewIntegerValue(ints[i]))
		c.Data[1].SetValue(i, NewVarcharValue(strs[i]))
	}
	c.SetCard(len(ints))
	return c
}

func Test_chunkAppend(t *testing.T) {
	a := newTestChunk(t, util.DefaultVectorSize,
		[]int32{1, 2, 3}, []string{"a", "b", "c"})
	b := newTestChunk(t, util.DefaultVectorSize,
		[]int32{4, 5, 6}, []string{"d", "e", "a value longer than the inline part"})
	SetNullInPhyFormatFlat(b.Data[0], 1, true)

	require.NoError(t, a.Append(b, false, nil, b.Card()))
	require.Equal(t, 6, a.Card())
	require.NoError(t, a.Verify())
	for i, v := range []int32{1, 2, 3, 4} {
		assert.Equal(t, int64(v), a.Data[0].GetValue(i).I64)
	}
	assert.True(t, a.Data[0].GetValue(4).IsNull)
	assert.Equal(t, "a value longer than the inline part", a.Data[1].GetValue(5).Str)

	//with a selection
	require.NoError(t, a.Append(b, false, NewSelectVector3([]uint32{2, 0}), 2))
	assert.Equal(t, 8, a.Card())
	assert.Equal(t, int64(6), a.Data[0].GetValue(6).I64)
	assert.Equal(t, "d", a.Data[1].GetValue(7).Str)
}

func Test_chunkAppendErrors(t *testing.T) {
	a := newTestChunk(t, 4, []int32{1, 2, 3}, []string{"a", "b", "c"})
	b := newTestChunk(t, 4, []int32{4, 5}, []string{"d", "e"})

	err := a.Append(b, false, nil, b.Card())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 3, a.Card())

	require.NoError(t, a.Append(b, true, nil, b.Card()))
	assert.Equal(t, 5, a.Card())
	assert.Equal(t, 8, a.Cap())
	assert.Equal(t, "e", a.Data[1].GetValue(4).Str)

	narrow := &Chunk{}
	narrow.Init([]common.LType{common.IntegerType()}, 4)
	assert.ErrorIs(t, a.Append(narrow, true, nil, 0), ErrColumnCountMismatch)

	other := &Chunk{}
	other.Init([]common.LType{common.BigintType(), common.VarcharType()}, 4)
	assert.ErrorIs(t, a.Append(other, true, nil, 0), ErrTypeMismatch)
}

func Test_chunkAppendDictionary(t *testing.T) {
	src := newTestChunk(t, util.DefaultVectorSize,
		[]int32{10, 20, 30}, []string{"x", "y", "z"})
	view := &Chunk{}
	view.InitEmpty(src.Types())
	view.Slice(src, NewSelectVector3([]uint32{2, 2, 1}), 3, 0)
	require.True(t, view.Data[0].PhyFormat().IsDict())

	dst := &Chunk{}
	dst.Init(src.Types(), util.DefaultVectorSize)
	require.NoError(t, dst.Append(view, false, nil, view.Card()))
	assert.Equal(t, int64(30), dst.Data[0].GetValue(1).I64)
	assert.Equal(t, "y", dst.Data[1].GetValue(2).Str)
}

func Test_chunkResetReusesStorage(t *testing.T) {
	c := newTestChunk(t, util.DefaultVectorSize, []int32{1, 2}, []string{"a", "b"})
	SetNullInPhyFormatFlat(c.Data[0], 0, true)
	data := &c.Data[0].Data[0]

	c.Reset()
	assert.Equal(t, 0, c.Card())
	assert.Equal(t, util.DefaultVectorSize, c.Cap())
	assert.True(t, c.Data[0].PhyFormat().IsFlat())
	assert.True(t, c.Data[0].Mask.AllValid())
	assert.Same(t, data, &c.Data[0].Data[0])

	//a chunk turned into constants comes back flat
	c.Data[0].ReferenceValue(NewIntegerValue(3))
	c.Reset()
	assert.True(t, c.Data[0].PhyFormat().IsFlat())
	assert.Same(t, data, &c.Data[0].Data[0])
}

func Test_chunkReferenceAndMove(t *testing.T) {
	src := newTestChunk(t, util.DefaultVectorSize, []int32{7, 8}, []string{"p", "q"})

	ref := &Chunk{}
	ref.InitEmpty(src.Types())
	ref.Reference(src)
	assert.Equal(t, 2, ref.Card())
	assert.Equal(t, "q", ref.Data[1].GetValue(1).Str)

	moved := &Chunk{}
	moved.Move(src)
	assert.Equal(t, 2, moved.Card())
	assert.Equal(t, 0, src.ColumnCount())
	assert.Equal(t, int64(8), moved.Data[0].GetValue(1).I64)
}

func Test_chunkSerialize(t *testing.T) {
	typs := []common.LType{
		common.IntegerType(),
		common.VarcharType(),
		common.ListType(common.IntegerType()),
	}
	c := &Chunk{}
	c.Init(typs, util.DefaultVectorSize)
	rows := [][]*Value{
		{
			NewIntegerValue(1),
			NewVarcharValue("a string longer than twelve bytes"),
			NewListValue(common.IntegerType(), []*Value{NewIntegerValue(1), NewIntegerValue(2)}),
		},
		{
			NewNullValue(common.IntegerType()),
			NewVarcharValue("s"),
			NewNullValue(typs[2]),
		},
		{
			NewIntegerValue(3),
			NewNullValue(common.VarcharType()),
			NewListValue(common.IntegerType(), nil),
		},
	}
	for i, row := range rows {
		for j, val := range row {
			c.Data[j].SetValue(i, val)
		}
	}
	c.SetCard(len(rows))

	serial := &util.BufferSerialize{}
	require.NoError(t, c.Serialize(serial))

	deserial := util.NewBufferDeserialize(serial.Bytes())
	out := &Chunk{}
	require.NoError(t, out.Deserialize(deserial))
	require.Equal(t, 3, out.Card())
	require.Equal(t, 3, out.ColumnCount())
	for i, row := range rows {
		for j, val := range row {
			got := out.Data[j].GetValue(i)
			assert.True(t, val.Equal(got), "row %d col %d: %v vs %v", i, j, val, got)
		}
	}

	//end of input
	empty := &Chunk{}
	require.NoError(t, empty.Deserialize(deserial))
	assert.Equal(t, 0, empty.ColumnCount())
}

func Test_chunkSaveToFile(t *testing.T) {
	c := newTestChunk(t, util.DefaultVectorSize, []int32{1, 2}, []string{"a", "b"})
	SetNullInPhyFormatFlat(c.Data[1], 1, true)
	var buf bytes.Buffer
	require.NoError(t, c.SaveToFile(&buf))
	assert.Equal(t, "1\ta\n2\tNULL\n", buf.String())
}

func Test_chunkHash(t *testing.T) {
	c := newTestChunk(t, util.DefaultVectorSize,
		[]int32{1, 1, 2}, []string{"a", "a", "a"})
	hashes := NewFlatVector(common.HashType(), util.DefaultVectorSize)
	c.Hash(hashes)
	data := GetSliceInPhyFormatFlat[uint64](hashes)
	assert.Equal(t, data[0], data[1])
	assert.NotEqual(t, data[0], data[2])
}

func Test_chunkTree(t *testing.T) {
	c := newTestChunk(t, util.DefaultVectorSize, []int32{1}, []string{"a"})
	out := c.Tree().String()
	assert.Contains(t, out, "chunk card=1")
	assert.Contains(t, out, "flat")
}

func Test_chunkSliceItselfAndReferenceIndice(t *testing.T) {
	typs := []common.LType{common.IntegerType(), common.VarcharType()}
	c := &Chunk{}
	c.Init(typs, util.DefaultVectorSize)
	for i := 0; i < 5; i++ {
		c.Data[0].SetValue(i, NewIntegerValue(int32(i)))
		c.Data[1].SetValue(i, NewVarcharValue(fmt.Sprintf("s%d", i)))
	}
	c.SetCard(5)

	proj := &Chunk{}
	proj.InitEmpty([]common.LType{common.VarcharType()})
	proj.ReferenceIndice(c, []int{1})
	assert.Equal(t, 5, proj.Card())
	assert.Equal(t, "s3", proj.Data[0].GetValue(3).Str)

	sel := NewSelectVector(2)
	sel.SetIndex(0, 4)
	sel.SetIndex(1, 1)
	c.SliceItself(sel, 2)
	require.Equal(t, 2, c.Card())
	assert.Equal(t, PF_DICT, c.Data[0].PhyFormat())
	assert.Equal(t, int64(4), c.Data[0].GetValue(0).I64)
	assert.Equal(t, "s1", c.Data[1].GetValue(1).Str)
	//the referencing chunk still sees the original rows
	assert.Equal(t, "s4", proj.Data[0].GetValue(4).Str)
}
