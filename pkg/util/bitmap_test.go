package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_bitmapBulkSet(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 65, 1024} {
		bm := &Bitmap{}
		bm.SetAllInvalid(n)
		assert.Equal(t, 0, bm.CountValid(n), "n=%d", n)
		assert.Equal(t, n, bm.CountInvalid(n), "n=%d", n)

		bm.SetAllValid(n)
		assert.Equal(t, n, bm.CountValid(n), "n=%d", n)
	}
}

func Test_bitmapAllValidByDefault(t *testing.T) {
	bm := &Bitmap{}
	assert.True(t, bm.AllValid())
	assert.True(t, bm.RowIsValid(5000))
	assert.Equal(t, FullEntry, bm.GetEntry(3))
	assert.Equal(t, 100, bm.CountValid(100))

	bm.SetValid(7)
	assert.True(t, bm.AllValid())

	bm.SetInvalid(7)
	require.False(t, bm.AllValid())
	assert.False(t, bm.RowIsValid(7))
	assert.True(t, bm.RowIsValid(6))
	assert.Equal(t, EntryCount(DefaultVectorSize), len(bm.Bits))
	assert.Equal(t, 99, bm.CountValid(100))
}

func Test_bitmapSetInvalidGrows(t *testing.T) {
	bm := &Bitmap{}
	bm.SetInvalid(DefaultVectorSize + 10)
	assert.False(t, bm.RowIsValid(DefaultVectorSize+10))
	assert.True(t, bm.RowIsValid(DefaultVectorSize+9))

	bm.SetInvalid(3 * DefaultVectorSize)
	assert.False(t, bm.RowIsValid(3*DefaultVectorSize))
	assert.False(t, bm.RowIsValid(DefaultVectorSize+10))
}

func Test_bitmapCountValidPartial(t *testing.T) {
	bm := NewBitmap(200)
	for i := uint64(0); i < 200; i += 3 {
		bm.SetInvalid(i)
	}
	expect := 0
	for i := uint64(0); i < 130; i++ {
		if bm.RowIsValid(i) {
			expect++
		}
	}
	assert.Equal(t, expect, bm.CountValid(130))
	assert.Equal(t, 200-67, bm.CountValid(200))
}

func Test_bitmapCombine(t *testing.T) {
	a := NewBitmap(128)
	b := NewBitmap(128)
	a.SetInvalid(1)
	b.SetInvalid(2)
	b.SetInvalid(100)

	a.Combine(b, 128)
	assert.False(t, a.RowIsValid(1))
	assert.False(t, a.RowIsValid(2))
	assert.False(t, a.RowIsValid(100))
	assert.True(t, a.RowIsValid(3))
	//b untouched
	assert.True(t, b.RowIsValid(1))

	//all valid side borrows without allocating
	c := &Bitmap{}
	c.Combine(b, 128)
	assert.True(t, c.Shared())
	assert.Equal(t, &b.Bits[0], &c.Bits[0])

	//combining with all valid is a no-op
	d := NewBitmap(128)
	d.SetInvalid(5)
	d.Combine(&Bitmap{}, 128)
	assert.False(t, d.RowIsValid(5))
	assert.Equal(t, 127, d.CountValid(128))
}

func Test_bitmapShareCloneOnWrite(t *testing.T) {
	src := NewBitmap(64)
	src.SetInvalid(10)

	alias := &Bitmap{}
	alias.ShareWith(src)
	assert.False(t, alias.RowIsValid(10))

	alias.SetInvalid(11)
	alias.SetValid(10)
	assert.False(t, alias.Shared())
	assert.True(t, alias.RowIsValid(10))
	assert.False(t, alias.RowIsValid(11))

	assert.False(t, src.RowIsValid(10))
	assert.True(t, src.RowIsValid(11))
}

func Test_bitmapSlice(t *testing.T) {
	src := NewBitmap(256)
	src.SetInvalid(70)
	src.SetInvalid(130)

	dst := &Bitmap{}
	dst.Slice(src, 64, 100)
	assert.False(t, dst.RowIsValid(6))
	assert.False(t, dst.RowIsValid(66))
	assert.Equal(t, 98, dst.CountValid(100))

	head := &Bitmap{}
	head.Slice(src, 0, 100)
	assert.True(t, head.Shared())

	all := &Bitmap{}
	all.Slice(&Bitmap{}, 10, 10)
	assert.True(t, all.AllValid())
}

func Test_bitmapCopyFromResize(t *testing.T) {
	src := NewBitmap(64)
	src.SetInvalid(63)
	dst := &Bitmap{}
	dst.CopyFrom(src, 64)
	src.SetValid(63)
	assert.False(t, dst.RowIsValid(63))

	dst.Resize(64, 300)
	assert.Equal(t, EntryCount(300), len(dst.Bits))
	assert.False(t, dst.RowIsValid(63))
	assert.True(t, dst.RowIsValid(299))
}

func Test_bitmapSizes(t *testing.T) {
	assert.Equal(t, 0, EntryCount(0))
	assert.Equal(t, 1, EntryCount(1))
	assert.Equal(t, 1, EntryCount(64))
	assert.Equal(t, 2, EntryCount(65))
	assert.Equal(t, 128, SizeInBytes(1024))
	assert.Equal(t, 16, len(NewBitmap(128).Data()))
}
