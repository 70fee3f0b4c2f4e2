package common

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func Test_stringLayout(t *testing.T) {
	assert.Equal(t, 24, int(unsafe.Sizeof(String{})))
	assert.Equal(t, 24, VarcharSize)
}

func Test_stringInline(t *testing.T) {
	for _, s := range []string{"", "a", "twelve bytes"} {
		str := StringFromGo(s)
		assert.True(t, str.IsInlined())
		assert.True(t, str.ptr == nil)
		assert.Equal(t, s, str.String())
		assert.Equal(t, len(s), str.Length())
	}
}

func Test_stringPointer(t *testing.T) {
	raw := []byte("thirteen byte")
	str := StringFromBytes(raw)
	assert.False(t, str.IsInlined())
	assert.Equal(t, []byte("thir"), str.Prefix())
	assert.Equal(t, "thirteen byte", str.String())
	//no copy
	raw[5] = 'X'
	assert.Equal(t, "thirtXen byte", str.String())
}

func Test_stringCompare(t *testing.T) {
	tests := []struct {
		a, b string
		cmp  int
	}{
		{"abc", "abc", 0},
		{"abc", "abd", -1},
		{"abcdefghijklmno", "abcdefghijklmnp", -1},
		{"zbcdefghijklmno", "abcdefghijklmnp", 1},
		{"ab", "abcdefghijklmnop", -1},
		{"", "a", -1},
	}
	for _, tt := range tests {
		a := StringFromGo(tt.a)
		b := StringFromGo(tt.b)
		assert.Equal(t, tt.cmp, a.Compare(&b), "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.cmp == 0, a.Equal(&b))
		assert.Equal(t, tt.cmp < 0, a.Less(&b))
	}
}

func Test_intervalDate(t *testing.T) {
	month := Interval{Months: 1}
	days := Interval{Days: 30}
	assert.False(t, month.Less(&days))
	assert.False(t, days.Less(&month))
	more := Interval{Days: 30, Micros: 1}
	assert.True(t, month.Less(&more))

	d := Date{Year: 2024, Month: 1, Day: 31}
	next := d.AddInterval(&Interval{Months: 1, Days: 1})
	assert.Equal(t, "2024-03-03", next.String())
	back := next.SubInterval(&Interval{Days: 2})
	assert.Equal(t, Date{Year: 2024, Month: 3, Day: 1}, back)
}

func Test_ltypeNested(t *testing.T) {
	st := StructType([]string{"x", "y"}, []LType{IntegerType(), VarcharType()})
	assert.Equal(t, STRUCT, st.PTyp)
	assert.True(t, st.IsNested())
	assert.Equal(t, "STRUCT(x INT32, y VARCHAR)", st.String())

	lt := ListType(st)
	assert.Equal(t, LIST, lt.PTyp)
	assert.Equal(t, int(unsafe.Sizeof(ListEntry{})), lt.PTyp.Size())
	assert.True(t, lt.ListChild().Equal(st))

	cp := CopyLTypes(lt)
	cp[0].Children[0].ChildNames[0] = "z"
	assert.Equal(t, "x", lt.Children[0].ChildNames[0])

	assert.False(t, st.Equal(StructType([]string{"x", "y"}, []LType{IntegerType(), BigintType()})))
	assert.Equal(t, POINTER, PointerType().PTyp)
	assert.Equal(t, 8, POINTER.Size())
}

func Test_hugeint(t *testing.T) {
	a := HugeintFromInt64(-5)
	b := HugeintFromInt64(3)
	assert.True(t, a.Less(&a, &b))
	assert.True(t, b.Greater(&b, &a))
	assert.True(t, AddInplace(&a, &b))
	c := HugeintFromInt64(-2)
	assert.Equal(t, 0, a.Cmp(&c))
}
