package chunk

import (
	"github.com/daviszhen/vec/pkg/util"
)

// SelectVector maps a logical row to a physical slot. An empty
// SelectVector is the identity.
//
// SelVec is either owned (Init) or borrowed from another selection
// (Init2, Init3). Borrowed arrays are never written.
type SelectVector struct {
	SelVec []uint32
}

// zeroSel backs every constant selection. Read only.
var zeroSel [util.DefaultVectorSize]uint32

func NewSelectVector(count int) *SelectVector {
	vec := &SelectVector{}
	vec.Init(count)
	return vec
}

// NewSelectVector2 selects the rows [start, start+count).
func NewSelectVector2(start, count int) *SelectVector {
	vec := &SelectVector{}
	vec.Init(max(util.VectorSize(), count))
	for i := 0; i < count; i++ {
		vec.SetIndex(i, start+i)
	}
	return vec
}

func NewSelectVector3(tuples []uint32) *SelectVector {
	v := &SelectVector{}
	v.Init3(tuples)
	return v
}

// ZeroSelectVector points every row of sel at slot 0.
func ZeroSelectVector(cnt int, sel *SelectVector) *SelectVector {
	if cnt <= len(zeroSel) {
		sel.Init3(zeroSel[:max(cnt, 1)])
	} else {
		sel.Init(cnt)
	}
	return sel
}

func (svec *SelectVector) Invalid() bool {
	return len(svec.SelVec) == 0
}

func (svec *SelectVector) Init(cnt int) {
	svec.SelVec = make([]uint32, cnt)
}

func (svec *SelectVector) GetIndex(idx int) int {
	if svec.Invalid() {
		return idx
	} else {
		return int(svec.SelVec[idx])
	}
}

func (svec *SelectVector) SetIndex(idx int, index int) {
	svec.SelVec[idx] = uint32(index)
}

// Slice composes the selections: ret[i] = svec[sel[i]].
func (svec *SelectVector) Slice(sel *SelectVector, count int) []uint32 {
	data := make([]uint32, count)
	for i := 0; i < count; i++ {
		newIdx := sel.GetIndex(i)
		idx := svec.GetIndex(newIdx)
		data[i] = uint32(idx)
	}
	return data
}

func (svec *SelectVector) Init2(sel *SelectVector) {
	svec.SelVec = sel.SelVec
}

func (svec *SelectVector) Init3(data []uint32) {
	svec.SelVec = data
}

// MaxIndex returns one past the largest slot among the first count rows.
func (svec *SelectVector) MaxIndex(count int) int {
	if svec.Invalid() {
		return count
	}
	ret := 0
	for i := 0; i < count; i++ {
		ret = max(ret, int(svec.SelVec[i])+1)
	}
	return ret
}
