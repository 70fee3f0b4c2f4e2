package compute

import (
	"unsafe"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

type AggrInputData struct {
}

func NewAggrInputData() *AggrInputData {
	return &AggrInputData{}
}

type AggrUnaryInput struct {
	_input     *AggrInputData
	_inputMask *util.Bitmap
	_inputIdx  int
}

func NewAggrUnaryInput(input *AggrInputData, mask *util.Bitmap) *AggrUnaryInput {
	return &AggrUnaryInput{
		_input:     input,
		_inputMask: mask,
		_inputIdx:  0,
	}
}

// RowIsValid reports whether the current input row is valid.
func (input *AggrUnaryInput) RowIsValid() bool {
	return input._inputMask.RowIsValid(uint64(input._inputIdx))
}

type AggrBinaryInput struct {
	_input     *AggrInputData
	_leftMask  *util.Bitmap
	_rightMask *util.Bitmap
	_lidx      int
	_ridx      int
}

func NewAggrBinaryInput(input *AggrInputData, lmask, rmask *util.Bitmap) *AggrBinaryInput {
	return &AggrBinaryInput{
		_input:     input,
		_leftMask:  lmask,
		_rightMask: rmask,
	}
}

type AggrFinalizeData struct {
	_result    *chunk.Vector
	_input     *AggrInputData
	_resultIdx int
}

func NewAggrFinalizeData(result *chunk.Vector, input *AggrInputData) *AggrFinalizeData {
	return &AggrFinalizeData{
		_result: result,
		_input:  input,
	}
}

func (data *AggrFinalizeData) ReturnNull() {
	switch data._result.PhyFormat() {
	case chunk.PF_FLAT:
		chunk.SetNullInPhyFormatFlat(data._result, uint64(data._resultIdx), true)
	case chunk.PF_CONST:
		chunk.SetNullInPhyFormatConst(data._result, true)
	default:
		panic("usp")
	}
}

// NewStatesVector allocates count zeroed states. Row i of the returned
// POINTER vector addresses states[i]. The vector keeps the states alive.
func NewStatesVector[S any](count int) (*chunk.Vector, []S) {
	states := make([]S, count)
	vec := chunk.NewFlatVector(common.PointerType(), max(count, 1))
	ptrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](vec)
	for i := range states {
		ptrs[i] = unsafe.Pointer(&states[i])
	}
	vec.Buf.Pin(states)
	return vec, states
}

// NewConstStatesVector is a constant POINTER vector addressing state.
func NewConstStatesVector[S any](state *S) *chunk.Vector {
	vec := chunk.NewConstVector(common.PointerType())
	chunk.GetSliceInPhyFormatConst[unsafe.Pointer](vec)[0] = unsafe.Pointer(state)
	vec.Buf.Pin(state)
	return vec
}

// GroupStates returns a view of states whose row i addresses the state
// of group groups[i].
func GroupStates(states *chunk.Vector, groups []uint32) *chunk.Vector {
	ret := chunk.NewVector(common.PointerType(), false, 0)
	ret.Slice(states, chunk.NewSelectVector3(groups), len(groups))
	return ret
}

func statePtr[S any](ptr unsafe.Pointer) *S {
	return (*S)(ptr)
}
