package compute

import (
	"unsafe"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/util"
)

type AggrStateOp[S any] interface {
	Init(state *S)
	Combine(src *S, target *S, data *AggrInputData)
}

type AggrFinalizeOp[S any, R any] interface {
	Finalize(state *S, target *R, data *AggrFinalizeData)
}

// NullaryAggrOp aggregates rows without looking at any input.
type NullaryAggrOp[S any, R any] interface {
	AggrStateOp[S]
	AggrFinalizeOp[S, R]
	Operation(state *S, data *AggrInputData)
	ConstantOperation(state *S, data *AggrInputData, count int)
}

// UnaryAggrOp aggregates one input. With IgnoreNull the templates skip
// null rows, otherwise the operation sees them through AggrUnaryInput.
type UnaryAggrOp[S any, T any, R any] interface {
	AggrStateOp[S]
	AggrFinalizeOp[S, R]
	Operation(state *S, input *T, data *AggrUnaryInput)
	ConstantOperation(state *S, input *T, data *AggrUnaryInput, count int)
	IgnoreNull() bool
}

type BinaryAggrOp[S any, A any, B any, R any] interface {
	AggrStateOp[S]
	AggrFinalizeOp[S, R]
	Operation(state *S, left *A, right *B, data *AggrBinaryInput)
	IgnoreNull() bool
}

// InitStates initializes the states addressed by the first count rows.
func InitStates[S any](
	op AggrStateOp[S],
	states *chunk.Vector,
	count int,
) {
	if count == 0 {
		return
	}
	var sdata chunk.UnifiedFormat
	states.ToUnifiedFormat(count, &sdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	if states.PhyFormat().IsConst() {
		op.Init(statePtr[S](ptrs[0]))
		return
	}
	for i := 0; i < count; i++ {
		op.Init(statePtr[S](ptrs[sdata.Sel.GetIndex(i)]))
	}
}

func NullaryScatter[S any, R any](
	op NullaryAggrOp[S, R],
	states *chunk.Vector,
	data *AggrInputData,
	count int,
) {
	if states.PhyFormat().IsConst() {
		ptrs := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		op.ConstantOperation(statePtr[S](ptrs[0]), data, count)
	} else if states.PhyFormat().IsFlat() {
		ptrs := chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states)
		for i := 0; i < count; i++ {
			op.Operation(statePtr[S](ptrs[i]), data)
		}
	} else {
		var sdata chunk.UnifiedFormat
		states.ToUnifiedFormat(count, &sdata)
		ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
		for i := 0; i < count; i++ {
			op.Operation(statePtr[S](ptrs[sdata.Sel.GetIndex(i)]), data)
		}
	}
}

func NullaryUpdate[S any, R any](
	op NullaryAggrOp[S, R],
	data *AggrInputData,
	state *S,
	count int,
) {
	op.ConstantOperation(state, data, count)
}

// UnaryScatter feeds row i of input into the state addressed by row i
// of states.
func UnaryScatter[S any, T any, R any](
	op UnaryAggrOp[S, T, R],
	input *chunk.Vector,
	states *chunk.Vector,
	data *AggrInputData,
	count int,
) {
	if input.PhyFormat().IsConst() &&
		states.PhyFormat().IsConst() {
		if op.IgnoreNull() && chunk.IsNullInPhyFormatConst(input) {
			return
		}
		inputSlice := chunk.GetSliceInPhyFormatConst[T](input)
		ptrs := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		inputData := NewAggrUnaryInput(data, chunk.GetMaskInPhyFormatConst(input))
		op.ConstantOperation(statePtr[S](ptrs[0]), &inputSlice[0], inputData, count)
	} else if input.PhyFormat().IsFlat() && states.PhyFormat().IsFlat() {
		unaryFlatLoop[S, T, R](
			op,
			chunk.GetSliceInPhyFormatFlat[T](input),
			data,
			chunk.GetSliceInPhyFormatFlat[unsafe.Pointer](states),
			chunk.GetMaskInPhyFormatFlat(input),
			count,
		)
	} else {
		var idata, sdata chunk.UnifiedFormat
		input.ToUnifiedFormat(count, &idata)
		states.ToUnifiedFormat(count, &sdata)
		unaryScatterLoop[S, T, R](
			op,
			chunk.GetSliceInPhyFormatUnifiedFormat[T](&idata),
			data,
			chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata),
			idata.Sel,
			sdata.Sel,
			idata.Mask,
			count,
		)
	}
}

func unaryFlatLoop[S any, T any, R any](
	op UnaryAggrOp[S, T, R],
	inputSlice []T,
	data *AggrInputData,
	ptrs []unsafe.Pointer,
	mask *util.Bitmap,
	count int,
) {
	input := NewAggrUnaryInput(data, mask)
	i := &input._inputIdx
	if !op.IgnoreNull() || mask.AllValid() {
		for *i = 0; *i < count; *i++ {
			op.Operation(statePtr[S](ptrs[*i]), &inputSlice[*i], input)
		}
		return
	}
	*i = 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		e := mask.GetEntry(uint64(eIdx))
		next := min(*i+util.BitsPerEntry, count)
		if util.AllValidInEntry(e) {
			for ; *i < next; *i++ {
				op.Operation(statePtr[S](ptrs[*i]), &inputSlice[*i], input)
			}
		} else if util.NoneValidInEntry(e) {
			*i = next
		} else {
			start := *i
			for ; *i < next; *i++ {
				if util.RowIsValidInEntry(e, uint64(*i-start)) {
					op.Operation(statePtr[S](ptrs[*i]), &inputSlice[*i], input)
				}
			}
		}
	}
}

func unaryScatterLoop[S any, T any, R any](
	op UnaryAggrOp[S, T, R],
	inputSlice []T,
	data *AggrInputData,
	ptrs []unsafe.Pointer,
	isel *chunk.SelectVector,
	ssel *chunk.SelectVector,
	mask *util.Bitmap,
	count int,
) {
	input := NewAggrUnaryInput(data, mask)
	checkNull := op.IgnoreNull() && !mask.AllValid()
	for i := 0; i < count; i++ {
		input._inputIdx = isel.GetIndex(i)
		if checkNull && !mask.RowIsValid(uint64(input._inputIdx)) {
			continue
		}
		sidx := ssel.GetIndex(i)
		op.Operation(statePtr[S](ptrs[sidx]), &inputSlice[input._inputIdx], input)
	}
}

// UnaryUpdate feeds the first count rows of input into one state.
func UnaryUpdate[S any, T any, R any](
	op UnaryAggrOp[S, T, R],
	input *chunk.Vector,
	data *AggrInputData,
	state *S,
	count int,
) {
	switch input.PhyFormat() {
	case chunk.PF_CONST:
		if op.IgnoreNull() && chunk.IsNullInPhyFormatConst(input) {
			return
		}
		inputSlice := chunk.GetSliceInPhyFormatConst[T](input)
		inputData := NewAggrUnaryInput(data, chunk.GetMaskInPhyFormatConst(input))
		op.ConstantOperation(state, &inputSlice[0], inputData, count)
	case chunk.PF_FLAT:
		unaryFlatUpdateLoop[S, T, R](
			op,
			chunk.GetSliceInPhyFormatFlat[T](input),
			data,
			state,
			count,
			chunk.GetMaskInPhyFormatFlat(input),
		)
	default:
		var idata chunk.UnifiedFormat
		input.ToUnifiedFormat(count, &idata)
		inputSlice := chunk.GetSliceInPhyFormatUnifiedFormat[T](&idata)
		inputData := NewAggrUnaryInput(data, idata.Mask)
		checkNull := op.IgnoreNull() && !idata.Mask.AllValid()
		for i := 0; i < count; i++ {
			inputData._inputIdx = idata.Sel.GetIndex(i)
			if checkNull && !idata.Mask.RowIsValid(uint64(inputData._inputIdx)) {
				continue
			}
			op.Operation(state, &inputSlice[inputData._inputIdx], inputData)
		}
	}
}

func unaryFlatUpdateLoop[S any, T any, R any](
	op UnaryAggrOp[S, T, R],
	inputSlice []T,
	data *AggrInputData,
	state *S,
	count int,
	mask *util.Bitmap,
) {
	input := NewAggrUnaryInput(data, mask)
	i := &input._inputIdx
	if !op.IgnoreNull() || mask.AllValid() {
		for *i = 0; *i < count; *i++ {
			op.Operation(state, &inputSlice[*i], input)
		}
		return
	}
	*i = 0
	eCnt := util.EntryCount(count)
	for eIdx := 0; eIdx < eCnt; eIdx++ {
		e := mask.GetEntry(uint64(eIdx))
		next := min(*i+util.BitsPerEntry, count)
		if util.AllValidInEntry(e) {
			for ; *i < next; *i++ {
				op.Operation(state, &inputSlice[*i], input)
			}
		} else if util.NoneValidInEntry(e) {
			*i = next
		} else {
			start := *i
			for ; *i < next; *i++ {
				if util.RowIsValidInEntry(e, uint64(*i-start)) {
					op.Operation(state, &inputSlice[*i], input)
				}
			}
		}
	}
}

func BinaryScatter[S any, A any, B any, R any](
	op BinaryAggrOp[S, A, B, R],
	left, right *chunk.Vector,
	states *chunk.Vector,
	data *AggrInputData,
	count int,
) {
	var ldata, rdata, sdata chunk.UnifiedFormat
	left.ToUnifiedFormat(count, &ldata)
	right.ToUnifiedFormat(count, &rdata)
	states.ToUnifiedFormat(count, &sdata)
	lslice := chunk.GetSliceInPhyFormatUnifiedFormat[A](&ldata)
	rslice := chunk.GetSliceInPhyFormatUnifiedFormat[B](&rdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	input := NewAggrBinaryInput(data, ldata.Mask, rdata.Mask)
	checkNull := op.IgnoreNull() && (!ldata.Mask.AllValid() || !rdata.Mask.AllValid())
	for i := 0; i < count; i++ {
		input._lidx = ldata.Sel.GetIndex(i)
		input._ridx = rdata.Sel.GetIndex(i)
		if checkNull &&
			(!ldata.Mask.RowIsValid(uint64(input._lidx)) ||
				!rdata.Mask.RowIsValid(uint64(input._ridx))) {
			continue
		}
		sidx := sdata.Sel.GetIndex(i)
		op.Operation(statePtr[S](ptrs[sidx]), &lslice[input._lidx], &rslice[input._ridx], input)
	}
}

func BinaryUpdate[S any, A any, B any, R any](
	op BinaryAggrOp[S, A, B, R],
	left, right *chunk.Vector,
	data *AggrInputData,
	state *S,
	count int,
) {
	var ldata, rdata chunk.UnifiedFormat
	left.ToUnifiedFormat(count, &ldata)
	right.ToUnifiedFormat(count, &rdata)
	lslice := chunk.GetSliceInPhyFormatUnifiedFormat[A](&ldata)
	rslice := chunk.GetSliceInPhyFormatUnifiedFormat[B](&rdata)
	input := NewAggrBinaryInput(data, ldata.Mask, rdata.Mask)
	checkNull := op.IgnoreNull() && (!ldata.Mask.AllValid() || !rdata.Mask.AllValid())
	for i := 0; i < count; i++ {
		input._lidx = ldata.Sel.GetIndex(i)
		input._ridx = rdata.Sel.GetIndex(i)
		if checkNull &&
			(!ldata.Mask.RowIsValid(uint64(input._lidx)) ||
				!rdata.Mask.RowIsValid(uint64(input._ridx))) {
			continue
		}
		op.Operation(state, &lslice[input._lidx], &rslice[input._ridx], input)
	}
}

// Combine merges the state at row i of source into the state at row i
// of target.
func Combine[S any](
	op AggrStateOp[S],
	source *chunk.Vector,
	target *chunk.Vector,
	data *AggrInputData,
	count int,
) {
	util.AssertFunc(source.Typ().IsPointer())
	util.AssertFunc(target.Typ().IsPointer())
	var sdata, tdata chunk.UnifiedFormat
	source.ToUnifiedFormat(count, &sdata)
	target.ToUnifiedFormat(count, &tdata)
	sptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	tptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&tdata)
	for i := 0; i < count; i++ {
		op.Combine(
			statePtr[S](sptrs[sdata.Sel.GetIndex(i)]),
			statePtr[S](tptrs[tdata.Sel.GetIndex(i)]),
			data,
		)
	}
}

// Finalize writes the result of state i to row offset+i of result. A
// constant states vector gives a constant result, any other encoding
// a flat one.
func Finalize[S any, R any](
	op AggrFinalizeOp[S, R],
	states *chunk.Vector,
	data *AggrInputData,
	result *chunk.Vector,
	count int,
	offset int,
) {
	if states.PhyFormat().IsConst() {
		result.SetPhyFormat(chunk.PF_CONST)
		result.Mask.Reset()
		ptrs := chunk.GetSliceInPhyFormatConst[unsafe.Pointer](states)
		resultSlice := chunk.GetSliceInPhyFormatConst[R](result)
		final := NewAggrFinalizeData(result, data)
		op.Finalize(statePtr[S](ptrs[0]), &resultSlice[0], final)
		return
	}
	var sdata chunk.UnifiedFormat
	states.ToUnifiedFormat(count, &sdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	result.SetPhyFormat(chunk.PF_FLAT)
	resultSlice := chunk.GetSliceInPhyFormatFlat[R](result)
	final := NewAggrFinalizeData(result, data)
	for i := 0; i < count; i++ {
		final._resultIdx = i + offset
		chunk.SetNullInPhyFormatFlat(result, uint64(final._resultIdx), false)
		op.Finalize(statePtr[S](ptrs[sdata.Sel.GetIndex(i)]), &resultSlice[final._resultIdx], final)
	}
}
