package compute

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// AggrFunction is a bound aggregate. Its closures hide the state type.
//
// NewStates allocates and initializes count states. Update scatters
// the inputs into the states addressed by a states vector, SimpleUpdate
// folds them into the first state of one. Finalize writes results at
// offset.
type AggrFunction struct {
	Name         string
	Args         []common.LType
	RetType      common.LType
	NewStates    func(count int) *chunk.Vector
	Update       func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int)
	SimpleUpdate func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int)
	Combine      func(source, target *chunk.Vector, data *AggrInputData, count int)
	Finalize     func(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int)
}

func firstState[S any](states *chunk.Vector) *S {
	var sdata chunk.UnifiedFormat
	states.ToUnifiedFormat(1, &sdata)
	ptrs := chunk.GetSliceInPhyFormatUnifiedFormat[unsafe.Pointer](&sdata)
	return statePtr[S](ptrs[sdata.Sel.GetIndex(0)])
}

func newStatesFunc[S any](op AggrStateOp[S]) func(int) *chunk.Vector {
	return func(count int) *chunk.Vector {
		vec, _ := NewStatesVector[S](count)
		InitStates[S](op, vec, count)
		return vec
	}
}

func NullaryAggregate[S any, R any](
	name string,
	retTyp common.LType,
	op NullaryAggrOp[S, R],
) *AggrFunction {
	return &AggrFunction{
		Name:      name,
		RetType:   retTyp,
		NewStates: newStatesFunc[S](op),
		Update: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			NullaryScatter[S, R](op, states, data, count)
		},
		SimpleUpdate: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			NullaryUpdate[S, R](op, data, firstState[S](states), count)
		},
		Combine: func(source, target *chunk.Vector, data *AggrInputData, count int) {
			Combine[S](op, source, target, data, count)
		},
		Finalize: func(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int) {
			Finalize[S, R](op, states, data, result, count, offset)
		},
	}
}

func UnaryAggregate[S any, T any, R any](
	name string,
	inputTyp common.LType,
	retTyp common.LType,
	op UnaryAggrOp[S, T, R],
) *AggrFunction {
	return &AggrFunction{
		Name:      name,
		Args:      []common.LType{inputTyp},
		RetType:   retTyp,
		NewStates: newStatesFunc[S](op),
		Update: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			util.AssertFunc(len(inputs) == 1)
			UnaryScatter[S, T, R](op, inputs[0], states, data, count)
		},
		SimpleUpdate: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			util.AssertFunc(len(inputs) == 1)
			UnaryUpdate[S, T, R](op, inputs[0], data, firstState[S](states), count)
		},
		Combine: func(source, target *chunk.Vector, data *AggrInputData, count int) {
			Combine[S](op, source, target, data, count)
		},
		Finalize: func(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int) {
			Finalize[S, R](op, states, data, result, count, offset)
		},
	}
}

func BinaryAggregate[S any, A any, B any, R any](
	name string,
	leftTyp, rightTyp common.LType,
	retTyp common.LType,
	op BinaryAggrOp[S, A, B, R],
) *AggrFunction {
	return &AggrFunction{
		Name:      name,
		Args:      []common.LType{leftTyp, rightTyp},
		RetType:   retTyp,
		NewStates: newStatesFunc[S](op),
		Update: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			util.AssertFunc(len(inputs) == 2)
			BinaryScatter[S, A, B, R](op, inputs[0], inputs[1], states, data, count)
		},
		SimpleUpdate: func(inputs []*chunk.Vector, data *AggrInputData, states *chunk.Vector, count int) {
			util.AssertFunc(len(inputs) == 2)
			BinaryUpdate[S, A, B, R](op, inputs[0], inputs[1], data, firstState[S](states), count)
		},
		Combine: func(source, target *chunk.Vector, data *AggrInputData, count int) {
			Combine[S](op, source, target, data, count)
		},
		Finalize: func(states *chunk.Vector, data *AggrInputData, result *chunk.Vector, count int, offset int) {
			Finalize[S, R](op, states, data, result, count, offset)
		},
	}
}

type aggrBinder func(args []common.LType) *AggrFunction

var aggrFunctions = map[string]aggrBinder{
	"count_star": bindCountStar,
	"count":      bindCount,
	"sum":        bindSum,
	"avg":        bindAvg,
	"min":        bindMinMax("min", false),
	"max":        bindMinMax("max", true),
	"arg_max":    bindArgMax,
}

func AggrFunctionNames() []string {
	names := make([]string, 0, len(aggrFunctions))
	for name := range aggrFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BindAggrFunction resolves an aggregate for the argument types.
func BindAggrFunction(name string, args []common.LType) (*AggrFunction, error) {
	binder, ok := aggrFunctions[name]
	if !ok {
		return nil, fmt.Errorf("%w: aggregate %s", ErrFunctionNotFound, name)
	}
	fun := binder(args)
	if fun == nil {
		return nil, fmt.Errorf("%w: aggregate %s%v", ErrFunctionNotFound, name, args)
	}
	return fun, nil
}

func bindCountStar(args []common.LType) *AggrFunction {
	if len(args) != 0 {
		return nil
	}
	return NullaryAggregate[State[int64], int64]("count_star", common.BigintType(), CountStarOp{})
}

func bindCount(args []common.LType) *AggrFunction {
	if len(args) != 1 {
		return nil
	}
	ret := common.BigintType()
	switch args[0].GetInternalType() {
	case common.BOOL:
		return UnaryAggregate[State[int64], bool, int64]("count", args[0], ret, CountOp[bool]{})
	case common.INT8:
		return UnaryAggregate[State[int64], int8, int64]("count", args[0], ret, CountOp[int8]{})
	case common.INT16:
		return UnaryAggregate[State[int64], int16, int64]("count", args[0], ret, CountOp[int16]{})
	case common.INT32:
		return UnaryAggregate[State[int64], int32, int64]("count", args[0], ret, CountOp[int32]{})
	case common.INT64:
		return UnaryAggregate[State[int64], int64, int64]("count", args[0], ret, CountOp[int64]{})
	case common.UINT64:
		return UnaryAggregate[State[int64], uint64, int64]("count", args[0], ret, CountOp[uint64]{})
	case common.DOUBLE:
		return UnaryAggregate[State[int64], float64, int64]("count", args[0], ret, CountOp[float64]{})
	case common.VARCHAR:
		return UnaryAggregate[State[int64], common.String, int64]("count", args[0], ret, CountOp[common.String]{})
	case common.DECIMAL:
		return UnaryAggregate[State[int64], common.Decimal, int64]("count", args[0], ret, CountOp[common.Decimal]{})
	case common.DATE:
		return UnaryAggregate[State[int64], common.Date, int64]("count", args[0], ret, CountOp[common.Date]{})
	}
	return nil
}

func bindSum(args []common.LType) *AggrFunction {
	if len(args) != 1 {
		return nil
	}
	switch args[0].GetInternalType() {
	case common.INT8:
		return UnaryAggregate[State[int64], int8, int64]("sum", args[0], common.BigintType(), SumOp[int8, int64]{})
	case common.INT16:
		return UnaryAggregate[State[int64], int16, int64]("sum", args[0], common.BigintType(), SumOp[int16, int64]{})
	case common.INT32:
		return UnaryAggregate[State[int64], int32, int64]("sum", args[0], common.BigintType(), SumOp[int32, int64]{})
	case common.INT64:
		return UnaryAggregate[State[int64], int64, int64]("sum", args[0], common.BigintType(), SumOp[int64, int64]{})
	case common.UINT64:
		return UnaryAggregate[State[uint64], uint64, uint64]("sum", args[0], common.UbigintType(), SumOp[uint64, uint64]{})
	case common.FLOAT:
		return UnaryAggregate[State[float64], float32, float64]("sum", args[0], common.DoubleType(), SumOp[float32, float64]{})
	case common.DOUBLE:
		return UnaryAggregate[State[float64], float64, float64]("sum", args[0], common.DoubleType(), SumOp[float64, float64]{})
	case common.DECIMAL:
		ret := common.DecimalType(common.DecimalMaxWidth, args[0].Scale)
		return UnaryAggregate[State[common.Decimal], common.Decimal, common.Decimal]("sum", args[0], ret, SumDecimalOp{})
	}
	return nil
}

func bindAvg(args []common.LType) *AggrFunction {
	if len(args) != 1 {
		return nil
	}
	ret := common.DoubleType()
	switch args[0].GetInternalType() {
	case common.INT8:
		return UnaryAggregate[State[float64], int8, float64]("avg", args[0], ret, AvgOp[int8]{})
	case common.INT16:
		return UnaryAggregate[State[float64], int16, float64]("avg", args[0], ret, AvgOp[int16]{})
	case common.INT32:
		return UnaryAggregate[State[float64], int32, float64]("avg", args[0], ret, AvgOp[int32]{})
	case common.INT64:
		return UnaryAggregate[State[float64], int64, float64]("avg", args[0], ret, AvgOp[int64]{})
	case common.UINT64:
		return UnaryAggregate[State[float64], uint64, float64]("avg", args[0], ret, AvgOp[uint64]{})
	case common.FLOAT:
		return UnaryAggregate[State[float64], float32, float64]("avg", args[0], ret, AvgOp[float32]{})
	case common.DOUBLE:
		return UnaryAggregate[State[float64], float64, float64]("avg", args[0], ret, AvgOp[float64]{})
	}
	return nil
}

func minMaxAggregate[T any](name string, typ common.LType, isMax bool, compare func(*T, *T) int) *AggrFunction {
	op := NewMinOp(compare)
	if isMax {
		op = NewMaxOp(compare)
	}
	return UnaryAggregate[State[T], T, T](name, typ, typ, op)
}

// min/max keep the value inside the state, so VARCHAR is not offered.
func bindMinMax(name string, isMax bool) aggrBinder {
	return func(args []common.LType) *AggrFunction {
		if len(args) != 1 {
			return nil
		}
		typ := args[0]
		switch typ.GetInternalType() {
		case common.INT8:
			return minMaxAggregate(name, typ, isMax, compareOrdered[int8])
		case common.INT16:
			return minMaxAggregate(name, typ, isMax, compareOrdered[int16])
		case common.INT32:
			return minMaxAggregate(name, typ, isMax, compareOrdered[int32])
		case common.INT64:
			return minMaxAggregate(name, typ, isMax, compareOrdered[int64])
		case common.UINT64:
			return minMaxAggregate(name, typ, isMax, compareOrdered[uint64])
		case common.FLOAT:
			return minMaxAggregate(name, typ, isMax, compareOrdered[float32])
		case common.DOUBLE:
			return minMaxAggregate(name, typ, isMax, compareOrdered[float64])
		case common.DECIMAL:
			return minMaxAggregate(name, typ, isMax, compareDecimal)
		case common.DATE:
			return minMaxAggregate(name, typ, isMax, compareDate)
		}
		return nil
	}
}

func argMaxAggregate[A any, B any](args []common.LType, compare func(*B, *B) int) *AggrFunction {
	return BinaryAggregate[ArgMaxState[A, B], A, B, A](
		"arg_max", args[0], args[1], args[0], ArgMaxOp[A, B]{_compare: compare})
}

func bindArgMaxValue[A any](args []common.LType) *AggrFunction {
	switch args[1].GetInternalType() {
	case common.INT32:
		return argMaxAggregate[A, int32](args, compareOrdered[int32])
	case common.INT64:
		return argMaxAggregate[A, int64](args, compareOrdered[int64])
	case common.DOUBLE:
		return argMaxAggregate[A, float64](args, compareOrdered[float64])
	case common.DECIMAL:
		return argMaxAggregate[A, common.Decimal](args, compareDecimal)
	case common.DATE:
		return argMaxAggregate[A, common.Date](args, compareDate)
	}
	return nil
}

func bindArgMax(args []common.LType) *AggrFunction {
	if len(args) != 2 {
		return nil
	}
	switch args[0].GetInternalType() {
	case common.INT32:
		return bindArgMaxValue[int32](args)
	case common.INT64:
		return bindArgMaxValue[int64](args)
	case common.DOUBLE:
		return bindArgMaxValue[float64](args)
	case common.DATE:
		return bindArgMaxValue[common.Date](args)
	}
	return nil
}
