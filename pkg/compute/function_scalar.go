// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compute

import (
	"errors"
	"fmt"
	"sort"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
)

var ErrFunctionNotFound = errors.New("function not found")

// ScalarFunc evaluates a function over the first count rows of args.
type ScalarFunc func(args []*chunk.Vector, result *chunk.Vector, count int)

// SelectFunc filters the first count rows, see BinarySelect.
type SelectFunc func(
	left, right *chunk.Vector,
	sel *chunk.SelectVector,
	count int,
	trueSel, falseSel *chunk.SelectVector,
) int

type ScalarFunction struct {
	Name    string
	Args    []common.LType
	RetType common.LType
	Fn      ScalarFunc
}

// Execute evaluates the function into result. result must have the
// return type and room for count rows.
func (fun *ScalarFunction) Execute(args []*chunk.Vector, result *chunk.Vector, count int) {
	fun.Fn(args, result, count)
}

type scalarBinder func(args []common.LType) (ScalarFunc, common.LType, bool)

var scalarFunctions = map[string]scalarBinder{
	"add":     bindArithmetic(addOp[int8], addOp[int16], addOp[int32], addOp[int64], addOp[uint64], addOp[float32], addOp[float64], addDecimalOp),
	"sub":     bindArithmetic(subOp[int8], subOp[int16], subOp[int32], subOp[int64], subOp[uint64], subOp[float32], subOp[float64], subDecimalOp),
	"mul":     bindArithmetic(mulOp[int8], mulOp[int16], mulOp[int32], mulOp[int64], mulOp[uint64], mulOp[float32], mulOp[float64], mulDecimalOp),
	"div":     bindDivide,
	"mod":     bindModulo,
	"negate":  bindNegate,
	"abs":     bindUnaryNumeric(absOp[int8], absOp[int16], absOp[int32], absOp[int64], absOp[float32], absOp[float64]),
	"double":  bindToDouble,
	"length":  bindLength,
	"upper":   bindUpper,
	"concat":  bindConcat,
	"between": bindBetween,
}

func init() {
	for name, kind := range compareKindNames {
		scalarFunctions[name] = bindCompare(kind)
	}
}

// ScalarFunctionNames lists the registered scalar functions.
func ScalarFunctionNames() []string {
	names := make([]string, 0, len(scalarFunctions))
	for name := range scalarFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BindScalarFunction resolves name for the argument types.
func BindScalarFunction(name string, args []common.LType) (*ScalarFunction, error) {
	binder, ok := scalarFunctions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	fn, retTyp, ok := binder(args)
	if !ok {
		return nil, fmt.Errorf("%w: %s%v", ErrFunctionNotFound, name, args)
	}
	return &ScalarFunction{
		Name:    name,
		Args:    args,
		RetType: retTyp,
		Fn:      fn,
	}, nil
}

// BindSelectFunction resolves a comparison as a filter.
func BindSelectFunction(name string, args []common.LType) (SelectFunc, error) {
	kind, ok := compareKindNames[name]
	if !ok || len(args) != 2 || !args[0].Equal(args[1]) {
		return nil, fmt.Errorf("%w: select %s%v", ErrFunctionNotFound, name, args)
	}
	switch args[0].GetInternalType() {
	case common.BOOL:
		return selectFunction(compareSelectOp(kind, compareBool)), nil
	case common.INT8:
		return selectFunction(compareSelectOp(kind, compareOrdered[int8])), nil
	case common.INT16:
		return selectFunction(compareSelectOp(kind, compareOrdered[int16])), nil
	case common.INT32:
		return selectFunction(compareSelectOp(kind, compareOrdered[int32])), nil
	case common.INT64:
		return selectFunction(compareSelectOp(kind, compareOrdered[int64])), nil
	case common.UINT64:
		return selectFunction(compareSelectOp(kind, compareOrdered[uint64])), nil
	case common.FLOAT:
		return selectFunction(compareSelectOp(kind, compareOrdered[float32])), nil
	case common.DOUBLE:
		return selectFunction(compareSelectOp(kind, compareOrdered[float64])), nil
	case common.VARCHAR:
		return selectFunction(compareSelectOp(kind, compareString)), nil
	case common.DECIMAL:
		return selectFunction(compareSelectOp(kind, compareDecimal)), nil
	case common.DATE:
		return selectFunction(compareSelectOp(kind, compareDate)), nil
	}
	return nil, fmt.Errorf("%w: select %s%v", ErrFunctionNotFound, name, args)
}

func selectFunction[T any](op SelectOp[T, T]) SelectFunc {
	return func(
		left, right *chunk.Vector,
		sel *chunk.SelectVector,
		count int,
		trueSel, falseSel *chunk.SelectVector,
	) int {
		return BinarySelect[T, T](left, right, sel, count, trueSel, falseSel, op)
	}
}

func sameTypes(args []common.LType, n int) bool {
	if len(args) != n {
		return false
	}
	for _, arg := range args[1:] {
		if !arg.Equal(args[0]) {
			return false
		}
	}
	return true
}

func bindArithmetic(
	i8 BinaryOp[int8, int8, int8],
	i16 BinaryOp[int16, int16, int16],
	i32 BinaryOp[int32, int32, int32],
	i64 BinaryOp[int64, int64, int64],
	u64 BinaryOp[uint64, uint64, uint64],
	f32 BinaryOp[float32, float32, float32],
	f64 BinaryOp[float64, float64, float64],
	dec BinaryOp[common.Decimal, common.Decimal, common.Decimal],
) scalarBinder {
	return func(args []common.LType) (ScalarFunc, common.LType, bool) {
		if !sameTypes(args, 2) {
			return nil, common.LType{}, false
		}
		switch args[0].GetInternalType() {
		case common.INT8:
			return BinaryFunction(i8), args[0], true
		case common.INT16:
			return BinaryFunction(i16), args[0], true
		case common.INT32:
			return BinaryFunction(i32), args[0], true
		case common.INT64:
			return BinaryFunction(i64), args[0], true
		case common.UINT64:
			return BinaryFunction(u64), args[0], true
		case common.FLOAT:
			return BinaryFunction(f32), args[0], true
		case common.DOUBLE:
			return BinaryFunction(f64), args[0], true
		case common.DECIMAL:
			return BinaryFunction(dec), args[0], true
		}
		return nil, common.LType{}, false
	}
}

func bindDivide(args []common.LType) (ScalarFunc, common.LType, bool) {
	if !sameTypes(args, 2) {
		return nil, common.LType{}, false
	}
	switch args[0].GetInternalType() {
	case common.INT32:
		return BinaryFunctionWithNulls(divFunc[int32]), args[0], true
	case common.INT64:
		return BinaryFunctionWithNulls(divFunc[int64]), args[0], true
	case common.UINT64:
		return BinaryFunctionWithNulls(divFunc[uint64]), args[0], true
	case common.FLOAT:
		return BinaryFunctionWithNulls(divFunc[float32]), args[0], true
	case common.DOUBLE:
		return BinaryFunctionWithNulls(divFunc[float64]), args[0], true
	case common.DECIMAL:
		return BinaryFunctionWithNulls(divDecimalFunc), args[0], true
	}
	return nil, common.LType{}, false
}

func bindModulo(args []common.LType) (ScalarFunc, common.LType, bool) {
	if !sameTypes(args, 2) {
		return nil, common.LType{}, false
	}
	switch args[0].GetInternalType() {
	case common.INT32:
		return BinaryFunctionWithNulls(modFunc[int32]), args[0], true
	case common.INT64:
		return BinaryFunctionWithNulls(modFunc[int64]), args[0], true
	case common.UINT64:
		return BinaryFunctionWithNulls(modFunc[uint64]), args[0], true
	}
	return nil, common.LType{}, false
}

func bindUnaryNumeric(
	i8 UnaryOp[int8, int8],
	i16 UnaryOp[int16, int16],
	i32 UnaryOp[int32, int32],
	i64 UnaryOp[int64, int64],
	f32 UnaryOp[float32, float32],
	f64 UnaryOp[float64, float64],
) scalarBinder {
	return func(args []common.LType) (ScalarFunc, common.LType, bool) {
		if len(args) != 1 {
			return nil, common.LType{}, false
		}
		switch args[0].GetInternalType() {
		case common.INT8:
			return UnaryFunction(i8), args[0], true
		case common.INT16:
			return UnaryFunction(i16), args[0], true
		case common.INT32:
			return UnaryFunction(i32), args[0], true
		case common.INT64:
			return UnaryFunction(i64), args[0], true
		case common.FLOAT:
			return UnaryFunction(f32), args[0], true
		case common.DOUBLE:
			return UnaryFunction(f64), args[0], true
		}
		return nil, common.LType{}, false
	}
}

var bindNegateNumeric = bindUnaryNumeric(negateOp[int8], negateOp[int16], negateOp[int32], negateOp[int64], negateOp[float32], negateOp[float64])

func bindNegate(args []common.LType) (ScalarFunc, common.LType, bool) {
	if len(args) == 1 {
		switch args[0].GetInternalType() {
		case common.DECIMAL:
			return UnaryFunction[common.Decimal, common.Decimal](negateDecimalOp), args[0], true
		case common.INT128:
			return UnaryFunctionWithNulls[common.Hugeint, common.Hugeint](negateHugeintFunc), args[0], true
		}
	}
	return bindNegateNumeric(args)
}

func bindToDouble(args []common.LType) (ScalarFunc, common.LType, bool) {
	if len(args) != 1 {
		return nil, common.LType{}, false
	}
	ret := common.DoubleType()
	switch args[0].GetInternalType() {
	case common.INT8:
		return UnaryFunction(castOp[int8, float64]), ret, true
	case common.INT16:
		return UnaryFunction(castOp[int16, float64]), ret, true
	case common.INT32:
		return UnaryFunction(castOp[int32, float64]), ret, true
	case common.INT64:
		return UnaryFunction(castOp[int64, float64]), ret, true
	case common.UINT64:
		return UnaryFunction(castOp[uint64, float64]), ret, true
	case common.FLOAT:
		return UnaryFunction(castOp[float32, float64]), ret, true
	case common.DOUBLE:
		return UnaryFunction(castOp[float64, float64]), ret, true
	}
	return nil, common.LType{}, false
}

func bindLength(args []common.LType) (ScalarFunc, common.LType, bool) {
	if len(args) != 1 || args[0].GetInternalType() != common.VARCHAR {
		return nil, common.LType{}, false
	}
	return UnaryFunction(stringLengthOp), common.BigintType(), true
}

func bindUpper(args []common.LType) (ScalarFunc, common.LType, bool) {
	if len(args) != 1 || args[0].GetInternalType() != common.VARCHAR {
		return nil, common.LType{}, false
	}
	return upperFunc, common.VarcharType(), true
}

func bindConcat(args []common.LType) (ScalarFunc, common.LType, bool) {
	if !sameTypes(args, 2) || args[0].GetInternalType() != common.VARCHAR {
		return nil, common.LType{}, false
	}
	return concatFunc, common.VarcharType(), true
}

func bindCompare(kind compareKind) scalarBinder {
	return func(args []common.LType) (ScalarFunc, common.LType, bool) {
		if !sameTypes(args, 2) {
			return nil, common.LType{}, false
		}
		ret := common.BooleanType()
		switch args[0].GetInternalType() {
		case common.BOOL:
			return BinaryFunction(compareOp(kind, compareBool)), ret, true
		case common.INT8:
			return BinaryFunction(compareOp(kind, compareOrdered[int8])), ret, true
		case common.INT16:
			return BinaryFunction(compareOp(kind, compareOrdered[int16])), ret, true
		case common.INT32:
			return BinaryFunction(compareOp(kind, compareOrdered[int32])), ret, true
		case common.INT64:
			return BinaryFunction(compareOp(kind, compareOrdered[int64])), ret, true
		case common.UINT64:
			return BinaryFunction(compareOp(kind, compareOrdered[uint64])), ret, true
		case common.FLOAT:
			return BinaryFunction(compareOp(kind, compareOrdered[float32])), ret, true
		case common.DOUBLE:
			return BinaryFunction(compareOp(kind, compareOrdered[float64])), ret, true
		case common.VARCHAR:
			return BinaryFunction(compareOp(kind, compareString)), ret, true
		case common.DECIMAL:
			return BinaryFunction(compareOp(kind, compareDecimal)), ret, true
		case common.DATE:
			return BinaryFunction(compareOp(kind, compareDate)), ret, true
		}
		return nil, common.LType{}, false
	}
}

func bindBetween(args []common.LType) (ScalarFunc, common.LType, bool) {
	if !sameTypes(args, 3) {
		return nil, common.LType{}, false
	}
	ret := common.BooleanType()
	switch args[0].GetInternalType() {
	case common.INT32:
		return TernaryFunction(betweenOp(compareOrdered[int32])), ret, true
	case common.INT64:
		return TernaryFunction(betweenOp(compareOrdered[int64])), ret, true
	case common.DOUBLE:
		return TernaryFunction(betweenOp(compareOrdered[float64])), ret, true
	case common.VARCHAR:
		return TernaryFunction(betweenOp(compareString)), ret, true
	case common.DECIMAL:
		return TernaryFunction(betweenOp(compareDecimal)), ret, true
	case common.DATE:
		return TernaryFunction(betweenOp(compareDate)), ret, true
	}
	return nil, common.LType{}, false
}
