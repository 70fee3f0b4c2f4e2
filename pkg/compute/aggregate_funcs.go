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
	dec "github.com/govalues/decimal"

	"github.com/daviszhen/vec/pkg/common"
)

type State[T any] struct {
	_isset bool
	_value T
	_count uint64
}

func (state *State[T]) GetIsset() bool {
	return state._isset
}

func (state *State[T]) GetValue() T {
	return state._value
}

func (state *State[T]) GetCount() uint64 {
	return state._count
}

// sum

type SumOp[T numeric, R numeric] struct {
}

func (SumOp[T, R]) Init(s *State[R]) {
	var zero R
	s._isset = false
	s._value = zero
}

func (SumOp[T, R]) Combine(src *State[R], target *State[R], _ *AggrInputData) {
	target._isset = target._isset || src._isset
	target._value += src._value
}

func (SumOp[T, R]) Operation(s *State[R], input *T, _ *AggrUnaryInput) {
	s._isset = true
	s._value += R(*input)
}

func (SumOp[T, R]) ConstantOperation(s *State[R], input *T, _ *AggrUnaryInput, count int) {
	s._isset = true
	s._value += R(*input) * R(count)
}

func (SumOp[T, R]) Finalize(s *State[R], target *R, data *AggrFinalizeData) {
	if !s._isset {
		data.ReturnNull()
	} else {
		*target = s._value
	}
}

func (SumOp[T, R]) IgnoreNull() bool {
	return true
}

type SumDecimalOp struct {
}

func (SumDecimalOp) Init(s *State[common.Decimal]) {
	s._isset = false
	s._value = common.Decimal{}
}

func (SumDecimalOp) Combine(src *State[common.Decimal], target *State[common.Decimal], _ *AggrInputData) {
	if !src._isset {
		return
	}
	if !target._isset {
		*target = *src
		return
	}
	target._value.Add(&target._value, &src._value)
}

func (SumDecimalOp) Operation(s *State[common.Decimal], input *common.Decimal, _ *AggrUnaryInput) {
	if !s._isset {
		s._isset = true
		s._value = *input
		return
	}
	s._value.Add(&s._value, input)
}

func (op SumDecimalOp) ConstantOperation(s *State[common.Decimal], input *common.Decimal, data *AggrUnaryInput, count int) {
	mul, err := input.Decimal.Mul(dec.MustNew(int64(count), 0))
	if err != nil {
		panic(err)
	}
	op.Operation(s, &common.Decimal{Decimal: mul}, data)
}

func (SumDecimalOp) Finalize(s *State[common.Decimal], target *common.Decimal, data *AggrFinalizeData) {
	if !s._isset {
		data.ReturnNull()
	} else {
		*target = s._value
	}
}

func (SumDecimalOp) IgnoreNull() bool {
	return true
}

// count(*)

type CountStarOp struct {
}

func (CountStarOp) Init(s *State[int64]) {
	s._count = 0
}

func (CountStarOp) Combine(src *State[int64], target *State[int64], _ *AggrInputData) {
	target._count += src._count
}

func (CountStarOp) Operation(s *State[int64], _ *AggrInputData) {
	s._count++
}

func (CountStarOp) ConstantOperation(s *State[int64], _ *AggrInputData, count int) {
	s._count += uint64(count)
}

func (CountStarOp) Finalize(s *State[int64], target *int64, _ *AggrFinalizeData) {
	*target = int64(s._count)
}

// count(x)

type CountOp[T any] struct {
}

func (CountOp[T]) Init(s *State[int64]) {
	s._count = 0
}

func (CountOp[T]) Combine(src *State[int64], target *State[int64], _ *AggrInputData) {
	target._count += src._count
}

func (CountOp[T]) Operation(s *State[int64], _ *T, _ *AggrUnaryInput) {
	s._count++
}

func (CountOp[T]) ConstantOperation(s *State[int64], _ *T, _ *AggrUnaryInput, count int) {
	s._count += uint64(count)
}

func (CountOp[T]) Finalize(s *State[int64], target *int64, _ *AggrFinalizeData) {
	*target = int64(s._count)
}

func (CountOp[T]) IgnoreNull() bool {
	return true
}

// avg

type AvgOp[T numeric] struct {
}

func (AvgOp[T]) Init(s *State[float64]) {
	s._value = 0
	s._count = 0
}

func (AvgOp[T]) Combine(src *State[float64], target *State[float64], _ *AggrInputData) {
	target._value += src._value
	target._count += src._count
}

func (AvgOp[T]) Operation(s *State[float64], input *T, _ *AggrUnaryInput) {
	s._value += float64(*input)
	s._count++
}

func (AvgOp[T]) ConstantOperation(s *State[float64], input *T, _ *AggrUnaryInput, count int) {
	s._value += float64(*input) * float64(count)
	s._count += uint64(count)
}

func (AvgOp[T]) Finalize(s *State[float64], target *float64, data *AggrFinalizeData) {
	if s._count == 0 {
		data.ReturnNull()
	} else {
		*target = s._value / float64(s._count)
	}
}

func (AvgOp[T]) IgnoreNull() bool {
	return true
}

// min / max

type MinMaxOp[T any] struct {
	_isMax   bool
	_compare func(*T, *T) int
}

func NewMinOp[T any](compare func(*T, *T) int) MinMaxOp[T] {
	return MinMaxOp[T]{_compare: compare}
}

func NewMaxOp[T any](compare func(*T, *T) int) MinMaxOp[T] {
	return MinMaxOp[T]{_isMax: true, _compare: compare}
}

func (op MinMaxOp[T]) better(input, current *T) bool {
	c := op._compare(input, current)
	if op._isMax {
		return c > 0
	}
	return c < 0
}

func (MinMaxOp[T]) Init(s *State[T]) {
	s._isset = false
}

func (op MinMaxOp[T]) Combine(src *State[T], target *State[T], _ *AggrInputData) {
	if !src._isset {
		return
	}
	if !target._isset || op.better(&src._value, &target._value) {
		target._isset = true
		target._value = src._value
	}
}

func (op MinMaxOp[T]) Operation(s *State[T], input *T, _ *AggrUnaryInput) {
	if !s._isset || op.better(input, &s._value) {
		s._isset = true
		s._value = *input
	}
}

func (op MinMaxOp[T]) ConstantOperation(s *State[T], input *T, data *AggrUnaryInput, _ int) {
	op.Operation(s, input, data)
}

func (MinMaxOp[T]) Finalize(s *State[T], target *T, data *AggrFinalizeData) {
	if !s._isset {
		data.ReturnNull()
	} else {
		*target = s._value
	}
}

func (MinMaxOp[T]) IgnoreNull() bool {
	return true
}

// arg_max(arg, value) is the arg of the row with the largest value.

type ArgMaxState[A any, B any] struct {
	_isset bool
	_arg   A
	_value B
}

type ArgMaxOp[A any, B any] struct {
	_compare func(*B, *B) int
}

func (ArgMaxOp[A, B]) Init(s *ArgMaxState[A, B]) {
	s._isset = false
}

func (op ArgMaxOp[A, B]) Combine(src *ArgMaxState[A, B], target *ArgMaxState[A, B], _ *AggrInputData) {
	if !src._isset {
		return
	}
	if !target._isset || op._compare(&src._value, &target._value) > 0 {
		*target = *src
	}
}

func (op ArgMaxOp[A, B]) Operation(s *ArgMaxState[A, B], arg *A, value *B, _ *AggrBinaryInput) {
	if !s._isset || op._compare(value, &s._value) > 0 {
		s._isset = true
		s._arg = *arg
		s._value = *value
	}
}

func (ArgMaxOp[A, B]) Finalize(s *ArgMaxState[A, B], target *A, data *AggrFinalizeData) {
	if !s._isset {
		data.ReturnNull()
	} else {
		*target = s._arg
	}
}

func (ArgMaxOp[A, B]) IgnoreNull() bool {
	return true
}
