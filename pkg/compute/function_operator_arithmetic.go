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
	"cmp"
	"math"
	"strings"

	"github.com/daviszhen/vec/pkg/chunk"
	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type numeric interface {
	integer | ~float32 | ~float64
}

// +
func addOp[T numeric](left, right, result *T) {
	*result = *left + *right
}

func addDecimalOp(left, right, result *common.Decimal) {
	d, err := left.Decimal.Add(right.Decimal)
	if err != nil {
		panic(err)
	}
	result.Decimal = d
}

// -
func subOp[T numeric](left, right, result *T) {
	*result = *left - *right
}

func subDecimalOp(left, right, result *common.Decimal) {
	d, err := left.Decimal.Sub(right.Decimal)
	if err != nil {
		panic(err)
	}
	result.Decimal = d
}

// *
func mulOp[T numeric](left, right, result *T) {
	*result = *left * *right
}

func mulDecimalOp(left, right, result *common.Decimal) {
	d, err := left.Decimal.Mul(right.Decimal)
	if err != nil {
		panic(err)
	}
	result.Decimal = d
}

// / and %, a zero divisor gives null
func divFunc[T numeric](left, right, result *T, mask *util.Bitmap, idx int) {
	if *right == 0 {
		mask.SetInvalid(uint64(idx))
		return
	}
	*result = *left / *right
}

func modFunc[T integer](left, right, result *T, mask *util.Bitmap, idx int) {
	if *right == 0 {
		mask.SetInvalid(uint64(idx))
		return
	}
	*result = *left % *right
}

func divDecimalFunc(left, right, result *common.Decimal, mask *util.Bitmap, idx int) {
	if right.Decimal.IsZero() {
		mask.SetInvalid(uint64(idx))
		return
	}
	quo, err := left.Decimal.Quo(right.Decimal)
	if err != nil {
		panic(err)
	}
	result.Decimal = quo
}

// unary
func negateOp[T numeric](input, result *T) {
	*result = -*input
}

func negateDecimalOp(input, result *common.Decimal) {
	common.NegateDecimal(input, result)
}

// negateHugeintFunc turns the negation of the smallest hugeint into NULL.
func negateHugeintFunc(input, result *common.Hugeint, mask *util.Bitmap, idx int) {
	if input.Upper == math.MinInt64 && input.Lower == 0 {
		mask.SetInvalid(uint64(idx))
		return
	}
	common.NegateHugeint(input, result)
}

func absOp[T numeric](input, result *T) {
	if *input < 0 {
		*result = -*input
	} else {
		*result = *input
	}
}

func castOp[T numeric, R numeric](input *T, result *R) {
	*result = R(*input)
}

func stringLengthOp(input *common.String, result *int64) {
	*result = int64(input.Length())
}

// comparison
func compareOrdered[T cmp.Ordered](left, right *T) int {
	return cmp.Compare(*left, *right)
}

func compareString(left, right *common.String) int {
	return left.Compare(right)
}

func compareDecimal(left, right *common.Decimal) int {
	return left.Decimal.Cmp(right.Decimal)
}

func compareDate(left, right *common.Date) int {
	if left.Equal(right) {
		return 0
	}
	if left.Less(right) {
		return -1
	}
	return 1
}

func compareBool(left, right *bool) int {
	if *left == *right {
		return 0
	}
	if !*left {
		return -1
	}
	return 1
}

type compareKind int

const (
	CMP_EQ compareKind = iota
	CMP_NE
	CMP_LT
	CMP_LE
	CMP_GT
	CMP_GE
)

var compareKindNames = map[string]compareKind{
	"eq": CMP_EQ,
	"ne": CMP_NE,
	"lt": CMP_LT,
	"le": CMP_LE,
	"gt": CMP_GT,
	"ge": CMP_GE,
}

func (kind compareKind) holds(c int) bool {
	switch kind {
	case CMP_EQ:
		return c == 0
	case CMP_NE:
		return c != 0
	case CMP_LT:
		return c < 0
	case CMP_LE:
		return c <= 0
	case CMP_GT:
		return c > 0
	case CMP_GE:
		return c >= 0
	default:
		panic("usp")
	}
}

func compareSelectOp[T any](kind compareKind, compare func(*T, *T) int) SelectOp[T, T] {
	return func(left, right *T) bool {
		return kind.holds(compare(left, right))
	}
}

func compareOp[T any](kind compareKind, compare func(*T, *T) int) BinaryOp[T, T, bool] {
	return func(left, right *T, result *bool) {
		*result = kind.holds(compare(left, right))
	}
}

// between(x, lo, hi) is lo <= x <= hi
func betweenOp[T any](compare func(*T, *T) int) TernaryOp[T, T, T, bool] {
	return func(input, lower, upper *T, result *bool) {
		*result = compare(lower, input) <= 0 && compare(input, upper) <= 0
	}
}

// upper writes into the string heap of result.
func upperFunc(args []*chunk.Vector, result *chunk.Vector, count int) {
	util.AssertFunc(len(args) == 1)
	UnaryExecute[common.String, common.String](args[0], result, count,
		func(input *common.String, res *common.String) {
			*res = chunk.AddString(result, strings.ToUpper(input.String()))
		})
}

func concatFunc(args []*chunk.Vector, result *chunk.Vector, count int) {
	util.AssertFunc(len(args) == 2)
	BinaryExecute[common.String, common.String, common.String](args[0], args[1], result, count,
		func(left, right *common.String, res *common.String) {
			dst := chunk.EmptyString(result, left.Length()+right.Length())
			buf := dst.DataSlice()
			copy(buf, left.DataSlice())
			copy(buf[left.Length():], right.DataSlice())
			dst.Finalize()
			*res = dst
		})
}
