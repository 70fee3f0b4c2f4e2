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

package chunk

import (
	"fmt"
	"math"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

const (
	NULL_HASH = 0xbf58476d1ce4e5b9
)

func murmurhash64(x uint64) uint64 {
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	x *= 0xd6e8feb86659fd93
	x ^= x >> 32
	return x
}

func CombineHashScalar(a, b uint64) uint64 {
	return (a * 0xbf58476d1ce4e5b9) ^ b
}

// Hasher hashes one non-null value.
type Hasher[T any] interface {
	Hash(value T) uint64
}

type hashInt interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type IntHasher[T hashInt] struct{}

func (IntHasher[T]) Hash(value T) uint64 {
	return murmurhash64(uint64(value))
}

type BoolHasher struct{}

func (BoolHasher) Hash(value bool) uint64 {
	if value {
		return murmurhash64(1)
	}
	return murmurhash64(0)
}

// FloatHasher maps -0 to 0 and every NaN to one hash.
type FloatHasher[T ~float32 | ~float64] struct{}

func (FloatHasher[T]) Hash(value T) uint64 {
	f := float64(value)
	if f == 0 {
		f = 0
	}
	if math.IsNaN(f) {
		return murmurhash64(0x7ff8000000000001)
	}
	return murmurhash64(math.Float64bits(f))
}

type StringHasher struct{}

func (StringHasher) Hash(value common.String) uint64 {
	return util.HashBytes(value.DataSlice())
}

type DateHasher struct{}

func (DateHasher) Hash(value common.Date) uint64 {
	return murmurhash64(uint64(value.Year)) ^
		murmurhash64(uint64(value.Month)) ^
		murmurhash64(uint64(value.Day))
}

type IntervalHasher struct{}

func (IntervalHasher) Hash(value common.Interval) uint64 {
	return murmurhash64(uint64(value.Months)) ^
		murmurhash64(uint64(value.Days)) ^
		murmurhash64(uint64(value.Micros))
}

type DecimalHasher struct{}

func (DecimalHasher) Hash(value common.Decimal) uint64 {
	neg := 0
	if value.Decimal.IsNeg() {
		neg = 1
	}
	coef := value.Coef()
	scale := value.Scale()
	return murmurhash64(uint64(neg)) ^ murmurhash64(coef) ^ murmurhash64(uint64(scale))
}

type HugeintHasher struct{}

func (HugeintHasher) Hash(value common.Hugeint) uint64 {
	return murmurhash64(uint64(value.Upper)) ^ murmurhash64(value.Lower)
}

func hashOrNull[T any](hasher Hasher[T], value T, isNull bool) uint64 {
	if isNull {
		return NULL_HASH
	}
	return hasher.Hash(value)
}

// HashTypeSwitch writes the hash of every row of input into result.
// With hasRsel only the rows rsel[0..count) are hashed.
func HashTypeSwitch(
	input, result *Vector,
	rsel *SelectVector,
	count int,
	hasRsel bool,
) {
	util.AssertFunc(result.Typ().Id == common.LTID_UBIGINT)
	switch input.Typ().GetInternalType() {
	case common.BOOL:
		TemplatedLoopHash[bool](input, result, rsel, count, hasRsel, BoolHasher{})
	case common.INT8:
		TemplatedLoopHash[int8](input, result, rsel, count, hasRsel, IntHasher[int8]{})
	case common.INT16:
		TemplatedLoopHash[int16](input, result, rsel, count, hasRsel, IntHasher[int16]{})
	case common.INT32:
		TemplatedLoopHash[int32](input, result, rsel, count, hasRsel, IntHasher[int32]{})
	case common.INT64:
		TemplatedLoopHash[int64](input, result, rsel, count, hasRsel, IntHasher[int64]{})
	case common.UINT8:
		TemplatedLoopHash[uint8](input, result, rsel, count, hasRsel, IntHasher[uint8]{})
	case common.UINT16:
		TemplatedLoopHash[uint16](input, result, rsel, count, hasRsel, IntHasher[uint16]{})
	case common.UINT32:
		TemplatedLoopHash[uint32](input, result, rsel, count, hasRsel, IntHasher[uint32]{})
	case common.UINT64:
		TemplatedLoopHash[uint64](input, result, rsel, count, hasRsel, IntHasher[uint64]{})
	case common.FLOAT:
		TemplatedLoopHash[float32](input, result, rsel, count, hasRsel, FloatHasher[float32]{})
	case common.DOUBLE:
		TemplatedLoopHash[float64](input, result, rsel, count, hasRsel, FloatHasher[float64]{})
	case common.VARCHAR:
		TemplatedLoopHash[common.String](input, result, rsel, count, hasRsel, StringHasher{})
	case common.DECIMAL:
		TemplatedLoopHash[common.Decimal](input, result, rsel, count, hasRsel, DecimalHasher{})
	case common.INT128:
		TemplatedLoopHash[common.Hugeint](input, result, rsel, count, hasRsel, HugeintHasher{})
	case common.DATE:
		TemplatedLoopHash[common.Date](input, result, rsel, count, hasRsel, DateHasher{})
	case common.INTERVAL:
		TemplatedLoopHash[common.Interval](input, result, rsel, count, hasRsel, IntervalHasher{})
	default:
		panic(fmt.Sprintf("usp hash of %v", input.Typ()))
	}
}

func TemplatedLoopHash[T any](
	input, result *Vector,
	rsel *SelectVector,
	count int,
	hasRsel bool,
	hasher Hasher[T],
) {
	if input.PhyFormat().IsConst() {
		result.SetPhyFormat(PF_CONST)
		result.Mask = &util.Bitmap{}
		data := GetSliceInPhyFormatConst[T](input)
		resData := GetSliceInPhyFormatConst[uint64](result)
		resData[0] = hashOrNull(hasher, data[0], IsNullInPhyFormatConst(input))
		return
	}
	if !result.PhyFormat().IsFlat() || result.Capacity() < count {
		result._PhyFormat = PF_FLAT
		result.Init(max(util.VectorSize(), count))
	}
	var data UnifiedFormat
	input.ToUnifiedFormat(count, &data)
	ldata := GetSliceInPhyFormatUnifiedFormat[T](&data)
	resultData := GetSliceInPhyFormatFlat[uint64](result)
	allValid := data.Mask.AllValid()
	for i := 0; i < count; i++ {
		ridx := i
		if hasRsel {
			ridx = rsel.GetIndex(i)
		}
		idx := data.Sel.GetIndex(ridx)
		if allValid {
			resultData[ridx] = hasher.Hash(ldata[idx])
		} else {
			resultData[ridx] = hashOrNull(hasher, ldata[idx], !data.Mask.RowIsValid(uint64(idx)))
		}
	}
}

// CombineHashTypeSwitch mixes the hash of every row of input into hashes.
func CombineHashTypeSwitch(
	hashes *Vector,
	input *Vector,
	rsel *SelectVector,
	count int,
	hasRsel bool,
) {
	util.AssertFunc(hashes.Typ().Id == common.LTID_UBIGINT)
	switch input.Typ().GetInternalType() {
	case common.BOOL:
		TemplatedLoopCombineHash[bool](input, hashes, rsel, count, hasRsel, BoolHasher{})
	case common.INT8:
		TemplatedLoopCombineHash[int8](input, hashes, rsel, count, hasRsel, IntHasher[int8]{})
	case common.INT16:
		TemplatedLoopCombineHash[int16](input, hashes, rsel, count, hasRsel, IntHasher[int16]{})
	case common.INT32:
		TemplatedLoopCombineHash[int32](input, hashes, rsel, count, hasRsel, IntHasher[int32]{})
	case common.INT64:
		TemplatedLoopCombineHash[int64](input, hashes, rsel, count, hasRsel, IntHasher[int64]{})
	case common.UINT8:
		TemplatedLoopCombineHash[uint8](input, hashes, rsel, count, hasRsel, IntHasher[uint8]{})
	case common.UINT16:
		TemplatedLoopCombineHash[uint16](input, hashes, rsel, count, hasRsel, IntHasher[uint16]{})
	case common.UINT32:
		TemplatedLoopCombineHash[uint32](input, hashes, rsel, count, hasRsel, IntHasher[uint32]{})
	case common.UINT64:
		TemplatedLoopCombineHash[uint64](input, hashes, rsel, count, hasRsel, IntHasher[uint64]{})
	case common.FLOAT:
		TemplatedLoopCombineHash[float32](input, hashes, rsel, count, hasRsel, FloatHasher[float32]{})
	case common.DOUBLE:
		TemplatedLoopCombineHash[float64](input, hashes, rsel, count, hasRsel, FloatHasher[float64]{})
	case common.DATE:
		TemplatedLoopCombineHash[common.Date](input, hashes, rsel, count, hasRsel, DateHasher{})
	case common.INTERVAL:
		TemplatedLoopCombineHash[common.Interval](input, hashes, rsel, count, hasRsel, IntervalHasher{})
	case common.DECIMAL:
		TemplatedLoopCombineHash[common.Decimal](input, hashes, rsel, count, hasRsel, DecimalHasher{})
	case common.INT128:
		TemplatedLoopCombineHash[common.Hugeint](input, hashes, rsel, count, hasRsel, HugeintHasher{})
	case common.VARCHAR:
		TemplatedLoopCombineHash[common.String](input, hashes, rsel, count, hasRsel, StringHasher{})
	default:
		panic(fmt.Sprintf("usp hash of %v", input.Typ()))
	}
}

func TemplatedLoopCombineHash[T any](
	input *Vector,
	hashes *Vector,
	rsel *SelectVector,
	count int,
	hasRsel bool,
	hasher Hasher[T],
) {
	if input.PhyFormat().IsConst() && hashes.PhyFormat().IsConst() {
		ldata := GetSliceInPhyFormatConst[T](input)
		hashData := GetSliceInPhyFormatConst[uint64](hashes)
		otherHash := hashOrNull(hasher, ldata[0], IsNullInPhyFormatConst(input))
		hashData[0] = CombineHashScalar(hashData[0], otherHash)
		return
	}
	var data UnifiedFormat
	input.ToUnifiedFormat(count, &data)
	ldata := GetSliceInPhyFormatUnifiedFormat[T](&data)

	if hashes.PhyFormat().IsConst() {
		hashes.Flatten(count)
	}
	util.AssertFunc(hashes.PhyFormat().IsFlat())
	hashData := GetSliceInPhyFormatFlat[uint64](hashes)
	allValid := data.Mask.AllValid()
	for i := 0; i < count; i++ {
		ridx := i
		if hasRsel {
			ridx = rsel.GetIndex(i)
		}
		idx := data.Sel.GetIndex(ridx)
		var otherHash uint64
		if allValid {
			otherHash = hasher.Hash(ldata[idx])
		} else {
			otherHash = hashOrNull(hasher, ldata[idx], !data.Mask.RowIsValid(uint64(idx)))
		}
		hashData[ridx] = CombineHashScalar(hashData[ridx], otherHash)
	}
}
