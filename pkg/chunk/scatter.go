package chunk

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/govalues/decimal"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

// ScatterOp gives the stored value of a null row and random values
// for test data.
type ScatterOp[T any] interface {
	NullValue() T
	RandValue(rng *rand.Rand) T
}

type BoolScatterOp struct {
}

func (scatter BoolScatterOp) NullValue() bool {
	return false
}

func (scatter BoolScatterOp) RandValue(rng *rand.Rand) bool {
	return rng.IntN(2) == 1
}

type Int8ScatterOp struct {
}

func (scatter Int8ScatterOp) NullValue() int8 {
	return 0
}

func (scatter Int8ScatterOp) RandValue(rng *rand.Rand) int8 {
	return int8(rng.Int32())
}

type Int32ScatterOp struct {
}

func (scatter Int32ScatterOp) NullValue() int32 {
	return 0
}

func (scatter Int32ScatterOp) RandValue(rng *rand.Rand) int32 {
	return rng.Int32N(1 << 20)
}

type HugeintScatterOp struct {
}

func (scatter HugeintScatterOp) NullValue() common.Hugeint {
	return common.Hugeint{
		Lower: 0,
		Upper: math.MinInt64,
	}
}

func (scatter HugeintScatterOp) RandValue(rng *rand.Rand) common.Hugeint {
	return common.HugeintFromInt64(rng.Int64N(1 << 40))
}

type Uint64ScatterOp struct {
}

func (scatter Uint64ScatterOp) NullValue() uint64 {
	return 0
}

func (scatter Uint64ScatterOp) RandValue(rng *rand.Rand) uint64 {
	return rng.Uint64N(1 << 40)
}

type Int64ScatterOp struct {
}

func (scatter Int64ScatterOp) NullValue() int64 {
	return 0
}

func (scatter Int64ScatterOp) RandValue(rng *rand.Rand) int64 {
	return rng.Int64N(1 << 40)
}

type Float64ScatterOp struct {
}

func (scatter Float64ScatterOp) NullValue() float64 {
	return 0
}

func (scatter Float64ScatterOp) RandValue(rng *rand.Rand) float64 {
	return rng.Float64()
}

type StringScatterOp struct {
}

func (scatter StringScatterOp) NullValue() common.String {
	return common.String{}
}

// RandValue returns a printable string short enough to be inlined.
func (scatter StringScatterOp) RandValue(rng *rand.Rand) common.String {
	return common.NewInlineString(randBytes(rng, rng.IntN(common.StringInlineLength+1)))
}

func randBytes(rng *rand.Rand, l int) []byte {
	start := 32
	end := 126
	data := make([]byte, l)
	for i := 0; i < l; i++ {
		data[i] = byte(start + rng.IntN(end-start+1))
	}
	return data
}

type DecimalScatterOp struct {
}

func (scatter DecimalScatterOp) NullValue() common.Decimal {
	zero := decimal.Zero
	return common.Decimal{Decimal: zero}
}

func (scatter DecimalScatterOp) RandValue(rng *rand.Rand) common.Decimal {
	return common.Decimal{
		Decimal: decimal.MustNew(rng.Int64N(1000000), 2),
	}
}

type DateScatterOp struct {
}

func (scatter DateScatterOp) NullValue() common.Date {
	return common.Date{Year: 1970, Month: 1, Day: 1}
}

func (scatter DateScatterOp) RandValue(rng *rand.Rand) common.Date {
	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	diff := rng.Int64N(30 * 365 * 24 * 3600)
	return common.DateFromTime(time.Unix(base+diff, 0).UTC())
}

// FillRandom writes count random rows into the flat vector vec.
// Each row is null with probability nullRatio.
func FillRandom(vec *Vector, count int, nullRatio float64, rng *rand.Rand) {
	util.AssertFunc(vec.PhyFormat().IsFlat())
	switch vec.Typ().GetInternalType() {
	case common.BOOL:
		fillLoop[bool](vec, count, BoolScatterOp{}, rng)
	case common.INT8:
		fillLoop[int8](vec, count, Int8ScatterOp{}, rng)
	case common.INT32:
		fillLoop[int32](vec, count, Int32ScatterOp{}, rng)
	case common.INT64:
		fillLoop[int64](vec, count, Int64ScatterOp{}, rng)
	case common.UINT64:
		fillLoop[uint64](vec, count, Uint64ScatterOp{}, rng)
	case common.DOUBLE:
		fillLoop[float64](vec, count, Float64ScatterOp{}, rng)
	case common.INT128:
		fillLoop[common.Hugeint](vec, count, HugeintScatterOp{}, rng)
	case common.DECIMAL:
		fillLoop[common.Decimal](vec, count, DecimalScatterOp{}, rng)
	case common.DATE:
		fillLoop[common.Date](vec, count, DateScatterOp{}, rng)
	case common.VARCHAR:
		data := GetSliceInPhyFormatFlat[common.String](vec)
		for i := 0; i < count; i++ {
			data[i] = AddStringOrBlob(vec, randBytes(rng, rng.IntN(32)))
		}
	default:
		panic(fmt.Sprintf("usp %v", vec.Typ()))
	}
	if nullRatio <= 0 {
		return
	}
	for i := 0; i < count; i++ {
		if rng.Float64() < nullRatio {
			SetNullInPhyFormatFlat(vec, uint64(i), true)
		}
	}
}

func fillLoop[T any](vec *Vector, count int, op ScatterOp[T], rng *rand.Rand) {
	data := GetSliceInPhyFormatFlat[T](vec)
	for i := 0; i < count; i++ {
		data[i] = op.RandValue(rng)
	}
}
