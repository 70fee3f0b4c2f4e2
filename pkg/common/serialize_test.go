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
package common

import (
	"math"
	"testing"

	dec "github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/vec/pkg/util"
)

func Test_serialize(t *testing.T) {
	serial := &util.BufferSerialize{}

	require.NoError(t, util.Write[bool](true, serial))
	require.NoError(t, util.Write[float64](math.MaxFloat64, serial))
	long := StringFromGo("a string longer than twelve bytes")
	require.NoError(t, WriteString(long, serial))
	short := StringFromGo("short")
	require.NoError(t, WriteString(short, serial))
	require.NoError(t, util.Write[Hugeint](
		Hugeint{Lower: math.MaxUint64 / 2, Upper: math.MaxInt64 / 2},
		serial,
	))
	require.NoError(t, util.Write[Date](Date{Year: 2024, Month: 9, Day: 8}, serial))
	require.NoError(t, util.Write[Interval](Interval{Months: 1, Days: 2, Micros: 3}, serial))
	require.NoError(t, util.Write[Decimal](Decimal{Decimal: dec.MustNew(199, 2)}, serial))

	deserial := util.NewBufferDeserialize(serial.Bytes())
	b := false
	require.NoError(t, util.Read[bool](&b, deserial))
	assert.True(t, b)

	f64 := float64(0)
	require.NoError(t, util.Read[float64](&f64, deserial))
	assert.Equal(t, math.MaxFloat64, f64)

	s1 := String{}
	require.NoError(t, ReadString(&s1, deserial))
	assert.True(t, long.Equal(&s1))
	s2 := String{}
	require.NoError(t, ReadString(&s2, deserial))
	assert.True(t, short.Equal(&s2))

	hi := Hugeint{}
	require.NoError(t, util.Read[Hugeint](&hi, deserial))
	assert.Equal(t, Hugeint{Lower: math.MaxUint64 / 2, Upper: math.MaxInt64 / 2}, hi)

	d1 := Date{}
	require.NoError(t, util.Read[Date](&d1, deserial))
	assert.Equal(t, Date{Year: 2024, Month: 9, Day: 8}, d1)

	iv := Interval{}
	require.NoError(t, util.Read[Interval](&iv, deserial))
	assert.Equal(t, Interval{Months: 1, Days: 2, Micros: 3}, iv)

	dec1 := Decimal{}
	require.NoError(t, util.Read[Decimal](&dec1, deserial))
	expect := Decimal{Decimal: dec.MustNew(199, 2)}
	assert.True(t, expect.Equal(&dec1))
}

func Test_ltypeSerialize(t *testing.T) {
	typs := []LType{
		IntegerType(),
		DecimalType(10, 2),
		VarcharType(),
		ListType(BigintType()),
		StructType([]string{"a", "b"}, []LType{
			DoubleType(),
			ListType(VarcharType()),
		}),
	}
	serial := &util.BufferSerialize{}
	for _, typ := range typs {
		require.NoError(t, typ.Serialize(serial))
	}
	deserial := util.NewBufferDeserialize(serial.Bytes())
	for _, typ := range typs {
		got, err := DeserializeLType(deserial)
		require.NoError(t, err)
		assert.True(t, typ.Equal(got), "%v != %v", typ, got)
		assert.Equal(t, typ.PTyp, got.PTyp)
		assert.Equal(t, typ.ChildNames, got.ChildNames)
	}
}
