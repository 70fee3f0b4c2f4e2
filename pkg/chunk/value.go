package chunk

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/huandu/go-clone"

	"github.com/daviszhen/vec/pkg/common"
)

// Value is a single boxed value. The field holding the payload
// depends on the physical type of Typ:
//
//	BOOL                  Bool
//	INT8..INT64           I64
//	UINT8..UINT64,POINTER U64
//	FLOAT, DOUBLE         F64
//	INT128                I64 (upper), U64 (lower)
//	VARCHAR               Str
//	DATE                  I64 (year), I64_1 (month), I64_2 (day)
//	INTERVAL              I64 (months), I64_1 (days), I64_2 (micros)
//	DECIMAL               Dec
//	STRUCT, LIST          Children
type Value struct {
	Typ    common.LType
	IsNull bool
	//value
	Bool     bool
	I64      int64
	I64_1    int64
	I64_2    int64
	U64      uint64
	F64      float64
	Str      string
	Dec      common.Decimal
	Children []*Value
}

func NewNullValue(typ common.LType) *Value {
	return &Value{Typ: typ, IsNull: true}
}

func NewBooleanValue(b bool) *Value {
	return &Value{Typ: common.BooleanType(), Bool: b}
}

func NewIntegerValue(i int32) *Value {
	return &Value{Typ: common.IntegerType(), I64: int64(i)}
}

func NewBigintValue(i int64) *Value {
	return &Value{Typ: common.BigintType(), I64: i}
}

func NewUbigintValue(u uint64) *Value {
	return &Value{Typ: common.UbigintType(), U64: u}
}

func NewDoubleValue(f float64) *Value {
	return &Value{Typ: common.DoubleType(), F64: f}
}

func NewVarcharValue(s string) *Value {
	return &Value{Typ: common.VarcharType(), Str: s}
}

func NewDateValue(d common.Date) *Value {
	return &Value{
		Typ:   common.DateType(),
		I64:   int64(d.Year),
		I64_1: int64(d.Month),
		I64_2: int64(d.Day),
	}
}

func NewIntervalValue(iv common.Interval) *Value {
	return &Value{
		Typ:   common.IntervalType(),
		I64:   int64(iv.Months),
		I64_1: int64(iv.Days),
		I64_2: iv.Micros,
	}
}

func NewHugeintValue(h common.Hugeint) *Value {
	return &Value{Typ: common.HugeintType(), I64: h.Upper, U64: h.Lower}
}

func NewDecimalValue(d common.Decimal, width, scale int) *Value {
	return &Value{Typ: common.DecimalType(width, scale), Dec: d}
}

func NewStructValue(typ common.LType, fields []*Value) *Value {
	return &Value{Typ: typ, Children: fields}
}

func NewListValue(childTyp common.LType, elems []*Value) *Value {
	return &Value{Typ: common.ListType(childTyp), Children: elems}
}

func (val *Value) Copy() *Value {
	return clone.Clone(val).(*Value)
}

func (val *Value) Equal(o *Value) bool {
	if !val.Typ.Equal(o.Typ) || val.IsNull != o.IsNull {
		return false
	}
	if val.IsNull {
		return true
	}
	switch val.Typ.PTyp {
	case common.BOOL:
		return val.Bool == o.Bool
	case common.INT8, common.INT16, common.INT32, common.INT64:
		return val.I64 == o.I64
	case common.UINT8, common.UINT16, common.UINT32, common.UINT64, common.POINTER:
		return val.U64 == o.U64
	case common.FLOAT, common.DOUBLE:
		return val.F64 == o.F64 || math.IsNaN(val.F64) && math.IsNaN(o.F64)
	case common.INT128:
		return val.I64 == o.I64 && val.U64 == o.U64
	case common.VARCHAR:
		return val.Str == o.Str
	case common.DATE, common.INTERVAL:
		return val.I64 == o.I64 && val.I64_1 == o.I64_1 && val.I64_2 == o.I64_2
	case common.DECIMAL:
		return val.Dec.Equal(&o.Dec)
	case common.STRUCT, common.LIST:
		if len(val.Children) != len(o.Children) {
			return false
		}
		for i := range val.Children {
			if !val.Children[i].Equal(o.Children[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("usp %v", val.Typ))
	}
}

func (val Value) String() string {
	if val.IsNull {
		return "NULL"
	}
	switch val.Typ.PTyp {
	case common.BOOL:
		return fmt.Sprintf("%v", val.Bool)
	case common.INT8, common.INT16, common.INT32, common.INT64:
		return fmt.Sprintf("%d", val.I64)
	case common.UINT8, common.UINT16, common.UINT32, common.UINT64:
		return fmt.Sprintf("%d", val.U64)
	case common.POINTER:
		return fmt.Sprintf("0x%x", val.U64)
	case common.FLOAT, common.DOUBLE:
		return fmt.Sprintf("%v", val.F64)
	case common.VARCHAR:
		return val.Str
	case common.DECIMAL:
		return val.Dec.String()
	case common.DATE:
		return common.Date{
			Year:  int32(val.I64),
			Month: int32(val.I64_1),
			Day:   int32(val.I64_2),
		}.String()
	case common.INTERVAL:
		return common.Interval{
			Months: int32(val.I64),
			Days:   int32(val.I64_1),
			Micros: val.I64_2,
		}.String()
	case common.INT128:
		h := big.NewInt(val.I64)
		l := new(big.Int).SetUint64(val.U64)
		h.Lsh(h, 64)
		h.Add(h, l)
		return h.String()
	case common.STRUCT:
		sb := strings.Builder{}
		sb.WriteString("{")
		for i, child := range val.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(val.Typ.ChildNames[i])
			sb.WriteString(": ")
			sb.WriteString(child.String())
		}
		sb.WriteString("}")
		return sb.String()
	case common.LIST:
		sb := strings.Builder{}
		sb.WriteString("[")
		for i, child := range val.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(child.String())
		}
		sb.WriteString("]")
		return sb.String()
	default:
		panic(fmt.Sprintf("usp %v", val.Typ))
	}
}
