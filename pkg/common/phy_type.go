package common

import (
	"fmt"
	"unsafe"
)

// PhyType is the in-memory layout of a vector's data array.
type PhyType int

const (
	BOOL     PhyType = 1
	UINT8    PhyType = 2
	INT8     PhyType = 3
	UINT16   PhyType = 4
	INT16    PhyType = 5
	UINT32   PhyType = 6
	INT32    PhyType = 7
	UINT64   PhyType = 8
	INT64    PhyType = 9
	FLOAT    PhyType = 11
	DOUBLE   PhyType = 12
	INTERVAL PhyType = 21
	LIST     PhyType = 23
	STRUCT   PhyType = 24
	VARCHAR  PhyType = 200
	INT128   PhyType = 204
	DATE     PhyType = 207
	POINTER  PhyType = 208
	DECIMAL  PhyType = 209

	INVALID PhyType = 255
)

const (
	Int64Size   = int(unsafe.Sizeof(int64(0)))
	VarcharSize = int(unsafe.Sizeof(String{}))
)

func (pt PhyType) String() string {
	switch pt {
	case BOOL:
		return "BOOL"
	case UINT8:
		return "UINT8"
	case INT8:
		return "INT8"
	case UINT16:
		return "UINT16"
	case INT16:
		return "INT16"
	case UINT32:
		return "UINT32"
	case INT32:
		return "INT32"
	case UINT64:
		return "UINT64"
	case INT64:
		return "INT64"
	case FLOAT:
		return "FLOAT"
	case DOUBLE:
		return "DOUBLE"
	case INTERVAL:
		return "INTERVAL"
	case LIST:
		return "LIST"
	case STRUCT:
		return "STRUCT"
	case VARCHAR:
		return "VARCHAR"
	case INT128:
		return "INT128"
	case DATE:
		return "DATE"
	case POINTER:
		return "POINTER"
	case DECIMAL:
		return "DECIMAL"
	case INVALID:
		return "INVALID"
	}
	return fmt.Sprintf("PhyType(%d)", int(pt))
}

// Size is the width of one element in a vector's data array.
// STRUCT vectors have no data array of their own.
func (pt PhyType) Size() int {
	switch pt {
	case BOOL, INT8, UINT8:
		return 1
	case INT16, UINT16:
		return 2
	case INT32, UINT32, FLOAT:
		return 4
	case INT64, UINT64, DOUBLE:
		return Int64Size
	case INT128:
		return int(unsafe.Sizeof(Hugeint{}))
	case VARCHAR:
		return VarcharSize
	case INTERVAL:
		return int(unsafe.Sizeof(Interval{}))
	case STRUCT:
		return 0
	case LIST:
		return int(unsafe.Sizeof(ListEntry{}))
	case DATE:
		return int(unsafe.Sizeof(Date{}))
	case POINTER:
		return int(unsafe.Sizeof(unsafe.Pointer(nil)))
	case DECIMAL:
		return int(unsafe.Sizeof(Decimal{}))
	default:
		panic(fmt.Sprintf("usp %v", pt))
	}
}

// IsConstant reports a fixed-width type that lives entirely in the
// data array.
func (pt PhyType) IsConstant() bool {
	switch pt {
	case BOOL, UINT8, INT8, UINT16, INT16, UINT32, INT32,
		UINT64, INT64, FLOAT, DOUBLE,
		INTERVAL, INT128, DATE, POINTER, DECIMAL:
		return true
	}
	return false
}

func (pt PhyType) IsNested() bool {
	return pt == STRUCT || pt == LIST
}
