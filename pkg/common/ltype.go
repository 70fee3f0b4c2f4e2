package common

import (
	"fmt"
	"strings"

	"github.com/huandu/go-clone"

	"github.com/daviszhen/vec/pkg/util"
)

// LType is the logical type of a column. STRUCT types carry one child
// per field with its name in ChildNames. LIST types carry exactly one
// child, the element type.
type LType struct {
	Id         LTypeId
	PTyp       PhyType
	Width      int
	Scale      int
	Children   []LType
	ChildNames []string
}

func Numeric() []LType {
	typs := []LTypeId{
		LTID_TINYINT, LTID_SMALLINT, LTID_INTEGER,
		LTID_BIGINT, LTID_HUGEINT, LTID_FLOAT,
		LTID_DOUBLE, LTID_DECIMAL, LTID_UTINYINT,
		LTID_USMALLINT, LTID_UINTEGER, LTID_UBIGINT,
	}
	ret := make([]LType, len(typs))
	for i, typ := range typs {
		ret[i].Id = typ
		ret[i].PTyp = ret[i].GetInternalType()
	}
	return ret
}

func (lt LType) Serialize(serial util.Serialize) error {
	err := util.Write[int](int(lt.Id), serial)
	if err != nil {
		return err
	}
	err = util.Write[int](lt.Width, serial)
	if err != nil {
		return err
	}
	err = util.Write[int](lt.Scale, serial)
	if err != nil {
		return err
	}
	err = util.Write[int](len(lt.Children), serial)
	if err != nil {
		return err
	}
	for i, child := range lt.Children {
		name := ""
		if i < len(lt.ChildNames) {
			name = lt.ChildNames[i]
		}
		err = util.WriteString(name, serial)
		if err != nil {
			return err
		}
		err = child.Serialize(serial)
		if err != nil {
			return err
		}
	}
	return err
}

func DeserializeLType(deserial util.Deserialize) (LType, error) {
	id := 0
	width := 0
	scale := 0
	err := util.Read[int](&id, deserial)
	if err != nil {
		return LType{}, err
	}
	err = util.Read[int](&width, deserial)
	if err != nil {
		return LType{}, err
	}
	err = util.Read[int](&scale, deserial)
	if err != nil {
		return LType{}, err
	}

	ret := LType{
		Id:    LTypeId(id),
		Width: width,
		Scale: scale,
	}
	ret.PTyp = ret.GetInternalType()
	cnt := 0
	err = util.Read[int](&cnt, deserial)
	if err != nil {
		return LType{}, err
	}
	for i := 0; i < cnt; i++ {
		name, err := util.ReadString(deserial)
		if err != nil {
			return LType{}, err
		}
		child, err := DeserializeLType(deserial)
		if err != nil {
			return LType{}, err
		}
		ret.Children = append(ret.Children, child)
		if ret.Id == LTID_STRUCT {
			ret.ChildNames = append(ret.ChildNames, name)
		}
	}
	return ret, err
}

func MakeLType(id LTypeId) LType {
	ret := LType{Id: id}
	ret.PTyp = ret.GetInternalType()
	return ret
}

func Null() LType {
	return MakeLType(LTID_NULL)
}

func DecimalType(width, scale int) LType {
	ret := MakeLType(LTID_DECIMAL)
	ret.Width = width
	ret.Scale = scale
	return ret
}

func HugeintType() LType {
	return MakeLType(LTID_HUGEINT)
}

func BigintType() LType {
	return MakeLType(LTID_BIGINT)
}

func IntegerType() LType {
	return MakeLType(LTID_INTEGER)
}

func HashType() LType {
	return MakeLType(LTID_UBIGINT)
}

func FloatType() LType {
	return MakeLType(LTID_FLOAT)
}

func DoubleType() LType {
	return MakeLType(LTID_DOUBLE)
}

func TinyintType() LType {
	return MakeLType(LTID_TINYINT)
}

func SmallintType() LType {
	return MakeLType(LTID_SMALLINT)
}

func VarcharType() LType {
	return MakeLType(LTID_VARCHAR)
}

func DateType() LType {
	return MakeLType(LTID_DATE)
}

func BooleanType() LType {
	return MakeLType(LTID_BOOLEAN)
}

func IntervalType() LType {
	return MakeLType(LTID_INTERVAL)
}

func PointerType() LType {
	return MakeLType(LTID_POINTER)
}

func UbigintType() LType {
	return MakeLType(LTID_UBIGINT)
}

func UintegerType() LType {
	return MakeLType(LTID_UINTEGER)
}

func StructType(names []string, children []LType) LType {
	util.AssertFunc(len(names) == len(children))
	ret := MakeLType(LTID_STRUCT)
	ret.ChildNames = clone.Clone(names).([]string)
	ret.Children = CopyLTypes(children...)
	return ret
}

func ListType(child LType) LType {
	ret := MakeLType(LTID_LIST)
	ret.Children = []LType{child.Copy()}
	return ret
}

// CopyLTypes deep copies the types, nested children included.
func CopyLTypes(typs ...LType) []LType {
	if typs == nil {
		return []LType{}
	}
	return clone.Clone(typs).([]LType)
}

func (lt LType) Copy() LType {
	return clone.Clone(lt).(LType)
}

func (lt LType) IsNested() bool {
	return lt.PTyp.IsNested()
}

// ListChild is the element type of a LIST.
func (lt LType) ListChild() LType {
	util.AssertFunc(lt.Id == LTID_LIST && len(lt.Children) == 1)
	return lt.Children[0]
}

var Integrals = map[LTypeId]int{
	LTID_TINYINT:   0,
	LTID_SMALLINT:  0,
	LTID_INTEGER:   0,
	LTID_BIGINT:    0,
	LTID_UTINYINT:  0,
	LTID_USMALLINT: 0,
	LTID_UINTEGER:  0,
	LTID_UBIGINT:   0,
	LTID_HUGEINT:   0,
}

func (lt LType) IsIntegral() bool {
	if _, has := Integrals[lt.Id]; has {
		return true
	}
	return false
}

func (lt LType) IsPointer() bool {
	return lt.Id == LTID_POINTER
}

func (lt LType) Equal(o LType) bool {
	if lt.Id != o.Id {
		return false
	}
	switch lt.Id {
	case LTID_DECIMAL:
		return lt.Width == o.Width && lt.Scale == o.Scale
	case LTID_STRUCT, LTID_LIST:
		if len(lt.Children) != len(o.Children) {
			return false
		}
		for i := range lt.Children {
			if !lt.Children[i].Equal(o.Children[i]) {
				return false
			}
		}
	default:
	}
	return true
}

func (lt LType) GetInternalType() PhyType {
	switch lt.Id {
	case LTID_BOOLEAN:
		return BOOL
	case LTID_TINYINT:
		return INT8
	case LTID_UTINYINT:
		return UINT8
	case LTID_SMALLINT:
		return INT16
	case LTID_USMALLINT:
		return UINT16
	case LTID_NULL, LTID_INTEGER:
		return INT32
	case LTID_DATE:
		return DATE
	case LTID_UINTEGER:
		return UINT32
	case LTID_BIGINT, LTID_TIME, LTID_TIMESTAMP:
		return INT64
	case LTID_UBIGINT:
		return UINT64
	case LTID_HUGEINT:
		return INT128
	case LTID_FLOAT:
		return FLOAT
	case LTID_DOUBLE:
		return DOUBLE
	case LTID_DECIMAL:
		return DECIMAL
	case LTID_VARCHAR, LTID_BLOB:
		return VARCHAR
	case LTID_INTERVAL:
		return INTERVAL
	case LTID_STRUCT:
		return STRUCT
	case LTID_LIST:
		return LIST
	case LTID_POINTER:
		return POINTER
	case LTID_INVALID:
		return INVALID
	default:
		panic(fmt.Sprintf("usp logical type %v", lt.Id))
	}
}

func (lt LType) String() string {
	switch lt.Id {
	case LTID_DECIMAL:
		return fmt.Sprintf("%v(%d,%d)", lt.PTyp, lt.Width, lt.Scale)
	case LTID_LIST:
		return fmt.Sprintf("%v[]", lt.ListChild())
	case LTID_STRUCT:
		sb := strings.Builder{}
		sb.WriteString("STRUCT(")
		for i, child := range lt.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(lt.ChildNames[i])
			sb.WriteString(" ")
			sb.WriteString(child.String())
		}
		sb.WriteString(")")
		return sb.String()
	}
	return fmt.Sprintf("%v", lt.PTyp)
}

const (
	DecimalMaxWidth = 38
)
