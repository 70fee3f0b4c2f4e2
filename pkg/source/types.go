package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daviszhen/vec/pkg/common"
)

// ParseTypes parses a comma separated list of type names like
// "integer,varchar,decimal(12,2),date".
func ParseTypes(s string) ([]common.LType, error) {
	var ret []common.LType
	for _, name := range splitTypeList(s) {
		typ, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, typ)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: empty type list", ErrUnsupportedType)
	}
	return ret, nil
}

// splitTypeList splits on the commas outside parentheses.
func splitTypeList(s string) []string {
	var ret []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				ret = append(ret, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		ret = append(ret, s[start:])
	}
	return ret
}

func ParseType(name string) (common.LType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "boolean", "bool":
		return common.BooleanType(), nil
	case "tinyint":
		return common.TinyintType(), nil
	case "smallint":
		return common.SmallintType(), nil
	case "integer", "int":
		return common.IntegerType(), nil
	case "bigint":
		return common.BigintType(), nil
	case "ubigint":
		return common.UbigintType(), nil
	case "float":
		return common.FloatType(), nil
	case "double":
		return common.DoubleType(), nil
	case "varchar", "text":
		return common.VarcharType(), nil
	case "date":
		return common.DateType(), nil
	}
	if rest, ok := strings.CutPrefix(name, "decimal("); ok {
		rest, ok = strings.CutSuffix(rest, ")")
		if !ok {
			return common.LType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		parts := strings.Split(rest, ",")
		if len(parts) != 2 {
			return common.LType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return common.LType{}, fmt.Errorf("%w: %s: %w", ErrUnsupportedType, name, err)
		}
		scale, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return common.LType{}, fmt.Errorf("%w: %s: %w", ErrUnsupportedType, name, err)
		}
		if width <= 0 || width > common.DecimalMaxWidth || scale < 0 || scale > width {
			return common.LType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
		}
		return common.DecimalType(width, scale), nil
	}
	return common.LType{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
}
