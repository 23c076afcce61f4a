package schemafile

import (
	"strconv"
	"strings"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

var builtins = map[string]schema.Scalar{
	"s8": schema.S8, "s16": schema.S16, "s32": schema.S32, "s64": schema.S64,
	"u8": schema.U8, "u16": schema.U16, "u32": schema.U32, "u64": schema.U64,
	"snorm8": schema.SNorm8, "snorm16": schema.SNorm16, "snorm32": schema.SNorm32, "snorm64": schema.SNorm64,
	"unorm8": schema.UNorm8, "unorm16": schema.UNorm16, "unorm32": schema.UNorm32, "unorm64": schema.UNorm64,
	"f16": schema.F16, "f32": schema.F32, "f64": schema.F64,
}

func isBuiltin(name string) bool {
	if _, ok := builtins[name]; ok {
		return true
	}
	return name == "string"
}

// ParseType parses a field type expression:
//
//	u8 u16 u32 u64 s8 .. s64        integers
//	unorm8 .. unorm64, snorm8 ..    normalized integers
//	f16 f32 f64                     floats
//	vec2<f32> .. vec4<T>            vectors of a scalar
//	mat2<f32> .. mat4<T>            square matrices of a scalar
//	string<16> string<16,raw>       fixed-capacity strings
//	[4]T                            arrays
//	Name                            a declared type, via lookup
//
// lookup may be nil when no named types are available.
func ParseType(expr string, lookup func(string) (schema.Type, error)) (schema.Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.InvalidInput(errors.PhaseParse, "empty type expression")
	}

	if s, ok := builtins[expr]; ok {
		return s, nil
	}

	if strings.HasPrefix(expr, "[") {
		end := strings.IndexByte(expr, ']')
		if end < 0 {
			return nil, badExpr(expr, "missing ]")
		}
		n, err := parseCount(expr[1:end])
		if err != nil {
			return nil, badExpr(expr, "array length: "+err.Error())
		}
		elem, err := ParseType(expr[end+1:], lookup)
		if err != nil {
			return nil, err
		}
		arr, err := schema.NewArray(elem, n)
		if err != nil {
			return nil, err
		}
		return arr, nil
	}

	if head, args, ok := generic(expr); ok {
		switch {
		case head == "string":
			return parseString(expr, args)
		case strings.HasPrefix(head, "vec"), strings.HasPrefix(head, "mat"):
			n, err := parseCount(head[3:])
			if err != nil {
				return nil, badExpr(expr, "dimension: "+err.Error())
			}
			if len(args) != 1 {
				return nil, badExpr(expr, "want one element type")
			}
			elem, ok := builtins[args[0]]
			if !ok {
				return nil, badExpr(expr, "element type must be a scalar")
			}
			if head[:3] == "vec" {
				return schema.NewVector(elem, n)
			}
			return schema.NewMatrix(elem, n)
		}
		return nil, badExpr(expr, "unknown generic type "+head)
	}

	if !isIdent(expr) {
		return nil, badExpr(expr, "not a type")
	}
	if lookup == nil {
		return nil, errors.New(errors.PhaseParse, errors.KindUnresolvedReference).
			Value(expr).
			Detail("unknown type %q", expr).
			Build()
	}
	return lookup(expr)
}

// generic splits "head<a,b>" into head and its trimmed arguments.
func generic(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '<')
	if open <= 0 || !strings.HasSuffix(expr, ">") {
		return "", nil, false
	}
	args := strings.Split(expr[open+1:len(expr)-1], ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return expr[:open], args, true
}

func parseString(expr string, args []string) (schema.Type, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, badExpr(expr, "want string<capacity> or string<capacity,encoding>")
	}
	n, err := parseCount(args[0])
	if err != nil {
		return nil, badExpr(expr, "capacity: "+err.Error())
	}
	enc := schema.EncodingUTF8
	if len(args) == 2 {
		switch args[1] {
		case "utf8":
		case "raw":
			enc = schema.EncodingRaw
		default:
			return nil, badExpr(expr, "unknown encoding "+args[1])
		}
	}
	return schema.NewString(n, enc)
}

func parseCount(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r == '.', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func badExpr(expr, why string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Value(expr).
		Detail("type %q: %s", expr, why).
		Build()
}
