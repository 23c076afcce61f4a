// Package witimport builds schema types from WIT type definitions.
//
// Fixed-size WIT types map onto the schema model:
//
//	bool                  u8 (0 or 1)
//	u8..u64, s8..s64      integers of the same width
//	f32, f64              floats
//	char                  u32 (Unicode scalar value)
//	record                record, fields in declaration order
//	tuple                 record with fields "0", "1", ...
//	flags                 boolean set
//	enum                  unsigned integer sized by the case count
//	string                fixed-capacity string, when Config.StringCapacity is set
//
// Lists, options, results, variants and resource handles have no fixed
// layout and are rejected with KindUnsupported. Fields are packed with no
// alignment padding, so the resulting layout is not the canonical ABI one.
package witimport

import (
	stderrors "errors"
	"fmt"
	"io"
	"strconv"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

// Config controls the mapping of types without a fixed size.
type Config struct {
	// StringCapacity, when non-zero, maps string to a fixed slot of this
	// many payload octets.
	StringCapacity uint32
	StringEncoding schema.Encoding
}

// Importer converts WIT types. Converted type definitions are cached, so a
// type used in several places maps to one schema type.
type Importer struct {
	cache  map[*wit.TypeDef]schema.Type
	active map[*wit.TypeDef]bool
	cfg    Config
}

// NewImporter creates an importer. A nil cfg rejects strings.
func NewImporter(cfg *Config) *Importer {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Importer{
		cache:  make(map[*wit.TypeDef]schema.Type),
		active: make(map[*wit.TypeDef]bool),
		cfg:    *cfg,
	}
}

// Type converts a single WIT type.
func (im *Importer) Type(t wit.Type) (schema.Type, error) {
	return im.convert(t, nil)
}

func (im *Importer) convert(t wit.Type, path []string) (schema.Type, error) {
	switch typ := t.(type) {
	case wit.Bool, wit.U8:
		return schema.U8, nil
	case wit.S8:
		return schema.S8, nil
	case wit.U16:
		return schema.U16, nil
	case wit.S16:
		return schema.S16, nil
	case wit.U32, wit.Char:
		return schema.U32, nil
	case wit.S32:
		return schema.S32, nil
	case wit.U64:
		return schema.U64, nil
	case wit.S64:
		return schema.S64, nil
	case wit.F32:
		return schema.F32, nil
	case wit.F64:
		return schema.F64, nil
	case wit.String:
		if im.cfg.StringCapacity == 0 {
			return nil, unsupported(path, "string", "strings need a fixed capacity")
		}
		return schema.NewString(im.cfg.StringCapacity, im.cfg.StringEncoding)
	case *wit.TypeDef:
		return im.typeDef(typ, path)
	default:
		return nil, unsupported(path, typeName(t), "no fixed-size representation")
	}
}

func (im *Importer) typeDef(td *wit.TypeDef, path []string) (schema.Type, error) {
	if cached, ok := im.cache[td]; ok {
		return cached, nil
	}
	if im.active[td] {
		return nil, errors.New(errors.PhaseImport, errors.KindRecursiveType).
			Path(path...).
			Type(typeName(td)).
			Build()
	}
	im.active[td] = true
	defer delete(im.active, td)

	name := qualifiedName(td)
	if len(path) == 0 && name != "" {
		path = []string{name}
	}

	var (
		out schema.Type
		err error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]schema.RecordField, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			ft, err := im.convert(f.Type, appendPath(path, f.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, schema.Field(f.Name, ft))
		}
		out, err = newRecord(name, fields)
	case *wit.Tuple:
		fields := make([]schema.RecordField, 0, len(kind.Types))
		for i, et := range kind.Types {
			fname := strconv.Itoa(i)
			ft, err := im.convert(et, appendPath(path, fname))
			if err != nil {
				return nil, err
			}
			fields = append(fields, schema.Field(fname, ft))
		}
		if name == "" {
			name = "tuple"
		}
		out, err = newRecord(name, fields)
	case *wit.Flags:
		flags := make([]string, len(kind.Flags))
		for i, f := range kind.Flags {
			flags[i] = f.Name
		}
		var b *schema.BoolSet
		if b, err = schema.NewBoolSet(name, flags...); err == nil {
			out = b
		}
	case *wit.Enum:
		out = discriminant(len(kind.Cases))
	case wit.Type:
		out, err = im.convert(kind, path)
	default:
		return nil, unsupported(path, typeName(td), "no fixed-size representation")
	}
	if err != nil {
		return nil, err
	}

	im.cache[td] = out
	return out, nil
}

func newRecord(name string, fields []schema.RecordField) (schema.Type, error) {
	r, err := schema.NewRecord(name, fields...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// discriminant is the unsigned integer that holds an enum case index.
func discriminant(cases int) schema.Scalar {
	switch {
	case cases <= 1<<8:
		return schema.U8
	case cases <= 1<<16:
		return schema.U16
	default:
		return schema.U32
	}
}

// Resolve converts every named record, tuple and flags definition in res.
// Definitions that cannot be represented are skipped; enums and aliases are
// inlined where they are used. Types owned by an interface or world are
// named owner.name, so only two definitions with the same owner and name
// collide.
func (im *Importer) Resolve(res *wit.Resolve) ([]schema.Type, error) {
	var out []schema.Type
	seen := make(map[string]bool)

	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		switch td.Kind.(type) {
		case *wit.Record, *wit.Tuple, *wit.Flags:
		default:
			continue
		}

		t, err := im.typeDef(td, nil)
		if err != nil {
			var e *errors.Error
			if stderrors.As(err, &e) && e.Kind == errors.KindUnsupported {
				Logger().Debug("skipping WIT type",
					zap.String("name", *td.Name),
					zap.Error(err))
				continue
			}
			return nil, err
		}
		if seen[t.String()] {
			return nil, errors.DuplicateName(errors.PhaseImport, nil, t.String())
		}
		seen[t.String()] = true
		out = append(out, t)
	}

	Logger().Debug("WIT types imported", zap.Int("types", len(out)))
	return out, nil
}

// Decode reads a WIT resolve in its JSON form and converts it.
func Decode(r io.Reader, cfg *Config) ([]schema.Type, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindInvalidData, err, "decode WIT JSON")
	}
	return NewImporter(cfg).Resolve(res)
}

func unsupported(path []string, typ, why string) error {
	return errors.New(errors.PhaseImport, errors.KindUnsupported).
		Path(path...).
		Type(typ).
		Detail("%s", why).
		Build()
}

// qualifiedName prefixes a named definition with the interface or world
// that owns it, so equal names from different interfaces stay distinct.
func qualifiedName(td *wit.TypeDef) string {
	if td.Name == nil {
		return ""
	}
	if owner := ownerName(td.Owner); owner != "" {
		return owner + "." + *td.Name
	}
	return *td.Name
}

func ownerName(o wit.TypeOwner) string {
	switch o := o.(type) {
	case *wit.Interface:
		if o != nil && o.Name != nil {
			return *o.Name
		}
	case *wit.World:
		if o != nil {
			return o.Name
		}
	}
	return ""
}

func typeName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok {
		if td.Name != nil {
			return *td.Name
		}
		switch td.Kind.(type) {
		case *wit.List:
			return "list"
		case *wit.Option:
			return "option"
		case *wit.Result:
			return "result"
		case *wit.Variant:
			return "variant"
		}
		return "typedef"
	}
	return fmt.Sprintf("%T", t)
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
