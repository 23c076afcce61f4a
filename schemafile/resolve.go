package schemafile

import (
	"go.uber.org/zap"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

type resolver struct {
	decls    map[string]*TypeDecl
	done     map[string]schema.Type
	visiting map[string]bool
	order    []schema.Type
}

// Resolve converts the declarations into schema types. Duplicate names,
// unknown references and cycles are errors.
func (f *File) Resolve() (*Schema, error) {
	r := &resolver{
		decls:    make(map[string]*TypeDecl, len(f.Types)),
		done:     make(map[string]schema.Type, len(f.Types)),
		visiting: make(map[string]bool),
	}

	for i := range f.Types {
		d := &f.Types[i]
		if d.Name == "" {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(i).
				Detail("type declaration %d has no name", i).
				Build()
		}
		if _, dup := r.decls[d.Name]; dup {
			return nil, errors.DuplicateName(errors.PhaseParse, nil, d.Name)
		}
		if isBuiltin(d.Name) {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(d.Name).
				Detail("type name %q shadows a builtin type", d.Name).
				Build()
		}
		r.decls[d.Name] = d
	}

	for i := range f.Types {
		if _, err := r.resolve(f.Types[i].Name, nil); err != nil {
			return nil, err
		}
	}

	return &Schema{Package: f.Package, Types: r.order, byName: r.done}, nil
}

func (r *resolver) resolve(name string, path []string) (schema.Type, error) {
	if t, ok := r.done[name]; ok {
		return t, nil
	}
	d, ok := r.decls[name]
	if !ok {
		return nil, errors.New(errors.PhaseParse, errors.KindUnresolvedReference).
			Path(path...).
			Value(name).
			Detail("unknown type %q", name).
			Build()
	}
	if r.visiting[name] {
		return nil, errors.New(errors.PhaseParse, errors.KindRecursiveType).
			Path(path...).
			Type(name).
			Detail("type %q refers to itself", name).
			Build()
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	t, err := r.build(d, []string{name})
	if err != nil {
		return nil, err
	}
	r.done[name] = t
	r.order = append(r.order, t)

	Logger().Debug("type resolved", zap.String("name", name), zap.String("kind", d.Kind))
	return t, nil
}

func (r *resolver) build(d *TypeDecl, path []string) (schema.Type, error) {
	switch d.Kind {
	case KindRecord:
		fields := make([]schema.RecordField, 0, len(d.Fields))
		for _, fd := range d.Fields {
			if fd.isPadding() {
				fields = append(fields, schema.Padding(fd.Pad))
				continue
			}
			t, err := ParseType(fd.Type, r.lookup(appendPath(path, fd.Name)))
			if err != nil {
				return nil, withPath(err, appendPath(path, fd.Name))
			}
			fields = append(fields, schema.Field(fd.Name, t))
		}
		rec, err := schema.NewSizedRecord(d.Name, d.Size, fields...)
		if err != nil {
			return nil, err
		}
		return rec, nil

	case KindPacked:
		fields := make([]schema.PackedField, 0, len(d.Fields))
		for _, fd := range d.Fields {
			if fd.isPadding() {
				fields = append(fields, schema.PadBits(fd.Pad))
				continue
			}
			t, err := ParseType(fd.Type, r.lookup(appendPath(path, fd.Name)))
			if err != nil {
				return nil, withPath(err, appendPath(path, fd.Name))
			}
			bits := fd.Bits
			if bits == 0 {
				bits = uint32(t.SizeInBits())
			}
			fields = append(fields, schema.BitField(fd.Name, t, bits))
		}
		p, err := schema.NewPacked(d.Name, d.Bits, fields...)
		if err != nil {
			return nil, withPath(err, path)
		}
		return p, nil

	case KindFlags:
		b, err := schema.NewBoolSet(d.Name, d.Flags...)
		if err != nil {
			return nil, withPath(err, path)
		}
		return b, nil

	default:
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(path...).
			Value(d.Kind).
			Detail("unknown declaration kind %q; want record, packed or flags", d.Kind).
			Build()
	}
}

func (r *resolver) lookup(path []string) func(string) (schema.Type, error) {
	return func(name string) (schema.Type, error) {
		return r.resolve(name, path)
	}
}

func withPath(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = path
	}
	return err
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
