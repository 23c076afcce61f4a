package schema

import (
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/arith"
)

// MaxPackedFieldBits is the widest bit range a packed field may declare.
const MaxPackedFieldBits = 64

// Validate checks t and everything reachable from it against the type model
// rules. Constructors call it; types assembled as struct literals should be
// validated before they are laid out.
func Validate(t Type) error {
	return validate(t, nil, make(map[Type]bool))
}

func validate(t Type, path []string, active map[Type]bool) error {
	switch v := t.(type) {
	case nil:
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("missing type").
			Build()
	case Scalar:
		return v.validate(path)
	case String:
		return v.validate(path)
	case Vector:
		return v.validate(path)
	case Matrix:
		return v.validate(path)
	case *Array:
		return validateArray(v, path, active)
	case *BoolSet:
		return validateBoolSet(v, path)
	case *Record:
		return validateRecord(v, path, active)
	case *Packed:
		return validatePacked(v, path)
	default:
		return errors.New(errors.PhaseType, errors.KindUnsupported).
			Path(path...).
			Detail("unknown type variant %T", t).
			Build()
	}
}

func enter(t Type, path []string, active map[Type]bool) error {
	if active[t] {
		return errors.New(errors.PhaseType, errors.KindRecursiveType).
			Path(path...).
			Type(t.String()).
			Detail("type contains itself").
			Build()
	}
	active[t] = true
	return nil
}

func validateArray(a *Array, path []string, active map[Type]bool) error {
	if a == nil {
		return validate(nil, path, active)
	}
	if err := enter(a, path, active); err != nil {
		return err
	}
	defer delete(active, a)

	if a.Count == 0 {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).Type(a.String()).
			Detail("array length must be positive").
			Build()
	}
	if err := validate(a.Elem, appendPath(path, "[]"), active); err != nil {
		return err
	}
	if !arith.FitsU32(a.SizeInOctets()) {
		return errors.Overflow(errors.PhaseType, path, a.String())
	}
	return nil
}

func validateBoolSet(b *BoolSet, path []string) error {
	if b == nil || len(b.Flags) == 0 {
		return errors.New(errors.PhaseType, errors.KindInvalidInput).
			Path(path...).
			Detail("boolean set needs at least one flag").
			Build()
	}
	seen := make(map[string]struct{}, len(b.Flags))
	for _, name := range b.Flags {
		if name == "" {
			return errors.New(errors.PhaseType, errors.KindInvalidInput).
				Path(path...).Type(b.String()).
				Detail("flag name is empty").
				Build()
		}
		if _, dup := seen[name]; dup {
			return errors.DuplicateName(errors.PhaseType, appendPath(path, b.String()), name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func validateRecord(r *Record, path []string, active map[Type]bool) error {
	if r == nil {
		return validate(nil, path, active)
	}
	if err := enter(r, path, active); err != nil {
		return err
	}
	defer delete(active, r)

	if len(path) == 0 {
		path = []string{r.String()}
	}

	seen := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if f.IsPadding() {
			if f.Padding == 0 {
				return errors.New(errors.PhaseType, errors.KindInvalidInput).
					Path(path...).
					Detail("padding must be at least one octet").
					Build()
			}
			continue
		}
		if f.Name == "" {
			return errors.New(errors.PhaseType, errors.KindInvalidInput).
				Path(path...).
				Detail("record field without a name").
				Build()
		}
		if _, dup := seen[f.Name]; dup {
			return errors.DuplicateName(errors.PhaseType, path, f.Name)
		}
		seen[f.Name] = struct{}{}

		if err := validate(f.Type, appendPath(path, f.Name), active); err != nil {
			return err
		}
	}

	if !arith.FitsU32(r.SizeInOctets()) {
		return errors.Overflow(errors.PhaseType, path, r.String())
	}
	return nil
}

func validatePacked(p *Packed, path []string) error {
	if p == nil {
		return validate(nil, path, nil)
	}
	if len(path) == 0 {
		path = []string{p.String()}
	}

	seen := make(map[string]struct{}, len(p.Fields))
	for _, f := range p.Fields {
		if f.IsPadding() {
			if f.Bits == 0 {
				return errors.New(errors.PhaseType, errors.KindInvalidInput).
					Path(path...).
					Detail("padding must be at least one bit").
					Build()
			}
			continue
		}
		fieldPath := appendPath(path, f.Name)
		if f.Name == "" {
			return errors.New(errors.PhaseType, errors.KindInvalidInput).
				Path(path...).
				Detail("packed field without a name").
				Build()
		}
		if _, dup := seen[f.Name]; dup {
			return errors.DuplicateName(errors.PhaseType, path, f.Name)
		}
		seen[f.Name] = struct{}{}

		s, ok := f.Type.(Scalar)
		if ok {
			if err := s.validate(fieldPath); err != nil {
				return err
			}
		}
		if !ok || !s.Kind().IsInteger() {
			return errors.New(errors.PhaseType, errors.KindUnsupportedPackedType).
				Path(fieldPath...).
				Type(f.Type.String()).
				Detail("packed fields must be integer or normalized integer scalars").
				Build()
		}
		if f.Bits == 0 || f.Bits > MaxPackedFieldBits {
			return errors.New(errors.PhaseType, errors.KindUnsupportedFieldWidth).
				Path(fieldPath...).
				Type(s.String()).
				Detail("packed field width %d outside [1, %d]", f.Bits, MaxPackedFieldBits).
				Value(f.Bits).
				Build()
		}
	}
	return nil
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
