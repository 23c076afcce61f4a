package binlayout

import (
	"go.uber.org/zap"

	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/cursor"
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/schema"
)

// Config holds schema compilation options.
type Config struct {
	// StringPolicy applies to every string field of the schema.
	StringPolicy codec.TruncatePolicy
	// Unchecked makes Cursor and Bind return unchecked cursors.
	Unchecked bool
}

// Compiled is a schema whose every type has been laid out and compiled.
type Compiled struct {
	Types  []*codec.Field
	byName map[string]*codec.Field
	cfg    Config
}

// Compile lays out and compiles every type in order. The first error aborts
// the whole schema; no partial result is returned.
func Compile(types []schema.Type, cfg *Config) (*Compiled, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	compiler := codec.NewCompiler(&codec.Config{StringPolicy: cfg.StringPolicy})
	out := &Compiled{
		Types:  make([]*codec.Field, 0, len(types)),
		byName: make(map[string]*codec.Field, len(types)),
		cfg:    *cfg,
	}

	for _, t := range types {
		if t == nil {
			return nil, errors.InvalidInput(errors.PhaseType, "nil type in schema")
		}
		name := t.String()
		if _, dup := out.byName[name]; dup {
			return nil, errors.DuplicateName(errors.PhaseType, nil, name)
		}

		f, err := compiler.Compile(t)
		if err != nil {
			Logger().Debug("schema compilation failed",
				zap.String("type", name),
				zap.Error(err))
			return nil, err
		}
		out.Types = append(out.Types, f)
		out.byName[name] = f
	}

	Logger().Debug("schema compiled", zap.Int("types", len(out.Types)))
	return out, nil
}

// Type returns the compiled type with the given name.
func (c *Compiled) Type(name string) (*codec.Field, error) {
	f, ok := c.byName[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseAccess, "type", name)
	}
	return f, nil
}

// Cursor creates a cursor over data treated as an array of the named type
// and returns it with the root view.
func (c *Compiled) Cursor(name string, data []byte) (*cursor.Cursor, cursor.View, error) {
	f, err := c.Type(name)
	if err != nil {
		return nil, cursor.View{}, err
	}
	var cur *cursor.Cursor
	if c.cfg.Unchecked {
		cur = cursor.NewUnchecked(data, f.Size)
	} else {
		cur = cursor.NewChecked(data, f.Size)
	}
	return cur, cur.View(f), nil
}

// Bind is Cursor over count elements of the named type stored in mem at
// offset. The cursor aliases the memory; nothing is copied.
func (c *Compiled) Bind(mem Memory, offset uint32, name string, count int) (*cursor.Cursor, cursor.View, error) {
	f, err := c.Type(name)
	if err != nil {
		return nil, cursor.View{}, err
	}
	length := uint64(f.Size) * uint64(count)
	if count < 0 || uint64(offset)+length > uint64(mem.Size()) {
		return nil, cursor.View{}, errors.New(errors.PhaseAccess, errors.KindIndexOutOfRange).
			Type(name).
			Value(count).
			Detail("%d elements at offset %d exceed memory of %d octets", count, offset, mem.Size()).
			Build()
	}
	data, err := mem.Read(offset, uint32(length))
	if err != nil {
		return nil, cursor.View{}, err
	}
	return c.Cursor(name, data)
}
