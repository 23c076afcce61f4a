// Package binlayout compiles schemas of fixed-layout binary records into
// zero-copy accessors.
//
// A schema is a list of types from the schema package. Compile lays out every
// record and packed type, checks declared sizes and builds one accessor
// contract tree per type:
//
//	binlayout/           Compile, Compiled, Memory
//	├── schema/          Type model and size algebra
//	├── layout/          Octet offsets and packed bit ranges
//	├── codec/           Per-field accessor contracts and bit arithmetic
//	├── cursor/          Shared-position views over a byte buffer
//	├── wasmmem/         Cursors over WebAssembly guest memory (wazero)
//	├── schemafile/      YAML schema files
//	├── witimport/       Schemas from WIT type definitions
//	├── errors/          Structured error types
//	└── cmd/layoutc/     Layout inspector
//
// # Quick Start
//
//	rgb, _ := schema.NewPacked("Rgb565", 16,
//		schema.BitField("r", schema.UNorm8, 5),
//		schema.BitField("g", schema.UNorm8, 6),
//		schema.BitField("b", schema.UNorm8, 5),
//	)
//	vertex, _ := schema.NewRecord("Vertex",
//		schema.Field("pos", schema.Vector{Elem: schema.F32, Count: 3}),
//		schema.Field("color", rgb),
//	)
//
//	compiled, err := binlayout.Compile([]schema.Type{rgb, vertex}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cur, v, err := compiled.Cursor("Vertex", buf)
//	color := v.MustField("color")
//	for i := range cur.All() {
//	    color.SetAllFloat(1, float64(i)/8, 0)
//	}
//
// # Wire Format
//
// Everything is big-endian. Record fields are consecutive with no implicit
// alignment. Packed fields are assigned MSB-first inside an 8, 16, 32 or
// 64-bit container. Strings occupy a fixed slot whatever their content.
//
// # Errors
//
// Type and layout errors abort compilation. Cursor errors are returned per
// call and never write to the buffer.
package binlayout
