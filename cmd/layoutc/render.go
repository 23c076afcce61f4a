package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/cursor"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// table is a list of rows rendered with left-aligned, space-padded columns.
// Styles apply per column after padding so escape codes do not skew widths.
type table struct {
	header []string
	rows   [][]string
	styles []lipgloss.Style
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(styled bool) string {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			widths[i] = max(widths[i], len(c))
		}
	}

	var b strings.Builder
	line := func(cells []string, style func(int) *lipgloss.Style) {
		for i, c := range cells {
			cell := c
			if i < len(cells)-1 {
				cell = fmt.Sprintf("%-*s", widths[i], c)
			}
			if s := style(i); styled && s != nil {
				cell = s.Render(cell)
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}

	line(t.header, func(int) *lipgloss.Style { return &headerStyle })
	for _, r := range t.rows {
		line(r, func(i int) *lipgloss.Style {
			if i < len(t.styles) {
				return &t.styles[i]
			}
			return nil
		})
	}
	return b.String()
}

func title(s string, styled bool) string {
	if styled {
		return titleStyle.Render(s)
	}
	return s
}

// renderLayout prints the compiled contract of every node below f.
func renderLayout(f *codec.Field, styled bool) string {
	t := &table{
		header: []string{"FIELD", "TYPE", "ACCESS", "OFFSET", "SIZE", "DETAIL"},
		styles: []lipgloss.Style{nameStyle, typeStyle},
	}
	depth := len(f.Path)
	f.Walk(func(n *codec.Field) bool {
		if n == f {
			return true
		}
		label := strings.Repeat("  ", len(n.Path)-depth-1) + n.Path[len(n.Path)-1]
		t.add(label, n.TypeName, n.Access.String(),
			strconv.FormatUint(uint64(n.AbsOffset), 10),
			strconv.FormatUint(uint64(n.Size), 10),
			detail(n))
		return true
	})

	head := fmt.Sprintf("%s  %s, %d octets", title(f.TypeName, styled), f.Access, f.Size)
	if len(t.rows) == 0 {
		return head + "\n"
	}
	return head + "\n\n" + t.render(styled)
}

// detail summarizes the access contract of a node in one cell.
func detail(f *codec.Field) string {
	var parts []string
	switch {
	case f.Packed != nil:
		p := f.Packed
		parts = append(parts, fmt.Sprintf("bits %d..%d of u%d", p.Low, p.High, p.ContainerBits),
			fmt.Sprintf("shift %d", p.Shift),
			fmt.Sprintf("mask %#x", p.FieldMask))
	case f.Flag != nil:
		parts = append(parts, fmt.Sprintf("bit %d", f.Flag.Bit), fmt.Sprintf("mask %#02x", f.Flag.Mask))
	case f.String != nil:
		s := f.String
		parts = append(parts, fmt.Sprintf("payload +%d", s.PayloadOffset),
			fmt.Sprintf("max %d", s.MaxOctets), s.Encoding.String(), s.Policy.String())
	case f.Elem != nil:
		parts = append(parts, fmt.Sprintf("%d x %d", f.Count, f.Stride))
	case f.Access == codec.AccessPacked:
		parts = append(parts, fmt.Sprintf("u%d", f.Width))
	}

	if f.Conversion != codec.ConvNone {
		parts = append(parts, f.Conversion.String())
	}
	if f.Widen {
		parts = append(parts, fmt.Sprintf("widen to %d", f.ExternalBits))
	}
	return strings.Join(parts, ", ")
}

// renderValues decodes every leaf below v for the cursor's current element.
func renderValues(v cursor.View, styled bool) string {
	t := &table{
		header: []string{"FIELD", "TYPE", "OFFSET", "VALUE"},
		styles: []lipgloss.Style{nameStyle, typeStyle, lipgloss.NewStyle(), valueStyle},
	}
	collectValues(t, v, "", 0)
	return t.render(styled)
}

func collectValues(t *table, v cursor.View, label string, depth int) {
	f := v.Contract()
	indent := strings.Repeat("  ", max(depth-1, 0))

	switch f.Access {
	case codec.AccessRecord, codec.AccessPacked, codec.AccessBoolSet:
		if depth > 0 {
			t.add(indent+label, f.TypeName, strconv.FormatInt(v.Offset(), 10), summary(v))
		}
		for i := range v.Len() {
			c := v.Child(i)
			collectValues(t, c, c.Contract().Name, depth+1)
		}
	case codec.AccessVector, codec.AccessMatrix, codec.AccessArray:
		t.add(indent+label, f.TypeName, strconv.FormatInt(v.Offset(), 10), summary(v))
		if f.Access == codec.AccessArray && f.Elem.Access.Composite() {
			for i := range v.Len() {
				collectValues(t, v.Index(i), label+"["+strconv.Itoa(i)+"]", depth+1)
			}
		}
	default:
		t.add(indent+label, f.TypeName, strconv.FormatInt(v.Offset(), 10), formatValue(v))
	}
}

// summary renders sequences inline and containers as their raw bits.
func summary(v cursor.View) string {
	f := v.Contract()
	switch f.Access {
	case codec.AccessPacked:
		return fmt.Sprintf("%#0*x", int(f.Width/4)+2, v.Raw())
	case codec.AccessVector, codec.AccessMatrix, codec.AccessArray:
		if f.Elem.Access.Composite() {
			return fmt.Sprintf("%d elements", f.Count)
		}
		vals := make([]string, v.Len())
		for i := range vals {
			vals[i] = formatValue(v.Index(i))
		}
		return "[" + strings.Join(vals, " ") + "]"
	}
	return ""
}

// formatValue renders a scalar, flag or string leaf.
func formatValue(v cursor.View) string {
	f := v.Contract()
	switch f.Access {
	case codec.AccessInteger:
		if f.Signed {
			return strconv.FormatInt(v.Int(), 10)
		}
		return strconv.FormatUint(v.Uint(), 10)
	case codec.AccessNormalized:
		return fmt.Sprintf("%g (raw %#x)", v.Float(), v.Raw())
	case codec.AccessFloat, codec.AccessHalf:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case codec.AccessFlag:
		return strconv.FormatBool(v.Bool())
	case codec.AccessString:
		return strconv.Quote(v.Str())
	}
	return ""
}

// writeJSON dumps the compiled contracts of fields.
func writeJSON(w io.Writer, fields []*codec.Field) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(fields) == 1 {
		return enc.Encode(fields[0])
	}
	return enc.Encode(fields)
}
