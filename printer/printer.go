// Package printer renders SELECT results as an aligned text table, with
// per-column width rules and long-string truncation.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/kanari-db/minirel/catalog"
	"github.com/kanari-db/minirel/common"
	"github.com/kanari-db/minirel/types"
)

const maxPrint = common.MaxPrintString

// Column is one printed column's precomputed shape: header text and
// width are computed once, in the constructor, and reused for every row
// -- mirroring the original Printer's psHeader/spaces precomputation.
// headerPad is the number of spaces trailing the header so the header
// row lines up with width, the same way each data row pads text to
// width -- they are computed separately because the header text itself
// is not always the same length as width.
type Column struct {
	header    string
	width     int
	headerPad int
	typ       types.TypeID
	display   int
}

// Printer writes a header once, then any number of rows, then a footer
// carrying the row count.
type Printer struct {
	w     io.Writer
	cols  []Column
	count int
}

// NewPrinter precomputes each column's header text and width. attrNames
// must be given in the order they'll be printed; relNames disambiguates
// headers when an attribute name is not unique among the projected
// columns.
func NewPrinter(w io.Writer, relNames []string, attrNames []string, types_ []types.TypeID, displayLens []int) *Printer {
	n := len(attrNames)
	nameCount := make(map[string]int, n)
	for _, a := range attrNames {
		nameCount[a]++
	}

	cols := make([]Column, n)
	for i := 0; i < n; i++ {
		header := attrNames[i]
		if nameCount[header] > 1 {
			header = relNames[i] + "." + attrNames[i]
		}

		width := 12
		if types_[i] == types.String {
			width = displayLens[i]
			if width > maxPrint {
				width = maxPrint
			}
		}
		if width < len(header) {
			width = len(header)
		}

		headerPad := width - len(header)
		if len(header) >= width {
			header = header + " "
			width = 0
		}

		cols[i] = Column{header: header, width: width, headerPad: headerPad, typ: types_[i], display: displayLens[i]}
	}

	return &Printer{w: w, cols: cols}
}

// PrintHeader writes the header row and the dash separator beneath it.
func (p *Printer) PrintHeader() {
	var line strings.Builder
	total := 0
	for _, c := range p.cols {
		line.WriteString(c.header)
		if c.headerPad > 0 {
			line.WriteString(strings.Repeat(" ", c.headerPad))
		}
		total += c.width
	}
	fmt.Fprintln(p.w, line.String())
	fmt.Fprintln(p.w, strings.Repeat("-", total))
}

// Print writes one data row. data/isNull must line up with the columns
// this Printer was constructed with.
func (p *Printer) Print(data [][]byte, isNull []bool) {
	var line strings.Builder
	for i, c := range p.cols {
		var text string
		if isNull[i] {
			text = "NULL"
		} else {
			switch c.typ {
			case types.Integer:
				text = fmt.Sprintf("%d", types.DecodeInt(data[i]))
			case types.Float:
				text = fmt.Sprintf("%f", types.DecodeFloat(data[i]))
			case types.String:
				text = types.DecodeString(data[i], len(data[i]))
				if c.display > maxPrint {
					if len(text) > maxPrint-1 {
						text = text[:maxPrint-1]
					}
					if len(text) >= 3 {
						text = text[:len(text)-3] + "..."
					}
				}
			}
		}

		pad := c.width - len(text)
		line.WriteString(text)
		if pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
	}
	fmt.Fprintln(p.w, line.String())
	p.count++
}

// PrintFooter writes the trailing "<N> tuple(s)." summary.
func (p *Printer) PrintFooter() {
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%d tuple(s).\n", p.count)
}

func (p *Printer) Count() int { return p.count }

// FromAttrs builds a Printer directly from resolved attribute descriptors,
// the common case for both SELECT * and an explicit select list.
func FromAttrs(w io.Writer, attrs []*catalog.DataAttrInfo) *Printer {
	rels := make([]string, len(attrs))
	names := make([]string, len(attrs))
	typs := make([]types.TypeID, len(attrs))
	disp := make([]int, len(attrs))
	for i, a := range attrs {
		rels[i] = a.RelName
		names[i] = a.AttrName
		typs[i] = a.Type
		disp[i] = int(a.DisplayLength)
	}
	return NewPrinter(w, rels, names, typs, disp)
}
