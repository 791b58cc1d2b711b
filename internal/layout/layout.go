// Package layout turns rows of cell content into fully specified table
// blocks. Every column gets an explicit width; nothing is left to the
// consumer's autosizing.
package layout

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docforge/internal/block"
)

const (
	// PageContentWidth is the usable width of an A4 page with one inch
	// margins, in DXA.
	PageContentWidth = 9026

	DefaultCellMargin = 80
	DefaultHeaderFill = "D9D9D9"
)

var (
	ErrEmptyTable     = errors.New("table has no cells")
	ErrColumnMismatch = errors.New("column widths do not match table grid")
	ErrBadWidth       = errors.New("invalid column width")
)

// Regime selects how column widths are derived.
type Regime int

const (
	RegimePercent Regime = iota
	RegimeFixed
	RegimeColumns
)

// Spec controls width, borders and shading of a table.
type Spec struct {
	Regime     Regime
	Percent    int   // RegimePercent: share of the page, 1-100
	Total      int   // RegimeFixed: table width in DXA
	Columns    []int // RegimeColumns: per-column DXA widths
	Borderless bool
	CellMargin int
	HeaderFill string
}

// Percent spans p percent of the page width.
func Percent(p int) Spec {
	return Spec{Regime: RegimePercent, Percent: p}
}

// Fixed divides total DXA evenly over the columns.
func Fixed(total int) Spec {
	return Spec{Regime: RegimeFixed, Total: total}
}

// Columns assigns each grid column an explicit DXA width.
func Columns(widths ...int) Spec {
	return Spec{Regime: RegimeColumns, Columns: widths}
}

// WithoutBorders returns a copy of s with all cell borders suppressed.
func (s Spec) WithoutBorders() Spec {
	s.Borderless = true
	return s
}

// Cell is the input for one cell.
type Cell struct {
	Blocks []block.Block
	Span   int
	Header bool
	Label  bool
	Merge  block.Merge
	VAlign block.VAlign // overrides the default alignment when set
}

// Row is the input for one row.
type Row struct {
	Cells  []Cell
	Height int
}

// Build lays out rows according to spec.
func Build(rows []Row, spec Spec) (*block.Table, error) {
	cols := gridColumns(rows)
	if cols == 0 {
		return nil, ErrEmptyTable
	}

	widths, tableWidth, err := columnWidths(cols, spec)
	if err != nil {
		return nil, err
	}

	margin := spec.CellMargin
	if margin <= 0 {
		margin = DefaultCellMargin
	}
	fill := spec.HeaderFill
	if fill == "" {
		fill = DefaultHeaderFill
	}

	t := &block.Table{
		Width:   tableWidth,
		Columns: widths,
		Fixed:   spec.Regime != RegimePercent,
		Borders: !spec.Borderless,
		Rows:    make([]block.Row, 0, len(rows)),
	}

	for _, r := range rows {
		out := block.Row{Height: r.Height, Header: len(r.Cells) > 0}
		col := 0
		for _, c := range r.Cells {
			span := max(c.Span, 1)
			if col+span > cols {
				span = cols - col
			}
			if span <= 0 {
				break
			}
			out.Cells = append(out.Cells, buildCell(c, span, cellWidth(spec, widths, col, span, cols), margin, fill, !spec.Borderless))
			if !c.Header {
				out.Header = false
			}
			col += span
		}
		// Short rows are padded so every row covers the whole grid.
		for col < cols {
			out.Cells = append(out.Cells, buildCell(Cell{}, 1, cellWidth(spec, widths, col, 1, cols), margin, fill, !spec.Borderless))
			out.Header = false
			col++
		}
		t.Rows = append(t.Rows, out)
	}
	return t, nil
}

func gridColumns(rows []Row) int {
	cols := 0
	for _, r := range rows {
		n := 0
		for _, c := range r.Cells {
			n += max(c.Span, 1)
		}
		cols = max(cols, n)
	}
	return cols
}

func columnWidths(cols int, spec Spec) ([]int, block.Width, error) {
	switch spec.Regime {
	case RegimeFixed:
		total := spec.Total
		if total <= 0 {
			total = PageContentWidth
		}
		return evenSplit(total, cols), block.Width{Value: total, Unit: block.WidthDXA}, nil

	case RegimeColumns:
		if len(spec.Columns) != cols {
			return nil, block.Width{}, fmt.Errorf("%w: %d widths for %d columns", ErrColumnMismatch, len(spec.Columns), cols)
		}
		total := 0
		for i, w := range spec.Columns {
			if w <= 0 {
				return nil, block.Width{}, fmt.Errorf("%w: column %d is %d", ErrBadWidth, i, w)
			}
			total += w
		}
		widths := make([]int, cols)
		copy(widths, spec.Columns)
		return widths, block.Width{Value: total, Unit: block.WidthDXA}, nil

	default:
		pct := spec.Percent
		if pct <= 0 || pct > 100 {
			pct = 100
		}
		return evenSplit(PageContentWidth*pct/100, cols), block.Width{Value: pct * 50, Unit: block.WidthPct}, nil
	}
}

func evenSplit(total, cols int) []int {
	widths := make([]int, cols)
	each := total / cols
	for i := range widths {
		widths[i] = each
	}
	widths[cols-1] += total - each*cols
	return widths
}

func cellWidth(spec Spec, widths []int, col, span, cols int) block.Width {
	if spec.Regime == RegimePercent {
		pct := spec.Percent
		if pct <= 0 || pct > 100 {
			pct = 100
		}
		return block.Width{Value: pct * 50 * span / cols, Unit: block.WidthPct}
	}
	sum := 0
	for i := col; i < col+span; i++ {
		sum += widths[i]
	}
	return block.Width{Value: sum, Unit: block.WidthDXA}
}

func buildCell(c Cell, span int, width block.Width, margin int, fill string, borders bool) block.Cell {
	out := block.Cell{
		Width:    width,
		GridSpan: span,
		Merge:    c.Merge,
		VAlign:   block.VAlignTop,
		Borders:  borders,
		Margin:   margin,
	}

	blocks := c.Blocks
	if c.Merge == block.MergeContinue || len(blocks) == 0 {
		blocks = []block.Block{block.BlankParagraph()}
	}

	switch {
	case c.Header:
		out.Shading = fill
		out.VAlign = block.VAlignCenter
		out.Blocks = emphasize(blocks)
	case c.Label:
		out.VAlign = block.VAlignCenter
		out.Blocks = blocks
	default:
		out.Blocks = blocks
	}
	if c.VAlign != "" {
		out.VAlign = c.VAlign
	}
	return out
}

// emphasize returns bold, centered copies of the paragraphs in blocks.
func emphasize(blocks []block.Block) []block.Block {
	out := make([]block.Block, 0, len(blocks))
	for _, b := range blocks {
		p, ok := b.(*block.Paragraph)
		if !ok {
			out = append(out, b)
			continue
		}
		cp := *p
		cp.Align = block.AlignCenter
		cp.Runs = make([]block.Run, len(p.Runs))
		for i, r := range p.Runs {
			r.Bold = true
			cp.Runs[i] = r
		}
		out = append(out, &cp)
	}
	return out
}
