package packager

import (
	"encoding/xml"
	"fmt"

	"github.com/dgallion1/docforge/internal/block"
	"github.com/fumiama/go-docx"
)

// The go-docx cell type writes all paragraphs before all nested tables,
// so tables are marshalled through these types instead. Element order
// follows the WordprocessingML schema.

type xTable struct {
	XMLName xml.Name `xml:"w:tbl"`
	Props   *xTableProps
	Grid    *docx.WTableGrid
	Rows    []*xRow
}

type xTableProps struct {
	XMLName xml.Name            `xml:"w:tblPr"`
	Width   *docx.WTableWidth
	Borders *docx.WTableBorders `xml:"w:tblBorders,omitempty"`
	Layout  *xTableLayout
	Look    *docx.WTableLook
}

type xTableLayout struct {
	XMLName xml.Name `xml:"w:tblLayout"`
	Type    string   `xml:"w:type,attr"`
}

type xRow struct {
	XMLName xml.Name `xml:"w:tr"`
	Props   *xRowProps
	Cells   []*xCell
}

type xRowProps struct {
	XMLName xml.Name `xml:"w:trPr"`
	Height  *docx.WTableRowHeight
	Header  *xOnOff `xml:"w:tblHeader,omitempty"`
}

type xOnOff struct{}

type xCell struct {
	XMLName xml.Name `xml:"w:tc"`
	Props   *xCellProps
	Content []any
}

type xCellProps struct {
	XMLName  xml.Name `xml:"w:tcPr"`
	Width    *docx.WTableCellWidth
	GridSpan *docx.WGridSpan
	VMerge   *docx.WvMerge
	Borders  *docx.WTableBorders `xml:"w:tcBorders,omitempty"`
	Shade    *docx.Shade
	Margins  *xCellMargins
	VAlign   *docx.WVerticalAlignment
}

type xCellMargins struct {
	XMLName xml.Name `xml:"w:tcMar"`
	Top     xMargin  `xml:"w:top"`
	Left    xMargin  `xml:"w:left"`
	Bottom  xMargin  `xml:"w:bottom"`
	Right   xMargin  `xml:"w:right"`
}

type xMargin struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

func (b *builder) table(t *block.Table) (*xTable, error) {
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return nil, fmt.Errorf("table without rows or columns")
	}

	grid := &docx.WTableGrid{GridCols: make([]*docx.WGridCol, len(t.Columns))}
	var total int64
	for i, w := range t.Columns {
		grid.GridCols[i] = &docx.WGridCol{W: int64(w)}
		total += int64(w)
	}

	props := &xTableProps{
		Width:   &docx.WTableWidth{W: int64(t.Width.Value), Type: widthType(t.Width.Unit)},
		Borders: tableBorders(t.Borders),
		Look:    &docx.WTableLook{Val: "0000"},
	}
	if t.Fixed {
		props.Layout = &xTableLayout{Type: "fixed"}
	}

	out := &xTable{Props: props, Grid: grid, Rows: make([]*xRow, 0, len(t.Rows))}
	for _, r := range t.Rows {
		row := &xRow{Props: &xRowProps{}}
		if r.Height > 0 {
			row.Props.Height = &docx.WTableRowHeight{Rule: "atLeast", Val: int64(r.Height)}
		}
		if r.Header {
			row.Props.Header = &xOnOff{}
		}
		for _, c := range r.Cells {
			cell, err := b.cell(c, total)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, cell)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (b *builder) cell(c block.Cell, tableDXA int64) (*xCell, error) {
	props := &xCellProps{
		Width:   &docx.WTableCellWidth{W: int64(c.Width.Value), Type: widthType(c.Width.Unit)},
		Borders: cellBorders(c.Borders),
	}
	if c.GridSpan > 1 {
		props.GridSpan = &docx.WGridSpan{Val: c.GridSpan}
	}
	switch c.Merge {
	case block.MergeRestart:
		props.VMerge = &docx.WvMerge{Val: "restart"}
	case block.MergeContinue:
		props.VMerge = &docx.WvMerge{}
	}
	if c.Shading != "" {
		props.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: c.Shading}
	}
	if c.Margin > 0 {
		m := xMargin{W: c.Margin, Type: "dxa"}
		props.Margins = &xCellMargins{Top: m, Left: m, Bottom: m, Right: m}
	}
	if c.VAlign != "" {
		props.VAlign = &docx.WVerticalAlignment{Val: string(c.VAlign)}
	}

	// Images inside a cell are capped at the cell's width.
	maxWidth := int64(maxImageWidth)
	if c.Width.Unit == block.WidthDXA && c.Width.Value > 0 {
		maxWidth = int64(c.Width.Value-2*c.Margin) * emuPerDXA
	} else if c.Width.Unit == block.WidthPct && tableDXA > 0 {
		maxWidth = tableDXA * int64(c.Width.Value) / 5000 * emuPerDXA
	}
	maxWidth = max(maxWidth, emuPerPixel)

	out := &xCell{Props: props}
	for _, blk := range c.Blocks {
		item, err := b.block(blk, maxWidth)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, item)
	}
	// A cell must end with a paragraph.
	if len(out.Content) == 0 {
		out.Content = append(out.Content, b.emptyParagraph())
	} else if _, ok := out.Content[len(out.Content)-1].(*xTable); ok {
		out.Content = append(out.Content, b.emptyParagraph())
	}
	return out, nil
}

func (b *builder) emptyParagraph() *docx.Paragraph {
	p := b.newParagraph()
	p.AddText("")
	return p
}

func widthType(u block.WidthUnit) string {
	switch u {
	case block.WidthPct:
		return "pct"
	case block.WidthDXA:
		return "dxa"
	}
	return "auto"
}

func border(on bool) *docx.WTableBorder {
	if !on {
		return &docx.WTableBorder{Val: "nil"}
	}
	return &docx.WTableBorder{Val: "single", Size: 4, Color: "auto"}
}

func tableBorders(on bool) *docx.WTableBorders {
	return &docx.WTableBorders{
		Top: border(on), Left: border(on), Bottom: border(on), Right: border(on),
		InsideH: border(on), InsideV: border(on),
	}
}

func cellBorders(on bool) *docx.WTableBorders {
	return &docx.WTableBorders{
		Top: border(on), Left: border(on), Bottom: border(on), Right: border(on),
	}
}
