// Package block holds the laid-out document model produced by the compiler
// and consumed by the packager. Blocks are built once and not modified
// afterwards.
package block

// Block is a paragraph or a table.
type Block interface {
	block()
}

// Align is a paragraph justification.
type Align string

const (
	AlignLeft    Align = "start"
	AlignCenter  Align = "center"
	AlignRight   Align = "end"
	AlignJustify Align = "both"
)

// Numbering ties a paragraph to a list definition.
type Numbering struct {
	ID    int
	Level int
}

// Image is an embedded picture.
type Image struct {
	Data   []byte
	Format string
	Width  int // pixels
	Height int // pixels
}

// Run is a span of uniformly styled content: text, a line break, or an image.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Size      int // half-points, 0 keeps the style default
	Break     bool
	Image     *Image
}

// Paragraph is a single paragraph. A paragraph with no runs is rendered
// blank.
type Paragraph struct {
	Runs      []Run
	Align     Align
	Numbering *Numbering
	Heading   int
}

// Blank reports whether the paragraph carries no visible content.
func (p *Paragraph) Blank() bool {
	for _, r := range p.Runs {
		if r.Image != nil || r.Break || r.Text != "" {
			return false
		}
	}
	return true
}

// WidthUnit is the unit of a Width value.
type WidthUnit string

const (
	WidthAuto WidthUnit = "auto"
	// WidthPct values are fiftieths of a percent (5000 = 100%).
	WidthPct WidthUnit = "pct"
	// WidthDXA values are twentieths of a point.
	WidthDXA WidthUnit = "dxa"
)

// Width is a table or cell width.
type Width struct {
	Value int
	Unit  WidthUnit
}

// Merge is a vertical merge directive.
type Merge int

const (
	MergeNone Merge = iota
	MergeRestart
	MergeContinue
)

// VAlign is a cell's vertical alignment.
type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignCenter VAlign = "center"
	VAlignBottom VAlign = "bottom"
)

// Cell is one table cell.
type Cell struct {
	Blocks   []Block
	Width    Width
	GridSpan int
	Merge    Merge
	Shading  string // hex fill, empty for none
	VAlign   VAlign
	Borders  bool
	Margin   int // DXA on all sides
}

// Row is one table row. Height of 0 lets the row grow with its content.
type Row struct {
	Cells  []Cell
	Height int
	Header bool
}

// Table is a laid-out table.
type Table struct {
	Width   Width
	Columns []int // grid column widths in DXA
	Fixed   bool  // fixed layout, columns never autosize
	Borders bool
	Rows    []Row
}

func (*Paragraph) block() {}
func (*Table) block()     {}

// BlankParagraph returns a paragraph holding a single empty run.
func BlankParagraph() *Paragraph {
	return &Paragraph{Runs: []Run{{}}}
}

// TextParagraph returns a paragraph holding one plain run.
func TextParagraph(text string, align Align) *Paragraph {
	return &Paragraph{Runs: []Run{{Text: text}}, Align: align}
}
