package compiler

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docforge/internal/assets"
	"github.com/dgallion1/docforge/internal/block"
	"github.com/dgallion1/docforge/internal/content"
	"github.com/dgallion1/docforge/internal/layout"
	"github.com/dgallion1/docforge/internal/numbering"
)

// headingSizes are run sizes in half-points for heading levels 1-6.
var headingSizes = [...]int{32, 30, 28, 26, 24, 22}

// listState is the list context inherited by nested lists. orderedID is
// the id of the nearest ordered ancestor, zero when there is none; bullet
// lists pass it through unchanged.
type listState struct {
	id        int
	level     int
	orderedID int
}

// walker converts a content tree into blocks. One walker serves one
// compile and owns that compile's numbering context.
type walker struct {
	nums      *numbering.Context
	assets    assets.Set
	tableSpec layout.Spec
	maxDepth  int
	logger    *slog.Logger
}

// walk converts n into zero or more blocks, depth-first and in document
// order. list is nil outside of lists.
func (w *walker) walk(n content.Node, list *listState, depth int) ([]block.Block, error) {
	if depth > w.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrContentTooDeep, w.maxDepth)
	}

	switch v := n.(type) {
	case nil:
		return nil, nil

	case *content.Doc:
		return w.sequence(v.Children, depth)

	case *content.Paragraph:
		p, err := w.paragraph(v.Children, v.Align, depth)
		if err != nil {
			return nil, err
		}
		return []block.Block{p}, nil

	case *content.Heading:
		p, err := w.heading(v, depth)
		if err != nil {
			return nil, err
		}
		return []block.Block{p}, nil

	case *content.Text, *content.HardBreak:
		p, err := w.paragraph([]content.Node{v}, content.AlignNone, depth)
		if err != nil {
			return nil, err
		}
		return []block.Block{p}, nil

	case *content.OrderedList:
		var st listState
		if list != nil {
			st.level, st.orderedID = list.level+1, list.orderedID
		}
		// Start only applies to a list that owns its definition.
		if st.orderedID == 0 {
			st.orderedID = w.nums.AllocateOrderedFrom(v.Start)
		}
		st.id = st.orderedID
		return w.items(v.Items, &st, depth)

	case *content.BulletList:
		st := listState{id: w.nums.SharedBullet()}
		if list != nil {
			st.level, st.orderedID = list.level+1, list.orderedID
		}
		return w.items(v.Items, &st, depth)

	case *content.ListItem:
		// An item outside of any list has nothing to number.
		return w.sequence(v.Children, depth)

	case *content.Image:
		return w.image(v), nil

	case *content.Table:
		return w.table(v.Rows, depth)

	case *content.TableRow:
		return w.table([]*content.TableRow{v}, depth)

	case *content.TableCell:
		return w.sequence(v.Children, depth)

	case *content.Unknown:
		text := content.PlainText(v, w.maxDepth-depth)
		if text == "" {
			return []block.Block{block.BlankParagraph()}, nil
		}
		return []block.Block{&block.Paragraph{Runs: []block.Run{{Text: text}}}}, nil
	}

	return nil, fmt.Errorf("%w: unhandled node %T", ErrInvalidContent, n)
}

// sequence walks sibling nodes, wrapping runs of loose inline nodes into
// a single paragraph.
func (w *walker) sequence(nodes []content.Node, depth int) ([]block.Block, error) {
	var (
		out    []block.Block
		inline []content.Node
	)
	flush := func() error {
		if len(inline) == 0 {
			return nil
		}
		p, err := w.paragraph(inline, content.AlignNone, depth+1)
		if err != nil {
			return err
		}
		out = append(out, p)
		inline = nil
		return nil
	}

	for _, c := range nodes {
		switch c.(type) {
		case *content.Text, *content.HardBreak:
			inline = append(inline, c)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		bs, err := w.walk(c, nil, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, bs...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// items walks list items. List items do not count as a nesting level of
// their own.
func (w *walker) items(list []*content.ListItem, st *listState, depth int) ([]block.Block, error) {
	out := []block.Block{}
	num := &block.Numbering{ID: st.id, Level: numbering.ClampLevel(st.level)}

	for _, it := range list {
		if it == nil {
			continue
		}

		var (
			blocks []block.Block
			inline []content.Node
			texty  bool
		)
		flush := func() error {
			if len(inline) == 0 {
				return nil
			}
			p, err := w.paragraph(inline, content.AlignNone, depth+1)
			if err != nil {
				return err
			}
			p.Numbering = num
			blocks = append(blocks, p)
			inline = nil
			return nil
		}

		for _, c := range it.Children {
			switch c.(type) {
			case *content.Text, *content.HardBreak:
				inline = append(inline, c)
				texty = true
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}

			switch v := c.(type) {
			case *content.Paragraph:
				p, err := w.paragraph(v.Children, v.Align, depth+1)
				if err != nil {
					return nil, err
				}
				p.Numbering = num
				blocks = append(blocks, p)
				texty = true
			case *content.Heading:
				p, err := w.heading(v, depth+1)
				if err != nil {
					return nil, err
				}
				p.Numbering = num
				blocks = append(blocks, p)
				texty = true
			case *content.OrderedList, *content.BulletList:
				bs, err := w.walk(c, st, depth+1)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, bs...)
			default:
				bs, err := w.walk(c, nil, depth+1)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, bs...)
			}
		}
		if err := flush(); err != nil {
			return nil, err
		}

		if !texty {
			p := block.BlankParagraph()
			p.Numbering = num
			blocks = append([]block.Block{p}, blocks...)
		}
		out = append(out, blocks...)
	}
	return out, nil
}

// paragraph builds one paragraph from inline nodes. A paragraph without
// visible content still gets a single empty run.
func (w *walker) paragraph(nodes []content.Node, align content.Align, depth int) (*block.Paragraph, error) {
	if depth > w.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrContentTooDeep, w.maxDepth)
	}
	p := &block.Paragraph{Align: blockAlign(align)}
	for _, c := range nodes {
		switch v := c.(type) {
		case nil:
		case *content.Text:
			if v.Text == "" {
				continue
			}
			p.Runs = append(p.Runs, block.Run{
				Text:      v.Text,
				Bold:      v.Bold,
				Italic:    v.Italic,
				Underline: v.Underline,
				Strike:    v.Strike,
			})
		case *content.HardBreak:
			p.Runs = append(p.Runs, block.Run{Break: true})
		case *content.Image:
			if img, ok := w.lookup(v); ok {
				p.Runs = append(p.Runs, block.Run{Image: img})
			}
		default:
			// Block content inside a paragraph keeps only its text.
			if text := content.PlainText(c, w.maxDepth-depth); text != "" {
				p.Runs = append(p.Runs, block.Run{Text: text})
			}
		}
	}
	if len(p.Runs) == 0 {
		p.Runs = []block.Run{{}}
	}
	return p, nil
}

func (w *walker) heading(h *content.Heading, depth int) (*block.Paragraph, error) {
	p, err := w.paragraph(h.Children, h.Align, depth)
	if err != nil {
		return nil, err
	}
	level := min(max(h.Level, 1), len(headingSizes))
	p.Heading = level
	for i := range p.Runs {
		p.Runs[i].Bold = true
		p.Runs[i].Size = headingSizes[level-1]
	}
	return p, nil
}

func (w *walker) image(v *content.Image) []block.Block {
	img, ok := w.lookup(v)
	if !ok {
		return nil
	}
	return []block.Block{&block.Paragraph{
		Runs:  []block.Run{{Image: img}},
		Align: blockAlign(v.Align),
	}}
}

// lookup finds the prefetched asset for an image node. Misses are logged
// and the image is dropped.
func (w *walker) lookup(v *content.Image) (*block.Image, bool) {
	a, ok := w.assets.Get(v.Src)
	if !ok {
		w.logger.Warn("image dropped", "src", truncate(v.Src, 120))
		return nil, false
	}
	return imageBlock(a, v.Width), true
}

func (w *walker) table(rows []*content.TableRow, depth int) ([]block.Block, error) {
	var lrows []layout.Row
	for _, r := range rows {
		if r == nil {
			continue
		}
		var lr layout.Row
		for _, c := range r.Cells {
			if c == nil {
				continue
			}
			blocks, err := w.sequence(c.Children, depth+2)
			if err != nil {
				return nil, err
			}
			lr.Cells = append(lr.Cells, layout.Cell{
				Blocks: blocks,
				Span:   c.Colspan,
				Header: c.Header,
			})
		}
		if len(lr.Cells) > 0 {
			lrows = append(lrows, lr)
		}
	}
	if len(lrows) == 0 {
		return []block.Block{block.BlankParagraph()}, nil
	}

	t, err := layout.Build(lrows, w.tableSpec)
	if err != nil {
		return nil, fmt.Errorf("layout table: %w", err)
	}
	return []block.Block{t}, nil
}

// imageBlock sizes an asset for display. A requested width scales the
// image keeping its aspect ratio.
func imageBlock(a *assets.Asset, width int) *block.Image {
	img := &block.Image{Data: a.Data, Format: a.Format, Width: a.Width, Height: a.Height}
	if width > 0 && a.Width > 0 {
		img.Height = a.Height * width / a.Width
		img.Width = width
		if img.Height == 0 {
			img.Height = 1
		}
	}
	return img
}

func blockAlign(a content.Align) block.Align {
	switch a {
	case content.AlignLeft:
		return block.AlignLeft
	case content.AlignCenter:
		return block.AlignCenter
	case content.AlignRight:
		return block.AlignRight
	case content.AlignJustify:
		return block.AlignJustify
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
