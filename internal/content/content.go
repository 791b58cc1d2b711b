// Package content defines the rich-text content tree accepted by the compiler.
//
// The node set is closed: every node kind implements Node through an
// unexported marker method, and consumers switch over the concrete types.
// Node kinds that arrive on the wire with an unrecognized type name decode
// into *Unknown rather than being silently dropped.
package content

import "strings"

// Node is one element of a content tree.
type Node interface {
	node()
}

// Align is a horizontal alignment hint carried by block-level nodes.
type Align string

const (
	AlignNone    Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Doc is the root of a content tree.
type Doc struct {
	Children []Node
}

// Text is a styled run of characters. It is the only leaf without children.
type Text struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
}

// Paragraph groups inline nodes into one block.
type Paragraph struct {
	Align    Align
	Children []Node
}

// Heading is a paragraph with a level from 1 (largest) to 6.
type Heading struct {
	Level    int
	Align    Align
	Children []Node
}

// HardBreak is a forced line break inside a paragraph.
type HardBreak struct{}

// OrderedList is a numbered list. Start is the first item's number; it is
// honored for lists that are not nested in another ordered list.
type OrderedList struct {
	Start int
	Items []*ListItem
}

// BulletList is an unnumbered list.
type BulletList struct {
	Items []*ListItem
}

// ListItem holds paragraphs and optionally nested lists.
type ListItem struct {
	Children []Node
}

// Image references an external asset by URI.
type Image struct {
	Src   string
	Align Align
	Width int // pixels, 0 means natural size
}

// Table is a grid of rows.
type Table struct {
	Rows []*TableRow
}

// TableRow is one row of cells.
type TableRow struct {
	Cells []*TableCell
}

// TableCell is a body or header cell. Colspan of 0 or 1 means no span.
type TableCell struct {
	Header   bool
	Colspan  int
	Children []Node
}

// Unknown preserves a node whose type name is not part of the grammar.
type Unknown struct {
	Type     string
	Text     string
	Children []Node
}

func (*Doc) node()         {}
func (*Text) node()        {}
func (*Paragraph) node()   {}
func (*Heading) node()     {}
func (*HardBreak) node()   {}
func (*OrderedList) node() {}
func (*BulletList) node()  {}
func (*ListItem) node()    {}
func (*Image) node()       {}
func (*Table) node()       {}
func (*TableRow) node()    {}
func (*TableCell) node()   {}
func (*Unknown) node()     {}

// Children returns the direct children of n in document order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Doc:
		return v.Children
	case *Paragraph:
		return v.Children
	case *Heading:
		return v.Children
	case *OrderedList:
		return items(v.Items)
	case *BulletList:
		return items(v.Items)
	case *ListItem:
		return v.Children
	case *Table:
		out := make([]Node, 0, len(v.Rows))
		for _, r := range v.Rows {
			if r != nil {
				out = append(out, r)
			}
		}
		return out
	case *TableRow:
		out := make([]Node, 0, len(v.Cells))
		for _, c := range v.Cells {
			if c != nil {
				out = append(out, c)
			}
		}
		return out
	case *TableCell:
		return v.Children
	case *Unknown:
		return v.Children
	case *Text, *HardBreak, *Image:
		return nil
	}
	return nil
}

func items(list []*ListItem) []Node {
	out := make([]Node, 0, len(list))
	for _, it := range list {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

// Images returns the source URIs of every image in the tree, depth-first.
// Traversal stops descending below maxDepth.
func Images(n Node, maxDepth int) []string {
	var srcs []string
	var visit func(Node, int)
	visit = func(n Node, depth int) {
		if n == nil || depth > maxDepth {
			return
		}
		if img, ok := n.(*Image); ok {
			if img.Src != "" {
				srcs = append(srcs, img.Src)
			}
			return
		}
		for _, c := range Children(n) {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
	return srcs
}

// PlainText concatenates the text of every Text node below n, descending at
// most maxDepth levels. Hard breaks become newlines.
func PlainText(n Node, maxDepth int) string {
	var sb strings.Builder
	var visit func(Node, int)
	visit = func(n Node, depth int) {
		if depth > maxDepth {
			return
		}
		switch v := n.(type) {
		case *Text:
			sb.WriteString(v.Text)
		case *HardBreak:
			sb.WriteByte('\n')
		case *Unknown:
			sb.WriteString(v.Text)
			for _, c := range v.Children {
				visit(c, depth+1)
			}
		default:
			for _, c := range Children(n) {
				visit(c, depth+1)
			}
		}
	}
	if n != nil {
		visit(n, 0)
	}
	return sb.String()
}
