package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docforge/internal/content"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark with the GFM
// extensions, so pipe tables and strikethrough survive the import.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	c := mdConverter{src: src}
	doc := &content.Doc{Children: c.blocks(root)}
	return &Document{Title: markdownTitle(doc, filename), Content: doc}, nil
}

// markdownTitle prefers the text of a leading level 1 heading.
func markdownTitle(doc *content.Doc, filename string) string {
	if len(doc.Children) > 0 {
		if h, ok := doc.Children[0].(*content.Heading); ok && h.Level == 1 {
			if t := strings.TrimSpace(content.PlainText(h, content.DefaultMaxDepth)); t != "" {
				return t
			}
		}
	}
	return baseTitle(filename)
}

type mdConverter struct {
	src []byte
}

type marks struct {
	bold, italic, underline, strike bool
}

func (c *mdConverter) blocks(parent ast.Node) []content.Node {
	var out []content.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b...)
		}
	}
	return out
}

func (c *mdConverter) block(n ast.Node) []content.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return []content.Node{&content.Heading{Level: node.Level, Children: c.inlines(node, marks{})}}

	case *ast.Paragraph, *ast.TextBlock:
		return []content.Node{&content.Paragraph{Children: c.inlines(node, marks{})}}

	case *ast.List:
		items := make([]*content.ListItem, 0, node.ChildCount())
		for it := node.FirstChild(); it != nil; it = it.NextSibling() {
			items = append(items, &content.ListItem{Children: c.blocks(it)})
		}
		if node.IsOrdered() {
			return []content.Node{&content.OrderedList{Start: node.Start, Items: items}}
		}
		return []content.Node{&content.BulletList{Items: items}}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := strings.TrimRight(c.lines(n), "\n")
		return []content.Node{textParagraph(code)}

	case *ast.Blockquote:
		return c.blocks(node)

	case *ast.ThematicBreak:
		return []content.Node{&content.Unknown{Type: "horizontalRule"}}

	case *ast.HTMLBlock:
		return []content.Node{&content.Unknown{Type: "html", Text: strings.TrimSpace(c.lines(n))}}

	case *extast.Table:
		return []content.Node{c.table(node)}
	}

	if n.Type() == ast.TypeBlock {
		return c.blocks(n)
	}
	return nil
}

func (c *mdConverter) table(t *extast.Table) *content.Table {
	out := &content.Table{}
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		_, header := r.(*extast.TableHeader)
		row := &content.TableRow{}
		for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
			row.Cells = append(row.Cells, &content.TableCell{
				Header:   header,
				Children: []content.Node{&content.Paragraph{Children: c.inlines(cell, marks{})}},
			})
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func (c *mdConverter) inlines(parent ast.Node, m marks) []content.Node {
	var out []content.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			out = append(out, c.text(string(node.Segment.Value(c.src)), m))
			switch {
			case node.HardLineBreak():
				out = append(out, &content.HardBreak{})
			case node.SoftLineBreak():
				out = append(out, c.text(" ", m))
			}
		case *ast.String:
			out = append(out, c.text(string(node.Value), m))
		case *ast.CodeSpan:
			out = append(out, c.text(c.plain(node), m))
		case *ast.Emphasis:
			inner := m
			if node.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			out = append(out, c.inlines(node, inner)...)
		case *extast.Strikethrough:
			inner := m
			inner.strike = true
			out = append(out, c.inlines(node, inner)...)
		case *ast.Link:
			inner := m
			inner.underline = true
			out = append(out, c.inlines(node, inner)...)
		case *ast.AutoLink:
			inner := m
			inner.underline = true
			out = append(out, c.text(string(node.URL(c.src)), inner))
		case *ast.Image:
			out = append(out, &content.Image{Src: string(node.Destination)})
		case *ast.RawHTML:
		default:
			out = append(out, c.inlines(node, m)...)
		}
	}
	return out
}

func (c *mdConverter) text(s string, m marks) *content.Text {
	return &content.Text{Text: s, Bold: m.bold, Italic: m.italic, Underline: m.underline, Strike: m.strike}
}

func (c *mdConverter) plain(n ast.Node) string {
	var sb strings.Builder
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if t, ok := ch.(*ast.Text); ok {
			sb.Write(t.Segment.Value(c.src))
			continue
		}
		sb.WriteString(c.plain(ch))
	}
	return sb.String()
}

func (c *mdConverter) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(c.src))
	}
	return sb.String()
}
