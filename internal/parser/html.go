package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/docforge/internal/content"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Structure that has a content equivalent
// (headings, lists, tables, images, inline emphasis) is kept; everything
// else flattens into paragraphs.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := findTitle(root)
	if title == "" {
		title = baseTitle(filename)
	}

	start := findBody(root)
	if start == nil {
		start = root
	}
	return &Document{Title: title, Content: &content.Doc{Children: htmlBlocks(start)}}, nil
}

func htmlBlocks(n *html.Node) []content.Node {
	var out, pending []content.Node
	flush := func() {
		if p := inlineParagraph(pending); p != nil {
			out = append(out, p)
		}
		pending = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			flush()
			out = append(out, htmlBlock(c)...)
			continue
		}
		pending = append(pending, htmlInline(c, marks{})...)
	}
	flush()
	return out
}

func htmlBlock(n *html.Node) []content.Node {
	switch n.Data {
	case "p":
		if p := inlineParagraph(htmlInlines(n, marks{})); p != nil {
			p.Align = alignOf(n)
			return []content.Node{p}
		}
		return nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return []content.Node{&content.Heading{
			Level:    int(n.Data[1] - '0'),
			Align:    alignOf(n),
			Children: trimInline(htmlInlines(n, marks{})),
		}}
	case "ul", "ol":
		var items []*content.ListItem
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				items = append(items, &content.ListItem{Children: htmlBlocks(c)})
			}
		}
		if n.Data == "ol" {
			start, _ := strconv.Atoi(attr(n, "start"))
			return []content.Node{&content.OrderedList{Start: start, Items: items}}
		}
		return []content.Node{&content.BulletList{Items: items}}
	case "table":
		return []content.Node{htmlTable(n)}
	case "pre":
		return []content.Node{textParagraph(strings.TrimRight(textContent(n), "\n"))}
	case "hr":
		return []content.Node{&content.Unknown{Type: "horizontalRule"}}
	}
	return htmlBlocks(n)
}

func htmlTable(n *html.Node) *content.Table {
	tbl := &content.Table{}
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				tbl.Rows = append(tbl.Rows, htmlRow(c))
			}
		}
	}
	rows(n)
	return tbl
}

func htmlRow(n *html.Node) *content.TableRow {
	row := &content.TableRow{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		span, _ := strconv.Atoi(attr(c, "colspan"))
		row.Cells = append(row.Cells, &content.TableCell{
			Header:   c.Data == "th",
			Colspan:  span,
			Children: htmlBlocks(c),
		})
	}
	return row
}

func htmlInlines(n *html.Node, m marks) []content.Node {
	var out []content.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, htmlInline(c, m)...)
	}
	return out
}

func htmlInline(n *html.Node, m marks) []content.Node {
	switch n.Type {
	case html.TextNode:
		s := collapseSpace(n.Data)
		if s == "" {
			return nil
		}
		return []content.Node{&content.Text{Text: s, Bold: m.bold, Italic: m.italic, Underline: m.underline, Strike: m.strike}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style", "head", "title", "template", "noscript":
		return nil
	case "br":
		return []content.Node{&content.HardBreak{}}
	case "img":
		w, _ := strconv.Atoi(attr(n, "width"))
		return []content.Node{&content.Image{Src: attr(n, "src"), Width: w, Align: alignOf(n)}}
	case "b", "strong":
		m.bold = true
	case "i", "em":
		m.italic = true
	case "u", "ins", "a":
		m.underline = true
	case "s", "strike", "del":
		m.strike = true
	}
	return htmlInlines(n, m)
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "p", "div", "section", "article", "main", "header", "footer", "nav", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table",
		"blockquote", "pre", "hr", "figure", "body", "html":
		return true
	}
	return false
}

// inlineParagraph wraps inline nodes in a paragraph, or returns nil when
// they carry nothing but whitespace.
func inlineParagraph(nodes []content.Node) *content.Paragraph {
	nodes = trimInline(nodes)
	if len(nodes) == 0 {
		return nil
	}
	return &content.Paragraph{Children: nodes}
}

func trimInline(nodes []content.Node) []content.Node {
	for len(nodes) > 0 {
		t, ok := nodes[0].(*content.Text)
		if !ok {
			break
		}
		if s := strings.TrimLeftFunc(t.Text, unicode.IsSpace); s != "" {
			cp := *t
			cp.Text = s
			nodes = append([]content.Node{&cp}, nodes[1:]...)
			break
		}
		nodes = nodes[1:]
	}
	for len(nodes) > 0 {
		last := len(nodes) - 1
		t, ok := nodes[last].(*content.Text)
		if !ok {
			break
		}
		if s := strings.TrimRightFunc(t.Text, unicode.IsSpace); s != "" {
			cp := *t
			cp.Text = s
			nodes = append(nodes[:last:last], &cp)
			break
		}
		nodes = nodes[:last]
	}
	return nodes
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func alignOf(n *html.Node) content.Align {
	v := strings.ToLower(attr(n, "align"))
	if v == "" {
		for _, decl := range strings.Split(attr(n, "style"), ";") {
			k, val, ok := strings.Cut(decl, ":")
			if ok && strings.TrimSpace(strings.ToLower(k)) == "text-align" {
				v = strings.TrimSpace(strings.ToLower(val))
			}
		}
	}
	switch content.Align(v) {
	case content.AlignLeft, content.AlignCenter, content.AlignRight, content.AlignJustify:
		return content.Align(v)
	}
	return content.AlignNone
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(textContent(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
