package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docforge/internal/content"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph styles become headings,
// numbered paragraphs become nested ordered lists and tables keep their
// cell structure. Embedded drawings are not imported.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	out := &content.Doc{Children: docxBlocks(doc.Document.Body.Items)}
	return &Document{Title: baseTitle(filename), Content: out}, nil
}

func docxBlocks(items []interface{}) []content.Node {
	var out []content.Node
	var lists listBuilder
	for _, item := range items {
		switch v := item.(type) {
		case *docx.Paragraph:
			if id, lvl, ok := docxNumbering(v); ok {
				if l := lists.add(id, lvl, docxParagraph(v)); l != nil {
					out = append(out, l)
				}
				continue
			}
			lists.reset()
			if level := docxHeadingLevel(v); level > 0 {
				out = append(out, &content.Heading{Level: level, Align: docxAlign(v), Children: docxRuns(v)})
				continue
			}
			out = append(out, docxParagraph(v))
		case *docx.Table:
			lists.reset()
			out = append(out, docxTable(v))
		}
	}
	return out
}

// listBuilder nests consecutive numbered paragraphs by their level. A new
// numbering id starts a new top-level list.
type listBuilder struct {
	id    string
	stack []*content.OrderedList
}

func (b *listBuilder) reset() {
	b.id = ""
	b.stack = nil
}

// add places para at level and returns the root list when a new one was
// started.
func (b *listBuilder) add(id string, level int, para *content.Paragraph) *content.OrderedList {
	var started *content.OrderedList
	if b.stack == nil || id != b.id {
		b.id = id
		started = &content.OrderedList{}
		b.stack = []*content.OrderedList{started}
	}
	for len(b.stack) > level+1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
	for len(b.stack) < level+1 {
		top := b.stack[len(b.stack)-1]
		if len(top.Items) == 0 {
			top.Items = append(top.Items, &content.ListItem{})
		}
		last := top.Items[len(top.Items)-1]
		nested := &content.OrderedList{}
		last.Children = append(last.Children, nested)
		b.stack = append(b.stack, nested)
	}
	top := b.stack[len(b.stack)-1]
	top.Items = append(top.Items, &content.ListItem{Children: []content.Node{para}})
	return started
}

func docxTable(t *docx.Table) *content.Table {
	tbl := &content.Table{}
	for _, r := range t.TableRows {
		row := &content.TableRow{}
		for _, c := range r.TableCells {
			cell := &content.TableCell{}
			if c.TableCellProperties != nil && c.TableCellProperties.GridSpan != nil {
				cell.Colspan = c.TableCellProperties.GridSpan.Val
			}
			for _, p := range c.Paragraphs {
				cell.Children = append(cell.Children, docxParagraph(p))
			}
			for _, nested := range c.Tables {
				cell.Children = append(cell.Children, docxTable(nested))
			}
			row.Cells = append(row.Cells, cell)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

func docxParagraph(p *docx.Paragraph) *content.Paragraph {
	return &content.Paragraph{Align: docxAlign(p), Children: docxRuns(p)}
}

func docxRuns(p *docx.Paragraph) []content.Node {
	var out []content.Node
	for _, child := range p.Children {
		switch v := child.(type) {
		case *docx.Run:
			out = append(out, docxRun(v, false)...)
		case *docx.Hyperlink:
			out = append(out, docxRun(&v.Run, true)...)
		}
	}
	return out
}

func docxRun(run *docx.Run, link bool) []content.Node {
	base := content.Text{Underline: link}
	if rp := run.RunProperties; rp != nil {
		base.Bold = rp.Bold != nil
		base.Italic = rp.Italic != nil
		base.Underline = base.Underline || (rp.Underline != nil && rp.Underline.Val != "none")
		base.Strike = rp.Strike != nil && rp.Strike.Val != "false" && rp.Strike.Val != "0"
	}

	var out []content.Node
	for _, rc := range run.Children {
		switch v := rc.(type) {
		case *docx.Text:
			t := base
			t.Text = v.Text
			out = append(out, &t)
		case *docx.Tab:
			t := base
			t.Text = "\t"
			out = append(out, &t)
		case *docx.BarterRabbet:
			out = append(out, &content.HardBreak{})
		}
	}
	return out
}

func docxNumbering(p *docx.Paragraph) (string, int, bool) {
	if p.Properties == nil || p.Properties.NumProperties == nil || p.Properties.NumProperties.NumID == nil {
		return "", 0, false
	}
	np := p.Properties.NumProperties
	if np.NumID.Val == "" || np.NumID.Val == "0" {
		return "", 0, false
	}
	lvl := 0
	if np.Ilvl != nil {
		lvl, _ = strconv.Atoi(np.Ilvl.Val)
	}
	return np.NumID.Val, max(lvl, 0), true
}

func docxAlign(p *docx.Paragraph) content.Align {
	if p.Properties == nil || p.Properties.Justification == nil {
		return content.AlignNone
	}
	switch p.Properties.Justification.Val {
	case "left", "start":
		return content.AlignLeft
	case "center":
		return content.AlignCenter
	case "right", "end":
		return content.AlignRight
	case "both", "distribute":
		return content.AlignJustify
	}
	return content.AlignNone
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}
