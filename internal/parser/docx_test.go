package parser

import (
	"bytes"
	"testing"

	"github.com/dgallion1/docforge/internal/content"
	"github.com/fumiama/go-docx"
)

func buildDocx(t *testing.T) []byte {
	t.Helper()
	f := docx.New().WithDefaultTheme()

	f.AddParagraph().Style("Heading1").AddText("Overview")
	p := f.AddParagraph().Justification("center")
	p.AddText("plain ")
	p.AddText("strong").Bold()
	f.AddParagraph().NumPr("5", "0").AddText("one")
	f.AddParagraph().NumPr("5", "1").AddText("one.a")
	f.AddParagraph().NumPr("5", "0").AddText("two")
	f.AddParagraph().AddText("after")

	tbl := f.AddTable(1, 2, 9026, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("a")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("b")

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser_Structure(t *testing.T) {
	p := &DOCXParser{}
	doc, err := p.Parse(bytes.NewReader(buildDocx(t)), "report.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "report" {
		t.Errorf("expected title %q, got %q", "report", doc.Title)
	}

	kids := doc.Content.Children
	if len(kids) != 5 {
		for _, k := range kids {
			t.Logf("%T %q", k, plain(k))
		}
		t.Fatalf("expected 5 blocks, got %d", len(kids))
	}

	if h, ok := kids[0].(*content.Heading); !ok || h.Level != 1 {
		t.Errorf("expected level 1 heading, got %#v", kids[0])
	}

	para := kids[1].(*content.Paragraph)
	if para.Align != content.AlignCenter {
		t.Errorf("expected centered paragraph, got %q", para.Align)
	}
	if last := para.Children[len(para.Children)-1].(*content.Text); !last.Bold {
		t.Error("bold run lost")
	}

	ol, ok := kids[2].(*content.OrderedList)
	if !ok {
		t.Fatalf("expected ordered list, got %T", kids[2])
	}
	if len(ol.Items) != 2 {
		t.Fatalf("expected 2 top-level items, got %d", len(ol.Items))
	}
	nested, ok := ol.Items[0].Children[1].(*content.OrderedList)
	if !ok || plain(nested) != "one.a" {
		t.Errorf("expected nested item one.a, got %#v", ol.Items[0].Children)
	}

	if plain(kids[3]) != "after" {
		t.Errorf("expected %q, got %q", "after", plain(kids[3]))
	}

	tbl, ok := kids[4].(*content.Table)
	if !ok || len(tbl.Rows) != 1 || len(tbl.Rows[0].Cells) != 2 {
		t.Fatalf("table structure lost: %#v", kids[4])
	}
	if plain(tbl.Rows[0].Cells[1]) != "b" {
		t.Errorf("cell text: got %q", plain(tbl.Rows[0].Cells[1]))
	}
}

func TestListBuilder_StartsNewListOnNewID(t *testing.T) {
	var b listBuilder
	para := func(s string) *content.Paragraph { return textParagraph(s) }

	first := b.add("1", 0, para("a"))
	if first == nil {
		t.Fatal("expected a new list")
	}
	if b.add("1", 2, para("deep")) != nil {
		t.Error("same id should continue the list")
	}
	second := b.add("2", 0, para("b"))
	if second == nil || second == first {
		t.Error("a new id should start a new list")
	}

	// Level 2 under an item at level 0 creates an intermediate item.
	mid := first.Items[0].Children[1].(*content.OrderedList)
	if len(mid.Items) != 1 || len(mid.Items[0].Children) != 1 {
		t.Fatalf("expected one placeholder item holding the deeper list, got %#v", mid.Items)
	}
	if _, ok := mid.Items[0].Children[0].(*content.OrderedList); !ok {
		t.Errorf("expected deeper list, got %T", mid.Items[0].Children[0])
	}
}
