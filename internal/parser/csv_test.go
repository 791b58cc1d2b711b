package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docforge/internal/content"
)

func TestCSVParser_HeaderRow(t *testing.T) {
	input := "part,qty\nbolt,4\nnut, 8,extra\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "bom.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "bom" {
		t.Errorf("expected title %q, got %q", "bom", doc.Title)
	}

	tbl, ok := doc.Content.Children[0].(*content.Table)
	if !ok {
		t.Fatalf("expected table, got %T", doc.Content.Children[0])
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tbl.Rows))
	}
	for _, c := range tbl.Rows[0].Cells {
		if !c.Header {
			t.Error("first row cells should be headers")
		}
	}
	if len(tbl.Rows[2].Cells) != 3 {
		t.Errorf("ragged row should keep its cells, got %d", len(tbl.Rows[2].Cells))
	}
	if got := plain(tbl.Rows[2].Cells[1]); got != "8" {
		t.Errorf("expected trimmed %q, got %q", "8", got)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(""), "e.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content.Children) != 0 {
		t.Errorf("expected no blocks, got %d", len(doc.Content.Children))
	}
}
