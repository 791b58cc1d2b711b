package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docforge/internal/content"
)

// CSVParser handles CSV files. The first record becomes the header row of a
// single table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &content.Doc{}
	if len(records) > 0 {
		tbl := &content.Table{}
		for i, rec := range records {
			row := &content.TableRow{}
			for _, field := range rec {
				row.Cells = append(row.Cells, &content.TableCell{
					Header:   i == 0,
					Children: []content.Node{textParagraph(field)},
				})
			}
			tbl.Rows = append(tbl.Rows, row)
		}
		doc.Children = append(doc.Children, tbl)
	}

	return &Document{Title: baseTitle(filename), Content: doc}, nil
}
