package compiler

import (
	"strconv"
	"strings"

	"github.com/dgallion1/docforge/internal/assets"
	"github.com/dgallion1/docforge/internal/block"
	"github.com/dgallion1/docforge/internal/layout"
	"github.com/dgallion1/docforge/internal/signature"
)

const (
	logoWidth       = 120 // pixels
	attachmentWidth = 300 // pixels

	labelColumn = 2400

	attachGroupColumn = 2000
	attachIndexColumn = 700
)

// assemble lays out the page furniture around the walked body. The order
// is fixed: logo, title, info table, content, signatures, attachments.
func (c *Compiler) assemble(rec *Record, body []block.Block, set assets.Set) ([]block.Block, error) {
	var out []block.Block
	add := func(bs ...block.Block) {
		// Adjacent tables are kept apart so they do not fuse.
		if len(out) > 0 && len(bs) > 0 {
			_, prevTable := out[len(out)-1].(*block.Table)
			_, nextTable := bs[0].(*block.Table)
			if prevTable && nextTable {
				out = append(out, block.BlankParagraph())
			}
		}
		out = append(out, bs...)
	}

	if p := c.logo(rec, set); p != nil {
		add(p)
	}
	add(titleBlocks(rec)...)

	if t, err := infoTable(rec); err != nil {
		return nil, err
	} else if t != nil {
		add(t)
	}

	ct, err := contentTable(body)
	if err != nil {
		return nil, err
	}
	add(ct)

	if t, ok := signature.Build(rec.Approvers, signature.Options{
		DefaultCategory:    c.opts.DefaultCategory,
		RequiredCategories: c.opts.RequiredCategories,
		HostOrganization:   c.opts.HostOrganization,
	}); ok {
		add(t)
	}

	if t, err := attachmentTable(rec.Attachments, set); err != nil {
		return nil, err
	} else if t != nil {
		add(t)
	}
	return out, nil
}

func (c *Compiler) logo(rec *Record, set assets.Set) *block.Paragraph {
	a, ok := set.Get(rec.LogoURI)
	if !ok {
		if rec.LogoURI != "" {
			c.logger.Warn("logo unavailable, using default", "doc_id", rec.ID)
		}
		a, ok = assets.DefaultLogo(c.opts.LogoDir)
	}
	if !ok {
		return nil
	}
	return &block.Paragraph{
		Runs:  []block.Run{{Image: imageBlock(a, min(a.Width, logoWidth))}},
		Align: block.AlignLeft,
	}
}

func titleBlocks(rec *Record) []block.Block {
	var out []block.Block
	if org := strings.TrimSpace(rec.Organization); org != "" {
		out = append(out, &block.Paragraph{
			Runs:  []block.Run{{Text: org, Bold: true, Size: 28}},
			Align: block.AlignCenter,
		})
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = "Untitled"
	}
	out = append(out, &block.Paragraph{
		Runs:    []block.Run{{Text: title, Bold: true, Size: 32}},
		Align:   block.AlignCenter,
		Heading: 1,
	})
	return out
}

// infoTable renders the reference number and free fields as a borderless
// key/value table. It returns nil when there is nothing to show.
func infoTable(rec *Record) (*block.Table, error) {
	fields := rec.Fields
	if ref := strings.TrimSpace(rec.ReferenceNo); ref != "" {
		fields = append([]Field{{Label: "Reference No.", Value: ref}}, fields...)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	rows := make([]layout.Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, layout.Row{Cells: []layout.Cell{
			{Label: true, Blocks: []block.Block{&block.Paragraph{Runs: []block.Run{{Text: f.Label, Bold: true}}}}},
			{Blocks: []block.Block{block.TextParagraph(f.Value, "")}},
		}})
	}
	return layout.Build(rows, layout.Columns(labelColumn, layout.PageContentWidth-labelColumn).WithoutBorders())
}

// contentTable places the body in a single full-width cell. Blank
// top-level paragraphs are dropped here; the cell never ends up empty.
func contentTable(body []block.Block) (*block.Table, error) {
	kept := make([]block.Block, 0, len(body))
	for _, b := range body {
		if p, ok := b.(*block.Paragraph); ok && p.Numbering == nil && p.Blank() {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		kept = append(kept, block.BlankParagraph())
	}
	return layout.Build([]layout.Row{{Cells: []layout.Cell{{Blocks: kept}}}}, layout.Percent(100))
}

// attachmentTable lists attachments by group. The group label cell is
// merged down across the group's rows.
func attachmentTable(groups []AttachmentGroup, set assets.Set) (*block.Table, error) {
	var rows []layout.Row
	for _, g := range groups {
		uris := make([]string, 0, len(g.URIs))
		for _, u := range g.URIs {
			if u = strings.TrimSpace(u); u != "" {
				uris = append(uris, u)
			}
		}
		if len(uris) == 0 {
			continue
		}
		label := &block.Paragraph{Runs: []block.Run{{Text: g.Label, Bold: true}}}
		for i, u := range uris {
			merge := block.MergeContinue
			if i == 0 {
				merge = block.MergeRestart
			}
			rows = append(rows, layout.Row{Cells: []layout.Cell{
				{Label: true, Merge: merge, Blocks: []block.Block{label}},
				{Label: true, Blocks: []block.Block{block.TextParagraph(strconv.Itoa(i+1), block.AlignCenter)}},
				{Blocks: []block.Block{attachmentBlock(u, set)}},
			}})
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := layout.Row{Cells: []layout.Cell{
		{Header: true, Blocks: []block.Block{block.TextParagraph("Attachments", "")}},
		{Header: true, Blocks: []block.Block{block.TextParagraph("No.", "")}},
		{Header: true, Blocks: []block.Block{block.TextParagraph("File", "")}},
	}}
	rows = append([]layout.Row{header}, rows...)
	return layout.Build(rows, layout.Columns(
		attachGroupColumn,
		attachIndexColumn,
		layout.PageContentWidth-attachGroupColumn-attachIndexColumn,
	))
}

func attachmentBlock(uri string, set assets.Set) *block.Paragraph {
	if a, ok := set.Get(uri); ok {
		return &block.Paragraph{Runs: []block.Run{{Image: imageBlock(a, min(a.Width, attachmentWidth))}}}
	}
	return block.TextParagraph(uri, "")
}
