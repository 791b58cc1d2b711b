// Package packager serializes laid-out blocks into a .docx file.
//
// Paragraphs, runs and images go through go-docx. Tables use the local
// table types in table.go so cell content keeps its order. The numbering
// part, which go-docx does not emit, is added by rewriting the archive.
package packager

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/dgallion1/docforge/internal/block"
	"github.com/dgallion1/docforge/internal/numbering"
	"github.com/fumiama/go-docx"
)

const (
	emuPerPixel = 9525
	emuPerDXA   = 635
)

// Write packages blocks and the numbering definitions they reference.
func Write(w io.Writer, blocks []block.Block, defs []numbering.Definition) error {
	f := docx.New().WithDefaultTheme()
	b := &builder{f: f}

	items := make([]any, 0, len(blocks))
	for _, blk := range blocks {
		item, err := b.block(blk, maxImageWidth)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	f.Document.Body.Items = append(f.Document.Body.Items, items...)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	if err := addNumbering(w, buf.Bytes(), defs); err != nil {
		return fmt.Errorf("add numbering: %w", err)
	}
	return nil
}

// maxImageWidth is the page content width in EMU.
const maxImageWidth = 9026 * emuPerDXA

type builder struct {
	f *docx.Docx
}

func (b *builder) block(blk block.Block, maxWidth int64) (any, error) {
	switch v := blk.(type) {
	case *block.Paragraph:
		return b.paragraph(v, maxWidth)
	case *block.Table:
		return b.table(v)
	}
	return nil, fmt.Errorf("unsupported block %T", blk)
}

// newParagraph returns a paragraph bound to the document so that images
// can register their media. The library appends it to the body; it is
// detached again because the caller decides where it goes.
func (b *builder) newParagraph() *docx.Paragraph {
	p := b.f.AddParagraph()
	items := b.f.Document.Body.Items
	b.f.Document.Body.Items = items[:len(items)-1]
	return p
}

func (b *builder) paragraph(p *block.Paragraph, maxWidth int64) (*docx.Paragraph, error) {
	dp := b.newParagraph()
	if p.Align != "" {
		dp.Justification(string(p.Align))
	}
	if p.Numbering != nil {
		dp.NumPr(strconv.Itoa(p.Numbering.ID), strconv.Itoa(p.Numbering.Level))
	}

	for _, r := range p.Runs {
		switch {
		case r.Image != nil:
			run, err := dp.AddInlineDrawing(r.Image.Data)
			if err != nil {
				return nil, fmt.Errorf("embed image: %w", err)
			}
			sizeDrawing(run, r.Image, maxWidth)
		case r.Break:
			dp.AddText("\n")
		default:
			styleRun(dp.AddText(r.Text), r)
		}
	}
	if len(p.Runs) == 0 {
		dp.AddText("")
	}
	return dp, nil
}

func styleRun(run *docx.Run, r block.Run) {
	if r.Bold {
		run.Bold()
	}
	if r.Italic {
		run.Italic()
	}
	if r.Underline {
		run.Underline("single")
	}
	if r.Strike {
		run.Strike(true)
	}
	if r.Size > 0 {
		run.Size(strconv.Itoa(r.Size))
	}
}

// sizeDrawing replaces the library's page-width scaling with the
// image's own display size, capped at maxWidth.
func sizeDrawing(run *docx.Run, img *block.Image, maxWidth int64) {
	if img.Width <= 0 || img.Height <= 0 {
		return
	}
	w := int64(img.Width) * emuPerPixel
	h := int64(img.Height) * emuPerPixel
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	for _, c := range run.Children {
		if d, ok := c.(*docx.Drawing); ok && d.Inline != nil {
			d.Inline.Size(w, h)
		}
	}
}
