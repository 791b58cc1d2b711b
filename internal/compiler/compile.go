// Package compiler turns a Record into laid-out document blocks and
// packages them as a .docx file.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docforge/internal/assets"
	"github.com/dgallion1/docforge/internal/block"
	"github.com/dgallion1/docforge/internal/content"
	"github.com/dgallion1/docforge/internal/layout"
	"github.com/dgallion1/docforge/internal/numbering"
	"github.com/dgallion1/docforge/internal/packager"
)

// Options tunes a Compiler. The zero value is usable.
type Options struct {
	MaxDepth    int
	Concurrency int
	// HostOrganization is the approver category listed first.
	HostOrganization   string
	DefaultCategory    string
	RequiredCategories []string
	// LogoDir may hold a logo.png used when a record has no logo.
	LogoDir string
	// TableWidth fixes content tables to this many DXA. Zero spans the page.
	TableWidth int
}

// Compiler compiles records. It holds no per-document state and is safe
// for concurrent use.
type Compiler struct {
	fetcher assets.Fetcher
	opts    Options
	logger  *slog.Logger
}

func New(fetcher assets.Fetcher, opts Options, logger *slog.Logger) *Compiler {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = content.DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = assets.DefaultConcurrency
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{fetcher: fetcher, opts: opts, logger: logger}
}

// Document is a compiled, not yet packaged, document.
type Document struct {
	Blocks    []block.Block
	Numbering []numbering.Definition
	FileName  string
}

// Output is a packaged document.
type Output struct {
	Data     []byte
	FileName string
}

// Compile resolves the record's assets and lays out its blocks.
func (c *Compiler) Compile(ctx context.Context, rec *Record) (*Document, error) {
	if rec == nil {
		return nil, &Error{Op: "load", Err: ErrRecordNotFound}
	}
	log := c.logger.With("doc_id", rec.ID)

	tree, err := rec.tree(c.opts.MaxDepth)
	if err != nil {
		return nil, &Error{Op: "decode", DocID: rec.ID, Err: err}
	}

	set := c.prefetch(ctx, rec, tree)
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "resolve", DocID: rec.ID, Err: err}
	}
	log.Debug("assets resolved", "count", set.Len())

	tableSpec := layout.Percent(100)
	if c.opts.TableWidth > 0 {
		tableSpec = layout.Fixed(c.opts.TableWidth)
	}
	w := &walker{
		nums:      numbering.New(),
		assets:    set,
		tableSpec: tableSpec,
		maxDepth:  c.opts.MaxDepth,
		logger:    log,
	}
	body, err := w.walk(tree, nil, 0)
	if err != nil {
		return nil, &Error{Op: "walk", DocID: rec.ID, Err: err}
	}

	blocks, err := c.assemble(rec, body, set)
	if err != nil {
		return nil, &Error{Op: "layout", DocID: rec.ID, Err: err}
	}

	return &Document{
		Blocks:    blocks,
		Numbering: w.nums.Definitions(),
		FileName:  FileName(rec.Title, rec.Organization),
	}, nil
}

// Render compiles rec and packages the result.
func (c *Compiler) Render(ctx context.Context, rec *Record) (*Output, error) {
	doc, err := c.Compile(ctx, rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := packager.Write(&buf, doc.Blocks, doc.Numbering); err != nil {
		return nil, &Error{Op: "package", DocID: rec.ID, Err: fmt.Errorf("%w: %v", ErrPackaging, err)}
	}
	c.logger.Info("document compiled", "doc_id", rec.ID, "bytes", buf.Len(), "file", doc.FileName)
	return &Output{Data: buf.Bytes(), FileName: doc.FileName}, nil
}

// Export loads record id from src and renders it.
func (c *Compiler) Export(ctx context.Context, src RecordSource, id string) (*Output, error) {
	rec, err := src.Record(ctx, id)
	if err != nil {
		return nil, &Error{Op: "load", DocID: id, Err: err}
	}
	if rec == nil {
		return nil, &Error{Op: "load", DocID: id, Err: ErrRecordNotFound}
	}
	if rec.ID == "" {
		cp := *rec
		cp.ID = id
		rec = &cp
	}
	return c.Render(ctx, rec)
}

func (c *Compiler) prefetch(ctx context.Context, rec *Record, tree content.Node) assets.Set {
	if c.fetcher == nil {
		return assets.NewSet()
	}
	uris := content.Images(tree, c.opts.MaxDepth)
	if rec.LogoURI != "" {
		uris = append(uris, rec.LogoURI)
	}
	for _, g := range rec.Attachments {
		uris = append(uris, g.URIs...)
	}
	return assets.Prefetch(ctx, c.fetcher, uris, c.opts.Concurrency)
}
