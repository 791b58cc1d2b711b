// Package signature builds the approver signature table: one column per
// approver, grouped under a merged header per category.
package signature

import (
	"sort"
	"strings"

	"github.com/dgallion1/docforge/internal/block"
	"github.com/dgallion1/docforge/internal/layout"
)

const (
	DefaultCategory = "Approvers"

	// SignatureRowHeight leaves room for a handwritten signature, in DXA.
	SignatureRowHeight = 1200
)

// Approver is one approver record. An empty Name marks a category that
// exists but has no member yet.
type Approver struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
}

// Options controls grouping and ordering.
type Options struct {
	DefaultCategory    string
	RequiredCategories []string
	// HostOrganization names the category placed first.
	HostOrganization string
	// Width is the table width in DXA; zero means the page content width.
	Width int
}

type group struct {
	name    string
	members []Approver
}

// Build groups records by category and lays them out. It returns false
// when there is no approver to sign.
func Build(records []Approver, opts Options) (*block.Table, bool) {
	groups := partition(records, opts)

	total := 0
	for _, g := range groups {
		total += len(g.members)
	}
	if total == 0 {
		return nil, false
	}

	var (
		header  layout.Row
		signRow = layout.Row{Height: SignatureRowHeight}
		nameRow layout.Row
		empty   []layout.Row
	)
	for _, g := range groups {
		if len(g.members) == 0 {
			empty = append(empty, layout.Row{
				Height: SignatureRowHeight,
				Cells: []layout.Cell{{
					Span:   total,
					Label:  true,
					Blocks: []block.Block{boldParagraph(g.name)},
				}},
			})
			continue
		}
		header.Cells = append(header.Cells, layout.Cell{
			Span:   len(g.members),
			Header: true,
			Blocks: []block.Block{block.TextParagraph(g.name, block.AlignCenter)},
		})
		for _, m := range g.members {
			signRow.Cells = append(signRow.Cells, layout.Cell{})
			nameRow.Cells = append(nameRow.Cells, layout.Cell{Label: true, Blocks: nameBlocks(m)})
		}
	}

	rows := append([]layout.Row{header, signRow, nameRow}, empty...)
	width := opts.Width
	if width <= 0 {
		width = layout.PageContentWidth
	}
	t, err := layout.Build(rows, layout.Fixed(width))
	if err != nil {
		// Unreachable: total > 0 guarantees a non-empty grid.
		return nil, false
	}
	return t, true
}

// partition groups members by category and orders the groups.
func partition(records []Approver, opts Options) []*group {
	def := strings.TrimSpace(opts.DefaultCategory)
	if def == "" {
		def = DefaultCategory
	}

	byKey := make(map[string]*group)
	var groups []*group
	get := func(name string) *group {
		key := strings.ToLower(name)
		g, ok := byKey[key]
		if !ok {
			g = &group{name: name}
			byKey[key] = g
			groups = append(groups, g)
		}
		return g
	}

	for _, c := range opts.RequiredCategories {
		if c = strings.TrimSpace(c); c != "" {
			get(c)
		}
	}
	for _, r := range records {
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			cat = def
		}
		g := get(cat)
		if strings.TrimSpace(r.Name) != "" {
			g.members = append(g.members, r)
		}
	}

	host := strings.ToLower(strings.TrimSpace(opts.HostOrganization))
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].name), strings.ToLower(groups[j].name)
		if host != "" && (a == host) != (b == host) {
			return a == host
		}
		return a < b
	})
	return groups
}

func nameBlocks(m Approver) []block.Block {
	out := []block.Block{boldParagraph(strings.TrimSpace(m.Name))}
	if pos := strings.TrimSpace(m.Position); pos != "" {
		out = append(out, block.TextParagraph(pos, block.AlignCenter))
	}
	return out
}

func boldParagraph(s string) *block.Paragraph {
	return &block.Paragraph{Runs: []block.Run{{Text: s, Bold: true}}, Align: block.AlignCenter}
}
