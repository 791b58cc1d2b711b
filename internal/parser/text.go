package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docforge/internal/content"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// line breaks inside a paragraph are kept as hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	paras, err := splitParagraphs(r)
	if err != nil {
		return nil, err
	}
	return &Document{Title: baseTitle(filename), Content: &content.Doc{Children: paras}}, nil
}

func splitParagraphs(r io.Reader) ([]content.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []content.Node
	var lines []string

	flush := func() {
		if len(lines) == 0 {
			return
		}
		para := &content.Paragraph{}
		for i, l := range lines {
			if i > 0 {
				para.Children = append(para.Children, &content.HardBreak{})
			}
			para.Children = append(para.Children, &content.Text{Text: l})
		}
		out = append(out, para)
		lines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
