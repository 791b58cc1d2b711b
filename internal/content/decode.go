package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds tree nesting when callers do not configure a limit.
const DefaultMaxDepth = 32

var (
	// ErrInvalid is returned when the input is not a content tree.
	ErrInvalid = errors.New("invalid content tree")
	// ErrTooDeep is returned when the tree nests deeper than the allowed depth.
	ErrTooDeep = errors.New("content tree exceeds maximum depth")
)

// wireNode is the JSON form emitted by rich-text editors.
type wireNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty"`
	Content []*wireNode    `json:"content,omitempty"`
}

type wireMark struct {
	Type string `json:"type"`
}

// Decode parses a JSON content tree. An empty or null input yields an empty
// Doc. A top-level array is treated as the children of a Doc.
func Decode(data []byte, maxDepth int) (Node, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Doc{}, nil
	}

	var root *wireNode
	if trimmed[0] == '[' {
		var children []*wireNode
		if err := json.Unmarshal(trimmed, &children); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		root = &wireNode{Type: "doc", Content: children}
	} else {
		if err := json.Unmarshal(trimmed, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if root == nil || root.Type == "" {
		return nil, fmt.Errorf("%w: root node has no type", ErrInvalid)
	}

	n, err := convert(root, 0, maxDepth)
	if err != nil {
		return nil, err
	}
	if _, ok := n.(*Doc); !ok {
		n = &Doc{Children: []Node{n}}
	}
	return n, nil
}

func convert(w *wireNode, depth, maxDepth int) (Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrTooDeep, maxDepth)
	}

	children := func() ([]Node, error) {
		out := make([]Node, 0, len(w.Content))
		for _, c := range w.Content {
			if c == nil {
				continue
			}
			n, err := convert(c, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}

	switch w.Type {
	case "doc":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		return &Doc{Children: kids}, nil

	case "text":
		t := &Text{Text: w.Text}
		for _, m := range w.Marks {
			switch m.Type {
			case "bold", "strong":
				t.Bold = true
			case "italic", "em":
				t.Italic = true
			case "underline":
				t.Underline = true
			case "strike", "strikethrough":
				t.Strike = true
			}
		}
		return t, nil

	case "hardBreak":
		return &HardBreak{}, nil

	case "paragraph":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		return &Paragraph{Align: alignAttr(w.Attrs), Children: kids}, nil

	case "heading":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		level := intAttr(w.Attrs, "level")
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return &Heading{Level: level, Align: alignAttr(w.Attrs), Children: kids}, nil

	case "orderedList", "bulletList":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		items := make([]*ListItem, 0, len(kids))
		for _, k := range kids {
			if it, ok := k.(*ListItem); ok {
				items = append(items, it)
				continue
			}
			// Loose content directly under a list is wrapped into its own item.
			items = append(items, &ListItem{Children: []Node{k}})
		}
		if w.Type == "orderedList" {
			return &OrderedList{Start: intAttr(w.Attrs, "start"), Items: items}, nil
		}
		return &BulletList{Items: items}, nil

	case "listItem":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		return &ListItem{Children: kids}, nil

	case "image":
		return &Image{
			Src:   stringAttr(w.Attrs, "src"),
			Align: alignAttr(w.Attrs),
			Width: intAttr(w.Attrs, "width"),
		}, nil

	case "table":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		t := &Table{}
		for _, k := range kids {
			if r, ok := k.(*TableRow); ok {
				t.Rows = append(t.Rows, r)
			}
		}
		return t, nil

	case "tableRow":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		r := &TableRow{}
		for _, k := range kids {
			if c, ok := k.(*TableCell); ok {
				r.Cells = append(r.Cells, c)
			}
		}
		return r, nil

	case "tableCell", "tableHeader":
		kids, err := children()
		if err != nil {
			return nil, err
		}
		return &TableCell{
			Header:   w.Type == "tableHeader",
			Colspan:  intAttr(w.Attrs, "colspan"),
			Children: kids,
		}, nil
	}

	kids, err := children()
	if err != nil {
		return nil, err
	}
	return &Unknown{Type: w.Type, Text: w.Text, Children: kids}, nil
}

func alignAttr(attrs map[string]any) Align {
	switch strings.ToLower(stringAttr(attrs, "textAlign")) {
	case "left", "start":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "justify":
		return AlignJustify
	}
	return AlignNone
}

func stringAttr(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	s, _ := attrs[key].(string)
	return s
}

func intAttr(attrs map[string]any, key string) int {
	if attrs == nil {
		return 0
	}
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Encode renders a content tree back into its JSON wire form.
func Encode(n Node) ([]byte, error) {
	return json.Marshal(toWire(n))
}

func toWire(n Node) *wireNode {
	w := &wireNode{}
	kids := func(nodes []Node) {
		for _, c := range nodes {
			w.Content = append(w.Content, toWire(c))
		}
	}
	withAlign := func(a Align) {
		if a != AlignNone {
			w.Attrs = map[string]any{"textAlign": string(a)}
		}
	}

	switch v := n.(type) {
	case *Doc:
		w.Type = "doc"
		kids(v.Children)
	case *Text:
		w.Type = "text"
		w.Text = v.Text
		if v.Bold {
			w.Marks = append(w.Marks, wireMark{Type: "bold"})
		}
		if v.Italic {
			w.Marks = append(w.Marks, wireMark{Type: "italic"})
		}
		if v.Underline {
			w.Marks = append(w.Marks, wireMark{Type: "underline"})
		}
		if v.Strike {
			w.Marks = append(w.Marks, wireMark{Type: "strike"})
		}
	case *HardBreak:
		w.Type = "hardBreak"
	case *Paragraph:
		w.Type = "paragraph"
		withAlign(v.Align)
		kids(v.Children)
	case *Heading:
		w.Type = "heading"
		withAlign(v.Align)
		if w.Attrs == nil {
			w.Attrs = map[string]any{}
		}
		w.Attrs["level"] = v.Level
		kids(v.Children)
	case *OrderedList:
		w.Type = "orderedList"
		if v.Start > 0 {
			w.Attrs = map[string]any{"start": v.Start}
		}
		kids(items(v.Items))
	case *BulletList:
		w.Type = "bulletList"
		kids(items(v.Items))
	case *ListItem:
		w.Type = "listItem"
		kids(v.Children)
	case *Image:
		w.Type = "image"
		w.Attrs = map[string]any{"src": v.Src}
		if v.Align != AlignNone {
			w.Attrs["textAlign"] = string(v.Align)
		}
		if v.Width > 0 {
			w.Attrs["width"] = v.Width
		}
	case *Table:
		w.Type = "table"
		kids(Children(v))
	case *TableRow:
		w.Type = "tableRow"
		kids(Children(v))
	case *TableCell:
		w.Type = "tableCell"
		if v.Header {
			w.Type = "tableHeader"
		}
		if v.Colspan > 1 {
			w.Attrs = map[string]any{"colspan": v.Colspan}
		}
		kids(v.Children)
	case *Unknown:
		w.Type = v.Type
		w.Text = v.Text
		kids(v.Children)
	}
	return w
}
