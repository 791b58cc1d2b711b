package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ParagraphWithMarks(t *testing.T) {
	input := `{"type":"doc","content":[
		{"type":"paragraph","attrs":{"textAlign":"center"},"content":[
			{"type":"text","text":"Hello ","marks":[{"type":"bold"}]},
			{"type":"text","text":"world","marks":[{"type":"italic"},{"type":"underline"}]},
			{"type":"hardBreak"}
		]}
	]}`

	n, err := Decode([]byte(input), 0)
	require.NoError(t, err)

	doc, ok := n.(*Doc)
	require.True(t, ok, "root should be a Doc")
	require.Len(t, doc.Children, 1)

	p, ok := doc.Children[0].(*Paragraph)
	require.True(t, ok)
	assert.Equal(t, AlignCenter, p.Align)
	require.Len(t, p.Children, 3)

	first := p.Children[0].(*Text)
	assert.True(t, first.Bold)
	assert.False(t, first.Italic)

	second := p.Children[1].(*Text)
	assert.True(t, second.Italic)
	assert.True(t, second.Underline)

	assert.IsType(t, &HardBreak{}, p.Children[2])
}

func TestDecode_Lists(t *testing.T) {
	input := `{"type":"doc","content":[
		{"type":"orderedList","attrs":{"start":1},"content":[
			{"type":"listItem","content":[
				{"type":"paragraph","content":[{"type":"text","text":"one"}]},
				{"type":"bulletList","content":[
					{"type":"listItem","content":[{"type":"paragraph"}]}
				]}
			]}
		]}
	]}`

	n, err := Decode([]byte(input), 0)
	require.NoError(t, err)

	ol := n.(*Doc).Children[0].(*OrderedList)
	assert.Equal(t, 1, ol.Start)
	require.Len(t, ol.Items, 1)
	require.Len(t, ol.Items[0].Children, 2)

	bl, ok := ol.Items[0].Children[1].(*BulletList)
	require.True(t, ok)
	require.Len(t, bl.Items, 1)
}

func TestDecode_TableAndImage(t *testing.T) {
	input := `[
		{"type":"image","attrs":{"src":"https://example.com/a.png","textAlign":"right","width":120}},
		{"type":"table","content":[
			{"type":"tableRow","content":[
				{"type":"tableHeader","attrs":{"colspan":2},"content":[{"type":"paragraph"}]}
			]},
			{"type":"tableRow","content":[
				{"type":"tableCell","content":[]},
				{"type":"tableCell","content":[]}
			]}
		]}
	]`

	n, err := Decode([]byte(input), 0)
	require.NoError(t, err)
	doc := n.(*Doc)
	require.Len(t, doc.Children, 2)

	img := doc.Children[0].(*Image)
	assert.Equal(t, "https://example.com/a.png", img.Src)
	assert.Equal(t, AlignRight, img.Align)
	assert.Equal(t, 120, img.Width)

	tbl := doc.Children[1].(*Table)
	require.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.Rows[0].Cells[0].Header)
	assert.Equal(t, 2, tbl.Rows[0].Cells[0].Colspan)
	assert.False(t, tbl.Rows[1].Cells[0].Header)
}

func TestDecode_UnknownTypeIsPreserved(t *testing.T) {
	input := `{"type":"doc","content":[{"type":"blockquote","content":[{"type":"text","text":"quoted"}]}]}`
	n, err := Decode([]byte(input), 0)
	require.NoError(t, err)

	u, ok := n.(*Doc).Children[0].(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "blockquote", u.Type)
	assert.Equal(t, "quoted", PlainText(u, DefaultMaxDepth))
}

func TestDecode_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "  ", "null"} {
		n, err := Decode([]byte(in), 0)
		require.NoError(t, err, "input %q", in)
		assert.Empty(t, n.(*Doc).Children)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []string{
		`{"type":`,
		`{"content":[]}`,
		`42`,
	}
	for _, in := range tests {
		_, err := Decode([]byte(in), 0)
		assert.True(t, errors.Is(err, ErrInvalid), "input %q: got %v", in, err)
	}
}

func TestDecode_DepthLimit(t *testing.T) {
	// 10 nested bullet lists inside a doc.
	var sb strings.Builder
	sb.WriteString(`{"type":"doc","content":[`)
	for range 10 {
		sb.WriteString(`{"type":"bulletList","content":[`)
	}
	sb.WriteString(`{"type":"paragraph"}`)
	for range 10 {
		sb.WriteString(`]}`)
	}
	sb.WriteString(`]}`)

	_, err := Decode([]byte(sb.String()), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooDeep)

	_, err = Decode([]byte(sb.String()), 32)
	assert.NoError(t, err)
}

func TestDecode_NonDocRootIsWrapped(t *testing.T) {
	n, err := Decode([]byte(`{"type":"paragraph","content":[{"type":"text","text":"x"}]}`), 0)
	require.NoError(t, err)
	doc := n.(*Doc)
	require.Len(t, doc.Children, 1)
	assert.IsType(t, &Paragraph{}, doc.Children[0])
}

func TestEncode_RoundTripsStructure(t *testing.T) {
	tree := &Doc{Children: []Node{
		&Heading{Level: 2, Children: []Node{&Text{Text: "Scope", Bold: true}}},
		&OrderedList{Items: []*ListItem{{Children: []Node{&Paragraph{Children: []Node{&Text{Text: "a"}}}}}}},
		&Image{Src: "data:image/png;base64,AAAA", Align: AlignCenter},
	}}

	data, err := Encode(tree)
	require.NoError(t, err)

	back, err := Decode(data, 0)
	require.NoError(t, err)
	doc := back.(*Doc)
	require.Len(t, doc.Children, 3)
	assert.Equal(t, 2, doc.Children[0].(*Heading).Level)
	assert.Equal(t, "a", PlainText(doc.Children[1], DefaultMaxDepth))
	assert.Equal(t, AlignCenter, doc.Children[2].(*Image).Align)
}

func TestImages_DepthFirst(t *testing.T) {
	tree := &Doc{Children: []Node{
		&Image{Src: "a"},
		&Table{Rows: []*TableRow{{Cells: []*TableCell{{Children: []Node{&Image{Src: "b"}}}}}}},
		&BulletList{Items: []*ListItem{{Children: []Node{&Image{Src: "c"}, &Image{}}}}},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, Images(tree, DefaultMaxDepth))
}
