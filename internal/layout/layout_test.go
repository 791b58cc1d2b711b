package layout

import (
	"testing"

	"github.com/dgallion1/docforge/internal/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textCell(s string) Cell {
	return Cell{Blocks: []block.Block{block.TextParagraph(s, "")}}
}

func TestBuild_PercentDefault(t *testing.T) {
	tbl, err := Build([]Row{{Cells: []Cell{textCell("a"), textCell("b")}}}, Percent(100))
	require.NoError(t, err)

	assert.Equal(t, block.Width{Value: 5000, Unit: block.WidthPct}, tbl.Width)
	assert.False(t, tbl.Fixed)
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, PageContentWidth, tbl.Columns[0]+tbl.Columns[1])
	assert.Equal(t, block.Width{Value: 2500, Unit: block.WidthPct}, tbl.Rows[0].Cells[0].Width)
}

func TestBuild_FixedSplitsEvenlyWithRemainderOnLast(t *testing.T) {
	rows := []Row{{Cells: []Cell{textCell("a"), textCell("b"), textCell("c")}}}
	tbl, err := Build(rows, Fixed(1000))
	require.NoError(t, err)

	assert.True(t, tbl.Fixed)
	assert.Equal(t, []int{333, 333, 334}, tbl.Columns)
	assert.Equal(t, block.Width{Value: 1000, Unit: block.WidthDXA}, tbl.Width)
	for i, c := range tbl.Rows[0].Cells {
		assert.Equal(t, block.WidthDXA, c.Width.Unit)
		assert.Equal(t, tbl.Columns[i], c.Width.Value)
	}
}

func TestBuild_ColumnsRegime(t *testing.T) {
	rows := []Row{
		{Cells: []Cell{{Span: 2, Header: true, Blocks: []block.Block{block.TextParagraph("Files", "")}}}},
		{Cells: []Cell{textCell("1"), textCell("long free text")}},
	}
	tbl, err := Build(rows, Columns(800, 8226))
	require.NoError(t, err)

	assert.Equal(t, []int{800, 8226}, tbl.Columns)
	assert.Equal(t, 9026, tbl.Width.Value)
	header := tbl.Rows[0].Cells[0]
	assert.Equal(t, 2, header.GridSpan)
	assert.Equal(t, 9026, header.Width.Value, "spanning cell width is the sum of its columns")
	assert.Equal(t, 800, tbl.Rows[1].Cells[0].Width.Value)
}

func TestBuild_ColumnsMismatch(t *testing.T) {
	_, err := Build([]Row{{Cells: []Cell{textCell("a"), textCell("b")}}}, Columns(100))
	assert.ErrorIs(t, err, ErrColumnMismatch)

	_, err = Build([]Row{{Cells: []Cell{textCell("a")}}}, Columns(0))
	assert.ErrorIs(t, err, ErrBadWidth)
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil, Percent(100))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestBuild_HeaderCellsShadedBoldCentered(t *testing.T) {
	src := block.TextParagraph("Name", block.AlignLeft)
	rows := []Row{{Cells: []Cell{{Header: true, Blocks: []block.Block{src}}}}}
	tbl, err := Build(rows, Percent(100))
	require.NoError(t, err)

	c := tbl.Rows[0].Cells[0]
	assert.Equal(t, DefaultHeaderFill, c.Shading)
	assert.Equal(t, block.VAlignCenter, c.VAlign)
	assert.True(t, tbl.Rows[0].Header)

	p := c.Blocks[0].(*block.Paragraph)
	assert.True(t, p.Runs[0].Bold)
	assert.Equal(t, block.AlignCenter, p.Align)

	// The input paragraph is left untouched.
	assert.False(t, src.Runs[0].Bold)
	assert.Equal(t, block.AlignLeft, src.Align)
}

func TestBuild_BodyCellsDefaults(t *testing.T) {
	tbl, err := Build([]Row{{Cells: []Cell{textCell("x"), {Label: true}}}}, Percent(100))
	require.NoError(t, err)

	body := tbl.Rows[0].Cells[0]
	assert.Equal(t, block.VAlignTop, body.VAlign)
	assert.True(t, body.Borders)
	assert.Equal(t, DefaultCellMargin, body.Margin)
	assert.Empty(t, body.Shading)

	label := tbl.Rows[0].Cells[1]
	assert.Equal(t, block.VAlignCenter, label.VAlign)
	require.Len(t, label.Blocks, 1, "empty cells get a blank paragraph")
	assert.True(t, label.Blocks[0].(*block.Paragraph).Blank())
}

func TestBuild_Borderless(t *testing.T) {
	tbl, err := Build([]Row{{Cells: []Cell{textCell("k"), textCell("v")}}}, Fixed(9026).WithoutBorders())
	require.NoError(t, err)
	assert.False(t, tbl.Borders)
	for _, c := range tbl.Rows[0].Cells {
		assert.False(t, c.Borders)
	}
}

func TestBuild_ShortRowsArePadded(t *testing.T) {
	rows := []Row{
		{Cells: []Cell{textCell("a"), textCell("b"), textCell("c")}},
		{Cells: []Cell{textCell("only")}},
	}
	tbl, err := Build(rows, Fixed(900))
	require.NoError(t, err)
	assert.Len(t, tbl.Rows[1].Cells, 3)
}

func TestBuild_MergeContinueIsBlank(t *testing.T) {
	rows := []Row{
		{Cells: []Cell{{Label: true, Merge: block.MergeRestart, Blocks: []block.Block{block.TextParagraph("Group", "")}}, textCell("1")}},
		{Cells: []Cell{{Label: true, Merge: block.MergeContinue, Blocks: []block.Block{block.TextParagraph("ignored", "")}}, textCell("2")}},
	}
	tbl, err := Build(rows, Fixed(2000))
	require.NoError(t, err)

	assert.Equal(t, block.MergeRestart, tbl.Rows[0].Cells[0].Merge)
	cont := tbl.Rows[1].Cells[0]
	assert.Equal(t, block.MergeContinue, cont.Merge)
	assert.True(t, cont.Blocks[0].(*block.Paragraph).Blank())
}
