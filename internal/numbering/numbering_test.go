package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersBullet(t *testing.T) {
	c := New()
	defs := c.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, BulletID, defs[0].ID)
	assert.Equal(t, Bullet, defs[0].Kind)
	assert.Len(t, defs[0].Levels, MaxLevel+1)
}

func TestAllocateOrdered_DistinctAndMonotonic(t *testing.T) {
	c := New()
	a := c.AllocateOrdered()
	b := c.AllocateOrdered()
	d := c.AllocateOrdered()

	assert.NotEqual(t, BulletID, a)
	assert.Less(t, a, b)
	assert.Less(t, b, d)

	defs := c.Definitions()
	require.Len(t, defs, 4)
	for i, want := range []int{BulletID, a, b, d} {
		assert.Equal(t, want, defs[i].ID)
	}
	assert.Equal(t, "decimal", defs[1].Levels[0].Format)
	assert.Equal(t, "lowerLetter", defs[1].Levels[1].Format)
	assert.Equal(t, "lowerRoman", defs[1].Levels[2].Format)
}

func TestSharedBullet_Idempotent(t *testing.T) {
	c := New()
	first := c.SharedBullet()
	c.AllocateOrdered()
	assert.Equal(t, first, c.SharedBullet())
	assert.Len(t, c.Definitions(), 2, "SharedBullet must not register definitions")
}

func TestContexts_AreIsolated(t *testing.T) {
	c1 := New()
	c2 := New()
	c1.AllocateOrdered()
	c1.AllocateOrdered()
	assert.Equal(t, 2, c2.AllocateOrdered(), "a fresh context starts its own sequence")
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	c := New()
	defs := c.Definitions()
	defs[0].ID = 99
	assert.Equal(t, BulletID, c.Definitions()[0].ID)
}

func TestClampLevel(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, 0}, {0, 0}, {1, 1}, {2, 2}, {3, 2}, {10, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLevel(tt.in), "ClampLevel(%d)", tt.in)
	}
}

func TestBulletLevels_GlyphsMatchFonts(t *testing.T) {
	want := map[string]string{
		"Symbol":      "\uf0b7",
		"Courier New": "o",
		"Wingdings":   "\uf0a7",
	}
	levels := New().Definitions()[0].Levels
	require.Len(t, levels, MaxLevel+1)
	for _, l := range levels {
		text, ok := want[l.Font]
		require.True(t, ok, "unexpected bullet font %q", l.Font)
		assert.Equal(t, text, l.Text, "level %d", l.Index)
	}
}

func TestAllocateOrderedFrom_SetsFirstLevelStart(t *testing.T) {
	c := New()
	id := c.AllocateOrderedFrom(4)
	low := c.AllocateOrderedFrom(0)

	defs := c.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, id, defs[1].ID)
	assert.Equal(t, 4, defs[1].Levels[0].Start)
	assert.Equal(t, 1, defs[1].Levels[1].Start, "deeper levels still start at 1")
	assert.Equal(t, low, defs[2].ID)
	assert.Equal(t, 1, defs[2].Levels[0].Start)
}
