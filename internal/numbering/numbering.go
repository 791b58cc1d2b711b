// Package numbering allocates list identities for one compile job.
//
// A Context is created per document and threaded by pointer through the
// content walk. It is not safe for concurrent use and must never be shared
// between documents.
package numbering

// BulletID is the identifier shared by every bullet list in a document.
const BulletID = 1

// MaxLevel is the deepest level a definition describes. Deeper nesting is
// clamped to it.
const MaxLevel = 2

// Kind distinguishes ordered from bullet definitions.
type Kind string

const (
	Ordered Kind = "ordered"
	Bullet  Kind = "bullet"
)

// Level describes one indentation level of a list definition.
type Level struct {
	Index   int
	Start   int    // first number, 1 unless a list asked otherwise
	Format  string // decimal, lowerLetter, lowerRoman, bullet
	Text    string // level text, e.g. "%1." or a bullet glyph
	Font    string // glyph font for bullets, empty for numbers
	Indent  int    // left indent in DXA
	Hanging int    // hanging indent in DXA
}

// Definition is one list style registered during a compile.
type Definition struct {
	ID     int
	Kind   Kind
	Levels []Level
}

// Context is the per-document numbering registry. Its counter only grows
// and definitions are only appended.
type Context struct {
	next int
	defs []Definition
}

// New returns a Context with the shared bullet definition pre-registered.
func New() *Context {
	c := &Context{next: BulletID}
	c.defs = append(c.defs, Definition{ID: BulletID, Kind: Bullet, Levels: bulletLevels()})
	return c
}

// AllocateOrdered registers a fresh ordered definition and returns its id.
// Call it only for a top-level ordered list; nested lists reuse the id of
// their ordered ancestor.
func (c *Context) AllocateOrdered() int {
	return c.AllocateOrderedFrom(1)
}

// AllocateOrderedFrom is AllocateOrdered for a list whose first item is
// numbered start. Values below 1 mean 1.
func (c *Context) AllocateOrderedFrom(start int) int {
	levels := orderedLevels()
	levels[0].Start = max(start, 1)
	c.next++
	c.defs = append(c.defs, Definition{ID: c.next, Kind: Ordered, Levels: levels})
	return c.next
}

// SharedBullet returns the bullet definition id. It never allocates.
func (c *Context) SharedBullet() int {
	return BulletID
}

// Definitions returns the registered definitions in allocation order.
func (c *Context) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// ClampLevel maps a nesting depth onto a defined level.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

const (
	indentStep = 720
	hanging    = 360
)

func orderedLevels() []Level {
	return []Level{
		{Index: 0, Start: 1, Format: "decimal", Text: "%1.", Indent: indentStep, Hanging: hanging},
		{Index: 1, Start: 1, Format: "lowerLetter", Text: "%2.", Indent: 2 * indentStep, Hanging: hanging},
		{Index: 2, Start: 1, Format: "lowerRoman", Text: "%3.", Indent: 3 * indentStep, Hanging: hanging},
	}
}

// Symbol and Wingdings map their glyphs to the private use area, so the
// bullet text is the code point those fonts define, as Word writes it.
func bulletLevels() []Level {
	return []Level{
		{Index: 0, Start: 1, Format: "bullet", Text: "\uf0b7", Font: "Symbol", Indent: indentStep, Hanging: hanging},
		{Index: 1, Start: 1, Format: "bullet", Text: "o", Font: "Courier New", Indent: 2 * indentStep, Hanging: hanging},
		{Index: 2, Start: 1, Format: "bullet", Text: "\uf0a7", Font: "Wingdings", Indent: 3 * indentStep, Hanging: hanging},
	}
}
