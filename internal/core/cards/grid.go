package cards

import "strings"

// GlyphKind tells the renderer how to draw a punch cell's marker.
type GlyphKind string

const (
	// GlyphImage references a remote or bundled image asset.
	GlyphImage GlyphKind = "image"
	// GlyphEmoji is an inline text glyph supplied by the user.
	GlyphEmoji GlyphKind = "emoji"
	// GlyphStar is the built-in fallback marker for daily-window habits.
	GlyphStar GlyphKind = "star"
	// GlyphFlower is the built-in fallback marker for all other habits.
	GlyphFlower GlyphKind = "flower"
	// GlyphCircle is the last-resort plain outline, used by the renderer when
	// an image glyph fails to resolve.
	GlyphCircle GlyphKind = "circle"
)

type Glyph struct {
	Kind  GlyphKind
	Value string
}

// Cell is one visible punch slot of the grid, in row-major order.
type Cell struct {
	Row    int
	Column int
	Index  int
	Filled bool
	Glyph  Glyph
}

// classifyIcon decides whether an icon slot holds an image asset reference or
// an inline glyph. Asset ids carry a path or URL shape; anything else is
// treated as text.
func classifyIcon(ref string) Glyph {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.Contains(ref, "/") {
		return Glyph{Kind: GlyphImage, Value: ref}
	}
	return Glyph{Kind: GlyphEmoji, Value: ref}
}

func fallbackGlyph(timeWindow string) Glyph {
	if timeWindow == "daily" {
		return Glyph{Kind: GlyphStar}
	}
	return Glyph{Kind: GlyphFlower}
}

// RenderGrid computes the visible punch cells for a card.
//
// The grid holds rows*columns slots; a target above that capacity clips
// silently to capacity. This is the documented product policy for oversized
// targets, not an error. Slots at or beyond the effective target are omitted
// from the output entirely rather than emitted as hidden placeholders, so a
// current count that momentarily exceeds the capacity (target lowered after
// punching) never produces out-of-range cells.
//
// Icon slots alternate by cell parity: even cells take iconA, odd cells
// iconB. An empty slot falls back to the window-themed built-in glyph.
func RenderGrid(current, target, rows, columns int, iconA, iconB, timeWindow string) []Cell {
	if rows < 1 || columns < 1 || target < 1 {
		return nil
	}

	capacity := rows * columns
	effectiveTarget := target
	if effectiveTarget > capacity {
		effectiveTarget = capacity
	}

	cells := make([]Cell, 0, effectiveTarget)

	for i := 0; i < effectiveTarget; i++ {
		icon := iconA
		if i%2 == 1 {
			icon = iconB
		}

		glyph := fallbackGlyph(timeWindow)
		if icon != "" {
			glyph = classifyIcon(icon)
		}

		cells = append(cells, Cell{
			Row:    i / columns,
			Column: i % columns,
			Index:  i,
			Filled: i < current,
			Glyph:  glyph,
		})
	}

	return cells
}
