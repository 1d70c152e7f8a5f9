package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderGrid(t *testing.T) {
	t.Parallel()

	t.Run("Cells fill in row-major order up to the current count", func(t *testing.T) {
		cells := RenderGrid(3, 10, 2, 5, "", "", "daily")

		assert.Len(t, cells, 10)
		for i, cell := range cells {
			assert.Equal(t, i, cell.Index)
			assert.Equal(t, i/5, cell.Row)
			assert.Equal(t, i%5, cell.Column)
			assert.Equal(t, i < 3, cell.Filled)
		}
	})

	t.Run("Target above capacity clips silently to rows*columns", func(t *testing.T) {
		cells := RenderGrid(0, 99, 2, 5, "", "", "daily")
		assert.Len(t, cells, 10)
	})

	t.Run("Target below capacity omits the trailing slots entirely", func(t *testing.T) {
		cells := RenderGrid(0, 7, 2, 5, "", "", "daily")

		assert.Len(t, cells, 7)
		for _, cell := range cells {
			assert.Less(t, cell.Index, 7)
		}
	})

	t.Run("Current above capacity never yields out-of-range cells", func(t *testing.T) {
		// Target lowered after punching: current may exceed the grid.
		cells := RenderGrid(12, 10, 2, 5, "", "", "daily")

		assert.Len(t, cells, 10)
		for _, cell := range cells {
			assert.True(t, cell.Filled)
		}
	})

	t.Run("Icons alternate by cell parity", func(t *testing.T) {
		cells := RenderGrid(4, 4, 1, 4, "🏃", "🔥", "daily")

		assert.Equal(t, "🏃", cells[0].Glyph.Value)
		assert.Equal(t, "🔥", cells[1].Glyph.Value)
		assert.Equal(t, "🏃", cells[2].Glyph.Value)
		assert.Equal(t, "🔥", cells[3].Glyph.Value)
		for _, cell := range cells {
			assert.Equal(t, GlyphEmoji, cell.Glyph.Kind)
		}
	})

	t.Run("Single icon alternates with the built-in fallback", func(t *testing.T) {
		cells := RenderGrid(0, 4, 1, 4, "🏃", "", "daily")

		assert.Equal(t, GlyphEmoji, cells[0].Glyph.Kind)
		assert.Equal(t, GlyphStar, cells[1].Glyph.Kind)
		assert.Equal(t, GlyphEmoji, cells[2].Glyph.Kind)
		assert.Equal(t, GlyphStar, cells[3].Glyph.Kind)
	})

	t.Run("Fallback glyph follows the time window", func(t *testing.T) {
		daily := RenderGrid(0, 2, 1, 2, "", "", "daily")
		weekly := RenderGrid(0, 2, 1, 2, "", "", "weekly")

		assert.Equal(t, GlyphStar, daily[0].Glyph.Kind)
		assert.Equal(t, GlyphFlower, weekly[0].Glyph.Kind)
	})

	t.Run("URL and path icons classify as images", func(t *testing.T) {
		cells := RenderGrid(0, 2, 1, 2, "https://cdn.example.com/icon.png", "stickers/cat.png", "daily")

		assert.Equal(t, GlyphImage, cells[0].Glyph.Kind)
		assert.Equal(t, GlyphImage, cells[1].Glyph.Kind)
	})

	t.Run("Degenerate geometry yields no cells", func(t *testing.T) {
		assert.Nil(t, RenderGrid(0, 10, 0, 5, "", "", "daily"))
		assert.Nil(t, RenderGrid(0, 10, 2, 0, "", "", "daily"))
		assert.Nil(t, RenderGrid(0, 0, 2, 5, "", "", "daily"))
	})
}
