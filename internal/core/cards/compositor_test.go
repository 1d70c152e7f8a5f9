package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

type stubArtwork struct {
	assets map[string]string
	any    string
}

func (s *stubArtwork) Resolve(asset string) (string, bool) {
	url, ok := s.assets[asset]
	return url, ok
}

func (s *stubArtwork) AnyAsset() (string, bool) {
	return s.any, s.any != ""
}

func compositorHabit(t *testing.T) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit("user-1", "Hydrate", "Eight glasses", "", domain.TimeWindowDaily, "sunrise", 8, []string{"💧"}, domain.Theme{
		Emoji:          "💧",
		PrimaryColor:   "#1E90FF",
		SecondaryColor: "#AFEEEE",
	})
	assert.NoError(t, err)
	habit.CurrentPunches = 3
	return habit
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("Projects habit onto its template layout", func(t *testing.T) {
		habit := compositorHabit(t)

		card := Compose(habit, SizeCarousel, nil)

		assert.Equal(t, TemplateSunrise, card.TemplateID)
		assert.Equal(t, SizeCarousel, card.Size)
		assert.Equal(t, 300.0, card.Width)
		assert.Equal(t, 420.0, card.Height)
		assert.Equal(t, "Hydrate", card.Title.Text)
		assert.Equal(t, "Eight glasses", card.Description.Text)
		assert.Len(t, card.Grid.Cells, 8)

		filled := 0
		for _, cell := range card.Grid.Cells {
			if cell.Filled {
				filled++
			}
		}
		assert.Equal(t, 3, filled)
	})

	t.Run("Zoom uses the zoom canvas and layout", func(t *testing.T) {
		habit := compositorHabit(t)

		card := Compose(habit, SizeZoom, nil)

		assert.Equal(t, 480.0, card.Width)
		assert.Equal(t, 672.0, card.Height)
		assert.Equal(t, Layout("sunrise", SizeZoom).Grid, card.Grid.Placement)
	})

	t.Run("Background resolves template artwork first", func(t *testing.T) {
		habit := compositorHabit(t)
		art := &stubArtwork{
			assets: map[string]string{"templates/sunrise.png": "https://cdn.example.com/sunrise.png"},
		}

		card := Compose(habit, SizeCarousel, art)

		assert.Equal(t, BackgroundArtwork, card.Background.Kind)
		assert.Equal(t, "https://cdn.example.com/sunrise.png", card.Background.Asset)
	})

	t.Run("Missing template artwork substitutes any available asset", func(t *testing.T) {
		habit := compositorHabit(t)
		art := &stubArtwork{any: "https://cdn.example.com/other.png"}

		card := Compose(habit, SizeCarousel, art)

		assert.Equal(t, BackgroundArtwork, card.Background.Kind)
		assert.Equal(t, "https://cdn.example.com/other.png", card.Background.Asset)
	})

	t.Run("No artwork at all yields the themed placeholder", func(t *testing.T) {
		habit := compositorHabit(t)

		card := Compose(habit, SizeCarousel, &stubArtwork{})

		assert.Equal(t, BackgroundPlaceholder, card.Background.Kind)
		assert.Equal(t, "💧", card.Background.Emoji)
		assert.Equal(t, "#1E90FF", card.Background.PrimaryColor)
		assert.Equal(t, "#AFEEEE", card.Background.SecondaryColor)
	})

	t.Run("Placeholder falls back to default palette when theme is empty", func(t *testing.T) {
		habit := compositorHabit(t)
		habit.Theme = domain.Theme{}

		card := Compose(habit, SizeCarousel, nil)

		assert.Equal(t, BackgroundPlaceholder, card.Background.Kind)
		assert.Equal(t, "#F2B5A0", card.Background.PrimaryColor)
		assert.Equal(t, "#F9E2C8", card.Background.SecondaryColor)
	})
}

func TestStaticArtwork(t *testing.T) {
	t.Parallel()

	art := NewStaticArtwork("https://cdn.example.com/art/", "templates/classic.png", "templates/sunrise.png")

	t.Run("Resolve known asset", func(t *testing.T) {
		url, ok := art.Resolve("templates/classic.png")
		assert.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/art/templates/classic.png", url)
	})

	t.Run("Unknown asset misses", func(t *testing.T) {
		_, ok := art.Resolve("templates/voyage.png")
		assert.False(t, ok)
	})

	t.Run("AnyAsset returns the first registered asset", func(t *testing.T) {
		url, ok := art.AnyAsset()
		assert.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/art/templates/classic.png", url)
	})

	t.Run("Empty registry has no assets", func(t *testing.T) {
		empty := NewStaticArtwork("https://cdn.example.com")
		_, ok := empty.AnyAsset()
		assert.False(t, ok)
	})
}
