package cards

import (
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

// BackgroundKind distinguishes real card artwork from the themed placeholder.
type BackgroundKind string

const (
	BackgroundArtwork     BackgroundKind = "artwork"
	BackgroundPlaceholder BackgroundKind = "placeholder"
)

// Background is the bottom layer of a rendered card. When no artwork asset
// resolves, the placeholder carries the habit's theme so the renderer can draw
// a gradient with the emoji and title instead of a blank card.
type Background struct {
	Kind           BackgroundKind
	Asset          string
	Emoji          string
	PrimaryColor   string
	SecondaryColor string
}

// TextElement is a positioned run of text.
type TextElement struct {
	Text       string
	X          float64
	Y          float64
	Align      string
	Color      string
	FontSize   float64
	FontFamily string
	FontWeight int
	Width      float64
}

// GridElement is the positioned punch grid with its computed cells.
type GridElement struct {
	Placement GridPlacement
	Cells     []Cell
}

// RenderedCard is the full positioned element tree for one habit card at one
// display size. It is pure data; the rasterizer consumes it.
type RenderedCard struct {
	TemplateID  TemplateID
	Size        SizeVariant
	Width       float64
	Height      float64
	Background  Background
	Title       TextElement
	Description TextElement
	Grid        GridElement
}

// ArtworkResolver answers whether an artwork asset is actually available.
// Resolve looks up a specific asset reference; AnyAsset offers a substitute
// when the requested one is missing.
type ArtworkResolver interface {
	Resolve(asset string) (string, bool)
	AnyAsset() (string, bool)
}

// Compose projects a habit onto its card template at the given display size.
// It is a pure function of its inputs: layout comes from the template
// registry, cells from the grid renderer, and the background from the artwork
// fallback chain (template artwork, then any available artwork, then the
// themed placeholder).
func Compose(h *domain.Habit, size SizeVariant, art ArtworkResolver) RenderedCard {
	tpl := Resolve(h.CardTemplateID)
	desc := Layout(h.CardTemplateID, size)
	w, height := CanvasSize(size)

	var iconA, iconB string
	if len(h.Icons) > 0 {
		iconA = h.Icons[0]
	}
	if len(h.Icons) > 1 {
		iconB = h.Icons[1]
	}

	cells := RenderGrid(h.CurrentPunches, h.TargetPunches, desc.Grid.Rows, desc.Grid.Columns, iconA, iconB, h.TimeWindow)

	return RenderedCard{
		TemplateID: tpl.ID,
		Size:       size,
		Width:      w,
		Height:     height,
		Background: resolveBackground(tpl, h, art),
		Title: TextElement{
			Text:       h.Title,
			X:          desc.Title.X,
			Y:          desc.Title.Y,
			Align:      desc.Title.Align,
			Color:      desc.Title.Color,
			FontSize:   desc.Title.FontSize,
			FontFamily: desc.Title.FontFamily,
			FontWeight: desc.Title.FontWeight,
			Width:      desc.Title.Width,
		},
		Description: TextElement{
			Text:       h.Description,
			X:          desc.Description.X,
			Y:          desc.Description.Y,
			Align:      desc.Description.Align,
			Color:      desc.Description.Color,
			FontSize:   desc.Description.FontSize,
			FontFamily: desc.Description.FontFamily,
			Width:      desc.Description.Width,
		},
		Grid: GridElement{Placement: desc.Grid, Cells: cells},
	}
}

func resolveBackground(tpl Template, h *domain.Habit, art ArtworkResolver) Background {
	if art != nil {
		if asset, ok := art.Resolve(tpl.Artwork); ok {
			return Background{Kind: BackgroundArtwork, Asset: asset}
		}
		if asset, ok := art.AnyAsset(); ok {
			return Background{Kind: BackgroundArtwork, Asset: asset}
		}
	}

	primary := h.Theme.PrimaryColor
	if primary == "" {
		primary = "#F2B5A0"
	}
	secondary := h.Theme.SecondaryColor
	if secondary == "" {
		secondary = "#F9E2C8"
	}

	return Background{
		Kind:           BackgroundPlaceholder,
		Emoji:          h.Theme.Emoji,
		PrimaryColor:   primary,
		SecondaryColor: secondary,
	}
}
