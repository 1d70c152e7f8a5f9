// Package cards holds the pure card-rendering core: the template layout
// registry, the punch grid computation, and the card compositor. Nothing in
// this package touches storage or the network.
package cards

// SizeVariant selects one of the two supported card presentations. The two
// sets of coordinates are tuned independently and are not proportional.
type SizeVariant string

const (
	SizeCarousel SizeVariant = "carousel"
	SizeZoom     SizeVariant = "zoom"
)

// TemplateID names a card template. The registry is a closed enumeration;
// unknown ids resolve to the default.
type TemplateID string

const (
	TemplateClassic TemplateID = "classic"
	TemplateSunrise TemplateID = "sunrise"
	TemplateGarden  TemplateID = "garden"
	TemplateVoyage  TemplateID = "voyage"

	DefaultTemplate = TemplateClassic
)

// TitlePlacement positions the habit title over the card artwork.
// X/Y and Width are percentages of the card's canvas.
type TitlePlacement struct {
	X          float64
	Y          float64
	Align      string
	Color      string
	FontSize   float64
	FontFamily string
	FontWeight int
	Width      float64
}

// DescPlacement positions the habit description. Same shape as the title
// placement minus the weight.
type DescPlacement struct {
	X          float64
	Y          float64
	Align      string
	Color      string
	FontSize   float64
	FontFamily string
	Width      float64
}

// GridPlacement anchors the punch grid and sets its geometry. Anchor and
// offsets are percentages; diameters and gaps are pixels at the variant's
// base canvas size.
type GridPlacement struct {
	AnchorX      float64
	AnchorY      float64
	OffsetX      float64
	OffsetY      float64
	CellDiameter float64
	IconDiameter float64
	GapX         float64
	GapY         float64
	Rows         int
	Columns      int
}

// LayoutDescriptor is the full placement set for one template at one size.
type LayoutDescriptor struct {
	Title       TitlePlacement
	Description DescPlacement
	Grid        GridPlacement
}

// Template couples artwork with its per-size layout descriptors.
type Template struct {
	ID      TemplateID
	Name    string
	Artwork string
	Layouts map[SizeVariant]LayoutDescriptor
}

// CanvasSize returns the base pixel dimensions for a size variant.
func CanvasSize(v SizeVariant) (float64, float64) {
	if v == SizeZoom {
		return 480, 672
	}
	return 300, 420
}

const (
	alignLeft   = "left"
	alignCenter = "center"
)

var registry = map[TemplateID]Template{
	TemplateClassic: {
		ID:      TemplateClassic,
		Name:    "Classic",
		Artwork: "templates/classic.png",
		Layouts: map[SizeVariant]LayoutDescriptor{
			SizeCarousel: {
				Title:       TitlePlacement{X: 50, Y: 10, Align: alignCenter, Color: "#3A2E2A", FontSize: 20, FontFamily: "serif", FontWeight: 700, Width: 80},
				Description: DescPlacement{X: 50, Y: 19, Align: alignCenter, Color: "#6B5D56", FontSize: 12, FontFamily: "serif", Width: 76},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 58, OffsetX: 0, OffsetY: 0, CellDiameter: 40, IconDiameter: 26, GapX: 10, GapY: 12, Rows: 2, Columns: 5},
			},
			SizeZoom: {
				Title:       TitlePlacement{X: 50, Y: 9, Align: alignCenter, Color: "#3A2E2A", FontSize: 32, FontFamily: "serif", FontWeight: 700, Width: 82},
				Description: DescPlacement{X: 50, Y: 17, Align: alignCenter, Color: "#6B5D56", FontSize: 18, FontFamily: "serif", Width: 78},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 56, OffsetX: 0, OffsetY: 2, CellDiameter: 64, IconDiameter: 42, GapX: 16, GapY: 18, Rows: 2, Columns: 5},
			},
		},
	},
	TemplateSunrise: {
		ID:      TemplateSunrise,
		Name:    "Sunrise",
		Artwork: "templates/sunrise.png",
		Layouts: map[SizeVariant]LayoutDescriptor{
			SizeCarousel: {
				Title:       TitlePlacement{X: 8, Y: 7, Align: alignLeft, Color: "#FFF8EC", FontSize: 22, FontFamily: "sans-serif", FontWeight: 800, Width: 70},
				Description: DescPlacement{X: 8, Y: 16, Align: alignLeft, Color: "#FFE9C2", FontSize: 11, FontFamily: "sans-serif", Width: 64},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 62, OffsetX: 0, OffsetY: 0, CellDiameter: 44, IconDiameter: 30, GapX: 12, GapY: 14, Rows: 2, Columns: 4},
			},
			SizeZoom: {
				Title:       TitlePlacement{X: 9, Y: 6, Align: alignLeft, Color: "#FFF8EC", FontSize: 34, FontFamily: "sans-serif", FontWeight: 800, Width: 72},
				Description: DescPlacement{X: 9, Y: 14, Align: alignLeft, Color: "#FFE9C2", FontSize: 17, FontFamily: "sans-serif", Width: 66},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 60, OffsetX: 0, OffsetY: 4, CellDiameter: 72, IconDiameter: 48, GapX: 18, GapY: 22, Rows: 2, Columns: 4},
			},
		},
	},
	TemplateGarden: {
		ID:      TemplateGarden,
		Name:    "Garden",
		Artwork: "templates/garden.png",
		Layouts: map[SizeVariant]LayoutDescriptor{
			SizeCarousel: {
				Title:       TitlePlacement{X: 50, Y: 8, Align: alignCenter, Color: "#294B33", FontSize: 18, FontFamily: "serif", FontWeight: 600, Width: 84},
				Description: DescPlacement{X: 50, Y: 15, Align: alignCenter, Color: "#4E7258", FontSize: 11, FontFamily: "serif", Width: 80},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 54, OffsetX: 0, OffsetY: 0, CellDiameter: 34, IconDiameter: 22, GapX: 8, GapY: 10, Rows: 3, Columns: 4},
			},
			SizeZoom: {
				Title:       TitlePlacement{X: 50, Y: 7, Align: alignCenter, Color: "#294B33", FontSize: 30, FontFamily: "serif", FontWeight: 600, Width: 84},
				Description: DescPlacement{X: 50, Y: 14, Align: alignCenter, Color: "#4E7258", FontSize: 16, FontFamily: "serif", Width: 80},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 53, OffsetX: 0, OffsetY: 0, CellDiameter: 56, IconDiameter: 36, GapX: 12, GapY: 16, Rows: 3, Columns: 4},
			},
		},
	},
	TemplateVoyage: {
		ID:      TemplateVoyage,
		Name:    "Voyage",
		Artwork: "templates/voyage.png",
		Layouts: map[SizeVariant]LayoutDescriptor{
			SizeCarousel: {
				Title:       TitlePlacement{X: 50, Y: 82, Align: alignCenter, Color: "#E8F1FF", FontSize: 19, FontFamily: "sans-serif", FontWeight: 700, Width: 86},
				Description: DescPlacement{X: 50, Y: 90, Align: alignCenter, Color: "#B9D2F2", FontSize: 10, FontFamily: "sans-serif", Width: 80},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 38, OffsetX: 0, OffsetY: -2, CellDiameter: 36, IconDiameter: 24, GapX: 6, GapY: 10, Rows: 2, Columns: 6},
			},
			SizeZoom: {
				Title:       TitlePlacement{X: 50, Y: 81, Align: alignCenter, Color: "#E8F1FF", FontSize: 30, FontFamily: "sans-serif", FontWeight: 700, Width: 86},
				Description: DescPlacement{X: 50, Y: 89, Align: alignCenter, Color: "#B9D2F2", FontSize: 15, FontFamily: "sans-serif", Width: 82},
				Grid:        GridPlacement{AnchorX: 50, AnchorY: 37, OffsetX: 0, OffsetY: -4, CellDiameter: 58, IconDiameter: 38, GapX: 10, GapY: 16, Rows: 2, Columns: 6},
			},
		},
	},
}

// Resolve maps any template id string to its Template. It is total: empty or
// unknown ids fall back to the default template, never an error.
func Resolve(id string) Template {
	if tpl, ok := registry[TemplateID(id)]; ok {
		return tpl
	}
	return registry[DefaultTemplate]
}

// Layout returns the layout descriptor for a template id at a size variant.
// Unknown size variants resolve to the carousel layout.
func Layout(id string, size SizeVariant) LayoutDescriptor {
	tpl := Resolve(id)
	if desc, ok := tpl.Layouts[size]; ok {
		return desc
	}
	return tpl.Layouts[SizeCarousel]
}

// Templates lists the registry in a stable order for client-side pickers.
func Templates() []Template {
	order := []TemplateID{TemplateClassic, TemplateSunrise, TemplateGarden, TemplateVoyage}
	out := make([]Template, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}
