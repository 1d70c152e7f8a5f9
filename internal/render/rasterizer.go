// Package render turns a composed card into a static PNG. It is the
// server-side share pipeline: icon and artwork assets are fetched up front
// with independent timeouts, fonts fall back to bundled faces, and the card
// is drawn at a fixed supersampling scale with transparency preserved.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hsu-emily/punchie-pass/internal/core/cards"
)

var (
	ErrEmptyRender = errors.New("rasterization produced an empty bitmap")
)

const (
	// SuperSampleScale is the fixed output scale factor. Cards render at
	// twice their layout size for crisp sharing.
	SuperSampleScale = 2.0

	// fallbackWidth/fallbackHeight bound the output when a card arrives with
	// no usable dimensions at all.
	fallbackWidth  = 300.0
	fallbackHeight = 420.0

	defaultAssetTimeout = 5 * time.Second
)

// AssetFetcher loads an image asset by reference. Implementations decide what
// a reference means (URL, bundle path, object key).
type AssetFetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// HTTPAssetFetcher fetches image assets over HTTP.
type HTTPAssetFetcher struct {
	client *http.Client
}

func NewHTTPAssetFetcher(client *http.Client) *HTTPAssetFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPAssetFetcher{client: client}
}

func (f *HTTPAssetFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("asset request for %s: %w", ref, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset fetch for %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch for %s: status %d", ref, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("asset decode for %s: %w", ref, err)
	}
	return img, nil
}

// Rasterizer draws RenderedCard trees into PNG bytes.
type Rasterizer struct {
	fetcher      AssetFetcher
	assetTimeout time.Duration

	regular *truetype.Font
	bold    *truetype.Font
}

func NewRasterizer(fetcher AssetFetcher) (*Rasterizer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bundled regular font: %w", err)
	}
	boldFont, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bundled bold font: %w", err)
	}

	return &Rasterizer{
		fetcher:      fetcher,
		assetTimeout: defaultAssetTimeout,
		regular:      regular,
		bold:         boldFont,
	}, nil
}

// SetAssetTimeout overrides the per-asset fetch timeout.
func (r *Rasterizer) SetAssetTimeout(d time.Duration) {
	if d > 0 {
		r.assetTimeout = d
	}
}

// Rasterize renders the card to a lossless PNG at SuperSampleScale. Asset
// fetch failures never abort the render: a failed image counts as settled and
// its cell degrades to the plain circle outline.
func (r *Rasterizer) Rasterize(ctx context.Context, card cards.RenderedCard) ([]byte, error) {
	w, h := resolveBounds(card)

	pxW := int(math.Round(w * SuperSampleScale))
	pxH := int(math.Round(h * SuperSampleScale))
	if pxW <= 0 || pxH <= 0 {
		return nil, ErrEmptyRender
	}

	assets := r.settleAssets(ctx, card)

	dc := gg.NewContext(pxW, pxH)
	dc.Scale(SuperSampleScale, SuperSampleScale)
	// No background fill: transparency outside the artwork must survive into
	// the encoded PNG.

	r.drawBackground(dc, card, w, h, assets)
	r.drawText(dc, card.Title, w, h, card.Title.FontWeight >= 600)
	r.drawText(dc, card.Description, w, h, false)
	r.drawGrid(dc, card.Grid, w, h, assets)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode card png: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyRender
	}

	return buf.Bytes(), nil
}

// resolveBounds picks output dimensions: the card's layout box, then the
// extent of its grid content when the layout box is zero (the off-screen
// case), then a hardcoded fallback.
func resolveBounds(card cards.RenderedCard) (float64, float64) {
	if card.Width > 0 && card.Height > 0 {
		return card.Width, card.Height
	}

	if w, h := contentBounds(card.Grid); w > 0 && h > 0 {
		return w, h
	}

	return fallbackWidth, fallbackHeight
}

// contentBounds measures the pixel extent of the punch grid alone, the
// closest analogue to a scrollable content box for a card with no layout box.
func contentBounds(grid cards.GridElement) (float64, float64) {
	p := grid.Placement
	if len(grid.Cells) == 0 || p.Rows < 1 || p.Columns < 1 {
		return 0, 0
	}

	w := float64(p.Columns)*p.CellDiameter + float64(p.Columns-1)*p.GapX
	h := float64(p.Rows)*p.CellDiameter + float64(p.Rows-1)*p.GapY
	return w, h
}

// settleAssets fetches every image the card references, each with its own
// timeout. Failures are logged and recorded as nil so the draw phase treats
// them as settled-but-missing.
func (r *Rasterizer) settleAssets(ctx context.Context, card cards.RenderedCard) map[string]image.Image {
	refs := make([]string, 0, len(card.Grid.Cells)+1)
	if card.Background.Kind == cards.BackgroundArtwork && card.Background.Asset != "" {
		refs = append(refs, card.Background.Asset)
	}
	for _, cell := range card.Grid.Cells {
		if cell.Glyph.Kind == cards.GlyphImage && cell.Glyph.Value != "" {
			refs = append(refs, cell.Glyph.Value)
		}
	}

	settled := make(map[string]image.Image, len(refs))
	for _, ref := range refs {
		if _, done := settled[ref]; done {
			continue
		}
		if r.fetcher == nil {
			settled[ref] = nil
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, r.assetTimeout)
		img, err := r.fetcher.Fetch(fetchCtx, ref)
		cancel()
		if err != nil {
			log.Printf("render: asset %s failed to settle: %v", ref, err)
			img = nil
		}
		settled[ref] = img
	}

	return settled
}

func (r *Rasterizer) drawBackground(dc *gg.Context, card cards.RenderedCard, w, h float64, assets map[string]image.Image) {
	bg := card.Background

	if bg.Kind == cards.BackgroundArtwork {
		if img := assets[bg.Asset]; img != nil {
			drawImageFitted(dc, img, 0, 0, w, h)
			return
		}
		// Artwork failed to settle; fall through to the themed placeholder.
	}

	grad := gg.NewLinearGradient(0, 0, w, h)
	grad.AddColorStop(0, parseHexColor(bg.PrimaryColor, "#F2B5A0"))
	grad.AddColorStop(1, parseHexColor(bg.SecondaryColor, "#F9E2C8"))
	dc.SetFillStyle(grad)
	dc.DrawRoundedRectangle(0, 0, w, h, w*0.06)
	dc.Fill()

	if bg.Emoji != "" {
		dc.SetFontFace(r.face(r.bold, h*0.12))
		dc.SetRGBA(1, 1, 1, 0.92)
		dc.DrawStringAnchored(bg.Emoji, w/2, h*0.42, 0.5, 0.5)
	}
}

func (r *Rasterizer) drawText(dc *gg.Context, el cards.TextElement, w, h float64, bold bool) {
	if strings.TrimSpace(el.Text) == "" {
		return
	}

	f := r.regular
	if bold {
		f = r.bold
	}
	dc.SetFontFace(r.face(f, el.FontSize))
	dc.SetColor(parseHexColor(el.Color, "#333333"))

	x := w * el.X / 100
	y := h * el.Y / 100
	boxW := w * el.Width / 100
	if boxW <= 0 {
		boxW = w * 0.8
	}

	align := gg.AlignLeft
	anchorX := 0.0
	if el.Align == "center" {
		align = gg.AlignCenter
		anchorX = 0.5
	}

	dc.DrawStringWrapped(el.Text, x, y, anchorX, 0, boxW, 1.3, align)
}

func (r *Rasterizer) drawGrid(dc *gg.Context, grid cards.GridElement, w, h float64, assets map[string]image.Image) {
	p := grid.Placement
	if len(grid.Cells) == 0 {
		return
	}

	gridW, gridH := contentBounds(grid)
	originX := w*p.AnchorX/100 - gridW/2 + w*p.OffsetX/100
	originY := h*p.AnchorY/100 - gridH/2 + h*p.OffsetY/100

	for _, cell := range grid.Cells {
		cx := originX + float64(cell.Column)*(p.CellDiameter+p.GapX) + p.CellDiameter/2
		cy := originY + float64(cell.Row)*(p.CellDiameter+p.GapY) + p.CellDiameter/2

		// Every visible cell gets its slot circle.
		dc.SetRGBA(1, 1, 1, 0.55)
		dc.DrawCircle(cx, cy, p.CellDiameter/2)
		dc.Fill()
		dc.SetRGBA(0.25, 0.2, 0.18, 0.8)
		dc.SetLineWidth(1.5)
		dc.DrawCircle(cx, cy, p.CellDiameter/2)
		dc.Stroke()

		if !cell.Filled {
			continue
		}

		r.drawGlyph(dc, cell.Glyph, cx, cy, p.IconDiameter, assets)
	}
}

func (r *Rasterizer) drawGlyph(dc *gg.Context, glyph cards.Glyph, cx, cy, diameter float64, assets map[string]image.Image) {
	switch glyph.Kind {
	case cards.GlyphImage:
		if img := assets[glyph.Value]; img != nil {
			drawImageFitted(dc, img, cx-diameter/2, cy-diameter/2, diameter, diameter)
			return
		}
		drawCircleOutline(dc, cx, cy, diameter/2)
	case cards.GlyphEmoji:
		dc.SetFontFace(r.face(r.bold, diameter*0.8))
		dc.SetRGBA(0.2, 0.16, 0.14, 1)
		dc.DrawStringAnchored(glyph.Value, cx, cy, 0.5, 0.5)
	case cards.GlyphStar:
		drawStar(dc, cx, cy, diameter/2)
	case cards.GlyphFlower:
		drawFlower(dc, cx, cy, diameter/2)
	default:
		drawCircleOutline(dc, cx, cy, diameter/2)
	}
}

func (r *Rasterizer) face(f *truetype.Font, size float64) font.Face {
	if size <= 0 {
		size = 12
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func drawImageFitted(dc *gg.Context, img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	dc.Push()
	dc.Translate(x, y)
	dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

func drawCircleOutline(dc *gg.Context, cx, cy, radius float64) {
	dc.SetRGBA(0.25, 0.2, 0.18, 0.9)
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()
}

func drawStar(dc *gg.Context, cx, cy, radius float64) {
	dc.SetRGBA255(240, 180, 41, 255)
	dc.NewSubPath()
	for i := 0; i < 10; i++ {
		r := radius
		if i%2 == 1 {
			r = radius * 0.45
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		dc.LineTo(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	dc.ClosePath()
	dc.Fill()
}

func drawFlower(dc *gg.Context, cx, cy, radius float64) {
	petal := radius * 0.45
	dc.SetRGBA255(233, 130, 160, 255)
	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3
		dc.DrawCircle(cx+radius*0.55*math.Cos(angle), cy+radius*0.55*math.Sin(angle), petal)
		dc.Fill()
	}
	dc.SetRGBA255(250, 214, 97, 255)
	dc.DrawCircle(cx, cy, petal*0.9)
	dc.Fill()
}

func parseHexColor(s, fallback string) colorRGBA {
	c, ok := hexToRGBA(s)
	if !ok {
		c, _ = hexToRGBA(fallback)
	}
	return c
}

type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (uint32, uint32, uint32, uint32) {
	r := uint32(c.R)
	g := uint32(c.G)
	b := uint32(c.B)
	a := uint32(c.A)
	return r * 0x101, g * 0x101, b * 0x101, a * 0x101
}

func hexToRGBA(s string) (colorRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b uint8
	switch len(s) {
	case 3:
		n, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		if err != nil || n != 3 {
			return colorRGBA{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		n, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
		if err != nil || n != 3 {
			return colorRGBA{}, false
		}
	default:
		return colorRGBA{}, false
	}

	return colorRGBA{R: r, G: g, B: b, A: 255}, true
}
