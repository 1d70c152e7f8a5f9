package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hsu-emily/punchie-pass/internal/adapters/qr"
	"github.com/hsu-emily/punchie-pass/internal/core/cards"
	"github.com/hsu-emily/punchie-pass/internal/core/domain"
)

// BlobStore is the slice of object storage the share pipeline needs.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// CardRasterizer turns a composed card into PNG bytes.
type CardRasterizer interface {
	Rasterize(ctx context.Context, card cards.RenderedCard) ([]byte, error)
}

// QRFetcher wraps the external QR image service.
type QRFetcher interface {
	Fetch(ctx context.Context, target string, sizePx int) (*qr.Code, error)
}

// ShareResult is what a share request hands back to the client: the public
// image URL plus a QR code pointing at it. The QR is best-effort; a nil QR
// with a valid ImageURL is still a successful share.
type ShareResult struct {
	ImageURL string   `json:"image_url"`
	QR       *qr.Code `json:"qr,omitempty"`
}

// CardService owns the card read path: composing the positioned element tree
// for the client, rasterizing it to PNG, and publishing shared images to
// object storage.
type CardService struct {
	habits  domain.HabitRepository
	raster  CardRasterizer
	blobs   BlobStore
	qr      QRFetcher
	artwork cards.ArtworkResolver
}

func NewCardService(
	habits domain.HabitRepository,
	raster CardRasterizer,
	blobs BlobStore,
	qrClient QRFetcher,
	artwork cards.ArtworkResolver,
) *CardService {
	return &CardService{
		habits:  habits,
		raster:  raster,
		blobs:   blobs,
		qr:      qrClient,
		artwork: artwork,
	}
}

// Templates lists every card template in registry order.
func (s *CardService) Templates() []cards.Template {
	return cards.Templates()
}

// Compose projects a habit onto its card template at the requested size.
func (s *CardService) Compose(ctx context.Context, habitID, userID string, size cards.SizeVariant) (*cards.RenderedCard, error) {
	habit, err := s.getOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	card := cards.Compose(habit, size, s.artwork)
	return &card, nil
}

// RenderPNG composes and rasterizes a habit card in one step.
func (s *CardService) RenderPNG(ctx context.Context, habitID, userID string, size cards.SizeVariant) ([]byte, error) {
	card, err := s.Compose(ctx, habitID, userID, size)
	if err != nil {
		return nil, err
	}

	return s.raster.Rasterize(ctx, *card)
}

// Share renders the habit's card at zoom size, uploads it, stamps the public
// URL onto the habit, and fetches a QR code for the link. A QR failure is
// logged and dropped; the upload already succeeded and the link is usable.
func (s *CardService) Share(ctx context.Context, habitID, userID string) (*ShareResult, error) {
	habit, err := s.getOwned(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.publish(ctx, habit)
	if err != nil {
		return nil, err
	}

	result := &ShareResult{ImageURL: url}

	if s.qr != nil {
		code, err := s.qr.Fetch(ctx, url, 256)
		if err != nil {
			log.Printf("card: qr fetch for habit %s failed: %v", habit.ID, err)
		} else {
			result.QR = code
		}
	}

	return result, nil
}

// PublishCard renders and uploads the card for a habit that just completed.
// Called by the background worker, so there is no owning user in scope and no
// ownership check: the habit id came from a punch the owner performed.
func (s *CardService) PublishCard(ctx context.Context, habitID string) (string, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return "", err
	}

	if !habit.IsComplete() {
		return "", fmt.Errorf("habit %s is not complete", habitID)
	}

	return s.publish(ctx, habit)
}

func (s *CardService) publish(ctx context.Context, habit *domain.Habit) (string, error) {
	card := cards.Compose(habit, cards.SizeZoom, s.artwork)

	data, err := s.raster.Rasterize(ctx, card)
	if err != nil {
		return "", fmt.Errorf("rasterize card for habit %s: %w", habit.ID, err)
	}

	path := fmt.Sprintf("cards/%s/%s.png", habit.UserID, habit.ID)
	if err := s.blobs.Upload(ctx, path, data, "image/png"); err != nil {
		return "", fmt.Errorf("upload card for habit %s: %w", habit.ID, err)
	}

	url := s.blobs.PublicURL(path)

	habit.ShareImageURL = url
	habit.UpdatedAt = time.Now().UTC()
	if err := s.habits.Update(ctx, habit); err != nil {
		// The image is live either way; losing the stamp only costs a re-render.
		log.Printf("card: failed to stamp share url on habit %s: %v", habit.ID, err)
	}

	return url, nil
}

func (s *CardService) getOwned(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}
