package workers

import (
	"context"
	"log"
)

// CardPublisher renders and uploads the share image for a completed habit.
type CardPublisher interface {
	PublishCard(ctx context.Context, habitID string) (string, error)
}

type ShareJob struct {
	HabitID string
}

// ShareWorker publishes card images in the background so the punch that
// completes a card returns immediately. Jobs are fire-and-forget: a full
// queue drops the job, and the owner can still share manually.
type ShareWorker struct {
	publisher CardPublisher
	jobs      chan ShareJob
}

func NewShareWorker(publisher CardPublisher) *ShareWorker {
	return &ShareWorker{
		publisher: publisher,
		jobs:      make(chan ShareJob, 100),
	}
}

func (w *ShareWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Share Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Share Worker shutting down...")
				return
			}
		}
	}()
}

func (w *ShareWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- ShareJob{HabitID: habitID}:
	default:
		log.Printf("Share Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *ShareWorker) processJob(ctx context.Context, job ShareJob) {
	url, err := w.publisher.PublishCard(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error publishing card for habit %s: %v", job.HabitID, err)
		return
	}
	log.Printf("Card published for habit %s: %s", job.HabitID, url)
}
