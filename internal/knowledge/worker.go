package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/counselgate/counselgate/internal/storage"
)

// JobTypeArticleEmbedding marks jobs that (re)generate one article's
// embedding.
const JobTypeArticleEmbedding = "article_embedding"

type embeddingPayload struct {
	ArticleID string `json:"article_id"`
}

// EnqueueArticleEmbedding queues a background embedding job for an article.
// Called after article create and update so writes never block on the
// embedding backend.
func EnqueueArticleEmbedding(store storage.Store, articleID string) error {
	payload, err := json.Marshal(embeddingPayload{ArticleID: articleID})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	return store.EnqueueJob(storage.Job{
		ID:          uuid.NewString(),
		Type:        JobTypeArticleEmbedding,
		PayloadJSON: string(payload),
	})
}

// Worker processes article embedding jobs from the job queue.
type Worker struct {
	store    storage.Store
	embedder *Embedder
	poll     time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker. If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store storage.Store, embedder *Embedder, pollInterval time.Duration, logger *slog.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{store: store, embedder: embedder, poll: pollInterval, logger: logger}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single embedding job. Returns true if a
// job was processed, regardless of success.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobTypeArticleEmbedding})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Warn("embedding job failed", "job_id", job.ID, "error", err)
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

func (w *Worker) processJob(ctx context.Context, job *storage.Job) error {
	var payload embeddingPayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	article, err := w.store.GetArticle(payload.ArticleID)
	if err != nil {
		return fmt.Errorf("loading article %s: %w", payload.ArticleID, err)
	}

	vec, err := w.embedder.EmbedArticle(ctx, article)
	if err != nil {
		return err
	}
	if err := w.store.UpdateArticleEmbedding(article.ID, vec); err != nil {
		return fmt.Errorf("saving embedding for article %s: %w", article.ID, err)
	}

	w.logger.Info("embedded article", "id", article.ID, "title", article.Title, "dimensions", len(vec))
	return nil
}
