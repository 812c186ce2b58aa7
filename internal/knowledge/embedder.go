package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/storage"
)

// articleContentLimit caps how much of an article body is embedded. Title
// and excerpt carry most of the signal; the body tail rarely changes the
// vector.
const articleContentLimit = 2000

// Embedder turns text into vectors using the configured embedding model.
type Embedder struct {
	client llm.Client
	model  string
}

func NewEmbedder(client llm.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// EmbedQuery embeds a user query. Errors propagate so the caller can fall
// back to keyword search; a zero vector substitute would corrupt ranking.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("embedding empty text")
	}
	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return vec, nil
}

// EmbedArticle embeds an article's title, excerpt, and leading content.
func (e *Embedder) EmbedArticle(ctx context.Context, a storage.KnowledgeArticle) ([]float32, error) {
	content := a.Content
	if len(content) > articleContentLimit {
		content = content[:articleContentLimit]
	}
	text := fmt.Sprintf("%s\n\n%s\n\n%s", a.Title, a.Excerpt, content)
	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("embedding article %s: %w", a.ID, err)
	}
	return vec, nil
}

// EmbedMissing generates and persists embeddings for every article that
// doesn't have one yet. Articles are embedded concurrently with a small
// limit to avoid hammering the backend. Returns the number embedded.
func (e *Embedder) EmbedMissing(ctx context.Context, store storage.Store, logger *slog.Logger) (int, error) {
	articles, err := store.ListArticles()
	if err != nil {
		return 0, fmt.Errorf("listing articles: %w", err)
	}

	var pending []storage.KnowledgeArticle
	for _, a := range articles {
		if a.Embedding == nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, a := range pending {
		g.Go(func() error {
			vec, err := e.EmbedArticle(ctx, a)
			if err != nil {
				return err
			}
			if err := store.UpdateArticleEmbedding(a.ID, vec); err != nil {
				return fmt.Errorf("saving embedding for article %s: %w", a.ID, err)
			}
			logger.Info("embedded article", "id", a.ID, "title", a.Title, "dimensions", len(vec))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(pending), nil
}
