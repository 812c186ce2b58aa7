package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counselgate/counselgate/internal/knowledge"
	"github.com/counselgate/counselgate/internal/storage"
)

func handleListArticles(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles, err := deps.Store.ListArticles()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch articles")
			return
		}

		if search := r.URL.Query().Get("search"); search != "" {
			matches := knowledge.KeywordSearch(search, articles, len(articles))
			articles = articles[:0]
			for _, m := range matches {
				articles = append(articles, m.Article)
			}
		}
		if category := r.URL.Query().Get("category"); category != "" && category != "All" {
			filtered := articles[:0]
			for _, a := range articles {
				if strings.EqualFold(a.Category, category) {
					filtered = append(filtered, a)
				}
			}
			articles = filtered
		}

		if articles == nil {
			articles = []storage.KnowledgeArticle{}
		}
		writeJSON(w, http.StatusOK, articles)
	}
}

type articleBody struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	ReadTime int      `json:"readTime"`
}

func (b articleBody) validate() error {
	switch {
	case b.Title == "":
		return errors.New("title is required")
	case b.Slug == "":
		return errors.New("slug is required")
	case b.Content == "":
		return errors.New("content is required")
	default:
		return nil
	}
}

func handleCreateArticle(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body articleBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := body.validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		now := time.Now().UTC()
		article := storage.KnowledgeArticle{
			ID:        uuid.NewString(),
			Title:     body.Title,
			Slug:      body.Slug,
			Content:   body.Content,
			Excerpt:   body.Excerpt,
			Category:  body.Category,
			Tags:      body.Tags,
			ReadTime:  body.ReadTime,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := deps.Store.CreateArticle(article); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "failed to create article: %v", err)
			return
		}

		// Embedding happens in the background; the article is excluded from
		// semantic search until the job completes.
		if err := knowledge.EnqueueArticleEmbedding(deps.Store, article.ID); err != nil {
			deps.Logger.Warn("enqueueing embedding job failed", "article", article.ID, "error", err)
		}

		writeJSON(w, http.StatusCreated, article)
	}
}

func handleGetArticle(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := deps.Store.GetArticleBySlug(chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "article not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch article")
			return
		}
		writeJSON(w, http.StatusOK, article)
	}
}

func handleUpdateArticle(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body articleBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := body.validate(); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		id := chi.URLParam(r, "id")
		article, err := deps.Store.GetArticle(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "article not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to fetch article")
			return
		}

		contentChanged := article.Title != body.Title || article.Excerpt != body.Excerpt || article.Content != body.Content

		article.Title = body.Title
		article.Slug = body.Slug
		article.Content = body.Content
		article.Excerpt = body.Excerpt
		article.Category = body.Category
		article.Tags = body.Tags
		article.ReadTime = body.ReadTime
		if err := deps.Store.UpdateArticle(article); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update article")
			return
		}

		// Stale vectors would rank the article by its old text.
		if contentChanged {
			if err := deps.Store.UpdateArticleEmbedding(id, nil); err != nil {
				deps.Logger.Warn("clearing stale embedding failed", "article", id, "error", err)
			}
			if err := knowledge.EnqueueArticleEmbedding(deps.Store, id); err != nil {
				deps.Logger.Warn("enqueueing embedding job failed", "article", id, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, article)
	}
}

func handleDeleteArticle(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteArticle(chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "article not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete article")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type feedbackBody struct {
	Helpful bool `json:"helpful"`
}

func handleArticleFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body feedbackBody
		if !decodeBody(w, r, &body) {
			return
		}
		if err := deps.Store.UpdateArticleStats(chi.URLParam(r, "id"), body.Helpful); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "invalid_request_error", "article not found")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to record feedback")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
