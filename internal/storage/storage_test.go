package storage

import (
	"errors"
	"testing"
	"time"
)

// each test runs against both implementations
func withStores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(":memory:")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemStore())
	})
}

func TestRequestLifecycle(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		r := LegalRequest{
			ID:              "req-1",
			ReferenceNumber: "REQ-2026-001",
			Category:        "contract_review",
			Title:           "Vendor NDA review",
			Description:     "Need a mutual NDA reviewed before signing.",
			Status:          StatusSubmitted,
			Urgency:         UrgencyMedium,
			SubmitterName:   "Pat Doe",
			SubmitterEmail:  "pat@company.com",
			Metadata:        map[string]any{"triageOutcome": "might_need"},
			CreatedAt:       time.Now().UTC(),
			UpdatedAt:       time.Now().UTC(),
		}
		if err := s.CreateRequest(r); err != nil {
			t.Fatalf("CreateRequest: %v", err)
		}

		got, err := s.GetRequest("req-1")
		if err != nil {
			t.Fatalf("GetRequest: %v", err)
		}
		if got.ReferenceNumber != "REQ-2026-001" {
			t.Errorf("reference number = %q", got.ReferenceNumber)
		}
		if got.Metadata["triageOutcome"] != "might_need" {
			t.Errorf("metadata = %v", got.Metadata)
		}

		got.Status = StatusInReview
		got.AssignedAttorneyID = "atty-1"
		if err := s.UpdateRequest(got); err != nil {
			t.Fatalf("UpdateRequest: %v", err)
		}
		updated, err := s.GetRequest("req-1")
		if err != nil {
			t.Fatalf("GetRequest after update: %v", err)
		}
		if updated.Status != StatusInReview || updated.AssignedAttorneyID != "atty-1" {
			t.Errorf("update not persisted: %+v", updated)
		}

		n, err := s.CountRequests()
		if err != nil || n != 1 {
			t.Errorf("CountRequests = %d, %v", n, err)
		}

		if _, err := s.GetRequest("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetRequest(missing) = %v, want ErrNotFound", err)
		}
		if err := s.UpdateRequest(LegalRequest{ID: "missing"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateRequest(missing) = %v, want ErrNotFound", err)
		}
	})
}

func TestMessagesOrdered(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		base := time.Now().UTC().Add(-time.Minute)
		for i, content := range []string{"first", "second", "third"} {
			m := ConversationMessage{
				ID:        "msg-" + content,
				RequestID: "conv-1",
				Role:      "user",
				Content:   content,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}
			if err := s.CreateMessage(m); err != nil {
				t.Fatalf("CreateMessage: %v", err)
			}
		}

		msgs, err := s.GetMessages("conv-1")
		if err != nil {
			t.Fatalf("GetMessages: %v", err)
		}
		if len(msgs) != 3 {
			t.Fatalf("got %d messages, want 3", len(msgs))
		}
		for i, want := range []string{"first", "second", "third"} {
			if msgs[i].Content != want {
				t.Errorf("message %d = %q, want %q", i, msgs[i].Content, want)
			}
		}

		other, err := s.GetMessages("conv-2")
		if err != nil {
			t.Fatalf("GetMessages(conv-2): %v", err)
		}
		if len(other) != 0 {
			t.Errorf("got %d messages for empty conversation", len(other))
		}
	})
}

func TestArticleEmbeddingRoundTrip(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		a := KnowledgeArticle{
			ID:       "art-1",
			Title:    "Test Article",
			Slug:     "test-article",
			Content:  "# Test\nBody text.",
			Excerpt:  "A test article.",
			Category: "Contracts",
			Tags:     []string{"NDA", "Templates"},
			ReadTime: 3,
		}
		if err := s.CreateArticle(a); err != nil {
			t.Fatalf("CreateArticle: %v", err)
		}

		got, err := s.GetArticleBySlug("test-article")
		if err != nil {
			t.Fatalf("GetArticleBySlug: %v", err)
		}
		if got.Embedding != nil {
			t.Errorf("fresh article should have nil embedding, got %v", got.Embedding)
		}

		vec := []float32{0.25, -0.5, 1.0}
		if err := s.UpdateArticleEmbedding("art-1", vec); err != nil {
			t.Fatalf("UpdateArticleEmbedding: %v", err)
		}
		got, err = s.GetArticle("art-1")
		if err != nil {
			t.Fatalf("GetArticle: %v", err)
		}
		if len(got.Embedding) != 3 || got.Embedding[0] != 0.25 || got.Embedding[2] != 1.0 {
			t.Errorf("embedding round trip = %v", got.Embedding)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "NDA" {
			t.Errorf("tags round trip = %v", got.Tags)
		}
	})
}

func TestArticleStats(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.CreateArticle(KnowledgeArticle{ID: "art-1", Title: "T", Slug: "t", Content: "c", Excerpt: "e", Category: "Contracts"}); err != nil {
			t.Fatalf("CreateArticle: %v", err)
		}
		if err := s.UpdateArticleStats("art-1", true); err != nil {
			t.Fatalf("UpdateArticleStats(helpful): %v", err)
		}
		if err := s.UpdateArticleStats("art-1", false); err != nil {
			t.Fatalf("UpdateArticleStats(not helpful): %v", err)
		}
		if err := s.UpdateArticleStats("art-1", true); err != nil {
			t.Fatalf("UpdateArticleStats(helpful): %v", err)
		}

		a, err := s.GetArticle("art-1")
		if err != nil {
			t.Fatalf("GetArticle: %v", err)
		}
		if a.HelpfulCount != 2 || a.NotHelpfulCount != 1 {
			t.Errorf("counts = %d/%d, want 2/1", a.HelpfulCount, a.NotHelpfulCount)
		}

		if err := s.DeleteArticle("art-1"); err != nil {
			t.Fatalf("DeleteArticle: %v", err)
		}
		if _, err := s.GetArticle("art-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetArticle after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestAvailableAttorneysSortedByLoad(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		attorneys := []Attorney{
			{ID: "a1", Name: "Alice", Email: "alice@co.com", Title: "Counsel", Expertise: []string{"Contracts"}, Availability: "available", ActiveRequestCount: 3},
			{ID: "a2", Name: "Bob", Email: "bob@co.com", Title: "Counsel", Expertise: []string{"Marketing"}, Availability: "available", ActiveRequestCount: 1},
			{ID: "a3", Name: "Cara", Email: "cara@co.com", Title: "Counsel", Expertise: []string{"Employment"}, Availability: "busy", ActiveRequestCount: 0},
		}
		for _, a := range attorneys {
			if err := s.CreateAttorney(a); err != nil {
				t.Fatalf("CreateAttorney: %v", err)
			}
		}

		available, err := s.ListAvailableAttorneys()
		if err != nil {
			t.Fatalf("ListAvailableAttorneys: %v", err)
		}
		if len(available) != 2 {
			t.Fatalf("got %d available, want 2", len(available))
		}
		if available[0].ID != "a2" {
			t.Errorf("first available = %s, want a2 (lowest load)", available[0].ID)
		}

		all, err := s.ListAttorneys()
		if err != nil {
			t.Fatalf("ListAttorneys: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("got %d attorneys, want 3", len(all))
		}
	})
}

func TestJobQueue(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.EnqueueJob(Job{ID: "job-1", Type: "article_embedding", PayloadJSON: `{"articleId":"art-1"}`}); err != nil {
			t.Fatalf("EnqueueJob: %v", err)
		}

		j, err := s.ClaimNextJob([]string{"article_embedding"})
		if err != nil {
			t.Fatalf("ClaimNextJob: %v", err)
		}
		if j == nil || j.ID != "job-1" {
			t.Fatalf("claimed = %+v, want job-1", j)
		}
		if j.Status != "running" {
			t.Errorf("status = %q, want running", j.Status)
		}

		// Already claimed, nothing left.
		again, err := s.ClaimNextJob([]string{"article_embedding"})
		if err != nil {
			t.Fatalf("ClaimNextJob: %v", err)
		}
		if again != nil {
			t.Errorf("claimed running job again: %+v", again)
		}

		if err := s.CompleteJob("job-1"); err != nil {
			t.Fatalf("CompleteJob: %v", err)
		}
	})
}

func TestJobRetryBackoff(t *testing.T) {
	withStores(t, func(t *testing.T, s Store) {
		if err := s.EnqueueJob(Job{ID: "job-1", Type: "article_embedding", PayloadJSON: "{}", MaxAttempts: 2}); err != nil {
			t.Fatalf("EnqueueJob: %v", err)
		}

		j, err := s.ClaimNextJob([]string{"article_embedding"})
		if err != nil || j == nil {
			t.Fatalf("ClaimNextJob: %v, %v", j, err)
		}

		if err := s.FailJob(j.ID, "backend unavailable"); err != nil {
			t.Fatalf("FailJob: %v", err)
		}

		// Pending again but deferred by backoff, not claimable yet.
		deferred, err := s.ClaimNextJob([]string{"article_embedding"})
		if err != nil {
			t.Fatalf("ClaimNextJob: %v", err)
		}
		if deferred != nil {
			t.Errorf("claimed job before backoff elapsed: %+v", deferred)
		}
	})
}

func TestSeedIdempotent(t *testing.T) {
	s := NewMemStore()
	if err := Seed(s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := Seed(s); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	articles, err := s.ListArticles()
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(articles) != 5 {
		t.Errorf("got %d articles, want 5", len(articles))
	}
	attorneys, err := s.ListAttorneys()
	if err != nil {
		t.Fatalf("ListAttorneys: %v", err)
	}
	if len(attorneys) != 3 {
		t.Errorf("got %d attorneys, want 3", len(attorneys))
	}

	if _, err := s.GetArticleBySlug("nda-template-guide"); err != nil {
		t.Errorf("seeded NDA article missing: %v", err)
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.14159}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d values, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d = %v, want %v", i, out[i], in[i])
		}
	}

	if v, err := decodeVector(nil); err != nil || v != nil {
		t.Errorf("decodeVector(nil) = %v, %v", v, err)
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for misaligned byte length")
	}
}
