package storage

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore is an in-memory Store for tests and ephemeral deployments.
// All data is lost on process exit.
type MemStore struct {
	mu        sync.RWMutex
	requests  map[string]LegalRequest
	messages  map[string][]ConversationMessage
	articles  map[string]KnowledgeArticle
	attorneys map[string]Attorney
	jobs      map[string]Job
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		requests:  make(map[string]LegalRequest),
		messages:  make(map[string][]ConversationMessage),
		articles:  make(map[string]KnowledgeArticle),
		attorneys: make(map[string]Attorney),
		jobs:      make(map[string]Job),
	}
}

func (s *MemStore) Close() error { return nil }

// --- Requests ---

func (s *MemStore) CreateRequest(r LegalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; ok {
		return fmt.Errorf("request %s already exists", r.ID)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.requests[r.ID] = r
	return nil
}

func (s *MemStore) GetRequest(id string) (LegalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return LegalRequest{}, ErrNotFound
	}
	return r, nil
}

func (s *MemStore) ListRequests() ([]LegalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]LegalRequest, 0, len(s.requests))
	for _, r := range s.requests {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *MemStore) UpdateRequest(r LegalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	s.requests[r.ID] = r
	return nil
}

func (s *MemStore) CountRequests() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests), nil
}

// --- Conversation messages ---

func (s *MemStore) CreateMessage(m ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.messages[m.RequestID] = append(s.messages[m.RequestID], m)
	return nil
}

func (s *MemStore) GetMessages(requestID string) ([]ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[requestID]
	out := make([]ConversationMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// --- Knowledge articles ---

func (s *MemStore) CreateArticle(a KnowledgeArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[a.ID]; ok {
		return fmt.Errorf("article %s already exists", a.ID)
	}
	for _, existing := range s.articles {
		if existing.Slug == a.Slug {
			return fmt.Errorf("article slug %q already exists", a.Slug)
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	s.articles[a.ID] = a
	return nil
}

func (s *MemStore) GetArticle(id string) (KnowledgeArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return KnowledgeArticle{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) GetArticleBySlug(slug string) (KnowledgeArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return KnowledgeArticle{}, ErrNotFound
}

func (s *MemStore) ListArticles() ([]KnowledgeArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]KnowledgeArticle, 0, len(s.articles))
	for _, a := range s.articles {
		results = append(results, a)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].ViewCount != results[j].ViewCount {
			return results[i].ViewCount > results[j].ViewCount
		}
		return results[i].Title < results[j].Title
	})
	return results, nil
}

func (s *MemStore) UpdateArticle(a KnowledgeArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.articles[a.ID]
	if !ok {
		return ErrNotFound
	}
	// Counters and embedding are managed through their own methods.
	a.ViewCount = existing.ViewCount
	a.HelpfulCount = existing.HelpfulCount
	a.NotHelpfulCount = existing.NotHelpfulCount
	a.Embedding = existing.Embedding
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.articles[a.ID] = a
	return nil
}

func (s *MemStore) DeleteArticle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *MemStore) UpdateArticleEmbedding(id string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return ErrNotFound
	}
	a.Embedding = embedding
	a.UpdatedAt = time.Now().UTC()
	s.articles[id] = a
	return nil
}

func (s *MemStore) UpdateArticleStats(id string, helpful bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return ErrNotFound
	}
	if helpful {
		a.HelpfulCount++
	} else {
		a.NotHelpfulCount++
	}
	s.articles[id] = a
	return nil
}

// --- Attorneys ---

func (s *MemStore) CreateAttorney(a Attorney) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attorneys[a.ID]; ok {
		return fmt.Errorf("attorney %s already exists", a.ID)
	}
	s.attorneys[a.ID] = a
	return nil
}

func (s *MemStore) GetAttorney(id string) (Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attorneys[id]
	if !ok {
		return Attorney{}, ErrNotFound
	}
	return a, nil
}

func (s *MemStore) ListAttorneys() ([]Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]Attorney, 0, len(s.attorneys))
	for _, a := range s.attorneys {
		results = append(results, a)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

func (s *MemStore) ListAvailableAttorneys() ([]Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []Attorney
	for _, a := range s.attorneys {
		if a.Availability == "available" {
			results = append(results, a)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].ActiveRequestCount != results[j].ActiveRequestCount {
			return results[i].ActiveRequestCount < results[j].ActiveRequestCount
		}
		return results[i].Name < results[j].Name
	})
	return results, nil
}

func (s *MemStore) UpdateAttorney(a Attorney) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attorneys[a.ID]; !ok {
		return ErrNotFound
	}
	s.attorneys[a.ID] = a
	return nil
}

// --- Jobs ---

func (s *MemStore) EnqueueJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	job.Status = "pending"
	job.Attempts = 0
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 3
	}
	if job.RunAfter.IsZero() {
		job.RunAfter = now
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = job
	return nil
}

func (s *MemStore) ClaimNextJob(types []string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	now := time.Now().UTC()
	var best *Job
	for id := range s.jobs {
		j := s.jobs[id]
		if j.Status != "pending" || !wanted[j.Type] || j.RunAfter.After(now) {
			continue
		}
		if best == nil || j.RunAfter.Before(best.RunAfter) ||
			(j.RunAfter.Equal(best.RunAfter) && j.CreatedAt.Before(best.CreatedAt)) {
			copied := j
			best = &copied
		}
	}
	if best == nil {
		return nil, nil
	}

	best.Status = "running"
	best.UpdatedAt = now
	s.jobs[best.ID] = *best
	return best, nil
}

func (s *MemStore) CompleteJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = "completed"
	j.UpdatedAt = time.Now().UTC()
	s.jobs[id] = j
	return nil
}

func (s *MemStore) FailJob(id string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	j.Attempts++
	j.LastError = errMsg
	j.UpdatedAt = now
	if j.Attempts >= j.MaxAttempts {
		j.Status = "failed"
	} else {
		j.Status = "pending"
		backoff := time.Duration(math.Pow(2, float64(j.Attempts))) * time.Second
		j.RunAfter = now.Add(backoff)
	}
	s.jobs[id] = j
	return nil
}
