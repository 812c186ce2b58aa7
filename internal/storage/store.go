package storage

// Store is the persistence boundary for the intake service. Two
// implementations exist: SQLiteStore for production and MemStore for tests
// and ephemeral deployments, selected via configuration.
//
// All Get methods return ErrNotFound when the record does not exist. Update
// methods are full-row writes; callers fetch, modify, and save.
type Store interface {
	// Requests.
	CreateRequest(r LegalRequest) error
	GetRequest(id string) (LegalRequest, error)
	ListRequests() ([]LegalRequest, error)
	UpdateRequest(r LegalRequest) error
	CountRequests() (int, error)

	// Conversation messages (append-only, ordered by creation time).
	CreateMessage(m ConversationMessage) error
	GetMessages(requestID string) ([]ConversationMessage, error)

	// Knowledge articles.
	CreateArticle(a KnowledgeArticle) error
	GetArticle(id string) (KnowledgeArticle, error)
	GetArticleBySlug(slug string) (KnowledgeArticle, error)
	ListArticles() ([]KnowledgeArticle, error)
	UpdateArticle(a KnowledgeArticle) error
	DeleteArticle(id string) error
	UpdateArticleEmbedding(id string, embedding []float32) error
	UpdateArticleStats(id string, helpful bool) error

	// Attorneys.
	CreateAttorney(a Attorney) error
	GetAttorney(id string) (Attorney, error)
	ListAttorneys() ([]Attorney, error)
	ListAvailableAttorneys() ([]Attorney, error)
	UpdateAttorney(a Attorney) error

	// Background jobs.
	EnqueueJob(job Job) error
	ClaimNextJob(types []string) (*Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error

	Close() error
}
