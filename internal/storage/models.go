package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Request status lifecycle values.
const (
	StatusSubmitted    = "submitted"
	StatusTriaged      = "triaged"
	StatusInReview     = "in_review"
	StatusAccepted     = "accepted"
	StatusDeclined     = "declined"
	StatusAwaitingInfo = "awaiting_info"
	StatusCompleted    = "completed"
)

// Request urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

// LegalRequest is a tracked legal matter submitted for attorney review.
type LegalRequest struct {
	ID                 string         `json:"id"`
	ReferenceNumber    string         `json:"referenceNumber"`
	Category           string         `json:"category"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Status             string         `json:"status"`
	Urgency            string         `json:"urgency"`
	UrgencyReason      string         `json:"urgencyReason,omitempty"`
	AssignedAttorneyID string         `json:"assignedAttorneyId,omitempty"`
	AISummary          string         `json:"aiSummary,omitempty"`
	SubmitterName      string         `json:"submitterName"`
	SubmitterEmail     string         `json:"submitterEmail"`
	SubmitterTeam      string         `json:"submitterTeam,omitempty"`
	ExpectedTimeline   string         `json:"expectedTimeline,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// ConversationMessage is one append-only turn in a triage conversation.
// RequestID may be a transient client-generated id before a request exists.
type ConversationMessage struct {
	ID        string         `json:"id"`
	RequestID string         `json:"requestId,omitempty"`
	Role      string         `json:"role"` // "user" or "assistant"
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// KnowledgeArticle is a pre-approved self-service knowledge base entry.
// Embedding is nil until generated; articles without one are excluded from
// semantic search rather than treated as zero-similarity.
type KnowledgeArticle struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	ViewCount       int       `json:"viewCount"`
	HelpfulCount    int       `json:"helpfulCount"`
	NotHelpfulCount int       `json:"notHelpfulCount"`
	ReadTime        int       `json:"readTime"` // minutes
	Embedding       []float32 `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Attorney is a legal staff member requests can be assigned to.
type Attorney struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Title              string   `json:"title"`
	Expertise          []string `json:"expertise"`
	Availability       string   `json:"availability"` // available, busy, unavailable
	ActiveRequestCount int      `json:"activeRequestCount"`
}

// Job is a queued background task (currently article embedding).
type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}
