package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/storage"
	"github.com/counselgate/counselgate/internal/triage"
)

// Service handles request submission: urgency detection, summarization,
// attorney assignment, and persistence.
type Service struct {
	store     storage.Store
	client    llm.Client
	fastModel string
	logger    *slog.Logger
}

func NewService(store storage.Store, client llm.Client, fastModel string, logger *slog.Logger) *Service {
	return &Service{store: store, client: client, fastModel: fastModel, logger: logger}
}

// Submission is the caller-supplied part of a new legal request.
type Submission struct {
	Category       string         `json:"category"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	SubmitterName  string         `json:"submitterName"`
	SubmitterEmail string         `json:"submitterEmail"`
	SubmitterTeam  string         `json:"submitterTeam"`
	Metadata       map[string]any `json:"metadata"`
}

func (sub Submission) validate() error {
	if sub.Title == "" {
		return fmt.Errorf("title is required")
	}
	if sub.Description == "" {
		return fmt.Errorf("description is required")
	}
	if sub.SubmitterName == "" || sub.SubmitterEmail == "" {
		return fmt.Errorf("submitter name and email are required")
	}
	return nil
}

// CreateRequest turns a submission into a tracked request: classifies
// urgency, generates the attorney-facing summary, assigns an available
// attorney by expertise, and persists the record with a human-readable
// reference number.
func (s *Service) CreateRequest(ctx context.Context, sub Submission) (storage.LegalRequest, *storage.Attorney, error) {
	if err := sub.validate(); err != nil {
		return storage.LegalRequest{}, nil, err
	}

	category := triage.NormalizeCategory(sub.Category)

	urgency := s.DetectUrgency(ctx, sub.Description)
	summary := s.Summarize(ctx, category, sub.Title, sub.Description)

	available, err := s.store.ListAvailableAttorneys()
	if err != nil {
		return storage.LegalRequest{}, nil, fmt.Errorf("listing attorneys: %w", err)
	}
	assigned := PickAttorney(available, category)

	ref, err := s.nextReferenceNumber()
	if err != nil {
		return storage.LegalRequest{}, nil, err
	}

	now := time.Now().UTC()
	request := storage.LegalRequest{
		ID:               uuid.NewString(),
		ReferenceNumber:  ref,
		Category:         category,
		Title:            sub.Title,
		Description:      sub.Description,
		Status:           storage.StatusSubmitted,
		Urgency:          urgency.UrgencyLevel,
		UrgencyReason:    urgency.Reasoning,
		AISummary:        summary,
		SubmitterName:    sub.SubmitterName,
		SubmitterEmail:   sub.SubmitterEmail,
		SubmitterTeam:    sub.SubmitterTeam,
		ExpectedTimeline: ExpectedTimeline(urgency.UrgencyLevel),
		Metadata:         sub.Metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if assigned != nil {
		request.AssignedAttorneyID = assigned.ID
	}

	if err := s.store.CreateRequest(request); err != nil {
		return storage.LegalRequest{}, nil, fmt.Errorf("saving request: %w", err)
	}

	if assigned != nil {
		assigned.ActiveRequestCount++
		if err := s.store.UpdateAttorney(*assigned); err != nil {
			s.logger.Warn("updating attorney load failed", "attorney", assigned.ID, "error", err)
		}
	}

	s.logger.Info("request created",
		"reference", request.ReferenceNumber,
		"category", request.Category,
		"urgency", request.Urgency,
		"attorney", request.AssignedAttorneyID)

	return request, assigned, nil
}

// nextReferenceNumber issues sequential REQ-YYYY-NNN identifiers.
func (s *Service) nextReferenceNumber() (string, error) {
	count, err := s.store.CountRequests()
	if err != nil {
		return "", fmt.Errorf("counting requests: %w", err)
	}
	return fmt.Sprintf("REQ-%d-%03d", time.Now().UTC().Year(), count+1), nil
}
