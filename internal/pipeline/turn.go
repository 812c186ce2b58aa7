package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/counselgate/counselgate/internal/knowledge"
	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/storage"
	"github.com/counselgate/counselgate/internal/triage"
)

// keywordFallbackLimit caps how many articles the low-trust keyword path
// feeds into generation.
const keywordFallbackLimit = 2

// Options are the pipeline tunables. The defaults mirror the reference
// deployment; none of the specific numbers are load-bearing.
type Options struct {
	SimilarityThreshold float64 // minimum cosine similarity for a candidate match
	MinConfidence       int     // confidence gate approval floor
	SearchLimit         int     // semantic search result cap
	AssessAfterTurns    int     // user messages before the conversation is ready for triage
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.55,
		MinConfidence:       triage.ApprovalConfidence,
		SearchLimit:         5,
		AssessAfterTurns:    6,
	}
}

// TurnResult is both persisted messages for one conversation turn.
type TurnResult struct {
	UserMessage      storage.ConversationMessage `json:"userMessage"`
	AssistantMessage storage.ConversationMessage `json:"assistantMessage"`
}

// Orchestrator binds embedding, search, gating, and generation into the
// per-message triage pipeline.
type Orchestrator struct {
	store     storage.Store
	embedder  *knowledge.Embedder
	gate      *triage.Gate
	responder *triage.Responder
	assessor  *triage.Assessor
	opts      Options
	logger    *slog.Logger
}

func NewOrchestrator(store storage.Store, embedder *knowledge.Embedder, gate *triage.Gate, responder *triage.Responder, assessor *triage.Assessor, opts Options, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		embedder:  embedder,
		gate:      gate,
		responder: responder,
		assessor:  assessor,
		opts:      opts,
		logger:    logger,
	}
}

// RunConversationTurn processes one inbound user message: persist it, find
// and vet knowledge base content, generate the assistant reply, persist
// that too. AI failures degrade inside the pipeline; only storage errors
// surface to the caller.
func (o *Orchestrator) RunConversationTurn(ctx context.Context, requestID, userText string) (TurnResult, error) {
	if userText == "" {
		return TurnResult{}, fmt.Errorf("empty user message")
	}

	history, err := o.store.GetMessages(requestID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("loading transcript: %w", err)
	}

	phase := PhaseFor(countUserMessages(history)+1, o.opts.AssessAfterTurns)

	userMessage := storage.ConversationMessage{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Role:      "user",
		Content:   userText,
		Metadata:  map[string]any{phaseMetadataKey: phase},
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.CreateMessage(userMessage); err != nil {
		return TurnResult{}, fmt.Errorf("saving user message: %w", err)
	}

	transcript := toLLMMessages(append(history, userMessage))

	articles, err := o.store.ListArticles()
	if err != nil {
		return TurnResult{}, fmt.Errorf("loading knowledge articles: %w", err)
	}

	grounded, supplementary, usedTitles := o.findKnowledge(ctx, userText, articles)

	reply := o.responder.Respond(ctx, transcript, grounded, supplementary)

	assistantMessage := storage.ConversationMessage{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Role:      "assistant",
		Content:   reply,
		Metadata: map[string]any{
			"usedKnowledgeBase": len(usedTitles) > 0,
			"articleTitles":     usedTitles,
			phaseMetadataKey:    phase,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.CreateMessage(assistantMessage); err != nil {
		return TurnResult{}, fmt.Errorf("saving assistant message: %w", err)
	}

	return TurnResult{UserMessage: userMessage, AssistantMessage: assistantMessage}, nil
}

// findKnowledge runs the semantic path with the confidence gate, or the
// keyword fallback when embedding fails. It returns at most one grounded
// source; the keyword path only yields supplementary low-trust context.
func (o *Orchestrator) findKnowledge(ctx context.Context, userText string, articles []storage.KnowledgeArticle) (*triage.GroundedSource, []string, []string) {
	queryVector, err := o.embedder.EmbedQuery(ctx, userText)
	if err != nil {
		o.logger.Warn("query embedding failed, falling back to keyword search", "error", err)
		return o.keywordFallback(userText, articles)
	}

	matches := knowledge.SemanticSearch(queryVector, articles, o.opts.SearchLimit)
	relevant := knowledge.FilterRelevant(matches, o.opts.SimilarityThreshold)
	if len(relevant) == 0 {
		if len(matches) > 0 {
			o.logger.Info("no articles above similarity threshold",
				"bestTitle", matches[0].Article.Title,
				"bestSimilarity", matches[0].Similarity,
				"threshold", o.opts.SimilarityThreshold)
		}
		return nil, nil, nil
	}

	top := relevant[0]
	check := o.gate.CanAnswer(ctx, userText, top.Article.Title, top.Article.Excerpt)
	o.logger.Info("confidence gate",
		"title", top.Article.Title,
		"similarity", top.Similarity,
		"canAnswer", check.CanAnswer,
		"confidence", check.Confidence,
		"reasoning", check.Reasoning)

	if !check.Approved(o.opts.MinConfidence) {
		// Semantic path already ran; no second fallback here.
		return nil, nil, nil
	}

	snippets := knowledge.ExtractSnippets(top.Article.Content, userText, 3)
	if len(snippets) == 0 {
		snippets = []string{top.Article.Excerpt}
	}
	return &triage.GroundedSource{Title: top.Article.Title, Snippets: snippets},
		nil,
		[]string{top.Article.Title}
}

// keywordFallback feeds up to two keyword matches' raw content to
// generation as supplementary context. The confidence gate is skipped on
// this path: keyword results are never treated as an approved source.
func (o *Orchestrator) keywordFallback(userText string, articles []storage.KnowledgeArticle) (*triage.GroundedSource, []string, []string) {
	matches := knowledge.KeywordSearch(userText, articles, keywordFallbackLimit)
	if len(matches) == 0 {
		return nil, nil, nil
	}

	var supplementary, titles []string
	for _, m := range matches {
		supplementary = append(supplementary, fmt.Sprintf("%s\n%s", m.Article.Title, m.Article.Content))
		titles = append(titles, m.Article.Title)
	}
	o.logger.Info("keyword fallback matched articles", "count", len(matches))
	return nil, supplementary, titles
}

// RunFullTriage classifies the whole conversation and stamps the transcript
// as concluded.
func (o *Orchestrator) RunFullTriage(ctx context.Context, requestID string) (triage.Assessment, error) {
	history, err := o.store.GetMessages(requestID)
	if err != nil {
		return triage.Assessment{}, fmt.Errorf("loading transcript: %w", err)
	}

	assessment := o.assessor.Assess(ctx, toLLMMessages(history))

	marker := storage.ConversationMessage{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Role:      "assistant",
		Content:   assessment.Reasoning,
		Metadata: map[string]any{
			"type":           "triage_assessment",
			"outcome":        assessment.Outcome,
			phaseMetadataKey: PhaseConcluded,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.CreateMessage(marker); err != nil {
		return triage.Assessment{}, fmt.Errorf("saving assessment marker: %w", err)
	}

	return assessment, nil
}

// AssessTranscript runs triage over a caller-supplied transcript without
// touching storage.
func (o *Orchestrator) AssessTranscript(ctx context.Context, transcript []storage.ConversationMessage) triage.Assessment {
	return o.assessor.Assess(ctx, toLLMMessages(transcript))
}

// ReadyForTriage reports whether the conversation has gathered enough turns.
func (o *Orchestrator) ReadyForTriage(messages []storage.ConversationMessage) bool {
	return PhaseFor(countUserMessages(messages), o.opts.AssessAfterTurns) == PhaseAssessing
}

func toLLMMessages(messages []storage.ConversationMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
