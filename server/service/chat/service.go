// Package chat coordinates message append, AI invocation, summary refresh
// cadence, and persistence of chat state.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/singleflight"

	"github.com/elijahnzeli1/smartnote-backend/ai"
	"github.com/elijahnzeli1/smartnote-backend/ai/summary"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

const (
	// DefaultSummarizeThreshold triggers a summary refresh every N messages.
	DefaultSummarizeThreshold = 10
	// DefaultMaxContextMessages bounds the sliding context window.
	DefaultMaxContextMessages = 20
)

// Store defines the persistence surface the chat service needs.
// Satisfied by *store.Store; tests substitute a mock.
type Store interface {
	CreateChat(ctx context.Context, create *store.Chat) (*store.Chat, error)
	GetChat(ctx context.Context, find *store.FindChat) (*store.Chat, error)
	ListChats(ctx context.Context, find *store.FindChat) ([]*store.Chat, error)
	UpdateChat(ctx context.Context, update *store.UpdateChat) (*store.Chat, error)
	DeleteChat(ctx context.Context, delete *store.DeleteChat) error
	AppendChatMessage(ctx context.Context, create *store.CreateChatMessage) (*store.ChatMessage, *store.Chat, error)
	ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error)
	UpdateChatMessageSummary(ctx context.Context, id int64, summary string) error
	GetChatMessageStats(ctx context.Context, chatID int32) (*store.ChatMessageStats, error)
}

// MessageRecorder receives message telemetry. Implemented by
// internal/metrics.Exporter; may be nil.
type MessageRecorder interface {
	RecordChatMessage(role string)
}

// Service is the chat orchestrator.
type Service struct {
	store              Store
	client             ai.Completer
	policy             *summary.Policy
	summarizeThreshold int
	maxContextMessages int
	recorder           MessageRecorder

	// Collapses concurrent summary refreshes of the same chat.
	summarizeGroup singleflight.Group
}

// NewService creates the chat orchestrator. Zero threshold/window values
// fall back to the defaults. recorder may be nil.
func NewService(st Store, client ai.Completer, policy *summary.Policy, summarizeThreshold, maxContextMessages int, recorder MessageRecorder) *Service {
	if summarizeThreshold <= 0 {
		summarizeThreshold = DefaultSummarizeThreshold
	}
	if maxContextMessages <= 0 {
		maxContextMessages = DefaultMaxContextMessages
	}
	return &Service{
		store:              st,
		client:             client,
		policy:             policy,
		summarizeThreshold: summarizeThreshold,
		maxContextMessages: maxContextMessages,
		recorder:           recorder,
	}
}

// EstimateTokens approximates the token cost of content as len/4.
// A fixed, reproducible heuristic, not a real tokenizer.
func EstimateTokens(content string) int32 {
	return int32(len(content) / 4)
}

// ShouldSummarize reports whether a chat with messageCount persisted
// messages is due for a summary refresh: exactly at positive multiples of
// threshold, not before, not on off-multiples.
func ShouldSummarize(messageCount int32, threshold int) bool {
	return messageCount > 0 && int(messageCount)%threshold == 0
}

// CreateChat creates an empty chat. An empty title gets a timestamp default.
func (s *Service) CreateChat(ctx context.Context, creatorID int32, title string) (*store.Chat, error) {
	now := time.Now()
	if title == "" {
		title = fmt.Sprintf("Chat %s", now.Format("2006-01-02 15:04"))
	}
	chat, err := s.store.CreateChat(ctx, &store.Chat{
		UID:       shortuuid.New(),
		CreatorID: creatorID,
		Title:     title,
		CreatedTs: now.UnixMilli(),
		UpdatedTs: now.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("created chat", "chat_id", chat.ID, "creator_id", creatorID)
	return chat, nil
}

// AddMessage persists a message and updates the chat counters atomically.
// When autoSummarize is set and the post-append message count hits the
// threshold, the chat summary is refreshed; a refresh failure is returned as
// *ai.UnavailableError while the appended message stays persisted.
func (s *Service) AddMessage(ctx context.Context, chatID int32, role store.MessageRole, content string, autoSummarize bool) (*store.ChatMessage, error) {
	message, chat, err := s.store.AppendChatMessage(ctx, &store.CreateChatMessage{
		ChatID:    chatID,
		Role:      role,
		Content:   content,
		Tokens:    EstimateTokens(content),
		CreatedTs: time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordChatMessage(string(role))
	}
	slog.Info("added chat message", "chat_id", chatID, "role", role, "message_count", chat.MessageCount)

	if autoSummarize && ShouldSummarize(chat.MessageCount, s.summarizeThreshold) {
		if _, err := s.UpdateSummary(ctx, chatID); err != nil {
			return message, err
		}
	}
	return message, nil
}

// UpdateSummary regenerates the full-conversation digest and the condensed
// context blob. An empty chat yields an empty summary and no error.
// Concurrent refreshes of one chat share a single provider round trip.
func (s *Service) UpdateSummary(ctx context.Context, chatID int32) (string, error) {
	result, err, _ := s.summarizeGroup.Do(strconv.Itoa(int(chatID)), func() (any, error) {
		return s.updateSummary(ctx, chatID)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (s *Service) updateSummary(ctx context.Context, chatID int32) (string, error) {
	messages, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{ChatID: &chatID})
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", nil
	}

	fullSummary, err := s.policy.SummarizeChat(ctx, toAIMessages(messages))
	if err != nil {
		return "", err
	}
	contextSummary := s.policy.CondenseContext(ctx, fullSummary, summary.DefaultContextMaxWords)

	if _, err := s.store.UpdateChat(ctx, &store.UpdateChat{
		ID:             chatID,
		Summary:        &fullSummary,
		ContextSummary: &contextSummary,
		UpdatedTs:      time.Now().UnixMilli(),
	}); err != nil {
		return "", err
	}

	slog.Info("updated chat summary", "chat_id", chatID, "summary_length", len(fullSummary))
	return fullSummary, nil
}

// BuildContext assembles the bounded AI context for a chat turn: an optional
// synthetic system entry wrapping the condensed summary, then the most recent
// maxMessages messages in creation order (a sliding window over the tail of
// the history). Pure read. maxMessages of 0 uses the configured window.
func (s *Service) BuildContext(ctx context.Context, chat *store.Chat, includeSummary bool, maxMessages int) ([]ai.Message, error) {
	return s.buildContext(ctx, chat, includeSummary, maxMessages, nil)
}

func (s *Service) buildContext(ctx context.Context, chat *store.Chat, includeSummary bool, maxMessages int, beforeID *int64) ([]ai.Message, error) {
	if maxMessages <= 0 {
		maxMessages = s.maxContextMessages
	}

	var context []ai.Message
	if includeSummary && chat.ContextSummary != "" {
		context = append(context, ai.SystemPrompt("Previous conversation summary: "+chat.ContextSummary))
	}

	// Newest maxMessages rows, then restored to chronological order.
	recent, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{
		ChatID:    &chat.ID,
		BeforeID:  beforeID,
		Limit:     &maxMessages,
		OrderDesc: true,
	})
	if err != nil {
		return nil, err
	}
	for i := len(recent) - 1; i >= 0; i-- {
		context = append(context, ai.Message{Role: string(recent[i].Role), Content: recent[i].Content})
	}
	return context, nil
}

// FullHistory returns all messages of a chat in strict creation order.
// Used for export and inspection, not for AI prompting.
func (s *Service) FullHistory(ctx context.Context, chatID int32) ([]*store.ChatMessage, error) {
	return s.store.ListChatMessages(ctx, &store.FindChatMessage{ChatID: &chatID})
}

// RespondWithAI runs one chat turn: persist the user message, build the
// bounded context, call the provider, persist the assistant reply.
// A provider failure propagates while the user message stays persisted; a
// summary-refresh failure after the assistant append is logged only, since
// the reply is the primary result of this operation.
func (s *Service) RespondWithAI(ctx context.Context, chatID int32, userMessage string, useContext bool) (string, error) {
	chat, err := s.store.GetChat(ctx, &store.FindChat{ID: &chatID})
	if err != nil {
		return "", err
	}

	userMsg, err := s.AddMessage(ctx, chatID, store.MessageRoleUser, userMessage, false)
	if err != nil {
		return "", err
	}

	var promptContext []ai.Message
	if useContext {
		// Window over the messages preceding the fresh user message, so it
		// appears exactly once in the rendered prompt.
		promptContext, err = s.buildContext(ctx, chat, true, s.maxContextMessages, &userMsg.ID)
		if err != nil {
			return "", err
		}
	}
	promptContext = append(promptContext, ai.UserMessage(userMessage))

	response, err := s.client.Complete(ctx, RenderPrompt(promptContext))
	if err != nil {
		// The user's turn is never lost even when the reply fails.
		return "", err
	}

	if _, err := s.AddMessage(ctx, chatID, store.MessageRoleAssistant, response, true); err != nil {
		if ai.IsUnavailable(err) {
			slog.Warn("post-reply summary refresh failed", "chat_id", chatID, "error", err)
		} else {
			return "", err
		}
	}
	return response, nil
}

// SummarizeMessage generates and stores a short per-message summary.
// Failures are logged and reported as an empty summary; a missing message
// summary is never worth failing a request over.
func (s *Service) SummarizeMessage(ctx context.Context, messageID int64) (string, error) {
	messages, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{ID: &messageID})
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", store.ErrNotFound
	}

	text, err := s.policy.SummarizeNote(ctx, messages[0].Content, 50)
	if err != nil {
		slog.Error("failed to summarize message", "message_id", messageID, "error", err)
		return "", nil
	}
	if err := s.store.UpdateChatMessageSummary(ctx, messageID, text); err != nil {
		return "", err
	}
	return text, nil
}

// SearchChats finds the owner's chats whose title, summary, or any message
// content contains query, case-insensitive. Each chat appears once.
func (s *Service) SearchChats(ctx context.Context, creatorID int32, query string) ([]*store.Chat, error) {
	return s.store.ListChats(ctx, &store.FindChat{
		CreatorID: &creatorID,
		Search:    &query,
	})
}

// Statistics aggregates message counts by role, token totals, and chat
// timestamps. Pure read.
type Statistics struct {
	TotalMessages     int32  `json:"total_messages"`
	UserMessages      int32  `json:"user_messages"`
	AssistantMessages int32  `json:"assistant_messages"`
	TotalTokens       int64  `json:"total_tokens"`
	CreatedTs         int64  `json:"created_ts"`
	UpdatedTs         int64  `json:"updated_ts"`
	LastMessageTs     *int64 `json:"last_message_ts"`
}

func (s *Service) Statistics(ctx context.Context, chatID int32) (*Statistics, error) {
	chat, err := s.store.GetChat(ctx, &store.FindChat{ID: &chatID})
	if err != nil {
		return nil, err
	}
	stats, err := s.store.GetChatMessageStats(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		TotalMessages:     chat.MessageCount,
		UserMessages:      stats.UserMessages,
		AssistantMessages: stats.AssistantMessages,
		TotalTokens:       stats.TotalTokens,
		CreatedTs:         chat.CreatedTs,
		UpdatedTs:         chat.UpdatedTs,
		LastMessageTs:     chat.LastMessageTs,
	}, nil
}

// RenderPrompt flattens context messages into the provider prompt:
// "ROLE: content" lines with a trailing "ASSISTANT:" cue.
func RenderPrompt(messages []ai.Message) string {
	parts := []string{"You are a helpful AI assistant. Here is the conversation:\n"}
	for _, msg := range messages {
		parts = append(parts, fmt.Sprintf("%s: %s\n", strings.ToUpper(msg.Role), msg.Content))
	}
	parts = append(parts, "\nASSISTANT:")
	return strings.Join(parts, "\n")
}

func toAIMessages(messages []*store.ChatMessage) []ai.Message {
	result := make([]ai.Message, 0, len(messages))
	for _, msg := range messages {
		result = append(result, ai.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return result
}
