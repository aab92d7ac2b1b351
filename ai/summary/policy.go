// Package summary decides when and how note content and chat history are
// condensed into short text.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elijahnzeli1/smartnote-backend/ai"
)

const (
	// DefaultNoteMaxWords bounds note summaries.
	DefaultNoteMaxWords = 150
	// DefaultContextMaxWords bounds the condensed context blob.
	DefaultContextMaxWords = 100

	// shortNoteWordCount is the word count at or below which a note is
	// returned verbatim instead of being sent to the provider.
	shortNoteWordCount = 20

	// contextFallbackChars is the character budget of the deterministic
	// truncation used when condensing fails.
	contextFallbackChars = 500
)

// SummaryRecorder receives summary telemetry. Implemented by
// internal/metrics.Exporter; may be nil.
type SummaryRecorder interface {
	RecordSummary(kind, source string)
}

// Policy builds summarization prompts and invokes the completion client.
type Policy struct {
	client   ai.Completer
	recorder SummaryRecorder
}

// NewPolicy creates a summarization policy around client. recorder may be nil.
func NewPolicy(client ai.Completer, recorder SummaryRecorder) *Policy {
	return &Policy{client: client, recorder: recorder}
}

// SummarizeNote condenses note content to roughly maxWords words.
// Content of 20 words or fewer short-circuits: it is returned verbatim,
// truncated to maxWords*5 bytes, without a provider call. Empty content and
// exhausted retries surface as *ai.UnavailableError.
func (p *Policy) SummarizeNote(ctx context.Context, content string, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = DefaultNoteMaxWords
	}
	if strings.TrimSpace(content) == "" {
		return "", ai.Unavailable("cannot summarize empty content", nil)
	}

	if len(strings.Fields(content)) <= shortNoteWordCount {
		// Approximate character budget for the word limit.
		if limit := maxWords * 5; len(content) > limit {
			content = content[:limit]
		}
		p.record("note", "original")
		return content, nil
	}

	prompt := fmt.Sprintf(`Summarize the following note in approximately %d words or less.
Make it concise, clear, and capture the key points. Do not include any preamble or
explanation - just provide the summary.

Note content:
%s

Summary:`, maxWords, content)

	text, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	p.record("note", "ai")
	return strings.TrimSpace(text), nil
}

// SummarizeChat digests an entire conversation into a 200-300 word summary.
// An empty conversation yields an empty summary and no error.
func (p *Policy) SummarizeChat(ctx context.Context, messages []ai.Message) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}

	prompt := fmt.Sprintf(`Summarize this entire conversation between a user and an AI assistant.
Capture the key topics discussed, important information shared, and the overall context.
Keep it concise but informative (around 200-300 words).

Conversation:
%s

Summary:`, ConversationText(messages))

	text, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	p.record("chat", "ai")
	return strings.TrimSpace(text), nil
}

// CondenseContext compresses a full conversation summary into a short blob
// reused as a system prompt prefix. On provider failure it silently degrades
// to a 500-byte truncation of fullSummary; losing fidelity here beats
// blocking the conversation.
func (p *Policy) CondenseContext(ctx context.Context, fullSummary string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultContextMaxWords
	}

	prompt := fmt.Sprintf(`Create a very concise context summary (max %d words) from this conversation summary.
Focus on key facts, topics, and user preferences that would be useful for continuing the conversation.

Full Summary:
%s

Concise Context:`, maxWords, fullSummary)

	text, err := p.client.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("context condensation failed, truncating full summary", "error", err)
		p.record("context", "fallback")
		if len(fullSummary) > contextFallbackChars {
			return fullSummary[:contextFallbackChars]
		}
		return fullSummary
	}
	p.record("context", "ai")
	return strings.TrimSpace(text)
}

// ConversationText renders messages as "ROLE: content" blocks separated by
// blank lines.
func ConversationText(messages []ai.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}
	return strings.Join(lines, "\n\n")
}

func (p *Policy) record(kind, source string) {
	if p.recorder != nil {
		p.recorder.RecordSummary(kind, source)
	}
}
