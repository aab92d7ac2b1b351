package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/elijahnzeli1/smartnote-backend/ai"
	"github.com/elijahnzeli1/smartnote-backend/ai/summary"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

type mockChatStore struct {
	chats    map[int32]*store.Chat
	messages []*store.ChatMessage
	nextID   int64

	appendErr    error
	listErr      error
	updateCalls  []*store.UpdateChat
	summaryCalls map[int64]string
}

func newMockChatStore() *mockChatStore {
	return &mockChatStore{
		chats:        map[int32]*store.Chat{},
		summaryCalls: map[int64]string{},
	}
}

func (m *mockChatStore) addChat(chat *store.Chat) *store.Chat {
	m.chats[chat.ID] = chat
	return chat
}

func (m *mockChatStore) CreateChat(_ context.Context, create *store.Chat) (*store.Chat, error) {
	create.ID = int32(len(m.chats) + 1)
	m.chats[create.ID] = create
	return create, nil
}

func (m *mockChatStore) GetChat(_ context.Context, find *store.FindChat) (*store.Chat, error) {
	if find.ID != nil {
		if chat, ok := m.chats[*find.ID]; ok {
			return chat, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockChatStore) ListChats(_ context.Context, find *store.FindChat) ([]*store.Chat, error) {
	var list []*store.Chat
	for _, chat := range m.chats {
		if find.Search != nil && !strings.Contains(strings.ToLower(chat.Title), strings.ToLower(*find.Search)) {
			continue
		}
		list = append(list, chat)
	}
	return list, nil
}

func (m *mockChatStore) UpdateChat(_ context.Context, update *store.UpdateChat) (*store.Chat, error) {
	m.updateCalls = append(m.updateCalls, update)
	chat, ok := m.chats[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Summary != nil {
		chat.Summary = *update.Summary
	}
	if update.ContextSummary != nil {
		chat.ContextSummary = *update.ContextSummary
	}
	return chat, nil
}

func (m *mockChatStore) DeleteChat(_ context.Context, del *store.DeleteChat) error {
	if _, ok := m.chats[del.ID]; !ok {
		return store.ErrNotFound
	}
	delete(m.chats, del.ID)
	return nil
}

func (m *mockChatStore) AppendChatMessage(_ context.Context, create *store.CreateChatMessage) (*store.ChatMessage, *store.Chat, error) {
	if m.appendErr != nil {
		return nil, nil, m.appendErr
	}
	chat, ok := m.chats[create.ChatID]
	if !ok {
		return nil, nil, store.ErrNotFound
	}
	m.nextID++
	message := &store.ChatMessage{
		ID:        m.nextID,
		ChatID:    create.ChatID,
		Role:      create.Role,
		Content:   create.Content,
		Tokens:    create.Tokens,
		CreatedTs: create.CreatedTs,
	}
	m.messages = append(m.messages, message)
	chat.MessageCount++
	chat.LastMessageTs = &message.CreatedTs
	return message, chat, nil
}

func (m *mockChatStore) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var list []*store.ChatMessage
	for _, msg := range m.messages {
		if find.ID != nil && msg.ID != *find.ID {
			continue
		}
		if find.ChatID != nil && msg.ChatID != *find.ChatID {
			continue
		}
		if find.BeforeID != nil && msg.ID >= *find.BeforeID {
			continue
		}
		list = append(list, msg)
	}
	if find.OrderDesc {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (m *mockChatStore) UpdateChatMessageSummary(_ context.Context, id int64, summary string) error {
	m.summaryCalls[id] = summary
	return nil
}

func (m *mockChatStore) GetChatMessageStats(_ context.Context, chatID int32) (*store.ChatMessageStats, error) {
	stats := &store.ChatMessageStats{}
	for _, msg := range m.messages {
		if msg.ChatID != chatID {
			continue
		}
		switch msg.Role {
		case store.MessageRoleUser:
			stats.UserMessages++
		case store.MessageRoleAssistant:
			stats.AssistantMessages++
		case store.MessageRoleSystem:
			stats.SystemMessages++
		}
		stats.TotalTokens += int64(msg.Tokens)
	}
	return stats, nil
}

type scriptedCompleter struct {
	responses []string
	err       error
	prompts   []string
}

func (c *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "ok", nil
	}
	response := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return response, nil
}

func newTestService(st *mockChatStore, completer ai.Completer) *Service {
	return NewService(st, completer, summary.NewPolicy(completer, nil), DefaultSummarizeThreshold, DefaultMaxContextMessages, nil)
}

func seedMessages(st *mockChatStore, chatID int32, count int) {
	for i := 0; i < count; i++ {
		role := store.MessageRoleUser
		if i%2 == 1 {
			role = store.MessageRoleAssistant
		}
		_, _, _ = st.AppendChatMessage(context.Background(), &store.CreateChatMessage{
			ChatID:    chatID,
			Role:      role,
			Content:   "message " + strings.Repeat("x", i),
			Tokens:    4,
			CreatedTs: int64(1000 + i),
		})
	}
}

func TestShouldSummarize(t *testing.T) {
	tests := []struct {
		count     int32
		threshold int
		want      bool
	}{
		{0, 10, false},
		{1, 10, false},
		{9, 10, false},
		{10, 10, true},
		{11, 10, false},
		{20, 10, true},
		{15, 5, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ShouldSummarize(tt.count, tt.threshold), "count=%d threshold=%d", tt.count, tt.threshold)
	}
}

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, int32(0), EstimateTokens(""))
	require.Equal(t, int32(0), EstimateTokens("abc"))
	require.Equal(t, int32(1), EstimateTokens("abcd"))
	require.Equal(t, int32(25), EstimateTokens(strings.Repeat("a", 100)))
}

func TestCreateChatDefaultTitle(t *testing.T) {
	st := newMockChatStore()
	svc := newTestService(st, &scriptedCompleter{})

	chat, err := svc.CreateChat(context.Background(), 1, "")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(chat.Title, "Chat "))
	require.NotEmpty(t, chat.UID)

	named, err := svc.CreateChat(context.Background(), 1, "Dinner plans")
	require.NoError(t, err)
	require.Equal(t, "Dinner plans", named.Title)
}

func TestAddMessageBelowThresholdSkipsSummary(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 8)
	_, err := svc.AddMessage(context.Background(), 1, store.MessageRoleUser, "ninth", true)
	require.NoError(t, err)
	require.Empty(t, completer.prompts)
	require.Empty(t, st.updateCalls)
}

func TestAddMessageAtThresholdRefreshesSummary(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{responses: []string{"the digest", "the condensed digest"}}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 9)
	msg, err := svc.AddMessage(context.Background(), 1, store.MessageRoleAssistant, "tenth", true)
	require.NoError(t, err)
	require.NotNil(t, msg)

	require.Len(t, st.updateCalls, 1)
	require.Equal(t, "the digest", *st.updateCalls[0].Summary)
	require.Equal(t, "the condensed digest", *st.updateCalls[0].ContextSummary)
	// First call summarizes the whole conversation, second condenses it.
	require.Len(t, completer.prompts, 2)
	require.Contains(t, completer.prompts[0], "Summarize this entire conversation")
	require.Contains(t, completer.prompts[1], "Create a very concise context summary")
}

func TestAddMessageSummaryFailureSurfacedMessageKept(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{err: ai.Unavailable("provider down", nil)}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 9)
	msg, err := svc.AddMessage(context.Background(), 1, store.MessageRoleUser, "tenth", true)
	require.Error(t, err)
	require.True(t, ai.IsUnavailable(err))
	require.NotNil(t, msg)
	// The append itself succeeded.
	require.Len(t, st.messages, 10)
}

func TestAddMessageWithoutAutoSummarize(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 9)
	_, err := svc.AddMessage(context.Background(), 1, store.MessageRoleUser, "tenth", false)
	require.NoError(t, err)
	require.Empty(t, completer.prompts)
}

func TestUpdateSummaryEmptyChat(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{}
	svc := newTestService(st, completer)

	text, err := svc.UpdateSummary(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, text)
	require.Empty(t, completer.prompts)
	require.Empty(t, st.updateCalls)
}

func TestBuildContextWindow(t *testing.T) {
	st := newMockChatStore()
	chat := st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	svc := newTestService(st, &scriptedCompleter{})

	seedMessages(st, 1, 30)
	window, err := svc.BuildContext(context.Background(), chat, false, 5)
	require.NoError(t, err)
	require.Len(t, window, 5)
	// The five most recent, in chronological order.
	require.Equal(t, st.messages[25].Content, window[0].Content)
	require.Equal(t, st.messages[29].Content, window[4].Content)
}

func TestBuildContextIncludesSummary(t *testing.T) {
	st := newMockChatStore()
	chat := st.addChat(&store.Chat{ID: 1, CreatorID: 1, ContextSummary: "we discussed pasta"})
	svc := newTestService(st, &scriptedCompleter{})

	seedMessages(st, 1, 3)
	window, err := svc.BuildContext(context.Background(), chat, true, 0)
	require.NoError(t, err)
	require.Len(t, window, 4)
	require.Equal(t, ai.RoleSystem, window[0].Role)
	require.Equal(t, "Previous conversation summary: we discussed pasta", window[0].Content)

	// Summary omitted on request, and when empty.
	window, err = svc.BuildContext(context.Background(), chat, false, 0)
	require.NoError(t, err)
	require.Len(t, window, 3)

	chat.ContextSummary = ""
	window, err = svc.BuildContext(context.Background(), chat, true, 0)
	require.NoError(t, err)
	require.Len(t, window, 3)
}

func TestRespondWithAI(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1, ContextSummary: "earlier context"})
	completer := &scriptedCompleter{responses: []string{"hello back"}}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 4)
	response, err := svc.RespondWithAI(context.Background(), 1, "hello there", true)
	require.NoError(t, err)
	require.Equal(t, "hello back", response)

	require.Len(t, st.messages, 6)
	require.Equal(t, store.MessageRoleUser, st.messages[4].Role)
	require.Equal(t, "hello there", st.messages[4].Content)
	require.Equal(t, store.MessageRoleAssistant, st.messages[5].Role)
	require.Equal(t, "hello back", st.messages[5].Content)

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	require.Contains(t, prompt, "You are a helpful AI assistant. Here is the conversation:")
	require.Contains(t, prompt, "SYSTEM: Previous conversation summary: earlier context")
	require.True(t, strings.HasSuffix(prompt, "\nASSISTANT:"))
	// The fresh user message appears exactly once.
	require.Equal(t, 1, strings.Count(prompt, "USER: hello there"))
}

func TestRespondWithAIProviderFailureKeepsUserMessage(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{err: ai.Unavailable("provider down", nil)}
	svc := newTestService(st, completer)

	_, err := svc.RespondWithAI(context.Background(), 1, "hello there", true)
	require.Error(t, err)
	require.True(t, ai.IsUnavailable(err))

	require.Len(t, st.messages, 1)
	require.Equal(t, store.MessageRoleUser, st.messages[0].Role)
}

func TestRespondWithAIUnknownChat(t *testing.T) {
	st := newMockChatStore()
	svc := newTestService(st, &scriptedCompleter{})

	_, err := svc.RespondWithAI(context.Background(), 99, "hello", true)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Empty(t, st.messages)
}

func TestRespondWithAIWithoutContext(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1, ContextSummary: "earlier context"})
	completer := &scriptedCompleter{responses: []string{"reply"}}
	svc := newTestService(st, completer)

	seedMessages(st, 1, 4)
	_, err := svc.RespondWithAI(context.Background(), 1, "fresh question", false)
	require.NoError(t, err)

	prompt := completer.prompts[0]
	require.NotContains(t, prompt, "earlier context")
	require.NotContains(t, prompt, st.messages[0].Content)
	require.Contains(t, prompt, "USER: fresh question")
}

func TestSummarizeMessage(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{responses: []string{"short form"}}
	svc := newTestService(st, completer)

	longContent := strings.Repeat("word ", 40)
	msg, _, err := st.AppendChatMessage(context.Background(), &store.CreateChatMessage{
		ChatID: 1, Role: store.MessageRoleUser, Content: longContent,
	})
	require.NoError(t, err)

	text, err := svc.SummarizeMessage(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Equal(t, "short form", text)
	require.Equal(t, "short form", st.summaryCalls[msg.ID])
}

func TestSummarizeMessageNotFound(t *testing.T) {
	st := newMockChatStore()
	svc := newTestService(st, &scriptedCompleter{})

	_, err := svc.SummarizeMessage(context.Background(), 42)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSummarizeMessageProviderFailureSwallowed(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1})
	completer := &scriptedCompleter{err: errors.New("boom")}
	svc := newTestService(st, completer)

	msg, _, err := st.AppendChatMessage(context.Background(), &store.CreateChatMessage{
		ChatID: 1, Role: store.MessageRoleUser, Content: strings.Repeat("word ", 40),
	})
	require.NoError(t, err)

	text, err := svc.SummarizeMessage(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Empty(t, text)
	require.Empty(t, st.summaryCalls)
}

func TestStatistics(t *testing.T) {
	st := newMockChatStore()
	st.addChat(&store.Chat{ID: 1, CreatorID: 1, CreatedTs: 100, UpdatedTs: 200})
	svc := newTestService(st, &scriptedCompleter{})

	seedMessages(st, 1, 5)
	stats, err := svc.Statistics(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int32(5), stats.TotalMessages)
	require.Equal(t, int32(3), stats.UserMessages)
	require.Equal(t, int32(2), stats.AssistantMessages)
	require.Equal(t, int64(20), stats.TotalTokens)
	require.NotNil(t, stats.LastMessageTs)
}
