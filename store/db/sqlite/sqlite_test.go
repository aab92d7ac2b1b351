package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elijahnzeli1/smartnote-backend/internal/profile"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()
	driver, err := NewDB(&profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "smartnote_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = driver.Close() })

	require.NoError(t, driver.Migrate(context.Background()))
	return driver
}

func createTestUser(t *testing.T, driver store.Driver) *store.User {
	t.Helper()
	user, err := driver.CreateUser(context.Background(), &store.CreateUser{
		Username:     "alice",
		PasswordHash: "hash",
		CreatedTs:    1,
	})
	require.NoError(t, err)
	return user
}

func TestNoteCRUD(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	note, err := driver.CreateNote(ctx, &store.Note{
		UID:       "note-1",
		CreatorID: user.ID,
		Title:     "Groceries",
		Content:   "milk and eggs",
		CreatedTs: 10,
		UpdatedTs: 10,
	})
	require.NoError(t, err)
	require.NotZero(t, note.ID)
	assert.Nil(t, note.Summary)

	summary := "a summary"
	updated, err := driver.UpdateNote(ctx, &store.UpdateNote{
		ID:        note.ID,
		Summary:   &summary,
		UpdatedTs: 11,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Summary)
	assert.Equal(t, "a summary", *updated.Summary)

	cleared, err := driver.UpdateNote(ctx, &store.UpdateNote{
		ID:           note.ID,
		ClearSummary: true,
		UpdatedTs:    12,
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Summary)

	require.NoError(t, driver.DeleteNote(ctx, &store.DeleteNote{ID: note.ID}))
	_, err = driver.GetNote(ctx, &store.FindNote{ID: &note.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestNoteSearchAndTags(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	note, err := driver.CreateNote(ctx, &store.Note{
		UID: "note-1", CreatorID: user.ID,
		Title: "Trip Planning", Content: "Visit Kyoto in April",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)
	_, err = driver.CreateNote(ctx, &store.Note{
		UID: "note-2", CreatorID: user.ID,
		Title: "Reading list", Content: "books to read",
		CreatedTs: 11, UpdatedTs: 11,
	})
	require.NoError(t, err)

	search := "kyoto"
	found, err := driver.ListNotes(ctx, &store.FindNote{CreatorID: &user.ID, Search: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, note.ID, found[0].ID)

	tag, err := driver.UpsertTag(ctx, &store.UpsertTag{CreatorID: user.ID, Name: "travel", CreatedTs: 10})
	require.NoError(t, err)
	// Upsert of the same name is idempotent per owner.
	again, err := driver.UpsertTag(ctx, &store.UpsertTag{CreatorID: user.ID, Name: "travel", CreatedTs: 20})
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)

	require.NoError(t, driver.SetNoteTags(ctx, note.ID, []int32{tag.ID}))

	tagName := "travel"
	tagged, err := driver.ListNotes(ctx, &store.FindNote{CreatorID: &user.ID, TagName: &tagName})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, []string{"travel"}, tagged[0].Tags)

	// Deleting the tag detaches it from the note via cascade.
	require.NoError(t, driver.DeleteTag(ctx, &store.DeleteTag{ID: tag.ID}))
	detached, err := driver.GetNote(ctx, &store.FindNote{ID: &note.ID})
	require.NoError(t, err)
	assert.Empty(t, detached.Tags)
	assert.ErrorIs(t, driver.DeleteTag(ctx, &store.DeleteTag{ID: tag.ID}), store.ErrNotFound)
}

func TestAppendChatMessageMaintainsCounters(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	chat, err := driver.CreateChat(ctx, &store.Chat{
		UID: "chat-1", CreatorID: user.ID, Title: "First chat",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, chat.MessageCount)
	assert.Nil(t, chat.LastMessageTs)

	var lastTs int64
	for i := 1; i <= 5; i++ {
		lastTs = int64(100 + i)
		_, updated, err := driver.AppendChatMessage(ctx, &store.CreateChatMessage{
			ChatID:    chat.ID,
			Role:      store.MessageRoleUser,
			Content:   "hello",
			Tokens:    1,
			CreatedTs: lastTs,
		})
		require.NoError(t, err)
		assert.EqualValues(t, i, updated.MessageCount)
		require.NotNil(t, updated.LastMessageTs)
		assert.Equal(t, lastTs, *updated.LastMessageTs)
	}

	messages, err := driver.ListChatMessages(ctx, &store.FindChatMessage{ChatID: &chat.ID})
	require.NoError(t, err)
	assert.Len(t, messages, 5)
}

func TestAppendChatMessageUnknownChat(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)

	_, _, err := driver.AppendChatMessage(ctx, &store.CreateChatMessage{
		ChatID: 999, Role: store.MessageRoleUser, Content: "hello", CreatedTs: 1,
	})
	assert.Error(t, err)
}

func TestChatSearchDeduplicates(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	chat, err := driver.CreateChat(ctx, &store.Chat{
		UID: "chat-1", CreatorID: user.ID, Title: "Cooking",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)

	// Two messages matching the same query must not duplicate the chat.
	for i, content := range []string{"how to make pasta", "pasta with tomatoes"} {
		_, _, err := driver.AppendChatMessage(ctx, &store.CreateChatMessage{
			ChatID: chat.ID, Role: store.MessageRoleUser, Content: content, CreatedTs: int64(20 + i),
		})
		require.NoError(t, err)
	}

	search := "PASTA"
	found, err := driver.ListChats(ctx, &store.FindChat{CreatorID: &user.ID, Search: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, chat.ID, found[0].ID)
}

func TestChatMessageOrderingAndWindow(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	chat, err := driver.CreateChat(ctx, &store.Chat{
		UID: "chat-1", CreatorID: user.ID, Title: "Ordered",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)

	contents := []string{"first", "second", "third", "fourth"}
	for i, content := range contents {
		_, _, err := driver.AppendChatMessage(ctx, &store.CreateChatMessage{
			ChatID: chat.ID, Role: store.MessageRoleUser, Content: content, CreatedTs: int64(100 + i),
		})
		require.NoError(t, err)
	}

	ascending, err := driver.ListChatMessages(ctx, &store.FindChatMessage{ChatID: &chat.ID})
	require.NoError(t, err)
	require.Len(t, ascending, 4)
	for i, msg := range ascending {
		assert.Equal(t, contents[i], msg.Content)
	}

	limit := 2
	newest, err := driver.ListChatMessages(ctx, &store.FindChatMessage{
		ChatID: &chat.ID, Limit: &limit, OrderDesc: true,
	})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "fourth", newest[0].Content)
	assert.Equal(t, "third", newest[1].Content)
}

func TestGetChatMessageStats(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	chat, err := driver.CreateChat(ctx, &store.Chat{
		UID: "chat-1", CreatorID: user.ID, Title: "Stats",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)

	appends := []struct {
		role   store.MessageRole
		tokens int32
	}{
		{store.MessageRoleUser, 3},
		{store.MessageRoleAssistant, 7},
		{store.MessageRoleUser, 2},
	}
	for i, a := range appends {
		_, _, err := driver.AppendChatMessage(ctx, &store.CreateChatMessage{
			ChatID: chat.ID, Role: a.role, Content: "x", Tokens: a.tokens, CreatedTs: int64(50 + i),
		})
		require.NoError(t, err)
	}

	stats, err := driver.GetChatMessageStats(ctx, chat.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.UserMessages)
	assert.EqualValues(t, 1, stats.AssistantMessages)
	assert.EqualValues(t, 0, stats.SystemMessages)
	assert.EqualValues(t, 12, stats.TotalTokens)
}

func TestDeleteChatCascadesMessages(t *testing.T) {
	ctx := context.Background()
	driver := newTestDriver(t)
	user := createTestUser(t, driver)

	chat, err := driver.CreateChat(ctx, &store.Chat{
		UID: "chat-1", CreatorID: user.ID, Title: "Doomed",
		CreatedTs: 10, UpdatedTs: 10,
	})
	require.NoError(t, err)
	_, _, err = driver.AppendChatMessage(ctx, &store.CreateChatMessage{
		ChatID: chat.ID, Role: store.MessageRoleUser, Content: "bye", CreatedTs: 11,
	})
	require.NoError(t, err)

	require.NoError(t, driver.DeleteChat(ctx, &store.DeleteChat{ID: chat.ID}))

	messages, err := driver.ListChatMessages(ctx, &store.FindChatMessage{ChatID: &chat.ID})
	require.NoError(t, err)
	assert.Empty(t, messages)
}
