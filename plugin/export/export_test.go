package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

func sampleNotes() []*store.Note {
	summary := "short form"
	return []*store.Note{
		{UID: "n1", Title: "First", Content: "# Heading\n\nbody text", Summary: &summary, Tags: []string{"a"}, CreatedTs: 1000, UpdatedTs: 2000},
		{UID: "n2", Title: "Second", Content: "plain, with \"quotes\"", CreatedTs: 3000, UpdatedTs: 3000},
	}
}

func TestNotesJSON(t *testing.T) {
	data, err := NotesJSON(sampleNotes())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "First", decoded[0]["title"])
	require.Equal(t, "short form", decoded[0]["summary"])
	// Empty summary is omitted entirely.
	_, ok := decoded[1]["summary"]
	require.False(t, ok)
}

func TestNotesCSV(t *testing.T) {
	data, err := NotesCSV(sampleNotes())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"uid", "title", "content", "summary", "created_ts", "updated_ts"}, records[0])
	require.Equal(t, "plain, with \"quotes\"", records[2][2])
}

func TestNoteHTML(t *testing.T) {
	data, err := NoteHTML(sampleNotes()[0])
	require.NoError(t, err)
	html := string(data)
	require.Contains(t, html, "<title>First</title>")
	require.Contains(t, html, "<h1>First</h1>")
	// Markdown heading rendered below the page title.
	require.Contains(t, html, "Heading</h1>")
	require.Contains(t, html, "<p>body text</p>")
}

func TestNoteHTMLEscapesTitle(t *testing.T) {
	note := &store.Note{Title: `<script>alert("x")</script>`, Content: "body"}
	data, err := NoteHTML(note)
	require.NoError(t, err)
	html := string(data)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
}

func TestNotesFeed(t *testing.T) {
	atom, err := NotesFeed("http://localhost:8081", "alice", sampleNotes())
	require.NoError(t, err)
	require.Contains(t, atom, "Notes of alice")
	require.Contains(t, atom, "First")
	// Summary preferred over content for the entry body.
	require.Contains(t, atom, "short form")
	require.Contains(t, atom, "/api/v1/notes/n1")
}

func TestChatTranscriptJSON(t *testing.T) {
	chat := &store.Chat{UID: "c1", Title: "Dinner", Summary: "we picked pasta", CreatedTs: 1000}
	messages := []*store.ChatMessage{
		{Role: store.MessageRoleUser, Content: "what should we eat", Tokens: 4, CreatedTs: 1001},
		{Role: store.MessageRoleAssistant, Content: "pasta", Tokens: 1, CreatedTs: 1002},
	}

	data, err := ChatTranscriptJSON(chat, messages)
	require.NoError(t, err)

	var decoded struct {
		UID      string `json:"uid"`
		Summary  string `json:"summary"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "c1", decoded.UID)
	require.Equal(t, "we picked pasta", decoded.Summary)
	require.Len(t, decoded.Messages, 2)
	require.Equal(t, "assistant", decoded.Messages[1].Role)
}
