// Package export renders notes and chat transcripts to portable formats:
// JSON, CSV, standalone HTML (markdown-rendered), and Atom feeds.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/gorilla/feeds"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

type exportedNote struct {
	UID       string   `json:"uid"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Summary   string   `json:"summary,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedTs int64    `json:"created_ts"`
	UpdatedTs int64    `json:"updated_ts"`
}

// NotesJSON renders notes as an indented JSON array.
func NotesJSON(notes []*store.Note) ([]byte, error) {
	exported := make([]exportedNote, 0, len(notes))
	for _, note := range notes {
		e := exportedNote{
			UID:       note.UID,
			Title:     note.Title,
			Content:   note.Content,
			Tags:      note.Tags,
			CreatedTs: note.CreatedTs,
			UpdatedTs: note.UpdatedTs,
		}
		if note.Summary != nil {
			e.Summary = *note.Summary
		}
		exported = append(exported, e)
	}
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal notes")
	}
	return data, nil
}

// NotesCSV renders notes as CSV with a header row.
func NotesCSV(notes []*store.Note) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"uid", "title", "content", "summary", "created_ts", "updated_ts"}); err != nil {
		return nil, errors.Wrap(err, "failed to write csv header")
	}
	for _, note := range notes {
		summary := ""
		if note.Summary != nil {
			summary = *note.Summary
		}
		record := []string{
			note.UID,
			note.Title,
			note.Content,
			summary,
			strconv.FormatInt(note.CreatedTs, 10),
			strconv.FormatInt(note.UpdatedTs, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write csv record")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}

// NoteHTML renders one note's markdown content as a standalone HTML page.
func NoteHTML(note *store.Note) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(note.Content), &body); err != nil {
		return nil, errors.Wrap(err, "failed to render markdown")
	}
	title := html.EscapeString(note.Title)
	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n<h1>%s</h1>\n", title, title)
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// NotesFeed renders notes as an Atom feed, newest first as given.
func NotesFeed(baseURL, username string, notes []*store.Note) (string, error) {
	feed := &feeds.Feed{
		Title:   fmt.Sprintf("Notes of %s", username),
		Link:    &feeds.Link{Href: baseURL},
		Created: time.Now(),
	}
	for _, note := range notes {
		item := &feeds.Item{
			Id:      note.UID,
			Title:   note.Title,
			Link:    &feeds.Link{Href: fmt.Sprintf("%s/api/v1/notes/%s", baseURL, note.UID)},
			Created: time.UnixMilli(note.CreatedTs),
			Updated: time.UnixMilli(note.UpdatedTs),
		}
		if note.Summary != nil && *note.Summary != "" {
			item.Description = *note.Summary
		} else {
			item.Description = note.Content
		}
		feed.Items = append(feed.Items, item)
	}
	atom, err := feed.ToAtom()
	if err != nil {
		return "", errors.Wrap(err, "failed to render feed")
	}
	return atom, nil
}

// ChatTranscriptJSON renders a chat with its full message history.
func ChatTranscriptJSON(chat *store.Chat, messages []*store.ChatMessage) ([]byte, error) {
	type exportedMessage struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		Tokens    int32  `json:"tokens"`
		CreatedTs int64  `json:"created_ts"`
	}
	transcript := struct {
		UID       string            `json:"uid"`
		Title     string            `json:"title"`
		Summary   string            `json:"summary,omitempty"`
		CreatedTs int64             `json:"created_ts"`
		Messages  []exportedMessage `json:"messages"`
	}{
		UID:       chat.UID,
		Title:     chat.Title,
		Summary:   chat.Summary,
		CreatedTs: chat.CreatedTs,
	}
	for _, msg := range messages {
		transcript.Messages = append(transcript.Messages, exportedMessage{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Tokens:    msg.Tokens,
			CreatedTs: msg.CreatedTs,
		})
	}
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transcript")
	}
	return data, nil
}
