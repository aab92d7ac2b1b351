// Package note implements the note lifecycle: create and update with
// optional AI summarization, tag maintenance, and search.
package note

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/elijahnzeli1/smartnote-backend/ai"
	"github.com/elijahnzeli1/smartnote-backend/ai/summary"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

// Store defines the persistence surface the note service needs.
// Satisfied by *store.Store; tests substitute a mock.
type Store interface {
	CreateNote(ctx context.Context, create *store.Note) (*store.Note, error)
	GetNote(ctx context.Context, find *store.FindNote) (*store.Note, error)
	ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error)
	UpdateNote(ctx context.Context, update *store.UpdateNote) (*store.Note, error)
	DeleteNote(ctx context.Context, delete *store.DeleteNote) error
	UpsertTag(ctx context.Context, upsert *store.UpsertTag) (*store.Tag, error)
	ListTags(ctx context.Context, find *store.FindTag) ([]*store.Tag, error)
	DeleteTag(ctx context.Context, delete *store.DeleteTag) error
	SetNoteTags(ctx context.Context, noteID int32, tagIDs []int32) error
}

// Service manages note lifecycle and tags.
type Service struct {
	store  Store
	policy *summary.Policy
}

func NewService(st Store, policy *summary.Policy) *Service {
	return &Service{store: st, policy: policy}
}

// CreateNote persists a note and its tags. With autoSummarize set, a
// summary is generated best-effort: a provider failure is logged and the
// note is returned without one.
func (s *Service) CreateNote(ctx context.Context, creatorID int32, title, content string, tags []string, autoSummarize bool) (*store.Note, error) {
	now := time.Now().UnixMilli()
	note, err := s.store.CreateNote(ctx, &store.Note{
		UID:       shortuuid.New(),
		CreatorID: creatorID,
		Title:     title,
		Content:   content,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, err
	}

	if len(tags) > 0 {
		if err := s.setTags(ctx, note, tags); err != nil {
			return nil, err
		}
	}

	if autoSummarize && content != "" {
		text, err := s.policy.SummarizeNote(ctx, content, summary.DefaultNoteMaxWords)
		if err != nil {
			slog.Warn("note created without summary", "note_id", note.ID, "error", err)
			return note, nil
		}
		note, err = s.store.UpdateNote(ctx, &store.UpdateNote{
			ID:        note.ID,
			Summary:   &text,
			UpdatedTs: now,
		})
		if err != nil {
			return nil, err
		}
		note.Tags = tags
	}
	return note, nil
}

// UpdateNote applies partial changes. A content change invalidates the
// stored summary: the note carries no summary until one is regenerated.
// A nil tags slice leaves tags untouched; an empty one clears them.
func (s *Service) UpdateNote(ctx context.Context, id int32, title, content *string, tags []string) (*store.Note, error) {
	current, err := s.store.GetNote(ctx, &store.FindNote{ID: &id})
	if err != nil {
		return nil, err
	}

	update := &store.UpdateNote{
		ID:        id,
		Title:     title,
		Content:   content,
		UpdatedTs: time.Now().UnixMilli(),
	}
	if content != nil && *content != current.Content {
		update.ClearSummary = true
	}
	note, err := s.store.UpdateNote(ctx, update)
	if err != nil {
		return nil, err
	}

	if tags != nil {
		if err := s.setTags(ctx, note, tags); err != nil {
			return nil, err
		}
		note.Tags = tags
	}
	return note, nil
}

// Summarize generates and stores a summary for an existing note. Unlike
// the create-time path this surfaces provider failures to the caller.
func (s *Service) Summarize(ctx context.Context, id int32, maxWords int) (*store.Note, error) {
	note, err := s.store.GetNote(ctx, &store.FindNote{ID: &id})
	if err != nil {
		return nil, err
	}
	if maxWords <= 0 {
		maxWords = summary.DefaultNoteMaxWords
	}

	text, err := s.policy.SummarizeNote(ctx, note.Content, maxWords)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateNote(ctx, &store.UpdateNote{
		ID:        id,
		Summary:   &text,
		UpdatedTs: time.Now().UnixMilli(),
	})
}

// SummarizeExtractive stores a deterministic first-N-words summary without
// touching the provider. Never fails on AI grounds.
func (s *Service) SummarizeExtractive(ctx context.Context, id int32, maxWords int) (*store.Note, error) {
	note, err := s.store.GetNote(ctx, &store.FindNote{ID: &id})
	if err != nil {
		return nil, err
	}
	if maxWords <= 0 {
		maxWords = summary.DefaultNoteMaxWords
	}
	text := ai.ExtractiveSummary(note.Content, maxWords)
	return s.store.UpdateNote(ctx, &store.UpdateNote{
		ID:        id,
		Summary:   &text,
		UpdatedTs: time.Now().UnixMilli(),
	})
}

func (s *Service) GetNote(ctx context.Context, find *store.FindNote) (*store.Note, error) {
	return s.store.GetNote(ctx, find)
}

func (s *Service) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	return s.store.ListNotes(ctx, find)
}

// SearchNotes finds the owner's notes whose title or content contains
// query, case-insensitive, optionally restricted to a tag.
func (s *Service) SearchNotes(ctx context.Context, creatorID int32, query string, tagName *string) ([]*store.Note, error) {
	return s.store.ListNotes(ctx, &store.FindNote{
		CreatorID: &creatorID,
		Search:    &query,
		TagName:   tagName,
	})
}

func (s *Service) DeleteNote(ctx context.Context, id int32) error {
	return s.store.DeleteNote(ctx, &store.DeleteNote{ID: id})
}

func (s *Service) ListTags(ctx context.Context, creatorID int32) ([]*store.Tag, error) {
	return s.store.ListTags(ctx, &store.FindTag{CreatorID: &creatorID})
}

// DeleteTag removes the owner's tag by name, detaching it from all notes.
func (s *Service) DeleteTag(ctx context.Context, creatorID int32, name string) error {
	tags, err := s.store.ListTags(ctx, &store.FindTag{CreatorID: &creatorID, Name: &name})
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return store.ErrNotFound
	}
	return s.store.DeleteTag(ctx, &store.DeleteTag{ID: tags[0].ID})
}

// setTags upserts each name and rebinds the note's tag set.
func (s *Service) setTags(ctx context.Context, note *store.Note, names []string) error {
	now := time.Now().UnixMilli()
	tagIDs := make([]int32, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := s.store.UpsertTag(ctx, &store.UpsertTag{
			CreatorID: note.CreatorID,
			Name:      name,
			CreatedTs: now,
		})
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.store.SetNoteTags(ctx, note.ID, tagIDs); err != nil {
		return err
	}
	note.Tags = names
	return nil
}
