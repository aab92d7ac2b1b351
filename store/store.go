package store

import (
	"context"

	"github.com/elijahnzeli1/smartnote-backend/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate applies the latest schema when the database is uninitialized.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateUser(ctx context.Context, create *CreateUser) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	return s.driver.GetUser(ctx, find)
}

func (s *Store) CreateAccessToken(ctx context.Context, create *AccessToken) (*AccessToken, error) {
	return s.driver.CreateAccessToken(ctx, create)
}

func (s *Store) GetAccessToken(ctx context.Context, token string) (*AccessToken, error) {
	return s.driver.GetAccessToken(ctx, token)
}

func (s *Store) DeleteAccessToken(ctx context.Context, token string) error {
	return s.driver.DeleteAccessToken(ctx, token)
}

func (s *Store) CreateNote(ctx context.Context, create *Note) (*Note, error) {
	return s.driver.CreateNote(ctx, create)
}

func (s *Store) ListNotes(ctx context.Context, find *FindNote) ([]*Note, error) {
	return s.driver.ListNotes(ctx, find)
}

func (s *Store) GetNote(ctx context.Context, find *FindNote) (*Note, error) {
	return s.driver.GetNote(ctx, find)
}

func (s *Store) UpdateNote(ctx context.Context, update *UpdateNote) (*Note, error) {
	return s.driver.UpdateNote(ctx, update)
}

func (s *Store) DeleteNote(ctx context.Context, delete *DeleteNote) error {
	return s.driver.DeleteNote(ctx, delete)
}

func (s *Store) UpsertTag(ctx context.Context, upsert *UpsertTag) (*Tag, error) {
	return s.driver.UpsertTag(ctx, upsert)
}

func (s *Store) ListTags(ctx context.Context, find *FindTag) ([]*Tag, error) {
	return s.driver.ListTags(ctx, find)
}

func (s *Store) DeleteTag(ctx context.Context, delete *DeleteTag) error {
	return s.driver.DeleteTag(ctx, delete)
}

func (s *Store) SetNoteTags(ctx context.Context, noteID int32, tagIDs []int32) error {
	return s.driver.SetNoteTags(ctx, noteID, tagIDs)
}

func (s *Store) CreateChat(ctx context.Context, create *Chat) (*Chat, error) {
	return s.driver.CreateChat(ctx, create)
}

func (s *Store) ListChats(ctx context.Context, find *FindChat) ([]*Chat, error) {
	return s.driver.ListChats(ctx, find)
}

func (s *Store) GetChat(ctx context.Context, find *FindChat) (*Chat, error) {
	return s.driver.GetChat(ctx, find)
}

func (s *Store) UpdateChat(ctx context.Context, update *UpdateChat) (*Chat, error) {
	return s.driver.UpdateChat(ctx, update)
}

func (s *Store) DeleteChat(ctx context.Context, delete *DeleteChat) error {
	return s.driver.DeleteChat(ctx, delete)
}

func (s *Store) AppendChatMessage(ctx context.Context, create *CreateChatMessage) (*ChatMessage, *Chat, error) {
	return s.driver.AppendChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) UpdateChatMessageSummary(ctx context.Context, id int64, summary string) error {
	return s.driver.UpdateChatMessageSummary(ctx, id, summary)
}

func (s *Store) GetChatMessageStats(ctx context.Context, chatID int32) (*ChatMessageStats, error) {
	return s.driver.GetChatMessageStats(ctx, chatID)
}
