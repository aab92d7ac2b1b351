package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *CreateUser) (*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	CreateAccessToken(ctx context.Context, create *AccessToken) (*AccessToken, error)
	GetAccessToken(ctx context.Context, token string) (*AccessToken, error)
	DeleteAccessToken(ctx context.Context, token string) error

	// Note model related methods.
	CreateNote(ctx context.Context, create *Note) (*Note, error)
	ListNotes(ctx context.Context, find *FindNote) ([]*Note, error)
	GetNote(ctx context.Context, find *FindNote) (*Note, error)
	UpdateNote(ctx context.Context, update *UpdateNote) (*Note, error)
	DeleteNote(ctx context.Context, delete *DeleteNote) error

	// Tag model related methods.
	UpsertTag(ctx context.Context, upsert *UpsertTag) (*Tag, error)
	ListTags(ctx context.Context, find *FindTag) ([]*Tag, error)
	DeleteTag(ctx context.Context, delete *DeleteTag) error
	SetNoteTags(ctx context.Context, noteID int32, tagIDs []int32) error

	// Chat model related methods.
	CreateChat(ctx context.Context, create *Chat) (*Chat, error)
	ListChats(ctx context.Context, find *FindChat) ([]*Chat, error)
	GetChat(ctx context.Context, find *FindChat) (*Chat, error)
	UpdateChat(ctx context.Context, update *UpdateChat) (*Chat, error)
	DeleteChat(ctx context.Context, delete *DeleteChat) error

	// ChatMessage model related methods.
	// AppendChatMessage atomically inserts the message, increments the
	// owning chat's message_count, and advances last_message_ts. It returns
	// the created message and the chat state after the append.
	AppendChatMessage(ctx context.Context, create *CreateChatMessage) (*ChatMessage, *Chat, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	UpdateChatMessageSummary(ctx context.Context, id int64, summary string) error
	GetChatMessageStats(ctx context.Context, chatID int32) (*ChatMessageStats, error)
}
