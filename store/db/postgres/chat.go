package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

const chatFields = "id, uid, creator_id, title, summary, context_summary, message_count, last_message_ts, created_ts, updated_ts"

func (d *DB) CreateChat(ctx context.Context, create *store.Chat) (*store.Chat, error) {
	stmt := `
		INSERT INTO chat (uid, creator_id, title, summary, context_summary, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.CreatorID,
		create.Title,
		create.Summary,
		create.ContextSummary,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create chat")
	}
	return create, nil
}

func (d *DB) ListChats(ctx context.Context, find *store.FindChat) ([]*store.Chat, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, "chat.id = "+placeholder(len(args)))
	}
	if find.UID != nil {
		args = append(args, *find.UID)
		where = append(where, "chat.uid = "+placeholder(len(args)))
	}
	if find.CreatorID != nil {
		args = append(args, *find.CreatorID)
		where = append(where, "chat.creator_id = "+placeholder(len(args)))
	}
	if find.Search != nil {
		args = append(args, *find.Search)
		p := placeholder(len(args))
		// EXISTS keeps a chat matching on several messages to one row.
		where = append(where, `(
			chat.title ILIKE '%' || `+p+` || '%'
			OR chat.summary ILIKE '%' || `+p+` || '%'
			OR EXISTS (
				SELECT 1 FROM chat_message
				WHERE chat_message.chat_id = chat.id
					AND chat_message.content ILIKE '%' || `+p+` || '%'
			)
		)`)
	}

	query := "SELECT " + chatFields + " FROM chat WHERE " + joinAnd(where) + " ORDER BY created_ts DESC, id DESC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chats")
	}
	defer rows.Close()

	var chats []*store.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chats")
	}
	return chats, nil
}

func (d *DB) GetChat(ctx context.Context, find *store.FindChat) (*store.Chat, error) {
	chats, err := d.ListChats(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, store.ErrNotFound
	}
	return chats[0], nil
}

func (d *DB) UpdateChat(ctx context.Context, update *store.UpdateChat) (*store.Chat, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		args = append(args, *update.Title)
		set = append(set, "title = "+placeholder(len(args)))
	}
	if update.Summary != nil {
		args = append(args, *update.Summary)
		set = append(set, "summary = "+placeholder(len(args)))
	}
	if update.ContextSummary != nil {
		args = append(args, *update.ContextSummary)
		set = append(set, "context_summary = "+placeholder(len(args)))
	}
	args = append(args, update.UpdatedTs)
	set = append(set, "updated_ts = "+placeholder(len(args)))
	args = append(args, update.ID)

	stmt := "UPDATE chat SET " + joinComma(set) + " WHERE id = " + placeholder(len(args))
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update chat")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}

	return d.GetChat(ctx, &store.FindChat{ID: &update.ID})
}

func (d *DB) DeleteChat(ctx context.Context, delete *store.DeleteChat) error {
	// chat_message rows cascade.
	result, err := d.db.ExecContext(ctx, "DELETE FROM chat WHERE id = $1", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete chat")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*store.Chat, error) {
	var chat store.Chat
	var lastMessageTs sql.NullInt64
	if err := row.Scan(
		&chat.ID,
		&chat.UID,
		&chat.CreatorID,
		&chat.Title,
		&chat.Summary,
		&chat.ContextSummary,
		&chat.MessageCount,
		&lastMessageTs,
		&chat.CreatedTs,
		&chat.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan chat")
	}
	if lastMessageTs.Valid {
		chat.LastMessageTs = &lastMessageTs.Int64
	}
	return &chat, nil
}
