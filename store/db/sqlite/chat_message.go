package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

// AppendChatMessage inserts the message and updates the owning chat's
// counters in one transaction, so message_count can never drift from the
// stored rows.
func (d *DB) AppendChatMessage(ctx context.Context, create *store.CreateChatMessage) (*store.ChatMessage, *store.Chat, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	message := &store.ChatMessage{
		ChatID:    create.ChatID,
		Role:      create.Role,
		Content:   create.Content,
		Tokens:    create.Tokens,
		CreatedTs: create.CreatedTs,
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO chat_message (chat_id, role, content, tokens, created_ts)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`,
		create.ChatID,
		create.Role,
		create.Content,
		create.Tokens,
		create.CreatedTs,
	).Scan(&message.ID); err != nil {
		return nil, nil, errors.Wrap(err, "failed to insert chat message")
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE chat
		SET message_count = message_count + 1, last_message_ts = ?, updated_ts = ?
		WHERE id = ?
		RETURNING `+chatFields,
		create.CreatedTs,
		create.CreatedTs,
		create.ChatID,
	)
	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, store.ErrNotFound
		}
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to commit chat message")
	}
	return message, chat, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.ChatID != nil {
		where, args = append(where, "chat_id = ?"), append(args, *find.ChatID)
	}
	if find.Role != nil {
		where, args = append(where, "role = ?"), append(args, *find.Role)
	}
	if find.BeforeID != nil {
		where, args = append(where, "id < ?"), append(args, *find.BeforeID)
	}

	order := "created_ts ASC, id ASC"
	if find.OrderDesc {
		order = "created_ts DESC, id DESC"
	}
	query := `SELECT id, chat_id, role, content, summary, tokens, created_ts
		FROM chat_message
		WHERE ` + joinAnd(where) + `
		ORDER BY ` + order
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}
	defer rows.Close()

	var messages []*store.ChatMessage
	for rows.Next() {
		var message store.ChatMessage
		var summary sql.NullString
		if err := rows.Scan(
			&message.ID,
			&message.ChatID,
			&message.Role,
			&message.Content,
			&summary,
			&message.Tokens,
			&message.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}
		if summary.Valid {
			message.Summary = &summary.String
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat messages")
	}
	return messages, nil
}

func (d *DB) UpdateChatMessageSummary(ctx context.Context, id int64, summary string) error {
	result, err := d.db.ExecContext(ctx, "UPDATE chat_message SET summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return errors.Wrap(err, "failed to update chat message summary")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) GetChatMessageStats(ctx context.Context, chatID int32) (*store.ChatMessageStats, error) {
	var stats store.ChatMessageStats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN role = 'user' THEN 1 END),
			COUNT(CASE WHEN role = 'assistant' THEN 1 END),
			COUNT(CASE WHEN role = 'system' THEN 1 END),
			COALESCE(SUM(tokens), 0)
		FROM chat_message
		WHERE chat_id = ?
	`, chatID).Scan(
		&stats.UserMessages,
		&stats.AssistantMessages,
		&stats.SystemMessages,
		&stats.TotalTokens,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chat message stats")
	}
	return &stats, nil
}
