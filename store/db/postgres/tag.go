package postgres

import (
	"context"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

func (d *DB) UpsertTag(ctx context.Context, upsert *store.UpsertTag) (*store.Tag, error) {
	stmt := `
		INSERT INTO tag (creator_id, name, created_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (creator_id, name) DO UPDATE SET name = excluded.name
		RETURNING id, creator_id, name, created_ts
	`
	var tag store.Tag
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.CreatorID,
		upsert.Name,
		upsert.CreatedTs,
	).Scan(
		&tag.ID,
		&tag.CreatorID,
		&tag.Name,
		&tag.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert tag")
	}
	return &tag, nil
}

func (d *DB) ListTags(ctx context.Context, find *store.FindTag) ([]*store.Tag, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, "tag.id = "+placeholder(len(args)))
	}
	if find.CreatorID != nil {
		args = append(args, *find.CreatorID)
		where = append(where, "tag.creator_id = "+placeholder(len(args)))
	}
	if find.Name != nil {
		args = append(args, *find.Name)
		where = append(where, "tag.name = "+placeholder(len(args)))
	}
	if find.NoteID != nil {
		args = append(args, *find.NoteID)
		where = append(where, "EXISTS (SELECT 1 FROM note_tag WHERE note_tag.tag_id = tag.id AND note_tag.note_id = "+placeholder(len(args))+")")
	}

	query := "SELECT id, creator_id, name, created_ts FROM tag WHERE " + joinAnd(where) + " ORDER BY name ASC"
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	defer rows.Close()

	var tags []*store.Tag
	for rows.Next() {
		var tag store.Tag
		if err := rows.Scan(&tag.ID, &tag.CreatorID, &tag.Name, &tag.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan tag")
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate tags")
	}
	return tags, nil
}

func (d *DB) DeleteTag(ctx context.Context, delete *store.DeleteTag) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM tag WHERE id = $1", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete tag")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetNoteTags replaces the tag set attached to a note.
func (d *DB) SetNoteTags(ctx context.Context, noteID int32, tagIDs []int32) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM note_tag WHERE note_id = $1", noteID); err != nil {
		return errors.Wrap(err, "failed to clear note tags")
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO note_tag (note_id, tag_id) VALUES ($1, $2)", noteID, tagID); err != nil {
			return errors.Wrap(err, "failed to attach tag")
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit note tags")
}
