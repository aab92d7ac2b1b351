package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

func (d *DB) CreateNote(ctx context.Context, create *store.Note) (*store.Note, error) {
	stmt := `
		INSERT INTO note (uid, creator_id, title, content, summary, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.CreatorID,
		create.Title,
		create.Content,
		create.Summary,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create note")
	}
	return create, nil
}

func (d *DB) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "note.id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "note.uid = ?"), append(args, *find.UID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "note.creator_id = ?"), append(args, *find.CreatorID)
	}
	if find.Search != nil {
		where = append(where, "(note.title LIKE '%' || ? || '%' COLLATE NOCASE OR note.content LIKE '%' || ? || '%' COLLATE NOCASE)")
		args = append(args, *find.Search, *find.Search)
	}
	if find.TagName != nil {
		where = append(where, `EXISTS (
			SELECT 1 FROM note_tag
			JOIN tag ON tag.id = note_tag.tag_id
			WHERE note_tag.note_id = note.id AND tag.name = ?
		)`)
		args = append(args, *find.TagName)
	}

	query := `SELECT id, uid, creator_id, title, content, summary, created_ts, updated_ts
		FROM note
		WHERE ` + joinAnd(where) + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notes")
	}
	defer rows.Close()

	var notes []*store.Note
	for rows.Next() {
		var note store.Note
		var summary sql.NullString
		if err := rows.Scan(
			&note.ID,
			&note.UID,
			&note.CreatorID,
			&note.Title,
			&note.Content,
			&summary,
			&note.CreatedTs,
			&note.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan note")
		}
		if summary.Valid {
			note.Summary = &summary.String
		}
		notes = append(notes, &note)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate notes")
	}

	for _, note := range notes {
		tags, err := d.ListTags(ctx, &store.FindTag{NoteID: &note.ID})
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			note.Tags = append(note.Tags, tag.Name)
		}
	}
	return notes, nil
}

func (d *DB) GetNote(ctx context.Context, find *store.FindNote) (*store.Note, error) {
	notes, err := d.ListNotes(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, store.ErrNotFound
	}
	return notes[0], nil
}

func (d *DB) UpdateNote(ctx context.Context, update *store.UpdateNote) (*store.Note, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = ?"), append(args, *update.Title)
	}
	if update.Content != nil {
		set, args = append(set, "content = ?"), append(args, *update.Content)
	}
	if update.ClearSummary {
		set = append(set, "summary = NULL")
	} else if update.Summary != nil {
		set, args = append(set, "summary = ?"), append(args, *update.Summary)
	}
	set, args = append(set, "updated_ts = ?"), append(args, update.UpdatedTs)
	args = append(args, update.ID)

	stmt := "UPDATE note SET " + joinComma(set) + " WHERE id = ?"
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update note")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, store.ErrNotFound
	}

	return d.GetNote(ctx, &store.FindNote{ID: &update.ID})
}

func (d *DB) DeleteNote(ctx context.Context, delete *store.DeleteNote) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM note WHERE id = ?", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete note")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
