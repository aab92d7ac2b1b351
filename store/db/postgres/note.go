package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

func (d *DB) CreateNote(ctx context.Context, create *store.Note) (*store.Note, error) {
	stmt := `
		INSERT INTO note (uid, creator_id, title, content, summary, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
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
		args = append(args, *find.ID)
		where = append(where, "note.id = "+placeholder(len(args)))
	}
	if find.UID != nil {
		args = append(args, *find.UID)
		where = append(where, "note.uid = "+placeholder(len(args)))
	}
	if find.CreatorID != nil {
		args = append(args, *find.CreatorID)
		where = append(where, "note.creator_id = "+placeholder(len(args)))
	}
	if find.Search != nil {
		args = append(args, *find.Search)
		p := placeholder(len(args))
		where = append(where, "(note.title ILIKE '%' || "+p+" || '%' OR note.content ILIKE '%' || "+p+" || '%')")
	}
	if find.TagName != nil {
		args = append(args, *find.TagName)
		where = append(where, `EXISTS (
			SELECT 1 FROM note_tag
			JOIN tag ON tag.id = note_tag.tag_id
			WHERE note_tag.note_id = note.id AND tag.name = `+placeholder(len(args))+`
		)`)
	}

	query := `SELECT id, uid, creator_id, title, content, summary, created_ts, updated_ts
		FROM note
		WHERE ` + joinAnd(where) + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += " LIMIT " + placeholder(len(args))
		if find.Offset != nil {
			args = append(args, *find.Offset)
			query += " OFFSET " + placeholder(len(args))
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
		args = append(args, *update.Title)
		set = append(set, "title = "+placeholder(len(args)))
	}
	if update.Content != nil {
		args = append(args, *update.Content)
		set = append(set, "content = "+placeholder(len(args)))
	}
	if update.ClearSummary {
		set = append(set, "summary = NULL")
	} else if update.Summary != nil {
		args = append(args, *update.Summary)
		set = append(set, "summary = "+placeholder(len(args)))
	}
	args = append(args, update.UpdatedTs)
	set = append(set, "updated_ts = "+placeholder(len(args)))
	args = append(args, update.ID)

	stmt := "UPDATE note SET " + joinComma(set) + " WHERE id = " + placeholder(len(args))
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
	result, err := d.db.ExecContext(ctx, "DELETE FROM note WHERE id = $1", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete note")
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
