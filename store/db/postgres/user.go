package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.CreateUser) (*store.User, error) {
	stmt := `
		INSERT INTO "user" (username, password_hash, created_ts)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, created_ts
	`
	var user store.User
	err := d.db.QueryRowContext(ctx, stmt,
		create.Username,
		create.PasswordHash,
		create.CreatedTs,
	).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return &user, nil
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		args = append(args, *find.ID)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if find.Username != nil {
		args = append(args, *find.Username)
		where = append(where, "username = "+placeholder(len(args)))
	}

	query := `SELECT id, username, password_hash, created_ts FROM "user" WHERE ` + joinAnd(where)

	var user store.User
	err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

func (d *DB) CreateAccessToken(ctx context.Context, create *store.AccessToken) (*store.AccessToken, error) {
	stmt := `INSERT INTO access_token (token, user_id, created_ts) VALUES ($1, $2, $3)`
	if _, err := d.db.ExecContext(ctx, stmt, create.Token, create.UserID, create.CreatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create access token")
	}
	return create, nil
}

func (d *DB) GetAccessToken(ctx context.Context, token string) (*store.AccessToken, error) {
	var accessToken store.AccessToken
	err := d.db.QueryRowContext(ctx,
		"SELECT token, user_id, created_ts FROM access_token WHERE token = $1", token,
	).Scan(
		&accessToken.Token,
		&accessToken.UserID,
		&accessToken.CreatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get access token")
	}
	return &accessToken, nil
}

func (d *DB) DeleteAccessToken(ctx context.Context, token string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM access_token WHERE token = $1", token); err != nil {
		return errors.Wrap(err, "failed to delete access token")
	}
	return nil
}
