package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// CreateUser stores a household member. PasswordHash must already be hashed.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.CreatedAt = r.now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.DisplayName, u.PasswordHash, u.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.InvalidArgument("user %q already exists", u.Username)
		}
		return core.User{}, core.NewStorageError("create user", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, core.NewStorageError("create user", err)
	}
	r.logger.InfoContext(ctx, "User created", log.FieldUserID, u.ID, "username", u.Username)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.getUser(ctx, `username = ?`, strings.ToLower(strings.TrimSpace(username)))
}

func (r *SQLiteRepository) getUser(ctx context.Context, cond string, arg any) (core.User, error) {
	var (
		u         core.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, created_at FROM users WHERE `+cond, arg).
		Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, core.NewStorageError("get user", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return u, nil
}
