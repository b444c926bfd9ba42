// Package auth handles household member login and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// UserStore looks up and stores household members.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	CreateUser(ctx context.Context, u core.User) (core.User, error)
}

var errBadCredentials = errors.New("invalid username or password")

// Session is the outcome of a successful login.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// Authenticator checks credentials and issues sessions.
type Authenticator struct {
	users  UserStore
	tokens *Tokens
	logger *log.Logger
}

func NewAuthenticator(users UserStore, tokens *Tokens, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.Default()
	}
	return &Authenticator{users: users, tokens: tokens, logger: logger.WithComponent(log.ComponentAuth)}
}

func (a *Authenticator) Tokens() *Tokens { return a.tokens }

// Login returns core.ErrUnauthorized for unknown users and wrong passwords alike.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, core.InvalidArgument("username and password are required")
	}

	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		burnCompare(password)
		a.logger.WarnContext(ctx, "Login failed", "username", username, "reason", "unknown user")
		return Session{}, fmt.Errorf("%w: %w", core.ErrUnauthorized, errBadCredentials)
	}
	if err != nil {
		return Session{}, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		a.logger.WarnContext(ctx, "Login failed", "username", username, "reason", "bad password")
		return Session{}, fmt.Errorf("%w: %w", core.ErrUnauthorized, errBadCredentials)
	}

	token, expires, err := a.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}
	a.logger.InfoContext(ctx, "Login succeeded", log.FieldUserID, user.ID)
	return Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// CurrentUser loads the user the request was authenticated as.
func (a *Authenticator) CurrentUser(ctx context.Context) (core.User, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return core.User{}, core.ErrUnauthorized
	}
	user, err := a.users.GetUser(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// token outlived the account
		return core.User{}, core.ErrUnauthorized
	}
	return user, err
}

// Register hashes password and stores a new household member.
func (a *Authenticator) Register(ctx context.Context, username, displayName, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.InvalidArgument("username is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return core.User{}, err
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	return a.users.CreateUser(ctx, core.User{Username: username, DisplayName: displayName, PasswordHash: hash})
}
