// Package auth provides signup/login with bcrypt password hashing and
// opaque bearer access tokens.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Store defines the persistence surface the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, create *store.CreateUser) (*store.User, error)
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	CreateAccessToken(ctx context.Context, create *store.AccessToken) (*store.AccessToken, error)
	GetAccessToken(ctx context.Context, token string) (*store.AccessToken, error)
	DeleteAccessToken(ctx context.Context, token string) error
}

type Service struct {
	store Store
}

func NewService(st Store) *Service {
	return &Service{store: st}
}

// SignUp creates a user with a bcrypt-hashed password and returns it with
// a fresh access token.
func (s *Service) SignUp(ctx context.Context, username, password string) (*store.User, string, error) {
	if existing, err := s.store.GetUser(ctx, &store.FindUser{Username: &username}); err == nil && existing != nil {
		return nil, "", ErrUsernameTaken
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to hash password")
	}
	user, err := s.store.CreateUser(ctx, &store.CreateUser{
		Username:     username,
		PasswordHash: string(hash),
		CreatedTs:    time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignIn verifies credentials and returns the user with a fresh access
// token. Unknown users and wrong passwords are indistinguishable to the
// caller.
func (s *Service) SignIn(ctx context.Context, username, password string) (*store.User, string, error) {
	user, err := s.store.GetUser(ctx, &store.FindUser{Username: &username})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignOut revokes an access token. Revoking an unknown token is a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.store.DeleteAccessToken(ctx, token)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*store.User, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	access, err := s.store.GetAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.store.GetUser(ctx, &store.FindUser{ID: &access.UserID})
}

func (s *Service) issueToken(ctx context.Context, userID int32) (string, error) {
	access, err := s.store.CreateAccessToken(ctx, &store.AccessToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedTs: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return access.Token, nil
}
