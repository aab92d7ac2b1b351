package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

type mockUserStore struct {
	users  map[string]*store.User
	tokens map[string]*store.AccessToken
	nextID int32
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:  map[string]*store.User{},
		tokens: map[string]*store.AccessToken{},
	}
}

func (m *mockUserStore) CreateUser(_ context.Context, create *store.CreateUser) (*store.User, error) {
	m.nextID++
	user := &store.User{ID: m.nextID, Username: create.Username, PasswordHash: create.PasswordHash}
	m.users[create.Username] = user
	return user, nil
}

func (m *mockUserStore) GetUser(_ context.Context, find *store.FindUser) (*store.User, error) {
	if find.Username != nil {
		if user, ok := m.users[*find.Username]; ok {
			return user, nil
		}
	}
	if find.ID != nil {
		for _, user := range m.users {
			if user.ID == *find.ID {
				return user, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) CreateAccessToken(_ context.Context, create *store.AccessToken) (*store.AccessToken, error) {
	m.tokens[create.Token] = create
	return create, nil
}

func (m *mockUserStore) GetAccessToken(_ context.Context, token string) (*store.AccessToken, error) {
	if access, ok := m.tokens[token]; ok {
		return access, nil
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) DeleteAccessToken(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	user, token, err := svc.SignUp(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice", user.Username)
	// The raw password is never stored.
	require.NotEqual(t, "s3cret", user.PasswordHash)

	signedIn, token2, err := svc.SignIn(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, user.ID, signedIn.ID)
	require.NotEqual(t, token, token2)
}

func TestSignUpDuplicateUsername(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "alice", "s3cret")
	require.NoError(t, err)
	_, _, err = svc.SignUp(ctx, "alice", "other")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewService(newMockUserStore())
	ctx := context.Background()

	_, _, err := svc.SignUp(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.SignIn(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	st := newMockUserStore()
	svc := NewService(st)
	ctx := context.Background()

	user, token, err := svc.SignUp(ctx, "alice", "s3cret")
	require.NoError(t, err)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)

	_, err = svc.Authenticate(ctx, "bogus")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.SignOut(ctx, token))
	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExtractBearer(t *testing.T) {
	require.Equal(t, "abc", extractBearer("Bearer abc"))
	require.Equal(t, "abc", extractBearer("bearer abc"))
	require.Empty(t, extractBearer(""))
	require.Empty(t, extractBearer("Basic abc"))
	require.Empty(t, extractBearer("Bearer "))
}
