package store

// User owns notes, tags, and chats.
type User struct {
	ID           int32
	Username     string
	PasswordHash string
	CreatedTs    int64
}

type CreateUser struct {
	Username     string
	PasswordHash string
	CreatedTs    int64
}

type FindUser struct {
	ID       *int32
	Username *string
}

// AccessToken is an opaque bearer token for API authentication.
type AccessToken struct {
	Token     string
	UserID    int32
	CreatedTs int64
}
