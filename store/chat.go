package store

// Chat is an AI-assisted conversation. Summary is the full-conversation
// digest; ContextSummary is the condensed digest reused as AI context.
// MessageCount and LastMessageTs are maintained only inside the message
// append transaction and always agree with the stored message rows.
type Chat struct {
	ID             int32
	UID            string
	CreatorID      int32
	Title          string
	Summary        string
	ContextSummary string
	MessageCount   int32
	LastMessageTs  *int64
	CreatedTs      int64
	UpdatedTs      int64
}

type FindChat struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	// Search matches title OR summary OR any message content,
	// case-insensitive substring; each chat is returned at most once.
	Search *string
}

type UpdateChat struct {
	ID             int32
	Title          *string
	Summary        *string
	ContextSummary *string
	UpdatedTs      int64
}

type DeleteChat struct {
	ID int32
}
