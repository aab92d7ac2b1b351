package store

// Note is a user note with an optional AI-generated summary.
// Summary is nil or refers to Content at the time of last generation; any
// content mutation nulls it (enforced by the note service).
type Note struct {
	ID        int32
	UID       string
	CreatorID int32
	Title     string
	Content   string
	Summary   *string
	Tags      []string // tag names, populated on read
	CreatedTs int64
	UpdatedTs int64
}

type FindNote struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	// Search matches title OR content, case-insensitive substring.
	Search  *string
	TagName *string
	Limit   *int
	Offset  *int
}

type UpdateNote struct {
	ID      int32
	Title   *string
	Content *string
	// Summary sets a new summary; ClearSummary nulls it. Setting both is
	// a programming error, ClearSummary wins.
	Summary      *string
	ClearSummary bool
	UpdatedTs    int64
}

type DeleteNote struct {
	ID int32
}
