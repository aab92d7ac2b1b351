package store

// Tag organizes notes. Names are unique per owner.
type Tag struct {
	ID        int32
	CreatorID int32
	Name      string
	CreatedTs int64
}

type UpsertTag struct {
	CreatorID int32
	Name      string
	CreatedTs int64
}

type FindTag struct {
	ID        *int32
	CreatorID *int32
	Name      *string
	// NoteID lists the tags attached to one note.
	NoteID *int32
}

type DeleteTag struct {
	ID int32
}
