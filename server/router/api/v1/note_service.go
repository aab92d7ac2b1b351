package v1

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/elijahnzeli1/smartnote-backend/plugin/export"
	"github.com/elijahnzeli1/smartnote-backend/server/auth"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

type createNoteRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	AutoSummarize bool     `json:"auto_summarize"`
}

func (r createNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Content, validation.Required),
	)
}

type updateNoteRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

func (r updateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 256)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
	)
}

type summarizeNoteRequest struct {
	MaxWords   int  `json:"max_words"`
	Extractive bool `json:"extractive"`
}

type noteResponse struct {
	UID       string   `json:"uid"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Summary   *string  `json:"summary"`
	Tags      []string `json:"tags"`
	CreatedTs int64    `json:"created_ts"`
	UpdatedTs int64    `json:"updated_ts"`
}

func toNoteResponse(note *store.Note) noteResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteResponse{
		UID:       note.UID,
		Title:     note.Title,
		Content:   note.Content,
		Summary:   note.Summary,
		Tags:      tags,
		CreatedTs: note.CreatedTs,
		UpdatedTs: note.UpdatedTs,
	}
}

func toNoteResponses(notes []*store.Note) []noteResponse {
	responses := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		responses = append(responses, toNoteResponse(note))
	}
	return responses
}

func (s *APIV1Service) CreateNote(c echo.Context) error {
	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	user := auth.UserFrom(c)
	note, err := s.NoteService.CreateNote(c.Request().Context(), user.ID, req.Title, req.Content, req.Tags, req.AutoSummarize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toNoteResponse(note))
}

func (s *APIV1Service) ListNotes(c echo.Context) error {
	user := auth.UserFrom(c)
	find := &store.FindNote{CreatorID: &user.ID}
	if search := c.QueryParam("search"); search != "" {
		find.Search = &search
	}
	if tag := c.QueryParam("tag"); tag != "" {
		find.TagName = &tag
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		find.Limit = &limit
		if offset, err := strconv.Atoi(c.QueryParam("offset")); err == nil && offset > 0 {
			find.Offset = &offset
		}
	}

	notes, err := s.NoteService.ListNotes(c.Request().Context(), find)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponses(notes))
}

func (s *APIV1Service) GetNote(c echo.Context) error {
	note, err := s.findOwnedNote(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(note))
}

func (s *APIV1Service) UpdateNote(c echo.Context) error {
	var req updateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	note, err := s.findOwnedNote(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	updated, err := s.NoteService.UpdateNote(c.Request().Context(), note.ID, req.Title, req.Content, req.Tags)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(updated))
}

func (s *APIV1Service) DeleteNote(c echo.Context) error {
	note, err := s.findOwnedNote(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	if err := s.NoteService.DeleteNote(c.Request().Context(), note.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) SummarizeNote(c echo.Context) error {
	var req summarizeNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	note, err := s.findOwnedNote(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}

	var summarized *store.Note
	if req.Extractive {
		summarized, err = s.NoteService.SummarizeExtractive(c.Request().Context(), note.ID, req.MaxWords)
	} else {
		summarized, err = s.NoteService.Summarize(c.Request().Context(), note.ID, req.MaxWords)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toNoteResponse(summarized))
}

func (s *APIV1Service) ListTags(c echo.Context) error {
	user := auth.UserFrom(c)
	tags, err := s.NoteService.ListTags(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return c.JSON(http.StatusOK, names)
}

func (s *APIV1Service) DeleteTag(c echo.Context) error {
	user := auth.UserFrom(c)
	if err := s.NoteService.DeleteTag(c.Request().Context(), user.ID, c.Param("name")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportNotes streams the user's notes as json, csv, or html.
func (s *APIV1Service) ExportNotes(c echo.Context) error {
	user := auth.UserFrom(c)
	notes, err := s.NoteService.ListNotes(c.Request().Context(), &store.FindNote{CreatorID: &user.ID})
	if err != nil {
		return respondError(c, err)
	}

	switch format := c.QueryParam("format"); format {
	case "", "json":
		data, err := export.NotesJSON(notes)
		if err != nil {
			return respondError(c, err)
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
	case "csv":
		data, err := export.NotesCSV(notes)
		if err != nil {
			return respondError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="notes.csv"`)
		return c.Blob(http.StatusOK, "text/csv", data)
	case "html":
		uid := c.QueryParam("uid")
		note, err := s.findOwnedNote(c, uid)
		if err != nil {
			return respondError(c, err)
		}
		data, err := export.NoteHTML(note)
		if err != nil {
			return respondError(c, err)
		}
		return c.HTMLBlob(http.StatusOK, data)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported format: "+format)
	}
}

// NoteFeed serves an Atom feed of a user's notes, authenticated by token
// query parameter so feed readers can subscribe.
func (s *APIV1Service) NoteFeed(c echo.Context) error {
	user, err := s.AuthService.Authenticate(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return respondError(c, err)
	}

	notes, err := s.NoteService.ListNotes(c.Request().Context(), &store.FindNote{CreatorID: &user.ID})
	if err != nil {
		return respondError(c, err)
	}
	baseURL := c.Scheme() + "://" + c.Request().Host
	atom, err := export.NotesFeed(baseURL, user.Username, notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "application/atom+xml", []byte(atom))
}
