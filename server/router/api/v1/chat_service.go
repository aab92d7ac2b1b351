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

type createChatRequest struct {
	Title string `json:"title"`
}

type addMessageRequest struct {
	Role          string `json:"role"`
	Content       string `json:"content"`
	AutoSummarize bool   `json:"auto_summarize"`
}

func (r addMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In("user", "assistant", "system")),
		validation.Field(&r.Content, validation.Required),
	)
}

type respondRequest struct {
	Message    string `json:"message"`
	UseContext *bool  `json:"use_context"`
}

func (r respondRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
	)
}

type chatResponse struct {
	UID            string `json:"uid"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	ContextSummary string `json:"context_summary"`
	MessageCount   int32  `json:"message_count"`
	LastMessageTs  *int64 `json:"last_message_ts"`
	CreatedTs      int64  `json:"created_ts"`
	UpdatedTs      int64  `json:"updated_ts"`
}

type chatMessageResponse struct {
	ID        int64   `json:"id"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Summary   *string `json:"summary"`
	Tokens    int32   `json:"tokens"`
	CreatedTs int64   `json:"created_ts"`
}

func toChatResponse(chat *store.Chat) chatResponse {
	return chatResponse{
		UID:            chat.UID,
		Title:          chat.Title,
		Summary:        chat.Summary,
		ContextSummary: chat.ContextSummary,
		MessageCount:   chat.MessageCount,
		LastMessageTs:  chat.LastMessageTs,
		CreatedTs:      chat.CreatedTs,
		UpdatedTs:      chat.UpdatedTs,
	}
}

func toChatMessageResponse(msg *store.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Summary:   msg.Summary,
		Tokens:    msg.Tokens,
		CreatedTs: msg.CreatedTs,
	}
}

func (s *APIV1Service) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user := auth.UserFrom(c)
	chat, err := s.ChatService.CreateChat(c.Request().Context(), user.ID, req.Title)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toChatResponse(chat))
}

func (s *APIV1Service) ListChats(c echo.Context) error {
	user := auth.UserFrom(c)
	find := &store.FindChat{CreatorID: &user.ID}
	if search := c.QueryParam("search"); search != "" {
		find.Search = &search
	}

	chats, err := s.Store.ListChats(c.Request().Context(), find)
	if err != nil {
		return respondError(c, err)
	}
	responses := make([]chatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, toChatResponse(chat))
	}
	return c.JSON(http.StatusOK, responses)
}

func (s *APIV1Service) GetChat(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toChatResponse(chat))
}

func (s *APIV1Service) DeleteChat(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Store.DeleteChat(c.Request().Context(), &store.DeleteChat{ID: chat.ID}); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddChatMessage appends a message. A threshold summary-refresh failure
// reports 503; the appended message stays persisted regardless.
func (s *APIV1Service) AddChatMessage(c echo.Context) error {
	var req addMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	msg, err := s.ChatService.AddMessage(c.Request().Context(), chat.ID, store.MessageRole(req.Role), req.Content, req.AutoSummarize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toChatMessageResponse(msg))
}

func (s *APIV1Service) ListChatMessages(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	messages, err := s.ChatService.FullHistory(c.Request().Context(), chat.ID)
	if err != nil {
		return respondError(c, err)
	}
	responses := make([]chatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, toChatMessageResponse(msg))
	}
	return c.JSON(http.StatusOK, responses)
}

func (s *APIV1Service) RespondWithAI(c echo.Context) error {
	var req respondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	useContext := req.UseContext == nil || *req.UseContext
	response, err := s.ChatService.RespondWithAI(c.Request().Context(), chat.ID, req.Message, useContext)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"response": response})
}

func (s *APIV1Service) SummarizeChat(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	text, err := s.ChatService.UpdateSummary(c.Request().Context(), chat.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}

func (s *APIV1Service) SummarizeChatMessage(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}
	// Ownership check: the message must belong to the resolved chat.
	messages, err := s.ChatService.FullHistory(c.Request().Context(), chat.ID)
	if err != nil {
		return respondError(c, err)
	}
	owned := false
	for _, msg := range messages {
		if msg.ID == messageID {
			owned = true
			break
		}
	}
	if !owned {
		return respondError(c, store.ErrNotFound)
	}

	text, err := s.ChatService.SummarizeMessage(c.Request().Context(), messageID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": text})
}

func (s *APIV1Service) ChatStatistics(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	stats, err := s.ChatService.Statistics(c.Request().Context(), chat.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *APIV1Service) ExportChat(c echo.Context) error {
	chat, err := s.findOwnedChat(c, c.Param("uid"))
	if err != nil {
		return respondError(c, err)
	}
	messages, err := s.ChatService.FullHistory(c.Request().Context(), chat.ID)
	if err != nil {
		return respondError(c, err)
	}
	data, err := export.ChatTranscriptJSON(chat, messages)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}
