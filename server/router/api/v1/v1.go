// Package v1 exposes the JSON API under /api/v1.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/elijahnzeli1/smartnote-backend/ai"
	"github.com/elijahnzeli1/smartnote-backend/ai/summary"
	"github.com/elijahnzeli1/smartnote-backend/internal/metrics"
	"github.com/elijahnzeli1/smartnote-backend/internal/profile"
	"github.com/elijahnzeli1/smartnote-backend/server/auth"
	"github.com/elijahnzeli1/smartnote-backend/server/service/chat"
	"github.com/elijahnzeli1/smartnote-backend/server/service/note"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

type APIV1Service struct {
	// Domain services
	AuthService *auth.Service
	NoteService *note.Service
	ChatService *chat.Service

	// Shared infra
	Profile *profile.Profile
	Store   *store.Store
}

func NewAPIV1Service(prof *profile.Profile, st *store.Store, exporter *metrics.Exporter) *APIV1Service {
	client := ai.NewClient(&ai.Config{
		Provider:   prof.AIProvider,
		Model:      prof.AIModel,
		APIKey:     prof.AIAPIKey,
		BaseURL:    prof.AIBaseURL,
		MaxRetries: prof.AIMaxRetries,
		Timeout:    prof.AITimeout,

		RequestsPerMinute: prof.AIRequestsPerMinute,
	}, exporter)
	policy := summary.NewPolicy(client, exporter)

	return &APIV1Service{
		AuthService: auth.NewService(st),
		NoteService: note.NewService(st, policy),
		ChatService: chat.NewService(st, client, policy, prof.SummarizeThreshold, prof.MaxContextMessages, exporter),
		Profile:     prof,
		Store:       st,
	}
}

// Register mounts the API routes on the echo instance. Everything except
// signup/login and the feed requires a bearer token.
func (s *APIV1Service) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/auth/signup", s.SignUp)
	api.POST("/auth/login", s.SignIn)
	api.GET("/notes/feed", s.NoteFeed)

	authed := api.Group("", s.AuthService.Middleware())
	authed.POST("/auth/logout", s.SignOut)
	authed.GET("/auth/me", s.CurrentUser)

	authed.POST("/notes", s.CreateNote)
	authed.GET("/notes", s.ListNotes)
	authed.GET("/notes/export", s.ExportNotes)
	authed.GET("/notes/:uid", s.GetNote)
	authed.PATCH("/notes/:uid", s.UpdateNote)
	authed.DELETE("/notes/:uid", s.DeleteNote)
	authed.POST("/notes/:uid/summarize", s.SummarizeNote)
	authed.GET("/tags", s.ListTags)
	authed.DELETE("/tags/:name", s.DeleteTag)

	authed.POST("/chats", s.CreateChat)
	authed.GET("/chats", s.ListChats)
	authed.GET("/chats/:uid", s.GetChat)
	authed.DELETE("/chats/:uid", s.DeleteChat)
	authed.POST("/chats/:uid/messages", s.AddChatMessage)
	authed.GET("/chats/:uid/messages", s.ListChatMessages)
	authed.POST("/chats/:uid/respond", s.RespondWithAI)
	authed.POST("/chats/:uid/summarize", s.SummarizeChat)
	authed.POST("/chats/:uid/messages/:id/summarize", s.SummarizeChatMessage)
	authed.GET("/chats/:uid/stats", s.ChatStatistics)
	authed.GET("/chats/:uid/export", s.ExportChat)
}
