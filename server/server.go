// Package server assembles the HTTP server: echo instance, middleware,
// API routes, metrics and health endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/elijahnzeli1/smartnote-backend/internal/metrics"
	"github.com/elijahnzeli1/smartnote-backend/internal/profile"
	apiv1 "github.com/elijahnzeli1/smartnote-backend/server/router/api/v1"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	exporter   *metrics.Exporter
}

func NewServer(_ context.Context, prof *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	exporter := metrics.NewExporter()
	s := &Server{
		Profile:    prof,
		Store:      st,
		echoServer: e,
		exporter:   exporter,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestMetrics(exporter))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	apiService := apiv1.NewAPIV1Service(prof, st, exporter)
	apiService.Register(e)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

// requestMetrics counts finished requests by method and status class.
func requestMetrics(exporter *metrics.Exporter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			exporter.RecordHTTPRequest(c.Request().Method, strconv.Itoa(status))
			return err
		}
	}
}
