// Package api REST интерфейс приглашений и переписки учителей
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Freeeeeet/faculty_chat/internal/auth"
	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Prefix общий префикс всех faculty эндпоинтов
const Prefix = "/api/faculty"

type (
	Options struct {
		Address        string
		Debug          bool
		DisableReqLogs bool
		Directory      *service.DirectoryService
		Invites        *service.InviteService
		Messages       *service.MessageService
		Tokens         *auth.Tokens
		Logger         *zap.Logger
	}

	Server struct {
		opts *Options
		app  *echo.Echo
	}
)

func NewServer(opts *Options) *Server {
	s := &Server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Debug = s.opts.Debug
	s.app.Validator = newValidator()
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	// в debug режиме паника должна быть видна целиком
	if !s.opts.Debug {
		s.app.Use(middleware.Recover())
	}
	// вложения приходят inline в base64: 1.5 MiB -> ~2 MiB, плюс текст и поля
	s.app.Use(middleware.BodyLimit("3M"))

	s.app.GET("/health", health)

	h := &facultyHandler{
		directory: s.opts.Directory,
		invites:   s.opts.Invites,
		messages:  s.opts.Messages,
	}

	g := s.app.Group(Prefix, requireTeacher(s.opts.Tokens))
	g.GET("/me", h.me)
	g.GET("/teachers", h.teachers)
	g.GET("/invites", h.listInvites)
	g.POST("/invites", h.sendInvite)
	g.POST("/invites/:id/accept", h.acceptInvite)
	g.POST("/invites/:id/reject", h.rejectInvite)
	g.GET("/connections", h.connections)
	g.GET("/conversations/:peerId", h.conversation)
	g.POST("/conversations/:peerId/messages", h.sendMessage)
}

// Start блокирует до остановки сервера
func (s *Server) Start() error {
	s.opts.Logger.Info("HTTP server listening", zap.String("address", s.opts.Address))

	err := s.app.Start(s.opts.Address)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": "ok"})
}
