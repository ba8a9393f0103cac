// Package server exposes the relay over HTTP: the WebSocket endpoint plus
// the REST surface used by the web client on page load.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
	"github.com/zhengyanglee07/Let-s-Chat/internal/directory"
	"github.com/zhengyanglee07/Let-s-Chat/internal/storage"
	wstransport "github.com/zhengyanglee07/Let-s-Chat/internal/transport/ws"
)

// Server is the HTTP front of the relay.
type Server struct {
	address  string
	log      *zap.Logger
	hub      *chat.Hub
	store    *storage.MessageStore
	dir      *directory.Directory
	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
}

// New wires the routes and returns a Server ready to Start.
func New(address string, allowedOrigins []string, hub *chat.Hub, store *storage.MessageStore, dir *directory.Directory, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(allowedOrigins))

	s := &Server{
		address: address,
		log:     log,
		hub:     hub,
		store:   store,
		dir:     dir,
		engine:  engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/ws", gin.WrapH(wstransport.Handler(s.hub, s.log)))

	api := s.engine.Group("/api")
	api.GET("/getVerifiedUsers", s.handleVerifiedUsers)
	api.GET("/messages", s.handleListMessages)
	api.POST("/messages", s.handleAppendMessage)
	api.GET("/presence", s.handlePresence)
}

// Start begins serving. It blocks until Shutdown or a listener error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{Handler: s.engine}

	s.log.Info("http server started", zap.String("addr", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown closes every realtime session and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Shutdown()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
