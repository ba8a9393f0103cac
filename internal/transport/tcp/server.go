package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
)

// Server accepts TCP connections and delegates them to the Hub. It shares
// the Hub with the WebSocket transport, so clients on either transport see
// the same presence table and rooms.
type Server struct {
	address  string
	listener net.Listener
	hub      *chat.Hub
	log      *zap.Logger
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New creates a TCP server that uses the provided Hub.
func New(address string, hub *chat.Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		address: address,
		hub:     hub,
		log:     log,
		quit:    make(chan struct{}),
	}
}

// Start starts accepting TCP connections. It blocks until Stop is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener

	s.log.Info("tcp server started", zap.String("addr", listener.Addr().String()))

	for {
		select {
		case <-s.quit:
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-s.quit:
					return nil
				default:
					s.log.Warn("failed to accept connection", zap.Error(err))
					continue
				}
			}

			client := chat.NewClient(NewConn(conn))
			s.hub.Attach(client)

			s.wg.Add(2)
			go s.handleClient(client)
			go s.writeLoop(client)
		}
	}
}

// Stop stops the TCP server and waits for client goroutines to finish.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleClient(client *chat.Client) {
	defer s.wg.Done()
	s.hub.HandleClient(context.Background(), client)
}

func (s *Server) writeLoop(client *chat.Client) {
	defer s.wg.Done()
	for {
		select {
		case <-client.Done():
			return
		case data := <-client.Outgoing():
			if err := client.Conn.Write(context.Background(), data); err != nil {
				s.log.Debug("tcp write failed",
					zap.String("session", client.ID),
					zap.Error(err))
				client.Close()
				return
			}
		}
	}
}
