package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"substrates.ai/internal/builds"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/catalogs"
)

type Server struct {
	builds *builds.Service
	log    *log.Logger

	upgrader websocket.Upgrader

	// base is canceled by Shutdown; sessions tracks live connections.
	base     context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

func NewServer(svc *builds.Service, logger *log.Logger) *Server {
	base, stop := context.WithCancel(context.Background())
	s := &Server{
		builds: svc,
		log:    logger,
		base:   base,
		stop:   stop,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			http.Error(rw, "shutting down", http.StatusServiceUnavailable)
			return
		}
		s.sessions.Add(1)
		s.mu.Unlock()
		defer s.sessions.Done()

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(s.base)
		defer cancel()

		// Unblock reads when the session or the server stops.
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()

		sessionID := s.handshake(conn)
		if sessionID == "" {
			return
		}

		out := make(chan any, 8)

		// Writer goroutine.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-out:
					if !ok {
						return
					}
					if err := writeJSON(conn, v); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Builds run inline so replies keep request order.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			reply := s.handle(ctx, msg)
			if reply == nil {
				continue
			}
			select {
			case out <- reply:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
		<-done
		s.logf("session %s closed", sessionID)
	}
}

// Shutdown closes every session and waits for in-flight builds to finish,
// or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.stop()
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handle(ctx context.Context, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.Type != protocol.TypeBuild {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "unexpected message type: "+base.Type)
	}
	var req protocol.BuildMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return protocol.NewError("", protocol.ErrBadRequest, "bad BUILD: "+err.Error())
	}
	if req.ProtocolVersion != protocol.Version {
		return protocol.NewError(req.RequestID, protocol.ErrProtoVersion, "bad protocol_version")
	}

	res, err := s.builds.Build(ctx, "ws", req.Roles)
	if err != nil {
		return protocol.NewError(req.RequestID, protocol.CodeFor(err), err.Error())
	}
	return protocol.SubstrateMsg{
		Type:            protocol.TypeSubstrate,
		ProtocolVersion: protocol.Version,
		RequestID:       req.RequestID,
		BuildID:         res.BuildID,
		Digests:         res.Digests,
		Document:        res.Document,
	}
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID string) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ""
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrProtoVersion, "bad protocol_version"))
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ""
	}
	name := strings.TrimSpace(hello.ClientName)
	if name == "" {
		name = "client"
	}

	digests, err := catalogs.Static()
	if err != nil {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrInternal, err.Error()))
		return ""
	}
	a := s.builds.Assembler()
	cfg := s.builds.Config()
	welcome := protocol.WelcomeMsg{
		Type:               protocol.TypeWelcome,
		ProtocolVersion:    protocol.Version,
		SessionID:          uuid.NewString(),
		LevelName:          a.Settings().LevelName,
		ValidRoles:         cfg.ValidRoles,
		DefaultPlayerRoles: cfg.DefaultPlayerRoles,
		MaxPlayers:         a.MaxPlayers(),
		Digests:            digests,
	}
	if err := writeJSON(conn, welcome); err != nil {
		return ""
	}
	s.logf("session %s opened client=%s", welcome.SessionID, name)
	return welcome.SessionID
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}
