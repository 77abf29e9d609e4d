package handlers

import (
	"context"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/updates"
)

// EventRevision answers a "get-revision" event with the current board revision
const EventRevision = "board:revision"

// SocketServer pushes store and update events to browser displays over Socket.IO
type SocketServer struct {
	server *socketio.Server
}

// NewSocketServer initializes the Socket.IO server and starts serving it
func NewSocketServer(store *board.Store, checker *updates.Checker) *SocketServer {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			polling.Default,
			websocket.Default,
		},
	})
	s := &SocketServer{server: server}

	server.OnConnect("/", func(c socketio.Conn) error {
		c.SetContext("")
		zap.S().Debugw("socket.io client connected", "id", c.ID())
		return nil
	})

	server.OnError("/", func(c socketio.Conn, e error) {
		zap.S().Warnw("socket.io error", "error", e)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		zap.S().Debugw("socket.io client disconnected", "id", c.ID(), "reason", reason)
	})

	server.OnEvent("/", "get-revision", func(c socketio.Conn) {
		data := store.Load(context.Background())
		c.Emit(EventRevision, board.BoardSavedPayload{Revision: board.Revision(data)})
	})

	server.OnEvent("/", "check-update", func(c socketio.Conn) {
		go func() {
			_, _ = checker.CheckAndNotify(context.Background(), s)
		}()
	})

	go func() {
		if err := server.Serve(); err != nil {
			zap.S().Debugw("socket.io server stopped", "error", err)
		}
	}()

	return s
}

// ServeHTTP hands the request to the Socket.IO server
func (s *SocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

// Notify broadcasts an event to every connected client
func (s *SocketServer) Notify(event string, payload interface{}) {
	s.server.BroadcastToNamespace("/", event, payload)
}

// Close stops the Socket.IO server
func (s *SocketServer) Close() error {
	return s.server.Close()
}
