package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/updates"
)

// Bridge channels answered over the /bridge websocket
const (
	ChannelGetBoardData  = "get-board-data"
	ChannelSaveBoardData = "save-board-data"
	ChannelUploadMedia   = "upload-media"
	ChannelGetMedia      = "get-media"
	ChannelBackup        = "backup"
	ChannelRestore       = "restore"
	ChannelGetAppMeta    = "get-app-meta"
	ChannelSetAppMeta    = "set-app-meta"
	ChannelCheckUpdate   = "check-update"
)

const bridgeWriteWait = 10 * time.Second

var errUnknownChannel = errors.New("unknown channel")

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Bridge answers desktop shell requests over a websocket and pushes store events to
// every connected shell
type Bridge struct {
	store   *board.Store
	updates *updates.Checker

	mutex   sync.Mutex
	clients map[*bridgeClient]struct{}
}

type bridgeClient struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *bridgeClient) send(resp models.BridgeResponse) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(bridgeWriteWait))
	return c.conn.WriteJSON(resp)
}

// NewBridge returns a bridge serving store
func NewBridge(store *board.Store, checker *updates.Checker) *Bridge {
	return &Bridge{
		store:   store,
		updates: checker,
		clients: make(map[*bridgeClient]struct{}),
	}
}

// ServeHTTP upgrades the connection and answers requests until the client goes away
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("bridge websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxUploadSize)

	client := &bridgeClient{conn: conn}
	b.mutex.Lock()
	b.clients[client] = struct{}{}
	b.mutex.Unlock()
	zap.S().Debugw("bridge client connected", "remote", r.RemoteAddr)

	defer func() {
		b.remove(client)
		zap.S().Debugw("bridge client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		var req models.BridgeRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.S().Warnw("bridge read failed", "error", err)
			}
			return
		}
		resp := b.Handle(r.Context(), req)
		if err := client.send(resp); err != nil {
			zap.S().Warnw("bridge write failed", "channel", req.Channel, "error", err)
			return
		}
	}
}

// Handle answers one request
func (b *Bridge) Handle(ctx context.Context, req models.BridgeRequest) models.BridgeResponse {
	resp := models.BridgeResponse{ID: req.ID, Channel: req.Channel}
	data, err := b.dispatch(ctx, req)
	if err != nil {
		zap.S().Debugw("bridge request failed", "channel", req.Channel, "error", err)
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	resp.Data = data
	return resp
}

func (b *Bridge) dispatch(ctx context.Context, req models.BridgeRequest) (interface{}, error) {
	switch req.Channel {
	case ChannelGetBoardData:
		return b.store.Load(ctx), nil

	case ChannelSaveBoardData:
		var data models.BoardData
		if err := json.Unmarshal(req.Payload, &data); err != nil {
			return nil, errors.Wrap(err, "decode board")
		}
		models.AssignMissingIDs(&data)
		if err := b.store.Save(ctx, data); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true, Revision: board.Revision(data)}, nil

	case ChannelUploadMedia:
		var upReq models.UploadMediaRequest
		if err := decodeValid(req.Payload, &upReq); err != nil {
			return nil, err
		}
		raw, contentType, err := decodeDataURL(upReq.DataURL)
		if err != nil {
			return nil, err
		}
		return upload(ctx, b.store, raw, contentType, upReq.Filename)

	case ChannelGetMedia:
		var refReq models.MediaRefRequest
		if err := decodeValid(req.Payload, &refReq); err != nil {
			return nil, err
		}
		media, err := b.store.OpenMedia(ctx, refReq.Ref)
		if err != nil {
			return nil, err
		}
		return models.MediaPayload{
			Name:        media.Name,
			ContentType: media.ContentType,
			DataURL:     encodeDataURL(media.ContentType, media.Data),
		}, nil

	case ChannelBackup:
		var buf bytes.Buffer
		if err := b.store.Backup(ctx, &buf); err != nil {
			return nil, err
		}
		return json.RawMessage(buf.Bytes()), nil

	case ChannelRestore:
		if err := b.store.Restore(ctx, bytes.NewReader(req.Payload)); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true, Revision: board.Revision(b.store.Load(ctx))}, nil

	case ChannelGetAppMeta:
		return b.store.AppMeta(ctx)

	case ChannelSetAppMeta:
		var metaReq models.AppMetaRequest
		if err := decodeValid(req.Payload, &metaReq); err != nil {
			return nil, err
		}
		if err := b.store.SetAppMeta(ctx, metaReq.Key, metaReq.Value); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true}, nil

	case ChannelCheckUpdate:
		info, err := b.updates.CheckAndNotify(ctx, b)
		if err != nil && !errors.Is(err, updates.ErrNoFeed) {
			return nil, err
		}
		return info, nil

	default:
		return nil, errors.Wrap(errUnknownChannel, req.Channel)
	}
}

// Notify pushes a store or update event to every connected client. "board:saved" is
// delivered on the "board-saved" channel.
func (b *Bridge) Notify(event string, payload interface{}) {
	msg := models.BridgeResponse{Channel: strings.ReplaceAll(event, ":", "-"), OK: true, Data: payload}

	b.mutex.Lock()
	clients := make([]*bridgeClient, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mutex.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			zap.S().Warnw("failed to push bridge event", "event", event, "error", err)
			b.remove(c)
		}
	}
}

func (b *Bridge) remove(c *bridgeClient) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		_ = c.conn.Close()
	}
}

func decodeValid(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return errors.New("payload is required")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errors.Wrap(err, "decode payload")
	}
	return validate.Struct(v)
}
