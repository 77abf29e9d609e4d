package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/api/testhelpers"
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/updates"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	store, _ := testhelpers.NewFileStore(t)
	b := NewBridge(store, updates.NewChecker("", "v0.1.0"))
	store.SetNotifier(b)
	return b
}

func request(t *testing.T, channel string, payload interface{}) models.BridgeRequest {
	t.Helper()
	req := models.BridgeRequest{ID: channel + "-1", Channel: channel}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req.Payload = raw
	}
	return req
}

func TestBridge_BoardChannels(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	resp := b.Handle(ctx, request(t, ChannelGetBoardData, nil))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, ChannelGetBoardData+"-1", resp.ID)
	assert.Equal(t, models.DefaultBoard(), resp.Data)

	data := models.DefaultBoard()
	data.Countdowns = []models.Countdown{{Name: "Karne", Date: "2030-06-20"}}
	resp = b.Handle(ctx, request(t, ChannelSaveBoardData, data))
	require.True(t, resp.OK, resp.Error)

	saved := b.store.Load(ctx)
	require.Len(t, saved.Countdowns, 1)
	assert.NotEmpty(t, saved.Countdowns[0].ID)

	resp = b.Handle(ctx, models.BridgeRequest{ID: "x", Channel: ChannelSaveBoardData, Payload: json.RawMessage(`[1,2]`)})
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestBridge_MediaChannels(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()
	raw := []byte("GIF89a")

	resp := b.Handle(ctx, request(t, ChannelUploadMedia, models.UploadMediaRequest{
		DataURL:  "data:image/gif;base64," + base64.StdEncoding.EncodeToString(raw),
		Filename: "bayrak",
	}))
	require.True(t, resp.OK, resp.Error)
	uploaded := resp.Data.(models.UploadMediaResponse)
	assert.Equal(t, "server://bayrak.gif", uploaded.Reference)

	for _, ref := range []string{uploaded.Reference, uploaded.URL} {
		resp = b.Handle(ctx, request(t, ChannelGetMedia, models.MediaRefRequest{Ref: ref}))
		require.True(t, resp.OK, resp.Error)
		media := resp.Data.(models.MediaPayload)
		assert.Equal(t, "image/gif", media.ContentType)
		assert.Equal(t, "data:image/gif;base64,"+base64.StdEncoding.EncodeToString(raw), media.DataURL)
	}

	resp = b.Handle(ctx, request(t, ChannelGetMedia, models.MediaRefRequest{}))
	assert.False(t, resp.OK)

	resp = b.Handle(ctx, request(t, ChannelUploadMedia, nil))
	assert.False(t, resp.OK)
}

func TestBridge_BackupAndMetaChannels(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	resp := b.Handle(ctx, request(t, ChannelBackup, nil))
	require.True(t, resp.OK, resp.Error)
	snapshot := resp.Data.(json.RawMessage)

	require.NoError(t, b.store.UpdateQuotes(ctx, []models.Quote{{ID: "q", Text: "silinecek"}}))

	resp = b.Handle(ctx, models.BridgeRequest{ID: "r", Channel: ChannelRestore, Payload: snapshot})
	require.True(t, resp.OK, resp.Error)
	assert.Empty(t, b.store.Load(ctx).Quotes)

	resp = b.Handle(ctx, request(t, ChannelSetAppMeta, models.AppMetaRequest{Key: "windowBounds", Value: "1920x1080"}))
	require.True(t, resp.OK, resp.Error)

	resp = b.Handle(ctx, request(t, ChannelGetAppMeta, nil))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, map[string]string{"windowBounds": "1920x1080"}, resp.Data)
}

func TestBridge_CheckUpdateAndUnknownChannel(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	resp := b.Handle(ctx, request(t, ChannelCheckUpdate, nil))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, models.UpdateInfo{CurrentVersion: "v0.1.0"}, resp.Data)

	resp = b.Handle(ctx, request(t, "open-devtools", nil))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown channel")
}

func TestBridge_WebSocket(t *testing.T) {
	b := newTestBridge(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(models.BridgeRequest{ID: "1", Channel: ChannelGetBoardData}))
	var resp struct {
		ID      string           `json:"id"`
		Channel string           `json:"channel"`
		OK      bool             `json:"ok"`
		Data    models.BoardData `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.True(t, resp.OK)
	assert.Equal(t, models.DefaultBoard().Config, resp.Data.Config)

	// the client is registered once it has been answered; saves are pushed to it
	require.NoError(t, b.store.UpdateQuotes(context.Background(), []models.Quote{{ID: "q1", Text: "Bilgi"}}))

	var push models.BridgeResponse
	require.NoError(t, conn.ReadJSON(&push))
	assert.Empty(t, push.ID)
	assert.Equal(t, "board-saved", push.Channel)
	assert.True(t, push.OK)
}
