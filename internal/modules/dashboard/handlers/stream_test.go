package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

func dialStream(t *testing.T, ctx context.Context, serverURL, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/api/dashboard/ws" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readJSONMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) StreamMessage {
	t.Helper()

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageText, msgType)

	var msg StreamMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendJSON(t *testing.T, ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestHandleStream_SelectionPushesSnapshot(t *testing.T) {
	_, _, router := setupHandler(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialStream(t, ctx, server.URL, "")
	sendJSON(t, ctx, conn, ClientMessage{Type: "select_crop", Crop: "Onion"})

	var accepted, snapshot *StreamMessage
	for accepted == nil || snapshot == nil {
		msg := readJSONMessage(t, ctx, conn)
		switch msg.Type {
		case messageAccepted:
			accepted = &msg
		case messageSnapshot:
			snapshot = &msg
		default:
			t.Fatalf("unexpected message %+v", msg)
		}
	}

	assert.Equal(t, uint64(1), accepted.Generation)
	require.NotNil(t, snapshot.Snapshot)
	assert.Equal(t, "Onion", snapshot.Snapshot.Crop.Name)
	assert.Equal(t, uint64(1), snapshot.Snapshot.Generation)
}

func TestHandleStream_RejectsUnknownCrop(t *testing.T) {
	_, _, router := setupHandler(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialStream(t, ctx, server.URL, "")
	sendJSON(t, ctx, conn, ClientMessage{Type: "select_crop", Crop: "Barley"})

	msg := readJSONMessage(t, ctx, conn)
	assert.Equal(t, messageError, msg.Type)
	assert.Contains(t, msg.Error, "Barley")

	sendJSON(t, ctx, conn, ClientMessage{Type: "subscribe"})
	msg = readJSONMessage(t, ctx, conn)
	assert.Equal(t, messageError, msg.Type)
	assert.Contains(t, msg.Error, "unknown message type")
}

func TestHandleStream_Msgpack(t *testing.T) {
	_, orch, router := setupHandler(t)
	_, err := orch.RefreshCurrent(context.Background())
	require.NoError(t, err)

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialStream(t, ctx, server.URL, "?format=msgpack")

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageBinary, msgType)

	var msg StreamMessage
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	require.NoError(t, dec.Decode(&msg))

	assert.Equal(t, messageSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, 2239, msg.Snapshot.CurrentPrice)
	assert.Len(t, msg.Snapshot.Series, 12)
	require.NotNil(t, msg.Snapshot.BestTime.Price)
	assert.Equal(t, 2235, *msg.Snapshot.BestTime.Price)
}

func TestHandleStream_InvalidFormat(t *testing.T) {
	_, _, router := setupHandler(t)

	req := httptest.NewRequest("GET", "/api/dashboard/ws?format=xml", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestEncodeDecodeFrame(t *testing.T) {
	in := ClientMessage{Type: "select", Crop: "Rice", Region: "Bihar"}

	for _, format := range []string{formatJSON, formatMsgpack} {
		msgType, data, err := encodeFrame(format, in)
		require.NoError(t, err)

		var out ClientMessage
		require.NoError(t, decodeFrame(msgType, data, &out))
		assert.Equal(t, in, out, format)
	}
}
