package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/events"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
)

const (
	writeWait = 10 * time.Second

	formatJSON    = "json"
	formatMsgpack = "msgpack"

	messageSnapshot = "snapshot"
	messageAccepted = "accepted"
	messageError    = "error"
)

// ClientMessage is sent by the renderer over the websocket.
// Type is "select_crop", "select_location" or "select".
type ClientMessage struct {
	Type   string `json:"type"`
	Crop   string `json:"crop,omitempty"`
	Region string `json:"region,omitempty"`
}

// StreamMessage is pushed to the renderer over the websocket
type StreamMessage struct {
	Type       string                    `json:"type"`
	Snapshot   *domain.DashboardSnapshot `json:"snapshot,omitempty"`
	Generation uint64                    `json:"generation,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// HandleStream handles GET /api/dashboard/ws.
// Every ready snapshot is pushed as JSON text frames, or as msgpack binary
// frames with ?format=msgpack. Client messages change the selection.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatJSON
	}
	if format != formatJSON && format != formatMsgpack {
		http.Error(w, "format must be json or msgpack", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Coalesce bursts: the stream always sends the latest snapshot
	ready := make(chan struct{}, 1)
	subID := h.bus.Subscribe(events.SnapshotReady, func(*events.Event) {
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	defer h.bus.Unsubscribe(events.SnapshotReady, subID)

	h.log.Debug().Str("format", format).Msg("Dashboard stream opened")

	go h.readClientMessages(ctx, cancel, conn, format)

	var lastSent string
	push := func() error {
		snapshot, ok := h.orchestrator.Current()
		if !ok || snapshot.ID == lastSent {
			return nil
		}
		if err := h.writeMessage(ctx, conn, format, StreamMessage{Type: messageSnapshot, Snapshot: snapshot}); err != nil {
			return err
		}
		lastSent = snapshot.ID
		return nil
	}

	if err := push(); err != nil {
		h.log.Debug().Err(err).Msg("Initial snapshot push failed")
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			h.log.Debug().Msg("Dashboard stream closed")
			return
		case <-ready:
			if err := push(); err != nil {
				h.log.Debug().Err(err).Msg("Snapshot push failed")
				return
			}
		}
	}
}

func (h *Handler) readClientMessages(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, format string) {
	defer cancel()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				h.log.Debug().Err(err).Msg("Stream read failed")
			}
			return
		}

		var msg ClientMessage
		if err := decodeFrame(msgType, data, &msg); err != nil {
			h.replyError(ctx, conn, format, fmt.Errorf("invalid message: %w", err))
			continue
		}

		var generation uint64
		switch msg.Type {
		case "select_crop":
			generation, err = h.orchestrator.OnCropSelected(msg.Crop)
		case "select_location":
			generation, err = h.orchestrator.OnLocationSelected(msg.Region)
		case "select":
			generation, err = h.orchestrator.Select(msg.Crop, msg.Region)
		default:
			err = fmt.Errorf("unknown message type %q", msg.Type)
		}
		if err != nil {
			h.replyError(ctx, conn, format, err)
			continue
		}

		if err := h.writeMessage(ctx, conn, format, StreamMessage{Type: messageAccepted, Generation: generation}); err != nil {
			return
		}
	}
}

func (h *Handler) replyError(ctx context.Context, conn *websocket.Conn, format string, err error) {
	h.log.Debug().Err(err).Msg("Rejected stream message")
	if werr := h.writeMessage(ctx, conn, format, StreamMessage{Type: messageError, Error: err.Error()}); werr != nil {
		h.log.Debug().Err(werr).Msg("Failed to send error frame")
	}
}

func (h *Handler) writeMessage(ctx context.Context, conn *websocket.Conn, format string, msg StreamMessage) error {
	msgType, data, err := encodeFrame(format, msg)
	if err != nil {
		return fmt.Errorf("failed to encode stream message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := conn.Write(writeCtx, msgType, data); err != nil {
		return fmt.Errorf("failed to write stream message: %w", err)
	}
	return nil
}

// encodeFrame encodes msg as a JSON text frame or a msgpack binary frame.
// msgpack uses the json struct tags so both encodings share field names.
func encodeFrame(format string, msg interface{}) (websocket.MessageType, []byte, error) {
	if format == formatMsgpack {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(msg); err != nil {
			return 0, nil, err
		}
		return websocket.MessageBinary, buf.Bytes(), nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return 0, nil, err
	}
	return websocket.MessageText, data, nil
}

// decodeFrame decodes a client frame; binary frames are msgpack
func decodeFrame(msgType websocket.MessageType, data []byte, v interface{}) error {
	if msgType == websocket.MessageBinary {
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	}
	return json.Unmarshal(data, v)
}
