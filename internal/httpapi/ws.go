package httpapi

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vishnutej000/Memories-sub001/internal/core"
)

// StreamEvent is one stored message pushed to stream subscribers.
type StreamEvent struct {
	ChatID  string           `json:"chat_id"`
	Message core.ChatMessage `json:"message"`
}

type streamClient struct {
	ch      chan StreamEvent
	chatID  string
	filters Filters
}

// handleStream upgrades to WebSocket and forwards stored messages as they
// arrive. Optional query parameters narrow the feed: chat_id plus the usual
// message filters.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(baseWriter(w), r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.CORSOrigins,
	})
	if err != nil {
		return
	}

	client := &streamClient{
		ch:      make(chan StreamEvent, 256),
		chatID:  r.URL.Query().Get("chat_id"),
		filters: filters.CloneForStream(),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	s.clients[client] = struct{}{}
	s.mu.Unlock()
	s.metrics.IncWSClients(1)

	defer func() {
		s.mu.Lock()
		delete(s.clients, client)
		s.mu.Unlock()
		s.metrics.IncWSClients(-1)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()

	// Reads are discarded; the read loop only notices client disconnects.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-client.ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast fans a stored message out to connected stream clients. Slow
// clients drop events rather than block the writer.
func (s *Server) Broadcast(chatID string, msg core.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if client.chatID != "" && client.chatID != chatID {
			continue
		}
		if !client.filters.Matches(msg) {
			continue
		}
		select {
		case client.ch <- StreamEvent{ChatID: chatID, Message: msg}:
		default:
			s.metrics.IncBroadcastDrops()
		}
	}
}
