package sink

import "github.com/vishnutej000/Memories-sub001/internal/core"

type broadcaster interface {
	Broadcast(chatID string, msg core.ChatMessage)
}

// WithBroadcast forwards each stored record to the API's stream clients.
type WithBroadcast struct {
	*SQLiteSink
	api broadcaster
}

func WithAPI(base *SQLiteSink, api broadcaster) *WithBroadcast {
	return &WithBroadcast{SQLiteSink: base, api: api}
}

func (w *WithBroadcast) Write(rec Record) error {
	if err := w.SQLiteSink.Write(rec); err != nil {
		return err
	}
	if w.api != nil {
		w.api.Broadcast(rec.ChatID, rec.Msg)
	}
	return nil
}
