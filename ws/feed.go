package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{"events"},
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ConferenceEvent is one monitoring record pushed to connected clients.
type ConferenceEvent struct {
	Room    string `json:"room"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Feed broadcasts conference lifecycle events to websocket subscribers.
// A nil Feed is valid and drops everything.
type Feed struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewFeed() *Feed {
	value := Feed{conns: make(map[*websocket.Conn]bool)}
	return &value
}

// Start serves the feed on addr. It returns immediately; the listener runs
// until the process exits.
func (f *Feed) Start(addr string) {
	if f == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", f.serve)
	go func() {
		err := http.ListenAndServe(addr, mux)
		if err != nil {
			logger.Log(logrus.ErrorLevel, "event feed stopped: "+err.Error())
		}
	}()
	logger.Log(logrus.InfoLevel, "event feed listening on "+addr)
}

func (f *Feed) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "websocket upgrade failed: "+err.Error())
		return
	}
	f.mu.Lock()
	f.conns[conn] = true
	f.mu.Unlock()
	logger.Log(logrus.DebugLevel, "event feed client connected")

	go func() {
		for {
			// Clients only listen. Read to notice disconnects.
			_, _, err := conn.ReadMessage()
			if err != nil {
				f.mu.Lock()
				delete(f.conns, conn)
				f.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Broadcast pushes one event to every connected client. Failed writes drop
// the client.
func (f *Feed) Broadcast(room string, eventType string, channel string) {
	if f == nil {
		return
	}
	evt := ConferenceEvent{
		Room:    room,
		Type:    eventType,
		Channel: channel}
	body, err := json.Marshal(&evt)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "error marshalling event: "+err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		err = conn.WriteMessage(websocket.TextMessage, body)
		if err != nil {
			logger.Log(logrus.DebugLevel, "dropping event feed client: "+err.Error())
			delete(f.conns, conn)
			conn.Close()
		}
	}
}
