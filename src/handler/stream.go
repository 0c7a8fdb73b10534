package handler

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

const streamBufferSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamHub fans scan progress events out to websocket clients. Slow clients
// drop events rather than block the publisher.
type StreamHub struct {
	mu      sync.Mutex
	clients map[chan eventmodels.ScanProgressEvent]struct{}
}

func NewStreamHub() *StreamHub {
	return &StreamHub{
		clients: make(map[chan eventmodels.ScanProgressEvent]struct{}),
	}
}

func (h *StreamHub) Register() chan eventmodels.ScanProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan eventmodels.ScanProgressEvent, streamBufferSize)
	h.clients[ch] = struct{}{}
	return ch
}

func (h *StreamHub) Unregister(ch chan eventmodels.ScanProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, ch)
}

func (h *StreamHub) OnProgress(ev eventmodels.ScanProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			log.Warnf("StreamHub: dropping progress event for %s", ev.Ticker)
		}
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ch := s.streams.Register()
	defer s.streams.Unregister(ch)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("handleStream: failed to upgrade: %v", err)
		return
	}

	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-ch:
			if err := conn.WriteJSON(ev); err != nil {
				log.Debugf("handleStream: client gone: %v", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
