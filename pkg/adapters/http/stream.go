package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/consult/pkg/domain"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- *domain.SessionDiff]struct{} // SessionID -> set of channels
	reloads     map[chan<- struct{}]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty subscriber registry.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- *domain.SessionDiff]struct{}),
		reloads:     make(map[chan<- struct{}]struct{}),
		logger:      logger,
	}
}

// SubscribeReloads registers a listener for content reloads. The returned func
// unregisters it and closes the channel.
func (sm *StreamManager) SubscribeReloads() (<-chan struct{}, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan struct{}, 1)
	sm.reloads[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.reloads, ch)
			close(ch)
		})
	}
}

// ReloadSubscribers returns the number of reload listeners.
func (sm *StreamManager) ReloadSubscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.reloads)
}

// BroadcastReload signals every reload listener. A listener with a signal
// still pending is not signalled twice.
func (sm *StreamManager) BroadcastReload() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.reloads {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a listener for sessionID. The returned func unregisters it and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan *domain.SessionDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.SessionDiff, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- *domain.SessionDiff]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of listeners on sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast delivers diff to every listener of sessionID. Slow listeners drop messages.
func (sm *StreamManager) Broadcast(sessionID string, diff *domain.SessionDiff) {
	if diff == nil {
		return
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- diff:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// SubscribeEvents handles GET /events (SSE).
//
// With session_id it streams session diffs; the optional watch query
// ("node,answers,history") drops diffs that touch none of the listed fields.
// Without session_id it streams content reloads, when the server was given a
// reload channel. All such clients share that one channel.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.streamReloads(w, r, flusher)
		return
	}

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, f := range strings.Split(watch, ",") {
			watchList = append(watchList, strings.TrimSpace(f))
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: subscribed to session", "session_id", sessionID)

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !wanted(diff, watchList) {
				continue
			}
			payload, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: diff encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) streamReloads(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	if s.reloads == nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required: content reloads are not watched"})
		return
	}
	events, cancel := s.Streams.SubscribeReloads()
	defer cancel()

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: content\n\n")
			flusher.Flush()
		}
	}
}

// forwardReloads fans every signal of reloads out to the reload listeners
// until the channel closes.
func (s *Server) forwardReloads(reloads <-chan struct{}) {
	for range reloads {
		s.Streams.BroadcastReload()
	}
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func wanted(diff *domain.SessionDiff, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	for _, field := range watchList {
		switch field {
		case "node":
			if diff.CurrentNodeID != nil || diff.Restarted {
				return true
			}
		case "answers":
			if len(diff.Answers) > 0 {
				return true
			}
		case "history":
			if diff.History != nil {
				return true
			}
		}
	}
	return false
}
