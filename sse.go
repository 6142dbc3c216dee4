package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// client represents a single SSE connection.
type client struct {
	ch      chan string
	project string
}

// Broadcaster manages SSE clients grouped by project.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Register adds a client for a project and returns it.
func (b *Broadcaster) Register(project string) *client {
	c := &client{
		ch:      make(chan string, sseChannelBuffer),
		project: project,
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends a message to all clients of a project.
func (b *Broadcaster) Broadcast(project, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		if c.project == project {
			select {
			case c.ch <- data:
			default:
				// Channel full, skip slow client.
			}
		}
	}
}

// Publish encodes an event of the given type and broadcasts it. Fields in
// payload are merged next to "type".
func (b *Broadcaster) Publish(project, eventType string, payload map[string]any) {
	evt := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		evt[k] = v
	}
	evt["type"] = eventType
	data, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("encode event", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	b.Broadcast(project, string(data))
}

// ClientCount returns the number of connected clients for a project.
func (b *Broadcaster) ClientCount(project string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for c := range b.clients {
		if c.project == project {
			n++
		}
	}
	return n
}

// ServeSSE handles an SSE connection for a project.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, project string, onConnect func(c *client), onDisconnect func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(project)
	defer func() {
		b.Unregister(c)
		if onDisconnect != nil {
			onDisconnect()
		}
	}()

	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
