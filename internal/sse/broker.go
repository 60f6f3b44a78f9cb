// Package sse streams catalog changes to browser clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/starford/datagen/internal/catalog"
)

// Event names written on the stream.
const (
	documentEventPrefix = "document."
	archiveUpdatedEvent = "archive.updated"
)

const clientBuffer = 64

// DocumentEvent is the payload of document.created, document.updated and
// document.deleted.
type DocumentEvent struct {
	Path       string `json:"path"`
	Year       int    `json:"year"`
	Department string `json:"department"`
}

// ArchiveEvent is the payload of archive.updated. Changes counts the
// document events folded into it since the previous one.
type ArchiveEvent struct {
	Changes int `json:"changes"`
}

// Broker fans catalog changes out to connected clients. archive.updated is
// emitted at most once per throttle window; changes that arrive inside the
// window are carried into the next one.
type Broker struct {
	throttle time.Duration

	mu       sync.Mutex
	clients  map[chan []byte]struct{}
	pending  int
	lastSent time.Time
	closed   bool
}

// NewBroker creates a broker. A non-positive throttle defaults to two seconds.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	return &Broker{
		throttle: throttle,
		clients:  make(map[chan []byte]struct{}),
	}
}

func frame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload)), nil
}

// send must be called with b.mu held. Slow clients lose the message.
func (b *Broker) send(msg []byte) {
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Notify publishes a catalog change. It has the catalog.EventCallback
// signature so it can be handed straight to catalog.Watch. Unknown kinds
// are dropped.
func (b *Broker) Notify(kind catalog.EventKind, path string) {
	if !kind.Valid() {
		return
	}
	year, dept := catalog.Location(path)
	msg, err := frame(documentEventPrefix+string(kind), DocumentEvent{Path: path, Year: year, Department: dept})
	if err != nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.send(msg)

	b.pending++
	now := time.Now()
	if now.Sub(b.lastSent) < b.throttle {
		return
	}
	summary, err := frame(archiveUpdatedEvent, ArchiveEvent{Changes: b.pending})
	if err != nil {
		return
	}
	b.send(summary)
	b.pending = 0
	b.lastSent = now
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close; on a closed broker it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects every client. Later calls are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
}

// ServeHTTP streams events to one client until it disconnects or the
// broker is closed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
