// Package sse pushes content change and reload notifications to browsers
// over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventContentCreated = "content.created"
	EventContentUpdated = "content.updated"
	EventContentDeleted = "content.deleted"
	EventReload         = "reload"
)

const (
	clientBuffer     = 64
	retryMillis      = 2000
	defaultHeartbeat = 25 * time.Second
)

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ReloadData is the payload of a reload event: the markdown sources that
// changed since the previous reload, sorted.
type ReloadData struct {
	Paths []string `json:"paths"`
}

type hubState struct {
	clients map[chan []byte]struct{}
	seq     uint64
	// pending collects changed paths until the next reload fires.
	pending map[string]struct{}
}

func (s *hubState) broadcast(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	s.seq++
	msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", s.seq, event.Type, payload))

	for ch := range s.clients {
		select {
		case ch <- msg:
		default:
			// slow client; drop rather than stall the loop
		}
	}
}

// Broker fans events out to connected SSE clients. All mutable state is
// owned by one goroutine; public methods hand it closures over a channel.
//
// Content changes are forwarded as they arrive. Reloads are debounced: the
// first change opens a window of reloadDelay, and a single reload carrying
// every path changed in that window is sent when it closes.
type Broker struct {
	reloadDelay time.Duration
	heartbeat   time.Duration

	ops    chan func(*hubState)
	stop   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker that coalesces reloads over reloadDelay.
func NewBroker(reloadDelay time.Duration) *Broker {
	if reloadDelay <= 0 {
		reloadDelay = 2 * time.Second
	}

	b := &Broker{
		reloadDelay: reloadDelay,
		heartbeat:   defaultHeartbeat,
		ops:         make(chan func(*hubState)),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	st := &hubState{
		clients: make(map[chan []byte]struct{}),
		pending: make(map[string]struct{}),
	}
	var reloadC <-chan time.Time

	for {
		select {
		case <-b.stop:
			for ch := range st.clients {
				close(ch)
			}
			return

		case op := <-b.ops:
			op(st)
			if len(st.pending) > 0 && reloadC == nil {
				reloadC = time.After(b.reloadDelay)
			}

		case <-reloadC:
			reloadC = nil
			paths := make([]string, 0, len(st.pending))
			for p := range st.pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(st.pending)
			st.broadcast(Event{Type: EventReload, Data: ReloadData{Paths: paths}})
		}
	}
}

// do runs op on the loop goroutine. It reports false once the broker is closed.
func (b *Broker) do(op func(*hubState)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(st *hubState) { st.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(st *hubState) {
		if _, ok := st.clients[ch]; ok {
			delete(st.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(st *hubState) { resp <- len(st.clients) }) {
		return 0
	}
	return <-resp
}

// Publish sends event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(st *hubState) { st.broadcast(event) })
}

// Notify reports a markdown source change. kind is "created", "updated" or
// "deleted"; other kinds only schedule a reload.
func (b *Broker) Notify(kind, path string) {
	b.do(func(st *hubState) {
		data := map[string]string{"path": path}
		switch kind {
		case "created":
			st.broadcast(Event{Type: EventContentCreated, Data: data})
		case "updated":
			st.broadcast(Event{Type: EventContentUpdated, Data: data})
		case "deleted":
			st.broadcast(Event{Type: EventContentDeleted, Data: data})
		}
		st.pending[path] = struct{}{}
	})
}

// ServeHTTP streams events to one client (GET /events) until the request
// ends or the broker closes. Idle connections get a comment line every
// heartbeat so proxies keep them open.
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
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
