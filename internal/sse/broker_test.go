package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// message is one parsed SSE frame.
type message struct {
	id, event, data string
}

func parseMessage(t *testing.T, raw []byte) message {
	t.Helper()
	var m message
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		key, value, _ := strings.Cut(line, ": ")
		switch key {
		case "id":
			m.id = value
		case "event":
			m.event = value
		case "data":
			m.data = value
		}
	}
	return m
}

func receive(t *testing.T, ch chan []byte, timeout time.Duration) (message, bool) {
	t.Helper()
	select {
	case raw, ok := <-ch:
		if !ok {
			return message{}, false
		}
		return parseMessage(t, raw), true
	case <-time.After(timeout):
		return message{}, false
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
	if _, ok := <-ch; ok {
		t.Error("channel not closed by Unsubscribe")
	}
}

func TestPublish_SequencesIDs(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "custom", Data: map[string]string{"n": "1"}})
	b.Publish(Event{Type: "custom", Data: map[string]string{"n": "2"}})

	first, ok := receive(t, ch, time.Second)
	if !ok {
		t.Fatal("timeout waiting for first message")
	}
	second, ok := receive(t, ch, time.Second)
	if !ok {
		t.Fatal("timeout waiting for second message")
	}
	if first.id != "1" || second.id != "2" {
		t.Errorf("ids = %q, %q; want 1, 2", first.id, second.id)
	}
	if first.event != "custom" || first.data != `{"n":"1"}` {
		t.Errorf("first = %+v", first)
	}
}

func TestNotify_ContentEventsThenOneReload(t *testing.T) {
	b := NewBroker(150 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify("created", "b.md")
	b.Notify("updated", "a.md")
	b.Notify("updated", "b.md")

	wantEvents := []string{EventContentCreated, EventContentUpdated, EventContentUpdated}
	for i, want := range wantEvents {
		m, ok := receive(t, ch, time.Second)
		if !ok {
			t.Fatalf("timeout waiting for content event %d", i)
		}
		if m.event != want {
			t.Errorf("event %d = %q, want %q", i, m.event, want)
		}
	}

	m, ok := receive(t, ch, time.Second)
	if !ok {
		t.Fatal("timeout waiting for reload")
	}
	if m.event != EventReload {
		t.Fatalf("event = %q, want reload", m.event)
	}
	var data ReloadData
	if err := json.Unmarshal([]byte(m.data), &data); err != nil {
		t.Fatalf("decode reload: %v", err)
	}
	if strings.Join(data.Paths, ",") != "a.md,b.md" {
		t.Errorf("reload paths = %v, want [a.md b.md]", data.Paths)
	}

	if extra, ok := receive(t, ch, 300*time.Millisecond); ok {
		t.Errorf("unexpected extra message %+v", extra)
	}
}

func TestNotify_NewWindowAfterReload(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	reloads := 0
	for _, path := range []string{"a.md", "b.md"} {
		b.Notify("deleted", path)
		for {
			m, ok := receive(t, ch, time.Second)
			if !ok {
				t.Fatalf("timeout after %s", path)
			}
			if m.event == EventReload {
				reloads++
				break
			}
		}
	}
	if reloads != 2 {
		t.Errorf("reloads = %d, want 2", reloads)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
	if n := len(ch); n != clientBuffer {
		t.Errorf("buffered = %d, want %d", n, clientBuffer)
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: EventContentUpdated, Data: map[string]string{"path": "x.md"}})
	b.Notify("updated", "x.md")
	if _, ok := <-b.Subscribe(); ok {
		t.Error("subscribe after close should return a closed channel")
	}
}

func TestServeHTTP_Stream(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	lines := make(chan string, 32)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	next := func() string {
		select {
		case l, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timeout reading stream")
		}
		return ""
	}

	if l := next(); l != "retry: 2000" {
		t.Errorf("first line = %q", l)
	}

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Notify("updated", "docs/intro.md")

	var events []string
	for len(events) < 2 {
		if l := next(); strings.HasPrefix(l, "event: ") {
			events = append(events, strings.TrimPrefix(l, "event: "))
		}
	}
	if events[0] != EventContentUpdated || events[1] != EventReload {
		t.Errorf("events = %v", events)
	}

	cancel()
	deadline = time.Now().Add(time.Second)
	for b.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not cleaned up after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeHTTP_Heartbeat(t *testing.T) {
	b := NewBroker(time.Second)
	b.heartbeat = 20 * time.Millisecond
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == ": ping" {
			return
		}
	}
	t.Fatal("no heartbeat received")
}
