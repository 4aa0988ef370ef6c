package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T) (string, *recorder) {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, root, logger, rec.record)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(100 * time.Millisecond)
	return root, rec
}

func TestWatcher_NewFileReported(t *testing.T) {
	root, rec := startWatcher(t)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new.md")
	}, "created event not received")
}

func TestWatcher_UpdateAndDelete(t *testing.T) {
	root, rec := startWatcher(t)
	p := filepath.Join(root, "page.md")
	_ = os.WriteFile(p, []byte("# One"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:page.md")
	}, "created event not received")

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("\nmore")
	_ = f.Close()
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("updated:page.md")
	}, "updated event not received")

	_ = os.Remove(p)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:page.md")
	}, "deleted event not received")
}

func TestWatcher_IgnoresNonMarkdown(t *testing.T) {
	root, rec := startWatcher(t)
	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "marker.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:marker.md")
	}, "marker event not received")
	if rec.has("created:notes.txt") {
		t.Error("non-markdown file reported")
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	root, rec := startWatcher(t)
	dir := filepath.Join(root, "docs")
	_ = os.Mkdir(dir, 0o755)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "intro.md"), []byte("# Intro"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:docs/intro.md")
	}, "file in new directory not reported")
}
