package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/datagen/internal/catalog"
)

// next reads one frame from ch and splits it into event name and payload.
func next(t *testing.T, ch chan []byte) (string, []byte) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return parseFrame(t, string(msg))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
	}
	return "", nil
}

func parseFrame(t *testing.T, s string) (string, []byte) {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(s, "\n\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "event: ") || !strings.HasPrefix(lines[1], "data: ") {
		t.Fatalf("malformed frame %q", s)
	}
	return strings.TrimPrefix(lines[0], "event: "), []byte(strings.TrimPrefix(lines[1], "data: "))
}

func TestNotify_DocumentPayloadCarriesLocation(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()

	b.Notify(catalog.EventCreated, "2020/hr/report.txt")

	name, data := next(t, ch)
	if name != "document.created" {
		t.Fatalf("event = %q", name)
	}
	var ev DocumentEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatal(err)
	}
	want := DocumentEvent{Path: "2020/hr/report.txt", Year: 2020, Department: "hr"}
	if ev != want {
		t.Errorf("payload = %+v, want %+v", ev, want)
	}

	name, data = next(t, ch)
	if name != "archive.updated" {
		t.Fatalf("event = %q, want archive.updated", name)
	}
	var sum ArchiveEvent
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Changes != 1 {
		t.Errorf("changes = %d, want 1", sum.Changes)
	}
}

func TestNotify_PathOutsideLeafHasNoLocation(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()

	b.Notify(catalog.EventDeleted, "stray.txt")

	name, data := next(t, ch)
	if name != "document.deleted" {
		t.Fatalf("event = %q", name)
	}
	if got := string(data); got != `{"path":"stray.txt","year":0,"department":""}` {
		t.Errorf("payload = %s", got)
	}
}

func TestNotify_ArchiveSummaryCarriesThrottledChanges(t *testing.T) {
	b := NewBroker(50 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()

	b.Notify(catalog.EventCreated, "2020/hr/a.txt")
	b.Notify(catalog.EventCreated, "2020/hr/b.txt")
	b.Notify(catalog.EventUpdated, "2020/legal/c.txt")

	// One summary for the first change; the other two are held back.
	if got := len(ch); got != 4 {
		t.Fatalf("frames = %d, want 3 document + 1 archive", got)
	}
	for range 4 {
		next(t, ch)
	}

	time.Sleep(60 * time.Millisecond)
	b.Notify(catalog.EventDeleted, "2021/hr/d.txt")

	if name, _ := next(t, ch); name != "document.deleted" {
		t.Fatalf("event = %q", name)
	}
	name, data := next(t, ch)
	if name != "archive.updated" {
		t.Fatalf("event = %q, want archive.updated", name)
	}
	var sum ArchiveEvent
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Changes != 3 {
		t.Errorf("changes = %d, want 3", sum.Changes)
	}
}

func TestNotify_UnknownKindDropped(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()

	b.Notify(catalog.EventKind("renamed"), "2020/hr/a.txt")

	if got := len(ch); got != 0 {
		t.Errorf("frames = %d, want 0", got)
	}
}

func TestNotify_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range clientBuffer + 10 {
			b.Notify(catalog.EventUpdated, "2020/hr/report.txt")
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full client")
	}
	if got := len(ch); got != clientBuffer {
		t.Errorf("buffered = %d, want %d", got, clientBuffer)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d after unsubscribe", n)
	}
	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(time.Second)
	ch := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("subscriber channel should be closed")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients = %d after close", n)
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
	b.Notify(catalog.EventCreated, "2020/hr/report.txt")
	b.Unsubscribe(ch)
}

func TestServeHTTP_StreamsUntilClose(t *testing.T) {
	b := NewBroker(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(context.Background())
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Notify(catalog.EventUpdated, "2021/legal/vertrag.txt")
	// Buffered frames are written before the handler sees the closed channel.
	b.Close()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: document.updated\n") ||
		!strings.Contains(body, `"year":2021,"department":"legal"`) {
		t.Errorf("body = %q", body)
	}
}

func TestServeHTTP_ClientDisconnect(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients = %d after disconnect", n)
	}
}
