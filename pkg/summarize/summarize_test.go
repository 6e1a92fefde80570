package summarize

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchDeliversJob(t *testing.T) {
	var mu sync.Mutex
	var received []Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var job Job
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		mu.Lock()
		received = append(received, job)
		mu.Unlock()
		w.Write([]byte(`{"summary": "ok"}`))
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 4, discardLogger())
	id := d.Dispatch("Item 1A. Risk Factors ...")
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("got %d jobs delivered, want 1", len(received))
	}
	if received[0].ReportID != id {
		t.Errorf("got report_id %q, want %q", received[0].ReportID, id)
	}
	if received[0].Content != "Item 1A. Risk Factors ..." {
		t.Errorf("got content %q", received[0].Content)
	}
}

func TestDispatchFailureIsAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 4, discardLogger())
	d.Dispatch("content")
	// Close drains the queue; a failing summarizer must not panic or block.
	d.Close()
}

func TestDispatchDropsWhenQueueFull(t *testing.T) {
	// No worker can drain port-1 requests fast; tiny queue forces drops.
	d := &Dispatcher{
		url:  "http://127.0.0.1:1/",
		log:  discardLogger(),
		jobs: make(chan Job, 1),
	}
	// Without a running worker the second dispatch must not block.
	d.Dispatch("first")
	d.Dispatch("second")

	if len(d.jobs) != 1 {
		t.Errorf("got %d queued jobs, want 1 (second dropped)", len(d.jobs))
	}
}
