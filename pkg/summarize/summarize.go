// Package summarize dispatches stored filing content to the downstream
// summarization service. Dispatch is fire-and-forget: jobs go onto a
// channel consumed by a background worker, and a summarizer failure is
// logged but never reaches the orchestrator's response path.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is one summarization request.
type Job struct {
	ReportID string `json:"report_id"`
	Content  string `json:"content"`
}

// Dispatcher posts jobs to the summarization service from a single
// background worker.
type Dispatcher struct {
	url    string
	client *http.Client
	log    *slog.Logger

	jobs chan Job
	once sync.Once
	wg   sync.WaitGroup
}

// NewDispatcher starts a dispatcher for the given service URL. queueSize
// bounds the pending-job channel; when the queue is full new jobs are
// dropped with a warning rather than blocking the caller.
func NewDispatcher(url string, queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
		jobs:   make(chan Job, queueSize),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Dispatch queues content for summarization and returns the generated
// report ID. Never blocks and never fails the caller.
func (d *Dispatcher) Dispatch(content string) string {
	job := Job{ReportID: uuid.NewString(), Content: content}
	select {
	case d.jobs <- job:
	default:
		d.log.Warn("summarization queue full, dropping job", "report_id", job.ReportID)
	}
	return job.ReportID
}

// Close stops accepting jobs and waits for the worker to drain the queue.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		if err := d.post(context.Background(), job); err != nil {
			d.log.Warn("summarization dispatch failed", "report_id", job.ReportID, "error", err)
		}
	}
}

func (d *Dispatcher) post(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}
	return nil
}
