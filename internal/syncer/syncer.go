// Package syncer talks to the remote sheet endpoint: GET hydrates the full
// record set, POST pushes one changed record. Pushes run through an outbound
// queue that is sequential per record id, so two edits to the same asset can
// never land out of order, while the caller never waits on the network.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pm-dashboard-api/internal/models"

	"github.com/google/uuid"
)

// Client wraps the sheet endpoint. The URL is re-read on every call because
// it is operator-editable at runtime through the settings surface.
type Client struct {
	httpClient *http.Client
	sheetURL   func() string
}

func NewClient(sheetURL func() string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sheetURL:   sheetURL,
	}
}

// Fetch retrieves the full record set. The _t query parameter busts any
// intermediate cache the sheet endpoint sits behind. A missing URL or a
// non-array body is an error; the caller decides what to do with it.
func (c *Client) Fetch(ctx context.Context) ([]models.PMRecord, error) {
	url := c.sheetURL()
	if url == "" {
		return nil, fmt.Errorf("no sheet url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		url+"?_t="+strconv.FormatInt(time.Now().UnixMilli(), 10), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sheet fetch: unexpected status %d", resp.StatusCode)
	}

	var records []models.PMRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("sheet fetch: decode: %w", err)
	}
	return records, nil
}

// Push sends one record. The response body is ignored; a non-success status
// is a transport failure for the caller to surface, never to retry.
func (c *Client) Push(ctx context.Context, rec models.PMRecord) error {
	url := c.sheetURL()
	if url == "" {
		return fmt.Errorf("no sheet url configured")
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sheet push: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Result reports the outcome of one queued push.
type Result struct {
	TaskID   string    `json:"taskId"`
	RecordID string    `json:"recordId"`
	Error    string    `json:"error,omitempty"`
	Finished time.Time `json:"finished"`
}

func (r Result) OK() bool { return r.Error == "" }

type task struct {
	id  string
	rec models.PMRecord
	res chan Result
}

// queueDepth bounds each per-id queue. A full queue fails the enqueue
// immediately instead of blocking a save.
const queueDepth = 64

// Pusher runs one worker goroutine per record id, draining that id's queue
// in FIFO order. Different ids push concurrently.
type Pusher struct {
	client *Client

	mu     sync.Mutex
	queues map[string]chan task
	closed bool
	wg     sync.WaitGroup

	lastMu sync.RWMutex
	last   *Result
}

func NewPusher(client *Client) *Pusher {
	return &Pusher{
		client: client,
		queues: make(map[string]chan task),
	}
}

// Enqueue schedules a best-effort push of rec and returns a single-result
// channel. It never blocks: a closed pusher or a saturated queue resolves
// the result immediately with an error.
func (p *Pusher) Enqueue(rec models.PMRecord) <-chan Result {
	res := make(chan Result, 1)
	t := task{id: uuid.NewString(), rec: rec, res: res}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		res <- Result{TaskID: t.id, RecordID: rec.ID, Error: "pusher closed", Finished: time.Now()}
		return res
	}
	q, ok := p.queues[rec.ID]
	if !ok {
		q = make(chan task, queueDepth)
		p.queues[rec.ID] = q
		p.wg.Add(1)
		go p.drain(q)
	}

	// The send stays under the lock: Close also takes it before closing the
	// queues, so q cannot be closed mid-send. The send never blocks.
	select {
	case q <- t:
	default:
		res <- Result{TaskID: t.id, RecordID: rec.ID, Error: "push queue full", Finished: time.Now()}
	}
	return res
}

func (p *Pusher) drain(q chan task) {
	defer p.wg.Done()
	for t := range q {
		result := Result{TaskID: t.id, RecordID: t.rec.ID}
		if err := p.client.Push(context.Background(), t.rec); err != nil {
			result.Error = err.Error()
		}
		result.Finished = time.Now()

		p.lastMu.Lock()
		last := result
		p.last = &last
		p.lastMu.Unlock()

		t.res <- result
	}
}

// Last returns the most recent push outcome, for the sync status surface.
func (p *Pusher) Last() (Result, bool) {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}

// Close stops accepting work and waits for in-flight pushes to finish.
func (p *Pusher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
