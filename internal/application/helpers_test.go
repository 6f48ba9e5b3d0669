package application

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
)

const (
	testSessionURL = "https://api.example.test/api/auth/session"
	testMissionURL = "https://api.example.test/api/mission/complete-mission"
)

var testPingURLs = []string{"https://nw-a.example.test/api/network/ping", "https://nw-b.example.test/api/network/ping"}

// fakeClock fires every timer at once and advances its own time by the
// requested duration.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)

	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// blockingClock never fires and signals every time a timer is armed.
type blockingClock struct {
	armed chan time.Duration
}

func (c *blockingClock) Now() time.Time {
	return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
}

func (c *blockingClock) After(d time.Duration) <-chan time.Time {
	c.armed <- d
	return make(chan time.Time)
}

func okResponse(data string) domain.APIResponse {
	code := 0
	return domain.APIResponse{StatusCode: 200, Code: &code, Data: json.RawMessage(data)}
}

func codeResponse(code int, data string) domain.APIResponse {
	resp := domain.APIResponse{StatusCode: 200, Code: &code}
	if data != "" {
		resp.Data = json.RawMessage(data)
	}
	return resp
}

func testHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		PingEndpoints:   testPingURLs,
		Interval:        60 * time.Second,
		PingTimeout:     45 * time.Second,
		ProtocolVersion: "2.2.7",
		SmoothZeroScore: true,
		Policy:          NewRetryPolicy(3),
	}
}

func isSessionCall(req domain.APIRequest) bool {
	return req.Endpoint == testSessionURL
}

func isPingCall(req domain.APIRequest) bool {
	return req.Endpoint != testSessionURL
}

func cancelledCall(ctx context.Context, req domain.APIRequest) (domain.APIResponse, error) {
	<-ctx.Done()
	return domain.APIResponse{}, &domain.TransientError{Endpoint: req.Endpoint, Err: ctx.Err()}
}
