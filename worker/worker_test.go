package worker

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestPoolOrdersWorkPerKey(t *testing.T) {
	p := New(4, 16, nil)

	keys := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var mu sync.Mutex
	seen := make(map[uuid.UUID][]int)
	for i := range 100 {
		for _, key := range keys {
			p.Submit(key, func() {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			})
		}
	}
	p.Close()

	for _, key := range keys {
		got := seen[key]
		if len(got) != 100 {
			t.Fatalf("expected 100 tasks for %v, got %d", key, len(got))
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("expected tasks of %v to run in order, got %v at %d", key, v, i)
			}
		}
	}
}

func TestPoolRecoversAndCloses(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	p := New(1, 0, log)

	key := uuid.New()
	done := false
	p.Submit(key, func() { panic("boom") })
	p.Submit(key, func() { done = true })
	p.Close()
	p.Close()

	if !done {
		t.Fatalf("expected the worker to survive a panicking task")
	}
	if p.Submit(key, func() {}) {
		t.Fatalf("expected a closed pool to reject work")
	}
}

type stuckTransport struct {
	release chan struct{}
}

func (stuckTransport) Configure(sentry.ClientOptions) {}
func (stuckTransport) SendEvent(*sentry.Event)        {}
func (s stuckTransport) Flush(time.Duration) bool {
	<-s.release
	return true
}

func TestPoolDoesNotWaitForFlush(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	p := New(1, 0, log)
	defer p.Close()

	tr := stuckTransport{release: make(chan struct{})}
	defer close(tr.release)
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: tr})
	if err != nil {
		t.Fatalf("creating sentry client: %v", err)
	}
	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	defer hub.BindClient(prev)

	key := uuid.New()
	done := make(chan struct{})
	go func() {
		p.Submit(key, func() { panic("boom") })
		p.Submit(key, func() { close(done) })
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected the worker to move on before sentry finished flushing")
	}
}
