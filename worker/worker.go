package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/oomph-ac/replica/oerror"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// Pool runs evaluations on a fixed set of goroutines. Work submitted for the same key always runs on
// the same goroutine in submission order, so the evaluations of one player never run concurrently.
type Pool struct {
	log    *logrus.Logger
	queues []chan func()

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts a pool of n goroutines, each with a queue of the given size. A non-positive n uses one
// goroutine per CPU.
func New(n, queueSize int, log *logrus.Logger) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Pool{log: log, queues: make([]chan func(), n)}
	for i := range p.queues {
		p.queues[i] = make(chan func(), max(queueSize, 0))
		p.wg.Add(1)
		go p.worker(p.queues[i])
	}
	return p
}

func (p *Pool) worker(queue chan func()) {
	defer p.wg.Done()
	for f := range queue {
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer func() {
		if v := recover(); v != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker task crashed: %v", v))
			go hub.Flush(5 * time.Second)
			p.log.Errorf("worker task crashed: %v", v)
		}
	}()
	f()
}

// Submit queues f on the goroutine owning key. It blocks while that queue is full and returns false
// if the pool was closed.
func (p *Pool) Submit(key uuid.UUID, f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.queues[xxh3.Hash(key[:])%uint64(len(p.queues))] <- f
	return true
}

// Close stops accepting work and waits for the queued work to finish.
func (p *Pool) Close() {
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
