package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultTaskTimeout = 10 * time.Second
)

// Task is one side effect. It runs on a background context, never the request's.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs side effects on a fixed pool of goroutines fed by a bounded queue.
// Submit never blocks; a task that does not fit is dropped and logged.
type Dispatcher struct {
	queue       chan Task
	log         Logger
	taskTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(workers, queueSize int, log Logger) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	d := &Dispatcher{
		queue:       make(chan Task, queueSize),
		log:         log,
		taskTimeout: defaultTaskTimeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Submit enqueues t and reports whether it was accepted.
func (d *Dispatcher) Submit(t Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Errorf("dispatcher closed, dropping %s", t.Name)
		return false
	}
	select {
	case d.queue <- t:
		return true
	default:
		d.log.Errorf("dispatch queue full, dropping %s", t.Name)
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("side effect %s panicked: %v", t.Name, r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
	defer cancel()
	if err := t.Run(ctx); err != nil {
		d.log.Errorf("side effect %s failed: %v", t.Name, err)
	}
}
