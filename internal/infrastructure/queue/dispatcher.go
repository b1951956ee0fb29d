package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/defm/console/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrStopped settles tasks that were still queued when the dispatcher stopped.
var ErrStopped = errors.New("dispatcher stopped")

// Task is one independent backend call. Tasks with the same Key run on the
// same worker, in submission order.
type Task struct {
	Key string
	Run func(ctx context.Context) (any, error)
}

// Result is the settled outcome of a Task.
type Result struct {
	Key   string
	Value any
	Err   error
}

type settled struct {
	index int
	value any
	err   error
}

type job struct {
	ctx   context.Context
	index int
	task  Task
	done  chan<- settled
}

// Dispatcher runs independent calls on a fixed set of workers. Every task
// settles on its own: a failure never cancels or hides the others.
type Dispatcher struct {
	workers  []chan job
	log      zerolog.Logger
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stopOnce.Do(func() { close(d.stopped) })
	}()
}

// Submit queues tasks and blocks until each one has settled. The returned
// slice is index-aligned with tasks. Cancelling ctx settles tasks not yet
// queued with ctx.Err(); queued tasks see the cancellation through their own
// ctx argument.
func (d *Dispatcher) Submit(ctx context.Context, tasks ...Task) []Result {
	results := make([]Result, len(tasks))
	done := make(chan settled, len(tasks))
	queued := make([]bool, len(tasks))
	pending := 0

	for i, t := range tasks {
		results[i].Key = t.Key
		j := job{ctx: ctx, index: i, task: t, done: done}
		select {
		case d.workers[d.shardIndex(t.Key)] <- j:
			queued[i] = true
			pending++
		case <-ctx.Done():
			results[i].Err = ctx.Err()
		case <-d.stopped:
			results[i].Err = ErrStopped
		}
	}

	for pending > 0 {
		select {
		case s := <-done:
			results[s.index].Value, results[s.index].Err = s.value, s.err
			queued[s.index] = false
			pending--
		case <-d.stopped:
			for i, q := range queued {
				if q {
					results[i].Err = ErrStopped
				}
			}
			return results
		}
	}
	return results
}

// shardIndex maps a task key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				j.done <- settled{index: j.index, err: ErrStopped}
				return
			}
			value, err := d.run(j)
			if err != nil {
				metrics.DispatchTasksTotal.WithLabelValues("error").Inc()
				d.log.Debug().Err(err).
					Str("task", j.task.Key).
					Int("worker_id", id).
					Msg("task failed")
			} else {
				metrics.DispatchTasksTotal.WithLabelValues("ok").Inc()
			}
			j.done <- settled{index: j.index, value: value, err: err}
		}
	}
}

// run executes one task, turning a panic into that task's error.
func (d *Dispatcher) run(j job) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", j.task.Key, r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return nil, err
	}
	return j.task.Run(j.ctx)
}

// Value unpacks a Result produced by a task returning T.
func Value[T any](r Result) (T, error) {
	var zero T
	if r.Err != nil {
		return zero, r.Err
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, fmt.Errorf("task %s: unexpected result type %T", r.Key, r.Value)
	}
	return v, nil
}
