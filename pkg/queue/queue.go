// Package queue bounds concurrent upstream image generations with a fixed
// worker pool. It wraps an ImageProvider and is itself an ImageProvider, so
// callers never see the pooling.
package queue

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"fable/pkg/fault"
	"fable/pkg/inference"
)

type Queue struct {
	provider inference.ImageProvider
	items    chan *item
	stop     chan struct{}
	workers  int
	wg       sync.WaitGroup
	once     sync.Once
}

type item struct {
	ctx    context.Context
	prompt string
	width  int
	height int
	result chan result
}

type result struct {
	data []byte
	mime string
	err  error
}

func New(provider inference.ImageProvider, workers, depth int) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		provider: provider,
		items:    make(chan *item, depth),
		stop:     make(chan struct{}),
		workers:  workers,
	}
}

func (q *Queue) Start() {
	log.Infof("image queue started with %d worker(s)", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
}

func (q *Queue) Stop() {
	q.once.Do(func() { close(q.stop) })
	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.stop:
			return
		case it := <-q.items:
			q.process(it)
		}
	}
}

func (q *Queue) process(it *item) {
	if err := it.ctx.Err(); err != nil {
		// Caller already gone; don't spend upstream effort.
		it.result <- result{err: err}
		return
	}
	data, mime, err := q.provider.GenerateImage(it.ctx, it.prompt, it.width, it.height)
	it.result <- result{data: data, mime: mime, err: err}
}

// GenerateImage enqueues the request and waits for a worker. A full queue is
// reported as resource exhaustion rather than blocking the caller.
func (q *Queue) GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, string, error) {
	it := &item{
		ctx:    ctx,
		prompt: prompt,
		width:  width,
		height: height,
		result: make(chan result, 1),
	}

	select {
	case q.items <- it:
	default:
		return nil, "", fault.New(fault.ResourceExhausted, map[string]any{
			"reason": "generation queue full",
		})
	}

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case r := <-it.result:
		return r.data, r.mime, r.err
	}
}
