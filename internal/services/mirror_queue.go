package services

import (
	"context"
	"sync"
	"time"

	"graphv/internal/models"

	"go.uber.org/zap"
)

type mirrorOp int

const (
	opMirror mirrorOp = iota
	opForget
)

type mirrorJob struct {
	op    mirrorOp
	ds    models.Dataset
	nodes []models.Node
	edges []models.Edge
}

// MirrorQueue runs a GraphMirror in the background so uploads do not wait
// on the export. Jobs run one at a time in submission order. While a dataset
// waits in the queue only its latest job is kept, so a Forget followed by a
// re-upload still ends with the dataset mirrored.
type MirrorQueue struct {
	inner   GraphMirror
	log     *zap.Logger
	timeout time.Duration
	onError func(error)

	queue   chan string
	pending map[string]mirrorJob
	mu      sync.Mutex
	closed  bool
	done    chan struct{}
}

// NewMirrorQueue starts the worker. onError may be nil.
func NewMirrorQueue(inner GraphMirror, log *zap.Logger, size int, timeout time.Duration, onError func(error)) *MirrorQueue {
	q := &MirrorQueue{
		inner:   inner,
		log:     log,
		timeout: timeout,
		onError: onError,
		queue:   make(chan string, size),
		pending: make(map[string]mirrorJob),
		done:    make(chan struct{}),
	}
	go q.worker()
	return q
}

// Mirror schedules an export of the dataset.
func (q *MirrorQueue) Mirror(_ context.Context, ds *models.Dataset, nodes []models.Node, edges []models.Edge) error {
	q.schedule(mirrorJob{op: opMirror, ds: *ds, nodes: nodes, edges: edges})
	return nil
}

// Forget schedules removal of the dataset.
func (q *MirrorQueue) Forget(_ context.Context, ds *models.Dataset) error {
	q.schedule(mirrorJob{op: opForget, ds: *ds})
	return nil
}

func (q *MirrorQueue) schedule(job mirrorJob) {
	hash := job.ds.Hash

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if _, queued := q.pending[hash]; queued {
		q.pending[hash] = job
		return
	}

	select {
	case q.queue <- hash:
		q.pending[hash] = job
	default:
		q.log.Warn("mirror queue full, job skipped", zap.String("dataset", hash))
	}
}

func (q *MirrorQueue) worker() {
	defer close(q.done)
	for hash := range q.queue {
		q.mu.Lock()
		job := q.pending[hash]
		delete(q.pending, hash)
		q.mu.Unlock()

		q.run(job)
	}
}

func (q *MirrorQueue) run(job mirrorJob) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	var err error
	switch job.op {
	case opMirror:
		err = q.inner.Mirror(ctx, &job.ds, job.nodes, job.edges)
	case opForget:
		err = q.inner.Forget(ctx, &job.ds)
	}
	if err != nil {
		q.log.Warn("graph mirror job failed", zap.String("dataset", job.ds.Hash), zap.Error(err))
		if q.onError != nil {
			q.onError(err)
		}
	}
}

// Close drains queued jobs, then closes the wrapped mirror.
func (q *MirrorQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return q.inner.Close(ctx)
}
