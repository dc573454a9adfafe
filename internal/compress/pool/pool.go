// Package pool implements the bounded record-buffer ring and worker pool
// the writer uses to offload compression (§5): a fixed number of slots
// cycle through empty -> filling -> ready -> compressing -> drained.
// Compression runs on a pool of worker goroutines; a single sequencer
// goroutine reorders their (possibly out-of-order) results back into
// submission order and performs the actual writes, so no lock is ever
// held across a disk write.
package pool

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CompressFunc compresses one record's raw bytes.
type CompressFunc func(raw []byte) ([]byte, error)

// WriteFunc persists one compressed record to its final destination (file
// or buffer), called strictly in ascending submission-index order.
type WriteFunc func(index int, compressed []byte) error

// Pool is a bounded multi-producer/multi-consumer compression pipeline.
// Submit blocks (back-pressure) once ringSize records are in flight;
// Drain blocks until every submitted record has been compressed and
// written.
type Pool struct {
	compress CompressFunc
	write    WriteFunc

	mu       sync.Mutex
	cond     *sync.Cond
	ringSize int
	inFlight int
	nextIndex int // next submission index to hand out

	writeErr error

	jobs chan job
	done chan completion // workers -> sequencer, one per compressed job
	// eg replaces a bare sync.WaitGroup for worker lifecycle: it collects
	// a panic-turned-error from any worker goroutine into Close's return
	// value instead of letting it vanish, the same errgroup-per-stage
	// shape distr1-distri's batch builder uses to fan work out across
	// goroutines and join on the first failure.
	eg     *errgroup.Group
	seqDone chan struct{} // closed once the sequencer goroutine returns
}

type job struct {
	index int
	raw   []byte
}

type completion struct {
	index int
	data  []byte
	err   error
}

// New starts a pool of `workers` compression goroutines sharing a ring of
// `ringSize` in-flight slots, plus one sequencer goroutine that reorders
// their results and calls write in submission order.
func New(workers, ringSize int, compress CompressFunc, write WriteFunc) *Pool {
	if workers < 1 {
		workers = 1
	}
	if ringSize < workers {
		ringSize = workers
	}
	p := &Pool{
		compress: compress,
		write:    write,
		ringSize: ringSize,
		jobs:     make(chan job, ringSize),
		done:     make(chan completion, ringSize),
		seqDone:  make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	p.eg = &errgroup.Group{}
	for i := 0; i < workers; i++ {
		p.eg.Go(p.worker)
	}
	go p.sequence()
	return p
}

func (p *Pool) worker() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compression worker panicked: %v", r)
		}
	}()
	for j := range p.jobs {
		out, cerr := p.compress(j.raw)
		p.done <- completion{index: j.index, data: out, err: cerr}
	}
	return nil
}

// sequence is the pool's single I/O goroutine: it reorders completions
// back into submission order and calls write, always with p.mu released,
// so a slow disk write never blocks a worker's compression.
func (p *Pool) sequence() {
	defer close(p.seqDone)

	ready := make(map[int][]byte)
	nextWrite := 0
	for c := range p.done {
		ready[c.index] = c.data
		if c.err != nil {
			p.mu.Lock()
			if p.writeErr == nil {
				p.writeErr = c.err
			}
			p.mu.Unlock()
		}

		for {
			out, ok := ready[nextWrite]
			if !ok {
				break
			}
			delete(ready, nextWrite)
			idx := nextWrite
			nextWrite++

			p.mu.Lock()
			poisoned := p.writeErr != nil
			p.mu.Unlock()

			var writeErr error
			if !poisoned {
				writeErr = p.write(idx, out)
			}

			p.mu.Lock()
			if writeErr != nil && p.writeErr == nil {
				p.writeErr = writeErr
			}
			p.inFlight--
			p.cond.Broadcast()
			p.mu.Unlock()
		}
	}
}

// Submit hands raw bytes off for compression, blocking if the ring is
// full (back-pressure), and returns the submission error seen so far, if
// any (so a poisoned pool fails fast rather than accepting more work).
func (p *Pool) Submit(raw []byte) error {
	p.mu.Lock()
	for p.inFlight >= p.ringSize && p.writeErr == nil {
		p.cond.Wait()
	}
	if p.writeErr != nil {
		err := p.writeErr
		p.mu.Unlock()
		return err
	}
	index := p.nextIndex
	p.nextIndex++
	p.inFlight++
	p.mu.Unlock()

	p.jobs <- job{index: index, raw: raw}
	return nil
}

// Drain blocks until every submitted record has been compressed and
// written, then returns the first error encountered, if any. After Drain
// returns nil, the pool may be reused for further submissions.
func (p *Pool) Drain() error {
	p.mu.Lock()
	for p.inFlight > 0 && p.writeErr == nil {
		p.cond.Wait()
	}
	err := p.writeErr
	p.mu.Unlock()
	return err
}

// Close stops the worker and sequencer goroutines and returns the first
// error any worker encountered (including a recovered panic). No further
// Submit calls are valid afterward.
func (p *Pool) Close() error {
	close(p.jobs)
	err := p.eg.Wait()
	close(p.done)
	<-p.seqDone
	return err
}
