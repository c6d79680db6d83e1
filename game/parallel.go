package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/blobs/systems"
)

// workKind selects what a chunk computes.
type workKind uint8

const (
	workSteering workKind = iota
	workNarrowPhase
)

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
}

// workChunk represents a range of items for a worker to process.
type workChunk struct {
	kind       workKind
	start, end int
	slot       int // output slot for narrow phase chunks
	dt         float64
}

// parallelState holds resources for parallel computation. Workers read
// snapshots and write only to their own intent indices or contact slot.
type parallelState struct {
	agents        []systems.Agent
	intents       []systems.Steer
	contactChunks [][]systems.Contact
	scratches     []workerScratch
	numWorkers    int

	// Worker pool channels
	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers:    numWorkers,
		scratches:     scratches,
		agents:        make([]systems.Agent, 0, 512),
		intents:       make([]systems.Steer, 0, 512),
		contactChunks: make([][]systems.Contact, numWorkers),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.runChunk(chunk, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

func (g *Game) runChunk(c workChunk, scratch *workerScratch) {
	switch c.kind {
	case workSteering:
		g.computeSteering(c.start, c.end, scratch, c.dt)
	case workNarrowPhase:
		p := g.parallel
		p.contactChunks[c.slot] = systems.NarrowPhase(p.contactChunks[c.slot][:0], g.pairs[c.start:c.end], g.colliderByID)
	}
}

// dispatch splits n items across the pool, running inline below the
// configured threshold. It returns the number of chunks used.
func (g *Game) dispatch(kind workKind, n int, dt float64) int {
	p := g.parallel
	if n < g.cfg.Physics.ParallelThreshold || p.numWorkers < 2 {
		g.runChunk(workChunk{kind: kind, start: 0, end: n, slot: 0, dt: dt}, &p.scratches[0])
		return 1
	}

	if !p.running {
		p.startWorkers(g)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	chunks := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{kind: kind, start: start, end: end, slot: chunks, dt: dt}
		chunks++
	}

	for i := 0; i < chunks; i++ {
		<-p.doneChan
	}
	return chunks
}

// computeSteering runs perception and steering for a range of agents.
func (g *Game) computeSteering(i0, i1 int, scratch *workerScratch, dt float64) {
	p := g.parallel
	for i := i0; i < i1; i++ {
		a := &p.agents[i]
		scratch.Neighbors = g.spatialGrid.QueryRadiusInto(
			scratch.Neighbors[:0],
			a.X, a.Y, a.Genome.Sight,
			a.ID, g.seen,
		)
		p.intents[i] = g.steering.Compute(a, scratch.Neighbors, g.seen, g.locate, dt)
	}
}

// locate reads the pre-motion position of an entity. Read-only, so safe from workers.
func (g *Game) locate(id uint64) (x, y float64, ok bool) {
	i, ok := g.seenIndex[id]
	if !ok {
		return 0, 0, false
	}
	s := &g.seen[i]
	return s.X, s.Y, true
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
