package boardstore

import (
	"sync"

	"github.com/google/uuid"
)

const laneBuffer = 64

// laneDispatcher runs queued operations FIFO per key while keys proceed
// independently of each other. The store keys lanes by board ID, which is
// what gives writes against one board their issue-order guarantee.
type laneDispatcher struct {
	mu     sync.Mutex
	lanes  map[uuid.UUID]chan func()
	wg     sync.WaitGroup
	closed bool
}

func newLaneDispatcher() *laneDispatcher {
	return &laneDispatcher{lanes: make(map[uuid.UUID]chan func())}
}

// enqueue appends op to the key's lane, starting the lane worker on first
// use. Returns false if the dispatcher is closed.
func (d *laneDispatcher) enqueue(key uuid.UUID, op func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	lane, ok := d.lanes[key]
	if !ok {
		lane = make(chan func(), laneBuffer)
		d.lanes[key] = lane
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for queued := range lane {
				queued()
			}
		}()
	}
	lane <- op
	return true
}

// close stops accepting work and waits for every lane to drain
func (d *laneDispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, lane := range d.lanes {
		close(lane)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
