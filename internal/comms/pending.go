package comms

import "sync"

// pendingTable maps correlation ids to waiting callers. One table serves
// every room's outstanding asks; ids are uuids, so keys never collide
// across rooms or reused player connections.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[string]chan []byte
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[string]chan []byte)}
}

func (t *pendingTable) register(id string) <-chan []byte {
	ch := make(chan []byte, 1)
	t.mu.Lock()
	t.waiters[id] = ch
	t.mu.Unlock()
	return ch
}

// resolve hands the reply body to the registered caller and reports whether
// anyone was waiting. The entry is removed when a caller is found, so a
// duplicate reply cannot resolve twice.
func (t *pendingTable) resolve(id string, body []byte) bool {
	t.mu.Lock()
	ch, ok := t.waiters[id]
	if ok {
		delete(t.waiters, id)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	ch <- body
	return true
}

// drop removes a waiter whose caller has moved on, so a late reply cannot
// resolve a stale entry.
func (t *pendingTable) drop(id string) {
	t.mu.Lock()
	delete(t.waiters, id)
	t.mu.Unlock()
}
