package p2p

import (
	"sync"
)

type listener struct {
	id int
	fn func(payload []byte)
}

// Emitter keeps the listeners of each named event channel.
// Safe for concurrent use, listeners are called outside the lock.
type Emitter struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[string][]listener // channel name -> listeners
}

func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string][]listener),
	}
}

// Listen registers fn on channel and returns the function removing it.
// Calling the returned function more than once is harmless.
func (e *Emitter) Listen(channel string, fn func(payload []byte)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[channel] = append(e.listeners[channel], listener{id: id, fn: fn})

	return func() { e.remove(channel, id) }
}

// Emit calls every listener of channel, in registration order.
// It returns the number of listeners reached.
func (e *Emitter) Emit(channel string, payload []byte) int {
	e.mu.RLock()
	snapshot := make([]listener, len(e.listeners[channel]))
	copy(snapshot, e.listeners[channel])
	e.mu.RUnlock()

	for _, l := range snapshot {
		l.fn(payload)
	}
	return len(snapshot)
}

func (e *Emitter) remove(channel string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.listeners[channel]
	for i, l := range current {
		if l.id == id {
			e.listeners[channel] = append(current[:i:i], current[i+1:]...)
			break
		}
	}
	// No empty slices left behind once a channel loses its last listener
	if len(e.listeners[channel]) == 0 {
		delete(e.listeners, channel)
	}
}
