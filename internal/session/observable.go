package session

import "sync"

// Observable is a value slot that pushes its current value to new
// subscribers and every subsequent assignment to all of them.
//
// Writers are expected to stay on the coordinator's dispatch goroutine;
// readers may subscribe from any goroutine.
type Observable[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get snapshots the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores a new value and notifies every subscriber.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	o.value = value
	listeners := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may call Get.
	for _, fn := range listeners {
		fn(value)
	}
}

// Subscribe registers fn, immediately delivers the current value, and
// returns an unsubscribe function.
func (o *Observable[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	current := o.value
	o.mu.Unlock()

	fn(current)

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
