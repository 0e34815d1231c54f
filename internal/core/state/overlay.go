package state

// action records how a tracked entry diverged from the base map.
type action int

const (
	actionNone action = iota
	actionPut
	actionDelete
)

// entry is one tracked divergence.
type entry[V any] struct {
	action action
	value  V
}

// overlay buffers writes to a base map until Commit. Reads see the
// overlay first, then fall through to the base. Discarding the overlay
// (simply dropping it) leaves the base untouched, which is what gives an
// aborted operation its zero-side-effect guarantee.
type overlay[K comparable, V any] struct {
	base  map[K]V
	items map[K]entry[V]
}

func newOverlay[K comparable, V any](base map[K]V) *overlay[K, V] {
	return &overlay[K, V]{
		base:  base,
		items: make(map[K]entry[V]),
	}
}

// Get reads through the overlay into the base map.
func (o *overlay[K, V]) Get(key K) (V, bool) {
	if tracked, ok := o.items[key]; ok {
		if tracked.action == actionDelete {
			var zero V
			return zero, false
		}
		return tracked.value, true
	}
	value, ok := o.base[key]
	return value, ok
}

// Put records a pending write.
func (o *overlay[K, V]) Put(key K, value V) {
	o.items[key] = entry[V]{action: actionPut, value: value}
}

// Delete records a pending removal.
func (o *overlay[K, V]) Delete(key K) {
	o.items[key] = entry[V]{action: actionDelete}
}

// Commit flushes all pending writes into the base map.
func (o *overlay[K, V]) Commit() {
	for key, tracked := range o.items {
		switch tracked.action {
		case actionPut:
			o.base[key] = tracked.value
		case actionDelete:
			delete(o.base, key)
		}
	}
	o.items = make(map[K]entry[V])
}
