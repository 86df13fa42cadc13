package mockapi

import "sync"

// table is an in-memory collection keyed by id that remembers insertion order.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]T)}
}

func (t *table[T]) put(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		t.order = append(t.order, id)
	}
	t.items[id] = v
}

// putChecked stores v unless check, run under the write lock against every
// stored item, returns a reason to reject it.
func (t *table[T]) putChecked(id string, v T, check func(items []T) string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := make([]T, 0, len(t.order))
	for _, oid := range t.order {
		items = append(items, t.items[oid])
	}
	if msg := check(items); msg != "" {
		return msg
	}
	if _, ok := t.items[id]; !ok {
		t.order = append(t.order, id)
	}
	t.items[id] = v
	return ""
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	return v, ok
}

// update applies fn to the stored item under the lock.
func (t *table[T]) update(id string, fn func(*T)) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[id]
	if !ok {
		return v, false
	}
	fn(&v)
	t.items[id] = v
	return v, true
}

func (t *table[T]) remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// list returns the items accepted by match in insertion order.
func (t *table[T]) list(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		v := t.items[id]
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out
}
