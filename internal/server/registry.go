// Package server keeps the connection registry: a bounded arena of slots
// binding each live connection to the identity it registered with.
package server

import "container/heap"

// SlotState is the lifecycle position of a registry slot.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotRegistering
	SlotActive
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotRegistering:
		return "registering"
	case SlotActive:
		return "active"
	default:
		return "unknown"
	}
}

// SlotRef identifies a slot across its lifetime. The generation changes
// every time the slot is cleared, so a ref held past a disconnect never
// resolves to the connection that reused the index.
type SlotRef struct {
	index int
	gen   uint64
}

// Index returns the slot position in registry order.
func (r SlotRef) Index() int {
	return r.index
}

// Slot is a read-only view of one registry entry.
type Slot[H comparable] struct {
	Handle   H
	Identity string
	State    SlotState
}

type slot[H comparable] struct {
	handle   H
	identity string
	state    SlotState
	gen      uint64
}

// Registry maps connection handles to identities. Capacity is fixed at
// construction; slots are allocated on demand and freed indices are
// reused lowest first.
//
// Registry is not safe for concurrent use. The hub loop is its only
// mutator.
type Registry[H comparable] struct {
	slots    []slot[H]
	free     freeList
	capacity int
	active   int
}

// NewRegistry creates a registry holding at most capacity connections.
func NewRegistry[H comparable](capacity int) *Registry[H] {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry[H]{capacity: capacity}
}

// Cap returns the maximum number of occupied slots.
func (r *Registry[H]) Cap() int {
	return r.capacity
}

// Len returns the number of active slots.
func (r *Registry[H]) Len() int {
	return r.active
}

// Occupied returns the number of registering and active slots.
func (r *Registry[H]) Occupied() int {
	return len(r.slots) - r.free.Len()
}

// Reserve binds handle to the first empty slot in the registering state.
func (r *Registry[H]) Reserve(handle H) (SlotRef, error) {
	if _, err := r.Find(handle); err == nil {
		return SlotRef{}, ErrDuplicateHandle
	}

	var idx int
	switch {
	case r.free.Len() > 0:
		idx = heap.Pop(&r.free).(int)
	case len(r.slots) < r.capacity:
		r.slots = append(r.slots, slot[H]{})
		idx = len(r.slots) - 1
	default:
		return SlotRef{}, ErrRegistryFull
	}

	s := &r.slots[idx]
	s.handle = handle
	s.state = SlotRegistering
	return SlotRef{index: idx, gen: s.gen}, nil
}

// Activate assigns the identity of a registering slot and marks it active.
// The identity cannot be changed afterwards.
func (r *Registry[H]) Activate(ref SlotRef, identity string) error {
	s, ok := r.resolve(ref)
	if !ok {
		return ErrNotFound
	}
	if s.state == SlotActive {
		return ErrAlreadyActive
	}
	if identity == "" {
		return ErrEmptyIdentity
	}

	s.identity = identity
	s.state = SlotActive
	r.active++
	return nil
}

// Register reserves a slot for handle and activates it with identity.
func (r *Registry[H]) Register(handle H, identity string) (SlotRef, error) {
	if identity == "" {
		return SlotRef{}, ErrEmptyIdentity
	}
	ref, err := r.Reserve(handle)
	if err != nil {
		return SlotRef{}, err
	}
	if err := r.Activate(ref, identity); err != nil {
		r.Remove(ref)
		return SlotRef{}, err
	}
	return ref, nil
}

// Find returns the slot currently bound to handle.
func (r *Registry[H]) Find(handle H) (SlotRef, error) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.state != SlotEmpty && s.handle == handle {
			return SlotRef{index: i, gen: s.gen}, nil
		}
	}
	return SlotRef{}, ErrNotFound
}

// Lookup returns a copy of the slot ref points to.
func (r *Registry[H]) Lookup(ref SlotRef) (Slot[H], bool) {
	s, ok := r.resolve(ref)
	if !ok {
		return Slot[H]{}, false
	}
	return Slot[H]{Handle: s.handle, Identity: s.identity, State: s.state}, true
}

// Remove clears the slot and returns it to the free list. Removing an
// empty slot or a stale ref is a no-op and reports false.
func (r *Registry[H]) Remove(ref SlotRef) bool {
	s, ok := r.resolve(ref)
	if !ok {
		return false
	}
	if s.state == SlotActive {
		r.active--
	}

	var zero H
	s.handle = zero
	s.identity = ""
	s.state = SlotEmpty
	s.gen++
	heap.Push(&r.free, ref.index)
	return true
}

// ActiveHandles returns a snapshot of the active handles in registry order.
func (r *Registry[H]) ActiveHandles() []H {
	handles := make([]H, 0, r.active)
	for i := range r.slots {
		if r.slots[i].state == SlotActive {
			handles = append(handles, r.slots[i].handle)
		}
	}
	return handles
}

// Handles returns every occupied handle, registering ones included.
func (r *Registry[H]) Handles() []H {
	handles := make([]H, 0, r.Occupied())
	for i := range r.slots {
		if r.slots[i].state != SlotEmpty {
			handles = append(handles, r.slots[i].handle)
		}
	}
	return handles
}

func (r *Registry[H]) resolve(ref SlotRef) (*slot[H], bool) {
	if ref.index < 0 || ref.index >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[ref.index]
	if s.state == SlotEmpty || s.gen != ref.gen {
		return nil, false
	}
	return s, true
}

// freeList is a min-heap of slot indices.
type freeList []int

func (f freeList) Len() int           { return len(f) }
func (f freeList) Less(i, j int) bool { return f[i] < f[j] }
func (f freeList) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *freeList) Push(x any) {
	*f = append(*f, x.(int))
}

func (f *freeList) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}
