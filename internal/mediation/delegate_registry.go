package mediation

import "sync"

// DelegateRegistry owns ad delegates on behalf of the host. Ads only hold a
// DelegateRef, so releasing the delegate here is enough to stop event delivery.
type DelegateRegistry struct {
	mu        sync.RWMutex
	nextID    uint64
	delegates map[uint64]PartnerAdDelegate
}

func NewDelegateRegistry() *DelegateRegistry {
	return &DelegateRegistry{
		delegates: make(map[uint64]PartnerAdDelegate),
	}
}

// Register stores delegate and returns a non-owning handle to it.
func (r *DelegateRegistry) Register(delegate PartnerAdDelegate) DelegateRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.delegates[r.nextID] = delegate
	return DelegateRef{registry: r, id: r.nextID}
}

// Release drops the delegate behind ref. Releasing twice is a no-op.
func (r *DelegateRegistry) Release(ref DelegateRef) {
	if ref.registry != r {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.delegates, ref.id)
}

// Len returns the number of live delegates.
func (r *DelegateRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.delegates)
}

func (r *DelegateRegistry) lookup(id uint64) (PartnerAdDelegate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.delegates[id]
	return d, ok
}

// DelegateRef is a weak handle to a registered delegate. The zero value
// resolves to nothing.
type DelegateRef struct {
	registry *DelegateRegistry
	id       uint64
}

// Delegate resolves the handle. ok is false once the host released it.
func (ref DelegateRef) Delegate() (PartnerAdDelegate, bool) {
	if ref.registry == nil {
		return nil, false
	}
	return ref.registry.lookup(ref.id)
}
