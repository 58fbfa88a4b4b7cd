package localcache

import "sync"

// AccountView follows the connected account. Switching loads the new
// address's namespace in one step, so readers never see one account's lot
// next to another account's tickets.
type AccountView struct {
	cache *Cache

	// switchMu orders Switch, Refresh and Reset so the last call to start
	// is the one left in current.
	switchMu sync.Mutex

	mu      sync.RWMutex
	current Snapshot
}

// NewAccountView function
func NewAccountView(cache *Cache) *AccountView {
	return &AccountView{cache: cache, current: Snapshot{TicketIDs: []string{}}}
}

// Switch makes addr the current account. An empty address disconnects.
func (v *AccountView) Switch(addr string) (Snapshot, error) {
	v.switchMu.Lock()
	defer v.switchMu.Unlock()
	return v.load(addr)
}

func (v *AccountView) load(addr string) (Snapshot, error) {
	next := Snapshot{TicketIDs: []string{}}
	if addr != "" {
		snap, err := v.cache.Snapshot(addr)
		if err != nil {
			return Snapshot{}, err
		}
		next = snap
	}
	v.set(next)
	return next, nil
}

func (v *AccountView) set(snap Snapshot) {
	v.mu.Lock()
	v.current = snap
	v.mu.Unlock()
}

// Refresh reloads the current account's entries, e.g. after an action
// confirmed.
func (v *AccountView) Refresh() (Snapshot, error) {
	v.switchMu.Lock()
	defer v.switchMu.Unlock()
	return v.load(v.Current().Address)
}

// Current function
func (v *AccountView) Current() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	snap := v.current
	snap.TicketIDs = append([]string{}, v.current.TicketIDs...)
	return snap
}

// Reset clears the current account's entries and the view.
func (v *AccountView) Reset() error {
	v.switchMu.Lock()
	defer v.switchMu.Unlock()
	addr := v.Current().Address
	if addr != "" {
		if err := v.cache.Clear(addr); err != nil {
			return err
		}
	}
	v.set(Snapshot{Address: addr, TicketIDs: []string{}})
	return nil
}
