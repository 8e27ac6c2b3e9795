package auth

import (
	"context"
	"sync"
	"time"
)

const denylistSweepInterval = time.Minute

// MemoryDenylist keeps revoked ids in a map. A background goroutine drops
// entries whose token has expired; Close stops it.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryDenylist(now func() time.Time) *MemoryDenylist {
	if now == nil {
		now = time.Now
	}
	d := &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     now,
		stopCh:  make(chan struct{}),
	}
	go d.sweepLoop(denylistSweepInterval)
	return d
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.entries[tokenID]; ok && prev.After(until) {
		return nil
	}
	d.entries[tokenID] = until
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.entries[tokenID]
	return ok, nil
}

// Len reports the number of tracked ids.
func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *MemoryDenylist) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.cleanup(d.now())
		case <-d.stopCh:
			return
		}
	}
}

func (d *MemoryDenylist) cleanup(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, until := range d.entries {
		if now.After(until) {
			delete(d.entries, id)
		}
	}
}

func (d *MemoryDenylist) Close() error {
	d.once.Do(func() {
		close(d.stopCh)
	})
	return nil
}
