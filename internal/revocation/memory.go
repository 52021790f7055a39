package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Memory is a process-local registry of revoked tokens. Entries are kept until
// the token's own expiry and are lost on restart.
type Memory struct {
	log *slog.Logger
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemory(log *slog.Logger) *Memory {
	return &Memory{
		log:     log,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Revoke records token as revoked until expiresAt. Revoking twice keeps the later expiry.
func (m *Memory) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(m.now()) {
		return nil
	}

	key := Key(token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.entries[key]; !ok || expiresAt.After(cur) {
		m.entries[key] = expiresAt
	}

	return nil
}

func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	expiresAt, ok := m.entries[Key(token)]
	m.mu.RUnlock()

	return ok && expiresAt.After(m.now()), nil
}

// Len returns the number of entries currently held, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Sweep drops entries whose token has expired and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, expiresAt := range m.entries {
		if !expiresAt.After(now) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

// Run sweeps expired entries every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	const op = "revocation.Memory.Run"

	log := m.log.With(slog.String("op", op))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("revocation sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Debug("evicted expired revocations", slog.Int("count", n))
			}
		}
	}
}
