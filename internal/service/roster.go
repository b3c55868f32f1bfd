package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridaworks/talentd/internal/domain"
)

// RosterSource lists the full roster, typically backed by the identities
// table.
type RosterSource interface {
	ListAll(ctx context.Context) ([]domain.RosterEntry, error)
}

// RosterCache keeps the roster resident in memory. The roster is small
// (thousands of rows) and read on every enrichment, so one lazy load per
// rebuild beats a query per candidate. Reload is called after a reindex;
// nothing else invalidates the cache.
type RosterCache struct {
	source RosterSource

	mu      sync.RWMutex
	loaded  bool
	entries map[string]domain.RosterEntry
}

func NewRosterCache(source RosterSource) *RosterCache {
	return &RosterCache{source: source}
}

// Get returns the roster entry for an employee id, loading the roster on
// first use.
func (c *RosterCache) Get(ctx context.Context, employeeID string) (domain.RosterEntry, bool, error) {
	c.mu.RLock()
	if c.loaded {
		entry, ok := c.entries[employeeID]
		c.mu.RUnlock()
		return entry, ok, nil
	}
	c.mu.RUnlock()

	if err := c.Reload(ctx); err != nil {
		return domain.RosterEntry{}, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[employeeID]
	return entry, ok, nil
}

// All returns every cached entry, loading the roster on first use.
func (c *RosterCache) All(ctx context.Context) ([]domain.Identity, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()

	if !loaded {
		if err := c.Reload(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	identities := make([]domain.Identity, 0, len(c.entries))
	for _, entry := range c.entries {
		identities = append(identities, entry.Identity)
	}
	return identities, nil
}

// Size returns the number of cached entries, zero before the first load.
func (c *RosterCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reload replaces the cached roster with the current source contents.
func (c *RosterCache) Reload(ctx context.Context) error {
	rows, err := c.source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	entries := make(map[string]domain.RosterEntry, len(rows))
	for _, row := range rows {
		entries[row.EmployeeID] = row
	}

	c.mu.Lock()
	c.entries = entries
	c.loaded = true
	c.mu.Unlock()
	return nil
}
