package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eugenenazirov/trip-planner/internal/planner"
)

const maxItems = 1000

var (
	// ErrInvalidItems indicates the provided item set violates validation rules.
	ErrInvalidItems = errors.New("items must contain between 1 and 1000 named entries with non-negative weights")
)

// ItemStore provides access to the item set planned by the service.
type ItemStore interface {
	GetItems() (planner.Items, error)
	SetItems(items planner.Items) error
}

// MemoryStorage keeps the item set in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	items planner.Items
}

// NewMemoryStorage initialises an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: planner.Items{},
	}
}

// GetItems returns a defensive copy of the current item set.
func (s *MemoryStorage) GetItems() (planner.Items, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.Clone(), nil
}

// SetItems validates and stores a copy of items, replacing the previous set.
func (s *MemoryStorage) SetItems(items planner.Items) error {
	normalized, err := normalizeItems(items)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = normalized
	s.mu.Unlock()

	return nil
}

func normalizeItems(items planner.Items) (planner.Items, error) {
	if len(items) == 0 || len(items) > maxItems {
		return nil, ErrInvalidItems
	}

	out, err := planner.Normalize(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItems, err)
	}
	for name, weight := range out {
		if weight < 0 {
			return nil, fmt.Errorf("%w: %q weighs %d", ErrInvalidItems, name, weight)
		}
	}
	return out, nil
}
