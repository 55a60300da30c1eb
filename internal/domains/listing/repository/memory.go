package repository

import (
	"context"
	"lodging/internal/domains/listing/model"
	"sync"
)

// Memory is a Listing store held in process.
type Memory struct {
	mu       sync.RWMutex
	listings map[string]model.Listing
}

func NewMemory(listings ...model.Listing) *Memory {
	m := &Memory{listings: make(map[string]model.Listing, len(listings))}

	for _, listing := range listings {
		m.listings[listing.ID] = listing
	}

	return m
}

// Put adds or replaces a listing.
func (m *Memory) Put(listing model.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listings[listing.ID] = listing
}

func (m *Memory) FindByID(_ context.Context, id string) (model.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listings[id], nil
}

func (m *Memory) ListStatusesByHost(_ context.Context, hostID string) ([]model.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := []model.Status{}

	for _, listing := range m.listings {
		if listing.HostID == hostID {
			statuses = append(statuses, listing.Status)
		}
	}

	return statuses, nil
}
