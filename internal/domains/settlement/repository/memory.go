package repository

import (
	"context"
	"lodging/internal/domains/settlement/model"
	"sync"
)

// Memory is a Payout store held in process.
type Memory struct {
	mu      sync.RWMutex
	payouts map[string]model.Payout
}

func NewMemory(payouts ...model.Payout) *Memory {
	m := &Memory{payouts: make(map[string]model.Payout, len(payouts))}

	for _, payout := range payouts {
		m.payouts[payout.BookingID] = payout
	}

	return m
}

// Put records a payout, standing in for the payout service.
func (m *Memory) Put(payout model.Payout) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payouts[payout.BookingID] = payout
}

func (m *Memory) FindByBookingIDs(_ context.Context, bookingIDs []string) ([]model.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payouts := []model.Payout{}

	for _, id := range bookingIDs {
		if payout, ok := m.payouts[id]; ok {
			payouts = append(payouts, payout)
		}
	}

	return payouts, nil
}
