package repository

import (
	"cmp"
	"context"
	"fmt"
	"lodging/internal/domains/booking/model"
	"slices"
	"sync"
	"time"
)

// Memory is a Booking store held in process. One mutex serializes every write, which
// gives Transition the same compare-and-swap guarantee as the guarded UPDATE and makes
// the confirmed-overlap check atomic with the write.
type Memory struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
}

func NewMemory(bookings ...model.Booking) *Memory {
	m := &Memory{bookings: make(map[string]model.Booking, len(bookings))}

	for _, booking := range bookings {
		m.bookings[booking.ID] = booking
	}

	return m
}

func (m *Memory) Insert(_ context.Context, booking model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[booking.ID]; ok {
		return fmt.Errorf("failed to insert data (%s): duplicate id %s", model.EntityName, booking.ID)
	}

	m.bookings[booking.ID] = booking

	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.bookings[id], nil
}

// FindLatest is FindByID; the memory store has no replica.
func (m *Memory) FindLatest(ctx context.Context, id string) (model.Booking, error) {
	return m.FindByID(ctx, id)
}

func (m *Memory) FindOverlapping(_ context.Context, listingID string, from, to time.Time, statuses ...model.Status) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []model.Booking{}

	for _, booking := range m.bookings {
		if booking.ListingID != listingID || !booking.Overlaps(from, to) {
			continue
		}

		if len(statuses) > 0 && !slices.Contains(statuses, booking.Status) {
			continue
		}

		result = append(result, booking)
	}

	slices.SortFunc(result, func(a, b model.Booking) int {
		return cmp.Or(a.CheckIn.Compare(b.CheckIn), cmp.Compare(a.ID, b.ID))
	})

	return result, nil
}

func (m *Memory) List(_ context.Context, filter model.ListFilter) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []model.Booking{}

	for _, booking := range m.bookings {
		switch {
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, booking.Status):
			continue
		case filter.HostID != "" && booking.HostID != filter.HostID:
			continue
		case filter.ListingID != "" && booking.ListingID != filter.ListingID:
			continue
		case !filter.CheckOutOnOrBefore.IsZero() && booking.CheckOut.After(filter.CheckOutOnOrBefore):
			continue
		}

		result = append(result, booking)
	}

	slices.SortFunc(result, func(a, b model.Booking) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return result, nil
}

func (m *Memory) Transition(_ context.Context, id string, from model.Status, change model.Transition) (model.Booking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booking, ok := m.bookings[id]
	if !ok || booking.Status != from {
		return model.Booking{}, false, nil
	}

	if change.To.Occupies() && !booking.Status.Occupies() && m.occupied(booking) {
		return model.Booking{}, false, model.ErrListingUnavailable
	}

	change.Apply(&booking)
	m.bookings[id] = booking

	return booking, true, nil
}

// occupied reports whether another booking already holds any of the dates of b.
func (m *Memory) occupied(b model.Booking) bool {
	for _, other := range m.bookings {
		if other.ID != b.ID && other.ListingID == b.ListingID && other.Status.Occupies() && other.Overlaps(b.CheckIn, b.CheckOut) {
			return true
		}
	}

	return false
}

func (m *Memory) ExpirePending(_ context.Context, cutoff time.Time, change model.Transition) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := []model.Booking{}

	for id, booking := range m.bookings {
		if booking.Status != model.StatusPendingPayment || !booking.CreatedAt.Before(cutoff) {
			continue
		}

		change.Apply(&booking)
		m.bookings[id] = booking

		expired = append(expired, booking)
	}

	slices.SortFunc(expired, func(a, b model.Booking) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return expired, nil
}
