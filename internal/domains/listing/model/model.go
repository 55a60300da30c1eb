package model

import "lodging/shared/model"

const (
	TableName  = "listings"
	EntityName = "listing"

	FieldID       = "id"
	FieldHostID   = "host_id"
	FieldTitle    = "title"
	FieldCurrency = "currency"
	FieldStatus   = "status"
	FieldActive   = "active"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
)

type Listing struct {
	ID       string `db:"id"`
	HostID   string `db:"host_id"`
	Title    string `db:"title"`
	Currency string `db:"currency"`
	Status   Status `db:"status"`
	Active   bool   `db:"active"`
	model.Metadata
}

// Bookable reports whether guests may reserve the listing.
func (l Listing) Bookable() bool {
	return l.ID != "" && l.Active && l.Status == StatusApproved
}

type HostFlowStatus string

const (
	HostFlowNone     HostFlowStatus = "NONE"
	HostFlowDraft    HostFlowStatus = "DRAFT"
	HostFlowPending  HostFlowStatus = "PENDING"
	HostFlowApproved HostFlowStatus = "APPROVED"
)

var flowRank = map[HostFlowStatus]int{
	HostFlowNone:     0,
	HostFlowDraft:    1,
	HostFlowPending:  2,
	HostFlowApproved: 3,
}

// DeriveHostFlowStatus folds a host's listing statuses into the most advanced one.
// Unknown statuses are ignored.
func DeriveHostFlowStatus(statuses []Status) HostFlowStatus {
	result := HostFlowNone

	for _, status := range statuses {
		flow := HostFlowStatus(status)

		rank, ok := flowRank[flow]
		if ok && rank > flowRank[result] {
			result = flow
		}
	}

	return result
}
