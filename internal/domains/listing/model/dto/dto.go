package dto

import "lodging/internal/domains/listing/model"

type HostFlowStatusResponse struct {
	HostID       string `json:"host_id"`
	Status       string `json:"status"`
	ListingCount int    `json:"listing_count"`
}

func (r *HostFlowStatusResponse) FromStatuses(hostID string, statuses []model.Status) {
	r.HostID = hostID
	r.Status = string(model.DeriveHostFlowStatus(statuses))
	r.ListingCount = len(statuses)
}
