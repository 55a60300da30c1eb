package model

import (
	"lodging/shared/failure"
	"net/http"
)

var (
	ErrInvalidDateRange   = failure.New(http.StatusBadRequest, "invalid_date_range", "check-out must be after check-in")
	ErrAmountOutOfRange   = failure.New(http.StatusBadRequest, "amount_out_of_range", "total amount exceeds the supported range")
	ErrListingUnavailable = failure.New(http.StatusConflict, "listing_unavailable", "listing is not available for the requested dates")
	ErrInvalidTransition  = failure.New(http.StatusConflict, "invalid_transition", "booking status does not permit this change")
	ErrNotFound           = failure.New(http.StatusNotFound, "not_found", "booking not found")
	ErrStaleWrite         = failure.New(http.StatusConflict, "stale_write", "booking was changed concurrently, retry the request")
)
