package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journiq/tour-booking-api/internal/model"
)

func validTourReq() tourReq {
	return tourReq{
		DestinationID: 1,
		Title:         "Old Town Walk",
		Category:      "Cultural",
		DurationDays:  1,
		PriceCents:    5000,
	}
}

func TestTourReqValidateAcceptsEveryCategory(t *testing.T) {
	for _, cat := range model.TourCategories {
		req := validTourReq()
		req.Category = cat
		assert.NoError(t, req.validate(), cat)
	}
}

func TestTourReqValidateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*tourReq)
	}{
		{"lowercased category", func(r *tourReq) { r.Category = "cultural" }},
		{"unknown category", func(r *tourReq) { r.Category = "Space Travel" }},
		{"missing destination", func(r *tourReq) { r.DestinationID = 0 }},
		{"blank title", func(r *tourReq) { r.Title = "   " }},
		{"zero duration", func(r *tourReq) { r.DurationDays = 0 }},
		{"zero price", func(r *tourReq) { r.PriceCents = 0 }},
	}
	for _, tc := range cases {
		req := validTourReq()
		tc.mutate(&req)
		require.Error(t, req.validate(), tc.name)
	}
}
