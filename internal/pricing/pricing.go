// Package pricing computes what a customer owes for a booking. The
// same forward formula runs at inquiry time (the displayed estimate)
// and at payment-order time (the charged amount); both call sites must
// agree after rounding, so nothing here depends on stored or
// client-submitted totals.
package pricing

import "math"

const (
	// PlatformFeeRate is the marketplace surcharge on the venue amount.
	PlatformFeeRate = 0.10
	// GSTRate applies to venue amount plus platform fee.
	GSTRate = 0.18
)

// Quote is the full decomposition of a charge. VenueAmount, PlatformFee
// and GST may be fractional for display; Total is rounded to the
// nearest rupee and is the only value ever persisted or charged.
type Quote struct {
	VenueAmount float64 `json:"venue_amount"`
	PlatformFee float64 `json:"platform_fee"`
	GST         float64 `json:"gst"`
	Total       float64 `json:"total"`
}

// Forward computes the customer total from the venue amount.
func Forward(venueAmount float64) Quote {
	fee := venueAmount * PlatformFeeRate
	gst := (venueAmount + fee) * GSTRate
	return Quote{
		VenueAmount: venueAmount,
		PlatformFee: fee,
		GST:         gst,
		Total:       math.Round(venueAmount + fee + gst),
	}
}

// ForStay quotes a stay of dayCount days at pricePerDay.
func ForStay(pricePerDay float64, dayCount int) Quote {
	if dayCount < 1 {
		dayCount = 1
	}
	return Forward(pricePerDay * float64(dayCount))
}
