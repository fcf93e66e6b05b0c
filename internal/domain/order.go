package domain

import "time"

// Payment statuses as reported by the gateway. Only StatusPaid allows an
// order to materialize; everything else needs a fresh checkout session.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusExpired = "expired"
)

// CheckoutSession is a snapshot of a gateway checkout. The stored copy is
// never authoritative for payment status; the gateway is always re-asked.
type CheckoutSession struct {
	ID             string    `json:"id"`
	ListingID      int64     `json:"listing_id"`
	PaymentStatus  string    `json:"payment_status"`
	AmountTotal    int64     `json:"amount_total"`
	ApplicationFee int64     `json:"application_fee"`
	Destination    string    `json:"destination"`
	URL            string    `json:"url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Order is the durable record of a completed booking. Exactly one order
// exists per checkout session; it is created once and never mutated.
type Order struct {
	ID        int64           `json:"id"`
	ListingID int64           `json:"listing_id"`
	SessionID string          `json:"session_id"`
	Session   CheckoutSession `json:"session"`
	OrderedBy int64           `json:"ordered_by"`
	CreatedAt time.Time       `json:"created_at"`
}
