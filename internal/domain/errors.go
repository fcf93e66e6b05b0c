package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrNoPayoutAccount     = errors.New("listing owner has no payout account")
	ErrNoPendingSession    = errors.New("no pending checkout session")
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// GatewayError wraps a payment-provider communication failure. It is
// surfaced to the caller as-is; confirmation calls are never retried
// blindly on top of it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
