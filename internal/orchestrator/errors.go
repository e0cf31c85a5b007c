package orchestrator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrConnectionRequired is returned by Tip when no wallet session exists.
// The orchestrator has moved to Connecting; the caller completes the
// connection and calls Tip again.
var ErrConnectionRequired = errors.New("wallet connection required")

// ErrResetRequired is returned when an operation needs a fresh attempt but
// the previous one failed and has not been reset.
var ErrResetRequired = errors.New("previous attempt failed, reset required")

// InProgressError rejects an operation while an attempt is in flight.
type InProgressError struct {
	State State
}

func (e *InProgressError) Error() string {
	return fmt.Sprintf("a tip attempt is already in progress (state: %s)", e.State)
}

// WalletError wraps a connector rejection or provider failure.
type WalletError struct {
	Op  string
	Err error
}

func (e *WalletError) Error() string {
	return fmt.Sprintf("wallet %s failed: %v", e.Op, e.Err)
}

func (e *WalletError) Unwrap() error { return e.Err }

// InsufficientFundsError is raised by the pre-approval balance check. No
// state has been written when it fires.
type InsufficientFundsError struct {
	Token     string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: need %s, have %s",
		e.Token, e.Required, e.Available)
}

// ConversionError means the reference-currency rate could not be obtained.
// It is terminal before any funds-moving call happens.
type ConversionError struct {
	Token    string
	Currency string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert %s to %s: %v", e.Currency, e.Token, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// SwapError wraps a failure reported by the swap service.
type SwapError struct {
	Op  string
	Err error
}

func (e *SwapError) Error() string {
	return fmt.Sprintf("swap %s failed: %v", e.Op, e.Err)
}

func (e *SwapError) Unwrap() error { return e.Err }

// DeliveryError wraps a failure reported by the shielded delivery network.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("shielded delivery %s failed: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// TimeoutError marks a bounded external step that exceeded its deadline,
// as opposed to the provider reporting a failure. A pending ledger record
// is left in place for reconciliation.
type TimeoutError struct {
	Step State
	Err  error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("step %s timed out: %v", e.Step, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }
