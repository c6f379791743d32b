package biddingerrors

import "errors"

// Validation errors: expected rejections, returned to the caller and never
// logged as failures.
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrLotNotOpen        = errors.New("lot is not open for bidding")
	ErrBidderNotVerified = errors.New("bidder is not auction-verified")
)

// Lookup errors from the catalog directory.
var (
	ErrLotNotFound    = errors.New("lot not found")
	ErrBidderNotFound = errors.New("bidder not found")
	ErrNoEvents       = errors.New("no events found")
)

// Concurrency errors: callers retry with backoff, the engine does not.
var (
	ErrLotBusy = errors.New("lot is busy, retry later")
)

// Invariant violations: fatal to the operation and surfaced to operators.
// These indicate configuration or storage corruption, not user error.
var (
	ErrCascadeLimitExceeded = errors.New("auto-bid cascade limit exceeded")
	ErrSequenceGap          = errors.New("ledger sequence gap detected")
)
