package resolution

import (
	"fmt"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Validate checks a submitted bid against lot and bidder state. It is pure
// and side-effect-free; the core calls it while holding the lot's exclusive
// section so leader is the authoritative current leader, never a stale read.
//
// The minimum increment binds system raises, not manual submissions: a
// manual bid is admissible as soon as it strictly beats the current leader.
func Validate(lot model.Lot, bidder model.Bidder, amount decimal.Decimal, leader *ledger.Leader) error {
	if lot.Status != model.LotOpen {
		return fmt.Errorf("lot %s is %s: %w", lot.LotID, lot.Status, biddingerrors.ErrLotNotOpen)
	}
	if !bidder.Verified {
		return fmt.Errorf("bidder %s: %w", bidder.BidderID, biddingerrors.ErrBidderNotVerified)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: non-positive amount", biddingerrors.ErrInvalidBid)
	}
	if lot.EnforceReserve && amount.LessThan(lot.ReservePrice) {
		return fmt.Errorf("%w: amount %s is below reserve %s", biddingerrors.ErrBidTooLow, amount, lot.ReservePrice)
	}
	if leader != nil && amount.LessThanOrEqual(leader.Amount) {
		return fmt.Errorf("%w: current leading amount is %s", biddingerrors.ErrBidTooLow, leader.Amount)
	}
	return nil
}
