// Package finalizer turns the scheduler's lot-closed signal into a terminal
// winner event and the external payment capture.
package finalizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/resolution"
	"bid-ledger/utils"

	"github.com/shopspring/decimal"
)

const defaultLockTimeout = 5 * time.Second

// PaymentCapture is the storefront's checkout callback, invoked once per
// winning lot.
type PaymentCapture interface {
	OnLotWon(ctx context.Context, lotID, bidderID string, amount decimal.Decimal) error
}

// PaymentCaptureFunc adapts a function to PaymentCapture.
type PaymentCaptureFunc func(ctx context.Context, lotID, bidderID string, amount decimal.Decimal) error

// OnLotWon calls f.
func (f PaymentCaptureFunc) OnLotWon(ctx context.Context, lotID, bidderID string, amount decimal.Decimal) error {
	return f(ctx, lotID, bidderID, amount)
}

// Finalizer closes lots. It shares the resolution core's lot lock table so
// a close serializes against in-flight submissions for the same lot.
type Finalizer struct {
	directory   catalog.Directory
	ledger      ledger.EventLedger
	locks       *resolution.LotLocks
	capture     PaymentCapture
	publisher   resolution.Publisher
	lockTimeout time.Duration
}

// Option configures a Finalizer.
type Option func(*Finalizer)

// WithLockTimeout bounds the wait for the lot's exclusive section.
func WithLockTimeout(d time.Duration) Option {
	return func(f *Finalizer) { f.lockTimeout = d }
}

// WithPublisher attaches a live fan-out target for winner events.
func WithPublisher(p resolution.Publisher) Option {
	return func(f *Finalizer) { f.publisher = p }
}

// NewFinalizer creates a finalizer sharing the core's lock table.
func NewFinalizer(directory catalog.Directory, eventLedger ledger.EventLedger, locks *resolution.LotLocks, capture PaymentCapture, opts ...Option) *Finalizer {
	f := &Finalizer{
		directory:   directory,
		ledger:      eventLedger,
		locks:       locks,
		capture:     capture,
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CloseLot finalizes a lot once. A repeat call for an already closed lot is
// a no-op returning the previously appended winner event (nil if the lot
// closed without bids); it never appends a duplicate.
func (f *Finalizer) CloseLot(ctx context.Context, lotID string) (*model.BidEvent, error) {
	if lotID == "" {
		return nil, fmt.Errorf("finalizer: %w - missing lot id", biddingerrors.ErrInvalidBid)
	}

	release, err := f.locks.Acquire(ctx, lotID, f.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	lot, err := f.directory.GetLot(lotID)
	if err != nil {
		return nil, err
	}
	if lot.Status == model.LotClosed {
		return f.ledger.WinnerEvent(ctx, lotID)
	}

	if err := f.directory.SetLotStatus(lotID, model.LotClosing); err != nil {
		return nil, fmt.Errorf("finalizer: %w", err)
	}

	leader, err := f.ledger.CurrentLeader(ctx, lotID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoEvents) {
		return nil, fmt.Errorf("finalizer: read leader for lot %s: %w", lotID, err)
	}

	if leader == nil {
		// No admitted bids: the lot closes with no winner event.
		if err := f.directory.SetLotStatus(lotID, model.LotClosed); err != nil {
			return nil, fmt.Errorf("finalizer: %w", err)
		}
		return nil, nil
	}

	winner := model.BidEvent{
		AuctionID: lot.AuctionID,
		LotID:     lot.LotID,
		Type:      model.EventWinner,
		Timestamp: time.Now().UTC(),
		Detail:    model.WinnerDetail{BidderID: leader.BidderID, Amount: leader.Amount},
	}
	seqs, err := f.ledger.AppendBatch(ctx, []model.BidEvent{winner})
	if err != nil {
		return nil, fmt.Errorf("finalizer: append winner for lot %s: %w", lotID, err)
	}
	winner.Seq = seqs[0]

	// The winner event is already durable; a capture failure is an external
	// problem to reconcile, not a reason to reopen the lot.
	if err := f.capture.OnLotWon(ctx, lotID, leader.BidderID, leader.Amount); err != nil {
		utils.Error("finalizer: payment capture failed", map[string]any{
			"lot_id":    lotID,
			"bidder_id": leader.BidderID,
			"amount":    leader.Amount.String(),
			"error":     err.Error(),
		})
	}

	if err := f.directory.SetLotStatus(lotID, model.LotClosed); err != nil {
		return nil, fmt.Errorf("finalizer: %w", err)
	}

	if f.publisher != nil {
		f.publisher.Publish([]model.BidEvent{winner})
	}
	return &winner, nil
}
