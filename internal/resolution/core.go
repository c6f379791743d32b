// Package resolution is the bid sequencer: it admits validated bids under
// per-lot mutual exclusion, resolves auto-bid cascades, and appends the
// resulting events to the ledger as one atomic batch.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/ledger"
	"bid-ledger/internal/metrics"
	model "bid-ledger/internal/models"
	"bid-ledger/utils"

	"github.com/shopspring/decimal"
)

const (
	defaultLockTimeout = 3 * time.Second
	// defaultCascadeLimit guards against configuration corruption only; a
	// legitimate cascade terminates because every step strictly raises the
	// leading amount toward a finite ceiling.
	defaultCascadeLimit = 512
)

// Publisher pushes freshly appended events to live subscribers. Push is an
// optimization, never the correctness path; subscribers reconcile through
// the ledger.
type Publisher interface {
	Publish(events []model.BidEvent)
}

// Core resolves bid submissions into ordered ledger events.
type Core struct {
	directory    catalog.Directory
	ledger       ledger.EventLedger
	locks        *LotLocks
	publisher    Publisher
	lockTimeout  time.Duration
	cascadeLimit int
}

// Option configures a Core.
type Option func(*Core)

// WithLockTimeout bounds how long a submission waits for its lot's section.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Core) { c.lockTimeout = d }
}

// WithCascadeLimit caps cascade iterations per submission.
func WithCascadeLimit(n int) Option {
	return func(c *Core) { c.cascadeLimit = n }
}

// WithPublisher attaches a live fan-out target.
func WithPublisher(p Publisher) Option {
	return func(c *Core) { c.publisher = p }
}

// NewCore creates a resolution core over the given collaborators. The lock
// table must be shared with the finalizer.
func NewCore(directory catalog.Directory, eventLedger ledger.EventLedger, locks *LotLocks, opts ...Option) *Core {
	c := &Core{
		directory:    directory,
		ledger:       eventLedger,
		locks:        locks,
		lockTimeout:  defaultLockTimeout,
		cascadeLimit: defaultCascadeLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locks exposes the shared per-lot lock table.
func (c *Core) Locks() *LotLocks {
	return c.locks
}

// SubmitBid admits a manual bid and returns every event it produced, in
// emission order. The whole call, cascade included, runs inside the lot's
// exclusive section; its events commit as one batch or not at all.
func (c *Core) SubmitBid(ctx context.Context, lotID, bidderID string, amount decimal.Decimal, meta model.RequesterMeta) ([]model.BidEvent, error) {
	if lotID == "" || bidderID == "" {
		return nil, fmt.Errorf("core: %w - missing lot or bidder id", biddingerrors.ErrInvalidBid)
	}

	release, err := c.locks.Acquire(ctx, lotID, c.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	lot, err := c.directory.GetLot(lotID)
	if err != nil {
		return nil, err
	}
	bidder, err := c.directory.GetBidder(bidderID)
	if err != nil {
		return nil, err
	}

	leader, err := c.currentLeader(ctx, lotID)
	if err != nil {
		return nil, err
	}

	if err := Validate(lot, bidder, amount, leader); err != nil {
		return nil, err
	}

	events, err := c.resolve(lot, bidder, amount, leader, meta)
	if err != nil {
		return nil, err
	}

	seqs, err := c.ledger.AppendBatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("core: append events for lot %s: %w", lotID, err)
	}
	for i := range events {
		events[i].Seq = seqs[i]
	}

	if c.publisher != nil {
		c.publisher.Publish(events)
	}
	return events, nil
}

// resolve builds the admitted bid's events and runs the auto-bid cascade.
// It mutates nothing; all effects happen when the caller appends the batch.
func (c *Core) resolve(lot model.Lot, submitter model.Bidder, amount decimal.Decimal, leader *ledger.Leader, meta model.RequesterMeta) ([]model.BidEvent, error) {
	bid := model.Bid{
		BidID:       utils.GenerateID(),
		LotID:       lot.LotID,
		BidderID:    submitter.BidderID,
		Amount:      amount,
		SubmittedAt: time.Now().UTC(),
		Origin:      model.OriginManual,
	}
	header := model.BidEvent{
		AuctionID: lot.AuctionID,
		LotID:     lot.LotID,
		Timestamp: bid.SubmittedAt,
		Requester: meta,
	}

	var submitterMax *decimal.Decimal
	if submitter.AutoBid != nil && submitter.AutoBid.Active {
		maxBid := submitter.AutoBid.MaxBid
		submitterMax = &maxBid
	}

	placed := header
	placed.Type = model.EventBidPlaced
	placed.Detail = model.BidPlacedDetail{
		BidderID: bid.BidderID,
		Amount:   bid.Amount,
		MaxBid:   submitterMax,
		Trigger:  model.TriggerManual,
	}
	events := []model.BidEvent{placed}

	leadingBidder := bid.BidderID
	leadingAmount := bid.Amount

	// displaced tracks who just lost the lead; they are the only candidate
	// for the next defensive raise.
	var displacedBidder string
	hasDisplaced := false

	if leader != nil && leader.BidderID != submitter.BidderID {
		outbid := header
		outbid.Type = model.EventOutbid
		outbid.Detail = model.OutbidDetail{
			BidderID:       leader.BidderID,
			Amount:         amount,
			PreviousAmount: leader.Amount,
		}
		events = append(events, outbid)
		displacedBidder, hasDisplaced = leader.BidderID, true
	}

	steps := 0
	for hasDisplaced {
		defender, err := c.directory.GetBidder(displacedBidder)
		if err != nil {
			return nil, err
		}
		config := defender.AutoBid
		if config == nil || !config.Active || !config.MaxBid.GreaterThan(leadingAmount) {
			// An exhausted or equal ceiling cannot strictly raise; on an
			// exact tie the standing leader keeps the lot because their bid
			// validated earlier.
			break
		}

		steps++
		if steps > c.cascadeLimit {
			metrics.RecordCascadeLimitExceeded()
			return nil, fmt.Errorf("core: lot %s after %d raises: %w", lot.LotID, steps-1, biddingerrors.ErrCascadeLimitExceeded)
		}

		raise := leadingAmount.Add(lot.MinIncrement)
		if raise.GreaterThan(config.MaxBid) {
			raise = config.MaxBid
		}

		trigger := model.TriggerReserveDefense
		if defender.BidderID == submitter.BidderID {
			trigger = model.TriggerReserveBidder
		}

		autoBid := header
		autoBid.Type = model.EventAutoBid
		autoBid.Detail = model.AutoBidDetail{
			BidderID: defender.BidderID,
			Amount:   raise,
			MaxBid:   config.MaxBid,
			Trigger:  trigger,
		}
		outbid := header
		outbid.Type = model.EventOutbid
		outbid.Detail = model.OutbidDetail{
			BidderID:       leadingBidder,
			Amount:         raise,
			PreviousAmount: leadingAmount,
		}
		events = append(events, autoBid, outbid)
		metrics.RecordCascadeEvent()

		displacedBidder = leadingBidder
		leadingBidder, leadingAmount = defender.BidderID, raise
	}

	return events, nil
}

// currentLeader maps the ledger's no-events answer to a nil leader.
func (c *Core) currentLeader(ctx context.Context, lotID string) (*ledger.Leader, error) {
	leader, err := c.ledger.CurrentLeader(ctx, lotID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoEvents) {
			return nil, nil
		}
		return nil, fmt.Errorf("core: read current leader for lot %s: %w", lotID, err)
	}
	return leader, nil
}
