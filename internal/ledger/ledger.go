// Package ledger is the append-only, monotonically sequenced store of bid
// events. It is the single source of truth for what happened on a lot; every
// other view (current leaders, live push, the admin list) is derived from it.
package ledger

import (
	"context"
	"time"

	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// AuctionLevelLot is the synthetic lot filter value selecting auction-wide
// events that carry no lot scope. Mirrors the admin view's filter contract.
const AuctionLevelLot = "auction-level"

// Leader is the derived current-leader read model for one lot. It is always
// rebuildable from the ledger alone; the ledger, not this value, is
// authoritative.
type Leader struct {
	BidderID string           `json:"bidder_id"`
	Amount   decimal.Decimal  `json:"amount"`
	MaxBid   *decimal.Decimal `json:"max_bid,omitempty"`
}

// Filter narrows a Query. Zero fields match everything; it mirrors the admin
// view's filter set (auction, event type, lot, date range).
type Filter struct {
	AuctionID string
	// LotID filters by lot; the AuctionLevelLot sentinel selects events
	// without a lot scope.
	LotID     string
	EventType model.EventType
	From      time.Time
	To        time.Time
	// AfterSeq selects events with seq strictly greater; it is the
	// reconnect-safe backfill cursor for fan-out subscribers.
	AfterSeq uint64
	// Descending flips the seq sort for display surfaces. Replay consumers
	// leave it unset and fold ascending.
	Descending bool
}

// EventLedger is the append/replay contract shared by the in-memory and
// SQLite stores.
//
// AppendBatch assigns strictly increasing, gapless sequence numbers
// atomically with the write: either every event of the batch becomes visible
// with its seq, or none do. A failed append never consumes a sequence
// number. Only the resolution core and the finalizer call it, each under the
// lot's exclusive section.
type EventLedger interface {
	AppendBatch(ctx context.Context, events []model.BidEvent) ([]uint64, error)
	// Query returns matching events sorted ascending by seq, plus the total
	// match count for pagination. Pages are 1-based.
	Query(ctx context.Context, f Filter, page, limit int) ([]model.BidEvent, int, error)
	// CurrentLeader returns nil when the lot has no admitted bids.
	CurrentLeader(ctx context.Context, lotID string) (*Leader, error)
	// WinnerEvent returns the lot's terminal winner event, or nil if the lot
	// has not been finalized with a winner.
	WinnerEvent(ctx context.Context, lotID string) (*model.BidEvent, error)
	LastSeq(ctx context.Context) (uint64, error)
}

// FoldLeader replays events in seq order and returns the leader they imply.
// The incremental read models in both stores must agree with this fold for
// any prefix of the ledger.
func FoldLeader(events []model.BidEvent) *Leader {
	var leader *Leader
	for _, e := range events {
		switch d := e.Detail.(type) {
		case model.BidPlacedDetail:
			leader = &Leader{BidderID: d.BidderID, Amount: d.Amount, MaxBid: d.MaxBid}
		case model.AutoBidDetail:
			maxBid := d.MaxBid
			leader = &Leader{BidderID: d.BidderID, Amount: d.Amount, MaxBid: &maxBid}
		}
	}
	return leader
}

func matches(e model.BidEvent, f Filter) bool {
	if f.AuctionID != "" && e.AuctionID != f.AuctionID {
		return false
	}
	if f.LotID == AuctionLevelLot {
		if e.LotID != "" {
			return false
		}
	} else if f.LotID != "" && e.LotID != f.LotID {
		return false
	}
	if f.EventType != "" && e.Type != f.EventType {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if f.AfterSeq > 0 && e.Seq <= f.AfterSeq {
		return false
	}
	return true
}

// paginate slices a 1-based page out of already filtered events.
func paginate(events []model.BidEvent, page, limit int) []model.BidEvent {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return events
	}
	start := (page - 1) * limit
	if start >= len(events) {
		return []model.BidEvent{}
	}
	end := start + limit
	if end > len(events) {
		end = len(events)
	}
	return events[start:end]
}
