package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus tracks a lot's one-way lifecycle: Open -> Closing -> Closed.
type LotStatus string

const (
	LotOpen    LotStatus = "open"
	LotClosing LotStatus = "closing"
	LotClosed  LotStatus = "closed"
)

// BidOrigin distinguishes human submissions from system-placed auto-bids.
type BidOrigin string

const (
	OriginManual BidOrigin = "manual"
	OriginSystem BidOrigin = "system"
)

// Auction groups lots under one time window. Created by the external
// scheduler; this engine only reads it.
type Auction struct {
	AuctionID string    `json:"auction_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// Lot is a single item under bid within an auction.
type Lot struct {
	LotID          string          `json:"lot_id"`
	AuctionID      string          `json:"auction_id"`
	Number         int             `json:"number"`
	ReservePrice   decimal.Decimal `json:"reserve_price"`
	MinIncrement   decimal.Decimal `json:"min_increment"`
	EnforceReserve bool            `json:"enforce_reserve"`
	Status         LotStatus       `json:"status"`
}

// AutoBidConfig is a bidder-set ceiling the engine may use to rebid on
// their behalf without further manual action.
type AutoBidConfig struct {
	MaxBid decimal.Decimal `json:"max_bid"`
	Active bool            `json:"active"`
}

// Bidder is a verified auction participant.
type Bidder struct {
	BidderID    string         `json:"bidder_id"`
	DisplayName string         `json:"display_name"`
	Verified    bool           `json:"verified"`
	AutoBid     *AutoBidConfig `json:"auto_bid,omitempty"`
}

// Bid is an admitted bid. Immutable once admitted; only the highest
// admitted bid per lot is live.
type Bid struct {
	BidID       string          `json:"bid_id"`
	LotID       string          `json:"lot_id"`
	BidderID    string          `json:"bidder_id"`
	Amount      decimal.Decimal `json:"amount"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Origin      BidOrigin       `json:"origin"`
}
