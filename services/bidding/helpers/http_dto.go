package helpers

import (
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	LotID    string          `json:"lot_id" binding:"required"`
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// SubmitBidResponse returns every event one submission produced, in
// emission order (a cascade yields several).
type SubmitBidResponse struct {
	Events []model.BidEvent `json:"events"`
}

// CloseLotResponse carries the terminal winner event, or null when the lot
// closed without bids.
type CloseLotResponse struct {
	Winner *model.BidEvent `json:"winner"`
}

// NewBidMessage is the payload of a "new-bid" push: the ledger event plus
// the bidder's display name, so the admin view renders without a catalog
// round-trip.
type NewBidMessage struct {
	Event  model.BidEvent `json:"event"`
	Bidder BidderRef      `json:"bidder"`
}

// BidderRef names a bidder inside a push payload.
type BidderRef struct {
	Name string `json:"name"`
}
