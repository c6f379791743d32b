// Package catalog is the engine's view of the storefront's auction data:
// lots, bidders and their auto-bid configurations. The real catalog lives
// outside this engine; this in-memory directory stands in for it behind the
// Directory interface.
package catalog

import (
	"fmt"
	"sync"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Directory is what the resolution core and finalizer need from the catalog.
type Directory interface {
	GetLot(lotID string) (model.Lot, error)
	GetBidder(bidderID string) (model.Bidder, error)
	// SetLotStatus applies a one-way transition; regressions are rejected.
	SetLotStatus(lotID string, status model.LotStatus) error
}

// statusRank orders the one-way lot lifecycle.
var statusRank = map[model.LotStatus]int{
	model.LotOpen:    0,
	model.LotClosing: 1,
	model.LotClosed:  2,
}

// MemoryCatalog is a concurrency-safe in-memory Directory.
type MemoryCatalog struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction
	lots     map[string]model.Lot
	bidders  map[string]model.Bidder
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		auctions: make(map[string]model.Auction),
		lots:     make(map[string]model.Lot),
		bidders:  make(map[string]model.Bidder),
	}
}

// AddAuction registers an auction.
func (c *MemoryCatalog) AddAuction(a model.Auction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auctions[a.AuctionID] = a
}

// AddLot registers a lot.
func (c *MemoryCatalog) AddLot(l model.Lot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lots[l.LotID] = l
}

// AddBidder registers a bidder.
func (c *MemoryCatalog) AddBidder(b model.Bidder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bidders[b.BidderID] = b
}

// SetAutoBid installs or replaces a bidder's auto-bid ceiling.
func (c *MemoryCatalog) SetAutoBid(bidderID string, maxBid decimal.Decimal, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bidders[bidderID]
	if !ok {
		return fmt.Errorf("set auto-bid for %s: %w", bidderID, biddingerrors.ErrBidderNotFound)
	}
	b.AutoBid = &model.AutoBidConfig{MaxBid: maxBid, Active: active}
	c.bidders[bidderID] = b
	return nil
}

// GetLot returns the lot by id.
func (c *MemoryCatalog) GetLot(lotID string) (model.Lot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lot, ok := c.lots[lotID]
	if !ok {
		return model.Lot{}, fmt.Errorf("get lot %s: %w", lotID, biddingerrors.ErrLotNotFound)
	}
	return lot, nil
}

// LotByNumber resolves an auction's lot number to the lot, for the admin
// view's lot-number filter.
func (c *MemoryCatalog) LotByNumber(auctionID string, number int) (model.Lot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, lot := range c.lots {
		if lot.AuctionID == auctionID && lot.Number == number {
			return lot, nil
		}
	}
	return model.Lot{}, fmt.Errorf("get lot %d in auction %s: %w", number, auctionID, biddingerrors.ErrLotNotFound)
}

// GetBidder returns the bidder by id.
func (c *MemoryCatalog) GetBidder(bidderID string) (model.Bidder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.bidders[bidderID]
	if !ok {
		return model.Bidder{}, fmt.Errorf("get bidder %s: %w", bidderID, biddingerrors.ErrBidderNotFound)
	}
	if b.AutoBid != nil {
		config := *b.AutoBid
		b.AutoBid = &config
	}
	return b, nil
}

// SetLotStatus transitions the lot. Transitions only move forward through
// Open -> Closing -> Closed.
func (c *MemoryCatalog) SetLotStatus(lotID string, status model.LotStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lot, ok := c.lots[lotID]
	if !ok {
		return fmt.Errorf("set status of lot %s: %w", lotID, biddingerrors.ErrLotNotFound)
	}
	if statusRank[status] < statusRank[lot.Status] {
		return fmt.Errorf("set status of lot %s: cannot move %s back to %s", lotID, lot.Status, status)
	}
	lot.Status = status
	c.lots[lotID] = lot
	return nil
}
