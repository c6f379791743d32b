package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bid-ledger/internal/catalog"
	"bid-ledger/internal/config"
	"bid-ledger/internal/fanout"
	"bid-ledger/internal/finalizer"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/resolution"
	"bid-ledger/internal/server"
	handler "bid-ledger/services/bidding/handler"
	"bid-ledger/utils"

	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	utils.SetLevel(cfg.LogLevel)

	eventLedger, closeLedger, err := openLedger(cfg)
	if err != nil {
		utils.Fatal("failed to open ledger", map[string]any{"db_path": cfg.DBPath, "error": err.Error()})
	}
	defer closeLedger()

	directory := catalog.NewMemoryCatalog()
	prepopulateCatalog(directory)

	hub := fanout.NewHub(fanout.WithBuffer(cfg.FanoutBuffer))
	defer hub.Close()

	locks := resolution.NewLotLocks()
	core := resolution.NewCore(directory, eventLedger, locks,
		resolution.WithLockTimeout(cfg.LockTimeout()),
		resolution.WithCascadeLimit(cfg.CascadeLimit),
		resolution.WithPublisher(hub),
	)

	// Payment capture belongs to the storefront's checkout; here the winning
	// sale is just logged at the boundary.
	capture := finalizer.PaymentCaptureFunc(func(_ context.Context, lotID, bidderID string, amount decimal.Decimal) error {
		utils.Info("payment capture requested", map[string]any{
			"lot_id":    lotID,
			"bidder_id": bidderID,
			"amount":    amount.String(),
		})
		return nil
	})
	fin := finalizer.NewFinalizer(directory, eventLedger, locks, capture,
		finalizer.WithPublisher(hub),
	)

	biddingHandler := handler.NewBiddingHandler(core, fin, eventLedger, directory, directory)
	streamHandler := handler.NewStreamHandler(hub, eventLedger, directory)
	router := server.SetupRouter(biddingHandler, streamHandler)

	fmt.Printf("Starting bid ledger server on %s...\n", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// openLedger selects the durable SQLite ledger when a path is configured,
// falling back to the in-memory ledger for local runs.
func openLedger(cfg *config.Config) (ledger.EventLedger, func(), error) {
	if cfg.DBPath == "" {
		return ledger.NewMemoryLedger(), func() {}, nil
	}
	store, err := ledger.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// prepopulateCatalog seeds sample auction data into the in-memory catalog
func prepopulateCatalog(directory *catalog.MemoryCatalog) {
	now := time.Now().UTC()
	directory.AddAuction(model.Auction{
		AuctionID: "auction1",
		Title:     "Estate Collection",
		StartsAt:  now,
		EndsAt:    now.Add(24 * time.Hour),
	})

	lots := []model.Lot{
		{LotID: "lot1", AuctionID: "auction1", Number: 1, ReservePrice: decimal.NewFromInt(1000), MinIncrement: decimal.NewFromInt(100), EnforceReserve: true, Status: model.LotOpen},
		{LotID: "lot2", AuctionID: "auction1", Number: 2, ReservePrice: decimal.NewFromInt(500), MinIncrement: decimal.NewFromInt(50), Status: model.LotOpen},
		{LotID: "lot3", AuctionID: "auction1", Number: 3, ReservePrice: decimal.NewFromInt(250), MinIncrement: decimal.NewFromInt(25), Status: model.LotOpen},
	}
	for _, lot := range lots {
		directory.AddLot(lot)
	}

	bidders := []model.Bidder{
		{BidderID: "bidder1", DisplayName: "Alice", Verified: true},
		{BidderID: "bidder2", DisplayName: "Bob", Verified: true},
		{BidderID: "bidder3", DisplayName: "Carol", Verified: false},
	}
	for _, b := range bidders {
		directory.AddBidder(b)
	}
}
