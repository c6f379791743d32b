package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"bid-ledger/internal/catalog"
	"bid-ledger/internal/fanout"
	"bid-ledger/internal/finalizer"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/resolution"
	"bid-ledger/internal/server"
	"bid-ledger/services/bidding/handler"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TestEnv wires the full engine over in-memory stores so integration tests
// exercise the real resolution, finalization and fan-out paths end to end.
type TestEnv struct {
	Router  *gin.Engine
	Catalog *catalog.MemoryCatalog
	Ledger  *ledger.MemoryLedger
	Hub     *fanout.Hub
}

// SetupTestEnv initializes the stack with in-memory stores and seeds the
// given lots and bidders.
func SetupTestEnv(lots []model.Lot, bidders []model.Bidder) *TestEnv {
	gin.SetMode(gin.TestMode)

	directory := catalog.NewMemoryCatalog()
	for _, lot := range lots {
		directory.AddLot(lot)
	}
	for _, bidder := range bidders {
		directory.AddBidder(bidder)
	}

	memLedger := ledger.NewMemoryLedger()
	hub := fanout.NewHub()
	locks := resolution.NewLotLocks()

	core := resolution.NewCore(directory, memLedger, locks, resolution.WithPublisher(hub))
	capture := finalizer.PaymentCaptureFunc(func(_ context.Context, _, _ string, _ decimal.Decimal) error {
		return nil
	})
	fin := finalizer.NewFinalizer(directory, memLedger, locks, capture, finalizer.WithPublisher(hub))

	biddingHandler := handler.NewBiddingHandler(core, fin, memLedger, directory, directory)
	streamHandler := handler.NewStreamHandler(hub, memLedger, directory)
	router := server.SetupRouter(biddingHandler, streamHandler)

	return &TestEnv{Router: router, Catalog: directory, Ledger: memLedger, Hub: hub}
}

// openLot returns a seedable open lot with the usual reserve and increment.
func openLot(lotID, auctionID string, number int, reserve, increment int64) model.Lot {
	return model.Lot{
		LotID:          lotID,
		AuctionID:      auctionID,
		Number:         number,
		ReservePrice:   decimal.NewFromInt(reserve),
		MinIncrement:   decimal.NewFromInt(increment),
		EnforceReserve: true,
		Status:         model.LotOpen,
	}
}

func verifiedBidder(bidderID, name string) model.Bidder {
	return model.Bidder{BidderID: bidderID, DisplayName: name, Verified: true}
}

// ExecuteRequestAndParse executes an HTTP request on the env's router and
// parses the JSON envelope.
func (env *TestEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	env.Router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
