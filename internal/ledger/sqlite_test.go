package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite("  ")
	require.Error(t, err)
}

// Test durable append and rehydration of each variant
func TestSQLiteStore_AppendAndQuery(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	maxBid := decimal.NewFromInt(1200)
	events := []model.BidEvent{
		{
			AuctionID: "auction1",
			LotID:     "lot1",
			Type:      model.EventBidPlaced,
			Timestamp: time.Now().UTC().Truncate(time.Millisecond),
			Requester: model.RequesterMeta{IP: "10.0.0.1", Device: "phone"},
			Detail:    model.BidPlacedDetail{BidderID: "bidder1", Amount: decimal.NewFromInt(1000), MaxBid: &maxBid, Trigger: model.TriggerManual},
		},
		{
			AuctionID: "auction1",
			LotID:     "lot1",
			Type:      model.EventOutbid,
			Timestamp: time.Now().UTC().Truncate(time.Millisecond),
			Detail:    model.OutbidDetail{BidderID: "bidder2", Amount: decimal.NewFromInt(1000), PreviousAmount: decimal.NewFromInt(900)},
		},
		{
			AuctionID: "auction1",
			LotID:     "lot1",
			Type:      model.EventAutoBid,
			Timestamp: time.Now().UTC().Truncate(time.Millisecond),
			Detail:    model.AutoBidDetail{BidderID: "bidder2", Amount: decimal.NewFromInt(1100), MaxBid: decimal.NewFromInt(1500), Trigger: model.TriggerReserveDefense},
		},
	}

	seqs, err := store.AppendBatch(ctx, events)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, seqs)

	stored, total, err := store.Query(ctx, Filter{LotID: "lot1"}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, stored, 3)

	placed, ok := stored[0].Detail.(model.BidPlacedDetail)
	require.True(t, ok)
	require.Equal(t, "bidder1", placed.BidderID)
	require.True(t, placed.Amount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, placed.MaxBid)
	require.True(t, placed.MaxBid.Equal(maxBid))
	require.Equal(t, model.RequesterMeta{IP: "10.0.0.1", Device: "phone"}, stored[0].Requester)

	outbid, ok := stored[1].Detail.(model.OutbidDetail)
	require.True(t, ok)
	require.True(t, outbid.PreviousAmount.Equal(decimal.NewFromInt(900)))

	autoBid, ok := stored[2].Detail.(model.AutoBidDetail)
	require.True(t, ok)
	require.Equal(t, model.TriggerReserveDefense, autoBid.Trigger)
}

// Sequence numbers must survive a close/reopen without reuse.
func TestSQLiteStore_SeqSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	seqs, err := store.AppendBatch(ctx, []model.BidEvent{placedEvent("auction1", "lot1", "bidder1", 100)})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, seqs)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	seqs, err = reopened.AppendBatch(ctx, []model.BidEvent{placedEvent("auction1", "lot1", "bidder2", 200)})
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, seqs)

	last, err := reopened.LastSeq(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), last)
}

// Test leader derivation straight from the event rows
func TestSQLiteStore_CurrentLeader(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CurrentLeader(ctx, "lot1")
	require.ErrorIs(t, err, biddingerrors.ErrNoEvents)

	_, err = store.AppendBatch(ctx, []model.BidEvent{
		placedEvent("auction1", "lot1", "bidder1", 1000),
		autoBidEvent("auction1", "lot1", "bidder2", 1100, 1500),
	})
	require.NoError(t, err)

	leader, err := store.CurrentLeader(ctx, "lot1")
	require.NoError(t, err)
	require.Equal(t, "bidder2", leader.BidderID)
	require.True(t, leader.Amount.Equal(decimal.NewFromInt(1100)))
	require.NotNil(t, leader.MaxBid)
	require.True(t, leader.MaxBid.Equal(decimal.NewFromInt(1500)))
}

// Test winner lookup and filters against the SQL path
func TestSQLiteStore_WinnerAndFilters(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	winner, err := store.WinnerEvent(ctx, "lot1")
	require.NoError(t, err)
	require.Nil(t, winner)

	_, err = store.AppendBatch(ctx, []model.BidEvent{
		placedEvent("auction1", "lot1", "bidder1", 1000),
		{
			AuctionID: "auction1",
			LotID:     "lot1",
			Type:      model.EventWinner,
			Timestamp: time.Now().UTC(),
			Detail:    model.WinnerDetail{BidderID: "bidder1", Amount: decimal.NewFromInt(1000)},
		},
	})
	require.NoError(t, err)

	winner, err = store.WinnerEvent(ctx, "lot1")
	require.NoError(t, err)
	require.NotNil(t, winner)
	require.Equal(t, uint64(2), winner.Seq)

	events, total, err := store.Query(ctx, Filter{EventType: model.EventWinner, Descending: true}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, events, 1)
	require.Equal(t, model.EventWinner, events[0].Type)

	events, total, err = store.Query(ctx, Filter{AfterSeq: 1}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, uint64(2), events[0].Seq)
}

// Simultaneous appends from different lots must all land, not fail with
// SQLITE_BUSY, and the resulting sequence must stay gapless.
func TestSQLiteStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 20

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			lotID := fmt.Sprintf("lot%d", w)
			bidderID := fmt.Sprintf("bidder%d", w)
			for i := 0; i < perWriter; i++ {
				_, err := store.AppendBatch(ctx, []model.BidEvent{
					placedEvent("auction1", lotID, bidderID, int64(100+i)),
				})
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	last, err := store.LastSeq(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(writers*perWriter), last)

	events, total, err := store.Query(ctx, Filter{}, 1, 0)
	require.NoError(t, err)
	require.Equal(t, writers*perWriter, total)
	for i, e := range events {
		require.Equal(t, uint64(i+1), e.Seq)
	}
}

// A ledger with missing rows must refuse further appends rather than hand
// out cursors over a broken sequence.
func TestSQLiteStore_AppendDetectsMissingRows(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.AppendBatch(ctx, []model.BidEvent{
		placedEvent("auction1", "lot1", "bidder1", 1000),
		placedEvent("auction1", "lot1", "bidder2", 1100),
	})
	require.NoError(t, err)

	_, err = store.sqlDB.ExecContext(ctx, `DELETE FROM bid_events WHERE seq = 1`)
	require.NoError(t, err)

	_, err = store.AppendBatch(ctx, []model.BidEvent{
		placedEvent("auction1", "lot1", "bidder1", 1200),
	})
	require.ErrorIs(t, err, biddingerrors.ErrSequenceGap)
}
