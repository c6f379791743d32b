package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// Tests the flat JSON codec over each event variant
func TestBidEvent_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	header := BidEvent{
		Seq:       7,
		AuctionID: "auction1",
		LotID:     "lot1",
		Timestamp: now,
		Requester: RequesterMeta{IP: "10.0.0.1", Device: "admin-console"},
	}

	tests := []struct {
		name   string
		typ    EventType
		detail EventDetail
	}{
		{
			name:   "bid_placed_with_auto_bid",
			typ:    EventBidPlaced,
			detail: BidPlacedDetail{BidderID: "bidder1", Amount: decimal.NewFromInt(1000), MaxBid: decimalPtr(1200), Trigger: TriggerManual},
		},
		{
			name:   "bid_placed_without_auto_bid",
			typ:    EventBidPlaced,
			detail: BidPlacedDetail{BidderID: "bidder1", Amount: decimal.NewFromInt(1000), Trigger: TriggerManual},
		},
		{
			name:   "auto_bid_defense",
			typ:    EventAutoBid,
			detail: AutoBidDetail{BidderID: "bidder2", Amount: decimal.NewFromInt(1150), MaxBid: decimal.NewFromInt(1200), Trigger: TriggerReserveDefense},
		},
		{
			name:   "outbid",
			typ:    EventOutbid,
			detail: OutbidDetail{BidderID: "bidder1", Amount: decimal.NewFromInt(1150), PreviousAmount: decimal.NewFromInt(1050)},
		},
		{
			name:   "winner",
			typ:    EventWinner,
			detail: WinnerDetail{BidderID: "bidder2", Amount: decimal.NewFromInt(1150)},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event := header
			event.Type = tc.typ
			event.Detail = tc.detail

			data, err := json.Marshal(event)
			require.NoError(t, err)

			var decoded BidEvent
			require.NoError(t, json.Unmarshal(data, &decoded))

			require.Equal(t, event.Seq, decoded.Seq)
			require.Equal(t, event.AuctionID, decoded.AuctionID)
			require.Equal(t, event.LotID, decoded.LotID)
			require.Equal(t, tc.typ, decoded.Type)
			require.True(t, event.Timestamp.Equal(decoded.Timestamp))
			require.Equal(t, event.Requester, decoded.Requester)
			require.Equal(t, tc.typ, decoded.Detail.EventType())
			require.Equal(t, event.BidderID(), decoded.BidderID())
			require.True(t, event.Amount().Equal(decoded.Amount()))
		})
	}
}

// Tests the wire fields each variant exposes
func TestBidEvent_MarshalFields(t *testing.T) {
	t.Parallel()

	event := BidEvent{
		Seq:       3,
		AuctionID: "auction1",
		LotID:     "lot1",
		Type:      EventWinner,
		Timestamp: time.Now().UTC(),
		Detail:    WinnerDetail{BidderID: "bidder2", Amount: decimal.NewFromInt(1150)},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	require.Equal(t, "winner", raw["event_type"])
	require.Equal(t, "bidder2", raw["bidder_id"])
	// A winner event never carries cascade fields.
	require.NotContains(t, raw, "max_bid")
	require.NotContains(t, raw, "previous_amount")
	require.NotContains(t, raw, "trigger")
}

// Tests rejection of malformed wire events
func TestBidEvent_UnmarshalInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "unknown_event_type", data: `{"seq":1,"event_type":"refund","bidder_id":"b","amount":"10"}`},
		{name: "auto_bid_missing_max_bid", data: `{"seq":1,"event_type":"auto_bid","bidder_id":"b","amount":"10"}`},
		{name: "outbid_missing_previous_amount", data: `{"seq":1,"event_type":"outbid","bidder_id":"b","amount":"10"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var decoded BidEvent
			require.Error(t, json.Unmarshal([]byte(tc.data), &decoded))
		})
	}
}

func TestDetailFor_Winner(t *testing.T) {
	t.Parallel()

	detail, err := DetailFor(EventWinner, "bidder1", decimal.NewFromInt(500), nil, nil, "")
	require.NoError(t, err)
	winner, ok := detail.(WinnerDetail)
	require.True(t, ok)
	require.Equal(t, "bidder1", winner.BidderID)
	require.True(t, winner.Amount.Equal(decimal.NewFromInt(500)))
}
