package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies the kind of ledger record.
type EventType string

const (
	EventBidPlaced EventType = "bid_placed"
	EventAutoBid   EventType = "auto_bid"
	EventOutbid    EventType = "outbid"
	EventWinner    EventType = "winner"
)

// Trigger records why a bid-bearing event was produced.
type Trigger string

const (
	// TriggerManual marks a direct human bid.
	TriggerManual Trigger = "manual"
	// TriggerReserveBidder marks a system raise placed from the original
	// submitter's own stored auto-bid ceiling during their submission.
	TriggerReserveBidder Trigger = "reserve_bidder"
	// TriggerReserveDefense marks a system raise placed on behalf of a
	// displaced previous leader who still holds a sufficient ceiling.
	TriggerReserveDefense Trigger = "reserve_defense"
)

// RequesterMeta carries informational submission metadata. It plays no part
// in resolution.
type RequesterMeta struct {
	IP     string `json:"ip,omitempty"`
	Device string `json:"device,omitempty"`
}

// EventDetail is the variant payload of a BidEvent. Each event type carries
// only its relevant fields, so an invalid combination (say, a winner event
// with a max bid) cannot be constructed.
type EventDetail interface {
	EventType() EventType
}

// BidPlacedDetail is the payload of a manual bid_placed event. MaxBid is set
// when the submitter also holds an active auto-bid configuration.
type BidPlacedDetail struct {
	BidderID string
	Amount   decimal.Decimal
	MaxBid   *decimal.Decimal
	Trigger  Trigger
}

func (BidPlacedDetail) EventType() EventType { return EventBidPlaced }

// AutoBidDetail is the payload of a system-placed auto_bid event.
type AutoBidDetail struct {
	BidderID string
	Amount   decimal.Decimal
	MaxBid   decimal.Decimal
	Trigger  Trigger
}

func (AutoBidDetail) EventType() EventType { return EventAutoBid }

// OutbidDetail notifies the displaced leader. PreviousAmount is the amount
// they held before Amount surpassed it.
type OutbidDetail struct {
	BidderID       string
	Amount         decimal.Decimal
	PreviousAmount decimal.Decimal
}

func (OutbidDetail) EventType() EventType { return EventOutbid }

// WinnerDetail is the terminal record for a closed lot.
type WinnerDetail struct {
	BidderID string
	Amount   decimal.Decimal
}

func (WinnerDetail) EventType() EventType { return EventWinner }

// BidEvent is one record of the append-only ledger. Events are never
// mutated or deleted after they are assigned a sequence number.
type BidEvent struct {
	Seq       uint64
	AuctionID string
	LotID     string
	Type      EventType
	Timestamp time.Time
	Requester RequesterMeta
	Detail    EventDetail
}

// BidderID returns the bidder the event concerns.
func (e BidEvent) BidderID() string {
	switch d := e.Detail.(type) {
	case BidPlacedDetail:
		return d.BidderID
	case AutoBidDetail:
		return d.BidderID
	case OutbidDetail:
		return d.BidderID
	case WinnerDetail:
		return d.BidderID
	}
	return ""
}

// Amount returns the event's leading amount.
func (e BidEvent) Amount() decimal.Decimal {
	switch d := e.Detail.(type) {
	case BidPlacedDetail:
		return d.Amount
	case AutoBidDetail:
		return d.Amount
	case OutbidDetail:
		return d.Amount
	case WinnerDetail:
		return d.Amount
	}
	return decimal.Zero
}

// eventJSON is the flat wire shape shared by all variants. Optional fields
// are pointers so absent and zero stay distinguishable.
type eventJSON struct {
	Seq            uint64           `json:"seq"`
	AuctionID      string           `json:"auction_id"`
	LotID          string           `json:"lot_id"`
	Type           EventType        `json:"event_type"`
	Timestamp      time.Time        `json:"timestamp"`
	Requester      RequesterMeta    `json:"requester"`
	BidderID       string           `json:"bidder_id"`
	Amount         decimal.Decimal  `json:"amount"`
	PreviousAmount *decimal.Decimal `json:"previous_amount,omitempty"`
	MaxBid         *decimal.Decimal `json:"max_bid,omitempty"`
	Trigger        Trigger          `json:"trigger,omitempty"`
}

// MarshalJSON flattens the variant payload into the wire shape consumed by
// the admin view.
func (e BidEvent) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		Seq:       e.Seq,
		AuctionID: e.AuctionID,
		LotID:     e.LotID,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Requester: e.Requester,
	}

	switch d := e.Detail.(type) {
	case BidPlacedDetail:
		out.BidderID = d.BidderID
		out.Amount = d.Amount
		out.MaxBid = d.MaxBid
		out.Trigger = d.Trigger
	case AutoBidDetail:
		maxBid := d.MaxBid
		out.BidderID = d.BidderID
		out.Amount = d.Amount
		out.MaxBid = &maxBid
		out.Trigger = d.Trigger
	case OutbidDetail:
		prev := d.PreviousAmount
		out.BidderID = d.BidderID
		out.Amount = d.Amount
		out.PreviousAmount = &prev
	case WinnerDetail:
		out.BidderID = d.BidderID
		out.Amount = d.Amount
	default:
		return nil, fmt.Errorf("marshal bid event: unknown detail for type %q", e.Type)
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the variant payload from the flat wire shape.
func (e *BidEvent) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	detail, err := DetailFor(in.Type, in.BidderID, in.Amount, in.PreviousAmount, in.MaxBid, in.Trigger)
	if err != nil {
		return fmt.Errorf("unmarshal bid event seq %d: %w", in.Seq, err)
	}

	e.Seq = in.Seq
	e.AuctionID = in.AuctionID
	e.LotID = in.LotID
	e.Type = in.Type
	e.Timestamp = in.Timestamp
	e.Requester = in.Requester
	e.Detail = detail
	return nil
}

// DetailFor assembles the variant payload for an event type from flat
// fields. Used by the JSON codec and the ledger stores when rehydrating
// persisted rows.
func DetailFor(t EventType, bidderID string, amount decimal.Decimal, previousAmount, maxBid *decimal.Decimal, trigger Trigger) (EventDetail, error) {
	switch t {
	case EventBidPlaced:
		return BidPlacedDetail{BidderID: bidderID, Amount: amount, MaxBid: maxBid, Trigger: trigger}, nil
	case EventAutoBid:
		if maxBid == nil {
			return nil, fmt.Errorf("auto_bid event missing max_bid")
		}
		return AutoBidDetail{BidderID: bidderID, Amount: amount, MaxBid: *maxBid, Trigger: trigger}, nil
	case EventOutbid:
		if previousAmount == nil {
			return nil, fmt.Errorf("outbid event missing previous_amount")
		}
		return OutbidDetail{BidderID: bidderID, Amount: amount, PreviousAmount: *previousAmount}, nil
	case EventWinner:
		return WinnerDetail{BidderID: bidderID, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}
