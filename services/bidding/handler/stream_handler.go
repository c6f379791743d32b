package handler

import (
	"net/http"
	"strconv"

	"bid-ledger/internal/catalog"
	"bid-ledger/internal/fanout"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"
	"bid-ledger/services/bidding/helpers"
	"bid-ledger/utils"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// StreamHandler serves the live bid-tracking channel over SSE. Push is a
// hint, not the correctness path: each message carries the event's seq as
// its SSE id, a reconnecting client replays from its Last-Event-ID through
// the ledger, and duplicates across the backfill/live boundary are dropped
// by seq.
type StreamHandler struct {
	hub       *fanout.Hub
	ledger    ledger.EventLedger
	directory catalog.Directory
}

// NewStreamHandler wires the SSE surface over the hub, the ledger and the
// catalog (for bidder display names in push payloads).
func NewStreamHandler(hub *fanout.Hub, eventLedger ledger.EventLedger, directory catalog.Directory) *StreamHandler {
	return &StreamHandler{hub: hub, ledger: eventLedger, directory: directory}
}

// StreamBidsHandler handles GET /admin/bid-tracking/stream. An optional
// auction_id scopes the subscription to one auction's room; otherwise the
// client joins the admin room and sees every event.
func (h *StreamHandler) StreamBidsHandler(c *gin.Context) {
	room := fanout.RoomAdmin
	auctionID := c.Query("auction_id")
	if auctionID != "" {
		room = fanout.AuctionRoom(auctionID)
	}

	afterSeq, err := lastSeenSeq(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "invalid resume cursor")
		return
	}

	// Subscribe before backfilling so nothing falls between the two.
	sub := h.hub.Subscribe(room)
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	lastSent := afterSeq
	if afterSeq == 0 {
		// No resume cursor means live-only: start the cursor at the
		// ledger head so gap filling never replays history the client
		// did not ask for.
		if head, err := h.ledger.LastSeq(c.Request.Context()); err == nil {
			lastSent = head
		}
	}
	flush := func(e model.BidEvent) bool {
		if e.Seq <= lastSent {
			return true // duplicate across backfill/live boundary
		}
		if err := sse.Encode(c.Writer, sse.Event{
			Id:    strconv.FormatUint(e.Seq, 10),
			Event: "new-bid",
			Data:  h.pushMessage(e),
		}); err != nil {
			return false
		}
		c.Writer.Flush()
		lastSent = e.Seq
		return true
	}

	// catchUp replays everything committed after lastSent, in seq order.
	// Seqs are assigned inside the ledger append, so by the time any event
	// is published every lower seq is already durable and queryable.
	catchUp := func() bool {
		missed, _, err := h.ledger.Query(c.Request.Context(), ledger.Filter{
			AuctionID: auctionID,
			AfterSeq:  lastSent,
		}, 1, 0)
		if err != nil {
			utils.Error("StreamBidsHandler: catch-up query failed", map[string]any{
				"room":      room,
				"after_seq": lastSent,
				"error":     err.Error(),
			})
			return false
		}
		for _, e := range missed {
			if !flush(e) {
				return false
			}
		}
		return true
	}

	if afterSeq > 0 {
		backfill, _, err := h.ledger.Query(c.Request.Context(), ledger.Filter{
			AuctionID: auctionID,
			AfterSeq:  afterSeq,
		}, 1, 0)
		if err != nil {
			utils.Error("StreamBidsHandler: backfill failed", map[string]any{
				"room":      room,
				"after_seq": afterSeq,
				"error":     err.Error(),
			})
			utils.JSONError(c, http.StatusInternalServerError, err, "failed to backfill events")
			return
		}
		for _, e := range backfill {
			if !flush(e) {
				return
			}
		}
	}

	helpers.LogSuccess("StreamBidsHandler", "subscriber joined", map[string]any{
		"room":      room,
		"after_seq": afterSeq,
	})

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			// Lots publish independently after committing, so a higher
			// seq can arrive before a lower one. Fill from the ledger
			// rather than advancing the cursor past the straggler; its
			// own push then dedups as already sent.
			if e.Seq > lastSent+1 {
				if !catchUp() {
					return
				}
				continue
			}
			if !flush(e) {
				return
			}
		}
	}
}

// pushMessage joins the bidder's display name onto the event for the wire.
func (h *StreamHandler) pushMessage(e model.BidEvent) helpers.NewBidMessage {
	msg := helpers.NewBidMessage{Event: e}
	if bidder, err := h.directory.GetBidder(e.BidderID()); err == nil {
		msg.Bidder.Name = bidder.DisplayName
	}
	return msg
}

// lastSeenSeq reads the resume cursor from the SSE Last-Event-ID header or
// an after_seq query param.
func lastSeenSeq(c *gin.Context) (uint64, error) {
	raw := c.GetHeader("Last-Event-ID")
	if raw == "" {
		raw = c.Query("after_seq")
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
