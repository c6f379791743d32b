package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/ledger"
	model "bid-ledger/internal/models"
	"bid-ledger/services/bidding/helpers"
	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// ResolutionService admits bids and returns the events they produced.
type ResolutionService interface {
	SubmitBid(ctx context.Context, lotID, bidderID string, amount decimal.Decimal, meta model.RequesterMeta) ([]model.BidEvent, error)
}

// FinalizerService closes lots on the external scheduler's signal.
type FinalizerService interface {
	CloseLot(ctx context.Context, lotID string) (*model.BidEvent, error)
}

// LotResolver maps the admin view's lot-number filter to a lot.
type LotResolver interface {
	LotByNumber(auctionID string, number int) (model.Lot, error)
}

// BiddingHandler serves the bid submission and admin tracking surface.
type BiddingHandler struct {
	resolver  ResolutionService
	finalizer FinalizerService
	ledger    ledger.EventLedger
	lots      LotResolver
	directory catalog.Directory
}

// NewBiddingHandler wires the handler's collaborators.
func NewBiddingHandler(resolver ResolutionService, finalizer FinalizerService, eventLedger ledger.EventLedger, lots LotResolver, directory catalog.Directory) *BiddingHandler {
	return &BiddingHandler{
		resolver:  resolver,
		finalizer: finalizer,
		ledger:    eventLedger,
		lots:      lots,
		directory: directory,
	}
}

// SubmitBidHandler handles POST /bids
func (h *BiddingHandler) SubmitBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	meta := model.RequesterMeta{
		IP:     c.ClientIP(),
		Device: c.Request.UserAgent(),
	}

	events, err := h.resolver.SubmitBid(c.Request.Context(), req.LotID, req.BidderID, req.Amount, meta)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		if !helpers.IsValidationError(err) {
			utils.Error("SubmitBidHandler: failed to admit bid", map[string]any{
				"lot_id":    req.LotID,
				"bidder_id": req.BidderID,
				"error":     err.Error(),
			})
		}
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.SubmitBidResponse{Events: events}, "bid admitted successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid admitted successfully", map[string]any{
		"lot_id":    req.LotID,
		"bidder_id": req.BidderID,
		"amount":    req.Amount.String(),
		"events":    len(events),
		"first_seq": events[0].Seq,
	})
}

// BidTrackingHandler handles GET /admin/bid-tracking. Query params mirror
// the admin UI's filter contract: auction_id, status (event type),
// lot_number (or the synthetic "auction-level" value), start_date, end_date,
// page, limit. Events are returned descending by seq for display.
func (h *BiddingHandler) BidTrackingHandler(c *gin.Context) {
	filter, page, limit, err := h.trackingFilter(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err, "invalid filter")
		return
	}

	events, total, err := h.ledger.Query(c.Request.Context(), filter, page, limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, err, "failed to load bid events")
		utils.Error("BidTrackingHandler: query failed", map[string]any{"error": err.Error()})
		return
	}

	if events == nil {
		events = []model.BidEvent{}
	}
	utils.JSONList(c, http.StatusOK, gin.H{"events": events}, page, limit, total, "events retrieved successfully")
}

// trackingFilter parses the admin filter set out of the query string.
func (h *BiddingHandler) trackingFilter(c *gin.Context) (ledger.Filter, int, int, error) {
	filter := ledger.Filter{
		AuctionID:  c.Query("auction_id"),
		EventType:  model.EventType(c.Query("status")),
		Descending: true,
	}

	switch t := filter.EventType; t {
	case "", model.EventBidPlaced, model.EventAutoBid, model.EventOutbid, model.EventWinner:
	default:
		return ledger.Filter{}, 0, 0, fmt.Errorf("unknown event type %q", t)
	}

	if lotNumber := c.Query("lot_number"); lotNumber != "" {
		if lotNumber == ledger.AuctionLevelLot {
			filter.LotID = ledger.AuctionLevelLot
		} else {
			number, err := strconv.Atoi(lotNumber)
			if err != nil {
				return ledger.Filter{}, 0, 0, fmt.Errorf("invalid lot_number %q", lotNumber)
			}
			lot, err := h.lots.LotByNumber(filter.AuctionID, number)
			if err != nil {
				return ledger.Filter{}, 0, 0, err
			}
			filter.LotID = lot.LotID
		}
	}

	if raw := c.Query("start_date"); raw != "" {
		parsed, _, err := parseFilterDate(raw)
		if err != nil {
			return ledger.Filter{}, 0, 0, fmt.Errorf("invalid start_date %q", raw)
		}
		filter.From = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, dateOnly, err := parseFilterDate(raw)
		if err != nil {
			return ledger.Filter{}, 0, 0, fmt.Errorf("invalid end_date %q", raw)
		}
		if dateOnly {
			// A bare end date means the whole day, not its midnight.
			parsed = parsed.Add(24*time.Hour - time.Millisecond)
		}
		filter.To = parsed
	}

	page, err := intQuery(c, "page", 1)
	if err != nil {
		return ledger.Filter{}, 0, 0, err
	}
	limit, err := intQuery(c, "limit", defaultPageLimit)
	if err != nil {
		return ledger.Filter{}, 0, 0, err
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return filter, page, limit, nil
}

// parseFilterDate accepts RFC3339 timestamps or the plain dates the admin
// date pickers send, reporting which form it saw.
func parseFilterDate(raw string) (time.Time, bool, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, false, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed, true, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// CloseLotHandler handles POST /lots/:lot_id/close, the scheduler's
// lot-closed ingress. Repeat calls return the same winner without
// re-appending.
func (h *BiddingHandler) CloseLotHandler(c *gin.Context) {
	lotID := c.Param("lot_id")

	winner, err := h.finalizer.CloseLot(c.Request.Context(), lotID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CloseLotHandler: failed to close lot", map[string]any{
			"lot_id": lotID,
			"error":  err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.CloseLotResponse{Winner: winner}, "lot closed")
	fields := map[string]any{"lot_id": lotID}
	if winner != nil {
		fields["winner_bidder_id"] = winner.BidderID()
		fields["winning_amount"] = winner.Amount().String()
	}
	helpers.LogSuccess("CloseLotHandler", "lot closed", fields)
}

// CurrentLeaderHandler handles GET /lots/:lot_id/leader
func (h *BiddingHandler) CurrentLeaderHandler(c *gin.Context) {
	lotID := c.Param("lot_id")

	leader, err := h.ledger.CurrentLeader(c.Request.Context(), lotID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		if status == http.StatusNotFound {
			utils.JSONError(c, status, biddingerrors.ErrNoEvents, "no leader for lot")
			return
		}
		utils.JSONError(c, status, err, message)
		utils.Error("CurrentLeaderHandler: failed to read leader", map[string]any{
			"lot_id": lotID,
			"error":  err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, leader, "leader retrieved successfully")
}
