package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"bid-ledger/internal/biddingerrors"
	"bid-ledger/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain errors to an HTTP status code and message.
// Validation rejections stay 4xx; invariant violations surface as 500s so
// operators notice them.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrLotNotOpen):
		return http.StatusConflict, "lot is not open for bidding"
	case errors.Is(err, biddingerrors.ErrBidderNotVerified):
		return http.StatusForbidden, "bidder is not auction-verified"
	case errors.Is(err, biddingerrors.ErrLotNotFound):
		return http.StatusNotFound, "lot not found"
	case errors.Is(err, biddingerrors.ErrBidderNotFound):
		return http.StatusNotFound, "bidder not found"
	case errors.Is(err, biddingerrors.ErrNoEvents):
		return http.StatusNotFound, "no events found"
	case errors.Is(err, biddingerrors.ErrLotBusy):
		return http.StatusServiceUnavailable, "lot is busy, retry later"
	case errors.Is(err, biddingerrors.ErrCascadeLimitExceeded):
		return http.StatusInternalServerError, "auto-bid cascade aborted"
	case errors.Is(err, biddingerrors.ErrSequenceGap):
		return http.StatusInternalServerError, "ledger sequence integrity failure"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// IsValidationError reports whether err is an expected rejection that should
// not be logged as a failure.
func IsValidationError(err error) bool {
	return errors.Is(err, biddingerrors.ErrInvalidBid) ||
		errors.Is(err, biddingerrors.ErrBidTooLow) ||
		errors.Is(err, biddingerrors.ErrLotNotOpen) ||
		errors.Is(err, biddingerrors.ErrBidderNotVerified)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
