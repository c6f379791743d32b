package server

import (
	handler "bid-ledger/services/bidding/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingHandler *handler.BiddingHandler, streamHandler *handler.StreamHandler) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.SubmitBidHandler)
	}

	lots := router.Group("/lots")
	{
		lots.POST("/:lot_id/close", biddingHandler.CloseLotHandler)
		lots.GET("/:lot_id/leader", biddingHandler.CurrentLeaderHandler)
	}

	admin := router.Group("/admin")
	{
		admin.GET("/bid-tracking", biddingHandler.BidTrackingHandler)
		admin.GET("/bid-tracking/stream", streamHandler.StreamBidsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
