package server

import (
	auction "auction-house/internal/auctionService"
	"auction-house/internal/console"
	handler "auction-house/services/auction/handler"
)

// SetupRouter configures all console commands for the application
func SetupRouter(auctionService *auction.AuctionService) *console.Engine {
	router := console.New()

	router.Before(StartTimer)             // timing for the command log
	router.After(CommandLoggerMiddleware) // custom command logging
	router.Recover(Recovery)              // recover from panics, logging still runs
	router.Rejected(RejectedCommand)      // unknown commands and wrong argument counts

	auctionHandler := handler.NewAuctionHandler(auctionService)
	for _, cmd := range auctionHandler.Commands() {
		router.Handle(cmd)
	}

	return router
}
