package perftests

import (
	"context"
	"fmt"
	"testing"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/db"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
)

var backendNames = []string{"memory", "sqlite"}

// fixture is a service seeded with one auctioneer, its lots and a pool of bidders
type fixture struct {
	svc     *auction.AuctionService
	owner   int64
	items   []int64
	bidders []int64
}

func newRepo(b *testing.B, backend string) repository.AuctionDB {
	b.Helper()
	if backend == "sqlite" {
		return repository.NewSQLiteRepo(db.NewTestDB(b))
	}
	return repository.NewMemoryRepo()
}

// setupFixture creates a service over backend with numItems lots starting at
// startPrice and numBidders registered bidders
func setupFixture(b *testing.B, backend string, numItems, numBidders int, startPrice float64) *fixture {
	b.Helper()
	ctx := context.Background()
	f := &fixture{svc: auction.NewAuctionService(newRepo(b, backend))}

	var err error
	f.owner, err = f.svc.RegisterUser(ctx, "auctioneer", "pw", model.RoleAuctioneer)
	if err != nil {
		b.Fatalf("register auctioneer: %v", err)
	}

	for i := 0; i < numItems; i++ {
		id, err := f.svc.AddItem(ctx, f.owner, fmt.Sprintf("Load test item %d", i), startPrice)
		if err != nil {
			b.Fatalf("add item: %v", err)
		}
		f.items = append(f.items, id)
	}

	for i := 0; i < numBidders; i++ {
		id, err := f.svc.RegisterUser(ctx, fmt.Sprintf("bidder_%d", i), "pw", model.RoleBidder)
		if err != nil {
			b.Fatalf("register bidder: %v", err)
		}
		f.bidders = append(f.bidders, id)
	}
	return f
}
