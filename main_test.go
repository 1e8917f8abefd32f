package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/config"
	"auction-house/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestPrepopulate_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := auction.NewAuctionService(repository.NewMemoryRepo())

	require.NoError(t, prepopulate(ctx, svc))
	require.NoError(t, prepopulate(ctx, svc))

	lots, err := svc.ListLots(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 3)
	for _, lot := range lots {
		require.Equal(t, lot.StartPrice, lot.CurrentPrice)
	}

	_, err = svc.Authenticate(ctx, demoBidder, demoBidder, "Bidder")
	require.NoError(t, err)
}

func TestOpenRepo(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "auction.db")

	repo, closeRepo, err := openRepo(cfg)
	require.NoError(t, err)
	require.IsType(t, &repository.SQLiteRepo{}, repo)

	id, err := repo.CreateUser(ctx, "alice", "pw", "Auctioneer")
	require.NoError(t, err)
	require.NoError(t, closeRepo())

	// data survives reopening the file
	repo, closeRepo, err = openRepo(cfg)
	require.NoError(t, err)
	defer closeRepo()
	user, err := repo.FindUserByLogin(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)

	cfg.Storage = config.StorageMemory
	repo, _, err = openRepo(cfg)
	require.NoError(t, err)
	require.IsType(t, &repository.MemoryRepo{}, repo)
}

func TestRun_Script(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	cfg.SeedDemo = true

	var out bytes.Buffer
	in := strings.NewReader("login bidder bidder bidder\nbid 2 250\nlots\n")
	require.NoError(t, run(context.Background(), cfg, in, &out))

	require.Contains(t, out.String(), `you placed a bid of 250.00 on "Brass lamp"`)
	require.Contains(t, out.String(), "#2 Brass lamp - start price 200.00, current price 250.00")
}

func TestRun_InterruptAtIdlePrompt(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageMemory

	// stdin stays open without input
	r, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- run(ctx, cfg, r, io.Discard) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console still waiting for input after interrupt")
	}
}
