package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auctionerrors"
	"auction-house/internal/config"
	"auction-house/internal/db"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/spf13/cobra"
)

const (
	demoAuctioneer = "auctioneer"
	demoBidder     = "bidder"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "auction-house",
	Short:         "Console auction house for bidders and auctioneers",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, ".env")
		if err != nil {
			return err
		}
		if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat, nil); err != nil {
			return err
		}
		return run(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "auction-house: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run serves the console on in/out until quit, EOF or ctx is cancelled
func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	repo, closeRepo, err := openRepo(cfg)
	if err != nil {
		utils.Error("Failed to open storage", map[string]any{"storage": cfg.Storage, "error": err.Error()})
		return err
	}
	defer closeRepo()

	auctionSvc := auction.NewAuctionService(repo)

	if cfg.SeedDemo {
		if err := prepopulate(ctx, auctionSvc); err != nil {
			utils.Error("Failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	router := server.SetupRouter(auctionSvc)

	utils.Info("Auction house started", map[string]any{"storage": cfg.Storage, "db_path": cfg.DBPath})
	fmt.Fprintln(out, `Welcome to the auction house, type "help" for commands`)
	err = router.Run(ctx, in, out, "> ")
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(out)
		utils.Info("Auction house interrupted", nil)
		return nil
	}
	return err
}

// openRepo returns the configured store and a function releasing it
func openRepo(cfg config.Config) (repository.AuctionDB, func() error, error) {
	if cfg.Storage == config.StorageMemory {
		return repository.NewMemoryRepo(), func() error { return nil }, nil
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	repo := repository.NewSQLiteRepo(conn)
	return repo, repo.Close, nil
}

// prepopulate adds a demo auctioneer, bidder and sample lots to an empty store
func prepopulate(ctx context.Context, svc *auction.AuctionService) error {
	_, err := svc.ResolveUserID(ctx, demoAuctioneer)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, auctionerrors.ErrUserNotFound) {
		return err
	}

	ownerID, err := svc.RegisterUser(ctx, demoAuctioneer, demoAuctioneer, model.RoleAuctioneer)
	if err != nil {
		return err
	}
	if _, err := svc.RegisterUser(ctx, demoBidder, demoBidder, model.RoleBidder); err != nil {
		return err
	}

	items := []struct {
		name  string
		price float64
	}{
		{"Porcelain vase", 100},
		{"Brass lamp", 200},
		{"Oak chair", 150},
	}
	for _, item := range items {
		if _, err := svc.AddItem(ctx, ownerID, item.name, item.price); err != nil {
			return err
		}
	}

	utils.Info("Demo data seeded", map[string]any{"items": len(items)})
	return nil
}
