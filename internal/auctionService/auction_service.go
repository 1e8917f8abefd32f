package auction

import (
	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
	"context"
	"fmt"
	"math"
	"strings"
)

// AuctionService defines the business logic for users, lots and bidding
type AuctionService struct {
	repo repository.AuctionDB
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{
		repo: repo,
	}
}

// RegisterUser stores a new account. Logins may repeat.
func (s *AuctionService) RegisterUser(ctx context.Context, login, password string, role models.Role) (int64, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return 0, fmt.Errorf("service: %w - login and password are required", auctionerrors.ErrInvalidCredentials)
	}
	if !role.Valid() {
		return 0, fmt.Errorf("service: %w - %q", auctionerrors.ErrInvalidRole, role)
	}

	id, err := s.repo.CreateUser(ctx, login, password, role)
	if err != nil {
		return 0, fmt.Errorf("service: failed to register %s %q: %w", role, login, err)
	}
	return id, nil
}

// Authenticate checks the exact (login, password, role) triple and opens a session
func (s *AuctionService) Authenticate(ctx context.Context, login, password string, role models.Role) (models.Session, error) {
	if !role.Valid() {
		return models.Session{}, fmt.Errorf("service: %w - %q", auctionerrors.ErrInvalidRole, role)
	}

	user, err := s.repo.FindUserByCredentials(ctx, login, password, role)
	if err != nil {
		return models.Session{}, fmt.Errorf("service: failed to authenticate %q: %w", login, err)
	}

	return models.Session{
		ID:     utils.GenerateSessionID(),
		UserID: user.ID,
		Login:  user.Login,
		Role:   user.Role,
	}, nil
}

// ResolveUserID returns the id of the first user registered with login
func (s *AuctionService) ResolveUserID(ctx context.Context, login string) (int64, error) {
	user, err := s.repo.FindUserByLogin(ctx, login)
	if err != nil {
		return 0, fmt.Errorf("service: failed to resolve user %q: %w", login, err)
	}
	return user.ID, nil
}

// AddItem lists a new lot for an auctioneer
func (s *AuctionService) AddItem(ctx context.Context, ownerID int64, name string, startPrice float64) (int64, error) {
	if err := validateItem(name, startPrice); err != nil {
		return 0, err
	}
	if err := s.requireRole(ctx, ownerID, models.RoleAuctioneer); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateItem(ctx, ownerID, name, startPrice)
	if err != nil {
		return 0, fmt.Errorf("service: failed to add item %q for owner %d: %w", name, ownerID, err)
	}
	return id, nil
}

// ListItemsByOwner returns the lots an auctioneer listed
func (s *AuctionService) ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	items, err := s.repo.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items of owner %d: %w", ownerID, err)
	}
	return items, nil
}

// ListLots returns every lot open for bidding with its current price
func (s *AuctionService) ListLots(ctx context.Context) ([]models.ItemDetails, error) {
	lots, err := s.repo.ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list lots: %w", err)
	}
	return lots, nil
}

// GetItemDetails returns a lot's name, start price and current price
func (s *AuctionService) GetItemDetails(ctx context.Context, itemID int64) (models.ItemDetails, error) {
	details, err := s.repo.GetItemDetails(ctx, itemID)
	if err != nil {
		return models.ItemDetails{}, fmt.Errorf("service: failed to get item %d: %w", itemID, err)
	}
	return details, nil
}

// PlaceBid validates and records a bidder's offer. The store accepts it only
// when it is strictly above the current price.
func (s *AuctionService) PlaceBid(ctx context.Context, bidderID, itemID int64, amount float64) (models.Bid, error) {
	if err := validateBid(bidderID, itemID, amount); err != nil {
		return models.Bid{}, err
	}
	if err := s.requireRole(ctx, bidderID, models.RoleBidder); err != nil {
		return models.Bid{}, err
	}

	bid, err := s.repo.RecordBidForItem(ctx, bidderID, itemID, amount)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for item %d by user %d: %w", itemID, bidderID, err)
	}
	return bid, nil
}

// UpdateItem renames and reprices a lot owned by actorID
func (s *AuctionService) UpdateItem(ctx context.Context, actorID, itemID int64, name string, startPrice float64) error {
	if err := validateItem(name, startPrice); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, actorID, itemID); err != nil {
		return err
	}

	if err := s.repo.UpdateItem(ctx, itemID, name, startPrice); err != nil {
		return fmt.Errorf("service: failed to update item %d: %w", itemID, err)
	}
	return nil
}

// DeleteItem removes a lot owned by actorID. Lots with bids are kept.
func (s *AuctionService) DeleteItem(ctx context.Context, actorID, itemID int64) error {
	if err := s.requireOwner(ctx, actorID, itemID); err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("service: failed to delete item %d: %w", itemID, err)
	}
	return nil
}

// GetBidsForItem returns all bids for a specific item
func (s *AuctionService) GetBidsForItem(ctx context.Context, itemID int64) ([]models.Bid, error) {
	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %d: %w", itemID, err)
	}
	return bids, nil
}

// GetItemsByBidder returns all items a bidder has placed bids on
func (s *AuctionService) GetItemsByBidder(ctx context.Context, bidderID int64) ([]models.Item, error) {
	items, err := s.repo.GetItemsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for bidder %d: %w", bidderID, err)
	}
	return items, nil
}

// requireRole checks that userID exists and has the given role
func (s *AuctionService) requireRole(ctx context.Context, userID int64, role models.Role) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("service: failed to load user %d: %w", userID, err)
	}
	if user.Role != role {
		return fmt.Errorf("service: %w - user %d is %s, need %s", auctionerrors.ErrWrongRole, userID, user.Role, role)
	}
	return nil
}

// requireOwner checks that actorID is an auctioneer owning itemID
func (s *AuctionService) requireOwner(ctx context.Context, actorID, itemID int64) error {
	if err := s.requireRole(ctx, actorID, models.RoleAuctioneer); err != nil {
		return err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("service: failed to load item %d: %w", itemID, err)
	}
	if item.OwnerID != actorID {
		return fmt.Errorf("service: %w - item %d, user %d", auctionerrors.ErrNotOwner, itemID, actorID)
	}
	return nil
}

// validateItem checks the fields of a lot
func validateItem(name string, startPrice float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("service: %w - empty name", auctionerrors.ErrInvalidItem)
	}
	if startPrice < 0 || math.IsNaN(startPrice) || math.IsInf(startPrice, 0) {
		return fmt.Errorf("service: %w - start price must be a non-negative number", auctionerrors.ErrInvalidItem)
	}
	return nil
}

// validateBid checks input validity before touching the store
func validateBid(bidderID, itemID int64, amount float64) error {
	if bidderID <= 0 || itemID <= 0 {
		return fmt.Errorf("service: %w - missing item or bidder", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	return nil
}
