package repository

import (
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"context"
	"fmt"
	"sort"
	"sync"
)

// AuctionDB defines the storage interface for users, items and bids
type AuctionDB interface {
	CreateUser(ctx context.Context, login, password string, role model.Role) (int64, error)
	GetUser(ctx context.Context, userID int64) (model.User, error)
	FindUserByLogin(ctx context.Context, login string) (model.User, error)
	FindUserByCredentials(ctx context.Context, login, password string, role model.Role) (model.User, error)

	CreateItem(ctx context.Context, ownerID int64, name string, startPrice float64) (int64, error)
	GetItem(ctx context.Context, itemID int64) (model.Item, error)
	GetItemDetails(ctx context.Context, itemID int64) (model.ItemDetails, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	ListLots(ctx context.Context) ([]model.ItemDetails, error)
	UpdateItem(ctx context.Context, itemID int64, name string, startPrice float64) error
	DeleteItem(ctx context.Context, itemID int64) error

	RecordBidForItem(ctx context.Context, bidderID, itemID int64, amount float64) (model.Bid, error)
	GetBidsByItem(ctx context.Context, itemID int64) ([]model.Bid, error)
	GetItemsByBidder(ctx context.Context, bidderID int64) ([]model.Item, error)
}

var _ AuctionDB = (*MemoryRepo)(nil)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu          sync.RWMutex
	users       []model.User          // ordered by id, id == index+1
	items       map[int64]model.Item  // key: itemID -> value: item
	bids        map[int64][]model.Bid // key: itemID -> value: list of bids
	bidderItems map[int64][]int64     // key: bidderID -> value: list of itemIDs bidder has bid on
	nextItemID  int64
	nextBidID   int64
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:       make(map[int64]model.Item),
		bids:        make(map[int64][]model.Bid),
		bidderItems: make(map[int64][]int64),
	}
}

// CreateUser stores a new user; logins are not required to be unique
func (r *MemoryRepo) CreateUser(_ context.Context, login, password string, role model.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := int64(len(r.users) + 1)
	r.users = append(r.users, model.User{ID: id, Login: login, Password: password, Role: role})
	return id, nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, userID int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.user(userID)
	if !ok {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

// FindUserByLogin returns the first user registered with login
func (r *MemoryRepo) FindUserByLogin(_ context.Context, login string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Login == login {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("find user %q: %w", login, auctionerrors.ErrUserNotFound)
}

// FindUserByCredentials returns the first user matching login, password and role exactly
func (r *MemoryRepo) FindUserByCredentials(_ context.Context, login, password string, role model.Role) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Login == login && u.Password == password && u.Role == role {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("authenticate %q as %s: %w", login, role, auctionerrors.ErrInvalidCredentials)
}

// CreateItem stores a new item owned by ownerID
func (r *MemoryRepo) CreateItem(_ context.Context, ownerID int64, name string, startPrice float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.user(ownerID); !ok {
		return 0, fmt.Errorf("create item for owner %d: %w", ownerID, auctionerrors.ErrUnknownOwner)
	}

	r.nextItemID++
	r.items[r.nextItemID] = model.Item{ID: r.nextItemID, OwnerID: ownerID, Name: name, StartPrice: startPrice}
	return r.nextItemID, nil
}

// GetItem returns an item by id
func (r *MemoryRepo) GetItem(_ context.Context, itemID int64) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return item, nil
}

// GetItemDetails returns an item together with its current price
func (r *MemoryRepo) GetItemDetails(_ context.Context, itemID int64) (model.ItemDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.ItemDetails{}, fmt.Errorf("get item details %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return r.details(item), nil
}

// ListItemsByOwner returns the owner's items in insertion order
func (r *MemoryRepo) ListItemsByOwner(_ context.Context, ownerID int64) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Item, 0)
	for _, item := range r.sortedItems() {
		if item.OwnerID == ownerID {
			items = append(items, item)
		}
	}
	return items, nil
}

// ListLots returns every item with its current price in insertion order
func (r *MemoryRepo) ListLots(_ context.Context) ([]model.ItemDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedItems()
	lots := make([]model.ItemDetails, 0, len(sorted))
	for _, item := range sorted {
		lots = append(lots, r.details(item))
	}
	return lots, nil
}

// UpdateItem replaces an item's name and start price
func (r *MemoryRepo) UpdateItem(_ context.Context, itemID int64, name string, startPrice float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return fmt.Errorf("update item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	item.Name = name
	item.StartPrice = startPrice
	r.items[itemID] = item
	return nil
}

// DeleteItem removes an item; items that already received bids are kept
func (r *MemoryRepo) DeleteItem(_ context.Context, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[itemID]; !ok {
		return fmt.Errorf("delete item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	if n := len(r.bids[itemID]); n > 0 {
		return fmt.Errorf("delete item %d: %w - %d bids recorded", itemID, auctionerrors.ErrItemHasBids, n)
	}
	delete(r.items, itemID)
	return nil
}

// RecordBidForItem records a bid if it beats the item's current price.
// The check and the insert happen under the same write lock.
func (r *MemoryRepo) RecordBidForItem(_ context.Context, bidderID, itemID int64, amount float64) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Bid{}, fmt.Errorf("record bid for item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	if _, ok := r.user(bidderID); !ok {
		return model.Bid{}, fmt.Errorf("record bid for item %d: %w", itemID, auctionerrors.ErrUnknownBidder)
	}

	current := model.CurrentPrice(item.StartPrice, r.bids[itemID])
	if amount <= current {
		return model.Bid{}, fmt.Errorf("record bid for item %d: %w - current price is %.2f", itemID, auctionerrors.ErrBidTooLow, current)
	}

	r.nextBidID++
	bid := model.Bid{ID: r.nextBidID, ItemID: itemID, BidderID: bidderID, Amount: amount}
	r.bids[itemID] = append(r.bids[itemID], bid)

	for _, id := range r.bidderItems[bidderID] {
		if id == itemID {
			return bid, nil
		}
	}
	r.bidderItems[bidderID] = append(r.bidderItems[bidderID], itemID)

	return bid, nil
}

// GetBidsByItem returns all bids for an item in the order they were placed
func (r *MemoryRepo) GetBidsByItem(_ context.Context, itemID int64) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.items[itemID]; !ok {
		return nil, fmt.Errorf("get bids for item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return append([]model.Bid{}, r.bids[itemID]...), nil
}

// GetItemsByBidder returns all items a bidder has bid on, ordered by first bid
func (r *MemoryRepo) GetItemsByBidder(_ context.Context, bidderID int64) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemIDs := r.bidderItems[bidderID]
	items := make([]model.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, exists := r.items[id]; exists {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *MemoryRepo) user(id int64) (model.User, bool) {
	if id < 1 || id > int64(len(r.users)) {
		return model.User{}, false
	}
	return r.users[id-1], true
}

func (r *MemoryRepo) details(item model.Item) model.ItemDetails {
	return model.ItemDetails{
		ItemID:       item.ID,
		Name:         item.Name,
		StartPrice:   item.StartPrice,
		CurrentPrice: model.CurrentPrice(item.StartPrice, r.bids[item.ID]),
	}
}

func (r *MemoryRepo) sortedItems() []model.Item {
	items := make([]model.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
