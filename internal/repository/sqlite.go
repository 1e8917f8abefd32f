package repository

import (
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ AuctionDB = (*SQLiteRepo)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectItemDetails = `
SELECT i.id, i.name, i.start_price,
       MAX(i.start_price, COALESCE((SELECT MAX(b.amount) FROM bids b WHERE b.item_id = i.id), i.start_price))
FROM items i`

// insertGuardedBid inserts the bid only when the item and bidder exist and the
// amount beats the current price, in one statement.
const insertGuardedBid = `
INSERT INTO bids (bidder_id, item_id, amount)
SELECT u.id, i.id, ?
FROM items i
JOIN users u ON u.id = ?
WHERE i.id = ?
  AND ? > MAX(i.start_price, COALESCE((SELECT MAX(b.amount) FROM bids b WHERE b.item_id = i.id), i.start_price))`

// SQLiteRepo implements AuctionDB on top of a SQLite database
type SQLiteRepo struct {
	db *sql.DB
}

// NewSQLiteRepo wraps an opened and migrated database
func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// Close closes the underlying database
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// CreateUser inserts a new user row; logins are not required to be unique
func (r *SQLiteRepo) CreateUser(ctx context.Context, login, password string, role model.Role) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login, password, role) VALUES (?, ?, ?)`,
		login, password, string(role),
	)
	if err != nil {
		return 0, fmt.Errorf("creating user %q: %w", login, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}
	return id, nil
}

// GetUser returns a user by id
func (r *SQLiteRepo) GetUser(ctx context.Context, userID int64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, login, password, role FROM users WHERE id = ?`, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("get user %d: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("getting user %d: %w", userID, err)
	}
	return u, nil
}

// FindUserByLogin returns the first user registered with login
func (r *SQLiteRepo) FindUserByLogin(ctx context.Context, login string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, login, password, role FROM users WHERE login = ? ORDER BY id LIMIT 1`, login,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("find user %q: %w", login, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("finding user %q: %w", login, err)
	}
	return u, nil
}

// FindUserByCredentials returns the first user matching login, password and role exactly
func (r *SQLiteRepo) FindUserByCredentials(ctx context.Context, login, password string, role model.Role) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, login, password, role FROM users
		 WHERE login = ? AND password = ? AND role = ? ORDER BY id LIMIT 1`,
		login, password, string(role),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("authenticate %q as %s: %w", login, role, auctionerrors.ErrInvalidCredentials)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("authenticating %q: %w", login, err)
	}
	return u, nil
}

// CreateItem inserts a new item when ownerID references an existing user
func (r *SQLiteRepo) CreateItem(ctx context.Context, ownerID int64, name string, startPrice float64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO items (owner_id, name, start_price) SELECT id, ?, ? FROM users WHERE id = ?`,
		name, startPrice, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item %q: %w", name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("creating item %q: %w", name, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("create item for owner %d: %w", ownerID, auctionerrors.ErrUnknownOwner)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by id
func (r *SQLiteRepo) GetItem(ctx context.Context, itemID int64) (model.Item, error) {
	var item model.Item
	var ownerID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, start_price FROM items WHERE id = ?`, itemID,
	).Scan(&item.ID, &ownerID, &item.Name, &item.StartPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("get item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("getting item %d: %w", itemID, err)
	}
	item.OwnerID = ownerID.Int64
	return item, nil
}

// GetItemDetails returns an item together with its current price
func (r *SQLiteRepo) GetItemDetails(ctx context.Context, itemID int64) (model.ItemDetails, error) {
	d, err := itemDetails(ctx, r.db, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ItemDetails{}, fmt.Errorf("get item details %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.ItemDetails{}, fmt.Errorf("getting item details %d: %w", itemID, err)
	}
	return d, nil
}

// ListItemsByOwner returns the owner's items in insertion order
func (r *SQLiteRepo) ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, start_price FROM items WHERE owner_id = ? ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items of owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListLots returns every item with its current price in insertion order
func (r *SQLiteRepo) ListLots(ctx context.Context) ([]model.ItemDetails, error) {
	rows, err := r.db.QueryContext(ctx, selectItemDetails+` ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("listing lots: %w", err)
	}
	defer rows.Close()

	lots := make([]model.ItemDetails, 0)
	for rows.Next() {
		var d model.ItemDetails
		if err := rows.Scan(&d.ItemID, &d.Name, &d.StartPrice, &d.CurrentPrice); err != nil {
			return nil, fmt.Errorf("scanning lot: %w", err)
		}
		lots = append(lots, d)
	}
	return lots, rows.Err()
}

// UpdateItem replaces an item's name and start price
func (r *SQLiteRepo) UpdateItem(ctx context.Context, itemID int64, name string, startPrice float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET name = ?, start_price = ? WHERE id = ?`,
		name, startPrice, itemID,
	)
	if err != nil {
		return fmt.Errorf("updating item %d: %w", itemID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item %d: %w", itemID, err)
	}
	if n == 0 {
		return fmt.Errorf("update item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return nil
}

// DeleteItem removes an item; items that already received bids are kept
func (r *SQLiteRepo) DeleteItem(ctx context.Context, itemID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting item %d: begin transaction: %w", itemID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND NOT EXISTS (SELECT 1 FROM bids WHERE item_id = ?)`,
		itemID, itemID,
	)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", itemID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", itemID, err)
	}
	if n == 0 {
		var bids int
		err := tx.QueryRowContext(ctx,
			`SELECT (SELECT COUNT(*) FROM bids WHERE item_id = i.id) FROM items i WHERE i.id = ?`, itemID,
		).Scan(&bids)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete item %d: %w", itemID, auctionerrors.ErrItemNotFound)
		}
		if err != nil {
			return fmt.Errorf("deleting item %d: %w", itemID, err)
		}
		return fmt.Errorf("delete item %d: %w - %d bids recorded", itemID, auctionerrors.ErrItemHasBids, bids)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deleting item %d: commit: %w", itemID, err)
	}
	return nil
}

// RecordBidForItem records a bid if it beats the item's current price.
// The check and the insert are a single conditional statement.
func (r *SQLiteRepo) RecordBidForItem(ctx context.Context, bidderID, itemID int64, amount float64) (model.Bid, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Bid{}, fmt.Errorf("recording bid for item %d: begin transaction: %w", itemID, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, insertGuardedBid, amount, bidderID, itemID, amount)
	if err != nil {
		return model.Bid{}, fmt.Errorf("recording bid for item %d: %w", itemID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return model.Bid{}, fmt.Errorf("recording bid for item %d: %w", itemID, err)
	}
	if n == 0 {
		return model.Bid{}, rejectedBid(ctx, tx, bidderID, itemID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Bid{}, fmt.Errorf("getting bid id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Bid{}, fmt.Errorf("recording bid for item %d: commit: %w", itemID, err)
	}

	return model.Bid{ID: id, ItemID: itemID, BidderID: bidderID, Amount: amount}, nil
}

// GetBidsByItem returns all bids for an item in the order they were placed
func (r *SQLiteRepo) GetBidsByItem(ctx context.Context, itemID int64) ([]model.Bid, error) {
	if _, err := r.GetItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("get bids for item %d: %w", itemID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, bidder_id, amount FROM bids WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bids for item %d: %w", itemID, err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		var bidderID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.ItemID, &bidderID, &b.Amount); err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		b.BidderID = bidderID.Int64
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// GetItemsByBidder returns all items a bidder has bid on, ordered by first bid
func (r *SQLiteRepo) GetItemsByBidder(ctx context.Context, bidderID int64) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.owner_id, i.name, i.start_price
		 FROM items i
		 JOIN (SELECT item_id, MIN(id) AS first_bid FROM bids WHERE bidder_id = ? GROUP BY item_id) b
		   ON b.item_id = i.id
		 ORDER BY b.first_bid`, bidderID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items of bidder %d: %w", bidderID, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// rejectedBid explains why the guarded insert matched no row
func rejectedBid(ctx context.Context, q queryer, bidderID, itemID int64) error {
	d, err := itemDetails(ctx, q, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("record bid for item %d: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	if err != nil {
		return fmt.Errorf("recording bid for item %d: %w", itemID, err)
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, bidderID).Scan(&exists); err != nil {
		return fmt.Errorf("recording bid for item %d: %w", itemID, err)
	}
	if !exists {
		return fmt.Errorf("record bid for item %d: %w", itemID, auctionerrors.ErrUnknownBidder)
	}

	return fmt.Errorf("record bid for item %d: %w - current price is %.2f", itemID, auctionerrors.ErrBidTooLow, d.CurrentPrice)
}

func itemDetails(ctx context.Context, q queryer, itemID int64) (model.ItemDetails, error) {
	var d model.ItemDetails
	err := q.QueryRowContext(ctx, selectItemDetails+` WHERE i.id = ?`, itemID).
		Scan(&d.ItemID, &d.Name, &d.StartPrice, &d.CurrentPrice)
	return d, err
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Login, &u.Password, &role); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	return u, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	items := make([]model.Item, 0)
	for rows.Next() {
		var item model.Item
		var ownerID sql.NullInt64
		if err := rows.Scan(&item.ID, &ownerID, &item.Name, &item.StartPrice); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.OwnerID = ownerID.Int64
		items = append(items, item)
	}
	return items, rows.Err()
}
