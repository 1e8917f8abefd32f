package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Column names follow the three relations
// users, items and bids; owner_id, bidder_id and item_id stay nullable.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    login    TEXT NOT NULL,
    password TEXT NOT NULL,
    role     TEXT NOT NULL CHECK (role IN ('Bidder', 'Auctioneer'))
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id    INTEGER REFERENCES users(id),
    name        TEXT NOT NULL,
    start_price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    bidder_id INTEGER REFERENCES users(id),
    item_id   INTEGER REFERENCES items(id) ON DELETE RESTRICT,
    amount    REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_login ON users(login);
CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_bids_item_id ON bids(item_id);
CREATE INDEX IF NOT EXISTS idx_bids_bidder_id ON bids(bidder_id);
`

// Migrate creates all tables and indexes if they don't already exist.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
