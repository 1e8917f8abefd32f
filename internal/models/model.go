package models

import (
	"fmt"
	"strings"
)

// Role is the kind of account a user registered as
type Role string

const (
	RoleBidder     Role = "Bidder"
	RoleAuctioneer Role = "Auctioneer"
)

// ParseRole accepts a role name in any letter case
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bidder":
		return RoleBidder, nil
	case "auctioneer":
		return RoleAuctioneer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleBidder || r == RoleAuctioneer
}

// User represents a registered participant of the auction
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

// Item represents a lot listed by an auctioneer
type Item struct {
	ID         int64   `json:"id"`
	OwnerID    int64   `json:"owner_id"`
	Name       string  `json:"name"`
	StartPrice float64 `json:"start_price"`
}

// ItemDetails is an item together with its current price
type ItemDetails struct {
	ItemID       int64   `json:"item_id"`
	Name         string  `json:"name"`
	StartPrice   float64 `json:"start_price"`
	CurrentPrice float64 `json:"current_price"`
}

// Bid represents a bidder's accepted offer on an item
type Bid struct {
	ID       int64   `json:"id"`
	ItemID   int64   `json:"item_id"`
	BidderID int64   `json:"bidder_id"`
	Amount   float64 `json:"amount"`
}

// Session identifies the user logged in to a front end
type Session struct {
	ID     string `json:"id"`
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
	Role   Role   `json:"role"`
}

// CurrentPrice returns max(startPrice, highest bid)
func CurrentPrice(startPrice float64, bids []Bid) float64 {
	current := startPrice
	for _, b := range bids {
		if b.Amount > current {
			current = b.Amount
		}
	}
	return current
}
