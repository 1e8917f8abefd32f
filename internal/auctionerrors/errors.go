package auctionerrors

import (
	"errors"
	"fmt"
)

// Repository-level errors
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInvalidBid          = errors.New("invalid bid")

	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("item %w", ErrNotFound)
	ErrUnknownOwner  = fmt.Errorf("%w: owner does not exist", ErrConstraintViolation)
	ErrUnknownBidder = fmt.Errorf("%w: bidder does not exist", ErrConstraintViolation)
	ErrItemHasBids   = fmt.Errorf("%w: item has bids", ErrConstraintViolation)
	ErrBidTooLow     = fmt.Errorf("%w: bid amount too low", ErrInvalidBid)
)

// business logic errors
var (
	ErrInvalidItem = errors.New("invalid item")
	ErrInvalidRole = errors.New("invalid role")
	ErrForbidden   = errors.New("forbidden")

	ErrWrongRole = fmt.Errorf("%w: wrong role for operation", ErrForbidden)
	ErrNotOwner  = fmt.Errorf("%w: item belongs to another auctioneer", ErrForbidden)
)
