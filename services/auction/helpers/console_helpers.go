package helpers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/console"
	"auction-house/internal/models"
	"auction-house/utils"

	"github.com/go-playground/validator/v10"
)

// ErrBadArguments marks command lines that could not be parsed or validated
var ErrBadArguments = errors.New("bad arguments")

var validate = validator.New(validator.WithRequiredStructEnabled())

// The parsers below receive arguments whose count was already checked by the
// command's cobra.PositionalArgs validator.

// ParseCredentials parses "<role> <login> <password>"
func ParseCredentials(args []string) (CredentialsRequest, error) {
	req := CredentialsRequest{Role: strings.ToLower(args[0]), Login: args[1], Password: args[2]}
	return req, check(req)
}

// ParseRole converts a validated credentials role into a models.Role
func ParseRole(req CredentialsRequest) (models.Role, error) {
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return role, nil
}

// ParsePlaceBid parses "<item> <amount>"
func ParsePlaceBid(args []string) (PlaceBidRequest, error) {
	itemID, err := parseID(args[0])
	if err != nil {
		return PlaceBidRequest{}, err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return PlaceBidRequest{}, err
	}
	req := PlaceBidRequest{ItemID: itemID, Amount: amount}
	return req, check(req)
}

// ParseNewItem parses "<start price> <name...>"
func ParseNewItem(args []string) (ItemRequest, error) {
	price, err := parseAmount(args[0])
	if err != nil {
		return ItemRequest{}, err
	}
	req := ItemRequest{Name: strings.Join(args[1:], " "), StartPrice: price}
	return req, check(req)
}

// ParseEditItem parses "<item> <start price> <name...>"
func ParseEditItem(args []string) (ItemRequest, error) {
	itemID, err := parseID(args[0])
	if err != nil {
		return ItemRequest{}, err
	}
	req, err := ParseNewItem(args[1:])
	if err != nil {
		return ItemRequest{}, err
	}
	req.ItemID = itemID
	return req, check(req)
}

// ParseItemID parses "<item>"
func ParseItemID(args []string) (ItemIDRequest, error) {
	itemID, err := parseID(args[0])
	if err != nil {
		return ItemIDRequest{}, err
	}
	req := ItemIDRequest{ItemID: itemID}
	return req, check(req)
}

// ParseLogin parses "<login>"
func ParseLogin(args []string) (LoginRequest, error) {
	req := LoginRequest{Login: args[0]}
	return req, check(req)
}

// HandleBindError sends a standardized error for unparsable command lines
func HandleBindError(c *console.Context, handlerName, usage string, err error) {
	utils.RespondError(c, err, "invalid arguments, usage: "+usage)
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToMessage maps domain/service errors to a user-facing message
func MapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, ErrBadArguments):
		return "invalid arguments"
	case errors.Is(err, auctionerrors.ErrItemNotFound):
		return "item not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, auctionerrors.ErrNotFound):
		return "not found"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "bid must be higher than the current price"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return "wrong login or password"
	case errors.Is(err, auctionerrors.ErrItemHasBids):
		return "item already has bids and cannot be deleted"
	case errors.Is(err, auctionerrors.ErrConstraintViolation):
		return "operation refers to missing data"
	case errors.Is(err, auctionerrors.ErrInvalidItem):
		return "item name and a non-negative start price are required"
	case errors.Is(err, auctionerrors.ErrInvalidRole):
		return "role must be bidder or auctioneer"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		return "item belongs to another auctioneer"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return "not allowed for your role"
	default:
		return "internal error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// FormatPrice renders an amount with two decimals
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: item id %q: %v", ErrBadArguments, s, err)
	}
	return id, nil
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrBadArguments, s, err)
	}
	return v, nil
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return nil
}
