package helpers

// Command argument DTOs, validated after parsing
type CredentialsRequest struct {
	Role     string `validate:"required,oneof=bidder auctioneer"`
	Login    string `validate:"required,max=64"`
	Password string `validate:"required,max=128"`
}

type PlaceBidRequest struct {
	ItemID int64   `validate:"required,gt=0"`
	Amount float64 `validate:"required,gt=0"`
}

type ItemRequest struct {
	ItemID     int64   `validate:"gte=0"`
	Name       string  `validate:"required,max=200"`
	StartPrice float64 `validate:"gte=0"`
}

type ItemIDRequest struct {
	ItemID int64 `validate:"required,gt=0"`
}

type LoginRequest struct {
	Login string `validate:"required"`
}
