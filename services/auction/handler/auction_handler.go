package handler

import (
	"context"
	"fmt"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/console"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"

	"github.com/spf13/cobra"
)

type AuctionServiceInterface interface {
	RegisterUser(ctx context.Context, login, password string, role model.Role) (int64, error)
	Authenticate(ctx context.Context, login, password string, role model.Role) (model.Session, error)
	ResolveUserID(ctx context.Context, login string) (int64, error)
	AddItem(ctx context.Context, ownerID int64, name string, startPrice float64) (int64, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]model.Item, error)
	ListLots(ctx context.Context) ([]model.ItemDetails, error)
	GetItemDetails(ctx context.Context, itemID int64) (model.ItemDetails, error)
	PlaceBid(ctx context.Context, bidderID, itemID int64, amount float64) (model.Bid, error)
	UpdateItem(ctx context.Context, actorID, itemID int64, name string, startPrice float64) error
	DeleteItem(ctx context.Context, actorID, itemID int64) error
	GetBidsForItem(ctx context.Context, itemID int64) ([]model.Bid, error)
	GetItemsByBidder(ctx context.Context, bidderID int64) ([]model.Item, error)
}

// Command usages shown on bad input and by help
const (
	UsageRegister = "register <bidder|auctioneer> <login> <password>"
	UsageLogin    = "login <bidder|auctioneer> <login> <password>"
	UsageLogout   = "logout"
	UsageWhoAmI   = "whoami"
	UsageWhoIs    = "whois <login>"
	UsageLots     = "lots"
	UsageShow     = "show <item>"
	UsageBid      = "bid <item> <amount>"
	UsageBids     = "bids <item>"
	UsageMyBids   = "mybids"
	UsageItems    = "items"
	UsageAdd      = "add <start price> <name...>"
	UsageEdit     = "edit <item> <start price> <name...>"
	UsageDelete   = "delete <item>"
	UsageQuit     = "quit"
)

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// Commands returns the console commands served by h
func (h *AuctionHandler) Commands() []console.Command {
	return []console.Command{
		// accounts
		{Use: UsageRegister, Short: "create an account", Args: cobra.ExactArgs(3), Run: h.RegisterHandler},
		{Use: UsageLogin, Short: "log in", Args: cobra.ExactArgs(3), Run: h.LoginHandler},
		{Use: UsageLogout, Short: "log out", Args: cobra.NoArgs, Run: h.LogoutHandler},
		{Use: UsageWhoAmI, Short: "show the logged in user", Args: cobra.NoArgs, Run: h.WhoAmIHandler},
		{Use: UsageWhoIs, Short: "look up a user id", Args: cobra.ExactArgs(1), Run: h.WhoIsHandler},

		// bidders
		{Use: UsageLots, Short: "list lots with current prices", Args: cobra.NoArgs, Run: h.ListLotsHandler},
		{Use: UsageShow, Short: "show one lot", Args: cobra.ExactArgs(1), Run: h.ShowItemHandler},
		{Use: UsageBid, Short: "bid on a lot", Args: cobra.ExactArgs(2), Run: h.PlaceBidHandler},
		{Use: UsageBids, Short: "list the bids on a lot", Args: cobra.ExactArgs(1), Run: h.GetBidsByItemHandler},
		{Use: UsageMyBids, Short: "list the lots you bid on", Args: cobra.NoArgs, Run: h.MyBidsHandler},

		// auctioneers
		{Use: UsageItems, Short: "list your lots", Args: cobra.NoArgs, Run: h.MyItemsHandler},
		{Use: UsageAdd, Short: "list a new lot", Args: cobra.MinimumNArgs(2), Run: h.AddItemHandler},
		{Use: UsageEdit, Short: "rename and reprice a lot", Args: cobra.MinimumNArgs(3), Run: h.EditItemHandler},
		{Use: UsageDelete, Short: "remove a lot without bids", Args: cobra.ExactArgs(1), Run: h.DeleteItemHandler},

		{Use: UsageQuit, Short: "leave the console", Args: cobra.NoArgs, Run: h.QuitHandler},
	}
}

// RegisterHandler handles "register"
func (h *AuctionHandler) RegisterHandler(c *console.Context) {
	req, err := helpers.ParseCredentials(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "RegisterHandler", UsageRegister, err)
		return
	}
	role, err := helpers.ParseRole(req)
	if err != nil {
		helpers.HandleBindError(c, "RegisterHandler", UsageRegister, err)
		return
	}

	id, err := h.service.RegisterUser(c.Context(), req.Login, req.Password, role)
	if err != nil {
		h.fail(c, "RegisterHandler", "failed to register user", err, map[string]any{"login": req.Login, "role": role})
		return
	}

	utils.Respond(c, fmt.Sprintf("%s %q registered", role, req.Login), fmt.Sprintf("user id: %d", id))
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{
		"user_id": id,
		"login":   req.Login,
		"role":    role,
	})
}

// LoginHandler handles "login" and stores the session on the console
func (h *AuctionHandler) LoginHandler(c *console.Context) {
	req, err := helpers.ParseCredentials(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "LoginHandler", UsageLogin, err)
		return
	}
	role, err := helpers.ParseRole(req)
	if err != nil {
		helpers.HandleBindError(c, "LoginHandler", UsageLogin, err)
		return
	}

	session, err := h.service.Authenticate(c.Context(), req.Login, req.Password, role)
	if err != nil {
		h.fail(c, "LoginHandler", "login failed", err, map[string]any{"login": req.Login, "role": role})
		return
	}

	c.SetSession(session)
	utils.Respond(c, fmt.Sprintf("logged in as %s %q", session.Role, session.Login))
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{
		"user_id":    session.UserID,
		"session_id": session.ID,
		"role":       session.Role,
	})
}

// LogoutHandler handles "logout"
func (h *AuctionHandler) LogoutHandler(c *console.Context) {
	session, ok := c.Session()
	if !ok {
		utils.Respond(c, "not logged in")
		return
	}

	c.ClearSession()
	utils.Respond(c, fmt.Sprintf("goodbye, %s", session.Login))
	helpers.LogSuccess("LogoutHandler", "user logged out", map[string]any{"session_id": session.ID})
}

// WhoAmIHandler handles "whoami"
func (h *AuctionHandler) WhoAmIHandler(c *console.Context) {
	session, ok := c.Session()
	if !ok {
		utils.Respond(c, "not logged in")
		return
	}
	utils.Respond(c, fmt.Sprintf("%s %q (user id %d)", session.Role, session.Login, session.UserID))
}

// WhoIsHandler handles "whois <login>"
func (h *AuctionHandler) WhoIsHandler(c *console.Context) {
	req, err := helpers.ParseLogin(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "WhoIsHandler", UsageWhoIs, err)
		return
	}

	id, err := h.service.ResolveUserID(c.Context(), req.Login)
	if err != nil {
		h.fail(c, "WhoIsHandler", "failed to resolve user", err, map[string]any{"login": req.Login})
		return
	}
	utils.Respond(c, fmt.Sprintf("%q has user id %d", req.Login, id))
}

// ListLotsHandler handles "lots", the bidder's view of everything on sale
func (h *AuctionHandler) ListLotsHandler(c *console.Context) {
	lots, err := h.service.ListLots(c.Context())
	if err != nil {
		h.fail(c, "ListLotsHandler", "failed to list lots", err, nil)
		return
	}

	rows := make([]string, 0, len(lots))
	for _, lot := range lots {
		rows = append(rows, formatDetails(lot))
	}
	utils.Respond(c, fmt.Sprintf("%d lots available", len(lots)), rows...)
}

// ShowItemHandler handles "show <item>"
func (h *AuctionHandler) ShowItemHandler(c *console.Context) {
	req, err := helpers.ParseItemID(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "ShowItemHandler", UsageShow, err)
		return
	}

	details, err := h.service.GetItemDetails(c.Context(), req.ItemID)
	if err != nil {
		h.fail(c, "ShowItemHandler", "failed to get item", err, map[string]any{"item_id": req.ItemID})
		return
	}
	utils.Respond(c, "item details", formatDetails(details))
}

// PlaceBidHandler handles "bid <item> <amount>"
func (h *AuctionHandler) PlaceBidHandler(c *console.Context) {
	session, ok := requireRole(c, "PlaceBidHandler", model.RoleBidder)
	if !ok {
		return
	}
	req, err := helpers.ParsePlaceBid(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", UsageBid, err)
		return
	}

	bid, err := h.service.PlaceBid(c.Context(), session.UserID, req.ItemID, req.Amount)
	if err != nil {
		h.fail(c, "PlaceBidHandler", "failed to record bid", err, map[string]any{
			"item_id": req.ItemID,
			"user_id": session.UserID,
			"amount":  req.Amount,
		})
		return
	}

	target := fmt.Sprintf("item #%d", bid.ItemID)
	if details, err := h.service.GetItemDetails(c.Context(), bid.ItemID); err == nil {
		target = fmt.Sprintf("%q", details.Name)
	}

	utils.Respond(c, fmt.Sprintf("you placed a bid of %s on %s", helpers.FormatPrice(bid.Amount), target),
		fmt.Sprintf("bid id: %d", bid.ID))
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":  bid.ID,
		"item_id": bid.ItemID,
		"user_id": bid.BidderID,
		"amount":  bid.Amount,
	})
}

// GetBidsByItemHandler handles "bids <item>"
func (h *AuctionHandler) GetBidsByItemHandler(c *console.Context) {
	req, err := helpers.ParseItemID(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "GetBidsByItemHandler", UsageBids, err)
		return
	}

	bids, err := h.service.GetBidsForItem(c.Context(), req.ItemID)
	if err != nil {
		h.fail(c, "GetBidsByItemHandler", "failed to get bids", err, map[string]any{"item_id": req.ItemID})
		return
	}

	rows := make([]string, 0, len(bids))
	for _, b := range bids {
		rows = append(rows, fmt.Sprintf("#%d by user %d: %s", b.ID, b.BidderID, helpers.FormatPrice(b.Amount)))
	}
	utils.Respond(c, fmt.Sprintf("%d bids on item #%d", len(bids), req.ItemID), rows...)
}

// MyBidsHandler handles "mybids", the items the logged in bidder has bid on
func (h *AuctionHandler) MyBidsHandler(c *console.Context) {
	session, ok := requireRole(c, "MyBidsHandler", model.RoleBidder)
	if !ok {
		return
	}

	items, err := h.service.GetItemsByBidder(c.Context(), session.UserID)
	if err != nil {
		h.fail(c, "MyBidsHandler", "failed to get items", err, map[string]any{"user_id": session.UserID})
		return
	}
	utils.Respond(c, fmt.Sprintf("you have bid on %d items", len(items)), formatItems(items)...)
}

// MyItemsHandler handles "items", the auctioneer's own lots
func (h *AuctionHandler) MyItemsHandler(c *console.Context) {
	session, ok := requireRole(c, "MyItemsHandler", model.RoleAuctioneer)
	if !ok {
		return
	}

	items, err := h.service.ListItemsByOwner(c.Context(), session.UserID)
	if err != nil {
		h.fail(c, "MyItemsHandler", "failed to list items", err, map[string]any{"user_id": session.UserID})
		return
	}
	utils.Respond(c, fmt.Sprintf("%d lots listed", len(items)), formatItems(items)...)
}

// AddItemHandler handles "add <start price> <name...>"
func (h *AuctionHandler) AddItemHandler(c *console.Context) {
	session, ok := requireRole(c, "AddItemHandler", model.RoleAuctioneer)
	if !ok {
		return
	}
	req, err := helpers.ParseNewItem(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "AddItemHandler", UsageAdd, err)
		return
	}

	id, err := h.service.AddItem(c.Context(), session.UserID, req.Name, req.StartPrice)
	if err != nil {
		h.fail(c, "AddItemHandler", "failed to add item", err, map[string]any{"user_id": session.UserID, "name": req.Name})
		return
	}

	utils.Respond(c, fmt.Sprintf("lot %q listed at %s", req.Name, helpers.FormatPrice(req.StartPrice)), fmt.Sprintf("item id: %d", id))
	helpers.LogSuccess("AddItemHandler", "item added", map[string]any{
		"item_id":     id,
		"user_id":     session.UserID,
		"start_price": req.StartPrice,
	})
}

// EditItemHandler handles "edit <item> <start price> <name...>"
func (h *AuctionHandler) EditItemHandler(c *console.Context) {
	session, ok := requireRole(c, "EditItemHandler", model.RoleAuctioneer)
	if !ok {
		return
	}
	req, err := helpers.ParseEditItem(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "EditItemHandler", UsageEdit, err)
		return
	}

	if err := h.service.UpdateItem(c.Context(), session.UserID, req.ItemID, req.Name, req.StartPrice); err != nil {
		h.fail(c, "EditItemHandler", "failed to update item", err, map[string]any{"item_id": req.ItemID, "user_id": session.UserID})
		return
	}

	utils.Respond(c, fmt.Sprintf("item #%d updated", req.ItemID))
	helpers.LogSuccess("EditItemHandler", "item updated", map[string]any{"item_id": req.ItemID, "user_id": session.UserID})
}

// DeleteItemHandler handles "delete <item>"
func (h *AuctionHandler) DeleteItemHandler(c *console.Context) {
	session, ok := requireRole(c, "DeleteItemHandler", model.RoleAuctioneer)
	if !ok {
		return
	}
	req, err := helpers.ParseItemID(c.Args)
	if err != nil {
		helpers.HandleBindError(c, "DeleteItemHandler", UsageDelete, err)
		return
	}

	if err := h.service.DeleteItem(c.Context(), session.UserID, req.ItemID); err != nil {
		h.fail(c, "DeleteItemHandler", "failed to delete item", err, map[string]any{"item_id": req.ItemID, "user_id": session.UserID})
		return
	}

	utils.Respond(c, fmt.Sprintf("item #%d deleted", req.ItemID))
	helpers.LogSuccess("DeleteItemHandler", "item deleted", map[string]any{"item_id": req.ItemID, "user_id": session.UserID})
}

// QuitHandler handles "quit"
func (h *AuctionHandler) QuitHandler(c *console.Context) {
	c.Quit()
	utils.Respond(c, "bye")
}

// fail maps a service error to a message and logs it
func (h *AuctionHandler) fail(c *console.Context, handlerName, logMessage string, err error, fields map[string]any) {
	message := helpers.MapErrorToMessage(err)
	utils.RespondError(c, err, message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if message == "internal error" {
		utils.Error(handlerName+": "+logMessage, fields)
		return
	}
	utils.Warn(handlerName+": "+logMessage, fields)
}

// requireRole returns the session when the console is logged in with role
func requireRole(c *console.Context, handlerName string, role model.Role) (model.Session, bool) {
	session, ok := c.Session()
	if ok && session.Role == role {
		return session, true
	}

	err := fmt.Errorf("%w: login as %s required", auctionerrors.ErrWrongRole, role)
	utils.RespondError(c, err, fmt.Sprintf("please log in as %s first", role))
	utils.Warn(handlerName+": rejected command", map[string]any{"required_role": role, "logged_in": ok})
	return model.Session{}, false
}

func formatDetails(d model.ItemDetails) string {
	return fmt.Sprintf("#%d %s - start price %s, current price %s",
		d.ItemID, d.Name, helpers.FormatPrice(d.StartPrice), helpers.FormatPrice(d.CurrentPrice))
}

func formatItems(items []model.Item) []string {
	rows := make([]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, fmt.Sprintf("#%d %s - start price %s", item.ID, item.Name, helpers.FormatPrice(item.StartPrice)))
	}
	return rows
}
