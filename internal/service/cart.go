package service

import (
	"context"
	"errors"
	"fmt"

	"dealership-service/internal/apperr"
	"dealership-service/internal/cartstore"
	"dealership-service/internal/catalog"
	"dealership-service/internal/models"
	"dealership-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartService manages session-scoped carts. Carts live in an injected
// key-value store; every mutation reads the whole cart, applies the
// change and writes it back whole (last write wins per session).
type CartService struct {
	carts   cartstore.Store
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts cartstore.Store, cat *catalog.Catalog) *CartService {
	return &CartService{
		carts:   carts,
		catalog: cat,
		logger:  util.GetLogger(),
	}
}

// AddItemRequest describes an item being added to a cart. Part items are
// verified against the catalog; car and service items trust the
// caller-supplied name and price, the catalog data for those is assumed
// already fetched client-side. That trust boundary is deliberate.
type AddItemRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=part car service"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	VariantID   string `json:"variant_id"`
	VariantName string `json:"variant_name"`
	ColorID     string `json:"color_id"`
	ColorName   string `json:"color_name"`
}

// Get returns the cart with computed totals; a missing cart reads as empty.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(cart), nil
}

// AddItem adds an item to the session's cart. A line matching on
// (itemID, variantID) merges by incrementing quantity instead of
// appending a duplicate row.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req *AddItemRequest) (*models.CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindMergeTarget(req.ItemID, req.VariantID); i >= 0 {
		cart.Items[i].Quantity += req.Quantity
		return s.save(ctx, cart)
	}

	line := models.CartLineItem{
		ID:       uuid.New().String(),
		ItemID:   req.ItemID,
		Type:     req.Type,
		Quantity: req.Quantity,
	}

	switch req.Type {
	case models.ItemTypePart:
		part, err := s.catalog.Part(req.ItemID)
		if err != nil {
			return nil, err
		}
		line.Name = part.Name
		line.Price = part.Price
		line.PartNumber = part.PartNumber
	case models.ItemTypeCar, models.ItemTypeService:
		line.Name = req.Name
		line.Price = req.Price
		line.VariantID = req.VariantID
		line.VariantName = req.VariantName
		line.ColorID = req.ColorID
		line.ColorName = req.ColorName
	default:
		return nil, apperr.Validation("unknown item type: %s", req.Type)
	}

	cart.Items = append(cart.Items, line)
	util.CartItemsAddedTotal.WithLabelValues(req.Type).Inc()

	s.logger.Info("Item added to cart",
		zap.String("session_id", sessionID),
		zap.String("item_id", req.ItemID),
		zap.String("type", req.Type))

	return s.save(ctx, cart)
}

// UpdateQuantity replaces a line's quantity; zero or less removes the
// line so no zero-quantity row ever persists.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, lineItemID string, quantity int) (*models.CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItem(lineItemID)
	if i < 0 {
		return nil, apperr.NotFound("cart item not found: %s", lineItemID)
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}

	return s.save(ctx, cart)
}

// RemoveItem filters out the matching line; removing an absent line is a
// no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, lineItemID string) (*models.CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindItem(lineItemID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	}

	return s.save(ctx, cart)
}

// Clear deletes the cart entirely and returns an empty-totals payload.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*models.CartView, error) {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return nil, apperr.StorageUnavailable(err)
	}
	util.CartsClearedTotal.Inc()
	return view(&models.Cart{SessionID: sessionID}), nil
}

// ApplyCoupon validates the code against the current cart and, on
// success, attaches the coupon (replacing any prior one) and recomputes
// totals.
func (s *CartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*models.CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.ApplyCoupon")
	defer span.End()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.catalog.Coupon(code)
	if err != nil {
		util.CouponsRejectedTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	if err := ValidateCoupon(coupon, cart.Subtotal()); err != nil {
		switch apperr.CodeOf(err) {
		case apperr.CodeExpired:
			util.CouponsRejectedTotal.WithLabelValues("expired").Inc()
		case apperr.CodeMinimumNotMet:
			util.CouponsRejectedTotal.WithLabelValues("minimum_not_met").Inc()
		}
		return nil, err
	}

	cart.Coupon = coupon
	util.CouponsAppliedTotal.Inc()

	s.logger.Info("Coupon applied",
		zap.String("session_id", sessionID),
		zap.String("code", coupon.Code))

	return s.save(ctx, cart)
}

// RemoveCoupon detaches any applied coupon. Idempotent, always succeeds.
func (s *CartService) RemoveCoupon(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Coupon = nil
	return s.save(ctx, cart)
}

// load fetches the session's cart, creating an empty one on first use.
func (s *CartService) load(ctx context.Context, sessionID string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if errors.Is(err, cartstore.ErrNotFound) {
		now := nowFunc()
		return &models.Cart{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, apperr.StorageUnavailable(fmt.Errorf("load cart: %w", err))
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	cart.UpdatedAt = nowFunc()
	if err := s.carts.Set(ctx, cart); err != nil {
		return nil, apperr.StorageUnavailable(fmt.Errorf("save cart: %w", err))
	}
	return view(cart), nil
}

func view(cart *models.Cart) *models.CartView {
	items := cart.Items
	if items == nil {
		items = []models.CartLineItem{}
	}
	return &models.CartView{
		SessionID: cart.SessionID,
		Items:     items,
		Totals:    CalculateCartTotals(cart),
	}
}
