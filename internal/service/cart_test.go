package service

import (
	"context"
	"testing"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/cartstore"
	"dealership-service/internal/catalog"
	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]models.Car{*testCar()},
		[]models.Part{
			{ID: "part-1", PartNumber: "BP-100", Name: "Brake Pads", Price: 2500, MRP: 3000},
			{ID: "part-2", PartNumber: "OF-200", Name: "Oil Filter", Price: 600, MRP: 750},
		},
		[]models.ServiceType{
			{ID: "svc-1", Name: "Periodic Maintenance", Price: 4500},
		},
		[]models.ServiceCenter{
			{ID: "center-1", Name: "Downtown Service Hub", City: "Pune"},
		},
		[]models.Coupon{
			{
				Code:         "SAVE10",
				DiscountType: models.DiscountTypePercentage,
				Value:        10,
				MinOrder:     1000,
				MaxDiscount:  500,
				ValidTill:    time.Now().AddDate(0, 1, 0),
			},
			{
				Code:         "EXPIRED",
				DiscountType: models.DiscountTypeFixed,
				Value:        100,
				ValidTill:    time.Now().AddDate(0, 0, -2),
			},
		},
		[]models.VinRecord{
			{VIN: "MA1XX11Y1Z1234567", CarID: "car-1", Model: "Aurora GT"},
		},
	)
}

func newTestCartService() *CartService {
	return NewCartService(cartstore.NewMemoryStore(), testCatalog())
}

func TestAddItemResolvesPartFromCatalog(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	view, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	line := view.Items[0]
	assert.Equal(t, "Brake Pads", line.Name)
	assert.Equal(t, int64(2500), line.Price)
	assert.Equal(t, "BP-100", line.PartNumber)
	assert.Equal(t, 2, line.Quantity)
	assert.NotEmpty(t, line.ID)
}

func TestAddItemUnknownPart(t *testing.T) {
	s := newTestCartService()

	_, err := s.AddItem(context.Background(), "sess", &AddItemRequest{
		ItemID: "part-missing", Type: models.ItemTypePart, Quantity: 1,
	})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestAddItemTrustsCallerForCarItems(t *testing.T) {
	s := newTestCartService()

	view, err := s.AddItem(context.Background(), "sess", &AddItemRequest{
		ItemID: "car-1", Type: models.ItemTypeCar, Quantity: 1,
		Name: "Aurora GT", Price: 1534720, VariantID: "v-base", VariantName: "Base",
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1534720), view.Items[0].Price)
	assert.Equal(t, "v-base", view.Items[0].VariantID)
}

func TestAddItemMergesOnItemAndVariant(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 2,
	})
	require.NoError(t, err)

	view, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 3,
	})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestAddItemDifferentVariantsDoNotMerge(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "car-1", Type: models.ItemTypeCar, Quantity: 1,
		Name: "Aurora GT", Price: 1000, VariantID: "v-base",
	})
	require.NoError(t, err)

	view, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "car-1", Type: models.ItemTypeCar, Quantity: 1,
		Name: "Aurora GT", Price: 1200, VariantID: "v-sport",
	})
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	view, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 2,
	})
	require.NoError(t, err)
	lineID := view.Items[0].ID

	view, err = s.UpdateQuantity(ctx, "sess", lineID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestUpdateQuantityEquivalentToRemove(t *testing.T) {
	ctx := context.Background()

	setup := func() (*CartService, string) {
		s := newTestCartService()
		view, err := s.AddItem(ctx, "sess", &AddItemRequest{
			ItemID: "part-1", Type: models.ItemTypePart, Quantity: 2,
		})
		require.NoError(t, err)
		return s, view.Items[0].ID
	}

	s1, id1 := setup()
	viaUpdate, err := s1.UpdateQuantity(ctx, "sess", id1, 0)
	require.NoError(t, err)

	s2, id2 := setup()
	viaRemove, err := s2.RemoveItem(ctx, "sess", id2)
	require.NoError(t, err)

	assert.Equal(t, viaUpdate.Items, viaRemove.Items)
	assert.Equal(t, viaUpdate.Totals, viaRemove.Totals)
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	s := newTestCartService()

	_, err := s.UpdateQuantity(context.Background(), "sess", "nope", 3)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 1,
	})
	require.NoError(t, err)

	view, err := s.RemoveItem(ctx, "sess", "not-a-line")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestClearCart(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 1,
	})
	require.NoError(t, err)

	view, err := s.Clear(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, models.CartTotals{}, view.Totals)

	// The cart is gone, a fresh read comes back empty.
	view, err = s.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestApplyCouponSuccess(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 1,
	})
	require.NoError(t, err)

	view, err := s.ApplyCoupon(ctx, "sess", "save10") // case-insensitive
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", view.Totals.CouponCode)
	assert.Equal(t, int64(250), view.Totals.Discount)
}

func TestApplyCouponReplacesPrior(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 1,
	})
	require.NoError(t, err)

	_, err = s.ApplyCoupon(ctx, "sess", "SAVE10")
	require.NoError(t, err)

	view, err := s.ApplyCoupon(ctx, "sess", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", view.Totals.CouponCode)
}

func TestApplyCouponNotFound(t *testing.T) {
	s := newTestCartService()

	_, err := s.ApplyCoupon(context.Background(), "sess", "NOPE")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestApplyCouponExpired(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 10,
	})
	require.NoError(t, err)

	_, err = s.ApplyCoupon(ctx, "sess", "EXPIRED")
	assert.True(t, apperr.Is(err, apperr.CodeExpired))
}

func TestApplyCouponMinimumNotMet(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-2", Type: models.ItemTypePart, Quantity: 1, // 600 < 1000
	})
	require.NoError(t, err)

	_, err = s.ApplyCoupon(ctx, "sess", "SAVE10")
	assert.True(t, apperr.Is(err, apperr.CodeMinimumNotMet))
}

func TestRemoveCouponIdempotent(t *testing.T) {
	s := newTestCartService()
	ctx := context.Background()

	_, err := s.AddItem(ctx, "sess", &AddItemRequest{
		ItemID: "part-1", Type: models.ItemTypePart, Quantity: 1,
	})
	require.NoError(t, err)
	_, err = s.ApplyCoupon(ctx, "sess", "SAVE10")
	require.NoError(t, err)

	view, err := s.RemoveCoupon(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, view.Totals.CouponCode)
	assert.Equal(t, int64(0), view.Totals.Discount)

	// Removing again still succeeds.
	view, err = s.RemoveCoupon(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, view.Totals.CouponCode)
}
