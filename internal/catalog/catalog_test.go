package catalog

import (
	"testing"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Catalog {
	return New(
		[]models.Car{
			{ID: "car-1", Name: "Aurora GT", Brand: "Aurora", Category: "sedan", Price: 1199000},
			{ID: "car-2", Name: "Aurora X", Brand: "Aurora", Category: "suv", Price: 1850000},
			{ID: "car-3", Name: "Comet City", Brand: "Comet", Category: "hatchback", Price: 650000},
		},
		[]models.Part{
			{ID: "part-1", Name: "Brake Pads", Category: "brakes", Price: 2500, CompatibleCars: []string{"car-1", "car-2"}},
			{ID: "part-2", Name: "Oil Filter", Category: "engine", Price: 600, CompatibleCars: []string{"car-3"}},
		},
		[]models.ServiceType{
			{ID: "svc-1", Name: "Periodic Maintenance", Price: 4500},
		},
		[]models.ServiceCenter{
			{ID: "center-1", Name: "Downtown Service Hub", City: "Pune"},
		},
		[]models.Coupon{
			{Code: "SAVE10", DiscountType: models.DiscountTypePercentage, Value: 10, ValidTill: time.Now().AddDate(0, 1, 0)},
		},
		[]models.VinRecord{
			{VIN: "MA1XX11Y1Z1234567", CarID: "car-1", Model: "Aurora GT"},
		},
	)
}

func TestCarLookup(t *testing.T) {
	c := fixture()

	car, err := c.Car("car-1")
	require.NoError(t, err)
	assert.Equal(t, "Aurora GT", car.Name)

	_, err = c.Car("car-99")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestCarsFilter(t *testing.T) {
	c := fixture()

	all := c.Cars(CarFilter{})
	require.Len(t, all, 3)
	// Load order is preserved.
	assert.Equal(t, "car-1", all[0].ID)
	assert.Equal(t, "car-3", all[2].ID)

	byBrand := c.Cars(CarFilter{Brand: "aurora"})
	assert.Len(t, byBrand, 2)

	byCategory := c.Cars(CarFilter{Category: "SUV"})
	require.Len(t, byCategory, 1)
	assert.Equal(t, "car-2", byCategory[0].ID)

	byPrice := c.Cars(CarFilter{MaxPrice: 1200000})
	assert.Len(t, byPrice, 2)

	combined := c.Cars(CarFilter{Brand: "Aurora", MaxPrice: 1200000})
	require.Len(t, combined, 1)
	assert.Equal(t, "car-1", combined[0].ID)
}

func TestPartsFilter(t *testing.T) {
	c := fixture()

	assert.Len(t, c.Parts(PartFilter{}), 2)

	byCategory := c.Parts(PartFilter{Category: "brakes"})
	require.Len(t, byCategory, 1)
	assert.Equal(t, "part-1", byCategory[0].ID)

	byCar := c.Parts(PartFilter{CarID: "car-3"})
	require.Len(t, byCar, 1)
	assert.Equal(t, "part-2", byCar[0].ID)

	assert.Empty(t, c.Parts(PartFilter{Category: "brakes", CarID: "car-3"}))
}

func TestServiceLookups(t *testing.T) {
	c := fixture()

	st, err := c.ServiceType("svc-1")
	require.NoError(t, err)
	assert.Equal(t, "Periodic Maintenance", st.Name)

	_, err = c.ServiceType("svc-99")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	sc, err := c.ServiceCenter("center-1")
	require.NoError(t, err)
	assert.Equal(t, "Pune", sc.City)

	assert.Len(t, c.ServiceTypes(), 1)
	assert.Len(t, c.ServiceCenters(), 1)
}

func TestCouponCaseInsensitive(t *testing.T) {
	c := fixture()

	for _, code := range []string{"SAVE10", "save10", " Save10 "} {
		coupon, err := c.Coupon(code)
		require.NoError(t, err, "code %q", code)
		assert.Equal(t, "SAVE10", coupon.Code)
	}

	_, err := c.Coupon("NOPE")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestResolveVIN(t *testing.T) {
	c := fixture()

	rec, err := c.ResolveVIN("ma1xx11y1z1234567")
	require.NoError(t, err)
	assert.Equal(t, "car-1", rec.CarID)

	rec, err = c.ResolveVIN("  MA1XX11Y1Z1234567  ")
	require.NoError(t, err)
	assert.Equal(t, "Aurora GT", rec.Model)

	_, err = c.ResolveVIN("ZZZXX11Y1Z7654321")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
