package service

import (
	"context"
	"testing"
	"time"

	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"9876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"+91 98765 43210", "9876543210"},
		{"+91-98765-43210", "9876543210"},
		{"98765", "98765"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, phoneSuffix(tt.in), "input %q", tt.in)
	}
}

func TestFindByPhoneRequiresDigits(t *testing.T) {
	ts := NewTrackingService(nil)

	_, err := ts.FindByPhone(context.Background(), "+--  ")
	assert.Error(t, err)

	_, err = ts.FindByEmail(context.Background(), "   ")
	assert.Error(t, err)
}

func TestFanOutMergesSortedDescending(t *testing.T) {
	ts := NewTrackingService(nil)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	records, err := ts.fanOut(context.Background(),
		func(context.Context) ([]models.Order, error) {
			return []models.Order{
				{ID: "ORD-AAAA1111", Status: "placed", Total: 3100, CreatedAt: base.Add(2 * time.Hour)},
			}, nil
		},
		func(context.Context) ([]models.TestDrive, error) {
			return []models.TestDrive{
				{ID: "TD-BBBB2222", CarName: "Aurora GT", Status: "confirmed", CreatedAt: base.Add(4 * time.Hour)},
			}, nil
		},
		func(context.Context) ([]models.ServiceBooking, error) {
			return []models.ServiceBooking{
				{ID: "SVC-CCCC3333", Status: "scheduled", CreatedAt: base},
			}, nil
		},
		func(context.Context) ([]models.CarReservation, error) {
			return []models.CarReservation{
				{ID: "RES-DDDD4444", CarName: "Aurora GT", Status: "pending", CreatedAt: base.Add(time.Hour)},
			}, nil
		},
	)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "TD-BBBB2222", records[0].ID)
	assert.Equal(t, "ORD-AAAA1111", records[1].ID)
	assert.Equal(t, "RES-DDDD4444", records[2].ID)
	assert.Equal(t, "SVC-CCCC3333", records[3].ID)
}

func TestFanOutTieBreaksOnID(t *testing.T) {
	ts := NewTrackingService(nil)
	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	records, err := ts.fanOut(context.Background(),
		func(context.Context) ([]models.Order, error) {
			return []models.Order{
				{ID: "ORD-ZZZZ0000", CreatedAt: when},
				{ID: "ORD-AAAA0000", CreatedAt: when},
			}, nil
		},
		func(context.Context) ([]models.TestDrive, error) { return nil, nil },
		func(context.Context) ([]models.ServiceBooking, error) { return nil, nil },
		func(context.Context) ([]models.CarReservation, error) { return nil, nil },
	)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ORD-AAAA0000", records[0].ID)
	assert.Equal(t, "ORD-ZZZZ0000", records[1].ID)
}

func TestFanOutPropagatesFirstError(t *testing.T) {
	ts := NewTrackingService(nil)
	boom := assert.AnError

	_, err := ts.fanOut(context.Background(),
		func(context.Context) ([]models.Order, error) { return nil, boom },
		func(context.Context) ([]models.TestDrive, error) { return nil, nil },
		func(context.Context) ([]models.ServiceBooking, error) { return nil, nil },
		func(context.Context) ([]models.CarReservation, error) { return nil, nil },
	)
	assert.ErrorIs(t, err, boom)
}

func TestProjections(t *testing.T) {
	orders := projectOrders([]models.Order{{
		ID:     "ORD-AAAA1111",
		Status: "placed",
		Total:  3100,
		Items: models.OrderItems{
			{ItemID: "part-1", Name: "Brake Pads", Quantity: 1},
		},
	}})
	require.Len(t, orders, 1)
	assert.Equal(t, "Parts Order", orders[0].TypeLabel)
	assert.Equal(t, "Brake Pads", orders[0].Title)
	assert.Equal(t, int64(3100), orders[0].Amount)

	multi := projectOrders([]models.Order{{
		ID: "ORD-BBBB2222",
		Items: models.OrderItems{
			{ItemID: "part-1", Name: "Brake Pads"},
			{ItemID: "part-2", Name: "Oil Filter"},
		},
	}})
	assert.Equal(t, "Order with multiple items", multi[0].Title)

	drives := projectTestDrives([]models.TestDrive{{
		ID: "TD-CCCC3333", CarName: "Aurora GT",
		PreferredDate: "2026-09-10", PreferredTime: "11:00",
	}})
	assert.Equal(t, "2026-09-10 11:00", drives[0].Schedule)

	services := projectServiceBookings([]models.ServiceBooking{{
		ID: "SVC-DDDD4444", ServiceTypeName: "Periodic Maintenance",
		CenterName: "Downtown Service Hub", ScheduledDate: "2026-09-12",
	}})
	assert.Equal(t, "Periodic Maintenance at Downtown Service Hub", services[0].Title)
	assert.Equal(t, "2026-09-12", services[0].Schedule)

	reservations := projectReservations([]models.CarReservation{{
		ID: "RES-EEEE5555", CarName: "Aurora GT", VariantName: "GT Base", Total: 1534720,
	}})
	assert.Equal(t, "Aurora GT GT Base", reservations[0].Title)
	assert.Equal(t, int64(1534720), reservations[0].Amount)
}
