package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"
	"dealership-service/internal/store"
	"dealership-service/internal/util"

	"go.uber.org/zap"
)

// ActivityRecord is the uniform projection of any booking variant for
// the customer activity feed.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	TypeLabel string    `json:"type_label"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount,omitempty"`
	Schedule  string    `json:"schedule,omitempty"`
}

// TrackingService assembles a customer's activity feed across all four
// booking collections.
type TrackingService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewTrackingService creates a new tracking service.
func NewTrackingService(st *store.Store) *TrackingService {
	return &TrackingService{store: st, logger: util.GetLogger()}
}

// FindByPhone looks up all bookings whose phone matches the last ten
// digits of the query, tolerating +91/91/bare prefixes. The four
// collections are queried concurrently and merged into one feed sorted
// descending by creation time.
func (ts *TrackingService) FindByPhone(ctx context.Context, phone string) ([]ActivityRecord, error) {
	suffix := phoneSuffix(phone)
	if suffix == "" {
		return nil, apperr.Validation("phone number is required")
	}

	util.TrackingLookupsTotal.WithLabelValues("phone").Inc()
	return ts.fanOut(ctx,
		func(ctx context.Context) ([]models.Order, error) {
			return ts.store.FindOrdersByPhone(ctx, suffix)
		},
		func(ctx context.Context) ([]models.TestDrive, error) {
			return ts.store.FindTestDrivesByPhone(ctx, suffix)
		},
		func(ctx context.Context) ([]models.ServiceBooking, error) {
			return ts.store.FindServiceBookingsByPhone(ctx, suffix)
		},
		func(ctx context.Context) ([]models.CarReservation, error) {
			return ts.store.FindReservationsByPhone(ctx, suffix)
		},
	)
}

// FindByEmail looks up all bookings for an email, case-insensitively.
func (ts *TrackingService) FindByEmail(ctx context.Context, email string) ([]ActivityRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	util.TrackingLookupsTotal.WithLabelValues("email").Inc()
	return ts.fanOut(ctx,
		func(ctx context.Context) ([]models.Order, error) {
			return ts.store.FindOrdersByEmail(ctx, email)
		},
		func(ctx context.Context) ([]models.TestDrive, error) {
			return ts.store.FindTestDrivesByEmail(ctx, email)
		},
		func(ctx context.Context) ([]models.ServiceBooking, error) {
			return ts.store.FindServiceBookingsByEmail(ctx, email)
		},
		func(ctx context.Context) ([]models.CarReservation, error) {
			return ts.store.FindReservationsByEmail(ctx, email)
		},
	)
}

// fanOut fires the four collection queries concurrently, joins them and
// merges the results. Relative ordering of the queries is irrelevant,
// only the final merge order matters.
func (ts *TrackingService) fanOut(
	ctx context.Context,
	orders func(context.Context) ([]models.Order, error),
	testDrives func(context.Context) ([]models.TestDrive, error),
	services func(context.Context) ([]models.ServiceBooking, error),
	reservations func(context.Context) ([]models.CarReservation, error),
) ([]ActivityRecord, error) {
	ctx, span := util.StartSpan(ctx, "TrackingService.fanOut")
	defer span.End()

	start := time.Now()
	defer func() {
		util.TrackingLookupLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		records  []ActivityRecord
		firstErr error
	)

	collect := func(recs []ActivityRecord, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		records = append(records, recs...)
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		out, err := orders(ctx)
		collect(projectOrders(out), err)
	}()
	go func() {
		defer wg.Done()
		out, err := testDrives(ctx)
		collect(projectTestDrives(out), err)
	}()
	go func() {
		defer wg.Done()
		out, err := services(ctx)
		collect(projectServiceBookings(out), err)
	}()
	go func() {
		defer wg.Done()
		out, err := reservations(ctx)
		collect(projectReservations(out), err)
	}()
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// Descending by date, ties broken by id so the order is deterministic.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

func projectOrders(orders []models.Order) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(orders))
	for _, o := range orders {
		out = append(out, ActivityRecord{
			ID:        o.ID,
			Type:      models.BookingTypeOrder,
			TypeLabel: "Parts Order",
			Status:    o.Status,
			Date:      o.CreatedAt,
			Title:     orderTitle(o),
			Amount:    o.Total,
		})
	}
	return out
}

func projectTestDrives(tds []models.TestDrive) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(tds))
	for _, td := range tds {
		out = append(out, ActivityRecord{
			ID:        td.ID,
			Type:      models.BookingTypeTestDrive,
			TypeLabel: "Test Drive",
			Status:    td.Status,
			Date:      td.CreatedAt,
			Title:     td.CarName,
			Schedule:  strings.TrimSpace(td.PreferredDate + " " + td.PreferredTime),
		})
	}
	return out
}

func projectServiceBookings(sbs []models.ServiceBooking) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(sbs))
	for _, sb := range sbs {
		out = append(out, ActivityRecord{
			ID:        sb.ID,
			Type:      models.BookingTypeService,
			TypeLabel: "Service Booking",
			Status:    sb.Status,
			Date:      sb.CreatedAt,
			Title:     sb.ServiceTypeName + " at " + sb.CenterName,
			Schedule:  strings.TrimSpace(sb.ScheduledDate + " " + sb.Slot),
		})
	}
	return out
}

func projectReservations(rs []models.CarReservation) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(rs))
	for _, r := range rs {
		out = append(out, ActivityRecord{
			ID:        r.ID,
			Type:      models.BookingTypeReservation,
			TypeLabel: "Car Reservation",
			Status:    r.Status,
			Date:      r.CreatedAt,
			Title:     r.CarName + " " + r.VariantName,
			Amount:    r.Total,
		})
	}
	return out
}

func orderTitle(o models.Order) string {
	if len(o.Items) == 1 {
		return o.Items[0].Name
	}
	return "Order with multiple items"
}

// phoneSuffix strips non-digit characters and keeps the last ten digits.
func phoneSuffix(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
