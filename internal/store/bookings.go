package store

import (
	"context"
	"database/sql"
	"errors"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"
)

// CreateOrder inserts a new parts order.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, address,
			items, subtotal, discount, tax, total, coupon_code, payment_method, status, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.Address,
		o.Items, o.Subtotal, o.Discount, o.Tax, o.Total, o.CouponCode,
		o.PaymentMethod, o.Status, o.History,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return wrapErr(err)
}

// GetOrderByID retrieves an order by its public id.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order not found: %s", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &o, nil
}

// UpdateOrder persists a mutated order (status, history, timestamps).
func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, history = $2, delivered_at = $3, updated_at = NOW() WHERE id = $4",
		o.Status, o.History, o.DeliveredAt, o.ID)
	return wrapErr(err)
}

// CreateTestDrive inserts a new test drive booking.
func (s *Store) CreateTestDrive(ctx context.Context, td *models.TestDrive) error {
	query := `
		INSERT INTO test_drives (id, customer_name, customer_email, customer_phone,
			car_id, car_name, preferred_date, preferred_time, status, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		td.ID, td.CustomerName, td.CustomerEmail, td.CustomerPhone,
		td.CarID, td.CarName, td.PreferredDate, td.PreferredTime, td.Status, td.History,
	).Scan(&td.CreatedAt, &td.UpdatedAt)
	return wrapErr(err)
}

// GetTestDriveByID retrieves a test drive by its public id.
func (s *Store) GetTestDriveByID(ctx context.Context, id string) (*models.TestDrive, error) {
	var td models.TestDrive
	err := s.db.GetContext(ctx, &td, "SELECT * FROM test_drives WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("test drive not found: %s", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &td, nil
}

// UpdateTestDrive persists a mutated test drive.
func (s *Store) UpdateTestDrive(ctx context.Context, td *models.TestDrive) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE test_drives SET status = $1, history = $2, completed_at = $3, updated_at = NOW() WHERE id = $4",
		td.Status, td.History, td.CompletedAt, td.ID)
	return wrapErr(err)
}

// CreateServiceBooking inserts a new service booking.
func (s *Store) CreateServiceBooking(ctx context.Context, sb *models.ServiceBooking) error {
	query := `
		INSERT INTO service_bookings (id, customer_name, customer_email, customer_phone,
			vehicle_model, registration_no, service_type_id, service_type_name,
			center_id, center_name, scheduled_date, slot, status, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		sb.ID, sb.CustomerName, sb.CustomerEmail, sb.CustomerPhone,
		sb.VehicleModel, sb.RegistrationNo, sb.ServiceTypeID, sb.ServiceTypeName,
		sb.CenterID, sb.CenterName, sb.ScheduledDate, sb.Slot, sb.Status, sb.History,
	).Scan(&sb.CreatedAt, &sb.UpdatedAt)
	return wrapErr(err)
}

// GetServiceBookingByID retrieves a service booking by its public id.
func (s *Store) GetServiceBookingByID(ctx context.Context, id string) (*models.ServiceBooking, error) {
	var sb models.ServiceBooking
	err := s.db.GetContext(ctx, &sb, "SELECT * FROM service_bookings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("service booking not found: %s", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &sb, nil
}

// UpdateServiceBooking persists a mutated service booking.
func (s *Store) UpdateServiceBooking(ctx context.Context, sb *models.ServiceBooking) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE service_bookings SET status = $1, history = $2, completed_at = $3, updated_at = NOW() WHERE id = $4",
		sb.Status, sb.History, sb.CompletedAt, sb.ID)
	return wrapErr(err)
}

// CreateReservation inserts a new car reservation.
func (s *Store) CreateReservation(ctx context.Context, r *models.CarReservation) error {
	query := `
		INSERT INTO car_reservations (id, customer_name, customer_email, customer_phone,
			car_id, car_name, variant_id, variant_name, color_id, color_name,
			subtotal, tax, total, payment_status, payment_intent_id, status, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		r.ID, r.CustomerName, r.CustomerEmail, r.CustomerPhone,
		r.CarID, r.CarName, r.VariantID, r.VariantName, r.ColorID, r.ColorName,
		r.Subtotal, r.Tax, r.Total, r.PaymentStatus, r.PaymentIntentID, r.Status, r.History,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	return wrapErr(err)
}

// GetReservationByID retrieves a car reservation by its public id.
func (s *Store) GetReservationByID(ctx context.Context, id string) (*models.CarReservation, error) {
	var r models.CarReservation
	err := s.db.GetContext(ctx, &r, "SELECT * FROM car_reservations WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("reservation not found: %s", id)
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return &r, nil
}

// UpdateReservation persists a mutated reservation.
func (s *Store) UpdateReservation(ctx context.Context, r *models.CarReservation) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE car_reservations SET status = $1, payment_status = $2, payment_intent_id = $3,
			history = $4, delivered_at = $5, updated_at = NOW() WHERE id = $6`,
		r.Status, r.PaymentStatus, r.PaymentIntentID, r.History, r.DeliveredAt, r.ID)
	return wrapErr(err)
}

// phoneSuffixClause matches the last 10 digits of a stored phone number
// against a normalized query suffix, tolerating +91/91/bare prefixes.
const phoneSuffixClause = "RIGHT(regexp_replace(customer_phone, '[^0-9]', '', 'g'), 10) = $1"

// FindOrdersByPhone retrieves orders whose phone matches the 10-digit suffix.
func (s *Store) FindOrdersByPhone(ctx context.Context, suffix string) ([]models.Order, error) {
	var out []models.Order
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM orders WHERE "+phoneSuffixClause+" ORDER BY created_at DESC", suffix)
	return out, wrapErr(err)
}

// FindTestDrivesByPhone retrieves test drives matching the phone suffix.
func (s *Store) FindTestDrivesByPhone(ctx context.Context, suffix string) ([]models.TestDrive, error) {
	var out []models.TestDrive
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM test_drives WHERE "+phoneSuffixClause+" ORDER BY created_at DESC", suffix)
	return out, wrapErr(err)
}

// FindServiceBookingsByPhone retrieves service bookings matching the phone suffix.
func (s *Store) FindServiceBookingsByPhone(ctx context.Context, suffix string) ([]models.ServiceBooking, error) {
	var out []models.ServiceBooking
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM service_bookings WHERE "+phoneSuffixClause+" ORDER BY created_at DESC", suffix)
	return out, wrapErr(err)
}

// FindReservationsByPhone retrieves reservations matching the phone suffix.
func (s *Store) FindReservationsByPhone(ctx context.Context, suffix string) ([]models.CarReservation, error) {
	var out []models.CarReservation
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM car_reservations WHERE "+phoneSuffixClause+" ORDER BY created_at DESC", suffix)
	return out, wrapErr(err)
}

// FindOrdersByEmail retrieves orders for an email, case-insensitively.
func (s *Store) FindOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	var out []models.Order
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM orders WHERE LOWER(customer_email) = LOWER($1) ORDER BY created_at DESC", email)
	return out, wrapErr(err)
}

// FindTestDrivesByEmail retrieves test drives for an email.
func (s *Store) FindTestDrivesByEmail(ctx context.Context, email string) ([]models.TestDrive, error) {
	var out []models.TestDrive
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM test_drives WHERE LOWER(customer_email) = LOWER($1) ORDER BY created_at DESC", email)
	return out, wrapErr(err)
}

// FindServiceBookingsByEmail retrieves service bookings for an email.
func (s *Store) FindServiceBookingsByEmail(ctx context.Context, email string) ([]models.ServiceBooking, error) {
	var out []models.ServiceBooking
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM service_bookings WHERE LOWER(customer_email) = LOWER($1) ORDER BY created_at DESC", email)
	return out, wrapErr(err)
}

// FindReservationsByEmail retrieves reservations for an email.
func (s *Store) FindReservationsByEmail(ctx context.Context, email string) ([]models.CarReservation, error) {
	var out []models.CarReservation
	err := s.db.SelectContext(ctx, &out,
		"SELECT * FROM car_reservations WHERE LOWER(customer_email) = LOWER($1) ORDER BY created_at DESC", email)
	return out, wrapErr(err)
}
