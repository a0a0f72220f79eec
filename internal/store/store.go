package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// wrapErr maps driver errors onto the application taxonomy. Unique-key
// violations become conflicts, everything else is a storage failure.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperr.PersistenceConflict("record already exists")
	}
	return apperr.StorageUnavailable(err)
}

// LoadCars loads all cars with their variants, colors and features.
func (s *Store) LoadCars(ctx context.Context) ([]models.Car, error) {
	var cars []models.Car
	if err := s.db.SelectContext(ctx, &cars,
		"SELECT id, brand, name, category, price FROM cars ORDER BY id"); err != nil {
		return nil, wrapErr(err)
	}

	byID := make(map[string]*models.Car, len(cars))
	for i := range cars {
		byID[cars[i].ID] = &cars[i]
	}

	var variants []models.CarVariant
	if err := s.db.SelectContext(ctx, &variants,
		"SELECT id, car_id, name, price FROM car_variants ORDER BY car_id, price"); err != nil {
		return nil, wrapErr(err)
	}
	for _, v := range variants {
		if car, ok := byID[v.CarID]; ok {
			car.Variants = append(car.Variants, v)
		}
	}

	var colors []models.CarColor
	if err := s.db.SelectContext(ctx, &colors,
		"SELECT id, car_id, name, price FROM car_colors ORDER BY car_id, id"); err != nil {
		return nil, wrapErr(err)
	}
	for _, c := range colors {
		if car, ok := byID[c.CarID]; ok {
			car.Colors = append(car.Colors, c)
		}
	}

	type carFeature struct {
		CarID   string `db:"car_id"`
		Feature string `db:"feature"`
	}
	var features []carFeature
	if err := s.db.SelectContext(ctx, &features,
		"SELECT car_id, feature FROM car_features ORDER BY car_id, id"); err != nil {
		return nil, wrapErr(err)
	}
	for _, f := range features {
		if car, ok := byID[f.CarID]; ok {
			car.Features = append(car.Features, f.Feature)
		}
	}

	return cars, nil
}

// LoadParts loads all parts with their compatibility lists.
func (s *Store) LoadParts(ctx context.Context) ([]models.Part, error) {
	var parts []models.Part
	if err := s.db.SelectContext(ctx, &parts,
		"SELECT id, category, part_number, name, price, mrp, stock FROM parts ORDER BY id"); err != nil {
		return nil, wrapErr(err)
	}

	byID := make(map[string]*models.Part, len(parts))
	for i := range parts {
		byID[parts[i].ID] = &parts[i]
	}

	type compat struct {
		PartID string `db:"part_id"`
		CarID  string `db:"car_id"`
	}
	var rows []compat
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT part_id, car_id FROM part_compatibility ORDER BY part_id"); err != nil {
		return nil, wrapErr(err)
	}
	for _, r := range rows {
		if part, ok := byID[r.PartID]; ok {
			part.CompatibleCars = append(part.CompatibleCars, r.CarID)
		}
	}

	return parts, nil
}

// LoadServiceTypes loads all service types.
func (s *Store) LoadServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	var out []models.ServiceType
	err := s.db.SelectContext(ctx, &out,
		"SELECT id, name, description, price, duration_min FROM service_types ORDER BY id")
	return out, wrapErr(err)
}

// LoadServiceCenters loads all service centers.
func (s *Store) LoadServiceCenters(ctx context.Context) ([]models.ServiceCenter, error) {
	var out []models.ServiceCenter
	err := s.db.SelectContext(ctx, &out,
		"SELECT id, name, city, address, phone FROM service_centers ORDER BY id")
	return out, wrapErr(err)
}

// LoadCoupons loads all coupons with their applicable item-type sets.
func (s *Store) LoadCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := s.db.SelectContext(ctx, &coupons,
		"SELECT code, description, discount_type, value, min_order, max_discount, valid_till FROM coupons ORDER BY code"); err != nil {
		return nil, wrapErr(err)
	}

	byCode := make(map[string]*models.Coupon, len(coupons))
	for i := range coupons {
		byCode[coupons[i].Code] = &coupons[i]
	}

	type applicability struct {
		Code     string `db:"coupon_code"`
		ItemType string `db:"item_type"`
	}
	var rows []applicability
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT coupon_code, item_type FROM coupon_applicability ORDER BY coupon_code"); err != nil {
		return nil, wrapErr(err)
	}
	for _, r := range rows {
		if coupon, ok := byCode[r.Code]; ok {
			coupon.ApplicableOn = append(coupon.ApplicableOn, r.ItemType)
		}
	}

	return coupons, nil
}

// LoadVinRegistry loads the VIN-to-vehicle mapping.
func (s *Store) LoadVinRegistry(ctx context.Context) ([]models.VinRecord, error) {
	var out []models.VinRecord
	err := s.db.SelectContext(ctx, &out,
		"SELECT vin, car_id, model, year, owner_name, purchase_date FROM vin_registry ORDER BY vin")
	return out, wrapErr(err)
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, wrapErr(err)
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return wrapErr(err)
}
