package catalog

import (
	"strings"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"
)

// Catalog is the read-only in-memory view of dealership inventory:
// cars, parts, service types, service centers, coupons and the VIN
// registry. It is populated once at startup and from then on only read,
// so lookups need no locking.
type Catalog struct {
	cars           map[string]*models.Car
	carOrder       []string
	parts          map[string]*models.Part
	partOrder      []string
	serviceTypes   map[string]*models.ServiceType
	serviceCenters map[string]*models.ServiceCenter
	coupons        map[string]*models.Coupon
	vins           map[string]*models.VinRecord
}

// CarFilter narrows ListCars; zero values match everything.
type CarFilter struct {
	Brand    string
	Category string
	MaxPrice int64
}

// PartFilter narrows ListParts; zero values match everything.
type PartFilter struct {
	Category string
	CarID    string
}

// New builds a catalog from loaded collections. Slices keep their load
// order for deterministic listings.
func New(
	cars []models.Car,
	parts []models.Part,
	serviceTypes []models.ServiceType,
	serviceCenters []models.ServiceCenter,
	coupons []models.Coupon,
	vins []models.VinRecord,
) *Catalog {
	c := &Catalog{
		cars:           make(map[string]*models.Car, len(cars)),
		parts:          make(map[string]*models.Part, len(parts)),
		serviceTypes:   make(map[string]*models.ServiceType, len(serviceTypes)),
		serviceCenters: make(map[string]*models.ServiceCenter, len(serviceCenters)),
		coupons:        make(map[string]*models.Coupon, len(coupons)),
		vins:           make(map[string]*models.VinRecord, len(vins)),
	}
	for i := range cars {
		c.cars[cars[i].ID] = &cars[i]
		c.carOrder = append(c.carOrder, cars[i].ID)
	}
	for i := range parts {
		c.parts[parts[i].ID] = &parts[i]
		c.partOrder = append(c.partOrder, parts[i].ID)
	}
	for i := range serviceTypes {
		c.serviceTypes[serviceTypes[i].ID] = &serviceTypes[i]
	}
	for i := range serviceCenters {
		c.serviceCenters[serviceCenters[i].ID] = &serviceCenters[i]
	}
	for i := range coupons {
		c.coupons[models.NormalizeCouponCode(coupons[i].Code)] = &coupons[i]
	}
	for i := range vins {
		c.vins[strings.ToUpper(vins[i].VIN)] = &vins[i]
	}
	return c
}

// Car returns the car with the given id.
func (c *Catalog) Car(id string) (*models.Car, error) {
	car, ok := c.cars[id]
	if !ok {
		return nil, apperr.NotFound("car not found: %s", id)
	}
	return car, nil
}

// Cars lists cars matching the filter, in load order.
func (c *Catalog) Cars(filter CarFilter) []*models.Car {
	out := make([]*models.Car, 0, len(c.carOrder))
	for _, id := range c.carOrder {
		car := c.cars[id]
		if filter.Brand != "" && !strings.EqualFold(car.Brand, filter.Brand) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(car.Category, filter.Category) {
			continue
		}
		if filter.MaxPrice > 0 && car.Price > filter.MaxPrice {
			continue
		}
		out = append(out, car)
	}
	return out
}

// Part returns the part with the given id.
func (c *Catalog) Part(id string) (*models.Part, error) {
	part, ok := c.parts[id]
	if !ok {
		return nil, apperr.NotFound("part not found: %s", id)
	}
	return part, nil
}

// Parts lists parts matching the filter, in load order.
func (c *Catalog) Parts(filter PartFilter) []*models.Part {
	out := make([]*models.Part, 0, len(c.partOrder))
	for _, id := range c.partOrder {
		part := c.parts[id]
		if filter.Category != "" && !strings.EqualFold(part.Category, filter.Category) {
			continue
		}
		if filter.CarID != "" && !compatible(part, filter.CarID) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ServiceType returns the service type with the given id.
func (c *Catalog) ServiceType(id string) (*models.ServiceType, error) {
	st, ok := c.serviceTypes[id]
	if !ok {
		return nil, apperr.NotFound("service type not found: %s", id)
	}
	return st, nil
}

// ServiceTypes lists all service types.
func (c *Catalog) ServiceTypes() []*models.ServiceType {
	out := make([]*models.ServiceType, 0, len(c.serviceTypes))
	for _, st := range c.serviceTypes {
		out = append(out, st)
	}
	return out
}

// ServiceCenter returns the service center with the given id.
func (c *Catalog) ServiceCenter(id string) (*models.ServiceCenter, error) {
	sc, ok := c.serviceCenters[id]
	if !ok {
		return nil, apperr.NotFound("service center not found: %s", id)
	}
	return sc, nil
}

// ServiceCenters lists all service centers.
func (c *Catalog) ServiceCenters() []*models.ServiceCenter {
	out := make([]*models.ServiceCenter, 0, len(c.serviceCenters))
	for _, sc := range c.serviceCenters {
		out = append(out, sc)
	}
	return out
}

// Coupon returns the coupon for the given code, matched case-insensitively.
func (c *Catalog) Coupon(code string) (*models.Coupon, error) {
	coupon, ok := c.coupons[models.NormalizeCouponCode(code)]
	if !ok {
		return nil, apperr.NotFound("invalid coupon code: %s", code)
	}
	return coupon, nil
}

// ResolveVIN returns the vehicle record for a VIN.
func (c *Catalog) ResolveVIN(vin string) (*models.VinRecord, error) {
	rec, ok := c.vins[strings.ToUpper(strings.TrimSpace(vin))]
	if !ok {
		return nil, apperr.NotFound("no vehicle found for VIN: %s", vin)
	}
	return rec, nil
}

func compatible(part *models.Part, carID string) bool {
	for _, id := range part.CompatibleCars {
		if id == carID {
			return true
		}
	}
	return false
}
