package service

import (
	"context"
	"fmt"
	"strings"

	"dealership-service/internal/apperr"
	"dealership-service/internal/broker"
	"dealership-service/internal/catalog"
	"dealership-service/internal/models"
	"dealership-service/internal/store"
	"dealership-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService owns the lifecycle of the four booking variants: parts
// orders, test drives, service bookings and car reservations. Records
// are created with an initial status and a single history entry; from
// then on they mutate only through status transitions, which append to
// the history and never rewrite it.
type BookingService struct {
	store   *store.Store
	catalog *catalog.Catalog
	carts   *CartService
	events  *broker.EventPublisher
	logger  *zap.Logger
}

// NewBookingService creates a new booking service.
func NewBookingService(
	st *store.Store,
	cat *catalog.Catalog,
	carts *CartService,
	events *broker.EventPublisher,
) *BookingService {
	return &BookingService{
		store:   st,
		catalog: cat,
		carts:   carts,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// CheckoutRequest creates a parts order from the session's cart.
type CheckoutRequest struct {
	SessionID     string `json:"session_id"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	// PaymentConfirmed marks orders created via the payment-confirm
	// path; those start life already confirmed.
	PaymentConfirmed bool `json:"payment_confirmed"`
}

// TestDriveRequest schedules a test drive.
type TestDriveRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	CarID         string `json:"car_id" binding:"required"`
	PreferredDate string `json:"preferred_date" binding:"required"`
	PreferredTime string `json:"preferred_time"`
}

// ServiceBookingRequest schedules a maintenance appointment.
type ServiceBookingRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	VehicleModel   string `json:"vehicle_model"`
	RegistrationNo string `json:"registration_no"`
	ServiceTypeID  string `json:"service_type_id" binding:"required"`
	CenterID       string `json:"center_id" binding:"required"`
	ScheduledDate  string `json:"scheduled_date" binding:"required"`
	Slot           string `json:"slot"`
}

// ReservationRequest reserves a configured car.
type ReservationRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	CarID     string `json:"car_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	ColorID   string `json:"color_id" binding:"required"`
}

// PlaceOrder creates a parts order from the cart, snapshots its items and
// totals, clears the cart and publishes an order event. Orders created
// through the payment-confirm path start confirmed instead of placed.
func (s *BookingService) PlaceOrder(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.PlaceOrder")
	defer span.End()

	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeOrder, "validation").Inc()
		return nil, err
	}

	cartView, err := s.carts.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeOrder, "empty_cart").Inc()
		return nil, apperr.Validation("cart is empty, nothing to order")
	}

	status := models.OrderStatusPlaced
	note := "Order placed"
	if req.PaymentConfirmed {
		status = models.OrderStatusConfirmed
		note = "Order confirmed after payment"
	}

	order := &models.Order{
		ID:            newBookingID(models.PrefixOrder),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Address:       req.Address,
		Items:         models.OrderItems(cartView.Items),
		Subtotal:      cartView.Totals.Subtotal,
		Discount:      cartView.Totals.Discount,
		Tax:           cartView.Totals.Tax,
		Total:         cartView.Totals.Total,
		CouponCode:    cartView.Totals.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		History:       models.StatusHistory{{Status: status, Timestamp: nowFunc(), Note: note}},
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeOrder, "storage").Inc()
		return nil, err
	}

	if _, err := s.carts.Clear(ctx, req.SessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	util.BookingsCreatedTotal.WithLabelValues(models.BookingTypeOrder).Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total))

	s.publishOrderPlaced(ctx, order)
	return order, nil
}

// CreateTestDrive schedules a test drive for a catalog car.
func (s *BookingService) CreateTestDrive(ctx context.Context, req *TestDriveRequest) (*models.TestDrive, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CreateTestDrive")
	defer span.End()

	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeTestDrive, "validation").Inc()
		return nil, err
	}

	car, err := s.catalog.Car(req.CarID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeTestDrive, "unknown_car").Inc()
		return nil, err
	}

	td := &models.TestDrive{
		ID:            newBookingID(models.PrefixTestDrive),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		CarID:         car.ID,
		CarName:       car.Name,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Status:        models.TestDriveStatusConfirmed,
		History: models.StatusHistory{{
			Status:    models.TestDriveStatusConfirmed,
			Timestamp: nowFunc(),
			Note:      fmt.Sprintf("Test drive booked for %s", car.Name),
		}},
	}

	if err := s.store.CreateTestDrive(ctx, td); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeTestDrive, "storage").Inc()
		return nil, err
	}

	util.BookingsCreatedTotal.WithLabelValues(models.BookingTypeTestDrive).Inc()
	s.logger.Info("Test drive booked", zap.String("booking_id", td.ID), zap.String("car", car.Name))

	s.publishBookingCreated(ctx, td.ID, models.BookingTypeTestDrive, td.CustomerEmail, td.Status)
	return td, nil
}

// CreateServiceBooking schedules a maintenance appointment. The service
// type and center must resolve in the catalog.
func (s *BookingService) CreateServiceBooking(ctx context.Context, req *ServiceBookingRequest) (*models.ServiceBooking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CreateServiceBooking")
	defer span.End()

	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeService, "validation").Inc()
		return nil, err
	}

	serviceType, err := s.catalog.ServiceType(req.ServiceTypeID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeService, "unknown_service_type").Inc()
		return nil, apperr.Validation("unknown service type: %s", req.ServiceTypeID)
	}
	center, err := s.catalog.ServiceCenter(req.CenterID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeService, "unknown_center").Inc()
		return nil, apperr.Validation("unknown service center: %s", req.CenterID)
	}

	sb := &models.ServiceBooking{
		ID:              newBookingID(models.PrefixService),
		CustomerName:    req.Name,
		CustomerEmail:   req.Email,
		CustomerPhone:   req.Phone,
		VehicleModel:    req.VehicleModel,
		RegistrationNo:  req.RegistrationNo,
		ServiceTypeID:   serviceType.ID,
		ServiceTypeName: serviceType.Name,
		CenterID:        center.ID,
		CenterName:      center.Name,
		ScheduledDate:   req.ScheduledDate,
		Slot:            req.Slot,
		Status:          models.ServiceStatusScheduled,
		History: models.StatusHistory{{
			Status:    models.ServiceStatusScheduled,
			Timestamp: nowFunc(),
			Note:      fmt.Sprintf("%s scheduled at %s", serviceType.Name, center.Name),
		}},
	}

	if err := s.store.CreateServiceBooking(ctx, sb); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeService, "storage").Inc()
		return nil, err
	}

	util.BookingsCreatedTotal.WithLabelValues(models.BookingTypeService).Inc()
	s.logger.Info("Service booked",
		zap.String("booking_id", sb.ID),
		zap.String("service", serviceType.Name))

	s.publishBookingCreated(ctx, sb.ID, models.BookingTypeService, sb.CustomerEmail, sb.Status)
	return sb, nil
}

// CreateReservation reserves a configured car. The price breakdown is
// computed server-side from the catalog; payment starts pending.
func (s *BookingService) CreateReservation(ctx context.Context, req *ReservationRequest) (*models.CarReservation, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CreateReservation")
	defer span.End()

	if err := validateContact(req.Name, req.Email, req.Phone); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeReservation, "validation").Inc()
		return nil, err
	}

	car, err := s.catalog.Car(req.CarID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeReservation, "unknown_car").Inc()
		return nil, err
	}

	breakdown, err := CalculateCarPrice(car, req.VariantID, req.ColorID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeReservation, "invalid_config").Inc()
		return nil, err
	}

	res := &models.CarReservation{
		ID:            newBookingID(models.PrefixReservation),
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		CarID:         car.ID,
		CarName:       car.Name,
		VariantID:     breakdown.VariantID,
		VariantName:   breakdown.VariantName,
		ColorID:       breakdown.ColorID,
		ColorName:     breakdown.ColorName,
		Subtotal:      breakdown.Subtotal,
		Tax:           breakdown.Tax,
		Total:         breakdown.Total,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.ReservationStatusPending,
		History: models.StatusHistory{{
			Status:    models.ReservationStatusPending,
			Timestamp: nowFunc(),
			Note:      fmt.Sprintf("Reservation created for %s %s", car.Name, breakdown.VariantName),
		}},
	}

	if err := s.store.CreateReservation(ctx, res); err != nil {
		util.BookingsFailedTotal.WithLabelValues(models.BookingTypeReservation, "storage").Inc()
		return nil, err
	}

	util.BookingsCreatedTotal.WithLabelValues(models.BookingTypeReservation).Inc()
	s.logger.Info("Car reserved",
		zap.String("booking_id", res.ID),
		zap.String("car", car.Name),
		zap.Int64("total", res.Total))

	s.publishBookingCreated(ctx, res.ID, models.BookingTypeReservation, res.CustomerEmail, res.Status)
	return res, nil
}

// GetOrder retrieves an order by id.
func (s *BookingService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, id)
}

// GetTestDrive retrieves a test drive by id.
func (s *BookingService) GetTestDrive(ctx context.Context, id string) (*models.TestDrive, error) {
	return s.store.GetTestDriveByID(ctx, id)
}

// GetServiceBooking retrieves a service booking by id.
func (s *BookingService) GetServiceBooking(ctx context.Context, id string) (*models.ServiceBooking, error) {
	return s.store.GetServiceBookingByID(ctx, id)
}

// GetReservation retrieves a car reservation by id.
func (s *BookingService) GetReservation(ctx context.Context, id string) (*models.CarReservation, error) {
	return s.store.GetReservationByID(ctx, id)
}

// TransitionStatus moves a booking of any variant to a new status. The
// status must belong to the variant's vocabulary; ordering between
// member statuses is not enforced, so an operator can override a record
// into any known state with a free-form note.
func (s *BookingService) TransitionStatus(ctx context.Context, bookingType, id, newStatus, note string) (interface{}, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.TransitionStatus")
	defer span.End()

	switch bookingType {
	case models.BookingTypeOrder:
		return s.transitionOrder(ctx, id, newStatus, note)
	case models.BookingTypeTestDrive:
		return s.transitionTestDrive(ctx, id, newStatus, note)
	case models.BookingTypeService:
		return s.transitionService(ctx, id, newStatus, note)
	case models.BookingTypeReservation:
		return s.transitionReservation(ctx, id, newStatus, note)
	default:
		return nil, apperr.Validation("unknown booking type: %s", bookingType)
	}
}

func (s *BookingService) transitionOrder(ctx context.Context, id, newStatus, note string) (*models.Order, error) {
	if !models.ValidStatus(models.OrderStatuses, newStatus) {
		return nil, apperr.Validation("invalid order status: %s", newStatus)
	}

	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := order.Status
	order.Status = newStatus
	order.History = append(order.History, models.StatusEntry{
		Status: newStatus, Timestamp: nowFunc(), Note: note,
	})
	if newStatus == models.OrderStatusDelivered {
		now := nowFunc()
		order.DeliveredAt = &now
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, models.BookingTypeOrder, id, old, newStatus, note)
	return order, nil
}

func (s *BookingService) transitionTestDrive(ctx context.Context, id, newStatus, note string) (*models.TestDrive, error) {
	if !models.ValidStatus(models.TestDriveStatuses, newStatus) {
		return nil, apperr.Validation("invalid test drive status: %s", newStatus)
	}

	td, err := s.store.GetTestDriveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := td.Status
	td.Status = newStatus
	td.History = append(td.History, models.StatusEntry{
		Status: newStatus, Timestamp: nowFunc(), Note: note,
	})
	if newStatus == models.TestDriveStatusCompleted {
		now := nowFunc()
		td.CompletedAt = &now
	}

	if err := s.store.UpdateTestDrive(ctx, td); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, models.BookingTypeTestDrive, id, old, newStatus, note)
	return td, nil
}

func (s *BookingService) transitionService(ctx context.Context, id, newStatus, note string) (*models.ServiceBooking, error) {
	if !models.ValidStatus(models.ServiceStatuses, newStatus) {
		return nil, apperr.Validation("invalid service booking status: %s", newStatus)
	}

	sb, err := s.store.GetServiceBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := sb.Status
	sb.Status = newStatus
	sb.History = append(sb.History, models.StatusEntry{
		Status: newStatus, Timestamp: nowFunc(), Note: note,
	})
	if newStatus == models.ServiceStatusCompleted {
		now := nowFunc()
		sb.CompletedAt = &now
	}

	if err := s.store.UpdateServiceBooking(ctx, sb); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, models.BookingTypeService, id, old, newStatus, note)
	return sb, nil
}

func (s *BookingService) transitionReservation(ctx context.Context, id, newStatus, note string) (*models.CarReservation, error) {
	if !models.ValidStatus(models.ReservationStatuses, newStatus) {
		return nil, apperr.Validation("invalid reservation status: %s", newStatus)
	}

	res, err := s.store.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := res.Status
	res.Status = newStatus
	res.History = append(res.History, models.StatusEntry{
		Status: newStatus, Timestamp: nowFunc(), Note: note,
	})
	if newStatus == models.ReservationStatusDelivered {
		now := nowFunc()
		res.DeliveredAt = &now
	}

	if err := s.store.UpdateReservation(ctx, res); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, models.BookingTypeReservation, id, old, newStatus, note)
	return res, nil
}

// TransitionReservationPayment moves a reservation's payment status.
// A payment completing cascades the reservation status to confirmed
// within the same call, with its own history entry.
func (s *BookingService) TransitionReservationPayment(ctx context.Context, id, paymentStatus, intentID string) (*models.CarReservation, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.TransitionReservationPayment")
	defer span.End()

	if !models.ValidStatus(models.PaymentStatuses, paymentStatus) {
		return nil, apperr.Validation("invalid payment status: %s", paymentStatus)
	}

	res, err := s.store.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res.PaymentStatus = paymentStatus
	if intentID != "" {
		res.PaymentIntentID = intentID
	}

	if paymentStatus == models.PaymentStatusCompleted {
		old := res.Status
		res.Status = models.ReservationStatusConfirmed
		res.History = append(res.History, models.StatusEntry{
			Status:    models.ReservationStatusConfirmed,
			Timestamp: nowFunc(),
			Note:      "Payment received, reservation confirmed",
		})
		s.recordTransition(ctx, models.BookingTypeReservation, id, old, res.Status, "payment completed")
	}

	if err := s.store.UpdateReservation(ctx, res); err != nil {
		return nil, err
	}

	s.logger.Info("Reservation payment updated",
		zap.String("booking_id", id),
		zap.String("payment_status", paymentStatus))
	return res, nil
}

func (s *BookingService) recordTransition(ctx context.Context, bookingType, id, old, newStatus, note string) {
	util.StatusTransitionsTotal.WithLabelValues(bookingType, newStatus).Inc()
	s.logger.Info("Booking status changed",
		zap.String("booking_id", id),
		zap.String("type", bookingType),
		zap.String("from", old),
		zap.String("to", newStatus))

	if s.events == nil {
		return
	}
	event := &models.BookingStatusChangedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeBookingStatusChanged),
		BookingID:   id,
		BookingType: bookingType,
		OldStatus:   old,
		NewStatus:   newStatus,
		Note:        note,
	}
	if err := s.events.PublishStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish status change event", zap.Error(err))
	}
}

func (s *BookingService) publishOrderPlaced(ctx context.Context, order *models.Order) {
	if s.events == nil {
		return
	}
	event := &models.OrderPlacedEvent{
		BaseEvent:     broker.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		Items:         order.Items,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, id, bookingType, email, status string) {
	if s.events == nil {
		return
	}
	event := &models.BookingCreatedEvent{
		BaseEvent:     broker.NewBaseEvent(models.EventTypeBookingCreated),
		BookingID:     id,
		BookingType:   bookingType,
		CustomerEmail: email,
		Status:        status,
	}
	if err := s.events.PublishBookingCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookingCreated event", zap.Error(err))
	}
}

// newBookingID builds a human-readable id like ORD-1A2B3C4D. The token is
// the first 8 hex chars of a UUID, uppercased; collisions are negligible
// and surface as a conflict from the unique-key insert.
func newBookingID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}

func validateContact(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name is required")
	}
	if strings.TrimSpace(email) == "" {
		return apperr.Validation("email is required")
	}
	if strings.TrimSpace(phone) == "" {
		return apperr.Validation("phone is required")
	}
	return nil
}
