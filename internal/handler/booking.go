package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/allocator"
	"github.com/iliyamo/train-ticket-reservation/internal/booking"
	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// Wire error codes returned by the booking endpoints.  The frontend
// switches on these strings, so they are part of the contract.
const (
	codeLockTimeout        = "LOCK_TIMEOUT"
	codeNoSeatAvailable    = "NO_SEAT_AVAILABLE"
	codeInvalidReservation = "INVALID_RESERVATION"
	codeNotCaptured        = "NOT_CAPTURED"
	codeAlreadyEntered     = "ALREADY_ENTERED"
)

// BookingHandler exposes the reservation lifecycle over HTTP: reserve,
// purchase, gate entry, refund and the purchased-tickets listing.  The
// business rules live in the booking service; this layer binds
// requests, bumps user activity and translates sentinel errors into
// the fixed wire codes.
type BookingHandler struct {
	Svc          *booking.Service            // lifecycle orchestration
	Users        *repository.UserRepo        // activity tracking
	Reservations *repository.ReservationRepo // purchased-tickets listing
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(svc *booking.Service, users *repository.UserRepo, reservations *repository.ReservationRepo) *BookingHandler {
	if svc == nil || users == nil || reservations == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc, Users: users, Reservations: reservations}
}

// Reserve handles POST /api/reserve.  A full inventory on the
// requested schedule falls through to later ones; only when every
// remaining schedule is full does the request fail with
// NO_SEAT_AVAILABLE.  Contention on the schedule lock surfaces as
// LOCK_TIMEOUT so the client can retry.
func (h *BookingHandler) Reserve(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}
	var body struct {
		ScheduleID    string `json:"schedule_id"`
		FromStationID string `json:"from_station_id"`
		ToStationID   string `json:"to_station_id"`
		NumPeople     int    `json:"num_people"`
	}
	if err := c.Bind(&body); err != nil || body.ScheduleID == "" || body.NumPeople <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	ctx := c.Request().Context()
	if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	result, err := h.Svc.Reserve(ctx, user.ID, body.ScheduleID, body.FromStationID, body.ToStationID, body.NumPeople)
	switch {
	case errors.Is(err, inventory.ErrLockTimeout):
		return c.JSON(http.StatusOK, echo.Map{"status": "fail", "error_code": codeLockTimeout})
	case errors.Is(err, allocator.ErrNoSeatAvailable):
		return c.JSON(http.StatusOK, echo.Map{"status": "fail", "error_code": codeNoSeatAvailable})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reservation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": result.Status,
		"reserved": echo.Map{
			"reservation_id": result.ReservationID,
			"schedule_id":    result.ScheduleID,
			"from_station":   result.FromStation,
			"to_station":     result.ToStation,
			"departure_at":   result.DepartureAt,
			"seats":          result.Seats,
			"total_price":    result.TotalPrice,
			"is_discounted":  result.IsDiscounted,
		},
	})
}

// Purchase handles POST /api/purchase.  It captures the reservation's
// payment through the payment app.  A declined capture returns status
// "failed" with empty token and QR fields; the seats have already been
// released by then.
func (h *BookingHandler) Purchase(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}
	var body struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := c.Bind(&body); err != nil || body.ReservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation_id is required"})
	}

	ctx := c.Request().Context()
	if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	result, err := h.Svc.Purchase(ctx, user.ID, body.ReservationID)
	switch {
	case errors.Is(err, booking.ErrInvalidReservation):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid reservation"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "purchase failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":      result.Status,
		"message":     result.Message,
		"entry_token": result.EntryToken,
		"qr_code_url": result.QRCodeURL,
	})
}

// Entry handles POST /api/entry.  The gate scanner posts the QR
// code's entry token; no session is required.  An unknown token is a
// 404, a departed train reports train_departed without creating a
// record.
func (h *BookingHandler) Entry(c echo.Context) error {
	var body struct {
		EntryToken string `json:"entry_token"`
	}
	if err := c.Bind(&body); err != nil || body.EntryToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "entry_token is required"})
	}

	status, err := h.Svc.Entry(c.Request().Context(), body.EntryToken)
	switch {
	case errors.Is(err, booking.ErrInvalidToken):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Invalid entry token: " + body.EntryToken})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "entry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// Refund handles POST /api/refund.  Illegal refunds (foreign or
// unknown reservation, uncaptured payment, already-entered gate) come
// back as status "fail" with the matching error code and change
// nothing.
func (h *BookingHandler) Refund(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}
	var body struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := c.Bind(&body); err != nil || body.ReservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation_id is required"})
	}

	ctx := c.Request().Context()
	if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	err := h.Svc.Refund(ctx, user.ID, body.ReservationID)
	switch {
	case errors.Is(err, booking.ErrInvalidReservation):
		return c.JSON(http.StatusOK, echo.Map{"status": "fail", "error_code": codeInvalidReservation})
	case errors.Is(err, booking.ErrNotCaptured):
		return c.JSON(http.StatusOK, echo.Map{"status": "fail", "error_code": codeNotCaptured})
	case errors.Is(err, booking.ErrAlreadyEntered):
		return c.JSON(http.StatusOK, echo.Map{"status": "fail", "error_code": codeAlreadyEntered})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "refund failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// PurchasedTickets handles GET /api/purchased_tickets.  The page is
// reloaded by active users, so the request also refreshes the user's
// activity timestamp.
func (h *BookingHandler) PurchasedTickets(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login required"})
	}
	ctx := c.Request().Context()
	if err := h.Users.TouchActivity(ctx, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	tickets, err := h.Reservations.ListPurchasedByUser(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	// The repository returns raw station ids and leaves the QR path
	// to the HTTP layer.
	for i := range tickets {
		tickets[i].FromStation = model.StationName(tickets[i].FromStation)
		tickets[i].ToStation = model.StationName(tickets[i].ToStation)
		tickets[i].QRCodeURL = "/api/qr/" + tickets[i].ReservationID + ".png"
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}
