// Package booking orchestrates the reservation lifecycle: seat
// allocation, fare calculation, payment capture, gate entry and
// refund. It owns the legality of every state transition; storage and
// inventory mechanics live behind the interfaces it consumes.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iliyamo/train-ticket-reservation/internal/fare"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/payment"
	"github.com/iliyamo/train-ticket-reservation/internal/queue"
)

// Reservation outcome statuses on the wire.
const (
	StatusSuccess   = "success"   // seats granted on the requested schedule
	StatusRecommend = "recommend" // seats granted on a later schedule
)

// Lifecycle errors. Handlers translate these into the fixed wire
// error codes; none of them implies any state change.
var (
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidToken       = errors.New("invalid entry token")
	ErrNotCaptured        = errors.New("payment not captured")
	ErrAlreadyEntered     = errors.New("already entered")
)

// Allocator resolves a request to a schedule and seat block.
type Allocator interface {
	Allocate(ctx context.Context, scheduleID, from, to string, numPeople int) (string, []string, error)
}

// ScheduleSource supplies schedule details needed for pricing and
// departure times.
type ScheduleSource interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ModelForSchedule(ctx context.Context, scheduleID string) (*model.TrainModel, error)
}

// Writer persists a reservation, its seats and its uncaptured payment
// as one atomic unit.
type Writer interface {
	CreateBooking(ctx context.Context, res *model.Reservation, seats []string, pay *model.Payment) error
}

// ReservationSource reads reservations and their seats.
type ReservationSource interface {
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByEntryToken(ctx context.Context, token string) (*model.Reservation, error)
	SeatsByReservation(ctx context.Context, reservationID string) ([]string, error)
}

// PaymentStore reads and transitions payment rows.
type PaymentStore interface {
	GetByReservation(ctx context.Context, reservationID string) (*model.Payment, error)
	MarkCaptured(ctx context.Context, reservationID string) error
	MarkRefunded(ctx context.Context, reservationID string) error
}

// EntryStore records gate entries.
type EntryStore interface {
	Create(ctx context.Context, reservationID string) error
	Exists(ctx context.Context, reservationID string) (bool, error)
}

// UserSource reads user accounts (for the payment token).
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SeatReleaser returns claimed seats to the inventory pool.
type SeatReleaser interface {
	Release(ctx context.Context, scheduleID string, seats []string) error
}

// Capturer settles a payment through the external payment app.
type Capturer interface {
	Capture(ctx context.Context, amount int, globalPaymentToken string) (payment.CaptureResult, error)
}

// SimClock reports the simulated time of day.
type SimClock interface {
	CurrentTime() string
	Departed(departureAt string) bool
}

// Publisher emits booking events to the broker. Publish failures are
// logged and ignored: events feed the sales log, not correctness.
type Publisher func(ctx context.Context, event queue.BookingEvent) error

// Service wires the lifecycle dependencies together.
type Service struct {
	allocator    Allocator
	schedules    ScheduleSource
	writer       Writer
	reservations ReservationSource
	payments     PaymentStore
	entries      EntryStore
	users        UserSource
	inventory    SeatReleaser
	capturer     Capturer
	clock        SimClock
	publish      Publisher

	// declined tracks reservations whose seats were already handed
	// back after a failed capture. Clients retry declined purchases;
	// without the marker every retry would push the same seats into
	// the pool again.
	mu       sync.Mutex
	declined map[string]struct{}
}

// NewService constructs a Service. publish may be nil to disable
// event emission.
func NewService(
	alloc Allocator,
	schedules ScheduleSource,
	writer Writer,
	reservations ReservationSource,
	payments PaymentStore,
	entries EntryStore,
	users UserSource,
	inv SeatReleaser,
	capturer Capturer,
	clk SimClock,
	publish Publisher,
) *Service {
	return &Service{
		allocator:    alloc,
		schedules:    schedules,
		writer:       writer,
		reservations: reservations,
		payments:     payments,
		entries:      entries,
		users:        users,
		inventory:    inv,
		capturer:     capturer,
		clock:        clk,
		publish:      publish,
		declined:     make(map[string]struct{}),
	}
}

// markDeclined records the first decline of a reservation and reports
// whether this caller owns the seat release. unmarkDeclined undoes the
// claim when the release itself fails, so the retry can try again.
func (s *Service) markDeclined(reservationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.declined[reservationID]; done {
		return false
	}
	s.declined[reservationID] = struct{}{}
	return true
}

func (s *Service) unmarkDeclined(reservationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.declined, reservationID)
}

// ReserveResult describes a created reservation.
type ReserveResult struct {
	Status        string
	ReservationID string
	ScheduleID    string
	FromStation   string
	ToStation     string
	DepartureAt   string
	Seats         []string
	TotalPrice    int
	IsDiscounted  bool
	EntryToken    string
}

// Reserve allocates seats for the party and creates the reservation,
// its seat claims and an uncaptured payment in one transaction. When
// the allocator had to move to a later schedule the result status is
// StatusRecommend instead of StatusSuccess.
func (s *Service) Reserve(ctx context.Context, userID, scheduleID, from, to string, numPeople int) (*ReserveResult, error) {
	if !model.ValidStationID(from) || !model.ValidStationID(to) || from == to {
		return nil, fmt.Errorf("invalid journey %s -> %s", from, to)
	}

	resolvedID, seats, err := s.allocator.Allocate(ctx, scheduleID, from, to, numPeople)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.GetByID(ctx, resolvedID)
	if err != nil {
		return nil, err
	}
	trainModel, err := s.schedules.ModelForSchedule(ctx, resolvedID)
	if err != nil {
		return nil, err
	}

	// Departure of the boarding leg: from the origin to the next
	// station in travel direction.
	stations := fare.StationsBetween(from, to)
	if len(stations) < 2 {
		return nil, fmt.Errorf("invalid journey %s -> %s", from, to)
	}
	departureAt := schedule.DepartureForLeg(stations[0], stations[1])

	totalPrice, discounted := fare.Calculate(from, to, seats, trainModel.SeatColumns)

	res := &model.Reservation{
		ID:            ulid.Make().String(),
		UserID:        userID,
		ScheduleID:    resolvedID,
		FromStationID: from,
		ToStationID:   to,
		DepartureAt:   departureAt,
		EntryToken:    ulid.Make().String(),
	}
	pay := &model.Payment{
		UserID:        userID,
		ReservationID: res.ID,
		Amount:        totalPrice,
	}
	if err := s.writer.CreateBooking(ctx, res, seats, pay); err != nil {
		// The booking never existed; hand the seats back so the
		// failed attempt leaves no trace in the inventory.
		if relErr := s.inventory.Release(ctx, resolvedID, seats); relErr != nil {
			log.Printf("booking: release after failed create on %s: %v", resolvedID, relErr)
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	status := StatusSuccess
	if resolvedID != scheduleID {
		status = StatusRecommend
	}
	return &ReserveResult{
		Status:        status,
		ReservationID: res.ID,
		ScheduleID:    resolvedID,
		FromStation:   model.StationName(from),
		ToStation:     model.StationName(to),
		DepartureAt:   departureAt,
		Seats:         seats,
		TotalPrice:    totalPrice,
		IsDiscounted:  discounted,
		EntryToken:    res.EntryToken,
	}, nil
}

// PurchaseResult describes the outcome of a capture attempt.
type PurchaseResult struct {
	Status     string
	Message    string
	EntryToken string
	QRCodeURL  string
}

// Purchase captures the reservation's payment. An accepted capture
// marks the payment captured and emits a booking.confirmed event; a
// declined one releases the seats back to the inventory exactly once
// and leaves the payment uncaptured. Retrying a declined purchase
// never releases the same seats a second time.
func (s *Service) Purchase(ctx context.Context, userID, reservationID string) (*PurchaseResult, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, ErrInvalidReservation
	}
	if res.UserID != userID {
		return nil, ErrInvalidReservation
	}
	pay, err := s.payments.GetByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	capture, err := s.capturer.Capture(ctx, pay.Amount, user.GlobalPaymentToken)
	if err != nil {
		return nil, fmt.Errorf("payment capture: %w", err)
	}

	if !capture.Accepted() {
		if s.markDeclined(reservationID) {
			seats, err := s.reservations.SeatsByReservation(ctx, reservationID)
			if err != nil {
				s.unmarkDeclined(reservationID)
				return nil, fmt.Errorf("load seats: %w", err)
			}
			if err := s.inventory.Release(ctx, res.ScheduleID, seats); err != nil {
				s.unmarkDeclined(reservationID)
				return nil, fmt.Errorf("release seats: %w", err)
			}
		}
		return &PurchaseResult{Status: "failed", Message: capture.Message}, nil
	}

	if err := s.payments.MarkCaptured(ctx, reservationID); err != nil {
		return nil, fmt.Errorf("mark captured: %w", err)
	}
	s.emit(ctx, queue.EventBookingConfirmed, res, pay.Amount)

	return &PurchaseResult{
		Status:     "success",
		Message:    capture.Message,
		EntryToken: res.EntryToken,
		QRCodeURL:  "/api/qr/" + res.ID + ".png",
	}, nil
}

// Entry statuses on the wire.
const (
	EntrySuccess  = "success"
	EntryDeparted = "train_departed"
)

// Entry records a gate pass for the reservation matching entryToken.
// Returns EntryDeparted without any state change when the simulated
// clock is past the departure time, and ErrInvalidToken when no
// reservation carries the token. Passing the gate twice is a no-op.
func (s *Service) Entry(ctx context.Context, entryToken string) (string, error) {
	res, err := s.reservations.GetByEntryToken(ctx, entryToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	if s.clock.Departed(res.DepartureAt) {
		return EntryDeparted, nil
	}
	entered, err := s.entries.Exists(ctx, res.ID)
	if err != nil {
		return "", fmt.Errorf("check entry: %w", err)
	}
	if entered {
		return EntrySuccess, nil
	}
	if err := s.entries.Create(ctx, res.ID); err != nil {
		return "", fmt.Errorf("record entry: %w", err)
	}
	return EntrySuccess, nil
}

// Refund reverses a captured reservation. It is only legal while the
// payment is captured and no gate entry exists; the seats return to
// the inventory unless the train already departed. Repeating a refund
// fails with ErrNotCaptured and changes nothing. A gate entry blocks
// the refund regardless of capture state, so the entry check runs
// first.
func (s *Service) Refund(ctx context.Context, userID, reservationID string) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return ErrInvalidReservation
	}
	if res.UserID != userID {
		return ErrInvalidReservation
	}
	entered, err := s.entries.Exists(ctx, reservationID)
	if err != nil {
		return fmt.Errorf("check entry: %w", err)
	}
	if entered {
		return ErrAlreadyEntered
	}
	pay, err := s.payments.GetByReservation(ctx, reservationID)
	if err != nil || !pay.IsCaptured {
		return ErrNotCaptured
	}

	if err := s.payments.MarkRefunded(ctx, reservationID); err != nil {
		return fmt.Errorf("mark refunded: %w", err)
	}

	if !s.clock.Departed(res.DepartureAt) {
		seats, err := s.reservations.SeatsByReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("load seats: %w", err)
		}
		if err := s.inventory.Release(ctx, res.ScheduleID, seats); err != nil {
			return fmt.Errorf("release seats: %w", err)
		}
	}

	s.emit(ctx, queue.EventBookingRefunded, res, pay.Amount)
	return nil
}

func (s *Service) emit(ctx context.Context, event string, res *model.Reservation, amount int) {
	if s.publish == nil {
		return
	}
	seats, err := s.reservations.SeatsByReservation(ctx, res.ID)
	if err != nil {
		log.Printf("booking: load seats for event: %v", err)
	}
	ev := queue.BookingEvent{
		Event:         event,
		ReservationID: res.ID,
		UserID:        res.UserID,
		ScheduleID:    res.ScheduleID,
		FromStation:   model.StationName(res.FromStationID),
		ToStation:     model.StationName(res.ToStationID),
		DepartureAt:   res.DepartureAt,
		Seats:         seats,
		TotalPrice:    amount,
		OccurredAt:    s.clock.CurrentTime(),
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s event: %v", event, err)
	}
}
