package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/payment"
	"github.com/iliyamo/train-ticket-reservation/internal/queue"
)

type fakeAlloc struct {
	scheduleID string
	seats      []string
	err        error
}

func (f *fakeAlloc) Allocate(_ context.Context, _, _, _ string, _ int) (string, []string, error) {
	return f.scheduleID, f.seats, f.err
}

type fakeSchedules struct {
	schedule *model.Schedule
	model    *model.TrainModel
}

func (f *fakeSchedules) GetByID(_ context.Context, _ string) (*model.Schedule, error) {
	return f.schedule, nil
}

func (f *fakeSchedules) ModelForSchedule(_ context.Context, _ string) (*model.TrainModel, error) {
	return f.model, nil
}

type fakeWriter struct {
	created []*model.Reservation
	seats   [][]string
	pays    []*model.Payment
	err     error
}

func (f *fakeWriter) CreateBooking(_ context.Context, res *model.Reservation, seats []string, pay *model.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, res)
	f.seats = append(f.seats, seats)
	f.pays = append(f.pays, pay)
	return nil
}

type fakeReservations struct {
	byID    map[string]*model.Reservation
	byToken map[string]*model.Reservation
	seats   map[string][]string
}

func (f *fakeReservations) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeReservations) GetByEntryToken(_ context.Context, token string) (*model.Reservation, error) {
	if r, ok := f.byToken[token]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeReservations) SeatsByReservation(_ context.Context, id string) ([]string, error) {
	return f.seats[id], nil
}

type fakePayments struct {
	byReservation map[string]*model.Payment
}

func (f *fakePayments) GetByReservation(_ context.Context, id string) (*model.Payment, error) {
	if p, ok := f.byReservation[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (f *fakePayments) MarkCaptured(_ context.Context, id string) error {
	f.byReservation[id].IsCaptured = true
	return nil
}

func (f *fakePayments) MarkRefunded(_ context.Context, id string) error {
	f.byReservation[id].IsCaptured = false
	f.byReservation[id].IsRefunded = true
	return nil
}

type fakeEntries struct {
	entered map[string]bool
}

func (f *fakeEntries) Create(_ context.Context, id string) error {
	f.entered[id] = true
	return nil
}

func (f *fakeEntries) Exists(_ context.Context, id string) (bool, error) {
	return f.entered[id], nil
}

type fakeUsers struct {
	user *model.User
}

func (f *fakeUsers) GetByID(_ context.Context, _ string) (*model.User, error) {
	return f.user, nil
}

type fakeReleaser struct {
	released map[string][]string
}

func (f *fakeReleaser) Release(_ context.Context, scheduleID string, seats []string) error {
	f.released[scheduleID] = append(f.released[scheduleID], seats...)
	return nil
}

type fakeCapturer struct {
	result payment.CaptureResult
	err    error
}

func (f *fakeCapturer) Capture(_ context.Context, _ int, _ string) (payment.CaptureResult, error) {
	return f.result, f.err
}

// fixedSimClock pins the simulated time of day.
type fixedSimClock struct {
	now string
}

func (c fixedSimClock) CurrentTime() string              { return c.now }
func (c fixedSimClock) Departed(departureAt string) bool { return departureAt < c.now }

// harness bundles the fakes so each test can tweak the ones it cares
// about before building the service.
type harness struct {
	alloc        *fakeAlloc
	schedules    *fakeSchedules
	writer       *fakeWriter
	reservations *fakeReservations
	payments     *fakePayments
	entries      *fakeEntries
	users        *fakeUsers
	releaser     *fakeReleaser
	capturer     *fakeCapturer
	clock        fixedSimClock
	events       []queue.BookingEvent
}

func newHarness() *harness {
	return &harness{
		alloc: &fakeAlloc{scheduleID: "ame-1", seats: []string{"1-A", "1-B"}},
		schedules: &fakeSchedules{
			schedule: &model.Schedule{
				ID:                     "ame-1",
				DepartureAtStationAToB: "12:00",
				DepartureAtStationBToC: "12:10",
				DepartureAtStationCToD: "12:20",
				DepartureAtStationDToE: "12:30",
				DepartureAtStationEToD: "12:40",
				DepartureAtStationDToC: "12:50",
				DepartureAtStationCToB: "13:00",
				DepartureAtStationBToA: "13:10",
			},
			model: &model.TrainModel{Name: "basic", SeatRows: 10, SeatColumns: 5},
		},
		writer: &fakeWriter{},
		reservations: &fakeReservations{
			byID:    map[string]*model.Reservation{},
			byToken: map[string]*model.Reservation{},
			seats:   map[string][]string{},
		},
		payments: &fakePayments{byReservation: map[string]*model.Payment{}},
		entries:  &fakeEntries{entered: map[string]bool{}},
		users:    &fakeUsers{user: &model.User{ID: "u1", Name: "alice", GlobalPaymentToken: "tok"}},
		releaser: &fakeReleaser{released: map[string][]string{}},
		capturer: &fakeCapturer{result: payment.CaptureResult{Status: payment.StatusAccepted, Message: "ok"}},
		clock:    fixedSimClock{now: "10:00"},
	}
}

func (h *harness) service() *Service {
	return NewService(
		h.alloc,
		h.schedules,
		h.writer,
		h.reservations,
		h.payments,
		h.entries,
		h.users,
		h.releaser,
		h.capturer,
		h.clock,
		func(_ context.Context, ev queue.BookingEvent) error {
			h.events = append(h.events, ev)
			return nil
		},
	)
}

// seedBooking registers a captured-or-not reservation directly in the
// fakes, as if Reserve had run earlier.
func (h *harness) seedBooking(id, userID, token string, captured bool) *model.Reservation {
	res := &model.Reservation{
		ID:            id,
		UserID:        userID,
		ScheduleID:    "ame-1",
		FromStationID: "A",
		ToStationID:   "E",
		DepartureAt:   "12:00",
		EntryToken:    token,
	}
	h.reservations.byID[id] = res
	h.reservations.byToken[token] = res
	h.reservations.seats[id] = []string{"1-A", "1-B"}
	h.payments.byReservation[id] = &model.Payment{
		UserID:        userID,
		ReservationID: id,
		Amount:        8000,
		IsCaptured:    captured,
	}
	return res
}

func TestReserve(t *testing.T) {
	t.Parallel()

	t.Run("success on the requested schedule", func(t *testing.T) {
		h := newHarness()
		svc := h.service()

		result, err := svc.Reserve(context.Background(), "u1", "ame-1", "A", "E", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != StatusSuccess {
			t.Fatalf("expected status %s, got %s", StatusSuccess, result.Status)
		}
		// Two adjacent seats, four hops: full price.
		if result.TotalPrice != 8000 || result.IsDiscounted {
			t.Fatalf("expected full price 8000, got %d (discounted=%v)", result.TotalPrice, result.IsDiscounted)
		}
		if result.DepartureAt != "12:00" {
			t.Fatalf("expected boarding-leg departure 12:00, got %s", result.DepartureAt)
		}
		if result.FromStation != "Arena" || result.ToStation != "Edge" {
			t.Fatalf("expected display names, got %s -> %s", result.FromStation, result.ToStation)
		}
		if result.ReservationID == "" || result.EntryToken == "" {
			t.Fatalf("expected generated ids, got %+v", result)
		}
		if len(h.writer.created) != 1 {
			t.Fatalf("expected one persisted booking, got %d", len(h.writer.created))
		}
		if h.writer.pays[0].Amount != 8000 || h.writer.pays[0].IsCaptured {
			t.Fatalf("expected uncaptured 8000 payment, got %+v", h.writer.pays[0])
		}
	})

	t.Run("fallback schedule is reported as recommend", func(t *testing.T) {
		h := newHarness()
		h.alloc.scheduleID = "ame-2"
		h.schedules.schedule.ID = "ame-2"
		svc := h.service()

		result, err := svc.Reserve(context.Background(), "u1", "ame-1", "A", "E", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != StatusRecommend {
			t.Fatalf("expected status %s, got %s", StatusRecommend, result.Status)
		}
		if result.ScheduleID != "ame-2" {
			t.Fatalf("expected schedule ame-2, got %s", result.ScheduleID)
		}
	})

	t.Run("return journey boards on the return leg", func(t *testing.T) {
		h := newHarness()
		svc := h.service()

		result, err := svc.Reserve(context.Background(), "u1", "ame-1", "E", "C", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.DepartureAt != "12:40" {
			t.Fatalf("expected E->D departure 12:40, got %s", result.DepartureAt)
		}
	})

	t.Run("failed persist releases the claimed seats", func(t *testing.T) {
		h := newHarness()
		h.writer.err = errors.New("deadlock")
		svc := h.service()

		if _, err := svc.Reserve(context.Background(), "u1", "ame-1", "A", "E", 2); err == nil {
			t.Fatalf("expected error from failed persist")
		}
		if got := h.releaser.released["ame-1"]; len(got) != 2 {
			t.Fatalf("expected 2 released seats, got %v", got)
		}
	})

	t.Run("rejects invalid journeys", func(t *testing.T) {
		h := newHarness()
		svc := h.service()

		if _, err := svc.Reserve(context.Background(), "u1", "ame-1", "A", "A", 1); err == nil {
			t.Fatalf("expected error for zero-length journey")
		}
		if _, err := svc.Reserve(context.Background(), "u1", "ame-1", "X", "E", 1); err == nil {
			t.Fatalf("expected error for unknown station")
		}
	})
}

func TestPurchase(t *testing.T) {
	t.Parallel()

	t.Run("accepted capture issues the ticket", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", false)
		svc := h.service()

		result, err := svc.Purchase(context.Background(), "u1", "r1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != "success" {
			t.Fatalf("expected success, got %s", result.Status)
		}
		if result.EntryToken != "tok-1" {
			t.Fatalf("expected entry token tok-1, got %s", result.EntryToken)
		}
		if result.QRCodeURL != "/api/qr/r1.png" {
			t.Fatalf("unexpected qr url %s", result.QRCodeURL)
		}
		if !h.payments.byReservation["r1"].IsCaptured {
			t.Fatalf("expected payment captured")
		}
		if len(h.events) != 1 || h.events[0].Event != queue.EventBookingConfirmed {
			t.Fatalf("expected one confirmed event, got %v", h.events)
		}
	})

	t.Run("declined capture releases seats and stays uncaptured", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", false)
		h.capturer.result = payment.CaptureResult{Status: "declined", Message: "Payment was declined"}
		svc := h.service()

		result, err := svc.Purchase(context.Background(), "u1", "r1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Status != "failed" {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.EntryToken != "" || result.QRCodeURL != "" {
			t.Fatalf("expected empty token and qr on decline, got %+v", result)
		}
		if h.payments.byReservation["r1"].IsCaptured {
			t.Fatalf("declined payment must stay uncaptured")
		}
		if got := h.releaser.released["ame-1"]; len(got) != 2 {
			t.Fatalf("expected 2 released seats, got %v", got)
		}
		if len(h.events) != 0 {
			t.Fatalf("declined capture must not emit events, got %v", h.events)
		}
	})

	t.Run("retried decline releases the seats only once", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", false)
		h.capturer.result = payment.CaptureResult{Status: "declined", Message: "Payment was declined"}
		svc := h.service()

		for i := 0; i < 3; i++ {
			result, err := svc.Purchase(context.Background(), "u1", "r1")
			if err != nil {
				t.Fatalf("retry %d: expected no error, got %v", i, err)
			}
			if result.Status != "failed" {
				t.Fatalf("retry %d: expected failed, got %s", i, result.Status)
			}
		}
		if got := h.releaser.released["ame-1"]; len(got) != 2 {
			t.Fatalf("expected seats released exactly once, got %v", got)
		}
	})

	t.Run("foreign reservation is rejected", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "someone-else", "tok-1", false)
		svc := h.service()

		if _, err := svc.Purchase(context.Background(), "u1", "r1"); !errors.Is(err, ErrInvalidReservation) {
			t.Fatalf("expected ErrInvalidReservation, got %v", err)
		}
	})

	t.Run("unknown reservation is rejected", func(t *testing.T) {
		h := newHarness()
		svc := h.service()

		if _, err := svc.Purchase(context.Background(), "u1", "nope"); !errors.Is(err, ErrInvalidReservation) {
			t.Fatalf("expected ErrInvalidReservation, got %v", err)
		}
	})
}

func TestEntry(t *testing.T) {
	t.Parallel()

	t.Run("valid token passes the gate once", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		svc := h.service()

		status, err := svc.Entry(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != EntrySuccess {
			t.Fatalf("expected %s, got %s", EntrySuccess, status)
		}
		if !h.entries.entered["r1"] {
			t.Fatalf("expected entry recorded")
		}

		// Scanning the same QR again succeeds without a second record.
		if status, err = svc.Entry(context.Background(), "tok-1"); err != nil || status != EntrySuccess {
			t.Fatalf("expected idempotent re-entry, got (%s, %v)", status, err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		h := newHarness()
		svc := h.service()

		if _, err := svc.Entry(context.Background(), "bogus"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("departed train refuses entry without a record", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		h.clock = fixedSimClock{now: "12:10"} // past the 12:00 departure
		svc := h.service()

		status, err := svc.Entry(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != EntryDeparted {
			t.Fatalf("expected %s, got %s", EntryDeparted, status)
		}
		if h.entries.entered["r1"] {
			t.Fatalf("departed entry must not be recorded")
		}
	})
}

func TestRefund(t *testing.T) {
	t.Parallel()

	t.Run("captured reservation refunds and returns seats", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		pay := h.payments.byReservation["r1"]
		if pay.IsCaptured || !pay.IsRefunded {
			t.Fatalf("expected refunded payment, got %+v", pay)
		}
		if got := h.releaser.released["ame-1"]; len(got) != 2 {
			t.Fatalf("expected 2 released seats, got %v", got)
		}
		if len(h.events) != 1 || h.events[0].Event != queue.EventBookingRefunded {
			t.Fatalf("expected one refunded event, got %v", h.events)
		}
	})

	t.Run("refund is not repeatable", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); err != nil {
			t.Fatalf("first refund failed: %v", err)
		}
		if err := svc.Refund(context.Background(), "u1", "r1"); !errors.Is(err, ErrNotCaptured) {
			t.Fatalf("expected ErrNotCaptured on second refund, got %v", err)
		}
		if got := h.releaser.released["ame-1"]; len(got) != 2 {
			t.Fatalf("seats must be released exactly once, got %v", got)
		}
	})

	t.Run("uncaptured payment cannot be refunded", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", false)
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); !errors.Is(err, ErrNotCaptured) {
			t.Fatalf("expected ErrNotCaptured, got %v", err)
		}
	})

	t.Run("entered reservation cannot be refunded", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		h.entries.entered["r1"] = true
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); !errors.Is(err, ErrAlreadyEntered) {
			t.Fatalf("expected ErrAlreadyEntered, got %v", err)
		}
		if h.payments.byReservation["r1"].IsRefunded {
			t.Fatalf("payment must stay captured after rejected refund")
		}
	})

	t.Run("entry wins over capture state", func(t *testing.T) {
		// Entry never requires capture, so a passenger can pass the
		// gate on an uncaptured reservation and then ask for a
		// refund. The entry must decide the outcome, not the
		// payment state.
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", false)
		h.entries.entered["r1"] = true
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); !errors.Is(err, ErrAlreadyEntered) {
			t.Fatalf("expected ErrAlreadyEntered, got %v", err)
		}
	})

	t.Run("foreign reservation", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "someone-else", "tok-1", true)
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); !errors.Is(err, ErrInvalidReservation) {
			t.Fatalf("expected ErrInvalidReservation, got %v", err)
		}
	})

	t.Run("after departure the money returns but the seats do not", func(t *testing.T) {
		h := newHarness()
		h.seedBooking("r1", "u1", "tok-1", true)
		h.clock = fixedSimClock{now: "12:30"} // past the 12:00 departure
		svc := h.service()

		if err := svc.Refund(context.Background(), "u1", "r1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !h.payments.byReservation["r1"].IsRefunded {
			t.Fatalf("expected refunded payment")
		}
		if got := h.releaser.released["ame-1"]; len(got) != 0 {
			t.Fatalf("departed seats must not return to the pool, got %v", got)
		}
	})
}
