package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/clock"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// scheduleLeadMinutes is how far ahead of the simulated clock the
// schedule listing starts.  The lag between reserving and reaching the
// gate is large enough that anything sooner would depart before the
// passenger arrives.
const scheduleLeadMinutes = 120

// scheduleListLimit caps the number of schedules returned per request.
const scheduleListLimit = 10

// Availability signs shown on the timetable.
const (
	signLots = "lots"
	signFew  = "few"
	signNone = "none"
)

// ScheduleHandler serves the public timetable endpoints: the simulated
// clock, the station list and the schedule listing with per-leg
// availability signs.
type ScheduleHandler struct {
	Schedules *repository.ScheduleRepo // timetable rows
	SeatRows  *repository.SeatRowRepo  // per-leg availability counts
	Clock     *clock.Holder            // simulated application clock
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules *repository.ScheduleRepo, seatRows *repository.SeatRowRepo, clk *clock.Holder) *ScheduleHandler {
	if schedules == nil || seatRows == nil || clk == nil {
		panic("nil dependency passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: schedules, SeatRows: seatRows, Clock: clk}
}

// CurrentTime handles GET /api/current_time.  It reports the simulated
// time of day as "HH:MM".
func (h *ScheduleHandler) CurrentTime(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"current_time": h.Clock.CurrentTime()})
}

// Stations handles GET /api/stations.  The line is fixed, so the
// response never changes.
func (h *ScheduleHandler) Stations(c echo.Context) error {
	stations := make([]echo.Map, 0, len(model.Stations))
	for _, s := range model.Stations {
		stations = append(stations, echo.Map{"id": s.ID, "name": s.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"stations": stations})
}

// ListSchedules handles GET /api/schedules.  It returns up to
// scheduleListLimit schedules whose first departure is at least
// scheduleLeadMinutes past the simulated clock, each annotated with a
// per-leg availability sign and the per-leg departure times keyed by
// station display names ("Arena->Bridge" etc.).
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	ctx := c.Request().Context()
	earliest := clock.AddMinutes(h.Clock.CurrentTime(), scheduleLeadMinutes)

	schedules, err := h.Schedules.ListDepartingFrom(ctx, earliest, scheduleListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	out := make([]echo.Map, 0, len(schedules))
	for _, schedule := range schedules {
		trainModel, err := h.Schedules.ModelForSchedule(ctx, schedule.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
		capacity := trainModel.Capacity()

		availability := echo.Map{}
		departures := echo.Map{}
		times := schedule.Departures()
		for i, leg := range model.ScheduleLegs {
			available, err := h.SeatRows.AvailableForLeg(ctx, schedule.ID, leg.From, leg.To)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
			}
			key := model.StationName(leg.From) + "->" + model.StationName(leg.To)
			availability[key] = availabilitySign(available, capacity)
			departures[key] = times[i]
		}

		out = append(out, echo.Map{
			"id":           schedule.ID,
			"availability": availability,
			"departure_at": departures,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"schedules": out})
}

// availabilitySign buckets a leg's free-seat count into the sign shown
// on the timetable: none when sold out, few at 10% of capacity or
// less, lots otherwise.
func availabilitySign(available, total int) string {
	switch {
	case available == 0:
		return signNone
	case total > 0 && float64(available)/float64(total) <= 0.1:
		return signFew
	default:
		return signLots
	}
}
