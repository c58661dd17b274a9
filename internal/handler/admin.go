package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/clock"
	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// AdminHandler serves the operator dashboard: revenue stats, per-train
// sales and fleet expansion.  All routes except the model listing sit
// behind the admin_name cookie.
type AdminHandler struct {
	Payments  *repository.PaymentRepo  // revenue rollups
	Trains    *repository.TrainRepo    // train and model records
	Schedules *repository.ScheduleRepo // timetable rows for new trains
	SeatRows  *repository.SeatRowRepo  // per-leg availability seeding
	Inventory inventory.Store          // backend-specific seat pool seeding
}

// NewAdminHandler constructs an AdminHandler.  All dependencies must
// be non-nil.
func NewAdminHandler(
	payments *repository.PaymentRepo,
	trains *repository.TrainRepo,
	schedules *repository.ScheduleRepo,
	seatRows *repository.SeatRowRepo,
	inv inventory.Store,
) *AdminHandler {
	if payments == nil || trains == nil || schedules == nil || seatRows == nil || inv == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Payments:  payments,
		Trains:    trains,
		Schedules: schedules,
		SeatRows:  seatRows,
		Inventory: inv,
	}
}

// Stats handles GET /api/admin/stats.  Sales only count once the
// passenger has passed the gate; refunds are totalled separately.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	totalSales, err := h.Payments.TotalSales(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	totalRefunds, err := h.Payments.TotalRefunds(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_sales":   totalSales,
		"total_refunds": totalRefunds,
	})
}

// TrainSales handles GET /api/admin/train_sales with the per-train
// revenue rollup.
func (h *AdminHandler) TrainSales(c echo.Context) error {
	sales, err := h.Payments.ListTrainSales(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"trains": sales})
}

// TrainModels handles GET /api/train_models.  The listing feeds the
// add-train form and needs no session.
func (h *AdminHandler) TrainModels(c echo.Context) error {
	names, err := h.Trains.ListModelNames(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"model_names": names})
}

// AddTrain handles POST /api/admin/add_train.  It creates a train of
// an existing model plus one schedule per requested departure time,
// with the remaining seven leg departures spaced ten simulated minutes
// apart.  Every new schedule gets its seat-row availability records
// and its inventory pool seeded before the response returns, so it is
// bookable immediately.
func (h *AdminHandler) AddTrain(c echo.Context) error {
	var body struct {
		TrainName      string   `json:"train_name"`
		ModelName      string   `json:"model_name"`
		DepartureTimes []string `json:"departure_times"`
	}
	if err := c.Bind(&body); err != nil || body.TrainName == "" || body.ModelName == "" || len(body.DepartureTimes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "train_name, model_name and departure_times are required"})
	}

	ctx := c.Request().Context()
	trainModel, err := h.Trains.ModelByName(ctx, body.ModelName)
	if errors.Is(err, repository.ErrTrainModelNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown train model"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	if trainModel.SeatColumns < 1 || trainModel.SeatColumns > 5 || trainModel.SeatRows < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unusable train model"})
	}

	train := &model.Train{Name: body.TrainName, Model: body.ModelName}
	if err := h.Trains.Create(ctx, train); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}

	for i, departure := range body.DepartureTimes {
		schedule := &model.Schedule{
			ID:                     fmt.Sprintf("%s-%d", train.Name, i+1),
			TrainID:                train.ID,
			DepartureAtStationAToB: departure,
			DepartureAtStationBToC: clock.AddMinutes(departure, 10),
			DepartureAtStationCToD: clock.AddMinutes(departure, 20),
			DepartureAtStationDToE: clock.AddMinutes(departure, 30),
			DepartureAtStationEToD: clock.AddMinutes(departure, 40),
			DepartureAtStationDToC: clock.AddMinutes(departure, 50),
			DepartureAtStationCToB: clock.AddMinutes(departure, 60),
			DepartureAtStationBToA: clock.AddMinutes(departure, 70),
		}
		if err := h.Schedules.Create(ctx, schedule); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
	}

	// Seed from the persisted timetable rather than the request, so
	// the availability records always match what was written.
	schedules, err := h.Schedules.ListByTrain(ctx, train.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	for i := range schedules {
		if err := h.seedSchedule(c, &schedules[i], train, trainModel); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// seedSchedule writes the per-leg seat-row availability records for a
// fresh schedule and hands the seat pool to the inventory backend.
func (h *AdminHandler) seedSchedule(c echo.Context, schedule *model.Schedule, train *model.Train, trainModel *model.TrainModel) error {
	ctx := c.Request().Context()

	rows := make([]model.SeatRowAvailability, 0, trainModel.SeatRows*len(model.ScheduleLegs))
	for row := 1; row <= trainModel.SeatRows; row++ {
		for _, leg := range model.ScheduleLegs {
			rows = append(rows, model.SeatRowAvailability{
				TrainID:       train.ID,
				ScheduleID:    schedule.ID,
				FromStationID: leg.From,
				ToStationID:   leg.To,
				SeatRow:       row,
				AIsAvailable:  trainModel.SeatColumns >= 1,
				BIsAvailable:  trainModel.SeatColumns >= 2,
				CIsAvailable:  trainModel.SeatColumns >= 3,
				DIsAvailable:  trainModel.SeatColumns >= 4,
				EIsAvailable:  trainModel.SeatColumns >= 5,
			})
		}
	}
	if err := h.SeatRows.CreateBulk(ctx, rows); err != nil {
		return err
	}
	return h.Inventory.Seed(ctx, schedule.ID, trainModel.SeatRows, trainModel.SeatColumns)
}
