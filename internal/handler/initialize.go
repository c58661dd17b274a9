package handler

import (
	"net/http"
	"os/exec"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/clock"
	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/payment"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// initializedAtLayout matches the benchmarker's expected timestamp
// format (microsecond precision, literal Z suffix).
const initializedAtLayout = "2006-01-02T15:04:05.000000Z"

// InitializeHandler resets the application to its pristine benchmark
// state: restore the seed dataset, reset the payment app, re-anchor
// the simulated clock and rebuild the inventory seat pools.
type InitializeHandler struct {
	Script    string                   // shell script restoring the seed dataset
	Settings  *repository.SettingRepo  // run anchor row
	Payment   *payment.Client          // payment app reset
	Schedules *repository.ScheduleRepo // schedule ids and models for reseeding
	Inventory inventory.Store          // backend-specific seat pools
	Clock     *clock.Holder            // simulated clock to re-anchor
	Wall      clock.Clock              // wall clock feeding the new anchor
}

// NewInitializeHandler constructs an InitializeHandler.
func NewInitializeHandler(
	script string,
	settings *repository.SettingRepo,
	pay *payment.Client,
	schedules *repository.ScheduleRepo,
	inv inventory.Store,
	clk *clock.Holder,
	wall clock.Clock,
) *InitializeHandler {
	if settings == nil || pay == nil || schedules == nil || inv == nil || clk == nil || wall == nil {
		panic("nil dependency passed to NewInitializeHandler")
	}
	return &InitializeHandler{
		Script:    script,
		Settings:  settings,
		Payment:   pay,
		Schedules: schedules,
		Inventory: inv,
		Clock:     clk,
		Wall:      wall,
	}
}

// Initialize handles POST /api/initialize.  The benchmarker calls it
// once before a run; the run officially starts at the initialized_at
// it returns, which also anchors the simulated clock at 00:00.
func (h *InitializeHandler) Initialize(c echo.Context) error {
	ctx := c.Request().Context()

	output, err := exec.CommandContext(ctx, h.Script).CombinedOutput()
	if err != nil {
		return c.String(http.StatusInternalServerError, "Failed to initialize: "+string(output))
	}

	if err := h.Payment.Initialize(ctx); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	initializedAt, err := h.Settings.Reset(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	h.Clock.Replace(clock.NewSimulated(initializedAt, h.Wall))

	// The dataset restore reverted every availability row, so the
	// backend seat pools must be rebuilt to match.
	ids, err := h.Schedules.ListIDs(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
	}
	for _, id := range ids {
		trainModel, err := h.Schedules.ModelForSchedule(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database error"})
		}
		if err := h.Inventory.Seed(ctx, id, trainModel.SeatRows, trainModel.SeatColumns); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "inventory seed failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"initialized_at": initializedAt.UTC().Format(initializedAtLayout),
		"app_language":   "go",
	})
}
