package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/handler"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// Register wires every endpoint onto the Echo instance.  Routes fall
// into three tiers: public (no cookie), passenger (user_name cookie
// via UserAuth) and admin (admin_name cookie via AdminAuth).  The gate
// scanner calls /api/entry without any session, so it stays public.
func Register(
	e *echo.Echo,
	users *repository.UserRepo,
	init *handler.InitializeHandler,
	auth *handler.AuthHandler,
	schedules *handler.ScheduleHandler,
	bookings *handler.BookingHandler,
	admin *handler.AdminHandler,
) {
	// Health check for load balancers and the contest supervisor.
	e.GET("/healthz", handler.Health)

	// Public API.
	e.POST("/api/initialize", init.Initialize)
	e.GET("/api/current_time", schedules.CurrentTime)
	e.GET("/api/stations", schedules.Stations)
	e.GET("/api/schedules", schedules.ListSchedules)
	e.GET("/api/train_models", admin.TrainModels)
	e.POST("/api/login", auth.Login)
	e.POST("/api/logout", auth.Logout)
	e.POST("/api/entry", bookings.Entry)

	// Passenger API: requires a live user_name session.
	user := e.Group("/api", middleware.UserAuth(users))
	user.GET("/session", auth.Session)
	user.GET("/waiting_status", auth.WaitingStatus)
	user.GET("/purchased_tickets", bookings.PurchasedTickets)
	user.POST("/reserve", bookings.Reserve)
	user.POST("/purchase", bookings.Purchase)
	user.POST("/refund", bookings.Refund)

	// Admin API: requires the admin_name cookie and the admin flag.
	adm := e.Group("/api/admin", middleware.AdminAuth(users))
	adm.GET("/stats", admin.Stats)
	adm.GET("/train_sales", admin.TrainSales)
	adm.POST("/add_train", admin.AddTrain)
}
