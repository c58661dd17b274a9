package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/allocator"
	"github.com/iliyamo/train-ticket-reservation/internal/booking"
	"github.com/iliyamo/train-ticket-reservation/internal/clock"
	"github.com/iliyamo/train-ticket-reservation/internal/config"
	"github.com/iliyamo/train-ticket-reservation/internal/database"
	"github.com/iliyamo/train-ticket-reservation/internal/handler"
	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/payment"
	"github.com/iliyamo/train-ticket-reservation/internal/queue"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/router"
	queuepublisher "github.com/iliyamo/train-ticket-reservation/internal/service"
)

func main() {
	// .env is optional; containers inject real environment variables.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	trains := repository.NewTrainRepo(db)
	schedules := repository.NewScheduleRepo(db)
	seatRows := repository.NewSeatRowRepo(db)
	locks := repository.NewLockRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	entries := repository.NewEntryRepo(db)
	settings := repository.NewSettingRepo(db)

	var store inventory.Store
	if cfg.InventoryBackend == config.InventoryRedis {
		rdb, err := config.NewRedisClient()
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer rdb.Close()
		store = inventory.NewAtomicQueueInventory(rdb, seatRows)
	} else {
		store = inventory.NewLockedRelationalInventory(locks, seatRows)
	}

	wall := clock.NewSystem()
	holder := newClockHolder(settings, wall)

	alloc := allocator.New(schedules, store)
	writer := booking.NewSQLWriter(db, reservations, payments)
	payClient := payment.NewClient(cfg.PaymentHost, cfg.PaymentPort)

	svc := booking.NewService(
		alloc,
		schedules,
		writer,
		reservations,
		payments,
		entries,
		users,
		store,
		payClient,
		holder,
		queuepublisher.PublishBookingEvent,
	)

	e := echo.New()
	e.HideBanner = true
	router.Register(e,
		users,
		handler.NewInitializeHandler(cfg.InitScript, settings, payClient, schedules, store, holder, wall),
		handler.NewAuthHandler(users, wall),
		handler.NewScheduleHandler(schedules, seatRows, holder),
		handler.NewBookingHandler(svc, users, reservations),
		handler.NewAdminHandler(payments, trains, schedules, seatRows, store),
	)

	// Sales-log consumer; reconnects on its own, so a failure here
	// only costs the log, never bookings.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, inventory=%s)", addr, cfg.Env, cfg.InventoryBackend)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newClockHolder anchors the simulated clock from the settings row.
// Before the first /api/initialize there may be no row yet; the clock
// then starts from boot time and is replaced on initialize.
func newClockHolder(settings *repository.SettingRepo, wall clock.Clock) *clock.Holder {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	initializedAt, err := settings.InitializedAt(ctx)
	if err != nil {
		log.Printf("no settings row yet, anchoring clock at boot: %v", err)
		initializedAt = wall.Now()
	}
	return clock.NewHolder(clock.NewSimulated(initializedAt, wall))
}
