package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	"github.com/nekogravitycat/classroom-booking-backend/internal/api"
	"github.com/nekogravitycat/classroom-booking-backend/internal/auth"
	"github.com/nekogravitycat/classroom-booking-backend/internal/conflict"
	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/classroom-booking-backend/internal/reservation"
	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	"github.com/nekogravitycat/classroom-booking-backend/internal/schedule"
)

// Config holds the dependencies and settings required to start the application.
// A nil DBPool runs every module on its in-memory repository.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	Rules        reservation.Rules
	Catalog      people.Catalog
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
	Tracer       trace.Tracer
	// Clock overrides time.Now for the reservation service.
	Clock func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router       *gin.Engine
	JWTManager   *auth.JWTManager
	Metrics      *metrics.Metrics
	Rooms        room.Service
	People       people.Service
	Activities   activity.Service
	Schedule     schedule.Service
	Reservations reservation.Service
}

type repositories struct {
	rooms        room.Repository
	people       people.Repository
	activities   activity.Repository
	slots        schedule.Repository
	reservations reservation.Store
}

func newRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		return repositories{
			rooms:        room.NewMemoryRepository(),
			people:       people.NewMemoryRepository(),
			activities:   activity.NewMemoryRepository(),
			slots:        schedule.NewMemoryRepository(),
			reservations: reservation.NewMemoryStore(),
		}
	}
	return repositories{
		rooms:        room.NewPgxRepository(pool),
		people:       people.NewPgxRepository(pool),
		activities:   activity.NewPgxRepository(pool),
		slots:        schedule.NewPgxRepository(pool),
		reservations: reservation.NewPgxStore(pool),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	rules := cfg.Rules
	switch {
	case rules == (reservation.Rules{}):
		rules = reservation.DefaultRules()
	case rules.Location == nil:
		rules.Location = time.UTC
	}

	repos := newRepositories(cfg.DBPool)

	// Room Module
	roomService := room.NewService(repos.rooms)

	// People Module
	peopleService := people.NewService(repos.people, cfg.Catalog)

	// Activity Module
	activityService := activity.NewService(repos.activities)

	// Recurring Schedule Module
	scheduleService := schedule.NewService(repos.slots, roomService)

	// Reservation Module
	detector := conflict.NewDetector(reservation.OccupantSource(repos.reservations), repos.slots, rules.Location)
	opts := []reservation.Option{
		reservation.WithLogger(cfg.Logger.With().Str("module", "reservation").Logger()),
		reservation.WithMetrics(m),
	}
	if cfg.Tracer != nil {
		opts = append(opts, reservation.WithTracer(cfg.Tracer))
	}
	if cfg.Clock != nil {
		opts = append(opts, reservation.WithClock(cfg.Clock))
	}
	reservationService := reservation.NewService(
		repos.reservations,
		roomService,
		peopleService,
		activityService,
		detector,
		rules,
		opts...,
	)

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             cfg.Logger,
		Metrics:            m,
		Location:           rules.Location,
		RoomService:        roomService,
		PeopleService:      peopleService,
		ActivityService:    activityService,
		ScheduleService:    scheduleService,
		ReservationService: reservationService,
		JWTManager:         jwtManager,
		HealthCheck:        healthCheck(cfg.DBPool),
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:       router,
		JWTManager:   jwtManager,
		Metrics:      m,
		Rooms:        roomService,
		People:       peopleService,
		Activities:   activityService,
		Schedule:     scheduleService,
		Reservations: reservationService,
	}
}

func healthCheck(pool *pgxpool.Pool) func(ctx context.Context) error {
	if pool == nil {
		return func(context.Context) error { return nil }
	}
	return pool.Ping
}
