package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/classroom-booking-backend/internal/activity"
	activityHttp "github.com/nekogravitycat/classroom-booking-backend/internal/activity/http"
	"github.com/nekogravitycat/classroom-booking-backend/internal/auth"
	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	peopleHttp "github.com/nekogravitycat/classroom-booking-backend/internal/people/http"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/classroom-booking-backend/internal/reservation"
	reservationHttp "github.com/nekogravitycat/classroom-booking-backend/internal/reservation/http"
	"github.com/nekogravitycat/classroom-booking-backend/internal/room"
	roomHttp "github.com/nekogravitycat/classroom-booking-backend/internal/room/http"
	"github.com/nekogravitycat/classroom-booking-backend/internal/schedule"
	scheduleHttp "github.com/nekogravitycat/classroom-booking-backend/internal/schedule/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction       bool
	ProdOrigins        string
	Logger             zerolog.Logger
	Metrics            *metrics.Metrics
	Location           *time.Location
	RoomService        room.Service
	PeopleService      people.Service
	ActivityService    activity.Service
	ScheduleService    schedule.Service
	ReservationService reservation.Service
	JWTManager         *auth.JWTManager
	HealthCheck        func(ctx context.Context) error
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: attaches a request scoped zerolog logger and logs each request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.Middleware(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Operational endpoints
	r.GET("/healthz", healthz(cfg.HealthCheck))
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	peopleHandler := peopleHttp.NewHandler(cfg.PeopleService)
	activityHandler := activityHttp.NewHandler(cfg.ActivityService)
	scheduleHandler := scheduleHttp.NewHandler(cfg.ScheduleService)
	reservationHandler := reservationHttp.NewHandler(cfg.ReservationService, cfg.Location)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware)
		peopleHttp.RegisterRoutes(v1, peopleHandler, authMiddleware)
		activityHttp.RegisterRoutes(v1, activityHandler, authMiddleware)
		scheduleHttp.RegisterRoutes(v1, scheduleHandler, authMiddleware)
		reservationHttp.RegisterRoutes(v1, reservationHandler, authMiddleware)
	}

	return r
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
