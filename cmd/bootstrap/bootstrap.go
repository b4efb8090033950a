package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking-service/config"
	deliveryHttp "clinic-booking-service/internal/delivery/http"
	"clinic-booking-service/internal/delivery/http/handler"
	"clinic-booking-service/internal/delivery/http/middleware"
	"clinic-booking-service/internal/domain/policy"
	"clinic-booking-service/internal/infrastructure/cache"
	"clinic-booking-service/internal/infrastructure/database"
	"clinic-booking-service/internal/infrastructure/mail"
	"clinic-booking-service/internal/repository"
	"clinic-booking-service/internal/service"
	"clinic-booking-service/internal/usecase"
	"clinic-booking-service/pkg/jwt"
	"clinic-booking-service/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	capacityGuard *service.RedisCapacityGuard
	notifications *service.NotificationService
}

// LoadConfig sets up the logger and reads the configuration
func LoadConfig() (*config.Config, *logrus.Logger, error) {
	log := setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.App.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}
	log.Info("Configuration loaded successfully")

	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	// Postgres and Redis are both required, connect to them concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		db, err := database.NewPostgresConnection(cfg.DB, cfg.App)
		if err != nil {
			return err
		}
		app.DB = db
		return nil
	})
	g.Go(func() error {
		redisClient, err := cache.NewRedisClient(gctx, cfg.Redis)
		if err != nil {
			return err
		}
		app.RedisClient = redisClient
		return nil
	})
	if err := g.Wait(); err != nil {
		app.Close()
		return nil, err
	}

	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

// initializeServer wires every layer and creates the HTTP server
func (app *App) initializeServer() error {
	cfg, db, redisClient, log := app.Config, app.DB, app.RedisClient, app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	sender, err := mail.NewSender(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	app.notifications = service.NewNotificationService(db, log, sender, patientRepo, doctorRepo,
		cfg.Scheduling.NotificationWorkers, cfg.Scheduling.NotificationQueue)
	app.capacityGuard = service.NewRedisCapacityGuard(db, redisClient, log)
	auditService := service.NewAuditService(log, auditLogRepo)

	schedulePolicy := policy.Policy{LegacyCreateLimit: cfg.Scheduling.LegacyCreateLimit}

	// Initialize usecases
	verifier := usecase.NewCredentialVerifier(db, userRepo)
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, doctorRepo, patientRepo, verifier, auditService, jwtService, redisClient)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, userRepo, auditService, app.notifications)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, patientRepo, doctorRepo,
		auditService, app.capacityGuard, app.notifications, schedulePolicy, cfg.App.Location())
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService, log)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator, log)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, log)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, log)
	capacityHandler := handler.NewCapacityHandler(app.capacityGuard, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, patientHandler, doctorHandler, appointmentHandler,
		auditLogHandler, capacityHandler, healthHandler, authMiddleware, corsMiddleware)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// Run starts the background workers and the HTTP server, then blocks until
// SIGINT/SIGTERM or ctx is done and shuts everything down in order.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.notifications.Start()

	// A failed resync leaves the guard seeding lazily from the database
	if days, err := app.capacityGuard.Resync(ctx); err != nil {
		app.Log.Warnf("Failed to resync capacity counters: %+v", err)
	} else {
		app.Log.Infof("Capacity counters resynced for %d doctor days", days)
	}

	serverErr := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.Log.Info("Shutting down server...")
	case err := <-serverErr:
		runErr = fmt.Errorf("failed to start server: %w", err)
	}

	app.shutdown()

	return runErr
}

// shutdown drains HTTP traffic first so no request enqueues work after the
// workers stop, then closes the connections.
func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.notifications.Stop()
	app.capacityGuard.Stop()

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
