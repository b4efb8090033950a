package handler

import (
	"context"
	"net/http"
	"time"

	"clinic-booking-service/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

// Check pings the database and Redis concurrently
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "ok"}
	var dbErr, redisErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(gctx)
		}
		dbErr = err
		return nil
	})
	g.Go(func() error {
		redisErr = h.redisClient.Ping(gctx).Err()
		return nil
	})
	g.Wait()

	if dbErr != nil {
		h.log.Warnf("Health check: database unavailable: %+v", dbErr)
		status["database"] = "unavailable"
	}
	if redisErr != nil {
		h.log.Warnf("Health check: redis unavailable: %+v", redisErr)
		status["redis"] = "unavailable"
	}

	if dbErr != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Response{Success: false, Message: "Service unavailable", Data: status})
		return
	}

	// Redis only backs the capacity guard and tokens; the service still answers without it
	response.Success(w, http.StatusOK, "ok", status)
}
