package handler

import (
	"context"
	"net/http"

	"clinic-booking-service/pkg/response"

	"github.com/sirupsen/logrus"
)

// CapacityResyncer rebuilds the daily capacity counters from the database
type CapacityResyncer interface {
	Resync(ctx context.Context) (int, error)
}

type CapacityHandler struct {
	resyncer CapacityResyncer
	log      *logrus.Logger
}

func NewCapacityHandler(resyncer CapacityResyncer, log *logrus.Logger) *CapacityHandler {
	return &CapacityHandler{
		resyncer: resyncer,
		log:      log,
	}
}

// Resync
// @Router /admin/capacity/resync [post]
func (h *CapacityHandler) Resync(w http.ResponseWriter, r *http.Request) {
	synced, err := h.resyncer.Resync(r.Context())
	if err != nil {
		h.log.Errorf("Failed to resync capacity counters: %+v", err)
		response.Error(w, http.StatusServiceUnavailable, "CAPACITY_SYNC_FAILED", "Failed to resync capacity counters")
		return
	}

	response.Success(w, http.StatusOK, "Capacity counters resynced", map[string]int{"doctor_days": synced})
}
