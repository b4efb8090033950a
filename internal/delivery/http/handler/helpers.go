package handler

import (
	"net/http"
	"strconv"

	"clinic-booking-service/internal/delivery/http/middleware"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/pkg/apperror"
	"clinic-booking-service/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// pathID reads a positive integer path variable, writing a 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// requireActor reads the authenticated actor, writing a 401 when there is none
func requireActor(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return entity.Actor{}, false
	}
	return actor, true
}

// writeError maps err onto the response. Errors outside the apperror taxonomy
// are logged here since the client only sees a generic 500.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error, action string) {
	if _, ok := apperror.As(err); !ok {
		log.Errorf("Failed to %s: %+v", action, err)
	}
	response.FromError(w, err)
}
