package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipedia/internal/core/apperr"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps the error taxonomy to an HTTP response. Internal
// detail is logged, not sent.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	respondJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// pathID parses the {id} route variable. An id that does not parse
// resolves the same way as one that does not exist.
func pathID(r *http.Request, notFoundMessage string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, notFoundMessage)
	}
	return id, nil
}
