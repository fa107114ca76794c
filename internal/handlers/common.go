package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, models.NewSuccessResponse(status, message, data))
}

// writeError maps a service error onto its HTTP status and envelope.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	writeJSON(w, status, models.NewErrorResponse(status, apperr.PublicMessage(err)))
}
