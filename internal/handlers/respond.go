// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API. Handlers decode the request,
// call one service operation and translate its error kind into a status
// code.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"portfolio/internal/apperr"
	"portfolio/internal/logger"
)

// maxBodyBytes caps JSON request bodies. Post and project images travel
// base64-encoded inside the body.
const maxBodyBytes = 24 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error      string             `json:"error"`
	Violations []apperr.Violation `json:"violations,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeAppError maps a service error onto a status code. Persistence and
// unexpected errors are logged and answered with a generic message.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.Kind(err) {
	case apperr.KindValidation:
		ve, _ := apperr.AsValidation(err)
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Violations: ve.Violations})
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, "not found")
	case apperr.KindIllegalTransition:
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Errorw("request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"kind", apperr.Kind(err),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the body into dst. It answers 400 or 413 itself and
// reports false when the handler should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// pathID parses the UUID route parameter name, answering 404 when it is
// malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return uuid.Nil, false
	}
	return id, true
}
