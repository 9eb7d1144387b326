// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"newsportal/internal/middleware"
	"newsportal/internal/taxonomy"
)

// maxBodyBytes caps admin request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &taxonomy.ValidationError{Message: "request body too large"}
		case errors.Is(err, io.EOF):
			return &taxonomy.ValidationError{Message: "request body is empty"}
		}
		return &taxonomy.ValidationError{Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}

// errorStatus maps a domain error to its HTTP status and the message shown
// to the client. Store failures stay opaque.
func errorStatus(err error) (int, string) {
	var (
		ve *taxonomy.ValidationError
		ce *taxonomy.ConflictError
		cy *taxonomy.CycleError
		nf *taxonomy.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &cy):
		return http.StatusBadRequest, cy.Error()
	case errors.As(err, &ce):
		return http.StatusConflict, ce.Error()
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeDomainError logs unexpected failures and writes the mapped error.
func writeDomainError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, text := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
	} else {
		slog.Debug(msg, "error", err, "status", status)
	}
	writeError(w, status, text)
}

// actionOf normalizes the action discriminator of an admin request.
func actionOf(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
