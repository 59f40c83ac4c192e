package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Archer110/nexus/internal/breaker"
	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type OutOfStockResponse struct {
	ErrorResponse
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context(), log).WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, status int, code, message string) {
	respondJSON(w, r, log, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondServiceError maps errors returned by the service layer to HTTP
// responses. Unknown errors are logged and hidden behind a 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var vErr *domain.ValidationError
	var oos *domain.OutOfStockError

	switch {
	case errors.As(err, &vErr):
		respondJSON(w, r, log, http.StatusBadRequest, ErrorResponse{
			Error:   vErr.Error(),
			Code:    "validation_error",
			Details: vErr.Field,
		})
	case errors.As(err, &oos):
		respondJSON(w, r, log, http.StatusConflict, OutOfStockResponse{
			ErrorResponse: ErrorResponse{Error: oos.Error(), Code: "out_of_stock"},
			ProductID:     oos.ProductID,
			Requested:     oos.Requested,
			Available:     oos.Available,
		})
	case domain.IsNotFound(err):
		respondError(w, r, log, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		respondError(w, r, log, http.StatusConflict, "illegal_transition", err.Error())
	case breaker.IsOpen(err):
		respondError(w, r, log, http.StatusServiceUnavailable, "service_unavailable", "catalog temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, log, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logger.FromContext(r.Context(), log).WithError(err).Error("request failed")
		respondError(w, r, log, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeJSON reads a size-limited JSON body into dst. Unknown fields are
// rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("body larger than %d bytes", maxBytes)
		}
		if errors.Is(err, io.EOF) {
			return errors.New("body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
