// Affinity - Product Affinity & Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/catalog"
	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/validation"
)

const defaultMaxBodyBytes = 1 << 20

// sanitizeLogValue escapes control characters so request values cannot
// forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes the envelope with an ETag over the encoded body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	if response.Metadata.Timestamp.IsZero() {
		response.Metadata.Timestamp = time.Now()
	}
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}

func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

// respondSuccess writes a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	respondJSON(w, r, status, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: models.Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondPage writes a page of recommendations with pagination metadata.
func respondPage(w http.ResponseWriter, r *http.Request, req recommend.PageRequest, page recommend.Page[recommend.Recommendation], start time.Time) {
	req = req.Normalize()
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   page,
		Metadata: models.Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
			Pagination:  models.NewPaginationInfo(req.PageNumber, req.PageSize, page.TotalCount),
		},
	})
}

// respondError writes an error envelope. err, when set, is logged and never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}

	respondJSON(w, r, status, &models.APIResponse{
		Status: models.StatusError,
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError writes a structured error, typically from validation.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	respondJSON(w, r, status, &models.APIResponse{
		Status: models.StatusError,
		Error:  apiErr,
	})
}

// respondDomainError maps a domain error to its HTTP status and code.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *events.ValidationError
	switch {
	case errors.Is(err, recommend.ErrInvalidInteraction):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), err)
	case errors.As(err, &verr):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, verr.Error(), err)
	case errors.Is(err, recommend.ErrBuildInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeBuildInProgress, "A graph build is already in progress", err)
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Catalog is unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", err)
	}
}

// validateRequest validates v with go-playground/validator.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSONBody decodes a size-limited JSON body into v.
func (h *Handler) decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	limit := h.config.Security.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// intQuery parses an integer query parameter; absent means def.
func intQuery(r *http.Request, key string, def int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// parseListQuery reads page and page_size. Sizes above the maximum are
// clamped by the composer; negative values are rejected.
func parseListQuery(r *http.Request) (models.ListQuery, *models.APIError) {
	var q models.ListQuery
	var err error
	if q.Page, err = intQuery(r, "page", 0); err != nil {
		return q, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	}
	if q.PageSize, err = intQuery(r, "page_size", 0); err != nil {
		return q, &models.APIError{Code: ErrCodeValidation, Message: err.Error()}
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		return q, apiErr
	}
	return q, nil
}

func pageRequest(q models.ListQuery) recommend.PageRequest {
	return recommend.PageRequest{PageNumber: q.Page, PageSize: q.PageSize}
}
