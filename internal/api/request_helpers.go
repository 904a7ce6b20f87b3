package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/editorialhq/editorial-api/internal/api/shared"
	"github.com/editorialhq/editorial-api/internal/domain"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
	"github.com/editorialhq/editorial-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getCallerFromContext extracts the authenticated caller from the request
// context. The caller is placed there by the authentication middleware.
func getCallerFromContext(r *http.Request) (domain.Caller, bool) {
	return shared.GetCaller(r.Context())
}

// getPathUUID extracts a UUID from the URL path parameters.
// It parses and validates the UUID, handling common error cases.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handleCallerAndPathUUID extracts both the caller from context and a UUID
// from the path parameters. It writes an error response if either
// extraction fails and reports success through the boolean.
func handleCallerAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.Caller, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	caller, ok := getCallerFromContext(r)
	if !ok {
		log.Warn("caller not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return domain.Caller{}, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.Caller{}, uuid.Nil, false
	}

	return caller, pathID, true
}

// activityEntryFromRequest stamps the audit entry with the request's
// network context. RealIP middleware has already normalized RemoteAddr.
func activityEntryFromRequest(r *http.Request, entry service.ActivityEntry) service.ActivityEntry {
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i > 0 {
		ip = ip[:i]
	}
	entry.IPAddress = ip
	entry.UserAgent = r.UserAgent()
	return entry
}
