package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/spell-planner/internal/errors"
)

const (
	maxBodyBytes      = 1 << 20
	retryAfterSeconds = "1"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the error code to an HTTP status. Retryable failures
// carry a Retry-After hint and internal messages are not sent to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			append([]any{"method", r.Method, "path", r.URL.Path}, errors.LogAttrs(err)...)...)
	}

	msg := errors.GetMessage(err)
	if !code.Exposed() {
		msg = "internal error"
	}
	if code.Retryable() {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    code.String(),
		Message: msg,
		Meta:    errors.GetMeta(err),
	}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid request body")
	}
	return nil
}

// pathParam returns the unescaped route parameter
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be an integer", name).WithMeta("value", raw)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidArgumentf("%s must be a boolean", name).WithMeta("value", raw)
	}
	return v, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}
