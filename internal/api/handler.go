package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/eugenenazirov/course-metadata/internal/course"
	"github.com/eugenenazirov/course-metadata/internal/metrics"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	fieldName        = "name"
	fieldDescription = "description"
)

// CourseSource is the read-only view of course metadata the handlers serve.
type CourseSource interface {
	course.Provider
	DecodedDescription(locale string) (string, error)
	Names() map[string]string
	Descriptions() map[string]string
	Locales() []string
	Activity() course.Activity
}

// Handler wires the course record into HTTP handlers.
type Handler struct {
	course  CourseSource
	metrics *metrics.Collector

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLookupMetrics records every localized lookup on the collector.
func WithLookupMetrics(collector *metrics.Collector) HandlerOption {
	return func(h *Handler) {
		h.metrics = collector
	}
}

// NewHandler constructs a Handler serving the provided course record.
func NewHandler(src CourseSource, opts ...HandlerOption) *Handler {
	h := &Handler{
		course: src,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := courseResponse{
		CourseID:          h.course.ID(),
		Locales:           h.course.Locales(),
		CourseName:        h.course.Names(),
		CourseDescription: h.course.Descriptions(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.course.Activity())
}

func (h *Handler) handleGetName(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")
	value, err := h.course.Name(locale)
	h.writeLookup(w, fieldName, locale, value, false, err)
}

func (h *Handler) handleGetDescription(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")

	decoded := false
	if raw := r.URL.Query().Get("decoded"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", "decoded must be a boolean")
			return
		}
		decoded = parsed
	}

	var (
		value string
		err   error
	)
	if decoded {
		value, err = h.course.DecodedDescription(locale)
	} else {
		value, err = h.course.Description(locale)
	}
	h.writeLookup(w, fieldDescription, locale, value, decoded, err)
}

func (h *Handler) writeLookup(w http.ResponseWriter, field, locale, value string, decoded bool, err error) {
	if err != nil {
		if errors.Is(err, course.ErrLocaleNotFound) {
			h.metrics.ObserveLookup(field, metrics.OutcomeMiss)
			suggestion := fmt.Sprintf("Available locales: %v", h.course.Locales())
			writeError(w, http.StatusNotFound, "Locale not found", err.Error(), suggestion)
			return
		}
		writeInternalError(w, err)
		return
	}

	h.metrics.ObserveLookup(field, metrics.OutcomeHit)
	writeJSON(w, http.StatusOK, localizedValueResponse{
		CourseID: h.course.ID(),
		Field:    field,
		Locale:   locale,
		Value:    value,
		Decoded:  decoded,
	})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type courseResponse struct {
	CourseID          string            `json:"courseId"`
	Locales           []string          `json:"locales"`
	CourseName        map[string]string `json:"courseName"`
	CourseDescription map[string]string `json:"courseDescription"`
}

type localizedValueResponse struct {
	CourseID string `json:"courseId"`
	Field    string `json:"field"`
	Locale   string `json:"locale"`
	Value    string `json:"value"`
	Decoded  bool   `json:"decoded,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
