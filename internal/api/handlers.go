// Package api exposes the schema engine over HTTP: infer, diff, and
// validate endpoints backed by a store.SchemaStore for persistence.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bqschema/infer/internal/engine"
	"github.com/bqschema/infer/internal/store"
	"github.com/gorilla/mux"
)

type Handler struct {
	store store.SchemaStore
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

func NewHandler(s store.SchemaStore) *Handler {
	return &Handler{store: s}
}

// writeJSONError writes a structured JSON error response.
func (h *Handler) writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	errorResp := ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeJSONResponse writes a successful JSON response.
func (h *Handler) writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
		h.writeJSONError(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// InferRequest is the body of POST /v1/infer.
type InferRequest struct {
	SchemaName             string                   `json:"schema_name,omitempty"`
	Records                []map[string]interface{} `json:"records"`
	QuotedValuesAreStrings bool                     `json:"quoted_values_are_strings"`
	InferMode              bool                     `json:"infer_mode"`
	KeepNulls              bool                     `json:"keep_nulls"`
	SanitizeNames          bool                     `json:"sanitize_names"`
	PreserveInputSortOrder bool                     `json:"preserve_input_sort_order"`
	UseExisting            bool                     `json:"use_existing"`
}

type InferResponse struct {
	Schema  []engine.Field    `json:"schema"`
	Log     []engine.LogEntry `json:"log,omitempty"`
	Version int64             `json:"version,omitempty"`
}

func (h *Handler) Infer(w http.ResponseWriter, r *http.Request) {
	var req InferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(req.Records) == 0 {
		h.writeJSONError(w, "records must not be empty", http.StatusBadRequest)
		return
	}

	opts := engine.InferOptions{
		QuotedValuesAreStrings: req.QuotedValuesAreStrings,
		InferMode:              req.InferMode,
		KeepNulls:              req.KeepNulls,
		SanitizeNames:          req.SanitizeNames,
		PreserveInputSortOrder: req.PreserveInputSortOrder,
	}

	if req.UseExisting && req.SchemaName != "" {
		existing, err := h.store.Load(r.Context(), req.SchemaName)
		if err != nil {
			h.writeJSONError(w, fmt.Sprintf("no existing schema named %q", req.SchemaName), http.StatusNotFound)
			return
		}
		opts.ExistingSchema = existing.Schema
	}

	fields, entryLog := engine.InferFromRecords(req.Records, opts)

	resp := InferResponse{Schema: fields, Log: entryLog}
	if req.SchemaName != "" {
		version, err := h.store.Save(r.Context(), req.SchemaName, fields, entryLog)
		if err != nil {
			log.Printf("Failed to persist schema %q: %v", req.SchemaName, err)
			h.writeJSONError(w, "Failed to persist schema", http.StatusInternalServerError)
			return
		}
		resp.Version = version
	}

	h.writeJSONResponse(w, resp)
}

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	Old    []engine.Field `json:"old"`
	New    []engine.Field `json:"new"`
	Strict bool           `json:"strict"`
}

func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	result := engine.Diff(req.Old, req.New, req.Strict)
	h.writeJSONResponse(w, result)
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Schema       []engine.Field            `json:"schema"`
	Records      []map[string]interface{}  `json:"records"`
	Strict       bool                      `json:"strict"`
	AllowUnknown bool                      `json:"allow_unknown"`
	MaxErrors    int                       `json:"max_errors"`
}

type ValidateResponse struct {
	Violations []engine.Violation `json:"violations"`
	Valid      bool               `json:"valid"`
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	violations := engine.Validate(req.Schema, req.Records, engine.ValidateOptions{
		Strict:       req.Strict,
		AllowUnknown: req.AllowUnknown,
		MaxErrors:    req.MaxErrors,
	})

	valid := true
	for _, v := range violations {
		if v.Severity == "error" {
			valid = false
			break
		}
	}

	h.writeJSONResponse(w, ValidateResponse{Violations: violations, Valid: valid})
}

// History handles GET /v1/schemas/{name}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, exists := vars["name"]
	if !exists || name == "" {
		h.writeJSONError(w, "schema name is required", http.StatusBadRequest)
		return
	}

	versions, err := h.store.History(r.Context(), name)
	if err != nil {
		h.writeJSONError(w, fmt.Sprintf("schema %q not found", name), http.StatusNotFound)
		return
	}
	h.writeJSONResponse(w, versions)
}

// Health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "bqschema",
	})
}

// Ready check endpoint - reports not ready only when h.store is nil
// (misconfigured handler); it does not contact the store.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		h.writeJSONResponse(w, HealthResponse{Status: "not ready", Timestamp: time.Now().UTC(), Service: "bqschema"})
		return
	}
	h.writeJSONResponse(w, HealthResponse{Status: "ready", Timestamp: time.Now().UTC(), Service: "bqschema"})
}

func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/v1/infer", h.Infer).Methods("POST")
	r.HandleFunc("/v1/diff", h.Diff).Methods("POST")
	r.HandleFunc("/v1/validate", h.Validate).Methods("POST")
	r.HandleFunc("/v1/schemas/{name}/history", h.History).Methods("GET")

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/ready", h.Ready).Methods("GET")

	r.Use(loggingMiddleware)

	return r
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s - %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}
