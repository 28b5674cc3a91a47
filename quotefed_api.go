package quotefed

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

// APIServer exposes the quote pipeline, history, and validation config over
// HTTP.
type APIServer struct {
	fetcher *QuoteFetcher
	history *HistoryStore
	config  *Config
}

// NewAPIServer creates an API server. The history store may be nil, in
// which case fetched quotes are not recorded and history endpoints report
// an empty history.
func NewAPIServer(fetcher *QuoteFetcher, history *HistoryStore, config *Config) *APIServer {
	return &APIServer{
		fetcher: fetcher,
		history: history,
		config:  config,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HistoryResponse represents the response for GET /api/v1/history.
type HistoryResponse struct {
	Items  []HistoryItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ConfigResponse represents the validation thresholds over the wire.
type ConfigResponse struct {
	MinLength    int     `json:"min_length"`
	MaxLength    int     `json:"max_length"`
	NumericLimit float64 `json:"numeric_limit"`
}

// ConfigUpdateRequest is the body of PUT /api/v1/config. Absent fields are
// left unchanged.
type ConfigUpdateRequest struct {
	MinLength    *int     `json:"min_length,omitempty"`
	MaxLength    *int     `json:"max_length,omitempty"`
	NumericLimit *float64 `json:"numeric_limit,omitempty"`
}

// RegisterRoutes attaches all handlers to the given mux.
func (s *APIServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/quotes/random", s.HandleRandomQuote)
	mux.HandleFunc("/api/v1/history", s.HandleHistory)
	mux.HandleFunc("/api/v1/config", s.HandleConfig)
}

// HandleRandomQuote handles GET /api/v1/quotes/random. Runs the full
// pipeline and records the accepted quote when a history store is attached.
func (s *APIServer) HandleRandomQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	result, err := s.fetcher.GetRandomQuote(r.Context())
	if err != nil {
		var exhausted *RetryExhaustedError
		if errors.As(err, &exhausted) {
			s.writeError(w, http.StatusBadGateway, "retry_exhausted", exhausted.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch quote: "+err.Error())
		return
	}

	if s.history != nil {
		if _, err := s.history.Add(result, s.fetcher.client.baseURL); err != nil {
			log.Printf("WARN: Failed to record quote in history: %v", err)
		}
	}

	s.writeJSON(w, http.StatusOK, result)
}

// HandleHistory handles GET /api/v1/history with limit/offset pagination.
func (s *APIServer) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	query := r.URL.Query()

	limit := 50 // default
	if limitParam := query.Get("limit"); limitParam != "" {
		parsedLimit, err := strconv.Atoi(limitParam)
		if err != nil || parsedLimit < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		if parsedLimit > 1000 {
			parsedLimit = 1000
		}
		limit = parsedLimit
	}

	offset := 0 // default
	if offsetParam := query.Get("offset"); offsetParam != "" {
		parsedOffset, err := strconv.Atoi(offsetParam)
		if err != nil || parsedOffset < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid offset parameter")
			return
		}
		offset = parsedOffset
	}

	response := HistoryResponse{
		Items:  []HistoryItem{},
		Limit:  limit,
		Offset: offset,
	}

	if s.history != nil {
		items, err := s.history.List(limit, offset)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list history: "+err.Error())
			return
		}
		total, err := s.history.Count()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to count history: "+err.Error())
			return
		}
		if items != nil {
			response.Items = items
		}
		response.Total = total
	}

	s.writeJSON(w, http.StatusOK, response)
}

// HandleConfig handles GET and PUT /api/v1/config. Updates go through the
// config setters, so they take effect on validations immediately.
func (s *APIServer) HandleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeConfig(w)
	case http.MethodPut:
		s.handleConfigUpdate(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}
}

func (s *APIServer) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body: "+err.Error())
		return
	}

	if req.MinLength != nil && *req.MinLength < 0 {
		s.writeError(w, http.StatusBadRequest, "invalid_parameter", "min_length must not be negative")
		return
	}
	if req.MaxLength != nil && *req.MaxLength < 1 {
		s.writeError(w, http.StatusBadRequest, "invalid_parameter", "max_length must be positive")
		return
	}
	if req.NumericLimit != nil && (*req.NumericLimit < 0 || *req.NumericLimit > 1) {
		s.writeError(w, http.StatusBadRequest, "invalid_parameter", "numeric_limit must be between 0 and 1")
		return
	}

	if req.MinLength != nil {
		s.config.SetMinLength(*req.MinLength)
	}
	if req.MaxLength != nil {
		s.config.SetMaxLength(*req.MaxLength)
	}
	if req.NumericLimit != nil {
		s.config.SetNumericLimit(*req.NumericLimit)
	}

	s.writeConfig(w)
}

func (s *APIServer) writeConfig(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, ConfigResponse{
		MinLength:    s.config.MinLength(),
		MaxLength:    s.config.MaxLength(),
		NumericLimit: s.config.NumericLimit(),
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeError writes an error response.
func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// CORSMiddleware adds CORS headers and answers preflight requests.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
