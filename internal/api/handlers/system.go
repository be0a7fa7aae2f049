package handlers

import (
	"net/http"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	CachedQuotes int    `json:"cachedQuotes"`
	Error        string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthResponse
// Error: 503 Service Unavailable if the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status, err := h.systemService.CheckHealth()
	resp := HealthResponse{
		Status:       status.Status,
		Database:     status.Database,
		CachedQuotes: status.CachedQuotes,
	}
	if err != nil {
		resp.Error = err.Error()
		response.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	response.RespondJSON(w, http.StatusOK, resp)
}

// Version handles GET requests to retrieve version information.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with model.VersionInfo
// Error: 500 Internal Server Error if the schema version cannot be read
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	version, err := h.systemService.CheckVersion()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get version information", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, version)
}
