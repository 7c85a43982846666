package handlers

import (
	"net/http"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
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
	Status string `json:"status"`
	Broker string `json:"broker"`
	Error  string `json:"error,omitempty"`
}

// VersionResponse represents the version check response
type VersionResponse struct {
	Name       string `json:"name"`
	AppVersion string `json:"app_version"`
}

// Root handles GET / and identifies the service.
func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, VersionResponse{
		Name:       "Dividend Tracker API",
		AppVersion: h.systemService.CheckVersion(),
	})
}

// Health reports whether the broker credentials needed to load a portfolio are configured.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with HealthResponse
// Error: 503 Service Unavailable when the broker is not configured
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Broker: "not configured",
			Error:  err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Broker: "configured",
	})
}

// Version handles GET /api/system/version.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	h.Root(w, r)
}
