package handlers

import (
	"net/http"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Positions returns the broker holdings enriched with instrument metadata.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of Position
// Error: 500 Internal Server Error if the broker or market data cannot be reached
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.portfolioService.GetPositions(r.Context())
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrievePortfolio, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}
