package handlers

import (
	"net/http"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/validation"
)

// SummaryCache serves the summary of the last scheduled refresh.
type SummaryCache interface {
	Last() (model.PortfolioSummary, bool)
}

// DividendHandler handles HTTP requests for dividend endpoints.
// It loads the current holdings from the portfolio service and delegates
// the calculation to the dividend service.
type DividendHandler struct {
	portfolioService *service.PortfolioService
	dividendService  *service.DividendService
	snapshotService  *service.SnapshotService
	cache            SummaryCache
}

// NewDividendHandler creates a new DividendHandler. cache may be nil when
// scheduled refresh is disabled.
func NewDividendHandler(
	portfolioService *service.PortfolioService,
	dividendService *service.DividendService,
	snapshotService *service.SnapshotService,
	cache SummaryCache,
) *DividendHandler {
	return &DividendHandler{
		portfolioService: portfolioService,
		dividendService:  dividendService,
		snapshotService:  snapshotService,
		cache:            cache,
	}
}

// Dividends returns one record per holding with a determinable next dividend,
// plus realized dividends when a lookback is configured.
//
// Endpoint: GET /api/dividend
// Response: 200 OK with array of DividendRecord sorted by ex-dividend date
// Error: 500 Internal Server Error if the portfolio or an upstream service fails
func (h *DividendHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.GetHoldings(r.Context())
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrievePortfolio, err)
		return
	}

	records, err := h.dividendService.CalculateDividends(r.Context(), holdings)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveDividends, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// Summary returns the aggregated dividend summary.
//
// Endpoint: GET /api/dividend/summary
// Query: cached=true serves the last scheduled refresh instead of recalculating
// Response: 200 OK with PortfolioSummary
// Error: 404 Not Found if cached is requested and no refresh has completed
// Error: 500 Internal Server Error if the portfolio or an upstream service fails
func (h *DividendHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if validation.ValidateSummary(request.NewSummaryRequest(r)) {
		if h.cache != nil {
			if summary, ok := h.cache.Last(); ok {
				response.RespondJSON(w, http.StatusOK, summary)
				return
			}
		}
		response.RespondError(w, http.StatusNotFound, apperrors.ErrNoCachedSummary.Error(), nil)
		return
	}

	holdings, err := h.portfolioService.GetHoldings(r.Context())
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrievePortfolio, err)
		return
	}

	summary, err := h.dividendService.Forecast(r.Context(), holdings)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveDividends, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Upcoming returns future dividends with an ex-date within the next N days.
//
// Endpoint: GET /api/dividend/upcoming
// Query: days (optional, 1-366, default 30)
// Response: 200 OK with array of DividendRecord
// Error: 400 Bad Request if days is invalid
// Error: 500 Internal Server Error if the portfolio or an upstream service fails
func (h *DividendHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, err := validation.ValidateUpcoming(request.NewUpcomingRequest(r), service.DefaultUpcomingDays)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	holdings, err := h.portfolioService.GetHoldings(r.Context())
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrievePortfolio, err)
		return
	}

	records, err := h.dividendService.Upcoming(r.Context(), holdings, days)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToRetrieveDividends, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// Snapshot returns the share counts held at the start of a given day,
// rebuilt from the order history.
//
// Endpoint: GET /api/dividend/snapshot
// Query: date (optional, YYYY-MM-DD, default today)
// Response: 200 OK with array of SnapshotEntry sorted by symbol
// Error: 400 Bad Request if date is invalid or in the future
// Error: 500 Internal Server Error if the order history cannot be loaded
func (h *DividendHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	date, err := validation.ValidateSnapshot(request.NewSnapshotRequest(r), h.dividendService.Today())
	if err != nil {
		respondValidationError(w, err)
		return
	}

	entries, err := h.snapshotService.ListSnapshot(r.Context(), date)
	if err != nil {
		respondServiceError(w, r, apperrors.ErrFailedToBuildSnapshot, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}
