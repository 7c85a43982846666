package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/request"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
)

// MaxUpcomingDays caps the upcoming-dividend horizon at roughly one year,
// the furthest a projection from quarterly history is meaningful.
const MaxUpcomingDays = 366

// ValidateUpcoming checks the days parameter and returns it as an int.
// An empty value returns defaultDays.
func ValidateUpcoming(req request.UpcomingRequest, defaultDays int) (int, error) {
	raw := strings.TrimSpace(req.Days)
	if raw == "" {
		return defaultDays, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(apperrors.ErrInvalidDays, "days", "must be a whole number")
	}
	if days < 1 || days > MaxUpcomingDays {
		return 0, fieldError(apperrors.ErrInvalidDays, "days", "must be between 1 and "+strconv.Itoa(MaxUpcomingDays))
	}
	return days, nil
}

// ValidateSummary reports whether the cached summary was requested.
// Anything strconv.ParseBool rejects counts as false.
func ValidateSummary(req request.SummaryRequest) bool {
	cached, err := strconv.ParseBool(strings.TrimSpace(req.Cached))
	return err == nil && cached
}

// ValidateSnapshot checks the date parameter. An empty value returns today.
// Dates after today are rejected since no orders exist for them yet.
func ValidateSnapshot(req request.SnapshotRequest, today time.Time) (time.Time, error) {
	if strings.TrimSpace(req.Date) == "" {
		return today, nil
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return time.Time{}, fieldError(apperrors.ErrInvalidDate, "date", err.Error())
	}
	if date.After(today) {
		return time.Time{}, fieldError(apperrors.ErrInvalidDate, "date", "must not be in the future")
	}
	return date, nil
}
