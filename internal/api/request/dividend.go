// Package request holds the raw query parameters accepted by the API.
// Values stay strings here; the validation package checks and converts them.
package request

import "net/http"

// UpcomingRequest holds the parameters of GET /api/dividend/upcoming.
type UpcomingRequest struct {
	Days string
}

// SummaryRequest holds the parameters of GET /api/dividend/summary.
type SummaryRequest struct {
	Cached string
}

// SnapshotRequest holds the parameters of GET /api/dividend/snapshot.
type SnapshotRequest struct {
	Date string
}

// NewUpcomingRequest reads the upcoming-dividend parameters from r.
func NewUpcomingRequest(r *http.Request) UpcomingRequest {
	return UpcomingRequest{Days: r.URL.Query().Get("days")}
}

// NewSummaryRequest reads the summary parameters from r.
func NewSummaryRequest(r *http.Request) SummaryRequest {
	return SummaryRequest{Cached: r.URL.Query().Get("cached")}
}

// NewSnapshotRequest reads the snapshot parameters from r.
func NewSnapshotRequest(r *http.Request) SnapshotRequest {
	return SnapshotRequest{Date: r.URL.Query().Get("date")}
}
