package service

import (
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	brokerConfigured bool
}

// NewSystemService creates a new SystemService
func NewSystemService(brokerAPIKey string) *SystemService {
	return &SystemService{
		brokerConfigured: brokerAPIKey != "",
	}
}

// CheckHealth reports whether the service can serve dividend requests.
// Without broker credentials no portfolio can be loaded.
func (s *SystemService) CheckHealth() error {
	if !s.brokerConfigured {
		return apperrors.ErrMissingCredentials
	}
	return nil
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}
