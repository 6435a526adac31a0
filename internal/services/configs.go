package services

import (
	"fmt"

	"github.com/vouchportal/vouch-api/internal/models"
	"github.com/vouchportal/vouch-api/internal/repository"
)

// ConfigService exposes the admin-managed key/value settings.
type ConfigService struct {
	configRepo repository.ConfigRepository
}

// NewConfigService creates a new ConfigService
func NewConfigService(configRepo repository.ConfigRepository) *ConfigService {
	return &ConfigService{configRepo: configRepo}
}

// List returns all config entries
func (s *ConfigService) List() ([]models.ConfigEntry, error) {
	entries, err := s.configRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	return entries, nil
}

// Set inserts or replaces a config value
func (s *ConfigService) Set(key, value string) error {
	if err := s.configRepo.Upsert(key, value); err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}
