package app

import (
	"fmt"

	"github.com/samvad-hq/dirble-go/internal/config"
	"github.com/samvad-hq/dirble-go/internal/logger"
	"github.com/samvad-hq/dirble-go/pkg/dirble"
)

// NewDirbleClient builds an API client from the loaded configuration.
func NewDirbleClient(cfg *config.Config, log logger.Logger) (*dirble.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	client, err := dirble.New(cfg.APIKey,
		dirble.WithBaseURL(cfg.BaseURL),
		dirble.WithTimeout(cfg.Timeout),
		dirble.WithUserAgent(cfg.UserAgent),
		dirble.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("create dirble client: %w", err)
	}
	return client, nil
}
