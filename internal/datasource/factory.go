package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/config"
)

// NewFromConfig builds the configured history source
func NewFromConfig(cfg *config.HistoryConfig, logger *logrus.Logger) (HistorySource, error) {
	switch cfg.Source {
	case "file":
		return NewFileSource(cfg.FilePath), nil
	case "http":
		clientCfg := DefaultHTTPClientConfig()
		clientCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		clientCfg.MaxRetries = cfg.RetryAttempts
		clientCfg.RateLimit = float64(cfg.RequestsPerSecond)

		client := NewRateLimitedHTTPClient(clientCfg, logger)
		return NewHTTPSource(client, cfg.BaseURL, cfg.APIKey, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}
