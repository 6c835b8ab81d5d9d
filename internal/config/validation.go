package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Engine.RAGMinScore < 0 || c.Engine.RAGMinScore > 1 {
		return fmt.Errorf("engine.ragMinScore must be between 0 and 1, got %g", c.Engine.RAGMinScore)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.defaultPageSize (%d) exceeds search.maxPageSize (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
