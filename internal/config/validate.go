package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1 (got %d)", c.Database.MaxConns)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535] (got %d)", c.Server.Port)
	}

	if err := c.Workflow.validate(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}

	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required when nats.url is set")
	}
	if strings.ContainsAny(c.NATS.SubjectPrefix, " .*>") {
		return fmt.Errorf("nats.subject_prefix must be a single plain token (got %q)", c.NATS.SubjectPrefix)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (w *WorkflowConfig) validate() error {
	if w.DeepLinkBase == "" {
		return fmt.Errorf("deep_link_base is required")
	}
	if strings.HasSuffix(w.DeepLinkBase, "/") {
		return fmt.Errorf("deep_link_base must not end with a slash (got %q)", w.DeepLinkBase)
	}
	if w.MaxCommentsLength < 1 {
		return fmt.Errorf("max_comments_length must be >= 1 (got %d)", w.MaxCommentsLength)
	}
	if w.QueueLimit < 1 {
		return fmt.Errorf("queue_limit must be >= 1 (got %d)", w.QueueLimit)
	}
	return nil
}
