package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Database.LockTimeout < 0 {
		return fmt.Errorf("database.lock_timeout must be >= 0 (got %v)", c.Database.LockTimeout)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.Moderation.validate(); err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	return nil
}

func (m *ModerationConfig) validate() error {
	if m.ApproveRejectedGrace < 0 {
		return fmt.Errorf("approve_rejected_grace must be >= 0 (got %v)", m.ApproveRejectedGrace)
	}
	if m.ApproveAllLimit <= 0 {
		return fmt.Errorf("approve_all_limit must be > 0 (got %d)", m.ApproveAllLimit)
	}
	if m.PendingTimeTTL <= 0 {
		return fmt.Errorf("pending_time_ttl must be > 0 (got %v)", m.PendingTimeTTL)
	}
	if m.PurgeAfter <= 0 {
		return fmt.Errorf("purge_after must be > 0 (got %v)", m.PurgeAfter)
	}

	m.DefaultTags = ParseList(m.DefaultTagsRaw)
	m.Moderators = ParseList(m.ModeratorsRaw)
	return nil
}
