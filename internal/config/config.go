package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Moderation ModerationConfig `yaml:"moderation"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true" env-description:"PostgreSQL connection string"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"    env-description:"Pool size limit"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"     env-description:"Connections kept open when idle"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"    env-description:"Age after which a connection is replaced"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"   env-description:"Idle time after which a connection is closed"`
	// LockTimeout bounds the wait for a queue row held by a concurrent
	// decision. Zero waits forever.
	LockTimeout     time.Duration `yaml:"lock_timeout"       env:"DATABASE_LOCK_TIMEOUT"       env-default:"10s"      env-description:"Postgres lock_timeout for every session"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"modqueue" env-description:"Reported in pg_stat_activity"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info" env-description:"debug, info, warn or error"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json" env-description:"json or text"`
}

// ModerationConfig holds moderation queue settings.
type ModerationConfig struct {
	// ApproveRejectedGrace is how long after submission a rejected change
	// can still be approved.
	ApproveRejectedGrace time.Duration `yaml:"approve_rejected_grace" env:"MODERATION_APPROVE_REJECTED_GRACE" env-default:"336h"  env-description:"Window in which rejected changes can still be approved"`
	DisableIPStorage     bool          `yaml:"disable_ip_storage"     env:"MODERATION_DISABLE_IP_STORAGE"     env-default:"false" env-description:"Store the moderator's address instead of the author's"`
	EnableEditChange     bool          `yaml:"enable_edit_change"     env:"MODERATION_ENABLE_EDIT_CHANGE"     env-default:"false" env-description:"Allow moderators to edit pending changes"`
	ApproveAllLimit      int           `yaml:"approve_all_limit"      env:"MODERATION_APPROVE_ALL_LIMIT"      env-default:"200"   env-description:"Rows approved by one approve-all call"`
	DefaultTagsRaw       string        `yaml:"default_tags"           env:"MODERATION_DEFAULT_TAGS"                               env-description:"Comma-separated tags added to approved changes"`
	PendingTimeTTL       time.Duration `yaml:"pending_time_ttl"       env:"MODERATION_PENDING_TIME_TTL"       env-default:"1m"    env-description:"Cache lifetime of the oldest pending timestamp"`
	ModeratorsRaw        string        `yaml:"moderators"             env:"MODERATION_MODERATORS"                                 env-description:"Comma-separated moderator names, empty for everyone"`
	// PurgeAfter is the age after which rejected rows are purged.
	PurgeAfter time.Duration `yaml:"purge_after" env:"MODERATION_PURGE_AFTER" env-default:"2160h" env-description:"Age after which rejected rows are purged"`

	// DefaultTags is parsed from DefaultTagsRaw during validation.
	DefaultTags []string `yaml:"-" env:"-"`
	// Moderators is parsed from ModeratorsRaw during validation. Empty means
	// every registered user may moderate.
	Moderators []string `yaml:"-" env:"-"`
}

// ParseList splits a comma-separated list, dropping blanks and duplicates.
func ParseList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
