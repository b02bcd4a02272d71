package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// NATSConfig holds the notification transport settings. Notifications are
// best-effort; an empty URL disables publishing entirely.
type NATSConfig struct {
	URL           string        `yaml:"url"            env:"NATS_URL"            env-default:""`
	SubjectPrefix string        `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX" env-default:"medwave"`
	ConnectWait   time.Duration `yaml:"connect_wait"   env:"NATS_CONNECT_WAIT"   env-default:"5s"`
}

// WorkflowConfig holds workflow engine settings.
type WorkflowConfig struct {
	// DeepLinkBase is the scheme+authority the publish step prepends to
	// "/videos/<id>" when minting a deep link.
	DeepLinkBase string `yaml:"deep_link_base" env:"WORKFLOW_DEEP_LINK_BASE" env-default:"medwave://content"`
	// MaxCommentsLength bounds reviewer comments on APPROVE/REJECT.
	MaxCommentsLength int `yaml:"max_comments_length" env:"WORKFLOW_MAX_COMMENTS_LENGTH" env-default:"5000"`
	// QueueLimit caps the number of items returned per queue section.
	QueueLimit int `yaml:"queue_limit" env:"WORKFLOW_QUEUE_LIMIT" env-default:"200"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
