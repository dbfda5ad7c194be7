package config

import "time"

// Config is the root configuration for taskboard.
type Config struct {
	Gateway  GatewayConfig `json:"gateway"`
	Storage  StorageConfig `json:"storage"`
	Events   EventsConfig  `json:"events"`
	Log      LogConfig     `json:"log"`
	Backup   BackupConfig  `json:"backup"`
	SeedFile string        `json:"seed_file,omitempty"` // YAML seed list (default: built-in three tasks)
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty"`
}

// StorageConfig selects where the task snapshot lives.
type StorageConfig struct {
	Driver string `json:"driver"`        // "dir", "sqlite", "mysql", "memory"
	Path   string `json:"path"`          // directory (dir) or database file (sqlite)
	DSN    string `json:"dsn,omitempty"` // mysql only; ${{ .Env.VAR }} templates allowed
	Key    string `json:"key,omitempty"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize    int    `json:"buffer_size"`
	LogDir        string `json:"log_dir"`                  // JSONL audit log (default: $TASKBOARD_PATH/logs)
	RetentionDays int    `json:"retention_days,omitempty"` // log files older than this are pruned (default: 30)
	PruneSchedule string `json:"prune_schedule,omitempty"` // cron; "off" disables (default: daily 03:30)
}

// BackupConfig controls snapshot backups written by `serve` and `backup`.
type BackupConfig struct {
	Schedule  string `json:"schedule,omitempty"`  // cron; empty disables scheduled backups
	Dir       string `json:"dir,omitempty"`       // default: $TASKBOARD_PATH/backups
	Keep      int    `json:"keep,omitempty"`      // newest backups kept (default: 7)
	Recipient string `json:"recipient,omitempty"` // age public key; backups are encrypted when set
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json, logfmt
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
