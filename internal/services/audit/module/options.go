package module

import (
	"time"

	"modguard/internal/platform/config"
)

// Options holds configuration settings for the audit module
type Options struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	EventTable    string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("CORE_AUDIT_")
	return Options{
		QueueSize:     af.MayInt("QUEUE_SIZE", 4096),
		BatchSize:     af.MayInt("BATCH_SIZE", 256),
		FlushInterval: af.MayDuration("FLUSH_INTERVAL", 2*time.Second),
		EventTable:    af.MayString("EVENT_TABLE", "moderation_events"),
	}
}
