package module

import (
	"time"

	"modguard/internal/platform/config"
)

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	mf := cfg.Prefix("CORE_MODERATION_")
	return Options{
		EvictBatch:          mf.MayInt("EVICT_BATCH", 1024),
		MaintenanceInterval: mf.MayDuration("MAINTENANCE_INTERVAL", time.Minute),
	}
}
