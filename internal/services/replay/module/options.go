package module

import "modguard/internal/platform/config"

// Options holds configuration settings for the replay module
type Options struct {
	PageSize  int
	RulesFile string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_REPLAY_")
	return Options{
		PageSize:  rf.MayInt("PAGE_SIZE", 500),
		RulesFile: rf.MayString("RULES_FILE", ""),
	}
}
