package modkit

import (
	"modguard/internal/modkit/repokit"
	"modguard/internal/platform/config"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/store"
)

// Deps holds core dependencies passed to modules; wiring only, no new
// abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// ZeroOK reports that zero-value deps are safe for tests; consumers still
// nil-check optional stores
func (d Deps) ZeroOK() bool { return true }
