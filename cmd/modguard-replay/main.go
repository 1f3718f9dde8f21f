package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"modguard/internal/modkit"
	"modguard/internal/modkit/module"
	"modguard/internal/platform/config"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/store"

	auditmod "modguard/internal/services/audit/module"
	replaydom "modguard/internal/services/replay/domain"
	replaymod "modguard/internal/services/replay/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "modguard-replay",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		startStr = flag.String("start", "", "inclusive hour, e.g. 2025-08-01T00")
		endStr   = flag.String("end", "", "exclusive hour, e.g. 2025-08-01T03")
		page     = flag.Int("page", 500, "page size (rows)")
		rules    = flag.String("rules", "", "rules document to judge against (json)")
		dryRun   = flag.Bool("dry-run", true, "report changes without writing them back")
	)
	flag.Parse()

	if *startStr == "" || *endStr == "" {
		log.Fatal("start/end are required (hour resolution)")
	}
	start, err := time.Parse("2006-01-02T15", *startStr)
	if err != nil {
		log.Fatalf("bad -start: %v", err)
	}
	end, err := time.Parse("2006-01-02T15", *endStr)
	if err != nil {
		log.Fatalf("bad -end: %v", err)
	}
	if !start.Before(end) {
		log.Fatal("start must be < end")
	}

	// Pass CLI flags into CORE_REPLAY_* so the module can read its own config
	mustSetEnv("CORE_REPLAY_PAGE_SIZE", strconv.Itoa(*page))
	mustSetEnv("CORE_REPLAY_RULES_FILE", *rules)

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	// Build the audit module first for its reader and rewriter ports
	am := auditmod.New(deps)

	rm := replaymod.New(
		deps,
		modkit.WithPorts(replaymod.Ports{
			Reader:   module.MustPortsOf[auditmod.Ports](am).Reader,
			Rewriter: module.MustPortsOf[auditmod.Ports](am).Rewriter,
		}),
	)

	module.Register(am.Name(), am.Ports())
	module.Register(rm.Name(), rm.Ports())

	ports := rm.Ports().(replaymod.Ports)
	rep, err := ports.Runner.RunRange(context.Background(), replaydom.RunInput{
		Start:  start.UTC(),
		End:    end.UTC(),
		DryRun: *dryRun,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("replay failed")
	}
	l.Info().
		Int("scanned", rep.Scanned).
		Int("changed", rep.Changed).
		Int("skipped", rep.Skipped).
		Int("rewrites", rep.Rewrites).
		Bool("dry_run", *dryRun).
		Msg("replay finished")
}
