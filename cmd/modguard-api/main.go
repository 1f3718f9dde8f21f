// @title         modguard API
// @version       0.1.0
// @description   Group moderation pipeline endpoints

package main

import (
	"context"
	"os/signal"
	"syscall"

	"modguard/internal/platform/config"
	"modguard/internal/platform/logger"
	phttp "modguard/internal/platform/net/http"
	"modguard/internal/platform/store"

	"modguard/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*

	// bring up logging early
	l := logger.Get()

	// CH is optional; an empty DBURL runs PG-only
	chURL := chCfg.MayString("DBURL", "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres + clickhouse)
	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "modguard-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled: chURL != "",
				URL:     chURL,
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount the API and start module background loops
	runners := api.Mount(
		srv.Router(),
		api.Options{
			Config:        apiCfg,
			Store:         st,
			Logger:        l,
			EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		},
	)
	for _, rn := range runners {
		go func(rn api.Runner) {
			if err := rn.Run(ctx); err != nil {
				l.Error().Err(err).Msg("module runner stopped")
			}
		}(rn)
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
