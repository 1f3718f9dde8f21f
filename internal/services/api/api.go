// Package api provides the HTTP API for the application
package api

import (
	"context"

	"modguard/internal/platform/config"
	"modguard/internal/platform/logger"
	phttp "modguard/internal/platform/net/http"
	"modguard/internal/platform/net/middleware"
	"modguard/internal/platform/store"

	"modguard/internal/modkit"
	"modguard/internal/modkit/module"
	"modguard/internal/modkit/swaggerkit"

	auditmod "modguard/internal/services/audit/module"
	classifiermod "modguard/internal/services/classifier/module"
	moderationmod "modguard/internal/services/moderation/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool
}

// Runner is a module background loop driven by the composition root
type Runner interface {
	Run(ctx context.Context) error
}

// Mount mounts the API service onto the given router and returns the
// background runners the caller must drive
func Mount(r phttp.Router, opt Options) []Runner {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// construct the leaf modules first and extract their ports
	audit := auditmod.New(deps)
	recorder := module.MustPortsOf[auditmod.Ports](audit).Recorder

	cls := classifiermod.New(deps)
	analyzer := module.MustPortsOf[classifiermod.Ports](cls).Classifier

	// the pipeline consumes both
	moderation := moderationmod.New(
		deps,
		modkit.WithPorts(moderationmod.Ports{
			Classifier: analyzer,
			Recorder:   recorder,
		}),
	)

	mods := []module.Module{audit, cls, moderation}

	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(api phttp.Router) {
		for _, mw := range middleware.Defaults() {
			api.Use(mw)
		}
		api.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{}))

		for _, m := range mods {
			// register each module's ports under its own name
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	swaggerkit.Mount(r, opt.EnableSwagger)

	return []Runner{audit, moderation}
}
