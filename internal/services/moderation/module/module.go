// Package module wires the moderation pipeline into HTTP via modkit
package module

import (
	"context"
	"net/http"
	"time"

	"modguard/internal/modkit"
	"modguard/internal/services/moderation/domain"

	auditdomain "modguard/internal/services/audit/domain"
	clsdomain "modguard/internal/services/classifier/domain"

	phttp "modguard/internal/platform/net/http"
	"modguard/internal/platform/strings"
	"modguard/internal/platform/timeutil"

	moderationhttp "modguard/internal/services/moderation/http"
	"modguard/internal/services/moderation/service"
)

// Ports exposes the pipeline for cross-module lookups and carries the
// ports the pipeline itself consumes
type Ports struct {
	Service    domain.ServicePort
	NightMode  domain.NightModePort
	Classifier clsdomain.ClassifierPort
	Recorder   auditdomain.RecorderPort
}

// Module implements the moderation module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(r phttp.Router)

	svc  *service.Service
	opts Options
}

// New constructs the moderation module. The classifier and recorder ports
// are injected with modkit.WithPorts(Ports{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("moderation"),
		modkit.WithPrefix("/moderation"),
	}, opts...)...)

	var in Ports
	if b.Ports != nil {
		in = b.Ports.(Ports)
	}

	o := FromConfig(deps.Cfg)
	svc, err := service.New(
		deps.Log,
		service.Config{EvictBatch: o.EvictBatch},
		domain.DefaultConfig(),
		in.Classifier,
		in.Recorder,
		timeutil.Real{},
	)
	if err != nil {
		panic(err) // embedded default rules failed to compile
	}

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
		opts:   o,
	}
	m.ports = Ports{
		Service:    svc,
		NightMode:  svc,
		Classifier: in.Classifier,
		Recorder:   in.Recorder,
	}

	external := b.Register
	m.register = func(r phttp.Router) {
		moderationhttp.Register(r, m.svc, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Run drives the pipeline's periodic maintenance until ctx is done
func (m *Module) Run(ctx context.Context) error {
	return m.svc.Run(ctx, m.opts.MaintenanceInterval)
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route(m.prefix, func(rr phttp.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name is the module name
func (m *Module) Name() string { return strings.MustString(m.name, "module name") }

// Prefix is the module route prefix
func (m *Module) Prefix() string { return strings.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options holds configuration settings for the moderation module
type Options struct {
	EvictBatch          int
	MaintenanceInterval time.Duration
}
