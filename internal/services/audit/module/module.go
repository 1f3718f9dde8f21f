// Package module implements the audit service module
package module

import (
	"context"

	"modguard/internal/modkit"
	"modguard/internal/services/audit/domain"
	"modguard/internal/services/audit/service"

	phttp "modguard/internal/platform/net/http"
)

// Ports exposed by the audit module
type Ports struct {
	Recorder domain.RecorderPort
	Reader   domain.ReaderPort
	Rewriter domain.RewriterPort
}

// Module implements the audit service module
type Module struct {
	deps  modkit.Deps
	svc   *service.Service
	ports Ports
}

// New constructs a new audit module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.Log, deps.PG, deps.CH, service.Config{
		QueueSize:     opts.QueueSize,
		BatchSize:     opts.BatchSize,
		FlushInterval: opts.FlushInterval,
		EventTable:    opts.EventTable,
	})

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{
		Recorder: svc,
		Reader:   svc,
		Rewriter: svc,
	}
	return m
}

// Run starts the background flusher and blocks until ctx is done
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Close waits for the final flush after Run returns
func (m *Module) Close() { m.svc.Close() }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "audit" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
