// Package module implements the replay service module
package module

import (
	"encoding/json"
	"os"

	"modguard/internal/modkit"
	"modguard/internal/services/replay/domain"
	"modguard/internal/services/replay/service"

	auditdomain "modguard/internal/services/audit/domain"
	moddomain "modguard/internal/services/moderation/domain"

	phttp "modguard/internal/platform/net/http"
)

// Ports exposed by the replay module; Reader and Rewriter are injected
// from the audit module
type Ports struct {
	Runner   domain.RunnerPort
	Reader   auditdomain.ReaderPort
	Rewriter auditdomain.RewriterPort
}

// Module implements the replay service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new replay module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("replay"),
	}, opts...)...)

	var in Ports
	if b.Ports != nil {
		in = b.Ports.(Ports)
	}

	o := FromConfig(deps.Cfg)
	rules := loadRules(deps, o)

	svc := service.New(deps.Log, service.Config{PageSize: o.PageSize}, rules, in.Reader, in.Rewriter)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc, Reader: in.Reader, Rewriter: in.Rewriter}
	return m
}

// loadRules reads the rules document the pass judges against; without a
// file the embedded defaults apply
func loadRules(deps modkit.Deps, o Options) moddomain.Config {
	rules := moddomain.DefaultConfig()
	if o.RulesFile == "" {
		return rules
	}
	raw, err := os.ReadFile(o.RulesFile)
	if err != nil {
		deps.Log.Panic().Err(err).Str("path", o.RulesFile).Msg("rules file unreadable")
	}
	if err := json.Unmarshal(raw, &rules); err != nil {
		deps.Log.Panic().Err(err).Str("path", o.RulesFile).Msg("rules file malformed")
	}
	return rules
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "replay" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
