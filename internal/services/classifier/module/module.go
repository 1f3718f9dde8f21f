// Package module implements the classifier service module
package module

import (
	"modguard/internal/modkit"
	"modguard/internal/services/classifier/domain"
	"modguard/internal/services/classifier/service"

	phttp "modguard/internal/platform/net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Ports exposed by the classifier module
type Ports struct {
	Classifier domain.ClassifierPort
}

// Module implements the classifier service module
type Module struct {
	deps  modkit.Deps
	svc   *service.Service
	ports Ports
}

// New constructs a new classifier module. An empty API key leaves the
// backend unset so every Analyze call fails and the pipeline degrades
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	var cc service.Completer
	if opts.APIKey != "" {
		conf := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			conf.BaseURL = opts.BaseURL
		}
		cc = openai.NewClientWithConfig(conf)
	} else {
		deps.Log.Warn().Str("component", "classifier").Msg("no api key set, classifier disabled")
	}

	svc := service.New(deps.Log, service.Config{
		Model:     opts.Model,
		Timeout:   opts.Timeout,
		CacheSize: opts.CacheSize,
	}, cc)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Classifier: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "classifier" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {}
