// Package http provides HTTP transport for the moderation pipeline
package http

import (
	stdhttp "net/http"

	"modguard/internal/core/nightmode"
	"modguard/internal/services/moderation/domain"

	perr "modguard/internal/platform/errors"
	"modguard/internal/platform/logger"
	pnet "modguard/internal/platform/net"
	phttp "modguard/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

// Register mounts moderation endpoints on the given router
func Register(r phttp.Router, svc domain.ServicePort, nm domain.NightModePort) {
	h := &handlers{svc: svc, nm: nm}

	r.Post("/evaluate", phttp.JSONHandler(h.evaluate))
	r.Get("/stats", phttp.JSONHandlerNoBody(h.stats))
	r.Get("/config", phttp.JSONHandlerNoBody(h.getConfig))
	r.Put("/config", phttp.JSONHandler(h.putConfig))

	r.Route("/nightmode", func(rr phttp.Router) {
		rr.Get("/{groupID}", phttp.JSONHandlerNoBody(h.nightModeStatus))
		rr.Post("/{groupID}", phttp.JSONHandler(h.nightModeSet))
	})
}

type handlers struct {
	svc domain.ServicePort
	nm  domain.NightModePort
}

// swagger:route POST /moderation/evaluate Moderation moderationEvaluate
// @Summary Evaluate one message and return its verdict
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body domain.EvaluateInput true "Message"
// @Success 200 {object} domain.Verdict "ok"
// @Router /moderation/evaluate [post]
func (h *handlers) evaluate(r *stdhttp.Request, in domain.EvaluateInput) (any, error) {
	ctx := logger.WithRequest(r.Context(), "", in.GroupID)
	return h.svc.Evaluate(ctx, in.Message())
}

// swagger:route GET /moderation/stats Moderation moderationStats
// @Summary Verdict counters and detector gauges
// @Tags Moderation
// @Produce json
// @Success 200 {object} domain.Stats "ok"
// @Router /moderation/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.svc.Stats(), nil
}

// swagger:route GET /moderation/config Moderation moderationGetConfig
// @Summary Read the active rules document
// @Tags Moderation
// @Produce json
// @Success 200 {object} domain.Config "ok"
// @Router /moderation/config [get]
func (h *handlers) getConfig(r *stdhttp.Request) (any, error) {
	return h.svc.ActiveConfig(), nil
}

// swagger:route PUT /moderation/config Moderation moderationPutConfig
// @Summary Replace the rules document
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body domain.Config true "Rules document"
// @Success 200 {object} domain.Config "ok"
// @Router /moderation/config [put]
func (h *handlers) putConfig(r *stdhttp.Request, in domain.Config) (any, error) {
	if err := h.svc.SetConfig(r.Context(), in); err != nil {
		return nil, err
	}
	return h.svc.ActiveConfig(), nil
}

// swagger:route GET /moderation/nightmode/{groupID} Moderation nightModeStatus
// @Summary Current night phase for a group
// @Tags Moderation
// @Produce json
// @Success 200 {object} domain.NightModeStatus "ok"
// @Router /moderation/nightmode/{groupID} [get]
func (h *handlers) nightModeStatus(r *stdhttp.Request) (any, error) {
	gid, ok := pnet.ParseGroupID(chi.URLParam(r, "groupID"))
	if !ok {
		return nil, perr.InvalidArgf("bad group id")
	}
	return h.status(gid), nil
}

// swagger:route POST /moderation/nightmode/{groupID} Moderation nightModeSet
// @Summary Pin or release a group's night phase
// @Tags Moderation
// @Accept json
// @Produce json
// @Param payload body domain.NightModeInput true "Action"
// @Success 200 {object} domain.NightModeStatus "ok"
// @Router /moderation/nightmode/{groupID} [post]
func (h *handlers) nightModeSet(r *stdhttp.Request, in domain.NightModeInput) (any, error) {
	gid, ok := pnet.ParseGroupID(chi.URLParam(r, "groupID"))
	if !ok {
		return nil, perr.InvalidArgf("bad group id")
	}
	switch in.Action {
	case "on":
		h.nm.Force(gid, nightmode.Night)
	case "off":
		h.nm.Force(gid, nightmode.Day)
	case "auto":
		h.nm.ClearForce(gid)
	}
	return h.status(gid), nil
}

func (h *handlers) status(gid int64) domain.NightModeStatus {
	p := h.nm.Phase(gid)
	return domain.NightModeStatus{
		GroupID:    gid,
		Phase:      p.String(),
		Restricted: p == nightmode.EnteringNight || p == nightmode.Night,
	}
}
