package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"domainfactor/internal/factor/records"
	"domainfactor/internal/factor/service"
	"domainfactor/internal/factor/settings"
	"domainfactor/pkg/platform/httputil"
	"domainfactor/pkg/requestcontext"
)

// Service defines the factor operations exposed over HTTP.
type Service interface {
	Check(ctx context.Context, subject service.Subject) (*service.CheckResult, error)
	Describe(ctx context.Context) *service.Description
	UserFactors(ctx context.Context, subject service.Subject) ([]*records.Record, error)
	Settings(ctx context.Context) (*settings.Raw, error)
	UpdateSettings(ctx context.Context, raw settings.Raw) (*settings.Raw, error)
}

// Handler wires domain factor endpoints to the factor service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a factor handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the host-facing factor endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/factors/domain", h.HandleDescribe)
	r.Post("/factors/domain/check", h.HandleCheck)
	r.Post("/factors/domain/records", h.HandleRecords)
}

// RegisterAdmin mounts the settings endpoints. The caller applies admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/factors/domain/settings", h.HandleGetSettings)
	r.Put("/admin/factors/domain/settings", h.HandlePutSettings)
}

// HandleCheck handles POST /factors/domain/check requests.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject := req.Subject()
	if subject.LastIP == "" {
		subject.LastIP = requestcontext.ClientIP(ctx)
	}

	result, err := h.service.Check(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "domain factor check failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromCheckResult(result))
}

// HandleDescribe handles GET /factors/domain requests.
func (h *Handler) HandleDescribe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromDescription(h.service.Describe(r.Context())))
}

// HandleRecords handles POST /factors/domain/records requests.
func (h *Handler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	lastIP := req.LastIP
	if lastIP == "" {
		lastIP = requestcontext.ClientIP(ctx)
	}

	out, err := h.service.UserFactors(ctx, service.Subject{UserID: req.UserID, LastIP: lastIP})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(out))
}

// HandleGetSettings handles GET /admin/factors/domain/settings requests.
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := h.service.Settings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load domain factor settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSettings(raw))
}

// HandlePutSettings handles PUT /admin/factors/domain/settings requests.
func (h *Handler) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	stored, err := h.service.UpdateSettings(ctx, req.Raw())
	if err != nil {
		h.logger.WarnContext(ctx, "domain factor settings update rejected",
			"request_id", requestID,
			"actor_id", requestcontext.Actor(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSettings(stored))
}
