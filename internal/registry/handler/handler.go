package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerpass/internal/audit"
	"ledgerpass/internal/ledger"
	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
	"ledgerpass/pkg/platform/httputil"
	adminmw "ledgerpass/pkg/platform/middleware/admin"
	authmw "ledgerpass/pkg/platform/middleware/auth"
	"ledgerpass/pkg/requestcontext"
)

// Registry is the read side of the passport registry.
type Registry interface {
	IsAuthority(ctx context.Context, principal domain.Principal) (bool, error)
	AuthorityHistory(ctx context.Context, principal domain.Principal) ([]audit.Event, error)
	GetPassport(ctx context.Context, number domain.PassportNumber, height domain.Height) (*models.PassportView, error)
	GetHolderPassport(ctx context.Context, holder domain.Principal) (domain.PassportNumber, error)
	IsValidPassport(ctx context.Context, number domain.PassportNumber, height domain.Height) (bool, error)
	PassportHistory(ctx context.Context, number domain.PassportNumber) ([]audit.Event, error)
}

// Ledger accepts signed transactions and exposes the clock.
type Ledger interface {
	Submit(ctx context.Context, tx ledger.Tx) (ledger.Receipt, error)
	Height() domain.Height
	Pending() int
	MineEmptyBlocks(ctx context.Context, n int) error
}

// Handler exposes the registry over HTTP. Writes go through the ledger as
// transactions signed by the bearer token's principal; reads are answered at
// the current chain height.
type Handler struct {
	registry     Registry
	ledger       Ledger
	logger       *slog.Logger
	jwtValidator authmw.JWTValidator
	adminToken   string
}

type Option func(*Handler)

// WithAdminToken enables the operator routes under /admin/v1.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

func New(registry Registry, chain Ledger, jwtValidator authmw.JWTValidator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		registry:     registry,
		ledger:       chain,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the registry routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.With(authmw.RequireAuth(h.jwtValidator, h.logger)).Post("/transactions", h.HandleSubmitTransaction)

		r.Get("/authorities/{principal}", h.HandleGetAuthority)
		r.Get("/authorities/{principal}/history", h.HandleAuthorityHistory)
		r.Get("/passports/{number}", h.HandleGetPassport)
		r.Get("/passports/{number}/validity", h.HandlePassportValidity)
		r.Get("/passports/{number}/history", h.HandlePassportHistory)
		r.Get("/holders/{holder}/passport", h.HandleGetHolderPassport)
		r.Get("/chain", h.HandleChainStatus)
	})

	if h.adminToken != "" {
		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
			r.Post("/chain/mine", h.HandleMineBlocks)
		})
	}
}

// HandleSubmitTransaction signs the requested operation with the caller's
// principal and waits for its receipt.
func (h *Handler) HandleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sender := requestcontext.Principal(ctx)
	if sender.IsZero() {
		h.logger.ErrorContext(ctx, "sender missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid transaction request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	op, err := req.ToOperation()
	if err != nil {
		h.logger.WarnContext(ctx, "rejected transaction arguments",
			"request_id", requestID,
			"operation", req.Operation,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.ledger.Submit(ctx, ledger.Tx{Sender: sender, Operation: op})
	if err != nil {
		h.logger.ErrorContext(ctx, "transaction submission failed",
			"request_id", requestID,
			"operation", req.Operation,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !receipt.OK {
		httputil.WriteErrorWithCode(w, receipt.Err(), receipt.Code)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

func (h *Handler) HandleGetAuthority(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	active, err := h.registry.IsAuthority(r.Context(), principal)
	if err != nil {
		h.writeReadError(w, r, "authority lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuthorityResponse{Principal: principal, IsAuthority: active})
}

func (h *Handler) HandleAuthorityHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principalParam(w, r, "principal")
	if !ok {
		return
	}
	events, err := h.registry.AuthorityHistory(r.Context(), principal)
	if err != nil {
		h.writeReadError(w, r, "authority history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(principal.String(), events))
}

// HandleGetPassport returns the passport with validity derived at the tip.
func (h *Handler) HandleGetPassport(w http.ResponseWriter, r *http.Request) {
	number, ok := h.numberParam(w, r)
	if !ok {
		return
	}
	view, err := h.registry.GetPassport(r.Context(), number, h.ledger.Height())
	if err != nil {
		h.writeReadError(w, r, "passport lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandlePassportValidity always answers 200; unknown numbers are invalid.
func (h *Handler) HandlePassportValidity(w http.ResponseWriter, r *http.Request) {
	number, ok := h.numberParam(w, r)
	if !ok {
		return
	}
	height := h.ledger.Height()
	valid, err := h.registry.IsValidPassport(r.Context(), number, height)
	if err != nil {
		h.writeReadError(w, r, "validity check failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ValidityResponse{Number: number, Valid: valid, Height: height})
}

func (h *Handler) HandlePassportHistory(w http.ResponseWriter, r *http.Request) {
	number, ok := h.numberParam(w, r)
	if !ok {
		return
	}
	events, err := h.registry.PassportHistory(r.Context(), number)
	if err != nil {
		h.writeReadError(w, r, "passport history failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(number.String(), events))
}

func (h *Handler) HandleGetHolderPassport(w http.ResponseWriter, r *http.Request) {
	holder, ok := h.principalParam(w, r, "holder")
	if !ok {
		return
	}
	number, err := h.registry.GetHolderPassport(r.Context(), holder)
	if err != nil {
		h.writeReadError(w, r, "holder lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HolderResponse{Holder: holder, Number: number})
}

func (h *Handler) HandleChainStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ChainResponse{Height: h.ledger.Height(), Pending: h.ledger.Pending()})
}

// HandleMineBlocks advances the clock by mining empty blocks.
func (h *Handler) HandleMineBlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req MineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.ledger.MineEmptyBlocks(ctx, req.Blocks); err != nil {
		h.logger.ErrorContext(ctx, "mining empty blocks failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ChainResponse{Height: h.ledger.Height(), Pending: h.ledger.Pending()})
}

func (h *Handler) principalParam(w http.ResponseWriter, r *http.Request, name string) (domain.Principal, bool) {
	principal, err := domain.ParsePrincipal(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return principal, true
}

func (h *Handler) numberParam(w http.ResponseWriter, r *http.Request) (domain.PassportNumber, bool) {
	number, err := domain.ParsePassportNumber(chi.URLParam(r, "number"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return number, true
}

func (h *Handler) writeReadError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), msg,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
	}
	httputil.WriteErrorWithCode(w, err, models.NumericCode(err))
}
