// Package api provides the HTTP API of the connector service: the gateway
// callback endpoint and the operator API that drives the gateway client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/yourfin-enon/coinspaid-connector/internal/auth"
	"github.com/yourfin-enon/coinspaid-connector/internal/callbacks"
	"github.com/yourfin-enon/coinspaid-connector/internal/control"
	"github.com/yourfin-enon/coinspaid-connector/internal/limits"
	"github.com/yourfin-enon/coinspaid-connector/pkg/coinspaid"
)

const maxCallbackBody = 1 << 20

// Gateway is the subset of the CoinsPaid client used by the API
type Gateway interface {
	TakeAddress(ctx context.Context, currency, foreignID string, convertTo *string) (*coinspaid.Address, error)
	WithdrawCrypto(ctx context.Context, address, currency, foreignID, amount string, tag *string) (*coinspaid.Withdrawal, error)
	GetBalances(ctx context.Context) ([]coinspaid.AccountBalance, error)
	Ping(ctx context.Context) (json.RawMessage, error)
}

// CallbackStore persists received callbacks
type CallbackStore interface {
	Save(ctx context.Context, raw []byte, cb *coinspaid.CallbackData) (*callbacks.Record, error)
	Get(ctx context.Context, id string) (*callbacks.Record, error)
	List(ctx context.Context, filter *callbacks.Filter) ([]*callbacks.Record, error)
}

// Deps are the services the API is built from
type Deps struct {
	Gateway  Gateway
	Signer   *coinspaid.Signer
	Store    CallbackStore
	Auth     *auth.Service
	Control  *control.Service
	Limits   *limits.Service
	Hub      *Hub
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Handler contains all HTTP handlers
type Handler struct {
	gateway  Gateway
	signer   *coinspaid.Signer
	store    CallbackStore
	auth     *auth.Service
	control  *control.Service
	limits   *limits.Service
	hub      *Hub
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// New creates a new API handler
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := d.Hub
	if hub == nil {
		hub = NewHub(logger)
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	ctrl := d.Control
	if ctrl == nil {
		ctrl = control.New(nil, logger)
	}
	lim := d.Limits
	if lim == nil {
		lim, _ = limits.New(nil)
	}

	return &Handler{
		gateway:  d.Gateway,
		signer:   d.Signer,
		store:    d.Store,
		auth:     d.Auth,
		control:  ctrl,
		limits:   lim,
		hub:      hub,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondGatewayError maps a failed gateway call onto an API error
func (h *Handler) respondGatewayError(w http.ResponseWriter, err error) {
	var gwErr *coinspaid.Error
	errors.As(err, &gwErr)

	switch {
	case errors.Is(err, coinspaid.ErrBadRequest):
		respondError(w, http.StatusBadRequest, "GATEWAY_BAD_REQUEST", gwErr.Body)
	case errors.Is(err, coinspaid.ErrUnauthorized):
		respondError(w, http.StatusBadGateway, "GATEWAY_UNAUTHORIZED", "Gateway rejected the merchant credentials")
	case errors.Is(err, coinspaid.ErrServiceUnavailable):
		respondError(w, http.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE", "Gateway is unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "GATEWAY_TIMEOUT", "Gateway did not respond in time")
	default:
		h.logger.Error("gateway call failed", "error", err)
		respondError(w, http.StatusBadGateway, "GATEWAY_ERROR", "Gateway call failed")
	}
}

// === Health & Info ===

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gatewayStatus := "reachable"
	if _, err := h.gateway.Ping(ctx); err != nil {
		gatewayStatus = "unreachable"
		h.logger.Warn("gateway ping failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"gateway_status": gatewayStatus,
		"ws_clients":     h.hub.ClientCount(),
	})
}

// ServerInfo handles GET /
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "coinspaid-connector",
		"version":     "1.0.0",
		"description": "CoinsPaid gateway connector and callback receiver",
	})
}

// === Gateway callbacks ===

// ReceiveCallback handles POST /callbacks/coinspaid
func (h *Handler) ReceiveCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body")
		return
	}

	if !h.signer.Verify(body, r.Header.Get(coinspaid.HeaderSignature)) {
		h.logger.Warn("callback signature mismatch", "remote_addr", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Callback signature is invalid")
		return
	}

	cb, err := coinspaid.ParseCallback(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_CALLBACK", err.Error())
		return
	}

	rec, err := h.store.Save(r.Context(), body, cb)
	if err != nil {
		h.logger.Error("failed to store callback", "operation_id", cb.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to store callback")
		return
	}

	h.logger.Info("callback received",
		"id", rec.ID,
		"operation_id", rec.OperationID,
		"type", rec.Type,
		"status", rec.Status)
	h.hub.Broadcast("callback", rec)

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCallbacks handles GET /api/v1/callbacks
func (h *Handler) ListCallbacks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &callbacks.Filter{
		ForeignID: q.Get("foreign_id"),
		Status:    q.Get("status"),
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 1000 {
			respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 1000")
			return
		}
		filter.Limit = limit
	}
	for key, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		if s := q.Get(key); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				respondError(w, http.StatusBadRequest, "INVALID_TIME", key+" must be an RFC 3339 timestamp")
				return
			}
			*dst = t
		}
	}

	records, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list callbacks", "error", err)
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to list callbacks")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// GetCallback handles GET /api/v1/callbacks/{id}
func (h *Handler) GetCallback(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, callbacks.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Callback not found")
			return
		}
		h.logger.Error("failed to get callback", "error", err)
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Failed to get callback")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// === Authentication ===

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		case errors.Is(err, auth.ErrLoginDisabled):
			respondError(w, http.StatusForbidden, "LOGIN_DISABLED", "Operator login is not configured")
		default:
			respondError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// === Gateway operations ===

// GetBalances handles GET /api/v1/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.gateway.GetBalances(r.Context())
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, balances)
}

// TakeAddressRequest is the body of POST /api/v1/addresses
type TakeAddressRequest struct {
	Currency  string  `json:"currency"`
	ForeignID string  `json:"foreign_id"`
	ConvertTo *string `json:"convert_to"`
}

// TakeAddress handles POST /api/v1/addresses
func (h *Handler) TakeAddress(w http.ResponseWriter, r *http.Request) {
	var req TakeAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Currency == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "currency is required")
		return
	}
	if req.ForeignID == "" {
		req.ForeignID = newForeignID()
	}

	addr, err := h.gateway.TakeAddress(r.Context(), strings.ToUpper(req.Currency), req.ForeignID, req.ConvertTo)
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, addr)
}

// WithdrawRequest is the body of POST /api/v1/withdrawals
type WithdrawRequest struct {
	Address   string  `json:"address"`
	Currency  string  `json:"currency"`
	Amount    string  `json:"amount"`
	ForeignID string  `json:"foreign_id"`
	Tag       *string `json:"tag"`
}

// Withdraw handles POST /api/v1/withdrawals
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Address == "" || req.Currency == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "address and currency are required")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "amount must be a positive decimal")
		return
	}
	if err := h.control.CheckWithdrawal(req.Currency); err != nil {
		respondError(w, http.StatusForbidden, "WITHDRAWALS_SUSPENDED", err.Error())
		return
	}
	if err := h.limits.Check(req.Currency, amount); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "LIMIT_EXCEEDED", err.Error())
		return
	}
	if req.ForeignID == "" {
		req.ForeignID = newForeignID()
	}

	withdrawal, err := h.gateway.WithdrawCrypto(r.Context(), req.Address, strings.ToUpper(req.Currency),
		req.ForeignID, req.Amount, req.Tag)
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}

	h.logger.Info("withdrawal created",
		"foreign_id", withdrawal.ForeignID,
		"currency", withdrawal.SenderCurrency,
		"amount", withdrawal.SenderAmount,
		"status", withdrawal.Status)

	respondJSON(w, http.StatusCreated, withdrawal)
}

// GetLimits handles GET /api/v1/limits
func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.limits.All())
}

// === Operator control ===

// SuspendRequest is the body of the suspend endpoints
type SuspendRequest struct {
	Reason string `json:"reason"`
}

func operatorName(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

// respondControlStatus returns the switch state and pushes it to live subscribers
func (h *Handler) respondControlStatus(w http.ResponseWriter) {
	status := h.control.Status()
	h.hub.Broadcast("control", status)
	respondJSON(w, http.StatusOK, status)
}

// ControlStatus handles GET /api/v1/control
func (h *Handler) ControlStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.control.Status())
}

// SuspendWithdrawals handles POST /api/v1/control/withdrawals/suspend
func (h *Handler) SuspendWithdrawals(w http.ResponseWriter, r *http.Request) {
	var req SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}

	if err := h.control.SuspendWithdrawals(r.Context(), req.Reason, operatorName(r)); err != nil {
		h.logger.Error("failed to suspend withdrawals", "error", err)
		respondError(w, http.StatusInternalServerError, "CONTROL_ERROR", "Failed to suspend withdrawals")
		return
	}

	h.respondControlStatus(w)
}

// ResumeWithdrawals handles POST /api/v1/control/withdrawals/resume
func (h *Handler) ResumeWithdrawals(w http.ResponseWriter, r *http.Request) {
	if err := h.control.ResumeWithdrawals(r.Context(), operatorName(r)); err != nil {
		h.logger.Error("failed to resume withdrawals", "error", err)
		respondError(w, http.StatusInternalServerError, "CONTROL_ERROR", "Failed to resume withdrawals")
		return
	}

	h.respondControlStatus(w)
}

// SuspendCurrency handles POST /api/v1/control/currencies/{currency}/suspend
func (h *Handler) SuspendCurrency(w http.ResponseWriter, r *http.Request) {
	var req SuspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}

	currency := mux.Vars(r)["currency"]
	if err := h.control.SuspendCurrency(r.Context(), currency, req.Reason, operatorName(r)); err != nil {
		h.logger.Error("failed to suspend currency", "currency", currency, "error", err)
		respondError(w, http.StatusInternalServerError, "CONTROL_ERROR", "Failed to suspend currency")
		return
	}

	h.respondControlStatus(w)
}

// ResumeCurrency handles POST /api/v1/control/currencies/{currency}/resume
func (h *Handler) ResumeCurrency(w http.ResponseWriter, r *http.Request) {
	currency := mux.Vars(r)["currency"]
	if err := h.control.ResumeCurrency(r.Context(), currency, operatorName(r)); err != nil {
		h.logger.Error("failed to resume currency", "currency", currency, "error", err)
		respondError(w, http.StatusInternalServerError, "CONTROL_ERROR", "Failed to resume currency")
		return
	}

	h.respondControlStatus(w)
}

// newForeignID returns a random 32 character hex correlation id
func newForeignID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
