package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arkandha/go-cart-payments/internal/cart"
	"github.com/arkandha/go-cart-payments/internal/payments"
)

const SignatureHeader = "x-webhook-signature"

type PaymentInitiator interface {
	Initiate(ctx context.Context, userID int64) (*payments.InitiationResult, error)
}

type WebhookReconciler interface {
	Reconcile(ctx context.Context, body []byte, signature string) (*payments.Order, error)
}

type PaymentHandler struct {
	Initiator  PaymentInitiator
	Reconciler WebhookReconciler
}

func (h *PaymentHandler) Register(r *chi.Mux) {
	r.Post("/payment/initiate", h.initiate)
	r.Post("/payment/webhook", h.webhook)
}

func (h *PaymentHandler) initiate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "missing userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, err := h.Initiator.Initiate(ctx, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductUnknown):
			writeError(w, http.StatusBadRequest, "product not found")
		case errors.Is(err, payments.ErrGatewayTimeout):
			writeError(w, http.StatusBadRequest, "payment gateway timed out")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	// The provider's response goes back verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Raw)
}

func (h *PaymentHandler) webhook(w http.ResponseWriter, r *http.Request) {
	// The signature covers the exact bytes on the wire, so the body is read
	// raw and never re-serialized before verification.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Reconciler.Reconcile(ctx, body, r.Header.Get(SignatureHeader)); err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidSignature):
			writeError(w, http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, payments.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "Order not found")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment status updated"})
}
