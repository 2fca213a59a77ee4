package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arkandha/go-cart-payments/internal/cart"
	"github.com/arkandha/go-cart-payments/internal/money"
	"github.com/arkandha/go-cart-payments/internal/redisx"
)

type CartStore interface {
	Add(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*cart.Line, error)
	Lines(ctx context.Context, userID int64) ([]cart.PricedLine, error)
	UpdateQuantity(ctx context.Context, userID int64, productID uuid.UUID, quantity int) (*cart.Line, error)
	Remove(ctx context.Context, userID int64, productID uuid.UUID) error
}

type CartHandler struct {
	Store CartStore
	Redis *redis.Client
}

type cartLineReq struct {
	UserID    int64  `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartLineResp struct {
	ID        string `json:"id"`
	UserID    int64  `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartViewLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type cartViewResp struct {
	Cart []cartViewLine `json:"cart"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/cart", h.addItem)
	r.Get("/cart/{userID}", h.getCart)
	r.Put("/cart", h.updateItem)
	r.Delete("/cart", h.removeItem)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	req, productID, ok := h.decodeLineReq(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	line, err := h.Store.Add(ctx, req.UserID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrProductUnknown) {
			writeError(w, http.StatusBadRequest, "product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateView(ctx, req.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Item added to cart",
		"cartItem": lineResp(line),
	})
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// warm path: serve the cached snapshot
	key := fmt.Sprintf(redisx.KeyCartView, userID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	lines, err := h.Store.Lines(ctx, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := cartViewResp{Cart: make([]cartViewLine, 0, len(lines))}
	for _, l := range lines {
		if !l.Known {
			writeError(w, http.StatusBadRequest, "product not found")
			return
		}
		view.Cart = append(view.Cart, cartViewLine{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			Price:     money.String(l.PriceCents),
			Quantity:  l.Quantity,
		})
	}

	body, _ := json.Marshal(view)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLCartView).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	req, productID, ok := h.decodeLineReq(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	line, err := h.Store.UpdateQuantity(ctx, req.UserID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "Item not found in cart")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateView(ctx, req.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Cart updated",
		"cartItem": lineResp(line),
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	req, productID, ok := h.decodeLineReq(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Remove(ctx, req.UserID, productID); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "Item not found in cart")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateView(ctx, req.UserID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// decodeLineReq validates the shared {userId, productId, quantity} body.
// needQuantity is false for DELETE, which carries no quantity.
func (h *CartHandler) decodeLineReq(w http.ResponseWriter, r *http.Request, needQuantity bool) (cartLineReq, uuid.UUID, bool) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return req, uuid.Nil, false
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusBadRequest, "missing userId")
		return req, uuid.Nil, false
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid productId")
		return req, uuid.Nil, false
	}
	if needQuantity && req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return req, uuid.Nil, false
	}
	return req, productID, true
}

func (h *CartHandler) invalidateView(ctx context.Context, userID int64) {
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCartView, userID)).Err()
	}
}

func lineResp(l *cart.Line) cartLineResp {
	return cartLineResp{
		ID:        l.ID.String(),
		UserID:    l.UserID,
		ProductID: l.ProductID.String(),
		Quantity:  l.Quantity,
	}
}
