package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arkandha/go-cart-payments/internal/catalog"
	"github.com/arkandha/go-cart-payments/internal/money"
)

type CatalogStore interface {
	Create(ctx context.Context, name string, priceCents int64, stock int) (*catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

type CatalogHandler struct {
	Store CatalogStore
}

type productResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]productResp, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResp(&p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Price string `json:"price"`
		Stock int    `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	if req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "stock must be non-negative")
		return
	}
	priceCents, err := money.ParseCents(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Store.Create(ctx, req.Name, priceCents, req.Stock)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toProductResp(p))
}

func toProductResp(p *catalog.Product) productResp {
	return productResp{
		ID:    p.ID.String(),
		Name:  p.Name,
		Price: money.String(p.PriceCents),
		Stock: p.Stock,
	}
}
