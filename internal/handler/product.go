package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/drypanda-ecart/internal/catalog"
	"github.com/xenking/drypanda-ecart/internal/domain/product"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeInternalError(w, r, errors.Wrap(err, "list products"))
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			catalog.EncodeProduct(e, h.withImageBase(p))
		}
		e.ArrEnd()
	})
}

// GetProduct handles GET /api/products/{name}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByName(r.Context(), r.PathValue("name"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, errors.Wrap(err, "get product"))
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		catalog.EncodeProduct(e, h.withImageBase(*p))
	})
}

// withImageBase prefixes relative image paths with the configured base URL.
func (h *Handler) withImageBase(p product.Product) product.Product {
	if h.imageBaseURL == "" || p.Image == "" || strings.Contains(p.Image, "://") {
		return p
	}
	p.Image = strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(p.Image, "/")
	return p
}
