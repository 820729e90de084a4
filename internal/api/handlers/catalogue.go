package handlers

import (
	"net/http"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/pkg/logger"
)

// CatalogueHandler serves the static product catalogue
type CatalogueHandler struct {
	catalogue contracts.Catalogue
	logger    *logger.Logger
}

// NewCatalogueHandler creates a new catalogue handler
func NewCatalogueHandler(catalogue contracts.Catalogue, log *logger.Logger) *CatalogueHandler {
	return &CatalogueHandler{catalogue: catalogue, logger: log}
}

// CatalogueResponse lists the products of every rate-bearing class
type CatalogueResponse struct {
	FixedIncome []contracts.Product `json:"fixed_income"`
	Funds       []contracts.Product `json:"funds"`
}

// List returns the catalogue
// GET /api/catalogue
func (h *CatalogueHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fixed, err := h.catalogue.Products(ctx, contracts.ClassFixedIncome)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list fixed income products")
		respondError(w, statusFor(err), "Failed to load catalogue")
		return
	}
	funds, err := h.catalogue.Products(ctx, contracts.ClassFund)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list fund products")
		respondError(w, statusFor(err), "Failed to load catalogue")
		return
	}

	respondJSON(w, http.StatusOK, CatalogueResponse{FixedIncome: fixed, Funds: funds})
}
