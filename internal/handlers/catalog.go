package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/httpx"
	"github.com/Elmeric/dfacto/internal/money"
	"github.com/Elmeric/dfacto/internal/repository"
	"github.com/Elmeric/dfacto/internal/services"
	"github.com/Elmeric/dfacto/internal/validation"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	f := repository.ServiceFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	svcs, err := h.catalog.ListServices(r.Context(), f)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svcs)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	svc, err := h.catalog.GetService(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string `json:"name"`
		UnitPrice string `json:"unit_price"`
		VatRateID uint   `json:"vat_rate_id"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Required("unit_price", in.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	price, err := money.FromMajorString(in.UnitPrice)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}

	svc, err := h.catalog.CreateService(r.Context(), services.ServiceCreate{
		Name:      in.Name,
		UnitPrice: price,
		VatRateID: in.VatRateID,
	})
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Name      *string `json:"name"`
		UnitPrice *string `json:"unit_price"`
		VatRateID *uint   `json:"vat_rate_id"`
		IsActive  *bool   `json:"is_active"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	upd := services.ServiceUpdate{
		Name:      in.Name,
		VatRateID: in.VatRateID,
		IsActive:  in.IsActive,
	}
	if in.UnitPrice != nil {
		price, err := money.FromMajorString(*in.UnitPrice)
		if err != nil {
			httpx.DomainError(w, err)
			return
		}
		upd.UnitPrice = &price
	}

	svc, err := h.catalog.UpdateService(r.Context(), id, upd)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteService(r.Context(), id); err != nil {
		httpx.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListVatRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.catalog.ListVatRates(r.Context())
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}

func (h *CatalogHandler) CreateVatRate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
		Rate string `json:"rate"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Required("rate", in.Rate, v)
	rate, err := decimal.NewFromString(in.Rate)
	if err != nil {
		v["rate"] = "invalid_decimal"
	} else {
		validation.RangeDecimal("rate", rate, decimal.Zero, decimal.NewFromInt(100), v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	created, err := h.catalog.CreateVatRate(r.Context(), services.VatRateCreate{
		Name: in.Name,
		Rate: rate,
	})
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) SetDefaultVatRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.SetDefaultVatRate(r.Context(), id); err != nil {
		httpx.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) DeleteVatRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteVatRate(r.Context(), id); err != nil {
		httpx.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
