package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/httpx"
	"github.com/Elmeric/dfacto/internal/services"
	"github.com/Elmeric/dfacto/internal/validation"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	globals, err := h.settings.Globals(r.Context())
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, globals)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DueDelta     *int    `json:"due_delta"`
		PenaltyRate  *string `json:"penalty_rate"`
		DiscountRate *string `json:"discount_rate"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	v := make(validation.Violations)
	upd := services.GlobalsUpdate{DueDelta: in.DueDelta}
	if in.DueDelta != nil {
		validation.PositiveInt("due_delta", *in.DueDelta, v)
	}
	if in.PenaltyRate != nil {
		rate, err := decimal.NewFromString(*in.PenaltyRate)
		if err != nil {
			v["penalty_rate"] = "invalid_decimal"
		} else {
			validation.NonNegativeDecimal("penalty_rate", rate, v)
			upd.PenaltyRate = &rate
		}
	}
	if in.DiscountRate != nil {
		rate, err := decimal.NewFromString(*in.DiscountRate)
		if err != nil {
			v["discount_rate"] = "invalid_decimal"
		} else {
			validation.NonNegativeDecimal("discount_rate", rate, v)
			upd.DiscountRate = &rate
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	globals, err := h.settings.UpdateGlobals(r.Context(), upd)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, globals)
}
