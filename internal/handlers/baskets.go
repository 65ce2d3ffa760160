package handlers

import (
	"net/http"

	"github.com/Elmeric/dfacto/internal/httpx"
	"github.com/Elmeric/dfacto/internal/services"
)

type BasketHandler struct {
	baskets *services.BasketService
}

func NewBasketHandler(baskets *services.BasketService) *BasketHandler {
	return &BasketHandler{baskets: baskets}
}

func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	basket, err := h.baskets.Get(r.Context(), clientID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, basket)
}

func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	var in struct {
		ServiceID uint   `json:"service_id"`
		Quantity  string `json:"quantity"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	qty, ok := parseQuantity(w, in.Quantity)
	if !ok {
		return
	}

	basket, err := h.baskets.AddItem(r.Context(), clientID, in.ServiceID, qty)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, basket)
}

func (h *BasketHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	serviceID, ok := pathID(w, r, "serviceID")
	if !ok {
		return
	}
	var in struct {
		Quantity string `json:"quantity"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	qty, ok := parseQuantity(w, in.Quantity)
	if !ok {
		return
	}

	basket, err := h.baskets.UpdateItemQuantity(r.Context(), clientID, serviceID, qty)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, basket)
}

func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	serviceID, ok := pathID(w, r, "serviceID")
	if !ok {
		return
	}
	basket, err := h.baskets.RemoveItem(r.Context(), clientID, serviceID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, basket)
}

func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	basket, err := h.baskets.Clear(r.Context(), clientID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, basket)
}

// Invoice turns the basket into a new draft invoice and empties it.
func (h *BasketHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientID")
	if !ok {
		return
	}
	inv, err := h.baskets.Invoice(r.Context(), clientID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}
