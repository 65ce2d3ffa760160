package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/httpx"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
	"github.com/Elmeric/dfacto/internal/services"
	"github.com/Elmeric/dfacto/internal/view"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	company  view.Company
}

func NewInvoiceHandler(invoices *services.InvoiceService, company view.Company) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, company: company}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var f repository.InvoiceFilter
	q := r.URL.Query()
	if raw := q.Get("client_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
			return
		}
		f.ClientID = id
	}
	if raw := q.Get("status"); raw != "" {
		f.Status = models.InvoiceStatus(raw)
	}

	invoices, err := h.invoices.List(r.Context(), f)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID uint `json:"client_id"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_client_id", nil)
		return
	}

	inv, err := h.invoices.Create(r.Context(), in.ClientID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		httpx.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvoiceHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
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

	inv, err := h.invoices.AddItem(r.Context(), id, in.ServiceID, qty)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
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

	inv, err := h.invoices.UpdateItemQuantity(r.Context(), id, itemID, qty)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	inv, err := h.invoices.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Emit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.invoices.Emit)
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.invoices.MarkPaid)
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.invoices.Cancel)
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rendered, err := h.invoices.RenderView(r.Context(), id, h.company)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rendered)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uint) (*models.Invoice, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := op(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func parseQuantity(w http.ResponseWriter, raw string) (decimal.Decimal, bool) {
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_quantity", nil)
		return decimal.Zero, false
	}
	return qty, true
}
