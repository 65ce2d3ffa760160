// Package handlers exposes the service facades as a thin JSON API.
// Handlers decode requests, call one facade operation and translate
// domain errors to HTTP statuses; all business rules live below.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Elmeric/dfacto/internal/httpx"
	"github.com/Elmeric/dfacto/internal/repository"
	"github.com/Elmeric/dfacto/internal/services"
	"github.com/Elmeric/dfacto/internal/validation"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	f := repository.ClientFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	clients, err := h.clients.List(r.Context(), f)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		ZipCode string `json:"zip_code"`
		City    string `json:"city"`
		Email   string `json:"email"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	client, err := h.clients.Create(r.Context(), services.ClientCreate{
		Name:    in.Name,
		Address: in.Address,
		ZipCode: in.ZipCode,
		City:    in.City,
		Email:   in.Email,
	})
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		ZipCode  *string `json:"zip_code"`
		City     *string `json:"city"`
		Email    *string `json:"email"`
		IsActive *bool   `json:"is_active"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Name != nil {
		v := make(validation.Violations)
		validation.Required("name", *in.Name, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
	}

	client, err := h.clients.Update(r.Context(), id, services.ClientUpdate{
		Name:     in.Name,
		Address:  in.Address,
		ZipCode:  in.ZipCode,
		City:     in.City,
		Email:    in.Email,
		IsActive: in.IsActive,
	})
	if err != nil {
		httpx.DomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		httpx.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the named path segment as an entity id, replying 400 on
// garbage input.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := parseID(r.PathValue(name))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return id, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}
