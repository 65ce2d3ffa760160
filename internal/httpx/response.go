package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/money"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// DomainError writes a domain error with the HTTP status matching its
// kind: validation and state errors map to 400/409, not-found to 404,
// constraint breaches to 409, anything unknown to 500.
func DomainError(w http.ResponseWriter, err error) {
	JSONError(w, StatusFor(err), err.Error(), nil)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrEmptyInvoice),
		errors.Is(err, engine.ErrInvalidDueDate):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInvoiceNotEditable),
		errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, engine.ErrItemNotFound),
		errors.Is(err, engine.ErrClientNotFound),
		errors.Is(err, engine.ErrServiceNotFound),
		errors.Is(err, engine.ErrInvoiceNotFound),
		errors.Is(err, engine.ErrVatRateNotFound),
		errors.Is(err, engine.ErrBasketNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
