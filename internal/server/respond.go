package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps err to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidRequest),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WriteError writes the error body for err. Server errors are logged and their details withheld.
func WriteError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		msg = "internal server error"
	}
	WriteJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into v, rejecting unknown fields and trailing data.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", shared.ErrInvalidRequest)
		}
		if errors.Is(err, shared.ErrInvalidRequest) {
			return err
		}
		return fmt.Errorf("%w: malformed body: %v", shared.ErrInvalidRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", shared.ErrInvalidRequest)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", shared.ErrInvalidRequest, name, raw)
	}
	return id, nil
}

func pathListRef(r *http.Request, name string) (models.ListRef, error) {
	return models.ParseListRef(mux.Vars(r)[name])
}

func pathRowRef(r *http.Request) (models.ConcreteRef, error) {
	itemType, err := models.ParseRowType(mux.Vars(r)["item_type"])
	if err != nil {
		return models.ConcreteRef{}, err
	}
	id, err := pathInt(r, "item_id")
	if err != nil {
		return models.ConcreteRef{}, err
	}
	return models.ConcreteRef{Type: itemType, ID: id}, nil
}
