package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/gorilla/mux"
)

// Transferer is the transfer engine as the handlers use it.
type Transferer interface {
	Copy(ctx context.Context, userID string, req models.TransferRequest) (models.TransferResult, error)
	Move(ctx context.Context, userID string, req models.TransferRequest) (models.TransferResult, error)
	Bulk(ctx context.Context, userID string, req models.BulkRequest) (models.BulkResult, error)
}

// TransferHandler serves the copy, move and bulk endpoints.
type TransferHandler struct {
	engine Transferer
	logger *log.Logger
}

// NewTransferHandler creates a [TransferHandler].
func NewTransferHandler(engine Transferer, logger *log.Logger) *TransferHandler {
	return &TransferHandler{engine: engine, logger: logger}
}

// Register implements [Handler].
func (h *TransferHandler) Register(r *mux.Router) {
	r.HandleFunc("/lists/bulk-operation", h.bulk).Methods(http.MethodPost)
	r.HandleFunc("/lists/{source_id}/items/{item_id}/copy", h.single(models.OperationCopy)).Methods(http.MethodPost)
	r.HandleFunc("/lists/{source_id}/items/{item_id}/move", h.single(models.OperationMove)).Methods(http.MethodPost)
}

type itemTransferBody struct {
	TargetList       models.ListRef  `json:"target_list_id"`
	ItemType         models.ItemType `json:"item_type"`
	PreserveMetadata bool            `json:"preserve_metadata"`
}

type transferResponse struct {
	Success           bool   `json:"success"`
	ItemsAffected     int    `json:"items_affected"`
	Duplicate         bool   `json:"duplicate"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
	Tombstoned        int    `json:"tombstoned"`
	Message           string `json:"message"`
}

type bulkResponse struct {
	Success           bool                    `json:"success"`
	ItemsAffected     int                     `json:"items_affected"`
	DuplicatesSkipped int                     `json:"duplicates_skipped"`
	Tombstoned        int                     `json:"tombstoned"`
	Message           string                  `json:"message"`
	Results           []models.TransferResult `json:"results"`
}

func (h *TransferHandler) single(op models.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			WriteError(w, r, h.logger, shared.ErrUnauthenticated)
			return
		}

		source, err := pathListRef(r, "source_id")
		if err != nil {
			WriteError(w, r, h.logger, err)
			return
		}
		itemID, err := pathInt(r, "item_id")
		if err != nil {
			WriteError(w, r, h.logger, err)
			return
		}

		var body itemTransferBody
		if err := decode(r, &body); err != nil {
			WriteError(w, r, h.logger, err)
			return
		}

		req := models.TransferRequest{
			SourceList:       source,
			TargetList:       body.TargetList,
			Item:             models.ItemRef{Type: body.ItemType, ID: itemID},
			Operation:        op,
			PreserveMetadata: body.PreserveMetadata,
		}

		var result models.TransferResult
		if op == models.OperationMove {
			result, err = h.engine.Move(r.Context(), userID, req)
		} else {
			result, err = h.engine.Copy(r.Context(), userID, req)
		}
		if err != nil {
			WriteError(w, r, h.logger, err)
			return
		}

		WriteJSON(w, http.StatusOK, transferResponse{
			Success:           true,
			ItemsAffected:     result.ItemsAffected,
			Duplicate:         result.Duplicate,
			DuplicatesSkipped: result.DuplicatesSkipped,
			Tombstoned:        result.Tombstoned,
			Message:           result.Message,
		})
	}
}

func (h *TransferHandler) bulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		WriteError(w, r, h.logger, shared.ErrUnauthenticated)
		return
	}

	var req models.BulkRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	result, err := h.engine.Bulk(r.Context(), userID, req)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, bulkResponse{
		Success:           true,
		ItemsAffected:     result.ItemsAffected,
		DuplicatesSkipped: result.DuplicatesSkipped,
		Tombstoned:        result.Tombstoned,
		Message:           result.Message,
		Results:           result.Results,
	})
}
