package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/lists"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/gorilla/mux"
)

// ListHandler serves list CRUD, list items and shares.
type ListHandler struct {
	svc    *lists.Service
	logger *log.Logger
}

// NewListHandler creates a [ListHandler].
func NewListHandler(svc *lists.Service, logger *log.Logger) *ListHandler {
	return &ListHandler{svc: svc, logger: logger}
}

// Register implements [Handler].
func (h *ListHandler) Register(r *mux.Router) {
	r.HandleFunc("/lists", h.withUser(h.index)).Methods(http.MethodGet)
	r.HandleFunc("/lists", h.withUser(h.create)).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id:[0-9]+|personal}", h.withUser(h.show)).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id:[0-9]+}", h.withUser(h.update)).Methods(http.MethodPatch)
	r.HandleFunc("/lists/{id:[0-9]+}", h.withUser(h.destroy)).Methods(http.MethodDelete)

	r.HandleFunc("/lists/{id:[0-9]+|personal}/items", h.withUser(h.items)).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id:[0-9]+}/items", h.withUser(h.addItem)).Methods(http.MethodPost)
	r.HandleFunc("/lists/{id:[0-9]+}/items/{item_type}/{item_id:[0-9]+}", h.withUser(h.updateItem)).Methods(http.MethodPatch)
	r.HandleFunc("/lists/{id:[0-9]+}/items/{item_type}/{item_id:[0-9]+}", h.withUser(h.removeItem)).Methods(http.MethodDelete)

	r.HandleFunc("/lists/{id:[0-9]+}/shares", h.withUser(h.shares)).Methods(http.MethodGet)
	r.HandleFunc("/lists/{id:[0-9]+}/shares/{user_id}", h.withUser(h.share)).Methods(http.MethodPut)
	r.HandleFunc("/lists/{id:[0-9]+}/shares/{user_id}", h.withUser(h.unshare)).Methods(http.MethodDelete)
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, userID string) error

// withUser resolves the acting user and writes any returned error.
func (h *ListHandler) withUser(fn userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserID(r.Context())
		if !ok {
			WriteError(w, r, h.logger, shared.ErrUnauthenticated)
			return
		}
		if err := fn(w, r, userID); err != nil {
			WriteError(w, r, h.logger, err)
		}
	}
}

func (h *ListHandler) index(w http.ResponseWriter, r *http.Request, userID string) error {
	all, err := h.svc.Visible(r.Context(), userID)
	if err != nil {
		return err
	}
	if all == nil {
		all = []*models.List{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"lists": all})
	return nil
}

type createListBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ListHandler) create(w http.ResponseWriter, r *http.Request, userID string) error {
	var body createListBody
	if err := decode(r, &body); err != nil {
		return err
	}
	list, err := h.svc.Create(r.Context(), userID, strings.TrimSpace(body.Name), body.Description)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusCreated, list)
	return nil
}

func (h *ListHandler) show(w http.ResponseWriter, r *http.Request, userID string) error {
	ref, err := pathListRef(r, "id")
	if err != nil {
		return err
	}
	list, err := h.svc.Get(r.Context(), userID, ref)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, list)
	return nil
}

func (h *ListHandler) update(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	var patch lists.ListPatch
	if err := decode(r, &patch); err != nil {
		return err
	}
	list, err := h.svc.Update(r.Context(), userID, id, patch)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, list)
	return nil
}

func (h *ListHandler) destroy(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *ListHandler) items(w http.ResponseWriter, r *http.Request, userID string) error {
	ref, err := pathListRef(r, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.Items(r.Context(), userID, ref)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*models.ListItem{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"list_id": ref, "items": items})
	return nil
}

type addItemBody struct {
	ItemType models.ItemType `json:"item_type"`
	ItemID   int64           `json:"item_id"`
	Watched  bool            `json:"watched"`
	Notes    string          `json:"notes"`
}

func (h *ListHandler) addItem(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	var body addItemBody
	if err := decode(r, &body); err != nil {
		return err
	}
	item, err := h.svc.AddItem(r.Context(), userID, id, models.ListItem{
		ItemType: body.ItemType,
		ItemID:   body.ItemID,
		Watched:  body.Watched,
		Notes:    body.Notes,
	})
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusCreated, item)
	return nil
}

func (h *ListHandler) updateItem(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	ref, err := pathRowRef(r)
	if err != nil {
		return err
	}
	var patch lists.ItemPatch
	if err := decode(r, &patch); err != nil {
		return err
	}
	item, err := h.svc.UpdateItem(r.Context(), userID, id, ref, patch)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, item)
	return nil
}

func (h *ListHandler) removeItem(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	ref, err := pathRowRef(r)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveItem(r.Context(), userID, id, ref); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *ListHandler) shares(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	perms, err := h.svc.Shares(r.Context(), userID, id)
	if err != nil {
		return err
	}
	if perms == nil {
		perms = []*models.ListPermission{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"shares": perms})
	return nil
}

type shareBody struct {
	Level models.PermissionLevel `json:"level"`
}

func (h *ListHandler) share(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	var body shareBody
	if err := decode(r, &body); err != nil {
		return err
	}
	perm, err := h.svc.Share(r.Context(), userID, id, mux.Vars(r)["user_id"], body.Level)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, perm)
	return nil
}

func (h *ListHandler) unshare(w http.ResponseWriter, r *http.Request, userID string) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Unshare(r.Context(), userID, id, mux.Vars(r)["user_id"]); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
