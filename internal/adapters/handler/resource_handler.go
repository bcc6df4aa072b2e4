package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/ports"
)

// Guard wraps a handler with an authorization check for the given roles.
type Guard func(roles []string, next http.HandlerFunc) http.HandlerFunc

var (
	ReadRoles  = []string{"ADMIN", "STAFF"}
	WriteRoles = []string{"ADMIN"}
)

// ResourceHandler exposes one list page over HTTP.
type ResourceHandler[T domain.Record] struct {
	manager ports.ResourceManager[T]
}

func NewResourceHandler[T domain.Record](manager ports.ResourceManager[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{manager: manager}
}

type DeleteRequest struct {
	Confirmation string `json:"confirmation"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Register mounts the resource's routes under /dashboard/{resource}.
func (h *ResourceHandler[T]) Register(mux *http.ServeMux, guard Guard) {
	base := "/dashboard/" + h.manager.Resource()

	mux.HandleFunc("GET "+base, guard(ReadRoles, h.List))
	mux.HandleFunc("GET "+base+"/{id}", guard(ReadRoles, h.Get))
	mux.HandleFunc("POST "+base+"/refresh", guard(ReadRoles, h.Refresh))
	if h.manager.ReadOnly() {
		return
	}
	mux.HandleFunc("POST "+base, guard(WriteRoles, h.Create))
	mux.HandleFunc("PUT "+base+"/{id}", guard(WriteRoles, h.Update))
	mux.HandleFunc("POST "+base+"/{id}/delete", guard(WriteRoles, h.Delete))
}

// List returns the filtered view. "q" is the free-text search; every other
// query parameter names a filter field.
func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fields := make(map[string]string)
	for key := range query {
		if key == "q" {
			continue
		}
		fields[key] = query.Get(key)
	}

	view, err := h.manager.View(query.Get("q"), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.manager.Get(domain.NewID(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ResourceHandler[T]) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	view, _ := h.manager.View("", nil)
	writeJSON(w, http.StatusOK, view)
}

func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	saved, err := h.manager.Create(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	saved, err := h.manager.Update(r.Context(), domain.NewID(r.PathValue("id")), rec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	id := domain.NewID(r.PathValue("id"))
	if err := h.manager.ConfirmDelete(r.Context(), id, req.Confirmation); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Record deleted successfully"})
}
